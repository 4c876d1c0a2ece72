package followup

import (
	stdcontext "context"
	"encoding/json"
	"fmt"

	"interviewer-ai/internal/config"
	"interviewer-ai/internal/prompts"
)

// generatedSection — формат секции, который возвращает модель
type generatedSection struct {
	Title     string   `json:"title"`
	Intent    string   `json:"intent"`
	Questions []string `json:"questions"`
}

// GenerateGuide просит модель построить секции гайда по брифу, профилю
// и заметкам режиссера (notes может быть nil). В отличие от RequestFollowup
// здесь обычная ошибка: подготовка гайда не связана контрактом fallback.
func (g *OllamaGenerator) GenerateGuide(ctx stdcontext.Context, brief *config.ProjectBrief, profile *config.SubjectProfile, notes *config.DirectorNotes) ([]config.Section, error) {
	briefJSON, err := json.Marshal(brief)
	if err != nil {
		return nil, fmt.Errorf("ошибка сериализации брифа: %w", err)
	}
	profileJSON, err := json.Marshal(profile)
	if err != nil {
		return nil, fmt.Errorf("ошибка сериализации профиля: %w", err)
	}
	var notesJSON []byte
	if notes != nil {
		notesJSON, err = json.Marshal(notes)
		if err != nil {
			return nil, fmt.Errorf("ошибка сериализации заметок режиссера: %w", err)
		}
	}

	raw, err := g.generate(ctx, prompts.BuildGuidePrompt(string(briefJSON), string(profileJSON), string(notesJSON)))
	if err != nil {
		return nil, err
	}

	var generated []generatedSection
	if err := json.Unmarshal([]byte(raw), &generated); err != nil {
		return nil, fmt.Errorf("ответ модели не является списком секций: %w", err)
	}
	if len(generated) == 0 {
		return nil, fmt.Errorf("модель вернула пустой список секций")
	}

	sections := make([]config.Section, 0, len(generated))
	for i, gs := range generated {
		section := config.Section{
			Title:  gs.Title,
			Intent: gs.Intent,
		}
		for j, prompt := range gs.Questions {
			section.Questions = append(section.Questions, config.GuideQuestion{
				ID:     fmt.Sprintf("ai-s%d-q%d", i+1, j+1),
				Source: config.SourceCustom,
				Prompt: prompt,
				Status: config.StatusPending,
			})
		}
		sections = append(sections, section)
	}
	return sections, nil
}

// SummarizeSubject просит модель составить интейк-саммари субъекта
// по собранным ответам
func (g *OllamaGenerator) SummarizeSubject(ctx stdcontext.Context, answers []string) (string, error) {
	if len(answers) == 0 {
		return "", fmt.Errorf("нет записанных ответов для саммари")
	}
	raw, err := g.generate(ctx, prompts.BuildIntakeSummaryPrompt(answers))
	if err != nil {
		return "", err
	}
	if raw == "" {
		return "", fmt.Errorf("пустой ответ модели")
	}
	return raw, nil
}
