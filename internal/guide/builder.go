package guide

import (
	"context"
	"fmt"
	"log"

	"interviewer-ai/internal/bank"
	"interviewer-ai/internal/config"
	"interviewer-ai/internal/followup"
)

// BuildFromBank наполняет гайд из банка вопросов: по секции на каждую тему
// брифа, вопросы в порядке релевантности. Записи, задевающие исключенные
// темы, не попадают в гайд.
func BuildFromBank(brief *config.ProjectBrief, ix *bank.Index, exclude []string, perSection int) (*config.InterviewGuide, error) {
	if perSection < 1 {
		perSection = 5
	}

	g := &config.InterviewGuide{ProjectName: brief.ProjectName}
	used := make(map[string]bool)

	for _, theme := range brief.Themes {
		section := config.Section{Title: theme}
		for _, entry := range ix.Lookup([]string{theme}, exclude) {
			if used[entry.ID] {
				continue
			}
			used[entry.ID] = true
			section.Questions = append(section.Questions, config.GuideQuestion{
				ID:     entry.ID,
				Source: config.BankSource(entry.ID),
				Prompt: entry.Prompt,
				Status: config.StatusPending,
			})
			if len(section.Questions) == perSection {
				break
			}
		}
		if len(section.Questions) > 0 {
			g.Sections = append(g.Sections, section)
		}
	}

	if len(g.Sections) == 0 {
		return nil, fmt.Errorf("банк не содержит подходящих вопросов для тем брифа")
	}
	return g, nil
}

// Build строит гайд через локальный inference-сервис; при недоступности
// сервиса или непригодном ответе гайд наполняется из банка. Заметки
// режиссера (notes может быть nil) передаются модели как контекст рисков.
func Build(ctx context.Context, gen *followup.OllamaGenerator, brief *config.ProjectBrief, profile *config.SubjectProfile, notes *config.DirectorNotes, ix *bank.Index, perSection int) (*config.InterviewGuide, error) {
	if gen != nil {
		sections, err := gen.GenerateGuide(ctx, brief, profile, notes)
		if err == nil {
			return &config.InterviewGuide{
				ProjectName: brief.ProjectName,
				Sections:    sections,
			}, nil
		}
		log.Printf("Генерация гайда недоступна, наполняю из банка: %v", err)
	}
	return BuildFromBank(brief, ix, profile.ExcludedTopics(), perSection)
}

// AppendNote добавляет заметку к вопросу гайда на этапе подготовки.
// Заметки никогда не переносятся обратно в банк вопросов.
func AppendNote(g *config.InterviewGuide, section, question int, note string) error {
	if section < 0 || section >= len(g.Sections) {
		return fmt.Errorf("секция %d вне гайда", section)
	}
	questions := g.Sections[section].Questions
	if question < 0 || question >= len(questions) {
		return fmt.Errorf("вопрос %d/%d вне гайда", section, question)
	}
	if note == "" {
		return fmt.Errorf("пустая заметка не добавляется")
	}
	questions[question].Notes = append(questions[question].Notes, note)
	return nil
}
