package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"interviewer-ai/internal/bank"
	"interviewer-ai/internal/config"
	"interviewer-ai/internal/followup"
	"interviewer-ai/internal/guide"
)

var (
	guideOut        string
	guidePerSection int
	guideOffline    bool
)

var guideCmd = &cobra.Command{
	Use:   "guide",
	Short: "Собрать гайд интервью из брифа и банка вопросов",
	Long: `Собирает черновик гайда: с помощью AI-генератора, а при его
недоступности (или с флагом --offline) — из банка вопросов по темам брифа.
Вопросы, задевающие исключенные согласием темы, в гайд не попадают.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		brief, err := config.LoadProjectBrief(briefPath)
		if err != nil {
			return err
		}
		subject, err := config.LoadSubjectProfile(subjectPath)
		if err != nil {
			return err
		}
		qb, err := config.LoadQuestionBank(bankPath)
		if err != nil {
			return err
		}
		notes, err := config.LoadDirectorNotes(notesPath)
		if err != nil {
			return err
		}
		ix := bank.NewIndex(qb)

		var g *config.InterviewGuide
		if guideOffline {
			g, err = guide.BuildFromBank(brief, ix, subject.ExcludedTopics(), guidePerSection)
		} else {
			app := config.LoadAppConfig()
			gen := followup.NewOllamaGenerator(app.Ollama.URL, app.Ollama.Model, app.Ollama.Timeout)
			g, err = guide.Build(context.Background(), gen, brief, subject, notes, ix, guidePerSection)
		}
		if err != nil {
			return err
		}

		data, err := yaml.Marshal(g)
		if err != nil {
			return fmt.Errorf("ошибка сериализации гайда: %w", err)
		}
		if err := os.WriteFile(guideOut, data, 0644); err != nil {
			return fmt.Errorf("ошибка записи гайда в %s: %w", guideOut, err)
		}

		questions := 0
		for _, section := range g.Sections {
			questions += len(section.Questions)
		}
		fmt.Printf("✅ Гайд сохранен в %s: %d секций, %d вопросов\n", guideOut, len(g.Sections), questions)
		return nil
	},
}

func init() {
	guideCmd.Flags().StringVar(&guideOut, "out", "config/interview_guide.yaml", "Куда записать собранный гайд")
	guideCmd.Flags().IntVar(&guidePerSection, "per-section", 4, "Вопросов на секцию при сборке из банка")
	guideCmd.Flags().BoolVar(&guideOffline, "offline", false, "Собрать гайд только из банка, без AI")
}
