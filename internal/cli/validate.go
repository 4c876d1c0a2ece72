package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"interviewer-ai/internal/config"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Проверить конфигурационные документы",
	RunE: func(cmd *cobra.Command, args []string) error {
		in, err := loadInputs()
		if err != nil {
			return err
		}
		notes, err := config.LoadDirectorNotes(notesPath)
		if err != nil {
			return err
		}

		questions := 0
		for _, section := range in.Guide.Sections {
			questions += len(section.Questions)
		}

		fmt.Println("✅ Конфигурация корректна")
		fmt.Printf("   Бриф:    %q, темы: %d\n", in.Brief.ProjectName, len(in.Brief.Themes))
		fmt.Printf("   Субъект: %s, согласие: %s\n", in.Subject.ID, in.Subject.Consent)
		fmt.Printf("   Банк:    %d вопросов\n", len(in.Bank.Entries))
		fmt.Printf("   Гайд:    %d секций, %d вопросов\n", len(in.Guide.Sections), questions)

		if excluded := in.Subject.ExcludedTopics(); len(excluded) > 0 {
			fmt.Printf("   Ограничение согласия исключает темы: %v\n", excluded)
		}

		if len(notes.RisksAndEthics) > 0 || notes.ConsentNotes != "" || notes.StoryArc != "" {
			fmt.Printf("   Заметки: арка %q, рисков %d\n", notes.StoryArc, len(notes.RisksAndEthics))
			if notes.ConsentNotes != "" {
				fmt.Printf("   Заметки о согласии: %s\n", notes.ConsentNotes)
			}
		} else {
			fmt.Println("   Заметки режиссера отсутствуют")
		}
		return nil
	},
}
