// Package cli содержит Cobra-команды движка интервью.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"interviewer-ai/internal/config"
)

var (
	briefPath   string
	subjectPath string
	guidePath   string
	bankPath    string
	notesPath   string
)

var rootCmd = &cobra.Command{
	Use:   "interviewer",
	Short: "Локальный движок сессий интервью",
	Long: `Interviewer AI проводит структурированное интервью по подготовленному
гайду: выдает вопросы, записывает ответы, по запросу получает AI follow-up
от локального inference-сервиса и ведет долговечный журнал сессии,
по которому прерванная сессия восстанавливается в точности.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute запускает корневую команду. Вызывается из main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&briefPath, "brief", "config/project_brief.yaml", "Путь к брифу проекта")
	rootCmd.PersistentFlags().StringVar(&subjectPath, "subject", "config/subject_profile.yaml", "Путь к профилю субъекта")
	rootCmd.PersistentFlags().StringVar(&guidePath, "guide", "config/interview_guide.yaml", "Путь к гайду интервью")
	rootCmd.PersistentFlags().StringVar(&bankPath, "bank", "config/question_bank.yaml", "Путь к банку вопросов")
	rootCmd.PersistentFlags().StringVar(&notesPath, "notes", "config/director_notes.yaml", "Путь к заметкам режиссера (необязательный)")

	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(guideCmd)
	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(resumeCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(summarizeCmd)
}

func loadInputs() (*config.Inputs, error) {
	return config.LoadAll(config.InputPaths{
		Brief:   briefPath,
		Subject: subjectPath,
		Guide:   guidePath,
		Bank:    bankPath,
	})
}
