package cli

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"interviewer-ai/internal/bank"
	"interviewer-ai/internal/config"
	"interviewer-ai/internal/followup"
	"interviewer-ai/internal/metrics"
	"interviewer-ai/internal/session"
	"interviewer-ai/internal/transcript"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Начать новую сессию интервью",
	RunE:  runStart,
}

func runStart(cmd *cobra.Command, args []string) error {
	inputs, err := loadInputs()
	if err != nil {
		return err
	}
	app := config.LoadAppConfig()

	sess := session.New(uuid.New().String(), inputs.Subject.ID, inputs.Subject.Consent, inputs.Guide)
	ix := bank.NewIndex(inputs.Bank)
	gen := followup.NewOllamaGenerator(app.Ollama.URL, app.Ollama.Model, app.Ollama.Timeout)

	m := session.NewMachine(sess, inputs.Brief, inputs.Subject, ix, gen)
	m.SetFallbackDepth(app.Sessions.FallbackDepth)
	mt := metrics.NewMetrics()
	m.AttachMetrics(mt)

	if err := m.Start(); err != nil {
		var consentErr *session.ConsentError
		if errors.As(err, &consentErr) {
			return fmt.Errorf("%w\nИсправьте поле consent в %s и запустите снова", consentErr, subjectPath)
		}
		return err
	}

	w, err := transcript.Create(app.Sessions.Dir, sess)
	if err != nil {
		return err
	}
	defer w.Close()
	m.AttachTranscript(w)

	fmt.Printf("🎬 Сессия %s начата (проект: %s, субъект: %s)\n",
		sess.ID, inputs.Brief.ProjectName, inputs.Subject.Name)
	fmt.Printf("📼 Журнал: %s\n", w.Path())

	if err := runInterviewLoop(m); err != nil {
		return err
	}
	printSessionStats(mt)
	return nil
}

func printSessionStats(mt *metrics.Metrics) {
	snap := mt.GetSnapshot()
	fmt.Printf("\n📊 Статистика: вопросов %d, ответов %d, follow-up запрошено %d (AI %d, fallback %d)\n",
		snap.QuestionsAsked, snap.AnswersRecorded,
		snap.FollowupsRequested, snap.FollowupsGenerated, snap.FollowupFallbacks)
}
