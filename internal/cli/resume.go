package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"interviewer-ai/internal/bank"
	"interviewer-ai/internal/config"
	"interviewer-ai/internal/followup"
	"interviewer-ai/internal/metrics"
	"interviewer-ai/internal/session"
	"interviewer-ai/internal/transcript"
)

var resumeCmd = &cobra.Command{
	Use:   "resume <session-id>",
	Short: "Восстановить прерванную сессию из журнала",
	Args:  cobra.ExactArgs(1),
	RunE:  runResume,
}

func runResume(cmd *cobra.Command, args []string) error {
	inputs, err := loadInputs()
	if err != nil {
		return err
	}
	app := config.LoadAppConfig()

	sess, w, err := transcript.Resume(app.Sessions.Dir, args[0])
	if err != nil {
		return err
	}
	defer w.Close()

	if sess.State == session.StateEnded {
		return fmt.Errorf("сессия %s уже завершена", sess.ID)
	}
	if sess.SubjectID != inputs.Subject.ID {
		return fmt.Errorf("сессия %s принадлежит субъекту %s, загружен профиль %s",
			sess.ID, sess.SubjectID, inputs.Subject.ID)
	}

	ix := bank.NewIndex(inputs.Bank)
	gen := followup.NewOllamaGenerator(app.Ollama.URL, app.Ollama.Model, app.Ollama.Timeout)

	m := session.NewMachine(sess, inputs.Brief, inputs.Subject, ix, gen)
	m.SetFallbackDepth(app.Sessions.FallbackDepth)
	m.AttachTranscript(w)
	mt := metrics.NewMetrics()
	m.AttachMetrics(mt)

	fmt.Printf("▶️ Сессия %s восстановлена: %d событий, состояние %q\n",
		sess.ID, len(sess.Events), sess.State)

	if err := runInterviewLoop(m); err != nil {
		return err
	}
	printSessionStats(mt)
	return nil
}
