// inspect.go: команды просмотра сохраненных сессий.
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"interviewer-ai/internal/config"
	"interviewer-ai/internal/followup"
	"interviewer-ai/internal/session"
	"interviewer-ai/internal/transcript"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Показать сохраненные сессии",
	RunE: func(cmd *cobra.Command, args []string) error {
		app := config.LoadAppConfig()
		ids, err := transcript.List(app.Sessions.Dir)
		if err != nil {
			return err
		}
		if len(ids) == 0 {
			fmt.Println("Сохраненных сессий нет.")
			return nil
		}
		for _, id := range ids {
			sess, err := transcript.LoadSession(app.Sessions.Dir, id)
			if err != nil {
				fmt.Printf("%s\t(поврежден: %v)\n", id, err)
				continue
			}
			fmt.Printf("%s\t%s\t%d событий\t%s\n", sess.ID, sess.State, len(sess.Events),
				sess.CreatedAt.Format("2006-01-02 15:04"))
		}
		return nil
	},
}

var showCmd = &cobra.Command{
	Use:   "show <session-id>",
	Short: "Показать журнал сессии",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := config.LoadAppConfig()
		sess, err := transcript.LoadSession(app.Sessions.Dir, args[0])
		if err != nil {
			return err
		}
		fmt.Printf("Сессия %s, субъект %s, состояние %q\n\n", sess.ID, sess.SubjectID, sess.State)
		for _, ev := range sess.Events {
			line := fmt.Sprintf("%4d  %s  %-20s", ev.Seq, ev.Timestamp.Format("15:04:05"), ev.Kind)
			switch ev.Kind {
			case session.EventQuestionAsked:
				line += "  " + ev.Payload.Prompt
			case session.EventAnswerRecorded:
				line += "  " + ev.Payload.Answer
			case session.EventFollowupReceived, session.EventFollowupFallback:
				if ev.Payload.Prompt != "" {
					line += "  + " + ev.Payload.Prompt
				}
			case session.EventQuestionSkipped:
				line += "  " + ev.Payload.QuestionID + " (" + ev.Payload.Reason + ")"
			}
			fmt.Println(line)
		}
		return nil
	},
}

var summarizeCmd = &cobra.Command{
	Use:   "summarize <session-id>",
	Short: "Составить AI-саммари субъекта по ответам сессии",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := config.LoadAppConfig()
		sess, err := transcript.LoadSession(app.Sessions.Dir, args[0])
		if err != nil {
			return err
		}

		var answers []string
		for _, ev := range sess.Events {
			if ev.Kind == session.EventAnswerRecorded {
				answers = append(answers, fmt.Sprintf("Q: %s\nA: %s", questionPrompt(sess, ev), ev.Payload.Answer))
			}
		}
		if len(answers) == 0 {
			return fmt.Errorf("в сессии %s нет записанных ответов", sess.ID)
		}

		gen := followup.NewOllamaGenerator(app.Ollama.URL, app.Ollama.Model, app.Ollama.Timeout)
		summary, err := gen.SummarizeSubject(context.Background(), answers)
		if err != nil {
			return fmt.Errorf("саммари недоступно: %w", err)
		}
		fmt.Println(summary)
		return nil
	},
}

// questionPrompt находит текст вопроса, на который дан ответ
func questionPrompt(sess *session.Session, answer session.Event) string {
	pos := session.Position{Section: answer.Payload.Section, Question: answer.Payload.Question}
	if pos.Section < len(sess.Guide.Sections) {
		questions := sess.Guide.Sections[pos.Section].Questions
		if pos.Question < len(questions) {
			return questions[pos.Question].Prompt
		}
	}
	return answer.Payload.QuestionID
}
