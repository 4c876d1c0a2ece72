package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"interviewer-ai/internal/session"
)

// runInterviewLoop ведет диалог с оператором до завершения или паузы сессии.
// Каждая команда оператора отображается в один переход машины состояний.
func runInterviewLoop(m *session.Machine) error {
	scanner := bufio.NewScanner(os.Stdin)

	for {
		switch m.Session().State {
		case session.StateAwaitingQuestion:
			q, err := m.AskCurrent()
			if err != nil {
				return err
			}
			if q == nil {
				// Pending вопросов не осталось, сессия завершена
				continue
			}
			fmt.Printf("\n❓ Вопрос [%s]: %s\n", q.ID, q.Prompt)

		case session.StateAwaitingAnswer:
			fmt.Print("Ответ (или /pause): ")
			if !scanner.Scan() {
				return m.Pause()
			}
			text := strings.TrimSpace(scanner.Text())
			if text == "/pause" {
				if err := m.Pause(); err != nil {
					return err
				}
				fmt.Printf("⏸ Сессия приостановлена. Продолжение: interviewer resume %s\n", m.Session().ID)
				return nil
			}
			if text == "" {
				fmt.Println("Пожалуйста, дайте ответ.")
				continue
			}
			if err := m.RecordAnswer(text); err != nil {
				return err
			}

		case session.StateAwaitingFollowupDecision:
			fmt.Print("Запросить AI follow-up? [y/N]: ")
			use := false
			if scanner.Scan() {
				answer := strings.ToLower(strings.TrimSpace(scanner.Text()))
				use = answer == "y" || answer == "yes" || answer == "д" || answer == "да"
			}
			if err := m.DecideFollowup(context.Background(), use); err != nil {
				return err
			}

		case session.StatePaused:
			if err := m.Resume(); err != nil {
				return err
			}

		case session.StateEnded:
			fmt.Printf("\n✅ Интервью завершено. Журнал: %d событий, ID: %s\n",
				len(m.Session().Events), m.Session().ID)
			return nil

		default:
			return fmt.Errorf("неожиданное состояние сессии %q", m.Session().State)
		}
	}
}
