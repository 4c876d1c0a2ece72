package session

import (
	"fmt"
	"time"

	"interviewer-ai/internal/config"
)

// Session представляет один прогон интервью: замороженная копия гайда,
// журнал событий и текущая позиция. Все изменения после старта проходят
// через Apply, поэтому повторное проигрывание журнала восстанавливает
// состояние в точности.
type Session struct {
	ID        string
	SubjectID string
	CreatedAt time.Time
	Consent   config.ConsentStatus
	Guide     *config.InterviewGuide
	Pos       Position
	State     State
	Events    []Event

	lastAnswer  string
	resumeState State
}

// New создает сессию с глубокой копией гайда. Статусы всех вопросов
// сбрасываются в pending: прогресс живет в журнале событий, а не в
// общем шаблоне гайда.
func New(id, subjectID string, consent config.ConsentStatus, guide *config.InterviewGuide) *Session {
	return &Session{
		ID:        id,
		SubjectID: subjectID,
		CreatedAt: time.Now().UTC(),
		Consent:   consent,
		Guide:     snapshotGuide(guide),
		State:     StateNotStarted,
	}
}

// snapshotGuide делает глубокую копию гайда со сброшенными статусами
func snapshotGuide(guide *config.InterviewGuide) *config.InterviewGuide {
	snap := &config.InterviewGuide{
		ProjectName:   guide.ProjectName,
		Interviewer:   guide.Interviewer,
		InterviewDate: guide.InterviewDate,
		Location:      guide.Location,
		Sections:      make([]config.Section, len(guide.Sections)),
	}
	for i, section := range guide.Sections {
		copied := config.Section{
			Title:     section.Title,
			Intent:    section.Intent,
			Questions: make([]config.GuideQuestion, len(section.Questions)),
		}
		for j, q := range section.Questions {
			cq := q
			cq.Status = config.StatusPending
			cq.Notes = append([]string(nil), q.Notes...)
			copied.Questions[j] = cq
		}
		snap.Sections[i] = copied
	}
	return snap
}

// CurrentQuestion возвращает вопрос на текущей позиции
func (s *Session) CurrentQuestion() *config.GuideQuestion {
	return s.questionAt(s.Pos)
}

func (s *Session) questionAt(pos Position) *config.GuideQuestion {
	if pos.Section < 0 || pos.Section >= len(s.Guide.Sections) {
		return nil
	}
	section := &s.Guide.Sections[pos.Section]
	if pos.Question < 0 || pos.Question >= len(section.Questions) {
		return nil
	}
	return &section.Questions[pos.Question]
}

// nextPending ищет первый pending вопрос строго после pos: сначала остаток
// текущей секции, затем следующие секции с начала
func (s *Session) nextPending(pos Position) (Position, bool) {
	section := pos.Section
	question := pos.Question + 1
	for ; section < len(s.Guide.Sections); section++ {
		for ; question < len(s.Guide.Sections[section].Questions); question++ {
			if s.Guide.Sections[section].Questions[question].Status == config.StatusPending {
				return Position{Section: section, Question: question}, true
			}
		}
		question = 0
	}
	return Position{}, false
}

// LastAnswer возвращает текст последнего записанного ответа
func (s *Session) LastAnswer() string {
	return s.lastAnswer
}

// NextSeq возвращает номер следующего события журнала
func (s *Session) NextSeq() int {
	return len(s.Events) + 1
}

// Apply применяет событие к сессии. Это единственный путь изменения
// состояния после старта: живые переходы конструируют события и проходят
// через Apply точно так же, как повторное проигрывание журнала при
// восстановлении.
func (s *Session) Apply(ev Event) error {
	if s.State == StateEnded {
		return fmt.Errorf("сессия %s завершена: событие %s недопустимо", s.ID, ev.Kind)
	}
	if ev.Seq != s.NextSeq() {
		return fmt.Errorf("сессия %s: ожидался номер события %d, получен %d", s.ID, s.NextSeq(), ev.Seq)
	}

	switch ev.Kind {
	case EventQuestionAsked:
		pos := Position{Section: ev.Payload.Section, Question: ev.Payload.Question}
		if err := s.setStatus(pos, config.StatusPending, config.StatusAsked); err != nil {
			return err
		}
		s.Pos = pos
		s.State = StateAwaitingAnswer

	case EventAnswerRecorded:
		if err := s.setStatus(s.Pos, config.StatusAsked, config.StatusAnswered); err != nil {
			return err
		}
		s.lastAnswer = ev.Payload.Answer
		s.State = StateAwaitingFollowupDecision

	case EventQuestionSkipped:
		pos := Position{Section: ev.Payload.Section, Question: ev.Payload.Question}
		if err := s.setStatus(pos, config.StatusPending, config.StatusSkipped); err != nil {
			return err
		}
		if next, ok := s.nextPending(pos); ok {
			s.Pos = next
		} else {
			s.Pos = pos
		}
		s.State = StateAwaitingQuestion

	case EventFollowupRequested:
		if !ev.Payload.Use {
			// Отказ от follow-up: переходим к следующему pending вопросу.
			// Если его нет, состояние не меняется — следом придет session_ended.
			if next, ok := s.nextPending(s.Pos); ok {
				s.Pos = next
				s.State = StateAwaitingQuestion
			}
		}

	case EventFollowupReceived, EventFollowupFallback:
		if ev.Payload.Prompt == "" {
			// Fallback без кандидата: обычное продвижение вперед
			if next, ok := s.nextPending(s.Pos); ok {
				s.Pos = next
				s.State = StateAwaitingQuestion
			}
			break
		}
		pos := Position{Section: ev.Payload.Section, Question: ev.Payload.Question}
		inserted := config.GuideQuestion{
			ID:     ev.Payload.QuestionID,
			Source: ev.Payload.Source,
			Prompt: ev.Payload.Prompt,
			Status: config.StatusPending,
		}
		if err := s.insertAfter(pos, inserted); err != nil {
			return err
		}
		s.Pos = Position{Section: pos.Section, Question: pos.Question + 1}
		s.State = StateAwaitingQuestion

	case EventSessionPaused:
		if s.State == StatePaused {
			break
		}
		s.resumeState = ev.Payload.PriorState
		s.State = StatePaused

	case EventSessionResumed:
		if s.State != StatePaused {
			break
		}
		restored := s.resumeState
		if restored == "" {
			restored = StateAwaitingQuestion
		}
		s.State = restored
		s.resumeState = ""

	case EventSessionEnded:
		s.State = StateEnded

	default:
		return fmt.Errorf("сессия %s: неизвестный тип события %q", s.ID, ev.Kind)
	}

	s.Events = append(s.Events, ev)
	return nil
}

// setStatus переводит статус вопроса строго вперед; любое другое изменение
// считается нарушением журнала
func (s *Session) setStatus(pos Position, from, to config.QuestionStatus) error {
	q := s.questionAt(pos)
	if q == nil {
		return fmt.Errorf("сессия %s: позиция %d/%d вне гайда", s.ID, pos.Section, pos.Question)
	}
	if q.Status != from {
		return fmt.Errorf("сессия %s: вопрос %s в статусе %q, переход в %q недопустим",
			s.ID, q.ID, q.Status, to)
	}
	q.Status = to
	return nil
}

// insertAfter вставляет вопрос сразу после pos внутри той же секции
func (s *Session) insertAfter(pos Position, q config.GuideQuestion) error {
	if pos.Section < 0 || pos.Section >= len(s.Guide.Sections) {
		return fmt.Errorf("сессия %s: секция %d вне гайда", s.ID, pos.Section)
	}
	section := &s.Guide.Sections[pos.Section]
	if pos.Question < 0 || pos.Question >= len(section.Questions) {
		return fmt.Errorf("сессия %s: позиция %d/%d вне гайда", s.ID, pos.Section, pos.Question)
	}
	at := pos.Question + 1
	section.Questions = append(section.Questions, config.GuideQuestion{})
	copy(section.Questions[at+1:], section.Questions[at:])
	section.Questions[at] = q
	return nil
}
