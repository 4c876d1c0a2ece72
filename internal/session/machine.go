package session

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"interviewer-ai/internal/bank"
	"interviewer-ai/internal/config"
	"interviewer-ai/internal/followup"
	"interviewer-ai/internal/metrics"
)

// Transcript описывает приемник событий. Машина — единственный писатель
// журнала сессии.
type Transcript interface {
	Append(ev Event) error
}

// Machine управляет прогрессом сессии. Одновременно выполняется не более
// одного перехода: параллельная попытка отклоняется с BusyError, а не
// ставится в очередь.
type Machine struct {
	mu sync.Mutex

	sess       *Session
	brief      *config.ProjectBrief
	subject    *config.SubjectProfile
	bank       *bank.Index
	gen        followup.Generator
	transcript Transcript
	metrics    *metrics.Metrics

	fallbackDepth int
}

// NewMachine создает машину состояний для сессии. Генератор follow-up
// может быть nil: тогда работает только fallback через банк вопросов.
func NewMachine(sess *Session, brief *config.ProjectBrief, subject *config.SubjectProfile, ix *bank.Index, gen followup.Generator) *Machine {
	return &Machine{
		sess:          sess,
		brief:         brief,
		subject:       subject,
		bank:          ix,
		gen:           gen,
		fallbackDepth: 2,
	}
}

// AttachTranscript подключает журнал сессии; каждое последующее событие
// записывается в него до возврата из перехода
func (m *Machine) AttachTranscript(t Transcript) {
	m.transcript = t
}

// AttachMetrics подключает счетчики
func (m *Machine) AttachMetrics(mt *metrics.Metrics) {
	m.metrics = mt
}

// SetFallbackDepth задает глубину обхода графа follow-up при fallback
func (m *Machine) SetFallbackDepth(depth int) {
	if depth > 0 {
		m.fallbackDepth = depth
	}
}

// Session возвращает управляемую сессию
func (m *Machine) Session() *Session {
	return m.sess
}

// Start запускает сессию. Требует загруженных брифа и профиля субъекта;
// согласие должно быть granted или restricted.
func (m *Machine) Start() error {
	if !m.mu.TryLock() {
		return &BusyError{SessionID: m.sess.ID}
	}
	defer m.mu.Unlock()

	if m.sess.State != StateNotStarted {
		return fmt.Errorf("сессия %s уже запущена (состояние %q)", m.sess.ID, m.sess.State)
	}
	if m.brief == nil || m.subject == nil {
		return fmt.Errorf("сессия %s: бриф проекта и профиль субъекта обязательны", m.sess.ID)
	}
	if !m.subject.Consent.Allows() {
		return &ConsentError{SubjectID: m.subject.ID, Status: m.subject.Consent}
	}

	m.sess.Consent = m.subject.Consent
	m.sess.Pos = Position{}
	m.sess.State = StateAwaitingQuestion
	if m.metrics != nil {
		m.metrics.IncrementSessionsStarted()
	}
	return nil
}

// AskCurrent выдает текущий вопрос. Вопросы, запрещенные ограничениями
// согласия, автоматически помечаются skipped; если pending вопросов не
// осталось, сессия завершается и возвращается nil.
func (m *Machine) AskCurrent() (*config.GuideQuestion, error) {
	if !m.mu.TryLock() {
		return nil, &BusyError{SessionID: m.sess.ID}
	}
	defer m.mu.Unlock()

	if m.sess.State != StateAwaitingQuestion {
		return nil, fmt.Errorf("сессия %s: вопрос нельзя выдать в состоянии %q", m.sess.ID, m.sess.State)
	}

	excluded := toSet(m.subject.ExcludedTopics())
	for {
		q := m.sess.CurrentQuestion()
		if q == nil || q.Status != config.StatusPending {
			// Pending вопросов не осталось — валидное завершение,
			// даже если не было ни одного ответа
			if err := m.emit(EventSessionEnded, Payload{Reason: "guide_exhausted"}); err != nil {
				return nil, err
			}
			m.markCompleted()
			return nil, nil
		}

		if m.isForbidden(q, excluded) {
			err := m.emit(EventQuestionSkipped, Payload{
				Section:    m.sess.Pos.Section,
				Question:   m.sess.Pos.Question,
				QuestionID: q.ID,
				Reason:     "consent",
			})
			if err != nil {
				return nil, err
			}
			continue
		}

		err := m.emit(EventQuestionAsked, Payload{
			Section:    m.sess.Pos.Section,
			Question:   m.sess.Pos.Question,
			QuestionID: q.ID,
			Prompt:     q.Prompt,
		})
		if err != nil {
			return nil, err
		}
		if m.metrics != nil {
			m.metrics.IncrementQuestionsAsked()
		}
		asked := *q
		return &asked, nil
	}
}

// RecordAnswer записывает ответ на заданный вопрос. Пустой текст отклоняется.
func (m *Machine) RecordAnswer(text string) error {
	if !m.mu.TryLock() {
		return &BusyError{SessionID: m.sess.ID}
	}
	defer m.mu.Unlock()

	if m.sess.State != StateAwaitingAnswer {
		return fmt.Errorf("сессия %s: ответ нельзя записать в состоянии %q", m.sess.ID, m.sess.State)
	}
	answer := strings.TrimSpace(text)
	if answer == "" {
		return fmt.Errorf("сессия %s: пустой ответ не записывается", m.sess.ID)
	}

	q := m.sess.CurrentQuestion()
	err := m.emit(EventAnswerRecorded, Payload{
		Section:    m.sess.Pos.Section,
		Question:   m.sess.Pos.Question,
		QuestionID: q.ID,
		Answer:     answer,
	})
	if err != nil {
		return err
	}
	if m.metrics != nil {
		m.metrics.IncrementAnswersRecorded()
	}
	return nil
}

// DecideFollowup решает, запрашивать ли follow-up после записанного ответа.
// При useFollowup=true вопрос запрашивается у генератора; сбой или таймаут
// генератора никогда не прерывает сессию — выполняется fallback через банк,
// а если кандидата нет, происходит обычное продвижение вперед.
func (m *Machine) DecideFollowup(ctx context.Context, useFollowup bool) error {
	if !m.mu.TryLock() {
		return &BusyError{SessionID: m.sess.ID}
	}
	defer m.mu.Unlock()

	if m.sess.State != StateAwaitingFollowupDecision {
		return fmt.Errorf("сессия %s: решение о follow-up нельзя принять в состоянии %q", m.sess.ID, m.sess.State)
	}

	q := m.sess.CurrentQuestion()
	answered := *q
	pos := m.sess.Pos

	err := m.emit(EventFollowupRequested, Payload{
		QuestionID: answered.ID,
		Use:        useFollowup,
	})
	if err != nil {
		return err
	}

	if !useFollowup {
		return m.endIfExhausted()
	}

	if m.metrics != nil {
		m.metrics.IncrementFollowupsRequested()
	}

	excluded := m.subject.ExcludedTopics()
	result := followup.Result{Fallback: true, Reason: "генератор не подключен"}
	if m.gen != nil {
		result = m.gen.RequestFollowup(ctx, followup.Context{
			Question: answered.Prompt,
			Answer:   m.sess.LastAnswer(),
			Avoid:    excluded,
		})
	}

	if !result.Fallback {
		err := m.emit(EventFollowupReceived, Payload{
			Section:    pos.Section,
			Question:   pos.Question,
			QuestionID: fmt.Sprintf("ai-%d", m.sess.NextSeq()),
			Source:     config.SourceCustom,
			Prompt:     result.Prompt,
		})
		if err != nil {
			return err
		}
		if m.metrics != nil {
			m.metrics.IncrementFollowupsGenerated()
		}
		return nil
	}

	// Fallback: для вопроса из банка ищем кандидата в графе follow-up;
	// для custom вопроса follow-up молча пропускается
	payload := Payload{Reason: result.Reason}
	if bankID, ok := answered.BankID(); ok && m.bank != nil {
		if cand, found := m.pickFallback(bankID, excluded); found {
			payload = Payload{
				Section:    pos.Section,
				Question:   pos.Question,
				QuestionID: fmt.Sprintf("fb-%d", m.sess.NextSeq()),
				Source:     config.BankSource(cand.ID),
				Prompt:     cand.Prompt,
				Reason:     result.Reason,
			}
		}
	}
	if err := m.emit(EventFollowupFallback, payload); err != nil {
		return err
	}
	if m.metrics != nil {
		m.metrics.IncrementFollowupFallbacks()
	}
	return m.endIfExhausted()
}

// Pause приостанавливает сессию. Повторная пауза — no-op.
// Из not_started пауза отклоняется: журнала еще нет, и возобновлять
// такую сессию было бы неоткуда.
func (m *Machine) Pause() error {
	if !m.mu.TryLock() {
		return &BusyError{SessionID: m.sess.ID}
	}
	defer m.mu.Unlock()

	switch m.sess.State {
	case StatePaused:
		return nil
	case StateEnded:
		return fmt.Errorf("сессия %s завершена: пауза недоступна", m.sess.ID)
	case StateNotStarted:
		return fmt.Errorf("сессия %s не запущена: пауза недоступна", m.sess.ID)
	}
	return m.emit(EventSessionPaused, Payload{PriorState: m.sess.State})
}

// Resume снимает паузу и возвращает сессию в состояние до паузы.
// Если сессия не на паузе — no-op.
func (m *Machine) Resume() error {
	if !m.mu.TryLock() {
		return &BusyError{SessionID: m.sess.ID}
	}
	defer m.mu.Unlock()

	if m.sess.State != StatePaused {
		return nil
	}
	return m.emit(EventSessionResumed, Payload{})
}

// emit строит событие со следующим номером, применяет его к сессии
// и записывает в журнал
func (m *Machine) emit(kind EventKind, payload Payload) error {
	ev := Event{
		Seq:       m.sess.NextSeq(),
		Timestamp: time.Now().UTC(),
		Kind:      kind,
		Payload:   payload,
	}
	if err := m.sess.Apply(ev); err != nil {
		return err
	}
	if m.transcript != nil {
		if err := m.transcript.Append(ev); err != nil {
			return fmt.Errorf("ошибка записи журнала сессии %s: %w", m.sess.ID, err)
		}
	}
	return nil
}

// endIfExhausted завершает сессию, если продвижение вперед не нашло
// pending вопроса
func (m *Machine) endIfExhausted() error {
	if m.sess.State == StateAwaitingQuestion {
		return nil
	}
	if err := m.emit(EventSessionEnded, Payload{Reason: "guide_exhausted"}); err != nil {
		return err
	}
	m.markCompleted()
	return nil
}

func (m *Machine) markCompleted() {
	if m.metrics != nil {
		m.metrics.IncrementSessionsCompleted()
	}
}

// pickFallback выбирает первого кандидата из графа follow-up, который не
// задевает исключенные темы и еще не присутствует в гайде сессии
func (m *Machine) pickFallback(bankID string, excluded []string) (config.QuestionBankEntry, bool) {
	used := make(map[string]bool)
	for _, section := range m.sess.Guide.Sections {
		for _, q := range section.Questions {
			if id, ok := q.BankID(); ok {
				used[id] = true
			}
		}
	}
	excludeSet := toSet(excluded)
	for _, cand := range m.bank.FollowupsOf(bankID, m.fallbackDepth) {
		if used[cand.ID] {
			continue
		}
		if tagsIntersect(cand.Sensitivities, excludeSet) {
			continue
		}
		return cand, true
	}
	return config.QuestionBankEntry{}, false
}

// isForbidden проверяет, задевает ли вопрос исключенные согласием темы.
// Теги чувствительности берутся из записи банка; custom вопросы тегов
// не имеют и не блокируются.
func (m *Machine) isForbidden(q *config.GuideQuestion, excluded map[string]bool) bool {
	if len(excluded) == 0 {
		return false
	}
	bankID, ok := q.BankID()
	if !ok || m.bank == nil {
		return false
	}
	entry, found := m.bank.Get(bankID)
	if !found {
		return false
	}
	return tagsIntersect(entry.Sensitivities, excluded)
}

func toSet(items []string) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, item := range items {
		set[item] = true
	}
	return set
}

func tagsIntersect(tags []string, set map[string]bool) bool {
	for _, tag := range tags {
		if set[tag] {
			return true
		}
	}
	return false
}
