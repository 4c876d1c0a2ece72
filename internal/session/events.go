package session

import "time"

// State представляет состояние сессии интервью
type State string

const (
	StateNotStarted               State = "not_started"
	StateAwaitingQuestion         State = "awaiting_question"
	StateAwaitingAnswer           State = "awaiting_answer"
	StateAwaitingFollowupDecision State = "awaiting_followup_decision"
	StatePaused                   State = "paused"
	StateEnded                    State = "ended"
)

// EventKind представляет тип события в журнале сессии
type EventKind string

const (
	EventQuestionAsked     EventKind = "question_asked"
	EventAnswerRecorded    EventKind = "answer_recorded"
	EventFollowupRequested EventKind = "followup_requested"
	EventFollowupReceived  EventKind = "followup_received"
	EventFollowupFallback  EventKind = "followup_fallback"
	EventQuestionSkipped   EventKind = "question_skipped"
	EventSessionPaused     EventKind = "session_paused"
	EventSessionResumed    EventKind = "session_resumed"
	EventSessionEnded      EventKind = "session_ended"
)

// Position задает текущую позицию в гайде: индекс секции и вопроса
type Position struct {
	Section  int `json:"section"`
	Question int `json:"question"`
}

// Payload содержит специфичные для типа события поля.
// Незаполненные поля опускаются при сериализации.
type Payload struct {
	Section    int    `json:"section,omitempty"`
	Question   int    `json:"question,omitempty"`
	QuestionID string `json:"question_id,omitempty"`
	Prompt     string `json:"prompt,omitempty"`
	Source     string `json:"source,omitempty"`
	Answer     string `json:"answer,omitempty"`
	Use        bool   `json:"use,omitempty"`
	Reason     string `json:"reason,omitempty"`
	PriorState State  `json:"prior_state,omitempty"`
}

// Event представляет одну запись журнала сессии. Номера Seq строго
// возрастают без пропусков, начиная с 1.
type Event struct {
	Seq       int       `json:"seq"`
	Timestamp time.Time `json:"timestamp"`
	Kind      EventKind `json:"kind"`
	Payload   Payload   `json:"payload"`
}
