package metrics

import (
	"sync"
	"time"
)

// Metrics содержит счетчики работы движка интервью
type Metrics struct {
	mu                 sync.RWMutex
	sessionsStarted    int64
	sessionsCompleted  int64
	questionsAsked     int64
	answersRecorded    int64
	followupsRequested int64
	followupsGenerated int64
	followupFallbacks  int64
	lastUpdateTime     time.Time
}

// Snapshot — копия значений счетчиков на момент вызова
type Snapshot struct {
	SessionsStarted    int64
	SessionsCompleted  int64
	QuestionsAsked     int64
	AnswersRecorded    int64
	FollowupsRequested int64
	FollowupsGenerated int64
	FollowupFallbacks  int64
	LastUpdateTime     time.Time
}

func NewMetrics() *Metrics {
	return &Metrics{
		lastUpdateTime: time.Now(),
	}
}

func (m *Metrics) IncrementSessionsStarted() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessionsStarted++
	m.lastUpdateTime = time.Now()
}

func (m *Metrics) IncrementSessionsCompleted() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessionsCompleted++
	m.lastUpdateTime = time.Now()
}

func (m *Metrics) IncrementQuestionsAsked() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.questionsAsked++
	m.lastUpdateTime = time.Now()
}

func (m *Metrics) IncrementAnswersRecorded() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.answersRecorded++
	m.lastUpdateTime = time.Now()
}

func (m *Metrics) IncrementFollowupsRequested() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.followupsRequested++
	m.lastUpdateTime = time.Now()
}

func (m *Metrics) IncrementFollowupsGenerated() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.followupsGenerated++
	m.lastUpdateTime = time.Now()
}

func (m *Metrics) IncrementFollowupFallbacks() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.followupFallbacks++
	m.lastUpdateTime = time.Now()
}

// GetSnapshot возвращает копию текущих значений
func (m *Metrics) GetSnapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return Snapshot{
		SessionsStarted:    m.sessionsStarted,
		SessionsCompleted:  m.sessionsCompleted,
		QuestionsAsked:     m.questionsAsked,
		AnswersRecorded:    m.answersRecorded,
		FollowupsRequested: m.followupsRequested,
		FollowupsGenerated: m.followupsGenerated,
		FollowupFallbacks:  m.followupFallbacks,
		LastUpdateTime:     m.lastUpdateTime,
	}
}
