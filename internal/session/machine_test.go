package session

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"interviewer-ai/internal/bank"
	"interviewer-ai/internal/config"
	"interviewer-ai/internal/followup"
)

// scriptedGenerator возвращает заранее заданные результаты по порядку
type scriptedGenerator struct {
	results []followup.Result
}

func (g *scriptedGenerator) RequestFollowup(ctx context.Context, fc followup.Context) followup.Result {
	if len(g.results) == 0 {
		return followup.Result{Fallback: true, Reason: "сценарий исчерпан"}
	}
	r := g.results[0]
	g.results = g.results[1:]
	return r
}

// gateGenerator блокируется внутри запроса, пока тест не откроет release
type gateGenerator struct {
	entered chan struct{}
	release chan struct{}
}

func (g *gateGenerator) RequestFollowup(ctx context.Context, fc followup.Context) followup.Result {
	close(g.entered)
	<-g.release
	return followup.Result{Fallback: true, Reason: "разблокирован"}
}

func testBank() *config.QuestionBank {
	return &config.QuestionBank{Entries: []config.QuestionBankEntry{
		{ID: "a", Prompt: "A?", Themes: []string{"детство"}, Followups: []string{"b"}},
		{ID: "b", Prompt: "B?", Themes: []string{"детство"}, Followups: []string{"a", "c"}},
		{ID: "c", Prompt: "C?", Themes: []string{"работа"}},
		{ID: "d", Prompt: "D?", Themes: []string{"район"}},
		{ID: "h", Prompt: "H?", Themes: []string{"район"}, Sensitivities: []string{"health"}},
	}}
}

func testGuide() *config.InterviewGuide {
	return &config.InterviewGuide{
		ProjectName: "Тест",
		Sections: []config.Section{
			{
				Title: "Первая",
				Questions: []config.GuideQuestion{
					{ID: "a", Source: "bank:a", Prompt: "A?"},
					{ID: "c1", Source: "custom", Prompt: "Свой вопрос?"},
				},
			},
			{
				Title: "Вторая",
				Questions: []config.GuideQuestion{
					{ID: "d", Source: "bank:d", Prompt: "D?"},
				},
			},
		},
	}
}

func newTestMachine(t *testing.T, consent config.ConsentStatus, guide *config.InterviewGuide, gen followup.Generator) *Machine {
	t.Helper()
	brief := &config.ProjectBrief{ProjectName: "Тест", Scope: "тест", Themes: []string{"детство"}}
	subject := &config.SubjectProfile{
		ID:      "subject-001",
		Consent: consent,
		Sensitivities: []config.Sensitivity{
			{Topic: "health", Severity: config.SeverityMedium},
		},
	}
	sess := New("sess-1", subject.ID, consent, guide)
	return NewMachine(sess, brief, subject, bank.NewIndex(testBank()), gen)
}

func kinds(events []Event) []EventKind {
	out := make([]EventKind, len(events))
	for i, ev := range events {
		out[i] = ev.Kind
	}
	return out
}

func TestFullSessionWithFallbackAndFollowup(t *testing.T) {
	gen := &scriptedGenerator{results: []followup.Result{
		{Fallback: true, Reason: "таймаут"},
		{Prompt: "Почему это было важно?"},
	}}
	m := newTestMachine(t, config.ConsentGranted, testGuide(), gen)
	require.NoError(t, m.Start())

	ctx := context.Background()

	// Вопрос a, ответ, follow-up через fallback (генератор отвалился)
	q, err := m.AskCurrent()
	require.NoError(t, err)
	require.Equal(t, "a", q.ID)
	require.NoError(t, m.RecordAnswer("первый ответ"))
	require.NoError(t, m.DecideFollowup(ctx, true))

	// Fallback вставил кандидата b сразу после a
	sess := m.Session()
	require.Len(t, sess.Guide.Sections[0].Questions, 3)
	inserted := sess.Guide.Sections[0].Questions[1]
	assert.Equal(t, "fb-4", inserted.ID)
	assert.Equal(t, "bank:b", inserted.Source)
	assert.Equal(t, "B?", inserted.Prompt)
	assert.Equal(t, Position{Section: 0, Question: 1}, sess.Pos)

	// Отвечаем на fallback, follow-up не нужен
	q, err = m.AskCurrent()
	require.NoError(t, err)
	require.Equal(t, "fb-4", q.ID)
	require.NoError(t, m.RecordAnswer("второй ответ"))
	require.NoError(t, m.DecideFollowup(ctx, false))
	assert.Equal(t, Position{Section: 0, Question: 2}, sess.Pos)

	// Custom вопрос, AI follow-up успешен
	q, err = m.AskCurrent()
	require.NoError(t, err)
	require.Equal(t, "c1", q.ID)
	require.NoError(t, m.RecordAnswer("третий ответ"))
	require.NoError(t, m.DecideFollowup(ctx, true))

	inserted = sess.Guide.Sections[0].Questions[3]
	assert.Equal(t, "ai-11", inserted.ID)
	assert.Equal(t, config.SourceCustom, inserted.Source)
	assert.Equal(t, "Почему это было важно?", inserted.Prompt)

	q, err = m.AskCurrent()
	require.NoError(t, err)
	require.Equal(t, "ai-11", q.ID)
	require.NoError(t, m.RecordAnswer("четвертый ответ"))
	require.NoError(t, m.DecideFollowup(ctx, false))

	// Последний вопрос второй секции; отказ от follow-up завершает сессию
	q, err = m.AskCurrent()
	require.NoError(t, err)
	require.Equal(t, "d", q.ID)
	require.NoError(t, m.RecordAnswer("пятый ответ"))
	require.NoError(t, m.DecideFollowup(ctx, false))

	assert.Equal(t, StateEnded, sess.State)
	assert.Equal(t, []EventKind{
		EventQuestionAsked, EventAnswerRecorded, EventFollowupRequested, EventFollowupFallback,
		EventQuestionAsked, EventAnswerRecorded, EventFollowupRequested,
		EventQuestionAsked, EventAnswerRecorded, EventFollowupRequested, EventFollowupReceived,
		EventQuestionAsked, EventAnswerRecorded, EventFollowupRequested,
		EventQuestionAsked, EventAnswerRecorded, EventFollowupRequested,
		EventSessionEnded,
	}, kinds(sess.Events))

	// Номера событий строго возрастают без пропусков
	for i, ev := range sess.Events {
		assert.Equal(t, i+1, ev.Seq)
	}
}

func TestStartDeclinedConsent(t *testing.T) {
	m := newTestMachine(t, config.ConsentDeclined, testGuide(), nil)

	err := m.Start()
	var consentErr *ConsentError
	require.ErrorAs(t, err, &consentErr)
	assert.Equal(t, "subject-001", consentErr.SubjectID)
	assert.Equal(t, StateNotStarted, m.Session().State)
}

func TestStartNotRecordedConsent(t *testing.T) {
	m := newTestMachine(t, config.ConsentNotRecorded, testGuide(), nil)

	var consentErr *ConsentError
	require.ErrorAs(t, m.Start(), &consentErr)
}

func TestStartTwice(t *testing.T) {
	m := newTestMachine(t, config.ConsentGranted, testGuide(), nil)
	require.NoError(t, m.Start())
	assert.Error(t, m.Start())
}

func TestRestrictedConsentSkipsForbiddenQuestion(t *testing.T) {
	guide := &config.InterviewGuide{Sections: []config.Section{{
		Title: "Секция",
		Questions: []config.GuideQuestion{
			{ID: "h", Source: "bank:h", Prompt: "H?"},
			{ID: "c1", Source: "custom", Prompt: "Свой?"},
		},
	}}}
	m := newTestMachine(t, config.ConsentRestricted, guide, nil)
	require.NoError(t, m.Start())

	q, err := m.AskCurrent()
	require.NoError(t, err)
	require.NotNil(t, q)
	assert.Equal(t, "c1", q.ID)

	sess := m.Session()
	assert.Equal(t, []EventKind{EventQuestionSkipped, EventQuestionAsked}, kinds(sess.Events))
	assert.Equal(t, "consent", sess.Events[0].Payload.Reason)
	assert.Equal(t, config.StatusSkipped, sess.Guide.Sections[0].Questions[0].Status)
}

func TestAllQuestionsForbiddenEndsSession(t *testing.T) {
	guide := &config.InterviewGuide{Sections: []config.Section{{
		Title: "Секция",
		Questions: []config.GuideQuestion{
			{ID: "h", Source: "bank:h", Prompt: "H?"},
		},
	}}}
	m := newTestMachine(t, config.ConsentRestricted, guide, nil)
	require.NoError(t, m.Start())

	q, err := m.AskCurrent()
	require.NoError(t, err)
	assert.Nil(t, q)

	sess := m.Session()
	assert.Equal(t, StateEnded, sess.State)
	assert.Equal(t, []EventKind{EventQuestionSkipped, EventSessionEnded}, kinds(sess.Events))
}

func TestRecordAnswerRejectsEmpty(t *testing.T) {
	m := newTestMachine(t, config.ConsentGranted, testGuide(), nil)
	require.NoError(t, m.Start())
	_, err := m.AskCurrent()
	require.NoError(t, err)

	assert.Error(t, m.RecordAnswer("   "))
	assert.Equal(t, StateAwaitingAnswer, m.Session().State)
	assert.Len(t, m.Session().Events, 1)

	require.NoError(t, m.RecordAnswer("  нормальный ответ  "))
	assert.Equal(t, "нормальный ответ", m.Session().LastAnswer())
}

func TestRecordAnswerWrongState(t *testing.T) {
	m := newTestMachine(t, config.ConsentGranted, testGuide(), nil)
	require.NoError(t, m.Start())
	assert.Error(t, m.RecordAnswer("рано"))
}

func TestDecideFollowupWithoutGeneratorFallsBack(t *testing.T) {
	m := newTestMachine(t, config.ConsentGranted, testGuide(), nil)
	require.NoError(t, m.Start())
	_, err := m.AskCurrent()
	require.NoError(t, err)
	require.NoError(t, m.RecordAnswer("ответ"))

	require.NoError(t, m.DecideFollowup(context.Background(), true))

	// Генератора нет, но fallback через банк все равно вставил кандидата
	sess := m.Session()
	assert.Equal(t, EventFollowupFallback, sess.Events[len(sess.Events)-1].Kind)
	assert.Len(t, sess.Guide.Sections[0].Questions, 3)
}

func TestFallbackRespectsConsentExclusions(t *testing.T) {
	// Из графа h исключается тегом health; кандидата нет — обычное продвижение
	bankWithForbidden := &config.QuestionBank{Entries: []config.QuestionBankEntry{
		{ID: "a", Prompt: "A?", Followups: []string{"h"}},
		{ID: "h", Prompt: "H?", Sensitivities: []string{"health"}},
	}}
	guide := &config.InterviewGuide{Sections: []config.Section{{
		Title: "Секция",
		Questions: []config.GuideQuestion{
			{ID: "a", Source: "bank:a", Prompt: "A?"},
			{ID: "c1", Source: "custom", Prompt: "Свой?"},
		},
	}}}
	subject := &config.SubjectProfile{
		ID:      "subject-001",
		Consent: config.ConsentRestricted,
		Sensitivities: []config.Sensitivity{
			{Topic: "health", Severity: config.SeverityHigh},
		},
	}
	brief := &config.ProjectBrief{ProjectName: "Тест", Scope: "тест"}
	sess := New("sess-1", subject.ID, subject.Consent, guide)
	m := NewMachine(sess, brief, subject, bank.NewIndex(bankWithForbidden), nil)

	require.NoError(t, m.Start())
	_, err := m.AskCurrent()
	require.NoError(t, err)
	require.NoError(t, m.RecordAnswer("ответ"))
	require.NoError(t, m.DecideFollowup(context.Background(), true))

	last := sess.Events[len(sess.Events)-1]
	assert.Equal(t, EventFollowupFallback, last.Kind)
	assert.Empty(t, last.Payload.Prompt)
	// Вставки не было, позиция продвинулась к следующему вопросу
	assert.Len(t, sess.Guide.Sections[0].Questions, 2)
	assert.Equal(t, Position{Section: 0, Question: 1}, sess.Pos)
	assert.Equal(t, StateAwaitingQuestion, sess.State)
}

func TestCustomQuestionFallbackAdvances(t *testing.T) {
	guide := &config.InterviewGuide{Sections: []config.Section{{
		Title: "Секция",
		Questions: []config.GuideQuestion{
			{ID: "c1", Source: "custom", Prompt: "Свой?"},
			{ID: "c2", Source: "custom", Prompt: "Еще свой?"},
		},
	}}}
	gen := &scriptedGenerator{results: []followup.Result{{Fallback: true, Reason: "недоступен"}}}
	m := newTestMachine(t, config.ConsentGranted, guide, gen)
	require.NoError(t, m.Start())
	_, err := m.AskCurrent()
	require.NoError(t, err)
	require.NoError(t, m.RecordAnswer("ответ"))

	// Для custom вопроса банк не ищется: молчаливое продвижение вперед
	require.NoError(t, m.DecideFollowup(context.Background(), true))
	sess := m.Session()
	assert.Len(t, sess.Guide.Sections[0].Questions, 2)
	assert.Equal(t, Position{Section: 0, Question: 1}, sess.Pos)
}

func TestPauseResume(t *testing.T) {
	m := newTestMachine(t, config.ConsentGranted, testGuide(), nil)
	require.NoError(t, m.Start())

	require.NoError(t, m.Pause())
	assert.Equal(t, StatePaused, m.Session().State)

	// Повторная пауза — no-op без нового события
	events := len(m.Session().Events)
	require.NoError(t, m.Pause())
	assert.Len(t, m.Session().Events, events)

	require.NoError(t, m.Resume())
	assert.Equal(t, StateAwaitingQuestion, m.Session().State)

	// Resume без паузы — тоже no-op
	events = len(m.Session().Events)
	require.NoError(t, m.Resume())
	assert.Len(t, m.Session().Events, events)
}

func TestPauseRestoresPriorState(t *testing.T) {
	m := newTestMachine(t, config.ConsentGranted, testGuide(), nil)
	require.NoError(t, m.Start())
	_, err := m.AskCurrent()
	require.NoError(t, err)

	require.NoError(t, m.Pause())
	require.NoError(t, m.Resume())
	assert.Equal(t, StateAwaitingAnswer, m.Session().State)
	require.NoError(t, m.RecordAnswer("ответ после паузы"))
}

func TestPauseBeforeStart(t *testing.T) {
	m := newTestMachine(t, config.ConsentGranted, testGuide(), nil)
	assert.Error(t, m.Pause())
}

func TestConcurrentTransitionRejected(t *testing.T) {
	gen := &gateGenerator{entered: make(chan struct{}), release: make(chan struct{})}
	m := newTestMachine(t, config.ConsentGranted, testGuide(), gen)
	require.NoError(t, m.Start())
	_, err := m.AskCurrent()
	require.NoError(t, err)
	require.NoError(t, m.RecordAnswer("ответ"))

	done := make(chan error, 1)
	go func() {
		done <- m.DecideFollowup(context.Background(), true)
	}()
	<-gen.entered

	// Переход выполняется — параллельная попытка отклоняется, не ждет
	var busyErr *BusyError
	require.ErrorAs(t, m.Pause(), &busyErr)
	assert.Equal(t, "sess-1", busyErr.SessionID)

	close(gen.release)
	require.NoError(t, <-done)
}

func TestApplyRejectsAfterEnded(t *testing.T) {
	sess := New("sess-1", "subject-001", config.ConsentGranted, testGuide())
	sess.State = StateAwaitingQuestion
	require.NoError(t, sess.Apply(Event{Seq: 1, Kind: EventSessionEnded}))
	assert.Error(t, sess.Apply(Event{Seq: 2, Kind: EventQuestionAsked}))
}

func TestApplyRejectsSeqGap(t *testing.T) {
	sess := New("sess-1", "subject-001", config.ConsentGranted, testGuide())
	sess.State = StateAwaitingQuestion
	err := sess.Apply(Event{Seq: 3, Kind: EventQuestionAsked})
	assert.Error(t, err)
}

func TestStatusTransitionsForwardOnly(t *testing.T) {
	sess := New("sess-1", "subject-001", config.ConsentGranted, testGuide())
	sess.State = StateAwaitingQuestion
	require.NoError(t, sess.Apply(Event{Seq: 1, Kind: EventQuestionAsked, Payload: Payload{QuestionID: "a"}}))

	// asked -> skipped недопустим
	err := sess.Apply(Event{Seq: 2, Kind: EventQuestionSkipped, Payload: Payload{QuestionID: "a"}})
	assert.Error(t, err)
}

func TestSnapshotGuideIsolatedFromTemplate(t *testing.T) {
	template := testGuide()
	template.Sections[0].Questions[0].Status = config.StatusAnswered

	sess := New("sess-1", "subject-001", config.ConsentGranted, template)
	// Снапшот сбрасывает статусы и не разделяет память с шаблоном
	assert.Equal(t, config.StatusPending, sess.Guide.Sections[0].Questions[0].Status)

	sess.Guide.Sections[0].Questions[0].Prompt = "изменен"
	assert.Equal(t, "A?", template.Sections[0].Questions[0].Prompt)
}
