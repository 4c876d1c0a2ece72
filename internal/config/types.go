package config

// ConsentStatus представляет статус согласия субъекта
type ConsentStatus string

const (
	ConsentNotRecorded ConsentStatus = "not_recorded"
	ConsentGranted     ConsentStatus = "granted"
	ConsentDeclined    ConsentStatus = "declined"
	ConsentRestricted  ConsentStatus = "restricted"
)

// Severity представляет уровень чувствительности темы
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// QuestionStatus представляет статус вопроса в гайде
type QuestionStatus string

const (
	StatusPending  QuestionStatus = "pending"
	StatusAsked    QuestionStatus = "asked"
	StatusSkipped  QuestionStatus = "skipped"
	StatusAnswered QuestionStatus = "answered"
)

// SourceCustom — источник вопроса, добавленного вручную или сгенерированного
const SourceCustom = "custom"

// ProjectBrief представляет бриф проекта
type ProjectBrief struct {
	ProjectName string   `yaml:"project_name" json:"project_name"`
	Scope       string   `yaml:"scope" json:"scope"`
	Goals       []string `yaml:"goals" json:"goals"`
	Themes      []string `yaml:"themes" json:"themes"`
	Constraints []string `yaml:"constraints" json:"constraints"`
}

// Sensitivity представляет чувствительную тему субъекта с уровнем серьезности
type Sensitivity struct {
	Topic    string   `yaml:"topic" json:"topic"`
	Severity Severity `yaml:"severity" json:"severity"`
}

// SubjectProfile представляет профиль субъекта интервью
type SubjectProfile struct {
	ID            string        `yaml:"id" json:"id"`
	Name          string        `yaml:"name" json:"name"`
	PreferredName string        `yaml:"preferred_name,omitempty" json:"preferred_name,omitempty"`
	Sensitivities []Sensitivity `yaml:"sensitivities" json:"sensitivities"`
	AccessNotes   string        `yaml:"access_notes,omitempty" json:"access_notes,omitempty"`
	Consent       ConsentStatus `yaml:"consent" json:"consent"`
}

// QuestionBankEntry представляет переиспользуемый вопрос из банка
type QuestionBankEntry struct {
	ID            string   `yaml:"id" json:"id"`
	Prompt        string   `yaml:"prompt" json:"prompt"`
	Themes        []string `yaml:"themes" json:"themes"`
	Sensitivities []string `yaml:"sensitivities" json:"sensitivities"`
	Followups     []string `yaml:"followups,omitempty" json:"followups,omitempty"`
}

// QuestionBank представляет банк вопросов
type QuestionBank struct {
	Version string              `yaml:"version" json:"version"`
	Entries []QuestionBankEntry `yaml:"entries" json:"entries"`
}

// GuideQuestion представляет один вопрос гайда
type GuideQuestion struct {
	ID     string         `yaml:"id" json:"id"`
	Source string         `yaml:"source" json:"source"`
	Prompt string         `yaml:"prompt" json:"prompt"`
	Notes  []string       `yaml:"notes,omitempty" json:"notes,omitempty"`
	Status QuestionStatus `yaml:"status,omitempty" json:"status,omitempty"`
}

// Section представляет секцию гайда интервью
type Section struct {
	Title     string          `yaml:"title" json:"title"`
	Intent    string          `yaml:"intent,omitempty" json:"intent,omitempty"`
	Questions []GuideQuestion `yaml:"questions" json:"questions"`
}

// InterviewGuide представляет гайд интервью, подготовленный до сессии
type InterviewGuide struct {
	ProjectName   string    `yaml:"project_name,omitempty" json:"project_name,omitempty"`
	Interviewer   string    `yaml:"interviewer,omitempty" json:"interviewer,omitempty"`
	InterviewDate string    `yaml:"interview_date,omitempty" json:"interview_date,omitempty"`
	Location      string    `yaml:"location,omitempty" json:"location,omitempty"`
	Sections      []Section `yaml:"sections" json:"sections"`
}

// DirectorNotes представляет заметки режиссера/продюсера
type DirectorNotes struct {
	StoryArc        string   `yaml:"story_arc,omitempty" json:"story_arc,omitempty"`
	SceneBeats      []string `yaml:"scene_beats,omitempty" json:"scene_beats,omitempty"`
	VisualMotifs    []string `yaml:"visual_motifs,omitempty" json:"visual_motifs,omitempty"`
	RisksAndEthics  []string `yaml:"risks_and_ethics,omitempty" json:"risks_and_ethics,omitempty"`
	ConsentNotes    string   `yaml:"consent_notes,omitempty" json:"consent_notes,omitempty"`
	ProductionNotes string   `yaml:"production_notes,omitempty" json:"production_notes,omitempty"`
	OpenQuestions   []string `yaml:"open_questions,omitempty" json:"open_questions,omitempty"`
}

// Inputs объединяет четыре конфигурационных документа одного запуска
type Inputs struct {
	Brief   *ProjectBrief
	Subject *SubjectProfile
	Guide   *InterviewGuide
	Bank    *QuestionBank
}

// BankID возвращает id записи банка, если источник вопроса — банк
func (q *GuideQuestion) BankID() (string, bool) {
	const prefix = "bank:"
	if len(q.Source) > len(prefix) && q.Source[:len(prefix)] == prefix {
		return q.Source[len(prefix):], true
	}
	return "", false
}

// BankSource формирует значение source для вопроса из банка
func BankSource(entryID string) string {
	return "bank:" + entryID
}

// Rank возвращает числовой ранг серьезности для сравнения уровней
func (s Severity) Rank() int {
	switch s {
	case SeverityLow:
		return 1
	case SeverityMedium:
		return 2
	case SeverityHigh:
		return 3
	}
	return 0
}

// Allows сообщает, разрешает ли статус согласия начало сессии
func (c ConsentStatus) Allows() bool {
	return c == ConsentGranted || c == ConsentRestricted
}

// ExcludedTopics возвращает набор тем, запрещенных статусом согласия.
// При consent=restricted исключаются темы серьезности medium и high,
// при granted ограничений нет.
func (p *SubjectProfile) ExcludedTopics() []string {
	if p.Consent != ConsentRestricted {
		return nil
	}
	var topics []string
	for _, s := range p.Sensitivities {
		if s.Severity.Rank() >= SeverityMedium.Rank() {
			topics = append(topics, s.Topic)
		}
	}
	return topics
}
