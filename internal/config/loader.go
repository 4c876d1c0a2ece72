package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ConfigError описывает ошибку валидации конфигурации: файл и поле,
// вызвавшие проблему, и причину
type ConfigError struct {
	File   string
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("конфигурация %s: поле %q: %s", e.File, e.Field, e.Reason)
}

func newConfigError(file, field, reason string) *ConfigError {
	return &ConfigError{File: file, Field: field, Reason: reason}
}

// loadYAML читает и парсит YAML файл в переданную структуру
func loadYAML(filename string, out interface{}) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("ошибка чтения файла %s: %w", filename, err)
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("ошибка парсинга YAML %s: %w", filename, err)
	}
	return nil
}

// LoadProjectBrief загружает и валидирует бриф проекта
func LoadProjectBrief(filename string) (*ProjectBrief, error) {
	var brief ProjectBrief
	if err := loadYAML(filename, &brief); err != nil {
		return nil, err
	}
	if brief.Scope == "" {
		return nil, newConfigError(filename, "scope", "не может быть пустым")
	}
	return &brief, nil
}

// LoadSubjectProfile загружает и валидирует профиль субъекта
func LoadSubjectProfile(filename string) (*SubjectProfile, error) {
	var profile SubjectProfile
	if err := loadYAML(filename, &profile); err != nil {
		return nil, err
	}
	if profile.ID == "" {
		return nil, newConfigError(filename, "id", "не может быть пустым")
	}
	switch profile.Consent {
	case ConsentNotRecorded, ConsentGranted, ConsentDeclined, ConsentRestricted:
	case "":
		profile.Consent = ConsentNotRecorded
	default:
		return nil, newConfigError(filename, "consent",
			fmt.Sprintf("неизвестный статус согласия %q", profile.Consent))
	}
	for i, s := range profile.Sensitivities {
		field := fmt.Sprintf("sensitivities[%d]", i)
		if !IsKnownSensitivity(s.Topic) {
			return nil, newConfigError(filename, field+".topic",
				fmt.Sprintf("тег %q отсутствует в словаре чувствительности", s.Topic))
		}
		if s.Severity.Rank() == 0 {
			return nil, newConfigError(filename, field+".severity",
				fmt.Sprintf("неизвестный уровень %q", s.Severity))
		}
	}
	return &profile, nil
}

// LoadQuestionBank загружает и валидирует банк вопросов
func LoadQuestionBank(filename string) (*QuestionBank, error) {
	var bank QuestionBank
	if err := loadYAML(filename, &bank); err != nil {
		return nil, err
	}
	seen := make(map[string]bool, len(bank.Entries))
	for i, entry := range bank.Entries {
		field := fmt.Sprintf("entries[%d]", i)
		if entry.ID == "" {
			return nil, newConfigError(filename, field+".id", "не может быть пустым")
		}
		if seen[entry.ID] {
			return nil, newConfigError(filename, field+".id",
				fmt.Sprintf("дублирующийся id %q", entry.ID))
		}
		seen[entry.ID] = true
		if entry.Prompt == "" {
			return nil, newConfigError(filename, field+".prompt", "не может быть пустым")
		}
		for _, tag := range entry.Sensitivities {
			if !IsKnownSensitivity(tag) {
				return nil, newConfigError(filename, field+".sensitivities",
					fmt.Sprintf("тег %q отсутствует в словаре чувствительности", tag))
			}
		}
	}
	// Ссылки follow-up должны указывать на существующие записи
	for i, entry := range bank.Entries {
		for _, ref := range entry.Followups {
			if !seen[ref] {
				return nil, newConfigError(filename, fmt.Sprintf("entries[%d].followups", i),
					fmt.Sprintf("ссылка на несуществующую запись %q", ref))
			}
		}
	}
	return &bank, nil
}

// LoadInterviewGuide загружает и валидирует гайд интервью.
// Все источники bank:<id> проверяются на существование в банке.
func LoadInterviewGuide(filename string, bank *QuestionBank) (*InterviewGuide, error) {
	var guide InterviewGuide
	if err := loadYAML(filename, &guide); err != nil {
		return nil, err
	}
	if len(guide.Sections) == 0 {
		return nil, newConfigError(filename, "sections", "гайд без секций недопустим")
	}
	known := make(map[string]bool)
	if bank != nil {
		for _, entry := range bank.Entries {
			known[entry.ID] = true
		}
	}
	for si, section := range guide.Sections {
		for qi, q := range section.Questions {
			field := fmt.Sprintf("sections[%d].questions[%d]", si, qi)
			if q.Prompt == "" {
				return nil, newConfigError(filename, field+".prompt", "не может быть пустым")
			}
			if id, ok := q.BankID(); ok {
				if !known[id] {
					return nil, newConfigError(filename, field+".source",
						fmt.Sprintf("запись банка %q не найдена", id))
				}
			} else if q.Source != SourceCustom {
				return nil, newConfigError(filename, field+".source",
					fmt.Sprintf("источник должен быть %q или bank:<id>, получен %q", SourceCustom, q.Source))
			}
			switch q.Status {
			case "", StatusPending, StatusAsked, StatusSkipped, StatusAnswered:
			default:
				return nil, newConfigError(filename, field+".status",
					fmt.Sprintf("неизвестный статус %q", q.Status))
			}
		}
	}
	return &guide, nil
}

// LoadDirectorNotes загружает заметки режиссера; отсутствие файла не ошибка
func LoadDirectorNotes(filename string) (*DirectorNotes, error) {
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return &DirectorNotes{}, nil
	}
	var notes DirectorNotes
	if err := loadYAML(filename, &notes); err != nil {
		return nil, err
	}
	return &notes, nil
}

// InputPaths задает пути к четырем конфигурационным документам
type InputPaths struct {
	Brief   string
	Subject string
	Guide   string
	Bank    string
}

// LoadAll загружает все четыре документа и возвращает их одним объектом
func LoadAll(paths InputPaths) (*Inputs, error) {
	brief, err := LoadProjectBrief(paths.Brief)
	if err != nil {
		return nil, err
	}
	subject, err := LoadSubjectProfile(paths.Subject)
	if err != nil {
		return nil, err
	}
	bank, err := LoadQuestionBank(paths.Bank)
	if err != nil {
		return nil, err
	}
	guide, err := LoadInterviewGuide(paths.Guide, bank)
	if err != nil {
		return nil, err
	}
	return &Inputs{Brief: brief, Subject: subject, Guide: guide, Bank: bank}, nil
}
