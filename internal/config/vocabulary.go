package config

// Фиксированный словарь тегов чувствительности. Все теги в профиле субъекта
// и в банке вопросов обязаны входить в этот словарь.
var sensitivityVocabulary = []string{
	"addiction",
	"family",
	"finances",
	"grief",
	"health",
	"legal",
	"politics",
	"relationships",
	"religion",
	"trauma",
}

var vocabularySet = func() map[string]bool {
	set := make(map[string]bool, len(sensitivityVocabulary))
	for _, tag := range sensitivityVocabulary {
		set[tag] = true
	}
	return set
}()

// SensitivityVocabulary возвращает копию словаря тегов чувствительности
func SensitivityVocabulary() []string {
	out := make([]string, len(sensitivityVocabulary))
	copy(out, sensitivityVocabulary)
	return out
}

// IsKnownSensitivity проверяет, входит ли тег в словарь
func IsKnownSensitivity(tag string) bool {
	return vocabularySet[tag]
}
