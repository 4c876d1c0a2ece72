package bank

import (
	"sort"

	"interviewer-ai/internal/config"
)

// Index представляет индекс банка вопросов для поиска по темам
// и для обхода графа follow-up ссылок
type Index struct {
	entries map[string]config.QuestionBankEntry
	ordered []string // все id в возрастающем порядке
}

// NewIndex строит индекс по загруженному банку вопросов
func NewIndex(bank *config.QuestionBank) *Index {
	ix := &Index{
		entries: make(map[string]config.QuestionBankEntry, len(bank.Entries)),
		ordered: make([]string, 0, len(bank.Entries)),
	}
	for _, entry := range bank.Entries {
		ix.entries[entry.ID] = entry
		ix.ordered = append(ix.ordered, entry.ID)
	}
	sort.Strings(ix.ordered)
	return ix
}

// Get возвращает запись банка по id
func (ix *Index) Get(id string) (config.QuestionBankEntry, bool) {
	entry, ok := ix.entries[id]
	return entry, ok
}

// Len возвращает количество записей в индексе
func (ix *Index) Len() int {
	return len(ix.entries)
}

// Lookup возвращает записи, отсортированные по убыванию релевантности
// (число совпавших тем, при равенстве — id по возрастанию), исключая
// записи, чьи теги чувствительности пересекаются с sensitivityExclude.
// При пустом списке тем возвращаются все неисключенные записи в порядке id.
func (ix *Index) Lookup(themes []string, sensitivityExclude []string) []config.QuestionBankEntry {
	themeSet := toSet(themes)
	excludeSet := toSet(sensitivityExclude)

	type scored struct {
		entry   config.QuestionBankEntry
		overlap int
	}
	var candidates []scored
	for _, id := range ix.ordered {
		entry := ix.entries[id]
		if intersects(entry.Sensitivities, excludeSet) {
			continue
		}
		overlap := 0
		for _, theme := range entry.Themes {
			if themeSet[theme] {
				overlap++
			}
		}
		if len(themes) > 0 && overlap == 0 {
			continue
		}
		candidates = append(candidates, scored{entry: entry, overlap: overlap})
	}

	// ordered уже дает возрастание id, стабильная сортировка сохраняет его
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].overlap > candidates[j].overlap
	})

	result := make([]config.QuestionBankEntry, len(candidates))
	for i, c := range candidates {
		result[i] = c.entry
	}
	return result
}

// FollowupsOf обходит граф follow-up ссылок в ширину, начиная с записи
// entryID, не глубже depth переходов. Посещенные id запоминаются, поэтому
// циклы не приводят к повторам или зацикливанию. Сама стартовая запись
// в результат не входит.
func (ix *Index) FollowupsOf(entryID string, depth int) []config.QuestionBankEntry {
	start, ok := ix.entries[entryID]
	if !ok || depth <= 0 {
		return nil
	}

	visited := map[string]bool{entryID: true}
	var result []config.QuestionBankEntry

	frontier := start.Followups
	for hop := 0; hop < depth && len(frontier) > 0; hop++ {
		var next []string
		for _, id := range frontier {
			if visited[id] {
				continue
			}
			visited[id] = true
			entry, ok := ix.entries[id]
			if !ok {
				continue
			}
			result = append(result, entry)
			next = append(next, entry.Followups...)
		}
		frontier = next
	}
	return result
}

func toSet(items []string) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, item := range items {
		set[item] = true
	}
	return set
}

func intersects(tags []string, set map[string]bool) bool {
	for _, tag := range tags {
		if set[tag] {
			return true
		}
	}
	return false
}
