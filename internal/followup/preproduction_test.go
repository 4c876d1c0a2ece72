package followup

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"interviewer-ai/internal/config"
)

func TestGenerateGuideIncludesDirectorNotes(t *testing.T) {
	var seenPrompt string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req generateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		seenPrompt = req.Prompt
		json.NewEncoder(w).Encode(generateResponse{
			Response: `[{"title":"Детство","intent":"разогрев","questions":["Где вы выросли?"]}]`,
			Done:     true,
		})
	}))
	defer srv.Close()

	g := NewOllamaGenerator(srv.URL, "llama3.1:8b", time.Second)
	brief := &config.ProjectBrief{ProjectName: "Тест", Scope: "тест"}
	profile := &config.SubjectProfile{ID: "s1", Consent: config.ConsentGranted}
	notes := &config.DirectorNotes{
		RisksAndEthics: []string{"Не давить на тему здоровья"},
		ConsentNotes:   "Без имен родственников",
	}

	sections, err := g.GenerateGuide(context.Background(), brief, profile, notes)
	require.NoError(t, err)
	require.Len(t, sections, 1)
	assert.Equal(t, "Детство", sections[0].Title)
	require.Len(t, sections[0].Questions, 1)
	assert.Equal(t, "ai-s1-q1", sections[0].Questions[0].ID)
	assert.Equal(t, config.SourceCustom, sections[0].Questions[0].Source)

	// Заметки режиссера попадают в промпт как контекст рисков
	assert.Contains(t, seenPrompt, "Не давить на тему здоровья")
	assert.Contains(t, seenPrompt, "Без имен родственников")
}

func TestGenerateGuideWithoutNotes(t *testing.T) {
	var seenPrompt string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req generateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		seenPrompt = req.Prompt
		json.NewEncoder(w).Encode(generateResponse{
			Response: `[{"title":"Секция","intent":"","questions":["Q?"]}]`,
			Done:     true,
		})
	}))
	defer srv.Close()

	g := NewOllamaGenerator(srv.URL, "llama3.1:8b", time.Second)
	brief := &config.ProjectBrief{ProjectName: "Тест", Scope: "тест"}
	profile := &config.SubjectProfile{ID: "s1", Consent: config.ConsentGranted}

	_, err := g.GenerateGuide(context.Background(), brief, profile, nil)
	require.NoError(t, err)
	assert.NotContains(t, seenPrompt, "Director notes")
}

func TestGenerateGuideRejectsEmptySectionList(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(generateResponse{Response: `[]`, Done: true})
	}))
	defer srv.Close()

	g := NewOllamaGenerator(srv.URL, "llama3.1:8b", time.Second)
	brief := &config.ProjectBrief{ProjectName: "Тест", Scope: "тест"}
	profile := &config.SubjectProfile{ID: "s1", Consent: config.ConsentGranted}

	_, err := g.GenerateGuide(context.Background(), brief, profile, nil)
	assert.Error(t, err)
}
