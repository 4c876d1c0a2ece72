package followup

import (
	"bytes"
	stdcontext "context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"interviewer-ai/internal/prompts"
)

// Context описывает контекст запроса follow-up: заданный вопрос,
// записанный ответ и активный набор исключенных тем
type Context struct {
	Question string
	Answer   string
	Avoid    []string
}

// Result представляет исход запроса follow-up. Fallback=true означает
// "используй fallback через банк" и никогда не является жесткой ошибкой
// прогресса сессии.
type Result struct {
	Prompt   string
	Fallback bool
	Reason   string
}

// Generator запрашивает кандидата follow-up у внешнего сервиса
type Generator interface {
	RequestFollowup(ctx stdcontext.Context, fc Context) Result
}

// Ollama API структуры
type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type generateResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

// OllamaGenerator обращается к локальному inference-сервису Ollama.
// Один запрос с таймаутом, без повторов: потерянный оффлайн-запрос
// не должен останавливать интервью.
type OllamaGenerator struct {
	baseURL string
	model   string
	client  *http.Client
}

// DefaultTimeout — таймаут запроса к локальному сервису по умолчанию
const DefaultTimeout = 5 * time.Second

// NewOllamaGenerator создает генератор для локального сервиса.
// При нулевом таймауте используется DefaultTimeout.
func NewOllamaGenerator(baseURL, model string, timeout time.Duration) *OllamaGenerator {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &OllamaGenerator{
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		client:  &http.Client{Timeout: timeout},
	}
}

// RequestFollowup запрашивает один follow-up вопрос. Таймаут, сетевая
// ошибка и некорректный ответ превращаются в Fallback, а не в ошибку.
func (g *OllamaGenerator) RequestFollowup(ctx stdcontext.Context, fc Context) Result {
	prompt := prompts.BuildFollowupPrompt(fc.Question, fc.Answer, fc.Avoid, 1)

	raw, err := g.generate(ctx, prompt)
	if err != nil {
		return Result{Fallback: true, Reason: err.Error()}
	}

	question := firstQuestion(raw)
	if question == "" {
		return Result{Fallback: true, Reason: "пустой ответ генератора"}
	}
	return Result{Prompt: question}
}

// RequestFollowups запрашивает пакет follow-up вопросов (до count штук)
func (g *OllamaGenerator) RequestFollowups(ctx stdcontext.Context, fc Context, count int) ([]string, error) {
	if count < 1 {
		count = 1
	}
	raw, err := g.generate(ctx, prompts.BuildFollowupPrompt(fc.Question, fc.Answer, fc.Avoid, count))
	if err != nil {
		return nil, err
	}
	questions := parseQuestionList(raw)
	if len(questions) == 0 {
		return nil, fmt.Errorf("пустой ответ генератора")
	}
	if len(questions) > count {
		questions = questions[:count]
	}
	return questions, nil
}

// generate выполняет один запрос к /api/generate
func (g *OllamaGenerator) generate(ctx stdcontext.Context, prompt string) (string, error) {
	request := generateRequest{
		Model:  g.model,
		Prompt: prompt,
		Stream: false,
	}

	jsonData, err := json.Marshal(request)
	if err != nil {
		return "", fmt.Errorf("ошибка сериализации запроса: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/api/generate", bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("ошибка создания запроса: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("ошибка выполнения запроса: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("ошибка чтения ответа: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("HTTP ошибка %d: %s", resp.StatusCode, string(body))
	}

	var parsed generateResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("ошибка парсинга ответа: %w", err)
	}

	return strings.TrimSpace(parsed.Response), nil
}

// parseQuestionList разбирает ответ модели: ожидается JSON массив строк,
// но сырой текст тоже принимается
func parseQuestionList(raw string) []string {
	var items []string
	if err := json.Unmarshal([]byte(raw), &items); err == nil {
		var questions []string
		for _, item := range items {
			if q := strings.TrimSpace(strings.Trim(item, `"`)); q != "" {
				questions = append(questions, q)
			}
		}
		return questions
	}
	if q := strings.TrimSpace(strings.Trim(raw, `"`)); q != "" {
		return []string{q}
	}
	return nil
}

func firstQuestion(raw string) string {
	questions := parseQuestionList(raw)
	if len(questions) == 0 {
		return ""
	}
	return questions[0]
}
