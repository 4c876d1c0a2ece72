package prompts

import (
	"fmt"
	"strings"
)

// BuildFollowupPrompt создает промпт для генерации follow-up вопросов
// по заданному вопросу и ответу. Модель должна вернуть JSON массив строк.
func BuildFollowupPrompt(question, answer string, avoid []string, count int) string {
	var prompt strings.Builder

	prompt.WriteString("You are a documentary interview producer. ")
	if count == 1 {
		prompt.WriteString("Given the question and answer below, ask 1 deep follow-up question. ")
	} else {
		prompt.WriteString(fmt.Sprintf("Given the question and answer below, ask %d deep follow-up questions. ", count))
	}
	prompt.WriteString("Return only a JSON array of strings.\n\n")

	if len(avoid) > 0 {
		prompt.WriteString("Strictly avoid these sensitive topics: ")
		prompt.WriteString(strings.Join(avoid, ", "))
		prompt.WriteString(".\n\n")
	}

	prompt.WriteString(fmt.Sprintf("Question: %s\n", question))
	prompt.WriteString(fmt.Sprintf("Answer: %s", answer))

	return prompt.String()
}

// BuildGuidePrompt создает промпт для генерации секций гайда интервью
// по брифу проекта, профилю субъекта и заметкам режиссера (могут быть пустыми)
func BuildGuidePrompt(briefJSON, profileJSON, notesJSON string) string {
	var prompt strings.Builder

	prompt.WriteString("You are a documentary interview producer. ")
	prompt.WriteString("Create an interview guide with 4-6 sections. ")
	prompt.WriteString("Return only a JSON array of sections, each with: ")
	prompt.WriteString("title, intent, questions (array of strings).\n\n")
	prompt.WriteString(fmt.Sprintf("Project brief: %s\n", briefJSON))
	prompt.WriteString(fmt.Sprintf("Subject profile: %s", profileJSON))
	if notesJSON != "" && notesJSON != "{}" {
		prompt.WriteString(fmt.Sprintf("\nDirector notes (respect risks_and_ethics and consent_notes): %s", notesJSON))
	}

	return prompt.String()
}

// BuildIntakeSummaryPrompt создает промпт для саммари субъекта
// по собранным в сессии ответам
func BuildIntakeSummaryPrompt(answers []string) string {
	var prompt strings.Builder

	prompt.WriteString("You are a documentary researcher. ")
	prompt.WriteString("Summarize the interview subject in a short paragraph: ")
	prompt.WriteString("key facts, values, recurring themes, emotional markers. ")
	prompt.WriteString("Be specific, avoid generic phrases.\n\n")
	prompt.WriteString("Interview notes:\n")
	prompt.WriteString(strings.Join(answers, "\n\n"))

	return prompt.String()
}
