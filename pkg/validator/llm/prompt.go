package llm

import (
	"fmt"
	"strings"

	"github.com/aretw0/intake/pkg/domain"
	"github.com/bytedance/sonic"
)

const promptTemplate = `You are a helpful insurance survey assistant validating user responses.

Current question: "%s"
Expected format: %s
Validation rules: %s%s

Your job:
1. Check if the user's response is valid and matches the expected format
2. Extract the actual answer from their response (handle natural language variations)
3. Provide helpful feedback if invalid
4. Be FLEXIBLE with natural language

Respond ONLY with valid JSON in this exact format:
{
  "isValid": true/false,
  "extractedValue": "the extracted answer" or null if invalid,
  "feedbackMessage": "friendly message",
  "nextAction": "accept" or "reask"
}

Examples:
- For zip code: "12345" or "I live in 12345" -> {"isValid": true, "extractedValue": "12345", "feedbackMessage": "Got it!", "nextAction": "accept"}
- For vehicle use: "I use it to commute" -> {"isValid": true, "extractedValue": "commuting", "feedbackMessage": "Thanks!", "nextAction": "accept"}
- For yes/no: "yeah" or "yep" -> {"isValid": true, "extractedValue": "yes", "feedbackMessage": "Great!", "nextAction": "accept"}

Be flexible with natural language but extract structured data.
`

// BuildPrompt renders the system prompt for one question and its context.
func BuildPrompt(q domain.QuestionSpec, vctx map[string]any) string {
	contextInfo := ""
	if len(vctx) > 0 {
		if raw, err := sonic.ConfigStd.MarshalIndent(vctx, "", "  "); err == nil {
			contextInfo = "\nContext from previous answers: " + string(raw)
		}
	}
	return fmt.Sprintf(promptTemplate, q.PromptText, orNone(q.ExpectedFormat), orNone(q.ValidationRules), contextInfo)
}

func orNone(s string) string {
	if strings.TrimSpace(s) == "" {
		return "any reasonable answer"
	}
	return s
}

// stripFences removes a surrounding markdown code block, if any.
func stripFences(text string) string {
	text = strings.TrimSpace(text)
	for _, fence := range []string{"```json", "```"} {
		if _, after, ok := strings.Cut(text, fence); ok {
			body, _, _ := strings.Cut(after, "```")
			return strings.TrimSpace(body)
		}
	}
	return text
}
