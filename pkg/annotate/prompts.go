package annotate

import (
	"fmt"

	"github.com/Code-Monger/InkPilot/pkg/finding"
)

const grammarPrompt = `Analyze the text for grammar, punctuation, and spelling errors.
Reply with a JSON object of the form
{"errors": [{"id": "...", "originalText": "...", "message": "...", "suggestions": ["..."], "type": "grammar|punctuation|spelling", "context": "..."}]}

For each error provide:
- A unique ID (use format: error_1, error_2, etc.)
- The EXACT original text that contains the error (copy it precisely from the source)
- A clear explanation of the error
- 1-3 correction suggestions
- The type of error (grammar, punctuation, or spelling)
- Context: a few words before and after the error for better identification

IMPORTANT:
- Copy the originalText EXACTLY as it appears in the source text
- Include only the problematic part, not the whole sentence
- Only include actual errors, not stylistic suggestions
- Reply with {"errors": []} when the text is correct`

const stylePrompt = `Analyze the text for style improvements. Focus on:
- Clarity: making sentences clearer and easier to understand
- Conciseness: removing unnecessary words or phrases
- Tone: ensuring appropriate tone for the content
- Style: improving flow, readability, and engagement

Reply with a JSON object of the form
{"suggestions": [{"id": "...", "originalText": "...", "message": "...", "suggestion": "...", "type": "clarity|conciseness|tone|style", "context": "..."}]}

For each suggestion provide:
- A unique ID (use format: style_1, style_2, etc.)
- The EXACT original text that needs improvement (copy it precisely from the source)
- A clear explanation of the issue
- A specific replacement for the original text
- The type of improvement (clarity, conciseness, tone, or style)
- Context: a few words before and after for better identification

IMPORTANT:
- Copy the originalText EXACTLY as it appears in the source text
- Include the full phrase or sentence that needs improvement
- Only suggest meaningful improvements, avoid nitpicking
- Reply with {"suggestions": []} when nothing needs to change`

// systemPrompt returns the instructions for kind.
func systemPrompt(kind finding.Kind) (string, error) {
	switch kind {
	case finding.KindGrammar:
		return grammarPrompt, nil
	case finding.KindStyle:
		return stylePrompt, nil
	}
	return "", fmt.Errorf("unknown finding kind: %q", kind)
}

func userPrompt(text string) string {
	return "Text to analyze:\n\n" + text
}
