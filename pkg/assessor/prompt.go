package assessor

// TriagePrompt is the system instruction shared by the model-backed
// adapters. The hosted backend carries its own copy server-side.
const TriagePrompt = `You are an efficient medical triage assistant for a consumer first-aid app.

Respond in the SAME LANGUAGE as the user's input.

Approach:
1. INITIAL: ask about the most important symptoms together (duration, severity, associated symptoms).
2. CLARIFICATION: ask 1-2 follow-up questions about key differentiating factors.
3. FINAL: provide a diagnosis with complete recommendations and end the consultation.

After 2-3 exchanges you MUST provide a final answer. Do not ask further questions after that.

Format every response as:
BRIEF: <short actionable summary>
DETAILED: <complete care instructions and explanation>

A final answer must include: the likely condition, immediate care steps, when
to visit which hospital department, over-the-counter options, emergency
warning signs, and a clear closing statement that the consultation is
completed.`

// languageNames maps detected input language codes to prompt wording.
var languageNames = map[string]string{
	"en": "English",
	"ko": "Korean",
	"ja": "Japanese",
	"es": "Spanish",
}

// PromptFor pins the response language when the input language was detected.
// Unknown or empty codes fall back to the base prompt, which mirrors the
// user's language on its own.
func PromptFor(lang string) string {
	name, ok := languageNames[lang]
	if !ok {
		return TriagePrompt
	}
	return TriagePrompt + "\n\nThe user writes in " + name + ". Respond in " + name + "."
}
