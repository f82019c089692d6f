package assessment

import "strings"

// Classifier derives the assessment stage from a transcript window. The
// window is the bounded tail of the conversation, latest entry last. Tests
// substitute a deterministic implementation.
type Classifier interface {
	Classify(window []Entry) Stage
}

// KeywordClassifier is the production heuristic: conversation length first,
// keyword markers as upgrades. It only inspects the latest assistant turn
// and never re-scores earlier ones.
type KeywordClassifier struct{}

func (KeywordClassifier) Classify(window []Entry) Stage {
	latest := latestAssistant(window)
	if latest == nil {
		return StageInitial
	}

	// Message count is the primary factor: by the third exchange the triage
	// prompt forces a final answer.
	prior := 0
	for _, e := range window {
		if e.ID == latest.ID {
			break
		}
		prior++
	}
	stage := stageFromCount(prior)

	lower := strings.ToLower(latest.Content)
	switch {
	case containsAny(lower, completionMarkers):
		return StageFinal
	case matchCount(lower, diagnosisMarkers) >= 2:
		return StageFinal
	case stage == StageFinal:
		return StageFinal
	case containsAny(lower, questionMarkers):
		return StageClarification
	}
	return stage
}

func stageFromCount(n int) Stage {
	switch {
	case n >= 4:
		return StageFinal
	case n <= 1:
		return StageInitial
	default:
		return StageClarification
	}
}

func latestAssistant(window []Entry) *Entry {
	for i := len(window) - 1; i >= 0; i-- {
		if window[i].Role == RoleAssistant {
			return &window[i]
		}
	}
	return nil
}

func containsAny(text string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(text, m) {
			return true
		}
	}
	return false
}

func matchCount(text string, markers []string) int {
	n := 0
	for _, m := range markers {
		if strings.Contains(text, m) {
			n++
		}
	}
	return n
}
