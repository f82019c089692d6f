package assessment

import "strings"

// Progress is the extracted assessment state: stage plus symptom, duration
// and severity signals found so far. Symptoms only ever accumulate.
type Progress struct {
	Stage    Stage    `json:"stage"`
	Symptoms []string `json:"symptoms"`
	Duration string   `json:"duration,omitempty"`
	Severity string   `json:"severity,omitempty"`
}

// scanSymptoms returns the canonical names of all symptoms mentioned.
func scanSymptoms(text string) []string {
	lower := strings.ToLower(text)
	var found []string
	for name, variants := range symptomKeywords {
		for _, v := range variants {
			if strings.Contains(lower, v) {
				found = append(found, name)
				break
			}
		}
	}
	return found
}

// scanDuration returns the first duration keyword present, or "".
func scanDuration(text string) string {
	lower := strings.ToLower(text)
	for _, kw := range durationKeywords {
		if strings.Contains(lower, kw) {
			return kw
		}
	}
	return ""
}

// scanSeverity returns the strongest severity level mentioned, or "".
func scanSeverity(text string) string {
	lower := strings.ToLower(text)
	for _, level := range severityLevels {
		if containsAny(lower, severityKeywords[level]) {
			return level
		}
	}
	return ""
}
