package assessor

import "strings"

// ParseSections splits a model response into its BRIEF and DETAILED parts.
// Responses without the markers keep the whole text as both brief and
// detailed, so a misformatted model answer still reaches the user.
func ParseSections(text string) (brief, detailed string) {
	trimmed := strings.TrimSpace(text)

	briefIdx := strings.Index(trimmed, "BRIEF:")
	detailIdx := strings.Index(trimmed, "DETAILED:")

	if briefIdx == -1 && detailIdx == -1 {
		return trimmed, trimmed
	}

	if briefIdx != -1 {
		end := len(trimmed)
		if detailIdx > briefIdx {
			end = detailIdx
		}
		brief = strings.TrimSpace(trimmed[briefIdx+len("BRIEF:") : end])
	}
	if detailIdx != -1 {
		detailed = strings.TrimSpace(trimmed[detailIdx+len("DETAILED:"):])
	}

	if brief == "" {
		brief = detailed
	}
	if detailed == "" {
		detailed = brief
	}
	return brief, detailed
}
