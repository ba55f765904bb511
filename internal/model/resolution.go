package model

import (
	"regexp"
	"strings"
)

var (
	stepQuoteRe = regexp.MustCompile(`[\[\]'"]`)
	stepSplitRe = regexp.MustCompile(`\d+\.\s*|\. `)
)

// ParseResolutionSteps derives an ordered display list from the free-text
// resolution_steps field by splitting on numbered prefixes and sentence
// boundaries. This is presentation-only; the field itself stays opaque and
// is never consulted by the lifecycle state machine.
func ParseResolutionSteps(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	cleaned := stepQuoteRe.ReplaceAllString(raw, "")
	parts := stepSplitRe.Split(cleaned, -1)
	steps := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			steps = append(steps, s)
		}
	}
	if len(steps) == 0 {
		return nil
	}
	return steps
}
