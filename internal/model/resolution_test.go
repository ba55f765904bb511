package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseResolutionSteps(t *testing.T) {
	tests := []struct {
		name  string
		raw   string
		steps []string
	}{
		{
			name:  "numbered_prefixes",
			raw:   "1. Check alignment 2. Replace sleeper",
			steps: []string{"Check alignment", "Replace sleeper"},
		},
		{
			name:  "sentence_boundaries",
			raw:   "Check the joint. Tighten the bolts",
			steps: []string{"Check the joint", "Tighten the bolts"},
		},
		{
			name:  "quoted_list_syntax_stripped",
			raw:   "['Inspect rail', 'Grind surface']",
			steps: []string{"Inspect rail, Grind surface"},
		},
		{
			name:  "numbered_quoted_list",
			raw:   "['1. Isolate track section', '2. Replace fastener']",
			steps: []string{"Isolate track section,", "Replace fastener"},
		},
		{
			name:  "single_step",
			raw:   "Replace the fishplate",
			steps: []string{"Replace the fishplate"},
		},
		{
			name:  "empty",
			raw:   "",
			steps: nil,
		},
		{
			name:  "whitespace_only",
			raw:   "   ",
			steps: nil,
		},
		{
			name:  "punctuation_only",
			raw:   "[]''",
			steps: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.steps, ParseResolutionSteps(tt.raw))
		})
	}
}
