package proposal

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectPatterns(t *testing.T) {
	original := "Hi,\n\nI can build your API in Go with tests and docs included.\n\nBest regards,\nAna"

	tests := []struct {
		name   string
		edited string
		want   []string
	}{
		{name: "no change", edited: original, want: nil},
		{name: "shorter without greeting", edited: "I can build your API.\n\nAna", want: []string{PatternShorter, PatternRemovedGreeting}},
		{
			name:   "longer with link and question",
			edited: original + "\n\nSee https://ana.dev for similar work. When do you want to start?",
			want:   []string{PatternLonger, PatternPortfolioLink, PatternAddedQuestion},
		},
		{
			name:   "enthusiastic",
			edited: strings.Replace(original, "included.", "included!", 1),
			want:   []string{PatternMoreEnthusiasm},
		},
		{
			name:   "more personal",
			edited: strings.Replace(original, "with tests", "with my tests", 1),
			want:   []string{PatternMorePersonal},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectPatterns(original, tt.edited))
		})
	}
}
