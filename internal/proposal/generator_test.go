package proposal

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"upwork-proposals/internal/llm"
	"upwork-proposals/internal/settings"
	"upwork-proposals/internal/storage"
)

type stubLLM struct {
	text string
	err  error
	last llm.Request
	n    int
}

func (s *stubLLM) Generate(_ context.Context, req llm.Request) (string, error) {
	s.n++
	s.last = req
	return s.text, s.err
}

func testSettings() settings.Settings {
	s := settings.Defaults("gpt-4o-mini")
	s.BasicInfo.Name = "Ana Lima"
	s.BasicInfo.Skills = []string{"Go", "PostgreSQL"}
	return s
}

var testJob = storage.Job{ID: "J1", Title: "Build a Go API", Description: "REST + Postgres", Budget: "$500", Skills: []string{"Go"}}

func TestSelectTemplate(t *testing.T) {
	tests := []struct {
		name      string
		templates []settings.ProposalTemplate
		want      string
	}{
		{name: "main wins", templates: []settings.ProposalTemplate{{Title: "Short"}, {Title: "My MAIN one"}}, want: "My MAIN one"},
		{name: "default wins", templates: []settings.ProposalTemplate{{Title: "Short"}, {Title: "Default"}}, want: "Default"},
		{name: "first otherwise", templates: []settings.ProposalTemplate{{Title: "Short"}, {Title: "Long"}}, want: "Short"},
		{name: "built-in when empty", templates: nil, want: "Main template"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SelectTemplate(tt.templates).Title)
		})
	}
}

func TestGenerate_UsesModelSettings(t *testing.T) {
	stub := &stubLLM{text: "Hello,\n\nI can build this API.\n\nBest regards,"}
	s := testSettings()
	s.AISettings = settings.AISettings{Model: "gpt-4o", Temperature: 0.3, MaxTokens: 800}

	d := NewGenerator(stub).Generate(context.Background(), testJob, s, []string{"shorter"})

	assert.Equal(t, storage.StatusGenerated, d.Status)
	assert.Equal(t, "gpt-4o", d.ModelUsed)
	assert.Equal(t, "Main template", d.TemplateUsed)
	assert.True(t, strings.HasSuffix(d.Text, "Best regards,\nAna Lima"), d.Text)
	assert.Equal(t, "gpt-4o", stub.last.Model)
	assert.Equal(t, 0.3, stub.last.Temperature)
	assert.Equal(t, 800, stub.last.MaxTokens)
	assert.Contains(t, stub.last.Prompt, "Build a Go API")
	assert.Contains(t, stub.last.Prompt, "shorter")
}

func TestGenerate_FallbackOnFailureOrEmpty(t *testing.T) {
	for name, stub := range map[string]*stubLLM{
		"error": {err: errors.New("provider down")},
		"empty": {text: "  ```\n```  "},
	} {
		t.Run(name, func(t *testing.T) {
			d := NewGenerator(stub).Generate(context.Background(), testJob, testSettings(), nil)
			assert.Equal(t, storage.StatusGeneratedFallback, d.Status)
			assert.Contains(t, d.Text, "Build a Go API")
			assert.Contains(t, d.Text, "Ana Lima")
		})
	}

	d := NewGenerator(nil).Generate(context.Background(), storage.Job{}, settings.Settings{}, nil)
	assert.Equal(t, storage.StatusGeneratedFallback, d.Status)
	assert.NotEmpty(t, d.Text)
}

func TestFallback(t *testing.T) {
	text := Fallback(testJob, settings.BasicInfo{Name: "Ana Lima", Portfolio: "https://ana.dev"})
	assert.Contains(t, text, `"Build a Go API"`)
	assert.Contains(t, text, "https://ana.dev")
	assert.True(t, strings.HasSuffix(text, "Ana Lima"))
}

func TestPostProcess(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "strips markdown and fills name",
			in:   "```text\n## Proposal\nHi, I am **[Your Name]** and I [love] Go.\n\nBest regards,\n[Name]\n```",
			want: "Proposal\nHi, I am Ana and I love Go.\n\nBest regards,\nAna",
		},
		{
			name: "appends sign-off line",
			in:   "I can help.\n\nThanks,",
			want: "I can help.\n\nThanks,\nAna",
		},
		{
			name: "adds full sign-off",
			in:   "I can help with this.",
			want: "I can help with this.\n\nBest regards,\nAna",
		},
		{name: "empty stays empty", in: "  \n ", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PostProcess(tt.in, "Ana"))
		})
	}
}

func TestBuildPrompt_LimitsHints(t *testing.T) {
	s := testSettings()
	s.ValidationRules.CustomInstructions = "Mention NDA."
	p := BuildPrompt(testJob, s, SelectTemplate(s.ProposalTemplates), []string{"a1", "a2", "a3", "a4", "a5", "a6"})

	assert.Contains(t, p, "Mention NDA.")
	assert.Contains(t, p, "a5")
	assert.NotContains(t, p, "a6")
	require.Contains(t, p, "Ana Lima")
}
