package proposal

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"strings"

	"upwork-proposals/internal/llm"
	"upwork-proposals/internal/settings"
	"upwork-proposals/internal/storage"
)

// TextGenerator is the LLM call the generator depends on.
type TextGenerator interface {
	Generate(ctx context.Context, req llm.Request) (string, error)
}

// maxEditHints bounds how many past edit patterns go into the prompt.
const maxEditHints = 5

const systemPrompt = `You write short, specific Upwork proposals in plain text.
No Markdown, no headings, no placeholders in square brackets.
Address the client's needs directly and end with the freelancer's name.`

// Draft is the outcome of one generation.
type Draft struct {
	Text         string                 `json:"text"`
	Status       storage.ProposalStatus `json:"status"`
	TemplateUsed string                 `json:"templateUsed"`
	ModelUsed    string                 `json:"modelUsed"`
}

// Generator turns a job plus user settings into proposal text. It never fails:
// when the model errors or answers with nothing, a local fallback is used.
type Generator struct {
	llm TextGenerator
}

func NewGenerator(gen TextGenerator) *Generator {
	return &Generator{llm: gen}
}

func (g *Generator) Generate(ctx context.Context, job storage.Job, s settings.Settings, hints []string) Draft {
	tpl := SelectTemplate(s.ProposalTemplates)
	name := signOffName(s.BasicInfo)
	draft := Draft{TemplateUsed: tpl.Title, ModelUsed: s.AISettings.Model}

	if g.llm != nil {
		text, err := g.llm.Generate(ctx, llm.Request{
			System:      systemPrompt,
			Prompt:      BuildPrompt(job, s, tpl, hints),
			Model:       s.AISettings.Model,
			Temperature: s.AISettings.Temperature,
			MaxTokens:   s.AISettings.MaxTokens,
		})
		if err != nil {
			log.Printf("[Generator] LLM failed for job %s, using fallback: %v", job.ID, err)
		} else if text = PostProcess(text, name); text != "" {
			draft.Text = text
			draft.Status = storage.StatusGenerated
			return draft
		} else {
			log.Printf("[Generator] LLM returned empty text for job %s, using fallback", job.ID)
		}
	}

	draft.Text = Fallback(job, s.BasicInfo)
	draft.Status = storage.StatusGeneratedFallback
	draft.ModelUsed = "fallback"
	return draft
}

// SelectTemplate picks the first template titled "main" or "default", else the first one.
func SelectTemplate(templates []settings.ProposalTemplate) settings.ProposalTemplate {
	for _, t := range templates {
		title := strings.ToLower(t.Title)
		if strings.Contains(title, "main") || strings.Contains(title, "default") {
			return t
		}
	}
	if len(templates) > 0 {
		return templates[0]
	}
	return settings.Defaults("").ProposalTemplates[0]
}

// BuildPrompt embeds the job, profile, template and rules into one instruction.
func BuildPrompt(job storage.Job, s settings.Settings, tpl settings.ProposalTemplate, hints []string) string {
	var b strings.Builder
	info := s.BasicInfo

	b.WriteString("Write a proposal for this Upwork job.\n\n")
	fmt.Fprintf(&b, "JOB TITLE: %s\n", job.Title)
	fmt.Fprintf(&b, "BUDGET: %s\n", job.Budget)
	if len(job.Skills) > 0 {
		fmt.Fprintf(&b, "SKILLS WANTED: %s\n", strings.Join(job.Skills, ", "))
	}
	fmt.Fprintf(&b, "DESCRIPTION:\n%s\n\n", truncate(job.Description, 3000))

	b.WriteString("ABOUT ME:\n")
	fmt.Fprintf(&b, "Name: %s\n", signOffName(info))
	if info.Title != "" {
		fmt.Fprintf(&b, "Title: %s\n", info.Title)
	}
	if info.Company != "" {
		fmt.Fprintf(&b, "Company: %s\n", info.Company)
	}
	if len(info.Skills) > 0 {
		fmt.Fprintf(&b, "Skills: %s\n", strings.Join(info.Skills, ", "))
	}
	if info.Experience != "" {
		fmt.Fprintf(&b, "Experience: %s\n", info.Experience)
	}
	if info.Portfolio != "" {
		fmt.Fprintf(&b, "Portfolio: %s\n", info.Portfolio)
	}
	if info.HourlyRate > 0 {
		fmt.Fprintf(&b, "Hourly rate: $%.0f\n", info.HourlyRate)
	}

	fmt.Fprintf(&b, "\nFOLLOW THIS TEMPLATE (%s):\n%s\n", tpl.Title, tpl.Content)

	if r := s.ValidationRules.CustomInstructions; r != "" {
		fmt.Fprintf(&b, "\nEXTRA INSTRUCTIONS:\n%s\n", r)
	}
	if len(hints) > 0 {
		if len(hints) > maxEditHints {
			hints = hints[:maxEditHints]
		}
		b.WriteString("\nThe user usually edits drafts like this, adjust accordingly: ")
		b.WriteString(strings.Join(hints, ", "))
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "\nKeep it under %d words and sign it as %s.", wordBudget(s.AISettings.MaxTokens), signOffName(info))
	return b.String()
}

// Fallback builds a proposal from local data only.
func Fallback(job storage.Job, info settings.BasicInfo) string {
	name := signOffName(info)
	title := strings.TrimSpace(job.Title)
	if title == "" {
		title = "your project"
	}
	skills := info.Skills
	if len(skills) == 0 {
		skills = job.Skills
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Hi,\n\nI read your post for \"%s\" and would like to help.", title)
	if len(skills) > 0 {
		fmt.Fprintf(&b, " My background in %s fits what you describe.", strings.Join(limit(skills, 4), ", "))
	}
	if info.Experience != "" {
		fmt.Fprintf(&b, " %s", strings.TrimSpace(info.Experience))
	}
	b.WriteString("\n\nI would begin by confirming the requirements with you, then deliver in small steps with regular updates.")
	if info.Portfolio != "" {
		fmt.Fprintf(&b, " You can see previous work here: %s", info.Portfolio)
	}
	b.WriteString("\n\nWhen would be a good time to discuss the details?\n\nBest regards,\n")
	b.WriteString(name)
	return b.String()
}

var (
	fencePattern       = regexp.MustCompile("(?m)^```[a-zA-Z]*\\s*$")
	headingPattern     = regexp.MustCompile(`(?m)^#{1,6}\s+`)
	boldPattern        = regexp.MustCompile(`\*\*([^*]+)\*\*|__([^_]+)__`)
	namePlaceholder    = regexp.MustCompile(`(?i)\[(your name|name|freelancer name|my name)\]`)
	bracketPattern     = regexp.MustCompile(`\[([^\[\]]*)\]`)
	multiBlankPattern  = regexp.MustCompile(`\n{3,}`)
	signOffLinePattern = regexp.MustCompile(`(?i)^(best|kind|warm)?\s*(regards|wishes)?,?$|^(thanks|thank you|cheers|sincerely),?$`)
)

// PostProcess strips Markdown, fills name placeholders and makes sure the text ends with name.
func PostProcess(text, name string) string {
	t := strings.ReplaceAll(text, "\r\n", "\n")
	t = fencePattern.ReplaceAllString(t, "")
	t = strings.ReplaceAll(t, "```", "")
	t = headingPattern.ReplaceAllString(t, "")
	t = boldPattern.ReplaceAllString(t, "$1$2")
	t = namePlaceholder.ReplaceAllString(t, name)
	t = bracketPattern.ReplaceAllString(t, "$1")
	t = multiBlankPattern.ReplaceAllString(t, "\n\n")
	t = strings.TrimSpace(t)
	if t == "" {
		return ""
	}
	if name == "" || endsWithName(t, name) {
		return t
	}
	lines := strings.Split(t, "\n")
	last := strings.TrimSpace(lines[len(lines)-1])
	if signOffLinePattern.MatchString(last) {
		return t + "\n" + name
	}
	return t + "\n\nBest regards,\n" + name
}

func endsWithName(text, name string) bool {
	lines := strings.Split(strings.TrimSpace(text), "\n")
	last := strings.TrimSpace(lines[len(lines)-1])
	return strings.EqualFold(strings.TrimRight(last, ".!"), name)
}

func signOffName(info settings.BasicInfo) string {
	if n := strings.TrimSpace(info.Name); n != "" {
		return n
	}
	return "Freelancer"
}

func wordBudget(maxTokens int) int {
	if maxTokens <= 0 {
		return 250
	}
	w := maxTokens * 3 / 4
	if w > 400 {
		return 400
	}
	return w
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}

func limit(s []string, n int) []string {
	if len(s) > n {
		return s[:n]
	}
	return s
}
