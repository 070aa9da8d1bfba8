package proposal

import (
	"regexp"
	"strings"
)

// Edit pattern tags. Coarse by nature; they only steer future prompts.
const (
	PatternShorter         = "shorter"
	PatternLonger          = "longer"
	PatternPortfolioLink   = "added portfolio link"
	PatternMoreEnthusiasm  = "more enthusiastic"
	PatternAddedQuestion   = "added question"
	PatternMorePersonal    = "more personal"
	PatternRemovedGreeting = "removed greeting"
)

var (
	linkPattern     = regexp.MustCompile(`(?i)https?://|www\.|github\.com|behance\.net|dribbble\.com|portfolio`)
	greetingPattern = regexp.MustCompile(`(?i)^\s*(hi|hello|hey|dear|greetings)\b`)
)

// lengthDelta is the relative change in length that counts as shorter or longer.
const lengthDelta = 0.15

// DetectPatterns compares the generated and the edited text.
func DetectPatterns(original, edited string) []string {
	var out []string
	ol, el := len([]rune(strings.TrimSpace(original))), len([]rune(strings.TrimSpace(edited)))

	switch {
	case ol > 0 && float64(el) < float64(ol)*(1-lengthDelta):
		out = append(out, PatternShorter)
	case ol > 0 && float64(el) > float64(ol)*(1+lengthDelta):
		out = append(out, PatternLonger)
	}
	if count(linkPattern, edited) > count(linkPattern, original) {
		out = append(out, PatternPortfolioLink)
	}
	if strings.Count(edited, "!") > strings.Count(original, "!") {
		out = append(out, PatternMoreEnthusiasm)
	}
	if strings.Count(edited, "?") > strings.Count(original, "?") {
		out = append(out, PatternAddedQuestion)
	}
	if personalWords(edited) > personalWords(original) {
		out = append(out, PatternMorePersonal)
	}
	if greetingPattern.MatchString(original) && !greetingPattern.MatchString(edited) {
		out = append(out, PatternRemovedGreeting)
	}
	return out
}

func count(re *regexp.Regexp, s string) int {
	return len(re.FindAllStringIndex(s, -1))
}

func personalWords(s string) int {
	n := 0
	for _, w := range strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r == '\'')
	}) {
		switch w {
		case "i", "i'm", "i've", "i'd", "my", "me":
			n++
		}
	}
	return n
}
