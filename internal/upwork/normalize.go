package upwork

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"upwork-proposals/internal/storage"
)

// Defaults for fields the upstream node does not carry.
const (
	DefaultBudget       = "Budget not specified"
	DefaultTitle        = "Untitled job"
	DefaultDescription  = "No description provided"
	DefaultCategory     = "General"
	DefaultNotSpecified = "Not specified"
	DefaultPostedDate   = "Recently"
	DefaultClientName   = "Upwork client"
	DefaultSkill        = "General"
	jobURLPrefix        = "https://www.upwork.com/jobs/"
)

// jobIDNamespace seeds deterministic ids for nodes without one.
var jobIDNamespace = uuid.MustParse("6f1c2a4e-9a57-4c8e-b2d3-5e0f7c1a9b42")

// Each canonical field is read from the first path that yields a usable value.
// Paths are dot-separated; a numeric segment indexes into a list.
var (
	idPaths          = []string{"id", "ciphertext", "job.id", "jobId", "uid"}
	titlePaths       = []string{"title", "job.title", "content.title", "jobTitle"}
	descriptionPaths = []string{"description", "job.description", "content.description", "snippet"}
	categoryPaths    = []string{
		"category", "category.name", "occupations.category.prefLabel", "job.category",
		"classification.category.prefLabel", "subcategory",
	}
	jobTypePaths    = []string{"jobType", "type", "job.type", "job.contractTerms.contractType", "contractTerms.contractType", "engagement"}
	experiencePaths = []string{"experienceLevel", "contractorTier", "tier", "job.experienceLevel"}
	postedPaths     = []string{"createdDateTime", "publishedDateTime", "postedOn", "createdOn", "postedDate"}
	urlPaths        = []string{"url", "jobUrl", "link"}
	skillListPaths  = []string{"skills", "job.skills", "ontologySkills", "attrs"}
	skillNameKeys   = []string{"name", "prettyName", "prefLabel", "label"}
	proposalPaths   = []string{"totalApplicants", "applicants", "proposalCount", "job.totalApplicants", "activityStat.applicationsBidStats.totalApplicants"}

	fixedBudgetPaths = []string{"amount.rawValue", "amount.amount", "budget.amount", "budget.rawValue", "fixedPriceAmount.rawValue", "budget", "amount"}
	hourlyMinPaths   = []string{"hourlyBudgetMin.rawValue", "hourlyBudgetMin", "hourlyBudget.min", "contractTerms.hourlyContractTerms.hourlyBudgetMin"}
	hourlyMaxPaths   = []string{"hourlyBudgetMax.rawValue", "hourlyBudgetMax", "hourlyBudget.max", "contractTerms.hourlyContractTerms.hourlyBudgetMax"}

	clientNamePaths     = []string{"client.name", "client.companyName", "buyer.company.name", "clientCompanyPublic.name"}
	clientRatingPaths   = []string{"client.totalFeedback", "client.rating", "client.feedback", "buyer.info.stats.score"}
	clientCountryPaths  = []string{"client.location.country", "client.country", "buyer.location.country"}
	clientSpentPaths    = []string{"client.totalSpent.rawValue", "client.totalSpent", "buyer.info.stats.totalCharges.amount"}
	clientHiresPaths    = []string{"client.totalHires", "buyer.info.stats.totalJobsWithHires"}
	clientPostedPaths   = []string{"client.totalPostedJobs", "buyer.info.jobs.postedCount"}
	clientReviewsPaths  = []string{"client.totalReviews", "buyer.info.stats.feedbackCount"}
	clientVerifiedPaths = []string{"client.verificationStatus", "client.paymentVerified", "client.paymentVerificationStatus", "buyer.isPaymentMethodVerified"}
)

// Normalize maps one upstream job node to the canonical Job shape.
// It accepts any shape, including nil, and never panics.
func Normalize(node map[string]any) (job storage.Job) {
	defer func() {
		if r := recover(); r != nil {
			job = fallbackJob(node)
		}
	}()

	job.Title = firstString(node, titlePaths, DefaultTitle)
	job.Description = firstString(node, descriptionPaths, DefaultDescription)
	job.ID = firstString(node, idPaths, "")
	if job.ID == "" {
		job.ID = derivedID(job.Title, job.Description)
	}
	job.Category = firstString(node, categoryPaths, DefaultCategory)
	job.JobType = humanize(firstString(node, jobTypePaths, DefaultNotSpecified))
	job.ExperienceLevel = humanize(firstString(node, experiencePaths, DefaultNotSpecified))
	job.PostedDate = postedDate(node)
	job.URL = firstString(node, urlPaths, "")
	if job.URL == "" {
		job.URL = jobURLPrefix + job.ID
	}
	job.Skills = skills(node)
	if n, ok := firstNumber(node, proposalPaths); ok {
		job.ProposalCount = int(n)
	}
	job.Budget, job.BudgetMin, job.BudgetMax = budget(node)
	job.Client = client(node)
	return job
}

// NormalizeAll maps every node, skipping nils.
func NormalizeAll(nodes []map[string]any) []storage.Job {
	out := make([]storage.Job, 0, len(nodes))
	for _, n := range nodes {
		if n == nil {
			continue
		}
		out = append(out, Normalize(n))
	}
	return out
}

func fallbackJob(node map[string]any) storage.Job {
	return storage.Job{
		ID:              derivedID(fmt.Sprint(node), ""),
		Title:           DefaultTitle,
		Description:     DefaultDescription,
		Budget:          DefaultBudget,
		PostedDate:      DefaultPostedDate,
		Client:          storage.JobClient{Name: DefaultClientName},
		Skills:          []string{DefaultSkill},
		Category:        DefaultCategory,
		JobType:         DefaultNotSpecified,
		ExperienceLevel: DefaultNotSpecified,
	}
}

func derivedID(title, description string) string {
	return uuid.NewSHA1(jobIDNamespace, []byte(title+"\x00"+description)).String()
}

func budget(node map[string]any) (string, float64, float64) {
	lo, hasLo := firstNumber(node, hourlyMinPaths)
	hi, hasHi := firstNumber(node, hourlyMaxPaths)
	switch {
	case hasLo && hasHi && hi > 0:
		if hi < lo {
			lo, hi = hi, lo
		}
		return fmt.Sprintf("$%s-$%s/hr", money(lo), money(hi)), lo, hi
	case hasLo && lo > 0:
		return fmt.Sprintf("$%s+/hr", money(lo)), lo, lo
	case hasHi && hi > 0:
		return fmt.Sprintf("Up to $%s/hr", money(hi)), 0, hi
	}
	if amount, ok := firstNumber(node, fixedBudgetPaths); ok && amount > 0 {
		return "$" + money(amount), amount, amount
	}
	return DefaultBudget, 0, 0
}

func money(v float64) string {
	if v == math.Trunc(v) {
		return strconv.FormatFloat(v, 'f', 0, 64)
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func client(node map[string]any) storage.JobClient {
	c := storage.JobClient{
		Name:    firstString(node, clientNamePaths, DefaultClientName),
		Country: firstString(node, clientCountryPaths, ""),
	}
	if v, ok := firstNumber(node, clientRatingPaths); ok {
		c.Rating = v
	}
	if v, ok := firstNumber(node, clientSpentPaths); ok {
		c.TotalSpent = v
	}
	if v, ok := firstNumber(node, clientHiresPaths); ok {
		c.TotalHires = int(v)
	}
	if v, ok := firstNumber(node, clientPostedPaths); ok {
		c.TotalPostedJobs = int(v)
	}
	if v, ok := firstNumber(node, clientReviewsPaths); ok {
		c.TotalReviews = int(v)
	}
	for _, p := range clientVerifiedPaths {
		if v, ok := lookup(node, p); ok {
			if b, ok := asVerified(v); ok {
				c.PaymentVerified = b
				break
			}
		}
	}
	return c
}

func skills(node map[string]any) []string {
	for _, p := range skillListPaths {
		v, ok := lookup(node, p)
		if !ok {
			continue
		}
		var out []string
		switch list := v.(type) {
		case []any:
			for _, item := range list {
				if name := skillName(item); name != "" {
					out = append(out, name)
				}
			}
		case []string:
			for _, s := range list {
				if s = strings.TrimSpace(s); s != "" {
					out = append(out, s)
				}
			}
		case string:
			for _, s := range strings.Split(list, ",") {
				if s = strings.TrimSpace(s); s != "" {
					out = append(out, s)
				}
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return []string{DefaultSkill}
}

func skillName(item any) string {
	switch v := item.(type) {
	case string:
		return strings.TrimSpace(v)
	case map[string]any:
		for _, k := range skillNameKeys {
			if s, ok := asString(v[k]); ok {
				return s
			}
		}
	}
	return ""
}

func postedDate(node map[string]any) string {
	raw := firstString(node, postedPaths, "")
	if raw == "" {
		return DefaultPostedDate
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05.000-0700", "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC().Format(time.RFC3339)
		}
	}
	if ms, err := strconv.ParseInt(raw, 10, 64); err == nil && ms > 0 {
		return time.UnixMilli(ms).UTC().Format(time.RFC3339)
	}
	return raw
}

// humanize turns enum-like values such as "EXPERT_LEVEL" into "Expert Level".
func humanize(s string) string {
	if s == "" || strings.ToUpper(s) != s {
		return s
	}
	words := strings.Fields(strings.ReplaceAll(s, "_", " "))
	return cases.Title(language.English).String(strings.Join(words, " "))
}

func firstString(node map[string]any, paths []string, fallback string) string {
	for _, p := range paths {
		if v, ok := lookup(node, p); ok {
			if s, ok := asString(v); ok {
				return s
			}
		}
	}
	return fallback
}

func firstNumber(node map[string]any, paths []string) (float64, bool) {
	for _, p := range paths {
		if v, ok := lookup(node, p); ok {
			if f, ok := asNumber(v); ok {
				return f, true
			}
		}
	}
	return 0, false
}

func lookup(node map[string]any, path string) (any, bool) {
	var cur any = node
	for _, seg := range strings.Split(path, ".") {
		switch v := cur.(type) {
		case map[string]any:
			next, ok := v[seg]
			if !ok || next == nil {
				return nil, false
			}
			cur = next
		case []any:
			i, err := strconv.Atoi(seg)
			if err != nil || i < 0 || i >= len(v) {
				return nil, false
			}
			cur = v[i]
		default:
			return nil, false
		}
	}
	return cur, cur != nil
}

func asString(v any) (string, bool) {
	switch s := v.(type) {
	case string:
		s = strings.TrimSpace(s)
		return s, s != ""
	case fmt.Stringer:
		str := strings.TrimSpace(s.String())
		return str, str != ""
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64), true
	case int:
		return strconv.Itoa(s), true
	case int64:
		return strconv.FormatInt(s, 10), true
	case map[string]any:
		for _, k := range []string{"name", "prefLabel", "value", "displayValue"} {
			if str, ok := asString(s[k]); ok {
				return str, true
			}
		}
	}
	return "", false
}

func asNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, !math.IsNaN(n) && !math.IsInf(n, 0)
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		s := strings.TrimSpace(strings.TrimPrefix(strings.ReplaceAll(n, ",", ""), "$"))
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

func asVerified(v any) (bool, bool) {
	switch b := v.(type) {
	case bool:
		return b, true
	case string:
		switch strings.ToUpper(strings.TrimSpace(b)) {
		case "VERIFIED", "TRUE", "YES":
			return true, true
		case "NOT_VERIFIED", "UNVERIFIED", "FALSE", "NO":
			return false, true
		}
	case float64:
		return b != 0, true
	}
	return false, false
}
