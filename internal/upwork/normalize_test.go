package upwork

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeNode(t *testing.T, raw string) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal([]byte(raw), &m))
	return m
}

func TestNormalize_FullNode(t *testing.T) {
	node := decodeNode(t, `{
		"id": "~01abc",
		"title": "Build a Go API",
		"description": "REST service with Postgres",
		"createdDateTime": "2025-03-01T10:00:00Z",
		"experienceLevel": "EXPERT",
		"category": "Web Development",
		"totalApplicants": 7,
		"hourlyBudgetMin": {"rawValue": "30"},
		"hourlyBudgetMax": {"rawValue": "55.5"},
		"skills": [{"name": "golang"}, {"prettyName": "PostgreSQL"}, "Docker"],
		"job": {"contractTerms": {"contractType": "HOURLY"}},
		"client": {
			"totalHires": 12,
			"totalPostedJobs": 20,
			"totalSpent": {"rawValue": "15000"},
			"verificationStatus": "VERIFIED",
			"location": {"country": "Germany"},
			"totalReviews": 9,
			"totalFeedback": 4.8
		}
	}`)

	job := Normalize(node)

	assert.Equal(t, "~01abc", job.ID)
	assert.Equal(t, "Build a Go API", job.Title)
	assert.Equal(t, "$30-$55.50/hr", job.Budget)
	assert.Equal(t, 30.0, job.BudgetMin)
	assert.Equal(t, 55.5, job.BudgetMax)
	assert.Equal(t, []string{"golang", "PostgreSQL", "Docker"}, job.Skills)
	assert.Equal(t, "Expert", job.ExperienceLevel)
	assert.Equal(t, "Hourly", job.JobType)
	assert.Equal(t, "2025-03-01T10:00:00Z", job.PostedDate)
	assert.Equal(t, 7, job.ProposalCount)
	assert.Equal(t, "https://www.upwork.com/jobs/~01abc", job.URL)
	assert.Equal(t, "Germany", job.Client.Country)
	assert.Equal(t, 4.8, job.Client.Rating)
	assert.Equal(t, 15000.0, job.Client.TotalSpent)
	assert.True(t, job.Client.PaymentVerified)
	assert.Equal(t, DefaultClientName, job.Client.Name)
}

func TestNormalize_FixedBudget(t *testing.T) {
	job := Normalize(decodeNode(t, `{"id":"1","title":"Logo","amount":{"rawValue":"500.0"}}`))
	assert.Equal(t, "$500", job.Budget)
	assert.Equal(t, 500.0, job.BudgetMin)
	assert.Equal(t, 500.0, job.BudgetMax)
}

func TestNormalize_Defaults(t *testing.T) {
	job := Normalize(map[string]any{})

	assert.Equal(t, DefaultBudget, job.Budget)
	assert.Equal(t, []string{DefaultSkill}, job.Skills)
	assert.Equal(t, DefaultTitle, job.Title)
	assert.Equal(t, DefaultDescription, job.Description)
	assert.Equal(t, DefaultCategory, job.Category)
	assert.Equal(t, DefaultNotSpecified, job.JobType)
	assert.Equal(t, DefaultNotSpecified, job.ExperienceLevel)
	assert.Equal(t, DefaultPostedDate, job.PostedDate)
	assert.Equal(t, DefaultClientName, job.Client.Name)
	assert.NotEmpty(t, job.ID)
}

func TestNormalize_DerivedIDIsDeterministic(t *testing.T) {
	a := Normalize(map[string]any{"title": "Same", "description": "Body"})
	b := Normalize(map[string]any{"title": "Same", "description": "Body"})
	c := Normalize(map[string]any{"title": "Other", "description": "Body"})

	assert.Equal(t, a.ID, b.ID)
	assert.NotEqual(t, a.ID, c.ID)
}

func TestNormalize_NeverPanics(t *testing.T) {
	inputs := []map[string]any{
		nil,
		{"title": 42, "skills": "go, sql ,", "budget": "$1,200"},
		{"skills": []any{nil, 3, map[string]any{}}, "client": "not a map"},
		{"amount": map[string]any{"rawValue": []any{"x"}}, "hourlyBudgetMin": "abc"},
		{"client": map[string]any{"location": []any{1, 2}}, "createdDateTime": 12},
		{"job": []any{map[string]any{"title": "nested"}}, "category": map[string]any{"name": nil}},
		{"experienceLevel": "ÉLITE_LEVEL", "totalApplicants": "many"},
	}
	for _, in := range inputs {
		assert.NotPanics(t, func() {
			job := Normalize(in)
			assert.NotEmpty(t, job.Budget)
			assert.NotEmpty(t, job.Skills)
		})
	}

	job := Normalize(inputs[1])
	assert.Equal(t, "42", job.Title)
	assert.Equal(t, []string{"go", "sql"}, job.Skills)
	assert.Equal(t, "$1200", job.Budget)
}

func TestNormalizeAll_SkipsNil(t *testing.T) {
	jobs := NormalizeAll([]map[string]any{nil, {"id": "a"}, {"id": "b"}})
	require.Len(t, jobs, 2)
	assert.Equal(t, "a", jobs[0].ID)
}
