package upwork

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"upwork-proposals/internal/storage"
)

func ptr[T any](v T) *T { return &v }

func sampleJobs() []storage.Job {
	return []storage.Job{
		{ID: "cheap", Category: "Web Development", BudgetMin: 50, BudgetMax: 50},
		{ID: "hourly", Category: "Diseño Gráfico", BudgetMin: 30, BudgetMax: 60, Client: storage.JobClient{PaymentVerified: true}},
		{ID: "big", Category: "Data Science & Analytics", BudgetMin: 5000, BudgetMax: 5000, Client: storage.JobClient{PaymentVerified: true}},
		{ID: "unknown", Category: "Web Development", Budget: DefaultBudget},
	}
}

func ids(jobs []storage.Job) []string {
	out := make([]string, 0, len(jobs))
	for _, j := range jobs {
		out = append(out, j.ID)
	}
	return out
}

func TestFilter_EmptyPreferencesIsIdentity(t *testing.T) {
	jobs := sampleJobs()
	assert.Equal(t, jobs, Filter(jobs, Preferences{}))
	assert.Equal(t, jobs, Filter(jobs, Preferences{Categories: []string{}, RequireVerifiedClient: ptr(false)}))
	assert.Nil(t, Filter(nil, Preferences{}))
}

func TestFilter(t *testing.T) {
	tests := []struct {
		name  string
		prefs Preferences
		want  []string
	}{
		{name: "min budget", prefs: Preferences{MinBudget: ptr(55.0)}, want: []string{"hourly", "big"}},
		{name: "max budget", prefs: Preferences{MaxBudget: ptr(100.0)}, want: []string{"cheap", "hourly"}},
		{name: "budget range", prefs: Preferences{MinBudget: ptr(40.0), MaxBudget: ptr(1000.0)}, want: []string{"cheap", "hourly"}},
		{name: "category accent insensitive", prefs: Preferences{Categories: []string{"diseno grafico"}}, want: []string{"hourly"}},
		{name: "category substring", prefs: Preferences{Categories: []string{"data science"}}, want: []string{"big"}},
		{name: "verified client", prefs: Preferences{RequireVerifiedClient: ptr(true)}, want: []string{"hourly", "big"}},
		{name: "combined", prefs: Preferences{Categories: []string{"web development"}, MinBudget: ptr(10.0)}, want: []string{"cheap"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(Filter(sampleJobs(), tt.prefs)))
		})
	}
}
