package proposal

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"upwork-proposals/internal/apperr"
	"upwork-proposals/internal/settings"
	"upwork-proposals/internal/storage"
	"upwork-proposals/internal/testutil"
)

type staticSettings struct{ s settings.Settings }

func (f staticSettings) Get(context.Context, string) (settings.Settings, error) { return f.s, nil }

type jobsByID map[string]storage.Job

func (j jobsByID) Get(_ context.Context, _ string, id string) (*storage.Job, error) {
	job, ok := j[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &job, nil
}

type stubSubmitter struct {
	err   error
	calls int
}

func (s *stubSubmitter) Submit(context.Context, string, string, string) (string, error) {
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	return "sub-1", nil
}

type editCollector struct {
	mu    sync.Mutex
	edits []storage.ProposalEdit
}

func (c *editCollector) RecordEdit(e storage.ProposalEdit) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.edits = append(c.edits, e)
}

type fixture struct {
	svc    *Service
	store  *testutil.MemStore
	llm    *stubLLM
	submit *stubSubmitter
	edits  *editCollector
	ctx    context.Context
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		store:  testutil.NewMemStore(),
		llm:    &stubLLM{text: "I can build this API quickly and cleanly.\n\nBest regards,\nAna Lima"},
		submit: &stubSubmitter{},
		edits:  &editCollector{},
		ctx:    context.Background(),
	}
	f.svc = NewService(Options{
		Store:     f.store,
		Settings:  staticSettings{testSettings()},
		Jobs:      jobsByID{"J1": testJob},
		Generator: NewGenerator(f.llm),
		Submitter: f.submit,
		Edits:     f.edits,
	})
	return f
}

func TestGenerate_StoresGeneratedRow(t *testing.T) {
	f := newFixture(t)

	res, err := f.svc.Generate(f.ctx, "u1", "J1", nil)
	require.NoError(t, err)
	assert.True(t, res.Persisted)
	assert.False(t, res.Fallback)

	p, err := f.store.GetProposal(f.ctx, "u1", "J1")
	require.NoError(t, err)
	assert.Equal(t, storage.StatusGenerated, p.Status)
	assert.Equal(t, "Build a Go API", p.JobTitle)
	assert.Equal(t, res.Draft.Text, p.GeneratedProposal)
}

func TestGenerate_FallbackStoredAsGeneratedFallback(t *testing.T) {
	f := newFixture(t)
	f.llm.err = errors.New("503 from provider")

	res, err := f.svc.Generate(f.ctx, "u1", "J1", nil)
	require.NoError(t, err)
	assert.True(t, res.Fallback)
	assert.Contains(t, res.Draft.Text, "Build a Go API")
	assert.Contains(t, res.Draft.Text, "Ana Lima")

	p, err := f.store.GetProposal(f.ctx, "u1", "J1")
	require.NoError(t, err)
	assert.Equal(t, storage.StatusGeneratedFallback, p.Status)
}

func TestGenerate_InlineJobAndValidation(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Generate(f.ctx, "u1", "", nil)
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = f.svc.Generate(f.ctx, "u1", "missing", nil)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	res, err := f.svc.Generate(f.ctx, "u1", "", &storage.Job{ID: "X9", Title: "Inline job"})
	require.NoError(t, err)
	assert.Equal(t, "X9", res.Proposal.JobID)
}

func TestGenerate_StorageFailureStillReturnsText(t *testing.T) {
	f := newFixture(t)
	f.store.Fail["UpsertProposal"] = true

	res, err := f.svc.Generate(f.ctx, "u1", "J1", nil)
	require.NoError(t, err)
	assert.False(t, res.Persisted)
	assert.NotEmpty(t, res.Draft.Text)
}

func TestSave_UpsertsSameRow(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Generate(f.ctx, "u1", "J1", nil)
	require.NoError(t, err)

	first, err := f.svc.Save(f.ctx, "u1", "J1", "first edit", "")
	require.NoError(t, err)
	assert.False(t, first.Created)

	second, err := f.svc.Save(f.ctx, "u1", "J1", "second edit", storage.StatusSaved)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 1, f.store.ProposalCount())

	p, err := f.store.GetProposal(f.ctx, "u1", "J1")
	require.NoError(t, err)
	assert.Equal(t, "second edit", p.EditedProposal)
	assert.Equal(t, storage.StatusSaved, p.Status)
	assert.NotEmpty(t, p.GeneratedProposal, "generated text is kept")

	assert.Len(t, f.edits.edits, 2)
	assert.Equal(t, "second edit", f.edits.edits[1].EditedText)
}

func TestSave_NewRowReportsCreated(t *testing.T) {
	f := newFixture(t)

	res, err := f.svc.Save(f.ctx, "u1", "J2", "handwritten", "")
	require.NoError(t, err)
	assert.True(t, res.Created)
	assert.Empty(t, f.edits.edits, "no generated text to compare against")
}

func TestSave_Errors(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Save(f.ctx, "u1", "J1", "", "")
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = f.svc.Save(f.ctx, "u1", "J1", "text", storage.StatusSent)
	assert.ErrorIs(t, err, apperr.ErrValidation)

	f.store.Fail["UpsertProposal"] = true
	_, err = f.svc.Save(f.ctx, "u1", "J1", "text", "")
	assert.Error(t, err, "critical write failures surface")
}

func TestSend_MarksSentEvenWhenSubmissionFails(t *testing.T) {
	f := newFixture(t)
	f.submit.err = apperr.ErrUpstreamUnavailable
	_, err := f.svc.Generate(f.ctx, "u1", "J1", nil)
	require.NoError(t, err)

	res, err := f.svc.Send(f.ctx, "u1", "J1", "Edited text, ready to go!")
	require.NoError(t, err)
	assert.False(t, res.Submitted)
	assert.NotEmpty(t, res.Message)
	require.NotNil(t, res.SentAt)

	p, err := f.store.GetProposal(f.ctx, "u1", "J1")
	require.NoError(t, err)
	assert.Equal(t, storage.StatusSent, p.Status)
	assert.Equal(t, "Edited text, ready to go!", p.EditedProposal)
	require.NotNil(t, p.SentAt)
	assert.Equal(t, 1, f.store.ProposalCount())
}

func TestSend_ResendKeepsFirstSentAt(t *testing.T) {
	f := newFixture(t)
	first := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	f.svc.now = func() time.Time { return first }

	res, err := f.svc.Send(f.ctx, "u1", "J1", "v1")
	require.NoError(t, err)
	assert.True(t, res.Submitted)
	assert.Equal(t, "sub-1", res.SubmissionID)

	f.svc.now = func() time.Time { return first.Add(time.Hour) }
	res, err = f.svc.Send(f.ctx, "u1", "J1", "v2")
	require.NoError(t, err)
	assert.True(t, res.SentAt.Equal(first))
}

func TestSentIsTerminal(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Send(f.ctx, "u1", "J1", "done")
	require.NoError(t, err)

	_, err = f.svc.Save(f.ctx, "u1", "J1", "again", "")
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = f.svc.Generate(f.ctx, "u1", "J1", nil)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestGenerate_UsesEditHints(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.store.InsertProposalEdit(f.ctx, &storage.ProposalEdit{
		UserID: "u1", JobID: "J0", Patterns: []string{PatternShorter, PatternAddedQuestion},
	}))

	_, err := f.svc.Generate(f.ctx, "u1", "J1", nil)
	require.NoError(t, err)
	assert.Contains(t, f.llm.last.Prompt, PatternAddedQuestion)
}

func TestHistory(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Save(f.ctx, "u1", "A", "a", "")
	require.NoError(t, err)
	_, err = f.svc.Save(f.ctx, "u2", "B", "b", "")
	require.NoError(t, err)

	list, err := f.svc.History(f.ctx, "u1", 0)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "A", list[0].JobID)
}

func TestGenerate_KeepsSavedEdit(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Generate(f.ctx, "u1", "J1", nil)
	require.NoError(t, err)
	_, err = f.svc.Save(f.ctx, "u1", "J1", "my careful edit", "")
	require.NoError(t, err)

	f.llm.text = "A fresh take on your Go API.\n\nBest regards,\nAna Lima"
	res, err := f.svc.Generate(f.ctx, "u1", "J1", nil)
	require.NoError(t, err)

	p, err := f.store.GetProposal(f.ctx, "u1", "J1")
	require.NoError(t, err)
	assert.Equal(t, "my careful edit", p.EditedProposal)
	assert.Equal(t, res.Draft.Text, p.GeneratedProposal)
	assert.Equal(t, storage.StatusGenerated, p.Status)
	assert.Equal(t, 1, f.store.ProposalCount())
}
