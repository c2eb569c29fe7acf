package scheduler

import (
	"context"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/ChimbuezeDavid/TecoTransit-sub000/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Mock jobs ---

type mockJobs struct {
	rescheduled chan struct{}
	cleaned     chan struct{}
}

func newMockJobs() *mockJobs {
	return &mockJobs{rescheduled: make(chan struct{}, 1), cleaned: make(chan struct{}, 1)}
}

func (m *mockJobs) RunDaily(ctx context.Context) (*service.RescheduleReport, error) {
	m.rescheduled <- struct{}{}
	return &service.RescheduleReport{}, nil
}

func (m *mockJobs) Run(ctx context.Context) (*service.CleanupReport, error) {
	m.cleaned <- struct{}{}
	return nil, assert.AnError
}

func testConfig() Config {
	loc, err := time.LoadLocation("Africa/Lagos")
	if err != nil {
		panic(err)
	}
	return Config{
		Location:       loc,
		RescheduleCron: "5 0 * * *",
		CleanupCron:    "30 0 * * *",
	}
}

func waitFor(t *testing.T, ch <-chan struct{}) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(5 * time.Second):
		t.Fatal("job did not run")
	}
}

// --- Tests ---

func TestNew_RegistersJobs(t *testing.T) {
	s, err := New(testConfig(), newMockJobs(), newMockJobs())
	require.NoError(t, err)
	defer s.Shutdown()

	assert.ElementsMatch(t, []string{JobReschedule, JobCleanup}, s.JobNames())
}

func TestNew_InvalidCron(t *testing.T) {
	cfg := testConfig()
	cfg.CleanupCron = "every day at noon"

	_, err := New(cfg, newMockJobs(), newMockJobs())

	require.Error(t, err)
	assert.Contains(t, err.Error(), JobCleanup)
}

func TestNew_RejectsUnnamedZone(t *testing.T) {
	cfg := testConfig()
	cfg.Location = time.FixedZone("WAT", 3600)

	_, err := New(cfg, newMockJobs(), newMockJobs())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "WAT")
}

func TestNew_NextRunInLocation(t *testing.T) {
	s, err := New(testConfig(), newMockJobs(), newMockJobs())
	require.NoError(t, err)
	defer s.Shutdown()
	s.Start()

	loc := testConfig().Location
	for _, j := range s.s.Jobs() {
		var next time.Time
		require.Eventually(t, func() bool {
			next, err = j.NextRun()
			return err == nil && !next.IsZero()
		}, 5*time.Second, 10*time.Millisecond, j.Name())
		local := next.In(loc)
		assert.Equal(t, 0, local.Hour(), j.Name())
		assert.Contains(t, []int{5, 30}, local.Minute(), j.Name())
	}
}

func TestRunNow_InvokesJobs(t *testing.T) {
	jobs := newMockJobs()
	s, err := New(testConfig(), jobs, jobs)
	require.NoError(t, err)
	s.Start()
	defer s.Shutdown()

	require.NoError(t, s.RunNow(JobReschedule))
	waitFor(t, jobs.rescheduled)

	// a failing job is logged, not fatal
	require.NoError(t, s.RunNow(JobCleanup))
	waitFor(t, jobs.cleaned)

	assert.Error(t, s.RunNow("nope"))
}
