package housekeeping_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ogulcanaydogan/PnL-Guardian/internal/housekeeping"
)

type fakeArchiver struct {
	mu    sync.Mutex
	calls []time.Duration
	n     int
	err   error
}

func (f *fakeArchiver) ArchiveRead(_ context.Context, olderThan time.Duration) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, olderThan)
	return f.n, f.err
}

func (f *fakeArchiver) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func TestNew_InvalidSpec(t *testing.T) {
	_, err := housekeeping.New("not a cron", time.Hour, &fakeArchiver{}, slog.Default())
	assert.ErrorContains(t, err, "add archive job")
}

func TestNew_InvalidAge(t *testing.T) {
	_, err := housekeeping.New("@daily", 0, &fakeArchiver{}, slog.Default())
	assert.Error(t, err)
}

func TestRunOnce(t *testing.T) {
	var logs bytes.Buffer
	archiver := &fakeArchiver{n: 3}
	s, err := housekeeping.New("@daily", 720*time.Hour, archiver, slog.New(slog.NewJSONHandler(&logs, nil)))
	require.NoError(t, err)

	s.RunOnce()

	assert.Equal(t, []time.Duration{720 * time.Hour}, archiver.calls)
	assert.Contains(t, logs.String(), `"count":3`)
}

func TestRunOnce_LogsFailure(t *testing.T) {
	var logs bytes.Buffer
	archiver := &fakeArchiver{err: errors.New("disk full")}
	s, err := housekeeping.New("@daily", time.Hour, archiver, slog.New(slog.NewJSONHandler(&logs, nil)))
	require.NoError(t, err)

	s.RunOnce()

	assert.Contains(t, logs.String(), "disk full")
}

func TestStartStop(t *testing.T) {
	archiver := &fakeArchiver{}
	s, err := housekeeping.New("@every 1s", time.Hour, archiver, slog.New(slog.DiscardHandler))
	require.NoError(t, err)

	s.Start()
	assert.Eventually(t, func() bool { return archiver.callCount() > 0 }, 5*time.Second, 50*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	s.Stop(ctx)
}
