package notify_test

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ogulcanaydogan/PnL-Guardian/pkg/alerts"
	"github.com/ogulcanaydogan/PnL-Guardian/pkg/model"
	"github.com/ogulcanaydogan/PnL-Guardian/pkg/notify"
	"github.com/ogulcanaydogan/PnL-Guardian/pkg/storage"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []alerts.Message
	err  error
}

func (r *recordingNotifier) Name() string { return "recording" }

func (r *recordingNotifier) Send(_ context.Context, msg alerts.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, msg)
	return r.err
}

type fixture struct {
	store     *storage.Store
	clock     *fakeClock
	notifier  *recordingNotifier
	svc       *notify.Service
	projectID string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store, err := storage.NewSQLite(filepath.Join(t.TempDir(), "notify.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	project := &model.Project{
		OwnerID:      "owner-1",
		Name:         "Warehouse",
		ProjectValue: decimal.NewFromInt(100000),
		Status:       model.ProjectActive,
		Deadline:     time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, store.SaveProject(context.Background(), project))

	clock := &fakeClock{now: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
	notifier := &recordingNotifier{}
	svc := notify.NewService(store, []alerts.Notifier{notifier}, nil, notify.WithClock(clock.Now))

	return &fixture{store: store, clock: clock, notifier: notifier, svc: svc, projectID: project.ID}
}

func (f *fixture) intent(msg string) notify.Intent {
	return notify.Intent{
		UserID:    "owner-1",
		ProjectID: &f.projectID,
		Type:      model.NotificationBudgetWarning75,
		Title:     "Budget Warning",
		Message:   msg,
		Metadata:  map[string]any{"percentage": 80.0},
	}
}

func TestCreateOrRefresh_DedupWithinWindow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, outcome, err := f.svc.CreateOrRefresh(ctx, f.intent("first"))
	require.NoError(t, err)
	assert.Equal(t, notify.Created, outcome)
	assert.Equal(t, model.StatusUnread, first.Status)
	assert.Nil(t, first.ReadAt)

	f.clock.Advance(23 * time.Hour)
	second, outcome, err := f.svc.CreateOrRefresh(ctx, f.intent("second"))
	require.NoError(t, err)
	assert.Equal(t, notify.Refreshed, outcome)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "second", second.Message)
	assert.True(t, second.CreatedAt.Equal(f.clock.Now()))
	assert.Equal(t, model.StatusUnread, second.Status)

	list, err := f.svc.List(ctx, model.NotificationFilter{UserID: "owner-1"})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "second", list[0].Message)
}

func TestCreateOrRefresh_WindowIsMeasuredFromLastRefresh(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, _, err := f.svc.CreateOrRefresh(ctx, f.intent("a"))
	require.NoError(t, err)

	// Refreshing moves createdAt forward, so a reading 23h after the
	// refresh still lands on the same row.
	f.clock.Advance(20 * time.Hour)
	_, outcome, err := f.svc.CreateOrRefresh(ctx, f.intent("b"))
	require.NoError(t, err)
	assert.Equal(t, notify.Refreshed, outcome)

	f.clock.Advance(23 * time.Hour)
	_, outcome, err = f.svc.CreateOrRefresh(ctx, f.intent("c"))
	require.NoError(t, err)
	assert.Equal(t, notify.Refreshed, outcome)
}

func TestCreateOrRefresh_NewRowAfterWindow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, _, err := f.svc.CreateOrRefresh(ctx, f.intent("first"))
	require.NoError(t, err)

	f.clock.Advance(notify.DedupWindow + time.Second)
	second, outcome, err := f.svc.CreateOrRefresh(ctx, f.intent("second"))
	require.NoError(t, err)
	assert.Equal(t, notify.Created, outcome)
	assert.NotEqual(t, first.ID, second.ID)

	count, err := f.svc.UnreadCount(ctx, "owner-1")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestCreateOrRefresh_ReadNotificationStartsNewStream(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, _, err := f.svc.CreateOrRefresh(ctx, f.intent("first"))
	require.NoError(t, err)
	_, err = f.svc.MarkRead(ctx, "owner-1", first.ID)
	require.NoError(t, err)

	f.clock.Advance(time.Hour)
	_, outcome, err := f.svc.CreateOrRefresh(ctx, f.intent("second"))
	require.NoError(t, err)
	assert.Equal(t, notify.Created, outcome)
}

func TestCreateOrRefresh_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	in := f.intent("x")
	in.UserID = ""
	_, _, err := f.svc.CreateOrRefresh(ctx, in)
	assert.ErrorIs(t, err, notify.ErrUserIDRequired)

	in = f.intent("x")
	in.Type = ""
	_, _, err = f.svc.CreateOrRefresh(ctx, in)
	assert.ErrorIs(t, err, notify.ErrTypeRequired)

	unconfigured := notify.NewService(nil, nil, nil)
	_, _, err = unconfigured.CreateOrRefresh(ctx, f.intent("x"))
	assert.ErrorIs(t, err, notify.ErrStoreNotConfigured)
}

func TestCreateOrRefresh_DeliversOnlyNewNotifications(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, _, err := f.svc.CreateOrRefresh(ctx, f.intent("first"))
	require.NoError(t, err)
	_, _, err = f.svc.CreateOrRefresh(ctx, f.intent("refresh"))
	require.NoError(t, err)

	require.Len(t, f.notifier.sent, 1)
	sent := f.notifier.sent[0]
	assert.Equal(t, "first", sent.Text)
	assert.Equal(t, f.projectID, sent.ProjectID)
	assert.Equal(t, model.AlertWarning, sent.Level)
}

func TestCreateOrRefresh_DeliveryFailureIsNotReturned(t *testing.T) {
	f := newFixture(t)
	f.notifier.err = errors.New("channel down")

	n, outcome, err := f.svc.CreateOrRefresh(context.Background(), f.intent("first"))
	require.NoError(t, err)
	assert.Equal(t, notify.Created, outcome)
	assert.NotEmpty(t, n.ID)
	assert.Len(t, f.notifier.sent, 1)
}

func TestCreateOrRefresh_IDGenerator(t *testing.T) {
	f := newFixture(t)
	svc := notify.NewService(f.store, nil, nil,
		notify.WithClock(f.clock.Now),
		notify.WithIDGenerator(func() string { return "fixed-id" }),
	)

	n, _, err := svc.CreateOrRefresh(context.Background(), f.intent("x"))
	require.NoError(t, err)
	assert.Equal(t, "fixed-id", n.ID)
}

func TestCreateOrRefresh_ConcurrentCallersShareOneRow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 6; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := f.svc.CreateOrRefresh(ctx, f.intent("same"))
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	count, err := f.svc.UnreadCount(ctx, "owner-1")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.Len(t, f.notifier.sent, 1)
}
