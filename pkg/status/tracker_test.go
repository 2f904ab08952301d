package status

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/crawlora/sequence-runner/pkg/tracking"
)

func statuses(u *fakeUpdater) []string {
	out := make([]string, 0, len(u.calls))
	for _, c := range u.calls {
		out = append(out, c.update.Status)
	}
	return out
}

func TestTracker_Success(t *testing.T) {
	updater := &fakeUpdater{}
	tracker := NewReporter(updater, "seq", nil).NewTracker("key", true)

	tracker.Start(context.Background())
	tracker.Finish(context.Background(), nil)

	assert.Equal(t, []string{"in_progress", "success"}, statuses(updater))
	assert.Equal(t, []Transition{InProgress, Success}, tracker.Emitted())
}

func TestTracker_Failure(t *testing.T) {
	updater := &fakeUpdater{}
	tracker := NewReporter(updater, "seq", nil).NewTracker("key", true)

	tracker.Start(context.Background())
	tracker.Finish(context.Background(), errors.New("boom"))

	assert.Equal(t, []string{"in_progress", "failed"}, statuses(updater))
	assert.Equal(t, "boom", updater.calls[1].update.Error)
}

func TestTracker_AtMostOnceEach(t *testing.T) {
	updater := &fakeUpdater{}
	tracker := NewReporter(updater, "seq", nil).NewTracker("key", true)
	ctx := context.Background()

	tracker.Start(ctx)
	tracker.Start(ctx)
	tracker.Finish(ctx, errors.New("first"))
	tracker.Finish(ctx, nil)
	tracker.Start(ctx)

	assert.Equal(t, []string{"in_progress", "failed"}, statuses(updater))
}

func TestTracker_FinishWithoutStart(t *testing.T) {
	updater := &fakeUpdater{}
	tracker := NewReporter(updater, "seq", nil).NewTracker("key", true)
	ctx := context.Background()

	tracker.Finish(ctx, nil)
	assert.Empty(t, updater.calls)

	tracker.Start(ctx)
	tracker.Finish(ctx, nil)
	assert.Equal(t, []string{"in_progress", "success"}, statuses(updater))
}

func TestTracker_Disabled(t *testing.T) {
	updater := &fakeUpdater{}
	tracker := NewReporter(updater, "seq", nil).NewTracker("key", false)

	tracker.Start(context.Background())
	tracker.Finish(context.Background(), nil)

	assert.Empty(t, updater.calls)
	assert.Empty(t, tracker.Emitted())
}

func TestTracker_NoSequenceID(t *testing.T) {
	updater := &fakeUpdater{}
	tracker := NewReporter(updater, "", nil).NewTracker("key", true)

	tracker.Start(context.Background())
	tracker.Finish(context.Background(), errors.New("boom"))

	assert.Empty(t, updater.calls)
}

func TestTracker_FinishAfterCancel(t *testing.T) {
	var received []string
	var mu sync.Mutex
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var update tracking.SequenceUpdate
		_ = json.NewDecoder(r.Body).Decode(&update)
		mu.Lock()
		received = append(received, update.Status)
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := tracking.NewClient(server.URL, time.Second)
	tracker := NewReporter(client, "seq", nil).NewTracker("key", true)

	ctx, cancel := context.WithCancel(context.Background())
	tracker.Start(ctx)
	cancel()
	tracker.Finish(ctx, errors.New("interrupted"))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"in_progress", "failed"}, received)
}
