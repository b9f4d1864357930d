package notify

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatcher_WebhookURLBookkeeping(t *testing.T) {
	d := NewDispatcher(2)

	assert.Equal(t, "", d.GetWebhookURL("sheet1", "A1"))

	d.SetWebhookURL("sheet1", "A1", "https://example.test/hook")
	assert.Equal(t, "https://example.test/hook", d.GetWebhookURL("sheet1", "A1"))

	d.SetWebhookURL("sheet1", "A1", "")
	assert.Equal(t, "", d.GetWebhookURL("sheet1", "A1"))
}

func TestDispatcher_NotifyDeliversToSubscriber(t *testing.T) {
	var mu sync.Mutex
	var received CellUpdate

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		_ = json.NewDecoder(r.Body).Decode(&received)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	d := NewDispatcher(2)
	d.Start()
	defer d.Close()

	d.SetWebhookURL("sheet1", "A1", server.URL)
	d.Notify("sheet1", []CellUpdate{{Position: "A1", Text: "1", Value: "1"}})

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return received.Position == "A1"
	}, time.Second, 10*time.Millisecond)
}

func TestDispatcher_NotifyWithoutSubscribersIsNoop(t *testing.T) {
	d := NewDispatcher(2)
	d.Start()
	defer d.Close()

	d.Notify("sheet1", []CellUpdate{{Position: "A1"}})
}

func TestDispatcher_NonPositiveWorkerCountFallsBackToDefault(t *testing.T) {
	d := NewDispatcher(0)
	assert.Equal(t, DefaultWorkerCount, d.workerCount)

	d = NewDispatcher(-3)
	assert.Equal(t, DefaultWorkerCount, d.workerCount)
}

func TestDispatcher_CloseWaitsForInFlightDelivery(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(started)
		<-release
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	d := NewDispatcher(1)
	d.Start()

	d.SetWebhookURL("sheet1", "A1", server.URL)
	d.Notify("sheet1", []CellUpdate{{Position: "A1"}})

	<-started

	closed := make(chan struct{})
	go func() {
		d.Close()
		close(closed)
	}()

	select {
	case <-closed:
		t.Fatal("Close returned before the in-flight delivery finished")
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	<-closed
}
