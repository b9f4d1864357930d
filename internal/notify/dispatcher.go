// Package notify dispatches webhook notifications when a subscribed cell's
// value changes, fanning updates out over a bounded worker pool.
package notify

import (
	"bytes"
	"context"
	"net/http"
	"sync"
	"time"

	sonic "github.com/bytedance/sonic"

	"github.com/gosheetlab/sheetcore/internal/logging"
)

var logger = logging.New("notify")

// DefaultWorkerCount is used when a caller passes a non-positive worker
// count to NewDispatcher.
const DefaultWorkerCount = 5

const sendTimeout = 5 * time.Second

type CellUpdate struct {
	Position string `json:"position"`
	Text     string `json:"text"`
	Value    string `json:"value"`
}

type sendCommand struct {
	webhookURL string
	update     CellUpdate
}

type sheetWebhooks map[string]string

// Dispatcher fans cell updates out to subscriber webhook URLs over a bounded
// worker pool, so a slow subscriber can't block SetCell callers. Its
// subscription table is shared across every sheet's registry entry, so it
// guards access with its own mutex rather than relying on the per-sheet
// lock a caller happens to be holding.
type Dispatcher struct {
	mu       sync.RWMutex
	webhooks map[string]sheetWebhooks

	queue       chan sendCommand
	workerCount int
	wg          sync.WaitGroup
}

// NewDispatcher builds a Dispatcher with workerCount delivery goroutines.
// A non-positive workerCount falls back to DefaultWorkerCount.
func NewDispatcher(workerCount int) *Dispatcher {
	if workerCount <= 0 {
		workerCount = DefaultWorkerCount
	}

	return &Dispatcher{
		webhooks:    map[string]sheetWebhooks{},
		queue:       make(chan sendCommand, 20),
		workerCount: workerCount,
	}
}

func (d *Dispatcher) SetWebhookURL(sheetID, cellPosition, webhookURL string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.webhooks[sheetID]; !ok {
		d.webhooks[sheetID] = sheetWebhooks{}
	}

	if webhookURL == "" {
		delete(d.webhooks[sheetID], cellPosition)
	} else {
		d.webhooks[sheetID][cellPosition] = webhookURL
	}
}

func (d *Dispatcher) GetWebhookURL(sheetID, cellPosition string) string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.webhooks[sheetID][cellPosition]
}

// Notify enqueues updates for any subscribed cell in sheetID. Non-blocking
// for the caller: the fan-out itself runs on a goroutine.
func (d *Dispatcher) Notify(sheetID string, updates []CellUpdate) {
	d.mu.RLock()
	subs, ok := d.webhooks[sheetID]
	if ok {
		subs = cloneWebhooks(subs)
	}
	d.mu.RUnlock()

	if !ok || len(subs) == 0 {
		return
	}

	go d.enqueue(subs, updates)
}

func cloneWebhooks(subs sheetWebhooks) sheetWebhooks {
	clone := make(sheetWebhooks, len(subs))
	for k, v := range subs {
		clone[k] = v
	}
	return clone
}

func (d *Dispatcher) enqueue(subs sheetWebhooks, updates []CellUpdate) {
	for _, update := range updates {
		if url, ok := subs[update.Position]; ok {
			d.queue <- sendCommand{webhookURL: url, update: update}
		}
	}
}

// Start launches the worker pool. Close waits for every in-flight delivery
// to finish before returning, so a caller can safely tear down resources
// (e.g. the persistence store) right after.
func (d *Dispatcher) Start() {
	for i := 0; i < d.workerCount; i++ {
		d.wg.Add(1)
		go d.runWorker()
	}
}

func (d *Dispatcher) Close() {
	close(d.queue)
	d.wg.Wait()
}

func (d *Dispatcher) runWorker() {
	defer d.wg.Done()

	client := &http.Client{Timeout: sendTimeout}

	for command := range d.queue {
		d.send(client, command)
	}
}

func (d *Dispatcher) send(client *http.Client, command sendCommand) {
	payload, err := sonic.Marshal(command.update)
	if err != nil {
		logger.Printf("webhook marshal error: %s", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, command.webhookURL, bytes.NewReader(payload))
	if err != nil {
		logger.Printf("webhook request error: %s", err)
		return
	}
	req.Header.Set("Content-Type", "application/json")

	response, err := client.Do(req)
	if err != nil {
		logger.Printf("webhook send error: %s", err)
		return
	}
	defer response.Body.Close()

	if response.StatusCode >= 300 {
		logger.Printf("unexpected webhook response status: %s", response.Status)
	}
}
