package notify

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
)

// プロセス内のファンアウト。購読者が遅くても落とすだけで、
// Publish側を待たせない。
type Hub struct {
	mu   sync.RWMutex
	subs map[int]chan Event
	next int
	log  zerolog.Logger
}

func NewHub(log zerolog.Logger) *Hub {
	return &Hub{
		subs: make(map[int]chan Event),
		log:  log,
	}
}

// Subscribe は受信チャネルと購読解除関数を返す。
func (h *Hub) Subscribe() (<-chan Event, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := h.next
	h.next++
	ch := make(chan Event, 16)
	h.subs[id] = ch

	cancel := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if c, ok := h.subs[id]; ok {
			delete(h.subs, id)
			close(c)
		}
	}
	return ch, cancel
}

func (h *Hub) Publish(ctx context.Context, ev Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, ch := range h.subs {
		select {
		case ch <- ev:
		default:
			// バッファ満杯の購読者はスキップ（best-effort）
			h.log.Warn().Int64("order_id", ev.OrderID).Msg("notify: subscriber buffer full, event dropped")
		}
	}
}
