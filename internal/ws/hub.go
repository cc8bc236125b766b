package ws

import (
	"net/http"

	"github.com/caffineConfession/QROrderingApp-sub000/internal/notify"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// 注文ボードへのライブ更新。状態は持たない（権威はDB側）。
// 接続が死んでいたら切るだけで、再接続と再取得はクライアントの仕事。
type Hub struct {
	bus      *notify.Hub
	upgrader websocket.Upgrader
	log      zerolog.Logger
}

func NewHub(bus *notify.Hub, log zerolog.Logger) *Hub {
	return &Hub{
		bus: bus,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		log: log,
	}
}

func (h *Hub) Serve(c echo.Context) error {
	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}

	events, cancel := h.bus.Subscribe()

	// 切断検知のための読み捨てループ
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	go func() {
		defer cancel()
		defer conn.Close()

		for {
			select {
			case <-done:
				return
			case ev, ok := <-events:
				if !ok {
					return
				}
				if err := conn.WriteJSON(ev); err != nil {
					h.log.Debug().Err(err).Msg("ws: write failed, closing connection")
					return
				}
			}
		}
	}()

	return nil
}
