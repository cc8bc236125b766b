package notify

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const ordersChannel = "orders.updated"

// 複数インスタンス構成向け。Redis pub/subに流すだけで、
// 配達保証はしない（切れていたらwarnログのみ）。
type RedisPublisher struct {
	client *redis.Client
	log    zerolog.Logger
}

func NewRedisPublisher(client *redis.Client, log zerolog.Logger) *RedisPublisher {
	return &RedisPublisher{client: client, log: log}
}

func (p *RedisPublisher) Publish(ctx context.Context, ev Event) {
	payload, err := json.Marshal(ev)
	if err != nil {
		p.log.Warn().Err(err).Msg("notify: marshal event failed")
		return
	}

	// 呼び出し元のリクエストを待たせない
	go func() {
		pubCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()

		if err := p.client.Publish(pubCtx, ordersChannel, payload).Err(); err != nil {
			p.log.Warn().Err(err).Int64("order_id", ev.OrderID).Msg("notify: redis publish failed")
		}
	}()
}

// 他インスタンスからのイベントをプロセス内hubへ中継する。
// ctxのキャンセルで止まる。
func RelayFromRedis(ctx context.Context, client *redis.Client, hub *Hub, log zerolog.Logger) {
	sub := client.Subscribe(ctx, ordersChannel)
	defer sub.Close()

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var ev Event
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				log.Warn().Err(err).Msg("notify: bad event payload from redis")
				continue
			}
			hub.Publish(ctx, ev)
		}
	}
}
