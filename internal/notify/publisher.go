package notify

import "context"

const EventOrdersUpdated = "ORDERS_UPDATED"

type Event struct {
	Type    string `json:"type"`
	OrderID int64  `json:"order_id"`
	Status  string `json:"status"`
}

// 通知はbest-effort。Publishはブロックせず、失敗しても
// 呼び出し元のトランザクション結果には影響しない。
type Publisher interface {
	Publish(ctx context.Context, ev Event)
}

// テストや通知不要の構成で使う
type NopPublisher struct{}

func (NopPublisher) Publish(ctx context.Context, ev Event) {}

// 複数先へ配る（プロセス内hub + Redisなど）
type MultiPublisher []Publisher

func (m MultiPublisher) Publish(ctx context.Context, ev Event) {
	for _, p := range m {
		p.Publish(ctx, ev)
	}
}
