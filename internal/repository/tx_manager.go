package repository

import "context"

// トランザクション内で使う約束
type TxRepos interface {
	Orders() OrderRepository
	OrderItems() OrderItemRepository
	MenuItems() MenuItemRepository
	Products() ProductRepository
	Ratings() RatingRepository
}

// UsecaseからTxの開始/commit/rollbackを隠す。
// fnがerrorを返したら必ずrollbackされる（部分適用は残らない）。
type TransactionManager interface {
	WithinTx(ctx context.Context, fn func(r TxRepos) error) error
}
