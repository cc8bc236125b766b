package usecase

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/caffineConfession/QROrderingApp-sub000/internal/domain/model"
	"github.com/caffineConfession/QROrderingApp-sub000/internal/gateway"
	"github.com/caffineConfession/QROrderingApp-sub000/internal/notify"
	repo "github.com/caffineConfession/QROrderingApp-sub000/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// 操作しているスタッフ（middlewareが解決する）
type StaffActor struct {
	ID   int64
	Role model.Role
}

type OrderUsecase struct {
	tx  repo.TransactionManager
	gw  gateway.PaymentGateway
	bus notify.Publisher
	log zerolog.Logger
}

func NewOrderUsecase(tx repo.TransactionManager, gw gateway.PaymentGateway, bus notify.Publisher, log zerolog.Logger) *OrderUsecase {
	return &OrderUsecase{tx: tx, gw: gw, bus: bus, log: log}
}

type CreateOrderItemInput struct {
	ProductID     int64             `json:"product_id"`
	ServingType   model.ServingType `json:"serving_type"`
	Quantity      int64             `json:"quantity"`
	Customization string            `json:"customization"`
}

type CreateOrderInput struct {
	CustomerName  string                 `json:"customer_name"`
	CustomerPhone string                 `json:"customer_phone"`
	PaymentMethod model.PaymentMethod    `json:"payment_method"`
	Source        model.OrderSource      `json:"-"`
	Items         []CreateOrderItemInput `json:"items"`
}

type OrderItemOutput struct {
	ProductID     int64             `json:"product_id"`
	Name          string            `json:"name"`
	Category      string            `json:"category"`
	ServingType   model.ServingType `json:"serving_type"`
	Quantity      int64             `json:"quantity"`
	Price         int64             `json:"price"`
	Customization string            `json:"customization,omitempty"`
}

type OrderOutput struct {
	ID             int64               `json:"id"`
	PublicID       string              `json:"public_id"`
	CustomerName   string              `json:"customer_name,omitempty"`
	Status         model.OrderStatus   `json:"status"`
	PaymentStatus  model.PaymentStatus `json:"payment_status"`
	PaymentMethod  model.PaymentMethod `json:"payment_method"`
	OrderSource    model.OrderSource   `json:"order_source"`
	TotalAmount    int64               `json:"total_amount"`
	GatewayOrderID *string             `json:"gateway_order_id,omitempty"`
	CreatedAt      time.Time           `json:"created_at"`
	Items          []OrderItemOutput   `json:"items"`
}

// 状態機械。AWAITING_PAYMENT_CONFIRMATION からの遷移は
// 支払い確定経路のみで、UpdateStatusでは不可。
var allowedTransitions = map[model.OrderStatus][]model.OrderStatus{
	model.OrderStatusPendingPrep:    {model.OrderStatusPreparing, model.OrderStatusCancelled},
	model.OrderStatusPreparing:      {model.OrderStatusReadyForPickup, model.OrderStatusCancelled},
	model.OrderStatusReadyForPickup: {model.OrderStatusCompleted, model.OrderStatusCancelled},
}

func transitionAllowed(from model.OrderStatus, to model.OrderStatus) bool {
	for _, t := range allowedTransitions[from] {
		if t == to {
			return true
		}
	}
	return false
}

func validStatus(s model.OrderStatus) bool {
	switch s {
	case model.OrderStatusAwaitingPayment, model.OrderStatusPendingPrep, model.OrderStatusPreparing,
		model.OrderStatusReadyForPickup, model.OrderStatusCompleted, model.OrderStatusCancelled:
		return true
	}
	return false
}

// 注文作成。客注文は未払いで始まり、スタッフ手入力は支払い済みで始まる。
// 在庫はここでは減らさない（減算は完了時のみ）。
func (u *OrderUsecase) CreateOrder(ctx context.Context, actor *StaffActor, in CreateOrderInput) (OrderOutput, error) {
	if len(in.Items) == 0 {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, KindValidation, "order must contain at least one item")
	}
	for _, it := range in.Items {
		if it.Quantity <= 0 {
			return OrderOutput{}, NewHTTPError(http.StatusBadRequest, KindValidation, "quantity must be positive")
		}
	}

	// 支払い方法と注文元の組み合わせチェック
	switch in.Source {
	case model.OrderSourceStaffManual:
		if actor == nil {
			return OrderOutput{}, NewHTTPError(http.StatusUnauthorized, KindUnauthorized, "unauthorized")
		}
		if actor.Role != model.RoleManualOrderTaker && actor.Role != model.RoleBusinessManager {
			return OrderOutput{}, NewHTTPError(http.StatusUnauthorized, KindUnauthorized, "unauthorized")
		}
		if in.PaymentMethod != model.PaymentMethodCash && in.PaymentMethod != model.PaymentMethodUPI {
			return OrderOutput{}, NewHTTPError(http.StatusBadRequest, KindValidation, "payment method not allowed for manual orders")
		}
	case model.OrderSourceCustomerOnline:
		if in.PaymentMethod != model.PaymentMethodCash && in.PaymentMethod != model.PaymentMethodRazorpay {
			return OrderOutput{}, NewHTTPError(http.StatusBadRequest, KindValidation, "payment method not allowed for online orders")
		}
	default:
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, KindValidation, "invalid order source")
	}

	// 明細の確定（スナップショット・合計）は読み取りだけ先に済ませる
	orderItems := make([]model.OrderItem, 0, len(in.Items))
	var total int64 = 0

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		for _, it := range in.Items {
			mi, err := r.MenuItems().FindByProductAndServing(ctx, it.ProductID, it.ServingType)
			if err == repo.ErrNotFound {
				return NewHTTPError(http.StatusNotFound, KindMenuItemNotFound,
					fmt.Sprintf("menu item not found: product %d / %s", it.ProductID, it.ServingType))
			}
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, KindInternal, "db error")
			}

			p, err := r.Products().FindByID(ctx, it.ProductID)
			if err == repo.ErrNotFound {
				return NewHTTPError(http.StatusNotFound, KindMenuItemNotFound,
					fmt.Sprintf("menu item not found: product %d / %s", it.ProductID, it.ServingType))
			}
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, KindInternal, "db error")
			}

			if !mi.IsAvailable || !p.IsAvailable {
				return NewHTTPError(http.StatusBadRequest, KindValidation,
					fmt.Sprintf("item not available: %s (%s)", p.Name, it.ServingType))
			}

			// 名前・カテゴリ・価格は購入時点のスナップショット
			orderItems = append(orderItems, model.OrderItem{
				ProductID:           it.ProductID,
				ProductNameSnapshot: p.Name,
				CategorySnapshot:    p.Category,
				ServingType:         it.ServingType,
				Quantity:            it.Quantity,
				PriceAtPurchase:     mi.Price,
				Customization:       it.Customization,
			})
			total += mi.Price * it.Quantity
		}
		return nil
	})
	if err != nil {
		return OrderOutput{}, err
	}

	now := time.Now()
	order := model.Order{
		PublicID:      uuid.NewString(),
		CustomerName:  in.CustomerName,
		CustomerPhone: in.CustomerPhone,
		TotalAmount:   total,
		PaymentMethod: in.PaymentMethod,
		OrderSource:   in.Source,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if in.Source == model.OrderSourceStaffManual {
		// 対面会計済みとして受け付ける
		order.PaymentStatus = model.PaymentStatusPaid
		order.Status = model.OrderStatusPendingPrep
		order.TakenByID = &actor.ID
	} else {
		// 客注文は支払い方法に関係なく未払いで開始する
		order.PaymentStatus = model.PaymentStatusPending
		order.Status = model.OrderStatusAwaitingPayment

		// 外部呼び出しをトランザクションの外で済ませる。
		// 後続のinsertが失敗しても、未払いのままのゲートウェイ注文が
		// 残るだけで実害はない（期限切れで消える）
		if in.PaymentMethod == model.PaymentMethodRazorpay {
			gatewayOrderID, err := u.gw.CreateRemoteOrder(ctx, total, "INR", order.PublicID)
			if err != nil {
				u.log.Error().Err(err).Msg("gateway order create failed")
				return OrderOutput{}, NewHTTPError(http.StatusBadGateway, KindInternal, "payment gateway error")
			}
			order.GatewayOrderID = &gatewayOrderID
		}
	}

	var out OrderOutput

	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		orderID, err := r.Orders().Create(ctx, order)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, KindInternal, "db error")
		}
		if err := r.OrderItems().CreateBulk(ctx, orderID, orderItems); err != nil {
			return NewHTTPError(http.StatusInternalServerError, KindInternal, "db error")
		}

		order.ID = orderID
		out = toOrderOutput(order, orderItems)
		return nil
	})

	if err != nil {
		return OrderOutput{}, err
	}

	u.bus.Publish(ctx, notify.Event{Type: notify.EventOrdersUpdated, OrderID: out.ID, Status: string(out.Status)})
	return out, nil
}

// ステータス遷移。COMPLETEDへの遷移時だけ、全明細の在庫確認と減算を
// 同一トランザクションで行う（全部成功か全部失敗か）。
func (u *OrderUsecase) UpdateStatus(ctx context.Context, actor StaffActor, orderID int64, newStatus model.OrderStatus) error {
	if actor.Role != model.RoleOrderProcessor && actor.Role != model.RoleBusinessManager {
		return NewHTTPError(http.StatusUnauthorized, KindUnauthorized, "unauthorized")
	}
	if orderID <= 0 {
		return NewHTTPError(http.StatusBadRequest, KindValidation, "invalid id")
	}
	if !validStatus(newStatus) {
		return NewHTTPError(http.StatusBadRequest, KindValidation, "invalid status")
	}

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		// 行ロックで読む。同じ注文の同時遷移はここで直列化される
		o, err := r.Orders().FindByIDForUpdate(ctx, orderID)
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, KindNotFound, "order not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, KindInternal, "db error")
		}

		if !transitionAllowed(o.Status, newStatus) {
			return NewHTTPError(http.StatusConflict, KindInvalidTransition,
				fmt.Sprintf("cannot transition from %s to %s", o.Status, newStatus))
		}

		if newStatus == model.OrderStatusCompleted {
			// COMPLETED ⇒ PAID の不変条件
			if o.PaymentStatus != model.PaymentStatusPaid {
				return NewHTTPError(http.StatusConflict, KindInvalidTransition,
					fmt.Sprintf("cannot complete unpaid order (payment status %s)", o.PaymentStatus))
			}

			items, err := r.OrderItems().ListByOrderID(ctx, orderID)
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, KindInternal, "db error")
			}
			if len(items) == 0 {
				return NewHTTPError(http.StatusBadRequest, KindValidation, "order has no items")
			}

			// 明細ごとに条件付き減算。1つでも足りなければ全てrollback
			for _, it := range items {
				ok, err := r.MenuItems().DecrementStockIfEnough(ctx, it.ProductID, it.ServingType, it.Quantity)
				if err != nil {
					return NewHTTPError(http.StatusInternalServerError, KindInternal, "db error")
				}
				if !ok {
					mi, findErr := r.MenuItems().FindByProductAndServing(ctx, it.ProductID, it.ServingType)
					if findErr == repo.ErrNotFound {
						return NewHTTPError(http.StatusNotFound, KindMenuItemNotFound,
							fmt.Sprintf("menu item not found: %s (%s)", it.ProductNameSnapshot, it.ServingType))
					}
					if findErr != nil {
						return NewHTTPError(http.StatusInternalServerError, KindInternal, "db error")
					}
					return NewHTTPError(http.StatusConflict, KindInsufficientStock,
						fmt.Sprintf("insufficient stock for %s (%s): available %d, requested %d",
							it.ProductNameSnapshot, it.ServingType, mi.StockQuantity, it.Quantity))
				}
			}
		}

		if err := r.Orders().UpdateStatus(ctx, orderID, newStatus, actor.ID); err != nil {
			return NewHTTPError(http.StatusInternalServerError, KindInternal, "db error")
		}
		return nil
	})

	if err != nil {
		return err
	}

	u.bus.Publish(ctx, notify.Event{Type: notify.EventOrdersUpdated, OrderID: orderID, Status: string(newStatus)})
	return nil
}

// 客向けのステータス確認（UUIDで引く）
func (u *OrderUsecase) GetByPublicID(ctx context.Context, publicID string) (OrderOutput, error) {
	var out OrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByPublicID(ctx, publicID)
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, KindNotFound, "order not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, KindInternal, "db error")
		}

		items, err := r.OrderItems().ListByOrderID(ctx, o.ID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, KindInternal, "db error")
		}

		out = toOrderOutput(o, items)
		return nil
	})

	if err != nil {
		return OrderOutput{}, err
	}
	return out, nil
}

// 管理画面の注文一覧
func (u *OrderUsecase) ListAdmin(ctx context.Context, f repo.AdminOrderListFilter) ([]OrderOutput, error) {
	if f.Page < 1 {
		return []OrderOutput{}, NewHTTPError(http.StatusBadRequest, KindValidation, "invalid page")
	}
	if f.Limit < 1 || f.Limit > 100 {
		return []OrderOutput{}, NewHTTPError(http.StatusBadRequest, KindValidation, "invalid limit")
	}

	var outs []OrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		orders, _, err := r.Orders().ListAdmin(ctx, f)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, KindInternal, "db error")
		}

		outs = make([]OrderOutput, 0, len(orders))
		for _, o := range orders {
			items, err := r.OrderItems().ListByOrderID(ctx, o.ID)
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, KindInternal, "db error")
			}
			outs = append(outs, toOrderOutput(o, items))
		}
		return nil
	})

	if err != nil {
		return []OrderOutput{}, err
	}
	return outs, nil
}

type RateOrderInput struct {
	Score   int    `json:"score"`
	Comment string `json:"comment"`
}

// 受け取り後の評価。COMPLETEDの注文に1回だけ
func (u *OrderUsecase) RateOrder(ctx context.Context, publicID string, in RateOrderInput) error {
	if in.Score < 1 || in.Score > 5 {
		return NewHTTPError(http.StatusBadRequest, KindValidation, "score must be between 1 and 5")
	}

	return u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByPublicID(ctx, publicID)
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, KindNotFound, "order not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, KindInternal, "db error")
		}

		if o.Status != model.OrderStatusCompleted {
			return NewHTTPError(http.StatusConflict, KindOrderNotEligible, "order is not completed yet")
		}

		if _, err := r.Ratings().FindByOrderID(ctx, o.ID); err == nil {
			return NewHTTPError(http.StatusConflict, KindValidation, "order already rated")
		} else if err != repo.ErrNotFound {
			return NewHTTPError(http.StatusInternalServerError, KindInternal, "db error")
		}

		if err := r.Ratings().Create(ctx, model.Rating{
			OrderID: o.ID,
			Score:   in.Score,
			Comment: in.Comment,
		}); err != nil {
			return NewHTTPError(http.StatusInternalServerError, KindInternal, "db error")
		}
		return nil
	})
}

func toOrderOutput(o model.Order, items []model.OrderItem) OrderOutput {
	outItems := make([]OrderItemOutput, 0, len(items))
	for _, it := range items {
		outItems = append(outItems, OrderItemOutput{
			ProductID:     it.ProductID,
			Name:          it.ProductNameSnapshot,
			Category:      it.CategorySnapshot,
			ServingType:   it.ServingType,
			Quantity:      it.Quantity,
			Price:         it.PriceAtPurchase,
			Customization: it.Customization,
		})
	}

	return OrderOutput{
		ID:             o.ID,
		PublicID:       o.PublicID,
		CustomerName:   o.CustomerName,
		Status:         o.Status,
		PaymentStatus:  o.PaymentStatus,
		PaymentMethod:  o.PaymentMethod,
		OrderSource:    o.OrderSource,
		TotalAmount:    o.TotalAmount,
		GatewayOrderID: o.GatewayOrderID,
		CreatedAt:      o.CreatedAt,
		Items:          outItems,
	}
}
