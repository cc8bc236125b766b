package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/caffineConfession/QROrderingApp-sub000/internal/domain/model"
	"github.com/caffineConfession/QROrderingApp-sub000/internal/gateway"
	"github.com/caffineConfession/QROrderingApp-sub000/internal/notify"
	repo "github.com/caffineConfession/QROrderingApp-sub000/internal/repository"

	"github.com/rs/zerolog"
)

// 支払い確定の3経路（レジ現金・クライアント署名検証・webhook）。
// どの経路も冪等で、PAIDをPENDINGへ戻すことはない。
type PaymentUsecase struct {
	tx            repo.TransactionManager
	keySecret     string
	webhookSecret string
	bus           notify.Publisher
	log           zerolog.Logger
}

func NewPaymentUsecase(tx repo.TransactionManager, keySecret string, webhookSecret string, bus notify.Publisher, log zerolog.Logger) *PaymentUsecase {
	return &PaymentUsecase{
		tx:            tx,
		keySecret:     keySecret,
		webhookSecret: webhookSecret,
		bus:           bus,
		log:           log,
	}
}

// レジでの現金受領。対象は「オンライン注文・現金・未払い・支払い待ち」
// の完全一致のみ。処理済み注文やスタッフ手入力注文は弾く。
func (u *PaymentUsecase) ConfirmCashPayment(ctx context.Context, actor StaffActor, orderID int64) error {
	if actor.Role != model.RoleOrderProcessor && actor.Role != model.RoleBusinessManager {
		return NewHTTPError(http.StatusUnauthorized, KindUnauthorized, "unauthorized")
	}
	if orderID <= 0 {
		return NewHTTPError(http.StatusBadRequest, KindValidation, "invalid id")
	}

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByIDForUpdate(ctx, orderID)
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, KindNotFound, "order not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, KindInternal, "db error")
		}

		eligible := o.PaymentMethod == model.PaymentMethodCash &&
			o.PaymentStatus == model.PaymentStatusPending &&
			o.OrderSource == model.OrderSourceCustomerOnline &&
			o.Status == model.OrderStatusAwaitingPayment
		if !eligible {
			return NewHTTPError(http.StatusConflict, KindOrderNotEligible,
				fmt.Sprintf("order not eligible for cash confirmation (status %s, payment %s, method %s, source %s)",
					o.Status, o.PaymentStatus, o.PaymentMethod, o.OrderSource))
		}

		if err := r.Orders().MarkPaid(ctx, orderID, repo.PaidUpdate{ProcessedByID: &actor.ID}); err != nil {
			return NewHTTPError(http.StatusInternalServerError, KindInternal, "db error")
		}
		return nil
	})

	if err != nil {
		return err
	}

	u.bus.Publish(ctx, notify.Event{Type: notify.EventOrdersUpdated, OrderID: orderID, Status: string(model.OrderStatusPendingPrep)})
	return nil
}

type VerifyGatewayPaymentInput struct {
	InternalOrderID  string `json:"internal_order_id"`
	GatewayOrderID   string `json:"gateway_order_id"`
	GatewayPaymentID string `json:"gateway_payment_id"`
	Signature        string `json:"signature"`
}

// クライアントから戻ってきた署名の検証。
// 署名が正しくても (内部ID, ゲートウェイ注文ID) が複合一致しなければ更新しない。
func (u *PaymentUsecase) VerifyGatewayPayment(ctx context.Context, in VerifyGatewayPaymentInput) error {
	if in.InternalOrderID == "" || in.GatewayOrderID == "" || in.GatewayPaymentID == "" || in.Signature == "" {
		return NewHTTPError(http.StatusBadRequest, KindValidation, "missing payment verification fields")
	}

	payload := in.GatewayOrderID + "|" + in.GatewayPaymentID
	if !gateway.VerifySignature(u.keySecret, payload, in.Signature) {
		// 期待値は絶対に返さない
		u.log.Warn().
			Str("security_event", "payment_signature_mismatch").
			Str("internal_order_id", in.InternalOrderID).
			Str("gateway_order_id", in.GatewayOrderID).
			Msg("payment signature verification failed")
		return NewHTTPError(http.StatusBadRequest, KindSignatureMismatch, "payment verification failed")
	}

	var orderID int64
	var transitioned bool

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindForGatewayVerifyForUpdate(ctx, in.InternalOrderID, in.GatewayOrderID)
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusConflict, KindOrderMismatch, "order does not match gateway order")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, KindInternal, "db error")
		}

		orderID = o.ID

		// 別経路が先に確定していたら何もしない（冪等）
		if o.PaymentStatus == model.PaymentStatusPaid {
			return nil
		}

		paymentID := in.GatewayPaymentID
		if err := r.Orders().MarkPaid(ctx, o.ID, repo.PaidUpdate{GatewayPaymentID: &paymentID}); err != nil {
			return NewHTTPError(http.StatusInternalServerError, KindInternal, "db error")
		}
		transitioned = true
		return nil
	})

	if err != nil {
		return err
	}

	if transitioned {
		u.bus.Publish(ctx, notify.Event{Type: notify.EventOrdersUpdated, OrderID: orderID, Status: string(model.OrderStatusPendingPrep)})
	}
	return nil
}

// 支払い確定として扱うイベント。これ以外（payment.failedなど）は
// 署名が正しくても注文に触らない
var confirmingWebhookEvents = map[string]bool{
	"payment.captured": true,
	"order.paid":       true,
}

type webhookPayload struct {
	Event   string `json:"event"`
	Payload struct {
		Payment struct {
			Entity struct {
				ID      string                 `json:"id"`
				OrderID string                 `json:"order_id"`
				Notes   map[string]interface{} `json:"notes"`
			} `json:"entity"`
		} `json:"payment"`
		Order struct {
			Entity struct {
				ID      string `json:"id"`
				Receipt string `json:"receipt"`
			} `json:"entity"`
		} `json:"order"`
	} `json:"payload"`
}

// ゲートウェイからの非同期通知。署名はraw bodyに対して検証する
// （パース前・webhook専用シークレット）。重複配達は成功扱いのno-op。
func (u *PaymentUsecase) HandleGatewayWebhook(ctx context.Context, rawBody []byte, signatureHeader string) error {
	if !gateway.VerifySignature(u.webhookSecret, string(rawBody), signatureHeader) {
		u.log.Warn().
			Str("security_event", "webhook_signature_mismatch").
			Msg("webhook signature verification failed")
		return NewHTTPError(http.StatusBadRequest, KindInvalidWebhookSig, "invalid webhook")
	}

	var wh webhookPayload
	if err := json.Unmarshal(rawBody, &wh); err != nil {
		// 署名は正しいが本文が読めない。ゲートウェイの再配達に任せる
		return NewHTTPError(http.StatusBadRequest, KindValidation, "invalid webhook payload")
	}

	if !confirmingWebhookEvents[wh.Event] {
		// payment.failed等。確定イベント以外は受領だけして何もしない
		u.log.Info().Str("event", wh.Event).Msg("webhook event ignored")
		return nil
	}

	var orderID int64
	var transitioned bool

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := u.resolveOrder(ctx, r, wh)
		if err != nil {
			return err
		}

		orderID = o.ID

		// 重複配達・別経路先着は成功扱い
		if o.PaymentStatus == model.PaymentStatusPaid {
			return nil
		}

		upd := repo.PaidUpdate{}
		if wh.Payload.Payment.Entity.ID != "" {
			paymentID := wh.Payload.Payment.Entity.ID
			upd.GatewayPaymentID = &paymentID
		}
		if err := r.Orders().MarkPaid(ctx, o.ID, upd); err != nil {
			return NewHTTPError(http.StatusInternalServerError, KindInternal, "db error")
		}
		transitioned = true
		return nil
	})

	if err != nil {
		return err
	}

	if transitioned {
		u.bus.Publish(ctx, notify.Event{Type: notify.EventOrdersUpdated, OrderID: orderID, Status: string(model.OrderStatusPendingPrep)})
	}
	return nil
}

// 内部注文の解決順: (a) notesの内部ID (b) receipt (c) 保存済みゲートウェイ注文ID
func (u *PaymentUsecase) resolveOrder(ctx context.Context, r repo.TxRepos, wh webhookPayload) (model.Order, error) {
	if v, ok := wh.Payload.Payment.Entity.Notes["internal_order_id"].(string); ok && v != "" {
		o, err := r.Orders().FindByPublicIDForUpdate(ctx, v)
		if err == nil {
			return o, nil
		}
		if err != repo.ErrNotFound {
			return model.Order{}, NewHTTPError(http.StatusInternalServerError, KindInternal, "db error")
		}
	}

	if receipt := wh.Payload.Order.Entity.Receipt; receipt != "" {
		o, err := r.Orders().FindByPublicIDForUpdate(ctx, receipt)
		if err == nil {
			return o, nil
		}
		if err != repo.ErrNotFound {
			return model.Order{}, NewHTTPError(http.StatusInternalServerError, KindInternal, "db error")
		}
	}

	if gwOrderID := wh.Payload.Payment.Entity.OrderID; gwOrderID != "" {
		o, err := r.Orders().FindByGatewayOrderIDForUpdate(ctx, gwOrderID)
		if err == nil {
			return o, nil
		}
		if err != repo.ErrNotFound {
			return model.Order{}, NewHTTPError(http.StatusInternalServerError, KindInternal, "db error")
		}
	}

	return model.Order{}, NewHTTPError(http.StatusNotFound, KindOrderResolutionFailed, "could not resolve order from webhook")
}
