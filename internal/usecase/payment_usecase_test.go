package usecase

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"testing"

	"github.com/caffineConfession/QROrderingApp-sub000/internal/domain/model"
	repo "github.com/caffineConfession/QROrderingApp-sub000/internal/repository"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

const (
	testKeySecret     = "test-key-secret"
	testWebhookSecret = "test-webhook-secret"
)

type paymentUsecaseFixture struct {
	uc     *PaymentUsecase
	orders *OrderRepoMock
	bus    *PublisherRecorder
}

func newPaymentUsecaseFixture() *paymentUsecaseFixture {
	f := &paymentUsecaseFixture{
		orders: &OrderRepoMock{},
		bus:    &PublisherRecorder{},
	}
	tx := &TxManagerMock{Repos: &TxReposMock{
		orders:     f.orders,
		orderItems: &OrderItemRepoMock{},
		menuItems:  &MenuItemRepoMock{},
		products:   &ProductRepoMock{},
		ratings:    &RatingRepoMock{},
	}}
	f.uc = NewPaymentUsecase(tx, testKeySecret, testWebhookSecret, f.bus, zerolog.Nop())
	return f
}

func sign(secret string, payload string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(payload))
	return hex.EncodeToString(mac.Sum(nil))
}

// ---- 現金確定 ----

func TestConfirmCashPayment_HappyPath(t *testing.T) {
	f := newPaymentUsecaseFixture()

	f.orders.On("FindByIDForUpdate", mock.Anything, int64(1)).Return(model.Order{
		ID:            1,
		PaymentMethod: model.PaymentMethodCash,
		PaymentStatus: model.PaymentStatusPending,
		OrderSource:   model.OrderSourceCustomerOnline,
		Status:        model.OrderStatusAwaitingPayment,
	}, nil)
	f.orders.On("MarkPaid", mock.Anything, int64(1), mock.MatchedBy(func(u repo.PaidUpdate) bool {
		return u.ProcessedByID != nil && *u.ProcessedByID == int64(7) && u.GatewayPaymentID == nil
	})).Return(nil)

	actor := StaffActor{ID: 7, Role: model.RoleOrderProcessor}
	err := f.uc.ConfirmCashPayment(context.Background(), actor, 1)

	assert.NoError(t, err)
	f.orders.AssertExpectations(t)
	assert.Len(t, f.bus.Events, 1)
	assert.Equal(t, string(model.OrderStatusPendingPrep), f.bus.Events[0].Status)
}

func TestConfirmCashPayment_AlreadyPaid(t *testing.T) {
	f := newPaymentUsecaseFixture()

	// 二度押し。2回目は支払い済みなので弾く
	f.orders.On("FindByIDForUpdate", mock.Anything, int64(1)).Return(model.Order{
		ID:            1,
		PaymentMethod: model.PaymentMethodCash,
		PaymentStatus: model.PaymentStatusPaid,
		OrderSource:   model.OrderSourceCustomerOnline,
		Status:        model.OrderStatusPendingPrep,
	}, nil)

	actor := StaffActor{ID: 7, Role: model.RoleOrderProcessor}
	err := f.uc.ConfirmCashPayment(context.Background(), actor, 1)

	assertKind(t, err, http.StatusConflict, KindOrderNotEligible)
	f.orders.AssertNotCalled(t, "MarkPaid", mock.Anything, mock.Anything, mock.Anything)
	assert.Empty(t, f.bus.Events)
}

func TestConfirmCashPayment_StaffManualOrderRejected(t *testing.T) {
	f := newPaymentUsecaseFixture()

	// スタッフ手入力は受付時点で支払い済みなので対象外
	f.orders.On("FindByIDForUpdate", mock.Anything, int64(2)).Return(model.Order{
		ID:            2,
		PaymentMethod: model.PaymentMethodCash,
		PaymentStatus: model.PaymentStatusPending,
		OrderSource:   model.OrderSourceStaffManual,
		Status:        model.OrderStatusAwaitingPayment,
	}, nil)

	actor := StaffActor{ID: 7, Role: model.RoleBusinessManager}
	err := f.uc.ConfirmCashPayment(context.Background(), actor, 2)

	assertKind(t, err, http.StatusConflict, KindOrderNotEligible)
}

func TestConfirmCashPayment_RazorpayOrderRejected(t *testing.T) {
	f := newPaymentUsecaseFixture()

	f.orders.On("FindByIDForUpdate", mock.Anything, int64(3)).Return(model.Order{
		ID:            3,
		PaymentMethod: model.PaymentMethodRazorpay,
		PaymentStatus: model.PaymentStatusPending,
		OrderSource:   model.OrderSourceCustomerOnline,
		Status:        model.OrderStatusAwaitingPayment,
	}, nil)

	actor := StaffActor{ID: 7, Role: model.RoleOrderProcessor}
	err := f.uc.ConfirmCashPayment(context.Background(), actor, 3)

	assertKind(t, err, http.StatusConflict, KindOrderNotEligible)
}

func TestConfirmCashPayment_WrongRole(t *testing.T) {
	f := newPaymentUsecaseFixture()

	actor := StaffActor{ID: 7, Role: model.RoleManualOrderTaker}
	err := f.uc.ConfirmCashPayment(context.Background(), actor, 1)

	assertKind(t, err, http.StatusUnauthorized, KindUnauthorized)
	f.orders.AssertNotCalled(t, "FindByIDForUpdate", mock.Anything, mock.Anything)
}

func TestConfirmCashPayment_NotFound(t *testing.T) {
	f := newPaymentUsecaseFixture()

	f.orders.On("FindByIDForUpdate", mock.Anything, int64(99)).
		Return(model.Order{}, repo.ErrNotFound)

	actor := StaffActor{ID: 7, Role: model.RoleOrderProcessor}
	err := f.uc.ConfirmCashPayment(context.Background(), actor, 99)

	assertKind(t, err, http.StatusNotFound, KindNotFound)
}

// ---- クライアント署名検証 ----

func TestVerifyGatewayPayment_HappyPath(t *testing.T) {
	f := newPaymentUsecaseFixture()

	gwOrderID := "order_gw1"
	in := VerifyGatewayPaymentInput{
		InternalOrderID:  "pub-1",
		GatewayOrderID:   gwOrderID,
		GatewayPaymentID: "pay_1",
		Signature:        sign(testKeySecret, "order_gw1|pay_1"),
	}

	f.orders.On("FindForGatewayVerifyForUpdate", mock.Anything, "pub-1", "order_gw1").Return(model.Order{
		ID:             10,
		PublicID:       "pub-1",
		GatewayOrderID: &gwOrderID,
		PaymentStatus:  model.PaymentStatusPending,
		Status:         model.OrderStatusAwaitingPayment,
	}, nil)
	f.orders.On("MarkPaid", mock.Anything, int64(10), mock.MatchedBy(func(u repo.PaidUpdate) bool {
		return u.GatewayPaymentID != nil && *u.GatewayPaymentID == "pay_1"
	})).Return(nil)

	err := f.uc.VerifyGatewayPayment(context.Background(), in)

	assert.NoError(t, err)
	f.orders.AssertExpectations(t)
	assert.Len(t, f.bus.Events, 1)
}

func TestVerifyGatewayPayment_BadSignature(t *testing.T) {
	f := newPaymentUsecaseFixture()

	in := VerifyGatewayPaymentInput{
		InternalOrderID:  "pub-1",
		GatewayOrderID:   "order_gw1",
		GatewayPaymentID: "pay_1",
		Signature:        "deadbeef",
	}

	err := f.uc.VerifyGatewayPayment(context.Background(), in)

	assertKind(t, err, http.StatusBadRequest, KindSignatureMismatch)
	// 署名が合わない限りDBには触らない
	f.orders.AssertNotCalled(t, "FindForGatewayVerifyForUpdate", mock.Anything, mock.Anything, mock.Anything)
	assert.Empty(t, f.bus.Events)
}

func TestVerifyGatewayPayment_SignatureForDifferentOrder(t *testing.T) {
	f := newPaymentUsecaseFixture()

	// 他注文の正しい署名を流用しても複合キーで弾かれる
	in := VerifyGatewayPaymentInput{
		InternalOrderID:  "pub-1",
		GatewayOrderID:   "order_other",
		GatewayPaymentID: "pay_other",
		Signature:        sign(testKeySecret, "order_other|pay_other"),
	}

	f.orders.On("FindForGatewayVerifyForUpdate", mock.Anything, "pub-1", "order_other").
		Return(model.Order{}, repo.ErrNotFound)

	err := f.uc.VerifyGatewayPayment(context.Background(), in)

	assertKind(t, err, http.StatusConflict, KindOrderMismatch)
	f.orders.AssertNotCalled(t, "MarkPaid", mock.Anything, mock.Anything, mock.Anything)
}

func TestVerifyGatewayPayment_AlreadyPaidNoop(t *testing.T) {
	f := newPaymentUsecaseFixture()

	gwOrderID := "order_gw1"
	in := VerifyGatewayPaymentInput{
		InternalOrderID:  "pub-1",
		GatewayOrderID:   gwOrderID,
		GatewayPaymentID: "pay_1",
		Signature:        sign(testKeySecret, "order_gw1|pay_1"),
	}

	// webhookが先着済み
	f.orders.On("FindForGatewayVerifyForUpdate", mock.Anything, "pub-1", "order_gw1").Return(model.Order{
		ID:             10,
		GatewayOrderID: &gwOrderID,
		PaymentStatus:  model.PaymentStatusPaid,
		Status:         model.OrderStatusPendingPrep,
	}, nil)

	err := f.uc.VerifyGatewayPayment(context.Background(), in)

	assert.NoError(t, err)
	f.orders.AssertNotCalled(t, "MarkPaid", mock.Anything, mock.Anything, mock.Anything)
	assert.Empty(t, f.bus.Events)
}

func TestVerifyGatewayPayment_MissingFields(t *testing.T) {
	f := newPaymentUsecaseFixture()

	err := f.uc.VerifyGatewayPayment(context.Background(), VerifyGatewayPaymentInput{
		InternalOrderID: "pub-1",
	})

	assertKind(t, err, http.StatusBadRequest, KindValidation)
}

// ---- webhook ----

func TestHandleGatewayWebhook_ResolveByNotes(t *testing.T) {
	f := newPaymentUsecaseFixture()

	body := []byte(`{
		"event": "payment.captured",
		"payload": {
			"payment": {"entity": {"id": "pay_wh1", "order_id": "order_gw1", "notes": {"internal_order_id": "pub-1"}}},
			"order": {"entity": {"id": "order_gw1", "receipt": "pub-1"}}
		}
	}`)

	f.orders.On("FindByPublicIDForUpdate", mock.Anything, "pub-1").Return(model.Order{
		ID:            10,
		PublicID:      "pub-1",
		PaymentStatus: model.PaymentStatusPending,
		Status:        model.OrderStatusAwaitingPayment,
	}, nil)
	f.orders.On("MarkPaid", mock.Anything, int64(10), mock.MatchedBy(func(u repo.PaidUpdate) bool {
		return u.GatewayPaymentID != nil && *u.GatewayPaymentID == "pay_wh1"
	})).Return(nil)

	err := f.uc.HandleGatewayWebhook(context.Background(), body, sign(testWebhookSecret, string(body)))

	assert.NoError(t, err)
	f.orders.AssertExpectations(t)
	assert.Len(t, f.bus.Events, 1)
}

func TestHandleGatewayWebhook_ResolveByGatewayOrderID(t *testing.T) {
	f := newPaymentUsecaseFixture()

	// notesもreceiptも無い場合は保存済みゲートウェイ注文IDで引く
	body := []byte(`{
		"event": "payment.captured",
		"payload": {
			"payment": {"entity": {"id": "pay_wh2", "order_id": "order_gw2", "notes": {}}}
		}
	}`)

	f.orders.On("FindByGatewayOrderIDForUpdate", mock.Anything, "order_gw2").Return(model.Order{
		ID:            11,
		PaymentStatus: model.PaymentStatusPending,
		Status:        model.OrderStatusAwaitingPayment,
	}, nil)
	f.orders.On("MarkPaid", mock.Anything, int64(11), mock.Anything).Return(nil)

	err := f.uc.HandleGatewayWebhook(context.Background(), body, sign(testWebhookSecret, string(body)))

	assert.NoError(t, err)
	f.orders.AssertExpectations(t)
}

func TestHandleGatewayWebhook_DuplicateDeliveryIsNoop(t *testing.T) {
	f := newPaymentUsecaseFixture()

	body := []byte(`{
		"event": "payment.captured",
		"payload": {
			"payment": {"entity": {"id": "pay_wh1", "order_id": "order_gw1", "notes": {"internal_order_id": "pub-1"}}}
		}
	}`)

	f.orders.On("FindByPublicIDForUpdate", mock.Anything, "pub-1").Return(model.Order{
		ID:            10,
		PaymentStatus: model.PaymentStatusPaid,
		Status:        model.OrderStatusPendingPrep,
	}, nil)

	err := f.uc.HandleGatewayWebhook(context.Background(), body, sign(testWebhookSecret, string(body)))

	assert.NoError(t, err)
	f.orders.AssertNotCalled(t, "MarkPaid", mock.Anything, mock.Anything, mock.Anything)
	assert.Empty(t, f.bus.Events)
}

func TestHandleGatewayWebhook_FailedEventNeverMarksPaid(t *testing.T) {
	f := newPaymentUsecaseFixture()

	// 失敗通知も同じシークレットで署名されてくる。
	// 受領はするが注文には一切触らない
	body := []byte(`{
		"event": "payment.failed",
		"payload": {
			"payment": {"entity": {"id": "pay_fail1", "order_id": "order_gw1", "notes": {"internal_order_id": "pub-1"}}}
		}
	}`)

	err := f.uc.HandleGatewayWebhook(context.Background(), body, sign(testWebhookSecret, string(body)))

	assert.NoError(t, err)
	f.orders.AssertNotCalled(t, "FindByPublicIDForUpdate", mock.Anything, mock.Anything)
	f.orders.AssertNotCalled(t, "MarkPaid", mock.Anything, mock.Anything, mock.Anything)
	assert.Empty(t, f.bus.Events)
}

func TestHandleGatewayWebhook_UnknownEventIgnored(t *testing.T) {
	f := newPaymentUsecaseFixture()

	body := []byte(`{"event": "refund.created", "payload": {}}`)

	err := f.uc.HandleGatewayWebhook(context.Background(), body, sign(testWebhookSecret, string(body)))

	assert.NoError(t, err)
	f.orders.AssertNotCalled(t, "MarkPaid", mock.Anything, mock.Anything, mock.Anything)
}

func TestHandleGatewayWebhook_BadSignature(t *testing.T) {
	f := newPaymentUsecaseFixture()

	body := []byte(`{"event": "payment.captured"}`)

	err := f.uc.HandleGatewayWebhook(context.Background(), body, "deadbeef")

	assertKind(t, err, http.StatusBadRequest, KindInvalidWebhookSig)
	f.orders.AssertNotCalled(t, "FindByPublicIDForUpdate", mock.Anything, mock.Anything)
}

func TestHandleGatewayWebhook_ValidSignatureBadPayload(t *testing.T) {
	f := newPaymentUsecaseFixture()

	body := []byte(`not json`)

	err := f.uc.HandleGatewayWebhook(context.Background(), body, sign(testWebhookSecret, string(body)))

	assertKind(t, err, http.StatusBadRequest, KindValidation)
}

func TestHandleGatewayWebhook_OrderResolutionFailed(t *testing.T) {
	f := newPaymentUsecaseFixture()

	body := []byte(`{
		"event": "payment.captured",
		"payload": {
			"payment": {"entity": {"id": "pay_wh3", "order_id": "order_unknown", "notes": {"internal_order_id": "pub-gone"}}},
			"order": {"entity": {"receipt": "pub-gone"}}
		}
	}`)

	f.orders.On("FindByPublicIDForUpdate", mock.Anything, "pub-gone").
		Return(model.Order{}, repo.ErrNotFound)
	f.orders.On("FindByGatewayOrderIDForUpdate", mock.Anything, "order_unknown").
		Return(model.Order{}, repo.ErrNotFound)

	err := f.uc.HandleGatewayWebhook(context.Background(), body, sign(testWebhookSecret, string(body)))

	assertKind(t, err, http.StatusNotFound, KindOrderResolutionFailed)
	f.orders.AssertNotCalled(t, "MarkPaid", mock.Anything, mock.Anything, mock.Anything)
}
