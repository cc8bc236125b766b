package handler

import (
	"io"
	"net/http"

	"github.com/caffineConfession/QROrderingApp-sub000/internal/usecase"

	"github.com/labstack/echo/v4"
)

const webhookSignatureHeader = "X-Razorpay-Signature"

// ゲートウェイ決済の確定経路（クライアント検証とwebhook）
type PaymentHandler struct {
	uc *usecase.PaymentUsecase
}

func NewPaymentHandler(uc *usecase.PaymentUsecase) *PaymentHandler {
	return &PaymentHandler{uc: uc}
}

func (h *PaymentHandler) RegisterRoutes(e *echo.Echo) {
	e.POST("/payments/verify", h.verify)
	e.POST("/payments/webhook", h.webhook)
}

func (h *PaymentHandler) verify(c echo.Context) error {
	var req usecase.VerifyGatewayPaymentInput
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	if err := h.uc.VerifyGatewayPayment(c.Request().Context(), req); err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, SuccessResponse{Message: "payment verified"})
}

func (h *PaymentHandler) webhook(c echo.Context) error {
	// 署名はパース前のraw bodyに対して検証するので、bindせず読む
	rawBody, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	sig := c.Request().Header.Get(webhookSignatureHeader)

	if err := h.uc.HandleGatewayWebhook(c.Request().Context(), rawBody, sig); err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, SuccessResponse{Message: "ok"})
}
