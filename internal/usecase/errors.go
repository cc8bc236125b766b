package usecase

import (
	"errors"
	"fmt"
)

// 失敗の種別。handlerはStatusを、UIはKindとMessageを使う
type ErrorKind string

const (
	KindValidation            ErrorKind = "VALIDATION"
	KindUnauthorized          ErrorKind = "UNAUTHORIZED"
	KindForbidden             ErrorKind = "FORBIDDEN"
	KindNotFound              ErrorKind = "NOT_FOUND"
	KindInvalidTransition     ErrorKind = "INVALID_TRANSITION"
	KindOrderNotEligible      ErrorKind = "ORDER_NOT_ELIGIBLE"
	KindOrderMismatch         ErrorKind = "ORDER_MISMATCH"
	KindInsufficientStock     ErrorKind = "INSUFFICIENT_STOCK"
	KindMenuItemNotFound      ErrorKind = "MENU_ITEM_NOT_FOUND"
	KindSignatureMismatch     ErrorKind = "SIGNATURE_MISMATCH"
	KindInvalidWebhookSig     ErrorKind = "INVALID_WEBHOOK_SIGNATURE"
	KindOrderResolutionFailed ErrorKind = "ORDER_RESOLUTION_FAILED"
	KindInternal              ErrorKind = "INTERNAL"
)

type HTTPError struct {
	Status  int
	Kind    ErrorKind
	Message string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%d %s: %s", e.Status, e.Kind, e.Message)
}

func NewHTTPError(status int, kind ErrorKind, message string) error {
	return &HTTPError{
		Status:  status,
		Kind:    kind,
		Message: message,
	}
}

func AsHTTPError(err error) (*HTTPError, bool) {
	var he *HTTPError
	if errors.As(err, &he) {
		return he, true
	}
	return nil, false
}
