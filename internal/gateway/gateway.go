package gateway

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// 決済ゲートウェイとの境界。usecaseはこのinterfaceだけを見る
type PaymentGateway interface {
	// 最小通貨単位の金額でゲートウェイ側の注文を作る
	CreateRemoteOrder(ctx context.Context, amountMinor int64, currency string, receipt string) (gatewayOrderID string, err error)
}

// HMAC-SHA256(hex) を定数時間で比較する。
// expectedは絶対にログや応答に出さないこと。
func VerifySignature(secret string, payload string, signature string) bool {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(payload))
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
