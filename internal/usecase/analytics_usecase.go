package usecase

import (
	"context"
	"net/http"
	"time"

	repo "github.com/caffineConfession/QROrderingApp-sub000/internal/repository"
)

type AnalyticsUsecase struct {
	tx repo.TransactionManager
}

func NewAnalyticsUsecase(tx repo.TransactionManager) *AnalyticsUsecase {
	return &AnalyticsUsecase{tx: tx}
}

type SalesSummaryOutput struct {
	From time.Time       `json:"from"`
	Rows []repo.SalesRow `json:"rows"`
}

// 期間内のステータス別件数と売上
func (u *AnalyticsUsecase) SalesSummary(ctx context.Context, from time.Time) (SalesSummaryOutput, error) {
	var rows []repo.SalesRow

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		var err error
		rows, err = r.Orders().SalesSummary(ctx, from)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, KindInternal, "db error")
		}
		return nil
	})

	if err != nil {
		return SalesSummaryOutput{}, err
	}
	return SalesSummaryOutput{From: from, Rows: rows}, nil
}
