package usecase

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/caffineConfession/QROrderingApp-sub000/internal/domain/model"
	"github.com/caffineConfession/QROrderingApp-sub000/internal/infra/db"
	infraRepo "github.com/caffineConfession/QROrderingApp-sub000/internal/infra/repository"
	"github.com/caffineConfession/QROrderingApp-sub000/internal/notify"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// 実DBで行ロックと条件付きUPDATEの直列化を確認する。
// DATABASE_URL が無ければskip。

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set")
	}

	gdb, err := db.Open(dsn)
	require.NoError(t, err)

	require.NoError(t, gdb.AutoMigrate(
		&model.Product{},
		&model.MenuItem{},
		&model.Order{},
		&model.OrderItem{},
	))

	return gdb
}

func newDBOrderUsecase(gdb *gorm.DB) *OrderUsecase {
	return NewOrderUsecase(infraRepo.NewTxManagerGorm(gdb), &GatewayMock{}, notify.NopPublisher{}, zerolog.Nop())
}

func seedMenuItem(t *testing.T, gdb *gorm.DB, stock int64) model.MenuItem {
	t.Helper()

	p := model.Product{
		Name:        fmt.Sprintf("Race-%s", time.Now().Format("150405.000000000")),
		Category:    "coffee",
		IsAvailable: true,
	}
	require.NoError(t, gdb.Create(&p).Error)

	mi := model.MenuItem{
		ProductID:     p.ID,
		ServingType:   model.ServingTypeCup,
		Price:         250,
		StockQuantity: stock,
		IsAvailable:   stock > 0,
	}
	require.NoError(t, gdb.Create(&mi).Error)
	return mi
}

func seedReadyOrder(t *testing.T, gdb *gorm.DB, mi model.MenuItem, qty int64) model.Order {
	t.Helper()

	now := time.Now()
	o := model.Order{
		PublicID:      uuid.NewString(),
		TotalAmount:   mi.Price * qty,
		PaymentMethod: model.PaymentMethodCash,
		PaymentStatus: model.PaymentStatusPaid,
		Status:        model.OrderStatusReadyForPickup,
		OrderSource:   model.OrderSourceCustomerOnline,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	require.NoError(t, gdb.Create(&o).Error)

	item := model.OrderItem{
		OrderID:             o.ID,
		ProductID:           mi.ProductID,
		ProductNameSnapshot: "Race Latte",
		CategorySnapshot:    "coffee",
		ServingType:         mi.ServingType,
		Quantity:            qty,
		PriceAtPurchase:     mi.Price,
	}
	require.NoError(t, gdb.Create(&item).Error)
	return o
}

func currentStock(t *testing.T, gdb *gorm.DB, id int64) model.MenuItem {
	t.Helper()
	var mi model.MenuItem
	require.NoError(t, gdb.Where("id = ?", id).First(&mi).Error)
	return mi
}

// 同じ注文を2人が同時に完了させても、勝つのは1人だけ
func TestUpdateStatus_ConcurrentCompletionExactlyOneWins(t *testing.T) {
	gdb := openTestDB(t)
	uc := newDBOrderUsecase(gdb)

	mi := seedMenuItem(t, gdb, 5)
	o := seedReadyOrder(t, gdb, mi, 1)

	actor := StaffActor{ID: 1, Role: model.RoleOrderProcessor}

	errs := make([]error, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = uc.UpdateStatus(context.Background(), actor, o.ID, model.OrderStatusCompleted)
		}(i)
	}
	wg.Wait()

	// 片方成功、片方はCOMPLETEDからの遷移なので409
	var okCount, conflictCount int
	for _, err := range errs {
		if err == nil {
			okCount++
			continue
		}
		he, ok := AsHTTPError(err)
		require.True(t, ok, "unexpected error: %v", err)
		assert.Equal(t, KindInvalidTransition, he.Kind)
		conflictCount++
	}
	assert.Equal(t, 1, okCount)
	assert.Equal(t, 1, conflictCount)

	// 減算は1回だけ
	assert.Equal(t, int64(4), currentStock(t, gdb, mi.ID).StockQuantity)

	var final model.Order
	require.NoError(t, gdb.Where("id = ?", o.ID).First(&final).Error)
	assert.Equal(t, model.OrderStatusCompleted, final.Status)
}

// 残り1個を2注文が取り合ったら、成功は1件で最終在庫は0
func TestUpdateStatus_ConcurrentOrdersRaceForLastStock(t *testing.T) {
	gdb := openTestDB(t)
	uc := newDBOrderUsecase(gdb)

	mi := seedMenuItem(t, gdb, 1)
	o1 := seedReadyOrder(t, gdb, mi, 1)
	o2 := seedReadyOrder(t, gdb, mi, 1)

	actor := StaffActor{ID: 1, Role: model.RoleOrderProcessor}

	errs := make([]error, 2)
	var wg sync.WaitGroup
	for i, orderID := range []int64{o1.ID, o2.ID} {
		wg.Add(1)
		go func(i int, orderID int64) {
			defer wg.Done()
			errs[i] = uc.UpdateStatus(context.Background(), actor, orderID, model.OrderStatusCompleted)
		}(i, orderID)
	}
	wg.Wait()

	var okCount, stockFailCount int
	for _, err := range errs {
		if err == nil {
			okCount++
			continue
		}
		he, ok := AsHTTPError(err)
		require.True(t, ok, "unexpected error: %v", err)
		assert.Equal(t, KindInsufficientStock, he.Kind)
		stockFailCount++
	}
	assert.Equal(t, 1, okCount)
	assert.Equal(t, 1, stockFailCount)

	// 最終在庫0・自動無効化。負にはならない
	final := currentStock(t, gdb, mi.ID)
	assert.Equal(t, int64(0), final.StockQuantity)
	assert.False(t, final.IsAvailable)

	// 負けた注文はREADY_FOR_PICKUPのまま（ステータスは書かれない）
	var orders []model.Order
	require.NoError(t, gdb.Where("id IN ?", []int64{o1.ID, o2.ID}).Find(&orders).Error)
	var completed, ready int
	for _, o := range orders {
		switch o.Status {
		case model.OrderStatusCompleted:
			completed++
		case model.OrderStatusReadyForPickup:
			ready++
		}
	}
	assert.Equal(t, 1, completed)
	assert.Equal(t, 1, ready)
}
