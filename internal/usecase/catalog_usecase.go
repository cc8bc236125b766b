package usecase

import (
	"context"
	"net/http"
	"strings"

	"github.com/caffineConfession/QROrderingApp-sub000/internal/domain/model"
	repo "github.com/caffineConfession/QROrderingApp-sub000/internal/repository"
)

// カタログ管理と公開メニュー。
// 在庫の書き込みはここでは補充（SetStock）だけで、減算は注文完了のみ。
type CatalogUsecase struct {
	tx repo.TransactionManager
}

func NewCatalogUsecase(tx repo.TransactionManager) *CatalogUsecase {
	return &CatalogUsecase{tx: tx}
}

type MenuItemOutput struct {
	ID            int64             `json:"id"`
	ServingType   model.ServingType `json:"serving_type"`
	Price         int64             `json:"price"`
	StockQuantity int64             `json:"stock_quantity"`
	IsAvailable   bool              `json:"is_available"`
}

type MenuProductOutput struct {
	ID          int64            `json:"id"`
	Name        string           `json:"name"`
	Category    string           `json:"category"`
	Description string           `json:"description,omitempty"`
	ImageURL    string           `json:"image_url,omitempty"`
	Items       []MenuItemOutput `json:"items"`
}

// 公開メニュー。販売可能な商品とそのサイズ・価格・在庫有無
func (u *CatalogUsecase) PublicMenu(ctx context.Context) ([]MenuProductOutput, error) {
	var outs []MenuProductOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		products, err := r.Products().ListAvailable(ctx)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, KindInternal, "db error")
		}

		ids := make([]int64, 0, len(products))
		for _, p := range products {
			ids = append(ids, p.ID)
		}

		menuItems, err := r.MenuItems().ListByProductIDs(ctx, ids)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, KindInternal, "db error")
		}

		byProduct := make(map[int64][]MenuItemOutput, len(products))
		for _, mi := range menuItems {
			byProduct[mi.ProductID] = append(byProduct[mi.ProductID], MenuItemOutput{
				ID:            mi.ID,
				ServingType:   mi.ServingType,
				Price:         mi.Price,
				StockQuantity: mi.StockQuantity,
				IsAvailable:   mi.IsAvailable,
			})
		}

		outs = make([]MenuProductOutput, 0, len(products))
		for _, p := range products {
			outs = append(outs, MenuProductOutput{
				ID:          p.ID,
				Name:        p.Name,
				Category:    p.Category,
				Description: p.Description,
				ImageURL:    p.ImageURL,
				Items:       byProduct[p.ID],
			})
		}
		return nil
	})

	if err != nil {
		return []MenuProductOutput{}, err
	}
	return outs, nil
}

type ProductInput struct {
	Name        string `json:"name"`
	Category    string `json:"category"`
	Description string `json:"description"`
	ImageURL    string `json:"image_url"`
}

func (u *CatalogUsecase) CreateProduct(ctx context.Context, in ProductInput) (model.Product, error) {
	if strings.TrimSpace(in.Name) == "" || strings.TrimSpace(in.Category) == "" {
		return model.Product{}, NewHTTPError(http.StatusBadRequest, KindValidation, "name and category are required")
	}

	var created model.Product
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		p, err := r.Products().Create(ctx, model.Product{
			Name:        in.Name,
			Category:    in.Category,
			Description: in.Description,
			ImageURL:    in.ImageURL,
			IsAvailable: true,
		})
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, KindInternal, "db error")
		}
		created = p
		return nil
	})
	if err != nil {
		return model.Product{}, err
	}
	return created, nil
}

func (u *CatalogUsecase) UpdateProduct(ctx context.Context, id int64, in ProductInput) error {
	if id <= 0 {
		return NewHTTPError(http.StatusBadRequest, KindValidation, "invalid id")
	}
	if strings.TrimSpace(in.Name) == "" || strings.TrimSpace(in.Category) == "" {
		return NewHTTPError(http.StatusBadRequest, KindValidation, "name and category are required")
	}

	return u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		err := r.Products().Update(ctx, model.Product{
			ID:          id,
			Name:        in.Name,
			Category:    in.Category,
			Description: in.Description,
			ImageURL:    in.ImageURL,
		})
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, KindNotFound, "product not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, KindInternal, "db error")
		}
		return nil
	})
}

func (u *CatalogUsecase) SetProductAvailability(ctx context.Context, id int64, available bool) error {
	if id <= 0 {
		return NewHTTPError(http.StatusBadRequest, KindValidation, "invalid id")
	}

	return u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		err := r.Products().SetAvailability(ctx, id, available)
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, KindNotFound, "product not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, KindInternal, "db error")
		}
		return nil
	})
}

type MenuItemInput struct {
	ProductID     int64             `json:"product_id"`
	ServingType   model.ServingType `json:"serving_type"`
	Price         int64             `json:"price"`
	StockQuantity int64             `json:"stock_quantity"`
}

func (u *CatalogUsecase) CreateMenuItem(ctx context.Context, in MenuItemInput) (model.MenuItem, error) {
	if in.ProductID <= 0 || in.Price <= 0 || in.StockQuantity < 0 {
		return model.MenuItem{}, NewHTTPError(http.StatusBadRequest, KindValidation, "invalid menu item")
	}
	switch in.ServingType {
	case model.ServingTypeCup, model.ServingTypeCone:
	default:
		return model.MenuItem{}, NewHTTPError(http.StatusBadRequest, KindValidation, "invalid serving type")
	}

	var created model.MenuItem
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		if _, err := r.Products().FindByID(ctx, in.ProductID); err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, KindNotFound, "product not found")
		} else if err != nil {
			return NewHTTPError(http.StatusInternalServerError, KindInternal, "db error")
		}

		if _, err := r.MenuItems().FindByProductAndServing(ctx, in.ProductID, in.ServingType); err == nil {
			return NewHTTPError(http.StatusConflict, KindValidation, "menu item already exists for this serving type")
		} else if err != repo.ErrNotFound {
			return NewHTTPError(http.StatusInternalServerError, KindInternal, "db error")
		}

		mi, err := r.MenuItems().Create(ctx, model.MenuItem{
			ProductID:     in.ProductID,
			ServingType:   in.ServingType,
			Price:         in.Price,
			StockQuantity: in.StockQuantity,
			IsAvailable:   in.StockQuantity > 0,
		})
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, KindInternal, "db error")
		}
		created = mi
		return nil
	})
	if err != nil {
		return model.MenuItem{}, err
	}
	return created, nil
}

func (u *CatalogUsecase) UpdateMenuItemPrice(ctx context.Context, id int64, price int64) error {
	if id <= 0 || price <= 0 {
		return NewHTTPError(http.StatusBadRequest, KindValidation, "invalid price")
	}

	return u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		err := r.MenuItems().UpdatePrice(ctx, id, price)
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, KindNotFound, "menu item not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, KindInternal, "db error")
		}
		return nil
	})
}

// 補充。在庫0での自動無効化を解除できる唯一の経路
func (u *CatalogUsecase) RestockMenuItem(ctx context.Context, id int64, qty int64) error {
	if id <= 0 || qty < 0 {
		return NewHTTPError(http.StatusBadRequest, KindValidation, "invalid stock quantity")
	}

	return u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		err := r.MenuItems().SetStock(ctx, id, qty, qty > 0)
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, KindNotFound, "menu item not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, KindInternal, "db error")
		}
		return nil
	})
}
