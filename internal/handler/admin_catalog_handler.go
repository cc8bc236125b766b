package handler

import (
	"net/http"
	"strconv"

	"github.com/caffineConfession/QROrderingApp-sub000/internal/config"
	"github.com/caffineConfession/QROrderingApp-sub000/internal/domain/model"
	"github.com/caffineConfession/QROrderingApp-sub000/internal/middleware"
	"github.com/caffineConfession/QROrderingApp-sub000/internal/usecase"

	"github.com/labstack/echo/v4"
)

// 商品・メニュー・在庫の管理（店長のみ）
type AdminCatalogHandler struct {
	uc *usecase.CatalogUsecase
}

func NewAdminCatalogHandler(uc *usecase.CatalogUsecase) *AdminCatalogHandler {
	return &AdminCatalogHandler{uc: uc}
}

type availabilityRequest struct {
	IsAvailable bool `json:"is_available"`
}

type priceRequest struct {
	Price int64 `json:"price"`
}

type stockRequest struct {
	StockQuantity int64 `json:"stock_quantity"`
}

func (h *AdminCatalogHandler) RegisterRoutes(e *echo.Echo, cfg config.Config) {
	g := e.Group("/admin/catalog")
	g.Use(middleware.AuthJWT(cfg))
	g.Use(middleware.RoleGuard(model.RoleBusinessManager))

	g.POST("/products", h.createProduct)
	g.PUT("/products/:id", h.updateProduct)
	g.PUT("/products/:id/availability", h.setProductAvailability)

	g.POST("/menu-items", h.createMenuItem)
	g.PUT("/menu-items/:id/price", h.updatePrice)
	g.PUT("/menu-items/:id/stock", h.restock)
}

func (h *AdminCatalogHandler) createProduct(c echo.Context) error {
	var req usecase.ProductInput
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.uc.CreateProduct(c.Request().Context(), req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, out)
}

func (h *AdminCatalogHandler) updateProduct(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	var req usecase.ProductInput
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	if err := h.uc.UpdateProduct(c.Request().Context(), id, req); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, SuccessResponse{Message: "updated"})
}

func (h *AdminCatalogHandler) setProductAvailability(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	var req availabilityRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	if err := h.uc.SetProductAvailability(c.Request().Context(), id, req.IsAvailable); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, SuccessResponse{Message: "updated"})
}

func (h *AdminCatalogHandler) createMenuItem(c echo.Context) error {
	var req usecase.MenuItemInput
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.uc.CreateMenuItem(c.Request().Context(), req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, out)
}

func (h *AdminCatalogHandler) updatePrice(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	var req priceRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	if err := h.uc.UpdateMenuItemPrice(c.Request().Context(), id, req.Price); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, SuccessResponse{Message: "updated"})
}

func (h *AdminCatalogHandler) restock(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	var req stockRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	if err := h.uc.RestockMenuItem(c.Request().Context(), id, req.StockQuantity); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, SuccessResponse{Message: "updated"})
}
