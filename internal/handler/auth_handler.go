package handler

import (
	"net/http"

	"github.com/caffineConfession/QROrderingApp-sub000/internal/config"
	"github.com/caffineConfession/QROrderingApp-sub000/internal/domain/model"
	"github.com/caffineConfession/QROrderingApp-sub000/internal/middleware"
	"github.com/caffineConfession/QROrderingApp-sub000/internal/usecase"

	"github.com/labstack/echo/v4"
)

type AuthHandler struct {
	uc *usecase.AuthUsecase
}

func NewAuthHandler(uc *usecase.AuthUsecase) *AuthHandler {
	return &AuthHandler{uc: uc}
}

func (h *AuthHandler) RegisterRoutes(e *echo.Echo, cfg config.Config) {
	e.POST("/auth/login", h.login)

	// スタッフ管理は店長のみ
	users := e.Group("/admin/users")
	users.Use(middleware.AuthJWT(cfg))
	users.Use(middleware.RoleGuard(model.RoleBusinessManager))
	users.POST("", h.createStaff)
	users.GET("", h.listStaff)
}

func (h *AuthHandler) login(c echo.Context) error {
	var req usecase.LoginInput
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.uc.Login(c.Request().Context(), req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *AuthHandler) createStaff(c echo.Context) error {
	var req usecase.CreateStaffInput
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.uc.CreateStaff(c.Request().Context(), req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, out)
}

func (h *AuthHandler) listStaff(c echo.Context) error {
	out, err := h.uc.ListStaff(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
