package handler

import (
	"net/http"

	"github.com/caffineConfession/QROrderingApp-sub000/internal/domain/model"
	"github.com/caffineConfession/QROrderingApp-sub000/internal/middleware"
	"github.com/caffineConfession/QROrderingApp-sub000/internal/usecase"

	"github.com/labstack/echo/v4"
)

type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

type SuccessResponse struct {
	Message string `json:"message"`
}

func writeError(c echo.Context, err error) error {
	if err == nil {
		return nil
	}
	if he, ok := usecase.AsHTTPError(err); ok {
		return c.JSON(he.Status, ErrorResponse{Error: he.Message, Kind: string(he.Kind)})
	}

	//500
	return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
}

// middlewareが入れたスタッフ情報を取り出す
func getStaffActor(c echo.Context) (usecase.StaffActor, bool) {
	id, ok := c.Get(middleware.CtxStaffIDKey).(int64)
	if !ok || id <= 0 {
		return usecase.StaffActor{}, false
	}
	role, ok := c.Get(middleware.CtxStaffRoleKey).(string)
	if !ok || role == "" {
		return usecase.StaffActor{}, false
	}
	return usecase.StaffActor{ID: id, Role: model.Role(role)}, true
}
