package usecase

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/caffineConfession/QROrderingApp-sub000/internal/domain/model"
	repo "github.com/caffineConfession/QROrderingApp-sub000/internal/repository"

	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"
)

const accessTokenTTL = 12 * time.Hour

type AuthUsecase struct {
	users     repo.AdminUserRepository
	jwtSecret []byte
}

func NewAuthUsecase(users repo.AdminUserRepository, jwtSecret string) *AuthUsecase {
	return &AuthUsecase{users: users, jwtSecret: []byte(jwtSecret)}
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginOutput struct {
	AccessToken string     `json:"access_token"`
	ExpiresIn   int        `json:"expires_in"`
	Role        model.Role `json:"role"`
	Name        string     `json:"name"`
}

func (u *AuthUsecase) Login(ctx context.Context, in LoginInput) (LoginOutput, error) {
	email := strings.TrimSpace(strings.ToLower(in.Email))
	if email == "" || in.Password == "" {
		return LoginOutput{}, NewHTTPError(http.StatusBadRequest, KindValidation, "email and password are required")
	}

	staff, err := u.users.FindByEmail(ctx, email)
	if err == repo.ErrNotFound {
		// 存在有無は漏らさない
		return LoginOutput{}, NewHTTPError(http.StatusUnauthorized, KindUnauthorized, "unauthorized")
	}
	if err != nil {
		return LoginOutput{}, NewHTTPError(http.StatusInternalServerError, KindInternal, "db error")
	}
	if !staff.IsActive {
		return LoginOutput{}, NewHTTPError(http.StatusUnauthorized, KindUnauthorized, "unauthorized")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(staff.PasswordHash), []byte(in.Password)); err != nil {
		return LoginOutput{}, NewHTTPError(http.StatusUnauthorized, KindUnauthorized, "unauthorized")
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"sub":  staff.ID,
		"role": string(staff.Role),
		"iat":  now.Unix(),
		"exp":  now.Add(accessTokenTTL).Unix(),
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(u.jwtSecret)
	if err != nil {
		return LoginOutput{}, NewHTTPError(http.StatusInternalServerError, KindInternal, "token error")
	}

	return LoginOutput{
		AccessToken: signed,
		ExpiresIn:   int(accessTokenTTL.Seconds()),
		Role:        staff.Role,
		Name:        staff.Name,
	}, nil
}

type CreateStaffInput struct {
	Email    string     `json:"email"`
	Name     string     `json:"name"`
	Password string     `json:"password"`
	Role     model.Role `json:"role"`
}

type StaffOutput struct {
	ID       int64      `json:"id"`
	Email    string     `json:"email"`
	Name     string     `json:"name"`
	Role     model.Role `json:"role"`
	IsActive bool       `json:"is_active"`
}

// スタッフ登録（店長のみ。roleチェックはhandler側のguard）
func (u *AuthUsecase) CreateStaff(ctx context.Context, in CreateStaffInput) (StaffOutput, error) {
	email := strings.TrimSpace(strings.ToLower(in.Email))
	if email == "" || in.Name == "" {
		return StaffOutput{}, NewHTTPError(http.StatusBadRequest, KindValidation, "email and name are required")
	}
	if len(in.Password) < 8 {
		return StaffOutput{}, NewHTTPError(http.StatusBadRequest, KindValidation, "password must be at least 8 characters")
	}
	switch in.Role {
	case model.RoleManualOrderTaker, model.RoleOrderProcessor, model.RoleBusinessManager:
	default:
		return StaffOutput{}, NewHTTPError(http.StatusBadRequest, KindValidation, "invalid role")
	}

	if _, err := u.users.FindByEmail(ctx, email); err == nil {
		return StaffOutput{}, NewHTTPError(http.StatusConflict, KindValidation, "email already registered")
	} else if err != repo.ErrNotFound {
		return StaffOutput{}, NewHTTPError(http.StatusInternalServerError, KindInternal, "db error")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), 12)
	if err != nil {
		return StaffOutput{}, NewHTTPError(http.StatusInternalServerError, KindInternal, "hash error")
	}

	created, err := u.users.Create(ctx, model.AdminUser{
		Email:        email,
		Name:         in.Name,
		PasswordHash: string(hash),
		Role:         in.Role,
		IsActive:     true,
	})
	if err != nil {
		return StaffOutput{}, NewHTTPError(http.StatusInternalServerError, KindInternal, "db error")
	}

	return toStaffOutput(created), nil
}

func (u *AuthUsecase) ListStaff(ctx context.Context) ([]StaffOutput, error) {
	users, err := u.users.List(ctx)
	if err != nil {
		return []StaffOutput{}, NewHTTPError(http.StatusInternalServerError, KindInternal, "db error")
	}

	outs := make([]StaffOutput, 0, len(users))
	for _, s := range users {
		outs = append(outs, toStaffOutput(s))
	}
	return outs, nil
}

func toStaffOutput(s model.AdminUser) StaffOutput {
	return StaffOutput{
		ID:       s.ID,
		Email:    s.Email,
		Name:     s.Name,
		Role:     s.Role,
		IsActive: s.IsActive,
	}
}
