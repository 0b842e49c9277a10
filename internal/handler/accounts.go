package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/safar/go-trip-orders/internal/auth"
	"github.com/safar/go-trip-orders/internal/database"
	"go.uber.org/zap"
)

type AccountHandler struct {
	Accounts  *auth.Directory
	JWTSecret string
	AccessTTL time.Duration
	Logger    *zap.Logger
}

func NewAccountHandler(dir *auth.Directory, secret string, ttl time.Duration, logger *zap.Logger) *AccountHandler {
	return &AccountHandler{Accounts: dir, JWTSecret: secret, AccessTTL: ttl, Logger: logger}
}

type registerReq struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phone_number"`
	Password    string `json:"password"`
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type accountPart struct {
	AccountID   string `json:"account_id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phone_number,omitempty"`
}

type tokenPart struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}

type authResp struct {
	Account accountPart `json:"account"`
	Access  tokenPart   `json:"access"`
}

func (h *AccountHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	acc, err := h.Accounts.Register(ctx, req.Name, req.Email, req.PhoneNumber, req.Password)
	switch {
	case errors.Is(err, auth.ErrInvalidRegistration):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	case errors.Is(err, database.ErrEmailTaken):
		return c.JSON(http.StatusConflict, echo.Map{"error": "email already exists"})
	case err != nil:
		h.Logger.Error("register account", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create account failed"})
	}

	return h.issue(c, http.StatusCreated, accountPart{
		AccountID:   acc.AccountID,
		Name:        acc.Name,
		Email:       acc.Email,
		PhoneNumber: acc.PhoneNumber,
	})
}

func (h *AccountHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email/password required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	acc, ok, err := h.Accounts.Authenticate(ctx, req.Email, req.Password)
	if err != nil {
		h.Logger.Error("login", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "login failed"})
	}
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}

	return h.issue(c, http.StatusOK, accountPart{
		AccountID:   acc.AccountID,
		Name:        acc.Name,
		Email:       acc.Email,
		PhoneNumber: acc.PhoneNumber,
	})
}

func (h *AccountHandler) issue(c echo.Context, status int, acc accountPart) error {
	access, err := auth.NewAccessToken(h.JWTSecret, acc.AccountID, h.AccessTTL, time.Now())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue access failed"})
	}
	return c.JSON(status, authResp{
		Account: acc,
		Access:  tokenPart{Token: access.Token, Expires: access.Exp},
	})
}
