package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/payflow_backend/internal/core/ports/services"
	"github.com/SscSPs/payflow_backend/internal/dto"
	"github.com/SscSPs/payflow_backend/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3"
)

// AuthHandler handles registration and login.
type AuthHandler struct {
	baseHandler
	accountService portssvc.AccountSvcFacade
	tokenService   portssvc.TokenSvcFacade
}

// registerAuthRoutes sets up the public authentication routes. lim may be nil to disable rate limiting.
func registerAuthRoutes(r *gin.Engine, base baseHandler, accountService portssvc.AccountSvcFacade, tokenService portssvc.TokenSvcFacade, lim *limiter.Limiter) {
	h := &AuthHandler{baseHandler: base, accountService: accountService, tokenService: tokenService}

	auth := r.Group("/api/v1/auth")
	if lim != nil {
		auth.Use(middleware.RateLimit(lim))
	}
	{
		auth.POST("/register", h.Register)
		auth.POST("/login", h.Login)
	}
}

// Register godoc
// @Summary Register an account holder
// @Description Creates an ordinary or merchant account. The document must be a valid CPF or CNPJ.
// @Tags auth
// @Accept json
// @Produce json
// @Param account body dto.RegisterAccountRequest true "Registration details"
// @Success 201 {object} dto.AccountResponse
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "Email or document already registered"
// @Failure 429 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	account, err := h.accountService.RegisterAccount(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err, "Failed to register account")
		return
	}
	c.JSON(http.StatusCreated, dto.ToAccountResponse(account))
}

// Login godoc
// @Summary Log in
// @Description Authenticates by email and password and returns a bearer token.
// @Tags auth
// @Accept json
// @Produce json
// @Param login body dto.LoginRequest true "Login Credentials"
// @Success 200 {object} dto.LoginResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 429 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	account, err := h.accountService.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.fail(c, err, "Login failed")
		return
	}

	token, expiresAt, err := h.tokenService.GenerateAccessToken(c.Request.Context(), account)
	if err != nil {
		h.fail(c, err, "Failed to issue access token")
		return
	}
	middleware.GetLoggerFromCtx(c.Request.Context()).Info("Account logged in", slog.String("account_id", account.AccountID))
	c.JSON(http.StatusOK, dto.LoginResponse{Token: token, ExpiresAt: expiresAt})
}
