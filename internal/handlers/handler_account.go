package handlers

import (
	"net/http"

	portssvc "github.com/SscSPs/payflow_backend/internal/core/ports/services"
	"github.com/SscSPs/payflow_backend/internal/dto"
	"github.com/gin-gonic/gin"
)

// accountHandler handles HTTP requests related to accounts.
type accountHandler struct {
	baseHandler
	accountService portssvc.AccountSvcFacade
}

// registerAccountRoutes registers routes related to accounts on an authenticated group.
func registerAccountRoutes(rg *gin.RouterGroup, base baseHandler, accountService portssvc.AccountSvcFacade) {
	h := &accountHandler{baseHandler: base, accountService: accountService}

	accounts := rg.Group("/accounts")
	{
		accounts.GET("", h.listAccounts)
		accounts.GET("/me", h.getMe)
		accounts.GET("/me/balance", h.getMyBalance)
		accounts.GET("/:id", h.getAccount)
	}
}

// getMe godoc
// @Summary Get the authenticated account
// @Tags accounts
// @Produce json
// @Success 200 {object} dto.AccountResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /accounts/me [get]
func (h *accountHandler) getMe(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	account, err := h.accountService.GetAccountByID(c.Request.Context(), userID)
	if err != nil {
		h.fail(c, err, "Failed to load own account")
		return
	}
	c.JSON(http.StatusOK, dto.ToAccountResponse(account))
}

// getMyBalance godoc
// @Summary Get the authenticated account's balance
// @Tags accounts
// @Produce json
// @Success 200 {object} dto.AccountBalanceResponse
// @Failure 401 {object} ErrorResponse
// @Security BearerAuth
// @Router /accounts/me/balance [get]
func (h *accountHandler) getMyBalance(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	account, err := h.accountService.GetAccountByID(c.Request.Context(), userID)
	if err != nil {
		h.fail(c, err, "Failed to load balance")
		return
	}
	resp := dto.ToAccountResponse(account)
	c.JSON(http.StatusOK, dto.AccountBalanceResponse{AccountID: resp.AccountID, Balance: resp.Balance})
}

// getAccount godoc
// @Summary Get an account by ID
// @Description Other holders only see the public view (name and role); the owner sees everything.
// @Tags accounts
// @Produce json
// @Param id path string true "Account ID"
// @Success 200 {object} dto.PublicAccountResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /accounts/{id} [get]
func (h *accountHandler) getAccount(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	account, err := h.accountService.GetAccountByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err, "Failed to load account")
		return
	}
	if account.AccountID == userID {
		c.JSON(http.StatusOK, dto.ToAccountResponse(account))
		return
	}
	c.JSON(http.StatusOK, dto.ToPublicAccountResponse(account))
}

// listAccounts godoc
// @Summary List accounts
// @Description Lists the public view of accounts, optionally filtered by role.
// @Tags accounts
// @Produce json
// @Param role query string false "ordinary or merchant"
// @Param limit query int false "Page size (default 20, max 100)"
// @Param offset query int false "Offset"
// @Success 200 {object} dto.ListAccountsResponse
// @Failure 400 {object} ErrorResponse
// @Security BearerAuth
// @Router /accounts [get]
func (h *accountHandler) listAccounts(c *gin.Context) {
	var params dto.ListAccountsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		badRequest(c, err)
		return
	}
	accounts, err := h.accountService.ListAccounts(c.Request.Context(), params)
	if err != nil {
		h.fail(c, err, "Failed to list accounts")
		return
	}
	c.JSON(http.StatusOK, dto.ToListAccountsResponse(accounts))
}
