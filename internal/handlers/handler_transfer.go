package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/payflow_backend/internal/core/ports/services"
	"github.com/SscSPs/payflow_backend/internal/dto"
	"github.com/SscSPs/payflow_backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

type transferHandler struct {
	baseHandler
	transferService portssvc.TransferSvcFacade
}

func registerTransferRoutes(rg *gin.RouterGroup, base baseHandler, transferService portssvc.TransferSvcFacade, idempotency gin.HandlerFunc) {
	h := &transferHandler{baseHandler: base, transferService: transferService}

	transfers := rg.Group("/transfers", idempotency)
	{
		transfers.POST("", h.createTransfer)
		transfers.POST("/deposit", h.deposit)
		transfers.POST("/withdraw", h.withdraw)
		transfers.POST("/:id/refund", h.refund)
		transfers.POST("/:id/reverse", h.reverse)
	}
}

// createTransfer godoc
// @Summary Transfer money
// @Description Moves money from the authenticated account to another account after external authorization.
// @Description A denied transfer is still recorded; its ID is returned alongside the error.
// @Tags transfers
// @Accept json
// @Produce json
// @Param Idempotency-Key header string false "Replays the first response for repeated requests"
// @Param transfer body dto.TransferRequest true "Transfer details"
// @Success 201 {object} dto.TransactionResponse
// @Failure 400 {object} ErrorResponse "Invalid amount, self transfer or merchant payer"
// @Failure 403 {object} ErrorResponse "Transfer not authorized"
// @Failure 404 {object} ErrorResponse "Payer or payee not found"
// @Failure 409 {object} ErrorResponse "Request with the same Idempotency-Key in progress"
// @Failure 422 {object} ErrorResponse "Insufficient funds"
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /transfers [post]
func (h *transferHandler) createTransfer(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	var req dto.TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	txn, err := h.transferService.Transfer(c.Request.Context(), userID, req.PayeeID, req.Amount, req.Description)
	if err != nil {
		h.fail(c, err, "Transfer failed")
		return
	}
	middleware.GetLoggerFromCtx(c.Request.Context()).Info("Transfer completed", slog.String("transaction_id", txn.TransactionID))
	c.JSON(http.StatusCreated, dto.ToTransactionResponse(txn))
}

// deposit godoc
// @Summary Deposit money
// @Tags transfers
// @Accept json
// @Produce json
// @Param Idempotency-Key header string false "Replays the first response for repeated requests"
// @Param deposit body dto.BalanceMovementRequest true "Deposit details"
// @Success 201 {object} dto.TransactionResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /transfers/deposit [post]
func (h *transferHandler) deposit(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	var req dto.BalanceMovementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	txn, err := h.transferService.Deposit(c.Request.Context(), userID, req.Amount, req.Description)
	if err != nil {
		h.fail(c, err, "Deposit failed")
		return
	}
	c.JSON(http.StatusCreated, dto.ToTransactionResponse(txn))
}

// withdraw godoc
// @Summary Withdraw money
// @Tags transfers
// @Accept json
// @Produce json
// @Param Idempotency-Key header string false "Replays the first response for repeated requests"
// @Param withdrawal body dto.BalanceMovementRequest true "Withdrawal details"
// @Success 201 {object} dto.TransactionResponse
// @Failure 400 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse "Insufficient funds"
// @Security BearerAuth
// @Router /transfers/withdraw [post]
func (h *transferHandler) withdraw(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	var req dto.BalanceMovementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	txn, err := h.transferService.Withdraw(c.Request.Context(), userID, req.Amount, req.Description)
	if err != nil {
		h.fail(c, err, "Withdrawal failed")
		return
	}
	c.JSON(http.StatusCreated, dto.ToTransactionResponse(txn))
}

// refund godoc
// @Summary Refund a transfer
// @Description The payee of a completed transfer returns the money to the payer.
// @Tags transfers
// @Produce json
// @Param id path string true "Transaction ID"
// @Param Idempotency-Key header string false "Replays the first response for repeated requests"
// @Success 201 {object} dto.TransactionResponse "The refund transaction"
// @Failure 400 {object} ErrorResponse "Transaction is not a completed transfer"
// @Failure 403 {object} ErrorResponse "Only the payee may refund"
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "Already refunded or reversed"
// @Failure 422 {object} ErrorResponse "Payee no longer holds the amount"
// @Security BearerAuth
// @Router /transfers/{id}/refund [post]
func (h *transferHandler) refund(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	txn, err := h.transferService.Refund(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		h.fail(c, err, "Refund failed")
		return
	}
	c.JSON(http.StatusCreated, dto.ToTransactionResponse(txn))
}

// reverse godoc
// @Summary Reverse a transfer
// @Tags transfers
// @Produce json
// @Param id path string true "Transaction ID"
// @Param Idempotency-Key header string false "Replays the first response for repeated requests"
// @Success 201 {object} dto.TransactionResponse "The reversal transaction"
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Security BearerAuth
// @Router /transfers/{id}/reverse [post]
func (h *transferHandler) reverse(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	txn, err := h.transferService.Reverse(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		h.fail(c, err, "Reversal failed")
		return
	}
	c.JSON(http.StatusCreated, dto.ToTransactionResponse(txn))
}
