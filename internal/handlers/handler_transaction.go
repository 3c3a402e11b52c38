package handlers

import (
	"net/http"

	portssvc "github.com/SscSPs/payflow_backend/internal/core/ports/services"
	"github.com/SscSPs/payflow_backend/internal/dto"
	"github.com/gin-gonic/gin"
)

type transactionHandler struct {
	baseHandler
	transferService portssvc.TransactionQuerySvc
}

func registerTransactionRoutes(rg *gin.RouterGroup, base baseHandler, transferService portssvc.TransactionQuerySvc) {
	h := &transactionHandler{baseHandler: base, transferService: transferService}

	transactions := rg.Group("/transactions")
	{
		transactions.GET("", h.listTransactions)
		transactions.GET("/:id", h.getTransaction)
	}
}

// listTransactions godoc
// @Summary List own transactions
// @Description Returns the transactions the authenticated account takes part in, newest first.
// @Tags transactions
// @Produce json
// @Param limit query int false "Page size (default 20, max 100)"
// @Param nextToken query string false "Token from the previous page"
// @Success 200 {object} dto.ListTransactionsResponse
// @Failure 400 {object} ErrorResponse
// @Security BearerAuth
// @Router /transactions [get]
func (h *transactionHandler) listTransactions(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	var params dto.ListTransactionsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		badRequest(c, err)
		return
	}

	page, err := h.transferService.ListTransactions(c.Request.Context(), userID, params)
	if err != nil {
		h.fail(c, err, "Failed to list transactions")
		return
	}
	c.JSON(http.StatusOK, page)
}

// getTransaction godoc
// @Summary Get a transaction
// @Tags transactions
// @Produce json
// @Param id path string true "Transaction ID"
// @Success 200 {object} dto.TransactionResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /transactions/{id} [get]
func (h *transactionHandler) getTransaction(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	txn, err := h.transferService.GetTransaction(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		h.fail(c, err, "Failed to get transaction")
		return
	}
	c.JSON(http.StatusOK, dto.ToTransactionResponse(txn))
}
