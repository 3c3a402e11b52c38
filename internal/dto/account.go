package dto

import (
	"time"

	"github.com/SscSPs/payflow_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// RegisterAccountRequest defines the data needed to register a new account holder.
type RegisterAccountRequest struct {
	Name           string              `json:"name" binding:"required,max=255"`
	Email          string              `json:"email" binding:"required,email,max=255"`
	Document       string              `json:"document" binding:"required,document"`
	Password       string              `json:"password" binding:"required,min=6,max=72"`
	Role           domain.AccountRole  `json:"role" binding:"required,oneof=ordinary merchant"`
	InitialBalance *decimal.Decimal    `json:"initialBalance,omitempty" swaggertype:"string" example:"100.00"`
}

// LoginRequest carries login credentials.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse represents the response for a successful login.
type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// AccountResponse defines the data returned for an account.
type AccountResponse struct {
	AccountID     string             `json:"accountID"`
	Name          string             `json:"name"`
	Email         string             `json:"email"`
	Document      string             `json:"document"`
	Role          domain.AccountRole `json:"role"`
	Balance       string             `json:"balance" example:"800.00"`
	CreatedAt     time.Time          `json:"createdAt"`
	LastUpdatedAt time.Time          `json:"lastUpdatedAt"`
}

// PublicAccountResponse is what other account holders may see about an account.
type PublicAccountResponse struct {
	AccountID string             `json:"accountID"`
	Name      string             `json:"name"`
	Role      domain.AccountRole `json:"role"`
}

// AccountBalanceResponse defines the data returned for an account balance query.
type AccountBalanceResponse struct {
	AccountID string `json:"accountID"`
	Balance   string `json:"balance" example:"800.00"`
}

// ListAccountsParams defines query parameters for listing accounts.
type ListAccountsParams struct {
	Role   domain.AccountRole `form:"role" binding:"omitempty,oneof=ordinary merchant"`
	Limit  int                `form:"limit,default=20" binding:"min=1,max=100"`
	Offset int                `form:"offset,default=0" binding:"min=0"`
}

// ListAccountsResponse wraps a page of public account views.
type ListAccountsResponse struct {
	Accounts []PublicAccountResponse `json:"accounts"`
}

// ToAccountResponse converts a domain.Account to AccountResponse DTO
func ToAccountResponse(acc *domain.Account) AccountResponse {
	return AccountResponse{
		AccountID:     acc.AccountID,
		Name:          acc.Name,
		Email:         acc.Email,
		Document:      acc.Document,
		Role:          acc.Role,
		Balance:       domain.FormatAmount(acc.Balance),
		CreatedAt:     acc.CreatedAt,
		LastUpdatedAt: acc.LastUpdatedAt,
	}
}

// ToPublicAccountResponse hides contact data and balance.
func ToPublicAccountResponse(acc *domain.Account) PublicAccountResponse {
	return PublicAccountResponse{
		AccountID: acc.AccountID,
		Name:      acc.Name,
		Role:      acc.Role,
	}
}

// ToListAccountsResponse converts a slice of domain.Account to ListAccountsResponse DTO
func ToListAccountsResponse(accounts []domain.Account) ListAccountsResponse {
	res := make([]PublicAccountResponse, len(accounts))
	for i := range accounts {
		res[i] = ToPublicAccountResponse(&accounts[i])
	}
	return ListAccountsResponse{Accounts: res}
}
