package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"fleetpay/internal/domain"
	"fleetpay/internal/middleware"
	"fleetpay/internal/service"
)

// AccountHandler handles HTTP requests for accounts and roles.
type AccountHandler struct {
	accessService *service.AccessService
	auditService  *service.AuditService
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(accessService *service.AccessService, auditService *service.AuditService) *AccountHandler {
	return &AccountHandler{
		accessService: accessService,
		auditService:  auditService,
	}
}

// AccountResponse is the HTTP representation of an account.
type AccountResponse struct {
	ID        int64  `json:"id"`
	Username  string `json:"username,omitempty"`
	Role      int    `json:"role"`
	CreatedAt string `json:"created_at"`
}

func accountResponse(a *domain.Account) AccountResponse {
	return AccountResponse{
		ID:        a.ID,
		Username:  a.Username,
		Role:      int(a.Role),
		CreatedAt: a.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

// GetAll handles GET /v1/accounts
func (h *AccountHandler) GetAll(c *gin.Context) {
	accounts, err := h.accessService.ListAccounts(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]AccountResponse, 0, len(accounts))
	for _, account := range accounts {
		response = append(response, accountResponse(account))
	}

	respondJSON(c, http.StatusOK, response)
}

// GrantRequest is the body for creating an account or changing its role.
type GrantRequest struct {
	AccountID int64  `json:"account_id"`
	Username  string `json:"username"`
	Role      int    `json:"role"`
}

// Grant handles POST /v1/accounts
func (h *AccountHandler) Grant(c *gin.Context) {
	var req GrantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	if req.AccountID == 0 || req.Role < int(domain.RoleAdmin) || req.Role > int(domain.RoleViewer) {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid account or role"})
		return
	}

	account, err := h.accessService.Grant(c.Request.Context(), service.GrantRequest{
		AccountID: req.AccountID,
		Username:  req.Username,
		Role:      domain.Role(req.Role),
		GrantedBy: middleware.AccountID(c),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, accountResponse(account))
}

// Revoke handles DELETE /v1/accounts/:id
func (h *AccountHandler) Revoke(c *gin.Context) {
	accountID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid account id"})
		return
	}

	if err := h.accessService.Revoke(c.Request.Context(), accountID, middleware.AccountID(c)); err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, gin.H{"revoked": true})
}

// AuditEntryResponse is the HTTP representation of an audit entry.
type AuditEntryResponse struct {
	ID        int64  `json:"id"`
	AccountID int64  `json:"account_id"`
	Action    string `json:"action"`
	Details   string `json:"details,omitempty"`
	CreatedAt string `json:"created_at"`
}

// AuditLog handles GET /v1/audit?limit=100
func (h *AccountHandler) AuditLog(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid limit"})
			return
		}
		limit = parsed
	}

	entries, err := h.auditService.Recent(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]AuditEntryResponse, 0, len(entries))
	for _, e := range entries {
		response = append(response, AuditEntryResponse{
			ID:        e.ID,
			AccountID: e.AccountID,
			Action:    e.Action,
			Details:   e.Details,
			CreatedAt: e.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		})
	}

	respondJSON(c, http.StatusOK, response)
}
