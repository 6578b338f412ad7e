package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"fleetpay/internal/form"
	"fleetpay/internal/middleware"
	"fleetpay/internal/redis"
)

// flowLockTTL bounds how long a crashed request can hold an account's flow lock.
const flowLockTTL = 10 * time.Second

// FlowHandler handles HTTP requests for guided entry flows. Mutations are
// serialized per account through the lock store, so a double-delivered event
// cannot advance a session twice.
type FlowHandler struct {
	engine *form.Engine
	locks  redis.LockStoreInterface
}

// NewFlowHandler creates a new FlowHandler.
func NewFlowHandler(engine *form.Engine, locks redis.LockStoreInterface) *FlowHandler {
	return &FlowHandler{engine: engine, locks: locks}
}

// withAccountLock runs fn while holding the account's flow lock. A held lock
// means another event for the same account is in flight; respond 409.
func (h *FlowHandler) withAccountLock(c *gin.Context, fn func()) {
	accountID := middleware.AccountID(c)

	ok, err := h.locks.AcquireAccountLock(c.Request.Context(), accountID, flowLockTTL)
	if err != nil {
		respondError(c, err)
		return
	}
	if !ok {
		c.JSON(http.StatusConflict, ErrorResponse{Error: "another request is updating this session"})
		return
	}
	defer func() { _ = h.locks.ReleaseAccountLock(c.Request.Context(), accountID) }()

	fn()
}

// SubmitRequest is the body of a step submission.
type SubmitRequest struct {
	Value string `json:"value"`
}

// ConfirmRequest is the body of a confirmation decision.
type ConfirmRequest struct {
	Accept bool `json:"accept"`
}

// Start handles POST /v1/flows/:name/start
func (h *FlowHandler) Start(c *gin.Context) {
	h.withAccountLock(c, func() {
		prompt, err := h.engine.Start(c.Request.Context(), c.Param("name"), middleware.AccountID(c))
		if err != nil {
			respondError(c, err)
			return
		}

		respondJSON(c, http.StatusOK, prompt)
	})
}

// Submit handles POST /v1/flows/:name/submit
func (h *FlowHandler) Submit(c *gin.Context) {
	var req SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	h.withAccountLock(c, func() {
		result, err := h.engine.Submit(c.Request.Context(), c.Param("name"), middleware.AccountID(c), req.Value)
		if err != nil {
			respondError(c, err)
			return
		}

		respondJSON(c, http.StatusOK, result)
	})
}

// Back handles POST /v1/flows/:name/back
func (h *FlowHandler) Back(c *gin.Context) {
	h.withAccountLock(c, func() {
		result, err := h.engine.Back(c.Request.Context(), c.Param("name"), middleware.AccountID(c))
		if err != nil {
			respondError(c, err)
			return
		}

		respondJSON(c, http.StatusOK, result)
	})
}

// Confirm handles POST /v1/flows/:name/confirm
func (h *FlowHandler) Confirm(c *gin.Context) {
	var req ConfirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	h.withAccountLock(c, func() {
		outcome, err := h.engine.Confirm(c.Request.Context(), c.Param("name"), middleware.AccountID(c), req.Accept)
		if err != nil {
			respondError(c, err)
			return
		}

		respondJSON(c, http.StatusOK, outcome)
	})
}

// Cancel handles POST /v1/flows/:name/cancel
func (h *FlowHandler) Cancel(c *gin.Context) {
	h.withAccountLock(c, func() {
		if err := h.engine.Cancel(c.Request.Context(), c.Param("name"), middleware.AccountID(c)); err != nil {
			respondError(c, err)
			return
		}

		respondJSON(c, http.StatusOK, gin.H{"cancelled": true})
	})
}
