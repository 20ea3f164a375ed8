package handler

import (
	"github.com/gin-gonic/gin"
	applending "github.com/thamonwanpho67-art/PMJinventory-sub001/internal/application/lending"
	"github.com/thamonwanpho67-art/PMJinventory-sub001/internal/interfaces/http/dto"
	"github.com/thamonwanpho67-art/PMJinventory-sub001/internal/interfaces/http/middleware"
)

// LoanHandler handles loan lifecycle HTTP requests
type LoanHandler struct {
	BaseHandler
	loanService *applending.LoanService
}

// NewLoanHandler creates a new loan handler
func NewLoanHandler(loanService *applending.LoanService) *LoanHandler {
	return &LoanHandler{
		loanService: loanService,
	}
}

// Create handles POST /loans. The loan is recorded for the caller.
func (h *LoanHandler) Create(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	var req applending.CreateLoanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	loan, err := h.loanService.CreateLoan(c.Request.Context(), actor, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, loan)
}

// List handles GET /loans. Administrators see every loan, users their own.
func (h *LoanHandler) List(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	var filter applending.LoanListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = dto.DefaultPageSize
	}

	loans, total, err := h.loanService.ListLoans(c.Request.Context(), actor, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, loans, total, filter.Page, filter.PageSize)
}

// Get handles GET /loans/:id
func (h *LoanHandler) Get(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	loan, err := h.loanService.GetLoan(c.Request.Context(), actor, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, loan)
}

// Transition handles PATCH /loans/:id (admin)
func (h *LoanHandler) Transition(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	var req applending.TransitionLoanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	loan, err := h.loanService.TransitionLoan(c.Request.Context(), actor, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, loan)
}
