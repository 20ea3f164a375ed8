package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thamonwanpho67-art/PMJinventory-sub001/internal/domain/lending"
	"github.com/thamonwanpho67-art/PMJinventory-sub001/internal/domain/shared"
	"github.com/thamonwanpho67-art/PMJinventory-sub001/internal/infrastructure/logger"
	"github.com/thamonwanpho67-art/PMJinventory-sub001/internal/interfaces/http/dto"
)

func TestBaseHandler_HandleError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantStatus  int
		wantCode    string
		wantMessage string
	}{
		{
			name:        "not found",
			err:         lending.ErrLoanNotFound,
			wantStatus:  http.StatusNotFound,
			wantCode:    dto.ErrCodeNotFound,
			wantMessage: "Loan not found",
		},
		{
			name:        "wrapped insufficient stock",
			err:         fmt.Errorf("create loan: %w", shared.NewDomainError("INSUFFICIENT_STOCK", "Only 1 unit available")),
			wantStatus:  http.StatusConflict,
			wantCode:    dto.ErrCodeInsufficientStock,
			wantMessage: "Only 1 unit available",
		},
		{
			name:        "invalid transition",
			err:         shared.NewDomainError(lending.CodeInvalidTransition, "Cannot move from RETURNED to APPROVED"),
			wantStatus:  http.StatusBadRequest,
			wantCode:    dto.ErrCodeInvalidTransition,
			wantMessage: "Cannot move from RETURNED to APPROVED",
		},
		{
			name:        "forbidden",
			err:         shared.ErrForbidden,
			wantStatus:  http.StatusForbidden,
			wantCode:    dto.ErrCodeForbidden,
			wantMessage: shared.ErrForbidden.Message,
		},
		{
			name:        "internal domain error hides message",
			err:         shared.NewDomainError("INTERNAL_ERROR", "token signing key missing"),
			wantStatus:  http.StatusInternalServerError,
			wantCode:    dto.ErrCodeInternal,
			wantMessage: "An unexpected error occurred",
		},
		{
			name:        "unknown code",
			err:         shared.NewDomainError("SOMETHING_NEW", "details"),
			wantStatus:  http.StatusInternalServerError,
			wantCode:    dto.ErrCodeInternal,
			wantMessage: "An unexpected error occurred",
		},
		{
			name:        "plain error",
			err:         errors.New("connection reset by peer"),
			wantStatus:  http.StatusInternalServerError,
			wantCode:    dto.ErrCodeInternal,
			wantMessage: "An unexpected error occurred",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
			c.Set(logger.GinRequestIDKey, "req-1")

			h := &BaseHandler{}
			h.HandleError(c, tt.err)

			assert.Equal(t, tt.wantStatus, w.Code)
			var resp dto.Response
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.False(t, resp.Success)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.wantCode, resp.Error.Code)
			assert.Equal(t, tt.wantMessage, resp.Error.Message)
			assert.Equal(t, "req-1", resp.Error.RequestID)
		})
	}
}

func TestBaseHandler_HandleErrorNil(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	h := &BaseHandler{}
	h.HandleError(c, nil)

	assert.False(t, c.Writer.Written())
}

func TestBaseHandler_PathID(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	c.Params = gin.Params{{Key: "id", Value: "not-a-uuid"}}

	h := &BaseHandler{}
	_, ok := h.pathID(c)

	assert.False(t, ok)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
