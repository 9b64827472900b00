package handler

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/impawawa/Final-Project/internal/service"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestRespondError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		body   string
	}{
		{
			name:   "validation",
			err:    service.NewValidationError("year", "Year must be 1886 or later."),
			status: http.StatusBadRequest,
			body:   `{"errors":{"year":"Year must be 1886 or later."}}`,
		},
		{
			name:   "not found",
			err:    fmt.Errorf("car: %w", service.ErrNotFound),
			status: http.StatusNotFound,
			body:   `{"error":"Not found."}`,
		},
		{
			name:   "forbidden",
			err:    service.ErrForbidden,
			status: http.StatusForbidden,
			body:   `{"error":"You do not have permission to perform this action."}`,
		},
		{
			name:   "conflict",
			err:    fmt.Errorf("car is booked: %w", service.ErrConflict),
			status: http.StatusConflict,
		},
		{
			name:   "unexpected",
			err:    errors.New("connection reset"),
			status: http.StatusInternalServerError,
			body:   `{"error":"Internal Server Error"}`,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(rec)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

			respondError(c, zap.NewNop(), tc.err)

			require.Equal(t, tc.status, rec.Code)
			if tc.body != "" {
				require.JSONEq(t, tc.body, rec.Body.String())
			}
		})
	}
}

func TestBindingErrors_UseJSONNames(t *testing.T) {
	RegisterValidation()

	var req carRequest
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"brand":"Toyota"}`))
	c.Request.Header.Set("Content-Type", "application/json")

	err := c.ShouldBindJSON(&req)
	require.Error(t, err)

	fields := bindingErrors(err)
	require.Equal(t, "This field is required.", fields["price_per_day"])
	require.Contains(t, fields, "model")
	require.NotContains(t, fields, "brand")

	require.Equal(t, map[string]string{"body": "Malformed JSON request body."}, bindingErrors(errors.New("EOF")))
}

func TestPathID(t *testing.T) {
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Params = gin.Params{{Key: "id", Value: "42"}}

	_, ok := pathID(c)
	require.False(t, ok)
	require.Equal(t, http.StatusNotFound, rec.Code)
}
