package swyftx

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ozquant/swyftxgo/internal/domain"
)

func TestClassifyResponse(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   error
	}{
		{
			name:   "status 401 outranks message match",
			status: http.StatusUnauthorized,
			body:   `{"error":"Insufficient funds"}`,
			want:   domain.ErrAuthentication,
		},
		{
			name:   "status 403 is authentication",
			status: http.StatusForbidden,
			body:   `{"message":"nope"}`,
			want:   domain.ErrAuthentication,
		},
		{
			name:   "status 429 is rate limited",
			status: http.StatusTooManyRequests,
			body:   `{"message":"slow down"}`,
			want:   domain.ErrRateLimited,
		},
		{
			name:   "status 400 is bad request",
			status: http.StatusBadRequest,
			body:   `{"code":123,"message":"nope"}`,
			want:   domain.ErrBadRequest,
		},
		{
			name:   "exact insufficient funds",
			status: http.StatusOK,
			body:   `{"error":"Insufficient funds"}`,
			want:   domain.ErrInsufficientFunds,
		},
		{
			name:   "exact order not found",
			status: http.StatusOK,
			body:   `{"message":"Order not found"}`,
			want:   domain.ErrOrderNotFound,
		},
		{
			name:   "exact trading disabled",
			status: http.StatusOK,
			body:   `{"message":"Trading is disabled"}`,
			want:   domain.ErrNotSupported,
		},
		{
			name:   "substring balance",
			status: http.StatusOK,
			body:   `{"message":"your balance is too low"}`,
			want:   domain.ErrInsufficientFunds,
		},
		{
			name:   "substring API key wins over later entries",
			status: http.StatusOK,
			body:   `{"message":"Invalid API key supplied"}`,
			want:   domain.ErrAuthentication,
		},
		{
			name:   "substring balance wins over Invalid",
			status: http.StatusOK,
			body:   `{"message":"Invalid balance"}`,
			want:   domain.ErrInsufficientFunds,
		},
		{
			name:   "unmatched message falls through to exchange error",
			status: http.StatusOK,
			body:   `{"message":"something exotic happened"}`,
			want:   domain.ErrExchange,
		},
		{
			name:   "error status 500 without status mapping",
			status: http.StatusInternalServerError,
			body:   `{"error":"oops"}`,
			want:   domain.ErrExchange,
		},
		{
			name:   "numeric code alone still classifies",
			status: http.StatusOK,
			body:   `{"code":42}`,
			want:   domain.ErrExchange,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := classifyResponse(tt.status, []byte(tt.body))
			if !errors.Is(err, tt.want) {
				t.Errorf("classifyResponse(%d, %s) = %v, want %v", tt.status, tt.body, err, tt.want)
			}
		})
	}
}

func TestClassifyResponse_NoErrorIndication(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"success payload", `{"orderUuid":"ord-1"}`},
		{"empty object", `{}`},
		{"non-json body", `<html>gateway timeout</html>`},
		{"json array", `[1,2,3]`},
		{"empty body", ``},
	}
	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			if err := classifyResponse(http.StatusOK, []byte(tt.body)); err != nil {
				t.Errorf("classifyResponse = %v, want nil", err)
			}
		})
	}
}

// The fallback for an error status whose body the classifier cannot read
// lives in the transport, not the classifier.
func TestDo_ErrorStatusWithOpaqueBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		io.WriteString(w, "<html>bad gateway</html>")
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "", WithLogger(discardLogger()))
	_, err := client.publicGet(context.Background(), "markets/assets/", nil)
	if !errors.Is(err, domain.ErrExchange) {
		t.Fatalf("error = %v, want ErrExchange", err)
	}
}
