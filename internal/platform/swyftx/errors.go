package swyftx

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/ozquant/swyftxgo/internal/domain"
)

// errorMatch pairs a message matcher with the error kind it classifies to.
// Both tables are ordered slices scanned front to back, so earlier entries win
// ties; they must never be turned into maps.
type errorMatch struct {
	match string
	kind  error
}

var exactMatches = []errorMatch{
	{"Invalid API Key", domain.ErrAuthentication},
	{"Invalid signature", domain.ErrAuthentication},
	{"Invalid nonce", domain.ErrAuthentication},
	{"Invalid authentication credentials", domain.ErrAuthentication},
	{"Insufficient funds", domain.ErrInsufficientFunds},
	{"Insufficient balance", domain.ErrInsufficientFunds},
	{"Invalid order", domain.ErrInvalidOrder},
	{"Order not found", domain.ErrOrderNotFound},
	{"Market not found", domain.ErrBadRequest},
	{"Asset not found", domain.ErrBadRequest},
	{"Rate limit exceeded", domain.ErrRateLimited},
	{"Trading is disabled", domain.ErrNotSupported},
}

var broadMatches = []errorMatch{
	{"API key", domain.ErrAuthentication},
	{"signature", domain.ErrAuthentication},
	{"authentication", domain.ErrAuthentication},
	{"Unauthorized", domain.ErrAuthentication},
	{"funds", domain.ErrInsufficientFunds},
	{"balance", domain.ErrInsufficientFunds},
	{"Invalid", domain.ErrInvalidOrder},
	{"Not found", domain.ErrOrderNotFound},
	{"Rate limit", domain.ErrRateLimited},
	{"disabled", domain.ErrNotSupported},
}

// classifyResponse inspects the HTTP status and response body and returns one
// typed error, or nil when the body carries no error indication at all.
//
// Status-code checks run before any message matching: a 401 whose body says
// "Insufficient funds" is still an authentication error, because the transport
// status is a more trustworthy signal than free-text. After the status checks
// the message is matched exactly, then by substring, and anything left falls
// through to the generic exchange error carrying the raw body.
func classifyResponse(statusCode int, body []byte) error {
	var decoded map[string]any
	if err := json.Unmarshal(body, &decoded); err != nil || decoded == nil {
		return nil
	}

	errField := stringField(decoded, "error")
	message := stringField(decoded, "message")
	if message == "" {
		message = errField
	}
	code := stringField(decoded, "code")
	if errField == "" && message == "" && code == "" {
		return nil
	}

	feedback := string(body)

	switch statusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w: %s", domain.ErrAuthentication, feedback)
	case http.StatusTooManyRequests:
		return fmt.Errorf("%w: %s", domain.ErrRateLimited, feedback)
	case http.StatusBadRequest:
		return fmt.Errorf("%w: %s", domain.ErrBadRequest, feedback)
	}

	for _, m := range exactMatches {
		if message == m.match {
			return fmt.Errorf("%w: %s", m.kind, feedback)
		}
	}
	for _, m := range broadMatches {
		if strings.Contains(message, m.match) {
			return fmt.Errorf("%w: %s", m.kind, feedback)
		}
	}

	return fmt.Errorf("%w: %s", domain.ErrExchange, feedback)
}

// stringField extracts a field as a string, tolerating numeric error codes.
func stringField(m map[string]any, key string) string {
	switch v := m[key].(type) {
	case string:
		return v
	case float64:
		return fmt.Sprintf("%v", v)
	case json.Number:
		return v.String()
	default:
		return ""
	}
}
