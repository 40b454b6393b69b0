package swyftx

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
)

// testCatalog is the markets/assets/ fixture: the AUD quote plus two base
// assets. BTC carries a minimum_order_increment; ETH does not, so its amount
// tick derives from price_scale.
const testCatalog = `[
  {"id":1,"code":"AUD","name":"Australian Dollar","price_scale":2,"minimum_order":0,"minimum_order_increment":0,"mining_fee":0,"min_withdrawal":0,"deposit_enabled":true,"withdraw_enabled":true},
  {"id":3,"code":"BTC","name":"Bitcoin","price_scale":8,"minimum_order":0.0003,"minimum_order_increment":0.0001,"mining_fee":0.0005,"min_withdrawal":0.001,"deposit_enabled":true,"withdraw_enabled":true},
  {"id":5,"code":"ETH","name":"Ethereum","price_scale":8,"minimum_order":0.005,"minimum_order_increment":0,"mining_fee":0.01,"min_withdrawal":0.01,"deposit_enabled":true,"withdraw_enabled":false}
]`

// testLiveRates is the live-rates/1/ fixture. Asset 77 has no catalog entry
// and must not produce a market; ETH's buy liquidity flag marks it inactive.
const testLiveRates = `{
  "1":  {"midPrice":"1","askPrice":"1","bidPrice":"1","dailyPriceChange":"0","buyLiquidityFlag":false,"sellLiquidityFlag":false},
  "3":  {"midPrice":"50000.5","askPrice":"50050","bidPrice":"49950","dailyPriceChange":"2.5","buyLiquidityFlag":false,"sellLiquidityFlag":false},
  "5":  {"midPrice":"2500","askPrice":"2510","bidPrice":"2490","dailyPriceChange":"-1.2","buyLiquidityFlag":true,"sellLiquidityFlag":false},
  "77": {"midPrice":"9","askPrice":"9","bidPrice":"9","dailyPriceChange":"0","buyLiquidityFlag":false,"sellLiquidityFlag":false}
}`

const testDetail = `{"volume":{"24H":123456.78,"1W":900000}}`

type capturedRequest struct {
	Method string
	Path   string
	Query  url.Values
	Header http.Header
	Body   map[string]any
}

// fakeExchange is an httptest-backed stand-in for the Swyftx API. Response
// fixtures are overridable per test; every request is recorded.
type fakeExchange struct {
	t   *testing.T
	srv *httptest.Server

	mu           sync.Mutex
	authCalls    int
	catalogCalls int
	requests     []capturedRequest

	catalog      string
	liveRates    string
	detail       string
	detailStatus int
	orderCreate  string
	orderEdit    string
	ordersByID   map[string]string
	ordersList   string
	balance      string
	bars         string
}

func newFakeExchange(t *testing.T) *fakeExchange {
	f := &fakeExchange{
		t:          t,
		catalog:    testCatalog,
		liveRates:  testLiveRates,
		detail:     testDetail,
		ordersByID: map[string]string{},
		ordersList: `[]`,
		balance:    `[]`,
		bars:       `[]`,
	}
	f.srv = httptest.NewServer(http.HandlerFunc(f.handle))
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fakeExchange) handle(w http.ResponseWriter, r *http.Request) {
	var body map[string]any
	if r.Method == http.MethodPost || r.Method == http.MethodPut {
		raw, _ := io.ReadAll(r.Body)
		if len(raw) > 0 {
			_ = json.Unmarshal(raw, &body)
		}
	}

	f.mu.Lock()
	f.requests = append(f.requests, capturedRequest{
		Method: r.Method,
		Path:   r.URL.Path,
		Query:  r.URL.Query(),
		Header: r.Header.Clone(),
		Body:   body,
	})
	if r.URL.Path == "/auth/refresh/" {
		f.authCalls++
	}
	if r.URL.Path == "/markets/assets/" {
		f.catalogCalls++
	}
	// Snapshot the fixtures while holding the lock; tests may swap them
	// between requests.
	catalog := f.catalog
	liveRates := f.liveRates
	detail := f.detail
	detailStatus := f.detailStatus
	orderCreate := f.orderCreate
	orderEdit := f.orderEdit
	orderByID, orderKnown := "", false
	if strings.HasPrefix(r.URL.Path, "/orders/byId/") {
		orderByID, orderKnown = f.ordersByID[strings.TrimPrefix(r.URL.Path, "/orders/byId/")]
	}
	ordersList := f.ordersList
	balance := f.balance
	bars := f.bars
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")

	switch {
	case r.URL.Path == "/auth/refresh/":
		io.WriteString(w, `{"accessToken":"test-token","scope":"app.account.read"}`)
	case r.URL.Path == "/markets/assets/":
		io.WriteString(w, catalog)
	case strings.HasPrefix(r.URL.Path, "/live-rates/"):
		io.WriteString(w, liveRates)
	case strings.HasPrefix(r.URL.Path, "/markets/info/detail/"):
		if detailStatus != 0 {
			w.WriteHeader(detailStatus)
			io.WriteString(w, `{"error":"detail unavailable"}`)
			return
		}
		io.WriteString(w, detail)
	case r.URL.Path == "/user/balance/":
		io.WriteString(w, balance)
	case strings.HasPrefix(r.URL.Path, "/charts/v2/getBars/"):
		io.WriteString(w, bars)
	case r.URL.Path == "/orders" && r.Method == http.MethodPost:
		io.WriteString(w, orderCreate)
	case strings.HasPrefix(r.URL.Path, "/orders/byId/"):
		if orderKnown {
			io.WriteString(w, orderByID)
			return
		}
		w.WriteHeader(http.StatusNotFound)
		io.WriteString(w, `{"error":"Order not found"}`)
	case strings.HasPrefix(r.URL.Path, "/orders/") && r.Method == http.MethodPut:
		io.WriteString(w, orderEdit)
	case strings.HasPrefix(r.URL.Path, "/orders/") && r.Method == http.MethodDelete:
		io.WriteString(w, `{"processed":true}`)
	case strings.HasPrefix(r.URL.Path, "/orders"):
		io.WriteString(w, ordersList)
	default:
		f.t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		w.WriteHeader(http.StatusNotFound)
		io.WriteString(w, `{"error":"Not found"}`)
	}
}

// client builds a Client pointed at the fake with credentials configured.
func (f *fakeExchange) client() *Client {
	return NewClient(f.srv.URL, "test-key", WithLogger(discardLogger()))
}

// findRequests returns every recorded request whose path starts with prefix.
func (f *fakeExchange) findRequests(prefix string) []capturedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []capturedRequest
	for _, req := range f.requests {
		if strings.HasPrefix(req.Path, prefix) {
			out = append(out, req)
		}
	}
	return out
}

func (f *fakeExchange) requestCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
