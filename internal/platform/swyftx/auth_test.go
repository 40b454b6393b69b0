package swyftx

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/ozquant/swyftxgo/internal/domain"
)

func TestAuthenticate_StoresToken(t *testing.T) {
	fake := newFakeExchange(t)
	client := fake.client()

	if client.HasValidToken() {
		t.Fatal("expected no token before authentication")
	}

	resp, err := client.Authenticate(context.Background())
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if resp["accessToken"] != "test-token" {
		t.Errorf("unexpected raw response token: %v", resp["accessToken"])
	}
	if !client.HasValidToken() {
		t.Error("expected a valid token after authentication")
	}
	if got := client.token(); got != "test-token" {
		t.Errorf("stored token = %q, want %q", got, "test-token")
	}
}

func TestAuthenticate_SendsAPIKeyInBody(t *testing.T) {
	fake := newFakeExchange(t)
	client := fake.client()

	if _, err := client.Authenticate(context.Background()); err != nil {
		t.Fatalf("Authenticate: %v", err)
	}

	auths := fake.findRequests("/auth/refresh/")
	if len(auths) != 1 {
		t.Fatalf("auth requests = %d, want 1", len(auths))
	}
	if got := auths[0].Body["apiKey"]; got != "test-key" {
		t.Errorf("auth body apiKey = %v, want %q", got, "test-key")
	}
	if got := auths[0].Header.Get("Authorization"); got != "" {
		t.Errorf("auth request must not carry an Authorization header, got %q", got)
	}
}

func TestAuthenticate_RejectedKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		io.WriteString(w, `{"error":"Invalid API Key"}`)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "bad-key", WithLogger(discardLogger()))
	_, err := client.Authenticate(context.Background())
	if !errors.Is(err, domain.ErrAuthentication) {
		t.Fatalf("error = %v, want ErrAuthentication", err)
	}
	if client.HasValidToken() {
		t.Error("rejected key must not leave a token behind")
	}
}

func TestAuthenticate_ErrorStatusWithoutErrorField(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		io.WriteString(w, `{"ok":false}`)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "test-key", WithLogger(discardLogger()))
	_, err := client.Authenticate(context.Background())
	if !errors.Is(err, domain.ErrExchange) {
		t.Fatalf("error = %v, want ErrExchange for an error status the classifier cannot read", err)
	}
	if client.HasValidToken() {
		t.Error("failed refresh must not leave a token behind")
	}
}

func TestPrivateRequest_MissingCredentials(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected request without credentials: %s %s", r.Method, r.URL.Path)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "", WithLogger(discardLogger()))
	_, err := client.request(context.Background(), "user/balance/", scopePrivate, http.MethodGet, nil)
	if !errors.Is(err, domain.ErrAuthentication) {
		t.Fatalf("error = %v, want ErrAuthentication", err)
	}
}

func TestPrivateRequest_AttachesBearerToken(t *testing.T) {
	fake := newFakeExchange(t)
	fake.balance = `[]`
	client := fake.client()

	if _, err := client.FetchBalance(context.Background()); err != nil {
		t.Fatalf("FetchBalance: %v", err)
	}

	reqs := fake.findRequests("/user/balance/")
	if len(reqs) != 1 {
		t.Fatalf("balance requests = %d, want 1", len(reqs))
	}
	if got := reqs[0].Header.Get("Authorization"); got != "Bearer test-token" {
		t.Errorf("Authorization = %q, want %q", got, "Bearer test-token")
	}
}

// Concurrent private calls on a fresh session must share one token exchange
// and one catalog fetch.
func TestEnsureAuthenticated_SingleRefreshUnderConcurrency(t *testing.T) {
	fake := newFakeExchange(t)
	client := fake.client()

	const workers = 8
	var wg sync.WaitGroup
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = client.FetchBalance(context.Background())
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Fatalf("worker %d: %v", i, err)
		}
	}

	fake.mu.Lock()
	authCalls, catalogCalls := fake.authCalls, fake.catalogCalls
	fake.mu.Unlock()
	if authCalls != 1 {
		t.Errorf("auth calls = %d, want 1", authCalls)
	}
	if catalogCalls != 1 {
		t.Errorf("catalog fetches = %d, want 1", catalogCalls)
	}
}

func TestEnsureAuthenticated_ReusesExistingToken(t *testing.T) {
	fake := newFakeExchange(t)
	client := fake.client()

	if _, err := client.FetchBalance(context.Background()); err != nil {
		t.Fatalf("first FetchBalance: %v", err)
	}
	if _, err := client.FetchBalance(context.Background()); err != nil {
		t.Fatalf("second FetchBalance: %v", err)
	}

	fake.mu.Lock()
	authCalls := fake.authCalls
	fake.mu.Unlock()
	if authCalls != 1 {
		t.Errorf("auth calls = %d, want 1 across repeated requests", authCalls)
	}
}
