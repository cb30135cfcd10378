package chainrpc

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"warden/internal/core/match"
	perr "warden/internal/platform/errors"
	autopilot "warden/internal/services/autopilot/domain"
)

func TestSubmit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/actions" || r.Method != http.MethodPost {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var req autopilot.SubmitRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.Domain != "nft.ape" || req.Amount != 45 {
			t.Errorf("request = %+v", req)
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"tx_hash": "0xabc"})
	}))
	defer srv.Close()

	c := New(Options{BaseURL: srv.URL})
	tx, err := c.Submit(context.Background(), autopilot.SubmitRequest{
		Kind: match.ActionBuy, Domain: "nft.ape", Amount: 45, OwnerID: "owner-1",
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if tx != "0xabc" {
		t.Fatalf("tx = %q", tx)
	}
}

func TestSubmit_CollaboratorError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "listing already settled"})
	}))
	defer srv.Close()

	c := New(Options{BaseURL: srv.URL})
	_, err := c.Submit(context.Background(), autopilot.SubmitRequest{
		Kind: match.ActionBuy, Domain: "nft.ape", Amount: 45,
	})
	if !perr.IsCode(err, perr.ErrorCodeUnavailable) {
		t.Fatalf("err = %v, want unavailable", err)
	}
}

func TestDomainInfo(t *testing.T) {
	expiry := time.Date(2026, time.September, 1, 0, 0, 0, 0, time.UTC)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/domains/web3.ape":
			_ = json.NewEncoder(w).Encode(map[string]any{
				"domain": "web3.ape", "expiry_at": expiry,
			})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	c := New(Options{BaseURL: srv.URL})
	got, err := c.DomainInfo(context.Background(), "web3.ape")
	if err != nil {
		t.Fatalf("DomainInfo: %v", err)
	}
	if !got.Equal(expiry) {
		t.Fatalf("expiry = %v, want %v", got, expiry)
	}

	_, err = c.DomainInfo(context.Background(), "missing.ape")
	if !perr.IsCode(err, perr.ErrorCodeNotFound) {
		t.Fatalf("err = %v, want not found", err)
	}
}
