package module

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"warden/internal/modkit"
	"warden/internal/platform/logger"
	phttp "warden/internal/platform/net/http"
	opshttp "warden/internal/services/ops/http"
)

func TestMountRoutes_DefaultMiddlewareBundle(t *testing.T) {
	m := New(modkit.Deps{Log: *logger.Get()}, opshttp.Counters{
		Locks:        func() int { return 0 },
		DigestOwners: func() int { return 0 },
	})

	mux := chi.NewRouter()
	m.MountRoutes(phttp.AdaptChi(mux))

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("healthz = %d, want 200", rr.Code)
	}
	// the platform bundle mounts unless the binary supplies its own stack
	if rr.Header().Get("Cache-Control") == "" {
		t.Fatalf("expected Cache-Control from the default middleware bundle")
	}
}
