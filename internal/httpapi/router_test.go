package httpapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"campuslink/internal/auth"
	"campuslink/internal/domain"
	"campuslink/internal/service"
)

func newTestRouter(t *testing.T) (http.Handler, auth.Verifier) {
	t.Helper()
	verifier := auth.NewVerifier([]byte("router-test-secret"))
	msgs := &stubMessagesStore{
		t: t,
		unreadFunc: func(context.Context, string) (int, error) { return 0, nil },
	}
	conns := &stubConnectionsStore{t: t}
	router := NewRouter(RouterOpts{
		Connections: &service.ConnectionService{Connections: conns},
		Chat:        &service.ChatService{Connections: conns, Messages: msgs},
		Verifier:    verifier,
	})
	return router, verifier
}

func TestRouterRejectsMissingBearer(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/chat/unread", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("unexpected status: %d", rr.Code)
	}
}

func TestRouterRejectsBadBearer(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/chat/unread", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("unexpected status: %d", rr.Code)
	}
}

func TestRouterAcceptsValidBearer(t *testing.T) {
	router, verifier := newTestRouter(t)

	token, err := verifier.Sign(domain.Identity{UserID: "user-1"}, time.Hour)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/v1/chat/unread", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rr.Code)
	}
}

func TestRouterUnknownV1RouteIs404(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/does-not-exist", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("unexpected status: %d", rr.Code)
	}
}

func TestHealthzReportsDBDown(t *testing.T) {
	verifier := auth.NewVerifier([]byte("router-test-secret"))
	router := NewRouter(RouterOpts{
		Connections: &service.ConnectionService{},
		Chat:        &service.ChatService{},
		Verifier:    verifier,
		DBPing: func(context.Context) error {
			return context.DeadlineExceeded
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("unexpected status: %d", rr.Code)
	}
}
