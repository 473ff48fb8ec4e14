package httpserver

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
)

type fakePinger struct{ err error }

func (f fakePinger) PingContext(ctx context.Context) error {
	if _, ok := ctx.Deadline(); !ok {
		return errors.New("ping without deadline")
	}
	return f.err
}

func TestHealthz(t *testing.T) {
	tests := []struct {
		name       string
		pingErr    error
		wantCode   int
		wantStatus string
		wantDB     string
	}{
		{"healthy", nil, http.StatusOK, "ok", "ok"},
		{"db down", errors.New("database is locked"), http.StatusServiceUnavailable, "degraded", "error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			NewRouter(fakePinger{err: tt.pingErr}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

			if rec.Code != tt.wantCode {
				t.Fatalf("code = %d, want %d", rec.Code, tt.wantCode)
			}
			if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("content type = %q", ct)
			}
			var h Health
			if err := json.Unmarshal(rec.Body.Bytes(), &h); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if h.Status != tt.wantStatus || h.DB.Status != tt.wantDB {
				t.Errorf("health = %+v", h)
			}
			if h.Timestamp.IsZero() {
				t.Error("timestamp missing")
			}
		})
	}
}

func TestMetrics(t *testing.T) {
	rec := httptest.NewRecorder()
	NewRouter(fakePinger{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("code = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "go_goroutines") {
		t.Error("default collectors missing from /metrics")
	}
}

func TestUnknownRoute(t *testing.T) {
	rec := httptest.NewRecorder()
	NewRouter(fakePinger{}).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/healthz", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("code = %d, want 405", rec.Code)
	}
}

type fakeServer struct {
	listenErr error
	stop      chan struct{}
	shutdown  bool
}

func newFakeServer(listenErr error) *fakeServer {
	return &fakeServer{listenErr: listenErr, stop: make(chan struct{})}
}

func (f *fakeServer) ListenAndServe() error {
	if f.listenErr != nil {
		return f.listenErr
	}
	<-f.stop
	return http.ErrServerClosed
}

func (f *fakeServer) Shutdown(context.Context) error {
	f.shutdown = true
	close(f.stop)
	return nil
}

func TestService_ShutsDownOnCancel(t *testing.T) {
	srv := newFakeServer(nil)
	svc := NewService(srv, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Serve(ctx) }()
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Serve = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return")
	}
	if !srv.shutdown {
		t.Error("Shutdown not called")
	}
	if svc.String() != "http-server" {
		t.Errorf("String = %q", svc.String())
	}
}

func TestService_ListenFailure(t *testing.T) {
	svc := NewService(newFakeServer(errors.New("address already in use")), 0)
	err := svc.Serve(context.Background())
	if err == nil || !strings.Contains(err.Error(), "address already in use") {
		t.Errorf("Serve = %v", err)
	}
	if svc.shutdownTimeout != 10*time.Second {
		t.Errorf("default shutdown timeout = %v", svc.shutdownTimeout)
	}
}
