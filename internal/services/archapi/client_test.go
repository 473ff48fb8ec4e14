package archapi

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, mutate ...func(*Config)) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := DefaultConfig()
	cfg.BaseURL = srv.URL
	cfg.StatusURL = srv.URL + "/status"
	cfg.AvatarBaseURL = srv.URL + "/avatar"
	cfg.APIKey = "secret"
	for _, m := range mutate {
		m(&cfg)
	}
	return New(cfg)
}

func TestFetch_SendsKeyAndDecodes(t *testing.T) {
	var mu sync.Mutex
	var gotKey, gotPath string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		gotKey = r.Header.Get("X-API-KEY")
		gotPath = r.URL.RequestURI()
		mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"username":"Notch","uuid":"abc","statistics":{"kills":{"value":12,"position":5}}}`))
	})

	stats := c.PlayerStatistics(context.Background(), ModeLifesteal, "Notch")
	if stats == nil {
		t.Fatal("PlayerStatistics() = nil")
	}
	mu.Lock()
	defer mu.Unlock()
	if gotKey != "secret" {
		t.Errorf("X-API-KEY = %q", gotKey)
	}
	if gotPath != "/v1/ugc/trojan/players/username/Notch/statistics" {
		t.Errorf("path = %q", gotPath)
	}
	if pos, ok := stats.Statistics.Position("kills"); !ok || pos != 5 {
		t.Errorf("kills position = (%d, %v)", pos, ok)
	}
}

func TestFetch_FailuresCollapseToNil(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"NotFound", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusNotFound) }},
		{"ServerError", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusInternalServerError) }},
		{"Malformed", func(w http.ResponseWriter, _ *http.Request) { _, _ = w.Write([]byte("{oops")) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, tt.handler)
			if got := c.Economy(context.Background(), "Notch"); got != nil {
				t.Errorf("Economy() = %+v, want nil", got)
			}
		})
	}
}

func TestFetch_Timeout(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}, func(cfg *Config) { cfg.Timeout = 50 * time.Millisecond })

	start := time.Now()
	if c.Fetch(context.Background(), "/slow", &struct{}{}) {
		t.Error("Fetch() should fail on timeout")
	}
	if time.Since(start) > time.Second {
		t.Error("Fetch() did not honour the timeout")
	}
}

func TestFetch_BudgetRefusesWithoutRequest(t *testing.T) {
	var hits atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte(`{}`))
	}, func(cfg *Config) { cfg.RateLimit = 2 })

	ctx := context.Background()
	var out map[string]any
	if !c.Fetch(ctx, "/a", &out) || !c.Fetch(ctx, "/b", &out) {
		t.Fatal("requests within budget failed")
	}
	if c.Fetch(ctx, "/c", &out) {
		t.Error("request over budget should be refused")
	}
	if hits.Load() != 2 {
		t.Errorf("server saw %d requests, want 2", hits.Load())
	}
	if c.Remaining() != 0 {
		t.Errorf("Remaining() = %d", c.Remaining())
	}
}

func TestPlayerStat_RequiresValue(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/kills") {
			_, _ = w.Write([]byte(`{"position":3}`))
			return
		}
		_, _ = w.Write([]byte(`{"value":1.5,"position":3,"percentile":99.1}`))
	})

	if _, ok := c.PlayerStat(context.Background(), ModeLifesteal, "Notch", "kills"); ok {
		t.Error("PlayerStat() without value should report false")
	}

	rec, ok := c.PlayerStat(context.Background(), ModeLifesteal, "Notch", "killDeathRatio")
	if !ok || rec == nil {
		t.Fatal("PlayerStat() = false")
	}
}

func TestSearchGuilds_EscapesQuery(t *testing.T) {
	var gotQuery atomic.Value
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery.Store(r.URL.Query().Get("q"))
		_, _ = w.Write([]byte(`{"guilds":[{"name":"A & B"}]}`))
	})

	res := c.SearchGuilds(context.Background(), "A & B")
	if res == nil || len(res.Guilds) != 1 {
		t.Fatalf("SearchGuilds() = %+v", res)
	}
	if q, _ := gotQuery.Load().(string); q != "A & B" {
		t.Errorf("q = %q", q)
	}
}

func TestAvatar_FallbackChain(t *testing.T) {
	png := bytes.Repeat([]byte{0x89}, 200)
	var steveHits atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasPrefix(r.URL.Path, "/avatar/good-uuid/80"):
			_, _ = w.Write(png)
		case strings.HasPrefix(r.URL.Path, "/avatar/tiny-uuid/80"):
			_, _ = w.Write([]byte("x"))
		case strings.HasPrefix(r.URL.Path, "/avatar/MHF_Steve/80"):
			steveHits.Add(1)
			_, _ = w.Write(png)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}, func(cfg *Config) { cfg.RateLimit = 1 })

	ctx := context.Background()
	if got := c.Avatar(ctx, "good-uuid"); len(got) != 200 {
		t.Errorf("primary avatar len = %d", len(got))
	}
	if got := c.Avatar(ctx, "tiny-uuid"); len(got) != 200 || steveHits.Load() != 1 {
		t.Errorf("tiny body should fall back to Steve (hits %d)", steveHits.Load())
	}
	if got := c.Avatar(ctx, "missing"); len(got) != 200 || steveHits.Load() != 2 {
		t.Error("missing avatar should fall back to Steve")
	}
	if c.Remaining() != 1 {
		t.Error("avatar lookups must not spend the API budget")
	}
}

func TestAvatar_AllFail(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	if got := c.Avatar(context.Background(), "x"); got != nil {
		t.Errorf("Avatar() = %d bytes, want nil", len(got))
	}
}

func TestStatus(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/status" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte(`{"online":true,"version":"1.21","players":{"online":42,"max":500},"motd":{"clean":["Welcome"]}}`))
	})

	st := c.Status(context.Background())
	if st == nil {
		t.Fatal("Status() = nil")
	}
	if !st.Online || st.CurrentPlayers() != 42 || st.Players.Max != 500 || st.Version != "1.21" {
		t.Errorf("Status() = %+v", st)
	}
	if len(st.MOTD.Clean) != 1 || st.MOTD.Clean[0] != "Welcome" {
		t.Errorf("MOTD = %v", st.MOTD.Clean)
	}
}

func TestStatus_BreakerOpensAfterFailures(t *testing.T) {
	var hits atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	ctx := context.Background()
	for range 5 {
		if st := c.Status(ctx); st != nil {
			t.Fatalf("Status() = %+v, want nil", st)
		}
	}
	if hits.Load() != 3 {
		t.Errorf("status host hit %d times, want 3 before the breaker opens", hits.Load())
	}
}
