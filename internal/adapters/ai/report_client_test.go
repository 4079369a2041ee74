package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/selivandex/newspulse/internal/adapters/config"
	"github.com/selivandex/newspulse/internal/adapters/httpx"
	"github.com/selivandex/newspulse/pkg/cache"
	"github.com/selivandex/newspulse/pkg/logger"
	"github.com/selivandex/newspulse/pkg/models"
	"github.com/selivandex/newspulse/pkg/retry"
)

func TestMain(m *testing.M) {
	logger.InitDefault()
	m.Run()
}

func fastPolicy() retry.Policy {
	return retry.Policy{
		MaxRetries:     2,
		InitialDelay:   time.Millisecond,
		Multiplier:     2.0,
		ImmediateFirst: true,
		Retryable:      httpx.IsRetryable,
	}
}

func testClient(t *testing.T, handler http.HandlerFunc) *ReportClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := NewReportClient(&config.AIConfig{
		ReportAPIKey:    "key",
		ReportModel:     "test-model",
		ReportMaxTokens: 500,
	}, fastPolicy())
	c.baseURL = srv.URL
	return c
}

func completionResponse(text string) string {
	return fmt.Sprintf(`{"content": [{"text": %q}]}`, text)
}

func TestComplete_SplitsSystemRole(t *testing.T) {
	var captured struct {
		System   string    `json:"system"`
		Messages []Message `json:"messages"`
	}

	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Errorf("bad request body: %v", err)
		}
		fmt.Fprint(w, completionResponse("report text"))
	})

	got, err := c.Complete(context.Background(), []Message{
		{Role: "system", Content: "you are an analyst"},
		{Role: "user", Content: "write the report"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "report text" {
		t.Errorf("expected completion text, got %q", got)
	}
	if captured.System != "you are an analyst" {
		t.Errorf("system message not lifted into system field: %q", captured.System)
	}
	if len(captured.Messages) != 1 || captured.Messages[0].Role != "user" {
		t.Errorf("unexpected chat messages: %+v", captured.Messages)
	}
}

func TestComplete_EmptyCompletionFailsClosed(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"content": []}`)
	})

	_, err := c.Complete(context.Background(), []Message{{Role: "user", Content: "hi"}})
	if err == nil {
		t.Fatal("expected error for empty completion")
	}
}

func TestComplete_RetriesOn503(t *testing.T) {
	var calls int32
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			http.Error(w, "overloaded", http.StatusServiceUnavailable)
			return
		}
		fmt.Fprint(w, completionResponse("recovered"))
	})

	got, err := c.Complete(context.Background(), []Message{{Role: "user", Content: "hi"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "recovered" {
		t.Errorf("expected recovered completion, got %q", got)
	}
	if atomic.LoadInt32(&calls) != 2 {
		t.Errorf("expected 2 calls, got %d", calls)
	}
}

func TestComplete_400NotRetried(t *testing.T) {
	var calls int32
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.Error(w, "bad prompt", http.StatusBadRequest)
	})

	_, err := c.Complete(context.Background(), []Message{{Role: "user", Content: "hi"}})
	if err == nil {
		t.Fatal("expected error")
	}

	var statusErr *httpx.StatusError
	if !errors.As(err, &statusErr) || statusErr.Code != 400 {
		t.Errorf("expected StatusError 400, got %v", err)
	}
	if atomic.LoadInt32(&calls) != 1 {
		t.Errorf("400 must not be retried, got %d calls", calls)
	}
}

func TestComplete_MissingKeyFailsBeforeNetwork(t *testing.T) {
	c := NewReportClient(&config.AIConfig{}, fastPolicy())

	_, err := c.Complete(context.Background(), []Message{{Role: "user", Content: "hi"}})
	if err == nil {
		t.Fatal("expected configuration error")
	}
}

func TestEntityExtractor_DegradesWithoutClient(t *testing.T) {
	e := NewEntityExtractor(&config.AIConfig{}, cache.New(), time.Minute)

	got := e.Extract(context.Background(), "topic", "2025-01-01", "2025-01-02", "en",
		[]models.Article{{Title: "a"}})

	if got.Organizations == nil || got.People == nil || got.Locations == nil {
		t.Errorf("degraded result must have empty, non-nil lists: %+v", got)
	}
	if len(got.Organizations)+len(got.People)+len(got.Locations) != 0 {
		t.Errorf("expected empty lists, got %+v", got)
	}
}

func TestEntityExtractor_CachedResultSkipsCall(t *testing.T) {
	store := cache.New()
	e := NewEntityExtractor(&config.AIConfig{}, store, time.Minute)

	want := models.Entities{Organizations: []string{"ACME"}, People: []string{}, Locations: []string{}}
	store.Set(cache.AIKey("entities", "topic", "2025-01-01", "2025-01-02", "en"), want, time.Minute)

	got := e.Extract(context.Background(), "topic", "2025-01-01", "2025-01-02", "en", nil)
	if len(got.Organizations) != 1 || got.Organizations[0] != "ACME" {
		t.Errorf("expected cached entities, got %+v", got)
	}
}

func TestStripCodeFence(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`{"a":1}`, `{"a":1}`},
		{"```json\n{\"a\":1}\n```", `{"a":1}`},
		{"```\n{\"a\":1}\n```", `{"a":1}`},
	}
	for _, tt := range tests {
		if got := stripCodeFence(tt.in); got != tt.want {
			t.Errorf("stripCodeFence(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
