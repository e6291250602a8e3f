package upstream

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/vedsathwik275/envision-sub000/internal/models"
)

func TestClient_PostJSON_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" {
			t.Errorf("Expected POST, got %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Expected JSON content type, got %s", ct)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"echo":"hello"}`))
	}))
	defer server.Close()

	client := NewClient(5 * time.Second)

	var out struct {
		Echo string `json:"echo"`
	}
	err := client.PostJSON(context.Background(), "test", server.URL, map[string]string{"msg": "hello"}, &out)
	if err != nil {
		t.Fatalf("Expected success, got %v", err)
	}
	if out.Echo != "hello" {
		t.Errorf("Expected decoded response, got %q", out.Echo)
	}
}

func TestClient_PostJSON_Non200WrapsErrUpstream(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "engine exploded", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(5 * time.Second)

	err := client.PostJSON(context.Background(), "test", server.URL, map[string]string{}, nil)
	if err == nil {
		t.Fatal("Expected error for 500 response")
	}
	if !errors.Is(err, models.ErrUpstream) {
		t.Errorf("Expected ErrUpstream, got %v", err)
	}
	if !strings.Contains(err.Error(), "500") {
		t.Errorf("Expected status code in error, got %v", err)
	}
}

func TestClient_PostJSON_ConnectionFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // nothing listening anymore

	client := NewClient(2 * time.Second)

	err := client.PostJSON(context.Background(), "test", server.URL, map[string]string{}, nil)
	if !errors.Is(err, models.ErrUpstream) {
		t.Errorf("Expected ErrUpstream for refused connection, got %v", err)
	}
}

func TestClient_PostJSON_MalformedResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{not json`))
	}))
	defer server.Close()

	client := NewClient(5 * time.Second)

	var out map[string]interface{}
	err := client.PostJSON(context.Background(), "test", server.URL, map[string]string{}, &out)
	if !errors.Is(err, models.ErrUpstream) {
		t.Errorf("Expected ErrUpstream for bad JSON, got %v", err)
	}
}

func TestClient_CheckHealth(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/health" {
			t.Errorf("Expected /health path, got %s", r.URL.Path)
		}
		w.Write([]byte(`{"status":"ok"}`))
	}))
	defer server.Close()

	client := NewClient(5 * time.Second)

	latency, err := client.CheckHealth(context.Background(), "test", server.URL+"/health")
	if err != nil {
		t.Fatalf("Expected healthy, got %v", err)
	}
	if latency <= 0 {
		t.Errorf("Expected positive latency, got %v", latency)
	}
}

func TestClient_CheckHealth_Unhealthy(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewClient(5 * time.Second)

	_, err := client.CheckHealth(context.Background(), "test", server.URL)
	if !errors.Is(err, models.ErrUpstream) {
		t.Errorf("Expected ErrUpstream for 503, got %v", err)
	}
}

func TestClient_SetLimit_ZeroFallsBackToDefaults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := NewClient(5 * time.Second)
	client.SetLimit("test", 0, 0)

	// A zero-rate limiter would block forever; the default must allow
	// an immediate call through.
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.PostJSON(ctx, "test", server.URL, map[string]string{}, nil); err != nil {
		t.Fatalf("Expected default limits to admit the call, got %v", err)
	}
}
