package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRateLimitByIP_AllowsWithinBudget(t *testing.T) {
	middleware := RateLimitByIP(RateLimitConfig{RequestsPerMinute: 5})

	handler := middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 5; i++ {
		req := httptest.NewRequest("POST", "/login/", nil)
		req.RemoteAddr = "203.0.113.7:51234"
		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, req)

		if recorder.Code != http.StatusOK {
			t.Errorf("request %d failed with status %d, expected 200", i+1, recorder.Code)
		}
	}
}

func TestRateLimitByIP_RejectsOverBudget(t *testing.T) {
	middleware := RateLimitByIP(RateLimitConfig{RequestsPerMinute: 2})

	handler := middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest("POST", "/login/", nil)
		req.RemoteAddr = "203.0.113.7:51234"
		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, req)
		if recorder.Code != http.StatusOK {
			t.Fatalf("request %d failed with status %d", i+1, recorder.Code)
		}
	}

	req := httptest.NewRequest("POST", "/login/", nil)
	req.RemoteAddr = "203.0.113.7:51234"
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, req)

	if recorder.Code != http.StatusTooManyRequests {
		t.Errorf("expected 429 after budget exhausted, got %d", recorder.Code)
	}
	if ct := recorder.Header().Get("Content-Type"); ct != "application/json;charset=utf-8" {
		t.Errorf("expected JSON content type on limit response, got %s", ct)
	}
}

func TestRateLimitByIP_IsolatesClients(t *testing.T) {
	middleware := RateLimitByIP(RateLimitConfig{RequestsPerMinute: 1})

	handler := middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("POST", "/login/", nil)
	req.RemoteAddr = "203.0.113.7:51234"
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, req)
	if recorder.Code != http.StatusOK {
		t.Fatalf("first client request failed: %d", recorder.Code)
	}

	// A different source address gets its own bucket.
	req = httptest.NewRequest("POST", "/login/", nil)
	req.RemoteAddr = "203.0.113.8:51234"
	recorder = httptest.NewRecorder()
	handler.ServeHTTP(recorder, req)
	if recorder.Code != http.StatusOK {
		t.Errorf("second client should be unaffected, got %d", recorder.Code)
	}
}
