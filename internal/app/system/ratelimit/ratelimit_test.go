package ratelimit

import (
	"net/http/httptest"
	"testing"
	"time"
)

func TestLimiter_AllowUpToLimit(t *testing.T) {
	l := New(3, time.Minute)

	for i := 0; i < 3; i++ {
		if !l.Allow("key") {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}
	if l.Allow("key") {
		t.Error("request over the limit should be blocked")
	}
}

func TestLimiter_KeysAreIndependent(t *testing.T) {
	l := New(1, time.Minute)

	if !l.Allow("a") {
		t.Fatal("first request for key a should be allowed")
	}
	if !l.Allow("b") {
		t.Error("key b should have its own window")
	}
	if l.Allow("a") {
		t.Error("key a should be exhausted")
	}
}

func TestLimiter_Reset(t *testing.T) {
	l := New(1, time.Minute)

	l.Allow("key")
	if l.Allow("key") {
		t.Fatal("limit should be reached")
	}
	l.Reset("key")
	if !l.Allow("key") {
		t.Error("reset should clear the window")
	}
}

func TestLimiter_Remaining(t *testing.T) {
	l := New(5, time.Minute)

	if got := l.Remaining("key"); got != 5 {
		t.Errorf("fresh key remaining: got %d, want 5", got)
	}
	l.Allow("key")
	l.Allow("key")
	if got := l.Remaining("key"); got != 3 {
		t.Errorf("remaining after 2 requests: got %d, want 3", got)
	}
}

func TestLoginLimiter_EmailLimit(t *testing.T) {
	ll := NewLoginLimiter(100, time.Minute, 2, time.Minute)

	req := httptest.NewRequest("POST", "/login", nil)
	for i := 0; i < 2; i++ {
		allowed, _ := ll.Check(req, "user@example.com")
		if !allowed {
			t.Fatalf("attempt %d should be allowed", i+1)
		}
	}
	allowed, reason := ll.Check(req, "user@example.com")
	if allowed {
		t.Error("third attempt for the same email should be blocked")
	}
	if reason == "" {
		t.Error("blocked attempt should carry a reason")
	}

	ll.ResetEmail("user@example.com")
	if allowed, _ := ll.Check(req, "user@example.com"); !allowed {
		t.Error("attempt after ResetEmail should be allowed")
	}
}

func TestLoginLimiter_IPLimit(t *testing.T) {
	ll := NewLoginLimiter(2, time.Minute, 100, time.Minute)

	req := httptest.NewRequest("POST", "/login", nil)
	req.RemoteAddr = "203.0.113.7:5000"
	ll.Check(req, "a@example.com")
	ll.Check(req, "b@example.com")

	allowed, _ := ll.Check(req, "c@example.com")
	if allowed {
		t.Error("third attempt from the same IP should be blocked")
	}
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		headers    map[string]string
		want       string
	}{
		{
			name:       "remote addr with port",
			remoteAddr: "192.0.2.1:1234",
			want:       "192.0.2.1",
		},
		{
			name:       "x-forwarded-for wins",
			remoteAddr: "192.0.2.1:1234",
			headers:    map[string]string{"X-Forwarded-For": "203.0.113.9, 10.0.0.1"},
			want:       "203.0.113.9",
		},
		{
			name:       "x-real-ip fallback",
			remoteAddr: "192.0.2.1:1234",
			headers:    map[string]string{"X-Real-IP": "203.0.113.10"},
			want:       "203.0.113.10",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			req.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			if got := ClientIP(req); got != tt.want {
				t.Errorf("ClientIP: got %q, want %q", got, tt.want)
			}
		})
	}
}
