package remote

import (
	"testing"
	"time"
)

func TestValidateToken(t *testing.T) {
	s := NewServer(nil)

	if s.validateToken("anything") {
		t.Error("token should not validate before one is generated")
	}

	token, err := s.GenerateToken(time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	if len(token) != 64 {
		t.Errorf("token length = %d, want 64 hex chars", len(token))
	}

	if !s.validateToken(token) {
		t.Error("freshly generated token should validate")
	}
	if s.validateToken("wrong-token") {
		t.Error("wrong token should not validate")
	}
	if s.validateToken("") {
		t.Error("empty token should not validate")
	}
}

func TestExpiredTokenRejected(t *testing.T) {
	s := NewServer(nil)

	token, err := s.GenerateToken(-time.Minute)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	if s.validateToken(token) {
		t.Error("expired token should not validate")
	}
}

func TestApprovedClientToken(t *testing.T) {
	s := NewServer(nil)

	client, err := s.AddApprovedClient("Phone")
	if err != nil {
		t.Fatalf("AddApprovedClient: %v", err)
	}

	if !s.validateToken(client.Token) {
		t.Error("approved device token should validate without a temporary token")
	}
	if !s.IsApprovedToken(client.Token) {
		t.Error("IsApprovedToken should report true for approved token")
	}

	s.RemoveApprovedClient(client.Token)
	if s.validateToken(client.Token) {
		t.Error("revoked token should not validate")
	}
}

func TestApprovedClientsRoundTrip(t *testing.T) {
	s := NewServer(nil)
	a, _ := s.AddApprovedClient("Tablet")
	b, _ := s.AddApprovedClient("Laptop")

	loaded := NewServer(nil)
	loaded.SetApprovedClients(s.GetApprovedClients())

	for _, tok := range []string{a.Token, b.Token} {
		if !loaded.IsApprovedToken(tok) {
			t.Errorf("token for %q lost across save/load", tok[:8])
		}
	}
}

func TestRateLimit(t *testing.T) {
	s := NewServer(nil)
	ip := "203.0.113.7"

	for i := 0; i < maxAuthAttempts; i++ {
		if !s.checkRateLimit(ip) {
			t.Fatalf("locked out early at attempt %d", i)
		}
		s.recordFailedAuth(ip)
	}

	if s.checkRateLimit(ip) {
		t.Error("IP should be locked out after max failed attempts")
	}

	s.resetAuthAttempts(ip)
	if !s.checkRateLimit(ip) {
		t.Error("reset should clear the lockout")
	}
}
