package auth

import (
	"testing"
	"time"

	"chatrelay/internal/config"
	"chatrelay/internal/models"

	"github.com/golang-jwt/jwt/v5"
)

func newTestService(expiresIn time.Duration) *Service {
	cfg := &config.Config{
		JWT: config.JWTConfig{
			Secret:    []byte("test-secret-key"),
			ExpiresIn: expiresIn,
		},
	}
	return NewService(nil, cfg)
}

func TestVerifyToken_RoundTrip(t *testing.T) {
	s := newTestService(time.Hour)
	user := &models.User{ID: 42, Username: "alice", Email: "alice@example.com"}

	token, err := s.generateToken(user)
	if err != nil {
		t.Fatalf("generateToken() error = %v", err)
	}
	if token == "" {
		t.Fatal("generateToken() returned empty token")
	}

	identity, err := s.VerifyToken(token)
	if err != nil {
		t.Fatalf("VerifyToken() error = %v", err)
	}
	if identity.UserID != 42 {
		t.Errorf("identity.UserID = %v, want %v", identity.UserID, 42)
	}
	if identity.Username != "alice" {
		t.Errorf("identity.Username = %v, want %v", identity.Username, "alice")
	}
}

func TestVerifyToken_RejectsExpiredToken(t *testing.T) {
	s := newTestService(-time.Minute)

	token, err := s.generateToken(&models.User{ID: 1, Username: "alice"})
	if err != nil {
		t.Fatalf("generateToken() error = %v", err)
	}

	if _, err := s.VerifyToken(token); err == nil {
		t.Error("VerifyToken() should reject an expired token")
	}
}

func TestVerifyToken_RejectsWrongSecret(t *testing.T) {
	issuer := newTestService(time.Hour)
	token, err := issuer.generateToken(&models.User{ID: 1, Username: "alice"})
	if err != nil {
		t.Fatalf("generateToken() error = %v", err)
	}

	verifier := NewService(nil, &config.Config{
		JWT: config.JWTConfig{Secret: []byte("other-secret"), ExpiresIn: time.Hour},
	})
	if _, err := verifier.VerifyToken(token); err == nil {
		t.Error("VerifyToken() should reject a token signed with another secret")
	}
}

func TestVerifyToken_RejectsUnsignedToken(t *testing.T) {
	s := newTestService(time.Hour)

	claims := Claims{
		UserID:   1,
		Username: "alice",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, claims)
	token, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("SignedString() error = %v", err)
	}

	if _, err := s.VerifyToken(token); err == nil {
		t.Error("VerifyToken() should reject alg=none tokens")
	}
}

func TestVerifyToken_RejectsGarbage(t *testing.T) {
	s := newTestService(time.Hour)

	for _, token := range []string{"", "not-a-token", "a.b.c"} {
		if _, err := s.VerifyToken(token); err == nil {
			t.Errorf("VerifyToken(%q) should fail", token)
		}
	}
}

func TestValidateRegistrationRequest(t *testing.T) {
	s := newTestService(time.Hour)

	tests := []struct {
		name    string
		req     models.RegisterRequest
		wantErr bool
	}{
		{"valid", models.RegisterRequest{Username: "alice", Email: "alice@example.com", Password: "longenough"}, false},
		{"missing fields", models.RegisterRequest{Username: "alice"}, true},
		{"bad email", models.RegisterRequest{Username: "alice", Email: "nope", Password: "longenough"}, true},
		{"short password", models.RegisterRequest{Username: "alice", Email: "alice@example.com", Password: "short"}, true},
		{"short username", models.RegisterRequest{Username: "al", Email: "alice@example.com", Password: "longenough"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := s.validateRegistrationRequest(&tt.req)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateRegistrationRequest() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
