package tokens

import (
	"testing"
	"time"

	"github.com/example/homeflix/internal/platform/auth"
)

func TestNewSessionToken_RoundTrip(t *testing.T) {
	svc := Service{Secret: []byte("test-secret"), SessionTTL: time.Hour}
	// Issue relative to the wall clock: Parse validates expiry against
	// time.Now, so a fixed past date would expire the token.
	now := time.Now().UTC().Truncate(time.Second)

	signed, exp, err := svc.NewSessionToken("sess-abc", "admin", now)
	if err != nil {
		t.Fatalf("NewSessionToken: %v", err)
	}
	if got, want := exp, now.Add(time.Hour); !got.Equal(want) {
		t.Fatalf("exp = %v, want %v", got, want)
	}

	claims, err := auth.JWTVerifier{Secret: []byte("test-secret")}.Parse(signed)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if claims.Subject != "sess-abc" {
		t.Fatalf("subject = %q", claims.Subject)
	}
	if claims.Role != "admin" {
		t.Fatalf("role = %q", claims.Role)
	}
}

func TestNewSessionToken_MissingSecret(t *testing.T) {
	if _, _, err := (Service{SessionTTL: time.Hour}).NewSessionToken("sess-x", "viewer", time.Time{}); err == nil {
		t.Fatal("expected error for empty secret")
	}
}

func TestNewSessionToken_WrongSecretRejected(t *testing.T) {
	svc := Service{Secret: []byte("a"), SessionTTL: time.Hour}
	signed, _, err := svc.NewSessionToken("sess-x", "viewer", time.Time{})
	if err != nil {
		t.Fatalf("NewSessionToken: %v", err)
	}
	if _, err := (auth.JWTVerifier{Secret: []byte("b")}).Parse(signed); err == nil {
		t.Fatal("expected parse failure with wrong secret")
	}
}
