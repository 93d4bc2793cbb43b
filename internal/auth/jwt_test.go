package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"fintrack/internal/core"

	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestIssueAndParse(t *testing.T) {
	m := NewTokenManager(testSecret, time.Hour)
	tok, err := m.Issue("alice")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	sub, err := m.Parse(tok)
	if err != nil || sub != "alice" {
		t.Fatalf("expected alice, got %q (%v)", sub, err)
	}

	if _, err := m.Issue("  "); err == nil {
		t.Fatal("expected error for blank user id")
	}
}

func TestParseRejects(t *testing.T) {
	m := NewTokenManager(testSecret, time.Hour)
	good, _ := m.Issue("alice")

	expired := NewTokenManager(testSecret, time.Hour)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	old, _ := expired.Issue("alice")

	other, _ := NewTokenManager(strings.Repeat("x", 32), time.Hour).Issue("alice")

	none, _ := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{Subject: "alice"}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)

	noExp, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: "alice"}).
		SignedString([]byte(testSecret))

	cases := map[string]string{
		"expired":      old,
		"wrong secret": other,
		"alg none":     none,
		"no expiry":    noExp,
		"garbage":      "not.a.token",
		"tampered":     good + "x",
	}
	for name, tok := range cases {
		if _, err := m.Parse(tok); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("%s: expected ErrInvalidToken, got %v", name, err)
		}
	}
}

func TestResolve(t *testing.T) {
	m := NewTokenManager(testSecret, time.Hour)
	tok, _ := m.Issue("bob")

	cases := []struct {
		header string
		want   string
		ok     bool
	}{
		{"Bearer " + tok, "bob", true},
		{"bearer " + tok, "bob", true},
		{"", "", false},
		{"Basic abc", "", false},
		{"Bearer ", "", false},
		{"Bearer nope", "", false},
	}
	for i, tc := range cases {
		r := httptest.NewRequest(http.MethodGet, "/api/stats", nil)
		if tc.header != "" {
			r.Header.Set("Authorization", tc.header)
		}
		got, err := m.Resolve(r)
		if tc.ok {
			if err != nil || got != tc.want {
				t.Fatalf("case %d: expected %q, got %q (%v)", i, tc.want, got, err)
			}
			continue
		}
		if !errors.Is(err, core.ErrUnauthorized) {
			t.Fatalf("case %d: expected ErrUnauthorized, got %v", i, err)
		}
	}
}

func TestUserIDContext(t *testing.T) {
	if UserIDFromContext(context.Background()) != "" {
		t.Fatal("expected empty user id")
	}
	ctx := WithUserID(context.Background(), "carol")
	if UserIDFromContext(ctx) != "carol" {
		t.Fatal("expected carol")
	}
}
