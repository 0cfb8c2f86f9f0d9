package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/divvyhq/divvy/internal/caps"
)

const testSecret = "test-secret-key-for-unit-tests"

func TestIssueVerifyRoundTrip(t *testing.T) {
	codec := NewCodec(testSecret)

	capSet := caps.Set{ManageMembers: boolPtr(false)}
	token, err := codec.Issue("group-123", &capSet)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	claims, err := codec.Verify(token)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}

	if claims.GroupID != "group-123" {
		t.Errorf("group id: got %q, want %q", claims.GroupID, "group-123")
	}
	if claims.Capabilities == nil {
		t.Fatal("expected capability set to survive the round trip")
	}
	if claims.Capabilities.HasManageMembers() {
		t.Error("manage_members denial lost in round trip")
	}
	if !claims.Capabilities.HasAddExpenses() {
		t.Error("omitted capability should resolve to granted")
	}
}

func TestIssueWithoutCapabilities(t *testing.T) {
	codec := NewCodec(testSecret)

	token, err := codec.Issue("group-123", nil)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	claims, err := codec.Verify(token)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if claims.Capabilities != nil {
		t.Error("expected no capability field on a token issued without one")
	}
	if !ResolveCapabilities(claims).HasAll() {
		t.Error("claims without capabilities must resolve to full access")
	}
}

func TestVerifyRejectsTampering(t *testing.T) {
	codec := NewCodec(testSecret)
	other := NewCodec("a-completely-different-secret")

	token, err := other.Issue("group-123", nil)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	if _, err := codec.Verify(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("wrong-key token: got %v, want ErrInvalidToken", err)
	}
	if _, err := codec.Verify("not.a.jwt"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("malformed token: got %v, want ErrInvalidToken", err)
	}
}

func TestVerifyRejectsExpired(t *testing.T) {
	codec := NewCodec(testSecret)

	// Hand-sign a token that expired an hour ago.
	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"gid": "group-123",
		"exp": time.Now().Add(-time.Hour).Unix(),
	})
	token, err := expired.SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("SignedString failed: %v", err)
	}

	if _, err := codec.Verify(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expired token: got %v, want ErrInvalidToken", err)
	}
}

func TestVerifyRejectsMissingGroup(t *testing.T) {
	codec := NewCodec(testSecret)

	unscoped := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	token, err := unscoped.SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("SignedString failed: %v", err)
	}

	if _, err := codec.Verify(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("token without group id: got %v, want ErrInvalidToken", err)
	}
}

// TestVerifyLegacyClaimNames pins the previous claim schema: long-form
// field names, verbose capability names, no compact fields at all. Tokens
// minted under it must keep decoding.
func TestVerifyLegacyClaimNames(t *testing.T) {
	codec := NewCodec(testSecret)

	legacy := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"group_id": "group-legacy",
		"capabilities": map[string]bool{
			"manage_members": false,
			"add_expenses":   true,
		},
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	token, err := legacy.SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("SignedString failed: %v", err)
	}

	claims, err := codec.Verify(token)
	if err != nil {
		t.Fatalf("Verify failed on legacy token: %v", err)
	}
	if claims.GroupID != "group-legacy" {
		t.Errorf("group id: got %q, want %q", claims.GroupID, "group-legacy")
	}

	resolved := ResolveCapabilities(claims)
	if resolved.HasManageMembers() {
		t.Error("legacy manage_members denial not decoded")
	}
	if !resolved.HasAddExpenses() || !resolved.HasDeleteGroup() {
		t.Error("legacy grants and omissions should both resolve to granted")
	}
}

// TestVerifyLegacyWithoutCapabilities pins the oldest schema of all: a bare
// group claim from before granular permissions existed.
func TestVerifyLegacyWithoutCapabilities(t *testing.T) {
	codec := NewCodec(testSecret)

	legacy := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"group_id": "group-legacy",
		"exp":      time.Now().Add(time.Hour).Unix(),
	})
	token, err := legacy.SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("SignedString failed: %v", err)
	}

	claims, err := codec.Verify(token)
	if err != nil {
		t.Fatalf("Verify failed on legacy token: %v", err)
	}
	if !ResolveCapabilities(claims).HasAll() {
		t.Error("pre-capability token must resolve to full access")
	}
}

func boolPtr(v bool) *bool {
	return &v
}
