package auth

import (
	"errors"
	"testing"

	"github.com/divvyhq/divvy/internal/caps"
)

func TestAuthenticate(t *testing.T) {
	codec := NewCodec(testSecret)
	authority := NewAuthority(codec)

	capSet := caps.Set{EditExpenses: boolPtr(false)}
	token, err := codec.Issue("group-123", &capSet)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	tests := []struct {
		name    string
		header  string
		wantErr error
	}{
		{name: "valid bearer token", header: "Bearer " + token},
		{name: "missing header", header: "", wantErr: ErrMissingToken},
		{name: "wrong scheme", header: "Basic " + token, wantErr: ErrInvalidToken},
		{name: "no scheme", header: token, wantErr: ErrInvalidToken},
		{name: "garbage token", header: "Bearer garbage", wantErr: ErrInvalidToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			principal, err := authority.Authenticate(tt.header)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("got error %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Authenticate failed: %v", err)
			}
			if principal.GroupID != "group-123" {
				t.Errorf("group id: got %q, want %q", principal.GroupID, "group-123")
			}
			if principal.Can(CapEditExpenses) {
				t.Error("edit_expenses denial not carried into principal")
			}
			if !principal.Can(CapAddExpenses) {
				t.Error("omitted capability should be granted")
			}
		})
	}
}

func TestRequire(t *testing.T) {
	p := &Principal{
		GroupID: "group-123",
		Caps:    caps.Set{ManageMembers: boolPtr(false)},
	}

	if err := p.Require(CapManageMembers); !errors.Is(err, ErrForbidden) {
		t.Errorf("denied capability: got %v, want ErrForbidden", err)
	}
	if err := p.Require(CapAddExpenses); err != nil {
		t.Errorf("granted capability: got %v, want nil", err)
	}
}

func TestResolveCapabilitiesIsTotal(t *testing.T) {
	if !ResolveCapabilities(nil).HasAll() {
		t.Error("nil claims should resolve to full access")
	}
	if !ResolveCapabilities(&Claims{GroupID: "g"}).HasAll() {
		t.Error("claims without capabilities should resolve to full access")
	}

	denied := caps.Set{DeleteGroup: boolPtr(false)}
	resolved := ResolveCapabilities(&Claims{GroupID: "g", Capabilities: &denied})
	if resolved.HasDeleteGroup() {
		t.Error("explicit denial lost during resolution")
	}
}
