package caps

import (
	"encoding/json"
	"strings"
	"testing"
)

func denied() *bool {
	v := false
	return &v
}

func allowed() *bool {
	v := true
	return &v
}

// every reports each capability of a set in a fixed order.
func every(s Set) [5]bool {
	return [5]bool{
		s.HasDeleteGroup(),
		s.HasManageMembers(),
		s.HasUpdatePayment(),
		s.HasAddExpenses(),
		s.HasEditExpenses(),
	}
}

func TestZeroValueGrantsEverything(t *testing.T) {
	var s Set
	if !s.HasAll() {
		t.Error("zero-value Set should grant all capabilities")
	}
	if !All().HasAll() {
		t.Error("All() should grant all capabilities")
	}
}

func TestCapByNeverEscalates(t *testing.T) {
	sets := []Set{
		All(),
		{DeleteGroup: denied()},
		{ManageMembers: denied(), AddExpenses: allowed()},
		{DeleteGroup: denied(), ManageMembers: denied(), UpdatePayment: denied(), AddExpenses: denied(), EditExpenses: denied()},
		{EditExpenses: denied(), UpdatePayment: allowed()},
	}

	for _, a := range sets {
		for _, b := range sets {
			got := every(a.CapBy(b))
			ea, eb := every(a), every(b)
			for i := range got {
				if got[i] && !(ea[i] && eb[i]) {
					t.Errorf("CapBy escalated field %d: a=%v b=%v result=%v", i, ea, eb, got)
				}
				if !got[i] && ea[i] && eb[i] {
					t.Errorf("CapBy dropped field %d granted by both: a=%v b=%v", i, ea, eb)
				}
			}

			// Commutativity.
			if every(a.CapBy(b)) != every(b.CapBy(a)) {
				t.Errorf("CapBy not commutative for a=%v b=%v", ea, eb)
			}
		}
	}
}

func TestUnionNeverReduces(t *testing.T) {
	a := Set{AddExpenses: allowed(), EditExpenses: denied(), DeleteGroup: denied()}
	b := Set{AddExpenses: denied(), EditExpenses: allowed(), DeleteGroup: denied()}

	merged := a.UnionWith(b)
	ea, eb, em := every(a), every(b), every(merged)
	for i := range em {
		if (ea[i] || eb[i]) && !em[i] {
			t.Errorf("UnionWith reduced field %d: a=%v b=%v merged=%v", i, ea, eb, em)
		}
	}
	if every(b.UnionWith(a)) != em {
		t.Error("UnionWith not commutative")
	}

	// Merging granular add/edit tokens yields both rights.
	if !merged.HasAddExpenses() || !merged.HasEditExpenses() {
		t.Errorf("expected add and edit granted after merge, got %v", em)
	}
	// A field both sides deny stays denied.
	if merged.HasDeleteGroup() {
		t.Error("delete_group denied by both operands should stay denied")
	}
}

func TestIdentities(t *testing.T) {
	a := Set{ManageMembers: denied(), AddExpenses: allowed()}

	if every(a.CapBy(All())) != every(a) {
		t.Error("CapBy(a, All()) should equal a")
	}
	if !a.UnionWith(All()).HasAll() {
		t.Error("UnionWith(a, All()) should grant everything")
	}
}

func TestShareRequestAttenuation(t *testing.T) {
	// A caller without manage_members requests a share link with it: the
	// issued set must not carry the right.
	caller := Set{ManageMembers: denied()}
	requested := Set{ManageMembers: allowed()}

	issued := requested.CapBy(caller)
	if issued.HasManageMembers() {
		t.Error("attenuated set escalated manage_members beyond caller")
	}
}

func TestEncodeCompact(t *testing.T) {
	s := Set{ManageMembers: denied(), AddExpenses: allowed()}
	data, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	out := string(data)
	if !strings.Contains(out, `"mm":false`) {
		t.Errorf("expected compact mm field, got %s", out)
	}
	if strings.Contains(out, "manage_members") {
		t.Errorf("encoder must not emit legacy names, got %s", out)
	}
	// Granted-by-omission fields stay off the wire.
	if strings.Contains(out, `"dg"`) || strings.Contains(out, `"ee"`) {
		t.Errorf("nil fields should be omitted, got %s", out)
	}
}

func TestDecodeBothSchemes(t *testing.T) {
	tests := []struct {
		name string
		blob string
		want [5]bool
	}{
		{
			name: "compact",
			blob: `{"dg":false,"ae":true}`,
			want: [5]bool{false, true, true, true, true},
		},
		{
			name: "legacy verbose",
			blob: `{"delete_group":false,"manage_members":false,"edit_expenses":true}`,
			want: [5]bool{false, false, true, true, true},
		},
		{
			name: "mixed prefers compact",
			blob: `{"mm":true,"manage_members":false}`,
			want: [5]bool{true, true, true, true, true},
		},
		{
			name: "empty object grants everything",
			blob: `{}`,
			want: [5]bool{true, true, true, true, true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var s Set
			if err := json.Unmarshal([]byte(tt.blob), &s); err != nil {
				t.Fatalf("Unmarshal failed: %v", err)
			}
			if got := every(s); got != tt.want {
				t.Errorf("decoded %s: got %v, want %v", tt.blob, got, tt.want)
			}
		})
	}
}

func TestRoundTrip(t *testing.T) {
	orig := Set{DeleteGroup: denied(), UpdatePayment: denied()}
	data, err := json.Marshal(orig)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	var back Set
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if every(back) != every(orig) {
		t.Errorf("round trip changed resolution: got %v, want %v", every(back), every(orig))
	}
}
