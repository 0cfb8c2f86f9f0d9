// Package caps models the permission set carried inside group share tokens.
//
// Each capability is a nullable boolean where nil means granted. Tokens
// minted before granular permissions existed carry no capability set at all,
// and older sets may omit individual fields; both must keep full access.
// All nil-defaulting goes through a single resolver so call sites cannot
// drift apart on what a missing field means.
package caps

import "encoding/json"

// Set describes what the bearer of a token may do within its group.
// The zero value grants everything.
//
// Sets are immutable values: CapBy and UnionWith return new sets and never
// modify their operands. The wire form uses the compact field names below;
// decoding also accepts the long-form names used by older tokens (see
// UnmarshalJSON).
type Set struct {
	// DeleteGroup allows deleting the group and everything in it.
	DeleteGroup *bool `json:"dg,omitempty"`

	// ManageMembers allows adding and removing group members.
	ManageMembers *bool `json:"mm,omitempty"`

	// UpdatePayment allows editing a member's payment identifiers.
	UpdatePayment *bool `json:"up,omitempty"`

	// AddExpenses allows recording new transactions.
	AddExpenses *bool `json:"ae,omitempty"`

	// EditExpenses allows updating and deleting existing transactions.
	EditExpenses *bool `json:"ee,omitempty"`
}

// All returns a set with every capability granted, used for the token minted
// to a group's creator.
func All() Set {
	return Set{}
}

// granted is the only place where a missing capability field resolves.
// nil means granted so legacy tokens keep full access.
func granted(f *bool) bool {
	return f == nil || *f
}

func (s Set) HasDeleteGroup() bool   { return granted(s.DeleteGroup) }
func (s Set) HasManageMembers() bool { return granted(s.ManageMembers) }
func (s Set) HasUpdatePayment() bool { return granted(s.UpdatePayment) }
func (s Set) HasAddExpenses() bool   { return granted(s.AddExpenses) }
func (s Set) HasEditExpenses() bool  { return granted(s.EditExpenses) }

// HasAll reports whether every capability is granted.
func (s Set) HasAll() bool {
	return s.HasDeleteGroup() &&
		s.HasManageMembers() &&
		s.HasUpdatePayment() &&
		s.HasAddExpenses() &&
		s.HasEditExpenses()
}

// CapBy attenuates s by caller: each field of the result is granted only if
// both operands grant it. A derived token can therefore never exceed its
// issuer's rights, no matter how many times derivation is chained.
func (s Set) CapBy(caller Set) Set {
	return Set{
		DeleteGroup:   andField(s.DeleteGroup, caller.DeleteGroup),
		ManageMembers: andField(s.ManageMembers, caller.ManageMembers),
		UpdatePayment: andField(s.UpdatePayment, caller.UpdatePayment),
		AddExpenses:   andField(s.AddExpenses, caller.AddExpenses),
		EditExpenses:  andField(s.EditExpenses, caller.EditExpenses),
	}
}

// UnionWith combines s with other: each field of the result is granted if
// either operand grants it. Used when a user imports an additional share
// link for the same group.
func (s Set) UnionWith(other Set) Set {
	return Set{
		DeleteGroup:   orField(s.DeleteGroup, other.DeleteGroup),
		ManageMembers: orField(s.ManageMembers, other.ManageMembers),
		UpdatePayment: orField(s.UpdatePayment, other.UpdatePayment),
		AddExpenses:   orField(s.AddExpenses, other.AddExpenses),
		EditExpenses:  orField(s.EditExpenses, other.EditExpenses),
	}
}

// andField and orField return canonical fields: granted is encoded as nil so
// the wire form stays compact and comparable.

func andField(a, b *bool) *bool {
	if granted(a) && granted(b) {
		return nil
	}
	return boolPtr(false)
}

func orField(a, b *bool) *bool {
	if granted(a) || granted(b) {
		return nil
	}
	return boolPtr(false)
}

func boolPtr(v bool) *bool {
	return &v
}

// UnmarshalJSON decodes a capability set from either the compact field names
// or the long-form names older tokens were minted with. A field present in
// both forms resolves to the compact one. Encoding always emits the compact
// form via the struct tags on Set.
func (s *Set) UnmarshalJSON(data []byte) error {
	var raw struct {
		DeleteGroup   *bool `json:"dg"`
		ManageMembers *bool `json:"mm"`
		UpdatePayment *bool `json:"up"`
		AddExpenses   *bool `json:"ae"`
		EditExpenses  *bool `json:"ee"`

		LegacyDeleteGroup   *bool `json:"delete_group"`
		LegacyManageMembers *bool `json:"manage_members"`
		LegacyUpdatePayment *bool `json:"update_payment"`
		LegacyAddExpenses   *bool `json:"add_expenses"`
		LegacyEditExpenses  *bool `json:"edit_expenses"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	s.DeleteGroup = pick(raw.DeleteGroup, raw.LegacyDeleteGroup)
	s.ManageMembers = pick(raw.ManageMembers, raw.LegacyManageMembers)
	s.UpdatePayment = pick(raw.UpdatePayment, raw.LegacyUpdatePayment)
	s.AddExpenses = pick(raw.AddExpenses, raw.LegacyAddExpenses)
	s.EditExpenses = pick(raw.EditExpenses, raw.LegacyEditExpenses)
	return nil
}

func pick(compact, legacy *bool) *bool {
	if compact != nil {
		return compact
	}
	return legacy
}
