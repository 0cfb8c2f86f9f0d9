package models

// Group represents one shared-expense group. Every token is scoped to
// exactly one group, and everything else in the system hangs off it.
type Group struct {
	// ID is the unique identifier for the group (UUID format).
	ID string

	// Name is the display name of the group (e.g., "Ski Trip 2026").
	Name string

	// Currency is the ISO 4217 code all balances are reported in.
	Currency string

	// Members is the group's member list in creation order. Balance
	// reports preserve this order.
	Members []Member

	// CreatedAt is the Unix timestamp when the group was created.
	CreatedAt int64
}

// Member is one participant in a group. Members have no credentials of
// their own; they exist only inside their group.
type Member struct {
	// ID is the unique identifier for the member (UUID format).
	ID string

	// GroupID is the group this member belongs to.
	GroupID string

	// Name is the member's display name.
	Name string

	// PaypalEmail is an optional payment identifier shown when settling up.
	PaypalEmail string

	// IBAN is an optional payment identifier shown when settling up.
	IBAN string

	// CreatedAt is the Unix timestamp when the member was added.
	CreatedAt int64
}
