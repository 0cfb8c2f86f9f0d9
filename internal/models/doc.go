// Package models defines the core domain models for Divvy.
//
// Access is not organized around user accounts: a Group owns everything,
// and bearer tokens scoped to one group are the only credential. Members
// are plain participants created through the group, not logins.
//
// # Models
//
//   - Group: a shared-expense group with a currency and an ordered member list
//   - Member: one participant, with optional payment identifiers
//   - Transaction: one ledger entry (expense, transfer or income)
//
// # Design principles
//
//  1. Relationships use ID strings, never pointers, to avoid circular
//     references.
//  2. Monetary amounts are arbitrary-precision decimals; floats never touch
//     money.
//  3. The transaction kind is a closed set. Kind-specific fields that do
//     not apply (a transfer's split, an expense's transfer target) are
//     cleared by Normalize rather than trusted from input.
package models
