package service

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/divvyhq/divvy/internal/auth"
	"github.com/divvyhq/divvy/internal/caps"
	"github.com/divvyhq/divvy/internal/ledger"
	"github.com/divvyhq/divvy/internal/middleware"
	"github.com/divvyhq/divvy/internal/models"
	"github.com/divvyhq/divvy/internal/storage"
)

// defaultCurrency is used when group creation does not name one.
const defaultCurrency = "EUR"

// GroupService handles group lifecycle, membership, token sharing and
// balances.
type GroupService struct {
	store storage.Store
	codec *auth.Codec
}

// NewGroupService creates a GroupService with the given storage backend
// and token codec.
func NewGroupService(store storage.Store, codec *auth.Codec) *GroupService {
	return &GroupService{store: store, codec: codec}
}

type memberPayload struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	PaypalEmail string `json:"paypal_email,omitempty"`
	IBAN        string `json:"iban,omitempty"`
}

type groupPayload struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Currency  string          `json:"currency"`
	Members   []memberPayload `json:"members"`
	CreatedAt int64           `json:"created_at"`
}

func toGroupPayload(group *models.Group) groupPayload {
	members := make([]memberPayload, len(group.Members))
	for i, m := range group.Members {
		members[i] = memberPayload{ID: m.ID, Name: m.Name, PaypalEmail: m.PaypalEmail, IBAN: m.IBAN}
	}
	return groupPayload{
		ID:        group.ID,
		Name:      group.Name,
		Currency:  group.Currency,
		Members:   members,
		CreatedAt: group.CreatedAt,
	}
}

// CreateGroup creates a group and mints the creator's token with every
// capability granted. The only unauthenticated mutation in the API.
func (s *GroupService) CreateGroup(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name        string   `json:"name"`
		Currency    string   `json:"currency"`
		MemberNames []string `json:"member_names"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondValidation(w, "invalid request body")
		return
	}
	if req.Name == "" {
		respondValidation(w, "group name required")
		return
	}
	if req.Currency == "" {
		req.Currency = defaultCurrency
	}

	group := &models.Group{Name: req.Name, Currency: req.Currency}
	for _, name := range req.MemberNames {
		if name == "" {
			respondValidation(w, "member names must not be empty")
			return
		}
		group.Members = append(group.Members, models.Member{Name: name})
	}

	if err := s.store.CreateGroup(r.Context(), group); err != nil {
		respondError(w, err)
		return
	}

	creatorCaps := caps.All()
	token, err := s.codec.Issue(group.ID, &creatorCaps)
	if err != nil {
		respondError(w, err)
		return
	}

	slog.Info("Group created", "group_id", group.ID, "members", len(group.Members))

	respondJSON(w, http.StatusCreated, map[string]any{
		"group": toGroupPayload(group),
		"token": token,
	})
}

// GetCurrentGroup returns the token's group with its ordered members.
func (s *GroupService) GetCurrentGroup(w http.ResponseWriter, r *http.Request) {
	principal := middleware.GetPrincipal(r.Context())

	group, err := s.store.GetGroup(r.Context(), principal.GroupID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, toGroupPayload(group))
}

// DeleteGroup removes the token's group and everything it owns.
func (s *GroupService) DeleteGroup(w http.ResponseWriter, r *http.Request) {
	principal := middleware.GetPrincipal(r.Context())
	if err := principal.Require(auth.CapDeleteGroup); err != nil {
		respondError(w, err)
		return
	}

	if err := s.store.DeleteGroup(r.Context(), principal.GroupID); err != nil {
		respondError(w, err)
		return
	}

	slog.Info("Group deleted", "group_id", principal.GroupID)
	respondJSON(w, http.StatusNoContent, nil)
}

// AddMember appends a member to the group.
func (s *GroupService) AddMember(w http.ResponseWriter, r *http.Request) {
	principal := middleware.GetPrincipal(r.Context())
	if err := principal.Require(auth.CapManageMembers); err != nil {
		respondError(w, err)
		return
	}

	var req struct {
		Name string `json:"name"`
	}
	if err := decodeJSON(r, &req); err != nil || req.Name == "" {
		respondValidation(w, "member name required")
		return
	}

	member := &models.Member{GroupID: principal.GroupID, Name: req.Name}
	if err := s.store.AddMember(r.Context(), member); err != nil {
		respondError(w, err)
		return
	}

	group, err := s.store.GetGroup(r.Context(), principal.GroupID)
	if err != nil {
		respondError(w, err)
		return
	}

	slog.Info("Member added", "group_id", principal.GroupID, "member_id", member.ID)
	respondJSON(w, http.StatusCreated, toGroupPayload(group))
}

// RemoveMember deletes a member from the group. Transactions referencing
// the member keep their rows; the ledger drops those legs on its own.
func (s *GroupService) RemoveMember(w http.ResponseWriter, r *http.Request) {
	principal := middleware.GetPrincipal(r.Context())
	if err := principal.Require(auth.CapManageMembers); err != nil {
		respondError(w, err)
		return
	}

	memberID := mux.Vars(r)["id"]
	if err := s.store.RemoveMember(r.Context(), principal.GroupID, memberID); err != nil {
		respondError(w, err)
		return
	}

	slog.Info("Member removed", "group_id", principal.GroupID, "member_id", memberID)
	respondJSON(w, http.StatusNoContent, nil)
}

// UpdateMemberPayment sets a member's payment identifiers.
func (s *GroupService) UpdateMemberPayment(w http.ResponseWriter, r *http.Request) {
	principal := middleware.GetPrincipal(r.Context())
	if err := principal.Require(auth.CapUpdatePayment); err != nil {
		respondError(w, err)
		return
	}

	var req struct {
		PaypalEmail string `json:"paypal_email"`
		IBAN        string `json:"iban"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondValidation(w, "invalid request body")
		return
	}

	memberID := mux.Vars(r)["id"]
	if err := s.store.UpdateMemberPayment(r.Context(), principal.GroupID, memberID, req.PaypalEmail, req.IBAN); err != nil {
		respondError(w, err)
		return
	}

	member, err := s.store.GetMember(r.Context(), principal.GroupID, memberID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, memberPayload{
		ID:          member.ID,
		Name:        member.Name,
		PaypalEmail: member.PaypalEmail,
		IBAN:        member.IBAN,
	})
}

// ShareLink mints a new token for the caller's group. The requested
// capability set is attenuated by the caller's own, so a share link can
// narrow rights but never widen them.
func (s *GroupService) ShareLink(w http.ResponseWriter, r *http.Request) {
	principal := middleware.GetPrincipal(r.Context())

	var requested caps.Set
	if err := decodeJSON(r, &requested); err != nil {
		respondValidation(w, "invalid capability set")
		return
	}

	issued := requested.CapBy(principal.Caps)
	token, err := s.codec.Issue(principal.GroupID, &issued)
	if err != nil {
		respondError(w, err)
		return
	}

	slog.Info("Share token issued", "group_id", principal.GroupID)
	respondJSON(w, http.StatusCreated, map[string]any{
		"token":        token,
		"capabilities": issued,
	})
}

// MergeToken combines the caller's token with a second token for the same
// group and mints a token carrying the union of both capability sets.
func (s *GroupService) MergeToken(w http.ResponseWriter, r *http.Request) {
	principal := middleware.GetPrincipal(r.Context())

	var req struct {
		Token string `json:"token"`
	}
	if err := decodeJSON(r, &req); err != nil || req.Token == "" {
		respondValidation(w, "token required")
		return
	}

	// The supplied token failing to verify is the caller's input being
	// bad, not an authentication failure of this request.
	claims, err := s.codec.Verify(req.Token)
	if err != nil {
		respondValidation(w, "supplied token is not valid")
		return
	}
	if claims.GroupID != principal.GroupID {
		respondValidation(w, "supplied token belongs to a different group")
		return
	}

	merged := principal.Caps.UnionWith(auth.ResolveCapabilities(claims))
	token, err := s.codec.Issue(principal.GroupID, &merged)
	if err != nil {
		respondError(w, err)
		return
	}

	slog.Info("Tokens merged", "group_id", principal.GroupID)
	respondJSON(w, http.StatusCreated, map[string]any{
		"token":        token,
		"capabilities": merged,
	})
}

// Balances recomputes every member's net position from the full history.
func (s *GroupService) Balances(w http.ResponseWriter, r *http.Request) {
	principal := middleware.GetPrincipal(r.Context())

	group, err := s.store.GetGroup(r.Context(), principal.GroupID)
	if err != nil {
		respondError(w, err)
		return
	}
	txns, err := s.store.ListTransactions(r.Context(), principal.GroupID)
	if err != nil {
		respondError(w, err)
		return
	}

	balances := ledger.ComputeBalances(group.Members, txns, group.Currency)
	respondJSON(w, http.StatusOK, balances)
}
