package service

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/divvyhq/divvy/internal/auth"
	"github.com/divvyhq/divvy/internal/middleware"
)

// NewRouter assembles the full route table. Everything under
// /groups/current runs behind bearer authentication; group creation and
// the operational endpoints do not.
func NewRouter(authority *auth.Authority, groups *GroupService, expenses *ExpenseService) *mux.Router {
	r := mux.NewRouter()
	r.Use(middleware.RequestLogger)
	r.Use(middleware.Metrics)

	r.HandleFunc("/health", handleHealth).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	r.HandleFunc("/groups", groups.CreateGroup).Methods(http.MethodPost)

	authed := r.PathPrefix("/groups/current").Subrouter()
	authed.Use(middleware.RequireAuth(authority))

	authed.HandleFunc("", groups.GetCurrentGroup).Methods(http.MethodGet)
	authed.HandleFunc("", groups.DeleteGroup).Methods(http.MethodDelete)
	authed.HandleFunc("/balances", groups.Balances).Methods(http.MethodGet)
	authed.HandleFunc("/share", groups.ShareLink).Methods(http.MethodPost)
	authed.HandleFunc("/merge-token", groups.MergeToken).Methods(http.MethodPost)

	authed.HandleFunc("/members", groups.AddMember).Methods(http.MethodPost)
	authed.HandleFunc("/members/{id}", groups.RemoveMember).Methods(http.MethodDelete)
	authed.HandleFunc("/members/{id}/payment", groups.UpdateMemberPayment).Methods(http.MethodPut)

	authed.HandleFunc("/expenses", expenses.List).Methods(http.MethodGet)
	authed.HandleFunc("/expenses", expenses.Create).Methods(http.MethodPost)
	authed.HandleFunc("/expenses/{id}", expenses.Update).Methods(http.MethodPut)
	authed.HandleFunc("/expenses/{id}", expenses.Delete).Methods(http.MethodDelete)

	return r
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}
