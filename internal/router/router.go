// Package router wires the HTTP routes to their service handlers.
package router

import (
	"net/http"

	"github.com/kshitijm/tripledger/internal/auth"
	"github.com/kshitijm/tripledger/internal/metrics"
	"github.com/kshitijm/tripledger/internal/middleware"
	"github.com/kshitijm/tripledger/internal/service"
	"github.com/kshitijm/tripledger/internal/storage"
)

// New builds the route table. Every trip route requires authentication; the
// auth endpoints and the operational endpoints (health, metrics) do not.
func New(store storage.Store, jwtManager *auth.JWTManager) *http.ServeMux {
	mux := http.NewServeMux()

	authSvc := service.NewAuthService(auth.NewPasswordAuthenticator(store), jwtManager)
	tripSvc := service.NewTripService(store)
	ledgerSvc := service.NewLedgerService(store)

	// handle registers a route with metrics, JWT auth and logging applied.
	// Logging runs inside auth so the log line carries the authenticated
	// user id; rejected requests are logged by RequireAuth itself.
	handle := func(pattern string, h http.HandlerFunc) {
		mux.HandleFunc(pattern, metrics.Instrument(pattern, middleware.RequireAuth(jwtManager, middleware.WithLogging(h))))
	}
	// handleOpen registers a route without the auth requirement.
	handleOpen := func(pattern string, h http.HandlerFunc) {
		mux.HandleFunc(pattern, metrics.Instrument(pattern, middleware.WithLogging(h)))
	}

	// Health and metrics
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	mux.Handle("GET /metrics", metrics.Handler())

	// Authentication
	handleOpen("POST /auth/register", authSvc.Register)
	handleOpen("POST /auth/login", authSvc.Login)

	// Trip management
	handle("POST /trips", tripSvc.CreateTrip)
	handle("GET /trips", tripSvc.ListTrips)
	handle("GET /trips/{id}", tripSvc.GetTrip)
	handle("DELETE /trips/{id}", tripSvc.DeleteTrip)
	handle("POST /trips/{id}/persons", tripSvc.AddPerson)
	handle("DELETE /trips/{id}/persons/{personID}", tripSvc.RemovePerson)
	handle("POST /trips/{id}/expenses", tripSvc.CreateExpense)
	handle("PUT /trips/{id}/expenses/{expenseID}", tripSvc.UpdateExpense)
	handle("DELETE /trips/{id}/expenses/{expenseID}", tripSvc.DeleteExpense)

	// Ledger: balances, suggested settlements, recorded payments
	handle("GET /trips/{id}/balances", ledgerSvc.GetBalances)
	handle("GET /trips/{id}/settlements", ledgerSvc.GetSettlements)
	handle("POST /trips/{id}/payments", ledgerSvc.CreatePayment)
	handle("GET /trips/{id}/payments", ledgerSvc.ListPayments)
	handle("DELETE /trips/{id}/payments/{paymentID}", ledgerSvc.DeletePayment)

	return mux
}
