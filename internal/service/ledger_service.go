package service

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/kshitijm/tripledger/internal/calculator"
	"github.com/kshitijm/tripledger/internal/middleware"
	"github.com/kshitijm/tripledger/internal/models"
	"github.com/kshitijm/tripledger/internal/storage"
)

// LedgerService exposes the balancing engine over trips: net balances,
// suggested settlement transfers, and the recorded payments that offset them.
// It loads a trip snapshot, runs the pure calculator functions, and maps the
// result for display; the engine itself never touches storage.
type LedgerService struct {
	store storage.Store
}

// NewLedgerService creates a new LedgerService with the given storage backend.
func NewLedgerService(store storage.Store) *LedgerService {
	return &LedgerService{store: store}
}

type balanceEntry struct {
	PersonID string  `json:"person_id"`
	Name     string  `json:"name"`
	Balance  float64 `json:"balance"` // positive = owed money, negative = owes
}

type settlementEntry struct {
	From     string  `json:"from"`
	FromName string  `json:"from_name"`
	To       string  `json:"to"`
	ToName   string  `json:"to_name"`
	Amount   float64 `json:"amount"`
}

type paymentRequest struct {
	From   string  `json:"from"`
	To     string  `json:"to"`
	Amount float64 `json:"amount"`
	Note   string  `json:"note,omitempty"`
}

type paymentResponse struct {
	ID        string  `json:"id"`
	From      string  `json:"from"`
	To        string  `json:"to"`
	Amount    float64 `json:"amount"`
	Note      string  `json:"note,omitempty"`
	CreatedAt int64   `json:"created_at"`
}

// loadOwnedTrip fetches a trip and checks the authenticated user owns it.
// On failure it writes the error response and returns nil.
func (s *LedgerService) loadOwnedTrip(w http.ResponseWriter, r *http.Request, tripID string) *models.Trip {
	trip, err := s.store.GetTrip(r.Context(), tripID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			middleware.ErrorResponse(w, http.StatusNotFound, "Trip not found")
		} else {
			slog.Error("failed to load trip", "trip_id", tripID, "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		}
		return nil
	}
	if trip.OwnerID != middleware.GetUserID(r.Context()) {
		middleware.ErrorResponse(w, http.StatusForbidden, "You do not own this trip")
		return nil
	}
	return trip
}

// adjustedBalances computes expense balances and folds in recorded payments.
func (s *LedgerService) adjustedBalances(r *http.Request, trip *models.Trip) (map[string]float64, error) {
	balances := calculator.CalculateBalances(trip)
	payments, err := s.store.ListPaymentsByTrip(r.Context(), trip.ID)
	if err != nil {
		return nil, err
	}
	if len(payments) == 0 {
		return balances, nil
	}
	deref := make([]models.Payment, 0, len(payments))
	for _, p := range payments {
		deref = append(deref, *p)
	}
	return calculator.ApplyPayments(balances, deref), nil
}

// GetBalances handles GET /trips/{id}/balances.
func (s *LedgerService) GetBalances(w http.ResponseWriter, r *http.Request) {
	trip := s.loadOwnedTrip(w, r, r.PathValue("id"))
	if trip == nil {
		return
	}

	balances, err := s.adjustedBalances(r, trip)
	if err != nil {
		slog.Error("GetBalances failed", "trip_id", trip.ID, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	entries := make([]balanceEntry, 0, len(trip.Persons))
	for _, p := range trip.Persons {
		entries = append(entries, balanceEntry{
			PersonID: p.ID,
			Name:     p.Name,
			Balance:  balances[p.ID],
		})
	}
	middleware.JSONResponse(w, http.StatusOK, entries)
}

// GetSettlements handles GET /trips/{id}/settlements.
// The returned transfer list is a suggestion; its order is deterministic for
// a given trip but consumers must not rely on the ordering of transfers whose
// amounts tie exactly.
func (s *LedgerService) GetSettlements(w http.ResponseWriter, r *http.Request) {
	trip := s.loadOwnedTrip(w, r, r.PathValue("id"))
	if trip == nil {
		return
	}

	balances, err := s.adjustedBalances(r, trip)
	if err != nil {
		slog.Error("GetSettlements failed", "trip_id", trip.ID, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	names := make(map[string]string, len(trip.Persons))
	for _, p := range trip.Persons {
		names[p.ID] = p.Name
	}

	transfers := calculator.ResolveSettlements(balances, trip.Persons)
	entries := make([]settlementEntry, 0, len(transfers))
	for _, tr := range transfers {
		entries = append(entries, settlementEntry{
			From:     tr.From,
			FromName: names[tr.From],
			To:       tr.To,
			ToName:   names[tr.To],
			Amount:   tr.Amount,
		})
	}
	middleware.JSONResponse(w, http.StatusOK, entries)
}

// CreatePayment handles POST /trips/{id}/payments.
func (s *LedgerService) CreatePayment(w http.ResponseWriter, r *http.Request) {
	trip := s.loadOwnedTrip(w, r, r.PathValue("id"))
	if trip == nil {
		return
	}

	var req paymentRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.Amount <= 0 {
		middleware.ErrorResponse(w, http.StatusBadRequest, "amount must be positive")
		return
	}
	if req.From == req.To {
		middleware.ErrorResponse(w, http.StatusBadRequest, "from and to must differ")
		return
	}
	if !trip.Member(req.From) || !trip.Member(req.To) {
		middleware.ErrorResponse(w, http.StatusBadRequest, "from and to must be trip members")
		return
	}

	payment := &models.Payment{
		TripID:    trip.ID,
		From:      req.From,
		To:        req.To,
		Amount:    req.Amount,
		Note:      req.Note,
		CreatedBy: middleware.GetUserID(r.Context()),
	}
	if err := s.store.CreatePayment(r.Context(), payment); err != nil {
		slog.Error("CreatePayment failed", "trip_id", trip.ID, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to record payment")
		return
	}

	slog.Info("payment recorded", "trip_id", trip.ID, "payment_id", payment.ID, "amount", payment.Amount)
	middleware.JSONResponse(w, http.StatusCreated, paymentResponse{
		ID:        payment.ID,
		From:      payment.From,
		To:        payment.To,
		Amount:    payment.Amount,
		Note:      payment.Note,
		CreatedAt: payment.CreatedAt,
	})
}

// ListPayments handles GET /trips/{id}/payments.
func (s *LedgerService) ListPayments(w http.ResponseWriter, r *http.Request) {
	trip := s.loadOwnedTrip(w, r, r.PathValue("id"))
	if trip == nil {
		return
	}

	payments, err := s.store.ListPaymentsByTrip(r.Context(), trip.ID)
	if err != nil {
		slog.Error("ListPayments failed", "trip_id", trip.ID, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	entries := make([]paymentResponse, 0, len(payments))
	for _, p := range payments {
		entries = append(entries, paymentResponse{
			ID:        p.ID,
			From:      p.From,
			To:        p.To,
			Amount:    p.Amount,
			Note:      p.Note,
			CreatedAt: p.CreatedAt,
		})
	}
	middleware.JSONResponse(w, http.StatusOK, entries)
}

// DeletePayment handles DELETE /trips/{id}/payments/{paymentID}.
func (s *LedgerService) DeletePayment(w http.ResponseWriter, r *http.Request) {
	trip := s.loadOwnedTrip(w, r, r.PathValue("id"))
	if trip == nil {
		return
	}

	paymentID := r.PathValue("paymentID")
	if err := s.store.DeletePayment(r.Context(), trip.ID, paymentID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			middleware.ErrorResponse(w, http.StatusNotFound, "Payment not found")
			return
		}
		slog.Error("DeletePayment failed", "payment_id", paymentID, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to delete payment")
		return
	}

	slog.Info("payment deleted", "trip_id", trip.ID, "payment_id", paymentID)
	w.WriteHeader(http.StatusNoContent)
}
