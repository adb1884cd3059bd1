// Package service implements the HTTP service layer: trip and expense
// mutations with their validation rules, and the ledger endpoints that run
// the balancing engine over trip snapshots.
package service

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/kshitijm/tripledger/internal/middleware"
	"github.com/kshitijm/tripledger/internal/models"
	"github.com/kshitijm/tripledger/internal/storage"
)

// TripService handles trip, person and expense mutations. All referential
// integrity (payer and participants are trip members, names unique) is
// enforced here so the calculator can trust its input.
type TripService struct {
	store storage.Store
}

// NewTripService creates a new TripService with the given storage backend.
func NewTripService(store storage.Store) *TripService {
	return &TripService{store: store}
}

type createTripRequest struct {
	Name    string   `json:"name"`
	Budget  *float64 `json:"budget,omitempty"`
	Persons []string `json:"persons,omitempty"`
}

type personResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type expenseResponse struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	Amount       float64  `json:"amount"`
	PaidBy       string   `json:"paid_by"`
	Participants []string `json:"participants"`
	CreatedAt    int64    `json:"created_at"`
}

type tripResponse struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	Budget    *float64          `json:"budget,omitempty"`
	Persons   []personResponse  `json:"persons"`
	Expenses  []expenseResponse `json:"expenses"`
	CreatedAt int64             `json:"created_at"`
}

type tripSummary struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Budget    *float64 `json:"budget,omitempty"`
	CreatedAt int64    `json:"created_at"`
}

type addPersonRequest struct {
	Name string `json:"name"`
}

type expenseRequest struct {
	Title        string   `json:"title"`
	Amount       float64  `json:"amount"`
	PaidBy       string   `json:"paid_by"`
	Participants []string `json:"participants"`
}

func toTripResponse(trip *models.Trip) tripResponse {
	resp := tripResponse{
		ID:        trip.ID,
		Name:      trip.Name,
		Budget:    trip.Budget,
		Persons:   make([]personResponse, 0, len(trip.Persons)),
		Expenses:  make([]expenseResponse, 0, len(trip.Expenses)),
		CreatedAt: trip.CreatedAt,
	}
	for _, p := range trip.Persons {
		resp.Persons = append(resp.Persons, personResponse{ID: p.ID, Name: p.Name})
	}
	for _, e := range trip.Expenses {
		resp.Expenses = append(resp.Expenses, expenseResponse{
			ID:           e.ID,
			Title:        e.Title,
			Amount:       e.Amount,
			PaidBy:       e.PaidBy,
			Participants: e.Participants,
			CreatedAt:    e.CreatedAt,
		})
	}
	return resp
}

// loadOwnedTrip fetches a trip and checks the authenticated user owns it.
// On failure it writes the error response and returns nil.
func (s *TripService) loadOwnedTrip(w http.ResponseWriter, r *http.Request, tripID string) *models.Trip {
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

// duplicateName reports whether name collides with an existing person name,
// ignoring case.
func duplicateName(persons []models.Person, name string) bool {
	for _, p := range persons {
		if strings.EqualFold(p.Name, name) {
			return true
		}
	}
	return false
}

// CreateTrip handles POST /trips.
func (s *TripService) CreateTrip(w http.ResponseWriter, r *http.Request) {
	var req createTripRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if strings.TrimSpace(req.Name) == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "name is required")
		return
	}
	if req.Budget != nil && *req.Budget <= 0 {
		middleware.ErrorResponse(w, http.StatusBadRequest, "budget must be positive")
		return
	}

	trip := &models.Trip{
		Name:    req.Name,
		Budget:  req.Budget,
		OwnerID: middleware.GetUserID(r.Context()),
	}
	for _, name := range req.Persons {
		if strings.TrimSpace(name) == "" {
			middleware.ErrorResponse(w, http.StatusBadRequest, "person name must be non-empty")
			return
		}
		if duplicateName(trip.Persons, name) {
			middleware.ErrorResponse(w, http.StatusBadRequest, "person name '"+name+"' is already taken")
			return
		}
		trip.Persons = append(trip.Persons, models.Person{Name: name})
	}

	if err := s.store.CreateTrip(r.Context(), trip); err != nil {
		slog.Error("CreateTrip failed", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create trip")
		return
	}

	slog.Info("trip created", "trip_id", trip.ID, "persons", len(trip.Persons))
	middleware.JSONResponse(w, http.StatusCreated, toTripResponse(trip))
}

// GetTrip handles GET /trips/{id}.
func (s *TripService) GetTrip(w http.ResponseWriter, r *http.Request) {
	trip := s.loadOwnedTrip(w, r, r.PathValue("id"))
	if trip == nil {
		return
	}
	middleware.JSONResponse(w, http.StatusOK, toTripResponse(trip))
}

// ListTrips handles GET /trips.
func (s *TripService) ListTrips(w http.ResponseWriter, r *http.Request) {
	trips, err := s.store.ListTripsByOwner(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		slog.Error("ListTrips failed", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	summaries := make([]tripSummary, 0, len(trips))
	for _, trip := range trips {
		summaries = append(summaries, tripSummary{
			ID:        trip.ID,
			Name:      trip.Name,
			Budget:    trip.Budget,
			CreatedAt: trip.CreatedAt,
		})
	}
	middleware.JSONResponse(w, http.StatusOK, summaries)
}

// DeleteTrip handles DELETE /trips/{id}.
func (s *TripService) DeleteTrip(w http.ResponseWriter, r *http.Request) {
	trip := s.loadOwnedTrip(w, r, r.PathValue("id"))
	if trip == nil {
		return
	}

	if err := s.store.DeleteTrip(r.Context(), trip.ID); err != nil {
		slog.Error("DeleteTrip failed", "trip_id", trip.ID, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to delete trip")
		return
	}

	slog.Info("trip deleted", "trip_id", trip.ID)
	w.WriteHeader(http.StatusNoContent)
}

// AddPerson handles POST /trips/{id}/persons.
func (s *TripService) AddPerson(w http.ResponseWriter, r *http.Request) {
	trip := s.loadOwnedTrip(w, r, r.PathValue("id"))
	if trip == nil {
		return
	}

	var req addPersonRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "name is required")
		return
	}
	if duplicateName(trip.Persons, req.Name) {
		middleware.ErrorResponse(w, http.StatusConflict, "person name '"+req.Name+"' is already taken")
		return
	}

	person := &models.Person{Name: req.Name}
	if err := s.store.AddPerson(r.Context(), trip.ID, person); err != nil {
		slog.Error("AddPerson failed", "trip_id", trip.ID, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to add person")
		return
	}

	slog.Info("person added", "trip_id", trip.ID, "person_id", person.ID)
	middleware.JSONResponse(w, http.StatusCreated, personResponse{ID: person.ID, Name: person.Name})
}

// RemovePerson handles DELETE /trips/{id}/persons/{personID}.
// A person who still pays for or participates in any expense, or who is named
// by a recorded payment, cannot be removed; those records must be edited or
// deleted first so balances never reference a missing member.
func (s *TripService) RemovePerson(w http.ResponseWriter, r *http.Request) {
	trip := s.loadOwnedTrip(w, r, r.PathValue("id"))
	if trip == nil {
		return
	}

	personID := r.PathValue("personID")
	if !trip.Member(personID) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Person not found")
		return
	}

	for _, e := range trip.Expenses {
		if e.PaidBy == personID {
			middleware.ErrorResponse(w, http.StatusConflict, "person paid for expense '"+e.Title+"'")
			return
		}
		for _, id := range e.Participants {
			if id == personID {
				middleware.ErrorResponse(w, http.StatusConflict, "person participates in expense '"+e.Title+"'")
				return
			}
		}
	}

	payments, err := s.store.ListPaymentsByTrip(r.Context(), trip.ID)
	if err != nil {
		slog.Error("RemovePerson failed", "trip_id", trip.ID, "person_id", personID, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	for _, p := range payments {
		if p.From == personID || p.To == personID {
			middleware.ErrorResponse(w, http.StatusConflict, "person is named by a recorded payment")
			return
		}
	}

	if err := s.store.RemovePerson(r.Context(), trip.ID, personID); err != nil {
		slog.Error("RemovePerson failed", "trip_id", trip.ID, "person_id", personID, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to remove person")
		return
	}

	slog.Info("person removed", "trip_id", trip.ID, "person_id", personID)
	w.WriteHeader(http.StatusNoContent)
}

// validateExpense checks an expense request against the trip's member list.
// Returns a message suitable for a 400 response, or "".
func validateExpense(trip *models.Trip, req *expenseRequest) string {
	if strings.TrimSpace(req.Title) == "" {
		return "title is required"
	}
	if req.Amount <= 0 {
		return "amount must be positive"
	}
	if !trip.Member(req.PaidBy) {
		return "paid_by must be a trip member"
	}
	if len(req.Participants) == 0 {
		return "participants must be non-empty"
	}
	seen := make(map[string]bool, len(req.Participants))
	for _, id := range req.Participants {
		if !trip.Member(id) {
			return "participant '" + id + "' is not a trip member"
		}
		if seen[id] {
			return "participant '" + id + "' listed twice"
		}
		seen[id] = true
	}
	return ""
}

// CreateExpense handles POST /trips/{id}/expenses.
func (s *TripService) CreateExpense(w http.ResponseWriter, r *http.Request) {
	trip := s.loadOwnedTrip(w, r, r.PathValue("id"))
	if trip == nil {
		return
	}

	var req expenseRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if msg := validateExpense(trip, &req); msg != "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, msg)
		return
	}

	expense := &models.Expense{
		TripID:       trip.ID,
		Title:        req.Title,
		Amount:       req.Amount,
		PaidBy:       req.PaidBy,
		Participants: req.Participants,
	}
	if err := s.store.CreateExpense(r.Context(), expense); err != nil {
		slog.Error("CreateExpense failed", "trip_id", trip.ID, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create expense")
		return
	}

	slog.Info("expense created", "trip_id", trip.ID, "expense_id", expense.ID, "amount", expense.Amount)
	middleware.JSONResponse(w, http.StatusCreated, expenseResponse{
		ID:           expense.ID,
		Title:        expense.Title,
		Amount:       expense.Amount,
		PaidBy:       expense.PaidBy,
		Participants: expense.Participants,
		CreatedAt:    expense.CreatedAt,
	})
}

// UpdateExpense handles PUT /trips/{id}/expenses/{expenseID}.
func (s *TripService) UpdateExpense(w http.ResponseWriter, r *http.Request) {
	trip := s.loadOwnedTrip(w, r, r.PathValue("id"))
	if trip == nil {
		return
	}

	expenseID := r.PathValue("expenseID")
	found := false
	for _, e := range trip.Expenses {
		if e.ID == expenseID {
			found = true
			break
		}
	}
	if !found {
		middleware.ErrorResponse(w, http.StatusNotFound, "Expense not found")
		return
	}

	var req expenseRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if msg := validateExpense(trip, &req); msg != "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, msg)
		return
	}

	expense := &models.Expense{
		ID:           expenseID,
		TripID:       trip.ID,
		Title:        req.Title,
		Amount:       req.Amount,
		PaidBy:       req.PaidBy,
		Participants: req.Participants,
	}
	if err := s.store.UpdateExpense(r.Context(), expense); err != nil {
		slog.Error("UpdateExpense failed", "expense_id", expenseID, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to update expense")
		return
	}

	slog.Info("expense updated", "trip_id", trip.ID, "expense_id", expenseID)
	middleware.JSONResponse(w, http.StatusOK, expenseResponse{
		ID:           expense.ID,
		Title:        expense.Title,
		Amount:       expense.Amount,
		PaidBy:       expense.PaidBy,
		Participants: expense.Participants,
		CreatedAt:    expense.CreatedAt,
	})
}

// DeleteExpense handles DELETE /trips/{id}/expenses/{expenseID}.
func (s *TripService) DeleteExpense(w http.ResponseWriter, r *http.Request) {
	trip := s.loadOwnedTrip(w, r, r.PathValue("id"))
	if trip == nil {
		return
	}

	expenseID := r.PathValue("expenseID")
	if err := s.store.DeleteExpense(r.Context(), trip.ID, expenseID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			middleware.ErrorResponse(w, http.StatusNotFound, "Expense not found")
			return
		}
		slog.Error("DeleteExpense failed", "expense_id", expenseID, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to delete expense")
		return
	}

	slog.Info("expense deleted", "trip_id", trip.ID, "expense_id", expenseID)
	w.WriteHeader(http.StatusNoContent)
}
