// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/kshitijm/tripledger/internal/models"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// Store defines the interface for trip storage operations.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL, etc.)
// without changing the service layer. The balancing engine never sees this
// interface; services load a Trip aggregate and hand it over as a value.
type Store interface {
	// CreateTrip persists a new trip. The trip.ID field will be populated
	// by the store if empty.
	CreateTrip(ctx context.Context, trip *models.Trip) error

	// GetTrip retrieves a trip by ID with its persons and expenses fully
	// loaded, both in insertion order.
	GetTrip(ctx context.Context, tripID string) (*models.Trip, error)

	// ListTripsByOwner retrieves all trips created by a user, newest first.
	// Persons and expenses are not loaded.
	ListTripsByOwner(ctx context.Context, ownerID string) ([]*models.Trip, error)

	// DeleteTrip removes a trip and everything belonging to it.
	DeleteTrip(ctx context.Context, tripID string) error

	// AddPerson adds a member to a trip. The person.ID field will be
	// populated by the store if empty.
	AddPerson(ctx context.Context, tripID string, person *models.Person) error

	// RemovePerson removes a member from a trip.
	RemovePerson(ctx context.Context, tripID, personID string) error

	// CreateExpense persists a new expense with its participant set.
	CreateExpense(ctx context.Context, expense *models.Expense) error

	// UpdateExpense replaces an existing expense, participants included.
	UpdateExpense(ctx context.Context, expense *models.Expense) error

	// DeleteExpense removes an expense belonging to the given trip.
	// Returns ErrNotFound when the expense does not exist in that trip.
	DeleteExpense(ctx context.Context, tripID, expenseID string) error

	// CreatePayment records a settlement payment between two members.
	CreatePayment(ctx context.Context, payment *models.Payment) error

	// ListPaymentsByTrip retrieves all recorded payments for a trip,
	// newest first.
	ListPaymentsByTrip(ctx context.Context, tripID string) ([]*models.Payment, error)

	// DeletePayment removes a recorded payment belonging to the given trip.
	// Returns ErrNotFound when the payment does not exist in that trip.
	DeletePayment(ctx context.Context, tripID, paymentID string) error

	// CreateUser inserts a new user account.
	CreateUser(ctx context.Context, user *models.User) error

	// GetUserByEmail retrieves a user by email. Returns (nil, nil) when no
	// such user exists.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	// GetUserByID retrieves a user by id.
	GetUserByID(ctx context.Context, id string) (*models.User, error)

	// Close releases any resources held by the store.
	Close() error
}
