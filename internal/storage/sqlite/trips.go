package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kshitijm/tripledger/internal/models"
	"github.com/kshitijm/tripledger/internal/storage"
)

// CreateTrip persists a new trip, including any initial persons.
func (s *SQLiteStore) CreateTrip(ctx context.Context, trip *models.Trip) error {
	if trip.ID == "" {
		trip.ID = uuid.New().String()
	}
	if trip.CreatedAt == 0 {
		trip.CreatedAt = time.Now().Unix()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var budget interface{}
	if trip.Budget != nil {
		budget = *trip.Budget
	}

	_, err = tx.ExecContext(ctx,
		"INSERT INTO trips (id, name, budget, owner_id, created_at) VALUES (?, ?, ?, ?, ?)",
		trip.ID, trip.Name, budget, trip.OwnerID, trip.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert trip: %w", err)
	}

	for i := range trip.Persons {
		p := &trip.Persons[i]
		if p.ID == "" {
			p.ID = uuid.New().String()
		}
		_, err = tx.ExecContext(ctx,
			"INSERT INTO persons (id, trip_id, name, position) VALUES (?, ?, ?, ?)",
			p.ID, trip.ID, p.Name, i,
		)
		if err != nil {
			return fmt.Errorf("failed to insert person: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// GetTrip retrieves a trip by ID with persons and expenses fully loaded,
// both in insertion order.
func (s *SQLiteStore) GetTrip(ctx context.Context, tripID string) (*models.Trip, error) {
	trip := &models.Trip{}
	var budget sql.NullFloat64
	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, budget, owner_id, created_at FROM trips WHERE id = ?",
		tripID,
	).Scan(&trip.ID, &trip.Name, &budget, &trip.OwnerID, &trip.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("trip %s: %w", tripID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get trip: %w", err)
	}
	if budget.Valid {
		trip.Budget = &budget.Float64
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name FROM persons WHERE trip_id = ? ORDER BY position",
		tripID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get persons: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var p models.Person
		if err := rows.Scan(&p.ID, &p.Name); err != nil {
			return nil, fmt.Errorf("failed to scan person: %w", err)
		}
		trip.Persons = append(trip.Persons, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate persons: %w", err)
	}

	expenses, err := s.listExpenses(ctx, tripID)
	if err != nil {
		return nil, err
	}
	trip.Expenses = expenses

	return trip, nil
}

// ListTripsByOwner retrieves all trips created by a user, newest first.
// Persons and expenses are not loaded.
func (s *SQLiteStore) ListTripsByOwner(ctx context.Context, ownerID string) ([]*models.Trip, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, budget, owner_id, created_at FROM trips WHERE owner_id = ? ORDER BY created_at DESC",
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list trips: %w", err)
	}
	defer rows.Close()

	var trips []*models.Trip
	for rows.Next() {
		trip := &models.Trip{}
		var budget sql.NullFloat64
		if err := rows.Scan(&trip.ID, &trip.Name, &budget, &trip.OwnerID, &trip.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan trip: %w", err)
		}
		if budget.Valid {
			trip.Budget = &budget.Float64
		}
		trips = append(trips, trip)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate trips: %w", err)
	}

	return trips, nil
}

// DeleteTrip removes a trip; persons, expenses and payments cascade.
func (s *SQLiteStore) DeleteTrip(ctx context.Context, tripID string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM trips WHERE id = ?", tripID)
	if err != nil {
		return fmt.Errorf("failed to delete trip: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("trip %s: %w", tripID, storage.ErrNotFound)
	}
	return nil
}

// AddPerson appends a member to a trip, after everyone already there.
func (s *SQLiteStore) AddPerson(ctx context.Context, tripID string, person *models.Person) error {
	if person.ID == "" {
		person.ID = uuid.New().String()
	}

	var next int
	err := s.db.QueryRowContext(ctx,
		"SELECT COALESCE(MAX(position), -1) + 1 FROM persons WHERE trip_id = ?",
		tripID,
	).Scan(&next)
	if err != nil {
		return fmt.Errorf("failed to compute position: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		"INSERT INTO persons (id, trip_id, name, position) VALUES (?, ?, ?, ?)",
		person.ID, tripID, person.Name, next,
	)
	if err != nil {
		return fmt.Errorf("failed to insert person: %w", err)
	}
	return nil
}

// RemovePerson removes a member from a trip.
func (s *SQLiteStore) RemovePerson(ctx context.Context, tripID, personID string) error {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM persons WHERE trip_id = ? AND id = ?",
		tripID, personID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete person: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("person %s: %w", personID, storage.ErrNotFound)
	}
	return nil
}
