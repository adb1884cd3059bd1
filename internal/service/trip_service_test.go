package service_test

import (
	"net/http"
	"testing"
)

func TestAuthRequired(t *testing.T) {
	baseURL, _ := setupTestServer(t)

	resp := doJSON(t, http.MethodGet, baseURL+"/trips", "", nil)
	if resp.status != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401 without token", resp.status)
	}

	resp = doJSON(t, http.MethodGet, baseURL+"/trips", "not-a-token", nil)
	if resp.status != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401 with bad token", resp.status)
	}
}

func TestRegisterValidation(t *testing.T) {
	baseURL, _ := setupTestServer(t)

	tests := []struct {
		name       string
		body       map[string]string
		wantStatus int
	}{
		{
			name: "weak password",
			body: map[string]string{
				"email": "a@example.com", "display_name": "A", "password": "short",
			},
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "missing email",
			body: map[string]string{
				"display_name": "A", "password": "long enough",
			},
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "duplicate email",
			body: map[string]string{
				"email": "tester@example.com", "display_name": "Again", "password": "long enough",
			},
			wantStatus: http.StatusConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := doJSON(t, http.MethodPost, baseURL+"/auth/register", "", tt.body)
			if resp.status != tt.wantStatus {
				t.Errorf("status = %d, want %d, body %s", resp.status, tt.wantStatus, resp.raw)
			}
		})
	}
}

func TestLogin(t *testing.T) {
	baseURL, _ := setupTestServer(t)

	resp := doJSON(t, http.MethodPost, baseURL+"/auth/login", "", map[string]string{
		"email": "tester@example.com", "password": "correct horse",
	})
	if resp.status != http.StatusOK {
		t.Fatalf("login status = %d, body %s", resp.status, resp.raw)
	}
	var body struct {
		Token string `json:"token"`
	}
	resp.decode(t, &body)
	if body.Token == "" {
		t.Error("expected a token")
	}

	resp = doJSON(t, http.MethodPost, baseURL+"/auth/login", "", map[string]string{
		"email": "tester@example.com", "password": "wrong password",
	})
	if resp.status != http.StatusUnauthorized {
		t.Errorf("login with wrong password status = %d, want 401", resp.status)
	}
}

func TestCreateTrip(t *testing.T) {
	baseURL, token := setupTestServer(t)

	trip := createTrip(t, baseURL, token, "Lisbon", []string{"Alice", "Bob", "Carol"})
	if len(trip.Persons) != 3 {
		t.Fatalf("persons = %d, want 3", len(trip.Persons))
	}
	if trip.Persons[0].Name != "Alice" {
		t.Errorf("first person = %s, want Alice (insertion order)", trip.Persons[0].Name)
	}

	t.Run("rejects duplicate names ignoring case", func(t *testing.T) {
		resp := doJSON(t, http.MethodPost, baseURL+"/trips", token, map[string]interface{}{
			"name":    "Bad",
			"persons": []string{"Dana", "dana"},
		})
		if resp.status != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", resp.status)
		}
	})

	t.Run("rejects empty trip name", func(t *testing.T) {
		resp := doJSON(t, http.MethodPost, baseURL+"/trips", token, map[string]interface{}{
			"name": "  ",
		})
		if resp.status != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", resp.status)
		}
	})

	t.Run("rejects non-positive budget", func(t *testing.T) {
		resp := doJSON(t, http.MethodPost, baseURL+"/trips", token, map[string]interface{}{
			"name": "Budgeted", "budget": -10.0,
		})
		if resp.status != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", resp.status)
		}
	})
}

func TestTripOwnership(t *testing.T) {
	baseURL, token := setupTestServer(t)
	trip := createTrip(t, baseURL, token, "Private", []string{"Alice"})

	// Second user cannot see the first user's trip.
	resp := doJSON(t, http.MethodPost, baseURL+"/auth/register", "", map[string]string{
		"email": "other@example.com", "display_name": "Other", "password": "long enough",
	})
	if resp.status != http.StatusCreated {
		t.Fatalf("register status = %d", resp.status)
	}
	var reg struct {
		Token string `json:"token"`
	}
	resp.decode(t, &reg)

	resp = doJSON(t, http.MethodGet, baseURL+"/trips/"+trip.ID, reg.Token, nil)
	if resp.status != http.StatusForbidden {
		t.Errorf("status = %d, want 403 for non-owner", resp.status)
	}
}

func TestDeleteScopedToTrip(t *testing.T) {
	baseURL, token := setupTestServer(t)
	trip := createTrip(t, baseURL, token, "Mine", []string{"Alice", "Bob"})
	alice := trip.Persons[0].ID
	bob := trip.Persons[1].ID

	resp := doJSON(t, http.MethodPost, baseURL+"/trips/"+trip.ID+"/expenses", token, map[string]interface{}{
		"title": "Lunch", "amount": 20.0, "paid_by": alice, "participants": []string{alice, bob},
	})
	if resp.status != http.StatusCreated {
		t.Fatalf("create expense status = %d", resp.status)
	}
	var expense struct {
		ID string `json:"id"`
	}
	resp.decode(t, &expense)

	resp = doJSON(t, http.MethodPost, baseURL+"/trips/"+trip.ID+"/payments", token, map[string]interface{}{
		"from": bob, "to": alice, "amount": 10.0,
	})
	if resp.status != http.StatusCreated {
		t.Fatalf("create payment status = %d", resp.status)
	}
	var payment struct {
		ID string `json:"id"`
	}
	resp.decode(t, &payment)

	// A second user owning their own trip cannot reach the first user's
	// records through it.
	otherToken := registerUser(t, baseURL, "other@example.com")
	otherTrip := createTrip(t, baseURL, otherToken, "Theirs", []string{"Zoe"})

	resp = doJSON(t, http.MethodDelete, baseURL+"/trips/"+otherTrip.ID+"/expenses/"+expense.ID, otherToken, nil)
	if resp.status != http.StatusNotFound {
		t.Errorf("cross-trip expense delete status = %d, want 404", resp.status)
	}
	resp = doJSON(t, http.MethodDelete, baseURL+"/trips/"+otherTrip.ID+"/payments/"+payment.ID, otherToken, nil)
	if resp.status != http.StatusNotFound {
		t.Errorf("cross-trip payment delete status = %d, want 404", resp.status)
	}

	// Going through the owner's trip path fails on ownership instead.
	resp = doJSON(t, http.MethodDelete, baseURL+"/trips/"+trip.ID+"/expenses/"+expense.ID, otherToken, nil)
	if resp.status != http.StatusForbidden {
		t.Errorf("non-owner expense delete status = %d, want 403", resp.status)
	}

	// The records are still there for their owner.
	resp = doJSON(t, http.MethodGet, baseURL+"/trips/"+trip.ID, token, nil)
	var got tripBody
	resp.decode(t, &got)
	if len(got.Expenses) != 1 {
		t.Errorf("expenses after cross-trip delete attempts = %d, want 1", len(got.Expenses))
	}
	resp = doJSON(t, http.MethodGet, baseURL+"/trips/"+trip.ID+"/payments", token, nil)
	var payments []struct {
		ID string `json:"id"`
	}
	resp.decode(t, &payments)
	if len(payments) != 1 {
		t.Errorf("payments after cross-trip delete attempts = %d, want 1", len(payments))
	}
}

func TestAddRemovePerson(t *testing.T) {
	baseURL, token := setupTestServer(t)
	trip := createTrip(t, baseURL, token, "Weekend", []string{"Alice"})

	resp := doJSON(t, http.MethodPost, baseURL+"/trips/"+trip.ID+"/persons", token, map[string]string{
		"name": "Bob",
	})
	if resp.status != http.StatusCreated {
		t.Fatalf("add person status = %d, body %s", resp.status, resp.raw)
	}
	var bob struct {
		ID string `json:"id"`
	}
	resp.decode(t, &bob)

	t.Run("duplicate name conflicts", func(t *testing.T) {
		resp := doJSON(t, http.MethodPost, baseURL+"/trips/"+trip.ID+"/persons", token, map[string]string{
			"name": "BOB",
		})
		if resp.status != http.StatusConflict {
			t.Errorf("status = %d, want 409", resp.status)
		}
	})

	t.Run("removal blocked while referenced by an expense", func(t *testing.T) {
		alice := trip.Persons[0].ID
		resp := doJSON(t, http.MethodPost, baseURL+"/trips/"+trip.ID+"/expenses", token, map[string]interface{}{
			"title": "Lunch", "amount": 20.0, "paid_by": alice, "participants": []string{bob.ID},
		})
		if resp.status != http.StatusCreated {
			t.Fatalf("create expense status = %d, body %s", resp.status, resp.raw)
		}
		var expense struct {
			ID string `json:"id"`
		}
		resp.decode(t, &expense)

		resp = doJSON(t, http.MethodDelete, baseURL+"/trips/"+trip.ID+"/persons/"+bob.ID, token, nil)
		if resp.status != http.StatusConflict {
			t.Errorf("remove participant status = %d, want 409", resp.status)
		}

		resp = doJSON(t, http.MethodDelete, baseURL+"/trips/"+trip.ID+"/expenses/"+expense.ID, token, nil)
		if resp.status != http.StatusNoContent {
			t.Fatalf("delete expense status = %d", resp.status)
		}

		resp = doJSON(t, http.MethodDelete, baseURL+"/trips/"+trip.ID+"/persons/"+bob.ID, token, nil)
		if resp.status != http.StatusNoContent {
			t.Errorf("remove person status = %d, want 204 once unreferenced", resp.status)
		}
	})
}

func TestRemovePersonBlockedByPayment(t *testing.T) {
	baseURL, token := setupTestServer(t)
	trip := createTrip(t, baseURL, token, "Settling", []string{"Alice", "Bob"})
	alice := trip.Persons[0].ID
	bob := trip.Persons[1].ID

	resp := doJSON(t, http.MethodPost, baseURL+"/trips/"+trip.ID+"/payments", token, map[string]interface{}{
		"from": bob, "to": alice, "amount": 15.0,
	})
	if resp.status != http.StatusCreated {
		t.Fatalf("create payment status = %d, body %s", resp.status, resp.raw)
	}
	var payment struct {
		ID string `json:"id"`
	}
	resp.decode(t, &payment)

	for _, personID := range []string{alice, bob} {
		resp = doJSON(t, http.MethodDelete, baseURL+"/trips/"+trip.ID+"/persons/"+personID, token, nil)
		if resp.status != http.StatusConflict {
			t.Errorf("remove person with recorded payment status = %d, want 409", resp.status)
		}
	}

	resp = doJSON(t, http.MethodDelete, baseURL+"/trips/"+trip.ID+"/payments/"+payment.ID, token, nil)
	if resp.status != http.StatusNoContent {
		t.Fatalf("delete payment status = %d", resp.status)
	}

	resp = doJSON(t, http.MethodDelete, baseURL+"/trips/"+trip.ID+"/persons/"+bob, token, nil)
	if resp.status != http.StatusNoContent {
		t.Errorf("remove person status = %d, want 204 once the payment is gone", resp.status)
	}
}

func TestExpenseValidation(t *testing.T) {
	baseURL, token := setupTestServer(t)
	trip := createTrip(t, baseURL, token, "Dinner", []string{"Alice", "Bob"})
	alice := trip.Persons[0].ID
	bob := trip.Persons[1].ID

	tests := []struct {
		name string
		body map[string]interface{}
	}{
		{
			name: "empty title",
			body: map[string]interface{}{
				"title": "", "amount": 10.0, "paid_by": alice, "participants": []string{bob},
			},
		},
		{
			name: "zero amount",
			body: map[string]interface{}{
				"title": "X", "amount": 0.0, "paid_by": alice, "participants": []string{bob},
			},
		},
		{
			name: "negative amount",
			body: map[string]interface{}{
				"title": "X", "amount": -5.0, "paid_by": alice, "participants": []string{bob},
			},
		},
		{
			name: "payer not a member",
			body: map[string]interface{}{
				"title": "X", "amount": 10.0, "paid_by": "ghost", "participants": []string{bob},
			},
		},
		{
			name: "empty participants",
			body: map[string]interface{}{
				"title": "X", "amount": 10.0, "paid_by": alice, "participants": []string{},
			},
		},
		{
			name: "participant not a member",
			body: map[string]interface{}{
				"title": "X", "amount": 10.0, "paid_by": alice, "participants": []string{"ghost"},
			},
		},
		{
			name: "participant listed twice",
			body: map[string]interface{}{
				"title": "X", "amount": 10.0, "paid_by": alice, "participants": []string{bob, bob},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := doJSON(t, http.MethodPost, baseURL+"/trips/"+trip.ID+"/expenses", token, tt.body)
			if resp.status != http.StatusBadRequest {
				t.Errorf("status = %d, want 400, body %s", resp.status, resp.raw)
			}
		})
	}

	t.Run("payer outside participants is allowed", func(t *testing.T) {
		resp := doJSON(t, http.MethodPost, baseURL+"/trips/"+trip.ID+"/expenses", token, map[string]interface{}{
			"title": "Treat", "amount": 10.0, "paid_by": alice, "participants": []string{bob},
		})
		if resp.status != http.StatusCreated {
			t.Errorf("status = %d, want 201, body %s", resp.status, resp.raw)
		}
	})
}

func TestUpdateExpense(t *testing.T) {
	baseURL, token := setupTestServer(t)
	trip := createTrip(t, baseURL, token, "Groceries", []string{"Alice", "Bob"})
	alice := trip.Persons[0].ID
	bob := trip.Persons[1].ID

	resp := doJSON(t, http.MethodPost, baseURL+"/trips/"+trip.ID+"/expenses", token, map[string]interface{}{
		"title": "Food", "amount": 40.0, "paid_by": alice, "participants": []string{alice, bob},
	})
	if resp.status != http.StatusCreated {
		t.Fatalf("create expense status = %d", resp.status)
	}
	var expense struct {
		ID string `json:"id"`
	}
	resp.decode(t, &expense)

	resp = doJSON(t, http.MethodPut, baseURL+"/trips/"+trip.ID+"/expenses/"+expense.ID, token, map[string]interface{}{
		"title": "Food and drinks", "amount": 60.0, "paid_by": bob, "participants": []string{alice, bob},
	})
	if resp.status != http.StatusOK {
		t.Fatalf("update status = %d, body %s", resp.status, resp.raw)
	}

	resp = doJSON(t, http.MethodGet, baseURL+"/trips/"+trip.ID, token, nil)
	var got tripBody
	resp.decode(t, &got)
	if len(got.Expenses) != 1 || got.Expenses[0].Title != "Food and drinks" || got.Expenses[0].Amount != 60 {
		t.Errorf("expense after update = %+v", got.Expenses)
	}

	t.Run("updating unknown expense is 404", func(t *testing.T) {
		resp := doJSON(t, http.MethodPut, baseURL+"/trips/"+trip.ID+"/expenses/missing", token, map[string]interface{}{
			"title": "X", "amount": 1.0, "paid_by": alice, "participants": []string{bob},
		})
		if resp.status != http.StatusNotFound {
			t.Errorf("status = %d, want 404", resp.status)
		}
	})
}
