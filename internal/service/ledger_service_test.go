package service_test

import (
	"math"
	"net/http"
	"testing"
)

type balanceBody struct {
	PersonID string  `json:"person_id"`
	Name     string  `json:"name"`
	Balance  float64 `json:"balance"`
}

type settlementBody struct {
	From     string  `json:"from"`
	FromName string  `json:"from_name"`
	To       string  `json:"to"`
	ToName   string  `json:"to_name"`
	Amount   float64 `json:"amount"`
}

func TestLedgerEndToEnd(t *testing.T) {
	baseURL, token := setupTestServer(t)

	trip := createTrip(t, baseURL, token, "Reference", []string{"A", "B", "C"})
	a := trip.Persons[0].ID
	b := trip.Persons[1].ID
	c := trip.Persons[2].ID

	// Hotel: A fronts 150 split three ways; Dinner: B fronts 100 split with C.
	// Nets out to A +100, B 0, C -100.
	for _, e := range []map[string]interface{}{
		{"title": "Hotel", "amount": 150.0, "paid_by": a, "participants": []string{a, b, c}},
		{"title": "Dinner", "amount": 100.0, "paid_by": b, "participants": []string{b, c}},
	} {
		resp := doJSON(t, http.MethodPost, baseURL+"/trips/"+trip.ID+"/expenses", token, e)
		if resp.status != http.StatusCreated {
			t.Fatalf("create expense status = %d, body %s", resp.status, resp.raw)
		}
	}

	resp := doJSON(t, http.MethodGet, baseURL+"/trips/"+trip.ID+"/balances", token, nil)
	if resp.status != http.StatusOK {
		t.Fatalf("balances status = %d", resp.status)
	}
	var balances []balanceBody
	resp.decode(t, &balances)

	want := map[string]float64{a: 100, b: 0, c: -100}
	if len(balances) != 3 {
		t.Fatalf("balances count = %d, want 3", len(balances))
	}
	for _, entry := range balances {
		if math.Abs(entry.Balance-want[entry.PersonID]) > 0.001 {
			t.Errorf("%s balance = %v, want %v", entry.Name, entry.Balance, want[entry.PersonID])
		}
	}

	resp = doJSON(t, http.MethodGet, baseURL+"/trips/"+trip.ID+"/settlements", token, nil)
	if resp.status != http.StatusOK {
		t.Fatalf("settlements status = %d", resp.status)
	}
	var settlements []settlementBody
	resp.decode(t, &settlements)

	if len(settlements) != 1 {
		t.Fatalf("settlements count = %d, want 1, body %s", len(settlements), resp.raw)
	}
	s := settlements[0]
	if s.From != c || s.To != a {
		t.Errorf("settlement = %s -> %s, want C -> A", s.FromName, s.ToName)
	}
	if math.Abs(s.Amount-100) > 0.001 {
		t.Errorf("settlement amount = %v, want 100", s.Amount)
	}

	t.Run("recorded payment discharges the debt", func(t *testing.T) {
		resp := doJSON(t, http.MethodPost, baseURL+"/trips/"+trip.ID+"/payments", token, map[string]interface{}{
			"from": c, "to": a, "amount": 100.0, "note": "bank transfer",
		})
		if resp.status != http.StatusCreated {
			t.Fatalf("create payment status = %d, body %s", resp.status, resp.raw)
		}

		resp = doJSON(t, http.MethodGet, baseURL+"/trips/"+trip.ID+"/settlements", token, nil)
		var after []settlementBody
		resp.decode(t, &after)
		if len(after) != 0 {
			t.Errorf("settlements after full payment = %d, want 0", len(after))
		}

		resp = doJSON(t, http.MethodGet, baseURL+"/trips/"+trip.ID+"/balances", token, nil)
		var bal []balanceBody
		resp.decode(t, &bal)
		for _, entry := range bal {
			if math.Abs(entry.Balance) > 0.01 {
				t.Errorf("%s balance = %v after settlement, want ~0", entry.Name, entry.Balance)
			}
		}
	})
}

func TestLedgerEmptyTrip(t *testing.T) {
	baseURL, token := setupTestServer(t)
	trip := createTrip(t, baseURL, token, "Quiet", []string{"Alice", "Bob"})

	resp := doJSON(t, http.MethodGet, baseURL+"/trips/"+trip.ID+"/balances", token, nil)
	var balances []balanceBody
	resp.decode(t, &balances)
	if len(balances) != 2 {
		t.Fatalf("balances count = %d, want 2", len(balances))
	}
	for _, entry := range balances {
		if entry.Balance != 0 {
			t.Errorf("%s balance = %v, want 0", entry.Name, entry.Balance)
		}
	}

	resp = doJSON(t, http.MethodGet, baseURL+"/trips/"+trip.ID+"/settlements", token, nil)
	var settlements []settlementBody
	resp.decode(t, &settlements)
	if len(settlements) != 0 {
		t.Errorf("settlements = %d, want 0 for a trip with no expenses", len(settlements))
	}
}

func TestPaymentValidation(t *testing.T) {
	baseURL, token := setupTestServer(t)
	trip := createTrip(t, baseURL, token, "Payments", []string{"Alice", "Bob"})
	alice := trip.Persons[0].ID
	bob := trip.Persons[1].ID

	tests := []struct {
		name string
		body map[string]interface{}
	}{
		{
			name: "non-positive amount",
			body: map[string]interface{}{"from": alice, "to": bob, "amount": 0.0},
		},
		{
			name: "same person",
			body: map[string]interface{}{"from": alice, "to": alice, "amount": 5.0},
		},
		{
			name: "unknown member",
			body: map[string]interface{}{"from": "ghost", "to": bob, "amount": 5.0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := doJSON(t, http.MethodPost, baseURL+"/trips/"+trip.ID+"/payments", token, tt.body)
			if resp.status != http.StatusBadRequest {
				t.Errorf("status = %d, want 400, body %s", resp.status, resp.raw)
			}
		})
	}

	t.Run("list and delete", func(t *testing.T) {
		resp := doJSON(t, http.MethodPost, baseURL+"/trips/"+trip.ID+"/payments", token, map[string]interface{}{
			"from": alice, "to": bob, "amount": 12.34,
		})
		if resp.status != http.StatusCreated {
			t.Fatalf("create payment status = %d", resp.status)
		}
		var payment struct {
			ID string `json:"id"`
		}
		resp.decode(t, &payment)

		resp = doJSON(t, http.MethodGet, baseURL+"/trips/"+trip.ID+"/payments", token, nil)
		var payments []struct {
			ID     string  `json:"id"`
			Amount float64 `json:"amount"`
		}
		resp.decode(t, &payments)
		if len(payments) != 1 || payments[0].Amount != 12.34 {
			t.Errorf("payments = %+v, want one of 12.34", payments)
		}

		resp = doJSON(t, http.MethodDelete, baseURL+"/trips/"+trip.ID+"/payments/"+payment.ID, token, nil)
		if resp.status != http.StatusNoContent {
			t.Errorf("delete payment status = %d, want 204", resp.status)
		}

		resp = doJSON(t, http.MethodDelete, baseURL+"/trips/"+trip.ID+"/payments/"+payment.ID, token, nil)
		if resp.status != http.StatusNotFound {
			t.Errorf("second delete status = %d, want 404", resp.status)
		}
	})
}
