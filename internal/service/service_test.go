package service_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/kshitijm/tripledger/internal/auth"
	"github.com/kshitijm/tripledger/internal/router"
	"github.com/kshitijm/tripledger/internal/storage/sqlite"
)

// setupTestServer starts an httptest server over a temp SQLite database and
// returns the base URL plus a token for a freshly registered user.
func setupTestServer(t *testing.T) (baseURL, token string) {
	t.Helper()

	tempDir, err := os.MkdirTemp("", "tripledger-test-*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tempDir) })

	store, err := sqlite.New(filepath.Join(tempDir, "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	jwtManager := auth.NewJWTManager("test-secret-0123456789abcdef", time.Hour)
	server := httptest.NewServer(router.New(store, jwtManager))
	t.Cleanup(server.Close)

	resp := doJSON(t, http.MethodPost, server.URL+"/auth/register", "", map[string]string{
		"email":        "tester@example.com",
		"display_name": "Tester",
		"password":     "correct horse",
	})
	if resp.status != http.StatusCreated {
		t.Fatalf("register status = %d, body %s", resp.status, resp.raw)
	}
	var reg struct {
		Token string `json:"token"`
	}
	resp.decode(t, &reg)

	return server.URL, reg.Token
}

// registerUser registers an additional account and returns its token.
func registerUser(t *testing.T, baseURL, email string) string {
	t.Helper()
	resp := doJSON(t, http.MethodPost, baseURL+"/auth/register", "", map[string]string{
		"email":        email,
		"display_name": "Other",
		"password":     "long enough",
	})
	if resp.status != http.StatusCreated {
		t.Fatalf("register status = %d, body %s", resp.status, resp.raw)
	}
	var reg struct {
		Token string `json:"token"`
	}
	resp.decode(t, &reg)
	return reg.Token
}

type testResponse struct {
	status int
	raw    []byte
}

func (r testResponse) decode(t *testing.T, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(r.raw, v); err != nil {
		t.Fatalf("failed to decode response %s: %v", r.raw, err)
	}
}

// doJSON issues a request with an optional bearer token and JSON body.
func doJSON(t *testing.T, method, url, token string, body interface{}) testResponse {
	t.Helper()

	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read response: %v", err)
	}
	return testResponse{status: resp.StatusCode, raw: raw}
}

type tripBody struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Persons []struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"persons"`
	Expenses []struct {
		ID     string  `json:"id"`
		Title  string  `json:"title"`
		Amount float64 `json:"amount"`
	} `json:"expenses"`
}

// createTrip is a helper that creates a trip with the given member names and
// returns its response body.
func createTrip(t *testing.T, baseURL, token, name string, persons []string) tripBody {
	t.Helper()
	resp := doJSON(t, http.MethodPost, baseURL+"/trips", token, map[string]interface{}{
		"name":    name,
		"persons": persons,
	})
	if resp.status != http.StatusCreated {
		t.Fatalf("create trip status = %d, body %s", resp.status, resp.raw)
	}
	var trip tripBody
	resp.decode(t, &trip)
	return trip
}
