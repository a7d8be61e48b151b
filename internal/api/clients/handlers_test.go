package clients

// NOTE: Tests cannot use t.Parallel() due to shared package state.

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/courtsidehq/courtside/internal/store"
	"github.com/courtsidehq/courtside/internal/testutil"
)

func setupClientTest(t *testing.T) *store.Queries {
	t.Helper()
	database := testutil.NewTestDB(t)
	queries = database.Queries
	return queries
}

func newClientMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/clients", HandleClientsList)
	mux.HandleFunc("POST /api/v1/clients", HandleClientCreate)
	mux.HandleFunc("GET /api/v1/clients/{id}", HandleClientGet)
	mux.HandleFunc("PUT /api/v1/clients/{id}", HandleClientUpdate)
	mux.HandleFunc("DELETE /api/v1/clients/{id}", HandleClientDelete)
	return mux
}

func postClient(t *testing.T, mux *http.ServeMux, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/clients", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

const validClientBody = `{"first_name": "Ana", "last_name": "Perez", "national_id": "30111222", "email": "ana.perez@example.com", "phone": "11 5550 1234"}`

func TestClientCreate(t *testing.T) {
	setupClientTest(t)
	mux := newClientMux()

	rec := postClient(t, mux, validClientBody)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var created store.Client
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !created.Active {
		t.Fatalf("expected new client to be active")
	}
	if created.Phone != "+541155501234" {
		t.Fatalf("expected E.164 phone, got %q", created.Phone)
	}
}

func TestClientCreate_Validation(t *testing.T) {
	setupClientTest(t)
	mux := newClientMux()

	cases := []struct {
		name  string
		body  string
		field string
	}{
		{"missing first name", `{"last_name": "Perez", "national_id": "30111222", "email": "a@b.com"}`, "first_name"},
		{"short national id", `{"first_name": "Ana", "last_name": "Perez", "national_id": "123456", "email": "a@b.com"}`, "national_id"},
		{"long national id", `{"first_name": "Ana", "last_name": "Perez", "national_id": "123456789", "email": "a@b.com"}`, "national_id"},
		{"all zero national id", `{"first_name": "Ana", "last_name": "Perez", "national_id": "00000000", "email": "a@b.com"}`, "national_id"},
		{"non digit national id", `{"first_name": "Ana", "last_name": "Perez", "national_id": "3011122a", "email": "a@b.com"}`, "national_id"},
		{"bad email", `{"first_name": "Ana", "last_name": "Perez", "national_id": "30111222", "email": "not-an-email"}`, "email"},
		{"bad phone", `{"first_name": "Ana", "last_name": "Perez", "national_id": "30111222", "email": "a@b.com", "phone": "123"}`, "phone"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := postClient(t, mux, tc.body)
			if rec.Code != http.StatusUnprocessableEntity {
				t.Fatalf("expected 422, got %d: %s", rec.Code, rec.Body.String())
			}
			var resp struct {
				Field string `json:"field"`
			}
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("decode response: %v", err)
			}
			if resp.Field != tc.field {
				t.Fatalf("expected field %q, got %q", tc.field, resp.Field)
			}
		})
	}
}

func TestClientCreate_DuplicateNationalID(t *testing.T) {
	setupClientTest(t)
	mux := newClientMux()

	if rec := postClient(t, mux, validClientBody); rec.Code != http.StatusCreated {
		t.Fatalf("first create: status %d", rec.Code)
	}
	rec := postClient(t, mux, validClientBody)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 for duplicate national id, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestClientUpdate_Deactivate(t *testing.T) {
	setupClientTest(t)
	mux := newClientMux()

	rec := postClient(t, mux, validClientBody)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: status %d", rec.Code)
	}
	var created store.Client
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	body := `{"first_name": "Ana", "last_name": "Perez", "national_id": "30111222", "email": "ana.perez@example.com", "active": false}`
	req := httptest.NewRequest(http.MethodPut, fmt.Sprintf("/api/v1/clients/%d", created.ID), strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var updated store.Client
	if err := json.Unmarshal(rec.Body.Bytes(), &updated); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if updated.Active {
		t.Fatalf("expected client deactivated")
	}
}

func TestClientDelete_Unknown(t *testing.T) {
	setupClientTest(t)
	mux := newClientMux()

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/clients/999", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}
