package responses

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	pkgerrors "github.com/soukly/soukly-backend/pkg/errors"
)

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) (string, string, any) {
	t.Helper()
	var payload struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
			Details any    `json:"details"`
		} `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return payload.Error.Code, payload.Error.Message, payload.Error.Details
}

func TestWriteSuccess_WrapsDataEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteSuccess(rec, map[string]string{"hello": "world"})

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("unexpected content type %q", ct)
	}
	var payload struct {
		Data map[string]string `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payload.Data["hello"] != "world" {
		t.Fatalf("unexpected payload: %+v", payload)
	}
}

func TestWriteError_ClientFaultKeepsMessageAndDetails(t *testing.T) {
	rec := httptest.NewRecorder()
	err := pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive").
		WithDetails(map[string]any{"field": "quantity"})

	WriteError(context.Background(), nil, rec, err)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	code, message, details := decodeError(t, rec)
	if code != string(pkgerrors.CodeValidation) {
		t.Fatalf("unexpected code %q", code)
	}
	if message != "quantity must be positive" {
		t.Fatalf("unexpected message %q", message)
	}
	if details == nil {
		t.Fatalf("expected details to survive")
	}
}

func TestWriteError_InternalHidesMessage(t *testing.T) {
	rec := httptest.NewRecorder()
	err := pkgerrors.New(pkgerrors.CodeInternal, "pg connection pool exhausted on node 3")

	WriteError(context.Background(), nil, rec, err)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	_, message, _ := decodeError(t, rec)
	if message != "internal server error" {
		t.Fatalf("internal detail leaked: %q", message)
	}
}

func TestWriteError_UntypedErrorBecomesInternal(t *testing.T) {
	rec := httptest.NewRecorder()

	WriteError(context.Background(), nil, rec, errors.New("boom"))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	code, _, _ := decodeError(t, rec)
	if code != string(pkgerrors.CodeInternal) {
		t.Fatalf("unexpected code %q", code)
	}
}

func TestWriteError_StockExceededCarriesDetails(t *testing.T) {
	rec := httptest.NewRecorder()
	err := pkgerrors.New(pkgerrors.CodeStockExceeded, "requested quantity exceeds stock").
		WithDetails(map[string]any{"requested": 5, "stock": 2})

	WriteError(context.Background(), nil, rec, err)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
	_, _, details := decodeError(t, rec)
	fields, ok := details.(map[string]any)
	if !ok {
		t.Fatalf("expected details map, got %T", details)
	}
	if fields["stock"] != float64(2) {
		t.Fatalf("unexpected details: %+v", fields)
	}
}
