package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestFailWithDetails(t *testing.T) {
	rec := httptest.NewRecorder()
	FailWithDetails(rec, http.StatusBadRequest, "validation_error", "payload validation failed", map[string]any{"fields": []string{"name"}}, "req-1")

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
	var env struct {
		Success bool `json:"success"`
		Error   struct {
			Code    string         `json:"code"`
			Details map[string]any `json:"details"`
		} `json:"error"`
		RequestID string `json:"requestId"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if env.Success || env.Error.Code != "validation_error" || env.RequestID != "req-1" {
		t.Fatalf("unexpected envelope: %+v", env)
	}
	if _, ok := env.Error.Details["fields"]; !ok {
		t.Fatal("expected details.fields")
	}
}

func TestSuccessOmitsError(t *testing.T) {
	rec := httptest.NewRecorder()
	Success(rec, map[string]int{"done": 2}, "req-2")

	var raw map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &raw); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if _, ok := raw["error"]; ok {
		t.Fatal("success envelope should not carry error")
	}
	if rec.Header().Get("Content-Type") != "application/json" {
		t.Fatalf("content type = %q", rec.Header().Get("Content-Type"))
	}
}

func TestAttachment(t *testing.T) {
	rec := httptest.NewRecorder()
	Attachment(rec, "text/csv", "scores.csv", []byte("a,b\n"))
	if rec.Header().Get("Content-Disposition") != "attachment; filename=scores.csv" {
		t.Fatalf("disposition = %q", rec.Header().Get("Content-Disposition"))
	}
	if rec.Body.String() != "a,b\n" {
		t.Fatalf("body = %q", rec.Body.String())
	}
}
