package shared

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

type loginPayload struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required"`
}

type answerPayload struct {
	CompetencyID string `validate:"required"`
	Score        int    `validate:"min=1,max=5"`
}

func TestValidatorStruct(t *testing.T) {
	tests := []struct {
		name    string
		prefix  string
		payload any
		want    []ValidationIssue
	}{
		{
			name:    "valid login",
			payload: loginPayload{Email: "ana@empresa.local", Password: "x"},
		},
		{
			name:    "missing password and bad email",
			payload: loginPayload{Email: "nope"},
			want: []ValidationIssue{
				{Field: "email", Reason: "must be a valid email"},
				{Field: "password", Reason: "is required"},
			},
		},
		{
			name:    "score out of range with prefix",
			prefix:  "answers[0]",
			payload: answerPayload{CompetencyID: "c1", Score: 6},
			want:    []ValidationIssue{{Field: "answers[0].score", Reason: "must be at most 5"}},
		},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			v := NewValidator()
			v.Struct(tc.prefix, tc.payload)
			got := v.Issues()
			if len(got) != len(tc.want) {
				t.Fatalf("issues = %+v, want %+v", got, tc.want)
			}
			for i := range got {
				if got[i] != tc.want[i] {
					t.Fatalf("issue %d = %+v, want %+v", i, got[i], tc.want[i])
				}
			}
		})
	}
}

func TestValidatorDateOrder(t *testing.T) {
	v := NewValidator()
	start, _ := v.Date("startDate", "2026-06-01")
	end, _ := v.Date("endDate", "2026-05-01")
	v.DateOrder("startDate", start, "endDate", end)
	if len(v.Issues()) != 2 {
		t.Fatalf("expected two ordering issues, got %+v", v.Issues())
	}

	ok := NewValidator()
	same := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	ok.DateOrder("startDate", same, "endDate", same)
	if ok.HasIssues() {
		t.Fatal("single-day range should be valid")
	}
}

func TestValidatorRejectWritesEnvelope(t *testing.T) {
	v := NewValidator()
	v.Required("name", " ", "is required")
	rec := httptest.NewRecorder()
	if !v.Reject(rec, "req-1") {
		t.Fatal("expected reject")
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
	var env struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil || env.Error.Code != "validation_error" {
		t.Fatalf("unexpected body %s (%v)", rec.Body.String(), err)
	}
}

func TestParsePagination(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?limit=900&offset=20", nil)
	page := ParsePagination(req, 50, 200)
	if page.Limit != 200 || page.Offset != 20 {
		t.Fatalf("unexpected page %+v", page)
	}
	page = ParsePagination(httptest.NewRequest(http.MethodGet, "/?limit=-1&offset=x", nil), 50, 200)
	if page.Limit != 50 || page.Offset != 0 {
		t.Fatalf("unexpected defaults %+v", page)
	}
}
