package testutil

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Balaji0706816/nurseproject/internal/models"
)

func TestNewTestServer(t *testing.T) {
	env := NewTestServer(t)
	if env.Server == nil || env.Conversation == nil || env.Store == nil || env.Messages == nil {
		t.Fatal("NewTestServer returned incomplete environment")
	}
	rr := env.Do(CreateHTTPRequest(t, http.MethodGet, "/healthz", nil))
	AssertHTTPStatus(t, http.StatusOK, rr.Code, "healthz")
	AssertJSONResponse(t, rr, models.APIStatusOK)
}

func TestCreateHTTPRequest(t *testing.T) {
	req := CreateHTTPRequest(t, http.MethodPost, "/api/chat", map[string]string{"kind": "turn"})
	if req.Header.Get("Content-Type") != "application/json" {
		t.Errorf("expected JSON content type, got %q", req.Header.Get("Content-Type"))
	}
	body, _ := io.ReadAll(req.Body)
	if string(body) != `{"kind":"turn"}` {
		t.Errorf("unexpected body %s", body)
	}

	raw := CreateHTTPRequest(t, http.MethodPost, "/api/chat", "{not json")
	body, _ = io.ReadAll(raw.Body)
	if string(body) != "{not json" {
		t.Errorf("string body should be sent as-is, got %s", body)
	}

	empty := CreateHTTPRequest(t, http.MethodGet, "/healthz", nil)
	if empty.Header.Get("Content-Type") != "" {
		t.Error("request without body should not set a content type")
	}
}

func TestDecodeResult(t *testing.T) {
	rr := httptest.NewRecorder()
	rr.Body.Write(MustMarshalJSON(t, models.Success(map[string]int{"count": 3})))
	var result map[string]int
	DecodeResult(t, rr, &result)
	if result["count"] != 3 {
		t.Errorf("expected count 3, got %v", result)
	}
}

func TestSeedCheckIns(t *testing.T) {
	env := NewTestServer(t)
	SeedCheckIns(t, env.Store, models.CheckIn{ID: "c1", ParticipantID: "p1", Date: "2026-03-01", CreatedAt: time.Now()})
	if _, err := env.Store.GetCheckIn(t.Context(), "p1", "2026-03-01"); err != nil {
		t.Errorf("seeded check-in missing: %v", err)
	}
}
