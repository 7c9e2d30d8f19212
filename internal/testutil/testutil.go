// Package testutil provides common test utilities and helpers for the content service tests.
package testutil

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/Balaji0706816/nurseproject/internal/api"
	"github.com/Balaji0706816/nurseproject/internal/content"
	"github.com/Balaji0706816/nurseproject/internal/flow"
	"github.com/Balaji0706816/nurseproject/internal/messaging"
	"github.com/Balaji0706816/nurseproject/internal/models"
	"github.com/Balaji0706816/nurseproject/internal/store"
)

// TestEnv bundles an API server with the in-memory dependencies behind it.
type TestEnv struct {
	Server       *api.Server
	Conversation *flow.Conversation
	Store        *store.InMemoryStore
	Messages     *messaging.MockService
}

// NewTestServer creates a test API server over the embedded library, an in-memory store
// and a mock messaging service. Extra options are applied after the defaults.
func NewTestServer(t testing.TB, opts ...flow.Option) *TestEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	lib, err := content.Default()
	if err != nil {
		t.Fatalf("failed to load default library: %v", err)
	}
	st := store.NewInMemoryStore()
	msgs := messaging.NewMockService()

	conv, err := flow.NewConversation(lib, st, append([]flow.Option{flow.WithMessaging(msgs)}, opts...)...)
	if err != nil {
		t.Fatalf("failed to create conversation: %v", err)
	}
	srv, err := api.NewServer(conv)
	if err != nil {
		t.Fatalf("failed to create server: %v", err)
	}
	return &TestEnv{Server: srv, Conversation: conv, Store: st, Messages: msgs}
}

// Do serves req through the router and returns the recorded response.
func (e *TestEnv) Do(req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	e.Server.Router().ServeHTTP(rr, req)
	return rr
}

// AssertHTTPStatus checks the HTTP status code and fails the test if it doesn't match.
func AssertHTTPStatus(t testing.TB, expected, actual int, context string) {
	t.Helper()
	if actual != expected {
		t.Errorf("%s: expected status %d, got %d", context, expected, actual)
	}
}

// AssertJSONResponse decodes the envelope and validates its status field.
func AssertJSONResponse(t testing.TB, rr *httptest.ResponseRecorder, expectedStatus models.APIStatus) map[string]interface{} {
	t.Helper()
	var response map[string]interface{}
	if err := json.NewDecoder(rr.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode JSON response: %v", err)
	}

	if status, ok := response["status"].(string); ok {
		if status != string(expectedStatus) {
			t.Errorf("expected status '%s', got '%s'", expectedStatus, status)
		}
	} else {
		t.Error("response missing or invalid 'status' field")
	}

	return response
}

// DecodeResult decodes the envelope's result field into target.
func DecodeResult(t testing.TB, rr *httptest.ResponseRecorder, target interface{}) {
	t.Helper()
	var envelope struct {
		Result json.RawMessage `json:"result"`
	}
	MustUnmarshalJSON(t, rr.Body.Bytes(), &envelope)
	MustUnmarshalJSON(t, envelope.Result, target)
}

// CreateHTTPRequest creates an HTTP request with optional JSON body for testing.
// A string or []byte body is sent as-is.
func CreateHTTPRequest(t testing.TB, method, url string, body interface{}) *http.Request {
	t.Helper()
	var reqBody *bytes.Buffer
	switch b := body.(type) {
	case nil:
		reqBody = bytes.NewBuffer(nil)
	case string:
		reqBody = bytes.NewBufferString(b)
	case []byte:
		reqBody = bytes.NewBuffer(b)
	default:
		reqBody = bytes.NewBuffer(MustMarshalJSON(t, body))
	}

	req, err := http.NewRequest(method, url, reqBody)
	if err != nil {
		t.Fatalf("failed to create HTTP request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req
}

// SeedCheckIns saves check-ins into the store and fails the test on error.
func SeedCheckIns(t testing.TB, st store.Store, checkIns ...models.CheckIn) {
	t.Helper()
	for _, c := range checkIns {
		if err := st.SaveCheckIn(t.Context(), c); err != nil {
			t.Fatalf("failed to seed check-in %s/%s: %v", c.ParticipantID, c.Date, err)
		}
	}
}

// MustMarshalJSON marshals an object to JSON and fails test on error.
func MustMarshalJSON(t testing.TB, v interface{}) []byte {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("failed to marshal JSON: %v", err)
	}
	return data
}

// MustUnmarshalJSON unmarshals JSON data into target and fails test on error.
func MustUnmarshalJSON(t testing.TB, data []byte, target interface{}) {
	t.Helper()
	if err := json.Unmarshal(data, target); err != nil {
		t.Fatalf("failed to unmarshal JSON: %v", err)
	}
}
