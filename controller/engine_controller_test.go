package controller

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/legalgpt/engine/models"
)

// stubEngine implements services.LegalQueryEngine with canned behavior.
type stubEngine struct {
	response *models.QueryResponse
	err      error
}

func (s *stubEngine) Query(ctx context.Context, req models.QueryRequest) (*models.QueryResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.response, nil
}

func (s *stubEngine) Suggestions(category string) models.SuggestionsResponse {
	return models.SuggestionsResponse{Category: "Consulta Legal General", Suggestions: []string{"¿Cómo constituir mi empresa?"}}
}

func (s *stubEngine) Status(ctx context.Context) models.StatusResponse {
	return models.StatusResponse{Status: "active", VectorstoreActive: true}
}

func newTestRouter(engine *stubEngine) *gin.Engine {
	gin.SetMode(gin.TestMode)
	c := NewEngineController(engine, nil)
	router := gin.New()
	router.POST("/api/v1/query", c.Query)
	router.GET("/api/v1/suggestions", c.Suggestions)
	router.GET("/api/v1/status", c.Status)
	return router
}

func postQuery(t *testing.T, router *gin.Engine, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/query", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	return recorder
}

func TestController_QueryReturnsEngineResponse(t *testing.T) {
	router := newTestRouter(&stubEngine{response: &models.QueryResponse{
		Answer:      "respuesta",
		Confidence:  0.8,
		Category:    "Derecho Laboral",
		Sources:     []models.RetrievalResult{},
		Suggestions: []string{"¿siguiente?"},
	}})

	recorder := postQuery(t, router, `{"question":"¿Qué prestaciones debo pagar?"}`)

	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", recorder.Code, recorder.Body.String())
	}
	var resp models.QueryResponse
	if err := json.Unmarshal(recorder.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response JSON: %v", err)
	}
	if resp.Category != "Derecho Laboral" || resp.Answer != "respuesta" {
		t.Errorf("unexpected response: %+v", resp)
	}
}

func TestController_ErrorMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"validation", &models.ValidationError{Reason: "question is empty"}, http.StatusBadRequest},
		{"retrieval", &models.RetrievalUnavailable{}, http.StatusServiceUnavailable},
		{"synthesis", &models.SynthesisError{}, http.StatusBadGateway},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			router := newTestRouter(&stubEngine{err: tc.err})
			recorder := postQuery(t, router, `{"question":"pregunta"}`)
			if recorder.Code != tc.want {
				t.Errorf("expected %d, got %d", tc.want, recorder.Code)
			}
		})
	}
}

func TestController_ErrorsHideProviderDetails(t *testing.T) {
	router := newTestRouter(&stubEngine{err: &models.SynthesisError{Err: contextualError("api key sk-123 invalid")}})

	recorder := postQuery(t, router, `{"question":"pregunta"}`)

	if strings.Contains(recorder.Body.String(), "sk-123") {
		t.Error("provider error details must not leak to the client")
	}
}

func TestController_MalformedBodyIsBadRequest(t *testing.T) {
	router := newTestRouter(&stubEngine{})

	recorder := postQuery(t, router, `{"question":`)

	if recorder.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", recorder.Code)
	}
}

func TestController_SuggestionsEndpoint(t *testing.T) {
	router := newTestRouter(&stubEngine{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/suggestions?category=desconocida", nil)
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)

	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", recorder.Code)
	}
	var resp models.SuggestionsResponse
	if err := json.Unmarshal(recorder.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response JSON: %v", err)
	}
	if len(resp.Suggestions) == 0 {
		t.Error("expected suggestions")
	}
}

// contextualError is a plain error carrying provider detail for the leak test.
type contextualError string

func (e contextualError) Error() string { return string(e) }
