package handlers

import (
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"testing/fstest"

	"flight-delay-api/config"
	"flight-delay-api/models"
	"flight-delay-api/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []models.PredictionEvent
}

func (p *recordingPublisher) PublishAsync(event models.PredictionEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	airports, err := services.LoadAirportsCSV("../data/airports.csv")
	if err != nil {
		t.Fatalf("load airports: %v", err)
	}
	model, err := services.LoadDelayModel("../data/flight_delay_model.json")
	if err != nil {
		t.Fatalf("load model: %v", err)
	}

	return NewRouter(RouterDeps{
		Airports:  airports,
		Model:     model,
		Publisher: services.NewDisabledPublisher(zap.NewNop()),
		Frontend: fstest.MapFS{
			"index.html": &fstest.MapFile{Data: []byte("<html>frontend</html>")},
		},
		CORS:   config.CORSConfig{AllowedOrigins: "*"},
		Logger: zap.NewNop(),
	})
}

func get(r http.Handler, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	req.Header.Set("Origin", "http://frontend.example")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodePrediction(t *testing.T, w *httptest.ResponseRecorder) models.PredictionResponse {
	t.Helper()
	var resp models.PredictionResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	return resp
}

func TestGetAirportsSortedAndUnique(t *testing.T) {
	r := newTestRouter(t)
	w := get(r, "/airports")

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Access-Control-Allow-Origin = %q, want %q", got, "*")
	}

	var airports []models.Airport
	if err := json.Unmarshal(w.Body.Bytes(), &airports); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(airports) == 0 {
		t.Fatal("expected airports")
	}

	seen := make(map[int]bool)
	for i, a := range airports {
		if seen[a.ID] {
			t.Errorf("duplicate id %d", a.ID)
		}
		seen[a.ID] = true
		if airports[0].Name > a.Name {
			t.Errorf("first name %q should be <= %q", airports[0].Name, a.Name)
		}
		if i > 0 && airports[i-1].Name > a.Name {
			t.Errorf("not sorted at %d: %q > %q", i, airports[i-1].Name, a.Name)
		}
	}
}

func TestGetAirportsJSONShape(t *testing.T) {
	r := newTestRouter(t)
	w := get(r, "/airports")

	var raw []map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &raw); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	for _, key := range []string{"id", "name"} {
		if _, ok := raw[0][key]; !ok {
			t.Errorf("airport object missing %q: %v", key, raw[0])
		}
	}
}

func TestPredictDocumentedExample(t *testing.T) {
	r := newTestRouter(t)
	w := get(r, "/predict?day_of_week=3&airport_id=14771")

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if body := strings.TrimSpace(w.Body.String()); body != `{"delay_probability":0.185,"confidence":0.815}` {
		t.Errorf("body = %s", body)
	}
}

func TestPredictPropertiesForAllValidInputs(t *testing.T) {
	r := newTestRouter(t)

	var airports []models.Airport
	if err := json.Unmarshal(get(r, "/airports").Body.Bytes(), &airports); err != nil {
		t.Fatalf("invalid json: %v", err)
	}

	for day := 1; day <= 7; day++ {
		for _, a := range airports {
			target := "/predict?day_of_week=" + strconv.Itoa(day) + "&airport_id=" + strconv.Itoa(a.ID)
			w := get(r, target)
			if w.Code != http.StatusOK {
				t.Fatalf("%s: status = %d", target, w.Code)
			}
			resp := decodePrediction(t, w)
			if resp.DelayProbability < 0 || resp.DelayProbability > 1 {
				t.Errorf("%s: delay_probability %v out of range", target, resp.DelayProbability)
			}
			if resp.Confidence < 0 || resp.Confidence > 1 {
				t.Errorf("%s: confidence %v out of range", target, resp.Confidence)
			}
			want := math.Max(resp.DelayProbability, 1-resp.DelayProbability)
			if math.Abs(resp.Confidence-want) > 1e-9 {
				t.Errorf("%s: confidence = %v, want %v", target, resp.Confidence, want)
			}
		}
	}
}

func TestPredictIdempotent(t *testing.T) {
	r := newTestRouter(t)
	first := get(r, "/predict?day_of_week=6&airport_id=13930").Body.String()
	for i := 0; i < 20; i++ {
		if got := get(r, "/predict?day_of_week=6&airport_id=13930").Body.String(); got != first {
			t.Fatalf("call %d: body = %s, want %s", i, got, first)
		}
	}
}

func TestPredictRejectsBadInput(t *testing.T) {
	tests := []struct {
		name      string
		query     string
		wantCode  int
		wantError string
	}{
		{"day zero", "day_of_week=0&airport_id=14771", http.StatusBadRequest, "day_of_week must be between 1 and 7"},
		{"day eight", "day_of_week=8&airport_id=14771", http.StatusBadRequest, "day_of_week must be between 1 and 7"},
		{"unknown airport", "day_of_week=3&airport_id=999999999", http.StatusNotFound, "airport_id 999999999 not found"},
		{"missing day", "airport_id=14771", http.StatusBadRequest, "missing required parameter day_of_week"},
		{"missing airport", "day_of_week=3", http.StatusBadRequest, "missing required parameter airport_id"},
		{"empty day", "day_of_week=&airport_id=14771", http.StatusBadRequest, "missing required parameter day_of_week"},
		{"non-integer day", "day_of_week=three&airport_id=14771", http.StatusBadRequest, "day_of_week must be an integer"},
		{"float airport", "day_of_week=3&airport_id=14771.5", http.StatusBadRequest, "airport_id must be an integer"},
		{"overflowing airport", "day_of_week=3&airport_id=99999999999999999999", http.StatusBadRequest, "airport_id is out of range"},
	}
	r := newTestRouter(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := get(r, "/predict?"+tt.query)
			if w.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d (body %s)", w.Code, tt.wantCode, w.Body.String())
			}
			var body map[string]string
			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
				t.Fatalf("invalid json: %v", err)
			}
			if !strings.Contains(body["error"], tt.wantError) {
				t.Errorf("error = %q, want it to contain %q", body["error"], tt.wantError)
			}
		})
	}
}

func TestPredictUnknownAirportsNever200(t *testing.T) {
	r := newTestRouter(t)
	for _, id := range []string{"0", "-1", "1", "14772", "99999", "999999999"} {
		w := get(r, "/predict?day_of_week=1&airport_id="+id)
		if w.Code < 400 || w.Code >= 500 {
			t.Errorf("airport_id=%s: status = %d, want 4xx", id, w.Code)
		}
	}
}

func TestPredictPublishesEvent(t *testing.T) {
	gin.SetMode(gin.TestMode)
	airports, err := services.LoadAirportsCSV("../data/airports.csv")
	if err != nil {
		t.Fatalf("load airports: %v", err)
	}
	model, err := services.LoadDelayModel("../data/flight_delay_model.json")
	if err != nil {
		t.Fatalf("load model: %v", err)
	}
	pub := &recordingPublisher{}
	h := NewPredictionHandler(airports, model, pub)

	r := gin.New()
	r.GET("/predict", h.GetPrediction)
	get(r, "/predict?day_of_week=3&airport_id=14771")
	get(r, "/predict?day_of_week=3&airport_id=999999999")

	if len(pub.events) != 1 {
		t.Fatalf("published %d events, want 1", len(pub.events))
	}
	ev := pub.events[0]
	if ev.AirportName != "San Francisco International" || ev.DayOfWeek != 3 {
		t.Errorf("unexpected event: %+v", ev)
	}
	if ev.DelayProbability != 0.185 || ev.Confidence != 0.815 {
		t.Errorf("event probabilities = (%v, %v)", ev.DelayProbability, ev.Confidence)
	}
	if ev.ModelVersion != model.Version() {
		t.Errorf("ModelVersion = %q, want %q", ev.ModelVersion, model.Version())
	}
}

func TestRootAndHealth(t *testing.T) {
	r := newTestRouter(t)

	w := get(r, "/")
	if w.Code != http.StatusOK {
		t.Fatalf("GET / status = %d", w.Code)
	}
	var info struct {
		Message   string            `json:"message"`
		Endpoints map[string]string `json:"endpoints"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &info); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if _, ok := info.Endpoints["/predict"]; !ok {
		t.Errorf("endpoints missing /predict: %v", info.Endpoints)
	}

	w = get(r, "/health")
	var health map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &health); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if health["status"] != "UP" {
		t.Errorf("status = %v, want UP", health["status"])
	}
	if health["airports"].(float64) <= 0 {
		t.Errorf("airports = %v", health["airports"])
	}
}

func TestMetricsEndpoint(t *testing.T) {
	r := newTestRouter(t)
	get(r, "/predict?day_of_week=3&airport_id=14771")

	w := get(r, "/metrics")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "flightdelay_predictions_served_total") {
		t.Error("metrics missing flightdelay_predictions_served_total")
	}
}

func TestFrontendServed(t *testing.T) {
	r := newTestRouter(t)
	w := get(r, "/app/")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "frontend") {
		t.Errorf("unexpected body: %s", w.Body.String())
	}
}

func TestLiveFeedUnavailableWithoutRedis(t *testing.T) {
	r := newTestRouter(t)
	w := get(r, "/ws/predictions")
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want %d", w.Code, http.StatusServiceUnavailable)
	}
}

func TestUnknownRoute(t *testing.T) {
	r := newTestRouter(t)
	if w := get(r, "/nope"); w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}
