package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/signalsfoundry/asteroid-defense-simulator/core"
	"github.com/signalsfoundry/asteroid-defense-simulator/internal/mission"
	"github.com/signalsfoundry/asteroid-defense-simulator/internal/store"
	"github.com/signalsfoundry/asteroid-defense-simulator/kb"
	"github.com/signalsfoundry/asteroid-defense-simulator/model"
)

func testServer(t *testing.T) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	catalog := kb.NewCatalog()
	if err := catalog.AddAsteroid(&model.Asteroid{ID: "apophis", Name: "99942 Apophis", DiameterM: 370, VelocityKmS: 30.7, TorinoScale: 4}); err != nil {
		t.Fatalf("seed asteroid: %v", err)
	}
	if err := catalog.AddStrategy(&model.DefenseStrategy{Code: "kinetic", Name: "Kinetic Impactor", SuccessRate: 0.75}); err != nil {
		t.Fatalf("seed strategy: %v", err)
	}

	cfg := core.DefaultRunConfig()
	cfg.Mission.ApproachDuration = 60 // runs stay active until aborted
	runner := mission.NewRunner(cfg, time.Millisecond)
	t.Cleanup(runner.Shutdown)

	return NewServer(catalog, store.NewMemoryStore(), runner, nil, nil, nil)
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode request: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	s := testServer(t)
	rec := doJSON(t, s.Router(), http.MethodGet, "/healthz", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("healthz status = %d", rec.Code)
	}
}

func TestListAsteroids_MergesCatalogAndStore(t *testing.T) {
	s := testServer(t)
	router := s.Router()

	created := doJSON(t, router, http.MethodPost, "/api/asteroids", map[string]any{
		"name":          "Custom Rock",
		"diameter_m":    80,
		"velocity_km_s": 15,
	})
	if created.Code != http.StatusCreated {
		t.Fatalf("create status = %d body=%s", created.Code, created.Body.String())
	}

	rec := doJSON(t, router, http.MethodGet, "/api/asteroids", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d", rec.Code)
	}
	var payload struct {
		Asteroids []model.Asteroid `json:"asteroids"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode listing: %v", err)
	}
	if len(payload.Asteroids) != 2 {
		t.Fatalf("expected catalog + custom = 2 asteroids, got %d", len(payload.Asteroids))
	}
}

func TestCreateAsteroid_Validation(t *testing.T) {
	s := testServer(t)
	router := s.Router()

	rec := doJSON(t, router, http.MethodPost, "/api/asteroids", map[string]any{
		"name":          "No Velocity",
		"diameter_m":    80,
		"velocity_km_s": 0,
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("zero velocity should 400, got %d", rec.Code)
	}

	rec = doJSON(t, router, http.MethodPost, "/api/asteroids", map[string]any{
		"name":          "Bad Torino",
		"diameter_m":    80,
		"velocity_km_s": 15,
		"torino_scale":  12,
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("torino 12 should 400, got %d", rec.Code)
	}
}

func TestGetAsteroid_FallsThroughCatalogToStore(t *testing.T) {
	s := testServer(t)
	router := s.Router()

	rec := doJSON(t, router, http.MethodGet, "/api/asteroids/apophis", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("catalog lookup status = %d", rec.Code)
	}

	created := doJSON(t, router, http.MethodPost, "/api/asteroids", map[string]any{
		"name":          "Custom Rock",
		"diameter_m":    80,
		"velocity_km_s": 15,
	})
	var a model.Asteroid
	if err := json.Unmarshal(created.Body.Bytes(), &a); err != nil {
		t.Fatalf("decode created asteroid: %v", err)
	}

	rec = doJSON(t, router, http.MethodGet, "/api/asteroids/"+a.ID, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("store lookup status = %d", rec.Code)
	}

	rec = doJSON(t, router, http.MethodGet, "/api/asteroids/missing", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unknown asteroid status = %d, want 404", rec.Code)
	}
}

func TestDeleteAsteroid_ProtectsCatalog(t *testing.T) {
	s := testServer(t)
	router := s.Router()

	rec := doJSON(t, router, http.MethodDelete, "/api/asteroids/apophis", nil)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("catalog delete status = %d, want 403", rec.Code)
	}

	created := doJSON(t, router, http.MethodPost, "/api/asteroids", map[string]any{
		"name":          "Disposable",
		"diameter_m":    80,
		"velocity_km_s": 15,
	})
	var a model.Asteroid
	if err := json.Unmarshal(created.Body.Bytes(), &a); err != nil {
		t.Fatalf("decode created asteroid: %v", err)
	}

	rec = doJSON(t, router, http.MethodDelete, "/api/asteroids/"+a.ID, nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("custom delete status = %d, want 204", rec.Code)
	}
	rec = doJSON(t, router, http.MethodDelete, "/api/asteroids/"+a.ID, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("double delete status = %d, want 404", rec.Code)
	}
}

func TestListStrategies(t *testing.T) {
	s := testServer(t)
	rec := doJSON(t, s.Router(), http.MethodGet, "/api/strategies", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("strategies status = %d", rec.Code)
	}
	var payload struct {
		Strategies []model.DefenseStrategy `json:"strategies"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode strategies: %v", err)
	}
	if len(payload.Strategies) != 1 || payload.Strategies[0].Code != "kinetic" {
		t.Fatalf("unexpected strategies: %+v", payload.Strategies)
	}
}

func TestLaunchMission_Lifecycle(t *testing.T) {
	s := testServer(t)
	router := s.Router()

	rec := doJSON(t, router, http.MethodGet, "/api/missions/current", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("idle current status = %d, want 404", rec.Code)
	}

	rec = doJSON(t, router, http.MethodPost, "/api/missions", map[string]any{
		"asteroid_id":   "missing",
		"strategy_code": "kinetic",
	})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unknown asteroid launch status = %d, want 404", rec.Code)
	}

	rec = doJSON(t, router, http.MethodPost, "/api/missions", map[string]any{
		"asteroid_id":   "apophis",
		"strategy_code": "warp",
	})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unknown strategy launch status = %d, want 404", rec.Code)
	}

	rec = doJSON(t, router, http.MethodPost, "/api/missions", map[string]any{
		"asteroid_id":   "apophis",
		"strategy_code": "kinetic",
	})
	if rec.Code != http.StatusAccepted {
		t.Fatalf("launch status = %d body=%s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, router, http.MethodPost, "/api/missions", map[string]any{
		"asteroid_id":   "apophis",
		"strategy_code": "kinetic",
	})
	if rec.Code != http.StatusConflict {
		t.Fatalf("second launch status = %d, want 409", rec.Code)
	}

	rec = doJSON(t, router, http.MethodDelete, "/api/missions/current", nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("abort status = %d, want 204", rec.Code)
	}
}
