package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/signalsfoundry/asteroid-defense-simulator/internal/logging"
	"github.com/signalsfoundry/asteroid-defense-simulator/internal/mission"
	"github.com/signalsfoundry/asteroid-defense-simulator/internal/store"
	"github.com/signalsfoundry/asteroid-defense-simulator/internal/stream"
	"github.com/signalsfoundry/asteroid-defense-simulator/kb"
	"github.com/signalsfoundry/asteroid-defense-simulator/model"
)

// Server exposes the mission simulation over HTTP: catalog reads, custom
// asteroid CRUD, mission launch/inspection, the websocket stream, and the
// Prometheus scrape endpoint.
type Server struct {
	catalog *kb.Catalog
	store   store.AsteroidStore
	runner  *mission.Runner
	hub     *stream.Hub
	metrics http.Handler
	log     logging.Logger
}

// NewServer wires the handler dependencies. metrics may be nil to skip the
// scrape endpoint.
func NewServer(catalog *kb.Catalog, st store.AsteroidStore, runner *mission.Runner, hub *stream.Hub, metrics http.Handler, log logging.Logger) *Server {
	if log == nil {
		log = logging.Noop()
	}
	return &Server{
		catalog: catalog,
		store:   st,
		runner:  runner,
		hub:     hub,
		metrics: metrics,
		log:     log,
	}
}

// Router builds the gin engine with all routes attached.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	if s.metrics != nil {
		r.GET("/metrics", gin.WrapH(s.metrics))
	}

	if s.hub != nil {
		r.GET("/ws", func(c *gin.Context) {
			s.hub.ServeWs(c.Writer, c.Request)
		})
	}

	api := r.Group("/api")
	{
		api.GET("/asteroids", s.listAsteroids)
		api.POST("/asteroids", s.createAsteroid)
		api.GET("/asteroids/:id", s.getAsteroid)
		api.DELETE("/asteroids/:id", s.deleteAsteroid)

		api.GET("/strategies", s.listStrategies)

		api.POST("/missions", s.launchMission)
		api.GET("/missions/current", s.currentMission)
		api.GET("/missions/result", s.missionResult)
		api.DELETE("/missions/current", s.abortMission)
	}

	return r
}

// listAsteroids merges the seeded catalog with the user-authored store.
func (s *Server) listAsteroids(c *gin.Context) {
	asteroids := s.catalog.ListAsteroids()
	out := make([]model.Asteroid, 0, len(asteroids))
	for _, a := range asteroids {
		out = append(out, *a)
	}

	if s.store != nil {
		custom, err := s.store.List(c.Request.Context())
		if err != nil {
			s.log.Error(c.Request.Context(), "list custom asteroids", logging.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list asteroids"})
			return
		}
		out = append(out, custom...)
	}

	c.JSON(http.StatusOK, gin.H{"asteroids": out})
}

type createAsteroidRequest struct {
	Name               string  `json:"name" binding:"required"`
	DiameterM          float64 `json:"diameter_m" binding:"required,gt=0"`
	VelocityKmS        float64 `json:"velocity_km_s" binding:"required,gt=0"`
	MassKg             float64 `json:"mass_kg"`
	Author             string  `json:"author"`
	SemiMajorAxisAU    float64 `json:"semi_major_axis_au"`
	Eccentricity       float64 `json:"eccentricity"`
	InclinationDeg     float64 `json:"inclination_deg"`
	OrbitalPeriodYears float64 `json:"orbital_period_years"`
	TorinoScale        int     `json:"torino_scale"`
	PalermoScale       float64 `json:"palermo_scale"`
	ImpactProbability  float64 `json:"impact_probability"`
}

// createAsteroid persists a user-authored asteroid with a fresh UUID.
func (s *Server) createAsteroid(c *gin.Context) {
	var req createAsteroidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	a := model.Asteroid{
		ID:                 uuid.NewString(),
		Name:               req.Name,
		DiameterM:          req.DiameterM,
		VelocityKmS:        req.VelocityKmS,
		MassKg:             req.MassKg,
		CustomAuthor:       req.Author,
		SemiMajorAxisAU:    req.SemiMajorAxisAU,
		Eccentricity:       req.Eccentricity,
		InclinationDeg:     req.InclinationDeg,
		OrbitalPeriodYears: req.OrbitalPeriodYears,
		TorinoScale:        req.TorinoScale,
		PalermoScale:       req.PalermoScale,
		ImpactProbability:  req.ImpactProbability,
	}
	if err := a.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := s.store.Save(c.Request.Context(), a); err != nil {
		s.log.Error(c.Request.Context(), "save asteroid", logging.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save asteroid"})
		return
	}

	c.JSON(http.StatusCreated, a)
}

// getAsteroid checks the catalog first, then the custom store.
func (s *Server) getAsteroid(c *gin.Context) {
	id := c.Param("id")
	if a := s.catalog.GetAsteroid(id); a != nil {
		c.JSON(http.StatusOK, *a)
		return
	}

	if s.store != nil {
		a, err := s.store.Get(c.Request.Context(), id)
		if err == nil {
			c.JSON(http.StatusOK, a)
			return
		}
		if !errors.Is(err, store.ErrNotFound) {
			s.log.Error(c.Request.Context(), "get asteroid", logging.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load asteroid"})
			return
		}
	}

	c.JSON(http.StatusNotFound, gin.H{"error": "asteroid not found"})
}

// deleteAsteroid only removes user-authored asteroids; seeded catalog
// entries are read-only.
func (s *Server) deleteAsteroid(c *gin.Context) {
	id := c.Param("id")
	if s.catalog.GetAsteroid(id) != nil {
		c.JSON(http.StatusForbidden, gin.H{"error": "catalog asteroids cannot be deleted"})
		return
	}

	err := s.store.Delete(c.Request.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "asteroid not found"})
		return
	}
	if err != nil {
		s.log.Error(c.Request.Context(), "delete asteroid", logging.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete asteroid"})
		return
	}

	c.Status(http.StatusNoContent)
}

func (s *Server) listStrategies(c *gin.Context) {
	strategies := s.catalog.ListStrategies()
	out := make([]model.DefenseStrategy, 0, len(strategies))
	for _, st := range strategies {
		out = append(out, *st)
	}
	c.JSON(http.StatusOK, gin.H{"strategies": out})
}

type launchRequest struct {
	AsteroidID   string `json:"asteroid_id" binding:"required"`
	StrategyCode string `json:"strategy_code" binding:"required"`
}

// launchMission starts a run for a known asteroid/strategy pair. A second
// launch while one is active answers 409.
func (s *Server) launchMission(c *gin.Context) {
	var req launchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	asteroid, ok := s.resolveAsteroid(c, req.AsteroidID)
	if !ok {
		return
	}
	strategy := s.catalog.GetStrategy(req.StrategyCode)
	if strategy == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "strategy not found"})
		return
	}

	err := s.runner.Launch(c.Request.Context(), asteroid, *strategy)
	if errors.Is(err, mission.ErrMissionActive) {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"asteroid_id":   asteroid.ID,
		"strategy_code": strategy.Code,
	})
}

func (s *Server) currentMission(c *gin.Context) {
	snap, err := s.runner.Current()
	if errors.Is(err, mission.ErrNoMission) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, snap)
}

func (s *Server) missionResult(c *gin.Context) {
	result, ok := s.runner.LastResult()
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "no completed mission"})
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) abortMission(c *gin.Context) {
	err := s.runner.Abort()
	if errors.Is(err, mission.ErrNoMission) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) resolveAsteroid(c *gin.Context, id string) (model.Asteroid, bool) {
	if a := s.catalog.GetAsteroid(id); a != nil {
		return *a, true
	}
	if s.store != nil {
		a, err := s.store.Get(c.Request.Context(), id)
		if err == nil {
			return a, true
		}
		if !errors.Is(err, store.ErrNotFound) {
			s.log.Error(c.Request.Context(), "resolve asteroid", logging.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load asteroid"})
			return model.Asteroid{}, false
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"error": "asteroid not found"})
	return model.Asteroid{}, false
}
