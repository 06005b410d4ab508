package server

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/orbitwatch/orbitgraph/internal/cache"
	"github.com/orbitwatch/orbitgraph/internal/config"
	"github.com/orbitwatch/orbitgraph/internal/core"
	"github.com/orbitwatch/orbitgraph/internal/core/merge"
	"github.com/orbitwatch/orbitgraph/internal/core/model"
	"github.com/orbitwatch/orbitgraph/internal/core/query"
	"github.com/orbitwatch/orbitgraph/internal/driver"
	"github.com/orbitwatch/orbitgraph/internal/logger"
)

type Server struct {
	Engine *core.Engine
	Query  *query.Service
	Cache  *cache.Cache
	Config *config.Config
	Log    *logger.Logger
}

func NewServer(engine *core.Engine, svc *query.Service, responseCache *cache.Cache, cfg *config.Config, log *logger.Logger) *Server {
	return &Server{
		Engine: engine,
		Query:  svc,
		Cache:  responseCache,
		Config: cfg,
		Log:    log.With("component", "server"),
	}
}

func (s *Server) SetupRouter() *gin.Engine {
	switch s.Config.Server.Mode {
	case "release", "prod", "production":
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())

	corsCfg := cors.DefaultConfig()
	if len(s.Config.Server.AllowedOrigins) > 0 {
		corsCfg.AllowOrigins = s.Config.Server.AllowedOrigins
	} else {
		corsCfg.AllowAllOrigins = true
	}
	corsCfg.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	r.Use(cors.New(corsCfg))

	r.GET("/health", s.Health)

	api := r.Group("/api")
	{
		api.GET("/satellites", s.SearchSatellites)
		api.GET("/satellites/:identifier", s.GetSatellite)
		api.POST("/satellites/:identifier/sources/:source", s.MergeSource)
		api.GET("/filters", s.FilterOptions)

		api.GET("/graphs/stats", s.GraphStats)
		api.GET("/graphs/:type", s.QueryGraph)

		api.POST("/admin/rebuild", s.Rebuild)
	}

	return r
}

// respond wraps every payload in the stable envelope.
func respond(c *gin.Context, status int, data interface{}, message string) {
	body := model.Envelope{
		Data:        data,
		GeneratedAt: time.Now().UTC(),
	}
	if message != "" {
		body.Message = message
	}
	c.JSON(status, body)
}

func (s *Server) fail(c *gin.Context, err error) {
	var verr *merge.ValidationError
	switch {
	case errors.As(err, &verr):
		respond(c, http.StatusBadRequest, nil, verr.Error())
	case errors.Is(err, driver.ErrUnavailable):
		s.Log.Error("graph store unavailable", "error", err)
		respond(c, http.StatusServiceUnavailable, nil, "graph store unavailable")
	default:
		s.Log.Error("request failed", "path", c.FullPath(), "error", err)
		respond(c, http.StatusInternalServerError, nil, "internal error")
	}
}

func (s *Server) Health(c *gin.Context) {
	respond(c, http.StatusOK, gin.H{"status": "ok"}, "")
}

func (s *Server) SearchSatellites(c *gin.Context) {
	skip, _ := strconv.Atoi(c.DefaultQuery("skip", "0"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))

	sats, err := s.Engine.SearchSatellites(c.Request.Context(), core.SearchOptions{
		Query:          c.Query("q"),
		Country:        c.Query("country"),
		Status:         c.Query("status"),
		OrbitalBand:    c.Query("orbital_band"),
		CongestionRisk: c.Query("congestion_risk"),
		Skip:           skip,
		Limit:          limit,
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"satellites": sats, "count": len(sats)}, "")
}

func (s *Server) GetSatellite(c *gin.Context) {
	sat, err := s.Engine.GetSatellite(c.Request.Context(), c.Param("identifier"))
	if err != nil {
		s.fail(c, err)
		return
	}
	if sat == nil {
		respond(c, http.StatusNotFound, nil, "satellite not found")
		return
	}
	respond(c, http.StatusOK, sat, "")
}

// MergeSource upserts one provider payload for a satellite and returns the
// recomputed canonical record.
func (s *Server) MergeSource(c *gin.Context) {
	var payload model.SourcePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		respond(c, http.StatusBadRequest, nil, "invalid payload")
		return
	}

	sat, err := s.Engine.Merge(c.Request.Context(), c.Param("identifier"), c.Param("source"), payload)
	if err != nil {
		s.fail(c, err)
		return
	}
	respond(c, http.StatusOK, sat, "")
}

func (s *Server) FilterOptions(c *gin.Context) {
	opts, err := s.Engine.FilterOptions(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	respond(c, http.StatusOK, opts, "")
}

func (s *Server) QueryGraph(c *gin.Context) {
	relType, ok := model.ParseRelationshipType(c.Param("type"))
	if !ok {
		respond(c, http.StatusBadRequest, nil, "unknown relationship type")
		return
	}
	selector := c.Query("selector")
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))

	ctx := c.Request.Context()
	cacheKey := "graph:" + string(relType) + ":" + selector + ":" + strconv.Itoa(limit)
	var cached model.GraphView
	if s.Cache.Get(ctx, cacheKey, &cached) {
		respond(c, http.StatusOK, cached, "")
		return
	}

	view, err := s.Query.Query(ctx, relType, selector, limit)
	if err != nil {
		s.fail(c, err)
		return
	}
	s.Cache.Set(ctx, cacheKey, view)
	respond(c, http.StatusOK, view, "")
}

func (s *Server) GraphStats(c *gin.Context) {
	ctx := c.Request.Context()
	var cached map[string]interface{}
	if s.Cache.Get(ctx, "graph:stats", &cached) {
		respond(c, http.StatusOK, cached, "")
		return
	}

	stats, err := s.Query.Stats(ctx)
	if err != nil {
		s.fail(c, err)
		return
	}
	s.Cache.Set(ctx, "graph:stats", stats)
	respond(c, http.StatusOK, stats, "")
}

// Rebuild recomputes one relationship type, or all of them when no type is
// given. Administrative: decoupled from query traffic.
func (s *Server) Rebuild(c *gin.Context) {
	ctx := c.Request.Context()
	typeParam := c.Query("type")

	if typeParam == "" {
		results, err := s.Engine.RebuildAll(ctx)
		if err != nil {
			s.fail(c, err)
			return
		}
		s.Cache.Flush(ctx)
		respond(c, http.StatusOK, gin.H{"rebuilt": results}, "all relationship types rebuilt")
		return
	}

	relType, ok := model.ParseRelationshipType(typeParam)
	if !ok {
		respond(c, http.StatusBadRequest, nil, "unknown relationship type")
		return
	}
	rebuildable := false
	for _, t := range model.RebuildableTypes() {
		if t == relType {
			rebuildable = true
		}
	}
	if !rebuildable {
		respond(c, http.StatusBadRequest, nil, "relationship type has no stored edge collection")
		return
	}
	result, err := s.Engine.Rebuild(ctx, relType)
	if err != nil {
		s.fail(c, err)
		return
	}
	s.Cache.Flush(ctx)
	respond(c, http.StatusOK, result, "")
}
