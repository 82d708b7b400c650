package api

import (
	"context"
	"errors"
	"log"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"

	"github.com/unalkalkan/SceneForge/internal/apperr"
	"github.com/unalkalkan/SceneForge/internal/assets"
	"github.com/unalkalkan/SceneForge/internal/production"
	"github.com/unalkalkan/SceneForge/internal/project"
	"github.com/unalkalkan/SceneForge/internal/provider"
	"github.com/unalkalkan/SceneForge/internal/status"
	"github.com/unalkalkan/SceneForge/pkg/types"
)

// Server exposes plan generation and per-scene production over HTTP
type Server struct {
	orchestrator *production.Orchestrator
	providers    *provider.Registry
	repo         project.Repository
	publisher    assets.Publisher

	mu       sync.Mutex
	trackers map[string]*status.Tracker
	locks    map[string]*sync.Mutex
}

// NewServer wires the handlers to their dependencies
func NewServer(orchestrator *production.Orchestrator, providers *provider.Registry, repo project.Repository, publisher assets.Publisher) *Server {
	return &Server{
		orchestrator: orchestrator,
		providers:    providers,
		repo:         repo,
		publisher:    publisher,
		trackers:     make(map[string]*status.Tracker),
		locks:        make(map[string]*sync.Mutex),
	}
}

// Routes mounts the API and asset routes on r
func (s *Server) Routes(r gin.IRouter) {
	r.GET("/assets/*key", s.ServeAsset)

	v1 := r.Group("/api/v1")
	{
		v1.POST("/plans/generate", s.GeneratePlan)
		v1.POST("/plans/rewrite", s.RewriteText)
		v1.GET("/plans", s.ListPlans)
		v1.GET("/plans/:id", s.GetPlan)
		v1.PUT("/plans/:id", s.PutPlan)
		v1.DELETE("/plans/:id", s.DeletePlan)

		v1.POST("/plans/:id/scenes/:sceneID/image", s.GenerateImage)
		v1.POST("/plans/:id/scenes/:sceneID/video", s.GenerateVideo)
		v1.POST("/plans/:id/scenes/:sceneID/narration", s.GenerateNarration)
		v1.POST("/plans/:id/scenes/:sceneID/dialogue/:index", s.GenerateDialogue)

		v1.POST("/plans/:id/batch/images", s.BatchImages)
		v1.POST("/plans/:id/batch/videos", s.BatchVideos)
		v1.POST("/plans/:id/batch/audio", s.BatchAudio)

		v1.GET("/status", s.Status)
		v1.GET("/catalog", s.Catalog)
		v1.GET("/voices", s.ListVoices)
	}
}

// tracker returns the status tracker of a plan, creating it on first use
func (s *Server) tracker(planID string) *status.Tracker {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.trackers[planID]
	if !ok {
		t = status.NewTracker()
		s.trackers[planID] = t
	}
	return t
}

// lookupTracker returns the tracker of a plan without creating one
func (s *Server) lookupTracker(planID string) (*status.Tracker, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.trackers[planID]
	return t, ok
}

func (s *Server) dropTracker(planID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.trackers, planID)
}

// planLock serializes read-modify-write cycles on one stored plan
func (s *Server) planLock(planID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[planID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[planID] = l
	}
	return l
}

// writeBack applies generated URLs to the latest stored version of a plan.
// Generation runs on a copy, so concurrent units on the same plan do not
// overwrite each other. Results that no longer fit the stored plan are
// returned as dropped. Every unit that is not saved is marked failed.
func (s *Server) writeBack(ctx context.Context, planID string, results []production.UnitResult) (*types.ContentPlan, []production.UnitResult, error) {
	tracker := s.tracker(planID)
	lock := s.planLock(planID)
	lock.Lock()
	defer lock.Unlock()

	latest, err := s.repo.GetPlan(ctx, planID)
	if err != nil {
		failUnits(tracker, results, err)
		return nil, nil, err
	}

	applied := make([]production.UnitResult, 0, len(results))
	var dropped []production.UnitResult
	for _, r := range results {
		if err := production.Apply(latest, r.Key, r.URL); err != nil {
			log.Printf("[api] Dropping result for %s: %v", r.Key, err)
			msg := "plan changed during generation: " + apperr.Message(err)
			tracker.Fail(r.Key, msg)
			dropped = append(dropped, production.UnitResult{Key: r.Key, Error: msg})
			continue
		}
		applied = append(applied, r)
	}

	if err := s.repo.SavePlan(ctx, latest); err != nil {
		failUnits(tracker, applied, err)
		return nil, nil, err
	}
	return latest, dropped, nil
}

func failUnits(tracker *status.Tracker, results []production.UnitResult, err error) {
	msg := "failed to save result: " + apperr.Message(err)
	for _, r := range results {
		tracker.Fail(r.Key, msg)
	}
}

// ErrorResponse is the body of every failed API call
type ErrorResponse struct {
	Error string `json:"error"`
}

// respondError sends an error response with the status its kind maps to
func respondError(c *gin.Context, err error) {
	code := apperr.HTTPStatus(err)
	switch {
	case errors.Is(err, project.ErrNotFound), errors.Is(err, assets.ErrNotFound):
		code = http.StatusNotFound
	case code == http.StatusInternalServerError:
		log.Printf("[api] %s %s failed: %v", c.Request.Method, c.Request.URL.Path, err)
	}
	c.AbortWithStatusJSON(code, ErrorResponse{Error: apperr.Message(err)})
}

func bindJSON(c *gin.Context, out any) bool {
	if err := c.ShouldBindJSON(out); err != nil {
		respondError(c, apperr.Validation("invalid request body: "+err.Error()))
		return false
	}
	return true
}
