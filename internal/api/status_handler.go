package api

import (
	"net/http"
	"sort"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/unalkalkan/SceneForge/internal/status"
)

// PlanStatus is the unit status snapshot of one plan
type PlanStatus struct {
	PlanID string         `json:"planId"`
	Units  []status.Entry `json:"units"`
}

// Status handles GET /api/v1/status. ?plan= narrows the snapshot to one plan.
func (s *Server) Status(c *gin.Context) {
	if planID := c.Query("plan"); planID != "" {
		units := []status.Entry{}
		if t, ok := s.lookupTracker(planID); ok {
			units = t.Snapshot()
		}
		c.JSON(http.StatusOK, PlanStatus{PlanID: planID, Units: units})
		return
	}

	s.mu.Lock()
	ids := make([]string, 0, len(s.trackers))
	trackers := make(map[string]*status.Tracker, len(s.trackers))
	for id, t := range s.trackers {
		ids = append(ids, id)
		trackers[id] = t
	}
	s.mu.Unlock()

	out := make([]PlanStatus, 0, len(ids))
	sort.Strings(ids)
	for _, id := range ids {
		out = append(out, PlanStatus{PlanID: id, Units: trackers[id].Snapshot()})
	}
	c.JSON(http.StatusOK, gin.H{"plans": out})
}

// Catalog handles GET /api/v1/catalog
func (s *Server) Catalog(c *gin.Context) {
	c.JSON(http.StatusOK, s.providers.Catalog())
}

// ServeAsset handles GET /assets/*key
func (s *Server) ServeAsset(c *gin.Context) {
	key := strings.TrimPrefix(c.Param("key"), "/")
	data, contentType, err := s.publisher.Open(c.Request.Context(), key)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header("Cache-Control", "public, max-age=3600")
	c.Data(http.StatusOK, contentType, data)
}
