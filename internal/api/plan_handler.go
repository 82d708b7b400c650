package api

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/unalkalkan/SceneForge/internal/apperr"
	"github.com/unalkalkan/SceneForge/internal/production"
	"github.com/unalkalkan/SceneForge/pkg/types"
)

// GeneratePlan handles POST /api/v1/plans/generate. The response is an SSE
// stream of chunk events followed by one plan or error event.
func (s *Server) GeneratePlan(c *gin.Context) {
	var req production.PlanRequest
	if !bindJSON(c, &req) {
		return
	}
	// Fail fast with a plain status before the stream starts
	if _, err := s.providers.GetText(req.Provider); err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)

	ctx := c.Request.Context()
	plan, err := s.orchestrator.GeneratePlan(ctx, req, func(chunk string) {
		c.SSEvent("chunk", gin.H{"text": chunk})
		c.Writer.Flush()
	})
	if err != nil {
		c.SSEvent("error", ErrorResponse{Error: apperr.Message(err)})
		c.Writer.Flush()
		return
	}

	// A generated plan is always new. The id the model wrote may belong to a
	// stored plan.
	plan.Project.ID = uuid.NewString()
	if err := s.repo.SavePlan(ctx, plan); err != nil {
		log.Printf("[api] Failed to save generated plan %s: %v", plan.Project.ID, err)
		c.SSEvent("error", ErrorResponse{Error: "plan generated but could not be saved"})
		c.Writer.Flush()
		return
	}

	c.SSEvent("plan", plan)
	c.Writer.Flush()
}

// RewriteText handles POST /api/v1/plans/rewrite
func (s *Server) RewriteText(c *gin.Context) {
	var req production.RewriteRequest
	if !bindJSON(c, &req) {
		return
	}
	text, err := s.orchestrator.RewriteText(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"text": text})
}

// ListPlans handles GET /api/v1/plans
func (s *Server) ListPlans(c *gin.Context) {
	plans, err := s.repo.ListPlans(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"plans": plans, "count": len(plans)})
}

// GetPlan handles GET /api/v1/plans/:id
func (s *Server) GetPlan(c *gin.Context) {
	plan, err := s.repo.GetPlan(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, plan)
}

// PutPlan handles PUT /api/v1/plans/:id. It stores an edited plan as is.
func (s *Server) PutPlan(c *gin.Context) {
	var plan types.ContentPlan
	if !bindJSON(c, &plan) {
		return
	}
	id := c.Param("id")
	if plan.Project.ID == "" {
		plan.Project.ID = id
	}
	if plan.Project.ID != id {
		respondError(c, apperr.Validation("plan id does not match the URL"))
		return
	}

	lock := s.planLock(id)
	lock.Lock()
	err := s.repo.SavePlan(c.Request.Context(), &plan)
	lock.Unlock()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, &plan)
}

// DeletePlan handles DELETE /api/v1/plans/:id
func (s *Server) DeletePlan(c *gin.Context) {
	id := c.Param("id")
	if err := s.repo.DeletePlan(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	s.dropTracker(id)
	c.Status(http.StatusNoContent)
}
