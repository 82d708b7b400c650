package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/unalkalkan/SceneForge/internal/apperr"
	"github.com/unalkalkan/SceneForge/internal/production"
	"github.com/unalkalkan/SceneForge/internal/status"
	"github.com/unalkalkan/SceneForge/pkg/types"
)

// ImageRequest is the body of image generation calls
type ImageRequest struct {
	production.ImageSelection
	Credentials production.Credentials `json:"credentials"`
}

// VideoRequest is the body of video generation calls
type VideoRequest struct {
	production.VideoSelection
	Credentials production.Credentials `json:"credentials"`
}

// VoiceRequest is the body of narration and dialogue calls
type VoiceRequest struct {
	production.VoiceSelection
	Credentials production.Credentials `json:"credentials"`
}

// UnitResponse reports one generated unit
type UnitResponse struct {
	Key status.UnitKey `json:"key"`
	URL string         `json:"url"`
}

// unitCall runs one generation on a copy of the stored plan and writes the
// result back
func (s *Server) unitCall(c *gin.Context, key status.UnitKey, generate func(ctx context.Context, plan *types.ContentPlan, rec status.Recorder) (string, error)) {
	planID := c.Param("id")
	ctx := c.Request.Context()

	plan, err := s.repo.GetPlan(ctx, planID)
	if err != nil {
		respondError(c, err)
		return
	}

	url, err := generate(ctx, plan, s.tracker(planID))
	if err != nil {
		respondError(c, err)
		return
	}
	_, dropped, err := s.writeBack(ctx, planID, []production.UnitResult{{Key: key, URL: url}})
	if err != nil {
		respondError(c, err)
		return
	}
	if len(dropped) > 0 {
		c.AbortWithStatusJSON(http.StatusConflict, ErrorResponse{Error: dropped[0].Error})
		return
	}
	c.JSON(http.StatusOK, UnitResponse{Key: key, URL: url})
}

// GenerateImage handles POST /api/v1/plans/:id/scenes/:sceneID/image
func (s *Server) GenerateImage(c *gin.Context) {
	var req ImageRequest
	if !bindJSON(c, &req) {
		return
	}
	sceneID := c.Param("sceneID")
	s.unitCall(c, status.ImageKey(sceneID), func(ctx context.Context, plan *types.ContentPlan, rec status.Recorder) (string, error) {
		return s.orchestrator.GenerateSceneImage(ctx, plan, sceneID, req.ImageSelection, req.Credentials, rec)
	})
}

// GenerateVideo handles POST /api/v1/plans/:id/scenes/:sceneID/video
func (s *Server) GenerateVideo(c *gin.Context) {
	var req VideoRequest
	if !bindJSON(c, &req) {
		return
	}
	sceneID := c.Param("sceneID")
	s.unitCall(c, status.VideoKey(sceneID), func(ctx context.Context, plan *types.ContentPlan, rec status.Recorder) (string, error) {
		return s.orchestrator.GenerateSceneVideo(ctx, plan, sceneID, req.VideoSelection, req.Credentials, rec)
	})
}

// GenerateNarration handles POST /api/v1/plans/:id/scenes/:sceneID/narration
func (s *Server) GenerateNarration(c *gin.Context) {
	var req VoiceRequest
	if !bindJSON(c, &req) {
		return
	}
	sceneID := c.Param("sceneID")
	s.unitCall(c, status.NarrationKey(sceneID), func(ctx context.Context, plan *types.ContentPlan, rec status.Recorder) (string, error) {
		return s.orchestrator.GenerateNarration(ctx, plan, sceneID, req.VoiceSelection, req.Credentials, rec)
	})
}

// GenerateDialogue handles POST /api/v1/plans/:id/scenes/:sceneID/dialogue/:index
func (s *Server) GenerateDialogue(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		respondError(c, apperr.Validation("dialogue index must be a number"))
		return
	}
	var req VoiceRequest
	if !bindJSON(c, &req) {
		return
	}
	sceneID := c.Param("sceneID")
	s.unitCall(c, status.DialogueKey(sceneID, index), func(ctx context.Context, plan *types.ContentPlan, rec status.Recorder) (string, error) {
		return s.orchestrator.GenerateDialogueAudio(ctx, plan, sceneID, index, req.VoiceSelection, req.Credentials, rec)
	})
}

// BatchResponse reports a finished batch with the updated plan
type BatchResponse struct {
	Report *production.BatchReport `json:"report"`
	Plan   *types.ContentPlan      `json:"plan"`
}

// batchCall runs a batch on a copy of the stored plan and writes every
// success back
func (s *Server) batchCall(c *gin.Context, run func(plan *types.ContentPlan, rec status.Recorder) *production.BatchReport) {
	planID := c.Param("id")
	ctx := c.Request.Context()

	plan, err := s.repo.GetPlan(ctx, planID)
	if err != nil {
		respondError(c, err)
		return
	}

	report := run(plan, s.tracker(planID))
	updated, dropped, err := s.writeBack(ctx, planID, report.Succeeded)
	if err != nil {
		respondError(c, err)
		return
	}
	if len(dropped) > 0 {
		report.Succeeded = withoutUnits(report.Succeeded, dropped)
		report.Failed = append(report.Failed, dropped...)
	}
	c.JSON(http.StatusOK, BatchResponse{Report: report, Plan: updated})
}

// BatchImages handles POST /api/v1/plans/:id/batch/images
func (s *Server) BatchImages(c *gin.Context) {
	var req ImageRequest
	if !bindJSON(c, &req) {
		return
	}
	s.batchCall(c, func(plan *types.ContentPlan, rec status.Recorder) *production.BatchReport {
		return s.orchestrator.GenerateAllImages(c.Request.Context(), plan, req.ImageSelection, req.Credentials, rec)
	})
}

// BatchVideos handles POST /api/v1/plans/:id/batch/videos
func (s *Server) BatchVideos(c *gin.Context) {
	var req VideoRequest
	if !bindJSON(c, &req) {
		return
	}
	s.batchCall(c, func(plan *types.ContentPlan, rec status.Recorder) *production.BatchReport {
		return s.orchestrator.GenerateAllVideos(c.Request.Context(), plan, req.VideoSelection, req.Credentials, rec)
	})
}

// BatchAudio handles POST /api/v1/plans/:id/batch/audio
func (s *Server) BatchAudio(c *gin.Context) {
	var req VoiceRequest
	if !bindJSON(c, &req) {
		return
	}
	s.batchCall(c, func(plan *types.ContentPlan, rec status.Recorder) *production.BatchReport {
		return s.orchestrator.GenerateAllAudio(c.Request.Context(), plan, req.VoiceSelection, req.Credentials, rec)
	})
}

func withoutUnits(results, drop []production.UnitResult) []production.UnitResult {
	skip := make(map[status.UnitKey]bool, len(drop))
	for _, r := range drop {
		skip[r.Key] = true
	}
	kept := make([]production.UnitResult, 0, len(results))
	for _, r := range results {
		if !skip[r.Key] {
			kept = append(kept, r)
		}
	}
	return kept
}
