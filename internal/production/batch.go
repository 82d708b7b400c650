package production

import (
	"context"
	"log"
	"sort"
	"strings"

	"github.com/unalkalkan/SceneForge/internal/apperr"
	"github.com/unalkalkan/SceneForge/internal/status"
	"github.com/unalkalkan/SceneForge/pkg/types"
)

// UnitResult is the outcome of one unit in a batch
type UnitResult struct {
	Key   status.UnitKey `json:"key"`
	URL   string         `json:"url,omitempty"`
	Error string         `json:"error,omitempty"`
}

// BatchReport lists what a batch produced. Failures do not stop a batch.
type BatchReport struct {
	Succeeded []UnitResult `json:"succeeded"`
	Failed    []UnitResult `json:"failed"`
}

func newBatchReport() *BatchReport {
	return &BatchReport{Succeeded: []UnitResult{}, Failed: []UnitResult{}}
}

func (r *BatchReport) record(key status.UnitKey, url string, err error) {
	if err != nil {
		r.Failed = append(r.Failed, UnitResult{Key: key, Error: apperr.Message(err)})
		return
	}
	r.Succeeded = append(r.Succeeded, UnitResult{Key: key, URL: url})
}

// scenesInOrder returns scene ids sorted by Order, ties kept in plan order
func scenesInOrder(p *types.ContentPlan) []string {
	scenes := make([]types.Scene, len(p.Scenes))
	copy(scenes, p.Scenes)
	sort.SliceStable(scenes, func(i, j int) bool {
		return scenes[i].Order < scenes[j].Order
	})
	ids := make([]string, len(scenes))
	for i, s := range scenes {
		ids[i] = s.ID
	}
	return ids
}

// GenerateAllImages generates every scene image one at a time in scene order
func (o *Orchestrator) GenerateAllImages(ctx context.Context, p *types.ContentPlan, sel ImageSelection, creds Credentials, rec status.Recorder) *BatchReport {
	report := newBatchReport()
	for _, id := range scenesInOrder(p) {
		if ctx.Err() != nil {
			break
		}
		url, err := o.GenerateSceneImage(ctx, p, id, sel, creds, rec)
		report.record(status.ImageKey(id), url, err)
	}
	logReport("images", report)
	return report
}

// GenerateAllVideos generates every scene clip one at a time in scene order.
// Scenes without an image fail and the batch moves on.
func (o *Orchestrator) GenerateAllVideos(ctx context.Context, p *types.ContentPlan, sel VideoSelection, creds Credentials, rec status.Recorder) *BatchReport {
	report := newBatchReport()
	for _, id := range scenesInOrder(p) {
		if ctx.Err() != nil {
			break
		}
		url, err := o.GenerateSceneVideo(ctx, p, id, sel, creds, rec)
		report.record(status.VideoKey(id), url, err)
	}
	logReport("videos", report)
	return report
}

// GenerateAllAudio voices every scene's narration and dialogue lines in scene
// order. Empty narration and empty lines are skipped.
func (o *Orchestrator) GenerateAllAudio(ctx context.Context, p *types.ContentPlan, sel VoiceSelection, creds Credentials, rec status.Recorder) *BatchReport {
	report := newBatchReport()
	for _, id := range scenesInOrder(p) {
		scene, err := findScene(p, id)
		if err != nil {
			continue
		}

		if strings.TrimSpace(scene.Narration) != "" {
			if ctx.Err() != nil {
				break
			}
			url, err := o.GenerateNarration(ctx, p, id, sel, creds, rec)
			report.record(status.NarrationKey(id), url, err)
		}

		for i := range scene.Dialogues {
			if strings.TrimSpace(scene.Dialogues[i].Line) == "" {
				continue
			}
			if ctx.Err() != nil {
				break
			}
			url, err := o.GenerateDialogueAudio(ctx, p, id, i, sel, creds, rec)
			report.record(status.DialogueKey(id, i), url, err)
		}
	}
	logReport("audio", report)
	return report
}

func logReport(kind string, r *BatchReport) {
	log.Printf("[production] Batch %s finished: %d succeeded, %d failed", kind, len(r.Succeeded), len(r.Failed))
}
