package project

import (
	"context"
	"errors"
	"testing"

	"github.com/unalkalkan/SceneForge/internal/storage"
	"github.com/unalkalkan/SceneForge/pkg/types"
)

func newTestPlan(id, title string, scenes int) *types.ContentPlan {
	plan := &types.ContentPlan{Project: types.ProjectMeta{ID: id, Title: title, Genre: "drama"}}
	for i := 1; i <= scenes; i++ {
		plan.Scenes = append(plan.Scenes, types.Scene{ID: "scene", Order: i})
	}
	return plan
}

func TestPlanRepository(t *testing.T) {
	tempDir := t.TempDir()
	storageAdapter, err := storage.NewLocalAdapter(tempDir)
	if err != nil {
		t.Fatalf("Failed to create storage adapter: %v", err)
	}
	defer storageAdapter.Close()

	repo := NewRepository(storageAdapter)
	ctx := context.Background()

	t.Run("SaveAndGetPlan", func(t *testing.T) {
		plan := newTestPlan("plan-1", "Lighthouse", 2)
		plan.Scenes[0].ImageURL = "/assets/a.png"

		if err := repo.SavePlan(ctx, plan); err != nil {
			t.Fatalf("Failed to save plan: %v", err)
		}

		retrieved, err := repo.GetPlan(ctx, "plan-1")
		if err != nil {
			t.Fatalf("Failed to get plan: %v", err)
		}

		if retrieved.Project.Title != "Lighthouse" {
			t.Errorf("Plan title mismatch: got %s, want Lighthouse", retrieved.Project.Title)
		}
		if retrieved.Scenes[0].ImageURL != "/assets/a.png" {
			t.Errorf("Scene image not persisted: got %q", retrieved.Scenes[0].ImageURL)
		}
	})

	t.Run("SaveReplaces", func(t *testing.T) {
		plan := newTestPlan("plan-2", "Original", 1)
		if err := repo.SavePlan(ctx, plan); err != nil {
			t.Fatalf("Failed to save plan: %v", err)
		}

		plan.Project.Title = "Updated"
		if err := repo.SavePlan(ctx, plan); err != nil {
			t.Fatalf("Failed to update plan: %v", err)
		}

		retrieved, err := repo.GetPlan(ctx, "plan-2")
		if err != nil {
			t.Fatalf("Failed to get plan: %v", err)
		}
		if retrieved.Project.Title != "Updated" {
			t.Errorf("Title not updated: got %s", retrieved.Project.Title)
		}
	})

	t.Run("ListPlans", func(t *testing.T) {
		summaries, err := repo.ListPlans(ctx)
		if err != nil {
			t.Fatalf("Failed to list plans: %v", err)
		}
		if len(summaries) != 2 {
			t.Fatalf("Expected 2 plans, got %d", len(summaries))
		}
		if summaries[0].ID != "plan-1" || summaries[0].SceneCount != 2 {
			t.Errorf("Unexpected first summary: %+v", summaries[0])
		}
		if summaries[1].ID != "plan-2" {
			t.Errorf("Unexpected second summary: %+v", summaries[1])
		}
	})

	t.Run("DeletePlan", func(t *testing.T) {
		if err := repo.DeletePlan(ctx, "plan-2"); err != nil {
			t.Fatalf("Failed to delete plan: %v", err)
		}
		_, err := repo.GetPlan(ctx, "plan-2")
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("Expected ErrNotFound after delete, got %v", err)
		}
	})

	t.Run("GetMissing", func(t *testing.T) {
		_, err := repo.GetPlan(ctx, "nope")
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
	})

	t.Run("RejectsInvalidID", func(t *testing.T) {
		for _, id := range []string{"", "../etc", "a/b"} {
			if err := repo.SavePlan(ctx, newTestPlan(id, "x", 0)); err == nil {
				t.Errorf("Expected error for id %q", id)
			}
		}
	})
}
