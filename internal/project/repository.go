package project

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/unalkalkan/SceneForge/internal/apperr"
	"github.com/unalkalkan/SceneForge/internal/storage"
	"github.com/unalkalkan/SceneForge/pkg/types"
)

// ErrNotFound is returned when no plan is stored under an id
var ErrNotFound = errors.New("plan not found")

// Summary is the listing view of a stored plan
type Summary struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Genre      string `json:"genre,omitempty"`
	SceneCount int    `json:"sceneCount"`
}

// Repository handles plan persistence
type Repository interface {
	// SavePlan stores a plan under its project id, replacing any previous version
	SavePlan(ctx context.Context, plan *types.ContentPlan) error

	// GetPlan retrieves a plan by project id
	GetPlan(ctx context.Context, planID string) (*types.ContentPlan, error)

	// ListPlans returns summaries of all stored plans ordered by id
	ListPlans(ctx context.Context) ([]Summary, error)

	// DeletePlan removes a plan
	DeletePlan(ctx context.Context, planID string) error
}

// StorageRepository implements Repository using a storage adapter
type StorageRepository struct {
	storage storage.Adapter
}

// NewRepository creates a new plan repository
func NewRepository(storageAdapter storage.Adapter) Repository {
	return &StorageRepository{
		storage: storageAdapter,
	}
}

// SavePlan stores a plan under its project id
func (r *StorageRepository) SavePlan(ctx context.Context, plan *types.ContentPlan) error {
	if err := validID(plan.Project.ID); err != nil {
		return err
	}

	data, err := json.Marshal(plan)
	if err != nil {
		return fmt.Errorf("failed to marshal plan: %w", err)
	}

	return r.storage.Put(ctx, planPath(plan.Project.ID), bytes.NewReader(data))
}

// GetPlan retrieves a plan by project id
func (r *StorageRepository) GetPlan(ctx context.Context, planID string) (*types.ContentPlan, error) {
	if err := validID(planID); err != nil {
		return nil, err
	}

	reader, err := r.storage.Get(ctx, planPath(planID))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, planID)
		}
		return nil, fmt.Errorf("failed to get plan: %w", err)
	}
	defer reader.Close()

	var plan types.ContentPlan
	if err := json.NewDecoder(reader).Decode(&plan); err != nil {
		return nil, fmt.Errorf("failed to decode plan: %w", err)
	}

	return &plan, nil
}

// ListPlans returns summaries of all stored plans
func (r *StorageRepository) ListPlans(ctx context.Context) ([]Summary, error) {
	paths, err := r.storage.List(ctx, "plans/")
	if err != nil {
		return nil, fmt.Errorf("failed to list plans: %w", err)
	}

	summaries := make([]Summary, 0, len(paths))
	for _, p := range paths {
		if path.Base(p) != "plan.json" {
			continue
		}

		reader, err := r.storage.Get(ctx, p)
		if err != nil {
			continue // Skip plans that can't be read
		}

		var plan types.ContentPlan
		err = json.NewDecoder(reader).Decode(&plan)
		reader.Close()
		if err != nil {
			continue
		}

		summaries = append(summaries, Summary{
			ID:         plan.Project.ID,
			Title:      plan.Project.Title,
			Genre:      plan.Project.Genre,
			SceneCount: len(plan.Scenes),
		})
	}

	sort.Slice(summaries, func(i, j int) bool { return summaries[i].ID < summaries[j].ID })
	return summaries, nil
}

// DeletePlan removes a plan. Deleting a missing plan is not an error.
func (r *StorageRepository) DeletePlan(ctx context.Context, planID string) error {
	if err := validID(planID); err != nil {
		return err
	}
	if err := r.storage.Delete(ctx, planPath(planID)); err != nil {
		return fmt.Errorf("failed to delete plan: %w", err)
	}
	return nil
}

func planPath(planID string) string {
	return path.Join("plans", planID, "plan.json")
}

func validID(planID string) error {
	if planID == "" || strings.ContainsAny(planID, `/\`) || strings.Contains(planID, "..") {
		return apperr.Validation(fmt.Sprintf("invalid plan id: %q", planID))
	}
	return nil
}
