package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/ropable/spacetraders-api/internal/domain/behavior"
)

// GormContinuationRepository implements ContinuationRepository using GORM
type GormContinuationRepository struct {
	db *gorm.DB
}

// NewGormContinuationRepository creates a new GORM continuation repository
func NewGormContinuationRepository(db *gorm.DB) *GormContinuationRepository {
	return &GormContinuationRepository{db: db}
}

// Save persists a continuation (insert or update)
func (r *GormContinuationRepository) Save(ctx context.Context, c *behavior.Continuation) error {
	model, err := continuationToModel(c)
	if err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Save(model).Error; err != nil {
		return fmt.Errorf("failed to save continuation: %w", err)
	}
	return nil
}

// FindByID retrieves a continuation, or nil when unknown
func (r *GormContinuationRepository) FindByID(ctx context.Context, id string) (*behavior.Continuation, error) {
	var model ContinuationModel
	result := r.db.WithContext(ctx).Where("id = ?", id).First(&model)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find continuation: %w", result.Error)
	}
	return modelToContinuation(&model)
}

// ListPending retrieves every pending continuation, earliest due first
func (r *GormContinuationRepository) ListPending(ctx context.Context) ([]*behavior.Continuation, error) {
	var models []ContinuationModel
	if err := r.db.WithContext(ctx).
		Where("status = ?", string(behavior.StatusPending)).
		Order("due_at, id").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list pending continuations: %w", err)
	}
	return modelsToContinuations(models)
}

// ListPendingByShip retrieves the pending continuations of one ship, earliest due first
func (r *GormContinuationRepository) ListPendingByShip(ctx context.Context, shipSymbol string) ([]*behavior.Continuation, error) {
	var models []ContinuationModel
	if err := r.db.WithContext(ctx).
		Where("ship_symbol = ? AND status = ?", shipSymbol, string(behavior.StatusPending)).
		Order("due_at, id").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list pending continuations: %w", err)
	}
	return modelsToContinuations(models)
}

// UpdateStatus moves a continuation to status, recording lastError
func (r *GormContinuationRepository) UpdateStatus(ctx context.Context, id string, status behavior.Status, lastError string) error {
	result := r.db.WithContext(ctx).
		Model(&ContinuationModel{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     string(status),
			"last_error": lastError,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update continuation: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("continuation not found: %s", id)
	}
	return nil
}

// CancelByShip cancels every pending continuation of a ship and returns them
func (r *GormContinuationRepository) CancelByShip(ctx context.Context, shipSymbol string) ([]*behavior.Continuation, error) {
	var cancelled []*behavior.Continuation
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var models []ContinuationModel
		if err := tx.
			Where("ship_symbol = ? AND status = ?", shipSymbol, string(behavior.StatusPending)).
			Order("due_at, id").
			Find(&models).Error; err != nil {
			return fmt.Errorf("failed to list pending continuations: %w", err)
		}
		if len(models) == 0 {
			return nil
		}

		ids := make([]string, 0, len(models))
		for i := range models {
			ids = append(ids, models[i].ID)
			models[i].Status = string(behavior.StatusCancelled)
		}
		if err := tx.Model(&ContinuationModel{}).
			Where("id IN ?", ids).
			Update("status", string(behavior.StatusCancelled)).Error; err != nil {
			return fmt.Errorf("failed to cancel continuations: %w", err)
		}

		var err error
		cancelled, err = modelsToContinuations(models)
		return err
	})
	if err != nil {
		return nil, err
	}
	return cancelled, nil
}

func modelsToContinuations(models []ContinuationModel) ([]*behavior.Continuation, error) {
	continuations := make([]*behavior.Continuation, 0, len(models))
	for i := range models {
		c, err := modelToContinuation(&models[i])
		if err != nil {
			return nil, err
		}
		continuations = append(continuations, c)
	}
	return continuations, nil
}

func continuationToModel(c *behavior.Continuation) (*ContinuationModel, error) {
	params := c.Params
	if params == nil {
		params = map[string]string{}
	}
	paramsJSON, err := json.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal continuation params: %w", err)
	}
	return &ContinuationModel{
		ID:         c.ID,
		ShipSymbol: c.ShipSymbol,
		Action:     string(c.Action),
		Params:     string(paramsJSON),
		DueAt:      c.DueAt.UTC(),
		Status:     string(c.Status),
		CreatedAt:  c.CreatedAt.UTC(),
		LastError:  c.LastError,
	}, nil
}

func modelToContinuation(model *ContinuationModel) (*behavior.Continuation, error) {
	action, err := behavior.ParseAction(model.Action)
	if err != nil {
		return nil, err
	}
	params := map[string]string{}
	if model.Params != "" {
		if err := json.Unmarshal([]byte(model.Params), &params); err != nil {
			return nil, fmt.Errorf("failed to unmarshal continuation params: %w", err)
		}
	}
	return &behavior.Continuation{
		ID:         model.ID,
		ShipSymbol: model.ShipSymbol,
		Action:     action,
		Params:     params,
		DueAt:      model.DueAt.UTC(),
		Status:     behavior.Status(model.Status),
		CreatedAt:  model.CreatedAt.UTC(),
		LastError:  model.LastError,
	}, nil
}

var _ behavior.ContinuationRepository = (*GormContinuationRepository)(nil)
