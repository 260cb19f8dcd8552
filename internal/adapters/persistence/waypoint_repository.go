package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ropable/spacetraders-api/internal/domain/shared"
	"github.com/ropable/spacetraders-api/internal/domain/system"
)

// GormWaypointRepository implements WaypointRepository using GORM
type GormWaypointRepository struct {
	db *gorm.DB
}

// NewGormWaypointRepository creates a new GORM waypoint repository
func NewGormWaypointRepository(db *gorm.DB) *GormWaypointRepository {
	return &GormWaypointRepository{db: db}
}

// SaveSystem upserts a star system
func (r *GormWaypointRepository) SaveSystem(ctx context.Context, s *system.System) error {
	model := &SystemModel{
		Symbol:       s.Symbol,
		SectorSymbol: s.SectorSymbol,
		Type:         s.Type,
		X:            s.X,
		Y:            s.Y,
	}
	result := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "symbol"}},
		DoUpdates: clause.AssignmentColumns([]string{"sector_symbol", "type", "x", "y"}),
	}).Create(model)
	if result.Error != nil {
		return fmt.Errorf("failed to save system: %w", result.Error)
	}
	return nil
}

// FindSystem retrieves a system by symbol, or nil when it was never synced
func (r *GormWaypointRepository) FindSystem(ctx context.Context, symbol string) (*system.System, error) {
	var model SystemModel
	result := r.db.WithContext(ctx).Where("symbol = ?", symbol).First(&model)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find system: %w", result.Error)
	}
	return &system.System{
		Symbol:       model.Symbol,
		SectorSymbol: model.SectorSymbol,
		Type:         model.Type,
		X:            model.X,
		Y:            model.Y,
	}, nil
}

// Save upserts a waypoint; traits are replaced and a stub row is completed
func (r *GormWaypointRepository) Save(ctx context.Context, waypoint *shared.Waypoint) error {
	model, err := waypointToModel(waypoint)
	if err != nil {
		return fmt.Errorf("failed to convert waypoint to model: %w", err)
	}
	model.SyncedAt = time.Now().UTC()

	result := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "waypoint_symbol"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"system_symbol", "type", "x", "y", "orbits", "traits",
			"is_under_construction", "stub", "synced_at",
		}),
	}).Create(model)
	if result.Error != nil {
		return fmt.Errorf("failed to save waypoint: %w", result.Error)
	}
	return nil
}

// FindBySymbol retrieves a waypoint by symbol. Unknown and stub waypoints
// come back as nil.
func (r *GormWaypointRepository) FindBySymbol(ctx context.Context, symbol string) (*shared.Waypoint, error) {
	var model WaypointModel
	result := r.db.WithContext(ctx).Where("waypoint_symbol = ? AND stub = ?", symbol, false).First(&model)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find waypoint: %w", result.Error)
	}
	return modelToWaypoint(&model)
}

// ListBySystem retrieves all waypoints in a system
func (r *GormWaypointRepository) ListBySystem(ctx context.Context, systemSymbol string) ([]*shared.Waypoint, error) {
	var models []WaypointModel
	result := r.db.WithContext(ctx).
		Where("system_symbol = ? AND stub = ?", systemSymbol, false).
		Order("waypoint_symbol").
		Find(&models)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list waypoints: %w", result.Error)
	}
	return modelsToWaypoints(models)
}

// ListByTrait retrieves waypoints in a system filtered by a specific trait
func (r *GormWaypointRepository) ListByTrait(ctx context.Context, systemSymbol, trait string) ([]*shared.Waypoint, error) {
	var models []WaypointModel
	// Traits are a JSON array string, so match the quoted symbol
	pattern := fmt.Sprintf("%%\"%s\"%%", trait)
	result := r.db.WithContext(ctx).
		Where("system_symbol = ? AND stub = ? AND traits LIKE ?", systemSymbol, false, pattern).
		Order("waypoint_symbol").
		Find(&models)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list waypoints by trait: %w", result.Error)
	}
	return modelsToWaypoints(models)
}

// ensureWaypointStub creates a placeholder row for a waypoint first seen
// through a market or a transaction. Existing rows are left alone.
func ensureWaypointStub(tx *gorm.DB, waypointSymbol string) error {
	stub := &WaypointModel{
		WaypointSymbol: waypointSymbol,
		SystemSymbol:   shared.ExtractSystemSymbol(waypointSymbol),
		Traits:         "[]",
		Stub:           true,
	}
	result := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "waypoint_symbol"}},
		DoNothing: true,
	}).Create(stub)
	if result.Error != nil {
		return fmt.Errorf("failed to create waypoint %s: %w", waypointSymbol, result.Error)
	}
	return nil
}

func modelsToWaypoints(models []WaypointModel) ([]*shared.Waypoint, error) {
	waypoints := make([]*shared.Waypoint, 0, len(models))
	for i := range models {
		waypoint, err := modelToWaypoint(&models[i])
		if err != nil {
			return nil, fmt.Errorf("failed to convert waypoint %s: %w", models[i].WaypointSymbol, err)
		}
		waypoints = append(waypoints, waypoint)
	}
	return waypoints, nil
}

// modelToWaypoint converts database model to domain entity
func modelToWaypoint(model *WaypointModel) (*shared.Waypoint, error) {
	waypoint, err := shared.NewWaypoint(model.WaypointSymbol, model.X, model.Y)
	if err != nil {
		return nil, err
	}

	waypoint.SystemSymbol = model.SystemSymbol
	waypoint.Type = model.Type
	waypoint.Orbits = model.Orbits
	waypoint.IsUnderConstruction = model.IsUnderConstruction

	if model.Traits != "" {
		var traits []string
		if err := json.Unmarshal([]byte(model.Traits), &traits); err != nil {
			return nil, fmt.Errorf("failed to unmarshal traits: %w", err)
		}
		waypoint.Traits = traits
	}

	return waypoint, nil
}

// waypointToModel converts domain entity to database model
func waypointToModel(waypoint *shared.Waypoint) (*WaypointModel, error) {
	traits := waypoint.Traits
	if traits == nil {
		traits = []string{}
	}
	bytes, err := json.Marshal(traits)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal traits: %w", err)
	}

	systemSymbol := waypoint.SystemSymbol
	if systemSymbol == "" {
		systemSymbol = shared.ExtractSystemSymbol(waypoint.Symbol)
	}

	return &WaypointModel{
		WaypointSymbol:      waypoint.Symbol,
		SystemSymbol:        systemSymbol,
		Type:                waypoint.Type,
		X:                   waypoint.X,
		Y:                   waypoint.Y,
		Orbits:              waypoint.Orbits,
		Traits:              string(bytes),
		IsUnderConstruction: waypoint.IsUnderConstruction,
	}, nil
}

var _ system.WaypointRepository = (*GormWaypointRepository)(nil)
