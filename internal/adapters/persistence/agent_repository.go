package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ropable/spacetraders-api/internal/domain/player"
	"github.com/ropable/spacetraders-api/internal/domain/shipyard"
)

// GormAgentRepository implements AgentRepository using GORM
type GormAgentRepository struct {
	db *gorm.DB
}

// NewGormAgentRepository creates a new GORM agent repository
func NewGormAgentRepository(db *gorm.DB) *GormAgentRepository {
	return &GormAgentRepository{db: db}
}

// FindBySymbol retrieves an agent by symbol, or nil when unknown
func (r *GormAgentRepository) FindBySymbol(ctx context.Context, symbol string) (*player.Agent, error) {
	var model AgentModel
	result := r.db.WithContext(ctx).Where("symbol = ?", symbol).First(&model)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find agent: %w", result.Error)
	}

	return &player.Agent{
		AccountID:       model.AccountID,
		Symbol:          model.Symbol,
		Headquarters:    model.Headquarters,
		Credits:         model.Credits,
		StartingFaction: model.StartingFaction,
		ShipCount:       model.ShipCount,
	}, nil
}

// Save upserts an agent by symbol
func (r *GormAgentRepository) Save(ctx context.Context, agent *player.Agent) error {
	model := &AgentModel{
		Symbol:          agent.Symbol,
		AccountID:       agent.AccountID,
		Headquarters:    agent.Headquarters,
		Credits:         agent.Credits,
		StartingFaction: agent.StartingFaction,
		ShipCount:       agent.ShipCount,
		UpdatedAt:       time.Now().UTC(),
	}
	result := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "symbol"}},
		UpdateAll: true,
	}).Create(model)
	if result.Error != nil {
		return fmt.Errorf("failed to save agent: %w", result.Error)
	}
	return nil
}

// GormShipyardRepository implements ShipyardRepository using GORM
type GormShipyardRepository struct {
	db *gorm.DB
}

// NewGormShipyardRepository creates a new GORM shipyard repository
func NewGormShipyardRepository(db *gorm.DB) *GormShipyardRepository {
	return &GormShipyardRepository{db: db}
}

// Save upserts a shipyard by waypoint
func (r *GormShipyardRepository) Save(ctx context.Context, s *shipyard.Shipyard) error {
	types := s.ShipTypes
	if types == nil {
		types = []string{}
	}
	typesJSON, err := json.Marshal(types)
	if err != nil {
		return fmt.Errorf("failed to marshal ship types: %w", err)
	}

	model := &ShipyardModel{
		WaypointSymbol:  s.WaypointSymbol,
		ShipTypes:       string(typesJSON),
		ModificationFee: s.ModificationFee,
		SyncedAt:        time.Now().UTC(),
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureWaypointStub(tx, s.WaypointSymbol); err != nil {
			return err
		}
		result := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "waypoint_symbol"}},
			UpdateAll: true,
		}).Create(model)
		if result.Error != nil {
			return fmt.Errorf("failed to save shipyard: %w", result.Error)
		}
		return nil
	})
}

// FindByWaypoint retrieves a shipyard, or nil when it was never synced
func (r *GormShipyardRepository) FindByWaypoint(ctx context.Context, waypointSymbol string) (*shipyard.Shipyard, error) {
	var model ShipyardModel
	result := r.db.WithContext(ctx).Where("waypoint_symbol = ?", waypointSymbol).First(&model)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find shipyard: %w", result.Error)
	}

	var types []string
	if model.ShipTypes != "" {
		if err := json.Unmarshal([]byte(model.ShipTypes), &types); err != nil {
			return nil, fmt.Errorf("failed to unmarshal ship types: %w", err)
		}
	}
	return &shipyard.Shipyard{
		WaypointSymbol:  model.WaypointSymbol,
		ShipTypes:       types,
		ModificationFee: model.ModificationFee,
	}, nil
}

var (
	_ player.AgentRepository      = (*GormAgentRepository)(nil)
	_ shipyard.ShipyardRepository = (*GormShipyardRepository)(nil)
)
