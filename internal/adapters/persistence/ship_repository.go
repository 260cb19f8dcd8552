package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ropable/spacetraders-api/internal/domain/navigation"
	"github.com/ropable/spacetraders-api/internal/domain/shared"
)

// GormShipRepository implements ShipRepository using GORM
type GormShipRepository struct {
	db *gorm.DB
}

// NewGormShipRepository creates a new GORM ship repository
func NewGormShipRepository(db *gorm.DB) *GormShipRepository {
	return &GormShipRepository{db: db}
}

// FindBySymbol retrieves a cached ship, or nil when it was never synced
func (r *GormShipRepository) FindBySymbol(ctx context.Context, symbol string) (*navigation.Ship, error) {
	var model ShipModel
	result := r.db.WithContext(ctx).Where("symbol = ?", symbol).First(&model)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find ship: %w", result.Error)
	}
	return modelToShip(&model)
}

// ListAll retrieves every cached ship ordered by symbol
func (r *GormShipRepository) ListAll(ctx context.Context) ([]*navigation.Ship, error) {
	var models []ShipModel
	if err := r.db.WithContext(ctx).Order("symbol").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list ships: %w", err)
	}
	return modelsToShips(models)
}

// ListByBehavior retrieves ships annotated with behavior
func (r *GormShipRepository) ListByBehavior(ctx context.Context, behavior navigation.Behavior) ([]*navigation.Ship, error) {
	var models []ShipModel
	if err := r.db.WithContext(ctx).
		Where("behavior = ?", string(behavior)).
		Order("symbol").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list ships by behavior: %w", err)
	}
	return modelsToShips(models)
}

// Save upserts a ship. The stored manifest is replaced by the ship's
// reconciled cargo, so items absent from it disappear.
func (r *GormShipRepository) Save(ctx context.Context, ship *navigation.Ship) error {
	model, err := shipToModel(ship)
	if err != nil {
		return fmt.Errorf("failed to convert ship to model: %w", err)
	}
	model.UpdatedAt = time.Now().UTC()

	result := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "symbol"}},
		UpdateAll: true,
	}).Create(model)
	if result.Error != nil {
		return fmt.Errorf("failed to save ship: %w", result.Error)
	}
	return nil
}

func modelsToShips(models []ShipModel) ([]*navigation.Ship, error) {
	ships := make([]*navigation.Ship, 0, len(models))
	for i := range models {
		ship, err := modelToShip(&models[i])
		if err != nil {
			return nil, fmt.Errorf("failed to convert ship %s: %w", models[i].Symbol, err)
		}
		ships = append(ships, ship)
	}
	return ships, nil
}

func shipToModel(ship *navigation.Ship) (*ShipModel, error) {
	state := ship.State()

	cargoJSON, err := json.Marshal(state.Cargo.Inventory)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal cargo: %w", err)
	}
	modulesJSON, err := json.Marshal(nonNil(state.Modules))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal modules: %w", err)
	}
	mountsJSON, err := json.Marshal(nonNil(state.Mounts))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal mounts: %w", err)
	}

	model := &ShipModel{
		Symbol:             state.Symbol,
		SystemSymbol:       state.SystemSymbol,
		WaypointSymbol:     state.WaypointSymbol,
		NavStatus:          string(state.NavStatus),
		FlightMode:         state.FlightMode.Name(),
		FuelCurrent:        state.Fuel.Current,
		FuelCapacity:       state.Fuel.Capacity,
		CargoCapacity:      state.Cargo.Capacity,
		Cargo:              string(cargoJSON),
		EngineSpeed:        state.EngineSpeed,
		FrameSymbol:        state.FrameSymbol,
		Role:               state.Role,
		Modules:            string(modulesJSON),
		Mounts:             string(mountsJSON),
		CooldownExpiration: state.CooldownExpiration,
		Behavior:           string(state.Behavior),
	}
	if state.Route != nil {
		departure := state.Route.Departure.UTC()
		arrival := state.Route.Arrival.UTC()
		model.RouteOrigin = state.Route.Origin
		model.RouteDestination = state.Route.Destination
		model.RouteDeparture = &departure
		model.RouteArrival = &arrival
	}
	return model, nil
}

func modelToShip(model *ShipModel) (*navigation.Ship, error) {
	status, err := navigation.ParseNavStatus(model.NavStatus)
	if err != nil {
		return nil, err
	}
	mode, err := shared.ParseFlightMode(model.FlightMode)
	if err != nil {
		return nil, err
	}
	behavior, err := navigation.ParseBehavior(model.Behavior)
	if err != nil {
		return nil, err
	}
	fuel, err := shared.NewFuel(model.FuelCurrent, model.FuelCapacity)
	if err != nil {
		return nil, err
	}

	var items []*shared.CargoItem
	if model.Cargo != "" {
		if err := json.Unmarshal([]byte(model.Cargo), &items); err != nil {
			return nil, fmt.Errorf("failed to unmarshal cargo: %w", err)
		}
	}
	cargo, err := shared.NewCargo(model.CargoCapacity, items)
	if err != nil {
		return nil, err
	}

	var modules, mounts []string
	if model.Modules != "" {
		if err := json.Unmarshal([]byte(model.Modules), &modules); err != nil {
			return nil, fmt.Errorf("failed to unmarshal modules: %w", err)
		}
	}
	if model.Mounts != "" {
		if err := json.Unmarshal([]byte(model.Mounts), &mounts); err != nil {
			return nil, fmt.Errorf("failed to unmarshal mounts: %w", err)
		}
	}

	var route *navigation.Route
	if model.RouteArrival != nil {
		route = &navigation.Route{
			Origin:      model.RouteOrigin,
			Destination: model.RouteDestination,
			Arrival:     model.RouteArrival.UTC(),
		}
		if model.RouteDeparture != nil {
			route.Departure = model.RouteDeparture.UTC()
		}
	}

	var cooldown *time.Time
	if model.CooldownExpiration != nil {
		t := model.CooldownExpiration.UTC()
		cooldown = &t
	}

	return navigation.ReconstructShip(navigation.ShipState{
		Symbol:             model.Symbol,
		SystemSymbol:       model.SystemSymbol,
		WaypointSymbol:     model.WaypointSymbol,
		NavStatus:          status,
		FlightMode:         mode,
		Route:              route,
		Fuel:               fuel,
		Cargo:              cargo,
		EngineSpeed:        model.EngineSpeed,
		FrameSymbol:        model.FrameSymbol,
		Role:               model.Role,
		Modules:            modules,
		Mounts:             mounts,
		CooldownExpiration: cooldown,
		Behavior:           behavior,
	})
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}

var _ navigation.ShipRepository = (*GormShipRepository)(nil)
