package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/ropable/spacetraders-api/internal/domain/contract"
)

// GormContractRepository implements ContractRepository using GORM
type GormContractRepository struct {
	db *gorm.DB
}

// NewGormContractRepository creates a new GORM contract repository
func NewGormContractRepository(db *gorm.DB) *GormContractRepository {
	return &GormContractRepository{db: db}
}

// FindByID retrieves a contract by ID, or nil when unknown
func (r *GormContractRepository) FindByID(ctx context.Context, contractID string) (*contract.Contract, error) {
	var model ContractModel
	result := r.db.WithContext(ctx).Where("id = ?", contractID).First(&model)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find contract: %w", result.Error)
	}
	return r.modelToEntity(&model)
}

// ListAll retrieves every contract ordered by ID
func (r *GormContractRepository) ListAll(ctx context.Context) ([]*contract.Contract, error) {
	var models []ContractModel
	if err := r.db.WithContext(ctx).Order("id").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list contracts: %w", err)
	}

	contracts := make([]*contract.Contract, 0, len(models))
	for i := range models {
		c, err := r.modelToEntity(&models[i])
		if err != nil {
			return nil, fmt.Errorf("failed to convert contract %s: %w", models[i].ID, err)
		}
		contracts = append(contracts, c)
	}
	return contracts, nil
}

// Save persists a contract (insert or update)
func (r *GormContractRepository) Save(ctx context.Context, c *contract.Contract) error {
	model, err := r.entityToModel(c)
	if err != nil {
		return fmt.Errorf("failed to convert contract to model: %w", err)
	}

	result := r.db.WithContext(ctx).Save(model)
	if result.Error != nil {
		return fmt.Errorf("failed to save contract: %w", result.Error)
	}
	return nil
}

type deliveryJSON struct {
	TradeSymbol       string `json:"trade_symbol"`
	DestinationSymbol string `json:"destination_symbol"`
	UnitsRequired     int    `json:"units_required"`
	UnitsFulfilled    int    `json:"units_fulfilled"`
}

func (r *GormContractRepository) modelToEntity(model *ContractModel) (*contract.Contract, error) {
	var deliveries []deliveryJSON
	if err := json.Unmarshal([]byte(model.DeliveriesJSON), &deliveries); err != nil {
		return nil, fmt.Errorf("failed to unmarshal deliveries: %w", err)
	}

	deliver := make([]contract.DeliverGood, 0, len(deliveries))
	for _, d := range deliveries {
		deliver = append(deliver, contract.DeliverGood{
			TradeSymbol:       d.TradeSymbol,
			DestinationSymbol: d.DestinationSymbol,
			UnitsRequired:     d.UnitsRequired,
			UnitsFulfilled:    d.UnitsFulfilled,
		})
	}

	return &contract.Contract{
		ID:            model.ID,
		FactionSymbol: model.FactionSymbol,
		Type:          model.Type,
		Terms: contract.Terms{
			Deadline: model.Deadline.UTC(),
			Payment: contract.Payment{
				OnAccepted:  model.PaymentOnAccepted,
				OnFulfilled: model.PaymentOnFulfilled,
			},
			Deliver: deliver,
		},
		Accepted:         model.Accepted,
		Fulfilled:        model.Fulfilled,
		Expiration:       model.Expiration.UTC(),
		DeadlineToAccept: model.DeadlineToAccept.UTC(),
	}, nil
}

func (r *GormContractRepository) entityToModel(c *contract.Contract) (*ContractModel, error) {
	deliveries := make([]deliveryJSON, 0, len(c.Terms.Deliver))
	for _, d := range c.Terms.Deliver {
		deliveries = append(deliveries, deliveryJSON{
			TradeSymbol:       d.TradeSymbol,
			DestinationSymbol: d.DestinationSymbol,
			UnitsRequired:     d.UnitsRequired,
			UnitsFulfilled:    d.UnitsFulfilled,
		})
	}
	deliveriesJSON, err := json.Marshal(deliveries)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal deliveries: %w", err)
	}

	return &ContractModel{
		ID:                 c.ID,
		FactionSymbol:      c.FactionSymbol,
		Type:               c.Type,
		Accepted:           c.Accepted,
		Fulfilled:          c.Fulfilled,
		Deadline:           c.Terms.Deadline,
		Expiration:         c.Expiration,
		DeadlineToAccept:   c.DeadlineToAccept,
		PaymentOnAccepted:  c.Terms.Payment.OnAccepted,
		PaymentOnFulfilled: c.Terms.Payment.OnFulfilled,
		DeliveriesJSON:     string(deliveriesJSON),
		LastUpdated:        time.Now().UTC(),
	}, nil
}

var _ contract.ContractRepository = (*GormContractRepository)(nil)
