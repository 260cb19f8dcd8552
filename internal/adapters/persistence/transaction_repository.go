package persistence

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ropable/spacetraders-api/internal/domain/market"
)

// GormTransactionRepository implements TransactionRepository using GORM
type GormTransactionRepository struct {
	db *gorm.DB
}

// NewGormTransactionRepository creates a new GORM transaction repository
func NewGormTransactionRepository(db *gorm.DB) *GormTransactionRepository {
	return &GormTransactionRepository{db: db}
}

// Record appends a transaction unless one with the same natural key is stored.
// The waypoint and trade good it references are created on first sight.
func (r *GormTransactionRepository) Record(ctx context.Context, t *market.Transaction) (bool, error) {
	if err := t.Validate(); err != nil {
		return false, err
	}

	var created bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureWaypointStub(tx, t.WaypointSymbol); err != nil {
			return err
		}
		if err := upsertCatalog(tx, []market.TradeGood{{Symbol: t.TradeSymbol}}); err != nil {
			return err
		}
		var err error
		created, err = insertTransaction(tx, t)
		return err
	})
	if err != nil {
		return false, err
	}
	return created, nil
}

// ListByShip returns the most recent transactions of a ship, newest first
func (r *GormTransactionRepository) ListByShip(ctx context.Context, shipSymbol string, limit int) ([]*market.Transaction, error) {
	query := r.db.WithContext(ctx).
		Where("ship_symbol = ?", shipSymbol).
		Order("timestamp DESC, id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var models []TransactionModel
	if err := query.Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}

	transactions := make([]*market.Transaction, 0, len(models))
	for i := range models {
		transactions = append(transactions, modelToTransaction(&models[i]))
	}
	return transactions, nil
}

// insertTransaction writes t unless its natural key exists; reports whether a row was added
func insertTransaction(tx *gorm.DB, t *market.Transaction) (bool, error) {
	model := transactionToModel(t)
	result := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "natural_key"}},
		DoNothing: true,
	}).Create(model)
	if result.Error != nil {
		return false, fmt.Errorf("failed to record transaction: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

func transactionToModel(t *market.Transaction) *TransactionModel {
	return &TransactionModel{
		NaturalKey:     t.NaturalKey(),
		WaypointSymbol: t.WaypointSymbol,
		ShipSymbol:     t.ShipSymbol,
		TradeSymbol:    t.TradeSymbol,
		Type:           string(t.Type),
		Units:          t.Units,
		PricePerUnit:   t.PricePerUnit,
		TotalPrice:     t.TotalPrice,
		Timestamp:      t.Timestamp.UTC(),
	}
}

func modelToTransaction(model *TransactionModel) *market.Transaction {
	return &market.Transaction{
		WaypointSymbol: model.WaypointSymbol,
		ShipSymbol:     model.ShipSymbol,
		TradeSymbol:    model.TradeSymbol,
		Type:           market.TransactionType(model.Type),
		Units:          model.Units,
		PricePerUnit:   model.PricePerUnit,
		TotalPrice:     model.TotalPrice,
		Timestamp:      model.Timestamp.UTC(),
	}
}

var _ market.TransactionRepository = (*GormTransactionRepository)(nil)
