package persistence

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ropable/spacetraders-api/internal/domain/market"
	"github.com/ropable/spacetraders-api/internal/domain/shared"
)

// recentMarketTransactions is how many transactions FindByWaypoint attaches
const recentMarketTransactions = 20

// MarketRepositoryGORM implements market persistence using GORM
type MarketRepositoryGORM struct {
	db *gorm.DB
}

// NewMarketRepository creates a new GORM-based market repository
func NewMarketRepository(db *gorm.DB) *MarketRepositoryGORM {
	return &MarketRepositoryGORM{db: db}
}

// Save stores a market snapshot in one transaction:
// - the waypoint row is created when missing
// - catalog membership is replaced
// - priced trade goods are upserted by (waypoint, good, role)
// - transactions are appended unless their natural key is already stored
func (r *MarketRepositoryGORM) Save(ctx context.Context, m *market.Market) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureWaypointStub(tx, m.WaypointSymbol()); err != nil {
			return err
		}
		if err := upsertCatalog(tx, m.Catalog()); err != nil {
			return err
		}

		if err := tx.Where("waypoint_symbol = ?", m.WaypointSymbol()).
			Delete(&MarketCatalogModel{}).Error; err != nil {
			return fmt.Errorf("failed to clear market catalog: %w", err)
		}
		membership := catalogMembership(m)
		if len(membership) > 0 {
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&membership).Error; err != nil {
				return fmt.Errorf("failed to save market catalog: %w", err)
			}
		}

		systemSymbol := shared.ExtractSystemSymbol(m.WaypointSymbol())
		for _, good := range m.TradeGoods() {
			model := tradeGoodToModel(good, systemSymbol, m.LastUpdated())
			result := tx.Clauses(clause.OnConflict{
				Columns: []clause.Column{{Name: "waypoint_symbol"}, {Name: "trade_symbol"}, {Name: "role"}},
				DoUpdates: clause.AssignmentColumns([]string{
					"supply", "activity", "purchase_price", "sell_price", "trade_volume", "updated_at",
				}),
			}).Create(model)
			if result.Error != nil {
				return fmt.Errorf("failed to upsert trade good %s: %w", good.Key(), result.Error)
			}
		}

		for _, t := range m.Transactions() {
			if t.WaypointSymbol != m.WaypointSymbol() {
				if err := ensureWaypointStub(tx, t.WaypointSymbol); err != nil {
					return err
				}
			}
			if _, err := insertTransaction(tx, t); err != nil {
				return err
			}
		}
		return nil
	})
}

// FindByWaypoint rebuilds the cached market, or returns nil when nothing is cached
func (r *MarketRepositoryGORM) FindByWaypoint(ctx context.Context, waypointSymbol string) (*market.Market, error) {
	db := r.db.WithContext(ctx)

	var catalog []MarketCatalogModel
	if err := db.Where("waypoint_symbol = ?", waypointSymbol).
		Order("trade_symbol").Find(&catalog).Error; err != nil {
		return nil, fmt.Errorf("failed to get market catalog: %w", err)
	}

	var goods []MarketTradeGoodModel
	if err := db.Where("waypoint_symbol = ?", waypointSymbol).
		Order("trade_symbol, role").Find(&goods).Error; err != nil {
		return nil, fmt.Errorf("failed to get market trade goods: %w", err)
	}

	if len(catalog) == 0 && len(goods) == 0 {
		return nil, nil
	}

	names, err := r.catalogNames(db, catalog)
	if err != nil {
		return nil, err
	}

	var exports, imports, exchange []market.TradeGood
	var lastUpdated time.Time
	for _, entry := range catalog {
		good := names[entry.TradeSymbol]
		switch market.Role(entry.Role) {
		case market.RoleExport:
			exports = append(exports, good)
		case market.RoleImport:
			imports = append(imports, good)
		case market.RoleExchange:
			exchange = append(exchange, good)
		}
		if entry.ObservedAt.After(lastUpdated) {
			lastUpdated = entry.ObservedAt
		}
	}

	tradeGoods := make([]*market.MarketTradeGood, 0, len(goods))
	for i := range goods {
		good, err := modelToTradeGood(&goods[i])
		if err != nil {
			return nil, err
		}
		tradeGoods = append(tradeGoods, good)
		if goods[i].UpdatedAt.After(lastUpdated) {
			lastUpdated = goods[i].UpdatedAt
		}
	}

	var txModels []TransactionModel
	if err := db.Where("waypoint_symbol = ?", waypointSymbol).
		Order("timestamp DESC").Limit(recentMarketTransactions).Find(&txModels).Error; err != nil {
		return nil, fmt.Errorf("failed to get market transactions: %w", err)
	}
	transactions := make([]*market.Transaction, 0, len(txModels))
	for i := range txModels {
		transactions = append(transactions, modelToTransaction(&txModels[i]))
	}

	return market.NewMarket(waypointSymbol, exports, imports, exchange, tradeGoods, transactions, lastUpdated)
}

// ListTradeGoods returns priced details matching filter, ordered by market, good and role
func (r *MarketRepositoryGORM) ListTradeGoods(ctx context.Context, filter market.TradeGoodFilter) ([]*market.MarketTradeGood, error) {
	query := r.db.WithContext(ctx).Model(&MarketTradeGoodModel{})
	if filter.SystemSymbol != "" {
		query = query.Where("system_symbol = ?", filter.SystemSymbol)
	}
	if filter.WaypointSymbol != "" {
		query = query.Where("waypoint_symbol = ?", filter.WaypointSymbol)
	}
	if filter.TradeSymbol != "" {
		query = query.Where("trade_symbol = ?", filter.TradeSymbol)
	}
	if filter.Role != "" {
		query = query.Where("role = ?", string(filter.Role))
	}

	var models []MarketTradeGoodModel
	if err := query.Order("waypoint_symbol, trade_symbol, role").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list trade goods: %w", err)
	}

	goods := make([]*market.MarketTradeGood, 0, len(models))
	for i := range models {
		good, err := modelToTradeGood(&models[i])
		if err != nil {
			return nil, err
		}
		goods = append(goods, good)
	}
	return goods, nil
}

// ListExportMarkets returns the waypoints of a system with EXPORT catalog rows, ordered by symbol
func (r *MarketRepositoryGORM) ListExportMarkets(ctx context.Context, systemSymbol string) ([]string, error) {
	var symbols []string
	err := r.db.WithContext(ctx).Model(&MarketCatalogModel{}).
		Where("role = ? AND waypoint_symbol LIKE ?", string(market.RoleExport), systemSymbol+"-%").
		Distinct().
		Order("waypoint_symbol").
		Pluck("waypoint_symbol", &symbols).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list export markets of %s: %w", systemSymbol, err)
	}
	return symbols, nil
}

// EnsureCatalog creates catalog entries that do not exist yet
func (r *MarketRepositoryGORM) EnsureCatalog(ctx context.Context, goods []market.TradeGood) error {
	return upsertCatalog(r.db.WithContext(ctx), goods)
}

func (r *MarketRepositoryGORM) catalogNames(db *gorm.DB, catalog []MarketCatalogModel) (map[string]market.TradeGood, error) {
	symbols := make([]string, 0, len(catalog))
	for _, entry := range catalog {
		symbols = append(symbols, entry.TradeSymbol)
	}

	names := make(map[string]market.TradeGood, len(symbols))
	if len(symbols) == 0 {
		return names, nil
	}

	var models []TradeGoodModel
	if err := db.Where("symbol IN ?", symbols).Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to get trade goods: %w", err)
	}
	for _, model := range models {
		names[model.Symbol] = market.TradeGood{Symbol: model.Symbol, Name: model.Name, Description: model.Description}
	}
	for _, symbol := range symbols {
		if _, ok := names[symbol]; !ok {
			names[symbol] = market.TradeGood{Symbol: symbol, Name: symbol}
		}
	}
	return names, nil
}

// upsertCatalog creates missing catalog entries. An entry that arrives with a
// real display name replaces the symbol placeholder of an earlier sighting.
func upsertCatalog(tx *gorm.DB, goods []market.TradeGood) error {
	for _, good := range goods {
		entry, err := market.NewCatalogEntry(good.Symbol, good.Name, good.Description)
		if err != nil {
			return err
		}
		model := &TradeGoodModel{Symbol: entry.Symbol, Name: entry.Name, Description: entry.Description}

		conflict := clause.OnConflict{Columns: []clause.Column{{Name: "symbol"}}, DoNothing: true}
		if entry.Name != entry.Symbol {
			conflict = clause.OnConflict{
				Columns:   []clause.Column{{Name: "symbol"}},
				DoUpdates: clause.AssignmentColumns([]string{"name", "description"}),
			}
		}
		if err := tx.Clauses(conflict).Create(model).Error; err != nil {
			return fmt.Errorf("failed to save trade good %s: %w", entry.Symbol, err)
		}
	}
	return nil
}

func catalogMembership(m *market.Market) []MarketCatalogModel {
	var rows []MarketCatalogModel
	add := func(goods []market.TradeGood, role market.Role) {
		for _, good := range goods {
			rows = append(rows, MarketCatalogModel{
				WaypointSymbol: m.WaypointSymbol(),
				TradeSymbol:    good.Symbol,
				Role:           string(role),
				ObservedAt:     m.LastUpdated(),
			})
		}
	}
	add(m.Exports(), market.RoleExport)
	add(m.Imports(), market.RoleImport)
	add(m.Exchange(), market.RoleExchange)
	return rows
}

func tradeGoodToModel(good *market.MarketTradeGood, systemSymbol string, observed time.Time) *MarketTradeGoodModel {
	updatedAt := good.UpdatedAt()
	if updatedAt.IsZero() {
		updatedAt = observed
	}
	return &MarketTradeGoodModel{
		WaypointSymbol: good.WaypointSymbol(),
		TradeSymbol:    good.Symbol(),
		Role:           string(good.Role()),
		SystemSymbol:   systemSymbol,
		Supply:         good.Supply(),
		Activity:       good.Activity(),
		PurchasePrice:  good.PurchasePrice(),
		SellPrice:      good.SellPrice(),
		TradeVolume:    good.TradeVolume(),
		UpdatedAt:      updatedAt.UTC(),
	}
}

func modelToTradeGood(model *MarketTradeGoodModel) (*market.MarketTradeGood, error) {
	good, err := market.NewMarketTradeGood(
		model.WaypointSymbol,
		model.TradeSymbol,
		market.Role(model.Role),
		model.Supply,
		model.Activity,
		model.PurchasePrice,
		model.SellPrice,
		model.TradeVolume,
	)
	if err != nil {
		return nil, fmt.Errorf("invalid trade good in database: %w", err)
	}
	return good.WithUpdatedAt(model.UpdatedAt), nil
}

var _ market.MarketRepository = (*MarketRepositoryGORM)(nil)
