package implementation

import (
	"context"

	"inventory-agent-be/pkg/agent/dispatch"
	"inventory-agent-be/pkg/agent/state"

	"gorm.io/gorm"
)

const inventoryQuery = `
	SELECT
		p.reference,
		p.name AS part_name,
		p.brand,
		p.type,
		s.quantity,
		s.minimum_quantity,
		s.position,
		l.name AS location,
		CASE
			WHEN s.quantity = 0 THEN 'out of stock'
			WHEN s.quantity <= s.minimum_quantity THEN 'low stock'
			ELSE 'normal'
		END AS stock_state
	FROM stock s
	JOIN parts p ON s.part_id = p.part_id
	JOIN locations l ON s.location_id = l.location_id
	ORDER BY l.name, p.name
	LIMIT 300`

// InventoryReaderImpl answers the "inventory" category: current stock per
// part and location, with a derived low-stock state.
type InventoryReaderImpl struct {
	db *gorm.DB
}

var _ dispatch.Fetcher = &InventoryReaderImpl{}

func NewInventoryReader(db *gorm.DB) *InventoryReaderImpl {
	return &InventoryReaderImpl{db: db}
}

func (r *InventoryReaderImpl) Fetch(ctx context.Context, _ *state.Container) state.Delta {
	rows, err := fetchRows(ctx, r.db, inventoryQuery)
	if err != nil {
		return failureDelta("fetch_inventory", err)
	}
	return state.Delta{
		DataBlocks: []state.DataBlock{{Source: "inventory", Rows: rows}},
	}
}
