package implementation

import (
	"context"

	"inventory-agent-be/pkg/agent/dispatch"
	"inventory-agent-be/pkg/agent/state"

	"gorm.io/gorm"
)

const stockCountQuery = `
	SELECT
		c.count_id::text,
		l.name AS location,
		u.name AS counted_by,
		c.status,
		c.notes,
		c.started_at::text AS started_at,
		c.finished_at::text AS finished_at
	FROM stock_counts c
	JOIN locations l ON c.location_id = l.location_id
	JOIN users u ON c.counter_user_id = u.user_id
	ORDER BY c.started_at DESC
	LIMIT 50`

const countDifferenceQuery = `
	SELECT
		d.count_id::text,
		p.name AS part,
		p.reference AS part_reference,
		d.expected_quantity,
		d.counted_quantity,
		d.difference
	FROM stock_count_details d
	JOIN parts p ON d.part_id = p.part_id
	WHERE d.difference != 0
	ORDER BY ABS(d.difference) DESC
	LIMIT 100`

// StockCountReaderImpl answers the "stock_counts" category. It emits two
// blocks: the count records themselves and the non-zero differences found
// during counting, so the synthesizer can report discrepancies directly.
type StockCountReaderImpl struct {
	db *gorm.DB
}

var _ dispatch.Fetcher = &StockCountReaderImpl{}

func NewStockCountReader(db *gorm.DB) *StockCountReaderImpl {
	return &StockCountReaderImpl{db: db}
}

func (r *StockCountReaderImpl) Fetch(ctx context.Context, _ *state.Container) state.Delta {
	counts, err := fetchRows(ctx, r.db, stockCountQuery)
	if err != nil {
		return failureDelta("fetch_stock_counts", err)
	}
	diffs, err := fetchRows(ctx, r.db, countDifferenceQuery)
	if err != nil {
		return failureDelta("fetch_stock_counts", err)
	}
	return state.Delta{
		DataBlocks: []state.DataBlock{
			{Source: "stock_counts", Rows: counts},
			{Source: "count_differences", Rows: diffs},
		},
	}
}
