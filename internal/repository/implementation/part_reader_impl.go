package implementation

import (
	"context"

	"inventory-agent-be/pkg/agent/dispatch"
	"inventory-agent-be/pkg/agent/state"

	"gorm.io/gorm"
)

const partQuery = `
	SELECT
		p.part_id::text,
		p.reference,
		p.name,
		p.description,
		p.category,
		p.unit,
		p.minimum_stock,
		p.active
	FROM parts p
	ORDER BY p.name
	LIMIT 300`

// PartReaderImpl answers the "parts" category with the part catalog.
type PartReaderImpl struct {
	db *gorm.DB
}

var _ dispatch.Fetcher = &PartReaderImpl{}

func NewPartReader(db *gorm.DB) *PartReaderImpl {
	return &PartReaderImpl{db: db}
}

func (r *PartReaderImpl) Fetch(ctx context.Context, _ *state.Container) state.Delta {
	rows, err := fetchRows(ctx, r.db, partQuery)
	if err != nil {
		return failureDelta("fetch_parts", err)
	}
	return state.Delta{
		DataBlocks: []state.DataBlock{{Source: "parts", Rows: rows}},
	}
}
