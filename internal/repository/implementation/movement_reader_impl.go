package implementation

import (
	"context"

	"inventory-agent-be/pkg/agent/dispatch"
	"inventory-agent-be/pkg/agent/state"

	"gorm.io/gorm"
)

const movementQuery = `
	SELECT
		m.movement_id::text,
		m.movement_type,
		p.name AS part,
		p.reference AS part_reference,
		m.quantity,
		ol.name AS origin_location,
		dl.name AS destination_location,
		u.name AS responsible,
		t.name AS technician,
		m.work_order,
		m.notes,
		m.movement_date::text AS movement_date
	FROM stock_movements m
	JOIN parts p ON m.part_id = p.part_id
	LEFT JOIN locations ol ON m.origin_location_id = ol.location_id
	LEFT JOIN locations dl ON m.destination_location_id = dl.location_id
	JOIN users u ON m.responsible_user_id = u.user_id
	LEFT JOIN users t ON m.technician_user_id = t.user_id
	ORDER BY m.movement_date DESC
	LIMIT 150`

// MovementReaderImpl answers the "technician_movements" category: stock
// movements tied to technicians and work orders, newest first.
type MovementReaderImpl struct {
	db *gorm.DB
}

var _ dispatch.Fetcher = &MovementReaderImpl{}

func NewMovementReader(db *gorm.DB) *MovementReaderImpl {
	return &MovementReaderImpl{db: db}
}

func (r *MovementReaderImpl) Fetch(ctx context.Context, _ *state.Container) state.Delta {
	rows, err := fetchRows(ctx, r.db, movementQuery)
	if err != nil {
		return failureDelta("fetch_technician_movements", err)
	}
	return state.Delta{
		DataBlocks: []state.DataBlock{{Source: "technician_movements", Rows: rows}},
	}
}
