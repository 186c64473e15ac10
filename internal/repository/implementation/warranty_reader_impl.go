package implementation

import (
	"context"

	"inventory-agent-be/pkg/agent/dispatch"
	"inventory-agent-be/pkg/agent/state"

	"gorm.io/gorm"
)

const warrantyQuery = `
	SELECT
		w.warranty_id::text,
		w.part_reference,
		w.part_name,
		w.status,
		w.failure_reason,
		w.resolution_notes,
		w.work_order,
		w.requester,
		w.mileage,
		l.name AS location,
		u.name AS reported_by,
		t.name AS assigned_technician,
		w.created_at::text AS created_at,
		w.updated_at::text AS updated_at
	FROM warranties w
	JOIN locations l ON w.location_id = l.location_id
	JOIN users u ON w.reporter_user_id = u.user_id
	LEFT JOIN users t ON w.technician_user_id = t.user_id
	ORDER BY w.created_at DESC
	LIMIT 150`

// WarrantyReaderImpl answers the "warranties" category: claims with their
// status, failure reason and the people involved.
type WarrantyReaderImpl struct {
	db *gorm.DB
}

var _ dispatch.Fetcher = &WarrantyReaderImpl{}

func NewWarrantyReader(db *gorm.DB) *WarrantyReaderImpl {
	return &WarrantyReaderImpl{db: db}
}

func (r *WarrantyReaderImpl) Fetch(ctx context.Context, _ *state.Container) state.Delta {
	rows, err := fetchRows(ctx, r.db, warrantyQuery)
	if err != nil {
		return failureDelta("fetch_warranties", err)
	}
	return state.Delta{
		DataBlocks: []state.DataBlock{{Source: "warranties", Rows: rows}},
	}
}
