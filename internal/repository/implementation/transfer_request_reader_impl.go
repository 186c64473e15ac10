package implementation

import (
	"context"

	"inventory-agent-be/pkg/agent/dispatch"
	"inventory-agent-be/pkg/agent/state"

	"gorm.io/gorm"
)

const transferRequestQuery = `
	SELECT
		tr.request_id::text,
		tr.status,
		ol.name AS origin_location,
		dl.name AS destination_location,
		rq.name AS requested_by,
		pk.name AS picked_by,
		rc.name AS received_by,
		tr.notes,
		tr.created_at::text AS created_at,
		tr.updated_at::text AS updated_at
	FROM transfer_requests tr
	JOIN locations ol ON tr.origin_location_id = ol.location_id
	JOIN locations dl ON tr.destination_location_id = dl.location_id
	JOIN users rq ON tr.requester_user_id = rq.user_id
	LEFT JOIN users pk ON tr.picker_user_id = pk.user_id
	LEFT JOIN users rc ON tr.receiver_user_id = rc.user_id
	ORDER BY tr.created_at DESC
	LIMIT 100`

// TransferRequestReaderImpl answers the "transfer_requests" category:
// pending and completed transfers between locations.
type TransferRequestReaderImpl struct {
	db *gorm.DB
}

var _ dispatch.Fetcher = &TransferRequestReaderImpl{}

func NewTransferRequestReader(db *gorm.DB) *TransferRequestReaderImpl {
	return &TransferRequestReaderImpl{db: db}
}

func (r *TransferRequestReaderImpl) Fetch(ctx context.Context, _ *state.Container) state.Delta {
	rows, err := fetchRows(ctx, r.db, transferRequestQuery)
	if err != nil {
		return failureDelta("fetch_transfer_requests", err)
	}
	return state.Delta{
		DataBlocks: []state.DataBlock{{Source: "transfer_requests", Rows: rows}},
	}
}
