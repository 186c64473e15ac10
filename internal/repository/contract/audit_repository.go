package contract

import (
	"context"

	"inventory-agent-be/internal/entity"
)

type AuditRepository interface {
	Create(ctx context.Context, audit *entity.RequestAudit) error
	FindRecent(ctx context.Context, limit int) ([]*entity.RequestAudit, error)
}
