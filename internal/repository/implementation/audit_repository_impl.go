package implementation

import (
	"context"

	"inventory-agent-be/internal/entity"
	"inventory-agent-be/internal/repository/contract"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AuditRepositoryImpl struct {
	db *gorm.DB
}

func NewAuditRepository(db *gorm.DB) contract.AuditRepository {
	return &AuditRepositoryImpl{db: db}
}

func (r *AuditRepositoryImpl) Create(ctx context.Context, audit *entity.RequestAudit) error {
	if audit.Id == uuid.Nil {
		audit.Id = uuid.New()
	}
	return r.db.WithContext(ctx).Create(audit).Error
}

func (r *AuditRepositoryImpl) FindRecent(ctx context.Context, limit int) ([]*entity.RequestAudit, error) {
	var audits []*entity.RequestAudit
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&audits).Error
	if err != nil {
		return nil, err
	}
	return audits, nil
}
