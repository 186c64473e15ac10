package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// RequestAudit records one processed question: what was asked, which
// categories were consulted, and any recoverable errors hit along the way.
type RequestAudit struct {
	Id         uuid.UUID `gorm:"type:uuid;primaryKey"`
	SessionId  string    `gorm:"index"`
	Question   string
	Answer     string
	Categories datatypes.JSON
	Errors     datatypes.JSON
	ElapsedMs  int64
	CreatedAt  time.Time
}
