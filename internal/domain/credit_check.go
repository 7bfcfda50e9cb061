package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// CreditCheck is one credit decision for one carrier and requested load amount.
// Rows are never updated after creation except for soft delete (retraction).
type CreditCheck struct {
	ID               uuid.UUID       `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	OwnerID          uuid.UUID       `gorm:"column:owner_id;type:uuid;not null;index:idx_credit_checks_owner_mc,priority:1" json:"owner_id"`
	MCNumber         int64           `gorm:"column:mc_number;not null;index:idx_credit_checks_owner_mc,priority:2" json:"mc_number"`
	Status           CreditStatus    `gorm:"column:status;type:varchar(32);not null" json:"status"`
	ApprovedAmount   int64           `gorm:"column:approved_amount;not null" json:"approved_amount"`
	RequestedAmount  decimal.Decimal `gorm:"column:requested_amount;type:decimal(14,2);not null" json:"requested_amount"`
	ExternalID       *string         `gorm:"column:factor_cloud_uuid;type:varchar(255)" json:"external_id"`
	IdempotencyToken string          `gorm:"column:credit_check_uuid;type:varchar(255);not null;uniqueIndex" json:"idempotency_token"`
	Source           CreditSource    `gorm:"column:source;type:varchar(32);not null;default:'FactorsNetwork'" json:"source"`
	RawStatus        string          `gorm:"column:raw_status;type:varchar(255)" json:"raw_status"`
	BureauPayload    datatypes.JSON  `gorm:"column:bureau_payload" json:"-"`
	ExpiresAt        time.Time       `gorm:"column:expiration_date;not null" json:"expiration_date"`
	CreatedAt        time.Time       `gorm:"column:created_at" json:"created_at"`
	UpdatedAt        time.Time       `gorm:"column:updated_at" json:"updated_at"`
	DeletedAt        gorm.DeletedAt  `gorm:"column:deleted_at;index" json:"-"`
}

func (CreditCheck) TableName() string {
	return "credit_checks"
}

func (c *CreditCheck) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// Expired reports whether the decision's validity window has passed at t.
func (c *CreditCheck) Expired(t time.Time) bool {
	return !t.Before(c.ExpiresAt)
}

// CreditCheckHistory mirrors every CreditCheck row. Append-only; used for trend queries.
type CreditCheckHistory struct {
	ID               uint         `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	OwnerID          uuid.UUID    `gorm:"column:owner_id;type:uuid;not null;index:idx_credit_history_owner_created,priority:1" json:"owner_id"`
	MCNumber         int64        `gorm:"column:mc_number;not null;index" json:"mc_number"`
	Status           CreditStatus `gorm:"column:status;type:varchar(32);not null" json:"status"`
	ApprovedAmount   int64        `gorm:"column:approved_amount;not null" json:"approved_amount"`
	IdempotencyToken string       `gorm:"column:credit_check_uuid;type:varchar(255);not null;index" json:"idempotency_token"`
	Source           CreditSource `gorm:"column:source;type:varchar(32);not null" json:"source"`
	CreatedAt        time.Time    `gorm:"column:created_at;index:idx_credit_history_owner_created,priority:2" json:"created_at"`
}

func (CreditCheckHistory) TableName() string {
	return "credit_check_history"
}

// HistoryFor builds the history row that mirrors c.
func HistoryFor(c *CreditCheck) *CreditCheckHistory {
	return &CreditCheckHistory{
		OwnerID:          c.OwnerID,
		MCNumber:         c.MCNumber,
		Status:           c.Status,
		ApprovedAmount:   c.ApprovedAmount,
		IdempotencyToken: c.IdempotencyToken,
		Source:           c.Source,
		CreatedAt:        c.CreatedAt,
	}
}
