package domain

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Company is a carrier or broker known to an owner. MC and DOT numbers are optional;
// when present each is unique per owner among live rows.
type Company struct {
	ID         uuid.UUID      `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	OwnerID    uuid.UUID      `gorm:"column:owner_id;type:uuid;not null;index;uniqueIndex:ux_companies_owner_mc,priority:1;uniqueIndex:ux_companies_owner_dot,priority:1" json:"owner_id"`
	Name       string         `gorm:"column:name;type:varchar(255);not null" json:"name"`
	LegalName  *string        `gorm:"column:legal_name;type:varchar(255)" json:"legal_name"`
	MCNumber   *int64         `gorm:"column:mc_number;uniqueIndex:ux_companies_owner_mc,where:deleted_at IS NULL,priority:2" json:"mc_number"`
	DOTNumber  *int64         `gorm:"column:dot_number;uniqueIndex:ux_companies_owner_dot,where:deleted_at IS NULL,priority:2" json:"dot_number"`
	SearchText string         `gorm:"column:search_text;type:text" json:"-"`
	ExternalID *string        `gorm:"column:factor_network_uuid;type:varchar(255)" json:"external_id"`
	CreatedAt  time.Time      `gorm:"column:created_at" json:"created_at"`
	UpdatedAt  time.Time      `gorm:"column:updated_at" json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"column:deleted_at;index" json:"-"`
}

func (Company) TableName() string {
	return "companies"
}

// BeforeCreate sets the id for DBs without a uuid default.
func (c *Company) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// BeforeSave keeps the search blob in step with name and registry numbers.
func (c *Company) BeforeSave(tx *gorm.DB) error {
	c.SearchText = BuildSearchText(c.Name, c.LegalName, c.MCNumber, c.DOTNumber)
	return nil
}

// BuildSearchText is the lowercase blob the autocomplete text tier matches against.
func BuildSearchText(name string, legalName *string, mc, dot *int64) string {
	parts := []string{name}
	if legalName != nil {
		parts = append(parts, *legalName)
	}
	if mc != nil {
		parts = append(parts, "mc"+strconv.FormatInt(*mc, 10), strconv.FormatInt(*mc, 10))
	}
	if dot != nil {
		parts = append(parts, "dot"+strconv.FormatInt(*dot, 10), strconv.FormatInt(*dot, 10))
	}
	fields := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			fields = append(fields, p)
		}
	}
	return strings.ToLower(strings.Join(fields, " "))
}
