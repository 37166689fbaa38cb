package policy

import "time"

// ContentType says who computes an automatic debit amount.
type ContentType string

const (
	ContentTypeAuto   ContentType = "AUTO"
	ContentTypeManual ContentType = "MANUAL"
)

// UsageType says where the amount comes from when the policy computes it.
type UsageType string

const (
	UsageTypeFixed  UsageType = "FIXED"
	UsageTypeManual UsageType = "MANUAL"
)

// Status enables or disables automatic debits entirely.
type Status string

const (
	StatusActive   Status = "ACTIVE"
	StatusInactive Status = "INACTIVE"
)

// PointPolicy is the singleton configuration for automatic debits taken when
// a job is routed to a company.
type PointPolicy struct {
	TargetScope string      `db:"target_scope" json:"target_scope"`
	ContentType ContentType `db:"content_type" json:"content_type"`
	UsageType   UsageType   `db:"usage_type" json:"usage_type"`
	FixedAmount int         `db:"fixed_amount" json:"fixed_amount"`
	Status      Status      `db:"status" json:"status"`
	UpdatedAt   time.Time   `db:"updated_at" json:"updated_at"`
}

// Validate checks enum fields at the read/write boundary.
func (p *PointPolicy) Validate() error {
	if p.ContentType != ContentTypeAuto && p.ContentType != ContentTypeManual {
		return ErrInvalidPolicy
	}
	if p.UsageType != UsageTypeFixed && p.UsageType != UsageTypeManual {
		return ErrInvalidPolicy
	}
	if p.Status != StatusActive && p.Status != StatusInactive {
		return ErrInvalidPolicy
	}
	if p.FixedAmount < 0 {
		return ErrInvalidPolicy
	}
	return nil
}
