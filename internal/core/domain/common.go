package domain

import "time"

// AuditFields holds standard audit information for domain entities.
// CreatedBy/LastUpdatedBy carry the ID of the acting account.
type AuditFields struct {
	CreatedAt     time.Time `json:"createdAt"`
	CreatedBy     string    `json:"createdBy"`
	LastUpdatedAt time.Time `json:"lastUpdatedAt"`
	LastUpdatedBy string    `json:"lastUpdatedBy"`
}

// NewAuditFields stamps both creation and update with the same actor and time.
func NewAuditFields(actorID string, now time.Time) AuditFields {
	return AuditFields{
		CreatedAt:     now,
		CreatedBy:     actorID,
		LastUpdatedAt: now,
		LastUpdatedBy: actorID,
	}
}

// Touch records an update by actorID at now.
func (a *AuditFields) Touch(actorID string, now time.Time) {
	a.LastUpdatedAt = now
	a.LastUpdatedBy = actorID
}
