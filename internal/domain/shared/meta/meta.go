package meta

import "time"

// Meta is the audit stamp attached to every persisted entity: who created
// and last updated the record, and when. It is orthogonal to entity logic;
// entities embed it and call New/Touch at their mutation points.
type Meta struct {
	CreatedBy string    `bson:"created_by" json:"created_by"`
	UpdatedBy string    `bson:"updated_by" json:"updated_by"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// New stamps a freshly created record.
func New(creatorID string, now time.Time) Meta {
	if now.IsZero() {
		now = time.Now()
	}
	now = now.UTC()
	return Meta{
		CreatedBy: creatorID,
		UpdatedBy: creatorID,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Touch returns the stamp refreshed by an update.
func (m Meta) Touch(updaterID string, now time.Time) Meta {
	if now.IsZero() {
		now = time.Now()
	}
	m.UpdatedBy = updaterID
	m.UpdatedAt = now.UTC()
	return m
}
