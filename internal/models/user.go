package models

import "time"

// User is a platform account. The engine itself never looks users up
// ambiently; the HTTP layer resolves one into an auth.Actor per request.
type User struct {
	ID         string    `gorm:"primaryKey;size:36" json:"id"`
	Email      string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Role       string    `gorm:"size:32;not null" json:"role"`
	DealerID   string    `gorm:"size:36;index" json:"dealerId,omitempty"`
	ProviderID string    `gorm:"size:36;index" json:"providerId,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// DealerMembership records that a user belongs to a dealer. The embedded
// backend keeps these as their own kind so dealer-admin ownership can be
// checked transitively when a record only carries a creator id.
type DealerMembership struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	UserID    string    `gorm:"size:36;index" json:"userId"`
	UserEmail string    `gorm:"size:255" json:"userEmail,omitempty"`
	DealerID  string    `gorm:"size:36;index" json:"dealerId"`
	CreatedAt time.Time `json:"createdAt"`
}
