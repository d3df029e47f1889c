package model

import (
	"time"

	"github.com/google/uuid"
)

// Credential is the identity-provider side of a user: email plus bcrypt hash.
// UserID matches the User document id, which is written before the credential
// so a crash in between leaves a profile without a login, never the reverse.
type Credential struct {
	UserID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"user_id"`
	Email        string    `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"not null" json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

func (Credential) TableName() string { return "credentials" }
