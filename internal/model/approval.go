package model

import (
	"time"

	"github.com/google/uuid"
)

type ApprovalStatus string

const (
	ApprovalStatusPending  ApprovalStatus = "pending"
	ApprovalStatusApproved ApprovalStatus = "approved"
	ApprovalStatusRejected ApprovalStatus = "rejected"
)

type ApproverType string

const (
	// ApproverAdmin means any admin may process the request.
	ApproverAdmin ApproverType = "admin"
	// ApproverContractor means only the named contractor may process it.
	ApproverContractor ApproverType = "contractor"
)

type ApprovalRequest struct {
	ID           uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	FullName     string         `gorm:"not null" json:"full_name"`
	Email        string         `gorm:"not null" json:"email"`
	Phone        string         `json:"phone"`
	Role         Role           `gorm:"not null" json:"role"`
	PasswordHash string         `gorm:"not null" json:"-"`
	Status       ApprovalStatus `gorm:"not null;default:pending;index" json:"status"`
	ApproverType ApproverType   `gorm:"not null" json:"approver_type"`
	// ApproverRef names the contractor for driver requests; nil for the
	// shared admin pool.
	ApproverRef *uuid.UUID `gorm:"type:uuid" json:"approver_ref,omitempty"`
	ProcessedBy *uuid.UUID `gorm:"type:uuid" json:"processed_by,omitempty"`
	ProcessedAt *time.Time `json:"processed_at,omitempty"`
	RequestedAt time.Time  `gorm:"not null" json:"requested_at"`
}

func (ApprovalRequest) TableName() string { return "approval_requests" }

func (r ApprovalRequest) IsPending() bool { return r.Status == ApprovalStatusPending }
