package models

import (
	"time"

	"gorm.io/gorm"
)

// Donation is the record of one checkout attempt and its outcome. This is
// attempt bookkeeping for listings and support queries; the authoritative
// payment ledger lives upstream.
type Donation struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	SessionID   string `gorm:"size:64;index" json:"session_id"`
	CampaignID  string `gorm:"size:64;index" json:"campaign_id"`
	DonorName   string `gorm:"size:120" json:"donor_name"`
	DonorEmail  string `gorm:"size:255;index" json:"donor_email"`
	DonorPhone  string `gorm:"size:20" json:"donor_phone"`
	Guest       bool   `json:"guest"`
	Amount      int64  `gorm:"not null" json:"amount"`
	Currency    string `gorm:"size:3;default:'INR'" json:"currency"`
	IsRecurring bool   `gorm:"index" json:"is_recurring"`
	Message     string `gorm:"type:text" json:"message"`
	OrderID     string `gorm:"size:64;index" json:"order_id"`
	PaymentID   string `gorm:"size:64;index" json:"payment_id"`
	Status      string `gorm:"size:20;not null;index" json:"status"` // PENDING, SUCCEEDED, FAILED, ABANDONED
	// FailureReason is the user-visible message of the last failure.
	FailureReason string         `gorm:"size:512" json:"failure_reason,omitempty"`
	CompletedAt   *time.Time     `json:"completed_at"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Donation) TableName() string {
	return "donations"
}
