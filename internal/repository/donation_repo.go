package repository

import (
	"time"

	"daansetu/internal/domain"
	"daansetu/internal/models"

	"gorm.io/gorm"
)

type DonationRepository struct {
	db *gorm.DB
}

func NewDonationRepository(db *gorm.DB) *DonationRepository {
	return &DonationRepository{db: db}
}

func (r *DonationRepository) Create(d *models.Donation) error {
	return r.db.Create(d).Error
}

func (r *DonationRepository) GetBySessionID(sessionID string) (*models.Donation, error) {
	var d models.Donation
	err := r.db.Where("session_id = ?", sessionID).Order("id DESC").First(&d).Error
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *DonationRepository) GetByOrderID(orderID string) (*models.Donation, error) {
	var d models.Donation
	err := r.db.Where("order_id = ?", orderID).First(&d).Error
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// SetOrder attaches the negotiated order id to the latest attempt of a session.
func (r *DonationRepository) SetOrder(sessionID, orderID string) error {
	return r.db.Model(&models.Donation{}).
		Where("session_id = ? AND status = ?", sessionID, domain.DonationStatusPending).
		Update("order_id", orderID).Error
}

func (r *DonationRepository) MarkSucceeded(sessionID, paymentID, orderID string) error {
	now := time.Now()
	return r.db.Model(&models.Donation{}).
		Where("session_id = ? AND status = ?", sessionID, domain.DonationStatusPending).
		Updates(map[string]interface{}{
			"status":       domain.DonationStatusSucceeded,
			"payment_id":   paymentID,
			"order_id":     orderID,
			"completed_at": &now,
		}).Error
}

func (r *DonationRepository) MarkFailed(sessionID, reason string) error {
	return r.db.Model(&models.Donation{}).
		Where("session_id = ? AND status = ?", sessionID, domain.DonationStatusPending).
		Updates(map[string]interface{}{
			"status":         domain.DonationStatusFailed,
			"failure_reason": reason,
		}).Error
}

func (r *DonationRepository) MarkAbandoned(sessionID string) error {
	return r.db.Model(&models.Donation{}).
		Where("session_id = ? AND status = ?", sessionID, domain.DonationStatusPending).
		Update("status", domain.DonationStatusAbandoned).Error
}

// ListByCampaign returns recent successful donations for a campaign page.
func (r *DonationRepository) ListByCampaign(campaignID string, limit int) ([]models.Donation, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	var out []models.Donation
	err := r.db.Where("campaign_id = ? AND status = ?", campaignID, domain.DonationStatusSucceeded).
		Order("completed_at DESC").Limit(limit).Find(&out).Error
	return out, err
}
