package handler

import (
	"errors"
	"net/http"

	"daansetu/config"
	"daansetu/internal/checkout"
	"daansetu/internal/domain"
	"daansetu/internal/middleware"
	"daansetu/internal/models"
	"daansetu/internal/service"
	"daansetu/internal/ws"

	"github.com/gin-gonic/gin"
)

// DonationRecorder mirrors checkout outcomes into storage; satisfied by
// repository.DonationRepository.
type DonationRecorder interface {
	Create(d *models.Donation) error
	SetOrder(sessionID, orderID string) error
	MarkSucceeded(sessionID, paymentID, orderID string) error
	MarkFailed(sessionID, reason string) error
	MarkAbandoned(sessionID string) error
	ListByCampaign(campaignID string, limit int) ([]models.Donation, error)
}

type DonationHandler struct {
	cfg          *config.Config
	store        *checkout.SessionStore
	hub          *ws.OverlayHub
	donationSvc  *service.DonationService
	donationRepo DonationRecorder
}

func NewDonationHandler(
	cfg *config.Config,
	store *checkout.SessionStore,
	hub *ws.OverlayHub,
	donationSvc *service.DonationService,
	donationRepo DonationRecorder,
) *DonationHandler {
	return &DonationHandler{
		cfg:          cfg,
		store:        store,
		hub:          hub,
		donationSvc:  donationSvc,
		donationRepo: donationRepo,
	}
}

// NewCheckoutSession issues a session for one mounted donation form. The page
// connects the overlay bridge with this id before submitting.
func (h *DonationHandler) NewCheckoutSession(c *gin.Context) {
	sess := h.store.Create(func(id string) checkout.Deps {
		bridge := ws.NewSessionBridge(h.hub, id)
		return checkout.Deps{
			Orders:        h.donationSvc,
			Verifier:      h.donationSvc,
			Overlay:       bridge,
			Navigator:     bridge,
			Keys:          h.donationSvc,
			OrgName:       h.cfg.Checkout.OrgName,
			NavigateDelay: h.cfg.Checkout.NavigateDelay,
			OnTransition: func(state checkout.SubmissionState, userMsg string) {
				h.hub.PushState(id, state, userMsg)
				h.recordTransition(id, state, userMsg)
			},
		}
	})
	c.JSON(http.StatusCreated, gin.H{"session_id": sess.ID})
}

// recordTransition mirrors session outcomes into the donations table.
func (h *DonationHandler) recordTransition(sessionID string, state checkout.SubmissionState, userMsg string) {
	sess := h.store.Get(sessionID)
	if sess == nil {
		return
	}
	switch state {
	case checkout.StateCreatingOrder:
		// the guard is held here, so exactly one row per accepted attempt;
		// a rejected duplicate Submit never reaches this transition
		intent := sess.Intent()
		_ = h.donationRepo.Create(&models.Donation{
			SessionID:   sess.ID,
			CampaignID:  intent.CampaignID,
			DonorName:   intent.Donor.Name,
			DonorEmail:  intent.Donor.Email,
			DonorPhone:  intent.Donor.Phone,
			Guest:       intent.Donor.Guest,
			Amount:      intent.Amount,
			Currency:    domain.CurrencyINR,
			IsRecurring: intent.IsRecurring,
			Message:     intent.Message,
			Status:      domain.DonationStatusPending,
		})
	case checkout.StateAwaitingPayment:
		if handle := sess.Order(); handle != nil {
			_ = h.donationRepo.SetOrder(sess.ID, handle.OrderID)
		}
	case checkout.StateSucceeded:
		if res := sess.LastResult(); res != nil {
			_ = h.donationRepo.MarkSucceeded(sess.ID, res.PaymentID, res.OrderID)
		}
	case checkout.StateFailed:
		_ = h.donationRepo.MarkFailed(sess.ID, userMsg)
	case checkout.StateIdle:
		// dismissal resets; the pending row, if any, is an abandonment
		_ = h.donationRepo.MarkAbandoned(sess.ID)
	}
}

type submitRequest struct {
	SessionID   string         `json:"session_id" binding:"required"`
	Amount      int64          `json:"amount" binding:"required,min=1"`
	IsRecurring bool           `json:"is_recurring"`
	Message     string         `json:"message"`
	Donor       checkout.Donor `json:"donor"`
}

// Submit starts the checkout flow for one donation intent. Campaign-scoped
// when mounted under /campaigns/:campaignID, general otherwise.
func (h *DonationHandler) Submit(c *gin.Context) {
	var req submitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	sess := h.store.Get(req.SessionID)
	if sess == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown checkout session"})
		return
	}

	donor := req.Donor
	if name, email, ok := middleware.DonorIdentity(c); ok {
		donor = checkout.Donor{Name: name, Email: email, Phone: req.Donor.Phone}
	} else {
		donor.Guest = true
		if donor.Name == "" || donor.Email == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "donor name and email required"})
			return
		}
	}

	intent := checkout.DonationIntent{
		Amount:      req.Amount,
		IsRecurring: req.IsRecurring,
		Donor:       donor,
		Message:     req.Message,
		CampaignID:  c.Param("campaignID"),
	}

	err := sess.Submit(c.Request.Context(), intent)
	state, userMsg := sess.State()
	if err != nil {
		status := http.StatusBadGateway
		if errors.Is(err, checkout.ErrSubmissionInFlight) {
			status = http.StatusConflict
			userMsg = err.Error()
		}
		c.JSON(status, gin.H{
			"state":         state,
			"error":         userMsg,
			"resubmittable": state.Resubmittable(),
		})
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"state": state})
}

// State exposes the observable submission state for form rendering; the
// overlay bridge streams the same transitions as they happen.
func (h *DonationHandler) State(c *gin.Context) {
	sess := h.store.Get(c.Param("sessionID"))
	if sess == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown checkout session"})
		return
	}
	state, userMsg := sess.State()
	c.JSON(http.StatusOK, gin.H{
		"state":         state,
		"message":       userMsg,
		"resubmittable": state.Resubmittable(),
	})
}

// GatewayKey passes through the published checkout key with its resolved mode.
func (h *DonationHandler) GatewayKey(c *gin.Context) {
	key, err := h.donationSvc.GatewayKey(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": checkout.ErrGatewayKeyUnavailable.Error()})
		return
	}
	mode, err := checkout.ResolveGatewayMode(key)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": checkout.ErrGatewayNotConfigured.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"key": key, "mode": mode})
}

// ListCampaignDonations returns recent successful donations for a campaign page.
func (h *DonationHandler) ListCampaignDonations(c *gin.Context) {
	donations, err := h.donationRepo.ListByCampaign(c.Param("campaignID"), 20)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load donations"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"donations": donations})
}
