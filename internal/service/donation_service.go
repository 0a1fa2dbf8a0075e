package service

import (
	"context"
	"errors"

	"daansetu/internal/checkout"
	"daansetu/pkg/donationapi"
)

// DonationService adapts the upstream donation API client to the checkout
// engine's negotiator/verifier/key-source contracts.
type DonationService struct {
	api *donationapi.Client
	// keyOverride short-circuits the upstream key endpoint (development).
	keyOverride string
}

func NewDonationService(api *donationapi.Client, keyOverride string) *DonationService {
	return &DonationService{api: api, keyOverride: keyOverride}
}

func (s *DonationService) CreateOrder(ctx context.Context, intent checkout.DonationIntent) (*checkout.OrderHandle, error) {
	req := donationapi.CreateOrderRequest{
		CampaignID:  intent.CampaignID,
		Amount:      intent.Amount,
		Message:     intent.Message,
		IsRecurring: intent.IsRecurring,
		Email:       intent.Donor.Email,
		Name:        intent.Donor.Name,
	}
	if intent.Donor.Guest {
		req.GuestDonor = &donationapi.GuestDonor{
			Name:  intent.Donor.Name,
			Email: intent.Donor.Email,
			Phone: intent.Donor.Phone,
		}
	}
	resp, err := s.api.CreateOrder(ctx, req)
	if err != nil {
		var apiErr *donationapi.APIError
		if errors.As(err, &apiErr) {
			return nil, &checkout.OrderCreationError{Message: apiErr.Message, Err: err}
		}
		return nil, &checkout.OrderCreationError{Err: err}
	}
	handle := &checkout.OrderHandle{
		OrderID:     resp.Order.ID,
		AmountPaise: resp.Order.Amount,
		Currency:    resp.Order.Currency,
		IsRecurring: resp.IsRecurring,
	}
	if handle.Currency == "" {
		handle.Currency = "INR"
	}
	if resp.MandateInfo != nil {
		handle.Mandate = &checkout.MandateDescriptor{
			MaxAmountPaise: resp.MandateInfo.MaxAmount,
			Frequency:      resp.MandateInfo.Frequency,
			ExpireBy:       resp.MandateInfo.ExpireBy,
		}
	}
	return handle, nil
}

func (s *DonationService) VerifyPayment(ctx context.Context, req checkout.VerificationRequest) error {
	_, err := s.api.VerifyPayment(ctx, donationapi.VerifyPaymentRequest{
		CampaignID:  req.CampaignID,
		PaymentID:   req.Result.PaymentID,
		OrderID:     req.Result.OrderID,
		Signature:   req.Result.Signature,
		Amount:      req.Amount,
		Message:     req.Message,
		IsRecurring: req.IsRecurring,
		MandateID:   req.Result.MandateID,
	})
	if err != nil {
		var apiErr *donationapi.APIError
		if errors.As(err, &apiErr) {
			return &checkout.VerificationError{Message: apiErr.Message, Err: err}
		}
		return &checkout.VerificationError{Err: err}
	}
	return nil
}

func (s *DonationService) GatewayKey(ctx context.Context) (string, error) {
	if s.keyOverride != "" {
		return s.keyOverride, nil
	}
	return s.api.GatewayKey(ctx)
}
