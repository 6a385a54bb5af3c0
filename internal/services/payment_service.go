// internal/services/payment_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/paymentintent"

	"github.com/pixelmural/mural-backend/internal/config"
)

var ErrPaymentNotConfirmed = errors.New("payment not confirmed")

type PaymentService struct {
	config *config.Config
}

type CreatePaymentIntentRequest struct {
	CellID      int   `json:"cell_id" validate:"min=0"`
	QuotedPrice int64 `json:"quoted_price" validate:"required,min=1"`
}

type PaymentIntentResponse struct {
	ClientSecret string `json:"client_secret"`
	PaymentID    string `json:"payment_id"`
	Status       string `json:"status"`
}

func NewPaymentService(config *config.Config) *PaymentService {
	// Initialize Stripe
	stripe.Key = config.Payment.StripeSecretKey

	return &PaymentService{
		config: config,
	}
}

// CreatePaymentIntent opens a Stripe payment intent for a quoted cell price.
// The cell and buyer ride along as metadata so payments can be traced back
// from the Stripe dashboard.
func (s *PaymentService) CreatePaymentIntent(userID string, req *CreatePaymentIntentRequest) (*PaymentIntentResponse, error) {
	currency := s.config.Payment.Currency
	if currency == "" {
		currency = "usd"
	}

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(req.QuotedPrice),
		Currency: stripe.String(currency),
	}
	params.AddMetadata("user_id", userID)
	params.AddMetadata("cell_id", strconv.Itoa(req.CellID))

	pi, err := paymentintent.New(params)
	if err != nil {
		return nil, fmt.Errorf("failed to create payment intent: %w", err)
	}

	return &PaymentIntentResponse{
		ClientSecret: pi.ClientSecret,
		PaymentID:    pi.ID,
		Status:       string(pi.Status),
	}, nil
}

// VerifyPayment implements PaymentVerifier against Stripe. The intent must
// have been captured for exactly the quoted amount.
func (s *PaymentService) VerifyPayment(ctx context.Context, reference string, amount int64) error {
	pi, err := paymentintent.Get(reference, nil)
	if err != nil {
		return fmt.Errorf("failed to get payment intent: %w", err)
	}

	if pi.Status != stripe.PaymentIntentStatusSucceeded {
		return fmt.Errorf("%w: intent %s has status %s", ErrPaymentNotConfirmed, reference, pi.Status)
	}
	if pi.Amount != amount {
		return fmt.Errorf("%w: intent %s captured %d, expected %d", ErrPaymentNotConfirmed, reference, pi.Amount, amount)
	}
	return nil
}
