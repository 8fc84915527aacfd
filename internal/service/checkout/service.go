package checkout

import (
	"context"
	"fmt"

	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/checkout/session"

	"portfolio-backend/internal/config"
	"portfolio-backend/internal/domain"
)

type Service interface {
	CreateSession(ctx context.Context, input domain.CreateCheckoutInput) (*domain.CheckoutSession, error)
}

type sessionCreator func(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)

type service struct {
	cfg    *config.Config
	create sessionCreator
}

func NewService(cfg *config.Config) Service {
	stripe.Key = cfg.StripeSecretKey
	return &service{
		cfg:    cfg,
		create: session.New,
	}
}

// CreateSession builds a Stripe checkout session. Prices come from the
// server-side price table only, never from the request.
func (s *service) CreateSession(ctx context.Context, input domain.CreateCheckoutInput) (*domain.CheckoutSession, error) {
	unitAmount, name, err := input.PriceLine()
	if err != nil {
		return nil, err
	}

	params := &stripe.CheckoutSessionParams{
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String(string(stripe.CurrencyUSD)),
					UnitAmount: stripe.Int64(unitAmount),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(name),
					},
				},
				Quantity: stripe.Int64(input.Quantity),
			},
		},
		SuccessURL: stripe.String(s.cfg.SiteURL + "/services?checkout=success"),
		CancelURL:  stripe.String(s.cfg.SiteURL + "/services?checkout=cancelled"),
	}
	params.AddMetadata("service_id", string(input.ServiceID))
	params.AddMetadata("payment_type", string(input.PaymentType))
	params.AddMetadata("quantity", fmt.Sprintf("%d", input.Quantity))

	sess, err := s.create(params)
	if err != nil {
		return nil, fmt.Errorf("failed to create checkout session: %w", err)
	}

	return &domain.CheckoutSession{URL: sess.URL}, nil
}
