package checkout

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stripe/stripe-go/v79"

	"portfolio-backend/internal/config"
	"portfolio-backend/internal/domain"
)

func testService(create sessionCreator) Service {
	return &service{
		cfg:    &config.Config{SiteURL: "https://example.com"},
		create: create,
	}
}

func TestCheckoutService_CreateSession(t *testing.T) {
	ctx := context.Background()

	t.Run("Package Payment", func(t *testing.T) {
		var captured *stripe.CheckoutSessionParams
		svc := testService(func(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
			captured = params
			return &stripe.CheckoutSession{URL: "https://checkout.stripe.com/pay/cs_test"}, nil
		})

		session, err := svc.CreateSession(ctx, domain.CreateCheckoutInput{
			ServiceID:   domain.ServiceStandard,
			PaymentType: domain.PaymentUpfront,
			Quantity:    1,
		})

		assert.NoError(t, err)
		assert.Equal(t, "https://checkout.stripe.com/pay/cs_test", session.URL)

		line := captured.LineItems[0]
		assert.Equal(t, int64(20000), *line.PriceData.UnitAmount)
		assert.Equal(t, "Standard Package: Upfront Payment", *line.PriceData.ProductData.Name)
		assert.Equal(t, int64(1), *line.Quantity)
		assert.Equal(t, "https://example.com/services?checkout=success", *captured.SuccessURL)
		assert.Equal(t, "standard", captured.Metadata["service_id"])
	})

	t.Run("Addon With Quantity", func(t *testing.T) {
		var captured *stripe.CheckoutSessionParams
		svc := testService(func(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
			captured = params
			return &stripe.CheckoutSession{URL: "https://checkout.stripe.com/pay/cs_test"}, nil
		})

		_, err := svc.CreateSession(ctx, domain.CreateCheckoutInput{
			ServiceID:   domain.ServiceBasic,
			PaymentType: domain.PaymentRevision,
			Quantity:    2,
		})

		assert.NoError(t, err)
		line := captured.LineItems[0]
		assert.Equal(t, int64(3000), *line.PriceData.UnitAmount)
		assert.Equal(t, "Basic Package: Additional Revision x2", *line.PriceData.ProductData.Name)
		assert.Equal(t, int64(2), *line.Quantity)
	})

	t.Run("Unknown Service", func(t *testing.T) {
		svc := testService(func(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
			t.Fatal("create should not be called")
			return nil, nil
		})

		session, err := svc.CreateSession(ctx, domain.CreateCheckoutInput{
			ServiceID:   "premium",
			PaymentType: domain.PaymentUpfront,
			Quantity:    1,
		})

		assert.Error(t, err)
		assert.Nil(t, session)
	})
}
