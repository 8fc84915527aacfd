package domain

import "fmt"

type ServiceID string

const (
	ServiceBasic    ServiceID = "basic"
	ServiceStandard ServiceID = "standard"
)

type PaymentType string

const (
	PaymentUpfront  PaymentType = "upfront"
	PaymentFinal    PaymentType = "final"
	PaymentRevision PaymentType = "revision"
	PaymentPage     PaymentType = "page"
)

type CreateCheckoutInput struct {
	ServiceID   ServiceID   `json:"service_id" validate:"required,oneof=basic standard"`
	PaymentType PaymentType `json:"payment_type" validate:"required,oneof=upfront final revision page"`
	Quantity    int64       `json:"quantity" validate:"omitempty,min=1"`
}

type CheckoutSession struct {
	URL string `json:"url"`
}

// Prices in USD. The server is the only source of truth; clients never send
// amounts.
var packagePrices = map[ServiceID]map[PaymentType]int64{
	ServiceBasic:    {PaymentUpfront: 75, PaymentFinal: 75},
	ServiceStandard: {PaymentUpfront: 200, PaymentFinal: 200},
}

var addonPrices = map[PaymentType]int64{
	PaymentRevision: 30,
	PaymentPage:     30,
}

var serviceNames = map[ServiceID]string{
	ServiceBasic:    "Basic",
	ServiceStandard: "Standard",
}

var paymentNames = map[PaymentType]string{
	PaymentUpfront:  "Upfront",
	PaymentFinal:    "Final",
	PaymentRevision: "Revision",
	PaymentPage:     "Page",
}

// PriceLine resolves the unit amount in cents and the line-item name for a
// checkout request.
func (in CreateCheckoutInput) PriceLine() (unitAmountCents int64, name string, err error) {
	serviceName, ok := serviceNames[in.ServiceID]
	if !ok {
		return 0, "", fmt.Errorf("unknown service: %s", in.ServiceID)
	}

	switch in.PaymentType {
	case PaymentUpfront, PaymentFinal:
		price := packagePrices[in.ServiceID][in.PaymentType]
		return price * 100, fmt.Sprintf("%s Package: %s Payment", serviceName, paymentNames[in.PaymentType]), nil
	case PaymentRevision, PaymentPage:
		qty := in.Quantity
		if qty < 1 {
			qty = 1
		}
		return addonPrices[in.PaymentType] * 100,
			fmt.Sprintf("%s Package: Additional %s x%d", serviceName, paymentNames[in.PaymentType], qty), nil
	default:
		return 0, "", fmt.Errorf("unknown payment type: %s", in.PaymentType)
	}
}
