package payment

import (
	"context"
	"fmt"
	"strings"

	"github.com/stripe/stripe-go/v82"
)

const ProviderStripe = "stripe"

// Stripe uses Checkout Sessions; the session id is the payment reference.
type Stripe struct {
	client *stripe.Client
}

func NewStripe(secretKey string) *Stripe {
	return &Stripe{client: stripe.NewClient(secretKey)}
}

func (s *Stripe) Name() string { return ProviderStripe }

func (s *Stripe) Initialize(ctx context.Context, req InitRequest) (*InitResult, error) {
	params := &stripe.CheckoutSessionCreateParams{
		Mode:          stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:    stripe.String(successURL(req.CallbackURL)),
		CancelURL:     stripe.String(req.CallbackURL),
		CustomerEmail: stripe.String(req.Email),
		LineItems: []*stripe.CheckoutSessionCreateLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionCreateLineItemPriceDataParams{
					Currency:   stripe.String(strings.ToLower(req.Currency)),
					UnitAmount: stripe.Int64(minorUnits(req.Amount)),
					ProductData: &stripe.CheckoutSessionCreateLineItemPriceDataProductDataParams{
						Name: stripe.String(req.Description),
					},
				},
				Quantity: stripe.Int64(1),
			},
		},
	}
	if req.Reference != "" {
		params.ClientReferenceID = stripe.String(req.Reference)
	}
	for k, v := range req.Metadata {
		params.AddMetadata(k, v)
	}

	cs, err := s.client.V1CheckoutSessions.Create(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("stripe checkout session: %w", err)
	}
	return &InitResult{Provider: ProviderStripe, Reference: cs.ID, AuthorizationURL: cs.URL}, nil
}

func (s *Stripe) Verify(ctx context.Context, reference string) (*Verification, error) {
	cs, err := s.client.V1CheckoutSessions.Retrieve(ctx, reference, &stripe.CheckoutSessionRetrieveParams{})
	if err != nil {
		return nil, fmt.Errorf("stripe retrieve session: %w", err)
	}
	return &Verification{
		Provider:  ProviderStripe,
		Reference: cs.ID,
		Status:    string(cs.PaymentStatus),
		Paid:      cs.PaymentStatus == stripe.CheckoutSessionPaymentStatusPaid,
		Amount:    float64(cs.AmountTotal) / 100,
		Currency:  strings.ToUpper(string(cs.Currency)),
		Metadata:  cs.Metadata,
	}, nil
}

// successURL appends the session placeholder Stripe substitutes on redirect.
func successURL(callback string) string {
	sep := "?"
	if strings.Contains(callback, "?") {
		sep = "&"
	}
	return callback + sep + "provider=stripe&reference={CHECKOUT_SESSION_ID}"
}
