package payment

import (
	"context"
	"math"
)

type InitRequest struct {
	Reference   string
	Email       string
	Amount      float64
	Currency    string
	CallbackURL string
	Description string
	Metadata    map[string]string
}

type InitResult struct {
	Provider         string `json:"provider"`
	Reference        string `json:"reference"`
	AuthorizationURL string `json:"authorization_url"`
}

type Verification struct {
	Provider  string
	Reference string
	Paid      bool
	Status    string
	Amount    float64
	Currency  string
	Metadata  map[string]string
}

// Gateway is a payment provider that can start a checkout and later confirm
// that it was paid.
type Gateway interface {
	Name() string
	Initialize(ctx context.Context, req InitRequest) (*InitResult, error)
	Verify(ctx context.Context, reference string) (*Verification, error)
}

type Registry map[string]Gateway

func NewRegistry(gateways ...Gateway) Registry {
	r := make(Registry, len(gateways))
	for _, g := range gateways {
		r[g.Name()] = g
	}
	return r
}

func (r Registry) Get(name string) (Gateway, bool) {
	g, ok := r[name]
	return g, ok
}

// minorUnits converts an amount to kobo/cents.
func minorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}
