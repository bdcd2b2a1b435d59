// Package checkout is the mock payment step. No money moves; it produces a
// receipt and, depending on policy, empties the cart.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/Makepad-fr/bookshop/internal/cart"
	"github.com/google/uuid"
)

// Policy says what happens to the cart after a successful payment.
type Policy string

const (
	PolicyKeep  Policy = "keep"
	PolicyClear Policy = "clear"
)

var (
	ErrEmptyCart     = errors.New("cart is empty")
	ErrUnknownPolicy = errors.New("unknown checkout policy")
)

// ParsePolicy maps a config value to a Policy. Empty means keep.
func ParsePolicy(s string) (Policy, error) {
	switch Policy(s) {
	case "", PolicyKeep:
		return PolicyKeep, nil
	case PolicyClear:
		return PolicyClear, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownPolicy, s)
}

// Receipt describes one mock payment.
type Receipt struct {
	ID        string
	Account   string
	Amount    float64
	Items     int
	Cleared   bool
	CreatedAt time.Time
}

type Service struct {
	cart   *cart.Store
	policy Policy
	logger *slog.Logger
	now    func() time.Time
	rand   func(n int) int
}

func NewService(c *cart.Store, policy Policy, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if policy == "" {
		policy = PolicyKeep
	}
	return &Service{cart: c, policy: policy, logger: logger, now: time.Now, rand: rand.IntN}
}

func (s *Service) Policy() Policy { return s.policy }

// Pay charges the cart total to a made-up PayPal account.
func (s *Service) Pay(ctx context.Context) (*Receipt, error) {
	if s.cart.Len() == 0 {
		return nil, ErrEmptyCart
	}
	r := &Receipt{
		ID:        uuid.NewString(),
		Account:   fmt.Sprintf("paypal-%06d", s.rand(1000000)),
		Amount:    s.cart.Total(),
		Items:     s.cart.Count(),
		CreatedAt: s.now(),
	}
	if s.policy == PolicyClear {
		if err := s.cart.Clear(ctx); err != nil {
			// payment is already "done"; report the failed clear with the receipt
			return r, fmt.Errorf("clear cart: %w", err)
		}
		r.Cleared = true
	}
	s.logger.Info("checkout",
		slog.String("receipt", r.ID),
		slog.Float64("amount", r.Amount),
		slog.Int("items", r.Items),
		slog.Bool("cleared", r.Cleared),
	)
	return r, nil
}
