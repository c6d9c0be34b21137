package domain

import "time"

const (
	// SubscriptionPrice is the fixed price of a subscription.
	SubscriptionPrice = 130.0

	// SubscriptionDays is how long a subscription lasts, counted from purchase.
	SubscriptionDays = 30
)

// Subscription is a paid pass covering every parking interval that starts
// inside its validity window.
type Subscription struct {
	PurchasedAt time.Time
	Price       float64
}

// NewSubscription creates a subscription bought at the given time.
func NewSubscription(purchasedAt time.Time) *Subscription {
	return &Subscription{
		PurchasedAt: purchasedAt,
		Price:       SubscriptionPrice,
	}
}

// ExpiresAt returns the last instant the subscription is valid.
func (s *Subscription) ExpiresAt() time.Time {
	return s.PurchasedAt.AddDate(0, 0, SubscriptionDays)
}

// IsValid reports whether t falls inside [PurchasedAt, PurchasedAt+30 days].
// Both bounds are inclusive.
func (s *Subscription) IsValid(t time.Time) bool {
	if s == nil {
		return false
	}
	return !t.Before(s.PurchasedAt) && !t.After(s.ExpiresAt())
}

// PurchasedOn reports whether the subscription was bought on the given calendar day.
func (s *Subscription) PurchasedOn(day time.Time) bool {
	if s == nil {
		return false
	}
	return DayKey(s.PurchasedAt) == DayKey(day)
}
