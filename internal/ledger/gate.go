// Package ledger tracks each user's spendable credits and free-trial
// allowances, and gates paid invocations of the layout engines.
//
// Charging is an explicit two-phase reservation: callers Reserve before
// running an engine, then Commit on success or Release on failure. The
// debit happens at Reserve time inside a transaction, so a crash between
// debit and refund can always be reconciled from the reservation row
// instead of silently over-charging the user.
package ledger

import (
	"context"
	"errors"
	"fmt"
)

type Feature string

const (
	FeatureAutoNest  Feature = "auto-nest"
	FeatureSmartFill Feature = "smart-fill"
)

// featureCosts is the credit price per engine invocation.
var featureCosts = map[Feature]int{
	FeatureAutoNest:  1,
	FeatureSmartFill: 1,
}

var (
	ErrInsufficientCredits = errors.New("insufficient credits")
	ErrUnknownFeature      = errors.New("unknown feature")
	ErrAccountNotFound     = errors.New("credit account not found")
	ErrReservationSettled  = errors.New("reservation already settled")
)

// Decision is the answer to "may this user run this feature right now".
type Decision struct {
	CanProceed   bool   `json:"canProceed"`
	Cost         int    `json:"cost"`
	UseFreeTrial bool   `json:"useFreeTrial"`
	Reason       string `json:"reason,omitempty"`
}

// Reservation is a held charge awaiting Commit or Release.
type Reservation struct {
	ID           string
	UserID       string
	Feature      Feature
	Cost         int
	UseFreeTrial bool
}

// Gate is the port callers hold. The engines themselves never see it; it is
// purely a calling convention enforced at the HTTP boundary.
type Gate interface {
	CheckCost(ctx context.Context, userID string, feature Feature) (Decision, error)
	Reserve(ctx context.Context, userID string, feature Feature) (*Reservation, error)
	Commit(ctx context.Context, reservationID string) error
	Release(ctx context.Context, reservationID string) error
}

// Cost returns the credit price of a feature.
func Cost(feature Feature) (int, error) {
	cost, ok := featureCosts[feature]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownFeature, feature)
	}
	return cost, nil
}

// decide is the pure pricing rule: free trials are consumed before credits.
func decide(balance, freeTrials, cost int) Decision {
	switch {
	case freeTrials > 0:
		return Decision{CanProceed: true, Cost: 0, UseFreeTrial: true}
	case balance >= cost:
		return Decision{CanProceed: true, Cost: cost}
	default:
		return Decision{
			CanProceed: false,
			Cost:       cost,
			Reason:     "insufficient credits",
		}
	}
}
