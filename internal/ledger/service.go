package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/printloom/printloom/backend-go/internal/typeid"
)

// Service is the pgx-backed Gate implementation.
type Service struct {
	pool       *pgxpool.Pool
	freeTrials int // seeded onto every new account
}

var _ Gate = (*Service)(nil)

func NewService(pool *pgxpool.Pool, freeTrials int) *Service {
	return &Service{pool: pool, freeTrials: freeTrials}
}

// Account is a user's spendable state.
type Account struct {
	UserID              string `json:"userId"`
	Balance             int    `json:"balance"`
	FreeTrialsRemaining int    `json:"freeTrialsRemaining"`
}

// EnsureAccount creates the credit account for a new user. Existing accounts
// are left untouched.
func (s *Service) EnsureAccount(ctx context.Context, userID string) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO credit_accounts (user_id, balance, free_trials_remaining)
		 VALUES ($1, 0, $2)
		 ON CONFLICT (user_id) DO NOTHING`,
		userID, s.freeTrials)
	if err != nil {
		return fmt.Errorf("ensure account: %w", err)
	}
	return nil
}

// GetAccount returns the current balance and trial allowance.
func (s *Service) GetAccount(ctx context.Context, userID string) (*Account, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT user_id, balance, free_trials_remaining FROM credit_accounts WHERE user_id = $1`,
		userID)
	var a Account
	if err := row.Scan(&a.UserID, &a.Balance, &a.FreeTrialsRemaining); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("get account: %w", err)
	}
	return &a, nil
}

// OpeningBalance reports an account's state as two plain ints, sized for the
// auth registration flow.
func (s *Service) OpeningBalance(ctx context.Context, userID string) (balance, freeTrials int, err error) {
	account, err := s.GetAccount(ctx, userID)
	if err != nil {
		return 0, 0, err
	}
	return account.Balance, account.FreeTrialsRemaining, nil
}

// AddCredits tops up a user's balance.
func (s *Service) AddCredits(ctx context.Context, userID string, amount int) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE credit_accounts SET balance = balance + $2 WHERE user_id = $1`,
		userID, amount)
	if err != nil {
		return fmt.Errorf("add credits: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrAccountNotFound
	}
	return nil
}

func (s *Service) CheckCost(ctx context.Context, userID string, feature Feature) (Decision, error) {
	cost, err := Cost(feature)
	if err != nil {
		return Decision{}, err
	}

	account, err := s.GetAccount(ctx, userID)
	if err != nil {
		return Decision{}, err
	}

	return decide(account.Balance, account.FreeTrialsRemaining, cost), nil
}

// Reserve debits the user up front and records a reservation row. The debit
// and the row are written in one transaction with the account row locked, so
// concurrent reservations cannot overdraw the balance.
func (s *Service) Reserve(ctx context.Context, userID string, feature Feature) (*Reservation, error) {
	cost, err := Cost(feature)
	if err != nil {
		return nil, err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin reserve: %w", err)
	}
	defer tx.Rollback(ctx)

	var balance, freeTrials int
	row := tx.QueryRow(ctx,
		`SELECT balance, free_trials_remaining FROM credit_accounts
		 WHERE user_id = $1 FOR UPDATE`, userID)
	if err := row.Scan(&balance, &freeTrials); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("lock account: %w", err)
	}

	decision := decide(balance, freeTrials, cost)
	if !decision.CanProceed {
		return nil, ErrInsufficientCredits
	}

	if decision.UseFreeTrial {
		_, err = tx.Exec(ctx,
			`UPDATE credit_accounts SET free_trials_remaining = free_trials_remaining - 1
			 WHERE user_id = $1`, userID)
	} else {
		_, err = tx.Exec(ctx,
			`UPDATE credit_accounts SET balance = balance - $2 WHERE user_id = $1`,
			userID, cost)
	}
	if err != nil {
		return nil, fmt.Errorf("debit account: %w", err)
	}

	res := &Reservation{
		ID:           typeid.NewReservationID(),
		UserID:       userID,
		Feature:      feature,
		Cost:         decision.Cost,
		UseFreeTrial: decision.UseFreeTrial,
	}
	_, err = tx.Exec(ctx,
		`INSERT INTO credit_reservations (id, user_id, feature, cost, free_trial, status)
		 VALUES ($1, $2, $3, $4, $5, 'reserved')`,
		res.ID, res.UserID, string(res.Feature), res.Cost, res.UseFreeTrial)
	if err != nil {
		return nil, fmt.Errorf("record reservation: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit reserve: %w", err)
	}
	return res, nil
}

// Commit finalizes a held charge. The debit already happened at Reserve.
func (s *Service) Commit(ctx context.Context, reservationID string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE credit_reservations SET status = 'committed'
		 WHERE id = $1 AND status = 'reserved'`, reservationID)
	if err != nil {
		return fmt.Errorf("commit reservation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrReservationSettled
	}
	return nil
}

// Release refunds a held charge: the trial or credits go back to the account
// and the reservation is closed, all in one transaction.
func (s *Service) Release(ctx context.Context, reservationID string) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin release: %w", err)
	}
	defer tx.Rollback(ctx)

	var userID string
	var cost int
	var freeTrial bool
	row := tx.QueryRow(ctx,
		`SELECT user_id, cost, free_trial FROM credit_reservations
		 WHERE id = $1 AND status = 'reserved' FOR UPDATE`, reservationID)
	if err := row.Scan(&userID, &cost, &freeTrial); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrReservationSettled
		}
		return fmt.Errorf("lock reservation: %w", err)
	}

	if freeTrial {
		_, err = tx.Exec(ctx,
			`UPDATE credit_accounts SET free_trials_remaining = free_trials_remaining + 1
			 WHERE user_id = $1`, userID)
	} else {
		_, err = tx.Exec(ctx,
			`UPDATE credit_accounts SET balance = balance + $2 WHERE user_id = $1`,
			userID, cost)
	}
	if err != nil {
		return fmt.Errorf("refund account: %w", err)
	}

	_, err = tx.Exec(ctx,
		`UPDATE credit_reservations SET status = 'released' WHERE id = $1`, reservationID)
	if err != nil {
		return fmt.Errorf("close reservation: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit release: %w", err)
	}
	return nil
}
