package repository

import (
	"context"
	"errors"
	"fmt"

	"car-rental/pkg/database"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type Repository struct {
	Customer    CustomerRepository
	Vehicle     VehicleRepository
	Reservation ReservationRepository
	Payment     PaymentRepository
}

func NewRepository(db database.Querier, log *zap.Logger) *Repository {
	return &Repository{
		Customer:    NewCustomerRepository(db, log),
		Vehicle:     NewVehicleRepository(db, log),
		Reservation: NewReservationRepository(db, log),
		Payment:     NewPaymentRepository(db, log),
	}
}

// Transactor runs fn against repositories bound to a single transaction.
// The transaction commits when fn returns nil and rolls back otherwise.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx *Repository) error) error
}

type transactor struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewTransactor(db database.PgxIface, log *zap.Logger) Transactor {
	return &transactor{
		db:  db,
		log: log,
	}
}

func (t *transactor) WithinTx(ctx context.Context, fn func(ctx context.Context, tx *Repository) error) error {
	tx, err := t.db.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", MapError(err))
	}

	committed := false
	defer func() {
		if !committed {
			if rbErr := tx.Rollback(context.WithoutCancel(ctx)); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
				t.log.Warn("Failed to rollback transaction", zap.Error(rbErr))
			}
		}
	}()

	if err := fn(ctx, NewRepository(tx, t.log)); err != nil {
		return err
	}

	// no partial writes once the caller has given up
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("commit aborted: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", MapError(err))
	}
	committed = true
	return nil
}
