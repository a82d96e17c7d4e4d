// Package store persists ledger records. Every backend overwrites whole records;
// no multi-record transaction is offered.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/iurnickita/bizledger/internal/model"
	"github.com/iurnickita/bizledger/internal/store/config"
)

type Store interface {
	GetInvoice(ctx context.Context, id string) (model.Invoice, error)
	InsertInvoice(ctx context.Context, invoice model.Invoice) error
	PutInvoice(ctx context.Context, invoice model.Invoice) error
	DeleteInvoice(ctx context.Context, id string) error
	ListInvoicesByCustomer(ctx context.Context, customerID string) ([]model.Invoice, error)

	GetPurchase(ctx context.Context, id string) (model.Purchase, error)
	InsertPurchase(ctx context.Context, purchase model.Purchase) error
	PutPurchase(ctx context.Context, purchase model.Purchase) error
	DeletePurchase(ctx context.Context, id string) error
	ListPurchasesBySupplier(ctx context.Context, supplierID string) ([]model.Purchase, error)

	GetCustomer(ctx context.Context, id string) (model.Customer, error)
	InsertCustomer(ctx context.Context, customer model.Customer) error
	PutCustomer(ctx context.Context, customer model.Customer) error

	GetSupplier(ctx context.Context, id string) (model.Supplier, error)
	InsertSupplier(ctx context.Context, supplier model.Supplier) error
	PutSupplier(ctx context.Context, supplier model.Supplier) error

	Close() error
}

var (
	ErrNoRows        = errors.New("no rows")
	ErrAlreadyExists = errors.New("already exists")
	ErrUnknownKind   = errors.New("unknown store kind")
)

const defaultTimeout = 5 * time.Second

// NewStore opens the configured backend. Without an explicit kind a DSN selects
// postgres, otherwise records are kept in memory.
func NewStore(cfg config.Config) (Store, error) {
	kind := cfg.Kind
	if kind == "" {
		kind = config.KindMemory
		if cfg.DBDsn != "" {
			kind = config.KindPostgres
		}
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	var (
		backend Store
		err     error
	)
	switch kind {
	case config.KindMemory:
		backend = NewMemoryStore()
	case config.KindPostgres:
		backend, err = NewPostgresStore(cfg.DBDsn, timeout)
	case config.KindRedis:
		backend, err = NewRedisStore(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, timeout)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	if err != nil {
		return nil, err
	}
	return WithTimeout(backend, timeout), nil
}
