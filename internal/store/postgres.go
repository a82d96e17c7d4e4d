package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/iurnickita/bizledger/internal/model"
)

const pgUniqueViolation = "23505"

// Записи хранятся документами JSONB: поля совпадают с тем, что читают UI и отчеты.
// owner - клиент для invoice, поставщик для purchase, пусто для контрагентов.
var pgTables = []string{"invoice", "purchase", "customer", "supplier"}

type PostgresStore struct {
	database *sql.DB
}

func NewPostgresStore(dsn string, timeout time.Duration) (*PostgresStore, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	for _, table := range pgTables {
		_, err = db.ExecContext(ctx,
			"CREATE TABLE IF NOT EXISTS "+table+" ("+
				" id VARCHAR (64) PRIMARY KEY,"+
				" owner VARCHAR (64) NOT NULL,"+
				" document JSONB NOT NULL"+
				" );")
		if err != nil {
			_ = db.Close()
			return nil, err
		}
		_, err = db.ExecContext(ctx,
			"CREATE INDEX IF NOT EXISTS "+table+"_owner_idx ON "+table+" (owner);")
		if err != nil {
			_ = db.Close()
			return nil, err
		}
	}

	return &PostgresStore{database: db}, nil
}

func (store *PostgresStore) get(ctx context.Context, table, id string, dst any) error {
	row := store.database.QueryRowContext(ctx,
		"SELECT document FROM "+table+
			" WHERE id = $1",
		id)
	var document []byte
	err := row.Scan(&document)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNoRows
		}
		return err
	}
	return json.Unmarshal(document, dst)
}

func (store *PostgresStore) insert(ctx context.Context, table, id, owner string, src any) error {
	document, err := json.Marshal(src)
	if err != nil {
		return err
	}
	_, err = store.database.ExecContext(ctx,
		"INSERT INTO "+table+" (id, owner, document)"+
			" VALUES ($1, $2, $3)",
		id, owner, string(document))
	if err != nil {
		// Проверка: уже существует
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return ErrAlreadyExists
		}
		return err
	}
	return nil
}

func (store *PostgresStore) put(ctx context.Context, table, id, owner string, src any) error {
	document, err := json.Marshal(src)
	if err != nil {
		return err
	}
	// Запись целиком, без частичного обновления
	_, err = store.database.ExecContext(ctx,
		"INSERT INTO "+table+" (id, owner, document)"+
			" VALUES ($1, $2, $3)"+
			" ON CONFLICT (id) DO UPDATE"+
			" SET owner = EXCLUDED.owner, document = EXCLUDED.document",
		id, owner, string(document))
	return err
}

func (store *PostgresStore) delete(ctx context.Context, table, id string) error {
	res, err := store.database.ExecContext(ctx,
		"DELETE FROM "+table+
			" WHERE id = $1",
		id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNoRows
	}
	return nil
}

func listByOwner[T any](ctx context.Context, db *sql.DB, table, owner string) ([]T, error) {
	rows, err := db.QueryContext(ctx,
		"SELECT document FROM "+table+
			" WHERE owner = $1"+
			" ORDER BY id",
		owner)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []T
	for rows.Next() {
		var document []byte
		if err := rows.Scan(&document); err != nil {
			return nil, err
		}
		var record T
		if err := json.Unmarshal(document, &record); err != nil {
			return nil, fmt.Errorf("decode %s row: %w", table, err)
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

// Продажи

func (store *PostgresStore) GetInvoice(ctx context.Context, id string) (model.Invoice, error) {
	var invoice model.Invoice
	err := store.get(ctx, "invoice", id, &invoice)
	return invoice, err
}

func (store *PostgresStore) InsertInvoice(ctx context.Context, invoice model.Invoice) error {
	return store.insert(ctx, "invoice", invoice.ID, invoice.CustomerID, invoice)
}

func (store *PostgresStore) PutInvoice(ctx context.Context, invoice model.Invoice) error {
	return store.put(ctx, "invoice", invoice.ID, invoice.CustomerID, invoice)
}

func (store *PostgresStore) DeleteInvoice(ctx context.Context, id string) error {
	return store.delete(ctx, "invoice", id)
}

func (store *PostgresStore) ListInvoicesByCustomer(ctx context.Context, customerID string) ([]model.Invoice, error) {
	return listByOwner[model.Invoice](ctx, store.database, "invoice", customerID)
}

// Закупки

func (store *PostgresStore) GetPurchase(ctx context.Context, id string) (model.Purchase, error) {
	var purchase model.Purchase
	err := store.get(ctx, "purchase", id, &purchase)
	return purchase, err
}

func (store *PostgresStore) InsertPurchase(ctx context.Context, purchase model.Purchase) error {
	return store.insert(ctx, "purchase", purchase.ID, purchase.SupplierID, purchase)
}

func (store *PostgresStore) PutPurchase(ctx context.Context, purchase model.Purchase) error {
	return store.put(ctx, "purchase", purchase.ID, purchase.SupplierID, purchase)
}

func (store *PostgresStore) DeletePurchase(ctx context.Context, id string) error {
	return store.delete(ctx, "purchase", id)
}

func (store *PostgresStore) ListPurchasesBySupplier(ctx context.Context, supplierID string) ([]model.Purchase, error) {
	return listByOwner[model.Purchase](ctx, store.database, "purchase", supplierID)
}

// Контрагенты

func (store *PostgresStore) GetCustomer(ctx context.Context, id string) (model.Customer, error) {
	var customer model.Customer
	err := store.get(ctx, "customer", id, &customer)
	return customer, err
}

func (store *PostgresStore) InsertCustomer(ctx context.Context, customer model.Customer) error {
	return store.insert(ctx, "customer", customer.ID, "", customer)
}

func (store *PostgresStore) PutCustomer(ctx context.Context, customer model.Customer) error {
	return store.put(ctx, "customer", customer.ID, "", customer)
}

func (store *PostgresStore) GetSupplier(ctx context.Context, id string) (model.Supplier, error) {
	var supplier model.Supplier
	err := store.get(ctx, "supplier", id, &supplier)
	return supplier, err
}

func (store *PostgresStore) InsertSupplier(ctx context.Context, supplier model.Supplier) error {
	return store.insert(ctx, "supplier", supplier.ID, "", supplier)
}

func (store *PostgresStore) PutSupplier(ctx context.Context, supplier model.Supplier) error {
	return store.put(ctx, "supplier", supplier.ID, "", supplier)
}

func (store *PostgresStore) Close() error {
	return store.database.Close()
}
