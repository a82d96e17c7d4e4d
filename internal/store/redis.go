package store

import (
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/iurnickita/bizledger/internal/model"
)

const redisPrefix = "ledger:"

// RedisStore keeps every record as a JSON string under ledger:<kind>:<id> and an
// owner index set under ledger:<owner kind>:<owner id>:<kind>s.
type RedisStore struct {
	rdb *redis.Client
}

func NewRedisStore(addr, password string, db int, timeout time.Duration) (*RedisStore, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  timeout,
		ReadTimeout:  timeout,
		WriteTimeout: timeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, err
	}
	return &RedisStore{rdb: rdb}, nil
}

// NewRedisStoreFromClient wraps an already configured client.
func NewRedisStoreFromClient(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

func recordKey(kind, id string) string {
	return redisPrefix + kind + ":" + id
}

func indexKey(ownerKind, ownerID, kind string) string {
	return redisPrefix + ownerKind + ":" + ownerID + ":" + kind + "s"
}

func redisGet[T any](ctx context.Context, rdb *redis.Client, key string) (T, error) {
	var record T
	data, err := rdb.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return record, ErrNoRows
		}
		return record, err
	}
	err = json.Unmarshal(data, &record)
	return record, err
}

// insertScript stores the record only if its key is free and indexes it in the
// same step. KEYS[2], the owner index, is optional.
var insertScript = redis.NewScript(`
if not redis.call("SET", KEYS[1], ARGV[1], "NX") then
	return 0
end
if KEYS[2] then
	redis.call("SADD", KEYS[2], ARGV[2])
end
return 1
`)

func (s *RedisStore) insert(ctx context.Context, key, index, id string, src any) error {
	data, err := json.Marshal(src)
	if err != nil {
		return err
	}
	keys := []string{key}
	if index != "" {
		keys = append(keys, index)
	}
	inserted, err := insertScript.Run(ctx, s.rdb, keys, data, id).Int()
	if err != nil {
		return err
	}
	if inserted == 0 {
		return ErrAlreadyExists
	}
	return nil
}

func (s *RedisStore) put(ctx context.Context, key, index, id string, src any) error {
	data, err := json.Marshal(src)
	if err != nil {
		return err
	}
	_, err = s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, key, data, 0)
		if index != "" {
			pipe.SAdd(ctx, index, id)
		}
		return nil
	})
	return err
}

func (s *RedisStore) delete(ctx context.Context, key, index, id string) error {
	_, err := s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		pipe.SRem(ctx, index, id)
		return nil
	})
	return err
}

func redisList[T any](ctx context.Context, rdb *redis.Client, kind, index string, id func(T) string) ([]T, error) {
	ids, err := rdb.SMembers(ctx, index).Result()
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = recordKey(kind, id)
	}
	values, err := rdb.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	records := make([]T, 0, len(values))
	for i, value := range values {
		data, ok := value.(string)
		if !ok {
			// индекс пережил запись
			continue
		}
		var record T
		if err := json.Unmarshal([]byte(data), &record); err != nil {
			return nil, fmt.Errorf("decode %s: %w", keys[i], err)
		}
		records = append(records, record)
	}
	slices.SortFunc(records, func(a, b T) int { return cmp.Compare(id(a), id(b)) })
	return records, nil
}

// Продажи

func (s *RedisStore) GetInvoice(ctx context.Context, id string) (model.Invoice, error) {
	return redisGet[model.Invoice](ctx, s.rdb, recordKey("invoice", id))
}

func (s *RedisStore) InsertInvoice(ctx context.Context, invoice model.Invoice) error {
	return s.insert(ctx, recordKey("invoice", invoice.ID),
		indexKey("customer", invoice.CustomerID, "invoice"), invoice.ID, invoice)
}

func (s *RedisStore) PutInvoice(ctx context.Context, invoice model.Invoice) error {
	return s.put(ctx, recordKey("invoice", invoice.ID),
		indexKey("customer", invoice.CustomerID, "invoice"), invoice.ID, invoice)
}

func (s *RedisStore) DeleteInvoice(ctx context.Context, id string) error {
	invoice, err := s.GetInvoice(ctx, id)
	if err != nil {
		return err
	}
	return s.delete(ctx, recordKey("invoice", id),
		indexKey("customer", invoice.CustomerID, "invoice"), id)
}

func (s *RedisStore) ListInvoicesByCustomer(ctx context.Context, customerID string) ([]model.Invoice, error) {
	return redisList(ctx, s.rdb, "invoice", indexKey("customer", customerID, "invoice"),
		func(inv model.Invoice) string { return inv.ID })
}

// Закупки

func (s *RedisStore) GetPurchase(ctx context.Context, id string) (model.Purchase, error) {
	return redisGet[model.Purchase](ctx, s.rdb, recordKey("purchase", id))
}

func (s *RedisStore) InsertPurchase(ctx context.Context, purchase model.Purchase) error {
	return s.insert(ctx, recordKey("purchase", purchase.ID),
		indexKey("supplier", purchase.SupplierID, "purchase"), purchase.ID, purchase)
}

func (s *RedisStore) PutPurchase(ctx context.Context, purchase model.Purchase) error {
	return s.put(ctx, recordKey("purchase", purchase.ID),
		indexKey("supplier", purchase.SupplierID, "purchase"), purchase.ID, purchase)
}

func (s *RedisStore) DeletePurchase(ctx context.Context, id string) error {
	purchase, err := s.GetPurchase(ctx, id)
	if err != nil {
		return err
	}
	return s.delete(ctx, recordKey("purchase", id),
		indexKey("supplier", purchase.SupplierID, "purchase"), id)
}

func (s *RedisStore) ListPurchasesBySupplier(ctx context.Context, supplierID string) ([]model.Purchase, error) {
	return redisList(ctx, s.rdb, "purchase", indexKey("supplier", supplierID, "purchase"),
		func(pur model.Purchase) string { return pur.ID })
}

// Контрагенты

func (s *RedisStore) GetCustomer(ctx context.Context, id string) (model.Customer, error) {
	return redisGet[model.Customer](ctx, s.rdb, recordKey("customer", id))
}

func (s *RedisStore) InsertCustomer(ctx context.Context, customer model.Customer) error {
	return s.insert(ctx, recordKey("customer", customer.ID), "", customer.ID, customer)
}

func (s *RedisStore) PutCustomer(ctx context.Context, customer model.Customer) error {
	return s.put(ctx, recordKey("customer", customer.ID), "", customer.ID, customer)
}

func (s *RedisStore) GetSupplier(ctx context.Context, id string) (model.Supplier, error) {
	return redisGet[model.Supplier](ctx, s.rdb, recordKey("supplier", id))
}

func (s *RedisStore) InsertSupplier(ctx context.Context, supplier model.Supplier) error {
	return s.insert(ctx, recordKey("supplier", supplier.ID), "", supplier.ID, supplier)
}

func (s *RedisStore) PutSupplier(ctx context.Context, supplier model.Supplier) error {
	return s.put(ctx, recordKey("supplier", supplier.ID), "", supplier.ID, supplier)
}

func (s *RedisStore) Close() error {
	return s.rdb.Close()
}
