package store

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/iurnickita/bizledger/internal/model"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func TestRedisStore(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	s := NewRedisStoreFromClient(rdb)
	t.Cleanup(func() { _ = s.Close() })

	runStoreContract(t, s)

	// index is kept in step with the records
	require.False(t, mr.Exists(recordKey("invoice", "inv-2")))
	members, err := mr.Members(indexKey("customer", "c1", "invoice"))
	require.NoError(t, err)
	require.Equal(t, []string{"inv-1"}, members)
}

func TestRedisStoreDuplicateInsert(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	s := NewRedisStoreFromClient(rdb)
	t.Cleanup(func() { _ = s.Close() })
	ctx := context.Background()

	first := testInvoice("inv-1", "c1", "100")
	require.NoError(t, s.InsertInvoice(ctx, first))

	err := s.InsertInvoice(ctx, testInvoice("inv-1", "c2", "250"))
	require.ErrorIs(t, err, ErrAlreadyExists)

	// the losing insert leaves neither a record change nor an index entry behind
	require.False(t, mr.Exists(indexKey("customer", "c2", "invoice")))
	members, err := mr.Members(indexKey("customer", "c1", "invoice"))
	require.NoError(t, err)
	require.Equal(t, []string{"inv-1"}, members)

	got, err := s.GetInvoice(ctx, "inv-1")
	require.NoError(t, err)
	require.Equal(t, "c1", got.CustomerID)
	require.True(t, got.GrandTotal.Equal(first.GrandTotal))

	// records without an owner index go through the same script
	require.NoError(t, s.InsertCustomer(ctx, model.Customer{ID: "c1", Name: "Acme"}))
	require.ErrorIs(t, s.InsertCustomer(ctx, model.Customer{ID: "c1", Name: "Other"}), ErrAlreadyExists)
}
