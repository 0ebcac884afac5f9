package cart

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	redis "github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/embervale/backend-vapor/internal/catalog"
)

type fakeProducts struct {
	products map[uuid.UUID]catalog.Product
}

func (f fakeProducts) ByID(_ context.Context, id uuid.UUID) (catalog.Product, error) {
	p, ok := f.products[id]
	if !ok {
		return catalog.Product{}, catalog.ErrNotFound
	}
	return p, nil
}

func newTestService(t *testing.T) (*Service, *miniredis.Miniredis, fakeProducts) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	products := fakeProducts{products: map[uuid.UUID]catalog.Product{}}
	svc := &Service{R: client, Products: products, TTL: time.Hour}
	return svc, mr, products
}

func addProduct(products fakeProducts, price string, inStock bool) uuid.UUID {
	id := uuid.New()
	products.products[id] = catalog.Product{
		ID:        id,
		Slug:      "p-" + id.String()[:8],
		Name:      "Product " + id.String()[:8],
		UnitPrice: decimal.RequireFromString(price),
		InStock:   inStock,
	}
	return id
}

func TestCreateAndGet(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx)
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, created.ID)
	require.Empty(t, created.Items)

	got, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, created.ID, got.ID)
}

func TestGetMissingCart(t *testing.T) {
	svc, _, _ := newTestService(t)
	_, err := svc.Get(context.Background(), uuid.New())
	require.ErrorIs(t, err, ErrNotFound)
}

func TestGetExpiredCart(t *testing.T) {
	svc, mr, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx)
	require.NoError(t, err)

	mr.FastForward(2 * time.Hour)

	_, err = svc.Get(ctx, created.ID)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestAddItemResolvesPriceAndIncrements(t *testing.T) {
	svc, _, products := newTestService(t)
	ctx := context.Background()
	productID := addProduct(products, "19.90", true)

	created, err := svc.Create(ctx)
	require.NoError(t, err)

	cart, err := svc.AddItem(ctx, created.ID, productID, 2)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	require.True(t, cart.Items[0].UnitPrice.Equal(decimal.RequireFromString("19.90")))
	require.EqualValues(t, 2, cart.Items[0].Quantity)

	cart, err = svc.AddItem(ctx, created.ID, productID, 3)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	require.EqualValues(t, 5, cart.Items[0].Quantity)
	require.True(t, cart.Subtotal().Equal(decimal.RequireFromString("99.50")))
}

func TestAddItemRejectsNonPositiveQty(t *testing.T) {
	svc, _, products := newTestService(t)
	ctx := context.Background()
	productID := addProduct(products, "5", true)

	created, err := svc.Create(ctx)
	require.NoError(t, err)

	_, err = svc.AddItem(ctx, created.ID, productID, 0)
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestAddItemOutOfStock(t *testing.T) {
	svc, _, products := newTestService(t)
	ctx := context.Background()
	productID := addProduct(products, "5", false)

	created, err := svc.Create(ctx)
	require.NoError(t, err)

	_, err = svc.AddItem(ctx, created.ID, productID, 1)
	require.ErrorIs(t, err, ErrOutOfStock)
}

func TestUpdateAndRemoveItem(t *testing.T) {
	svc, _, products := newTestService(t)
	ctx := context.Background()
	productID := addProduct(products, "10", true)

	created, err := svc.Create(ctx)
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, created.ID, productID, 1)
	require.NoError(t, err)

	cart, err := svc.UpdateItem(ctx, created.ID, productID, 7)
	require.NoError(t, err)
	require.EqualValues(t, 7, cart.Items[0].Quantity)

	_, err = svc.UpdateItem(ctx, created.ID, uuid.New(), 2)
	require.ErrorIs(t, err, ErrNotFound)

	cart, err = svc.RemoveItem(ctx, created.ID, productID)
	require.NoError(t, err)
	require.Empty(t, cart.Items)

	_, err = svc.RemoveItem(ctx, created.ID, productID)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestCouponLifecycle(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx)
	require.NoError(t, err)

	cart, err := svc.SetCoupon(ctx, created.ID, "SAVE10")
	require.NoError(t, err)
	require.Equal(t, "SAVE10", cart.CouponCode)

	cart, err = svc.ClearCoupon(ctx, created.ID)
	require.NoError(t, err)
	require.Empty(t, cart.CouponCode)
}

func TestDeleteCart(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx)
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, created.ID))

	_, err = svc.Get(ctx, created.ID)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestLinesSkipNothingButPricingDoes(t *testing.T) {
	cart := Cart{Items: []Item{
		{UnitPrice: decimal.RequireFromString("4"), Quantity: 0},
		{UnitPrice: decimal.RequireFromString("6"), Quantity: 2},
	}}
	lines := cart.Lines()
	require.Len(t, lines, 2)
	require.True(t, cart.Subtotal().Equal(decimal.RequireFromString("12")))
}
