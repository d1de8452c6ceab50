package orders

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/partsdesk/partsdesk/internal/sales/quotations"
	"github.com/partsdesk/partsdesk/internal/shared"
)

type memoryOrderRepo struct {
	orders     map[int64]*ActiveOrder
	items      map[int64][]OrderItem
	nextOrder  int64
	nextItemID int64
}

func newMemoryOrderRepo() *memoryOrderRepo {
	return &memoryOrderRepo{orders: make(map[int64]*ActiveOrder), items: make(map[int64][]OrderItem)}
}

func (r *memoryOrderRepo) WithTx(ctx context.Context, fn func(context.Context, Repository) error) error {
	return fn(ctx, r)
}

func (r *memoryOrderRepo) Create(ctx context.Context, o ActiveOrder) (int64, error) {
	r.nextOrder++
	o.ID = r.nextOrder
	o.CreatedAt = time.Now()
	o.UpdatedAt = o.CreatedAt
	o.Items = nil
	r.orders[o.ID] = &o
	return o.ID, nil
}

func (r *memoryOrderRepo) InsertItem(ctx context.Context, item OrderItem) (int64, error) {
	r.nextItemID++
	item.ID = r.nextItemID
	r.items[item.OrderID] = append(r.items[item.OrderID], item)
	return item.ID, nil
}

func (r *memoryOrderRepo) Get(ctx context.Context, id int64) (*ActiveOrder, error) {
	o, ok := r.orders[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *o
	copied.Items = append([]OrderItem(nil), r.items[id]...)
	return &copied, nil
}

func (r *memoryOrderRepo) List(ctx context.Context, req ListOrdersRequest) ([]ActiveOrder, int, error) {
	var out []ActiveOrder
	for _, o := range r.orders {
		if req.Status != "" && o.Status != req.Status {
			continue
		}
		out = append(out, *o)
	}
	return out, len(out), nil
}

func (r *memoryOrderRepo) UpdateStatus(ctx context.Context, id int64, status OrderStatus) error {
	o, ok := r.orders[id]
	if !ok {
		return ErrNotFound
	}
	o.Status = status
	o.UpdatedAt = time.Now()
	return nil
}

func (r *memoryOrderRepo) SetItemPicked(ctx context.Context, orderID, itemID int64, picked bool, pickedBy *int64, pickedAt *time.Time) error {
	items := r.items[orderID]
	for i := range items {
		if items[i].ID == itemID {
			items[i].IsPicked = picked
			items[i].PickedBy = pickedBy
			items[i].PickedAt = pickedAt
			return nil
		}
	}
	return ErrItemNotFound
}

func (r *memoryOrderRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := r.orders[id]; !ok {
		return ErrNotFound
	}
	delete(r.orders, id)
	delete(r.items, id)
	return nil
}

type orderNumbers struct{ n int }

func (f *orderNumbers) NextNumber(ctx context.Context, docType shared.DocType) (string, error) {
	f.n++
	return fmt.Sprintf("%s-2608-%04d", docType, f.n), nil
}

type nopAudit struct{}

func (nopAudit) Record(ctx context.Context, log shared.AuditLog) error { return nil }

func newOrderService() (*Service, *memoryOrderRepo) {
	repo := newMemoryOrderRepo()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(repo, &orderNumbers{}, nopAudit{}, logger), repo
}

var opAdmin = shared.Operator{ID: 7, Name: "asha", Admin: true}

func validOrderRequest() CreateOrderRequest {
	return CreateOrderRequest{
		CustomerName:  "Sri Venkateswara Motors",
		CustomerPhone: "9876543210",
		Items: []OrderItemReq{
			{Name: "Brake pads", Quantity: 2, Price: 2500},
			{Name: "Oil filter", Quantity: 4, Price: 750},
		},
	}
}

func TestCreateOrderStartsPicking(t *testing.T) {
	svc, _ := newOrderService()

	order, err := svc.Create(context.Background(), opAdmin, validOrderRequest())
	require.NoError(t, err)
	require.Equal(t, "ORD-2608-0001", order.OrderNumber)
	require.Equal(t, StatusPicking, order.Status)
	require.InDelta(t, 8000.0, order.TotalAmount, 0.001)
	require.Len(t, order.Items, 2)
	for _, item := range order.Items {
		require.False(t, item.IsPicked)
		require.Nil(t, item.PickedBy)
		require.Nil(t, item.PickedAt)
	}
}

func TestSpawnFromQuotationCopiesItemsUnpicked(t *testing.T) {
	svc, repo := newOrderService()

	productID := int64(12)
	q := quotations.Quotation{
		ID:              5,
		QuotationNumber: "QTN-2608-0005",
		CustomerName:    "Guntur Tractors",
		CustomerPhone:   "9000000000",
		Status:          quotations.StatusPending,
		Items: []quotations.QuotationItem{
			{ProductID: &productID, Name: "Clutch plate", Quantity: 1, Price: 3200},
			{Name: "Gasket set", Quantity: 2, Price: 450},
		},
	}

	orderID, err := svc.SpawnFromQuotation(context.Background(), q, opAdmin.ID)
	require.NoError(t, err)

	order, err := repo.Get(context.Background(), orderID)
	require.NoError(t, err)
	require.Equal(t, StatusPicking, order.Status)
	require.NotNil(t, order.QuotationID)
	require.Equal(t, int64(5), *order.QuotationID)
	require.Equal(t, "Guntur Tractors", order.CustomerName)
	require.InDelta(t, 4100.0, order.TotalAmount, 0.001)
	require.Len(t, order.Items, 2)
	require.Equal(t, "Clutch plate", order.Items[0].Name)
	require.NotNil(t, order.Items[0].ProductID)
	for _, item := range order.Items {
		require.False(t, item.IsPicked)
	}
}

func TestSetStatusForwardOnly(t *testing.T) {
	svc, _ := newOrderService()
	order, err := svc.Create(context.Background(), opAdmin, validOrderRequest())
	require.NoError(t, err)

	order, err = svc.SetStatus(context.Background(), opAdmin, order.ID, StatusReady)
	require.NoError(t, err)
	require.Equal(t, StatusReady, order.Status)

	order, err = svc.SetStatus(context.Background(), opAdmin, order.ID, StatusDispatched)
	require.NoError(t, err)
	require.Equal(t, StatusDispatched, order.Status)

	_, err = svc.SetStatus(context.Background(), opAdmin, order.ID, StatusPicking)
	require.ErrorIs(t, err, ErrBadTransition)

	_, err = svc.SetStatus(context.Background(), opAdmin, order.ID, StatusDispatched)
	require.ErrorIs(t, err, ErrBadTransition)
}

func TestSetStatusAllowsSkippingAhead(t *testing.T) {
	svc, _ := newOrderService()
	order, err := svc.Create(context.Background(), opAdmin, validOrderRequest())
	require.NoError(t, err)

	// A counter sale can go straight out the door.
	order, err = svc.SetStatus(context.Background(), opAdmin, order.ID, StatusCompleted)
	require.NoError(t, err)
	require.Equal(t, StatusCompleted, order.Status)
}

func TestSetStatusRejectsUnknown(t *testing.T) {
	svc, _ := newOrderService()
	order, err := svc.Create(context.Background(), opAdmin, validOrderRequest())
	require.NoError(t, err)

	_, err = svc.SetStatus(context.Background(), opAdmin, order.ID, "cancelled")
	require.ErrorIs(t, err, ErrBadTransition)
}

func TestPickItemStampsOperatorAndTime(t *testing.T) {
	svc, _ := newOrderService()
	order, err := svc.Create(context.Background(), opAdmin, validOrderRequest())
	require.NoError(t, err)

	itemID := order.Items[0].ID
	order, err = svc.PickItem(context.Background(), opAdmin, order.ID, itemID, true)
	require.NoError(t, err)
	require.True(t, order.Items[0].IsPicked)
	require.NotNil(t, order.Items[0].PickedBy)
	require.Equal(t, opAdmin.ID, *order.Items[0].PickedBy)
	require.NotNil(t, order.Items[0].PickedAt)
	require.False(t, order.FullyPicked())

	order, err = svc.PickItem(context.Background(), opAdmin, order.ID, order.Items[1].ID, true)
	require.NoError(t, err)
	require.True(t, order.FullyPicked())

	// Unpicking clears the stamp.
	order, err = svc.PickItem(context.Background(), opAdmin, order.ID, itemID, false)
	require.NoError(t, err)
	require.False(t, order.Items[0].IsPicked)
	require.Nil(t, order.Items[0].PickedBy)
	require.Nil(t, order.Items[0].PickedAt)
}

func TestPickItemClosedAfterDispatch(t *testing.T) {
	svc, _ := newOrderService()
	order, err := svc.Create(context.Background(), opAdmin, validOrderRequest())
	require.NoError(t, err)

	_, err = svc.SetStatus(context.Background(), opAdmin, order.ID, StatusDispatched)
	require.NoError(t, err)

	_, err = svc.PickItem(context.Background(), opAdmin, order.ID, order.Items[0].ID, true)
	require.ErrorIs(t, err, ErrPickingClosed)
}

func TestPickItemUnknownItem(t *testing.T) {
	svc, _ := newOrderService()
	order, err := svc.Create(context.Background(), opAdmin, validOrderRequest())
	require.NoError(t, err)

	_, err = svc.PickItem(context.Background(), opAdmin, order.ID, 9999, true)
	require.ErrorIs(t, err, ErrItemNotFound)
}

func TestDeleteOrderRequiresAdmin(t *testing.T) {
	svc, _ := newOrderService()
	order, err := svc.Create(context.Background(), opAdmin, validOrderRequest())
	require.NoError(t, err)

	staff := shared.Operator{ID: 8, Name: "ravi"}
	err = svc.Delete(context.Background(), staff, order.ID)
	require.ErrorIs(t, err, shared.ErrForbidden)

	err = svc.Delete(context.Background(), opAdmin, order.ID)
	require.NoError(t, err)
	_, err = svc.Get(context.Background(), order.ID)
	require.ErrorIs(t, err, ErrNotFound)
}
