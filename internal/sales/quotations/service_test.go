package quotations

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/partsdesk/partsdesk/internal/shared"
)

type memoryQuotationRepo struct {
	quotations map[int64]*Quotation
	items      map[int64][]QuotationItem
	nextID     int64
	nextItemID int64
}

func newMemoryQuotationRepo() *memoryQuotationRepo {
	return &memoryQuotationRepo{quotations: make(map[int64]*Quotation), items: make(map[int64][]QuotationItem)}
}

func (r *memoryQuotationRepo) WithTx(ctx context.Context, fn func(context.Context, Repository) error) error {
	return fn(ctx, r)
}

func (r *memoryQuotationRepo) Create(ctx context.Context, q Quotation) (int64, error) {
	r.nextID++
	q.ID = r.nextID
	q.CreatedAt = time.Now()
	q.UpdatedAt = q.CreatedAt
	q.Items = nil
	r.quotations[q.ID] = &q
	return q.ID, nil
}

func (r *memoryQuotationRepo) InsertItem(ctx context.Context, item QuotationItem) (int64, error) {
	r.nextItemID++
	item.ID = r.nextItemID
	r.items[item.QuotationID] = append(r.items[item.QuotationID], item)
	return item.ID, nil
}

func (r *memoryQuotationRepo) Get(ctx context.Context, id int64) (*Quotation, error) {
	q, ok := r.quotations[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *q
	copied.Items = append([]QuotationItem(nil), r.items[id]...)
	return &copied, nil
}

func (r *memoryQuotationRepo) List(ctx context.Context, req ListQuotationsRequest) ([]Quotation, int, error) {
	var out []Quotation
	for _, q := range r.quotations {
		if req.Status != "" && q.Status != req.Status {
			continue
		}
		out = append(out, *q)
	}
	return out, len(out), nil
}

func (r *memoryQuotationRepo) Resolve(ctx context.Context, id int64, status QuotationStatus, resolvedBy int64, orderID *int64, reason string) error {
	q, ok := r.quotations[id]
	if !ok || q.Status != StatusPending {
		return ErrNotFound
	}
	now := time.Now()
	q.Status = status
	q.ResolvedBy = &resolvedBy
	q.ResolvedAt = &now
	q.OrderID = orderID
	q.DeclineReason = reason
	q.UpdatedAt = now
	return nil
}

func (r *memoryQuotationRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := r.quotations[id]; !ok {
		return ErrNotFound
	}
	delete(r.quotations, id)
	delete(r.items, id)
	return nil
}

type quotationNumbers struct{ n int }

func (f *quotationNumbers) NextNumber(ctx context.Context, docType shared.DocType) (string, error) {
	f.n++
	return fmt.Sprintf("%s-2608-%04d", docType, f.n), nil
}

type nopAudit struct{}

func (nopAudit) Record(ctx context.Context, log shared.AuditLog) error { return nil }

type fakeSpawner struct {
	spawned []int64
	nextID  int64
	err     error
}

func (f *fakeSpawner) SpawnFromQuotation(ctx context.Context, q Quotation, acceptedBy int64) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	f.nextID++
	f.spawned = append(f.spawned, q.ID)
	return f.nextID, nil
}

func newQuotationService() (*Service, *memoryQuotationRepo, *fakeSpawner) {
	repo := newMemoryQuotationRepo()
	spawner := &fakeSpawner{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(repo, &quotationNumbers{}, nopAudit{}, spawner, logger), repo, spawner
}

var opAdmin = shared.Operator{ID: 7, Name: "asha", Admin: true}

func validQuotationRequest() CreateQuotationRequest {
	return CreateQuotationRequest{
		CustomerName:  "Guntur Tractors",
		CustomerPhone: "90000 00000",
		Vehicle:       "AP07 TD 4521",
		Items: []QuotationItemReq{
			{Name: "Clutch plate", Quantity: 1, Price: 3200},
			{Name: "Gasket set", Quantity: 2, Price: 450},
		},
	}
}

func TestCreateQuotationStartsPending(t *testing.T) {
	svc, _, _ := newQuotationService()

	q, err := svc.Create(context.Background(), opAdmin, validQuotationRequest())
	require.NoError(t, err)
	require.Equal(t, "QTN-2608-0001", q.QuotationNumber)
	require.Equal(t, StatusPending, q.Status)
	require.InDelta(t, 4100.0, q.TotalAmount, 0.001)
	require.Equal(t, "9000000000", q.CustomerPhone)
	require.Equal(t, "AP07 TD 4521", q.Vehicle)
	require.Len(t, q.Items, 2)
	require.Equal(t, 1, q.Items[0].LineOrder)

	stored, err := svc.Get(context.Background(), q.ID)
	require.NoError(t, err)
	require.Equal(t, "AP07 TD 4521", stored.Vehicle)
}

func TestCreateQuotationRejectsEmptyItems(t *testing.T) {
	svc, _, _ := newQuotationService()
	req := validQuotationRequest()
	req.Items = nil
	_, err := svc.Create(context.Background(), opAdmin, req)
	require.Error(t, err)
}

func TestAcceptSpawnsExactlyOneOrder(t *testing.T) {
	svc, _, spawner := newQuotationService()
	q, err := svc.Create(context.Background(), opAdmin, validQuotationRequest())
	require.NoError(t, err)

	accepted, err := svc.Accept(context.Background(), opAdmin, q.ID)
	require.NoError(t, err)
	require.Equal(t, StatusAccepted, accepted.Status)
	require.NotNil(t, accepted.OrderID)
	require.NotNil(t, accepted.ResolvedBy)
	require.Equal(t, []int64{q.ID}, spawner.spawned)

	// Accepting again must not fan out another order.
	_, err = svc.Accept(context.Background(), opAdmin, q.ID)
	require.ErrorIs(t, err, ErrAlreadyResolved)
	require.Len(t, spawner.spawned, 1)
}

func TestAcceptFailsWhenSpawnFails(t *testing.T) {
	svc, repo, spawner := newQuotationService()
	q, err := svc.Create(context.Background(), opAdmin, validQuotationRequest())
	require.NoError(t, err)

	spawner.err = errors.New("orders down")
	_, err = svc.Accept(context.Background(), opAdmin, q.ID)
	require.Error(t, err)

	// Still pending, so the accept can be retried.
	stored, err := repo.Get(context.Background(), q.ID)
	require.NoError(t, err)
	require.Equal(t, StatusPending, stored.Status)
}

func TestDeclineIsTerminal(t *testing.T) {
	svc, _, spawner := newQuotationService()
	q, err := svc.Create(context.Background(), opAdmin, validQuotationRequest())
	require.NoError(t, err)

	declined, err := svc.Decline(context.Background(), opAdmin, q.ID, DeclineQuotationRequest{Reason: "price too high"})
	require.NoError(t, err)
	require.Equal(t, StatusDeclined, declined.Status)
	require.Equal(t, "price too high", declined.DeclineReason)
	require.Nil(t, declined.OrderID)

	// No resurrection in either direction.
	_, err = svc.Accept(context.Background(), opAdmin, q.ID)
	require.ErrorIs(t, err, ErrAlreadyResolved)
	_, err = svc.Decline(context.Background(), opAdmin, q.ID, DeclineQuotationRequest{})
	require.ErrorIs(t, err, ErrAlreadyResolved)
	require.Empty(t, spawner.spawned)
}

func TestTerminal(t *testing.T) {
	require.False(t, Terminal(StatusPending))
	require.True(t, Terminal(StatusAccepted))
	require.True(t, Terminal(StatusDeclined))
}

func TestDeleteQuotationRequiresAdmin(t *testing.T) {
	svc, _, _ := newQuotationService()
	q, err := svc.Create(context.Background(), opAdmin, validQuotationRequest())
	require.NoError(t, err)

	staff := shared.Operator{ID: 8, Name: "ravi"}
	err = svc.Delete(context.Background(), staff, q.ID)
	require.ErrorIs(t, err, shared.ErrForbidden)

	err = svc.Delete(context.Background(), opAdmin, q.ID)
	require.NoError(t, err)
	_, err = svc.Get(context.Background(), q.ID)
	require.ErrorIs(t, err, ErrNotFound)
}
