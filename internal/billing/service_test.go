package billing

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

type memoryBillRepo struct {
	bills         map[int64]*Bill
	lines         map[int64][]BillLineItem
	payments      map[int64][]BillPayment
	nextBillID    int64
	nextLineID    int64
	nextPaymentID int64
	failCreate    bool
	failLine      bool
}

func newMemoryBillRepo() *memoryBillRepo {
	return &memoryBillRepo{
		bills:    make(map[int64]*Bill),
		lines:    make(map[int64][]BillLineItem),
		payments: make(map[int64][]BillPayment),
	}
}

func (r *memoryBillRepo) WithTx(ctx context.Context, fn func(context.Context, Repository) error) error {
	return fn(ctx, r)
}

func (r *memoryBillRepo) CreateBill(ctx context.Context, b Bill) (int64, error) {
	if r.failCreate {
		return 0, errors.New("insert failed")
	}
	r.nextBillID++
	b.ID = r.nextBillID
	b.CreatedAt = time.Now()
	b.Lines = nil
	r.bills[b.ID] = &b
	return b.ID, nil
}

func (r *memoryBillRepo) InsertLine(ctx context.Context, line BillLineItem) (int64, error) {
	if r.failLine {
		return 0, errors.New("line insert failed")
	}
	r.nextLineID++
	line.ID = r.nextLineID
	r.lines[line.BillID] = append(r.lines[line.BillID], line)
	return line.ID, nil
}

func (r *memoryBillRepo) Get(ctx context.Context, id int64) (*Bill, error) {
	b, ok := r.bills[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *b
	copied.Lines = append([]BillLineItem(nil), r.lines[id]...)
	return &copied, nil
}

func (r *memoryBillRepo) List(ctx context.Context, req ListBillsRequest) ([]Bill, int, error) {
	var out []Bill
	for _, b := range r.bills {
		if req.Unpaid && b.RemainingAmount <= 0 {
			continue
		}
		out = append(out, *b)
	}
	return out, len(out), nil
}

func (r *memoryBillRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := r.bills[id]; !ok {
		return ErrNotFound
	}
	delete(r.bills, id)
	delete(r.lines, id)
	delete(r.payments, id)
	return nil
}

func (r *memoryBillRepo) InsertPayment(ctx context.Context, p BillPayment) (int64, error) {
	r.nextPaymentID++
	p.ID = r.nextPaymentID
	p.CreatedAt = time.Now()
	r.payments[p.BillID] = append(r.payments[p.BillID], p)
	return p.ID, nil
}

func (r *memoryBillRepo) ListPayments(ctx context.Context, billID int64) ([]BillPayment, error) {
	return r.payments[billID], nil
}

func (r *memoryBillRepo) UpdateRemaining(ctx context.Context, billID int64, remaining float64) error {
	b, ok := r.bills[billID]
	if !ok {
		return ErrNotFound
	}
	b.RemainingAmount = remaining
	return nil
}

func (r *memoryBillRepo) SetDocumentPath(ctx context.Context, billID int64, path string) error {
	b, ok := r.bills[billID]
	if !ok {
		return ErrNotFound
	}
	b.DocumentPath = &path
	return nil
}

type fakeNumbers struct{ n int }

func (f *fakeNumbers) NextNumber(ctx context.Context, docType shared.DocType) (string, error) {
	f.n++
	return fmt.Sprintf("%s-2608-%04d", docType, f.n), nil
}

type memoryAudit struct{ logs []shared.AuditLog }

func (a *memoryAudit) Record(ctx context.Context, log shared.AuditLog) error {
	a.logs = append(a.logs, log)
	return nil
}

type fakeEnqueuer struct {
	billIDs []int64
	err     error
}

func (e *fakeEnqueuer) EnqueueInvoiceDocument(ctx context.Context, billID int64) error {
	if e.err != nil {
		return e.err
	}
	e.billIDs = append(e.billIDs, billID)
	return nil
}

type fakeRenderer struct{ renders int }

func (r *fakeRenderer) RenderInvoice(bill Bill) ([]byte, error) {
	r.renders++
	return []byte("%PDF " + bill.BillNumber), nil
}

type memoryDocStore struct{ files map[string][]byte }

func newMemoryDocStore() *memoryDocStore {
	return &memoryDocStore{files: make(map[string][]byte)}
}

func (s *memoryDocStore) Save(ctx context.Context, name string, data []byte) (string, error) {
	path := "invoices/" + name
	s.files[path] = data
	return path, nil
}

func (s *memoryDocStore) Open(ctx context.Context, path string) ([]byte, error) {
	data, ok := s.files[path]
	if !ok {
		return nil, errors.New("no such document")
	}
	return data, nil
}

type billingFixture struct {
	service  *Service
	repo     *memoryBillRepo
	audit    *memoryAudit
	enqueuer *fakeEnqueuer
	renderer *fakeRenderer
	store    *memoryDocStore
}

func newBillingFixture(t *testing.T) *billingFixture {
	t.Helper()
	f := &billingFixture{
		repo:     newMemoryBillRepo(),
		audit:    &memoryAudit{},
		enqueuer: &fakeEnqueuer{},
		renderer: &fakeRenderer{},
		store:    newMemoryDocStore(),
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	f.service = NewService(f.repo, &fakeNumbers{}, f.audit, f.enqueuer, f.renderer, f.store, logger, 9, 9)
	return f
}

var testOperator = shared.Operator{ID: 7, Name: "asha", Admin: true}

func validCreateRequest() CreateBillRequest {
	cgst := 14.0
	sgst := 14.0
	return CreateBillRequest{
		BillDate:      time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC),
		PartyName:     "Sri Venkateswara Motors",
		PartyAddress:  "Autonagar, Vijayawada",
		PartyGSTIN:    "37AAICP9359G1ZU",
		PartyPhone:    "98765 43210",
		PlaceOfSupply: "Andhra Pradesh",
		Lines: []CreateBillLineReq{
			{Description: "Brake pads", HSNCode: "8708", Quantity: 2, Unit: UnitPiece, Rate: 2500, CGSTRate: &cgst, SGSTRate: &sgst},
			{Description: "Oil filter", HSNCode: "8409", Quantity: 4, Unit: UnitPiece, Rate: 750, CGSTRate: &cgst, SGSTRate: &sgst},
		},
	}
}

func TestSaveComputesTotalsAndNumbers(t *testing.T) {
	f := newBillingFixture(t)

	bill, err := f.service.Save(context.Background(), testOperator, validCreateRequest())
	require.NoError(t, err)

	require.Equal(t, "BILL-2608-0001", bill.BillNumber)
	require.InDelta(t, 8000.0, bill.Subtotal, 0.001)
	require.InDelta(t, 1120.0, bill.CGSTAmount, 0.001)
	require.InDelta(t, 1120.0, bill.SGSTAmount, 0.001)
	require.InDelta(t, 10240.0, bill.TotalAmount, 0.001)
	require.InDelta(t, 10240.0, bill.RemainingAmount, 0.001)
	require.Equal(t, "9876543210", bill.PartyPhone)
	require.Len(t, bill.Lines, 2)
	require.Equal(t, 1, bill.Lines[0].LineOrder)
	require.Equal(t, 2, bill.Lines[1].LineOrder)

	stored, err := f.repo.Get(context.Background(), bill.ID)
	require.NoError(t, err)
	require.Len(t, stored.Lines, 2)

	require.Equal(t, []int64{bill.ID}, f.enqueuer.billIDs)
	require.Len(t, f.audit.logs, 1)
	require.Equal(t, "bill.created", f.audit.logs[0].Action)
	require.Equal(t, bill.BillNumber, f.audit.logs[0].EntityID)
}

func TestSaveAppliesDefaultRates(t *testing.T) {
	f := newBillingFixture(t)
	req := validCreateRequest()
	req.Lines = []CreateBillLineReq{
		{Description: "Coolant", HSNCode: "3820", Quantity: 1, Unit: UnitPiece, Rate: 1000},
	}

	bill, err := f.service.Save(context.Background(), testOperator, req)
	require.NoError(t, err)
	require.InDelta(t, 9.0, bill.Lines[0].CGSTRate, 0.001)
	require.InDelta(t, 9.0, bill.Lines[0].SGSTRate, 0.001)
	require.InDelta(t, 90.0, bill.Lines[0].CGSTAmount, 0.001)
	require.InDelta(t, 1180.0, bill.TotalAmount, 0.001)
}

func TestSaveRejectsInvalidRequest(t *testing.T) {
	f := newBillingFixture(t)

	req := validCreateRequest()
	req.Lines = nil
	_, err := f.service.Save(context.Background(), testOperator, req)
	require.Error(t, err)

	req = validCreateRequest()
	req.PartyGSTIN = "not-a-gstin"
	_, err = f.service.Save(context.Background(), testOperator, req)
	require.Error(t, err)

	req = validCreateRequest()
	req.Lines[0].Quantity = -1
	_, err = f.service.Save(context.Background(), testOperator, req)
	require.Error(t, err)
}

func TestSaveWrapsInsertFailure(t *testing.T) {
	f := newBillingFixture(t)
	f.repo.failLine = true

	_, err := f.service.Save(context.Background(), testOperator, validCreateRequest())
	require.ErrorIs(t, err, ErrSaveIncomplete)
	require.Empty(t, f.enqueuer.billIDs)
	require.Empty(t, f.audit.logs)
}

func TestSaveSurvivesEnqueueFailure(t *testing.T) {
	f := newBillingFixture(t)
	f.enqueuer.err = errors.New("queue down")

	bill, err := f.service.Save(context.Background(), testOperator, validCreateRequest())
	require.NoError(t, err)
	require.NotZero(t, bill.ID)
}

func TestRecordPayment(t *testing.T) {
	f := newBillingFixture(t)
	bill, err := f.service.Save(context.Background(), testOperator, validCreateRequest())
	require.NoError(t, err)

	payment, err := f.service.RecordPayment(context.Background(), testOperator, bill.ID, RecordPaymentRequest{
		Amount: 5000, Method: PaymentUPI,
	})
	require.NoError(t, err)
	require.NotZero(t, payment.ID)
	require.False(t, payment.PaidOn.IsZero())

	after, err := f.service.Get(context.Background(), bill.ID)
	require.NoError(t, err)
	require.InDelta(t, 5240.0, after.RemainingAmount, 0.001)

	// Settle the rest exactly.
	_, err = f.service.RecordPayment(context.Background(), testOperator, bill.ID, RecordPaymentRequest{
		Amount: 5240, Method: PaymentCash,
	})
	require.NoError(t, err)

	settled, err := f.service.Get(context.Background(), bill.ID)
	require.NoError(t, err)
	require.InDelta(t, 0.0, settled.RemainingAmount, 0.001)
}

func TestRecordPaymentRejectsOverpayment(t *testing.T) {
	f := newBillingFixture(t)
	bill, err := f.service.Save(context.Background(), testOperator, validCreateRequest())
	require.NoError(t, err)

	_, err = f.service.RecordPayment(context.Background(), testOperator, bill.ID, RecordPaymentRequest{
		Amount: bill.TotalAmount + 0.01, Method: PaymentCash,
	})
	require.ErrorIs(t, err, ErrOverpayment)

	after, err := f.service.Get(context.Background(), bill.ID)
	require.NoError(t, err)
	require.InDelta(t, bill.TotalAmount, after.RemainingAmount, 0.001)
	require.Empty(t, f.repo.payments[bill.ID])
}

func TestDeleteRequiresAdmin(t *testing.T) {
	f := newBillingFixture(t)
	bill, err := f.service.Save(context.Background(), testOperator, validCreateRequest())
	require.NoError(t, err)

	staff := shared.Operator{ID: 8, Name: "ravi"}
	err = f.service.Delete(context.Background(), staff, bill.ID)
	require.ErrorIs(t, err, shared.ErrForbidden)

	err = f.service.Delete(context.Background(), testOperator, bill.ID)
	require.NoError(t, err)
	_, err = f.service.Get(context.Background(), bill.ID)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestDocumentGeneratesOnDemand(t *testing.T) {
	f := newBillingFixture(t)
	bill, err := f.service.Save(context.Background(), testOperator, validCreateRequest())
	require.NoError(t, err)
	require.Nil(t, bill.DocumentPath)

	// No background worker ran, so the first request renders inline.
	data, err := f.service.Document(context.Background(), bill.ID)
	require.NoError(t, err)
	require.NotEmpty(t, data)
	require.Equal(t, 1, f.renderer.renders)

	after, err := f.service.Get(context.Background(), bill.ID)
	require.NoError(t, err)
	require.NotNil(t, after.DocumentPath)

	// Second request serves the stored file.
	_, err = f.service.Document(context.Background(), bill.ID)
	require.NoError(t, err)
	require.Equal(t, 1, f.renderer.renders)
}

func TestGenerateDocumentStoresAndRecordsPath(t *testing.T) {
	f := newBillingFixture(t)
	bill, err := f.service.Save(context.Background(), testOperator, validCreateRequest())
	require.NoError(t, err)

	path, err := f.service.GenerateDocument(context.Background(), bill.ID)
	require.NoError(t, err)
	require.Equal(t, "invoices/"+bill.BillNumber+".pdf", path)
	require.Contains(t, f.store.files, path)
}
