package quotations

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/genuino/cotizaciones/internal/events"
	"github.com/genuino/cotizaciones/internal/shared"
)

type mockRepository struct {
	txMu sync.Mutex
	mu   sync.Mutex

	customers map[int64]string
	types     map[int64]string
	quotes    map[int64]*Quote
	items     map[int64][]Item
	orders    map[int64]bool
	approvals []shared.ApprovalLog
	audits    []shared.AuditLog
	threshold *decimal.Decimal
	sequences map[string]int64
	nextID    int64
	clock     time.Time

	failThreshold error
	failInsert    error
	failList      error
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		customers: map[int64]string{1: "Acme"},
		types:     map[int64]string{1: "Productos/Servicios", 2: "Gastos de Importación"},
		quotes:    make(map[int64]*Quote),
		items:     make(map[int64][]Item),
		orders:    make(map[int64]bool),
		sequences: make(map[string]int64),
		nextID:    1,
		clock:     time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC),
	}
}

func (m *mockRepository) setThreshold(v string) {
	d := decimal.RequireFromString(v)
	m.threshold = &d
}

type mockSnapshot struct {
	quotes    map[int64]Quote
	items     map[int64][]Item
	approvals int
	audits    int
	sequences map[string]int64
}

func (m *mockRepository) snapshot() mockSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := mockSnapshot{quotes: map[int64]Quote{}, items: map[int64][]Item{}, approvals: len(m.approvals), audits: len(m.audits), sequences: map[string]int64{}}
	for k, v := range m.sequences {
		s.sequences[k] = v
	}
	for id, q := range m.quotes {
		s.quotes[id] = *q
	}
	for id, items := range m.items {
		s.items[id] = append([]Item(nil), items...)
	}
	return s
}

func (m *mockRepository) restore(s mockSnapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.quotes = map[int64]*Quote{}
	for id, q := range s.quotes {
		q := q
		m.quotes[id] = &q
	}
	m.items = s.items
	m.approvals = m.approvals[:s.approvals]
	m.audits = m.audits[:s.audits]
	m.sequences = s.sequences
}

// WithTx serializes transactions and rolls the maps back when fn fails.
func (m *mockRepository) WithTx(ctx context.Context, fn func(context.Context, Repository) error) error {
	m.txMu.Lock()
	defer m.txMu.Unlock()
	snap := m.snapshot()
	if err := fn(ctx, m); err != nil {
		m.restore(snap)
		return err
	}
	return nil
}

func (m *mockRepository) CustomerExists(ctx context.Context, customerID int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.customers[customerID]
	return ok, nil
}

func (m *mockRepository) ApprovalThreshold(ctx context.Context) (decimal.Decimal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failThreshold != nil {
		return decimal.Zero, m.failThreshold
	}
	if m.threshold == nil {
		return decimal.RequireFromString("10000.00"), nil
	}
	return *m.threshold, nil
}

func (m *mockRepository) NextNumber(ctx context.Context, year string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sequences[sequenceDocType+"/"+sequencePeriod]++
	return FormatNumber(year, m.sequences[sequenceDocType+"/"+sequencePeriod]), nil
}

func (m *mockRepository) Create(ctx context.Context, q Quote) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.customers[q.CustomerID]; !ok {
		return 0, ErrUnknownCustomer
	}
	q.ID = m.nextID
	m.nextID++
	m.clock = m.clock.Add(time.Minute)
	q.CreatedAt = m.clock
	q.StatusLabel = q.Status.Label()
	m.quotes[q.ID] = &q
	return q.ID, nil
}

func (m *mockRepository) InsertItem(ctx context.Context, item Item) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failInsert != nil {
		return 0, m.failInsert
	}
	name, ok := m.types[item.TypeID]
	if !ok {
		return 0, ErrUnknownType
	}
	item.ID = m.nextID
	m.nextID++
	item.TypeName = name
	m.items[item.QuoteID] = append(m.items[item.QuoteID], item)
	return item.ID, nil
}

func (m *mockRepository) Get(ctx context.Context, id int64) (*Quote, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	q, ok := m.quotes[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := *q
	return &out, nil
}

func (m *mockRepository) Detail(ctx context.Context, id int64) (*Detail, error) {
	q, err := m.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	d := &Detail{Quote: *q, CustomerName: m.customers[q.CustomerID], CustomerNIT: "123", VendorName: "Vendedor Uno"}
	d.Items = append([]Item{}, m.items[id]...)
	return d, nil
}

func (m *mockRepository) SetStatus(ctx context.Context, id int64, status Status, reason *string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	q, ok := m.quotes[id]
	if !ok {
		return ErrNotFound
	}
	q.Status = status
	q.StatusLabel = status.Label()
	if reason != nil {
		r := *reason
		q.RejectionReason = &r
	}
	return nil
}

func (m *mockRepository) summaries(keep func(*Quote) bool) ([]Summary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failList != nil {
		return nil, m.failList
	}
	out := []Summary{}
	for _, q := range m.quotes {
		if !keep(q) {
			continue
		}
		out = append(out, Summary{
			ID: q.ID, Number: q.Number, CreatedAt: q.CreatedAt, Total: q.Total,
			Status: q.Status, StatusLabel: q.Status.Label(), RejectionReason: q.RejectionReason,
			CustomerName: m.customers[q.CustomerID], VendorID: q.UserID,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (m *mockRepository) ListByUser(ctx context.Context, userID int64) ([]Summary, error) {
	return m.summaries(func(q *Quote) bool { return q.UserID == userID })
}

func (m *mockRepository) ListAll(ctx context.Context) ([]Summary, error) {
	return m.summaries(func(*Quote) bool { return true })
}

func (m *mockRepository) ListByStatus(ctx context.Context, status Status) ([]Summary, error) {
	return m.summaries(func(q *Quote) bool { return q.Status == status })
}

func (m *mockRepository) ListApprovedWithoutOrder(ctx context.Context) ([]Summary, error) {
	return m.summaries(func(q *Quote) bool { return q.Status == StatusApproved && !m.orders[q.ID] })
}

func (m *mockRepository) ListApprovedForCustomer(ctx context.Context, customerID int64) ([]ClientQuote, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failList != nil {
		return nil, m.failList
	}
	out := []ClientQuote{}
	for _, q := range m.quotes {
		if q.CustomerID == customerID && q.Status == StatusApproved {
			out = append(out, ClientQuote{ID: q.ID, Number: q.Number, CreatedAt: q.CreatedAt, Total: q.Total, Status: q.Status, StatusLabel: q.Status.Label()})
		}
	}
	return out, nil
}

func (m *mockRepository) CountPending(ctx context.Context) (int, error) {
	list, err := m.ListByStatus(ctx, StatusPendingApproval)
	return len(list), err
}

func (m *mockRepository) RecordApproval(ctx context.Context, log shared.ApprovalLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if log.QuoteID == 0 || log.Action == "" {
		return errors.New("invalid approval log")
	}
	log.ID = int64(len(m.approvals) + 1)
	m.approvals = append(m.approvals, log)
	return nil
}

func (m *mockRepository) History(ctx context.Context, quoteID int64) ([]shared.ApprovalLog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []shared.ApprovalLog{}
	for _, l := range m.approvals {
		if l.QuoteID == quoteID {
			out = append(out, l)
		}
	}
	return out, nil
}

func (m *mockRepository) Audit(ctx context.Context, log shared.AuditLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.audits = append(m.audits, log)
	return nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	types  []string
	failed error
}

func (p *recordingPublisher) Publish(ctx context.Context, event events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.types = append(p.types, event.Type)
	return p.failed
}

type recordingNotifier struct {
	calls []Status
	err   error
}

func (n *recordingNotifier) NotifyQuoteDecision(ctx context.Context, quoteID int64, status Status) error {
	n.calls = append(n.calls, status)
	return n.err
}

type countingMetrics struct {
	mu      sync.Mutex
	created map[string]int
	decided map[string]int
}

func newCountingMetrics() *countingMetrics {
	return &countingMetrics{created: map[string]int{}, decided: map[string]int{}}
}

func (c *countingMetrics) QuoteCreated(status string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.created[status]++
}

func (c *countingMetrics) QuoteDecided(decision string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.decided[decision]++
}
