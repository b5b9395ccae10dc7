package testutil

import (
	"context"
	"sync"

	"github.com/vibecharting/chartsafe/internal/query"
	"github.com/vibecharting/chartsafe/internal/results"
	"github.com/vibecharting/chartsafe/internal/schema"
)

// MockStore implements storage.Store for testing with error injection and
// call counting.
type MockStore struct {
	mu sync.Mutex

	tables  []schema.TableSchema
	rows    []results.Row
	dialect query.Dialect

	// errors maps method names to injected errors.
	errors map[string]error

	callCounts    map[string]int
	executedPlans []*query.SqlPlan
}

// MockStoreOption is a functional option for configuring the mock store.
type MockStoreOption func(*MockStore)

// NewMockStore creates a mock store backed by the CRM test tables.
func NewMockStore(opts ...MockStoreOption) *MockStore {
	m := &MockStore{
		tables:     CRMTables(),
		dialect:    query.DialectSQLServer,
		errors:     make(map[string]error),
		callCounts: make(map[string]int),
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// WithStoreTables replaces the discoverable tables.
func WithStoreTables(tables ...schema.TableSchema) MockStoreOption {
	return func(m *MockStore) {
		m.tables = tables
	}
}

// WithStoreRows sets the rows every ExecutePlan call returns.
func WithStoreRows(rows ...results.Row) MockStoreOption {
	return func(m *MockStore) {
		m.rows = rows
	}
}

// WithStoreDialect sets the dialect the store reports.
func WithStoreDialect(d query.Dialect) MockStoreOption {
	return func(m *MockStore) {
		m.dialect = d
	}
}

// WithStoreError injects an error for the named method
// ("DiscoverTables" or "ExecutePlan").
func WithStoreError(method string, err error) MockStoreOption {
	return func(m *MockStore) {
		m.errors[method] = err
	}
}

func (m *MockStore) DiscoverTables(_ context.Context) ([]schema.TableSchema, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.callCounts["DiscoverTables"]++

	if err := m.errors["DiscoverTables"]; err != nil {
		return nil, err
	}

	return m.tables, nil
}

func (m *MockStore) ExecutePlan(_ context.Context, plan *query.SqlPlan) ([]results.Row, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.callCounts["ExecutePlan"]++
	m.executedPlans = append(m.executedPlans, plan)

	if err := m.errors["ExecutePlan"]; err != nil {
		return nil, err
	}

	// Copy rows so a test mutating the result cannot corrupt later calls.
	out := make([]results.Row, 0, len(m.rows))
	for _, r := range m.rows {
		out = append(out, r.Clone())
	}

	return out, nil
}

func (m *MockStore) Dialect() query.Dialect {
	return m.dialect
}

func (m *MockStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.callCounts["Close"]++

	return m.errors["Close"]
}

// CallCount returns how many times the named method was called.
func (m *MockStore) CallCount(method string) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.callCounts[method]
}

// ExecutedPlans returns the plans passed to ExecutePlan, in call order.
func (m *MockStore) ExecutedPlans() []*query.SqlPlan {
	m.mu.Lock()
	defer m.mu.Unlock()

	plans := make([]*query.SqlPlan, len(m.executedPlans))
	copy(plans, m.executedPlans)

	return plans
}

// MockExtractor implements llm.Service for testing.
type MockExtractor struct {
	mu sync.Mutex

	request *query.ChartRequest
	err     error

	calls    int
	messages []string
}

// NewMockExtractor creates an extractor that always returns req.
func NewMockExtractor(req *query.ChartRequest) *MockExtractor {
	return &MockExtractor{request: req}
}

// NewFailingExtractor creates an extractor that always fails with err.
func NewFailingExtractor(err error) *MockExtractor {
	return &MockExtractor{err: err}
}

func (m *MockExtractor) ExtractChartRequest(
	_ context.Context,
	message string,
	_ string,
) (*query.ChartRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls++
	m.messages = append(m.messages, message)

	if m.err != nil {
		return nil, m.err
	}

	// Copy so callers mutating the request (forced type) do not leak into
	// subsequent extractions.
	req := *m.request

	return &req, nil
}

// Calls returns how many extractions were requested.
func (m *MockExtractor) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.calls
}

// Messages returns the natural-language messages extracted, in call order.
func (m *MockExtractor) Messages() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	msgs := make([]string, len(m.messages))
	copy(msgs, m.messages)

	return msgs
}

// MockCorrectingExtractor additionally implements llm.Corrector, returning a
// fixed corrected request on guided retries.
type MockCorrectingExtractor struct {
	MockExtractor

	corrected *query.ChartRequest

	correctCalls int
	guidance     []string
}

// NewMockCorrectingExtractor returns first on extraction and corrected on
// guided retries.
func NewMockCorrectingExtractor(first, corrected *query.ChartRequest) *MockCorrectingExtractor {
	return &MockCorrectingExtractor{
		MockExtractor: MockExtractor{request: first},
		corrected:     corrected,
	}
}

func (m *MockCorrectingExtractor) CorrectChartRequest(
	_ context.Context,
	_ string,
	_ string,
	guidance string,
) (*query.ChartRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.correctCalls++
	m.guidance = append(m.guidance, guidance)

	req := *m.corrected

	return &req, nil
}

// CorrectCalls returns how many guided retries were requested.
func (m *MockCorrectingExtractor) CorrectCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.correctCalls
}

// Guidance returns the guidance strings passed to guided retries.
func (m *MockCorrectingExtractor) Guidance() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]string, len(m.guidance))
	copy(out, m.guidance)

	return out
}
