package sheets

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type memBackend struct {
	mu     sync.Mutex
	sheets map[string][][]string
	order  []string
	err    error
}

func newMemBackend() *memBackend {
	return &memBackend{sheets: map[string][][]string{}}
}

func (m *memBackend) SheetTitles(context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	return append([]string(nil), m.order...), nil
}

func (m *memBackend) AddSheet(_ context.Context, title string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sheets[title] = nil
	m.order = append(m.order, title)
	return nil
}

func (m *memBackend) Rows(_ context.Context, title string) ([][]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sheets[title], nil
}

func (m *memBackend) WriteRow(_ context.Context, title string, row int, values []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rows := m.sheets[title]
	for len(rows) < row {
		rows = append(rows, nil)
	}
	rows[row-1] = values
	m.sheets[title] = rows
	return nil
}

func (m *memBackend) AppendRow(_ context.Context, title string, values []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sheets[title] = append(m.sheets[title], values)
	return nil
}

var fixedNow = time.Date(2025, 3, 7, 14, 5, 9, 0, time.Local)

func newTestSink(b Backend) *Sink {
	s := NewSink(b, zap.NewNop())
	s.now = func() time.Time { return fixedNow }
	return s
}

func TestSink_AppendCreatesSheetWithHeader(t *testing.T) {
	b := newMemBackend()
	s := newTestSink(b)

	ok := s.Append(context.Background(), SearchTable, []string{"secondary", "2", "Center", "5-10 million", "", "+1000", "ivan.t.me"})
	require.True(t, ok)

	rows := b.sheets[SearchTable]
	require.Len(t, rows, 2)
	assert.Equal(t, searchHeader, rows[0])
	assert.Equal(t, []string{"secondary", "2", "Center", "5-10 million", "", "+1000", "ivan.t.me", "07.03.2025 14:05:09"}, rows[1])
}

func TestSink_ContactTables(t *testing.T) {
	for _, table := range []string{SellTable, ExcursionTable} {
		t.Run(table, func(t *testing.T) {
			b := newMemBackend()
			s := newTestSink(b)

			require.True(t, s.Append(context.Background(), table, []string{"Отказался", "Скрыт"}))
			require.True(t, s.Append(context.Background(), table, []string{"+7999", "anna.t.me"}))

			rows := b.sheets[table]
			require.Len(t, rows, 3)
			assert.Equal(t, []string{"Phone", "Telegram", "Timestamp"}, rows[0])
			assert.Equal(t, []string{"Отказался", "Скрыт", "07.03.2025 14:05:09"}, rows[1])
			assert.Equal(t, []string{"+7999", "anna.t.me", "07.03.2025 14:05:09"}, rows[2])
		})
	}
}

func TestSink_KeepsExistingHeader(t *testing.T) {
	b := newMemBackend()
	b.order = []string{SellTable}
	b.sheets[SellTable] = [][]string{{"Телефон", "Ник", "Комментарий", "Время"}}
	s := newTestSink(b)

	require.True(t, s.Append(context.Background(), SellTable, []string{"+1", "x.t.me"}))

	rows := b.sheets[SellTable]
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"Телефон", "Ник", "Комментарий", "Время"}, rows[0])
	assert.Equal(t, []string{"+1", "x.t.me", "", "07.03.2025 14:05:09"}, rows[1])
	assert.Equal(t, []string{SellTable}, b.order)
}

func TestSink_BackendFailureIsFalse(t *testing.T) {
	b := newMemBackend()
	b.err = errors.New("quota exceeded")
	s := newTestSink(b)

	assert.False(t, s.Append(context.Background(), SearchTable, []string{"a"}))
}

func TestSink_ReadAll(t *testing.T) {
	b := newMemBackend()
	s := newTestSink(b)

	rows, err := s.ReadAll(context.Background(), ExcursionTable)
	require.NoError(t, err)
	assert.Empty(t, rows)

	require.True(t, s.Append(context.Background(), ExcursionTable, []string{"+1", "Скрыт"}))

	rows, err = s.ReadAll(context.Background(), ExcursionTable)
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestBuildRow(t *testing.T) {
	assert.Equal(t, []string{"a", "", "", "07.03.2025 14:05:09"}, BuildRow([]string{"a"}, 4, fixedNow))
	assert.Equal(t, []string{"a", "b", "c", "07.03.2025 14:05:09"}, BuildRow([]string{"a", "b", "c"}, 2, fixedNow))
	assert.Equal(t, []string{"07.03.2025 14:05:09"}, BuildRow(nil, 0, fixedNow))
}

func TestHeader_ReturnsCopy(t *testing.T) {
	h := Header(SearchTable)
	h[0] = "changed"
	assert.Equal(t, "Property Type", Header(SearchTable)[0])
	assert.Equal(t, []string{"Phone", "Telegram", "Timestamp"}, Header("Anything"))
}
