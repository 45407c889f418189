package sheets

import (
	"context"
	"fmt"
	"slices"
	"time"

	"go.uber.org/zap"
)

const (
	SearchTable    = "SearchRequests"
	SellTable      = "SellRequests"
	ExcursionTable = "ExcursionRequests"

	TimestampLayout = "02.01.2006 15:04:05"
)

var (
	searchHeader  = []string{"Property Type", "Rooms", "District", "Budget", "Condition", "Phone", "Telegram", "Timestamp"}
	contactHeader = []string{"Phone", "Telegram", "Timestamp"}
)

// Header is the column set a new table starts with.
func Header(table string) []string {
	if table == SearchTable {
		return slices.Clone(searchHeader)
	}

	return slices.Clone(contactHeader)
}

// Backend is a spreadsheet addressed by sheet title. Rows are 1-based.
type Backend interface {
	SheetTitles(ctx context.Context) ([]string, error)
	AddSheet(ctx context.Context, title string) error
	Rows(ctx context.Context, title string) ([][]string, error)
	WriteRow(ctx context.Context, title string, row int, values []string) error
	AppendRow(ctx context.Context, title string, values []string) error
}

type Appender interface {
	Append(ctx context.Context, table string, values []string) bool
}

type Reader interface {
	ReadAll(ctx context.Context, table string) ([][]string, error)
}

var (
	_ Appender = (*Sink)(nil)
	_ Reader   = (*Sink)(nil)
)

type Sink struct {
	backend Backend
	logger  *zap.Logger
	now     func() time.Time
}

func NewSink(backend Backend, logger *zap.Logger) *Sink {
	return &Sink{
		backend: backend,
		logger:  logger,
		now:     time.Now,
	}
}

// Append writes one submission row. Any failure is logged and reported as false;
// nothing is retried or queued.
func (s *Sink) Append(ctx context.Context, table string, values []string) bool {
	row, err := s.append(ctx, table, values)
	if err != nil {
		s.logger.Error("cannot append row", zap.String("table", table), zap.Error(err))
		return false
	}

	s.logger.Info("row appended", zap.String("table", table), zap.Strings("row", row))
	return true
}

func (s *Sink) append(ctx context.Context, table string, values []string) ([]string, error) {
	if err := s.ensureSheet(ctx, table); err != nil {
		return nil, err
	}

	rows, err := s.backend.Rows(ctx, table)
	if err != nil {
		return nil, fmt.Errorf("Sink.append: read %s: %w", table, err)
	}

	var header []string
	if len(rows) > 0 && len(rows[0]) > 0 {
		header = rows[0]
	} else {
		header = Header(table)
		if err := s.backend.WriteRow(ctx, table, 1, header); err != nil {
			return nil, fmt.Errorf("Sink.append: header %s: %w", table, err)
		}
	}

	row := BuildRow(values, len(header), s.now())
	if err := s.backend.AppendRow(ctx, table, row); err != nil {
		return nil, fmt.Errorf("Sink.append: %s: %w", table, err)
	}

	return row, nil
}

func (s *Sink) ensureSheet(ctx context.Context, table string) error {
	titles, err := s.backend.SheetTitles(ctx)
	if err != nil {
		return fmt.Errorf("Sink.ensureSheet: %w", err)
	}

	if slices.Contains(titles, table) {
		return nil
	}

	if err := s.backend.AddSheet(ctx, table); err != nil {
		return fmt.Errorf("Sink.ensureSheet: add %s: %w", table, err)
	}

	s.logger.Info("sheet created", zap.String("table", table))
	return nil
}

// ReadAll returns every row of the table, header included. A missing table has no rows.
func (s *Sink) ReadAll(ctx context.Context, table string) ([][]string, error) {
	titles, err := s.backend.SheetTitles(ctx)
	if err != nil {
		return nil, fmt.Errorf("Sink.ReadAll: %w", err)
	}

	if !slices.Contains(titles, table) {
		return nil, nil
	}

	rows, err := s.backend.Rows(ctx, table)
	if err != nil {
		return nil, fmt.Errorf("Sink.ReadAll: %s: %w", table, err)
	}

	return rows, nil
}

// BuildRow pads values with empty cells to width-1 and puts the timestamp in the last column.
func BuildRow(values []string, width int, at time.Time) []string {
	row := make([]string, 0, max(width, len(values)+1))
	row = append(row, values...)

	for len(row) < width-1 {
		row = append(row, "")
	}

	return append(row, at.Format(TimestampLayout))
}
