package sheets

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"
)

var _ Backend = (*GoogleBackend)(nil)

type GoogleBackend struct {
	svc           *sheetsapi.Service
	spreadsheetID string
}

// NewGoogleBackend opens the spreadsheet. Pass option.WithCredentialsFile for a service account.
func NewGoogleBackend(ctx context.Context, spreadsheetID string, opts ...option.ClientOption) (*GoogleBackend, error) {
	opts = append([]option.ClientOption{option.WithScopes(sheetsapi.SpreadsheetsScope)}, opts...)

	svc, err := sheetsapi.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("sheets.NewGoogleBackend: %w", err)
	}

	return &GoogleBackend{svc: svc, spreadsheetID: spreadsheetID}, nil
}

func (g *GoogleBackend) SheetTitles(ctx context.Context) ([]string, error) {
	resp, err := g.svc.Spreadsheets.Get(g.spreadsheetID).
		Fields("sheets.properties.title").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("GoogleBackend.SheetTitles: %w", err)
	}

	titles := make([]string, 0, len(resp.Sheets))
	for _, sh := range resp.Sheets {
		if sh.Properties != nil {
			titles = append(titles, sh.Properties.Title)
		}
	}

	return titles, nil
}

func (g *GoogleBackend) AddSheet(ctx context.Context, title string) error {
	req := &sheetsapi.BatchUpdateSpreadsheetRequest{
		Requests: []*sheetsapi.Request{{
			AddSheet: &sheetsapi.AddSheetRequest{
				Properties: &sheetsapi.SheetProperties{
					Title: title,
					GridProperties: &sheetsapi.GridProperties{
						RowCount:    100,
						ColumnCount: 20,
					},
				},
			},
		}},
	}

	if _, err := g.svc.Spreadsheets.BatchUpdate(g.spreadsheetID, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("GoogleBackend.AddSheet: %w", err)
	}

	return nil
}

func (g *GoogleBackend) Rows(ctx context.Context, title string) ([][]string, error) {
	resp, err := g.svc.Spreadsheets.Values.Get(g.spreadsheetID, quote(title)).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("GoogleBackend.Rows: %w", err)
	}

	rows := make([][]string, 0, len(resp.Values))
	for _, raw := range resp.Values {
		row := make([]string, 0, len(raw))
		for _, cell := range raw {
			row = append(row, fmt.Sprint(cell))
		}
		rows = append(rows, row)
	}

	return rows, nil
}

func (g *GoogleBackend) WriteRow(ctx context.Context, title string, row int, values []string) error {
	rng := fmt.Sprintf("%s!A%d", quote(title), row)

	_, err := g.svc.Spreadsheets.Values.Update(g.spreadsheetID, rng, valueRange(values)).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("GoogleBackend.WriteRow: %w", err)
	}

	return nil
}

func (g *GoogleBackend) AppendRow(ctx context.Context, title string, values []string) error {
	_, err := g.svc.Spreadsheets.Values.Append(g.spreadsheetID, quote(title)+"!A1", valueRange(values)).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("GoogleBackend.AppendRow: %w", err)
	}

	return nil
}

func valueRange(values []string) *sheetsapi.ValueRange {
	row := make([]interface{}, len(values))
	for i, v := range values {
		row[i] = v
	}

	return &sheetsapi.ValueRange{Values: [][]interface{}{row}}
}

func quote(title string) string {
	return "'" + strings.ReplaceAll(title, "'", "''") + "'"
}
