package calllog

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// DefaultRange covers the seven log columns of the first sheet.
const DefaultRange = "Sheet1!A:G"

// SheetsSink appends rows to a Google spreadsheet.
type SheetsSink struct {
	values        *sheets.SpreadsheetsValuesService
	spreadsheetID string
	writeRange    string
}

// NewSheetsSink builds a sink for spreadsheetID. Client options carry the
// credentials, e.g. option.WithCredentialsFile.
func NewSheetsSink(ctx context.Context, spreadsheetID, writeRange string, opts ...option.ClientOption) (*SheetsSink, error) {
	if spreadsheetID == "" {
		return nil, errors.New("spreadsheet id is required")
	}
	if writeRange == "" {
		writeRange = DefaultRange
	}

	opts = append([]option.ClientOption{option.WithScopes(sheets.SpreadsheetsScope)}, opts...)
	svc, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	return &SheetsSink{
		values:        svc.Spreadsheets.Values,
		spreadsheetID: spreadsheetID,
		writeRange:    writeRange,
	}, nil
}

func (s *SheetsSink) Append(ctx context.Context, rec Record) error {
	body := &sheets.ValueRange{Values: [][]any{rec.Row()}}
	_, err := s.values.Append(s.spreadsheetID, s.writeRange, body).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("sheets append: %w", err)
	}
	return nil
}
