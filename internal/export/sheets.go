package export

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/samber/lo"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	sheets "google.golang.org/api/sheets/v4"

	"github.com/rpps-dados/carteira/internal/domain"
)

const (
	sheetSegments = "SEGMENTOS"
	sheetPeriods  = "PERIODOS"
)

// SheetsWriter publishes report tables to a Google spreadsheet.
type SheetsWriter struct {
	spreadsheetID string
	svc           *sheets.Service
}

// NewSheetsWriter authenticates with a service-account key and targets one spreadsheet.
// opts are applied after the credentials.
func NewSheetsWriter(ctx context.Context, spreadsheetID, credentialsJSON string, opts ...option.ClientOption) (*SheetsWriter, error) {
	if spreadsheetID == "" {
		return nil, errors.New("sheets: spreadsheet id is empty")
	}

	creds, err := google.CredentialsFromJSON(ctx, []byte(credentialsJSON), sheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("sheets: reading service account key: %w", err)
	}

	clientOpts := append([]option.ClientOption{option.WithCredentials(creds)}, opts...)
	svc, err := sheets.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("sheets: connecting: %w", err)
	}
	return &SheetsWriter{spreadsheetID: spreadsheetID, svc: svc}, nil
}

// Name identifies the destination in logs.
func (w *SheetsWriter) Name() string {
	return "sheets:" + w.spreadsheetID
}

// Write ensures required sheets exist, then clears and rewrites them.
func (w *SheetsWriter) Write(ctx context.Context, report domain.Report) error {
	if err := w.ensureSheets(ctx, sheetSegments, sheetPeriods); err != nil {
		return err
	}

	_, err := w.svc.Spreadsheets.Values.BatchClear(
		w.spreadsheetID,
		&sheets.BatchClearValuesRequest{
			Ranges: []string{sheetSegments + "!A:D", sheetPeriods + "!A:B"},
		},
	).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("clearing sheets: %w", err)
	}

	_, err = w.svc.Spreadsheets.Values.BatchUpdate(
		w.spreadsheetID,
		&sheets.BatchUpdateValuesRequest{
			ValueInputOption: "USER_ENTERED",
			Data: []*sheets.ValueRange{
				{Range: sheetSegments + "!A1", Values: buildSegmentRows(report.Segments)},
				{Range: sheetPeriods + "!A1", Values: buildPeriodRows(report.Periods)},
			},
		},
	).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("writing sheets: %w", err)
	}

	return nil
}

// ensureSheets adds the tabs in titles that the spreadsheet lacks.
func (w *SheetsWriter) ensureSheets(ctx context.Context, titles ...string) error {
	meta, err := w.svc.Spreadsheets.Get(w.spreadsheetID).
		Fields("sheets.properties.title").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("sheets: reading tabs: %w", err)
	}

	present := lo.FilterMap(meta.Sheets, func(sh *sheets.Sheet, _ int) (string, bool) {
		if sh == nil || sh.Properties == nil {
			return "", false
		}
		return sh.Properties.Title, true
	})
	missing, _ := lo.Difference(titles, present)
	if len(missing) == 0 {
		return nil
	}

	add := lo.Map(missing, func(title string, _ int) *sheets.Request {
		return &sheets.Request{AddSheet: &sheets.AddSheetRequest{
			Properties: &sheets.SheetProperties{Title: title},
		}}
	})
	if _, err := w.svc.Spreadsheets.BatchUpdate(w.spreadsheetID,
		&sheets.BatchUpdateSpreadsheetRequest{Requests: add},
	).Context(ctx).Do(); err != nil {
		return fmt.Errorf("sheets: adding tabs %v: %w", missing, err)
	}

	slog.Info("sheets: added tabs", "spreadsheet", w.spreadsheetID, "titles", missing)
	return nil
}
