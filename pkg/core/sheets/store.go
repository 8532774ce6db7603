// Package sheets persists tables to a Google Sheets document, one worksheet
// per table.
package sheets

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	"promptsheet/pkg/core/table"
)

// readRange covers any worksheet size the pipeline realistically produces.
const readRange = "A1:ZZ"

// backupTimeFormat shapes snapshot worksheet titles, e.g. Backup_20260823_141500.
const backupTimeFormat = "20060102_150405"

// Store reads and writes worksheets of one spreadsheet document.
type Store struct {
	svc           *sheetsapi.Service
	spreadsheetID string
	logger        *zap.Logger
}

// NewStore builds a store for the referenced document. The reference may be
// an URL or a bare ID; credentials come from the service account file when
// given, otherwise application default credentials.
func NewStore(ctx context.Context, ref, credentialsFile string, logger *zap.Logger) (*Store, error) {
	id, err := ExtractSheetID(ref)
	if err != nil {
		return nil, err
	}

	opts := []option.ClientOption{option.WithScopes(sheetsapi.SpreadsheetsScope)}
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	svc, err := sheetsapi.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{svc: svc, spreadsheetID: id, logger: logger}, nil
}

// ReadWorksheet loads a worksheet as a table. Reads fail soft: a missing or
// unreadable worksheet yields an empty table and a warning, so one bad sheet
// does not strand a session load.
func (s *Store) ReadWorksheet(ctx context.Context, name string) (*table.Table, error) {
	resp, err := s.svc.Spreadsheets.Values.
		Get(s.spreadsheetID, fmt.Sprintf("%s!%s", name, readRange)).
		Context(ctx).Do()
	if err != nil {
		s.logger.Warn("worksheet read failed, returning empty table",
			zap.String("worksheet", name), zap.Error(err))
		return table.New(), nil
	}

	grid := make([][]string, 0, len(resp.Values))
	for _, row := range resp.Values {
		cells := make([]string, len(row))
		for i, v := range row {
			cells[i] = fmt.Sprintf("%v", v)
		}
		grid = append(grid, cells)
	}
	return table.FromGrid(grid), nil
}

// WriteWorksheet clears the worksheet and writes the table, header row first.
// Write failures are real errors; unlike reads there is no safe fallback.
func (s *Store) WriteWorksheet(ctx context.Context, name string, t *table.Table) error {
	if _, err := s.svc.Spreadsheets.Values.
		Clear(s.spreadsheetID, fmt.Sprintf("%s!%s", name, readRange), &sheetsapi.ClearValuesRequest{}).
		Context(ctx).Do(); err != nil {
		return fmt.Errorf("failed to clear worksheet %s: %w", name, err)
	}

	values := make([][]interface{}, 0, t.RowCount()+1)
	for _, row := range t.ToGrid() {
		cells := make([]interface{}, len(row))
		for i, v := range row {
			cells[i] = v
		}
		values = append(values, cells)
	}

	_, err := s.svc.Spreadsheets.Values.
		Update(s.spreadsheetID, fmt.Sprintf("%s!A1", name), &sheetsapi.ValueRange{Values: values}).
		ValueInputOption("RAW").
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to write worksheet %s: %w", name, err)
	}
	s.logger.Debug("worksheet written", zap.String("worksheet", name), zap.Int("rows", t.RowCount()))
	return nil
}

// EnsureWorksheets provisions any of the named worksheets that do not exist
// yet. Existing worksheets are untouched.
func (s *Store) EnsureWorksheets(ctx context.Context, names ...string) error {
	doc, err := s.svc.Spreadsheets.Get(s.spreadsheetID).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to inspect spreadsheet: %w", err)
	}
	existing := make(map[string]bool, len(doc.Sheets))
	for _, sh := range doc.Sheets {
		if sh.Properties != nil {
			existing[sh.Properties.Title] = true
		}
	}

	var requests []*sheetsapi.Request
	for _, name := range names {
		if existing[name] {
			continue
		}
		requests = append(requests, &sheetsapi.Request{
			AddSheet: &sheetsapi.AddSheetRequest{
				Properties: &sheetsapi.SheetProperties{Title: name},
			},
		})
	}
	if len(requests) == 0 {
		return nil
	}

	_, err = s.svc.Spreadsheets.
		BatchUpdate(s.spreadsheetID, &sheetsapi.BatchUpdateSpreadsheetRequest{Requests: requests}).
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to provision worksheets: %w", err)
	}
	s.logger.Info("worksheets provisioned", zap.Int("count", len(requests)))
	return nil
}

// Backup snapshots the named worksheet into a timestamped copy and returns
// the snapshot's title.
func (s *Store) Backup(ctx context.Context, name string) (string, error) {
	doc, err := s.svc.Spreadsheets.Get(s.spreadsheetID).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("failed to inspect spreadsheet: %w", err)
	}

	var sheetID int64 = -1
	for _, sh := range doc.Sheets {
		if sh.Properties != nil && sh.Properties.Title == name {
			sheetID = sh.Properties.SheetId
			break
		}
	}
	if sheetID < 0 {
		return "", fmt.Errorf("worksheet %s not found", name)
	}

	backupName := "Backup_" + time.Now().Format(backupTimeFormat)
	_, err = s.svc.Spreadsheets.
		BatchUpdate(s.spreadsheetID, &sheetsapi.BatchUpdateSpreadsheetRequest{
			Requests: []*sheetsapi.Request{{
				DuplicateSheet: &sheetsapi.DuplicateSheetRequest{
					SourceSheetId: sheetID,
					NewSheetName:  backupName,
				},
			}},
		}).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("failed to back up worksheet %s: %w", name, err)
	}
	s.logger.Info("worksheet backed up", zap.String("worksheet", name), zap.String("backup", backupName))
	return backupName, nil
}
