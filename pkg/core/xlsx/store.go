// Package xlsx persists tables to a local workbook file, mirroring the
// spreadsheet store for offline use.
package xlsx

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"promptsheet/pkg/core/table"
)

const backupTimeFormat = "20060102_150405"

// Store reads and writes worksheets of one .xlsx file. Every mutation saves
// the file, so a crash between batches loses at most the in-flight write.
type Store struct {
	path   string
	logger *zap.Logger
}

// NewStore opens or creates the workbook at path.
func NewStore(path string, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		f := excelize.NewFile()
		defer f.Close()
		if err := f.SaveAs(path); err != nil {
			return nil, fmt.Errorf("failed to create workbook %s: %w", path, err)
		}
		logger.Info("workbook created", zap.String("path", path))
	}
	return &Store{path: path, logger: logger}, nil
}

func (s *Store) open() (*excelize.File, error) {
	f, err := excelize.OpenFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook %s: %w", s.path, err)
	}
	return f, nil
}

// ReadWorksheet loads a worksheet as a table. Like the spreadsheet store,
// reads fail soft: a missing worksheet yields an empty table.
func (s *Store) ReadWorksheet(ctx context.Context, name string) (*table.Table, error) {
	f, err := s.open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	rows, err := f.GetRows(name)
	if err != nil {
		s.logger.Warn("worksheet read failed, returning empty table",
			zap.String("worksheet", name), zap.Error(err))
		return table.New(), nil
	}
	return table.FromGrid(rows), nil
}

// WriteWorksheet replaces the worksheet's contents with the table.
func (s *Store) WriteWorksheet(ctx context.Context, name string, t *table.Table) error {
	f, err := s.open()
	if err != nil {
		return err
	}
	defer f.Close()

	// Recreate the sheet so stale rows from a longer previous table cannot
	// survive under the new contents.
	if idx, _ := f.GetSheetIndex(name); idx >= 0 {
		if err := f.DeleteSheet(name); err != nil {
			return fmt.Errorf("failed to reset worksheet %s: %w", name, err)
		}
	}
	if _, err := f.NewSheet(name); err != nil {
		return fmt.Errorf("failed to create worksheet %s: %w", name, err)
	}

	for i, row := range t.ToGrid() {
		cells := make([]interface{}, len(row))
		for j, v := range row {
			cells[j] = v
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return fmt.Errorf("failed to address row %d: %w", i+1, err)
		}
		if err := f.SetSheetRow(name, cell, &cells); err != nil {
			return fmt.Errorf("failed to write row %d of %s: %w", i+1, name, err)
		}
	}

	if err := f.Save(); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	s.logger.Debug("worksheet written", zap.String("worksheet", name), zap.Int("rows", t.RowCount()))
	return nil
}

// EnsureWorksheets provisions any of the named worksheets that do not exist.
func (s *Store) EnsureWorksheets(ctx context.Context, names ...string) error {
	f, err := s.open()
	if err != nil {
		return err
	}
	defer f.Close()

	created := 0
	for _, name := range names {
		idx, err := f.GetSheetIndex(name)
		if err != nil {
			return fmt.Errorf("failed to inspect worksheet %s: %w", name, err)
		}
		if idx >= 0 {
			continue
		}
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("failed to create worksheet %s: %w", name, err)
		}
		created++
	}
	if created == 0 {
		return nil
	}
	if err := f.Save(); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	s.logger.Info("worksheets provisioned", zap.Int("count", created))
	return nil
}

// Backup copies the named worksheet into a timestamped snapshot sheet and
// returns the snapshot's title.
func (s *Store) Backup(ctx context.Context, name string) (string, error) {
	f, err := s.open()
	if err != nil {
		return "", err
	}
	defer f.Close()

	srcIdx, err := f.GetSheetIndex(name)
	if err != nil || srcIdx < 0 {
		return "", fmt.Errorf("worksheet %s not found", name)
	}

	backupName := "Backup_" + time.Now().Format(backupTimeFormat)
	dstIdx, err := f.NewSheet(backupName)
	if err != nil {
		return "", fmt.Errorf("failed to create backup sheet: %w", err)
	}
	if err := f.CopySheet(srcIdx, dstIdx); err != nil {
		return "", fmt.Errorf("failed to back up worksheet %s: %w", name, err)
	}
	if err := f.Save(); err != nil {
		return "", fmt.Errorf("failed to save workbook: %w", err)
	}
	s.logger.Info("worksheet backed up", zap.String("worksheet", name), zap.String("backup", backupName))
	return backupName, nil
}
