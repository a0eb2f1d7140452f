package report

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
	"log/slog"

	"depotbot/core/logger"
	tghelpers "depotbot/core/telegram/helpers"
	"depotbot/internal/storage"
)

// Exporter renders an assembled report into a file artifact and returns its
// location.
type Exporter interface {
	Export(ctx context.Context, rep *Report) (string, error)
}

// XLSXExporter writes reports as spreadsheet files into a directory.
type XLSXExporter struct {
	dir string
}

// NewXLSXExporter creates the exporter, ensuring the target directory exists.
func NewXLSXExporter(dir string) (*XLSXExporter, error) {
	if dir == "" {
		dir = "reports"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: create dir %s: %v", ErrRender, dir, err)
	}
	return &XLSXExporter{dir: dir}, nil
}

const sheet = "Отчет"

// Export writes the report into a new .xlsx file and returns its path. Any
// failure is wrapped in ErrRender; the inspection record is never touched.
func (e *XLSXExporter) Export(ctx context.Context, rep *Report) (string, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	idx, err := f.NewSheet(sheet)
	if err != nil {
		return "", fmt.Errorf("%w: new sheet: %v", ErrRender, err)
	}
	f.SetActiveSheet(idx)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return "", fmt.Errorf("%w: delete default sheet: %v", ErrRender, err)
	}

	header := [][]interface{}{
		{fmt.Sprintf("Отчет о приёмке состава №%s", rep.TrainNumber)},
		{},
		{"Тип состава:", rep.TrainType.Title()},
	}
	if rep.Inspector != nil {
		header = append(header,
			[]interface{}{"Проверяющий:", rep.Inspector.FullName},
			[]interface{}{"Должность:", rep.Inspector.Position},
			[]interface{}{"Отделение:", rep.Inspector.Branch},
		)
	}
	header = append(header,
		[]interface{}{"Дата:", tghelpers.FormatDateTime(rep.CreatedAt)},
		[]interface{}{"Статус:", rep.Status()},
		[]interface{}{},
		[]interface{}{"Блок", "Результат", "Замечания"},
	)

	row := 1
	writeRow := func(values []interface{}) error {
		cell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return err
		}
		row++
		return nil
	}

	for _, values := range header {
		if err := writeRow(values); err != nil {
			return "", fmt.Errorf("%w: write header: %v", ErrRender, err)
		}
	}
	for _, entry := range rep.Entries {
		result := "⚠ Неисправен"
		notes := entry.Notes
		if entry.Passed {
			result = "✓ Исправен"
			notes = storage.PassNotes
		}
		if err := writeRow([]interface{}{entry.BlockNumber, result, notes}); err != nil {
			return "", fmt.Errorf("%w: write entry: %v", ErrRender, err)
		}
	}

	name := fmt.Sprintf("inspection_%s_%s.xlsx", rep.TrainNumber, uuid.NewString())
	path := filepath.Join(e.dir, name)
	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("%w: save %s: %v", ErrRender, path, err)
	}

	logger.Info(ctx, "service.reports", "report.export",
		slog.Int64("inspection_id", rep.InspectionID),
		slog.String("report_path", path),
	)
	return path, nil
}

var _ Exporter = (*XLSXExporter)(nil)
