// Package report reduces an inspection and its blocks into an ordered,
// loss-free summary and renders it for Telegram or file export.
package report

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"log/slog"

	"depotbot/core/logger"
	tgformat "depotbot/core/telegram/format"
	tghelpers "depotbot/core/telegram/helpers"
	"depotbot/internal/models"
	"depotbot/internal/storage"
)

// ErrRender marks a failure of the physical rendering step. The underlying
// inspection record stays untouched when it occurs.
var ErrRender = errors.New("report: render failed")

// Entry is one block's verdict in creation order.
type Entry struct {
	BlockNumber string
	Passed      bool
	Notes       string
}

// Report is the structured projection of an inspection and its blocks.
type Report struct {
	InspectionID int64
	TrainNumber  string
	TrainType    models.TrainType
	Inspector    *models.Inspector
	CreatedAt    time.Time
	Completed    bool
	Entries      []Entry
}

// InspectorDirectory resolves inspector ids to inspector records.
type InspectorDirectory interface {
	GetInspector(ctx context.Context, id int64) (*models.Inspector, error)
}

// Assembler builds reports from the record store.
type Assembler struct {
	store      storage.Store
	inspectors InspectorDirectory
}

// NewAssembler wires the assembler to its data sources. inspectors may be nil
// when inspector attribution is unavailable (tests, partial deployments).
func NewAssembler(store storage.Store, inspectors InspectorDirectory) *Assembler {
	return &Assembler{store: store, inspectors: inspectors}
}

// Assemble produces the report for an inspection, blocks in creation order.
// Returns storage.ErrNotFound when the inspection id does not resolve.
func (a *Assembler) Assemble(ctx context.Context, inspectionID int64) (*Report, error) {
	insp, err := a.store.Get(ctx, inspectionID)
	if err != nil {
		return nil, err
	}
	blocks, err := a.store.Blocks(ctx, inspectionID)
	if err != nil {
		return nil, err
	}

	rep := &Report{
		InspectionID: insp.ID,
		TrainNumber:  insp.TrainNumber,
		TrainType:    insp.TrainType,
		CreatedAt:    insp.CreatedAt,
		Completed:    insp.IsCompleted,
		Entries:      make([]Entry, 0, len(blocks)),
	}
	if a.inspectors != nil {
		inspector, err := a.inspectors.GetInspector(ctx, insp.InspectorID)
		if err != nil {
			return nil, err
		}
		rep.Inspector = inspector
	}

	for _, b := range blocks {
		rep.Entries = append(rep.Entries, Entry{
			BlockNumber: b.BlockNumber,
			// The sentinel encoding is ambiguous for fail notes equal to it;
			// the workflow rejects such notes before they are stored.
			Passed: b.IsChecked && b.Notes == storage.PassNotes,
			Notes:  b.Notes,
		})
	}

	logger.Debug(ctx, "service.reports", "report.assemble",
		slog.Int64("inspection_id", insp.ID),
		slog.Int("blocks_total", len(rep.Entries)),
	)
	return rep, nil
}

// Status returns the human-readable completion status.
func (r *Report) Status() string {
	if r.Completed {
		return "Завершена"
	}
	return "В процессе"
}

// Text renders the report as a Telegram Markdown message, one line per block
// in creation order.
func (r *Report) Text() string {
	var b strings.Builder
	fmt.Fprintf(&b, "📋 *Отчет о приёмке состава №%s*\n\n", r.TrainNumber)
	fmt.Fprintf(&b, "🚂 Тип состава: %s\n", r.TrainType.Title())
	if r.Inspector != nil {
		fmt.Fprintf(&b, "👤 Проверяющий: %s\n", tgformat.EscapeMarkdown(r.Inspector.FullName))
		fmt.Fprintf(&b, "💼 Должность: %s\n", tgformat.EscapeMarkdown(r.Inspector.Position))
		fmt.Fprintf(&b, "🏢 Отделение: %s\n", tgformat.EscapeMarkdown(r.Inspector.Branch))
	}
	fmt.Fprintf(&b, "📅 Дата: %s\n", tghelpers.FormatDateTime(r.CreatedAt))
	fmt.Fprintf(&b, "🏁 Статус: %s\n\n", r.Status())
	b.WriteString("📝 *Результаты проверки блоков:*\n")

	for _, e := range r.Entries {
		switch {
		case e.Passed:
			fmt.Fprintf(&b, "✅ %s: %s\n", e.BlockNumber, storage.PassNotes)
		case e.Notes != "":
			fmt.Fprintf(&b, "⚠️ %s: %s\n", e.BlockNumber, tgformat.EscapeMarkdown(e.Notes))
		default:
			fmt.Fprintf(&b, "🔄 %s: не проверен\n", e.BlockNumber)
		}
	}
	return b.String()
}
