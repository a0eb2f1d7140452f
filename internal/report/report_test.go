package report

import (
	"context"
	"errors"
	"strings"
	"testing"

	"depotbot/internal/models"
	"depotbot/internal/storage"
)

type staticDirectory struct {
	inspector *models.Inspector
}

func (d staticDirectory) GetInspector(context.Context, int64) (*models.Inspector, error) {
	return d.inspector, nil
}

func completedInspection(t *testing.T, store storage.Store) int64 {
	t.Helper()
	ctx := context.Background()

	insp, err := store.CreateInspection(ctx, "7401", models.TypeEP2D, 1)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 6; i++ {
		block, err := store.NextPendingBlock(ctx, insp.ID)
		if err != nil || block == nil {
			t.Fatalf("pending block #%d: %v", i, err)
		}
		if _, err := store.RecordBlockResult(ctx, block.ID, true, ""); err != nil {
			t.Fatal(err)
		}
	}
	block, err := store.NextPendingBlock(ctx, insp.ID)
	if err != nil || block == nil {
		t.Fatalf("seventh block: %v", err)
	}
	if _, err := store.RecordBlockResult(ctx, block.ID, false, "треснуло стекло"); err != nil {
		t.Fatal(err)
	}
	if err := store.CompleteInspection(ctx, insp.ID); err != nil {
		t.Fatal(err)
	}
	return insp.ID
}

func TestAssembleOrderAndMarkers(t *testing.T) {
	store := storage.NewMemoryStore()
	id := completedInspection(t, store)

	assembler := NewAssembler(store, staticDirectory{inspector: &models.Inspector{
		ID:       1,
		FullName: "Иванов Иван Иванович",
		Position: "Мастер",
		Branch:   "ТЧ-7",
	}})

	rep, err := assembler.Assemble(context.Background(), id)
	if err != nil {
		t.Fatal(err)
	}
	if len(rep.Entries) != 7 {
		t.Fatalf("entries = %d, expected 7", len(rep.Entries))
	}
	if !rep.Completed {
		t.Fatal("report not marked completed")
	}

	passed := 0
	for _, e := range rep.Entries[:6] {
		if !e.Passed {
			t.Errorf("block %q not marked passed", e.BlockNumber)
		}
		passed++
	}
	defect := rep.Entries[6]
	if defect.Passed || defect.BlockNumber != "Кабина машиниста" || defect.Notes != "треснуло стекло" {
		t.Fatalf("defect entry = %+v", defect)
	}

	text := rep.Text()
	if got := strings.Count(text, ": "+storage.PassNotes); got != 6 {
		t.Fatalf("OK lines = %d, expected 6\n%s", got, text)
	}
	if !strings.Contains(text, "Кабина машиниста: треснуло стекло") {
		t.Fatalf("defect line missing:\n%s", text)
	}
	if !strings.Contains(text, "Иванов Иван Иванович") {
		t.Fatalf("inspector attribution missing:\n%s", text)
	}
	if !strings.Contains(text, "Завершена") {
		t.Fatalf("status missing:\n%s", text)
	}
}

func TestAssembleNotFound(t *testing.T) {
	assembler := NewAssembler(storage.NewMemoryStore(), nil)
	if _, err := assembler.Assemble(context.Background(), 404); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("err = %v, expected ErrNotFound", err)
	}
}

func TestAssembleInProgress(t *testing.T) {
	store := storage.NewMemoryStore()
	ctx := context.Background()
	insp, err := store.CreateInspection(ctx, "7515", models.TypeRA3, 2)
	if err != nil {
		t.Fatal(err)
	}

	rep, err := NewAssembler(store, nil).Assemble(ctx, insp.ID)
	if err != nil {
		t.Fatal(err)
	}
	if rep.Completed {
		t.Fatal("fresh inspection reported as completed")
	}
	if rep.Status() != "В процессе" {
		t.Fatalf("status = %q", rep.Status())
	}
	text := rep.Text()
	if !strings.Contains(text, "не проверен") {
		t.Fatalf("unchecked marker missing:\n%s", text)
	}
}

func TestXLSXExport(t *testing.T) {
	store := storage.NewMemoryStore()
	id := completedInspection(t, store)
	rep, err := NewAssembler(store, nil).Assemble(context.Background(), id)
	if err != nil {
		t.Fatal(err)
	}

	exporter, err := NewXLSXExporter(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	path, err := exporter.Export(context.Background(), rep)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasSuffix(path, ".xlsx") {
		t.Fatalf("unexpected artifact path %q", path)
	}
	if !strings.Contains(path, "inspection_7401_") {
		t.Fatalf("artifact name lacks train number: %q", path)
	}
}
