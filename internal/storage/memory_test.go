package storage

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"depotbot/internal/catalog"
	"depotbot/internal/models"
)

func TestCreateInspectionCreatesAllBlocks(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	for _, tt := range []models.TrainType{models.TypeEP2D, models.TypeEP3D, models.TypeRA1, models.TypeRA2, models.TypeRA3} {
		insp, err := store.CreateInspection(ctx, "7401", tt, 1)
		if err != nil {
			t.Fatalf("CreateInspection(%s): %v", tt, err)
		}
		if insp.ID == 0 {
			t.Fatal("expected assigned inspection id")
		}
		if insp.IsCompleted {
			t.Error("new inspection must not be completed")
		}

		names, err := catalog.Blocks(tt)
		if err != nil {
			t.Fatal(err)
		}
		blocks, err := store.Blocks(ctx, insp.ID)
		if err != nil {
			t.Fatal(err)
		}
		if len(blocks) != len(names) {
			t.Fatalf("%s: created %d blocks, expected %d", tt, len(blocks), len(names))
		}
		for i, b := range blocks {
			if b.BlockNumber != names[i] {
				t.Errorf("%s: block %d = %q, expected %q", tt, i, b.BlockNumber, names[i])
			}
			if b.IsChecked {
				t.Errorf("%s: block %q created checked", tt, b.BlockNumber)
			}
			if b.Notes != "" {
				t.Errorf("%s: unchecked block %q has notes %q", tt, b.BlockNumber, b.Notes)
			}
		}
	}
}

func TestCreateInspectionRejectsInvalidTrainNumber(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	for _, number := range []string{"", "7", "74a1", "74 01", "-41", "+41", "1.5", "поезд"} {
		if _, err := store.CreateInspection(ctx, number, models.TypeEP2D, 1); !errors.Is(err, ErrInvalidTrainNumber) {
			t.Errorf("CreateInspection(%q): err = %v, expected ErrInvalidTrainNumber", number, err)
		}
	}

	// Nothing may be left behind by the rejected attempts.
	if _, err := store.Get(ctx, 1); !errors.Is(err, ErrNotFound) {
		t.Fatalf("rejected creation left an inspection: %v", err)
	}
}

func TestCreateInspectionUnknownType(t *testing.T) {
	store := NewMemoryStore()
	if _, err := store.CreateInspection(context.Background(), "7401", models.TrainType("TGV"), 1); !errors.Is(err, catalog.ErrUnknownKey) {
		t.Fatalf("err = %v, expected ErrUnknownKey", err)
	}
}

func TestNextPendingBlockOrder(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	insp, err := store.CreateInspection(ctx, "7401", models.TypeEP2D, 1)
	if err != nil {
		t.Fatal(err)
	}

	names, _ := catalog.Blocks(models.TypeEP2D)
	for i := range names {
		block, err := store.NextPendingBlock(ctx, insp.ID)
		if err != nil {
			t.Fatal(err)
		}
		if block == nil {
			t.Fatalf("pending block #%d is nil", i)
		}
		if block.BlockNumber != names[i] {
			t.Fatalf("pending block #%d = %q, expected %q", i, block.BlockNumber, names[i])
		}
		if _, err := store.RecordBlockResult(ctx, block.ID, true, ""); err != nil {
			t.Fatal(err)
		}
	}

	block, err := store.NextPendingBlock(ctx, insp.ID)
	if err != nil {
		t.Fatal(err)
	}
	if block != nil {
		t.Fatalf("expected nil after all verdicts, got %q", block.BlockNumber)
	}
}

func TestRecordBlockResultVerdicts(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	insp, err := store.CreateInspection(ctx, "7401", models.TypeRA1, 1)
	if err != nil {
		t.Fatal(err)
	}

	first, err := store.NextPendingBlock(ctx, insp.ID)
	if err != nil {
		t.Fatal(err)
	}

	passed, err := store.RecordBlockResult(ctx, first.ID, true, "ignored")
	if err != nil {
		t.Fatal(err)
	}
	if !passed.IsChecked || passed.Notes != PassNotes {
		t.Fatalf("pass verdict stored %+v, expected checked with %q", passed, PassNotes)
	}

	second, err := store.NextPendingBlock(ctx, insp.ID)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := store.RecordBlockResult(ctx, second.ID, false, ""); !errors.Is(err, ErrEmptyNotes) {
		t.Fatalf("fail verdict without notes: err = %v, expected ErrEmptyNotes", err)
	}
	failed, err := store.RecordBlockResult(ctx, second.ID, false, "треснуло стекло")
	if err != nil {
		t.Fatal(err)
	}
	if !failed.IsChecked || failed.Notes != "треснуло стекло" {
		t.Fatalf("fail verdict stored %+v", failed)
	}

	// A repeated verdict is a no-op returning the recorded result.
	again, err := store.RecordBlockResult(ctx, second.ID, true, "")
	if err != nil {
		t.Fatal(err)
	}
	if again.Notes != "треснуло стекло" {
		t.Fatalf("repeat verdict overwrote notes: %q", again.Notes)
	}

	if _, err := store.RecordBlockResult(ctx, 9999, true, ""); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing block: err = %v, expected ErrNotFound", err)
	}
}

func TestCompleteInspectionMonotone(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	insp, err := store.CreateInspection(ctx, "7401", models.TypeEP2D, 1)
	if err != nil {
		t.Fatal(err)
	}

	if err := store.CompleteInspection(ctx, insp.ID); err != nil {
		t.Fatal(err)
	}
	got, err := store.Get(ctx, insp.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !got.IsCompleted {
		t.Fatal("inspection not completed")
	}

	// Completing again must not revert anything.
	if err := store.CompleteInspection(ctx, insp.ID); err != nil {
		t.Fatal(err)
	}
	got, _ = store.Get(ctx, insp.ID)
	if !got.IsCompleted {
		t.Fatal("completion reverted")
	}

	if err := store.CompleteInspection(ctx, 9999); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing inspection: err = %v, expected ErrNotFound", err)
	}
}

func TestHistoryLimitAndOrder(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	base := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	tick := 0
	store.SetClock(func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	})

	const total = 13
	for i := 0; i < total; i++ {
		if _, err := store.CreateInspection(ctx, fmt.Sprintf("74%02d", i), models.TypeEP2D, 42); err != nil {
			t.Fatal(err)
		}
	}
	// Another inspector's history must not leak in.
	if _, err := store.CreateInspection(ctx, "9999", models.TypeRA1, 7); err != nil {
		t.Fatal(err)
	}

	history, err := store.History(ctx, 42, HistoryLimit)
	if err != nil {
		t.Fatal(err)
	}
	if len(history) != HistoryLimit {
		t.Fatalf("history length = %d, expected %d", len(history), HistoryLimit)
	}
	for i := 1; i < len(history); i++ {
		if history[i].CreatedAt.After(history[i-1].CreatedAt) {
			t.Fatalf("history not ordered by created_at desc at index %d", i)
		}
	}
	if history[0].TrainNumber != fmt.Sprintf("74%02d", total-1) {
		t.Fatalf("most recent inspection = %q", history[0].TrainNumber)
	}
	for _, insp := range history {
		if insp.InspectorID != 42 {
			t.Fatalf("foreign inspection %d in history", insp.ID)
		}
	}
}

func TestGetMissing(t *testing.T) {
	store := NewMemoryStore()
	if _, err := store.Get(context.Background(), 1); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, expected ErrNotFound", err)
	}
}
