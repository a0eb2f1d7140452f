package catalog

import (
	"errors"
	"testing"

	"depotbot/internal/models"
)

func TestBlocksCoverEveryType(t *testing.T) {
	for _, category := range []models.TrainCategory{models.CategoryElektrichka, models.CategoryRailBus} {
		types := Types(category)
		if len(types) == 0 {
			t.Fatalf("category %s has no types", category)
		}
		for _, tt := range types {
			if tt.Category() != category {
				t.Errorf("type %s reports category %s, expected %s", tt, tt.Category(), category)
			}
			blocks, err := Blocks(tt)
			if err != nil {
				t.Fatalf("Blocks(%s): %v", tt, err)
			}
			if len(blocks) == 0 {
				t.Fatalf("Blocks(%s) is empty", tt)
			}
			for _, name := range blocks {
				if _, err := Description(name); err != nil {
					t.Errorf("block %q of %s has no description: %v", name, tt, err)
				}
				items, err := Checklist(name)
				if err != nil {
					t.Errorf("block %q of %s has no checklist: %v", name, tt, err)
				}
				if len(items) == 0 {
					t.Errorf("block %q of %s has an empty checklist", name, tt)
				}
			}
		}
	}
}

func TestBlocksOrderStable(t *testing.T) {
	first, err := Blocks(models.TypeEP2D)
	if err != nil {
		t.Fatal(err)
	}
	expected := []string{
		"Тормозное оборудование",
		"Ходовая часть",
		"Электрооборудование",
		"Система управления",
		"Двери и окна",
		"Салон",
		"Кабина машиниста",
	}
	if len(first) != len(expected) {
		t.Fatalf("EP2D block count = %d, expected %d", len(first), len(expected))
	}
	for i, name := range expected {
		if first[i] != name {
			t.Errorf("EP2D block %d = %q, expected %q", i, first[i], name)
		}
	}

	second, err := Blocks(models.TypeEP2D)
	if err != nil {
		t.Fatal(err)
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("Blocks(EP2D) is not deterministic at index %d", i)
		}
	}

	// Returned slices must be copies, not aliases of internal state.
	second[0] = "mutated"
	third, _ := Blocks(models.TypeEP2D)
	if third[0] != expected[0] {
		t.Fatal("Blocks returned an alias of internal data")
	}
}

func TestUnknownKeys(t *testing.T) {
	if _, err := Blocks(models.TrainType("ICE3")); !errors.Is(err, ErrUnknownKey) {
		t.Errorf("Blocks(unknown) err = %v, expected ErrUnknownKey", err)
	}
	if _, err := Description("Реактор"); !errors.Is(err, ErrUnknownKey) {
		t.Errorf("Description(unknown) err = %v, expected ErrUnknownKey", err)
	}
	if _, err := Checklist("Реактор"); !errors.Is(err, ErrUnknownKey) {
		t.Errorf("Checklist(unknown) err = %v, expected ErrUnknownKey", err)
	}
}
