package bot

import (
	"testing"

	"depotbot/internal/models"
	"depotbot/internal/workflow"
)

func TestDecodeTextMenuLabels(t *testing.T) {
	sess := workflow.Session{State: workflow.StateChooseAction}

	if ev := decodeText(sess, btnNewInspection); ev.Action != workflow.ActionNew {
		t.Fatalf("new inspection label decoded to %q", ev.Action)
	}
	if ev := decodeText(sess, btnHistory); ev.Action != workflow.ActionHistory {
		t.Fatalf("history label decoded to %q", ev.Action)
	}
	if ev := decodeText(sess, "привет"); ev.Action != workflow.ActionText {
		t.Fatalf("free text in menu decoded to %q", ev.Action)
	}
}

func TestDecodeTextCancelWinsInAnyState(t *testing.T) {
	states := []workflow.State{
		workflow.StateChooseAction,
		workflow.StateEnterTrainNumber,
		workflow.StateChooseCategory,
		workflow.StateChooseType,
		workflow.StateCheckBlock,
		workflow.StateEnterNotes,
	}
	for _, st := range states {
		ev := decodeText(workflow.Session{State: st}, btnCancel)
		if ev.Action != workflow.ActionCancel {
			t.Fatalf("state %s: cancel label decoded to %q", st, ev.Action)
		}
	}
}

func TestDecodeTextCategoryAndType(t *testing.T) {
	sess := workflow.Session{State: workflow.StateChooseCategory}
	ev := decodeText(sess, categoryLabel(models.CategoryRailBus))
	if ev.Action != workflow.ActionCategory || ev.Category != models.CategoryRailBus {
		t.Fatalf("rail bus label decoded to %+v", ev)
	}

	sess = workflow.Session{State: workflow.StateChooseType, Category: models.CategoryElektrichka}
	ev = decodeText(sess, models.TypeEP2D.Title())
	if ev.Action != workflow.ActionType || ev.Type != models.TypeEP2D {
		t.Fatalf("ЭП2Д label decoded to %+v", ev)
	}

	// A type from the other category stays free text and gets rejected
	// downstream.
	ev = decodeText(sess, models.TypeRA3.Title())
	if ev.Action != workflow.ActionText {
		t.Fatalf("foreign type label decoded to %q", ev.Action)
	}
}

func TestDecodeTextPassesFreeTextThrough(t *testing.T) {
	sess := workflow.Session{State: workflow.StateEnterNotes}
	ev := decodeText(sess, "треснуло стекло")
	if ev.Action != workflow.ActionText || ev.Text != "треснуло стекло" {
		t.Fatalf("notes text decoded to %+v", ev)
	}
}
