package workflow

import (
	"context"
	"errors"
	"testing"

	"depotbot/internal/models"
	"depotbot/internal/storage"
)

func activeInspector() *models.Inspector {
	return &models.Inspector{
		ID:         1,
		TelegramID: 100500,
		FullName:   "Иванов Иван Иванович",
		Position:   "Мастер",
		Branch:     "ТЧ-7",
		Role:       models.RoleUser,
		IsActive:   true,
	}
}

func startSession(t *testing.T, m *Machine) Session {
	t.Helper()
	sess, prompts, err := m.Start(context.Background(), activeInspector())
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if sess.State != StateChooseAction {
		t.Fatalf("start state = %s", sess.State)
	}
	requireKinds(t, prompts, PromptChooseAction)
	return sess
}

func handle(t *testing.T, m *Machine, sess Session, ev Event) (Session, []Prompt) {
	t.Helper()
	next, prompts, err := m.Handle(context.Background(), sess, ev)
	if err != nil {
		t.Fatalf("Handle(%s in %s): %v", ev.Action, sess.State, err)
	}
	return next, prompts
}

func requireKinds(t *testing.T, prompts []Prompt, kinds ...PromptKind) {
	t.Helper()
	if len(prompts) != len(kinds) {
		t.Fatalf("got %d prompts, expected %d: %+v", len(prompts), len(kinds), prompts)
	}
	for i, k := range kinds {
		if prompts[i].Kind != k {
			t.Fatalf("prompt %d kind = %s, expected %s", i, prompts[i].Kind, k)
		}
	}
}

func TestStartRefusesBlockedInspector(t *testing.T) {
	m := NewMachine(storage.NewMemoryStore())

	blocked := activeInspector()
	blocked.IsBlocked = true
	if _, _, err := m.Start(context.Background(), blocked); !errors.Is(err, ErrBlocked) {
		t.Fatalf("blocked inspector: err = %v, expected ErrBlocked", err)
	}

	inactive := activeInspector()
	inactive.IsActive = false
	if _, _, err := m.Start(context.Background(), inactive); !errors.Is(err, ErrBlocked) {
		t.Fatalf("inactive inspector: err = %v, expected ErrBlocked", err)
	}

	if _, _, err := m.Start(context.Background(), nil); !errors.Is(err, ErrBlocked) {
		t.Fatalf("unregistered inspector: err = %v, expected ErrBlocked", err)
	}
}

func TestTrainNumberValidation(t *testing.T) {
	m := NewMachine(storage.NewMemoryStore())
	sess := startSession(t, m)
	sess, _ = handle(t, m, sess, Event{Action: ActionNew})

	// "-41", "+41", and "1.5" satisfy validator's "numeric" pattern but not
	// "number"; signed and decimal strings are not composition numbers.
	for _, bad := range []string{"", "   ", "74a1", "7", "поезд", "-41", "+41", "1.5"} {
		next, prompts := handle(t, m, sess, Event{Action: ActionText, Text: bad})
		if next.State != StateEnterTrainNumber {
			t.Fatalf("input %q advanced state to %s", bad, next.State)
		}
		requireKinds(t, prompts, PromptHint, PromptEnterNumber)
		sess = next
	}

	next, prompts := handle(t, m, sess, Event{Action: ActionText, Text: "  7401  "})
	if next.State != StateChooseCategory {
		t.Fatalf("valid number left state at %s", next.State)
	}
	if next.TrainNumber != "7401" {
		t.Fatalf("train number = %q, expected trimmed %q", next.TrainNumber, "7401")
	}
	requireKinds(t, prompts, PromptChooseCategory)
}

func TestCategoryTypeConsistency(t *testing.T) {
	store := storage.NewMemoryStore()
	m := NewMachine(store)
	sess := startSession(t, m)
	sess, _ = handle(t, m, sess, Event{Action: ActionNew})
	sess, _ = handle(t, m, sess, Event{Action: ActionText, Text: "7401"})

	// Unknown category keeps re-prompting.
	next, prompts := handle(t, m, sess, Event{Action: ActionCategory, Category: models.TrainCategory("tram")})
	if next.State != StateChooseCategory {
		t.Fatalf("invalid category advanced to %s", next.State)
	}
	requireKinds(t, prompts, PromptHint, PromptChooseCategory)

	sess, prompts = handle(t, m, sess, Event{Action: ActionCategory, Category: models.CategoryRailBus})
	requireKinds(t, prompts, PromptChooseType)
	if len(prompts[0].Types) != 3 {
		t.Fatalf("rail bus types = %v", prompts[0].Types)
	}

	// EP2D belongs to the elektrichka partition: rejected, nothing created.
	next, prompts = handle(t, m, sess, Event{Action: ActionType, Type: models.TypeEP2D})
	if next.State != StateChooseType {
		t.Fatalf("inconsistent type advanced to %s", next.State)
	}
	requireKinds(t, prompts, PromptHint, PromptChooseType)
	if history, _ := store.History(context.Background(), 1, 10); len(history) != 0 {
		t.Fatalf("inconsistent pair created %d inspections", len(history))
	}

	sess, prompts = handle(t, m, next, Event{Action: ActionType, Type: models.TypeRA1})
	if sess.State != StateCheckBlock {
		t.Fatalf("state = %s after valid type", sess.State)
	}
	requireKinds(t, prompts, PromptBlock)
	if prompts[0].Block.BlockNumber != "Двигатель" {
		t.Fatalf("first RA1 block = %q", prompts[0].Block.BlockNumber)
	}
	if prompts[0].Description == "" || len(prompts[0].Checklist) == 0 {
		t.Fatal("block prompt lacks description or checklist")
	}
}

func TestEndToEndEP2D(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	m := NewMachine(store)

	sess := startSession(t, m)
	sess, _ = handle(t, m, sess, Event{Action: ActionNew})
	sess, _ = handle(t, m, sess, Event{Action: ActionText, Text: "7401"})
	sess, _ = handle(t, m, sess, Event{Action: ActionCategory, Category: models.CategoryElektrichka})
	sess, prompts := handle(t, m, sess, Event{Action: ActionType, Type: models.TypeEP2D})

	expectedOrder := []string{
		"Тормозное оборудование",
		"Ходовая часть",
		"Электрооборудование",
		"Система управления",
		"Двери и окна",
		"Салон",
		"Кабина машиниста",
	}

	// Pass the first six blocks.
	for i := 0; i < 6; i++ {
		requireKinds(t, prompts, PromptBlock)
		block := prompts[0].Block
		if block.BlockNumber != expectedOrder[i] {
			t.Fatalf("block %d = %q, expected %q", i, block.BlockNumber, expectedOrder[i])
		}
		sess, prompts = handle(t, m, sess, Event{Action: ActionPass, BlockID: block.ID})
	}

	// Fail the seventh with notes.
	requireKinds(t, prompts, PromptBlock)
	last := prompts[0].Block
	if last.BlockNumber != "Кабина машиниста" {
		t.Fatalf("seventh block = %q", last.BlockNumber)
	}
	sess, prompts = handle(t, m, sess, Event{Action: ActionFail, BlockID: last.ID})
	requireKinds(t, prompts, PromptEnterNotes)
	if sess.State != StateEnterNotes {
		t.Fatalf("state = %s after fail verdict", sess.State)
	}

	sess, prompts = handle(t, m, sess, Event{Action: ActionText, Text: "треснуло стекло"})
	requireKinds(t, prompts, PromptCompleted, PromptReport, PromptChooseAction)
	if sess.State != StateChooseAction {
		t.Fatalf("state = %s after completion", sess.State)
	}
	if !prompts[0].Inspection.IsCompleted {
		t.Fatal("completion prompt carries an incomplete inspection")
	}

	inspectionID := prompts[0].Inspection.ID
	if pending, _ := store.NextPendingBlock(ctx, inspectionID); pending != nil {
		t.Fatalf("pending block %q remains after completion", pending.BlockNumber)
	}

	blocks, err := store.Blocks(ctx, inspectionID)
	if err != nil {
		t.Fatal(err)
	}
	okCount := 0
	for _, b := range blocks {
		if b.Notes == storage.PassNotes {
			okCount++
		}
	}
	if okCount != 6 {
		t.Fatalf("passed blocks = %d, expected 6", okCount)
	}
	if blocks[6].Notes != "треснуло стекло" {
		t.Fatalf("defect notes = %q", blocks[6].Notes)
	}
}

func TestVerdictForStaleBlockReprompts(t *testing.T) {
	store := storage.NewMemoryStore()
	m := NewMachine(store)

	sess := startSession(t, m)
	sess, _ = handle(t, m, sess, Event{Action: ActionNew})
	sess, _ = handle(t, m, sess, Event{Action: ActionText, Text: "7401"})
	sess, _ = handle(t, m, sess, Event{Action: ActionCategory, Category: models.CategoryElektrichka})
	sess, prompts := handle(t, m, sess, Event{Action: ActionType, Type: models.TypeEP2D})

	first := prompts[0].Block
	sess, prompts = handle(t, m, sess, Event{Action: ActionPass, BlockID: first.ID})
	second := prompts[0].Block

	// A duplicate callback for the already-checked first block must not
	// disturb the flow: hint, then the real pending block again.
	sess, prompts = handle(t, m, sess, Event{Action: ActionPass, BlockID: first.ID})
	requireKinds(t, prompts, PromptHint, PromptBlock)
	if prompts[1].Block.ID != second.ID {
		t.Fatalf("pending block = %d, expected %d", prompts[1].Block.ID, second.ID)
	}

	blocks, _ := store.Blocks(context.Background(), sess.InspectionID)
	if blocks[0].Notes != storage.PassNotes {
		t.Fatalf("first block notes = %q after duplicate verdict", blocks[0].Notes)
	}
}

func TestVerdictForForeignBlockRejected(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	m := NewMachine(store)

	victim, err := store.CreateInspection(ctx, "7401", models.TypeEP2D, 2)
	if err != nil {
		t.Fatal(err)
	}
	victimFirst, err := store.NextPendingBlock(ctx, victim.ID)
	if err != nil {
		t.Fatal(err)
	}

	sess := startSession(t, m)
	sess, _ = handle(t, m, sess, Event{Action: ActionNew})
	sess, _ = handle(t, m, sess, Event{Action: ActionText, Text: "7402"})
	sess, _ = handle(t, m, sess, Event{Action: ActionCategory, Category: models.CategoryRailBus})
	sess, _ = handle(t, m, sess, Event{Action: ActionType, Type: models.TypeRA1})

	// Pass and fail verdicts aimed at another inspection's block must both
	// re-prompt without touching the foreign record.
	for _, action := range []Action{ActionPass, ActionFail} {
		next, prompts := handle(t, m, sess, Event{Action: action, BlockID: victimFirst.ID})
		if next.State != StateCheckBlock {
			t.Fatalf("%s on foreign block moved state to %s", action, next.State)
		}
		requireKinds(t, prompts, PromptHint, PromptBlock)
		sess = next
	}

	got, err := store.NextPendingBlock(ctx, victim.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got == nil || got.ID != victimFirst.ID {
		t.Fatalf("victim pending block changed: %+v", got)
	}
}

func TestFailNotesCannotEqualPassSentinel(t *testing.T) {
	store := storage.NewMemoryStore()
	m := NewMachine(store)

	sess := startSession(t, m)
	sess, _ = handle(t, m, sess, Event{Action: ActionNew})
	sess, _ = handle(t, m, sess, Event{Action: ActionText, Text: "7401"})
	sess, _ = handle(t, m, sess, Event{Action: ActionCategory, Category: models.CategoryElektrichka})
	sess, _ = handle(t, m, sess, Event{Action: ActionType, Type: models.TypeEP2D})
	sess, _ = handle(t, m, sess, Event{Action: ActionFail, BlockID: sess.PendingBlockID})

	// Defect notes equal to the stored pass marker would make the block read
	// as passed in reports.
	next, prompts := handle(t, m, sess, Event{Action: ActionText, Text: "  " + storage.PassNotes + "  "})
	if next.State != StateEnterNotes {
		t.Fatalf("sentinel notes advanced state to %s", next.State)
	}
	requireKinds(t, prompts, PromptHint, PromptEnterNotes)

	next, prompts = handle(t, m, next, Event{Action: ActionText, Text: "треснуло стекло"})
	if next.State != StateCheckBlock {
		t.Fatalf("real notes left state at %s", next.State)
	}
	requireKinds(t, prompts, PromptBlock)
}

func TestCancelReturnsToMenu(t *testing.T) {
	m := NewMachine(storage.NewMemoryStore())
	sess := startSession(t, m)
	sess, _ = handle(t, m, sess, Event{Action: ActionNew})
	sess, _ = handle(t, m, sess, Event{Action: ActionText, Text: "7401"})

	next, prompts := handle(t, m, sess, Event{Action: ActionCancel})
	if next.State != StateChooseAction {
		t.Fatalf("state after cancel = %s", next.State)
	}
	requireKinds(t, prompts, PromptChooseAction)
	if next.TrainNumber != "" {
		t.Fatalf("cancel kept train number %q", next.TrainNumber)
	}
}

func TestHistoryDelegation(t *testing.T) {
	m := NewMachine(storage.NewMemoryStore())
	sess := startSession(t, m)
	next, prompts := handle(t, m, sess, Event{Action: ActionHistory})
	if next.State != StateChooseAction {
		t.Fatalf("history moved state to %s", next.State)
	}
	requireKinds(t, prompts, PromptHistory)
}
