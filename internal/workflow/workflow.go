// Package workflow drives the conversational inspection flow: choose action,
// enter train number, choose category and type, check blocks one by one, and
// complete the inspection.
//
// The machine is deliberately transport-free. Session state is an explicit
// value passed in and returned, inbound user actions arrive as enumerated
// Events decoded once at the transport boundary, and outbound instructions
// leave as Prompts the adapter renders into messages and keyboards. One
// session serves one inspector; sessions never share mutable state.
package workflow

import (
	"errors"

	"depotbot/internal/models"
)

// State identifies a step of the inspection conversation.
type State string

const (
	// StateChooseAction is the stable entry menu of the flow.
	StateChooseAction State = "choose_action"
	// StateEnterTrainNumber awaits the free-text composition number.
	StateEnterTrainNumber State = "enter_train_number"
	// StateChooseCategory awaits a train category selection.
	StateChooseCategory State = "choose_category"
	// StateChooseType awaits a train type consistent with the category.
	StateChooseType State = "choose_type"
	// StateCheckBlock awaits a pass/fail verdict for the pending block.
	StateCheckBlock State = "check_block"
	// StateEnterNotes awaits the defect description after a fail verdict.
	StateEnterNotes State = "enter_notes"
)

// Session is the explicit per-inspector conversation state.
type Session struct {
	State          State
	InspectorID    int64
	TrainNumber    string
	Category       models.TrainCategory
	InspectionID   int64
	PendingBlockID int64
}

// Action enumerates the user intents the machine understands. Free-text menu
// labels and callback keys are mapped to Actions exactly once, in the
// transport adapter.
type Action string

const (
	// ActionNew starts a new inspection.
	ActionNew Action = "new"
	// ActionHistory requests the inspection history view.
	ActionHistory Action = "history"
	// ActionCancel abandons the current step and returns to the menu.
	ActionCancel Action = "cancel"
	// ActionText carries free-text input (train number, defect notes).
	ActionText Action = "text"
	// ActionCategory carries a train category selection.
	ActionCategory Action = "category"
	// ActionType carries a train type selection.
	ActionType Action = "type"
	// ActionPass records a pass verdict for a block.
	ActionPass Action = "pass"
	// ActionFail records a fail verdict for a block.
	ActionFail Action = "fail"
)

// Event is one decoded inbound user action.
type Event struct {
	Action   Action
	Text     string
	Category models.TrainCategory
	Type     models.TrainType
	BlockID  int64
}

// PromptKind enumerates the outbound instructions the adapter renders.
type PromptKind string

const (
	// PromptChooseAction shows the new/history menu.
	PromptChooseAction PromptKind = "choose_action"
	// PromptEnterNumber asks for the composition number.
	PromptEnterNumber PromptKind = "enter_number"
	// PromptChooseCategory shows the category keyboard.
	PromptChooseCategory PromptKind = "choose_category"
	// PromptChooseType shows the type keyboard for the chosen category.
	PromptChooseType PromptKind = "choose_type"
	// PromptBlock presents a block's description and checklist with
	// pass/fail buttons.
	PromptBlock PromptKind = "block"
	// PromptEnterNotes asks for the defect description.
	PromptEnterNotes PromptKind = "enter_notes"
	// PromptCompleted announces that every block has been checked.
	PromptCompleted PromptKind = "completed"
	// PromptReport asks the adapter to assemble and show the report.
	PromptReport PromptKind = "report"
	// PromptHistory delegates to the history view.
	PromptHistory PromptKind = "history"
	// PromptHint carries a short corrective message preceding a re-prompt.
	PromptHint PromptKind = "hint"
)

// Prompt is one outbound instruction. Only the fields relevant to Kind are
// populated.
type Prompt struct {
	Kind        PromptKind
	Hint        string
	Category    models.TrainCategory
	Types       []models.TrainType
	Block       *models.Block
	Description string
	Checklist   []string
	Inspection  *models.Inspection
}

// ErrBlocked is returned when a blocked or deactivated inspector attempts to
// start the flow.
var ErrBlocked = errors.New("workflow: inspector is blocked")

// ValidationError rejects user input; the flow recovers by re-prompting the
// same state with the hint.
type ValidationError struct {
	Hint string
}

func (e *ValidationError) Error() string { return "workflow: " + e.Hint }

// Code tags validation failures for the router's error-code log field.
func (e *ValidationError) Code() string { return "validation" }
