package workflow

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"log/slog"

	"depotbot/core/logger"
	"depotbot/internal/catalog"
	"depotbot/internal/identity"
	"depotbot/internal/models"
	"depotbot/internal/storage"
)

// Machine advances inspection sessions. It is stateless itself and safe for
// concurrent use; all mutable state lives in the Session value and the store.
type Machine struct {
	store    storage.Store
	validate *validator.Validate
}

// The stricter of the observed source rules: digits only, at least two of
// them. Documented in DESIGN.md. The "number" tag (not "numeric") matters:
// "numeric" also admits signs and decimal points.
type trainNumberInput struct {
	Number string `validate:"required,number,min=2"`
}

type notesInput struct {
	Notes string `validate:"required,min=1,max=1000"`
}

// NewMachine builds a Machine over the given store.
func NewMachine(store storage.Store) *Machine {
	return &Machine{
		store:    store,
		validate: validator.New(),
	}
}

// Start opens a session for the inspector, refusing blocked accounts.
func (m *Machine) Start(_ context.Context, inspector *models.Inspector) (Session, []Prompt, error) {
	if identity.IsBlocked(inspector) {
		return Session{}, nil, ErrBlocked
	}
	sess := Session{State: StateChooseAction, InspectorID: inspector.ID}
	return sess, []Prompt{{Kind: PromptChooseAction}}, nil
}

// Handle advances the session by one event. Invalid input re-prompts the
// current state; store failures leave the session at its last stable prompt
// and surface the error to the caller.
func (m *Machine) Handle(ctx context.Context, sess Session, ev Event) (Session, []Prompt, error) {
	next, prompts, err := m.dispatch(ctx, sess, ev)

	var verr *ValidationError
	if errors.As(err, &verr) {
		// Recovered locally: same state, corrective hint, re-prompt.
		reprompts := append([]Prompt{{Kind: PromptHint, Hint: verr.Hint}}, m.reprompt(ctx, sess)...)
		return sess, reprompts, nil
	}
	if errors.Is(err, storage.ErrNotFound) {
		// The record vanished underneath the session; terminate this
		// inspection and fall back to the menu.
		logger.Warn(ctx, "service.inspections", "workflow.not_found",
			slog.Int64("inspection_id", sess.InspectionID),
			slog.Int64("block_id", sess.PendingBlockID),
		)
		reset := Session{State: StateChooseAction, InspectorID: sess.InspectorID}
		return reset, []Prompt{
			{Kind: PromptHint, Hint: "Запись не найдена. Приёмка прервана."},
			{Kind: PromptChooseAction},
		}, nil
	}
	if err != nil {
		// Store or other infrastructure failure: keep the session where it
		// was so the inspector can retry from the same prompt.
		return sess, nil, err
	}
	return next, prompts, nil
}

func (m *Machine) dispatch(ctx context.Context, sess Session, ev Event) (Session, []Prompt, error) {
	if ev.Action == ActionCancel {
		reset := Session{State: StateChooseAction, InspectorID: sess.InspectorID}
		return reset, []Prompt{{Kind: PromptChooseAction}}, nil
	}

	switch sess.State {
	case StateChooseAction:
		return m.handleChooseAction(sess, ev)
	case StateEnterTrainNumber:
		return m.handleTrainNumber(sess, ev)
	case StateChooseCategory:
		return m.handleCategory(sess, ev)
	case StateChooseType:
		return m.handleType(ctx, sess, ev)
	case StateCheckBlock:
		return m.handleVerdict(ctx, sess, ev)
	case StateEnterNotes:
		return m.handleNotes(ctx, sess, ev)
	}

	// Unknown state value: treat the session as fresh.
	reset := Session{State: StateChooseAction, InspectorID: sess.InspectorID}
	return reset, []Prompt{{Kind: PromptChooseAction}}, nil
}

func (m *Machine) handleChooseAction(sess Session, ev Event) (Session, []Prompt, error) {
	switch ev.Action {
	case ActionNew:
		sess.State = StateEnterTrainNumber
		return sess, []Prompt{{Kind: PromptEnterNumber}}, nil
	case ActionHistory:
		return sess, []Prompt{{Kind: PromptHistory}}, nil
	}
	return sess, nil, &ValidationError{Hint: "Пожалуйста, используйте кнопки меню."}
}

func (m *Machine) handleTrainNumber(sess Session, ev Event) (Session, []Prompt, error) {
	if ev.Action != ActionText {
		return sess, nil, &ValidationError{Hint: "Введите номер состава текстом."}
	}
	number := strings.TrimSpace(ev.Text)
	if err := m.validate.Struct(trainNumberInput{Number: number}); err != nil {
		return sess, nil, &ValidationError{Hint: "Номер состава должен содержать только цифры (не менее двух)."}
	}
	sess.TrainNumber = number
	sess.State = StateChooseCategory
	return sess, []Prompt{{Kind: PromptChooseCategory}}, nil
}

func (m *Machine) handleCategory(sess Session, ev Event) (Session, []Prompt, error) {
	if ev.Action != ActionCategory || !ev.Category.Valid() {
		return sess, nil, &ValidationError{Hint: "Пожалуйста, выберите тип состава из предложенных вариантов."}
	}
	sess.Category = ev.Category
	sess.State = StateChooseType
	return sess, []Prompt{{
		Kind:     PromptChooseType,
		Category: sess.Category,
		Types:    catalog.Types(sess.Category),
	}}, nil
}

func (m *Machine) handleType(ctx context.Context, sess Session, ev Event) (Session, []Prompt, error) {
	if ev.Action != ActionType || !ev.Type.Valid() || ev.Type.Category() != sess.Category {
		// An inconsistent category/type pair must not create anything.
		return sess, nil, &ValidationError{Hint: "Выберите модель, относящуюся к выбранной категории."}
	}

	insp, err := m.store.CreateInspection(ctx, sess.TrainNumber, ev.Type, sess.InspectorID)
	if err != nil {
		return sess, nil, err
	}
	sess.InspectionID = insp.ID
	sess.State = StateCheckBlock
	return m.presentPending(ctx, sess)
}

func (m *Machine) handleVerdict(ctx context.Context, sess Session, ev Event) (Session, []Prompt, error) {
	switch ev.Action {
	case ActionPass, ActionFail:
	default:
		return sess, nil, &ValidationError{Hint: "Оцените блок кнопками под сообщением."}
	}

	// Callback payloads are forgeable and inline buttons outlive the
	// inspection they were sent for. Only the session's pending block may
	// receive a verdict; anything else re-prompts it.
	if ev.BlockID != sess.PendingBlockID {
		return sess, nil, &ValidationError{Hint: "Эта кнопка уже неактуальна."}
	}

	if ev.Action == ActionPass {
		if _, err := m.store.RecordBlockResult(ctx, ev.BlockID, true, ""); err != nil {
			return sess, nil, err
		}
		return m.presentPending(ctx, sess)
	}

	sess.State = StateEnterNotes
	return sess, []Prompt{{Kind: PromptEnterNotes}}, nil
}

func (m *Machine) handleNotes(ctx context.Context, sess Session, ev Event) (Session, []Prompt, error) {
	if ev.Action != ActionText {
		return sess, nil, &ValidationError{Hint: "Опишите неисправность текстом."}
	}
	notes := strings.TrimSpace(ev.Text)
	if err := m.validate.Struct(notesInput{Notes: notes}); err != nil {
		return sess, nil, &ValidationError{Hint: "Описание неисправности не может быть пустым."}
	}
	// The pass verdict is encoded as the sentinel in block notes; a defect
	// description equal to it would render as a pass in reports.
	if notes == storage.PassNotes {
		return sess, nil, &ValidationError{Hint: "Опишите неисправность подробнее."}
	}
	if _, err := m.store.RecordBlockResult(ctx, sess.PendingBlockID, false, notes); err != nil {
		return sess, nil, err
	}
	sess.State = StateCheckBlock
	return m.presentPending(ctx, sess)
}

// presentPending advances to the next unchecked block or completes the
// inspection when none remain.
func (m *Machine) presentPending(ctx context.Context, sess Session) (Session, []Prompt, error) {
	block, err := m.store.NextPendingBlock(ctx, sess.InspectionID)
	if err != nil {
		return sess, nil, err
	}

	if block == nil {
		if err := m.store.CompleteInspection(ctx, sess.InspectionID); err != nil {
			return sess, nil, err
		}
		insp, err := m.store.Get(ctx, sess.InspectionID)
		if err != nil {
			return sess, nil, err
		}
		logger.Info(ctx, "service.inspections", "workflow.completed",
			slog.Int64("inspection_id", sess.InspectionID),
		)
		reset := Session{State: StateChooseAction, InspectorID: sess.InspectorID}
		return reset, []Prompt{
			{Kind: PromptCompleted, Inspection: insp},
			{Kind: PromptReport, Inspection: insp},
			{Kind: PromptChooseAction},
		}, nil
	}

	prompt, err := m.blockPrompt(block)
	if err != nil {
		return sess, nil, err
	}
	sess.State = StateCheckBlock
	sess.PendingBlockID = block.ID
	return sess, []Prompt{prompt}, nil
}

func (m *Machine) blockPrompt(block *models.Block) (Prompt, error) {
	desc, err := catalog.Description(block.BlockNumber)
	if err != nil {
		return Prompt{}, err
	}
	checklist, err := catalog.Checklist(block.BlockNumber)
	if err != nil {
		return Prompt{}, err
	}
	return Prompt{
		Kind:        PromptBlock,
		Block:       block,
		Description: desc,
		Checklist:   checklist,
	}, nil
}

// reprompt re-emits the prompt matching the session's current state so a
// rejected input always ends in a known, resumable position.
func (m *Machine) reprompt(ctx context.Context, sess Session) []Prompt {
	switch sess.State {
	case StateEnterTrainNumber:
		return []Prompt{{Kind: PromptEnterNumber}}
	case StateChooseCategory:
		return []Prompt{{Kind: PromptChooseCategory}}
	case StateChooseType:
		return []Prompt{{
			Kind:     PromptChooseType,
			Category: sess.Category,
			Types:    catalog.Types(sess.Category),
		}}
	case StateCheckBlock:
		if block, err := m.store.NextPendingBlock(ctx, sess.InspectionID); err == nil && block != nil {
			if prompt, perr := m.blockPrompt(block); perr == nil {
				return []Prompt{prompt}
			}
		}
		return nil
	case StateEnterNotes:
		return []Prompt{{Kind: PromptEnterNotes}}
	}
	return []Prompt{{Kind: PromptChooseAction}}
}
