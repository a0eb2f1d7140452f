package bot

import (
	"context"
	"errors"
	"fmt"

	tele "gopkg.in/telebot.v4"

	"depotbot/core/telegram/callbacks"
	"depotbot/core/telegram/format"
	tghelpers "depotbot/core/telegram/helpers"
	"depotbot/internal/models"
	"depotbot/internal/storage"
	"depotbot/internal/workflow"
)

const (
	msgNotRegistered  = "⛔ Вы не зарегистрированы как приёмщик. Обратитесь к администратору."
	msgBlocked        = "⛔ Ваша учётная запись заблокирована."
	msgInternalError  = "Произошла ошибка. Попробуйте ещё раз."
	msgSessionExpired = "Сессия истекла. Отправьте /start, чтобы начать заново."
	msgNoAccess       = "Нет доступа к этой приёмке."
	msgNotFoundReport = "Приёмка не найдена."
)

func (a *App) handleStart(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	userID := c.Sender().ID

	inspector, err := tghelpers.CurrentInspector(ctx, a.identity, userID)
	if err != nil {
		_ = tghelpers.SendText(c, msgInternalError)
		return err
	}
	if inspector == nil {
		return tghelpers.SendText(c, msgNotRegistered)
	}

	sess, prompts, err := a.machine.Start(ctx, inspector)
	if errors.Is(err, workflow.ErrBlocked) {
		a.clearSession(userID)
		return tghelpers.SendText(c, msgBlocked)
	}
	if err != nil {
		return err
	}

	a.saveSession(userID, sess)
	greeting := fmt.Sprintf("👋 Здравствуйте, %s!", format.EscapeMarkdown(inspector.FullName))
	if err := tghelpers.SendMD(c, greeting); err != nil {
		return err
	}
	return a.renderPrompts(ctx, c, sess, prompts)
}

// onWorkflowText serves every conversation state reached via text input.
func (a *App) onWorkflowText(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	userID := c.Sender().ID

	sess, ok := a.sessionOf(userID)
	if !ok {
		a.clearSession(userID)
		return a.handleStart(c)
	}

	return a.advance(ctx, c, sess, decodeText(sess, c.Text()))
}

// onVerdict handles the pass/fail inline buttons under a block message. The
// block id travels in the callback payload.
func (a *App) onVerdict(action workflow.Action) tele.HandlerFunc {
	return func(c tele.Context) error {
		ctx := tghelpers.BuildContext(c)
		userID := c.Sender().ID

		sess, ok := a.sessionOf(userID)
		if !ok {
			return tghelpers.SendText(c, msgSessionExpired)
		}
		blockID, err := callbacks.PayloadInt64(c)
		if err != nil {
			return tghelpers.SendText(c, msgSessionExpired)
		}

		return a.advance(ctx, c, sess, workflow.Event{Action: action, BlockID: blockID})
	}
}

func (a *App) onViewReport(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	inspectionID, err := callbacks.PayloadInt64(c)
	if err != nil {
		return tghelpers.SendText(c, msgNotFoundReport)
	}
	if err := a.authorizeInspection(ctx, c, inspectionID); err != nil {
		return reportAccessReply(c, err)
	}
	return a.sendReport(ctx, c, inspectionID)
}

func (a *App) onExportReport(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	inspectionID, err := callbacks.PayloadInt64(c)
	if err != nil {
		return tghelpers.SendText(c, msgNotFoundReport)
	}
	if err := a.authorizeInspection(ctx, c, inspectionID); err != nil {
		return reportAccessReply(c, err)
	}
	return a.sendReportFile(ctx, c, inspectionID)
}

// advance runs the machine, persists the new session, and renders the
// resulting prompts. Infrastructure errors surface to the router after a
// generic apology; the session stays put so the inspector can retry.
func (a *App) advance(ctx context.Context, c tele.Context, sess workflow.Session, ev workflow.Event) error {
	next, prompts, err := a.machine.Handle(ctx, sess, ev)
	if err != nil {
		_ = tghelpers.SendText(c, msgInternalError)
		return err
	}
	a.saveSession(c.Sender().ID, next)
	return a.renderPrompts(ctx, c, next, prompts)
}

var errNoAccess = errors.New("bot: inspection belongs to another inspector")

// authorizeInspection confirms the callback issuer may read the inspection.
// History keyboards only ever offer the inspector's own records, but callback
// payloads are forgeable.
func (a *App) authorizeInspection(ctx context.Context, c tele.Context, inspectionID int64) error {
	inspector, err := tghelpers.CurrentInspector(ctx, a.identity, c.Sender().ID)
	if err != nil {
		return err
	}
	if inspector == nil {
		return errNoAccess
	}
	insp, err := a.store.Get(ctx, inspectionID)
	if err != nil {
		return err
	}
	if insp.InspectorID != inspector.ID && inspector.Role != models.RoleAdmin {
		return errNoAccess
	}
	return nil
}

func reportAccessReply(c tele.Context, err error) error {
	switch {
	case errors.Is(err, errNoAccess):
		return tghelpers.SendText(c, msgNoAccess)
	case errors.Is(err, storage.ErrNotFound):
		return tghelpers.SendText(c, msgNotFoundReport)
	}
	_ = tghelpers.SendText(c, msgInternalError)
	return err
}
