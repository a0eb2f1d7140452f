package bot

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	tele "gopkg.in/telebot.v4"

	"depotbot/core/telegram/format"
	tghelpers "depotbot/core/telegram/helpers"
	"depotbot/core/telegram/keyboard"
	"depotbot/internal/models"
	"depotbot/internal/storage"
	"depotbot/internal/workflow"
)

func (a *App) renderPrompts(ctx context.Context, c tele.Context, sess workflow.Session, prompts []workflow.Prompt) error {
	for _, p := range prompts {
		if err := a.renderPrompt(ctx, c, sess, p); err != nil {
			return err
		}
	}
	return nil
}

func (a *App) renderPrompt(ctx context.Context, c tele.Context, sess workflow.Session, p workflow.Prompt) error {
	switch p.Kind {
	case workflow.PromptChooseAction:
		kb := keyboard.ReplyButtons(
			[]string{btnNewInspection},
			[]string{btnHistory},
		)
		return tghelpers.SendMD(c, "Выберите действие:", kb)

	case workflow.PromptEnterNumber:
		kb := keyboard.ReplyButtons([]string{btnCancel})
		return tghelpers.SendMD(c, "🔢 Введите номер состава:", kb)

	case workflow.PromptChooseCategory:
		kb := keyboard.ReplyButtons(
			[]string{categoryLabel(models.CategoryElektrichka)},
			[]string{categoryLabel(models.CategoryRailBus)},
			[]string{btnCancel},
		)
		return tghelpers.SendMD(c, "🚆 Выберите тип состава:", kb)

	case workflow.PromptChooseType:
		rows := make([][]string, 0, len(p.Types)+1)
		for _, tt := range p.Types {
			rows = append(rows, []string{tt.Title()})
		}
		rows = append(rows, []string{btnCancel})
		text := fmt.Sprintf("Выберите модель (%s):", p.Category.Title())
		return tghelpers.SendMD(c, text, keyboard.ReplyButtons(rows...))

	case workflow.PromptBlock:
		payload := strconv.FormatInt(p.Block.ID, 10)
		kb := keyboard.InlineButtonsRows([]keyboard.InlineBtn{
			{Text: "✅ Исправен", Unique: cbBlockPass, Data: payload},
			{Text: "⚠️ Неисправен", Unique: cbBlockFail, Data: payload},
		})
		return tghelpers.SendMD(c, blockText(p), kb)

	case workflow.PromptEnterNotes:
		kb := keyboard.ReplyButtons([]string{btnCancel})
		return tghelpers.SendMD(c, "📝 Опишите неисправность:", kb)

	case workflow.PromptCompleted:
		text := fmt.Sprintf("✅ Приёмка состава №%s завершена!",
			format.EscapeMarkdown(p.Inspection.TrainNumber))
		return tghelpers.SendMD(c, text)

	case workflow.PromptReport:
		return a.sendReport(ctx, c, p.Inspection.ID)

	case workflow.PromptHistory:
		return a.sendHistory(ctx, c, sess)

	case workflow.PromptHint:
		return tghelpers.SendText(c, "⚠️ "+p.Hint)
	}
	return nil
}

func blockText(p workflow.Prompt) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🔍 *%s*\n\n", format.EscapeMarkdown(p.Block.BlockNumber))
	b.WriteString(format.EscapeMarkdown(p.Description))
	if len(p.Checklist) > 0 {
		b.WriteString("\n\n*Что проверить:*")
		for _, item := range p.Checklist {
			b.WriteString("\n• ")
			b.WriteString(format.EscapeMarkdown(item))
		}
	}
	return b.String()
}

func (a *App) sendReport(ctx context.Context, c tele.Context, inspectionID int64) error {
	rep, err := a.assembler.Assemble(ctx, inspectionID)
	if err != nil {
		return err
	}
	kb := keyboard.InlineButtonsRows([]keyboard.InlineBtn{{
		Text:   "📎 Скачать XLSX",
		Unique: cbExportReport,
		Data:   strconv.FormatInt(inspectionID, 10),
	}})
	return tghelpers.SendMD(c, rep.Text(), kb)
}

// sendReportFile exports the inspection to a spreadsheet and sends it as a
// document. The file goes through c.Send directly; the async dispatcher only
// covers text messages.
func (a *App) sendReportFile(ctx context.Context, c tele.Context, inspectionID int64) error {
	rep, err := a.assembler.Assemble(ctx, inspectionID)
	if err != nil {
		return err
	}
	path, err := a.exporter.Export(ctx, rep)
	if err != nil {
		_ = tghelpers.SendText(c, "Не удалось сформировать файл отчёта.")
		return err
	}
	doc := &tele.Document{
		File:     tele.FromDisk(path),
		FileName: filepath.Base(path),
	}
	return c.Send(doc)
}

func (a *App) sendHistory(ctx context.Context, c tele.Context, sess workflow.Session) error {
	items, err := a.store.History(ctx, sess.InspectorID, storage.HistoryLimit)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		return tghelpers.SendText(c, "📭 У вас пока нет приёмок.")
	}

	rows := make([][]keyboard.InlineBtn, 0, len(items))
	for _, insp := range items {
		status := "✅"
		if !insp.IsCompleted {
			status = "🔄"
		}
		label := fmt.Sprintf("%s №%s %s · %s",
			status, insp.TrainNumber, insp.TrainType.Title(), tghelpers.FormatDate(insp.CreatedAt))
		rows = append(rows, []keyboard.InlineBtn{{
			Text:   label,
			Unique: cbViewReport,
			Data:   strconv.FormatInt(insp.ID, 10),
		}})
	}
	return tghelpers.SendMD(c, "📋 *Последние приёмки:*", keyboard.InlineButtonsRows(rows...))
}
