package bot

import (
	"depotbot/internal/catalog"
	"depotbot/internal/models"
	"depotbot/internal/workflow"
)

// Reply keyboard labels.
const (
	btnNewInspection = "🆕 Новая приёмка"
	btnHistory       = "📋 История приёмок"
	btnCancel        = "❌ Отмена"
)

// Inline callback keys.
const (
	cbBlockPass    = "block_pass"
	cbBlockFail    = "block_fail"
	cbViewReport   = "view_report"
	cbExportReport = "export_report"
)

func categoryLabel(c models.TrainCategory) string {
	switch c {
	case models.CategoryElektrichka:
		return "🚆 " + c.Title()
	case models.CategoryRailBus:
		return "🚈 " + c.Title()
	}
	return c.Title()
}

// decodeText maps a reply keyboard label or free-text message to a workflow
// event. Labels are matched here exactly once; the machine only ever sees
// enumerated actions. Anything unrecognized arrives as free text, which the
// machine accepts in text states and rejects with a hint elsewhere.
func decodeText(sess workflow.Session, text string) workflow.Event {
	if text == btnCancel {
		return workflow.Event{Action: workflow.ActionCancel}
	}

	switch sess.State {
	case workflow.StateChooseAction:
		switch text {
		case btnNewInspection:
			return workflow.Event{Action: workflow.ActionNew}
		case btnHistory:
			return workflow.Event{Action: workflow.ActionHistory}
		}
	case workflow.StateChooseCategory:
		for _, cat := range []models.TrainCategory{models.CategoryElektrichka, models.CategoryRailBus} {
			if text == categoryLabel(cat) {
				return workflow.Event{Action: workflow.ActionCategory, Category: cat}
			}
		}
	case workflow.StateChooseType:
		for _, tt := range catalog.Types(sess.Category) {
			if text == tt.Title() {
				return workflow.Event{Action: workflow.ActionType, Type: tt}
			}
		}
	}

	return workflow.Event{Action: workflow.ActionText, Text: text}
}
