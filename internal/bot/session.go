package bot

import (
	"depotbot/core/telegram/state"
	"depotbot/internal/workflow"
)

const sessionKey = "inspection_session"

func (a *App) sessionOf(userID int64) (workflow.Session, bool) {
	v, ok := a.sessions.GetTemp(userID, sessionKey)
	if !ok {
		return workflow.Session{}, false
	}
	sess, ok := v.(workflow.Session)
	return sess, ok
}

// saveSession stores the workflow session and mirrors its state into the FSM
// manager so text routing keeps dispatching to the conversation handler.
func (a *App) saveSession(userID int64, sess workflow.Session) {
	a.sessions.SetTemp(userID, sessionKey, sess)
	a.sessions.SetState(userID, state.State(sess.State))
}

func (a *App) clearSession(userID int64) {
	a.sessions.Clear(userID)
}
