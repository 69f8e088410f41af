package ws

import (
	"github.com/crackit/crackit-backend/internal/model"
	"github.com/crackit/crackit-backend/internal/session"
)

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionAnswer  Action = "answer"
	ActionReview  Action = "review"
	ActionGoTo    Action = "goto"
	ActionNext    Action = "next"
	ActionPrev    Action = "prev"
	ActionPalette Action = "palette"
	ActionSubmit  Action = "submit"
	ActionPing    Action = "ping"
)

// CommandRequest carries any session command. Index and Option are only
// read for the actions that need them.
type CommandRequest struct {
	Action Action `json:"action"`
	Index  int    `json:"index"`
	Option int    `json:"option"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventState  Event = "state"
	EventResult Event = "result"
	EventError  Event = "error"
	EventPong   Event = "pong"
)

// StateEvent pushes the latest session snapshot; sent on every clock tick
// and after every accepted command.
type StateEvent struct {
	Event Event            `json:"event"`
	State session.Snapshot `json:"state"`
}

// ResultEvent delivers the final grading when the session ends.
type ResultEvent struct {
	Event  Event             `json:"event"`
	Result *model.ExamResult `json:"result"`
}

type ErrorResponse struct {
	Event Event  `json:"event"`
	Error string `json:"error"`
}

type PongResponse struct {
	Event Event `json:"event"`
}
