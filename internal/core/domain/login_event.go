package domain

import "time"

// LoginFlow names the protocol a login attempt came through.
type LoginFlow string

const (
	FlowSession LoginFlow = "session"
	FlowToken   LoginFlow = "token"
)

// LoginOutcome is the terminal state of a login attempt.
type LoginOutcome string

const (
	OutcomeSuccess LoginOutcome = "success"
	OutcomeFailure LoginOutcome = "failure"
	OutcomeBlocked LoginOutcome = "blocked"
)

// LoginEvent is an audit record of one login attempt.
type LoginEvent struct {
	Flow      LoginFlow
	Email     string
	SourceKey string
	Outcome   LoginOutcome
	Reason    string
	Timestamp time.Time
}
