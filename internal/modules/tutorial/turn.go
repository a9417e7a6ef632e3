package tutorial

// Outcome labels what a turn did, for logs, metrics and the turn log.
type Outcome string

const (
	OutcomeWelcome            Outcome = "welcome"
	OutcomeDelivered          Outcome = "delivered"
	OutcomeContentUnavailable Outcome = "content_unavailable"
	OutcomeCompleted          Outcome = "completed"
	OutcomeAlreadyFinished    Outcome = "already_finished"
	OutcomeOutOfRange         Outcome = "out_of_range"
	OutcomeMissingStep        Outcome = "missing_step"
	OutcomeRestart            Outcome = "restart"
	OutcomeAnswered           Outcome = "answered"
	OutcomeNoAnswer           Outcome = "no_answer"
	OutcomeUnsupported        Outcome = "unsupported"
	OutcomeFailure            Outcome = "failure"
)

// Turn is one decoded platform request.
type Turn struct {
	SessionID  string
	Platform   string
	IntentName string
	Intent     Intent
	// ResolveErr is set when IntentName could not be resolved; Intent is nil then.
	ResolveErr error
	Session    SessionState
	// SessionErr is set when the platform attributes held an unreadable cursor.
	SessionErr error
	Text       string
}

// Reply is what the adapter renders back to the platform. When KeepSession
// is set the adapter echoes the incoming attributes instead of Session.
type Reply struct {
	Messages    []string
	Session     SessionState
	KeepSession bool
	Outcome     Outcome
}
