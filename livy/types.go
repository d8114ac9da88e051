package livy

import "encoding/json"

// Session states the gateway reports.
const (
	SessionNotStarted = "not_started"
	SessionStarting   = "starting"
	SessionIdle       = "idle"
	SessionBusy       = "busy"
	SessionDead       = "dead"
	SessionError      = "error"
)

// Statement states.
const (
	StatementWaiting   = "waiting"
	StatementRunning   = "running"
	StatementAvailable = "available"
	StatementError     = "error"
	StatementCancelled = "cancelled"
)

// Session is one interactive Spark context the gateway proxies statements to.
type Session struct {
	ID      int               `json:"id"`
	Name    string            `json:"name,omitempty"`
	AppID   string            `json:"appId,omitempty"`
	Owner   string            `json:"owner,omitempty"`
	Kind    string            `json:"kind,omitempty"`
	State   string            `json:"state"`
	AppInfo map[string]string `json:"appInfo,omitempty"`
	Log     []string          `json:"log,omitempty"`
}

// Statement is one code fragment submitted to a session.
type Statement struct {
	ID       int              `json:"id"`
	Code     string           `json:"code,omitempty"`
	State    string           `json:"state"`
	Progress float64          `json:"progress,omitempty"`
	Output   *StatementOutput `json:"output,omitempty"`
}

// StatementOutput carries the REPL result of a finished statement. Data keys
// are MIME types; text/plain is always present for successful statements.
type StatementOutput struct {
	Status         string                     `json:"status"`
	ExecutionCount int                        `json:"execution_count,omitempty"`
	Data           map[string]json.RawMessage `json:"data,omitempty"`
	ErrorName      string                     `json:"ename,omitempty"`
	ErrorValue     string                     `json:"evalue,omitempty"`
	Traceback      []string                   `json:"traceback,omitempty"`
}

// Text returns the plain-text rendering of the output, if any.
func (o *StatementOutput) Text() string {
	raw, ok := o.Data["text/plain"]
	if !ok {
		return ""
	}
	var text string
	if err := json.Unmarshal(raw, &text); err != nil {
		return string(raw)
	}
	return text
}
