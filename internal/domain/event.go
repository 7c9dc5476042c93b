package domain

// EventType discriminates the variants of Event
type EventType string

const (
	EventLog      EventType = "log"
	EventProgress EventType = "progress"
	EventDone     EventType = "done"
)

// Progress is a normalized transfer reading.
// Unknown values are nil and must never be read as zero.
type Progress struct {
	DownloadedBytes uint64   `json:"downloaded_bytes"`
	TotalBytes      *uint64  `json:"total_bytes"`
	Speed           *float64 `json:"speed"` // bytes per second
	ETA             *float64 `json:"eta"`   // seconds
}

// Fraction returns downloaded/total in [0, 1].
// ok is false when the total is unknown or zero; callers show an indeterminate indicator.
func (p Progress) Fraction() (fraction float64, ok bool) {
	if p.TotalBytes == nil || *p.TotalBytes == 0 {
		return 0, false
	}
	fraction = float64(p.DownloadedBytes) / float64(*p.TotalBytes)
	if fraction > 1 {
		fraction = 1
	}
	return fraction, true
}

// Outcome is the terminal result of an attempt
type Outcome struct {
	OK           bool    `json:"ok"`
	ErrorMessage *string `json:"error_message"`
}

// Event is one item of the progress stream of an attempt.
// Exactly one of Message, Progress or Outcome is meaningful, selected by Type.
type Event struct {
	Type     EventType `json:"type"`
	Message  string    `json:"message,omitempty"`
	Progress *Progress `json:"progress,omitempty"`
	Outcome  *Outcome  `json:"outcome,omitempty"`
}

// NewLogEvent creates an informational event
func NewLogEvent(message string) Event {
	return Event{Type: EventLog, Message: message}
}

// NewProgressEvent creates a progress event
func NewProgressEvent(p Progress) Event {
	return Event{Type: EventProgress, Progress: &p}
}

// NewDoneEvent creates the terminal event of an attempt.
// errorMessage is ignored when ok is true.
func NewDoneEvent(ok bool, errorMessage string) Event {
	outcome := &Outcome{OK: ok}
	if !ok {
		msg := errorMessage
		if msg == "" {
			msg = "download failed"
		}
		outcome.ErrorMessage = &msg
	}
	return Event{Type: EventDone, Outcome: outcome}
}

// IsDone reports whether the event terminates an attempt
func (e Event) IsDone() bool {
	return e.Type == EventDone
}

// Succeeded reports whether the event is a successful Done
func (e Event) Succeeded() bool {
	return e.IsDone() && e.Outcome != nil && e.Outcome.OK
}

// ErrorText returns the error message of a failed Done, or ""
func (e Event) ErrorText() string {
	if e.Outcome == nil || e.Outcome.ErrorMessage == nil {
		return ""
	}
	return *e.Outcome.ErrorMessage
}
