// Package audit records every reconciliation pass as a JSON-lines event.
package audit

import (
	"time"

	"github.com/google/uuid"

	"github.com/newtron-network/swreconcile/pkg/state"
)

// Operations recorded by the applier.
const (
	OpApply       = "apply"
	OpValidate    = "validate"
	OpStaticRoute = "static-route"
)

// Change is one entry of the state delta a pass produced.
type Change struct {
	Domain string           `json:"domain"`
	Key    string           `json:"key"`
	Kind   state.ChangeKind `json:"kind"`
}

// Event is one audited pass.
type Event struct {
	ID         string        `json:"id"`
	Timestamp  time.Time     `json:"timestamp"`
	User       string        `json:"user"`
	Switch     string        `json:"switch"`
	Operation  string        `json:"operation"`
	ConfigPath string        `json:"config_path,omitempty"`
	Generation uint64        `json:"generation"`
	Domains    []string      `json:"domains,omitempty"`
	Changes    []Change      `json:"changes,omitempty"`
	Success    bool          `json:"success"`
	Error      string        `json:"error,omitempty"`
	Duration   time.Duration `json:"duration"`
}

// Filter selects events in Query. Zero fields match everything.
type Filter struct {
	Switch      string
	User        string
	Operation   string
	Domain      string
	StartTime   time.Time
	EndTime     time.Time
	SuccessOnly bool
	FailureOnly bool
	Limit       int
	Offset      int
}

// NewEvent starts an event for operation on a switch.
func NewEvent(user, switchName, operation string) *Event {
	return &Event{
		ID:        uuid.NewString(),
		Timestamp: time.Now(),
		User:      user,
		Switch:    switchName,
		Operation: operation,
	}
}

// WithConfigPath records the configuration file the pass applied.
func (e *Event) WithConfigPath(path string) *Event {
	e.ConfigPath = path
	return e
}

// WithGeneration records the generation of the resulting state.
func (e *Event) WithGeneration(gen uint64) *Event {
	e.Generation = gen
	return e
}

// WithDomains records the domains the pass changed.
func (e *Event) WithDomains(domains []string) *Event {
	e.Domains = domains
	return e
}

// WithEntries records the keys of a state delta. Field values are left
// out; the event says what changed, not to what.
func (e *Event) WithEntries(entries []state.Entry) *Event {
	e.Changes = make([]Change, len(entries))
	for i, en := range entries {
		e.Changes[i] = Change{Domain: en.Domain, Key: en.Key, Kind: en.Kind}
	}
	return e
}

// WithSuccess marks the event as successful.
func (e *Event) WithSuccess() *Event {
	e.Success = true
	return e
}

// WithError marks the event as failed.
func (e *Event) WithError(err error) *Event {
	e.Success = false
	if err != nil {
		e.Error = err.Error()
	}
	return e
}

// WithDuration sets how long the pass took.
func (e *Event) WithDuration(d time.Duration) *Event {
	e.Duration = d
	return e
}

func (e *Event) touches(domain string) bool {
	for _, d := range e.Domains {
		if d == domain {
			return true
		}
	}
	return false
}
