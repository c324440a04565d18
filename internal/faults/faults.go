// Package faults classifies pipeline errors and maps each kind to a
// handling policy. Event-driven handlers must not fail hard on dependency
// errors (the delivery platform would retry forever), so everything that is
// not caller input degrades toward "allow and log".
package faults

import (
	"errors"
	"fmt"
)

type Kind int

const (
	// KindInput covers missing fields, bad auth and wrong roles. Rejected
	// immediately, no side effects.
	KindInput Kind = iota
	// KindDependency covers scoring-service and push-gateway failures.
	// Handlers degrade (fail-open) and log.
	KindDependency
	// KindData covers inconsistent stored state, e.g. a report whose target
	// content no longer exists. Handlers self-heal.
	KindData
	// KindAudit covers audit-trail write failures. Best effort: swallowed
	// and logged, never blocks the primary mutation.
	KindAudit
)

type Action int

const (
	Reject Action = iota
	Degrade
	SelfHeal
	Swallow
)

var policy = map[Kind]Action{
	KindInput:      Reject,
	KindDependency: Degrade,
	KindData:       SelfHeal,
	KindAudit:      Swallow,
}

// PolicyFor returns the handling action for a kind.
func PolicyFor(k Kind) Action {
	return policy[k]
}

// Error wraps an underlying error with its taxonomy kind.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func New(kind Kind, err error) *Error {
	return &Error{Kind: kind, Err: err}
}

func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Err: fmt.Errorf(format, args...)}
}

// Classify extracts the kind from err, defaulting to KindDependency: an
// unclassified failure inside an event handler must still degrade rather
// than propagate.
func Classify(err error) Kind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return KindDependency
}

func (k Kind) String() string {
	switch k {
	case KindInput:
		return "input"
	case KindDependency:
		return "dependency"
	case KindData:
		return "data"
	case KindAudit:
		return "audit"
	}
	return "unknown"
}
