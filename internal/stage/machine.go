// Package stage holds the lifecycle shared by the analysis and letter
// orchestrators: Idle -> Pending -> {Succeeded, Failed}, and back to Pending on
// every resubmission. Each submission is tagged with a token; only the latest
// token may settle the machine.
package stage

import (
	"errors"
	"fmt"

	"github.com/joseph-ayodele/contract-sentinel/constants"
)

// Event drives a status transition.
type Event int

const (
	EventSubmit Event = iota
	EventSucceed
	EventFail
)

func (e Event) String() string {
	switch e {
	case EventSubmit:
		return "submit"
	case EventSucceed:
		return "succeed"
	case EventFail:
		return "fail"
	default:
		return fmt.Sprintf("event(%d)", int(e))
	}
}

var ErrInvalidTransition = errors.New("invalid stage transition")

// Transition is the complete transition table.
func Transition(from constants.StageStatus, ev Event) (constants.StageStatus, error) {
	switch ev {
	case EventSubmit:
		switch from {
		case constants.StageIdle, constants.StagePending, constants.StageSucceeded, constants.StageFailed:
			return constants.StagePending, nil
		}
	case EventSucceed:
		if from == constants.StagePending {
			return constants.StageSucceeded, nil
		}
	case EventFail:
		if from == constants.StagePending {
			return constants.StageFailed, nil
		}
	}
	return from, fmt.Errorf("%w: %s on %s", ErrInvalidTransition, ev, from)
}

// Token identifies one submission. Tokens increase monotonically per Machine.
type Token uint64

// Machine tracks status and the latest issued token. It is not safe for
// concurrent use; owners guard it with their own mutex.
type Machine struct {
	status constants.StageStatus
	latest Token
}

// Status returns the current status; the zero Machine is Idle.
func (m *Machine) Status() constants.StageStatus {
	if m.status == "" {
		return constants.StageIdle
	}
	return m.status
}

// Latest returns the most recently issued token (0 before any submission).
func (m *Machine) Latest() Token { return m.latest }

// Begin moves to Pending and issues a new token.
func (m *Machine) Begin() Token {
	next, _ := Transition(m.Status(), EventSubmit)
	m.status = next
	m.latest++
	return m.latest
}

// IsLatest reports whether tok may still settle the machine.
func (m *Machine) IsLatest(tok Token) bool {
	return tok != 0 && tok == m.latest
}

// Settle applies the outcome of the submission tok. It returns false and
// leaves the machine untouched when tok has been superseded.
func (m *Machine) Settle(tok Token, failed bool) bool {
	if !m.IsLatest(tok) {
		return false
	}
	ev := EventSucceed
	if failed {
		ev = EventFail
	}
	next, err := Transition(m.Status(), ev)
	if err != nil {
		return false
	}
	m.status = next
	return true
}
