package securityeventsrepo

import (
	"fmt"

	"github.com/jrazmi/helix/core/repositories"
)

var transitions = map[EventStatus][]EventStatus{
	StatusOpen:       {StatusInProgress, StatusResolved, StatusFalsePositive},
	StatusInProgress: {StatusResolved, StatusFalsePositive},
	StatusResolved:   {StatusClosed, StatusFalsePositive},
}

// Terminal reports whether no transition leaves the status.
func (s EventStatus) Terminal() bool {
	return len(transitions[s]) == 0
}

// Open reports whether the event still needs attention.
func (s EventStatus) Open() bool {
	return s == StatusOpen || s == StatusInProgress
}

// CheckTransition returns ErrInvalidTransition unless from may move to to.
func CheckTransition(from, to EventStatus) error {
	for _, next := range transitions[from] {
		if next == to {
			return nil
		}
	}
	return fmt.Errorf("%w: %s to %s", repositories.ErrInvalidTransition, from, to)
}
