/*
 * Copyright (c) 2024, asynciter authors.
 */
package asynciter

import "fmt"

// State is the iterator lifecycle. Only forward transitions are legal, and
// only the relative ordering below is contractual (not the literal values).
type State int32

const (
	StateInit      State = 1
	StateOpen      State = 2
	StateClosing   State = 4
	StateClosed    State = 8
	StateEnded     State = 16
	StateDestroyed State = 32
)

func (s State) String() string {
	switch s {
	case StateInit:
		return "INIT"
	case StateOpen:
		return "OPEN"
	case StateClosing:
		return "CLOSING"
	case StateClosed:
		return "CLOSED"
	case StateEnded:
		return "ENDED"
	case StateDestroyed:
		return "DESTROYED"
	default:
		return fmt.Sprintf("STATE(%d)", int32(s))
	}
}
