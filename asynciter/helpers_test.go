package asynciter_test

import (
	"time"

	"github.com/asynciter/asynciter"
)

const testTimeout = 5 * time.Second

// collectAll drains it via flow mode (attaching a "data" listener) and
// blocks until "end" fires, returning every item observed in order. Used
// throughout this suite instead of polling Read() in a loop, since Read()
// only ever reports "nothing available right now" vs "an item" and never
// blocks.
func collectAll[T any](it asynciter.Iterator[T]) []T {
	var items []T
	done := make(chan struct{})
	it.OnEvent("end", func(args ...any) {
		select {
		case <-done:
		default:
			close(done)
		}
	})
	it.OnEvent("data", func(args ...any) { items = append(items, args[0].(T)) })
	select {
	case <-done:
	case <-time.After(testTimeout):
		panic("collectAll: timed out waiting for end")
	}
	return items
}

// waitEnded blocks until it reaches Ended() or the timeout elapses.
func waitEnded[T any](it asynciter.Iterator[T]) {
	deadline := time.Now().Add(testTimeout)
	for time.Now().Before(deadline) {
		if it.Ended() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	panic("waitEnded: timed out")
}
