package asynciter

import (
	"github.com/asynciter/asynciter/event"
	"github.com/asynciter/asynciter/internal/sched"
)

// History pulls every item out of one source exactly once and keeps them
// all, so that any number of independent Clone readers can each walk the
// same sequence at their own pace without re-reading source or racing each
// other for items. Recorded items are never dropped (a clone created later
// replays from the start), so memory grows with every item source yields;
// a History nobody clones pulls source dry and holds the entire result for
// as long as it lives.
type History[T any] struct {
	sch    *sched.Scheduler
	source internalSource[T]
	bus    *event.Bus

	items  []T
	ended  bool
	err    error
	reading bool

	refCount int
}

// NewHistory wraps source for cloning. source must have been constructed by
// this package (see internalSource) and is consumed exclusively by the
// resulting History from this point on — reading source directly afterward
// produces undefined results, exactly as reading a slice while something
// else truncates it would.
func NewHistory[T any](source Iterator[T]) *History[T] {
	src := asInternalSource(source)
	h := &History[T]{
		sch:    src.scheduler_(),
		source: src,
		bus:    event.New(),
	}
	h.sch.Dispatch(func() {
		h.source.onEvent_("end", func(...any) { h.onSourceDone() })
		h.source.onEvent_("error", func(args ...any) {
			if len(args) > 0 {
				h.err, _ = args[0].(error)
			}
			h.onSourceDone()
		})
		h.pump()
	})
	return h
}

func (h *History[T]) schedule(fn func()) { h.sch.Schedule(fn) }

// pump drains every item currently available from source into items,
// emitting "grew" once per item so waiting clones can pick it up, then
// either notices source already ended or arms a "readable" listener to
// resume later.
func (h *History[T]) pump() {
	if h.reading || h.ended {
		return
	}
	h.reading = true
	for {
		item, ok := h.source.read_()
		if !ok {
			break
		}
		h.items = append(h.items, item)
		h.bus.Emit("grew")
	}
	h.reading = false
	if h.source.done_() {
		h.onSourceDone()
		return
	}
	var tok int
	tok = h.source.onEvent_("readable", func(...any) {
		h.source.offEvent_("readable", tok)
		h.schedule(h.pump)
	})
}

func (h *History[T]) onSourceDone() {
	if h.ended {
		return
	}
	h.ended = true
	h.bus.Emit("end")
}

// Clone returns a new independent reader over the full history: items
// already recorded are replayed from the start, and items source produces
// from now on are seen by every outstanding clone as they arrive. Safe to
// call from any goroutine, same as every other public entry point in this
// package.
func (h *History[T]) Clone() Iterator[T] {
	var c *Clone[T]
	h.sch.Dispatch(func() {
		c = &Clone[T]{Base: newBase[T](h.sch), history: h}
		c.readFn = c.readRaw
		c.destroyFn = func(_ error, done func()) {
			h.releaseClone(c)
			done()
		}
		c.beforeEnd = func() { h.releaseClone(c) }

		h.refCount++
		c.growTok = h.bus.On("grew", func(...any) { c.onGrew() })
		c.endTok = h.bus.On("end", func(...any) { c.onHistoryEnd() })
		if len(h.items) > 0 {
			c.setReadable_(true)
		} else if h.ended {
			c.close_()
		}
	})
	return c
}

func (h *History[T]) releaseClone(c *Clone[T]) {
	h.bus.Off("grew", c.growTok)
	h.bus.Off("end", c.endTok)
	h.refCount--
	if h.refCount <= 0 && !h.ended {
		h.source.destroy_(nil)
	}
}

// Clone is one independent reader over a History's recorded items. Its own
// Base tracks readable/closed/ended state exactly like any other iterator;
// the history buffer itself is shared, read-only state from a clone's point
// of view.
type Clone[T any] struct {
	*Base[T]
	history *History[T]
	pos     int

	growTok int
	endTok  int
}

func (c *Clone[T]) readRaw() (T, bool) {
	if c.done_() {
		var zero T
		return zero, false
	}
	h := c.history
	if c.pos < len(h.items) {
		item := h.items[c.pos]
		c.pos++
		if c.pos >= len(h.items) && !h.ended {
			c.setReadable_(false)
		}
		return item, true
	}
	if h.ended {
		c.close_()
	}
	var zero T
	return zero, false
}

func (c *Clone[T]) onGrew() {
	if c.done_() {
		return
	}
	c.setReadable_(true)
}

// onHistoryEnd runs once source is fully exhausted: if this clone has
// already caught up, it closes right away; otherwise it just needs a wake-up
// so a flow-mode drain loop (or the next explicit Read) notices the
// remaining buffered items and, after draining them, the end itself.
func (c *Clone[T]) onHistoryEnd() {
	if c.done_() {
		return
	}
	if c.pos >= len(c.history.items) {
		c.close_()
		return
	}
	c.setReadable_(true)
}

// GetProperty falls back to the shared source's properties when this clone
// has not been given its own value for name — clones otherwise behave as
// independent iterators, but properties set once on the upstream source
// (e.g. a total item count) should still be visible through every clone.
func (c *Clone[T]) GetProperty(name string) (any, bool) {
	var v any
	var ok bool
	c.dispatch(func() {
		if v, ok = c.getProperty_(name); ok {
			return
		}
		v, ok = c.history.source.getProperty_(name)
	})
	return v, ok
}

func (c *Clone[T]) GetPropertyAsync(name string, cb func(any)) {
	c.dispatch(func() {
		if v, ok := c.getProperty_(name); ok {
			c.schedule(func() { cb(v) })
			return
		}
		c.history.source.getPropertyAsync_(name, cb)
	})
}

// GetProperties merges the shared source's properties with this clone's own,
// the clone's values taking precedence on key collisions.
func (c *Clone[T]) GetProperties() map[string]any {
	var out map[string]any
	c.dispatch(func() {
		out = make(map[string]any)
		for k, v := range c.history.source.getProperties_() {
			out[k] = v
		}
		for k, v := range c.getProperties_() {
			out[k] = v
		}
	})
	return out
}
