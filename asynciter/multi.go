package asynciter

import "github.com/asynciter/asynciter/cmn/cos"

// MultiOptions configures a multi-transform: every source item is expanded
// into its own sub-iterator via CreateTransformer, and sub-iterators are
// drained one at a time, in source order, into the shared output buffer — a
// flatMap that preserves ordering without ever holding more than one
// sub-iterator's in-flight state at once.
//
// CreateTransformer is expected to build its sub-iterator with this
// package's own factory functions using the default scheduler, the same one
// the outer source itself uses — see Multi's doc comment for why that
// matters.
type MultiOptions[S, D any] struct {
	MaxBufferSize     int
	AutoStart         bool
	CreateTransformer func(item S) Iterator[D]
	DestroySource     bool
}

// Multi is the multi-transform engine: conceptually Map followed by a
// one-level flatten, except the flatten is lazy — only one sub-iterator is
// ever alive at a time, so a CreateTransformer that returns an unbounded
// iterator for one item does not starve memory before later items are even
// looked at.
//
// A sub-iterator returned by CreateTransformer must have been built by this
// package (FromSlice, Map, another Multi, ...) on the same scheduler as
// source, for the same reason Transform requires this of its own source:
// Multi calls into it directly, bypassing the dispatching public API, which
// is only safe when both sides share one worker goroutine.
type Multi[S, D any] struct {
	*Buffered[D]

	source internalSource[S]
	opts   MultiOptions[S, D]

	current internalSource[D]

	sourceEndTok   int
	sourceErrorTok int
	closedSource   bool
}

func newMulti[S, D any](source internalSource[S], opts MultiOptions[S, D]) *Multi[S, D] {
	mt := &Multi[S, D]{source: source, opts: opts}
	destroySource := opts.DestroySource

	hooks := BufferedHooks[D]{
		Begin:   func(done func(error)) { done(nil) },
		Produce: func(count int, push func(D), done func()) { mt.produce(count, push, done) },
		Flush:   func(done func()) { done() },
		Destroy: func(cause error, done func()) {
			mt.unsubscribeSource()
			if mt.current != nil {
				mt.current.destroy_(cause)
				mt.current = nil
			}
			if destroySource && !mt.closedSource {
				mt.closedSource = true
				mt.source.destroy_(cause)
			}
			done()
		},
	}
	mt.Buffered = newBuffered[D](source.scheduler_(), opts.MaxBufferSize, opts.AutoStart, hooks)
	mt.beforeEnd = mt.onEnding
	// See newTransform: Dispatch is reentrant-safe whether newMulti runs on
	// an arbitrary external goroutine or already on source's own worker
	// goroutine (nested construction from within another hook).
	source.scheduler_().Dispatch(mt.subscribeSource)
	return mt
}

func (mt *Multi[S, D]) subscribeSource() {
	mt.sourceEndTok = mt.source.onEvent_("end", func(...any) { mt.schedule(mt.fillBuffer) })
	mt.sourceErrorTok = mt.source.onEvent_("error", func(args ...any) {
		if len(args) == 0 {
			return
		}
		err, _ := args[0].(error)
		err = cos.Wrapf(err, "multi-transform %s", mt.id)
		mt.schedule(func() { mt.destroy_(err) })
	})
}

func (mt *Multi[S, D]) unsubscribeSource() {
	mt.source.offEvent_("end", mt.sourceEndTok)
	mt.source.offEvent_("error", mt.sourceErrorTok)
}

func (mt *Multi[S, D]) onEnding() {
	mt.unsubscribeSource()
	if mt.opts.DestroySource && !mt.closedSource {
		mt.closedSource = true
		mt.source.destroy_(nil)
	}
}

// produce drains the current sub-iterator, advancing to the next source
// item's sub-iterator whenever the current one is exhausted, until count
// items have been pushed, source and every sub-iterator are dry, or the
// current sub-iterator has nothing ready right now (in which case we wait
// for its readable/end event instead of busy-looping).
func (mt *Multi[S, D]) produce(count int, push func(D), done func()) {
	pushed := 0
	for pushed < count {
		if mt.current == nil {
			if !mt.advance() {
				done()
				return
			}
		}
		item, ok := mt.current.read_()
		if ok {
			push(item)
			pushed++
			continue
		}
		if mt.current.done_() {
			mt.current = nil
			continue
		}
		mt.awaitCurrentReadable()
		done()
		return
	}
	done()
}

// advance pulls the next source item and creates its sub-iterator, skipping
// over any sub-iterator that is already exhausted at construction (e.g.
// Empty), and reports false once source itself is exhausted or momentarily
// dry.
func (mt *Multi[S, D]) advance() bool {
	for {
		item, ok := mt.source.read_()
		if !ok {
			if mt.source.done_() {
				mt.closeFn()
				return false
			}
			mt.awaitSourceReadable()
			return false
		}
		sub := asInternalSource(mt.opts.CreateTransformer(item))
		if sub.done_() {
			continue
		}
		mt.current = sub
		return true
	}
}

func (mt *Multi[S, D]) awaitSourceReadable() {
	var tok int
	tok = mt.source.onEvent_("readable", func(...any) {
		mt.source.offEvent_("readable", tok)
		mt.schedule(mt.fillBuffer)
	})
}

func (mt *Multi[S, D]) awaitCurrentReadable() {
	cur := mt.current
	var readableTok, endTok int
	readableTok = cur.onEvent_("readable", func(...any) {
		cur.offEvent_("readable", readableTok)
		mt.schedule(mt.fillBuffer)
	})
	endTok = cur.onEvent_("end", func(...any) {
		cur.offEvent_("end", endTok)
		mt.schedule(mt.fillBuffer)
	})
}
