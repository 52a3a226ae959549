package asynciter

import (
	"github.com/asynciter/asynciter/cmn/cos"
	"github.com/asynciter/asynciter/cmn/debug"
)

// TransformOptions configures a Transform: synchronous map/filter are
// expressed as a TransformFn that returns ok=false to drop an item, async
// (potentially one-to-many) transforms are expressed as Async, and at most
// one of the two should be set. Leaving both unset yields the identity
// transform, so a Transform built purely for its offset/limit/prepend/append
// fields behaves as a plain pass-through.
type TransformOptions[S, D any] struct {
	MaxBufferSize int
	AutoStart     bool
	Offset        int
	Limit         int
	HasLimit      bool

	// TransformFn runs synchronously per source item; returning ok=false
	// drops the item. Ignored if Async is set.
	TransformFn func(item S) (D, bool)
	// Async runs per source item and must call push zero or more times then
	// done exactly once, enabling one-to-many expansion (TransformOptional is
	// Async with at most one push; MultiTransform does not use this field).
	Async func(item S, push func(D), done func())

	Prepend []D
	Append  []D

	// DestroySource controls whether Destroy()/end cascades to Source. The
	// helpers in simple.go and MultiTransform always set it to true;
	// WrapTransform passes the field through unchanged, so its zero value
	// (false) leaves the source alone.
	DestroySource bool
}

// Transform is the generic engine binding one source Iterator[S] to a
// Buffered[D] sink: it pulls from source, runs each item through the
// configured transform, and pushes results into its own buffer for readers
// to pull out. Prepend/Append/Offset/Limit are layered on top of the same
// read-one-source-item-at-a-time loop.
type Transform[S, D any] struct {
	*Buffered[D]

	source internalSource[S]
	opts   TransformOptions[S, D]

	prepend []D
	append  []D

	offsetRemaining int
	limitRemaining  int
	limited         bool

	sourceEndTok   int
	sourceErrorTok int
	closedSource   bool
}

// newTransform always runs on source's own scheduler (never an independently
// chosen one): the direct, non-dispatching calls into source via
// internalSource are only safe when both sides share the same worker
// goroutine.
func newTransform[S, D any](source internalSource[S], opts TransformOptions[S, D]) *Transform[S, D] {
	tr := &Transform[S, D]{
		source:          source,
		opts:            opts,
		prepend:         append([]D(nil), opts.Prepend...),
		append:          append([]D(nil), opts.Append...),
		offsetRemaining: opts.Offset,
		limitRemaining:  opts.Limit,
		limited:         opts.HasLimit,
	}
	// No default is applied here: the field is used exactly as the caller
	// set it (the simple.go helpers set it to true; WrapTransform does not
	// touch it).
	destroySource := opts.DestroySource

	hooks := BufferedHooks[D]{
		Begin: func(done func(error)) { done(nil) },
		Produce: func(count int, push func(D), done func()) {
			tr.produce(count, push, done)
		},
		Flush: func(done func()) { done() },
		Destroy: func(cause error, done func()) {
			tr.unsubscribeSource()
			if destroySource && !tr.closedSource {
				tr.closedSource = true
				tr.source.destroy_(cause)
			}
			done()
		},
	}
	tr.Buffered = newBuffered[D](source.scheduler_(), opts.MaxBufferSize, opts.AutoStart, hooks)
	tr.beforeEnd = tr.onEnding

	// Dispatch (not a direct call): newTransform may be invoked either from
	// an arbitrary external goroutine (the common case, via Map/Filter/...)
	// or from inside another iterator's own hook already running on
	// source's worker goroutine (a CreateTransformer callback building a
	// nested pipeline, say) — Dispatch is reentrant-safe for the latter and
	// correctly synchronizes the former.
	source.scheduler_().Dispatch(tr.subscribeSource)
	return tr
}

func (tr *Transform[S, D]) subscribeSource() {
	tr.sourceEndTok = tr.source.onEvent_("end", func(...any) {
		// Wake the fill loop in case nobody is actively reading right now —
		// readAndTransform is what actually notices source.done_() and
		// drains any queued Append items before closing.
		tr.schedule(tr.fillBuffer)
	})
	tr.sourceErrorTok = tr.source.onEvent_("error", func(args ...any) {
		if len(args) == 0 {
			return
		}
		err, _ := args[0].(error)
		err = cos.Wrapf(err, "transform %s", tr.id)
		tr.schedule(func() { tr.destroy_(err) })
	})
}

func (tr *Transform[S, D]) unsubscribeSource() {
	tr.source.offEvent_("end", tr.sourceEndTok)
	tr.source.offEvent_("error", tr.sourceErrorTok)
}

// onEnding runs once, right before the CLOSED->ENDED transition: unsubscribe
// from source, and — unless the destroy path already did it — cascade the
// close/destroy down to source. Destroy's hook above already tears source
// down on a direct Destroy() call, so onEnding only needs to cover the
// close-to-completion path.
func (tr *Transform[S, D]) onEnding() {
	tr.unsubscribeSource()
	if tr.opts.DestroySource && !tr.closedSource {
		tr.closedSource = true
		tr.source.destroy_(nil)
	}
}

// produce is the Transform's BufferedHooks.Produce: drain any queued
// prepend items first, then pull from source (applying offset/limit and the
// configured transform), then drain append items once source is exhausted.
func (tr *Transform[S, D]) produce(count int, push func(D), done func()) {
	pushed := 0
	for pushed < count && len(tr.prepend) > 0 {
		push(tr.prepend[0])
		tr.prepend = tr.prepend[1:]
		pushed++
	}
	if pushed >= count {
		done()
		return
	}
	tr.readAndTransform(count-pushed, push, done)
}

// readAndTransform pulls up to remaining source items (after accounting for
// offset and limit), feeding each through the configured transform, and
// calls done once it has produced `remaining` output items, run dry on
// source, or exhausted the limit.
func (tr *Transform[S, D]) readAndTransform(remaining int, push func(D), done func()) {
	produced := 0
	for produced < remaining {
		if tr.limited && tr.limitRemaining <= 0 {
			tr.drainAppend(push)
			tr.closeFn()
			done()
			return
		}
		item, ok := tr.source.read_()
		if !ok {
			if tr.source.done_() {
				tr.drainAppend(push)
				tr.closeFn()
				done()
				return
			}
			// source momentarily has nothing buffered; wait for its
			// "readable" event to try again rather than busy-loop.
			tr.awaitSourceReadable()
			done()
			return
		}
		if tr.offsetRemaining > 0 {
			tr.offsetRemaining--
			continue
		}
		if tr.limited {
			tr.limitRemaining--
		}
		if tr.opts.Async != nil {
			n := 0
			tr.runAsync(item, func(v D) { n++; push(v) })
			produced += n
			continue
		}
		if tr.opts.TransformFn != nil {
			out, keep := tr.opts.TransformFn(item)
			if keep {
				push(out)
				produced++
			}
			continue
		}
		// Neither TransformFn nor Async configured: identity pass-through,
		// used by Transforms built solely for offset/limit/prepend/append.
		// Valid only when S and D are the same concrete type, which every
		// caller that omits both fields is expected to guarantee.
		push(any(item).(D))
		produced++
	}
	done()
}

// runAsync invokes the configured per-item transform, which is expected to
// call push zero or more times and then done, all before returning — Simple
// Transform's optional map/filter are plain synchronous functions dressed up
// in this shape. Multi-transform does not go through Transform's read loop
// at all; it drives its own per-item sub-iterator queue (see multi.go).
func (tr *Transform[S, D]) runAsync(item S, push func(D)) {
	done := false
	tr.opts.Async(item, push, func() { done = true })
	debug.Assert(done, "Transform.runAsync: Async must call done before returning")
}

func (tr *Transform[S, D]) drainAppend(push func(D)) {
	for _, v := range tr.append {
		push(v)
	}
	tr.append = nil
}

func (tr *Transform[S, D]) awaitSourceReadable() {
	var tok int
	tok = tr.source.onEvent_("readable", func(...any) {
		tr.source.offEvent_("readable", tok)
		tr.schedule(tr.fillBuffer)
	})
}
