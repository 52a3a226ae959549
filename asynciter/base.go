package asynciter

import (
	"github.com/asynciter/asynciter/cmn/cos"
	"github.com/asynciter/asynciter/cmn/nlog"
	"github.com/asynciter/asynciter/event"
	"github.com/asynciter/asynciter/internal/sched"
)

// PropertyHolder is the subset of the engine's property store that
// CopyProperties needs in order to mirror another iterator's properties.
type PropertyHolder interface {
	GetProperty(name string) (any, bool)
	GetPropertyAsync(name string, cb func(any))
	SetProperty(name string, value any)
	GetProperties() map[string]any
}

// StateHolder exposes lifecycle inspection without committing to an item
// type, for callers that need to ask "is this thing done" without caring
// what it iterates over.
type StateHolder interface {
	Readable() bool
	Closed() bool
	Ended() bool
	Destroyed() bool
	Done() bool
}

// Iterator is the public contract every engine type satisfies. Operators
// that change the item type (Map, Transform) are free functions rather than
// methods, since Go methods cannot introduce new type parameters.
type Iterator[T any] interface {
	StateHolder
	PropertyHolder

	Read() (T, bool)
	Close()
	Destroy(cause error)

	OnEvent(name string, fn func(args ...any)) int
	OffEvent(name string, token int)
	ForEach(cb func(T))

	// ID returns a short, log-friendly identity for this iterator instance.
	ID() string
}

// internalSource is the contract a Transform, Clone, or multi-transform
// requires of whatever it reads from: every concrete type in this package
// satisfies it automatically (it embeds *Base[T], which defines these
// methods), since unexported method sets can only be satisfied from within
// this package. A plain external data source (a channel, a slice, a
// callback) is adapted into one of this package's own producers first —
// Transform composition only ever happens between this package's own
// iterator instances, which is what lets its internal wiring skip the
// dispatching public API and call straight across the same worker goroutine.
type internalSource[T any] interface {
	Iterator[T]
	read_() (T, bool)
	onEvent_(name string, fn func(args ...any)) int
	offEvent_(name string, token int)
	closed_() bool
	done_() bool
	destroy_(cause error)
	scheduler_() *sched.Scheduler
	getProperty_(name string) (any, bool)
	getPropertyAsync_(name string, cb func(any))
	getProperties_() map[string]any
}

// Base is the common state machine embedded by every concrete iterator type
// in this package: the lifecycle, the readable hint, the property store, and
// the dual-mode (pull vs. flow) contract. It is not meant to be used
// standalone — concrete types assign Base.readFn (and optionally closeFn /
// destroyFn) at construction time to plug in their own production logic;
// Go has no virtual dispatch, so these function fields play that role.
type Base[T any] struct {
	id  string
	sch *sched.Scheduler
	bus *event.Bus

	st           State
	readableFlag bool

	properties    map[string]any
	propCallbacks map[string][]func(any)

	newListenerTok int
	readableTok    int

	// readFn performs one pull of an item; required of every concrete type.
	readFn func() (T, bool)
	// closeFn overrides the default close_ behavior (Buffered does, Clone
	// does not).
	closeFn func()
	// destroyFn lets a concrete type release resources (e.g. drop a
	// buffer) before the generic destroy sequence finishes; done must be
	// invoked exactly once.
	destroyFn func(cause error, done func())
	// beforeEnd runs synchronously at the start of end_, before the
	// CLOSED->ENDED transition — Transform uses it to unsubscribe from and
	// (by default) destroy its source.
	beforeEnd func()
}

// newBase allocates a Base on the heap and returns a stable pointer:
// closeFn/destroyFn/the newListener hook all close over this pointer, so the
// struct must never be copied afterward — every concrete type embeds
// *Base[T], not Base[T] by value, for exactly this reason.
func newBase[T any](sch *sched.Scheduler) *Base[T] {
	b := &Base[T]{
		id:            cos.GenID(),
		sch:           sch,
		bus:           event.New(),
		st:            StateInit,
		properties:    make(map[string]any),
		propCallbacks: make(map[string][]func(any)),
	}
	b.closeFn = b.close_
	b.destroyFn = func(_ error, done func()) { done() }
	b.armFlowMode()
	recordConstructed()
	return b
}

// armFlowMode wires the one-shot "first data listener" hook that engages
// flow mode. Called by newBase, and again by disarmFlow once the last data
// listener is gone.
func (b *Base[T]) armFlowMode() {
	b.newListenerTok = b.bus.On(event.NewListenerEvent, func(args ...any) {
		if len(args) == 0 {
			return
		}
		if name, _ := args[0].(string); name == "data" {
			b.engageFlow()
		}
	})
}

func (b *Base[T]) engageFlow() {
	b.bus.Off(event.NewListenerEvent, b.newListenerTok)
	b.readableTok = b.bus.On("readable", func(...any) { b.drain() })
	if b.readableFlag {
		b.schedule(b.drain)
	}
}

func (b *Base[T]) disarmFlow() {
	b.bus.Off("readable", b.readableTok)
	b.armFlowMode()
}

func (b *Base[T]) drain() {
	for b.bus.Has("data") {
		item, ok := b.readFn()
		if !ok {
			break
		}
		b.bus.Emit("data", item)
	}
	if !b.bus.Has("data") && !b.done_() {
		b.disarmFlow()
	}
}

//
// scheduling helpers
//

func (b *Base[T]) schedule(fn func()) { b.sch.Schedule(fn) }
func (b *Base[T]) dispatch(fn func()) { b.sch.Dispatch(fn) }

func (b *Base[T]) deferEmit(name string, args ...any) {
	b.schedule(func() { b.bus.Emit(name, args...) })
}

//
// state machine (unexported: callers must already be on the worker goroutine)
//

func (b *Base[T]) changeState(new State) bool {
	if new > b.st && b.st < StateEnded {
		b.st = new
		return true
	}
	return false
}

// read_, onEvent_ and offEvent_ are the unexported, non-dispatching
// counterparts of Read/OnEvent/OffEvent: composers (Transform, Clone,
// multi-transform) call these directly on a source that is itself one of
// this package's types, because both source and composer run on the same
// scheduler's single worker goroutine — going through the dispatching public
// API in that situation would have the worker goroutine block waiting for
// itself.
func (b *Base[T]) read_() (T, bool)                          { return b.readFn() }
func (b *Base[T]) scheduler_() *sched.Scheduler               { return b.sch }
func (b *Base[T]) onEvent_(name string, fn func(...any)) int { return b.bus.On(name, fn) }
func (b *Base[T]) offEvent_(name string, token int)          { b.bus.Off(name, token) }

func (b *Base[T]) closed_() bool    { return b.st >= StateClosing }
func (b *Base[T]) ended_() bool     { return b.st == StateEnded }
func (b *Base[T]) destroyed_() bool { return b.st == StateDestroyed }
func (b *Base[T]) done_() bool      { return b.st >= StateEnded }

func (b *Base[T]) setReadable_(v bool) {
	v = v && !b.done_()
	if v && !b.readableFlag {
		b.readableFlag = true
		b.deferEmit("readable")
		return
	}
	b.readableFlag = v
}

// close_ is the default Base-level close: jump straight to CLOSED and defer
// the CLOSED->ENDED transition. Buffered overrides this (closeFn) because it
// must wait out an in-flight read first.
func (b *Base[T]) close_() {
	if b.closed_() {
		return
	}
	b.changeState(StateClosed)
	b.schedule(b.end_)
}

// end_ performs the CLOSED->ENDED transition exactly once, emitting `end`
// and releasing listeners. Safe to call redundantly (e.g. from a race
// between a scheduled close-completion and an already-destroyed iterator).
func (b *Base[T]) end_() {
	if b.done_() {
		return
	}
	if b.beforeEnd != nil {
		b.beforeEnd()
	}
	if !b.changeState(StateEnded) {
		return
	}
	recordTerminated("ended")
	nlog.Infof("iterator %s: ended", b.id)
	b.bus.Emit("end")
	b.bus.Release()
}

func (b *Base[T]) destroy_(cause error) {
	if b.done_() {
		return
	}
	if cos.IsErrProgramming(cause) {
		// A programming error indicates corrupted internal state rather than
		// a stream condition a caller's "error" listener could meaningfully
		// react to; let it surface as a panic instead of emitting "error".
		panic(cause)
	}
	b.destroyFn(cause, func() {
		if cause != nil {
			nlog.Errorf("iterator %s: destroyed: %v (properties %x)", b.id, cause, cos.Fingerprint(b.properties))
			b.bus.Emit("error", cause)
		} else {
			nlog.Infof("iterator %s: destroyed", b.id)
		}
		b.changeState(StateDestroyed)
		recordTerminated("destroyed")
		b.bus.Release()
	})
}

//
// properties (unexported)
//

func (b *Base[T]) getProperty_(name string) (any, bool) {
	v, ok := b.properties[name]
	return v, ok
}

func (b *Base[T]) getPropertyAsync_(name string, cb func(any)) {
	if v, ok := b.properties[name]; ok {
		b.schedule(func() { cb(v) })
		return
	}
	b.propCallbacks[name] = append(b.propCallbacks[name], cb)
}

func (b *Base[T]) setProperty_(name string, value any) {
	b.properties[name] = value
	if cbs := b.propCallbacks[name]; len(cbs) > 0 {
		delete(b.propCallbacks, name)
		b.schedule(func() {
			for _, cb := range cbs {
				cb(value)
			}
		})
	}
}

func (b *Base[T]) setProperties_(props map[string]any) {
	for k, v := range props {
		b.setProperty_(k, v)
	}
}

func (b *Base[T]) getProperties_() map[string]any {
	out := make(map[string]any, len(b.properties))
	for k, v := range b.properties {
		out[k] = v
	}
	return out
}

// copyProperties_ prefers the unexported, non-dispatching getPropertyAsync_
// when source happens to be one of this package's own types sharing our
// scheduler (the common case — calling its dispatching GetPropertyAsync
// from in here, already on the worker goroutine, would deadlock). A source
// from outside this package falls back to the public, dispatching method,
// which is safe precisely because it is NOT on our scheduler.
func (b *Base[T]) copyProperties_(source PropertyHolder, names []string) {
	type directAsync interface {
		getPropertyAsync_(name string, cb func(any))
	}
	if direct, ok := source.(directAsync); ok {
		for _, name := range names {
			name := name
			direct.getPropertyAsync_(name, func(v any) { b.setProperty_(name, v) })
		}
		return
	}
	for _, name := range names {
		name := name
		source.GetPropertyAsync(name, func(v any) { b.setProperty_(name, v) })
	}
}

//
// exported, thread-safe entry points (promoted to every embedding type)
//

func (b *Base[T]) ID() string { return b.id }

func (b *Base[T]) Read() (item T, ok bool) {
	b.dispatch(func() { item, ok = b.readFn() })
	return
}

func (b *Base[T]) Close() { b.dispatch(b.closeFn) }

func (b *Base[T]) Destroy(cause error) {
	b.dispatch(func() { b.destroy_(cause) })
}

func (b *Base[T]) Readable() bool {
	var r bool
	b.dispatch(func() { r = b.readableFlag })
	return r
}

func (b *Base[T]) Closed() bool {
	var r bool
	b.dispatch(func() { r = b.closed_() })
	return r
}

func (b *Base[T]) Ended() bool {
	var r bool
	b.dispatch(func() { r = b.ended_() })
	return r
}

func (b *Base[T]) Destroyed() bool {
	var r bool
	b.dispatch(func() { r = b.destroyed_() })
	return r
}

func (b *Base[T]) Done() bool {
	var r bool
	b.dispatch(func() { r = b.done_() })
	return r
}

func (b *Base[T]) OnEvent(name string, fn func(args ...any)) int {
	var tok int
	b.dispatch(func() { tok = b.bus.On(name, fn) })
	return tok
}

func (b *Base[T]) OffEvent(name string, token int) {
	b.dispatch(func() { b.bus.Off(name, token) })
}

func (b *Base[T]) ForEach(cb func(T)) {
	b.dispatch(func() {
		b.bus.On("data", func(args ...any) { cb(args[0].(T)) })
	})
}

func (b *Base[T]) GetProperty(name string) (any, bool) {
	var v any
	var ok bool
	b.dispatch(func() { v, ok = b.getProperty_(name) })
	return v, ok
}

func (b *Base[T]) GetPropertyAsync(name string, cb func(any)) {
	b.dispatch(func() { b.getPropertyAsync_(name, cb) })
}

func (b *Base[T]) SetProperty(name string, value any) {
	b.dispatch(func() { b.setProperty_(name, value) })
}

func (b *Base[T]) SetProperties(props map[string]any) {
	b.dispatch(func() { b.setProperties_(props) })
}

func (b *Base[T]) GetProperties() map[string]any {
	var out map[string]any
	b.dispatch(func() { out = b.getProperties_() })
	return out
}

func (b *Base[T]) CopyProperties(source PropertyHolder, names []string) {
	b.dispatch(func() { b.copyProperties_(source, names) })
}
