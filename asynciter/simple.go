package asynciter

// asInternalSource recovers the package-internal contract a Transform needs
// from whatever the caller passed as a source. Every concrete type this
// package's own factories return satisfies it automatically (they all embed
// *Base[T], and unexported methods can only be implemented from inside this
// package) — a genuine external Iterator[S] does not, and is expected to be
// adapted first via FromFunc or FromChannel rather than passed here
// directly.
func asInternalSource[S any](source Iterator[S]) internalSource[S] {
	src, ok := source.(internalSource[S])
	if !ok {
		panic("asynciter: source was not constructed by this package; adapt it with FromFunc or FromChannel first")
	}
	return src
}

func identityKeep[T any](item T) (T, bool) { return item, true }

// Map returns an iterator yielding fn(item) for every item of source, in
// order.
func Map[S, D any](source Iterator[S], fn func(S) D, opts ...Option) Iterator[D] {
	o := resolveOptions(opts...)
	return newTransform(asInternalSource(source), TransformOptions[S, D]{
		MaxBufferSize: o.MaxBufferSize,
		AutoStart:     o.AutoStart,
		TransformFn:   func(item S) (D, bool) { return fn(item), true },
		DestroySource: true,
	})
}

// Filter returns an iterator yielding only the items of source for which
// keep returns true.
func Filter[T any](source Iterator[T], keep func(T) bool, opts ...Option) Iterator[T] {
	o := resolveOptions(opts...)
	return newTransform(asInternalSource(source), TransformOptions[T, T]{
		MaxBufferSize: o.MaxBufferSize,
		AutoStart:     o.AutoStart,
		TransformFn:   func(item T) (T, bool) { return item, keep(item) },
		DestroySource: true,
	})
}

// Skip drops the first n items of source, then yields the rest unchanged.
// Skipped items are still read from source (and so still count against its
// own lifecycle), they are simply never pushed downstream.
func Skip[T any](source Iterator[T], n int, opts ...Option) Iterator[T] {
	o := resolveOptions(opts...)
	return newTransform(asInternalSource(source), TransformOptions[T, T]{
		MaxBufferSize: o.MaxBufferSize,
		AutoStart:     o.AutoStart,
		Offset:        n,
		TransformFn:   identityKeep[T],
		DestroySource: true,
	})
}

// Take yields at most n items of source, then closes — destroying source by
// default, since nothing else will ever read from it again.
func Take[T any](source Iterator[T], n int, opts ...Option) Iterator[T] {
	o := resolveOptions(opts...)
	return newTransform(asInternalSource(source), TransformOptions[T, T]{
		MaxBufferSize: o.MaxBufferSize,
		AutoStart:     o.AutoStart,
		Limit:         n,
		HasLimit:      true,
		TransformFn:   identityKeep[T],
		DestroySource: true,
	})
}

// Prepend emits items, in order, before any item of source.
func Prepend[T any](source Iterator[T], items []T, opts ...Option) Iterator[T] {
	o := resolveOptions(opts...)
	return newTransform(asInternalSource(source), TransformOptions[T, T]{
		MaxBufferSize: o.MaxBufferSize,
		AutoStart:     o.AutoStart,
		Prepend:       items,
		TransformFn:   identityKeep[T],
		DestroySource: true,
	})
}

// Append emits items, in order, once source is fully exhausted.
func Append[T any](source Iterator[T], items []T, opts ...Option) Iterator[T] {
	o := resolveOptions(opts...)
	return newTransform(asInternalSource(source), TransformOptions[T, T]{
		MaxBufferSize: o.MaxBufferSize,
		AutoStart:     o.AutoStart,
		Append:        items,
		TransformFn:   identityKeep[T],
		DestroySource: true,
	})
}

// TransformOptional applies fn to every item of source; fn may call push
// zero or one times per item before returning, letting a single transform
// step both map and filter.
func TransformOptional[S, D any](source Iterator[S], fn func(item S, push func(D)), opts ...Option) Iterator[D] {
	o := resolveOptions(opts...)
	return newTransform(asInternalSource(source), TransformOptions[S, D]{
		MaxBufferSize: o.MaxBufferSize,
		AutoStart:     o.AutoStart,
		Async: func(item S, push func(D), done func()) {
			fn(item, push)
			done()
		},
		DestroySource: true,
	})
}

// Surround emits pre, in order, before source and post, in order, once
// source is exhausted — Prepend and Append combined into a single Transform.
func Surround[T any](source Iterator[T], pre, post []T, opts ...Option) Iterator[T] {
	o := resolveOptions(opts...)
	return newTransform(asInternalSource(source), TransformOptions[T, T]{
		MaxBufferSize: o.MaxBufferSize,
		AutoStart:     o.AutoStart,
		Prepend:       pre,
		Append:        post,
		TransformFn:   identityKeep[T],
		DestroySource: true,
	})
}

// Range yields the items of source at indices start through end inclusive
// (both zero-based), equivalent to Skip(start).Take(end-start+1). An end
// before start yields nothing.
func Range[T any](source Iterator[T], start, end int, opts ...Option) Iterator[T] {
	o := resolveOptions(opts...)
	n := end - start + 1
	if n < 0 {
		n = 0
	}
	return newTransform(asInternalSource(source), TransformOptions[T, T]{
		MaxBufferSize: o.MaxBufferSize,
		AutoStart:     o.AutoStart,
		Offset:        start,
		Limit:         n,
		HasLimit:      true,
		TransformFn:   identityKeep[T],
		DestroySource: true,
	})
}
