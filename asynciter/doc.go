// Package asynciter implements a pull-based asynchronous iterator engine:
// producers, transforms, and clones exchange items through a uniform,
// event-driven state machine with internal buffering and backpressure.
//
// All engine-internal mutation happens on the single worker goroutine owned
// by the cooperative scheduler (internal/sched); exported methods dispatch
// onto that goroutine so callers on arbitrary goroutines get a thread-safe,
// synchronous-looking API.
//
// An Iterator[T] is read one item at a time with Read, which returns
// (zero, false) when no item is available right now — check Done to tell
// "nothing right now" apart from "nothing ever again". Callers that prefer
// a push style can use ForEach or listen for the "data" event directly via
// OnEvent; the engine switches into flow mode the first time a "data"
// listener is attached and drains its buffer automatically from then on.
//
// Producers (Empty, Single, FromSlice, IntegerRange, FromFunc, FromChannel)
// sit at the leaves of a pipeline. Map, Filter, Skip, Take, Prepend, Append
// and TransformOptional build a new Iterator on top of an existing one.
// MultiTransform expands each item into its own sub-iterator and flattens
// the results in order. NewHistory lets multiple independent readers walk
// the same sequence via History.Clone.
//
// Every iterator in a pipeline shares one scheduler (the package default,
// which every factory function uses) — see internalSource's doc comment in
// base.go for why.
/*
 * Copyright (c) 2024, asynciter authors.
 */
package asynciter
