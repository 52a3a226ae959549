package asynciter_test

import (
	"github.com/asynciter/asynciter"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("WrapTransform", func() {
	It("combines offset, limit, prepend and append in one stage", func() {
		it := asynciter.WrapTransform[int, int](asynciter.FromSlice([]int{1, 2, 3}), asynciter.TransformOptions[int, int]{
			Offset:        1,
			Limit:         1,
			HasLimit:      true,
			Prepend:       []int{9},
			Append:        []int{8},
			DestroySource: true,
		})
		items := collectAll[int](it)
		Expect(items).To(Equal([]int{9, 2, 8}))
	})

	It("survives a limit-close with append items still queued", func() {
		// Regression: append was previously drained only on natural source
		// exhaustion, never when Limit reached zero first.
		it := asynciter.WrapTransform[int, int](asynciter.FromSlice([]int{1, 2, 3, 4, 5}), asynciter.TransformOptions[int, int]{
			Limit:         2,
			HasLimit:      true,
			Append:        []int{100, 200},
			DestroySource: true,
		})
		items := collectAll[int](it)
		Expect(items).To(Equal([]int{1, 2, 100, 200}))
	})

	It("pushes multiple outputs per source item via Async", func() {
		it := asynciter.WrapTransform[int, int](asynciter.FromSlice([]int{1, 2}), asynciter.TransformOptions[int, int]{
			Async: func(item int, push func(int), done func()) {
				push(item)
				push(item * 10)
				done()
			},
			DestroySource: true,
		})
		items := collectAll[int](it)
		Expect(items).To(Equal([]int{1, 10, 2, 20}))
	})

	It("behaves as a plain pass-through when neither TransformFn nor Async is set", func() {
		// Regression: readAndTransform used to hit an assert-only guard here,
		// which is a no-op in production builds, silently dropping items.
		it := asynciter.WrapTransform[int, int](asynciter.FromSlice([]int{1, 2, 3}), asynciter.TransformOptions[int, int]{
			DestroySource: true,
		})
		items := collectAll[int](it)
		Expect(items).To(Equal([]int{1, 2, 3}))
	})
})
