package asynciter_test

import (
	"github.com/asynciter/asynciter"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("MultiTransform", func() {
	It("flattens each source item's sub-iterator, preserving per-item ordering", func() {
		src := asynciter.FromSlice([]int{1, 2, 3})
		it := asynciter.MultiTransform[int, int](src, func(n int) asynciter.Iterator[int] {
			return asynciter.FromSlice([]int{n, n * 10})
		})
		items := collectAll[int](it)
		Expect(items).To(Equal([]int{1, 10, 2, 20, 3, 30}))
	})

	It("skips source items whose sub-iterator is empty", func() {
		src := asynciter.FromSlice([]int{1, 2, 3, 4})
		it := asynciter.MultiTransform[int, int](src, func(n int) asynciter.Iterator[int] {
			if n%2 == 0 {
				return asynciter.Empty[int]()
			}
			return asynciter.Single(n)
		})
		items := collectAll[int](it)
		Expect(items).To(Equal([]int{1, 3}))
	})

	It("yields nothing for an empty source", func() {
		src := asynciter.Empty[int]()
		it := asynciter.MultiTransform[int, string](src, func(n int) asynciter.Iterator[string] {
			return asynciter.Single("unreachable")
		})
		items := collectAll[string](it)
		Expect(items).To(BeEmpty())
	})

	It("leaves a fully drained source ended, since destroying an ended iterator is a no-op", func() {
		src := asynciter.FromSlice([]int{1, 2})
		it := asynciter.MultiTransform[int, int](src, func(n int) asynciter.Iterator[int] {
			return asynciter.Single(n)
		})
		collectAll[int](it)
		Eventually(src.Ended).Should(BeTrue())
		Expect(src.Destroyed()).To(BeFalse())
	})
})
