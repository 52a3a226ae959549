package asynciter_test

import (
	"github.com/asynciter/asynciter"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("Trivial producers", func() {
	It("Empty yields nothing and ends immediately", func() {
		it := asynciter.Empty[string]()
		items := collectAll[string](it)
		Expect(items).To(BeEmpty())
		Eventually(it.Ended).Should(BeTrue())
	})

	It("Single yields exactly one item then ends", func() {
		it := asynciter.Single(7)
		items := collectAll[int](it)
		Expect(items).To(Equal([]int{7}))
	})

	It("SingletonEmpty yields nothing, distinct from Empty only in how it reaches ENDED", func() {
		it := asynciter.SingletonEmpty[int]()
		items := collectAll[int](it)
		Expect(items).To(BeEmpty())
		Eventually(it.Ended).Should(BeTrue())
	})

	It("FromSlice copies its input so later mutation is not observed", func() {
		src := []int{1, 2, 3}
		it := asynciter.FromSlice(src)
		src[0] = 999
		items := collectAll[int](it)
		Expect(items).To(Equal([]int{1, 2, 3}))
	})

	It("FromSlice on an empty slice ends with no items", func() {
		it := asynciter.FromSlice([]int{})
		items := collectAll[int](it)
		Expect(items).To(BeEmpty())
	})

	It("IntegerRange yields start..end inclusive by step", func() {
		it := asynciter.IntegerRange(0, 10, 2)
		items := collectAll[int](it)
		Expect(items).To(Equal([]int{0, 2, 4, 6, 8, 10}))
	})

	It("IntegerRange closes immediately when already past end", func() {
		it := asynciter.IntegerRange(5, 0, 1)
		items := collectAll[int](it)
		Expect(items).To(BeEmpty())
	})

	It("IntegerRange supports a negative step", func() {
		it := asynciter.IntegerRange(5, 0, -1)
		items := collectAll[int](it)
		Expect(items).To(Equal([]int{5, 4, 3, 2, 1, 0}))
	})

	It("IntegerRangeFrom/Count produce an unbounded ascending sequence, truncated here with Take", func() {
		it := asynciter.Take[int](asynciter.Count(), 5)
		items := collectAll[int](it)
		Expect(items).To(Equal([]int{0, 1, 2, 3, 4}))
	})

	It("FromFunc adapts a synchronous Go generator", func() {
		n := 0
		it := asynciter.FromFunc(func() (int, bool) {
			if n >= 3 {
				return 0, false
			}
			n++
			return n, true
		})
		items := collectAll[int](it)
		Expect(items).To(Equal([]int{1, 2, 3}))
	})

	It("FromChannel adapts a channel and closes when the channel closes", func() {
		ch := make(chan string, 4)
		ch <- "a"
		ch <- "b"
		ch <- "c"
		close(ch)
		it := asynciter.FromChannel[string](ch, 0)
		items := collectAll[string](it)
		Expect(items).To(Equal([]string{"a", "b", "c"}))
	})

	It("FromChannel delivers items as they arrive on a trickling sender", func() {
		ch := make(chan int)
		it := asynciter.FromChannel[int](ch, 4)
		go func() {
			ch <- 1
			ch <- 2
			close(ch)
		}()
		items := collectAll[int](it)
		Expect(items).To(Equal([]int{1, 2}))
	})
})
