package asynciter_test

import (
	"github.com/asynciter/asynciter"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("History and Clone", func() {
	It("lets two clones independently walk the same sequence", func() {
		src := asynciter.FromSlice([]int{1, 2, 3, 4})
		h := asynciter.NewHistory[int](src)
		a := h.Clone()
		b := h.Clone()

		itemsA := collectAll[int](a)
		itemsB := collectAll[int](b)
		Expect(itemsA).To(Equal([]int{1, 2, 3, 4}))
		Expect(itemsB).To(Equal([]int{1, 2, 3, 4}))
	})

	It("lets a late clone see items from the beginning, not just from its creation point", func() {
		src := asynciter.FromSlice([]int{1, 2, 3})
		h := asynciter.NewHistory[int](src)

		first := h.Clone()
		Expect(collectAll[int](first)).To(Equal([]int{1, 2, 3}))

		late := h.Clone()
		Expect(collectAll[int](late)).To(Equal([]int{1, 2, 3}))
	})

	It("ends a clone once the shared history is exhausted", func() {
		src := asynciter.FromSlice([]int{1})
		h := asynciter.NewHistory[int](src)
		c := h.Clone()
		collectAll[int](c)
		Eventually(c.Ended).Should(BeTrue())
	})

	It("Clone over an empty source ends with no items", func() {
		src := asynciter.Empty[int]()
		h := asynciter.NewHistory[int](src)
		c := h.Clone()
		items := collectAll[int](c)
		Expect(items).To(BeEmpty())
	})

	It("falls back to the source's property when the clone has none of its own", func() {
		src := asynciter.FromSlice([]int{1, 2})
		src.SetProperty("total", 2)
		h := asynciter.NewHistory[int](src)
		c := h.Clone()

		v, ok := c.GetProperty("total")
		Expect(ok).To(BeTrue())
		Expect(v).To(Equal(2))
	})

	It("prefers a clone's own property over the source's", func() {
		src := asynciter.FromSlice([]int{1, 2})
		src.SetProperty("label", "source")
		h := asynciter.NewHistory[int](src)
		c := h.Clone()
		c.SetProperty("label", "clone")

		v, ok := c.GetProperty("label")
		Expect(ok).To(BeTrue())
		Expect(v).To(Equal("clone"))
	})
})
