package asynciter_test

import (
	"errors"

	"github.com/asynciter/asynciter"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("Base lifecycle", func() {
	It("starts readable and reaches Ended after the last item via FromSlice", func() {
		it := asynciter.FromSlice([]int{1, 2, 3})
		Eventually(it.Readable).Should(BeTrue())
		items := collectAll[int](it)
		Expect(items).To(Equal([]int{1, 2, 3}))
		Eventually(it.Ended).Should(BeTrue())
		Expect(it.Destroyed()).To(BeFalse())
	})

	It("treats Close as idempotent", func() {
		it := asynciter.FromSlice([]int{1})
		it.Close()
		it.Close()
		Eventually(it.Done).Should(BeTrue())
	})

	It("treats Destroy as idempotent and skips end", func() {
		it := asynciter.FromSlice([]int{1, 2, 3})
		ended := false
		it.OnEvent("end", func(args ...any) { ended = true })
		it.Destroy(nil)
		it.Destroy(nil)
		Eventually(it.Destroyed).Should(BeTrue())
		Expect(ended).To(BeFalse())
	})

	It("emits error exactly once when destroyed with a cause", func() {
		it := asynciter.FromSlice([]int{1, 2, 3})
		var errs []error
		it.OnEvent("error", func(args ...any) { errs = append(errs, args[0].(error)) })
		cause := errors.New("boom")
		it.Destroy(cause)
		Eventually(it.Destroyed).Should(BeTrue())
		Expect(errs).To(Equal([]error{cause}))
	})

	It("delivers GetPropertyAsync once the value is set, even if requested first", func() {
		it := asynciter.FromSlice([]int{1})
		got := make(chan any, 1)
		it.GetPropertyAsync("total", func(v any) { got <- v })
		it.SetProperty("total", 42)
		Eventually(got).Should(Receive(Equal(42)))
	})

	It("fires multiple pending GetPropertyAsync callbacks once on SetProperty", func() {
		it := asynciter.FromSlice([]int{1})
		var calls []int
		done := make(chan struct{}, 2)
		it.GetPropertyAsync("n", func(v any) { calls = append(calls, v.(int)); done <- struct{}{} })
		it.GetPropertyAsync("n", func(v any) { calls = append(calls, v.(int)*10); done <- struct{}{} })
		it.SetProperty("n", 7)
		Eventually(done).Should(Receive())
		Eventually(done).Should(Receive())
		Expect(calls).To(ConsistOf(7, 70))
	})

	It("returns a stable non-empty ID", func() {
		a := asynciter.FromSlice([]int{1})
		b := asynciter.FromSlice([]int{1})
		Expect(a.ID()).NotTo(BeEmpty())
		Expect(a.ID()).NotTo(Equal(b.ID()))
	})

	It("round-trips SetProperties/GetProperties", func() {
		it := asynciter.FromSlice([]int{1})
		it.SetProperties(map[string]any{"a": 1, "b": "x"})
		Eventually(func() map[string]any { return it.GetProperties() }).Should(Equal(map[string]any{"a": 1, "b": "x"}))
	})
})
