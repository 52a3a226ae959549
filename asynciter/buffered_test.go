package asynciter_test

import (
	"github.com/asynciter/asynciter"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("Buffered core (via FromChannel)", func() {
	It("delivers every item in order even with a buffer much smaller than the input", func() {
		ch := make(chan int, 20)
		for i := 0; i < 20; i++ {
			ch <- i
		}
		close(ch)

		it := asynciter.FromChannel[int](ch, 2)
		items := collectAll[int](it)
		want := make([]int, 20)
		for i := range want {
			want[i] = i
		}
		Expect(items).To(Equal(want))
	})

	It("reaches Ended after Close even when items remain to be drained by hand", func() {
		ch := make(chan int, 5)
		for i := 0; i < 5; i++ {
			ch <- i
		}
		it := asynciter.FromChannel[int](ch, 10)

		Eventually(it.Readable).Should(BeTrue())
		first, ok := it.Read()
		Expect(ok).To(BeTrue())
		Expect(first).To(Equal(0))
		close(ch)
		it.Close()

		// Drain whatever remains by hand; finishClose must notice the
		// buffer emptying on each successive Read and eventually schedule
		// the CLOSED->ENDED transition rather than only checking once.
		Eventually(func() bool {
			for {
				_, ok := it.Read()
				if !ok {
					break
				}
			}
			return it.Ended()
		}).Should(BeTrue())
	})

	It("drops pushed items silently once destroyed, without panicking", func() {
		ch := make(chan int, 1)
		it := asynciter.FromChannel[int](ch, 4)
		it.Destroy(nil)
		Eventually(it.Destroyed).Should(BeTrue())
		ch <- 1
		close(ch)
		item, ok := it.Read()
		Expect(ok).To(BeFalse())
		Expect(item).To(Equal(0))
	})
})
