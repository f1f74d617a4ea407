package notify

import (
	"sync"
	"testing"
)

// queue is a manual dispatcher that holds work until drained.
type queue struct {
	mu    sync.Mutex
	items []func()
}

func (q *queue) Dispatch(fn func()) {
	q.mu.Lock()
	q.items = append(q.items, fn)
	q.mu.Unlock()
}

func (q *queue) drain() int {
	q.mu.Lock()
	items := q.items
	q.items = nil
	q.mu.Unlock()
	for _, fn := range items {
		fn()
	}
	return len(items)
}

func TestPublish_OrderAndDelivery(t *testing.T) {
	n := New[string]()
	var got []string
	n.Subscribe(func(s string) { got = append(got, "a:"+s) })
	n.Subscribe(func(s string) { got = append(got, "b:"+s) })

	n.Publish("loaded")

	if len(got) != 2 || got[0] != "a:loaded" || got[1] != "b:loaded" {
		t.Fatalf("got %v, want [a:loaded b:loaded]", got)
	}
}

func TestUnsubscribe_FromInsideCallback(t *testing.T) {
	n := New[int]()
	calls := 0
	var sub *Subscription
	sub = n.Subscribe(func(int) {
		calls++
		sub.Unsubscribe()
	})
	n.Subscribe(func(int) {
		n.Subscribe(func(int) {})
	})

	n.Publish(1)
	n.Publish(2)

	if calls != 1 {
		t.Fatalf("calls = %d, want 1", calls)
	}
	if sub.Active() {
		t.Fatalf("subscription still active")
	}
	// One self-subscribing observer plus the two it added.
	if n.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", n.Len())
	}
}

func TestUnsubscribe_DropsQueuedDelivery(t *testing.T) {
	q := &queue{}
	n := New[string](WithDispatcher(q))
	calls := 0
	sub := n.Subscribe(func(string) { calls++ })

	n.Publish("saved")
	sub.Unsubscribe()
	sub.Unsubscribe()

	if drained := q.drain(); drained != 1 {
		t.Fatalf("drained %d items, want 1", drained)
	}
	if calls != 0 {
		t.Fatalf("observer ran after unsubscribe")
	}
}

func TestPublish_RecoversObserverPanic(t *testing.T) {
	n := New[int]()
	after := false
	n.Subscribe(func(int) { panic("bad window") })
	n.Subscribe(func(int) { after = true })

	n.Publish(1)

	if !after {
		t.Fatalf("second observer not called after panic")
	}
}

func TestClose(t *testing.T) {
	n := New[int]()
	calls := 0
	sub := n.Subscribe(func(int) { calls++ })
	n.Close()
	n.Close()
	n.Publish(1)

	if calls != 0 {
		t.Fatalf("publish after close delivered %d events", calls)
	}
	if sub.Active() {
		t.Fatalf("subscription active after close")
	}
	if late := n.Subscribe(func(int) {}); late.Active() {
		t.Fatalf("subscribe after close returned active subscription")
	}
}

func TestSubscribe_NilObserver(t *testing.T) {
	n := New[int]()
	sub := n.Subscribe(nil)
	if sub.Active() || n.Len() != 0 {
		t.Fatalf("nil observer registered")
	}
	sub.Unsubscribe()
}

func TestPublish_Concurrent(t *testing.T) {
	n := New[int]()
	var mu sync.Mutex
	total := 0
	n.Subscribe(func(v int) {
		mu.Lock()
		total += v
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			n.Publish(1)
			s := n.Subscribe(func(int) {})
			s.Unsubscribe()
		}()
	}
	wg.Wait()

	if total != 50 {
		t.Fatalf("total = %d, want 50", total)
	}
}
