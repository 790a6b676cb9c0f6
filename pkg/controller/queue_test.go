package controller

import (
	"sync"
	"testing"
	"time"
)

func TestQueueFIFO(t *testing.T) {
	q := NewQueue()
	a := NewBatch(BatchRelative, []Pair{{Joint: 1, Degrees: 10}})
	b := NewBatch(BatchAbsolute, []Pair{{Joint: 2, Degrees: -20}})
	q.Enqueue(a)
	q.Enqueue(b)

	got, ok := q.Dequeue(time.Millisecond)
	if !ok || got.ID != a.ID {
		t.Fatalf("first dequeue = (%v, %v), want batch a", got.ID, ok)
	}
	got, ok = q.Dequeue(time.Millisecond)
	if !ok || got.ID != b.ID {
		t.Fatalf("second dequeue = (%v, %v), want batch b", got.ID, ok)
	}
}

func TestQueueDequeueTimeout(t *testing.T) {
	q := NewQueue()
	start := time.Now()
	_, ok := q.Dequeue(20 * time.Millisecond)
	if ok {
		t.Fatal("empty queue should time out")
	}
	if time.Since(start) < 20*time.Millisecond {
		t.Error("returned before the timeout elapsed")
	}
}

func TestQueueDequeueWakesOnEnqueue(t *testing.T) {
	q := NewQueue()
	go func() {
		time.Sleep(10 * time.Millisecond)
		q.Enqueue(NewBatch(BatchRelative, []Pair{{Joint: 3, Degrees: 5}}))
	}()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if b, ok := q.Dequeue(50 * time.Millisecond); ok {
			if b.Pairs[0].Joint != 3 {
				t.Fatalf("unexpected batch %v", b)
			}
			return
		}
	}
	t.Fatal("never received the enqueued batch")
}

func TestQueueConcurrentProducers(t *testing.T) {
	q := NewQueue()
	const producers = 8
	const perProducer = 50

	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				q.Enqueue(NewBatch(BatchRelative, []Pair{{Joint: 1, Degrees: 1}}))
			}
		}()
	}
	wg.Wait()

	if q.Len() != producers*perProducer {
		t.Fatalf("queue length = %d, want %d", q.Len(), producers*perProducer)
	}

	count := 0
	for {
		if _, ok := q.Dequeue(time.Millisecond); !ok {
			break
		}
		count++
	}
	if count != producers*perProducer {
		t.Errorf("dequeued %d batches, want %d", count, producers*perProducer)
	}
}

func TestQueueDrain(t *testing.T) {
	q := NewQueue()
	for i := 0; i < 3; i++ {
		q.Enqueue(NewBatch(BatchAbsolute, []Pair{{Joint: i + 1, Degrees: 1}}))
	}
	dropped := q.Drain()
	if len(dropped) != 3 {
		t.Fatalf("drained %d, want 3", len(dropped))
	}
	if q.Len() != 0 {
		t.Errorf("queue not empty after drain: %d", q.Len())
	}
}
