package photoengine

import (
	"errors"
	"sync"
	"testing"
	"time"
)

func TestWithLockSerializesSameKey(t *testing.T) {
	l := NewLocker()

	const n = 100
	counter := 0
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = l.WithLock("data/gallery.json", func() error {
				// Non-atomic increment; only mutual exclusion keeps it right.
				v := counter
				time.Sleep(time.Microsecond)
				counter = v + 1
				return nil
			})
		}()
	}
	wg.Wait()

	if counter != n {
		t.Errorf("counter = %d, want %d (mutations were lost)", counter, n)
	}
}

func TestWithLockDifferentKeysRunConcurrently(t *testing.T) {
	l := NewLocker()

	aHeld := make(chan struct{})
	release := make(chan struct{})
	done := make(chan struct{})

	go func() {
		_ = l.WithLock("a.json", func() error {
			close(aHeld)
			<-release
			return nil
		})
	}()
	<-aHeld

	go func() {
		_ = l.WithLock("b.json", func() error { return nil })
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("lock on b.json blocked behind unrelated lock on a.json")
	}
	close(release)
}

func TestWithLockReleasesOnError(t *testing.T) {
	l := NewLocker()
	boom := errors.New("boom")

	if err := l.WithLock("k", func() error { return boom }); !errors.Is(err, boom) {
		t.Fatalf("error should propagate, got %v", err)
	}

	// The key must be usable again immediately.
	done := make(chan struct{})
	go func() {
		_ = l.WithLock("k", func() error { return nil })
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("lock was not released after fn error")
	}
}

func TestWithLockCanonicalizesKeys(t *testing.T) {
	l := NewLocker()
	if l.forKey("data/gallery.json") != l.forKey("data//gallery.json") {
		t.Error("equivalent paths should map to the same lock")
	}
	if l.forKey("data/gallery.json") == l.forKey("data/blog.json") {
		t.Error("different paths should map to different locks")
	}
}
