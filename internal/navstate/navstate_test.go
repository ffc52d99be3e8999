package navstate

import (
	"sync"
	"testing"

	"github.com/abelbrown/bookscout/internal/book"
)

func TestSaveRestoreClear(t *testing.T) {
	b := New()
	if _, ok := b.Restore(); ok {
		t.Fatal("new bridge should be empty")
	}

	first := book.Criteria{Query: "dune"}
	second := book.Criteria{Query: "dune", Author: "Herbert", Year: 1965}
	b.Save(first)
	b.Save(second)

	got, ok := b.Restore()
	if !ok || got != second {
		t.Errorf("Restore() = %+v, %v; want %+v, true", got, ok, second)
	}

	// Restore does not consume the slot.
	if again, ok := b.Restore(); !ok || again != second {
		t.Errorf("second Restore() = %+v, %v", again, ok)
	}

	b.Clear()
	if got, ok := b.Restore(); ok || got != (book.Criteria{}) {
		t.Errorf("after Clear: %+v, %v", got, ok)
	}
}

func TestConcurrentAccess(t *testing.T) {
	b := New()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			b.Save(book.Criteria{Year: i})
			b.Restore()
			if i%10 == 0 {
				b.Clear()
			}
		}(i)
	}
	wg.Wait()
}
