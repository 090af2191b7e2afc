package extract

import (
	"sync"
	"testing"
)

func TestBudgetCapsTakes(t *testing.T) {
	b := NewBudget(3)
	for i := 0; i < 3; i++ {
		if !b.Take() {
			t.Fatalf("take %d should be within budget", i)
		}
	}
	if b.Take() {
		t.Fatalf("expected budget exhausted")
	}
	if b.Remaining() != 0 {
		t.Fatalf("expected 0 remaining, got %d", b.Remaining())
	}
}

func TestBudgetUnlimited(t *testing.T) {
	b := NewBudget(0)
	for i := 0; i < 1000; i++ {
		if !b.Take() {
			t.Fatalf("unlimited budget should never exhaust")
		}
	}
	if b.Remaining() != -1 {
		t.Fatalf("expected -1 remaining for unlimited")
	}
}

func TestBudgetConcurrentTakes(t *testing.T) {
	b := NewBudget(100)
	var wg sync.WaitGroup
	granted := make(chan struct{}, 200)
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if b.Take() {
				granted <- struct{}{}
			}
		}()
	}
	wg.Wait()
	close(granted)
	n := 0
	for range granted {
		n++
	}
	if n != 100 {
		t.Fatalf("expected exactly 100 grants, got %d", n)
	}
}
