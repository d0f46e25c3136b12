package mana

import (
	"testing"
)

func TestPool_Add(t *testing.T) {
	pool := NewPool()

	pool.Add(White, 2)
	if pool.Get(White) != 2 {
		t.Errorf("Expected 2 white mana, got %d", pool.Get(White))
	}

	pool.Add(Blue, 1)
	if pool.Get(Blue) != 1 {
		t.Errorf("Expected 1 blue mana, got %d", pool.Get(Blue))
	}

	pool.Add(Red, -3)
	if pool.Get(Red) != 0 {
		t.Errorf("Expected negative add to be ignored, got %d", pool.Get(Red))
	}
}

func TestPool_Spend(t *testing.T) {
	pool := NewPool()
	pool.Add(White, 3)
	pool.Add(Blue, 2)

	if !pool.Spend(White, 2) {
		t.Error("Expected to spend 2 white mana")
	}
	if pool.Get(White) != 1 {
		t.Errorf("Expected 1 white mana remaining, got %d", pool.Get(White))
	}

	// Try to spend more than available
	if pool.Spend(Blue, 5) {
		t.Error("Expected to fail spending 5 blue mana when only 2 available")
	}
	if pool.Get(Blue) != 2 {
		t.Errorf("Expected failed spend to leave pool untouched, got %d", pool.Get(Blue))
	}
}

func TestPool_Empty(t *testing.T) {
	pool := NewPool()
	pool.Add(Green, 2)
	pool.Add(Colorless, 1)

	if pool.Total() != 3 {
		t.Errorf("Expected total 3, got %d", pool.Total())
	}

	removed := pool.Empty()
	if removed != 3 {
		t.Errorf("Expected 3 mana removed, got %d", removed)
	}
	if pool.Total() != 0 {
		t.Errorf("Expected empty pool, got %d", pool.Total())
	}
}
