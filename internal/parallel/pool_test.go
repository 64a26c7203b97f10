package parallel

import (
	"runtime"
	"sync/atomic"
	"testing"
)

func TestWorkerPool_Create(t *testing.T) {
	pool := NewWorkerPool(4)
	defer pool.Close()

	if pool.Workers() != 4 {
		t.Errorf("Workers() = %d, want 4", pool.Workers())
	}
	if !pool.IsRunning() {
		t.Error("Pool should be running after creation")
	}
}

func TestWorkerPool_CreateZeroWorkers(t *testing.T) {
	pool := NewWorkerPool(0)
	defer pool.Close()

	if want := runtime.GOMAXPROCS(0); pool.Workers() != want {
		t.Errorf("Workers() = %d, want %d (GOMAXPROCS)", pool.Workers(), want)
	}
}

func TestWorkerPool_ExecuteAll(t *testing.T) {
	pool := NewWorkerPool(4)
	defer pool.Close()

	var counter atomic.Int64
	work := make([]func(), 100)
	for i := range work {
		work[i] = func() { counter.Add(1) }
	}
	pool.ExecuteAll(work)

	if got := counter.Load(); got != 100 {
		t.Errorf("counter = %d, want 100", got)
	}
}

func TestWorkerPool_ExecuteAllAfterClose(t *testing.T) {
	pool := NewWorkerPool(2)
	pool.Close()
	pool.Close()

	var counter atomic.Int64
	pool.ExecuteAll([]func(){
		func() { counter.Add(1) },
		func() { counter.Add(1) },
	})
	if got := counter.Load(); got != 2 {
		t.Errorf("closed pool ran %d items, want 2", got)
	}
	if pool.IsRunning() {
		t.Error("IsRunning() = true after Close")
	}
}

func TestWorkerPool_Rows(t *testing.T) {
	pool := NewWorkerPool(3)
	defer pool.Close()

	for _, height := range []int{1, 7, 8, 64, 101, 400} {
		hits := make([]atomic.Int32, height)
		pool.Rows(height, func(y0, y1 int) {
			for y := y0; y < y1; y++ {
				hits[y].Add(1)
			}
		})
		for y := range hits {
			if n := hits[y].Load(); n != 1 {
				t.Fatalf("height %d: row %d visited %d times", height, y, n)
			}
		}
	}
}

func TestBands(t *testing.T) {
	tests := []struct {
		height, workers int
		wantBands       int
	}{
		{0, 4, 0},
		{1, 4, 1},
		{MinBandRows*2 - 1, 4, 1},
		{100, 4, 8},
		{100, 0, 2},
		{1000, 16, 32},
	}
	for _, tt := range tests {
		bands := Bands(tt.height, tt.workers)
		if len(bands) != tt.wantBands {
			t.Errorf("Bands(%d, %d) = %d bands, want %d", tt.height, tt.workers, len(bands), tt.wantBands)
			continue
		}
		y := 0
		for _, b := range bands {
			if b.Y0 != y || b.Y1 <= b.Y0 {
				t.Errorf("Bands(%d, %d): band %+v does not continue at %d", tt.height, tt.workers, b, y)
			}
			y = b.Y1
		}
		if y != tt.height {
			t.Errorf("Bands(%d, %d) covers %d rows", tt.height, tt.workers, y)
		}
	}
}
