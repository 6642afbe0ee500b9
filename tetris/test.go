package tetris

import (
	"sync"
	"time"
)

// MockTicker is a manual Ticker for tests.
type MockTicker struct {
	ch          chan time.Time
	stop, reset bool
	mu          sync.Mutex
}

func NewMockTicker() *MockTicker          { return &MockTicker{ch: make(chan time.Time)} }
func (m *MockTicker) C() <-chan time.Time { return m.ch }
func (m *MockTicker) Tick()               { m.ch <- time.Now() }
func (m *MockTicker) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stop = true
}
func (m *MockTicker) Reset(time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reset = true
}
func (m *MockTicker) IsReset() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.reset
}
func (m *MockTicker) IsStop() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stop
}

// NewTestEngine creates a seeded default engine with a piece of the given
// shape on the spawn cell.
func NewTestEngine(shape Shape) *Engine {
	cfg := DefaultConfig()
	cfg.Seed = 1
	e := New(cfg)
	if err := e.SpawnPiece(shape, e.SpawnCell()); err != nil {
		panic(err)
	}
	return e
}

// Fill commits tiles of the given color on every cell, with fresh ids.
func (e *Engine) Fill(color Color, cells ...Cell) {
	for _, c := range cells {
		e.nextID++
		e.grid.Commit(c, Tile{ID: e.nextID, Color: color})
	}
}
