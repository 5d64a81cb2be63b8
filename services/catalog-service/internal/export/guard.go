package export

import "sync"

// Guard признак "выгрузка выполняется". Единственное разделяемое состояние планировщика.
type Guard struct {
	mu      sync.Mutex
	running bool
}

// TryAcquire переводит Guard в состояние Running и возвращает true,
// если выгрузка еще не выполняется
func (g *Guard) TryAcquire() bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.running {
		return false
	}
	g.running = true
	return true
}

// Release возвращает Guard в состояние Idle
func (g *Guard) Release() {
	g.mu.Lock()
	g.running = false
	g.mu.Unlock()
}

// Running сообщает, выполняется ли выгрузка
func (g *Guard) Running() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.running
}
