package server

import "sync"

// Admission bounds the number of connections being served at once.
// The same lock also serializes disk access when asked to through Serialize.
type Admission struct {
	mu    sync.Mutex
	count uint
	max   uint
}

func NewAdmission(max uint) *Admission {
	return &Admission{max: max}
}

// TryAcquire takes a slot if one is free. It never blocks on capacity.
func (a *Admission) TryAcquire() bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.count >= a.max {
		return false
	}
	a.count++
	return true
}

// Release frees a slot taken by TryAcquire.
// Releasing more than was acquired is a bug and panics.
func (a *Admission) Release() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.count == 0 {
		panic("admission: release without acquire")
	}
	a.count--
}

func (a *Admission) Count() uint {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.count
}

func (a *Admission) Max() uint { return a.max }

// Serialize runs fn while holding the admission lock.
// Admission decisions wait until fn returns.
func (a *Admission) Serialize(fn func() error) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return fn()
}
