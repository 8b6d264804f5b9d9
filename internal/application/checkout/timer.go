package checkout

import "time"

// Timer schedules the settle delays of the dispatcher
type Timer interface {
	// AfterFunc runs f in its own goroutine once d has elapsed
	AfterFunc(d time.Duration, f func())
	// Sleep blocks for d
	Sleep(d time.Duration)
}

// RealTimer waits on the wall clock
type RealTimer struct{}

// AfterFunc implements Timer
func (RealTimer) AfterFunc(d time.Duration, f func()) {
	time.AfterFunc(d, f)
}

// Sleep implements Timer
func (RealTimer) Sleep(d time.Duration) {
	time.Sleep(d)
}

// ImmediateTimer runs every continuation without waiting
type ImmediateTimer struct{}

// AfterFunc implements Timer
func (ImmediateTimer) AfterFunc(_ time.Duration, f func()) {
	go f()
}

// Sleep implements Timer
func (ImmediateTimer) Sleep(time.Duration) {}
