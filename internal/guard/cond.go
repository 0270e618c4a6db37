package guard

import "sync"

// broadcastCond is a condition signal that waiters can abandon on deadline.
// Waiters snapshot the current signal channel while holding L, release L
// during the block, and every broadcast closes the snapshot channel so that
// all of them wake and re-check their predicate.
type broadcastCond struct {
	L     sync.Locker
	_sig  chan struct{}
	_sigM sync.RWMutex // locker for refreshing _sig
}

func newBroadcastCond(l sync.Locker) *broadcastCond {
	return &broadcastCond{
		L:    l,
		_sig: make(chan struct{}),
	}
}

// wait blocks until the next broadcast, or until done is closed.
// Returns false when done fired first.
// The caller must hold c.L. It is released while blocked and re-acquired
// before returning, so the awaited condition must be re-checked by the caller.
func (c *broadcastCond) wait(done <-chan struct{}) bool {
	c._sigM.RLock()
	s := c._sig
	c._sigM.RUnlock()

	c.L.Unlock()
	defer c.L.Lock()
	select {
	case <-s:
		return true
	case <-done:
		return false
	}
}

func (c *broadcastCond) broadcast() {
	c._sigM.Lock()
	close(c._sig)
	c._sig = make(chan struct{})
	c._sigM.Unlock()
}
