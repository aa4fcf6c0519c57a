package metrics

import (
	"sync"
	"time"
)

// Poller samples on an interval and hands each snapshot to a callback
type Poller struct {
	sampler  *Sampler
	callback func(Snapshot)
	mu       sync.RWMutex
	last     *Snapshot
}

// NewPoller creates a poller; the callback receives every sample
func NewPoller(callback func(Snapshot)) *Poller {
	return &Poller{
		sampler:  NewSampler(),
		callback: callback,
	}
}

// StartPolling samples until stopChan closes. Blocks; run in a goroutine.
func (p *Poller) StartPolling(interval time.Duration, stopChan chan struct{}) {
	p.sample()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			p.sample()
		case <-stopChan:
			return
		}
	}
}

func (p *Poller) sample() {
	snap := p.sampler.Sample()

	p.mu.Lock()
	p.last = &snap
	p.mu.Unlock()

	if p.callback != nil {
		p.callback(snap)
	}
}

// Last returns the most recent snapshot, or nil before the first sample
func (p *Poller) Last() *Snapshot {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.last
}
