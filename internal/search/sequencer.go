// internal/search/sequencer.go
package search

import "sync"

// Sequencer issues monotonically increasing request numbers and decides
// which responses may still be accepted. Only the response for the most
// recently issued number is accepted; anything older is stale.
type Sequencer struct {
	mu       sync.Mutex
	issued   uint64
	accepted uint64
}

// Next issues a new request number, superseding every earlier one.
func (s *Sequencer) Next() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.issued++
	return s.issued
}

// Latest returns the most recently issued number, or 0 if none.
func (s *Sequencer) Latest() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.issued
}

// Accept reports whether the response for seq should be kept. It returns
// true at most once per number, and only for the latest issued one.
func (s *Sequencer) Accept(seq uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if seq == 0 || seq != s.issued || seq == s.accepted {
		return false
	}
	s.accepted = seq
	return true
}

// ResultSlot holds the last accepted FilterResult (or error) for one
// caller, applying the discard-stale rule on every delivery.
type ResultSlot struct {
	seq    Sequencer
	mu     sync.RWMutex
	result *FilterResult
	err    error
}

// Begin issues the number to tag the next Apply call with.
func (r *ResultSlot) Begin() uint64 {
	return r.seq.Next()
}

// Deliver stores result and err if seq is still the latest request. A
// delivered error replaces any earlier result so stale rows never linger.
func (r *ResultSlot) Deliver(seq uint64, result *FilterResult, err error) bool {
	if !r.seq.Accept(seq) {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if result != nil {
		result.RequestSeq = seq
	}
	r.result = result
	r.err = err
	return true
}

// Current returns the last accepted result and error.
func (r *ResultSlot) Current() (*FilterResult, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.result, r.err
}
