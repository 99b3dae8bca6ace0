package events

// Recorder buffers events raised by an aggregate until the application layer
// drains them for publishing. The zero value is ready to use.
type Recorder struct {
	pending []DomainEvent
}

// Record queues evts in the order given.
func (r *Recorder) Record(evts ...DomainEvent) {
	r.pending = append(r.pending, evts...)
}

// Pending reports how many events are waiting to be drained.
func (r *Recorder) Pending() int {
	return len(r.pending)
}

// Peek returns a copy of the queued events and leaves the queue intact.
func (r *Recorder) Peek() []DomainEvent {
	if len(r.pending) == 0 {
		return nil
	}
	out := make([]DomainEvent, len(r.pending))
	copy(out, r.pending)
	return out
}

// Drain hands back the queued events and empties the queue.
func (r *Recorder) Drain() []DomainEvent {
	out := r.pending
	r.pending = nil
	return out
}
