package catalog

import "github.com/aretw0/exemplar/pkg/core"

// DefaultEventBuffer is the subscription buffer used when none is given.
const DefaultEventBuffer = 100

// Subscribe returns a channel receiving every subsequent mutation event and a
// cancel function that closes it. Delivery never blocks writers: when the
// buffer is full the event is dropped and counted in State().
func (c *Catalog) Subscribe(buffer int) (<-chan core.Event, func()) {
	if buffer <= 0 {
		buffer = DefaultEventBuffer
	}
	ch := make(chan core.Event, buffer)

	c.mu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = ch
	c.mu.Unlock()

	cancel := func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if sub, ok := c.subs[id]; ok {
			delete(c.subs, id)
			close(sub)
		}
	}
	return ch, cancel
}

// publishLocked must be called with c.mu held for writing.
func (c *Catalog) publishLocked(e core.Event) {
	for _, ch := range c.subs {
		select {
		case ch <- e:
		default:
			c.dropped++
		}
	}
}
