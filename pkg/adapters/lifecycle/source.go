// Package lifecycle exposes catalog change events as a lifecycle.Source.
package lifecycle

import (
	"context"

	"github.com/aretw0/lifecycle"

	"github.com/aretw0/exemplar/pkg/core"
)

// Subscriber is implemented by *catalog.Catalog.
type Subscriber interface {
	Subscribe(buffer int) (<-chan core.Event, func())
}

type catalogSource struct {
	sub    Subscriber
	buffer int
	out    chan lifecycle.Event
}

// NewSource creates a lifecycle.Source that emits catalog change events.
// The subscription is opened by Start and released when ctx is done.
func NewSource(sub Subscriber, buffer int) lifecycle.Source {
	return &catalogSource{
		sub:    sub,
		buffer: buffer,
		out:    make(chan lifecycle.Event),
	}
}

func (s *catalogSource) Events() <-chan lifecycle.Event {
	return s.out
}

func (s *catalogSource) Start(ctx context.Context) error {
	events, cancel := s.sub.Subscribe(s.buffer)

	lifecycle.Go(ctx, func(ctx context.Context) error {
		defer close(s.out)
		defer cancel()
		for {
			select {
			case <-ctx.Done():
				return nil
			case e, ok := <-events:
				if !ok {
					return nil
				}
				// core.Event implements lifecycle.Event (has String())
				select {
				case s.out <- e:
				case <-ctx.Done():
					return nil
				}
			}
		}
	})
	return nil
}
