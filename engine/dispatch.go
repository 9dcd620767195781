package engine

import (
	"hash/fnv"

	"github.com/ansel1/testlog/parser"
	"github.com/ansel1/testlog/queue"
)

// dispatcher fans test events out to a fixed set of workers keyed by
// package, so each package's events stay ordered.
type dispatcher struct {
	handle func(parser.TestEvent)
	shards []*queue.Queue[parser.TestEvent]
}

func newDispatcher(workers int, handle func(parser.TestEvent)) *dispatcher {
	d := &dispatcher{handle: handle}
	if workers < 2 {
		return d
	}
	d.shards = make([]*queue.Queue[parser.TestEvent], workers)
	for i := range d.shards {
		d.shards[i] = queue.New(handle)
	}
	return d
}

// packageOf returns the package an event belongs to. Build events carry the
// package in ImportPath.
func packageOf(evt parser.TestEvent) string {
	if evt.Package != "" {
		return evt.Package
	}
	return evt.ImportPath
}

func (d *dispatcher) dispatch(evt parser.TestEvent) {
	if len(d.shards) == 0 {
		d.handle(evt)
		return
	}
	h := fnv.New32a()
	h.Write([]byte(packageOf(evt)))
	// only fails after close, which happens once dispatching stops
	_ = d.shards[h.Sum32()%uint32(len(d.shards))].Enqueue(evt)
}

// close waits for every dispatched event to be handled.
func (d *dispatcher) close() {
	for _, shard := range d.shards {
		shard.Close()
	}
}
