// Package machineevents fans machine transitions out to in-process
// subscribers.
//
// A Feed is instrumented onto any number of machines and publishes an Event
// for every transition, process call and release. Publishing never blocks the
// machine: a subscriber whose buffer is full misses the event and its
// Dropped counter grows.
//
//	feed := machineevents.NewFeed(64)
//	defer feed.Close()
//
//	sub := feed.Subscribe(ctx)
//	if _, err := feed.Instrument(m); err != nil {
//	    return err
//	}
//	go func() {
//	    for ev := range sub.Events() {
//	        log.Println(ev)
//	    }
//	}()
//
// Feed and Subscription are safe for concurrent use. Machines publish from
// whatever goroutine drives them.
package machineevents
