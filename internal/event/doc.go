// Package event provides the signal registry used by uikit widgets.
//
// An Event is an ordered list of handlers. Producers (widgets) call Fire when
// their state changes; consumers register handlers and receive an id they can
// later use to block, unblock, or delete the registration.
//
// # Global and Scoped Events
//
// A global event invokes every handler on Fire. A scoped event invokes only
// the handlers registered against the sender passed to Fire:
//
//	clicked := event.New()
//	ok := event.NewSender()
//	id := clicked.Register(ok, nil, func(sender event.Sender, args, data any) {
//	    fmt.Println("ok clicked")
//	})
//	clicked.Fire(ok, nil)               // runs the handler
//	clicked.Fire(event.NewSender(), nil) // runs nothing
//
// # Blocking and Invalidation
//
// SetBlocked temporarily excludes a handler from dispatch. InvalidateSender
// marks every handler currently bound to a sender as dead; dead handlers never
// run again but remain registered until deleted. Handlers registered after the
// invalidation are unaffected, even when they reuse the same sender value.
//
// # Dispatch
//
// Fire runs handlers synchronously in registration order. The set of handlers
// considered is fixed when Fire starts: handlers registered by a callback are
// not run by the same Fire, and handlers deleted by a callback are skipped if
// they have not run yet.
//
// A panic raised by a handler is not recovered. It unwinds through Fire and
// the remaining handlers of that dispatch do not run.
//
// # Thread Safety
//
// Event is not safe for concurrent use. All calls, including Fire, must come
// from the goroutine that owns the UI loop. Use the loop's post facility to
// deliver work from other goroutines.
package event
