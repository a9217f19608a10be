package event

// Fire invokes, in registration order, every handler that is neither blocked
// nor dead and that is bound to sender (or every such handler, for a global
// event). Each handler receives sender, args, and its registration data.
//
// The handlers considered are those registered when Fire is called. A handler
// deleted by another handler during the same Fire is skipped if it has not
// run yet; blocking or invalidating during Fire likewise affects handlers that
// have not run yet. Handler panics propagate to the caller.
func (e *Event) Fire(sender Sender, args any) {
	snapshot := e.entries

	e.firing++
	defer func() { e.firing-- }()

	for _, en := range snapshot {
		if !en.runnable(e.global, sender) {
			continue
		}
		en.handler(sender, args, en.data)
	}
}
