// Package script runs Lua scripts against a widget toolkit.
//
// Scripts see a single global table, ui, exposing the same operations Go
// code uses:
//
//	local id = ui.on("hello", "clicked", function(name, args) ... end)
//	ui.block(id, true)
//	ui.blocked(id)           -- true
//	ui.off(id)
//	ui.on_quit(function() return false end)  -- veto quitting
//	ui.click("hello")
//	ui.toggle("mute")
//	ui.set("volume", 7)
//	ui.destroy("hello")
//	ui.quit()
//
// Lua handlers run synchronously inside the event dispatch, on the goroutine
// that owns the toolkit. An Engine must only be used from that goroutine.
//
// Only the base, table, string and math libraries are opened. Each script
// run and each handler invocation started from Go is bounded by a timeout.
package script
