// Package config loads the uikit configuration and watches it for changes.
//
// Configuration files are TOML (.toml) or YAML (.yaml, .yml):
//
//	title = "demo"
//	log_level = "debug"
//	log_file = "/tmp/uikit.log"
//	scripts = ["hello.lua"]
//
//	[[widget]]
//	kind = "button"
//	name = "ok"
//	label = "OK"
//
//	[[widget]]
//	kind = "slider"
//	name = "volume"
//	min = 0
//	max = 10
//	value = 5
//
// A Watcher reloads the file when it changes and fires a global event with
// the new *Config. The fire is delivered through a caller-supplied post
// function so handlers run on the UI goroutine.
package config
