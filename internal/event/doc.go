/*
Package event provides a pub/sub event system for livecfg.

The event system lets stores and the i18n registry announce lifecycle
transitions (loads, saves, reloads, quarantines, language changes) without the
consumers of those announcements depending on the emitting component.

# Architecture

The package is built on top of watermill's gochannel for infrastructure while
keeping direct-call semantics to preserve payload type information. Both
synchronous and asynchronous publishing are available; stores publish
lifecycle events synchronously so a subscriber observes them in the order the
store performed them.

# Event Types

Config store events:
  - config.loaded: a store finished a load (initial or watcher-triggered)
  - config.saved: a store wrote its file
  - config.reloaded: a store completed a full unload/init cycle
  - config.changed: a single property write went through the interception layer
  - config.quarantined: a corrupt file was renamed aside and defaults restored

I18n events:
  - language.loaded / language.unloaded / language.switched

# Usage

	unsub := event.Subscribe(event.ConfigSaved, func(e event.Event) {
		data := e.Data.(event.ConfigSavedData)
		fmt.Println("saved", data.Path)
	})
	defer unsub()
*/
package event
