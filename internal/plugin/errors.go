package plugin

import (
	"fmt"
)

// ErrPluginNotFound is returned when the requested plugin is not registered.
type ErrPluginNotFound struct {
	Name string
}

func (e ErrPluginNotFound) Error() string {
	return fmt.Sprintf("plugin '%s' not found in registry\nHint: install the plugin and rescan before referencing it in an applet", e.Name)
}

// ErrWrongCategory is returned when a stage references a plugin registered
// under a different category than the stage requires.
type ErrWrongCategory struct {
	Name string
	Want Category
	Got  Category
}

func (e ErrWrongCategory) Error() string {
	return fmt.Sprintf(
		"plugin '%s' is registered as %s but the stage requires %s\nHint: move the stage to the matching section of the applet",
		e.Name,
		e.Got,
		e.Want,
	)
}
