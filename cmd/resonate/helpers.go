package main

import (
	"fmt"
	"strings"
	"time"
)

const timePrecision = time.Millisecond

// parseSettingPairs converts repeated key=value flags into an instance
// settings map.
func parseSettingPairs(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}

	instance := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, found := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !found || key == "" {
			return nil, fmt.Errorf("invalid setting '%s', expected key=value", pair)
		}
		instance[key] = value
	}
	return instance, nil
}
