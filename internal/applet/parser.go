package applet

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"

	resonateerrors "github.com/MauliQT/resonate/pkg/errors"
)

var yamlLineRegex = regexp.MustCompile(`line (\d+)`)

// ParseFile loads an applet definition from disk, validates it, and returns
// the resulting model.
func ParseFile(path string) (*Applet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, resonateerrors.NewParseError(path, 0, err)
	}
	return Parse(data, path)
}

// Parse decodes and validates an applet definition document. The path is
// used only for error reporting.
func Parse(data []byte, path string) (*Applet, error) {
	var a Applet
	if err := yaml.Unmarshal(data, &a); err != nil {
		return nil, resonateerrors.NewParseError(path, extractLine(err), err)
	}

	if err := Validate(&a); err != nil {
		return nil, err
	}

	return &a, nil
}

// Marshal serializes an applet definition back to YAML.
func Marshal(a *Applet) ([]byte, error) {
	return yaml.Marshal(a)
}

func extractLine(err error) int {
	if err == nil {
		return 0
	}

	matches := yamlLineRegex.FindStringSubmatch(err.Error())
	if len(matches) != 2 {
		return 0
	}

	var line int
	_, scanErr := fmt.Sscanf(matches[1], "%d", &line)
	if scanErr != nil {
		return 0
	}

	return line
}
