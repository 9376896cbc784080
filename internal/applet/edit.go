package applet

import (
	"fmt"
)

// AddStage appends a stage to the named list.
func (a *Applet) AddStage(kind StageKind, stage Stage) error {
	stages := a.stagesFor(kind)
	if stages == nil {
		return fmt.Errorf("unknown stage kind '%s'", kind)
	}
	*stages = append(*stages, stage)
	return nil
}

// RemoveStage deletes the stage at index from the named list. Removing the
// last input or output is rejected to preserve the pipeline invariant.
func (a *Applet) RemoveStage(kind StageKind, index int) error {
	stages := a.stagesFor(kind)
	if stages == nil {
		return fmt.Errorf("unknown stage kind '%s'", kind)
	}
	if index < 0 || index >= len(*stages) {
		return fmt.Errorf("stage index %d out of range for %s", index, kind)
	}
	if len(*stages) == 1 && (kind == KindInput || kind == KindOutput) {
		return fmt.Errorf("applet must keep at least one %s stage", singular(kind))
	}
	*stages = append((*stages)[:index], (*stages)[index+1:]...)
	return nil
}

// MoveStage reorders a stage within the named list.
func (a *Applet) MoveStage(kind StageKind, from, to int) error {
	stages := a.stagesFor(kind)
	if stages == nil {
		return fmt.Errorf("unknown stage kind '%s'", kind)
	}
	if from < 0 || from >= len(*stages) || to < 0 || to >= len(*stages) {
		return fmt.Errorf("stage move %d -> %d out of range for %s", from, to, kind)
	}
	if from == to {
		return nil
	}

	moved := (*stages)[from]
	rest := append((*stages)[:from], (*stages)[from+1:]...)
	rest = append(rest, Stage{})
	copy(rest[to+1:], rest[to:])
	rest[to] = moved
	*stages = rest
	return nil
}

func singular(kind StageKind) string {
	switch kind {
	case KindInput:
		return "input"
	case KindModifier:
		return "modifier"
	case KindOutput:
		return "output"
	case KindTrigger:
		return "trigger"
	}
	return string(kind)
}
