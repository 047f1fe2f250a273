/*
Copyright © 2025 3 Leaps <info@3leaps.net>
*/
package ops

import (
	"fmt"
	"sort"
)

// ValidationError describes a registry entry that breaks the command taxonomy
type ValidationError struct {
	Command string
	Message string
}

// Error implements the error interface
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Command, e.Message)
}

// CoreCommands maps every built-in command to the group it must live in
var CoreCommands = map[string]CommandGroup{
	"compile":  GroupBuild,
	"classify": GroupBuild,
	"version":  GroupSupport,
}

// ValidateTaxonomy checks that core commands are registered in their groups
// and that no command uses an unknown group.
func ValidateTaxonomy(r *Registry) []ValidationError {
	var errs []ValidationError

	names := make([]string, 0, len(CoreCommands))
	for name := range CoreCommands {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		want := CoreCommands[name]
		reg, ok := r.GetCommand(name)
		switch {
		case !ok:
			errs = append(errs, ValidationError{Command: name, Message: "core command not registered"})
		case reg.Group != want:
			errs = append(errs, ValidationError{Command: name, Message: fmt.Sprintf("expected group %s, got %s", want, reg.Group)})
		}
	}

	known := make(map[CommandGroup]bool, len(Groups))
	for _, g := range Groups {
		known[g] = true
	}
	for group, count := range r.ListGroups() {
		if !known[group] && count > 0 {
			errs = append(errs, ValidationError{Command: string(group), Message: "unknown command group"})
		}
	}
	return errs
}
