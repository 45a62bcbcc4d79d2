package format

import (
	"fmt"
	"strconv"
	"strings"
)

// Target selects a container format. The numeric values are the selectors
// stored in the catalog.
type Target int

const (
	Create     Target = 1 // vanilla structure NBT, as written by Create and structure blocks
	Litematica Target = 2
	WorldEdit  Target = 3 // Sponge .schem
	Gadgets    Target = 4 // Building Gadgets template JSON
	Axiom      Target = 5 // Axiom blueprint
)

var targetNames = map[Target]string{
	Create:     "create",
	Litematica: "litematica",
	WorldEdit:  "worldedit",
	Gadgets:    "gadgets",
	Axiom:      "axiom",
}

var targetExtensions = map[Target]string{
	Create:     ".nbt",
	Litematica: ".litematic",
	WorldEdit:  ".schem",
	Gadgets:    ".json",
	Axiom:      ".bp",
}

func (t Target) String() string {
	if name, ok := targetNames[t]; ok {
		return name
	}
	return "target(" + strconv.Itoa(int(t)) + ")"
}

// Valid reports whether t is a known target.
func (t Target) Valid() bool {
	_, ok := targetNames[t]
	return ok
}

// Extension returns the file extension of the target, including the dot.
func (t Target) Extension() string {
	return targetExtensions[t]
}

// TargetOf converts a numeric selector.
func TargetOf(selector int) (Target, error) {
	t := Target(selector)
	if !t.Valid() {
		return 0, fmt.Errorf("%w: %d", ErrUnsupportedTarget, selector)
	}
	return t, nil
}

// ParseTarget accepts a target name, an alias or a numeric selector.
func ParseTarget(s string) (Target, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if n, err := strconv.Atoi(s); err == nil {
		return TargetOf(n)
	}
	switch s {
	case "nbt", "structure", "vanilla":
		return Create, nil
	case "litematic":
		return Litematica, nil
	case "schem", "sponge":
		return WorldEdit, nil
	case "json", "buildinggadgets":
		return Gadgets, nil
	case "bp", "blueprint":
		return Axiom, nil
	}
	for t, name := range targetNames {
		if name == s {
			return t, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnsupportedTarget, s)
}

// Targets returns every target in selector order.
func Targets() []Target {
	return []Target{Create, Litematica, WorldEdit, Gadgets, Axiom}
}
