package domain

import "strings"

// Label is the classifier's closed output vocabulary: the catalog
// item names plus LabelNone for "no recognizable item requested".
type Label string

const (
	LabelSoda        Label = "soda"
	LabelOrangeJuice Label = "orangejuice"
	LabelWater       Label = "water"
	LabelNone        Label = "none"
)

// ParseLabel normalizes a raw classifier token into a Label. Anything
// outside the vocabulary maps to LabelNone.
func ParseLabel(s string) Label {
	switch Label(strings.ToLower(strings.TrimSpace(s))) {
	case LabelSoda:
		return LabelSoda
	case LabelOrangeJuice:
		return LabelOrangeJuice
	case LabelWater:
		return LabelWater
	default:
		return LabelNone
	}
}

// Known reports whether the label names a catalog item.
func (l Label) Known() bool {
	return l != LabelNone && l != ""
}

func (l Label) String() string {
	return string(l)
}
