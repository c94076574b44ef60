package models

import "strconv"

type groupSelectionKind int

const (
	selectionUnchanged groupSelectionKind = iota
	selectionNone
	selectionSet
)

// GroupSelection is the tri-state group field of a todo update. The three
// states are distinguishable on the wire: an unchanged selection omits the
// field entirely, an explicit "no group" sends an empty value, and an assigned
// group sends the id (carried as a string, matching the API contract).
//
// The zero value is GroupUnchanged.
type GroupSelection struct {
	kind groupSelectionKind
	id   uint
}

// GroupUnchanged leaves the todo's group as it is; the update omits the field.
func GroupUnchanged() GroupSelection {
	return GroupSelection{kind: selectionUnchanged}
}

// GroupNone detaches the todo from its group.
func GroupNone() GroupSelection {
	return GroupSelection{kind: selectionNone}
}

// GroupID assigns the todo to the group with the given id.
func GroupID(id uint) GroupSelection {
	return GroupSelection{kind: selectionSet, id: id}
}

// SelectGroup converts an optional group reference into the selection that
// would set it: nil becomes GroupNone, anything else GroupID.
func SelectGroup(id *uint) GroupSelection {
	if id == nil {
		return GroupNone()
	}
	return GroupID(*id)
}

// Wire returns the value to place in the update body and whether the field
// should be present at all. GroupUnchanged returns ("", false); GroupNone
// returns ("", true); GroupID(n) returns (formatted id, true).
func (s GroupSelection) Wire() (string, bool) {
	switch s.kind {
	case selectionNone:
		return "", true
	case selectionSet:
		return strconv.FormatUint(uint64(s.id), 10), true
	default:
		return "", false
	}
}

// Unchanged reports whether the selection leaves the group as it is.
func (s GroupSelection) Unchanged() bool {
	return s.kind == selectionUnchanged
}

// Target returns the group reference a changed selection points at: nil for
// GroupNone, the id for GroupID. Meaningless for an unchanged selection.
func (s GroupSelection) Target() *uint {
	if s.kind != selectionSet {
		return nil
	}
	id := s.id
	return &id
}
