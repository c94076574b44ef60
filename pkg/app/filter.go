package app

import "github.com/tasklight/tasklight.go/pkg/models"

type filterMode int

const (
	filterAll filterMode = iota
	filterUngrouped
	filterGroup
)

// Filter is a purely client-side, non-persisted view over the already
// fetched todo list: everything, ungrouped only, or one specific group.
type Filter struct {
	mode    filterMode
	groupID uint
}

// FilterAll shows every todo.
func FilterAll() Filter { return Filter{mode: filterAll} }

// FilterUngrouped shows todos with no group reference.
func FilterUngrouped() Filter { return Filter{mode: filterUngrouped} }

// FilterGroup shows todos assigned to the given group.
func FilterGroup(id uint) Filter { return Filter{mode: filterGroup, groupID: id} }

func (f Filter) matches(t models.Todo) bool {
	switch f.mode {
	case filterUngrouped:
		return t.GroupID == nil
	case filterGroup:
		return t.GroupID != nil && *t.GroupID == f.groupID
	default:
		return true
	}
}
