package taskz

import (
	"slices"
	"strings"
)

// displaySeparator joins component names in a list's display form.
const displaySeparator = " -> "

// ComponentList is an immutable ordered sequence of components describing
// one pipeline's step order. Every grow operation (AddAfter, AddBefore,
// Concat, Then) returns a new list and leaves its operands untouched, so a
// list and any component in it can be reused across pipelines freely.
//
// A ComponentList always holds at least one component; there is no legal
// zero-length state.
type ComponentList struct {
	components []*Component
}

// NewComponentList creates a list from one or more components in order.
func NewComponentList(first *Component, rest ...*Component) *ComponentList {
	components := make([]*Component, 0, 1+len(rest))
	components = append(components, first)
	components = append(components, rest...)
	return &ComponentList{components: components}
}

// First returns the component executed first when running forward.
func (l *ComponentList) First() *Component {
	return l.components[0]
}

// Last returns the component executed last when running forward.
func (l *ComponentList) Last() *Component {
	return l.components[len(l.components)-1]
}

// Len returns the number of components in the list.
func (l *ComponentList) Len() int {
	return len(l.components)
}

// Components returns the components in forward execution order.
// The returned slice is a copy; mutating it does not affect the list.
func (l *ComponentList) Components() []*Component {
	return slices.Clone(l.components)
}

// Reversed returns the components in backward execution order, the exact
// reverse of Components.
func (l *ComponentList) Reversed() []*Component {
	reversed := slices.Clone(l.components)
	slices.Reverse(reversed)
	return reversed
}

// Names returns the display names of all components in forward order.
func (l *ComponentList) Names() []Name {
	names := make([]Name, len(l.components))
	for i, c := range l.components {
		names[i] = c.identity.Name()
	}
	return names
}

// AddAfter returns a new list with c appended after the current last
// component.
func (l *ComponentList) AddAfter(c *Component) *ComponentList {
	components := make([]*Component, 0, len(l.components)+1)
	components = append(components, l.components...)
	components = append(components, c)
	return &ComponentList{components: components}
}

// AddBefore returns a new list with c prepended before the current first
// component.
func (l *ComponentList) AddBefore(c *Component) *ComponentList {
	components := make([]*Component, 0, len(l.components)+1)
	components = append(components, c)
	components = append(components, l.components...)
	return &ComponentList{components: components}
}

// Concat returns a new list spanning this list's components followed by
// other's.
func (l *ComponentList) Concat(other *ComponentList) *ComponentList {
	components := make([]*Component, 0, len(l.components)+len(other.components))
	components = append(components, l.components...)
	components = append(components, other.components...)
	return &ComponentList{components: components}
}

// Then chains this list with the next composable value, returning a new
// list spanning both.
func (l *ComponentList) Then(next Composable) *ComponentList {
	return l.Concat(next.toList())
}

// ToTask promotes the list to an executable task.
func (l *ComponentList) ToTask(identity Identity) *Task {
	return NewTask(identity, l)
}

// String renders the ordered component names joined by an arrow separator,
// substituting a placeholder for unnamed components.
func (l *ComponentList) String() string {
	parts := make([]string, len(l.components))
	for i, c := range l.components {
		parts[i] = c.identity.String()
	}
	return strings.Join(parts, displaySeparator)
}

func (l *ComponentList) toList() *ComponentList {
	return l
}
