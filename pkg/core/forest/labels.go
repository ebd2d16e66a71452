package forest

import (
	"maps"
	"slices"
)

// LabelSet is a set of intent labels. It carries confirmation across
// rebuilds: an intent whose label is in the prior set is re-confirmed.
type LabelSet map[string]struct{}

// NewLabelSet returns a set containing labels.
func NewLabelSet(labels ...string) LabelSet {
	s := make(LabelSet, len(labels))
	for _, l := range labels {
		s[l] = struct{}{}
	}
	return s
}

// Has reports whether label is in the set. A nil set is empty.
func (s LabelSet) Has(label string) bool {
	_, ok := s[label]
	return ok
}

// Add inserts label.
func (s LabelSet) Add(label string) { s[label] = struct{}{} }

// Labels returns the labels sorted.
func (s LabelSet) Labels() []string { return slices.Sorted(maps.Keys(s)) }

// Len returns the set size.
func (s LabelSet) Len() int { return len(s) }

// ConfirmedLabels returns the labels of every confirmed intent node.
func (f *Forest) ConfirmedLabels() LabelSet {
	s := LabelSet{}
	for _, id := range f.order {
		n := f.nodes[id]
		if n.Type.IsIntent() && n.Confirmed {
			s.Add(n.Label)
		}
	}
	return s
}
