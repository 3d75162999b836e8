package pipeline

import "sort"

// LabelTable maps demand classes to display labels.
type LabelTable map[int]string

// DefaultLabels returns the demand level labels used on the result page.
func DefaultLabels() LabelTable {
	return LabelTable{
		0: "Low 📉",
		1: "Medium 📊",
		2: "High 📈",
	}
}

// Lookup returns the label for class.
func (t LabelTable) Lookup(class int) (string, bool) {
	label, ok := t[class]
	return label, ok
}

// Has reports whether class has a label.
func (t LabelTable) Has(class int) bool {
	_, ok := t[class]
	return ok
}

// Labels returns all labels ordered by class.
func (t LabelTable) Labels() []string {
	classes := make([]int, 0, len(t))
	for c := range t {
		classes = append(classes, c)
	}
	sort.Ints(classes)

	labels := make([]string, len(classes))
	for i, c := range classes {
		labels[i] = t[c]
	}
	return labels
}
