package term

// Labels tracks a slice of terms and their index locations that match up
// with the ordering of the coefficients assigned to each of these terms.
type Labels struct {
	idx    map[string]int
	labels []Term
}

func NewLabels(labels []Term) *Labels {
	idx := make(map[string]int)
	for i := 0; i < len(labels); i++ {
		idx[labels[i].String()] = i
	}
	tl := &Labels{
		labels: labels,
		idx:    idx,
	}
	return tl
}

func (l *Labels) Len() int {
	if l == nil {
		return 0
	}
	return len(l.labels)
}

func (l *Labels) Labels() []Term {
	if l == nil {
		return nil
	}
	labels := make([]Term, len(l.labels))
	copy(labels, l.labels)
	return labels
}

func (l *Labels) Index(label Term) (int, bool) {
	if l == nil {
		return -1, false
	}
	if idx, exists := l.idx[label.String()]; exists {
		return idx, exists
	}
	return -1, false
}
