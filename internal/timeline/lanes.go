package timeline

// OthersLane collects every point whose category has no lane of its own.
const OthersLane = "Others"

// Lanes is the ordered list of vertical tracks of the chart.
type Lanes struct {
	names []string
	index map[string]int
}

// NewLanes builds the lane list from names, dropping duplicates and
// appending OthersLane last when it is not already present.
func NewLanes(names []string) *Lanes {
	l := &Lanes{index: make(map[string]int, len(names)+1)}
	for _, n := range names {
		if n == OthersLane {
			continue
		}
		if _, ok := l.index[n]; ok {
			continue
		}
		l.index[n] = len(l.names)
		l.names = append(l.names, n)
	}
	l.index[OthersLane] = len(l.names)
	l.names = append(l.names, OthersLane)
	return l
}

func (l *Lanes) Names() []string {
	return append([]string(nil), l.names...)
}

func (l *Lanes) Len() int {
	return len(l.names)
}

// Index returns the lane of name, or the Others lane.
func (l *Lanes) Index(name string) int {
	if i, ok := l.index[name]; ok {
		return i
	}
	return len(l.names) - 1
}

// Y is the vertical centre of the lane of name on a track of the given
// height: (index + 0.5) * (trackHeight / lanes). A fixed row layout is the
// case trackHeight = rowHeight * Len().
func (l *Lanes) Y(name string, trackHeight float64) float64 {
	return (float64(l.Index(name)) + 0.5) * (trackHeight / float64(len(l.names)))
}

// Known reports whether name has a dedicated lane.
func (l *Lanes) Known(name string) bool {
	i, ok := l.index[name]
	return ok && i != len(l.names)-1
}
