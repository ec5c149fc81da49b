package gcheap

// Generation tags the role a Segment plays in the collector.
type Generation uint8

const (
	Gen0 Generation = iota
	Gen1
	Gen2
	Loh
	Region
)

func (g Generation) String() string {
	switch g {
	case Gen0:
		return "Gen0"
	case Gen1:
		return "Gen1"
	case Gen2:
		return "Gen2"
	case Loh:
		return "Loh"
	case Region:
		return "Region"
	default:
		return "Unknown"
	}
}

// Ephemeral reports whether g is subject to minor GC.
func (g Generation) Ephemeral() bool {
	return g == Gen0 || g == Gen1
}

// Old reports whether g is a remembered-set source for minor GC.
func (g Generation) Old() bool {
	return g == Gen1 || g == Gen2 || g == Loh
}

// Managed reports whether g is one of the collector's own generations,
// as opposed to a non-moving Region attached alongside them.
func (g Generation) Managed() bool {
	return g != Region
}
