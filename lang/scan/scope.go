package scan

// Markers is an ordered list of scope events. A positive value v records an
// opener at offset v-1, a negative value -v a closer at offset v-1. The shift
// by one keeps offset 0 distinguishable from "no marker".
type Markers []int

func (m *Markers) Open(offset int) {
	*m = append(*m, offset+1)
}

func (m *Markers) Close(offset int) {
	*m = append(*m, -(offset + 1))
}

// Net returns openers minus closers.
func (m Markers) Net() int {
	n := 0
	for _, v := range m {
		if v > 0 {
			n++
		} else {
			n--
		}
	}
	return n
}

// FindOpenScope returns the innermost opener that is never closed, scanning
// from the end of the list, or 0 when every opener is matched.
func FindOpenScope(markers []int) int {
	closed := 0
	for i := len(markers) - 1; i >= 0; i-- {
		v := markers[i]
		if v < 0 {
			closed++
			continue
		}
		if closed > 0 {
			closed--
			continue
		}
		return v
	}
	return 0
}

// FindCloseScope returns (as a positive value) the first closer that has no
// opener before it, or 0 when there is none.
func FindCloseScope(markers []int) int {
	opened := 0
	for _, v := range markers {
		if v > 0 {
			opened++
			continue
		}
		if opened > 0 {
			opened--
			continue
		}
		return -v
	}
	return 0
}
