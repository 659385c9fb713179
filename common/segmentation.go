package common

// Segmentation is a set of polygons describing one region. A region made of
// several disjoint parts carries one polygon per part.
type Segmentation []Polygon

// SegmentationFromFlat builds a segmentation from COCO's list of flat
// coordinate lists.
func SegmentationFromFlat(flat [][]float64) Segmentation {
	if len(flat) == 0 {
		return nil
	}
	s := make(Segmentation, 0, len(flat))
	for _, f := range flat {
		s = append(s, PolygonFromFlat(f))
	}
	return s
}

// Flat returns the COCO list-of-flat-lists layout.
func (s Segmentation) Flat() [][]float64 {
	flat := make([][]float64, 0, len(s))
	for _, p := range s {
		flat = append(flat, p.Flat())
	}
	return flat
}

// IsEmpty reports whether the segmentation has no points at all.
func (s Segmentation) IsEmpty() bool {
	for _, p := range s {
		if len(p) > 0 {
			return false
		}
	}
	return true
}

// ValidOnly drops polygons with fewer than three points.
func (s Segmentation) ValidOnly() Segmentation {
	var out Segmentation
	for _, p := range s {
		if p.Valid() {
			out = append(out, p)
		}
	}
	return out
}

// Bounds returns the minimal box enclosing every polygon.
func (s Segmentation) Bounds() BoundingBox {
	var (
		out   BoundingBox
		first = true
	)
	for _, p := range s {
		if len(p) == 0 {
			continue
		}
		if first {
			out = p.Bounds()
			first = false
			continue
		}
		out = out.Union(p.Bounds())
	}
	return out
}

// Area sums the polygon areas.
func (s Segmentation) Area() float64 {
	total := 0.0
	for _, p := range s {
		total += p.Area()
	}
	return total
}

// ContainsPoint reports whether any polygon contains pt.
func (s Segmentation) ContainsPoint(pt Point) bool {
	for _, p := range s {
		if p.ContainsPoint(pt) {
			return true
		}
	}
	return false
}

// Translate shifts every polygon by offset.
func (s Segmentation) Translate(offset Point) Segmentation {
	if s == nil {
		return nil
	}
	out := make(Segmentation, len(s))
	for i, p := range s {
		out[i] = p.Translate(offset)
	}
	return out
}

// Union returns the polygon set of s and other.
func (s Segmentation) Union(other Segmentation) Segmentation {
	out := make(Segmentation, 0, len(s)+len(other))
	out = append(out, s...)
	return append(out, other...)
}
