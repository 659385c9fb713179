package keypoints

import (
	"github.com/nvr-ai/go-cocokit/coco"
	"github.com/nvr-ai/go-cocokit/common"
	"github.com/pkg/errors"
)

// Result is the outcome of binding one container.
type Result struct {
	// Keypoints and Labels are the bound points, in pool order.
	Keypoints []common.Point
	Labels    []string
	// Postponed and PostponedLabels are the points inside the container whose
	// label the category does not know. They stay in the pool.
	Postponed       []common.Point
	PostponedLabels []string
}

// Bind assigns the pool's points that fall inside container to the slots of
// category.
//
// A point whose label is not one of the category's keypoints fails the whole
// bind with ErrInvalidInput when strict is set, and is postponed otherwise.
// Binding a label twice is always ErrIntegrity. Nothing is removed from the
// pool when Bind fails.
//
// Arguments:
//   - container: The region points must fall in (a box or a segmentation).
//   - category: The category whose keypoint labels define the slots.
//   - pool: Candidate points; bound points are removed from it.
//   - strict: Whether unknown labels are fatal.
//
// Returns:
//   - The bound and postponed points.
//   - ErrInvalidInput or ErrIntegrity as described above.
//
// Example:
//
// ```go
//
//	pool := keypoints.NewPool(keypoints.Candidate{Label: "eye", Point: common.Point{X: 5, Y: 5}})
//	res, err := keypoints.Bind(box, category, pool, true)
//	if err != nil {
//	    return err
//	}
//	ann.Keypoints = res.Ordered(category)
//
// ```
func Bind(container common.Region, category coco.Category, pool *Pool, strict bool) (*Result, error) {
	res := &Result{}
	bound := make(map[string]bool)
	taken := make(map[int]bool)

	for i, c := range pool.candidates {
		if !container.ContainsPoint(c.Point) {
			continue
		}
		if category.KeypointIndex(c.Label) < 0 {
			if strict {
				return nil, errors.Wrapf(coco.ErrInvalidInput,
					"keypoint %q at %v is not a keypoint of category %q", c.Label, c.Point, category.Name)
			}
			res.Postponed = append(res.Postponed, c.Point)
			res.PostponedLabels = append(res.PostponedLabels, c.Label)
			continue
		}
		if bound[c.Label] {
			return nil, errors.Wrapf(coco.ErrIntegrity,
				"keypoint %q bound twice in one %q region", c.Label, category.Name)
		}
		bound[c.Label] = true
		taken[i] = true
		res.Keypoints = append(res.Keypoints, c.Point)
		res.Labels = append(res.Labels, c.Label)
	}

	pool.remove(taken)
	return res, nil
}

// Len returns the number of bound points.
func (r *Result) Len() int {
	return len(r.Keypoints)
}

// Ordered returns one slot per category keypoint, in category order. Slots
// without a bound point hold the (0,0) sentinel with visibility 0.
func (r *Result) Ordered(category coco.Category) []common.Keypoint {
	out := make([]common.Keypoint, len(category.Keypoints))
	for i, label := range r.Labels {
		if slot := category.KeypointIndex(label); slot >= 0 {
			out[slot] = common.Keypoint{Point: r.Keypoints[i], Visibility: common.LabeledVisible}
		}
	}
	return out
}
