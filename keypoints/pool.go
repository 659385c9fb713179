// Package keypoints - Binds loose 2D keypoints to the region they belong to.
package keypoints

import (
	"strings"

	"github.com/nvr-ai/go-cocokit/coco"
	"github.com/nvr-ai/go-cocokit/common"
	"github.com/pkg/errors"
)

// Candidate is a labeled point waiting for a container.
type Candidate struct {
	Label string
	Point common.Point
}

// Pool holds the candidate points of one frame or image in insertion order.
// Binding removes a point so no other container can claim it.
type Pool struct {
	candidates []Candidate
}

// NewPool returns a pool holding the given candidates.
func NewPool(candidates ...Candidate) *Pool {
	return &Pool{candidates: append([]Candidate(nil), candidates...)}
}

// Add appends a candidate.
func (p *Pool) Add(label string, pt common.Point) {
	p.candidates = append(p.candidates, Candidate{Label: label, Point: pt})
}

// Len returns the number of unbound candidates.
func (p *Pool) Len() int {
	return len(p.candidates)
}

// Candidates returns the unbound candidates.
func (p *Pool) Candidates() []Candidate {
	return p.candidates
}

// EnsureEmpty fails with ErrDataQuality when any candidate was never bound.
func (p *Pool) EnsureEmpty() error {
	if len(p.candidates) == 0 {
		return nil
	}
	labels := make([]string, len(p.candidates))
	for i, c := range p.candidates {
		labels[i] = c.Label
	}
	return errors.Wrapf(coco.ErrDataQuality, "%d unbounded keypoints: %s",
		len(labels), strings.Join(labels, ", "))
}

func (p *Pool) remove(indices map[int]bool) {
	kept := p.candidates[:0]
	for i, c := range p.candidates {
		if !indices[i] {
			kept = append(kept, c)
		}
	}
	p.candidates = kept
}
