package ndds

import (
	"github.com/nvr-ai/go-cocokit/coco"
	"github.com/pkg/errors"
)

// ObjectInstance is one raw object together with its parsed name.
type ObjectInstance struct {
	ParsedName
	Raw RawInstanceObject
}

// InstanceGroup collects the parts that share an instance name, plus the
// objects contained in that instance (keypoints).
type InstanceGroup struct {
	Name      string
	Parts     []*ObjectInstance
	Contained []*ObjectInstance
}

// LabeledObject collects the instance groups of one object name, in order of
// first appearance.
type LabeledObject struct {
	Name   string
	Groups []*InstanceGroup
	index  map[string]*InstanceGroup
}

// Group returns the instance group with the given name.
func (o *LabeledObject) Group(instance string) (*InstanceGroup, bool) {
	g, ok := o.index[instance]
	return g, ok
}

func (o *LabeledObject) add(inst *ObjectInstance) error {
	g, ok := o.index[inst.Instance]
	if !ok {
		g = &InstanceGroup{Name: inst.Instance}
		o.index[inst.Instance] = g
		o.Groups = append(o.Groups, g)
	}
	for _, p := range g.Parts {
		if p.Token == inst.Token {
			return errors.Wrapf(coco.ErrIntegrity, "object %q: duplicate %q for instance %q",
				o.Name, inst.Token, inst.Instance)
		}
	}
	g.Parts = append(g.Parts, inst)
	return nil
}

// LabeledObjectHandler is the parsed hierarchy of one frame:
// object name, then instance name, then contained objects.
type LabeledObjectHandler struct {
	Objects []*LabeledObject
	index   map[string]*LabeledObject
}

// Object returns the labeled object with the given name.
func (h *LabeledObjectHandler) Object(name string) (*LabeledObject, bool) {
	o, ok := h.index[name]
	return o, ok
}

// Len returns the number of labeled objects.
func (h *LabeledObjectHandler) Len() int {
	return len(h.Objects)
}

func (h *LabeledObjectHandler) object(name string) *LabeledObject {
	o, ok := h.index[name]
	if !ok {
		o = &LabeledObject{Name: name, index: make(map[string]*InstanceGroup)}
		h.index[name] = o
		h.Objects = append(h.Objects, o)
	}
	return o
}

// Parse builds the object hierarchy of one frame.
//
// Containers are registered first, so a contained object may come before its
// container in raw order.
//
// Arguments:
//   - raw: The frame's objects.
//   - rule: The naming rule of the class names.
//   - delimiter: The class name token separator.
//
// Returns:
//   - The hierarchy.
//   - ErrInvalidInput for an unparsable class name, ErrIntegrity for a duplicate
//     part or a contained object whose container was never registered.
func Parse(raw []RawInstanceObject, rule, delimiter string) (*LabeledObjectHandler, error) {
	parsed := make([]*ObjectInstance, len(raw))
	for i, obj := range raw {
		name, err := ParseClassName(obj.ClassName, rule, delimiter)
		if err != nil {
			return nil, err
		}
		parsed[i] = &ObjectInstance{ParsedName: name, Raw: obj}
	}

	h := &LabeledObjectHandler{index: make(map[string]*LabeledObject)}
	for _, inst := range parsed {
		if inst.IsContained() {
			continue
		}
		if inst.Type == TypeKeypoint {
			return nil, errors.Wrapf(coco.ErrInvalidInput, "keypoint %q names no container", inst.Raw.ClassName)
		}
		if err := h.object(inst.Object).add(inst); err != nil {
			return nil, err
		}
	}

	for _, inst := range parsed {
		if !inst.IsContained() {
			continue
		}
		obj, ok := h.index[inst.Object]
		if !ok {
			return nil, errors.Wrapf(coco.ErrIntegrity, "%q: no object %q", inst.Raw.ClassName, inst.Object)
		}
		g, ok := obj.Group(inst.Instance)
		if !ok {
			return nil, errors.Wrapf(coco.ErrIntegrity, "%q: object %q has no instance %q",
				inst.Raw.ClassName, inst.Object, inst.Instance)
		}
		g.Contained = append(g.Contained, inst)
	}

	return h, nil
}
