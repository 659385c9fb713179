package ndds

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/nvr-ai/go-cocokit/coco"
	"github.com/pkg/errors"
)

// RuleTypeObjectInstanceContained names classes as
// {type}_{object}_{instance}[_{contained}].
const RuleTypeObjectInstanceContained = "type_object_instance_contained"

// ObjectType is what an NDDS object contributes to its instance.
type ObjectType string

const (
	// TypeSegmentation objects are decoded from the instance mask.
	TypeSegmentation ObjectType = "seg"
	// TypeBBox objects only contribute their bounding box.
	TypeBBox ObjectType = "bbox"
	// TypeKeypoint objects contribute one point.
	TypeKeypoint ObjectType = "kpt"
)

// NoPart marks a type token without a part number.
const NoPart = -1

// ParsedName is a class name split by a naming rule.
type ParsedName struct {
	// Token is the raw type token, e.g. "seg1".
	Token     string
	Type      ObjectType
	Part      int
	Object    string
	Instance  string
	Contained string
}

// IsContained reports whether the name refers to something inside another instance.
func (n ParsedName) IsContained() bool {
	return n.Contained != ""
}

// ParseClassName splits a class name according to rule.
//
// Arguments:
//   - name: The NDDS class name, e.g. "seg0_bolt_A" or "kpt_hand_L_thumb".
//   - rule: The naming rule.
//   - delimiter: The token separator.
//
// Returns:
//   - The parsed tokens.
//   - ErrInvalidInput for an unknown rule, a wrong token count or an unknown type.
//
// @example
// n, _ := ParseClassName("seg2_bolt_A", RuleTypeObjectInstanceContained, "_")
// // n.Type == TypeSegmentation, n.Part == 2, n.Object == "bolt", n.Instance == "A"
func ParseClassName(name, rule, delimiter string) (ParsedName, error) {
	if rule != RuleTypeObjectInstanceContained {
		return ParsedName{}, errors.Wrapf(coco.ErrInvalidInput, "unknown naming rule %q", rule)
	}
	if delimiter == "" {
		return ParsedName{}, errors.Wrap(coco.ErrInvalidInput, "empty naming delimiter")
	}

	tokens := strings.Split(name, delimiter)
	if len(tokens) < 3 || len(tokens) > 4 {
		return ParsedName{}, errors.Wrapf(coco.ErrInvalidInput,
			"class name %q has %d tokens, want 3 or 4", name, len(tokens))
	}
	for _, tok := range tokens {
		if tok == "" {
			return ParsedName{}, errors.Wrapf(coco.ErrInvalidInput, "class name %q has an empty token", name)
		}
	}

	typ, part, err := parseTypeToken(tokens[0])
	if err != nil {
		return ParsedName{}, errors.Wrapf(err, "class name %q", name)
	}

	parsed := ParsedName{
		Token:    tokens[0],
		Type:     typ,
		Part:     part,
		Object:   tokens[1],
		Instance: tokens[2],
	}
	if len(tokens) == 4 {
		parsed.Contained = tokens[3]
	}
	return parsed, nil
}

func parseTypeToken(token string) (ObjectType, int, error) {
	cut := strings.IndexFunc(token, unicode.IsDigit)
	base, suffix := token, ""
	if cut >= 0 {
		base, suffix = token[:cut], token[cut:]
	}

	typ := ObjectType(base)
	switch typ {
	case TypeSegmentation, TypeBBox, TypeKeypoint:
	default:
		return "", NoPart, errors.Wrapf(coco.ErrInvalidInput, "unknown object type %q", token)
	}

	if suffix == "" {
		return typ, NoPart, nil
	}
	part, err := strconv.Atoi(suffix)
	if err != nil {
		return "", NoPart, errors.Wrapf(coco.ErrInvalidInput, "bad part number in %q", token)
	}
	return typ, part, nil
}
