package ndds

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Config represents the configuration for NDDS to COCO conversion.
type Config struct {
	// NamingRule is the class name convention. Only RuleTypeObjectInstanceContained is known.
	NamingRule string `json:"naming_rule" yaml:"naming_rule"`

	// Delimiter separates the class name tokens.
	Delimiter string `json:"delimiter" yaml:"delimiter"`

	// ColorInterval is the per-channel tolerance when matching instance colors in the mask.
	ColorInterval int `json:"color_interval" yaml:"color_interval"`

	// ExcludeInvalidPolygons drops decoded polygons with fewer than 3 points.
	ExcludeInvalidPolygons bool `json:"exclude_invalid_polygons" yaml:"exclude_invalid_polygons"`

	// AllowUnfoundSeg tolerates visible, in-frame instances with no mask pixels.
	AllowUnfoundSeg bool `json:"allow_unfound_seg" yaml:"allow_unfound_seg"`

	// DefaultVisibilityThreshold is the minimum visibility of an instance part.
	DefaultVisibilityThreshold float64 `json:"default_visibility_threshold" yaml:"default_visibility_threshold"`

	// VisibilityThresholds overrides the default per object name.
	VisibilityThresholds map[string]float64 `json:"visibility_thresholds" yaml:"visibility_thresholds"`

	// BBoxAreaThreshold is the minimum box area of a unioned instance.
	BBoxAreaThreshold float64 `json:"bbox_area_threshold" yaml:"bbox_area_threshold"`

	// EnsureNoUnboundedKeypoints makes keypoints outside their container fatal.
	EnsureNoUnboundedKeypoints bool `json:"ensure_no_unbounded_kpts" yaml:"ensure_no_unbounded_kpts"`

	// IgnoreUnknownObjects skips objects that have no category instead of failing.
	IgnoreUnknownObjects bool `json:"ignore_unknown_objects" yaml:"ignore_unknown_objects"`
}

// DefaultConfig returns the conversion settings used when no file is given.
func DefaultConfig() Config {
	return Config{
		NamingRule:                 RuleTypeObjectInstanceContained,
		Delimiter:                  "_",
		ColorInterval:              1,
		ExcludeInvalidPolygons:     true,
		DefaultVisibilityThreshold: 0,
		VisibilityThresholds:       map[string]float64{},
		EnsureNoUnboundedKeypoints: true,
	}
}

// VisibilityThreshold returns the threshold that applies to object.
func (c Config) VisibilityThreshold(object string) float64 {
	if v, ok := c.VisibilityThresholds[object]; ok {
		return v
	}
	return c.DefaultVisibilityThreshold
}

// LoadConfig reads a YAML file on top of DefaultConfig.
//
// Arguments:
// - path: Path to the YAML file.
//
// Returns:
// - The merged configuration.
// - error if the file cannot be read or parsed.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrapf(err, "read config %s", path)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrapf(err, "parse config %s", path)
	}
	return cfg, nil
}
