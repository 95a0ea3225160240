package layout

import (
	"math"
	"strings"

	"github.com/matzehuels/blendview/pkg/errors"
)

// Default values for Settings.
const (
	DefaultMaxNormalizedNodeSize = 0.8
	DefaultMaxNodeSizeInPixels   = 100
	DefaultAspectRatio           = 1.5
)

// Orientation selects which screen edge the roots are drawn against.
type Orientation uint8

const (
	// TopDown draws roots at the top and inputs below them.
	TopDown Orientation = iota
	// BottomUp draws roots at the bottom.
	BottomUp
	// LeftToRight draws roots on the left.
	LeftToRight
	// RightToLeft draws roots on the right, inputs flowing toward them.
	RightToLeft
)

var orientationNames = []string{"top-down", "bottom-up", "left-to-right", "right-to-left"}

func (o Orientation) String() string {
	if int(o) < len(orientationNames) {
		return orientationNames[o]
	}
	return "unknown"
}

// Horizontal reports whether the depth axis runs horizontally.
func (o Orientation) Horizontal() bool {
	return o == LeftToRight || o == RightToLeft
}

// ParseOrientation accepts the names returned by String, case-insensitively.
// The shorthands "tb", "bt", "lr" and "rl" are also accepted.
func ParseOrientation(s string) (Orientation, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "top-down", "tb":
		return TopDown, nil
	case "bottom-up", "bt":
		return BottomUp, nil
	case "left-to-right", "lr":
		return LeftToRight, nil
	case "right-to-left", "rl":
		return RightToLeft, nil
	}
	return TopDown, errors.New(errors.ErrCodeInvalidSettings, "unknown orientation %q", s)
}

// Settings are the layout parameters a user can tune.
type Settings struct {
	// MaxNormalizedNodeSize is the largest fraction of a lane a node may
	// cover, in (0,1].
	MaxNormalizedNodeSize float64

	// MaxNodeSizeInPixels caps the node width in pixels.
	MaxNodeSizeInPixels float64

	// AspectRatio is node width divided by node height.
	AspectRatio float64

	Orientation Orientation
}

// DefaultSettings returns the settings used when nothing is configured.
func DefaultSettings() Settings {
	return Settings{
		MaxNormalizedNodeSize: DefaultMaxNormalizedNodeSize,
		MaxNodeSizeInPixels:   DefaultMaxNodeSizeInPixels,
		AspectRatio:           DefaultAspectRatio,
		Orientation:           TopDown,
	}
}

// Validate checks every field is in range.
func (s Settings) Validate() error {
	switch {
	case !finite(s.MaxNormalizedNodeSize) || s.MaxNormalizedNodeSize <= 0 || s.MaxNormalizedNodeSize > 1:
		return errors.New(errors.ErrCodeInvalidSettings, "max normalized node size must be in (0,1]: %v", s.MaxNormalizedNodeSize)
	case !finite(s.MaxNodeSizeInPixels) || s.MaxNodeSizeInPixels <= 0:
		return errors.New(errors.ErrCodeInvalidSettings, "max node size in pixels must be positive: %v", s.MaxNodeSizeInPixels)
	case !finite(s.AspectRatio) || s.AspectRatio <= 0:
		return errors.New(errors.ErrCodeInvalidSettings, "aspect ratio must be positive: %v", s.AspectRatio)
	case s.Orientation > RightToLeft:
		return errors.New(errors.ErrCodeInvalidSettings, "unknown orientation %d", s.Orientation)
	}
	return nil
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
