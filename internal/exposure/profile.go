package exposure

import (
	"fmt"
	"strings"
)

// Profile selects how the histogram builder guards dark texels and where
// it takes the image dimensions from.
type Profile int

const (
	// ProfileSampled queries the dimensions from the grid and sends
	// luminance below 5e-3 to bucket 0.
	ProfileSampled Profile = iota

	// ProfileParams takes the dimensions from HistogramParams and sends
	// luminance below 1e-6 to bucket 0.
	ProfileParams
)

// String returns the profile name used in configuration files.
func (p Profile) String() string {
	switch p {
	case ProfileSampled:
		return "sampled"
	case ProfileParams:
		return "params"
	default:
		return fmt.Sprintf("Profile(%d)", int(p))
	}
}

// Epsilon returns the luminance below which texels land in bucket 0.
func (p Profile) Epsilon() float32 {
	if p == ProfileParams {
		return 1e-6
	}
	return 5e-3
}

// ParseProfile parses a profile name. The empty string selects
// ProfileSampled.
func ParseProfile(s string) (Profile, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "sampled":
		return ProfileSampled, nil
	case "params":
		return ProfileParams, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownProfile, s)
}
