package match

import (
	"errors"

	"github.com/projectfinder/matching/pkg/types"
)

// ErrMatchingUnavailable is the single error kind surfaced to API callers
// for any internal failure during a matching operation. The underlying
// cause is logged with full detail; callers may treat the failure as
// retryable but get no finer-grained cause.
var ErrMatchingUnavailable = errors.New("matching service unavailable")

// DefaultMinScore is the subsystem-wide compatibility floor applied when
// a caller does not set an explicit minimum.
const DefaultMinScore = 0.3

// DefaultTopK is the default result count for ranking calls.
const DefaultTopK = 10

// DefaultRecommendationTopK is the default result count per side of a
// recommendation bundle.
const DefaultRecommendationTopK = 5

// Options configures a ranking call.
type Options struct {
	// TopK is the maximum number of results to return (default: the
	// matcher's configured top-k, 10 out of the box).
	TopK int

	// MinScore is the minimum compatibility score in (0, 1]. Zero or
	// negative selects the matcher's configured floor, 0.3 out of the
	// box.
	MinScore float64
}

// Defaults holds the matcher-wide fallback values applied to ranking
// calls that leave Options fields unset. Zero fields fall back to the
// package constants.
type Defaults struct {
	// TopK is the default result count for ranking calls.
	TopK int

	// MinScore is the subsystem-wide compatibility floor.
	MinScore float64

	// RecommendationTopK is the default result count per side of a
	// recommendation bundle.
	RecommendationTopK int
}

// Normalize fills unset Defaults fields with the package constants and
// clamps MinScore into (0, 1].
func (d *Defaults) Normalize() {
	if d.TopK <= 0 {
		d.TopK = DefaultTopK
	}
	if d.MinScore <= 0 {
		d.MinScore = DefaultMinScore
	}
	if d.MinScore > 1 {
		d.MinScore = 1
	}
	if d.RecommendationTopK <= 0 {
		d.RecommendationTopK = DefaultRecommendationTopK
	}
}

// apply resolves per-call Options against the configured defaults.
func (d Defaults) apply(o Options) Options {
	if o.TopK <= 0 {
		o.TopK = d.TopK
	}
	if o.MinScore <= 0 {
		o.MinScore = d.MinScore
	}
	if o.MinScore > 1 {
		o.MinScore = 1
	}
	return o
}

// ProfileMatch pairs a profile snapshot with its compatibility score.
type ProfileMatch struct {
	Profile types.Profile `json:"profile"`
	Score   float64       `json:"score"`
}

// ProjectMatch pairs a project snapshot with its compatibility score.
type ProjectMatch struct {
	Project types.Project `json:"project"`
	Score   float64       `json:"score"`
}

// Recommendations bundles both recommendation directions for a profile.
type Recommendations struct {
	// MatchingProjects are projects ranked against the profile.
	MatchingProjects []ProjectMatch `json:"matching_projects"`

	// SimilarProfiles are other profiles ranked against the profile,
	// never including the profile itself.
	SimilarProfiles []ProfileMatch `json:"similar_profiles"`
}
