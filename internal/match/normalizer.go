// Package match implements the semantic matching engine: text
// normalization, similarity ranking between profiles and projects, and
// pairwise compatibility scoring.
package match

import (
	"strings"

	"github.com/projectfinder/matching/pkg/types"
)

// NormalizeProfile projects a profile into one descriptive string for
// embedding. The field order is fixed so identical profiles always
// normalize identically; missing optional fields render as empty
// segments.
func NormalizeProfile(p types.Profile) string {
	segments := []string{
		p.FullName,
		p.Bio,
		strings.Join(p.Skills, ", "),
		p.Experience,
		p.Education,
		strings.Join(p.Technologies, ", "),
		p.Role,
		strings.Join(p.Languages, ", "),
	}
	return strings.Join(segments, "\n")
}

// NormalizeProject projects a project into one descriptive string for
// embedding, with the same stable-order guarantees as NormalizeProfile.
func NormalizeProject(p types.Project) string {
	segments := []string{
		p.Title,
		p.Description,
		strings.Join(p.Technologies, ", "),
		strings.Join(p.Roles, ", "),
		string(p.Status),
	}
	return strings.Join(segments, "\n")
}
