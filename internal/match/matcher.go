package match

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/projectfinder/matching/internal/embedding"
	"github.com/projectfinder/matching/internal/index"
	"github.com/projectfinder/matching/internal/storage"
	"github.com/projectfinder/matching/pkg/types"
)

// Matcher ranks profiles against projects (and vice versa) by semantic
// similarity of their normalized descriptions. Every ranking call indexes
// the full current corpus from storage before querying, so results always
// reflect a point-in-time read.
//
// When the backing store implements storage.VectorSearcher (the pgvector
// Postgres backend does), ranking is delegated to the database; otherwise
// each call builds its own transient in-memory index, which makes
// concurrent calls race-free without shared locking.
type Matcher struct {
	profiles storage.ProfileStore
	projects storage.ProjectStore
	encoder  embedding.Generator
	searcher storage.VectorSearcher
	defaults Defaults

	// Serialize replace+search per collection on the storage-backed path;
	// the in-memory path needs no locking since its index is call-local.
	profileMu sync.Mutex
	projectMu sync.Mutex
}

// NewMatcher creates a matcher over the given corpus stores and encoder,
// using the package default top-k and score floor. If profiles also
// implements storage.VectorSearcher, database-side vector search is used
// automatically.
func NewMatcher(profiles storage.ProfileStore, projects storage.ProjectStore, encoder embedding.Generator) *Matcher {
	return NewMatcherWithDefaults(profiles, projects, encoder, Defaults{})
}

// NewMatcherWithDefaults creates a matcher whose unset per-call Options
// fall back to the given defaults instead of the package constants.
func NewMatcherWithDefaults(profiles storage.ProfileStore, projects storage.ProjectStore, encoder embedding.Generator, defaults Defaults) *Matcher {
	defaults.Normalize()
	m := &Matcher{
		profiles: profiles,
		projects: projects,
		encoder:  encoder,
		defaults: defaults,
	}
	if vs, ok := profiles.(storage.VectorSearcher); ok {
		m.searcher = vs
	}
	return m
}

// FindMatchingProfiles returns the profiles most compatible with the
// given project, best first. Results below opts.MinScore are dropped and
// scores are non-increasing across the returned slice. An empty profile
// corpus yields an empty result, not an error.
func (m *Matcher) FindMatchingProfiles(ctx context.Context, project types.Project, opts Options) ([]ProfileMatch, error) {
	opts = m.defaults.apply(opts)

	hits, err := m.rankProfiles(ctx, NormalizeProject(project), opts.TopK)
	if err != nil {
		log.Printf("ERROR: find matching profiles for project %s: %v", project.ID, err)
		return nil, fmt.Errorf("find matching profiles: %w", ErrMatchingUnavailable)
	}

	matches := make([]ProfileMatch, 0, len(hits))
	for _, hit := range hits {
		score := index.Similarity(hit.Distance)
		if score < opts.MinScore {
			continue
		}
		matches = append(matches, ProfileMatch{Profile: hit.Entity, Score: score})
	}
	return matches, nil
}

// FindMatchingProjects returns the projects most compatible with the
// given profile, best first, with the same contract as
// FindMatchingProfiles.
func (m *Matcher) FindMatchingProjects(ctx context.Context, profile types.Profile, opts Options) ([]ProjectMatch, error) {
	opts = m.defaults.apply(opts)

	hits, err := m.rankProjects(ctx, NormalizeProfile(profile), opts.TopK)
	if err != nil {
		log.Printf("ERROR: find matching projects for profile %s: %v", profile.ID, err)
		return nil, fmt.Errorf("find matching projects: %w", ErrMatchingUnavailable)
	}

	matches := make([]ProjectMatch, 0, len(hits))
	for _, hit := range hits {
		score := index.Similarity(hit.Distance)
		if score < opts.MinScore {
			continue
		}
		matches = append(matches, ProjectMatch{Project: hit.Entity, Score: score})
	}
	return matches, nil
}

// CalculateCompatibility computes the pairwise compatibility score
// between a project and a profile without an index lookup, using the same
// squared-Euclidean similarity transform as the ranking calls.
func (m *Matcher) CalculateCompatibility(ctx context.Context, project types.Project, profile types.Profile) (float64, error) {
	vectors, err := m.encoder.EmbedBatch(ctx, []string{
		NormalizeProject(project),
		NormalizeProfile(profile),
	})
	if err != nil {
		log.Printf("ERROR: compatibility of project %s and profile %s: %v", project.ID, profile.ID, err)
		return 0, fmt.Errorf("calculate compatibility: %w", ErrMatchingUnavailable)
	}
	if len(vectors) != 2 || len(vectors[0]) != len(vectors[1]) {
		log.Printf("ERROR: compatibility of project %s and profile %s: encoder returned inconsistent vectors", project.ID, profile.ID)
		return 0, fmt.Errorf("calculate compatibility: %w", ErrMatchingUnavailable)
	}

	return index.Similarity(index.SquaredDistance(vectors[0], vectors[1])), nil
}

// GetRecommendations returns the projects best matching the profile and
// the profiles most similar to it. The querying profile is never included
// among its own similar profiles.
func (m *Matcher) GetRecommendations(ctx context.Context, profile types.Profile, topK int) (*Recommendations, error) {
	if topK <= 0 {
		topK = m.defaults.RecommendationTopK
	}

	matchingProjects, err := m.FindMatchingProjects(ctx, profile, Options{TopK: topK})
	if err != nil {
		return nil, err
	}

	// Fetch one extra so the result stays full after self-exclusion.
	hits, err := m.rankProfiles(ctx, NormalizeProfile(profile), topK+1)
	if err != nil {
		log.Printf("ERROR: similar profiles for profile %s: %v", profile.ID, err)
		return nil, fmt.Errorf("get recommendations: %w", ErrMatchingUnavailable)
	}

	similar := make([]ProfileMatch, 0, topK)
	for _, hit := range hits {
		if hit.Entity.ID == profile.ID {
			continue
		}
		score := index.Similarity(hit.Distance)
		if score < m.defaults.MinScore {
			continue
		}
		similar = append(similar, ProfileMatch{Profile: hit.Entity, Score: score})
		if len(similar) == topK {
			break
		}
	}

	return &Recommendations{
		MatchingProjects: matchingProjects,
		SimilarProfiles:  similar,
	}, nil
}

// rankProfiles indexes the full profile corpus and returns the topK
// nearest profiles to the query text, ascending by distance.
func (m *Matcher) rankProfiles(ctx context.Context, queryText string, topK int) ([]index.Result[types.Profile], error) {
	profiles, err := m.profiles.ListProfiles(ctx)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	if len(profiles) == 0 {
		return nil, nil
	}

	texts := make([]string, len(profiles))
	for i, p := range profiles {
		texts[i] = NormalizeProfile(p)
	}

	if m.searcher != nil {
		byID := make(map[string]types.Profile, len(profiles))
		ids := make([]string, len(profiles))
		for i, p := range profiles {
			ids[i] = p.ID
			byID[p.ID] = p
		}

		hits, err := m.searchStored(ctx, &m.profileMu, storage.CollectionProfiles, ids, texts, queryText, topK)
		if err != nil {
			return nil, err
		}

		results := make([]index.Result[types.Profile], 0, len(hits))
		for _, hit := range hits {
			if p, ok := byID[hit.ID]; ok {
				results = append(results, index.Result[types.Profile]{Entity: p, Distance: hit.Distance})
			}
		}
		return results, nil
	}

	return rankInMemory(ctx, m.encoder, profiles, texts, queryText, topK)
}

// rankProjects indexes the full project corpus and returns the topK
// nearest projects to the query text, ascending by distance.
func (m *Matcher) rankProjects(ctx context.Context, queryText string, topK int) ([]index.Result[types.Project], error) {
	projects, err := m.projects.ListProjects(ctx)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	if len(projects) == 0 {
		return nil, nil
	}

	texts := make([]string, len(projects))
	for i, p := range projects {
		texts[i] = NormalizeProject(p)
	}

	if m.searcher != nil {
		byID := make(map[string]types.Project, len(projects))
		ids := make([]string, len(projects))
		for i, p := range projects {
			ids[i] = p.ID
			byID[p.ID] = p
		}

		hits, err := m.searchStored(ctx, &m.projectMu, storage.CollectionProjects, ids, texts, queryText, topK)
		if err != nil {
			return nil, err
		}

		results := make([]index.Result[types.Project], 0, len(hits))
		for _, hit := range hits {
			if p, ok := byID[hit.ID]; ok {
				results = append(results, index.Result[types.Project]{Entity: p, Distance: hit.Distance})
			}
		}
		return results, nil
	}

	return rankInMemory(ctx, m.encoder, projects, texts, queryText, topK)
}

// searchStored runs the replace+search unit against the storage-level
// vector searcher under the collection's mutex, so a concurrent call
// never observes a partially replaced collection.
func (m *Matcher) searchStored(ctx context.Context, mu *sync.Mutex, collection string, ids, texts []string, queryText string, topK int) ([]storage.VectorHit, error) {
	vectors, err := m.encoder.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embed %s corpus: %w", collection, err)
	}
	queryVec, err := m.encoder.Embed(ctx, queryText)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	mu.Lock()
	defer mu.Unlock()

	if err := m.searcher.ReplaceVectors(ctx, collection, ids, vectors); err != nil {
		return nil, fmt.Errorf("replace %s vectors: %w", collection, err)
	}
	hits, err := m.searcher.SearchVectors(ctx, collection, queryVec, topK)
	if err != nil {
		return nil, fmt.Errorf("search %s vectors: %w", collection, err)
	}
	return hits, nil
}

// rankInMemory builds a transient flat index over the entities and
// queries it. The index is call-local, so no locking is needed.
func rankInMemory[E any](ctx context.Context, encoder embedding.Generator, entities []E, texts []string, queryText string, topK int) ([]index.Result[E], error) {
	vectors, err := encoder.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embed corpus: %w", err)
	}

	ix := index.NewFlat[E]()
	if err := ix.Rebuild(entities, vectors); err != nil {
		return nil, fmt.Errorf("rebuild index: %w", err)
	}

	queryVec, err := encoder.Embed(ctx, queryText)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	results, err := ix.Search(queryVec, topK)
	if err != nil {
		return nil, fmt.Errorf("search index: %w", err)
	}
	return results, nil
}
