// Package catalog loads and serves the per-framework regulatory
// requirement catalogs. Catalogs are embedded YAML documents parsed once
// at construction; a Store is immutable afterward and safe for
// concurrent readers.
package catalog

import (
	"embed"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/praxia-labs/clausecheck/pkg/compliance"
)

//go:embed data/*.yaml
var catalogFS embed.FS

var catalogFiles = []string{
	"data/gdpr.yaml",
	"data/hipaa.yaml",
	"data/ccpa.yaml",
	"data/sox.yaml",
}

// catalogDoc is the on-disk shape of one framework catalog.
type catalogDoc struct {
	Framework    compliance.Framework     `yaml:"framework"`
	Requirements []compliance.Requirement `yaml:"requirements"`
}

// Store holds the requirement catalogs for all supported frameworks.
// Construct one per process (or per test) and inject it; there is no
// package-level singleton.
type Store struct {
	logger      *slog.Logger
	byFramework map[compliance.Framework][]compliance.Requirement
	order       []compliance.Framework
}

// Stats describes the loaded catalogs.
type Stats struct {
	TotalRequirements int                                     `json:"total_requirements"`
	Frameworks        map[compliance.Framework]FrameworkStats `json:"frameworks"`
}

// FrameworkStats counts requirements for one framework.
type FrameworkStats struct {
	Total     int `json:"total"`
	Mandatory int `json:"mandatory"`
	Optional  int `json:"optional"`
}

// NewStore parses the embedded catalogs.
func NewStore() (*Store, error) {
	s := &Store{
		logger:      slog.Default().With("component", "catalog"),
		byFramework: make(map[compliance.Framework][]compliance.Requirement),
	}

	for _, path := range catalogFiles {
		data, err := catalogFS.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read catalog %s: %w", path, err)
		}

		var doc catalogDoc
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("parse catalog %s: %w", path, err)
		}
		if doc.Framework == "" {
			return nil, fmt.Errorf("catalog %s: missing framework", path)
		}

		// Framework on each requirement comes from the document header.
		for i := range doc.Requirements {
			doc.Requirements[i].Framework = doc.Framework
		}

		s.byFramework[doc.Framework] = doc.Requirements
		s.order = append(s.order, doc.Framework)
	}

	counts := make([]any, 0, len(s.order)*2)
	for _, fw := range s.order {
		counts = append(counts, strings.ToLower(string(fw)), len(s.byFramework[fw]))
	}
	s.logger.Info("regulatory catalogs loaded", counts...)

	return s, nil
}

// NewStoreFromRequirements builds a store from an explicit requirement
// list, preserving input order per framework. Intended for tests that
// need fixture catalogs.
func NewStoreFromRequirements(reqs ...compliance.Requirement) *Store {
	s := &Store{
		logger:      slog.Default().With("component", "catalog"),
		byFramework: make(map[compliance.Framework][]compliance.Requirement),
	}
	for _, r := range reqs {
		if _, ok := s.byFramework[r.Framework]; !ok {
			s.order = append(s.order, r.Framework)
		}
		s.byFramework[r.Framework] = append(s.byFramework[r.Framework], r)
	}
	return s
}

// Requirements returns the catalog for a framework in catalog order.
// Unknown frameworks yield an empty slice; that is a warning, not an error.
func (s *Store) Requirements(fw compliance.Framework) []compliance.Requirement {
	reqs, ok := s.byFramework[fw]
	if !ok {
		s.logger.Warn("unknown framework requested", "framework", string(fw))
		return nil
	}
	return slices.Clone(reqs)
}

// AllRequirements returns every requirement across all frameworks,
// frameworks in load order.
func (s *Store) AllRequirements() []compliance.Requirement {
	var all []compliance.Requirement
	for _, fw := range s.order {
		all = append(all, s.byFramework[fw]...)
	}
	return all
}

// ByClauseType returns a framework's requirements whose clause type
// matches exactly, preserving catalog order.
func (s *Store) ByClauseType(fw compliance.Framework, clauseType string) []compliance.Requirement {
	var out []compliance.Requirement
	for _, r := range s.byFramework[fw] {
		if r.ClauseType == clauseType {
			out = append(out, r)
		}
	}
	return out
}

// ByID looks up a single requirement by its identifier.
func (s *Store) ByID(id string) (compliance.Requirement, bool) {
	for _, fw := range s.order {
		for _, r := range s.byFramework[fw] {
			if r.ID == id {
				return r, true
			}
		}
	}
	return compliance.Requirement{}, false
}

// SearchKeyword returns requirements whose keywords, description, or
// article reference contain the given keyword (case-insensitive). An
// empty framework searches all catalogs.
func (s *Store) SearchKeyword(keyword string, fw compliance.Framework) []compliance.Requirement {
	needle := strings.ToLower(keyword)

	scope := s.AllRequirements()
	if fw != "" {
		scope = s.Requirements(fw)
	}

	var out []compliance.Requirement
	for _, r := range scope {
		if strings.Contains(strings.ToLower(strings.Join(r.Keywords, " ")), needle) ||
			strings.Contains(strings.ToLower(r.Description), needle) ||
			strings.Contains(strings.ToLower(r.ArticleReference), needle) {
			out = append(out, r)
		}
	}
	return out
}

// Stats reports catalog sizes by framework.
func (s *Store) Stats() Stats {
	stats := Stats{Frameworks: make(map[compliance.Framework]FrameworkStats)}
	for _, fw := range s.order {
		fs := FrameworkStats{}
		for _, r := range s.byFramework[fw] {
			fs.Total++
			if r.Mandatory {
				fs.Mandatory++
			} else {
				fs.Optional++
			}
		}
		stats.Frameworks[fw] = fs
		stats.TotalRequirements += fs.Total
	}
	return stats
}
