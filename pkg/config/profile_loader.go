package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/praxia-labs/clausecheck/pkg/compliance"
)

// AssessmentProfile represents a named review configuration: which
// frameworks to check and how strict the matching should be.
type AssessmentProfile struct {
	Name                string   `yaml:"name" json:"name"`
	Code                string   `yaml:"code" json:"code"`
	Description         string   `yaml:"description,omitempty" json:"description,omitempty"`
	Frameworks          []string `yaml:"frameworks" json:"frameworks"`
	SimilarityThreshold float64  `yaml:"similarity_threshold,omitempty" json:"similarity_threshold,omitempty"`
}

// LoadProfile loads an assessment profile YAML by code. It searches the
// profiles directory for profile_<code>.yaml.
func LoadProfile(profilesDir, code string) (*AssessmentProfile, error) {
	code = strings.ToLower(code)
	path := filepath.Join(profilesDir, fmt.Sprintf("profile_%s.yaml", code))

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load profile %q: %w", code, err)
	}

	var profile AssessmentProfile
	if err := yaml.Unmarshal(data, &profile); err != nil {
		return nil, fmt.Errorf("parse profile %q: %w", code, err)
	}

	if profile.Code == "" {
		profile.Code = code
	}
	if err := profile.validate(); err != nil {
		return nil, fmt.Errorf("profile %q: %w", code, err)
	}

	return &profile, nil
}

// LoadAllProfiles loads all profile_*.yaml files from the profiles directory.
func LoadAllProfiles(profilesDir string) (map[string]*AssessmentProfile, error) {
	matches, err := filepath.Glob(filepath.Join(profilesDir, "profile_*.yaml"))
	if err != nil {
		return nil, err
	}

	profiles := make(map[string]*AssessmentProfile, len(matches))
	for _, path := range matches {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}

		var profile AssessmentProfile
		if err := yaml.Unmarshal(data, &profile); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}

		if profile.Code == "" {
			// Extract code from filename: profile_strict.yaml -> strict
			base := filepath.Base(path)
			profile.Code = strings.TrimSuffix(strings.TrimPrefix(base, "profile_"), ".yaml")
		}
		if err := profile.validate(); err != nil {
			return nil, fmt.Errorf("profile %s: %w", path, err)
		}

		profiles[profile.Code] = &profile
	}

	return profiles, nil
}

func (p *AssessmentProfile) validate() error {
	if len(p.Frameworks) == 0 {
		return fmt.Errorf("no frameworks listed")
	}
	if p.SimilarityThreshold < 0 || p.SimilarityThreshold > 1 {
		return fmt.Errorf("similarity threshold %v out of range", p.SimilarityThreshold)
	}
	return nil
}

// FrameworkList returns the profile's frameworks as parsed values,
// dropping unknown tokens.
func (p *AssessmentProfile) FrameworkList() []compliance.Framework {
	var out []compliance.Framework
	for _, raw := range p.Frameworks {
		if fw, ok := compliance.ParseFramework(raw); ok {
			out = append(out, fw)
		}
	}
	return out
}

// HasFramework reports whether the profile includes the framework.
func (p *AssessmentProfile) HasFramework(fw compliance.Framework) bool {
	for _, got := range p.FrameworkList() {
		if got == fw {
			return true
		}
	}
	return false
}
