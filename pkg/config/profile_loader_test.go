package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/praxia-labs/clausecheck/pkg/compliance"
)

func writeProfile(t *testing.T, dir, code, content string) {
	t.Helper()
	path := filepath.Join(dir, "profile_"+code+".yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write profile: %v", err)
	}
}

func TestLoadProfile_Strict(t *testing.T) {
	dir := t.TempDir()
	writeProfile(t, dir, "strict", `
name: Strict DPA review
frameworks:
  - GDPR
  - HIPAA
similarity_threshold: 0.85
`)

	p, err := LoadProfile(dir, "strict")
	if err != nil {
		t.Fatalf("LoadProfile(strict): %v", err)
	}
	if p.Name != "Strict DPA review" {
		t.Errorf("expected name 'Strict DPA review', got %q", p.Name)
	}
	if p.Code != "strict" {
		t.Errorf("expected code filled from filename, got %q", p.Code)
	}
	if p.SimilarityThreshold != 0.85 {
		t.Errorf("expected threshold 0.85, got %v", p.SimilarityThreshold)
	}
	if !p.HasFramework(compliance.FrameworkGDPR) {
		t.Error("strict profile should include GDPR")
	}
	if p.HasFramework(compliance.FrameworkSOX) {
		t.Error("strict profile should not include SOX")
	}
}

func TestLoadProfile_FrameworkListNormalizes(t *testing.T) {
	dir := t.TempDir()
	writeProfile(t, dir, "mixed", `
name: Mixed case
frameworks:
  - gdpr
  - " sox "
  - PCI
`)

	p, err := LoadProfile(dir, "mixed")
	if err != nil {
		t.Fatalf("LoadProfile(mixed): %v", err)
	}
	fws := p.FrameworkList()
	if len(fws) != 2 {
		t.Fatalf("expected 2 parsed frameworks, got %v", fws)
	}
	if fws[0] != compliance.FrameworkGDPR || fws[1] != compliance.FrameworkSOX {
		t.Errorf("unexpected frameworks: %v", fws)
	}
}

func TestLoadProfile_Invalid(t *testing.T) {
	dir := t.TempDir()
	writeProfile(t, dir, "empty", "name: No frameworks\n")
	if _, err := LoadProfile(dir, "empty"); err == nil {
		t.Error("expected error for profile without frameworks")
	}

	writeProfile(t, dir, "badthreshold", `
name: Bad threshold
frameworks: [GDPR]
similarity_threshold: 2.0
`)
	if _, err := LoadProfile(dir, "badthreshold"); err == nil {
		t.Error("expected error for out-of-range threshold")
	}

	if _, err := LoadProfile(dir, "missing"); err == nil {
		t.Error("expected error for missing profile file")
	}
}

func TestLoadAllProfiles(t *testing.T) {
	dir := t.TempDir()
	writeProfile(t, dir, "strict", "name: Strict\nframeworks: [GDPR]\n")
	writeProfile(t, dir, "broad", "name: Broad\nframeworks: [GDPR, HIPAA, CCPA, SOX]\n")

	profiles, err := LoadAllProfiles(dir)
	if err != nil {
		t.Fatalf("LoadAllProfiles: %v", err)
	}
	if len(profiles) != 2 {
		t.Fatalf("expected 2 profiles, got %d", len(profiles))
	}
	if profiles["broad"].Name != "Broad" {
		t.Errorf("unexpected broad profile: %+v", profiles["broad"])
	}
}
