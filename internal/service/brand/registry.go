package brand

import (
	"os"
	"sort"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// entry is a brand's registered keywords and the VPAs exempted from
// impersonation checks against it (e.g. the brand's own official VPAs).
type entry struct {
	keywords    []string
	allowedVPAs map[string]struct{}
}

// Registry is a canonical-brand lookup table. The zero value is an empty,
// usable registry — a missing or unparseable source file is tolerated and
// simply yields one, per §4.1.
type Registry struct {
	names   []string // sorted for stable, reproducible iteration order
	entries map[string]entry
}

// fileShape mirrors the on-disk brand registry file (§6): a map keyed by
// brand name, each value { "keywords": [...], "allowed_vpas": [...] }.
type fileShape map[string]struct {
	Keywords    []string `yaml:"keywords"`
	AllowedVPAs []string `yaml:"allowed_vpas"`
}

// Empty returns a Registry with no brands registered, making every rule
// that consults it a no-op.
func Empty() *Registry {
	return &Registry{entries: map[string]entry{}}
}

// LoadRegistry reads and parses the brand registry file at path. A missing
// file, a blank path, or a parse failure all degrade to an empty registry
// with a logged warning rather than a fatal error — brand detection is one
// rule among many, not a startup dependency.
func LoadRegistry(path string, logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	if path == "" {
		return Empty()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		logger.Warn("brand registry file unavailable, continuing with empty registry",
			zap.String("path", path), zap.Error(err))
		return Empty()
	}

	var shape fileShape
	if err := yaml.Unmarshal(data, &shape); err != nil {
		logger.Warn("brand registry file unparseable, continuing with empty registry",
			zap.String("path", path), zap.Error(err))
		return Empty()
	}

	return fromShape(shape)
}

// NewRegistry builds a Registry directly from brand name -> keyword list
// pairs, without allowlisting. Useful for callers that assemble a registry
// programmatically rather than from the on-disk file shape.
func NewRegistry(brands map[string][]string) *Registry {
	r := &Registry{entries: make(map[string]entry, len(brands))}
	for name, keywords := range brands {
		r.entries[name] = entry{keywords: keywords, allowedVPAs: map[string]struct{}{}}
		r.names = append(r.names, name)
	}
	sort.Strings(r.names)
	return r
}

func fromShape(shape fileShape) *Registry {
	r := &Registry{entries: make(map[string]entry, len(shape))}
	for name, spec := range shape {
		allowed := make(map[string]struct{}, len(spec.AllowedVPAs))
		for _, vpa := range spec.AllowedVPAs {
			allowed[vpa] = struct{}{}
		}
		r.entries[name] = entry{
			keywords:    spec.Keywords,
			allowedVPAs: allowed,
		}
		r.names = append(r.names, name)
	}
	sort.Strings(r.names)
	return r
}
