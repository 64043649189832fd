package syntax

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// PackageManifest is a parsed package manifest (the "marq.toml" a
// package root carries). UnknownFields records keys the manifest had
// that this decoder didn't expect, so callers can warn about typos
// without rejecting forward-compatible manifests outright.
type PackageManifest struct {
	Package  PackageInfo   `toml:"package"`
	Template *TemplateInfo `toml:"template,omitempty"`
	// Tool holds [tool.*] third-party config sections. BurntSushi/toml
	// has no inline-map decode mode, so the manifest loader fills this
	// in by hand from the raw document rather than through struct tags.
	Tool          ToolInfo       `toml:"-"`
	UnknownFields map[string]any `toml:"-"`
}

// NewPackageManifest builds a manifest wrapping pkg, with empty
// tool/unknown-field tables ready to be filled in by a decoder.
func NewPackageManifest(pkg PackageInfo) *PackageManifest {
	return &PackageManifest{
		Package:       pkg,
		Tool:          ToolInfo{Sections: make(map[string]map[string]any)},
		UnknownFields: make(map[string]any),
	}
}

// Validate checks that m actually describes the package spec is
// asking for: matching name and version, and a compiler version this
// build satisfies.
func (m *PackageManifest) Validate(spec *PackageSpec) error {
	if m.Package.Name != spec.Name {
		return fmt.Errorf("package manifest contains mismatched name `%s`", m.Package.Name)
	}
	if m.Package.Version != spec.Version {
		return fmt.Errorf("package manifest contains mismatched version %s", m.Package.Version)
	}
	if m.Package.Compiler != nil {
		current := CompilerVersion()
		if !current.MatchesGE(m.Package.Compiler) {
			return fmt.Errorf("package requires Marq %s or newer (current version is %s)",
				m.Package.Compiler, current)
		}
	}
	return nil
}

// ToolInfo is the manifest's [tool] table, keyed by sub-table name
// (`[tool.marq]` becomes Sections["marq"]).
type ToolInfo struct {
	Sections map[string]map[string]any
}

// TemplateInfo is the manifest's [template] table, present only for
// packages that double as project scaffolding.
type TemplateInfo struct {
	Path          string  `toml:"path"`
	Entrypoint    string  `toml:"entrypoint"`
	Thumbnail     *string `toml:"thumbnail,omitempty"`
	UnknownFields map[string]any `toml:"-"`
}

// NewTemplateInfo builds a TemplateInfo with only its required fields
// set.
func NewTemplateInfo(path, entrypoint string) *TemplateInfo {
	return &TemplateInfo{
		Path:          path,
		Entrypoint:    entrypoint,
		UnknownFields: make(map[string]any),
	}
}

// PackageInfo is the manifest's [package] table.
type PackageInfo struct {
	Name        string         `toml:"name"`
	Version     PackageVersion `toml:"version"`
	Entrypoint  string         `toml:"entrypoint"`
	Authors     []string       `toml:"authors,omitempty"`
	License     *string        `toml:"license,omitempty"`
	Description *string        `toml:"description,omitempty"`
	Homepage    *string        `toml:"homepage,omitempty"`
	Repository  *string        `toml:"repository,omitempty"`
	Keywords    []string       `toml:"keywords,omitempty"`
	Categories  []string       `toml:"categories,omitempty"`
	Disciplines []string       `toml:"disciplines,omitempty"`
	Compiler    *VersionBound  `toml:"compiler,omitempty"`
	Exclude     []string       `toml:"exclude,omitempty"`
	UnknownFields map[string]any `toml:"-"`
}

// NewPackageInfo builds a PackageInfo with only its required fields
// set and every optional slice initialized empty rather than nil.
func NewPackageInfo(name string, version PackageVersion, entrypoint string) PackageInfo {
	return PackageInfo{
		Name:          name,
		Version:       version,
		Entrypoint:    entrypoint,
		Authors:       []string{},
		Categories:    []string{},
		Disciplines:   []string{},
		Exclude:       []string{},
		Keywords:      []string{},
		UnknownFields: make(map[string]any),
	}
}

// PackageSpec identifies an exact package: namespace, name, and
// version, as written in an import path like `@preview/example:0.1.0`.
type PackageSpec struct {
	Namespace string
	Name      string
	Version   PackageVersion
}

// Versionless drops s's version, yielding a spec that matches any
// version of the same package.
func (s *PackageSpec) Versionless() VersionlessPackageSpec {
	return VersionlessPackageSpec{Namespace: s.Namespace, Name: s.Name}
}

func (s *PackageSpec) String() string {
	return fmt.Sprintf("@%s/%s:%s", s.Namespace, s.Name, s.Version.String())
}

// VersionlessPackageSpec identifies a package without pinning a
// version.
type VersionlessPackageSpec struct {
	Namespace string
	Name      string
}

// At pins version onto s, yielding a complete PackageSpec.
func (s *VersionlessPackageSpec) At(version PackageVersion) *PackageSpec {
	return &PackageSpec{Namespace: s.Namespace, Name: s.Name, Version: version}
}

func (s *VersionlessPackageSpec) String() string {
	return fmt.Sprintf("@%s/%s", s.Namespace, s.Name)
}

// specCursor is a tiny byte-level cursor used only to split a package
// spec string (`@ns/name:1.2.3`) on its delimiters; it doesn't need
// the rune-awareness the main Scanner provides since spec syntax is
// pure ASCII.
type specCursor struct {
	s   string
	pos int
}

func (c *specCursor) done() bool { return c.pos >= len(c.s) }

func (c *specCursor) eatIf(b byte) bool {
	if c.pos < len(c.s) && c.s[c.pos] == b {
		c.pos++
		return true
	}
	return false
}

func (c *specCursor) eatUntil(b byte) string {
	start := c.pos
	for c.pos < len(c.s) && c.s[c.pos] != b {
		c.pos++
	}
	return c.s[start:c.pos]
}

func (c *specCursor) rest() string { return c.s[c.pos:] }

// ParsePackageSpec parses `@namespace/name:version`.
func ParsePackageSpec(s string) (*PackageSpec, error) {
	c := &specCursor{s: s}

	namespace, err := specNamespace(c)
	if err != nil {
		return nil, err
	}
	name, err := specName(c)
	if err != nil {
		return nil, err
	}
	version, err := specVersion(c)
	if err != nil {
		return nil, err
	}
	return &PackageSpec{Namespace: namespace, Name: name, Version: version}, nil
}

// ParseVersionlessPackageSpec parses `@namespace/name`, rejecting a
// trailing `:version` as an error rather than silently ignoring it.
func ParseVersionlessPackageSpec(s string) (*VersionlessPackageSpec, error) {
	c := &specCursor{s: s}

	namespace, err := specNamespace(c)
	if err != nil {
		return nil, err
	}
	name, err := specName(c)
	if err != nil {
		return nil, err
	}
	if !c.done() {
		return nil, errors.New("unexpected version in versionless package specification")
	}
	return &VersionlessPackageSpec{Namespace: namespace, Name: name}, nil
}

func specNamespace(c *specCursor) (string, error) {
	if !c.eatIf('@') {
		return "", errors.New("package specification must start with '@'")
	}
	namespace := c.eatUntil('/')
	if namespace == "" {
		return "", errors.New("package specification is missing namespace")
	}
	if !IsNamespaceIdent(namespace) {
		return "", fmt.Errorf("`%s` is not a valid package namespace", namespace)
	}
	return namespace, nil
}

func specName(c *specCursor) (string, error) {
	c.eatIf('/')
	name := c.eatUntil(':')
	if name == "" {
		return "", errors.New("package specification is missing name")
	}
	if !IsNamespaceIdent(name) {
		return "", fmt.Errorf("`%s` is not a valid package name", name)
	}
	return name, nil
}

func specVersion(c *specCursor) (PackageVersion, error) {
	c.eatIf(':')
	rest := c.rest()
	if rest == "" {
		return PackageVersion{}, errors.New("package specification is missing version")
	}
	return ParsePackageVersion(rest)
}

// IsNamespaceIdent reports whether s is a valid namespace/name
// component: lowercase letters, digits, and hyphens, starting with a
// letter and never ending in a hyphen.
func IsNamespaceIdent(s string) bool {
	if len(s) == 0 || s[0] < 'a' || s[0] > 'z' || s[len(s)-1] == '-' {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !((c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') || c == '-') {
			return false
		}
	}
	return true
}

// PackageVersion is a semantic major.minor.patch version.
type PackageVersion struct {
	Major, Minor, Patch uint32
}

// CompilerVersion reports this build's own version, used to check a
// package's declared compiler requirement.
func CompilerVersion() PackageVersion {
	return PackageVersion{Major: 0, Minor: 12, Patch: 0}
}

// compare orders v against bound component-by-component, stopping at
// the first component bound actually constrains (bound.Minor/Patch are
// optional — a bound of just "2" matches any 2.x.y). It returns -1, 0,
// or 1 the way sort comparators do, or 0 if every present component of
// bound matches v exactly.
func (v PackageVersion) compare(bound *VersionBound) int {
	if v.Major != bound.Major {
		return cmp32(v.Major, bound.Major)
	}
	if bound.Minor == nil {
		return 0
	}
	if v.Minor != *bound.Minor {
		return cmp32(v.Minor, *bound.Minor)
	}
	if bound.Patch == nil {
		return 0
	}
	return cmp32(v.Patch, *bound.Patch)
}

func cmp32(a, b uint32) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// MatchesEQ reports whether v equals bound in every component bound
// specifies.
func (v PackageVersion) MatchesEQ(bound *VersionBound) bool { return v.compare(bound) == 0 }

// MatchesGT reports whether v exceeds bound in the first component
// bound specifies that differs.
func (v PackageVersion) MatchesGT(bound *VersionBound) bool { return v.compare(bound) > 0 }

// MatchesLT reports whether v falls short of bound in the first
// component bound specifies that differs.
func (v PackageVersion) MatchesLT(bound *VersionBound) bool { return v.compare(bound) < 0 }

// MatchesGE reports whether v is >= bound.
func (v PackageVersion) MatchesGE(bound *VersionBound) bool { return v.compare(bound) >= 0 }

// MatchesLE reports whether v is <= bound.
func (v PackageVersion) MatchesLE(bound *VersionBound) bool { return v.compare(bound) <= 0 }

// parseVersionComponent parses one dot-separated version part,
// producing an error tagged with label ("major"/"minor"/"patch") on
// failure.
func parseVersionComponent(part, label string) (uint32, error) {
	v, err := strconv.ParseUint(part, 10, 32)
	if err != nil || part == "" {
		return 0, fmt.Errorf("`%s` is not a valid %s version", part, label)
	}
	return uint32(v), nil
}

// ParsePackageVersion parses "major.minor.patch", requiring all three
// components.
func ParsePackageVersion(s string) (PackageVersion, error) {
	parts := strings.Split(s, ".")
	if len(parts) < 3 {
		missing := "major"
		if len(parts) >= 1 && parts[0] != "" {
			missing = "minor"
		}
		if len(parts) >= 2 && parts[1] != "" {
			missing = "patch"
		}
		return PackageVersion{}, fmt.Errorf("version number is missing %s version", missing)
	}
	if len(parts) > 3 {
		return PackageVersion{}, fmt.Errorf("version number has unexpected fourth component: `%s`", parts[3])
	}

	major, err := parseVersionComponent(parts[0], "major")
	if err != nil {
		return PackageVersion{}, err
	}
	minor, err := parseVersionComponent(parts[1], "minor")
	if err != nil {
		return PackageVersion{}, err
	}
	patch, err := parseVersionComponent(parts[2], "patch")
	if err != nil {
		return PackageVersion{}, err
	}
	return PackageVersion{Major: major, Minor: minor, Patch: patch}, nil
}

func (v PackageVersion) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// VersionBound is a version requirement with optional minor/patch
// precision: "2" constrains only the major version, "2.3" major and
// minor, "2.3.1" all three.
type VersionBound struct {
	Major        uint32
	Minor, Patch *uint32
}

// ParseVersionBound parses "major[.minor[.patch]]".
func ParseVersionBound(s string) (*VersionBound, error) {
	parts := strings.Split(s, ".")
	if len(parts) == 0 || parts[0] == "" {
		return nil, errors.New("version bound is missing major version")
	}
	if len(parts) > 3 {
		return nil, fmt.Errorf("version bound has unexpected fourth component: `%s`", parts[3])
	}

	major, err := strconv.ParseUint(parts[0], 10, 32)
	if err != nil {
		return nil, fmt.Errorf("`%s` is not a valid major version bound", parts[0])
	}
	bound := &VersionBound{Major: uint32(major)}

	if len(parts) > 1 && parts[1] != "" {
		minor, err := strconv.ParseUint(parts[1], 10, 32)
		if err != nil {
			return nil, fmt.Errorf("`%s` is not a valid minor version bound", parts[1])
		}
		minorVal := uint32(minor)
		bound.Minor = &minorVal
	}
	if len(parts) > 2 && parts[2] != "" {
		patch, err := strconv.ParseUint(parts[2], 10, 32)
		if err != nil {
			return nil, fmt.Errorf("`%s` is not a valid patch version bound", parts[2])
		}
		patchVal := uint32(patch)
		bound.Patch = &patchVal
	}
	return bound, nil
}

func (b *VersionBound) String() string {
	s := fmt.Sprintf("%d", b.Major)
	if b.Minor != nil {
		s += fmt.Sprintf(".%d", *b.Minor)
	}
	if b.Patch != nil {
		s += fmt.Sprintf(".%d", *b.Patch)
	}
	return s
}
