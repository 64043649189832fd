package syntax

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
)

// ParsePackageManifestTOML decodes a package manifest from raw TOML text,
// the format package sources keep their marq.toml in. Keys present in the
// document but not mapped onto PackageManifest's known fields are recorded
// in UnknownFields under their dotted path, the same validation surface
// callers get from the Rust implementation's serde(flatten) catch-all.
func ParsePackageManifestTOML(data []byte) (*PackageManifest, error) {
	m := PackageManifest{
		Tool:          ToolInfo{Sections: make(map[string]map[string]any)},
		UnknownFields: make(map[string]any),
	}
	md, err := toml.Decode(string(data), &m)
	if err != nil {
		return nil, fmt.Errorf("parsing package manifest: %w", err)
	}

	var raw map[string]any
	if _, err := toml.Decode(string(data), &raw); err != nil {
		return nil, fmt.Errorf("parsing package manifest: %w", err)
	}
	if tool, ok := raw["tool"].(map[string]any); ok {
		for name, v := range tool {
			if section, ok := v.(map[string]any); ok {
				m.Tool.Sections[name] = section
			}
		}
	}

	for _, key := range md.Undecoded() {
		if len(key) > 0 && key[0] == "tool" {
			continue
		}
		if v, ok := lookupTOMLKey(raw, key); ok {
			m.UnknownFields[strings.Join(key, ".")] = v
		}
	}

	return &m, nil
}

// lookupTOMLKey walks a dotted TOML key through a decoded generic document.
func lookupTOMLKey(raw map[string]any, key toml.Key) (any, bool) {
	var cur any = raw
	for _, part := range key {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		v, ok := m[part]
		if !ok {
			return nil, false
		}
		cur = v
	}
	return cur, true
}

// UnmarshalText implements encoding.TextUnmarshaler so a bare TOML string
// like `version = "1.2.0"` decodes directly into a PackageVersion.
func (v *PackageVersion) UnmarshalText(text []byte) error {
	parsed, err := ParsePackageVersion(string(text))
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// MarshalText implements encoding.TextMarshaler, the inverse of
// UnmarshalText, so a manifest round-trips through TOML unchanged.
func (v PackageVersion) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler so a bare TOML string
// like `compiler = "1.2"` decodes directly into a VersionBound.
func (b *VersionBound) UnmarshalText(text []byte) error {
	parsed, err := ParseVersionBound(string(text))
	if err != nil {
		return err
	}
	*b = *parsed
	return nil
}

// MarshalText implements encoding.TextMarshaler, the inverse of
// UnmarshalText.
func (b VersionBound) MarshalText() ([]byte, error) {
	return []byte(b.String()), nil
}
