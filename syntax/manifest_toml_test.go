package syntax

import "testing"

func TestParsePackageManifestTOMLDecodesKnownFields(t *testing.T) {
	doc := `
[package]
name = "mylib"
version = "0.3.1"
entrypoint = "lib.mq"
authors = ["Ada"]

[template]
path = "template"
entrypoint = "main.mq"

[tool.marq]
extra = "value"
`
	m, err := ParsePackageManifestTOML([]byte(doc))
	if err != nil {
		t.Fatalf("ParsePackageManifestTOML: %v", err)
	}
	if m.Package.Name != "mylib" {
		t.Errorf("Package.Name = %q, want %q", m.Package.Name, "mylib")
	}
	if m.Package.Version != (PackageVersion{Major: 0, Minor: 3, Patch: 1}) {
		t.Errorf("Package.Version = %v, want 0.3.1", m.Package.Version)
	}
	if m.Template == nil || m.Template.Path != "template" {
		t.Fatalf("Template = %+v, want a template with path %q", m.Template, "template")
	}
	section, ok := m.Tool.Sections["marq"]
	if !ok || section["extra"] != "value" {
		t.Errorf("Tool.Sections[%q] = %v, %v; want a section with extra=value", "marq", section, ok)
	}
	if len(m.UnknownFields) != 0 {
		t.Errorf("UnknownFields = %v, want empty (tool section should not be flagged unknown)", m.UnknownFields)
	}
}

func TestParsePackageManifestTOMLRecordsUnknownFields(t *testing.T) {
	doc := `
unexpected = "surprise"

[package]
name = "mylib"
version = "0.3.1"
entrypoint = "lib.mq"
`
	m, err := ParsePackageManifestTOML([]byte(doc))
	if err != nil {
		t.Fatalf("ParsePackageManifestTOML: %v", err)
	}
	if got, ok := m.UnknownFields["unexpected"]; !ok || got != "surprise" {
		t.Errorf("UnknownFields[%q] = %v, %v; want %q, true", "unexpected", got, ok, "surprise")
	}
}

func TestParsePackageManifestTOMLRejectsMismatchedCompiler(t *testing.T) {
	doc := `
[package]
name = "mylib"
version = "1.0.0"
entrypoint = "lib.mq"
compiler = "999.0.0"
`
	m, err := ParsePackageManifestTOML([]byte(doc))
	if err != nil {
		t.Fatalf("ParsePackageManifestTOML: %v", err)
	}
	spec := &PackageSpec{Namespace: "preview", Name: "mylib", Version: m.Package.Version}
	if err := m.Validate(spec); err == nil {
		t.Error("expected Validate to reject a manifest requiring a newer compiler")
	}
}
