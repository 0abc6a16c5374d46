package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/brunoga/layerstack/patch"
)

const baseYAML = `id: pla
name: PLA default
sections:
  print_settings:
    perimeter_speed: 45
    layer_height: 0.2
  filament:
    temperature: [210, 205]
`

const projectYAML = `baseDocumentId: pla
layers:
  - id: fast
    name: Fast
    enabled: true
    patch:
      - {op: replace, path: /print_settings/perimeter_speed, value: 60}
  - id: careful
    name: Careful
    enabled: true
    patch:
      - {op: replace, path: /print_settings/perimeter_speed, value: 30}
      - {op: add, path: /filament/temperature/-, value: 200}
  - id: broken
    name: Broken
    enabled: true
    patch:
      - {op: replace, path: /print_settings/missing, value: 1}
order: [fast, careful, broken]
`

func setup(t *testing.T) (catalog, projectFile string) {
	t.Helper()
	dir := t.TempDir()
	catalog = filepath.Join(dir, "catalog")
	if err := os.Mkdir(catalog, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(catalog, "pla.yaml"), []byte(baseYAML), 0o644); err != nil {
		t.Fatal(err)
	}
	projectFile = filepath.Join(dir, "stack.yaml")
	if err := os.WriteFile(projectFile, []byte(projectYAML), 0o644); err != nil {
		t.Fatal(err)
	}
	return catalog, projectFile
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestCompileCmd(t *testing.T) {
	catalog, projectFile := setup(t)

	out, err := run(t, "compile", "--catalog", catalog, "--project", projectFile)
	if err != nil {
		t.Fatalf("compile error = %v", err)
	}

	var report compileReport
	if err := yaml.Unmarshal([]byte(out), &report); err != nil {
		t.Fatalf("output is not YAML: %v\n%s", err, out)
	}
	if got := report.FinalData["print_settings"]["perimeter_speed"]; got != 30 {
		t.Errorf("perimeter_speed = %v, want 30", got)
	}
	if strings.Join(report.AppliedLayers, ",") != "fast,careful" {
		t.Errorf("applied = %v", report.AppliedLayers)
	}
	if len(report.Skipped) != 1 || report.Skipped[0].LayerID != "broken" || report.Skipped[0].Reason == "" {
		t.Errorf("skipped = %+v", report.Skipped)
	}
	if report.ConflictCount != 1 {
		t.Errorf("conflictCount = %d, want 1", report.ConflictCount)
	}
}

func TestConflictsCmd_Brief(t *testing.T) {
	catalog, projectFile := setup(t)

	out, err := run(t, "conflicts", "--brief", "--catalog", catalog, "--project", projectFile)
	if err != nil {
		t.Fatalf("conflicts error = %v", err)
	}
	if !strings.Contains(out, "/print_settings/perimeter_speed: careful wins with 30") {
		t.Errorf("unexpected output: %q", out)
	}
}

func TestPreviewCmd(t *testing.T) {
	catalog, projectFile := setup(t)

	out, err := run(t, "preview", "--format", "json", "--catalog", catalog, "--project", projectFile)
	if err != nil {
		t.Fatalf("preview error = %v", err)
	}
	for _, want := range []string{`"key": "Perimeter Speed"`, `"oldValue": 45`, `"key": "Temperature [-]"`} {
		if !strings.Contains(out, want) {
			t.Errorf("output lacks %s:\n%s", want, out)
		}
	}
}

func TestExportCmd(t *testing.T) {
	catalog, projectFile := setup(t)

	out, err := run(t, "export", "--delimiter", ";", "--catalog", catalog, "--project", projectFile)
	if err != nil {
		t.Fatalf("export error = %v", err)
	}
	want := "[filament]\ntemperature = 210;205;200\n\n[print_settings]\nlayer_height = 0.2\nperimeter_speed = 30\n"
	if out != want {
		t.Errorf("export =\n%s\nwant\n%s", out, want)
	}
}

func TestShareCmd_RoundTrip(t *testing.T) {
	_, projectFile := setup(t)

	link, err := run(t, "share", "encode", projectFile)
	if err != nil {
		t.Fatalf("share encode error = %v", err)
	}
	link = strings.TrimSpace(link)

	out := filepath.Join(t.TempDir(), "decoded.yaml")
	if _, err := run(t, "share", "decode", link, "--out", out); err != nil {
		t.Fatalf("share decode error = %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "baseDocumentId: pla") {
		t.Errorf("decoded project:\n%s", data)
	}
}

func TestDiffCmd(t *testing.T) {
	catalog, _ := setup(t)
	target := filepath.Join(t.TempDir(), "petg.json")
	doc := `{"id":"petg","name":"PETG","sections":{"print_settings":{"perimeter_speed":45,"layer_height":0.25},"filament":{"temperature":[210,205]}}}`
	if err := os.WriteFile(target, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}

	out, err := run(t, "diff", "--from", filepath.Join(catalog, "pla.yaml"), "--to", target)
	if err != nil {
		t.Fatalf("diff error = %v", err)
	}
	for _, want := range []string{"name: PETG", "path: /print_settings/layer_height", "value: 0.25"} {
		if !strings.Contains(out, want) {
			t.Errorf("output lacks %q:\n%s", want, out)
		}
	}
}

func TestDiffCmd_NoChanges(t *testing.T) {
	catalog, _ := setup(t)
	doc := filepath.Join(catalog, "pla.yaml")

	out, err := run(t, "diff", "--from", doc, "--to", doc)
	if !errors.Is(err, patch.ErrEmptyPatch) {
		t.Errorf("diff error = %v, want ErrEmptyPatch", err)
	}
	if out != "" {
		t.Errorf("diff printed a layer:\n%s", out)
	}
}

func TestMissingFlags(t *testing.T) {
	if _, err := run(t, "compile"); err == nil {
		t.Error("compile without flags should fail")
	}
}

func TestVersionCmd(t *testing.T) {
	out, err := run(t, "version")
	if err != nil {
		t.Fatalf("version error = %v", err)
	}
	if !strings.HasPrefix(out, "layerstack "+Version) {
		t.Errorf("version output = %q", out)
	}
}
