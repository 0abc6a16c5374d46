package layer

import (
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/brunoga/layerstack/patch"
)

func TestNew(t *testing.T) {
	p := patch.New().Replace("/print/speed", 60)
	l := New("Fast", p, WithAuthor("ana"), WithCategory("speed"), WithTags("fast", "draft"), WithDescription("go fast"))

	if l.ID == "" {
		t.Error("expected a generated ID")
	}
	if !l.Enabled {
		t.Error("new layers are enabled")
	}
	if l.Metadata.Author != "ana" || l.Metadata.Category != "speed" || len(l.Metadata.Tags) != 2 {
		t.Errorf("unexpected metadata: %+v", l.Metadata)
	}
	if l.Metadata.Created == "" || l.Metadata.Created != l.Metadata.Modified {
		t.Errorf("unexpected timestamps: %+v", l.Metadata)
	}

	p[0].Value = 1
	if l.Patch[0].Value != 60 {
		t.Error("layer shares its patch with the caller")
	}

	other := New("Other", p, WithID("fixed"), Disabled())
	if other.ID != "fixed" || other.Enabled {
		t.Errorf("options not applied: %+v", other)
	}
	if other.ID == l.ID {
		t.Error("IDs should be unique")
	}
}

func TestLayer_Clone(t *testing.T) {
	l := New("L", patch.New().Replace("/a/b", []any{1, 2}), WithTags("x"))
	l.Preview = []SettingChange{{Path: "/a/b", Key: "B", NewValue: []any{1, 2}}}

	c := l.Clone()
	if !reflect.DeepEqual(l, c) {
		t.Fatalf("clone differs: %+v vs %+v", l, c)
	}

	c.Patch[0].Value.([]any)[0] = 9
	c.Metadata.Tags[0] = "y"
	c.Preview[0].Key = "changed"
	if l.Patch[0].Value.([]any)[0] != 1 || l.Metadata.Tags[0] != "x" || l.Preview[0].Key != "B" {
		t.Error("clone shares state with the original")
	}
}

func TestLayer_WithHelpers(t *testing.T) {
	l := New("L", patch.New().Replace("/a/b", 1))
	l.Preview = []SettingChange{{Path: "/a/b"}}

	off := l.WithEnabled(false)
	if off.Enabled || !l.Enabled {
		t.Error("WithEnabled must not touch the receiver")
	}

	repatched := l.WithPatch(patch.New().Remove("/a/b"))
	if repatched.Preview != nil {
		t.Error("WithPatch should drop the stale preview")
	}
	if len(l.Patch) != 1 || l.Patch[0].Op != patch.OperationTypeReplace {
		t.Error("WithPatch must not touch the receiver")
	}
}

func TestValidate(t *testing.T) {
	valid := New("L", patch.New().Replace("/a/b", 1))

	tests := []struct {
		name     string
		layer    Layer
		problems int
	}{
		{"Valid", valid, 0},
		{"Missing id", Layer{Name: "L", Patch: valid.Patch}, 1},
		{"Missing name", Layer{ID: "x", Patch: valid.Patch}, 1},
		{"Empty patch", Layer{ID: "x", Name: "L"}, 1},
		{"Missing value", Layer{ID: "x", Name: "L", Patch: patch.Patch{{Op: patch.OperationTypeAdd, Path: "/a/b"}}}, 1},
		{"Everything wrong", Layer{}, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.layer)
			if tt.problems == 0 {
				if err != nil {
					t.Fatalf("Validate() error = %v", err)
				}
				return
			}
			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("Validate() error = %v, want *ValidationError", err)
			}
			if len(ve.Problems) != tt.problems {
				t.Errorf("problems = %v, want %d", ve.Problems, tt.problems)
			}
		})
	}
}

func TestLayer_RoundTrip(t *testing.T) {
	l := New("Round", patch.New().Replace("/a/b", 1.5).Add("/a/c", []any{"x", "y"}).Remove("/a/d"),
		WithTags("t"), WithDescription("d"))
	l.Preview = []SettingChange{{Path: "/a/b", Key: "B", OldValue: 1.0, NewValue: 1.5, Section: "A"}}

	data, err := json.Marshal(l)
	if err != nil {
		t.Fatal(err)
	}
	var fromJSON Layer
	if err := json.Unmarshal(data, &fromJSON); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(l, fromJSON) {
		t.Errorf("JSON round trip lost data:\n%+v\n%+v", l, fromJSON)
	}

	out, err := yaml.Marshal(l)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(out), "op: replace") {
		t.Errorf("unexpected YAML:\n%s", out)
	}
	var fromYAML Layer
	if err := yaml.Unmarshal(out, &fromYAML); err != nil {
		t.Fatal(err)
	}
	if fromYAML.ID != l.ID || len(fromYAML.Patch) != 3 || fromYAML.Patch[2].Value != nil {
		t.Errorf("YAML round trip lost data: %+v", fromYAML)
	}
}

func TestCandidates(t *testing.T) {
	a := New("A", patch.New().Replace("/s/f", 1), WithID("a"))
	b := New("B", patch.New().Replace("/s/f", 2), WithID("b"), Disabled())
	c := New("C", patch.New().Replace("/s/f", 3), WithID("c"))
	layers := []Layer{a, b, c}

	got := Candidates(layers, []string{"c", "missing", "b", "a", "c"})
	var ids []string
	for _, l := range got {
		ids = append(ids, l.ID)
	}
	if !reflect.DeepEqual(ids, []string{"c", "a"}) {
		t.Errorf("Candidates() = %v", ids)
	}

	order, dropped := NormalizeOrder(layers, []string{"c", "missing", "b", "c"})
	if !reflect.DeepEqual(order, []string{"c", "b"}) || dropped != 2 {
		t.Errorf("NormalizeOrder() = %v, %d", order, dropped)
	}

	if l, ok := Find(layers, "b"); !ok || l.Name != "B" {
		t.Errorf("Find(b) = %+v, %v", l, ok)
	}
	if _, ok := Find(layers, "zzz"); ok {
		t.Error("Find(zzz) should fail")
	}
}
