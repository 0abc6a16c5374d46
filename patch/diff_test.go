package patch

import (
	"reflect"
	"testing"

	"github.com/brunoga/layerstack/document"
	"github.com/brunoga/layerstack/internal/core"
)

func TestDiff(t *testing.T) {
	from := document.Sections{
		"print_settings": {"perimeter_speed": 45, "layer_height": 0.2, "brim": true},
		"filament":       {"temperature": []any{210, 205}, "type": "PLA"},
		"legacy":         {"x": 1},
	}
	to := document.Sections{
		"print_settings": {"perimeter_speed": 60, "layer_height": 0.2, "ironing": false},
		"filament":       {"temperature": []any{210, 215}, "type": "PLA"},
		"support":        {"enabled": true},
	}

	got := Diff(from, to)
	want := Patch{
		{Op: OperationTypeRemove, Path: "/legacy"},
		{Op: OperationTypeReplace, Path: "/filament/temperature/1", Value: 215},
		{Op: OperationTypeRemove, Path: "/print_settings/brim"},
		{Op: OperationTypeAdd, Path: "/print_settings/ironing", Value: false},
		{Op: OperationTypeReplace, Path: "/print_settings/perimeter_speed", Value: 60},
		{Op: OperationTypeAdd, Path: "/support", Value: map[string]any{"enabled": true}},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Diff() =\n%v\nwant\n%v", got, want)
	}

	doc := document.Sections(core.CloneSections(from))
	if err := got.Apply(&doc); err != nil {
		t.Fatalf("Apply(Diff()) error = %v", err)
	}
	if !core.Equal(doc, to) {
		t.Errorf("Apply(Diff(from, to)) = %v, want %v", doc, to)
	}
}

func TestDiff_ArrayLengthChange(t *testing.T) {
	from := document.Sections{"f": {"t": []any{1, 2}}}
	to := document.Sections{"f": {"t": []any{1, 2, 3}}}

	got := Diff(from, to)
	want := Patch{{Op: OperationTypeReplace, Path: "/f/t", Value: []any{1, 2, 3}}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Diff() = %v, want %v", got, want)
	}
}

func TestDiff_Equal(t *testing.T) {
	a := document.Sections{"s": {"speed": 45}}
	b := document.Sections{"s": {"speed": 45.0}}
	if got := Diff(a, b); len(got) != 0 {
		t.Errorf("Diff() of equal documents = %v", got)
	}
}

func TestDiff_IgnorePath(t *testing.T) {
	from := document.Sections{"s": {"a": 1, "b": 1}, "meta": {"rev": 1}}
	to := document.Sections{"s": {"a": 2, "b": 2}}

	got := Diff(from, to, DiffIgnorePath("/s/b"), DiffIgnorePath("/meta"))
	want := Patch{{Op: OperationTypeReplace, Path: "/s/a", Value: 2}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Diff() = %v, want %v", got, want)
	}
}
