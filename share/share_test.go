package share

import (
	"errors"
	"strings"
	"testing"

	"github.com/brunoga/layerstack/internal/core"
	"github.com/brunoga/layerstack/layer"
	"github.com/brunoga/layerstack/patch"
	"github.com/brunoga/layerstack/project"
)

func sample() *project.Project {
	return &project.Project{
		Version:        project.CurrentVersion,
		BaseDocumentID: "petg-default",
		Layers: []layer.Layer{
			{ID: "hot", Name: "Hot end", Enabled: true, Patch: patch.New().Replace("/filament/temperature/0", 245)},
			{ID: "slow", Name: "Slow", Patch: patch.New().Replace("/print_settings/perimeter_speed", 20)},
		},
		Order: []string{"slow", "hot"},
	}
}

func TestRoundTrip(t *testing.T) {
	link, err := Encode(sample())
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	if strings.ContainsAny(link, "+/=") {
		t.Errorf("link %q is not unpadded base64url", link)
	}

	got, err := Decode(link)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if !core.Equal(got, sample()) {
		t.Errorf("round trip mismatch:\n%+v\n%+v", got, sample())
	}
}

func TestDecode_Invalid(t *testing.T) {
	valid, err := Encode(sample())
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	tests := []struct {
		name string
		link string
	}{
		{"not base64", "%%%"},
		{"not zstd", "aGVsbG8"},
		{"truncated", valid[:len(valid)/2]},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Decode(tt.link); !errors.Is(err, ErrInvalidLink) {
				t.Errorf("Decode() error = %v, want ErrInvalidLink", err)
			}
		})
	}
}

func TestDecode_InvalidProject(t *testing.T) {
	link, err := Encode(&project.Project{BaseDocumentID: "b", Layers: []layer.Layer{{ID: "x", Name: "X"}}})
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	_, err = Decode(link)
	if !errors.Is(err, ErrInvalidLink) || !errors.Is(err, project.ErrInvalid) {
		t.Errorf("Decode() error = %v, want ErrInvalidLink wrapping project.ErrInvalid", err)
	}
}
