package core

import (
	"errors"
	"testing"
)

func TestParsePath(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		want    Path
		wantErr bool
	}{
		{"Section", "/print", Path{"print"}, false},
		{"Field", "/print/speed", Path{"print", "speed"}, false},
		{"Element", "/print/temps/1", Path{"print", "temps", "1"}, false},
		{"Append", "/print/temps/-", Path{"print", "temps", "-"}, false},
		{"Tilde kept verbatim", "/print/a~1b", Path{"print", "a~1b"}, false},
		{"Empty", "", nil, true},
		{"Root only", "/", nil, true},
		{"No leading slash", "print/speed", nil, true},
		{"Empty segment", "/print//speed", nil, true},
		{"Trailing slash", "/print/", nil, true},
		{"Too deep", "/a/b/0/c", nil, true},
		{"Element not an index", "/print/temps/x", nil, true},
		{"Negative index", "/print/temps/-1", nil, true},
		{"Append in field position", "/print/-", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParsePath(tt.path)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParsePath(%q) error = %v, wantErr %v", tt.path, err, tt.wantErr)
			}
			if err != nil {
				if !errors.Is(err, ErrInvalidPath) {
					t.Errorf("error %v does not wrap ErrInvalidPath", err)
				}
				return
			}
			if !got.Equals(tt.want) {
				t.Errorf("ParsePath(%q) = %v, want %v", tt.path, got, tt.want)
			}
			if got.String() != tt.path {
				t.Errorf("String() = %q, want %q", got.String(), tt.path)
			}
		})
	}
}

func TestPath_Accessors(t *testing.T) {
	p := MustParsePath("/filament/temps/2")
	if p.Section() != "filament" || p.Field() != "temps" || p.Last() != "2" {
		t.Errorf("unexpected accessors: %q %q %q", p.Section(), p.Field(), p.Last())
	}
	if !p.IsElement() || p.IsField() || p.IsSection() {
		t.Errorf("wrong kind for %v", p)
	}
	if idx, ok := p.Index(); !ok || idx != 2 {
		t.Errorf("Index() = %d, %v", idx, ok)
	}
	if idx, ok := MustParsePath("/filament/temps/-").Index(); !ok || idx != -1 {
		t.Errorf("append Index() = %d, %v", idx, ok)
	}
	if _, ok := MustParsePath("/filament/temps").Index(); ok {
		t.Error("field path should not have an index")
	}
	if Path(nil).String() != "/" {
		t.Errorf("empty path String() = %q", Path(nil).String())
	}
}

func TestPath_Lookup(t *testing.T) {
	sections := map[string]map[string]any{
		"print": {
			"speed": 45,
			"temps": []any{200, 210},
		},
	}

	tests := []struct {
		path   string
		want   any
		wantOK bool
	}{
		{"/print/speed", 45, true},
		{"/print/temps/1", 210, true},
		{"/print/temps/2", nil, false},
		{"/print/temps/-", nil, false},
		{"/print/missing", nil, false},
		{"/missing/speed", nil, false},
		{"/print/speed/0", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, ok := MustParsePath(tt.path).Lookup(sections)
			if ok != tt.wantOK {
				t.Fatalf("Lookup(%s) ok = %v, want %v", tt.path, ok, tt.wantOK)
			}
			if ok && !Equal(got, tt.want) {
				t.Errorf("Lookup(%s) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}

	if section, ok := MustParsePath("/print").Lookup(sections); !ok || len(section.(map[string]any)) != 2 {
		t.Errorf("section lookup = %v, %v", section, ok)
	}
}
