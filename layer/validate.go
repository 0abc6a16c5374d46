package layer

import (
	"fmt"
	"strings"
)

// ValidationError lists the problems found in a structurally invalid layer.
// It is reported to the authoring flow; invalid layers never reach the
// compiler through a Stack.
type ValidationError struct {
	LayerID  string
	Problems []string
}

func (e *ValidationError) Error() string {
	id := e.LayerID
	if id == "" {
		id = "<no id>"
	}
	return fmt.Sprintf("invalid layer %s: %s", id, strings.Join(e.Problems, "; "))
}

// Validate checks that l can be authored: it needs an ID, a name and a
// structurally valid, non-empty patch.
func Validate(l Layer) error {
	var problems []string
	if strings.TrimSpace(l.ID) == "" {
		problems = append(problems, "missing id")
	}
	if strings.TrimSpace(l.Name) == "" {
		problems = append(problems, "missing name")
	}
	if err := l.Patch.Validate(); err != nil {
		for _, line := range strings.Split(err.Error(), "\n") {
			problems = append(problems, line)
		}
	}
	if len(problems) == 0 {
		return nil
	}
	return &ValidationError{LayerID: l.ID, Problems: problems}
}
