package layer

// Index maps layer IDs to their position in layers. When an ID appears more
// than once the first occurrence wins.
func Index(layers []Layer) map[string]int {
	idx := make(map[string]int, len(layers))
	for i, l := range layers {
		if _, ok := idx[l.ID]; !ok {
			idx[l.ID] = i
		}
	}
	return idx
}

// Find returns the layer with the given ID.
func Find(layers []Layer, id string) (Layer, bool) {
	for _, l := range layers {
		if l.ID == id {
			return l, true
		}
	}
	return Layer{}, false
}

// NormalizeOrder returns order without duplicates and without IDs that have
// no layer in layers, plus the number of dropped entries.
func NormalizeOrder(layers []Layer, order []string) ([]string, int) {
	idx := Index(layers)
	seen := make(map[string]bool, len(order))
	out := make([]string, 0, len(order))
	for _, id := range order {
		if _, ok := idx[id]; !ok || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out, len(order) - len(out)
}

// Candidates walks order and returns the enabled layers it names, in order.
// Unknown IDs, repeated IDs and disabled layers are dropped.
func Candidates(layers []Layer, order []string) []Layer {
	idx := Index(layers)
	seen := make(map[string]bool, len(order))
	var out []Layer
	for _, id := range order {
		i, ok := idx[id]
		if !ok || seen[id] {
			continue
		}
		seen[id] = true
		if !layers[i].Enabled {
			continue
		}
		out = append(out, layers[i])
	}
	return out
}
