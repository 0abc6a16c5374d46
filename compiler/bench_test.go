package compiler

import (
	"fmt"
	"testing"

	"github.com/brunoga/layerstack/document"
	"github.com/brunoga/layerstack/layer"
	"github.com/brunoga/layerstack/patch"
)

func BenchmarkCompile_Layers(b *testing.B) {
	sizes := []int{1, 10, 100}
	for _, size := range sizes {
		b.Run(fmt.Sprintf("Layers%d", size), func(b *testing.B) {
			base := &document.BaseDocument{ID: "bench", Sections: document.Sections{"s": {}}}
			for i := 0; i < 50; i++ {
				base.Sections["s"][fmt.Sprintf("f%d", i)] = i
			}

			layers := make([]layer.Layer, size)
			order := make([]string, size)
			for i := range layers {
				// Every layer touches the same hot field plus one of its own.
				p := patch.New().
					Replace("/s/f0", i).
					Replace(fmt.Sprintf("/s/f%d", i%50), i)
				layers[i] = mkLayer(fmt.Sprintf("l%d", i), p)
				order[i] = layers[i].ID
			}

			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if _, err := Compile(base, layers, order); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
