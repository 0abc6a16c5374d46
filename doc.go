// Package layerstack builds device settings by stacking toggleable layers on
// a base document.
//
// A Stack ties the pieces together. Every edit validates its input,
// recompiles the stack, refreshes the affected previews and records an undo
// entry:
//
//	s, err := layerstack.New(catalog, "pla-default")
//	if err != nil {
//		return err
//	}
//	fast := layer.New("Fast", patch.New().Replace("/print_settings/perimeter_speed", 60))
//	if err := s.AddLayer(fast); err != nil {
//		return err
//	}
//	speed, _ := s.Compiled().FinalData.Get("print_settings", "perimeter_speed")
//
// Undo and Redo restore earlier states without recording new ones.
//
// The building blocks live in their own packages: patch (operations and
// atomic apply), layer, compiler, conflict, preview and history. They can be
// used without a Stack.
package layerstack
