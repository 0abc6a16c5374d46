package core

import (
	"reflect"
)

// Equal performs a structural equality check between a and b.
//
// It differs from reflect.DeepEqual in two ways that matter for settings
// data decoded from different formats: numbers compare by value across
// integer and float kinds, and a nil slice or map equals an empty one.
func Equal[T any](a, b T) bool {
	va := reflect.ValueOf(&a).Elem()
	vb := reflect.ValueOf(&b).Elem()
	return ValueEqual(va, vb)
}

// ValueEqual is the reflect.Value form of Equal.
func ValueEqual(a, b reflect.Value) bool {
	return equalRecursive(a, b)
}

func equalRecursive(a, b reflect.Value) bool {
	a = unwrapInterface(a)
	b = unwrapInterface(b)

	if !a.IsValid() || !b.IsValid() {
		return a.IsValid() == b.IsValid()
	}

	if isNumber(a.Kind()) && isNumber(b.Kind()) {
		return numbersEqual(a, b)
	}

	if a.Type() != b.Type() {
		return false
	}

	switch a.Kind() {
	case reflect.Bool:
		return a.Bool() == b.Bool()
	case reflect.String:
		return a.String() == b.String()

	case reflect.Pointer:
		if a.IsNil() || b.IsNil() {
			return a.IsNil() == b.IsNil()
		}
		if a.Pointer() == b.Pointer() {
			return true
		}
		return equalRecursive(a.Elem(), b.Elem())

	case reflect.Struct:
		for i := 0; i < a.NumField(); i++ {
			if !a.Type().Field(i).IsExported() {
				continue
			}
			if !equalRecursive(a.Field(i), b.Field(i)) {
				return false
			}
		}
		return true

	case reflect.Slice, reflect.Array:
		if a.Len() != b.Len() {
			return false
		}
		for i := 0; i < a.Len(); i++ {
			if !equalRecursive(a.Index(i), b.Index(i)) {
				return false
			}
		}
		return true

	case reflect.Map:
		if a.Len() != b.Len() {
			return false
		}
		iter := a.MapRange()
		for iter.Next() {
			valB := b.MapIndex(iter.Key())
			if !valB.IsValid() {
				return false
			}
			if !equalRecursive(iter.Value(), valB) {
				return false
			}
		}
		return true

	case reflect.Func, reflect.Chan, reflect.UnsafePointer:
		return a.Pointer() == b.Pointer()

	default:
		if a.CanInterface() && b.CanInterface() {
			return reflect.DeepEqual(a.Interface(), b.Interface())
		}
		return false
	}
}

func unwrapInterface(v reflect.Value) reflect.Value {
	for v.IsValid() && v.Kind() == reflect.Interface {
		if v.IsNil() {
			return reflect.Value{}
		}
		v = v.Elem()
	}
	return v
}

func isNumber(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

// numbersEqual compares integers exactly and falls back to float64 only when
// a float is involved.
func numbersEqual(a, b reflect.Value) bool {
	switch {
	case isSigned(a.Kind()) && isSigned(b.Kind()):
		return a.Int() == b.Int()
	case isUnsigned(a.Kind()) && isUnsigned(b.Kind()):
		return a.Uint() == b.Uint()
	case isSigned(a.Kind()) && isUnsigned(b.Kind()):
		return a.Int() >= 0 && uint64(a.Int()) == b.Uint()
	case isUnsigned(a.Kind()) && isSigned(b.Kind()):
		return b.Int() >= 0 && a.Uint() == uint64(b.Int())
	}

	fa, oka := toFloat(a)
	fb, okb := toFloat(b)
	if oka && okb {
		return fa == fb
	}
	return false
}

func isSigned(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return true
	}
	return false
}

func isUnsigned(k reflect.Kind) bool {
	switch k {
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return true
	}
	return false
}

func toFloat(v reflect.Value) (float64, bool) {
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(v.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(v.Uint()), true
	case reflect.Float32, reflect.Float64:
		return v.Float(), true
	}
	return 0, false
}
