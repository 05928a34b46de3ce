package memo

import (
	"math"
	"reflect"
)

// Equaler decides whether two dependency values are equal enough to reuse a
// cached result.
type Equaler func(a, b any) bool

// SameValue compares primitives by value and composite values by reference:
// pointers, maps, slices, channels and funcs are equal only when they refer
// to the same underlying object. Structs and arrays compare element-wise
// under the same rule. NaN equals NaN.
//
// Funcs compare by code pointer. Two closures created from the same literal
// are therefore indistinguishable; use a *Handle when callback identity
// matters.
//
// Slices compare by length and data pointer. Zero-length slices with no
// backing storage share one runtime address, so two separately created
// empty slices are the same value, and so are two nil slices.
func SameValue(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return sameValue(reflect.ValueOf(a), reflect.ValueOf(b))
}

// Identical compares by reference for composite values and with == for
// everything else. Values that are not comparable are never identical.
func Identical(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	if va.Type() != vb.Type() {
		return false
	}
	if isReference(va.Kind()) {
		return sameReference(va, vb)
	}
	if !va.Comparable() || !vb.Comparable() {
		return false
	}
	return a == b
}

// DeepEqual compares structurally, with fast paths for primitives.
func DeepEqual(a, b any) bool {
	switch av := a.(type) {
	case int:
		bv, ok := b.(int)
		return ok && av == bv
	case int64:
		bv, ok := b.(int64)
		return ok && av == bv
	case uint64:
		bv, ok := b.(uint64)
		return ok && av == bv
	case float64:
		bv, ok := b.(float64)
		return ok && av == bv
	case string:
		bv, ok := b.(string)
		return ok && av == bv
	case bool:
		bv, ok := b.(bool)
		return ok && av == bv
	default:
		// Fall back to reflect.DeepEqual for slices, maps, structs, etc.
		return reflect.DeepEqual(a, b)
	}
}

func isReference(k reflect.Kind) bool {
	switch k {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Chan, reflect.Func, reflect.UnsafePointer:
		return true
	}
	return false
}

func sameReference(va, vb reflect.Value) bool {
	if va.Kind() == reflect.Slice && va.Len() != vb.Len() {
		return false
	}
	return va.Pointer() == vb.Pointer()
}

// sameValue works on reflect.Values so unexported struct fields can be
// compared without Interface().
func sameValue(va, vb reflect.Value) bool {
	if !va.IsValid() || !vb.IsValid() {
		return va.IsValid() == vb.IsValid()
	}
	if va.Type() != vb.Type() {
		return false
	}

	switch k := va.Kind(); {
	case isReference(k):
		return sameReference(va, vb)
	case k == reflect.Bool:
		return va.Bool() == vb.Bool()
	case va.CanInt():
		return va.Int() == vb.Int()
	case va.CanUint():
		return va.Uint() == vb.Uint()
	case va.CanFloat():
		fa, fb := va.Float(), vb.Float()
		return fa == fb || (math.IsNaN(fa) && math.IsNaN(fb))
	case va.CanComplex():
		return va.Complex() == vb.Complex()
	case k == reflect.String:
		return va.String() == vb.String()
	case k == reflect.Interface:
		if va.IsNil() || vb.IsNil() {
			return va.IsNil() && vb.IsNil()
		}
		return sameValue(va.Elem(), vb.Elem())
	case k == reflect.Struct:
		for i := 0; i < va.NumField(); i++ {
			if !sameValue(va.Field(i), vb.Field(i)) {
				return false
			}
		}
		return true
	case k == reflect.Array:
		for i := 0; i < va.Len(); i++ {
			if !sameValue(va.Index(i), vb.Index(i)) {
				return false
			}
		}
		return true
	default:
		return false
	}
}
