// Package typetag assigns process-local identity tags to port element types.
//
// Tags are small comparable values handed out once per distinct Go type.
// They let registries and channels agree on "same element type" without
// dragging reflection into the hot path: the reflect work happens once, at
// assignment, and everything downstream compares plain integers.
package typetag

import (
	"fmt"
	"reflect"
	"sync"
)

// Tag identifies the element type of a port or channel.
// The zero Tag means "no type recorded". Tags are stable for the lifetime
// of the process and are not portable across processes or builds.
type Tag uint32

type typeInfo struct {
	name  string
	plain bool
}

var (
	mu     sync.Mutex
	byType = make(map[reflect.Type]Tag)
	// Index 0 is reserved so the zero Tag never matches a real type.
	infos = []typeInfo{{name: "<untyped>"}}
)

// Of returns the tag assigned to T, assigning a fresh one on first use.
// Safe for concurrent callers.
func Of[T any]() Tag {
	t := reflect.TypeOf((*T)(nil)).Elem()

	mu.Lock()
	defer mu.Unlock()

	if tag, ok := byType[t]; ok {
		return tag
	}
	tag := Tag(len(infos))
	infos = append(infos, typeInfo{name: t.String(), plain: plainData(t)})
	byType[t] = tag
	return tag
}

// String returns a readable type name for logs and graph rendering.
func (t Tag) String() string {
	mu.Lock()
	defer mu.Unlock()

	if int(t) >= len(infos) {
		return fmt.Sprintf("tag(%d)", uint32(t))
	}
	return infos[t].name
}

// PlainData reports whether values of the tagged type are free of Go
// pointers. Only plain data may back a shared-memory channel.
func (t Tag) PlainData() bool {
	mu.Lock()
	defer mu.Unlock()

	if t == 0 || int(t) >= len(infos) {
		return false
	}
	return infos[t].plain
}

func plainData(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64,
		reflect.Complex64, reflect.Complex128:
		return true
	case reflect.Array:
		return plainData(t.Elem())
	case reflect.Struct:
		for i := 0; i < t.NumField(); i++ {
			if !plainData(t.Field(i).Type) {
				return false
			}
		}
		return true
	default:
		// Pointers, slices, maps, strings, channels, funcs, interfaces.
		return false
	}
}
