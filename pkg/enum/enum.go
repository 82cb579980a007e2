package enum

import (
	"fmt"
	"reflect"
)

var enumManager = map[string]any{}

type enum[T comparable] struct {
	toEnum   map[string]T
	toString map[T]string
}

func typeName[T comparable]() string {
	var defaultT T
	t := reflect.TypeOf(defaultT)
	return t.PkgPath() + "." + t.Name()
}

// New registers value under the given name and returns value, so enum
// constants can be declared as `var X = enum.New(T("x"), "x")`.
func New[T comparable](value T, name string) T {
	key := typeName[T]()
	if _, ok := enumManager[key]; !ok {
		enumManager[key] = enum[T]{toEnum: make(map[string]T), toString: make(map[T]string)}
	}

	e := enumManager[key].(enum[T])
	e.toEnum[name] = value
	e.toString[value] = name
	return value
}

func ToEnum[T comparable](s string) (T, error) {
	var defaultT T
	e, ok := enumManager[typeName[T]()]
	if !ok {
		return defaultT, fmt.Errorf("not found enum type %T", defaultT)
	}

	t, ok := e.(enum[T]).toEnum[s]
	if !ok {
		return defaultT, fmt.Errorf("not found value %s in enum %T", s, defaultT)
	}

	return t, nil
}

// ToString returns the registered name of value, or an empty string if value
// is not registered.
func ToString[T comparable](value T) string {
	e, ok := enumManager[typeName[T]()]
	if !ok {
		return ""
	}

	return e.(enum[T]).toString[value]
}

// Values returns every registered value of T.
func Values[T comparable]() []T {
	e, ok := enumManager[typeName[T]()]
	if !ok {
		return nil
	}

	values := make([]T, 0, len(e.(enum[T]).toString))
	for v := range e.(enum[T]).toString {
		values = append(values, v)
	}

	return values
}
