package refract

import (
	"maps"
	"reflect"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"
)

// propTag overrides the property name of a struct field. A tag of "-"
// hides the field.
const propTag = "prop"

// propEntry is one named property of a props value.
type propEntry struct {
	name  string
	value reflect.Value
}

// propertiesOf lists the properties of props in a stable order: struct
// fields in declaration order, map keys sorted. Other kinds have no
// properties.
func propertiesOf(props any) []propEntry {
	v := reflect.ValueOf(props)
	for v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return nil
		}
		v = v.Elem()
	}

	switch v.Kind() {
	case reflect.Struct:
		t := v.Type()
		entries := make([]propEntry, 0, t.NumField())
		for i := range t.NumField() {
			name, ok := fieldName(t.Field(i))
			if !ok {
				continue
			}
			entries = append(entries, propEntry{name: name, value: v.Field(i)})
		}
		return entries
	case reflect.Map:
		if v.Type().Key().Kind() != reflect.String {
			return nil
		}
		keys := make(map[string]reflect.Value, v.Len())
		iter := v.MapRange()
		for iter.Next() {
			keys[iter.Key().String()] = iter.Key()
		}
		entries := make([]propEntry, 0, len(keys))
		for _, name := range slices.Sorted(maps.Keys(keys)) {
			entries = append(entries, propEntry{name: name, value: v.MapIndex(keys[name])})
		}
		return entries
	default:
		return nil
	}
}

// PropertyNames returns the property names of props.
func PropertyNames(props any) []string {
	entries := propertiesOf(props)
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.name
	}
	return names
}

// fieldName resolves the property name of an exported struct field.
func fieldName(f reflect.StructField) (string, bool) {
	if !f.IsExported() {
		return "", false
	}
	if tag, ok := f.Tag.Lookup(propTag); ok {
		name, _, _ := strings.Cut(tag, ",")
		if name == "-" {
			return "", false
		}
		if name != "" {
			return name, true
		}
	}
	return lowerFirst(f.Name), true
}

func lowerFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToLower(r)) + s[size:]
}

// pushAll pushes every property of props to c.
func pushAll(c *Component, props any) {
	for _, e := range propertiesOf(props) {
		var value any
		if e.value.IsValid() && e.value.CanInterface() {
			value = e.value.Interface()
		}
		c.push(e.name, value)
	}
}

// decorate returns a copy of props in which every observed, non-nil
// function-typed property is replaced by a function of the same signature
// that emits its arguments on the property channel and then calls the
// latest callback pushed for that property.
func decorate[P any](c *Component, props P) P {
	v := reflect.ValueOf(&props).Elem()
	target := v
	for target.Kind() == reflect.Interface || target.Kind() == reflect.Pointer {
		// Pointer props are shared with the host; decorating them in place
		// would leak wrappers into the caller's value.
		if target.Kind() == reflect.Pointer {
			return props
		}
		if target.IsNil() {
			return props
		}
		target = target.Elem()
	}

	switch target.Kind() {
	case reflect.Struct:
		out := reflect.New(target.Type()).Elem()
		out.Set(target)
		t := target.Type()
		for i := range t.NumField() {
			name, ok := fieldName(t.Field(i))
			if !ok {
				continue
			}
			field := out.Field(i)
			if field.Kind() != reflect.Func || field.IsNil() || !c.observed(name) {
				continue
			}
			field.Set(c.decorated(name, reflect.ValueOf(field.Interface())))
		}
		return assign[P](out)
	case reflect.Map:
		if target.IsNil() || target.Type().Key().Kind() != reflect.String {
			return props
		}
		out := reflect.MakeMapWithSize(target.Type(), target.Len())
		iter := target.MapRange()
		for iter.Next() {
			value := iter.Value()
			fn := value
			if fn.Kind() == reflect.Interface && !fn.IsNil() {
				fn = fn.Elem()
			}
			if fn.Kind() == reflect.Func && !fn.IsNil() && c.observed(iter.Key().String()) {
				value = c.decorated(iter.Key().String(), fn)
			}
			out.SetMapIndex(iter.Key(), value)
		}
		return assign[P](out)
	default:
		return props
	}
}

func assign[P any](v reflect.Value) P {
	var out P
	reflect.ValueOf(&out).Elem().Set(v)
	return out
}

// decorated builds the emitting wrapper for the callback property name. The
// wrapper calls the latest callback pushed for name, falling back to orig
// once the component has released its property state.
func (c *Component) decorated(name string, orig reflect.Value) reflect.Value {
	ft := orig.Type()
	return reflect.MakeFunc(ft, func(args []reflect.Value) []reflect.Value {
		c.invoke(name, callArgument(args))

		fn := c.callback(name)
		if !fn.IsValid() {
			fn = orig
		}
		if fn.IsNil() || fn.Type() != ft {
			results := make([]reflect.Value, ft.NumOut())
			for i := range results {
				results[i] = reflect.Zero(ft.Out(i))
			}
			return results
		}
		if ft.IsVariadic() {
			return fn.CallSlice(args)
		}
		return fn.Call(args)
	})
}

// callArgument converts call arguments into the emitted value: no
// arguments emit struct{}{}, one emits itself, several emit []any.
func callArgument(args []reflect.Value) any {
	switch len(args) {
	case 0:
		return struct{}{}
	case 1:
		return args[0].Interface()
	default:
		all := make([]any, len(args))
		for i, a := range args {
			all[i] = a.Interface()
		}
		return all
	}
}
