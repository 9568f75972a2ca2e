package ast

import (
	"reflect"
	"strings"

	"github.com/goccy/go-json"
)

var nodeInterfaceType = reflect.TypeOf((*Node)(nil)).Elem()

// Dump returns an indented JSON rendering of the tree rooted at node, each node is rendered as an object
// with a "node" member holding its Go type name and an "at" member holding its line:column location.
func Dump(node Node) ([]byte, error) {
	return json.MarshalIndent(DumpValue(node), "", "  ")
}

// DumpValue returns a JSON-serializable representation of the tree rooted at node.
func DumpValue(node Node) any {
	if node == nil || reflect.ValueOf(node).IsNil() {
		return nil
	}

	v := reflect.ValueOf(node).Elem()
	t := v.Type()

	result := map[string]any{
		"node": t.Name(),
	}
	if src := node.Src(); !src.IsZero() {
		result["at"] = src.ShortLocation()
	}

	if container, ok := node.(bindingsContainer); ok {
		entries := []any{}
		for _, entry := range container.nodes() {
			entries = append(entries, DumpValue(entry))
		}
		result["entries"] = entries
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if field.Anonymous || !field.IsExported() {
			continue
		}

		name, omitEmpty := jsonFieldName(field)
		if name == "-" {
			continue
		}

		fieldValue := v.Field(i)
		if omitEmpty && fieldValue.IsZero() {
			continue
		}

		result[name] = dumpFieldValue(fieldValue)
	}

	return result
}

func dumpFieldValue(v reflect.Value) any {
	switch {
	case v.Type().Implements(nodeInterfaceType):
		if v.IsNil() {
			return nil
		}
		return DumpValue(v.Interface().(Node))
	case v.Kind() == reflect.Slice && v.Type().Elem().Implements(nodeInterfaceType):
		elements := make([]any, v.Len())
		for i := 0; i < v.Len(); i++ {
			elements[i] = dumpFieldValue(v.Index(i))
		}
		return elements
	}
	return v.Interface()
}

func jsonFieldName(field reflect.StructField) (name string, omitEmpty bool) {
	tag, ok := field.Tag.Lookup("json")
	if !ok {
		return strings.ToLower(field.Name[:1]) + field.Name[1:], false
	}
	name, options, _ := strings.Cut(tag, ",")
	if name == "" {
		name = strings.ToLower(field.Name[:1]) + field.Name[1:]
	}
	return name, strings.Contains(options, "omitempty")
}
