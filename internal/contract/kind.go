// Package contract checks response payloads against example-shaped contracts
// declared next to the handlers that produce them.
package contract

import (
	"encoding/json"
	"reflect"
)

// Kind is the JSON type category of a value.
type Kind string

const (
	KindNumber  Kind = "number"
	KindString  Kind = "string"
	KindBoolean Kind = "boolean"
	KindNull    Kind = "null"
	KindArray   Kind = "array"
	KindObject  Kind = "object"
)

// KindOf returns the JSON type category of v. Generic trees produced by
// encoding/json are handled directly; other Go values fall back to reflection.
func KindOf(v interface{}) Kind {
	switch v.(type) {
	case nil:
		return KindNull
	case map[string]interface{}, *object:
		return KindObject
	case []interface{}:
		return KindArray
	case string:
		return KindString
	case bool:
		return KindBoolean
	case float64, float32, json.Number,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64:
		return KindNumber
	}

	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Ptr || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return KindNull
		}
		rv = rv.Elem()
	}

	switch rv.Kind() {
	case reflect.Slice:
		if rv.IsNil() {
			return KindNull
		}
		return KindArray
	case reflect.Array:
		return KindArray
	case reflect.Map:
		if rv.IsNil() {
			return KindNull
		}
		return KindObject
	case reflect.Struct:
		return KindObject
	case reflect.String:
		return KindString
	case reflect.Bool:
		return KindBoolean
	case reflect.Float32, reflect.Float64,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return KindNumber
	}
	return KindNull
}

// Normalize converts an arbitrary response value into the generic tree that
// encoding/json produces, so that struct fields are seen under their JSON names.
func Normalize(v interface{}) (interface{}, error) {
	if isGeneric(v) {
		return v, nil
	}

	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}

	var out interface{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func isGeneric(v interface{}) bool {
	switch t := v.(type) {
	case nil, string, bool, float64:
		return true
	case map[string]interface{}:
		for _, child := range t {
			if !isGeneric(child) {
				return false
			}
		}
		return true
	case []interface{}:
		for _, child := range t {
			if !isGeneric(child) {
				return false
			}
		}
		return true
	}
	return false
}

func isEmptyCollection(v interface{}) bool {
	switch t := v.(type) {
	case map[string]interface{}:
		return len(t) == 0
	case []interface{}:
		return len(t) == 0
	}
	return false
}
