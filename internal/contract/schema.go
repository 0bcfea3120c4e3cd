package contract

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// Template is a parsed contract literal. Values in the tree are type
// exemplars: 0 requires a number, "" a string, {"id":0} an object with a
// numeric id. Object keys keep the order they were declared in. The tree is
// never mutated after Parse returns.
type Template struct {
	raw  string
	root interface{}
}

// object is a template object with its keys in declaration order.
type object struct {
	keys   []string
	fields map[string]interface{}
}

// Parse turns a contract literal into a Template. Malformed JSON and a bare
// null both mean "no contract" and yield ok == false.
func Parse(literal string) (*Template, bool) {
	literal = strings.TrimSpace(literal)
	if literal == "" {
		return nil, false
	}

	dec := json.NewDecoder(strings.NewReader(literal))
	root, err := decodeNode(dec)
	if err != nil {
		return nil, false
	}
	// trailing tokens make the literal ambiguous
	if _, err := dec.Token(); err != io.EOF {
		return nil, false
	}
	if root == nil {
		return nil, false
	}

	return &Template{raw: literal, root: root}, true
}

func decodeNode(dec *json.Decoder) (interface{}, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}

	delim, ok := tok.(json.Delim)
	if !ok {
		return tok, nil
	}

	switch delim {
	case '{':
		obj := &object{fields: make(map[string]interface{})}
		for dec.More() {
			keyTok, err := dec.Token()
			if err != nil {
				return nil, err
			}
			key, ok := keyTok.(string)
			if !ok {
				return nil, fmt.Errorf("object key is %T", keyTok)
			}
			value, err := decodeNode(dec)
			if err != nil {
				return nil, err
			}
			if _, seen := obj.fields[key]; !seen {
				obj.keys = append(obj.keys, key)
			}
			obj.fields[key] = value
		}
		if _, err := dec.Token(); err != nil {
			return nil, err
		}
		return obj, nil
	case '[':
		arr := []interface{}{}
		for dec.More() {
			value, err := decodeNode(dec)
			if err != nil {
				return nil, err
			}
			arr = append(arr, value)
		}
		if _, err := dec.Token(); err != nil {
			return nil, err
		}
		return arr, nil
	}
	return nil, fmt.Errorf("unexpected delimiter %q", delim)
}

// Raw returns the literal the template was parsed from.
func (t *Template) Raw() string {
	return t.raw
}

// Kind returns the type category of the template root.
func (t *Template) Kind() Kind {
	return KindOf(t.root)
}

func (t *Template) String() string {
	return t.raw
}
