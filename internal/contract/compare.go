package contract

import "fmt"

// Reason classifies a failed comparison.
type Reason string

const (
	ReasonNone            Reason = ""
	ReasonPropertyMissing Reason = "property_missing"
	ReasonTypeMismatch    Reason = "type_mismatch"
)

// Verdict is the outcome of one comparison.
type Verdict struct {
	OK         bool   `json:"ok"`
	Diagnostic string `json:"diagnostic,omitempty"`
	Reason     Reason `json:"reason,omitempty"`
	Path       string `json:"path,omitempty"`
}

var pass = Verdict{OK: true}

// Compare checks actual against the shape declared by t. Only type categories
// are compared; keys present in actual but absent from t are ignored, and
// array elements are not checked one by one. A nil template always passes.
//
// Object keys are visited in the order the contract declares them and the
// first failure is reported.
func Compare(t *Template, actual interface{}) Verdict {
	if t == nil {
		return pass
	}
	if !isGeneric(actual) {
		normalized, err := Normalize(actual)
		if err != nil {
			return Verdict{
				Diagnostic: fmt.Sprintf("expected type %s, got unencodable %T (%v)", t.Kind(), actual, err),
				Reason:     ReasonTypeMismatch,
			}
		}
		actual = normalized
	}
	return compareNode(t.root, actual, "")
}

func compareNode(tmpl, actual interface{}, path string) Verdict {
	want, got := KindOf(tmpl), KindOf(actual)

	obj, isObject := tmpl.(*object)
	if !isObject || len(obj.keys) == 0 {
		if want != got {
			return typeMismatch(path, want, got)
		}
		return pass
	}

	fields, ok := actual.(map[string]interface{})
	if !ok {
		return typeMismatch(path, want, got)
	}

	for _, k := range obj.keys {
		child := joinPath(path, k)

		value, exists := fields[k]
		if !exists {
			return Verdict{
				Diagnostic: fmt.Sprintf("property %s not present", child),
				Reason:     ReasonPropertyMissing,
				Path:       child,
			}
		}

		wantChild, gotChild := KindOf(obj.fields[k]), KindOf(value)
		if wantChild != gotChild {
			return typeMismatch(child, wantChild, gotChild)
		}

		if (gotChild == KindObject || gotChild == KindArray) && !isEmptyCollection(value) {
			if v := compareNode(obj.fields[k], value, child); !v.OK {
				return v
			}
		}
	}

	return pass
}

func typeMismatch(path string, want, got Kind) Verdict {
	msg := fmt.Sprintf("expected type %s, got %s", want, got)
	if path != "" {
		msg = fmt.Sprintf("expected %s type %s, got %s", path, want, got)
	}
	return Verdict{
		Diagnostic: msg,
		Reason:     ReasonTypeMismatch,
		Path:       path,
	}
}

func joinPath(parent, key string) string {
	if parent == "" {
		return key
	}
	return parent + "." + key
}
