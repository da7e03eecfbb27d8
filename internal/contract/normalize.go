package contract

import (
	"fmt"
	"reflect"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// Normalize decodes raw call output for method and reshapes it by the
// method's declared output types:
//
//   - empty data: an empty []any
//   - no declared outputs but data present: the raw bytes
//   - one output: that value, unwrapped
//   - several outputs: []any in declared order
//
// Tuples become Record and tuple arrays []Record, at any depth.
func Normalize(method abi.Method, data []byte) (any, error) {
	if len(data) == 0 {
		return []any{}, nil
	}
	if len(method.Outputs) == 0 {
		return data, nil
	}

	values, err := method.Outputs.Unpack(data)
	if err != nil {
		return nil, fmt.Errorf("decoding %s output: %w", method.Name, err)
	}
	if len(values) != len(method.Outputs) {
		return nil, fmt.Errorf("decoding %s output: got %d values for %d outputs", method.Name, len(values), len(method.Outputs))
	}

	if len(values) == 1 {
		return normalizeValue(method.Outputs[0].Type, values[0]), nil
	}

	out := make([]any, len(values))
	for i, v := range values {
		out[i] = normalizeValue(method.Outputs[i].Type, v)
	}
	return out, nil
}

func normalizeValue(t abi.Type, v any) any {
	switch t.T {
	case abi.TupleTy:
		return toRecord(t, reflect.ValueOf(v))
	case abi.SliceTy, abi.ArrayTy:
		if !containsTuple(t) {
			return v
		}
		rv := reflect.ValueOf(v)
		if t.Elem.T == abi.TupleTy {
			out := make([]Record, rv.Len())
			for i := range out {
				out[i] = toRecord(*t.Elem, rv.Index(i))
			}
			return out
		}
		out := make([]any, rv.Len())
		for i := range out {
			out[i] = normalizeValue(*t.Elem, rv.Index(i).Interface())
		}
		return out
	}
	return v
}

func toRecord(t abi.Type, rv reflect.Value) Record {
	if rv.Kind() == reflect.Pointer {
		rv = rv.Elem()
	}
	rec := make(Record, len(t.TupleElems))
	for i, elem := range t.TupleElems {
		name := t.TupleRawNames[i]
		if name == "" {
			name = fmt.Sprintf("%d", i)
		}
		rec[i] = Field{Name: name, Value: normalizeValue(*elem, rv.Field(i).Interface())}
	}
	return rec
}

func containsTuple(t abi.Type) bool {
	switch t.T {
	case abi.TupleTy:
		return true
	case abi.SliceTy, abi.ArrayTy:
		return containsTuple(*t.Elem)
	}
	return false
}
