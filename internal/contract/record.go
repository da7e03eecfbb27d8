package contract

import (
	"bytes"
	"encoding/json"
	"math/big"
	"reflect"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// Field is one named component of a decoded tuple.
type Field struct {
	Name  string
	Value any
}

// Record is a decoded tuple. Field names are the ABI component names in
// declared order.
type Record []Field

// Names returns the field names in order.
func (r Record) Names() []string {
	out := make([]string, len(r))
	for i, f := range r {
		out[i] = f.Name
	}
	return out
}

// Get returns the value of the named field.
func (r Record) Get(name string) (any, bool) {
	for _, f := range r {
		if f.Name == name {
			return f.Value, true
		}
	}
	return nil, false
}

// Big returns an integer field as *big.Int, or nil when absent.
func (r Record) Big(name string) *big.Int {
	v, _ := r.Get(name)
	return toBig(v)
}

// Uint64 returns an integer field truncated to uint64.
func (r Record) Uint64(name string) uint64 {
	if b := r.Big(name); b != nil {
		return b.Uint64()
	}
	return 0
}

// Uint8 returns a small integer field such as an enum.
func (r Record) Uint8(name string) uint8 {
	return uint8(r.Uint64(name))
}

// Address returns an address field.
func (r Record) Address(name string) common.Address {
	v, _ := r.Get(name)
	a, _ := v.(common.Address)
	return a
}

// String returns a string field.
func (r Record) String(name string) string {
	v, _ := r.Get(name)
	s, _ := v.(string)
	return s
}

// Bool returns a bool field.
func (r Record) Bool(name string) bool {
	v, _ := r.Get(name)
	b, _ := v.(bool)
	return b
}

// Bytes32 returns a bytes32 field.
func (r Record) Bytes32(name string) [32]byte {
	v, _ := r.Get(name)
	b, _ := v.([32]byte)
	return b
}

// MarshalJSON writes the record as an object with keys in field order.
// Integers become decimal strings and byte values 0x-prefixed hex.
func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range r {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(f.Name)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(JSONValue(f.Value))
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// JSONValue converts a normalized result into something encoding/json
// renders readably.
func JSONValue(v any) any {
	switch x := v.(type) {
	case nil:
		return nil
	case Record:
		return x
	case []Record:
		return x
	case *big.Int:
		return x.String()
	case common.Address:
		return x.Hex()
	case []byte:
		return hexutil.Encode(x)
	case [32]byte:
		return hexutil.Encode(x[:])
	case string, bool:
		return x
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return toBig(v).String()
	case reflect.Array:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			b := make([]byte, rv.Len())
			reflect.Copy(reflect.ValueOf(b), rv)
			return hexutil.Encode(b)
		}
		fallthrough
	case reflect.Slice:
		out := make([]any, rv.Len())
		for i := range out {
			out[i] = JSONValue(rv.Index(i).Interface())
		}
		return out
	}
	return v
}

func toBig(v any) *big.Int {
	switch x := v.(type) {
	case nil:
		return nil
	case *big.Int:
		return x
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return big.NewInt(rv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return new(big.Int).SetUint64(rv.Uint())
	}
	return nil
}
