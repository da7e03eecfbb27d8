package contract

import (
	"fmt"
	"math/big"
	"reflect"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

var bigIntType = reflect.TypeOf(&big.Int{})

// ParseArgs converts command-line strings into the Go values abi.Pack
// expects for inputs. Arrays are written as "[a,b,c]".
func ParseArgs(inputs abi.Arguments, raw []string) ([]any, error) {
	if len(raw) != len(inputs) {
		return nil, fmt.Errorf("expected %d arguments (%s), got %d", len(inputs), signature(inputs), len(raw))
	}
	out := make([]any, len(raw))
	for i, in := range inputs {
		v, err := ParseArg(in.Type, raw[i])
		if err != nil {
			name := in.Name
			if name == "" {
				name = fmt.Sprintf("#%d", i)
			}
			return nil, fmt.Errorf("argument %s (%s): %w", name, in.Type.String(), err)
		}
		out[i] = v
	}
	return out, nil
}

// ParseArg converts one string into a value of ABI type t.
func ParseArg(t abi.Type, s string) (any, error) {
	s = strings.TrimSpace(s)
	switch t.T {
	case abi.AddressTy:
		if !common.IsHexAddress(s) {
			return nil, fmt.Errorf("invalid address %q", s)
		}
		return common.HexToAddress(s), nil

	case abi.BoolTy:
		return strconv.ParseBool(s)

	case abi.StringTy:
		return s, nil

	case abi.BytesTy:
		return hexutil.Decode(s)

	case abi.FixedBytesTy:
		b, err := hexutil.Decode(s)
		if err != nil {
			return nil, err
		}
		if len(b) > t.Size {
			return nil, fmt.Errorf("%d bytes do not fit bytes%d", len(b), t.Size)
		}
		rv := reflect.New(t.GetType()).Elem()
		reflect.Copy(rv, reflect.ValueOf(b))
		return rv.Interface(), nil

	case abi.IntTy, abi.UintTy:
		return parseInt(t, s)

	case abi.SliceTy, abi.ArrayTy:
		parts := splitList(s)
		if t.T == abi.ArrayTy && len(parts) != t.Size {
			return nil, fmt.Errorf("expected %d elements, got %d", t.Size, len(parts))
		}
		var rv reflect.Value
		if t.T == abi.SliceTy {
			rv = reflect.MakeSlice(t.GetType(), len(parts), len(parts))
		} else {
			rv = reflect.New(t.GetType()).Elem()
		}
		for i, p := range parts {
			v, err := ParseArg(*t.Elem, p)
			if err != nil {
				return nil, fmt.Errorf("element %d: %w", i, err)
			}
			rv.Index(i).Set(reflect.ValueOf(v))
		}
		return rv.Interface(), nil
	}
	return nil, fmt.Errorf("type %s cannot be given on the command line", t.String())
}

func parseInt(t abi.Type, s string) (any, error) {
	n, ok := new(big.Int).SetString(s, 0)
	if !ok {
		return nil, fmt.Errorf("invalid integer %q", s)
	}
	if t.T == abi.UintTy {
		if n.Sign() < 0 || n.BitLen() > t.Size {
			return nil, fmt.Errorf("%s out of range for uint%d", s, t.Size)
		}
	} else {
		limit := new(big.Int).Lsh(big.NewInt(1), uint(t.Size-1))
		if n.Cmp(limit) >= 0 || n.Cmp(new(big.Int).Neg(limit)) < 0 {
			return nil, fmt.Errorf("%s out of range for int%d", s, t.Size)
		}
	}

	goType := t.GetType()
	if goType == bigIntType {
		return n, nil
	}
	rv := reflect.New(goType).Elem()
	if t.T == abi.UintTy {
		rv.SetUint(n.Uint64())
	} else {
		rv.SetInt(n.Int64())
	}
	return rv.Interface(), nil
}

func splitList(s string) []string {
	s = strings.TrimSuffix(strings.TrimPrefix(s, "["), "]")
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

func signature(args abi.Arguments) string {
	types := make([]string, len(args))
	for i, a := range args {
		types[i] = a.Type.String()
	}
	return strings.Join(types, ",")
}
