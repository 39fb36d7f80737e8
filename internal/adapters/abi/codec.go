package abi

import (
	"bytes"
	"context"
	"fmt"
	"math/big"
	"reflect"
	"strconv"
	"strings"

	ethabi "github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/lmittmann/w3"

	"github.com/gantry-org/gantry-cli/internal/domain"
	"github.com/gantry-org/gantry-cli/internal/domain/models"
	"github.com/gantry-org/gantry-cli/internal/usecase"
)

// Codec encodes plan arguments against contract ABIs. Plan arguments
// arrive as strings; the codec coerces each one to the Go value the ABI
// type wants before packing.
type Codec struct{}

// NewCodec creates a new argument codec.
func NewCodec() *Codec {
	return &Codec{}
}

// BuildCreation returns the artifact's creation bytecode with the packed
// constructor arguments appended.
func (c *Codec) BuildCreation(ctx context.Context, artifact *models.Artifact, args []domain.ArgValue) ([]byte, error) {
	code, err := artifact.CreationCode()
	if err != nil {
		return nil, err
	}

	parsed, err := ethabi.JSON(bytes.NewReader(artifact.ABI))
	if err != nil {
		return nil, fmt.Errorf("artifact %s: failed to parse ABI: %w", artifact.Name, err)
	}

	inputs := parsed.Constructor.Inputs
	if len(args) != len(inputs) {
		return nil, fmt.Errorf("artifact %s constructor takes %d argument(s), plan provides %d",
			artifact.Name, len(inputs), len(args))
	}
	if len(inputs) == 0 {
		return code, nil
	}

	values := make([]interface{}, len(args))
	for i, arg := range args {
		v, err := coerce(arg, inputs[i].Type)
		if err != nil {
			return nil, fmt.Errorf("artifact %s constructor argument %d: %w", artifact.Name, i, err)
		}
		values[i] = v
	}

	packed, err := inputs.Pack(values...)
	if err != nil {
		return nil, fmt.Errorf("artifact %s: failed to pack constructor arguments: %w", artifact.Name, err)
	}

	return append(code, packed...), nil
}

// EncodeCall encodes a human-readable method signature plus arguments
// into calldata.
func (c *Codec) EncodeCall(ctx context.Context, method string, args []domain.ArgValue) ([]byte, error) {
	fn, err := w3.NewFunc(method, "")
	if err != nil {
		return nil, fmt.Errorf("failed to parse signature %q: %w", method, err)
	}

	inputs := fn.Args
	if len(args) != len(inputs) {
		return nil, fmt.Errorf("method %s takes %d argument(s), plan provides %d",
			method, len(inputs), len(args))
	}

	values := make([]interface{}, len(args))
	for i, arg := range args {
		v, err := coerce(arg, inputs[i].Type)
		if err != nil {
			return nil, fmt.Errorf("method %s argument %d: %w", method, i, err)
		}
		values[i] = v
	}

	data, err := fn.EncodeArgs(values...)
	if err != nil {
		return nil, fmt.Errorf("failed to encode call %s: %w", method, err)
	}
	return data, nil
}

// coerce converts one plan argument into the Go value the abi package
// expects for the type.
func coerce(a domain.ArgValue, t ethabi.Type) (interface{}, error) {
	switch t.T {
	case ethabi.SliceTy, ethabi.ArrayTy, ethabi.TupleTy:
		if !a.IsList() {
			return nil, fmt.Errorf("type %s needs a list, got %q", t.String(), a.Scalar)
		}
	default:
		if a.IsList() {
			return nil, fmt.Errorf("type %s needs a scalar, got a list", t.String())
		}
	}

	switch t.T {
	case ethabi.AddressTy:
		if !common.IsHexAddress(a.Scalar) {
			return nil, fmt.Errorf("%q: %w", a.Scalar, domain.ErrInvalidAddress)
		}
		return common.HexToAddress(a.Scalar), nil

	case ethabi.UintTy, ethabi.IntTy:
		return coerceInteger(a.Scalar, t)

	case ethabi.BoolTy:
		v, err := strconv.ParseBool(a.Scalar)
		if err != nil {
			return nil, fmt.Errorf("%q is not a bool", a.Scalar)
		}
		return v, nil

	case ethabi.StringTy:
		return a.Scalar, nil

	case ethabi.BytesTy:
		raw, err := hexutil.Decode(a.Scalar)
		if err != nil {
			return nil, fmt.Errorf("%q is not hex bytes: %w", a.Scalar, err)
		}
		return raw, nil

	case ethabi.FixedBytesTy:
		raw, err := hexutil.Decode(a.Scalar)
		if err != nil {
			return nil, fmt.Errorf("%q is not hex bytes: %w", a.Scalar, err)
		}
		if len(raw) != t.Size {
			return nil, fmt.Errorf("%q is %d byte(s), type %s needs %d", a.Scalar, len(raw), t.String(), t.Size)
		}
		arr := reflect.New(t.GetType()).Elem()
		reflect.Copy(arr, reflect.ValueOf(raw))
		return arr.Interface(), nil

	case ethabi.SliceTy:
		slice := reflect.MakeSlice(t.GetType(), len(a.List), len(a.List))
		for i, item := range a.List {
			v, err := coerce(item, *t.Elem)
			if err != nil {
				return nil, fmt.Errorf("element %d: %w", i, err)
			}
			slice.Index(i).Set(reflect.ValueOf(v))
		}
		return slice.Interface(), nil

	case ethabi.ArrayTy:
		if len(a.List) != t.Size {
			return nil, fmt.Errorf("type %s needs %d element(s), got %d", t.String(), t.Size, len(a.List))
		}
		arr := reflect.New(t.GetType()).Elem()
		for i, item := range a.List {
			v, err := coerce(item, *t.Elem)
			if err != nil {
				return nil, fmt.Errorf("element %d: %w", i, err)
			}
			arr.Index(i).Set(reflect.ValueOf(v))
		}
		return arr.Interface(), nil

	case ethabi.TupleTy:
		if len(a.List) != len(t.TupleElems) {
			return nil, fmt.Errorf("tuple %s needs %d field(s), got %d", t.String(), len(t.TupleElems), len(a.List))
		}
		tuple := reflect.New(t.GetType()).Elem()
		for i, item := range a.List {
			v, err := coerce(item, *t.TupleElems[i])
			if err != nil {
				return nil, fmt.Errorf("field %d: %w", i, err)
			}
			tuple.Field(i).Set(reflect.ValueOf(v))
		}
		return tuple.Interface(), nil

	default:
		return nil, fmt.Errorf("unsupported ABI type %s", t.String())
	}
}

// coerceInteger parses a numeric literal and sizes it the way the abi
// package wants: native Go integers for 8/16/32/64-bit types, *big.Int
// for everything else.
func coerceInteger(s string, t ethabi.Type) (interface{}, error) {
	v, err := parseBigInt(s)
	if err != nil {
		return nil, err
	}

	if t.T == ethabi.UintTy {
		if v.Sign() < 0 {
			return nil, fmt.Errorf("%q is negative, type %s is unsigned", s, t.String())
		}
		if v.BitLen() > t.Size {
			return nil, fmt.Errorf("%q does not fit in %s", s, t.String())
		}
		switch t.Size {
		case 8:
			return uint8(v.Uint64()), nil
		case 16:
			return uint16(v.Uint64()), nil
		case 32:
			return uint32(v.Uint64()), nil
		case 64:
			return v.Uint64(), nil
		}
		return v, nil
	}

	// Signed: the value must fit in Size-1 bits plus sign.
	limit := new(big.Int).Lsh(big.NewInt(1), uint(t.Size-1))
	upper := new(big.Int).Sub(limit, big.NewInt(1))
	lower := new(big.Int).Neg(limit)
	if v.Cmp(lower) < 0 || v.Cmp(upper) > 0 {
		return nil, fmt.Errorf("%q does not fit in %s", s, t.String())
	}
	switch t.Size {
	case 8:
		return int8(v.Int64()), nil
	case 16:
		return int16(v.Int64()), nil
	case 32:
		return int32(v.Int64()), nil
	case 64:
		return v.Int64(), nil
	}
	return v, nil
}

// parseBigInt reads integer literals the way plans write them: decimal,
// 0x hex, or scientific shorthand like 5e17 for token amounts.
func parseBigInt(s string) (*big.Int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("empty number")
	}

	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}

	var v *big.Int
	var ok bool
	switch {
	case strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X"):
		v, ok = new(big.Int).SetString(s[2:], 16)
	case strings.ContainsAny(s, "eE"):
		v, ok = parseScientific(s)
	default:
		v, ok = new(big.Int).SetString(s, 10)
	}
	if !ok {
		return nil, fmt.Errorf("%q is not an integer", s)
	}

	if neg {
		v.Neg(v)
	}
	return v, nil
}

// parseScientific expands mantissa-exponent shorthand into an integer.
// The mantissa may carry decimals as long as the exponent absorbs them:
// 2.5e3 is 2500, 2.5e0 is not an integer.
func parseScientific(s string) (*big.Int, bool) {
	mantissa, expPart, found := strings.Cut(s, "e")
	if !found {
		mantissa, expPart, _ = strings.Cut(s, "E")
	}

	exp, err := strconv.Atoi(expPart)
	if err != nil || exp < 0 {
		return nil, false
	}

	whole, frac, _ := strings.Cut(mantissa, ".")
	if len(frac) > exp {
		return nil, false
	}
	exp -= len(frac)

	v, ok := new(big.Int).SetString(whole+frac, 10)
	if !ok {
		return nil, false
	}
	scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(exp)), nil)
	return v.Mul(v, scale), true
}

// Ensure Codec implements ArgumentCodec
var _ usecase.ArgumentCodec = (*Codec)(nil)
