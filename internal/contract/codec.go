package contract

import (
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"
)

// ABI codec for the types the BlockTix contracts actually use:
// static scalars, strings, uint256[] id lists, and arrays of structs
// (offers, donations). Values decode to strings for scalars and
// []interface{} for arrays and tuples.

// encodeCall builds calldata: 4-byte selector + head/tail encoded args.
func encodeCall(fn *ABIEntry, args []string) (string, error) {
	if len(args) != len(fn.Inputs) {
		return "", fmt.Errorf("%s expects %d args, got %d", fn.Name, len(fn.Inputs), len(args))
	}

	headSize := 32 * len(fn.Inputs)
	var head, tail strings.Builder

	for i, param := range fn.Inputs {
		t := parseType(param)
		if t.dynamic() {
			offset := headSize + tail.Len()/2
			head.WriteString(fmt.Sprintf("%064x", offset))
			enc, err := encodeDynamic(t, args[i])
			if err != nil {
				return "", fmt.Errorf("encoding param %s: %w", param.Name, err)
			}
			tail.WriteString(enc)
		} else {
			enc, err := encodeStatic(t, args[i])
			if err != nil {
				return "", fmt.Errorf("encoding param %s: %w", param.Name, err)
			}
			head.WriteString(enc)
		}
	}

	return fn.Selector() + head.String() + tail.String(), nil
}

func encodeStatic(t abiType, val string) (string, error) {
	switch t.kind {
	case kindAddress:
		clean := strings.TrimPrefix(strings.ToLower(val), "0x")
		if len(clean) != 40 {
			return "", fmt.Errorf("invalid address: %s", val)
		}
		return fmt.Sprintf("%064s", clean), nil

	case kindUint:
		n := new(big.Int)
		if _, ok := n.SetString(val, 0); !ok || n.Sign() < 0 {
			return "", fmt.Errorf("invalid unsigned integer: %s", val)
		}
		return fmt.Sprintf("%064x", n), nil

	case kindBool:
		if val == "true" || val == "1" {
			return fmt.Sprintf("%064d", 1), nil
		}
		return fmt.Sprintf("%064d", 0), nil

	case kindBytes32:
		clean := strings.TrimPrefix(val, "0x")
		if len(clean) > 64 {
			return "", fmt.Errorf("bytes32 too long: %s", val)
		}
		return clean + strings.Repeat("0", 64-len(clean)), nil

	default:
		return "", fmt.Errorf("cannot encode type %s", t.kind)
	}
}

func encodeDynamic(t abiType, val string) (string, error) {
	switch t.kind {
	case kindString, kindBytes:
		var data []byte
		if t.kind == kindBytes {
			b, err := hex.DecodeString(strings.TrimPrefix(val, "0x"))
			if err != nil {
				return "", fmt.Errorf("invalid bytes: %s", val)
			}
			data = b
		} else {
			data = []byte(val)
		}
		padded := len(data)
		if rem := padded % 32; rem != 0 {
			padded += 32 - rem
		}
		out := fmt.Sprintf("%064x", len(data)) + hex.EncodeToString(data)
		out += strings.Repeat("0", 2*(padded-len(data)))
		return out, nil

	default:
		return "", fmt.Errorf("cannot encode dynamic type %s", t.kind)
	}
}

// decodeOutputs decodes a hex eth_call result against fn's outputs.
func decodeOutputs(fn *ABIEntry, hexData string) ([]interface{}, error) {
	data, err := hex.DecodeString(strings.TrimPrefix(hexData, "0x"))
	if err != nil {
		return nil, fmt.Errorf("decoding hex result: %w", err)
	}
	if len(fn.Outputs) == 0 {
		return nil, nil
	}
	types := make([]abiType, len(fn.Outputs))
	for i, p := range fn.Outputs {
		types[i] = parseType(p)
	}
	return decodeTuple(types, data)
}

// --- type model ---

const (
	kindAddress = "address"
	kindUint    = "uint"
	kindBool    = "bool"
	kindBytes32 = "bytes32"
	kindString  = "string"
	kindBytes   = "bytes"
	kindArray   = "array"
	kindTuple   = "tuple"
)

type abiType struct {
	kind  string
	elem  *abiType
	comps []abiType
}

func parseType(p ABIParam) abiType {
	if strings.HasSuffix(p.Type, "[]") {
		inner := p
		inner.Type = strings.TrimSuffix(p.Type, "[]")
		elem := parseType(inner)
		return abiType{kind: kindArray, elem: &elem}
	}
	if strings.HasPrefix(p.Type, "tuple") {
		comps := make([]abiType, len(p.Components))
		for i, c := range p.Components {
			comps[i] = parseType(c)
		}
		return abiType{kind: kindTuple, comps: comps}
	}
	switch {
	case p.Type == "address":
		return abiType{kind: kindAddress}
	case p.Type == "bool":
		return abiType{kind: kindBool}
	case p.Type == "string":
		return abiType{kind: kindString}
	case p.Type == "bytes":
		return abiType{kind: kindBytes}
	case strings.HasPrefix(p.Type, "bytes"):
		return abiType{kind: kindBytes32}
	case strings.HasPrefix(p.Type, "uint"), strings.HasPrefix(p.Type, "int"):
		return abiType{kind: kindUint}
	default:
		return abiType{kind: kindBytes32}
	}
}

func (t abiType) dynamic() bool {
	switch t.kind {
	case kindString, kindBytes, kindArray:
		return true
	case kindTuple:
		for _, c := range t.comps {
			if c.dynamic() {
				return true
			}
		}
	}
	return false
}

// --- decoding ---

// decodeTuple decodes a sequence of values laid out in frame. Dynamic
// members are reached through offsets relative to the frame start.
func decodeTuple(types []abiType, frame []byte) ([]interface{}, error) {
	out := make([]interface{}, 0, len(types))
	pos := 0
	for _, t := range types {
		word, err := wordAt(frame, pos)
		if err != nil {
			return nil, err
		}
		if t.dynamic() {
			offset := int(new(big.Int).SetBytes(word).Uint64())
			if offset > len(frame) {
				return nil, fmt.Errorf("offset %d out of range", offset)
			}
			v, err := decodeDynamic(t, frame[offset:])
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		} else if t.kind == kindTuple {
			v, err := decodeTuple(t.comps, frame[pos:])
			if err != nil {
				return nil, err
			}
			out = append(out, v)
			pos += 32 * (len(t.comps) - 1)
		} else {
			out = append(out, decodeStatic(t, word))
		}
		pos += 32
	}
	return out, nil
}

func decodeDynamic(t abiType, frame []byte) (interface{}, error) {
	switch t.kind {
	case kindString, kindBytes:
		word, err := wordAt(frame, 0)
		if err != nil {
			return nil, err
		}
		length := int(new(big.Int).SetBytes(word).Uint64())
		if 32+length > len(frame) {
			return nil, fmt.Errorf("truncated %s of length %d", t.kind, length)
		}
		raw := frame[32 : 32+length]
		if t.kind == kindBytes {
			return "0x" + hex.EncodeToString(raw), nil
		}
		return string(raw), nil

	case kindArray:
		word, err := wordAt(frame, 0)
		if err != nil {
			return nil, err
		}
		n := int(new(big.Int).SetBytes(word).Uint64())
		elems := frame[32:]
		out := make([]interface{}, 0, n)
		for i := 0; i < n; i++ {
			if t.elem.dynamic() {
				offWord, err := wordAt(elems, i*32)
				if err != nil {
					return nil, err
				}
				offset := int(new(big.Int).SetBytes(offWord).Uint64())
				if offset > len(elems) {
					return nil, fmt.Errorf("array element offset %d out of range", offset)
				}
				v, err := decodeDynamic(*t.elem, elems[offset:])
				if err != nil {
					return nil, err
				}
				out = append(out, v)
			} else if t.elem.kind == kindTuple {
				size := 32 * len(t.elem.comps)
				if i*size+size > len(elems) {
					return nil, fmt.Errorf("truncated tuple array")
				}
				v, err := decodeTuple(t.elem.comps, elems[i*size:])
				if err != nil {
					return nil, err
				}
				out = append(out, v)
			} else {
				word, err := wordAt(elems, i*32)
				if err != nil {
					return nil, err
				}
				out = append(out, decodeStatic(*t.elem, word))
			}
		}
		return out, nil

	case kindTuple:
		v, err := decodeTuple(t.comps, frame)
		if err != nil {
			return nil, err
		}
		return v, nil

	default:
		return nil, fmt.Errorf("cannot decode dynamic type %s", t.kind)
	}
}

func decodeStatic(t abiType, word []byte) string {
	switch t.kind {
	case kindAddress:
		return "0x" + hex.EncodeToString(word[12:])
	case kindUint:
		return new(big.Int).SetBytes(word).String()
	case kindBool:
		if word[31] == 1 {
			return "true"
		}
		return "false"
	default:
		return "0x" + hex.EncodeToString(word)
	}
}

func wordAt(data []byte, pos int) ([]byte, error) {
	if pos < 0 || pos+32 > len(data) {
		return nil, fmt.Errorf("truncated word at offset %d", pos)
	}
	return data[pos : pos+32], nil
}
