// Package contract binds the BlockTix smart contracts. It carries the
// built-in ABIs, a simplified ABI codec for the types those contracts
// use, the static address table, and the submit/confirm/extract
// transaction protocol.
package contract

import (
	"encoding/hex"
	"sort"
	"strings"

	"golang.org/x/crypto/sha3"
)

// ABIEntry is one ABI entry (function or event).
type ABIEntry struct {
	Name            string     `json:"name"`
	Type            string     `json:"type"`
	Inputs          []ABIParam `json:"inputs"`
	Outputs         []ABIParam `json:"outputs"`
	StateMutability string     `json:"stateMutability"`
}

// ABIParam is a parameter in an ABI entry.
type ABIParam struct {
	Name       string     `json:"name"`
	Type       string     `json:"type"`
	Indexed    bool       `json:"indexed,omitempty"`
	Components []ABIParam `json:"components,omitempty"`
}

// IsReadFunction returns true if the function is read-only (view/pure).
func (e ABIEntry) IsReadFunction() bool {
	return e.Type == "function" &&
		(e.StateMutability == "view" || e.StateMutability == "pure")
}

// IsWriteFunction returns true if the function modifies state.
func (e ABIEntry) IsWriteFunction() bool {
	return e.Type == "function" &&
		(e.StateMutability == "nonpayable" || e.StateMutability == "payable")
}

// IsPayable returns true if the function accepts value.
func (e ABIEntry) IsPayable() bool {
	return e.Type == "function" && e.StateMutability == "payable"
}

// Signature returns the canonical signature, e.g. "donate(uint256,string,bool)".
func (e ABIEntry) Signature() string {
	types := make([]string, len(e.Inputs))
	for i, p := range e.Inputs {
		types[i] = canonicalType(p)
	}
	return e.Name + "(" + strings.Join(types, ",") + ")"
}

// Selector returns the 4-byte function selector as 0x-prefixed hex.
func (e ABIEntry) Selector() string {
	return "0x" + hex.EncodeToString(keccak([]byte(e.Signature()))[:4])
}

// Topic returns the 32-byte event topic hash as 0x-prefixed hex.
func (e ABIEntry) Topic() string {
	return "0x" + hex.EncodeToString(keccak([]byte(e.Signature())))
}

func canonicalType(p ABIParam) string {
	if strings.HasPrefix(p.Type, "tuple") {
		inner := make([]string, len(p.Components))
		for i, c := range p.Components {
			inner[i] = canonicalType(c)
		}
		return "(" + strings.Join(inner, ",") + ")" + strings.TrimPrefix(p.Type, "tuple")
	}
	return p.Type
}

func keccak(data []byte) []byte {
	h := sha3.NewLegacyKeccak256()
	h.Write(data)
	return h.Sum(nil)
}

func findFunction(abi []ABIEntry, name string) *ABIEntry {
	for i := range abi {
		if abi[i].Type == "function" && abi[i].Name == name {
			return &abi[i]
		}
	}
	return nil
}

func findEvent(abi []ABIEntry, name string) *ABIEntry {
	for i := range abi {
		if abi[i].Type == "event" && abi[i].Name == name {
			return &abi[i]
		}
	}
	return nil
}

// --- built-in ABI registry ---

// Builtin describes one platform contract whose ABI is embedded in the
// binary. Contracts register themselves via init() in their own file.
type Builtin struct {
	Name        Name
	Description string
	ABI         []ABIEntry
}

var builtinRegistry = map[Name]Builtin{}

// RegisterBuiltin adds a built-in ABI to the global registry.
// Call this from init() in the file that defines the ABI.
func RegisterBuiltin(b Builtin) {
	builtinRegistry[b.Name] = b
}

// BuiltinABI returns the ABI entries for a contract name, or nil.
func BuiltinABI(name Name) []ABIEntry {
	b, ok := builtinRegistry[name]
	if !ok {
		return nil
	}
	return b.ABI
}

// AllBuiltins returns all registered contracts sorted by name.
func AllBuiltins() []Builtin {
	out := make([]Builtin, 0, len(builtinRegistry))
	for _, b := range builtinRegistry {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
