package wallet

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
)

// ErrInvalidKey is returned for a malformed hex private key.
var ErrInvalidKey = errors.New("invalid private key")

// Signer signs EVM transactions for a single address. The private key
// stays in the keystore; it is only loaded for the duration of a sign.
type Signer struct {
	address string
	keyRef  string
	ks      Store
}

// NewSigner creates a signer bound to a stored key reference.
func NewSigner(address, keyRef string, ks Store) *Signer {
	return &Signer{address: address, keyRef: keyRef, ks: ks}
}

// ImportKey derives the EVM address from a hex private key, stores the
// key under name, and returns a signer for it.
func ImportKey(name, hexKey string, ks Store) (*Signer, error) {
	privKey, err := crypto.HexToECDSA(stripHexPrefix(hexKey))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}
	addr := crypto.PubkeyToAddress(privKey.PublicKey).Hex()

	ref, err := ks.Save(name, hexKey)
	if err != nil {
		return nil, fmt.Errorf("storing key: %w", err)
	}
	return NewSigner(addr, ref, ks), nil
}

// SignTx signs an EVM transaction and returns the raw signed bytes.
func (s *Signer) SignTx(tx *types.Transaction, chainID *big.Int) ([]byte, error) {
	hexKey, err := s.ks.Retrieve(s.keyRef)
	if err != nil {
		return nil, fmt.Errorf("retrieving key: %w", err)
	}

	privKey, err := crypto.HexToECDSA(stripHexPrefix(hexKey))
	if err != nil {
		return nil, fmt.Errorf("parsing private key: %w", err)
	}

	signer := types.NewLondonSigner(chainID)
	signed, err := types.SignTx(tx, signer, privKey)
	if err != nil {
		return nil, fmt.Errorf("signing transaction: %w", err)
	}

	raw, err := signed.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("marshaling signed tx: %w", err)
	}

	return raw, nil
}

// Address returns the signer's address.
func (s *Signer) Address() string {
	return s.address
}

// KeyRef returns the keystore reference backing this signer.
func (s *Signer) KeyRef() string {
	return s.keyRef
}

func stripHexPrefix(s string) string {
	if len(s) >= 2 && s[:2] == "0x" {
		return s[2:]
	}
	return s
}
