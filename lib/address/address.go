// Package address derives the storage address of an invoice from the
// identities of its parties and its project id.
//
// The address is a tagged hash of creditor, debtor, project id and a one byte
// nonce ("bump"). Only hashes that are NOT valid x-only public keys are
// accepted, so no private key exists that could sign for an invoice address.
// FindAddress walks the bump down from 255 and returns the first valid one,
// which makes the bump canonical: one triple, one address.
package address

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcutil/bech32"
	"github.com/quokkahub/quokkahub.go/lib/security"
)

const HRP = "inv"

var (
	derivationTag = []byte("quokkahub/invoice")

	ErrInvalidSeeds   = errors.New("address seeds produce a valid public key")
	ErrNoValidBump    = errors.New("unable to find a valid bump for address seeds")
	ErrInvalidAddress = errors.New("invalid invoice address")
)

type Address [32]byte

// CreateAddress hashes the seeds with the given bump. It fails with
// ErrInvalidSeeds when the result lies on the curve.
func CreateAddress(creditor, debtor security.Identity, projectID string, bump uint8) (Address, error) {
	var addr Address
	project := []byte(projectID)
	// length prefix keeps (a, "bc") and (ab, "c") style seed splits apart
	prefix := make([]byte, 4)
	binary.LittleEndian.PutUint32(prefix, uint32(len(project)))

	hash := chainhash.TaggedHash(derivationTag, creditor.Bytes(), debtor.Bytes(), prefix, project, []byte{bump})
	if _, err := schnorr.ParsePubKey(hash[:]); err == nil {
		return addr, ErrInvalidSeeds
	}
	copy(addr[:], hash[:])
	return addr, nil
}

// FindAddress returns the address for the triple together with its canonical bump.
func FindAddress(creditor, debtor security.Identity, projectID string) (Address, uint8, error) {
	for bump := 255; bump >= 0; bump-- {
		addr, err := CreateAddress(creditor, debtor, projectID, uint8(bump))
		if err == nil {
			return addr, uint8(bump), nil
		}
	}
	return Address{}, 0, ErrNoValidBump
}

func (a Address) String() string {
	conv, err := bech32.ConvertBits(a[:], 8, 5, true)
	if err != nil {
		return ""
	}
	encoded, err := bech32.Encode(HRP, conv)
	if err != nil {
		return ""
	}
	return encoded
}

func ParseAddress(s string) (Address, error) {
	var addr Address
	hrp, data, err := bech32.Decode(s)
	if err != nil {
		return addr, fmt.Errorf("%w: %v", ErrInvalidAddress, err)
	}
	if hrp != HRP {
		return addr, fmt.Errorf("%w: unexpected prefix %s", ErrInvalidAddress, hrp)
	}
	conv, err := bech32.ConvertBits(data, 5, 8, false)
	if err != nil {
		return addr, fmt.Errorf("%w: %v", ErrInvalidAddress, err)
	}
	if len(conv) != len(addr) {
		return addr, fmt.Errorf("%w: expected %d bytes, got %d", ErrInvalidAddress, len(addr), len(conv))
	}
	copy(addr[:], conv)
	return addr, nil
}
