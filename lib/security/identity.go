package security

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	"github.com/nbd-wtf/go-nostr/nip19"
)

var ErrInvalidIdentity = errors.New("invalid identity")

// Identity is a BIP340 x-only public key. Every party of an invoice is
// identified by one and proves control of it with a schnorr signature.
type Identity [32]byte

func ParseIdentity(s string) (Identity, error) {
	var id Identity
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "npub1") {
		prefix, value, err := nip19.Decode(s)
		if err != nil {
			return id, fmt.Errorf("%w: %v", ErrInvalidIdentity, err)
		}
		pubkeyHex, ok := value.(string)
		if prefix != "npub" || !ok {
			return id, fmt.Errorf("%w: unexpected bech32 prefix %s", ErrInvalidIdentity, prefix)
		}
		s = pubkeyHex
	}
	b, err := hex.DecodeString(strings.ToLower(s))
	if err != nil {
		return id, fmt.Errorf("%w: %v", ErrInvalidIdentity, err)
	}
	return IdentityFromBytes(b)
}

func IdentityFromBytes(b []byte) (Identity, error) {
	var id Identity
	if len(b) != len(id) {
		return id, fmt.Errorf("%w: expected %d bytes, got %d", ErrInvalidIdentity, len(id), len(b))
	}
	// the key has to be a point on the curve, otherwise nobody can sign for it
	if _, err := schnorr.ParsePubKey(b); err != nil {
		return id, fmt.Errorf("%w: %v", ErrInvalidIdentity, err)
	}
	copy(id[:], b)
	return id, nil
}

// MustParseIdentity is meant for constants and tests.
func MustParseIdentity(s string) Identity {
	id, err := ParseIdentity(s)
	if err != nil {
		panic(err)
	}
	return id
}

func (id Identity) String() string {
	return hex.EncodeToString(id[:])
}

func (id Identity) Npub() string {
	npub, err := nip19.EncodePublicKey(id.String())
	if err != nil {
		return ""
	}
	return npub
}

func (id Identity) Bytes() []byte {
	return id[:]
}

func (id Identity) IsZero() bool {
	return id == Identity{}
}

func (id Identity) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

func (id *Identity) UnmarshalText(text []byte) error {
	parsed, err := ParseIdentity(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// VerifySignature checks a BIP340 signature of hash made by id.
func VerifySignature(id Identity, hash, signature []byte) bool {
	pubkey, err := schnorr.ParsePubKey(id[:])
	if err != nil {
		return false
	}
	sig, err := schnorr.ParseSignature(signature)
	if err != nil {
		return false
	}
	return sig.Verify(hash, pubkey)
}
