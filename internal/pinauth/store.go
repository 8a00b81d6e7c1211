package pinauth

import (
	"context"
	"crypto/subtle"
	"fmt"
)

// WordStore persists a single 32-bit word in non-volatile memory.
type WordStore interface {
	// LoadWord returns the stored value. ok is false when the word has
	// never been written (erased memory).
	LoadWord(ctx context.Context) (value uint32, ok bool, err error)

	// StoreWord persists value. Writing the value already stored must be
	// harmless.
	StoreWord(ctx context.Context, value uint32) error
}

// ValidatePIN checks that pin is exactly PINLength decimal digits.
func ValidatePIN(pin string) error {
	if len(pin) != PINLength {
		return ErrInvalidPIN
	}
	for i := 0; i < len(pin); i++ {
		if !Key(pin[i]).IsDigit() {
			return ErrInvalidPIN
		}
	}
	return nil
}

// HashStore verifies candidates against a persisted FNV-1a reference word.
//
// Only the digest of the default credential is kept in memory.
type HashStore struct {
	nv        WordStore
	reference uint32
}

// NewHashStore creates a HashStore whose known-good credential is defaultPIN.
func NewHashStore(nv WordStore, defaultPIN string) (*HashStore, error) {
	if nv == nil {
		return nil, fmt.Errorf("%w: word store", ErrMissingCollaborator)
	}
	if err := ValidatePIN(defaultPIN); err != nil {
		return nil, err
	}
	return &HashStore{
		nv:        nv,
		reference: Hash([]byte(defaultPIN)),
	}, nil
}

// Reference returns the digest of the default credential.
func (s *HashStore) Reference() uint32 {
	return s.reference
}

// InitializeIfNeeded makes the persisted word equal the digest of the
// default credential. It only writes when the stored word is missing or
// different, so repeated calls are no-ops.
//
// Returns:
//   - written: true if the store was updated
//   - error: wrapped ErrStoreUnavailable on read or write failure
func (s *HashStore) InitializeIfNeeded(ctx context.Context) (bool, error) {
	stored, ok, err := s.nv.LoadWord(ctx)
	if err != nil {
		return false, fmt.Errorf("%w: reading reference: %w", ErrStoreUnavailable, err)
	}
	if ok && stored == s.reference {
		return false, nil
	}
	if err := s.nv.StoreWord(ctx, s.reference); err != nil {
		return false, fmt.Errorf("%w: writing reference: %w", ErrStoreUnavailable, err)
	}
	return true, nil
}

// Verify reports whether candidate is exactly PINLength bytes and hashes to
// the persisted word. Any other length is rejected without hashing and
// without touching storage.
func (s *HashStore) Verify(ctx context.Context, candidate []byte) (bool, error) {
	if len(candidate) != PINLength {
		return false, nil
	}

	stored, ok, err := s.nv.LoadWord(ctx)
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	if !ok {
		return false, ErrStoreUninitialised
	}

	return Hash(candidate) == stored, nil
}

// PlainVerifier compares candidates against a fixed plaintext PIN.
// It reproduces the weak demo firmware and must not be used in production.
type PlainVerifier struct {
	pin [PINLength]byte
}

// NewPlainVerifier creates a PlainVerifier for pin.
func NewPlainVerifier(pin string) (*PlainVerifier, error) {
	if err := ValidatePIN(pin); err != nil {
		return nil, err
	}
	v := &PlainVerifier{}
	copy(v.pin[:], pin)
	return v, nil
}

// Verify implements Verifier. Only 4-character candidates can match.
func (v *PlainVerifier) Verify(_ context.Context, candidate []byte) (bool, error) {
	if len(candidate) != PINLength {
		return false, nil
	}
	return subtle.ConstantTimeCompare(candidate, v.pin[:]) == 1, nil
}
