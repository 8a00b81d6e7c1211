package pinauth

import (
	"context"
	"errors"
	"testing"
)

func TestValidatePIN(t *testing.T) {
	tests := []struct {
		pin     string
		wantErr bool
	}{
		{"0258", false},
		{"9999", false},
		{"", true},
		{"025", true},
		{"02580", true},
		{"02a8", true},
		{"#258", true},
	}

	for _, tt := range tests {
		t.Run(tt.pin, func(t *testing.T) {
			err := ValidatePIN(tt.pin)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePIN(%q) error = %v, wantErr %v", tt.pin, err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidPIN) {
				t.Errorf("ValidatePIN(%q) error = %v, want ErrInvalidPIN", tt.pin, err)
			}
		})
	}
}

func TestNewHashStore(t *testing.T) {
	t.Run("nil word store", func(t *testing.T) {
		if _, err := NewHashStore(nil, "0258"); !errors.Is(err, ErrMissingCollaborator) {
			t.Errorf("NewHashStore(nil) error = %v, want ErrMissingCollaborator", err)
		}
	})

	t.Run("invalid default PIN", func(t *testing.T) {
		if _, err := NewHashStore(&memWord{}, "12"); !errors.Is(err, ErrInvalidPIN) {
			t.Errorf("NewHashStore() error = %v, want ErrInvalidPIN", err)
		}
	})

	t.Run("reference digest", func(t *testing.T) {
		s, err := NewHashStore(&memWord{}, "0258")
		if err != nil {
			t.Fatalf("NewHashStore() error = %v", err)
		}
		if s.Reference() != 0xE175482A {
			t.Errorf("Reference() = 0x%08X, want 0xE175482A", s.Reference())
		}
	})
}

func TestHashStore_InitializeIfNeeded(t *testing.T) {
	ctx := context.Background()
	nv := &memWord{}
	s, err := NewHashStore(nv, "0258")
	if err != nil {
		t.Fatalf("NewHashStore() error = %v", err)
	}

	written, err := s.InitializeIfNeeded(ctx)
	if err != nil {
		t.Fatalf("InitializeIfNeeded() error = %v", err)
	}
	if !written {
		t.Error("first InitializeIfNeeded() should write the reference")
	}
	if nv.value != 0xE175482A {
		t.Errorf("stored word = 0x%08X, want 0xE175482A", nv.value)
	}

	written, err = s.InitializeIfNeeded(ctx)
	if err != nil {
		t.Fatalf("second InitializeIfNeeded() error = %v", err)
	}
	if written {
		t.Error("second InitializeIfNeeded() should be a no-op")
	}
	if nv.stores != 1 {
		t.Errorf("stores = %d, want 1", nv.stores)
	}
}

func TestHashStore_InitializeOverwritesForeignWord(t *testing.T) {
	nv := &memWord{value: 0xDEADBEEF, set: true}
	s, _ := NewHashStore(nv, "0258")

	written, err := s.InitializeIfNeeded(context.Background())
	if err != nil {
		t.Fatalf("InitializeIfNeeded() error = %v", err)
	}
	if !written || nv.value != 0xE175482A {
		t.Errorf("written = %v, value = 0x%08X; want true, 0xE175482A", written, nv.value)
	}
}

func TestHashStore_InitializeReadError(t *testing.T) {
	s, _ := NewHashStore(&memWord{loadErr: errBoom}, "0258")

	_, err := s.InitializeIfNeeded(context.Background())
	if !errors.Is(err, ErrStoreUnavailable) {
		t.Errorf("InitializeIfNeeded() error = %v, want ErrStoreUnavailable", err)
	}
}

func TestHashStore_Verify(t *testing.T) {
	ctx := context.Background()
	nv := &memWord{}
	s, _ := NewHashStore(nv, "0258")
	if _, err := s.InitializeIfNeeded(ctx); err != nil {
		t.Fatalf("InitializeIfNeeded() error = %v", err)
	}

	tests := []struct {
		candidate string
		want      bool
	}{
		{"0258", true},
		{"1111", false},
		{"0259", false},
		{"", false},
		{"025", false},
		{"555", false},
		{"02580", false},
	}

	for _, tt := range tests {
		t.Run(tt.candidate, func(t *testing.T) {
			got, err := s.Verify(ctx, []byte(tt.candidate))
			if err != nil {
				t.Fatalf("Verify() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Verify(%q) = %v, want %v", tt.candidate, got, tt.want)
			}
		})
	}
}

// TestHashStore_VerifyMatchesDefinition checks verify(c) == (len 4 && hash match)
// over every 4-digit candidate plus a spread of other lengths.
func TestHashStore_VerifyMatchesDefinition(t *testing.T) {
	ctx := context.Background()
	nv := &memWord{}
	s, _ := NewHashStore(nv, "0258")
	if _, err := s.InitializeIfNeeded(ctx); err != nil {
		t.Fatalf("InitializeIfNeeded() error = %v", err)
	}

	candidates := []string{"", "0", "02", "025", "02580", "0258#"}
	for i := 0; i < 10000; i++ {
		candidates = append(candidates, string([]byte{
			byte('0' + i/1000%10), byte('0' + i/100%10), byte('0' + i/10%10), byte('0' + i%10),
		}))
	}

	for _, c := range candidates {
		got, err := s.Verify(ctx, []byte(c))
		if err != nil {
			t.Fatalf("Verify(%q) error = %v", c, err)
		}
		want := len(c) == PINLength && Hash([]byte(c)) == nv.value
		if got != want {
			t.Errorf("Verify(%q) = %v, want %v", c, got, want)
		}
	}
}

func TestHashStore_VerifyWrongLengthSkipsStorage(t *testing.T) {
	nv := &memWord{}
	s, _ := NewHashStore(nv, "0258")
	_, _ = s.InitializeIfNeeded(context.Background())
	loads := nv.loads

	if ok, _ := s.Verify(context.Background(), []byte("555")); ok {
		t.Error("Verify(555) = true, want false")
	}
	if nv.loads != loads {
		t.Errorf("Verify with wrong length read storage (%d loads)", nv.loads-loads)
	}
}

func TestHashStore_VerifyUninitialised(t *testing.T) {
	s, _ := NewHashStore(&memWord{}, "0258")

	ok, err := s.Verify(context.Background(), []byte("0258"))
	if ok {
		t.Error("Verify() on empty store = true, want false")
	}
	if !errors.Is(err, ErrStoreUninitialised) {
		t.Errorf("Verify() error = %v, want ErrStoreUninitialised", err)
	}
}

func TestHashStore_VerifyReadError(t *testing.T) {
	nv := &memWord{}
	s, _ := NewHashStore(nv, "0258")
	_, _ = s.InitializeIfNeeded(context.Background())
	nv.loadErr = errBoom

	ok, err := s.Verify(context.Background(), []byte("0258"))
	if ok || !errors.Is(err, ErrStoreUnavailable) {
		t.Errorf("Verify() = %v, %v; want false, ErrStoreUnavailable", ok, err)
	}
}

func TestPlainVerifier(t *testing.T) {
	v, err := NewPlainVerifier("0258")
	if err != nil {
		t.Fatalf("NewPlainVerifier() error = %v", err)
	}

	tests := []struct {
		candidate string
		want      bool
	}{
		{"0258", true},
		{"1111", false},
		{"025", false},
		{"02580", false},
	}
	for _, tt := range tests {
		got, err := v.Verify(context.Background(), []byte(tt.candidate))
		if err != nil {
			t.Fatalf("Verify() error = %v", err)
		}
		if got != tt.want {
			t.Errorf("Verify(%q) = %v, want %v", tt.candidate, got, tt.want)
		}
	}

	if _, err := NewPlainVerifier("abcd"); !errors.Is(err, ErrInvalidPIN) {
		t.Errorf("NewPlainVerifier(abcd) error = %v, want ErrInvalidPIN", err)
	}
}
