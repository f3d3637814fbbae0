// Package features models the build-time mechanism selection that
// surrounds the arithmetic core: an enumerated set of key types and
// algorithms a deployment compiles in. The core itself never branches on
// this configuration; callers consult the set to decide which mechanisms,
// and therefore which modulus shapes, they drive through the core.
package features

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// Mechanism identifies one selectable key type or algorithm.
type Mechanism uint16

const (
	// MechRSAKeyPair enables RSA key material handling.
	MechRSAKeyPair Mechanism = 1
	// MechRSAPKCS1v15Sign enables PKCS #1 v1.5 signatures.
	MechRSAPKCS1v15Sign Mechanism = 2
	// MechRSAPKCS1v15Crypt enables PKCS #1 v1.5 encryption.
	MechRSAPKCS1v15Crypt Mechanism = 3
	// MechRSAOAEP enables RSA-OAEP encryption.
	MechRSAOAEP Mechanism = 4
	// MechRSAPSS enables RSA-PSS signatures.
	MechRSAPSS Mechanism = 5
	// MechECCKeyPair enables elliptic curve key material handling.
	MechECCKeyPair Mechanism = 6
	// MechECDSA enables randomized ECDSA signatures.
	MechECDSA Mechanism = 7
	// MechDeterministicECDSA enables RFC 6979 deterministic ECDSA.
	MechDeterministicECDSA Mechanism = 8
	// MechECDH enables elliptic curve Diffie-Hellman.
	MechECDH Mechanism = 9
	// MechDHKeyPair enables finite field Diffie-Hellman key material.
	MechDHKeyPair Mechanism = 10
	// MechFFDH enables finite field Diffie-Hellman agreement.
	MechFFDH Mechanism = 11
	// MechJPAKE enables the J-PAKE password-authenticated exchange.
	MechJPAKE Mechanism = 12
)

// Info describes the modulus shapes a mechanism drives through the
// arithmetic core.
type Info struct {
	Name string
	// MinModulusBits and MaxModulusBits bound the moduli this mechanism
	// presents to the core.
	MinModulusBits int
	MaxModulusBits int
}

var mechanisms = map[Mechanism]Info{
	MechRSAKeyPair:         {Name: "rsa-key-pair", MinModulusBits: 1024, MaxModulusBits: 4096},
	MechRSAPKCS1v15Sign:    {Name: "rsa-pkcs1v15-sign", MinModulusBits: 1024, MaxModulusBits: 4096},
	MechRSAPKCS1v15Crypt:   {Name: "rsa-pkcs1v15-crypt", MinModulusBits: 1024, MaxModulusBits: 4096},
	MechRSAOAEP:            {Name: "rsa-oaep", MinModulusBits: 1024, MaxModulusBits: 4096},
	MechRSAPSS:             {Name: "rsa-pss", MinModulusBits: 1024, MaxModulusBits: 4096},
	MechECCKeyPair:         {Name: "ecc-key-pair", MinModulusBits: 192, MaxModulusBits: 521},
	MechECDSA:              {Name: "ecdsa", MinModulusBits: 192, MaxModulusBits: 521},
	MechDeterministicECDSA: {Name: "deterministic-ecdsa", MinModulusBits: 192, MaxModulusBits: 521},
	MechECDH:               {Name: "ecdh", MinModulusBits: 192, MaxModulusBits: 521},
	MechDHKeyPair:          {Name: "dh-key-pair", MinModulusBits: 2048, MaxModulusBits: 8192},
	MechFFDH:               {Name: "ffdh", MinModulusBits: 2048, MaxModulusBits: 8192},
	MechJPAKE:              {Name: "jpake", MinModulusBits: 256, MaxModulusBits: 521},
}

// Errors for feature set operations.
var (
	ErrUnknownMechanism = errors.New("features: unknown mechanism")
	ErrSetFrozen        = errors.New("features: set is frozen")
)

// Lookup returns the metadata for a mechanism.
func Lookup(m Mechanism) (Info, error) {
	info, ok := mechanisms[m]
	if !ok {
		return Info{}, fmt.Errorf("%w: %d", ErrUnknownMechanism, m)
	}
	return info, nil
}

// All returns every known mechanism in ascending order.
func All() []Mechanism {
	out := make([]Mechanism, 0, len(mechanisms))
	for m := range mechanisms {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// String returns the mechanism's configuration name.
func (m Mechanism) String() string {
	if info, ok := mechanisms[m]; ok {
		return info.Name
	}
	return fmt.Sprintf("mechanism-%d", uint16(m))
}

// Set is a mutable-then-frozen selection of mechanisms. It is built once
// during startup, frozen, and afterwards read concurrently without
// coordination beyond the freeze itself.
type Set struct {
	mu     sync.RWMutex
	frozen bool
	want   map[Mechanism]bool
}

// NewSet returns an empty, unfrozen selection.
func NewSet() *Set {
	return &Set{want: make(map[Mechanism]bool)}
}

// Default returns a frozen selection with every known mechanism enabled.
func Default() *Set {
	s := NewSet()
	for m := range mechanisms {
		s.want[m] = true
	}
	s.Freeze()
	return s
}

// Enable adds a mechanism to the selection.
func (s *Set) Enable(m Mechanism) error {
	if _, ok := mechanisms[m]; !ok {
		return fmt.Errorf("%w: %d", ErrUnknownMechanism, m)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.frozen {
		return ErrSetFrozen
	}
	s.want[m] = true
	return nil
}

// Disable removes a mechanism from the selection.
func (s *Set) Disable(m Mechanism) error {
	if _, ok := mechanisms[m]; !ok {
		return fmt.Errorf("%w: %d", ErrUnknownMechanism, m)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.frozen {
		return ErrSetFrozen
	}
	delete(s.want, m)
	return nil
}

// Freeze makes the selection immutable. Freezing twice is a no-op.
func (s *Set) Freeze() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frozen = true
}

// Frozen reports whether the selection can still change.
func (s *Set) Frozen() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.frozen
}

// Enabled reports whether a mechanism is selected.
func (s *Set) Enabled(m Mechanism) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.want[m]
}

// List returns the selected mechanisms in ascending order.
func (s *Set) List() []Mechanism {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Mechanism, 0, len(s.want))
	for m := range s.want {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// ModulusBitRange returns the narrowest bit range covering every selected
// mechanism, so a caller can size its working buffers once for the whole
// configuration. A selection with no mechanisms returns (0, 0).
func (s *Set) ModulusBitRange() (min, max int) {
	for _, m := range s.List() {
		info := mechanisms[m]
		if min == 0 || info.MinModulusBits < min {
			min = info.MinModulusBits
		}
		if info.MaxModulusBits > max {
			max = info.MaxModulusBits
		}
	}
	return min, max
}
