// Package password turns plaintext credentials into comparable digests.
//
// Two schemes are supported. SchemeSHA256 is the legacy format: the hex
// SHA-256 of the plaintext followed by an application-wide pepper. It is
// deterministic, so identical passwords share a digest across users.
// SchemeArgon2id salts every digest and stores its parameters inline in the
// PHC string format. Verify recognises both formats regardless of the scheme
// used for new digests, so stored legacy digests keep working after a switch.
package password

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"io"
	"strings"

	"golang.org/x/crypto/argon2"
)

// Scheme names a digest format.
type Scheme string

const (
	SchemeSHA256   Scheme = "sha256"
	SchemeArgon2id Scheme = "argon2id"
)

const argon2Prefix = "$argon2id$"

// Upper bounds accepted from a stored digest.
const (
	maxArgon2Memory = 1024 * 1024 // KiB
	maxArgon2Time   = 16
	maxArgon2KeyLen = 128
)

// Argon2Params tunes the argon2id key derivation.
type Argon2Params struct {
	Memory  uint32 // KiB
	Time    uint32
	Threads uint8
	SaltLen int
	KeyLen  uint32
}

// DefaultArgon2Params: 64 MiB, one pass, four lanes.
var DefaultArgon2Params = Argon2Params{
	Memory:  64 * 1024,
	Time:    1,
	Threads: 4,
	SaltLen: 16,
	KeyLen:  32,
}

// Hasher hashes and verifies passwords.
type Hasher struct {
	scheme Scheme
	pepper []byte
	params Argon2Params
	rand   io.Reader
}

// NewHasher builds a Hasher producing digests in the given scheme. pepper is
// the fixed secondary input mixed into every digest.
func NewHasher(scheme Scheme, pepper string) (*Hasher, error) {
	switch scheme {
	case SchemeSHA256, SchemeArgon2id:
	default:
		return nil, fmt.Errorf("unknown password scheme %q", scheme)
	}
	return &Hasher{
		scheme: scheme,
		pepper: []byte(pepper),
		params: DefaultArgon2Params,
		rand:   rand.Reader,
	}, nil
}

// Scheme reports the scheme used for new digests.
func (h *Hasher) Scheme() Scheme { return h.scheme }

// Hash returns the digest of plain.
func (h *Hasher) Hash(plain string) (string, error) {
	if h.scheme == SchemeArgon2id {
		salt := make([]byte, h.params.SaltLen)
		if _, err := io.ReadFull(h.rand, salt); err != nil {
			return "", fmt.Errorf("generate salt: %w", err)
		}
		return h.argon2Digest(plain, salt, h.params), nil
	}
	return h.sha256Digest(plain), nil
}

// Verify recomputes the digest of plain in the format of digest and compares.
func (h *Hasher) Verify(plain, digest string) bool {
	if strings.HasPrefix(digest, argon2Prefix) {
		params, salt, _, err := parseArgon2(digest)
		if err != nil {
			return false
		}
		return subtle.ConstantTimeCompare([]byte(h.argon2Digest(plain, salt, params)), []byte(digest)) == 1
	}
	return subtle.ConstantTimeCompare([]byte(h.sha256Digest(plain)), []byte(digest)) == 1
}

func (h *Hasher) sha256Digest(plain string) string {
	sum := sha256.New()
	sum.Write([]byte(plain))
	sum.Write(h.pepper)
	return hex.EncodeToString(sum.Sum(nil))
}

func (h *Hasher) argon2Digest(plain string, salt []byte, p Argon2Params) string {
	input := make([]byte, 0, len(plain)+len(h.pepper))
	input = append(input, plain...)
	input = append(input, h.pepper...)

	key := argon2.IDKey(input, salt, p.Time, p.Memory, p.Threads, p.KeyLen)

	return fmt.Sprintf("%sv=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2Prefix, argon2.Version, p.Memory, p.Time, p.Threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key))
}

// parseArgon2 splits "$argon2id$v=19$m=..,t=..,p=..$salt$key".
func parseArgon2(digest string) (Argon2Params, []byte, []byte, error) {
	var p Argon2Params

	parts := strings.Split(digest, "$")
	if len(parts) != 6 {
		return p, nil, nil, fmt.Errorf("malformed argon2id digest")
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return p, nil, nil, fmt.Errorf("argon2id version: %w", err)
	}
	if version != argon2.Version {
		return p, nil, nil, fmt.Errorf("unsupported argon2 version %d", version)
	}

	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &p.Memory, &p.Time, &p.Threads); err != nil {
		return p, nil, nil, fmt.Errorf("argon2id params: %w", err)
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return p, nil, nil, fmt.Errorf("argon2id salt: %w", err)
	}
	key, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return p, nil, nil, fmt.Errorf("argon2id key: %w", err)
	}

	p.SaltLen = len(salt)
	p.KeyLen = uint32(len(key))
	if err := p.validate(); err != nil {
		return p, nil, nil, err
	}
	return p, salt, key, nil
}

// validate rejects parameters argon2.IDKey would panic on or that would make
// a single verification unreasonably expensive.
func (p Argon2Params) validate() error {
	switch {
	case p.Time < 1 || p.Time > maxArgon2Time:
		return fmt.Errorf("argon2id time %d out of range", p.Time)
	case p.Threads < 1:
		return fmt.Errorf("argon2id parallelism must be positive")
	case p.Memory < 8*uint32(p.Threads) || p.Memory > maxArgon2Memory:
		return fmt.Errorf("argon2id memory %d KiB out of range", p.Memory)
	case p.KeyLen == 0 || p.KeyLen > maxArgon2KeyLen:
		return fmt.Errorf("argon2id key length %d out of range", p.KeyLen)
	case p.SaltLen == 0:
		return fmt.Errorf("argon2id salt is empty")
	}
	return nil
}
