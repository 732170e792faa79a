package password

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testPepper = "chengshang2025"

func newTestHasher(t *testing.T, scheme Scheme) *Hasher {
	t.Helper()
	h, err := NewHasher(scheme, testPepper)
	require.NoError(t, err)
	// keep argon2 cheap in tests
	h.params = Argon2Params{Memory: 1024, Time: 1, Threads: 1, SaltLen: 16, KeyLen: 32}
	return h
}

func TestSHA256_MatchesStoredDigests(t *testing.T) {
	h := newTestHasher(t, SchemeSHA256)

	// digests seeded into existing deployments
	cases := map[string]string{
		"admin@2025csch": "fac998bc601b4f9d4f689c8ada57480ef7f7785791befe08b8c381e2e600af23",
		"test123456":     "4050e0b66331805d96b30cedb8dcd0b84e81d56c71084a9d7ee291caaf03a172",
	}
	for plain, want := range cases {
		got, err := h.Hash(plain)
		require.NoError(t, err)
		assert.Equal(t, want, got, plain)
		assert.True(t, h.Verify(plain, want), plain)
	}
}

func TestSHA256_Deterministic(t *testing.T) {
	h := newTestHasher(t, SchemeSHA256)

	for _, p := range []string{"", "a", "secret1", "pw123456", "呈尚售后密码"} {
		a, err := h.Hash(p)
		require.NoError(t, err)
		b, err := h.Hash(p)
		require.NoError(t, err)

		assert.Equal(t, a, b, "hash(%q) must be deterministic", p)
		assert.True(t, h.Verify(p, a))
		assert.False(t, h.Verify(p+"x", a))
	}
}

func TestSHA256_PepperMatters(t *testing.T) {
	h1 := newTestHasher(t, SchemeSHA256)
	h2, err := NewHasher(SchemeSHA256, "other-pepper")
	require.NoError(t, err)

	d, err := h1.Hash("secret1")
	require.NoError(t, err)
	assert.False(t, h2.Verify("secret1", d))
}

func TestArgon2id_RoundTripAndSalted(t *testing.T) {
	h := newTestHasher(t, SchemeArgon2id)

	a, err := h.Hash("secret1")
	require.NoError(t, err)
	b, err := h.Hash("secret1")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(a, "$argon2id$v=19$m=1024,t=1,p=1$"), a)
	assert.NotEqual(t, a, b, "per-digest salt must differ")
	assert.True(t, h.Verify("secret1", a))
	assert.True(t, h.Verify("secret1", b))
	assert.False(t, h.Verify("secret2", a))
}

func TestVerify_AcceptsBothFormats(t *testing.T) {
	legacy := newTestHasher(t, SchemeSHA256)
	modern := newTestHasher(t, SchemeArgon2id)

	old, err := legacy.Hash("abcdef")
	require.NoError(t, err)
	assert.True(t, modern.Verify("abcdef", old), "argon2id hasher must still verify legacy digests")

	fresh, err := modern.Hash("abcdef")
	require.NoError(t, err)
	assert.True(t, legacy.Verify("abcdef", fresh), "legacy hasher must verify argon2id digests")
}

func TestVerify_MalformedArgon2(t *testing.T) {
	h := newTestHasher(t, SchemeArgon2id)

	for _, d := range []string{
		"$argon2id$",
		"$argon2id$v=19$m=1024,t=1,p=1$!!$!!",
		"$argon2id$v=18$m=1024,t=1,p=1$c2FsdA$a2V5",
		"$argon2id$v=19$garbage$c2FsdA$a2V5",
	} {
		assert.False(t, h.Verify("x", d), d)
	}
}

func TestVerify_RejectsOutOfRangeArgon2Params(t *testing.T) {
	h := newTestHasher(t, SchemeArgon2id)

	digest, err := h.Hash("secret1")
	require.NoError(t, err)
	parts := strings.Split(digest, "$")
	require.Len(t, parts, 6)

	withParams := func(params string) string {
		p := append([]string(nil), parts...)
		p[3] = params
		return strings.Join(p, "$")
	}
	require.True(t, h.Verify("secret1", withParams("m=1024,t=1,p=1")))

	tests := []struct {
		name   string
		digest string
	}{
		{"zero parallelism", withParams("m=1024,t=1,p=0")},
		{"zero rounds", withParams("m=1024,t=0,p=1")},
		{"too many rounds", withParams("m=1024,t=1000,p=1")},
		{"huge memory", withParams("m=4294967295,t=1,p=1")},
		{"memory below lanes", withParams("m=4,t=1,p=1")},
		{"empty key", strings.Join(append(append([]string(nil), parts[:5]...), ""), "$")},
		{"empty salt", strings.Join([]string{parts[0], parts[1], parts[2], parts[3], "", parts[5]}, "$")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotPanics(t, func() {
				assert.False(t, h.Verify("secret1", tt.digest))
			})
		})
	}
}

func TestNewHasher_UnknownScheme(t *testing.T) {
	_, err := NewHasher("md5", testPepper)
	require.Error(t, err)
}
