package adminctl

import (
	"bufio"
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubPasswords makes readPassword return the given entries in order.
func stubPasswords(t *testing.T, entries ...string) {
	t.Helper()
	old := readPassword
	t.Cleanup(func() { readPassword = old })

	i := 0
	readPassword = func(int) ([]byte, error) {
		if i >= len(entries) {
			return nil, errors.New("no more input")
		}
		pw := entries[i]
		i++
		return []byte(pw), nil
	}
}

func TestGetSimpleText(t *testing.T) {
	var out bytes.Buffer
	got, err := GetSimpleText(bufio.NewReader(strings.NewReader("  alice \n")), "Username", &out)
	require.NoError(t, err)
	assert.Equal(t, "alice", got)
	assert.Equal(t, "Username\n> ", out.String())

	got, err = GetSimpleText(bufio.NewReader(strings.NewReader("lastline")), "Username", &out)
	require.NoError(t, err)
	assert.Equal(t, "lastline", got)

	_, err = GetSimpleText(bufio.NewReader(strings.NewReader("")), "Username", &out)
	assert.Error(t, err)
}

func TestGetNewPassword(t *testing.T) {
	var out bytes.Buffer

	stubPasswords(t, "secret1", "secret1")
	got, err := GetNewPassword(&out)
	require.NoError(t, err)
	assert.Equal(t, "secret1", got)
	assert.Contains(t, out.String(), "Repeat password: ")

	stubPasswords(t, "secret1", "secret2")
	_, err = GetNewPassword(&out)
	assert.ErrorIs(t, err, errPasswordMismatch)

	stubPasswords(t)
	_, err = GetNewPassword(&out)
	assert.Error(t, err)
}

func TestWipe(t *testing.T) {
	b := []byte("secret")
	wipe(b)
	assert.Equal(t, make([]byte, 6), b)
}
