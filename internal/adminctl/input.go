package adminctl

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// readPassword is a test seam for term.ReadPassword.
var readPassword = term.ReadPassword

var errPasswordMismatch = errors.New("passwords do not match")

// GetSimpleText prints a prompt to w and reads a single trimmed line from
// reader. A partial last line before EOF is returned as is.
func GetSimpleText(reader *bufio.Reader, prompt string, w io.Writer) (string, error) {
	if _, err := fmt.Fprint(w, prompt+"\n> "); err != nil {
		return "", err
	}
	line, err := reader.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && len(line) > 0 {
			return strings.TrimSpace(line), nil
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// GetPassword prints prompt to w and reads a password from the terminal
// without echo.
func GetPassword(prompt string, w io.Writer) ([]byte, error) {
	if _, err := fmt.Fprint(w, prompt+": "); err != nil {
		return nil, err
	}
	pw, err := readPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(w)
	if err != nil {
		return nil, err
	}
	return pw, nil
}

// GetNewPassword reads a password twice and fails when the entries differ.
func GetNewPassword(w io.Writer) (string, error) {
	first, err := GetPassword("New password", w)
	if err != nil {
		return "", err
	}
	second, err := GetPassword("Repeat password", w)
	if err != nil {
		return "", err
	}
	defer wipe(first)
	defer wipe(second)

	if string(first) != string(second) {
		return "", errPasswordMismatch
	}
	return string(first), nil
}

// wipe zeroes b so the plaintext does not linger in the read buffer.
func wipe(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
