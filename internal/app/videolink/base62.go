package videolink

import (
	"errors"
	"fmt"
	"math/big"
	"regexp"

	"github.com/google/uuid"
)

// Base62 maps a 128-bit content UUID to a fixed-width short code used in share links
// (https://taboo.tv/v/{code}) and back.
//
// The alphabet order (digits, upper, lower) is part of the public link format: changing it
// breaks every link already handed out.
const alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

// ShortCodeLen is the width of every code produced by Encode. 62^22 > 2^128 > 62^21.
const ShortCodeLen = 22

var (
	ErrInvalidUUID       = errors.New("invalid uuid")
	ErrInvalidShortCode  = errors.New("invalid short code")
	ErrShortCodeOverflow = errors.New("short code exceeds uuid range")
)

var (
	uuidRe      = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)
	shortCodeRe = regexp.MustCompile(`^[0-9A-Za-z]{1,22}$`)

	radix = big.NewInt(int64(len(alphabet)))

	// symbol -> value, -1 for bytes outside the alphabet
	alphabetIndex [256]int8
)

func init() {
	for i := range alphabetIndex {
		alphabetIndex[i] = -1
	}
	for i := 0; i < len(alphabet); i++ {
		alphabetIndex[alphabet[i]] = int8(i)
	}
}

// IsUUID reports whether s is a hyphenated 8-4-4-4-12 hex UUID (any case).
func IsUUID(s string) bool {
	return uuidRe.MatchString(s)
}

// IsValidShortCode reports whether s has 1..22 alphabet symbols.
func IsValidShortCode(s string) bool {
	return shortCodeRe.MatchString(s)
}

// Encode returns the 22-char short code of id.
func Encode(id string) (string, error) {
	if !IsUUID(id) {
		return "", fmt.Errorf("%w: %q", ErrInvalidUUID, id)
	}
	u, err := uuid.Parse(id)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidUUID, id)
	}

	n := new(big.Int).SetBytes(u[:])
	rem := new(big.Int)

	var buf [ShortCodeLen]byte
	for i := range buf {
		buf[i] = alphabet[0]
	}
	i := len(buf)
	for n.Sign() > 0 {
		i--
		n.QuoRem(n, radix, rem)
		buf[i] = alphabet[rem.Int64()]
	}
	return string(buf[:]), nil
}

// Decode returns the lowercase UUID encoded by code. Codes shorter than 22 chars are read as
// if left-padded with '0'.
func Decode(code string) (string, error) {
	if !IsValidShortCode(code) {
		return "", fmt.Errorf("%w: %q", ErrInvalidShortCode, code)
	}

	n := new(big.Int)
	sym := new(big.Int)
	for i := 0; i < len(code); i++ {
		v := alphabetIndex[code[i]]
		if v < 0 {
			return "", fmt.Errorf("%w: symbol %q", ErrInvalidShortCode, code[i])
		}
		n.Mul(n, radix)
		n.Add(n, sym.SetInt64(int64(v)))
	}
	if n.BitLen() > 128 {
		return "", fmt.Errorf("%w: %q", ErrShortCodeOverflow, code)
	}

	var u uuid.UUID
	n.FillBytes(u[:])
	return u.String(), nil
}

// Canonicalize rewrites any accepted short code into the 22-char form Encode produces.
func Canonicalize(code string) (string, error) {
	id, err := Decode(code)
	if err != nil {
		return "", err
	}
	return Encode(id)
}
