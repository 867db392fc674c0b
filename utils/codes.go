package utils

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
)

const (
	// AlphaNumeric is the alphabet of console generated codes
	AlphaNumeric = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	// Base36 is the alphabet of end user generated codes
	Base36 = "0123456789abcdefghijklmnopqrstuvwxyz"
)

const maxCodeAttempts = 10

var ErrNoFreeCode = errors.New("could not find a free short code")

// CodeChecker reports whether a short code is already taken
type CodeChecker interface {
	CodeExists(ctx context.Context, code string) (bool, error)
}

// RandomCode returns n characters drawn uniformly from alphabet
func RandomCode(alphabet string, n int) (string, error) {
	max := big.NewInt(int64(len(alphabet)))
	buf := make([]byte, n)
	for i := range buf {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("generate code: %w", err)
		}
		buf[i] = alphabet[idx.Int64()]
	}
	return string(buf), nil
}

// UniqueCode draws random codes until one is free
func UniqueCode(ctx context.Context, checker CodeChecker, alphabet string, n int) (string, error) {
	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		code, err := RandomCode(alphabet, n)
		if err != nil {
			return "", err
		}
		if IsReservedCode(code) {
			continue
		}
		taken, err := checker.CodeExists(ctx, code)
		if err != nil {
			return "", err
		}
		if !taken {
			return code, nil
		}
	}
	return "", ErrNoFreeCode
}
