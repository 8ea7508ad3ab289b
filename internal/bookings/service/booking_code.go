package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"io"
	"math/big"
	"time"
)

const (
	codeAlphabet       = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	maxCodeAttempts    = 10
	minRandomCodeChars = 4
)

// CodeExistsFunc reports whether a booking code is already taken.
type CodeExistsFunc func(ctx context.Context, code string) (bool, error)

// CodeGenerator produces short booking references of the form PREFIX + random
// [A-Z0-9] characters. The uniqueness check is a pre-check only; the unique
// index on booking_code is what actually guarantees uniqueness.
type CodeGenerator struct {
	prefix string
	length int
	exists CodeExistsFunc
	rand   io.Reader
	now    func() time.Time
}

func NewCodeGenerator(prefix string, length int, exists CodeExistsFunc) *CodeGenerator {
	if length <= len(prefix) {
		length = len(prefix) + minRandomCodeChars
	}
	return &CodeGenerator{
		prefix: prefix,
		length: length,
		exists: exists,
		rand:   rand.Reader,
		now:    time.Now,
	}
}

func (g *CodeGenerator) Generate(ctx context.Context) (string, error) {
	for range maxCodeAttempts {
		code, err := g.random()
		if err != nil {
			return "", err
		}

		taken, err := g.exists(ctx, code)
		if err != nil {
			return "", fmt.Errorf("failed to check booking code uniqueness: %w", err)
		}
		if !taken {
			return code, nil
		}
	}

	return g.fallback(), nil
}

func (g *CodeGenerator) random() (string, error) {
	n := g.length - len(g.prefix)
	buf := make([]byte, len(g.prefix), g.length)
	copy(buf, g.prefix)

	alphabetSize := big.NewInt(int64(len(codeAlphabet)))
	for range n {
		idx, err := rand.Int(g.rand, alphabetSize)
		if err != nil {
			return "", fmt.Errorf("failed to generate booking code: %w", err)
		}
		buf = append(buf, codeAlphabet[idx.Int64()])
	}
	return string(buf), nil
}

// fallback is reached only after maxCodeAttempts collisions.
func (g *CodeGenerator) fallback() string {
	return fmt.Sprintf("%s%06d", g.prefix, g.now().UnixMilli()%1_000_000)
}
