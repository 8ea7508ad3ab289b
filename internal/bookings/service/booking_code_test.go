package service

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func neverTaken(context.Context, string) (bool, error) { return false, nil }

func TestCodeGenerator_Format(t *testing.T) {
	tests := []struct {
		name       string
		prefix     string
		length     int
		wantLength int
	}{
		{"configured length", "BK", 10, 10},
		{"length equal to prefix is extended", "BK", 2, 6},
		{"length shorter than prefix is extended", "STAY", 1, 8},
		{"zero length", "BK", 0, 6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewCodeGenerator(tt.prefix, tt.length, neverTaken)

			code, err := g.Generate(context.Background())
			require.NoError(t, err)
			assert.Len(t, code, tt.wantLength)
			assert.True(t, strings.HasPrefix(code, tt.prefix))
			for _, c := range code[len(tt.prefix):] {
				assert.Contains(t, codeAlphabet, string(c))
			}
		})
	}
}

func TestCodeGenerator_AvoidsExistingCodes(t *testing.T) {
	taken := map[string]bool{}
	g := NewCodeGenerator("BK", 6, func(_ context.Context, code string) (bool, error) {
		return taken[code], nil
	})

	for range 200 {
		code, err := g.Generate(context.Background())
		require.NoError(t, err)
		require.False(t, taken[code], "generated a code that already exists: %s", code)
		taken[code] = true
	}
}

func TestCodeGenerator_FallbackAfterTenCollisions(t *testing.T) {
	calls := 0
	g := NewCodeGenerator("BK", 10, func(context.Context, string) (bool, error) {
		calls++
		return true, nil
	})
	g.now = func() time.Time { return time.UnixMilli(1_718_000_123_456) }

	code, err := g.Generate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, maxCodeAttempts, calls)
	assert.Equal(t, "BK123456", code)
}

func TestCodeGenerator_FallbackNotUsedBeforeTenCollisions(t *testing.T) {
	calls := 0
	g := NewCodeGenerator("BK", 10, func(context.Context, string) (bool, error) {
		calls++
		return calls < maxCodeAttempts, nil
	})
	g.now = func() time.Time { return time.UnixMilli(1_718_000_123_456) }

	code, err := g.Generate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, maxCodeAttempts, calls)
	assert.Len(t, code, 10)
	assert.NotEqual(t, "BK123456", code)
}

func TestCodeGenerator_Errors(t *testing.T) {
	t.Run("lookup failure", func(t *testing.T) {
		g := NewCodeGenerator("BK", 10, func(context.Context, string) (bool, error) {
			return false, errors.New("connection reset")
		})
		_, err := g.Generate(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "connection reset")
	})

	t.Run("entropy failure", func(t *testing.T) {
		g := NewCodeGenerator("BK", 10, neverTaken)
		g.rand = bytes.NewReader(nil)
		_, err := g.Generate(context.Background())
		require.Error(t, err)
	})
}
