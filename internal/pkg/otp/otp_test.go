package otp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate_SixDigits(t *testing.T) {
	for i := 0; i < 500; i++ {
		code, err := Generate()
		require.NoError(t, err)
		assert.GreaterOrEqual(t, code, Min)
		assert.LessOrEqual(t, code, Max)
	}
}
