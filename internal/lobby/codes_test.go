package lobby

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateCode_LengthAndAlphabet(t *testing.T) {
	for i := 0; i < 50; i++ {
		code, err := GenerateCode()
		require.NoError(t, err)
		assert.Len(t, code, codeLength)
		for _, r := range code {
			assert.True(t, strings.ContainsRune(codeAlphabet, r), "unexpected character %q in code %q", r, code)
		}
	}
}

func TestGenerateCode_ExcludesConfusableCharacters(t *testing.T) {
	for _, bad := range "0O1IL" {
		assert.False(t, strings.ContainsRune(codeAlphabet, bad))
	}
}
