package pathutil

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateFilePath(t *testing.T) {
	tests := []struct {
		path string
		ok   bool
	}{
		{"owner.key", true},
		{"keys/owner.key", true},
		{"/etc/safekit/owner.key", true},
		{"keys..bak/owner.key", true},
		{"../owner.key", false},
		{"keys/../../owner.key", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			err := ValidateFilePath(tt.path)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrUnsafePath)
			}
		})
	}
}

func TestSafePath(t *testing.T) {
	base := t.TempDir()

	p, err := SafePath(base, "owner.key")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(base, "owner.key"), p)

	_, err = SafePath(base, "../owner.key")
	assert.ErrorIs(t, err, ErrUnsafePath)
	_, err = SafePath(base, "/owner.key")
	assert.ErrorIs(t, err, ErrUnsafePath)
}
