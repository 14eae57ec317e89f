//go:build unit

package apikey_test

import (
	"testing"

	"pride-notify/internal/pkg/apikey"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerify(t *testing.T) {
	hashed, err := apikey.Hash("trigger-key")
	require.NoError(t, err)
	assert.NotEqual(t, "trigger-key", hashed)

	testCases := []struct {
		name    string
		hashed  string
		key     string
		wantErr error
	}{
		{name: "success: matching key", hashed: hashed, key: "trigger-key"},
		{name: "error: wrong key", hashed: hashed, key: "other", wantErr: apikey.ErrMismatch},
		{name: "error: empty key", hashed: hashed, key: "", wantErr: apikey.ErrEmptyKey},
		{name: "error: no hash configured", hashed: "", key: "trigger-key", wantErr: apikey.ErrEmptyKey},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := apikey.Verify(tc.hashed, tc.key)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}

	_, err = apikey.Hash("")
	assert.ErrorIs(t, err, apikey.ErrEmptyKey)
}
