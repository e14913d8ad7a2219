package client

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"residentbook-backend-go/internal/models"
)

func TestSessionStore_SaveRestoreClear(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", sessionFileName)
	store := NewSessionStore(path)
	session := &models.Session{UserID: "u1", Email: "ann@example.com", Role: models.RoleResident, IDToken: "tok", RefreshToken: "ref"}

	assert.Nil(t, store.Restore(), "nothing saved yet")
	require.NoError(t, store.Save(session))

	if runtime.GOOS != "windows" {
		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
	}
	assert.Equal(t, session, store.Restore())

	require.NoError(t, store.Clear())
	assert.Nil(t, store.Restore())
	assert.NoError(t, store.Clear(), "clearing twice is fine")
}

func TestSessionStore_RestoreFailsClosed(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"garbage", "{not json"},
		{"missing token", `{"uid":"u1","role":"Resident"}`},
		{"missing role", `{"uid":"u1","idToken":"tok"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), sessionFileName)
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o600))
			assert.Nil(t, NewSessionStore(path).Restore())
		})
	}
}
