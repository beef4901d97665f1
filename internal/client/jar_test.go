package client

import (
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJarPersistsAcrossInstances(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cookies.json")

	j, err := NewJar(path)
	require.NoError(t, err)
	j.SetCookies(nil, []*http.Cookie{
		{Name: "access_token", Value: "tok"},
		{Name: "refresh_token", Value: "ref"},
	})

	reloaded, err := NewJar(path)
	require.NoError(t, err)
	assert.True(t, reloaded.Has("access_token"))
	assert.True(t, reloaded.Has("refresh_token"))

	cookies := reloaded.Cookies(nil)
	require.Len(t, cookies, 2)
	assert.Equal(t, "access_token", cookies[0].Name)
	assert.Equal(t, "tok", cookies[0].Value)
}

func TestJarSnapshotPermissions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cookies.json")

	j, err := NewJar(path)
	require.NoError(t, err)
	j.SetCookies(nil, []*http.Cookie{{Name: "access_token", Value: "tok"}})

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestJarDropsExpiredCookies(t *testing.T) {
	tests := []struct {
		name   string
		cookie *http.Cookie
		want   bool
	}{
		{"live", &http.Cookie{Name: "a", Value: "v"}, true},
		{"max age positive", &http.Cookie{Name: "a", Value: "v", MaxAge: 60}, true},
		{"deleted via max age", &http.Cookie{Name: "a", Value: "v", MaxAge: -1}, false},
		{"deleted via empty value", &http.Cookie{Name: "a", Value: ""}, false},
		{"expired", &http.Cookie{Name: "a", Value: "v", Expires: time.Now().Add(-time.Hour)}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			j, err := NewJar("")
			require.NoError(t, err)
			j.SetCookies(nil, []*http.Cookie{{Name: "a", Value: "old"}})
			j.SetCookies(nil, []*http.Cookie{tt.cookie})
			assert.Equal(t, tt.want, j.Has("a"))
		})
	}
}

func TestJarClearRemovesSnapshot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cookies.json")

	j, err := NewJar(path)
	require.NoError(t, err)
	j.SetCookies(nil, []*http.Cookie{{Name: "access_token", Value: "tok"}})
	require.FileExists(t, path)

	j.Clear()
	assert.False(t, j.Has("access_token"))
	assert.NoFileExists(t, path)
}

func TestJarSurvivesCorruptSnapshot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cookies.json")
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0600))

	j, err := NewJar(path)
	require.NoError(t, err)
	assert.False(t, j.Has("access_token"))
}
