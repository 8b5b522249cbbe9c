package profile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeProfile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "profile.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeProfile(t, `
first_name: Jane
last_name: Doe
email: jane@example.com
phone: "+1 512 555 0100"
years-of-experience: "7"
Work Authorization: US citizen
`)

	p, err := Load(path)
	require.NoError(t, err)

	val, ok := p.Get("first_name")
	require.True(t, ok)
	assert.Equal(t, "Jane", val)

	// Keys are normalized: dashes and spaces become underscores.
	val, ok = p.Get("years_of_experience")
	require.True(t, ok)
	assert.Equal(t, "7", val)

	val, ok = p.Get("Work Authorization")
	require.True(t, ok)
	assert.Equal(t, "US citizen", val)

	_, ok = p.Get("shoe_size")
	assert.False(t, ok)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadEmptyProfile(t *testing.T) {
	path := writeProfile(t, "")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestRenderIsSortedAndStable(t *testing.T) {
	p := Profile{
		"phone":      "+1 512 555 0100",
		"email":      "jane@example.com",
		"first_name": "Jane",
	}
	want := "email: jane@example.com\nfirst_name: Jane\nphone: +1 512 555 0100"
	assert.Equal(t, want, p.Render())
	assert.Equal(t, p.Render(), p.Render())
}
