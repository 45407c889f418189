package texts

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	fsys := fstest.MapFS{
		"main_menu.yaml": {Data: []byte("cancel: Cancel\nrooms: 3\n")},
		"welcome.yaml":   {Data: []byte("greeting: |\n  Hi\n  there\n")},
	}

	c, err := Load(fsys)
	require.NoError(t, err)

	assert.Equal(t, "Cancel", c.Get("main_menu", "cancel"))
	assert.Equal(t, "3", c.Get("main_menu", "rooms"))
	assert.Equal(t, "Hi\nthere\n", c.Get("welcome", "greeting"))
}

func TestGet_Missing(t *testing.T) {
	c, err := Load(fstest.MapFS{"responses.yaml": {Data: []byte("success: ok\n")}})
	require.NoError(t, err)

	assert.Equal(t, NotFound, c.Get("responses", "nope"))
	assert.Equal(t, NotFound, c.Get("admin_menu", "control"))
	assert.Equal(t, NotFound, c.Get("unknown", "x"))
}

func TestLoad_Malformed(t *testing.T) {
	_, err := Load(fstest.MapFS{"responses.yaml": {Data: []byte("- a\n- b\n")}})
	assert.Error(t, err)
}

func TestDefault(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	for _, key := range []string{"search_property", "sell_property", "excursion", "cancel", "back", "new_build", "secondary", "historic"} {
		assert.NotEqual(t, NotFound, c.Get("main_menu", key), key)
	}
	for _, key := range []string{"success", "error"} {
		assert.NotEqual(t, NotFound, c.Get("responses", key), key)
	}
	assert.NotEqual(t, NotFound, c.Get("welcome", "greeting"))
	assert.NotEqual(t, NotFound, c.Get("admin_menu", "control"))
}

func TestLoadDir_EmptyUsesDefaults(t *testing.T) {
	c, err := LoadDir("")
	require.NoError(t, err)
	assert.Equal(t, "Отмена", c.Get("main_menu", "cancel"))
}
