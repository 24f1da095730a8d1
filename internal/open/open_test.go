package open

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zuo-Peng/wwdc-sessions/internal/index"
)

func TestOpener(t *testing.T) {
	name, args := opener("darwin", "")
	assert.Equal(t, "open", name)
	assert.Empty(t, args)

	name, args = opener("windows", "")
	assert.Equal(t, "rundll32", name)
	assert.Equal(t, []string{"url.dll,FileProtocolHandler"}, args)

	name, _ = opener("linux", "")
	assert.Equal(t, "xdg-open", name)

	name, _ = opener("linux", "firefox")
	assert.Equal(t, "firefox", name)
}

func TestOpenSession_NotFound(t *testing.T) {
	db, err := index.OpenDB(filepath.Join(t.TempDir(), "wwdc.db"))
	require.NoError(t, err)
	defer db.Close()

	err = OpenSession(db, 2021, "104")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "session not found: 2021/104")
}
