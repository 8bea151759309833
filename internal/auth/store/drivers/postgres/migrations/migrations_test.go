package migrations

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDownMigrationsKeepUsersTable(t *testing.T) {
	downs, err := fs.Glob(Migrations, "*.down.sql")
	require.NoError(t, err)
	require.NotEmpty(t, downs)

	for _, name := range downs {
		b, err := fs.ReadFile(Migrations, name)
		require.NoError(t, err)
		require.NotContains(t, strings.ToUpper(string(b)), "DROP TABLE", name)
	}
}

func TestMigrationsArePaired(t *testing.T) {
	ups, err := fs.Glob(Migrations, "*.up.sql")
	require.NoError(t, err)
	require.NotEmpty(t, ups)

	for _, up := range ups {
		down := strings.TrimSuffix(up, ".up.sql") + ".down.sql"
		_, err := fs.Stat(Migrations, down)
		require.NoError(t, err, "missing %s", down)
	}
}
