package maintenance

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/shelfwise/shelfwise-backend/src/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// run executes shelfctl against the test database with input on stdin.
func run(t *testing.T, dsn, input string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := New(&out, strings.NewReader(input), nil).RootCommand()
	root.SetArgs(append([]string{"--dsn", dsn}, args...))
	root.SetOut(&out)
	root.SetErr(&out)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestShelfctl_SeedValidateReset(t *testing.T) {
	dsn := testutil.SetupTestDSN(t)

	out, err := run(t, dsn, "", "seed-sample")
	require.NoError(t, err)
	assert.Contains(t, out, "created 6 products")

	out, err = run(t, dsn, "", "seed-sample")
	require.NoError(t, err)
	assert.Contains(t, out, "already exists")

	out, err = run(t, dsn, "", "validate")
	require.NoError(t, err)
	assert.Contains(t, out, "6 placements, 0 findings")

	out, err = run(t, dsn, "", "fix-overlaps", "--shelf-id", "1", "--dry-run")
	require.NoError(t, err)
	assert.Contains(t, out, "would resolve with compact, 0 moved, 0 deleted")

	out, err = run(t, dsn, "n\n", "reset-placements", "--shelf-id", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "aborted")

	out, err = run(t, dsn, "", "reset-placements", "--shelf-id", "1", "--confirm")
	require.NoError(t, err)
	assert.Contains(t, out, "removed 6 placements from shelf 1")
}

func TestShelfctl_CreateUser(t *testing.T) {
	dsn := testutil.SetupTestDSN(t)

	_, err := run(t, dsn, "", "create-user", "--username", "", "--password", "")
	assert.Error(t, err)

	out, err := run(t, dsn, "", "create-user", "--username", "ops", "--password", "pw")
	require.NoError(t, err)
	assert.Contains(t, out, `user "ops" ready`)
}

func TestShelfctl_Arguments(t *testing.T) {
	_, err := run(t, "postgres://unused", "", "fix-overlaps", "--strategy", "shuffle")
	assert.ErrorContains(t, err, "unknown strategy")

	_, err = run(t, "postgres://unused", "", "reset-placements")
	assert.ErrorContains(t, err, "--shelf-id is required")

	_, err = run(t, "postgres://unused", "", "import-products")
	assert.Error(t, err)
}
