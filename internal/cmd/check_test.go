package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupRoot creates a project root with a .dirc spec and optional
// fixture entries (names ending in "/" become directories).
func setupRoot(t *testing.T, specText string, entries ...string) string {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, ".dirc"), []byte(specText), 0644))
	for _, entry := range entries {
		path := filepath.Join(root, filepath.FromSlash(entry))
		if entry[len(entry)-1] == '/' {
			require.NoError(t, os.MkdirAll(path, 0755))
			continue
		}
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, nil, 0644))
	}
	return root
}

func TestCheckPasses(t *testing.T) {
	root := setupRoot(t, "folder1\n", "folder1/")

	out, _, err := execute(t, "check", "--root", root)
	require.NoError(t, err)
	assert.Contains(t, out, "✓")
	assert.Contains(t, out, "Directory structure is valid")
}

func TestCheckReportsFirstViolation(t *testing.T) {
	root := setupRoot(t, "folder1\n    .png\n", "folder1/a.png", "folder1/readme.txt")

	_, errOut, err := execute(t, "check", "--root", root)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected file: folder1/readme.txt")
	assert.Contains(t, errOut, "✗")
}

func TestCheckMissingRequiredDirectory(t *testing.T) {
	root := setupRoot(t, "folder1\n")

	_, _, err := execute(t, "check", "--root", root)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing required directory: folder1")
}

func TestCheckNoSpecFound(t *testing.T) {
	root := t.TempDir()

	_, _, err := execute(t, "check", "--root", root)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no spec file found")
	assert.Contains(t, err.Error(), ".dirc, dirc.dirc, dirc.spec")
}

func TestCheckSpecDiscoveryOrder(t *testing.T) {
	root := t.TempDir()
	// dirc.spec is a later candidate; the check must pick it up.
	require.NoError(t, os.WriteFile(filepath.Join(root, "dirc.spec"), []byte("folder1\n"), 0644))
	require.NoError(t, os.Mkdir(filepath.Join(root, "folder1"), 0755))

	_, _, err := execute(t, "check", "--root", root)
	assert.NoError(t, err)
}

func TestCheckParseErrorCarriesLine(t *testing.T) {
	root := setupRoot(t, "a\n  b\n   c\n")

	_, _, err := execute(t, "check", "--root", root)
	require.Error(t, err)
	assert.Contains(t, err.Error(), ":3:")
	assert.Contains(t, err.Error(), "multiple of 2")
}

func TestCheckStrictRootFlag(t *testing.T) {
	root := setupRoot(t, "folder1\n", "folder1/", "README.md")

	_, _, err := execute(t, "check", "--root", root)
	assert.NoError(t, err, "root is lenient by default")

	_, _, err = execute(t, "check", "--root", root, "--strict-root")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected file: README.md")
}

func TestCheckAllowExtraFlag(t *testing.T) {
	root := setupRoot(t, "logs\n", "logs/junk.txt")

	_, _, err := execute(t, "check", "--root", root)
	require.Error(t, err)

	_, _, err = execute(t, "check", "--root", root, "--allow-extra")
	assert.NoError(t, err)
}

func TestCheckIgnoreFlag(t *testing.T) {
	root := setupRoot(t, "logs\n", "logs/editor.swp")

	_, _, err := execute(t, "check", "--root", root, "--ignore", "*.swp")
	assert.NoError(t, err)
}

func TestCheckInvalidIgnorePattern(t *testing.T) {
	root := setupRoot(t, "logs\n", "logs/")

	_, _, err := execute(t, "check", "--root", root, "--ignore", "[bad")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid ignore pattern")
}

func TestCheckConfigFile(t *testing.T) {
	root := setupRoot(t, "logs\n", "logs/junk.txt")
	configYAML := "allow_extra: true\n"
	require.NoError(t, os.WriteFile(filepath.Join(root, ".dirc.yaml"), []byte(configYAML), 0644))

	_, _, err := execute(t, "check", "--root", root)
	assert.NoError(t, err, "config file enables allow_extra")
}

func TestCheckConfigFileIsIgnoredEntry(t *testing.T) {
	root := setupRoot(t, "folder1\n", "folder1/")
	require.NoError(t, os.WriteFile(filepath.Join(root, ".dirc.yaml"), []byte("strict_root: true\n"), 0644))

	// Strict root rejects unlisted entries, but never the config file or
	// the spec file themselves.
	_, _, err := execute(t, "check", "--root", root)
	assert.NoError(t, err)
}

func TestCheckFlagOverridesConfig(t *testing.T) {
	root := setupRoot(t, "logs\n", "logs/junk.txt")
	require.NoError(t, os.WriteFile(filepath.Join(root, ".dirc.yaml"), []byte("allow_extra: true\n"), 0644))

	_, _, err := execute(t, "check", "--root", root, "--allow-extra=false")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected file: logs/junk.txt")
}

func TestCheckWarnsOnDuplicateRules(t *testing.T) {
	root := setupRoot(t, "logs\nlogs\n", "logs/")

	_, errOut, err := execute(t, "check", "--root", root)
	require.NoError(t, err)
	assert.Contains(t, errOut, "Duplicate sibling rules")
	assert.Contains(t, errOut, "logs")
}

func TestCheckExplicitSpecPath(t *testing.T) {
	root := t.TempDir()
	specPath := filepath.Join(t.TempDir(), "layout.dirc")
	require.NoError(t, os.WriteFile(specPath, []byte("folder1\n"), 0644))
	require.NoError(t, os.Mkdir(filepath.Join(root, "folder1"), 0755))

	_, _, err := execute(t, "check", "--root", root, "--spec", specPath)
	assert.NoError(t, err)

	_, _, err = execute(t, "check", "--root", root, "--spec", filepath.Join(root, "missing.dirc"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "spec file not found")
}
