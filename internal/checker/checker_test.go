package checker

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/harrison/dirc/internal/compiler"
	"github.com/harrison/dirc/internal/spec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// compileText parses and compiles a spec literal for checking.
func compileText(t *testing.T, text string, opts compiler.Options) *compiler.Program {
	t.Helper()
	parsed, err := spec.Parse(text, "<spec>")
	require.NoError(t, err)
	return compiler.Compile(parsed, opts)
}

// writeTree materializes a fixture: entries ending in "/" become
// directories, everything else an empty file.
func writeTree(t *testing.T, root string, entries ...string) {
	t.Helper()
	for _, entry := range entries {
		path := filepath.Join(root, filepath.FromSlash(entry))
		if len(entry) > 0 && entry[len(entry)-1] == '/' {
			require.NoError(t, os.MkdirAll(path, 0755))
			continue
		}
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, nil, 0644))
	}
}

// requireViolation asserts that the walk fails with the exact message.
func requireViolation(t *testing.T, prog *compiler.Program, root, want string) {
	t.Helper()
	err := New(prog, root).Run()
	require.Error(t, err)
	var violation *Violation
	require.ErrorAs(t, err, &violation)
	assert.Equal(t, want, violation.Error())
}

func TestCheckEndToEnd(t *testing.T) {
	// folder1 allows only *.png; readme.txt must be the first violation.
	root := t.TempDir()
	writeTree(t, root, "folder1/a.png", "folder1/readme.txt", "folder2/")

	prog := compileText(t, "folder1\n    .png\nfolder2\n    folder2-*.*\n", compiler.Options{})
	requireViolation(t, prog, root, "unexpected file: folder1/readme.txt")
}

func TestCheckPassingTree(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root,
		"folder1/pngs/a.png",
		"folder1/photos/b.svg",
		"folder1/photos/c.jpg",
		"folder2/folder2-notes.txt",
	)

	text := "folder1\n    pngs\n        .png\n    photos\n        *.{svg, jpg, png}\nfolder2\n    folder2-*.*\n"
	prog := compileText(t, text, compiler.Options{})
	assert.NoError(t, New(prog, root).Run())
}

func TestCheckMissingDirectory(t *testing.T) {
	root := filepath.Join(t.TempDir(), "does-not-exist")
	prog := compileText(t, "", compiler.Options{})
	requireViolation(t, prog, root, "missing directory: .")
}

func TestCheckMissingRequiredDirectory(t *testing.T) {
	root := t.TempDir()
	prog := compileText(t, "logs\n", compiler.Options{})
	requireViolation(t, prog, root, "missing required directory: logs")
}

func TestCheckMissingRequiredFile(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, "conf/")
	prog := compileText(t, "conf\n    app.yaml\n", compiler.Options{})
	requireViolation(t, prog, root, "missing required file: conf/app.yaml")

	// A directory of the required name does not satisfy a file requirement.
	writeTree(t, root, "conf/app.yaml/")
	requireViolation(t, prog, root, "missing required file: conf/app.yaml")
}

func TestCheckRootLeniency(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, "folder1/", "README.md")
	text := "folder1\n"

	t.Run("root tolerates unlisted entries by default", func(t *testing.T) {
		prog := compileText(t, text, compiler.Options{})
		assert.NoError(t, New(prog, root).Run())
	})

	t.Run("strict root rejects them", func(t *testing.T) {
		prog := compileText(t, text, compiler.Options{StrictRoot: true})
		requireViolation(t, prog, root, "unexpected file: README.md")
	})
}

func TestCheckChildlessDirectoryIsStrict(t *testing.T) {
	// A declared directory with no children requires existence and, by
	// default, rejects any contents.
	root := t.TempDir()
	writeTree(t, root, "logs/")
	prog := compileText(t, "logs\n", compiler.Options{})
	assert.NoError(t, New(prog, root).Run())

	writeTree(t, root, "logs/junk.txt")
	requireViolation(t, prog, root, "unexpected file: logs/junk.txt")
}

func TestCheckAllowExtraEverywhere(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, "logs/junk.txt", "logs/nested/")
	prog := compileText(t, "logs\n", compiler.Options{AllowExtra: true})
	assert.NoError(t, New(prog, root).Run())
}

func TestCheckUnexpectedDirectory(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, "folder1/stray/")
	prog := compileText(t, "folder1\n    .png\n", compiler.Options{})
	requireViolation(t, prog, root, "unexpected directory: folder1/stray")
}

func TestCheckAmbiguousWildcards(t *testing.T) {
	// photo-2024 matches both sibling patterns; first-match-wins is
	// deliberately rejected.
	root := t.TempDir()
	writeTree(t, root, "photo-2024/")
	prog := compileText(t, "photo-*/\n*-2024/\n", compiler.Options{})
	requireViolation(t, prog, root, "ambiguous directory rule: photo-2024")
}

func TestCheckWildcardRecursion(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, "builds/", "build-1/a.log")
	text := "builds\nbuild-*/\n    .log\n"

	prog := compileText(t, text, compiler.Options{})
	assert.NoError(t, New(prog, root).Run())

	writeTree(t, root, "build-1/readme.md")
	requireViolation(t, prog, root, "unexpected file: build-1/readme.md")
}

func TestCheckWildcardSkipsLiteralSiblings(t *testing.T) {
	// "builds" is owned by its literal rule even though "build*" also
	// matches it; only build-1 goes through the wildcard rule.
	root := t.TempDir()
	writeTree(t, root, "builds/keep.txt", "build-1/a.log")
	text := "builds\n    keep.txt\nbuild*/\n    .log\n"

	prog := compileText(t, text, compiler.Options{})
	assert.NoError(t, New(prog, root).Run())
}

func TestCheckIgnoreList(t *testing.T) {
	t.Run("spec file never flags itself", func(t *testing.T) {
		root := t.TempDir()
		writeTree(t, root, ".dirc")
		prog := compileText(t, "", compiler.Options{StrictRoot: true, SpecBasename: ".dirc"})
		assert.NoError(t, New(prog, root).Run())
	})

	t.Run(".git is always invisible", func(t *testing.T) {
		root := t.TempDir()
		writeTree(t, root, ".git/HEAD")
		prog := compileText(t, "", compiler.Options{StrictRoot: true})
		assert.NoError(t, New(prog, root).Run())
	})

	t.Run("user globs apply in every directory", func(t *testing.T) {
		root := t.TempDir()
		writeTree(t, root, "logs/editor.swp")
		prog := compileText(t, "logs\n", compiler.Options{Ignore: []string{"*.swp"}})
		assert.NoError(t, New(prog, root).Run())
	})
}

func TestCheckOrderIsDeterministic(t *testing.T) {
	// Required-directory checks precede required-file checks and the
	// entry scan, so the missing directory wins even though extra
	// entries are also present.
	root := t.TempDir()
	writeTree(t, root, "present/", "present/stray.txt")
	text := "present\nabsent\n"
	prog := compileText(t, text, compiler.Options{StrictRoot: true})
	requireViolation(t, prog, root, "missing required directory: absent")
}

func TestCheckIdempotence(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, "folder1/readme.txt")
	prog := compileText(t, "folder1\n    .png\n", compiler.Options{})

	first := New(prog, root).Run()
	second := New(prog, root).Run()
	require.Error(t, first)
	require.Error(t, second)
	assert.Equal(t, first.Error(), second.Error())
}

func TestCheckBracePatterns(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, "photos/a.svg", "photos/b.gif")
	prog := compileText(t, "photos\n    *.{svg, jpg, png}\n", compiler.Options{})
	requireViolation(t, prog, root, "unexpected file: photos/b.gif")
}

func TestViolationError(t *testing.T) {
	violation := &Violation{Cause: CauseUnexpectedFile, Path: "a/b.txt"}
	assert.Equal(t, "unexpected file: a/b.txt", violation.Error())
	assert.True(t, errors.As(error(violation), new(*Violation)))
}
