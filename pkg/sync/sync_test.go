package sync

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func write(t *testing.T, fs afero.Fs, path, contents string) {
	t.Helper()
	require.NoError(t, afero.WriteFile(fs, path, []byte(contents), 0644))
}

func writeAt(t *testing.T, fs afero.Fs, path, contents string, mtime time.Time) {
	t.Helper()
	write(t, fs, path, contents)
	require.NoError(t, fs.Chtimes(path, mtime, mtime))
}

// snapshot returns the relative path -> contents map of every file under root.
func snapshot(t *testing.T, fs afero.Fs, root string) map[string]string {
	t.Helper()
	files := map[string]string{}
	err := afero.Walk(fs, root, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return err
		}
		rel, err := filepath.Rel(root, path)
		require.NoError(t, err)
		contents, err := afero.ReadFile(fs, path)
		require.NoError(t, err)
		files[rel] = string(contents)
		return nil
	})
	require.NoError(t, err)
	return files
}

func TestList(t *testing.T) {
	fs := afero.NewMemMapFs()
	write(t, fs, "root/b.sto", "b")
	write(t, fs, "root/a.sto", "a")
	require.NoError(t, fs.MkdirAll("root/sub", 0755))

	nodes, err := List(fs, "root")
	assert.NoError(t, err)

	var names []string
	kinds := map[string]NodeKind{}
	for _, node := range nodes {
		names = append(names, node.Name)
		kinds[node.Name] = node.Kind
	}
	assert.Equal(t, []string{"a.sto", "b.sto", "sub"}, names)
	assert.Equal(t, KindFile, kinds["a.sto"])
	assert.Equal(t, KindDir, kinds["sub"])
}

func TestMirrorCopiesAndFilters(t *testing.T) {
	fs := afero.NewMemMapFs()
	write(t, fs, "src/a.sto", "setup a")
	write(t, fs, "src/b.txt", "notes")
	write(t, fs, "src/sub/c.STO", "setup c")

	result, err := Mirror(fs, "src", "dst", Default())
	assert.NoError(t, err)
	assert.Equal(t, 2, result.Copied)

	assert.Equal(t, map[string]string{
		"a.sto":                      "setup a",
		filepath.Join("sub", "c.STO"): "setup c",
	}, snapshot(t, fs, "dst"))
}

func TestMirrorOverwritesOnMismatch(t *testing.T) {
	fs := afero.NewMemMapFs()
	write(t, fs, "src/a.sto", "new contents")
	write(t, fs, "dst/a.sto", "old contents")

	result, err := Mirror(fs, "src", "dst", Default())
	assert.NoError(t, err)
	assert.Equal(t, 1, result.Copied)

	contents, err := afero.ReadFile(fs, "dst/a.sto")
	assert.NoError(t, err)
	assert.Equal(t, "new contents", string(contents))
}

func TestMirrorDeleteExtras(t *testing.T) {
	fs := afero.NewMemMapFs()
	write(t, fs, "src/a.sto", "a")
	write(t, fs, "dst/a.sto", "a")
	write(t, fs, "dst/stale.sto", "gone from source")
	write(t, fs, "dst/b.txt", "placed under a looser filter")
	write(t, fs, "dst/old-dir/x.sto", "whole dir gone from source")

	policy := Default()
	policy.DeleteExtras = true
	result, err := Mirror(fs, "src", "dst", policy)
	assert.NoError(t, err)
	assert.Equal(t, 3, result.Deleted)

	assert.Equal(t, map[string]string{"a.sto": "a"}, snapshot(t, fs, "dst"))
}

func TestMirrorPreservesExtrasByDefault(t *testing.T) {
	fs := afero.NewMemMapFs()
	write(t, fs, "src/a.sto", "a")
	write(t, fs, "dst/keep.sto", "kept")

	_, err := Mirror(fs, "src", "dst", Default())
	assert.NoError(t, err)

	exists, err := afero.Exists(fs, "dst/keep.sto")
	assert.NoError(t, err)
	assert.True(t, exists)
}

func TestMirrorIgnoreDirs(t *testing.T) {
	fs := afero.NewMemMapFs()
	write(t, fs, "src/a.sto", "a")
	write(t, fs, "src/Data packs/lap.sto", "telemetry")
	write(t, fs, "dst/Data packs/other.sto", "existing telemetry")

	policy := Default()
	policy.DeleteExtras = true
	policy.IgnoreDirs = []string{"Data packs"}
	_, err := Mirror(fs, "src", "dst", policy)
	assert.NoError(t, err)

	// The ignored directory is neither copied nor swept.
	assert.Equal(t, map[string]string{
		"a.sto": "a",
		filepath.Join("Data packs", "other.sto"): "existing telemetry",
	}, snapshot(t, fs, "dst"))
}

func TestMirrorIdempotent(t *testing.T) {
	fs := afero.NewMemMapFs()
	write(t, fs, "src/a.sto", "a")
	write(t, fs, "src/sub/b.sto", "b")

	policy := Default()
	policy.DeleteExtras = true

	first, err := Mirror(fs, "src", "dst", policy)
	assert.NoError(t, err)
	assert.Equal(t, 2, first.Copied)

	second, err := Mirror(fs, "src", "dst", policy)
	assert.NoError(t, err)
	assert.Equal(t, Result{}, second)
}

func TestMirrorMissingSource(t *testing.T) {
	fs := afero.NewMemMapFs()
	_, err := Mirror(fs, "no-such-dir", "dst", Default())
	assert.Error(t, err)
}

func TestCopyMissingNonDestructive(t *testing.T) {
	fs := afero.NewMemMapFs()
	write(t, fs, "src/a.sto", "team version")
	write(t, fs, "src/new.sto", "new file")
	write(t, fs, "src/skip.txt", "ineligible")
	write(t, fs, "dst/a.sto", "driver's own tweaks")

	result, err := CopyMissing(fs, "src", "dst", Default())
	assert.NoError(t, err)
	assert.Equal(t, 1, result.Copied)

	assert.Equal(t, map[string]string{
		"a.sto":   "driver's own tweaks",
		"new.sto": "new file",
	}, snapshot(t, fs, "dst"))
}

func TestCopyMissingNeverDeletes(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("src", 0755))
	write(t, fs, "dst/extra.sto", "not in source")

	_, err := CopyMissing(fs, "src", "dst", Default())
	assert.NoError(t, err)

	exists, err := afero.Exists(fs, "dst/extra.sto")
	assert.NoError(t, err)
	assert.True(t, exists)
}

func TestBidirectionalPropagatesUnique(t *testing.T) {
	fs := afero.NewMemMapFs()
	write(t, fs, "a/only-a.sto", "from a")
	write(t, fs, "a/deep/tree.sto", "subtree from a")
	write(t, fs, "b/only-b.sto", "from b")

	_, err := Bidirectional(fs, "a", "b", "md5")
	assert.NoError(t, err)

	exp := map[string]string{
		"only-a.sto":                      "from a",
		"only-b.sto":                      "from b",
		filepath.Join("deep", "tree.sto"): "subtree from a",
	}
	assert.Equal(t, exp, snapshot(t, fs, "a"))
	assert.Equal(t, exp, snapshot(t, fs, "b"))
}

func TestBidirectionalNewerWins(t *testing.T) {
	older := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	newer := older.Add(time.Hour)

	tests := []struct {
		name   string
		mtimeA time.Time
		mtimeB time.Time
		exp    string
	}{
		{name: "AWins", mtimeA: newer, mtimeB: older, exp: "version a"},
		{name: "BWins", mtimeA: older, mtimeB: newer, exp: "version b"},
		{name: "TieFavorsA", mtimeA: older, mtimeB: older, exp: "version a"},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			fs := afero.NewMemMapFs()
			writeAt(t, fs, "a/setup.sto", "version a", test.mtimeA)
			writeAt(t, fs, "b/setup.sto", "version b", test.mtimeB)

			_, err := Bidirectional(fs, "a", "b", "md5")
			assert.NoError(t, err)

			assert.Equal(t, map[string]string{"setup.sto": test.exp}, snapshot(t, fs, "a"))
			assert.Equal(t, map[string]string{"setup.sto": test.exp}, snapshot(t, fs, "b"))
		})
	}
}

func TestBidirectionalSymmetricAndIdempotent(t *testing.T) {
	older := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	fs := afero.NewMemMapFs()
	writeAt(t, fs, "a/shared.sto", "old", older)
	writeAt(t, fs, "b/shared.sto", "new", older.Add(time.Minute))
	write(t, fs, "a/extra.sto", "a only")

	_, err := Bidirectional(fs, "a", "b", "md5")
	assert.NoError(t, err)

	// A second merge in the opposite direction changes nothing.
	result, err := Bidirectional(fs, "b", "a", "md5")
	assert.NoError(t, err)
	assert.Equal(t, Result{}, result)

	assert.Equal(t, snapshot(t, fs, "a"), snapshot(t, fs, "b"))
}

func TestPolicyEligible(t *testing.T) {
	tests := []struct {
		name       string
		extensions []string
		file       string
		exp        bool
	}{
		{name: "Match", extensions: []string{".sto"}, file: "a.sto", exp: true},
		{name: "CaseInsensitive", extensions: []string{".sto"}, file: "A.STO", exp: true},
		{name: "NoMatch", extensions: []string{".sto"}, file: "b.txt", exp: false},
		{name: "AllFiles", extensions: nil, file: "b.txt", exp: true},
		{name: "NoExtension", extensions: []string{".sto"}, file: "README", exp: false},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			policy := Policy{Extensions: test.extensions}
			assert.Equal(t, test.exp, policy.Eligible(test.file))
		})
	}
}
