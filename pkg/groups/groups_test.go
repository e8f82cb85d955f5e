package groups

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nishizumi-maho/nishizumi-setups-sync/pkg/catalog"
	"github.com/nishizumi-maho/nishizumi-setups-sync/pkg/sync"
)

var testGroup = catalog.EquivalenceGroup{
	Name:    "test group",
	Members: []string{"car-x", "car-y", "car-z"},
}

func write(t *testing.T, fs afero.Fs, path, contents string) {
	t.Helper()
	require.NoError(t, afero.WriteFile(fs, path, []byte(contents), 0644))
}

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

func TestFanOutCanonicalPick(t *testing.T) {
	fs := afero.NewMemMapFs()
	// car-x has no subtree and car-z's is empty, so car-y is canonical.
	write(t, fs, "root/car-y/Team/race.sto", "y's setup")
	require.NoError(t, fs.MkdirAll("root/car-z/Team", 0755))

	policy := sync.Default()
	policy.DeleteExtras = true
	require.NoError(t, FanOut(fs, "root", testGroup, "Team", "Team", policy))

	exp := map[string]string{"race.sto": "y's setup"}
	assert.Equal(t, exp, snapshot(t, fs, "root/car-x/Team"))
	assert.Equal(t, exp, snapshot(t, fs, "root/car-y/Team"))
	assert.Equal(t, exp, snapshot(t, fs, "root/car-z/Team"))
}

func TestFanOutReplacesDivergedMember(t *testing.T) {
	fs := afero.NewMemMapFs()
	write(t, fs, "root/car-x/Team/race.sto", "canonical")
	write(t, fs, "root/car-y/Team/race.sto", "diverged")
	write(t, fs, "root/car-y/Team/stale.sto", "stale")

	policy := sync.Default()
	policy.DeleteExtras = true
	require.NoError(t, FanOut(fs, "root", testGroup, "Team", "Team", policy))

	assert.Equal(t, map[string]string{"race.sto": "canonical"}, snapshot(t, fs, "root/car-y/Team"))
}

func TestFanOutNoCandidateIsNoop(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("root/car-x", 0755))

	require.NoError(t, FanOut(fs, "root", testGroup, "Team", "Team", sync.Default()))

	exists, err := afero.DirExists(fs, "root/car-x/Team")
	assert.NoError(t, err)
	assert.False(t, exists)
}

func TestMergeAllConverges(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	fs := afero.NewMemMapFs()
	write(t, fs, "a/setup.sto", "oldest")
	write(t, fs, "b/setup.sto", "newest")
	write(t, fs, "c/only-c.sto", "from c")
	require.NoError(t, fs.Chtimes("a/setup.sto", base, base))
	require.NoError(t, fs.Chtimes("b/setup.sto", base.Add(time.Hour), base.Add(time.Hour)))

	MergeAll(fs, []string{"a", "b", "c"}, "md5")

	exp := map[string]string{
		"setup.sto":  "newest",
		"only-c.sto": "from c",
	}
	assert.Equal(t, exp, snapshot(t, fs, "a"))
	assert.Equal(t, exp, snapshot(t, fs, "b"))
	assert.Equal(t, exp, snapshot(t, fs, "c"))
}

func TestSourceMergeDriverStyle(t *testing.T) {
	fs := afero.NewMemMapFs()
	write(t, fs, "root/car-x/Source/Common Setups/base.sto", "base")
	write(t, fs, "root/car-y/Source/Common Setups/quali.sto", "quali")
	write(t, fs, "root/car-x/Source/Drivers/alice/mine.sto", "alice x")
	write(t, fs, "root/car-y/Source/Drivers/alice/theirs.sto", "alice y")

	SourceMerge(fs, "root", testGroup, "Source", []string{"alice"}, true, "md5")

	// Common pools and alice's overlays are each a peer set; the union
	// lands everywhere, pools and overlays both.
	exp := map[string]string{
		filepath.Join("Common Setups", "base.sto"):       "base",
		filepath.Join("Common Setups", "quali.sto"):      "quali",
		filepath.Join("Common Setups", "mine.sto"):       "alice x",
		filepath.Join("Common Setups", "theirs.sto"):     "alice y",
		filepath.Join("Drivers", "alice", "base.sto"):    "base",
		filepath.Join("Drivers", "alice", "quali.sto"):   "quali",
		filepath.Join("Drivers", "alice", "mine.sto"):    "alice x",
		filepath.Join("Drivers", "alice", "theirs.sto"):  "alice y",
	}
	assert.Equal(t, exp, snapshot(t, fs, "root/car-x/Source"))
	assert.Equal(t, exp, snapshot(t, fs, "root/car-y/Source"))
}

func TestAuxMerge(t *testing.T) {
	fs := afero.NewMemMapFs()
	write(t, fs, "root/car-x/Garage 61/Data packs/lap1.sto", "lap 1")
	write(t, fs, "root/car-y/Team/Data packs/lap2.sto", "lap 2")

	AuxMerge(fs, "root", testGroup, "Team", "Garage 61", "Data packs", "md5")

	exp := map[string]string{
		"lap1.sto": "lap 1",
		"lap2.sto": "lap 2",
	}
	assert.Equal(t, exp, snapshot(t, fs, "root/car-x/Garage 61/Data packs"))
	assert.Equal(t, exp, snapshot(t, fs, "root/car-y/Team/Data packs"))
}
