// Package catalog models the setup catalog: the per-car item directories
// under the iRacing setups root, the static name map that identifies which
// item an imported folder belongs to, and the equivalence groups of cars that
// share a chassis.
package catalog

import (
	"strings"

	"github.com/spf13/afero"

	"github.com/nishizumi-maho/nishizumi-setups-sync/pkg/errors"
)

// invalidChars are characters that can't appear in folder names on Windows,
// where iRacing runs.
const invalidChars = `<>:"/\|?*`

// CleanName strips whitespace and characters that aren't legal in folder
// names. Driver names and folder names coming from config or the roster
// service pass through here before ever touching the filesystem.
func CleanName(name string) string {
	name = strings.TrimSpace(name)
	var b strings.Builder
	for _, c := range name {
		if !strings.ContainsRune(invalidChars, c) {
			b.WriteRune(c)
		}
	}
	return b.String()
}

// Items returns the names of the item directories under the catalog root,
// sorted by name. Files at the top level are not items and are skipped.
func Items(fs afero.Fs, root string) ([]string, error) {
	infos, err := afero.ReadDir(fs, root)
	if err != nil {
		return nil, errors.WithContext(err, "list catalog root")
	}

	var items []string
	for _, info := range infos {
		if info.IsDir() {
			items = append(items, info.Name())
		}
	}
	return items, nil
}

// An EquivalenceGroup is an ordered set of items that are interchangeable
// for setup purposes because the underlying cars share a chassis. The
// declared order decides which member is picked as the canonical source
// during fan-out.
type EquivalenceGroup struct {
	Name    string
	Members []string
}

// stock car classes where every manufacturer body runs the same chassis
var equivalenceGroups = []EquivalenceGroup{
	{
		Name: "nascar nextgen",
		Members: []string{
			"stockcars chevycamarozl12022",
			"stockcars fordmustang2022",
			"stockcars toyotacamry2022",
		},
	},
	{
		Name: "nascar xfinity",
		Members: []string{
			"stockcars2 supra2019",
			"stockcars2 mustang2019",
			"stockcars2 camaro2019",
		},
	},
	{
		Name: "nascar trucks",
		Members: []string{
			"trucks toyotatundra2022",
			"trucks fordf150",
			"trucks silverado2019",
		},
	},
}

// Groups returns the equivalence groups in a stable order.
func Groups() []EquivalenceGroup {
	groups := make([]EquivalenceGroup, len(equivalenceGroups))
	copy(groups, equivalenceGroups)
	return groups
}
