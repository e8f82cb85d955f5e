package catalog

import (
	"strings"
)

// A carAlias links a label fragment seen in shared setup folders (e.g.
// "Watkins - BMW GT3") to the canonical iRacing setups directory. Lookup is
// by substring match on either the alias or the target, lowercased, so both
// the colloquial class name and the real directory name resolve.
type carAlias struct {
	alias  string
	target string
}

// Order matters: the first matching entry wins, and for grouped cars the
// first member of the group is the default import target.
var carMap = []carAlias{
	{"ir18", "dallarair18"},
	{"aston gt4", "amvantagegt4"},
	{"bmw gt4 evo", "bmwm4evogt4"},
	{"mclaren gt4", "mclaren570sgt4"},
	{"bmw gt3", "bmwm4gt3"},
	{"mclaren gt3", "mclaren720sgt3"},
	{"mclaren gtd", "mclaren720sgt3"},
	{"acura gtp", "acuraarx06gtp"},
	{"audi gtd", "audir8lmsevo2gt3"},
	{"audi gt3", "audir8lmsevo2gt3"},
	{"bmw gtd", "bmwm4gt3"},
	{"bmw gtp", "bmwlmdh"},
	{"cadillac gtp", "cadillacvseriesrgtp"},
	{"corvette gtd", "chevyvettez06rgt3"},
	{"corvette gt3", "chevyvettez06rgt3"},
	{"dallara lmp2", "dallarap217"},
	{"ferrari 499p", "ferrari499p"},
	{"ferrari gtd", "ferrari296gt3"},
	{"ferrari gt3", "ferrari296gt3"},
	{"lamborghini gtd", "lamborghinievogt3"},
	{"lamborghini gt3", "lamborghinievogt3"},
	{"mercedes gtd", "mercedesamgevogt3"},
	{"mercedes gt3", "mercedesamgevogt3"},
	{"mustang gtd", "fordmustanggt3"},
	{"mustang gt3", "fordmustanggt3"},
	{"porsche gtd", "porsche992rgt3"},
	{"porsche gt3", "porsche992rgt3"},
	{"porsche gtp", "porsche963gtp"},
	{"fia f4", "formulair04"},
	{"porsche gt4", "porsche718gt4"},
	{"mercedes gt4", "mercedesamggt4"},
	{"lmp3", "ligierjsp320"},
	{"sfl", "superformulalights324"},
	{"pcup", "porsche992cup"},
	{"porsche gte", "porsche991rsr"},
	{"corvette gte", "c8rvettegte"},
	{"nsx gt3", "acuransxevo22gt3"},
	{"nsx gtd", "acuransxevo22gt3"},
	{"nascar trucks", "trucks toyotatundra2022"},
	{"nascar trucks", "trucks fordf150"},
	{"nascar trucks", "trucks silverado2019"},
	{"nascar xfinity", "stockcars2 supra2019"},
	{"nascar xfinity", "stockcars2 mustang2019"},
	{"nascar xfinity", "stockcars2 camaro2019"},
	{"nascar nextgen", "stockcars chevycamarozl12022"},
	{"nascar nextgen", "stockcars fordmustang2022"},
	{"nascar nextgen", "stockcars toyotacamry2022"},
}

// normalizeLabel extracts the car portion of an imported folder label.
// Shared archives typically name folders "<track> - <car>", so the part
// after the first dash is what identifies the car.
func normalizeLabel(label string) string {
	parts := strings.SplitN(label, "-", 2)
	if len(parts) == 2 {
		return strings.ToLower(strings.TrimSpace(parts[1]))
	}
	return strings.ToLower(label)
}

// lookupBuiltin resolves a normalized label against the static car map.
func lookupBuiltin(name string) (string, bool) {
	for _, entry := range carMap {
		if strings.Contains(name, entry.alias) || strings.Contains(name, entry.target) {
			return entry.target, true
		}
	}
	return "", false
}
