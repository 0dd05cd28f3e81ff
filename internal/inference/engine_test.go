package inference

import (
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abelbrown/eses/internal/dataset"
)

func builtin(t *testing.T) *dataset.Table {
	t.Helper()
	tbl, err := dataset.Builtin()
	require.NoError(t, err)
	return tbl
}

func seed(habitat, diet, offsprings, lifespan string) *Facts {
	return FactsFrom(map[dataset.Field]string{
		dataset.Habitat:    habitat,
		dataset.Diet:       diet,
		dataset.Offsprings: offsprings,
		dataset.Lifespan:   lifespan,
	})
}

func TestRunGiantPanda(t *testing.T) {
	tbl := builtin(t)
	panda, ok := tbl.FindFirst(dataset.Criteria{dataset.Name: "Giant Panda"})
	require.True(t, ok)

	res := New(tbl).Run(seed("Bamboo Forest", "Herbivore", "1", "20"))

	got := res.Facts.Map()
	assert.Equal(t, "Giant Panda", got[dataset.Name])
	for _, f := range []dataset.Field{
		dataset.ScientificName,
		dataset.ConservationStatus,
		dataset.Population,
		dataset.Warning,
		dataset.Recommendation,
		dataset.PhysicalDescription,
		dataset.Threats,
	} {
		assert.Equal(t, panda.Value(f), got[f], "field %s", f)
	}
	assert.Len(t, got, 12)
	assert.Equal(t, 2, res.Passes)
}

func TestRunNoMatchLeavesSeedOnly(t *testing.T) {
	res := New(builtin(t)).Run(seed("Desert", "Herbivore", "9", "400"))

	want := map[dataset.Field]string{
		dataset.Habitat:    "Desert",
		dataset.Diet:       "Herbivore",
		dataset.Offsprings: "9",
		dataset.Lifespan:   "400",
	}
	if diff := cmp.Diff(want, res.Facts.Map()); diff != "" {
		t.Errorf("facts mismatch (-want +got):\n%s", diff)
	}
	assert.Empty(t, res.Firings)
	assert.Equal(t, 1, res.Passes)
}

func TestRunMalformedInputIsNotAnError(t *testing.T) {
	res := New(builtin(t)).Run(seed("Savannah", "Herbivore", "one", "seventy"))

	// habitat+diet still resolves; nothing that depends on the free text does.
	pop, ok := res.Facts.Get(dataset.Population)
	require.True(t, ok)
	assert.Equal(t, "415000", pop)
	assert.False(t, res.Facts.Has(dataset.Name))
	assert.False(t, res.Facts.Has(dataset.Threats))
	assert.False(t, res.Facts.Has(dataset.PhysicalDescription))
}

const testHeader = "habitat,diet,Offspring,lifespan,population,threats,conservation_status,name,scientific_name,physical_description,warning,recommendation_to_save\n"

func loadTable(t *testing.T, rows string) *dataset.Table {
	t.Helper()
	tbl, err := dataset.Load(strings.NewReader(testHeader+rows), "test", ',')
	require.NoError(t, err)
	return tbl
}

func TestRunBlankAnswerNeverMatchesBlankCell(t *testing.T) {
	tbl := loadTable(t, "Desert,Herbivore,1,,500,t,Critically Endangered,Addax,Addax nasomaculatus,p,w,r\n")

	res := New(tbl).Run(seed("Desert", "Herbivore", "1", ""))

	want := map[dataset.Field]string{
		dataset.Habitat:             "Desert",
		dataset.Diet:                "Herbivore",
		dataset.Offsprings:          "1",
		dataset.Lifespan:            "",
		dataset.Population:          "500",
		dataset.PhysicalDescription: "p",
	}
	if diff := cmp.Diff(want, res.Facts.Map()); diff != "" {
		t.Errorf("facts mismatch (-want +got):\n%s", diff)
	}
	for _, fr := range res.Firings {
		assert.NotContains(t, []string{"habitat_diet_lifespan_name", "population_lifespan_threats", "population_lifespan_conservation_status"}, fr.Rule)
	}
}

func TestRunBlankCellDerivesNothing(t *testing.T) {
	tbl := loadTable(t, "Tundra,Carnivore,2,12,300,t,Endangered,Arctic Wolf,Canis lupus arctos,p,,r\n")

	res := New(tbl).Run(seed("Tundra", "Carnivore", "2", "12"))

	name, _ := res.Facts.Get(dataset.Name)
	assert.Equal(t, "Arctic Wolf", name)
	assert.False(t, res.Facts.Has(dataset.Warning), "a blank cell is not a known value")
	for _, fr := range res.Firings {
		assert.NotContains(t, fr.Derived, dataset.Warning)
	}
}

func TestRunPopulationForEveryPair(t *testing.T) {
	tbl := builtin(t)
	eng := New(tbl)
	for _, rec := range tbl.Records() {
		h, d := rec.Value(dataset.Habitat), rec.Value(dataset.Diet)
		first, _ := tbl.FindFirst(dataset.Criteria{dataset.Habitat: h, dataset.Diet: d})

		res := eng.Run(seed(h, d, "", ""))
		got, ok := res.Facts.Get(dataset.Population)
		require.True(t, ok, "%s/%s", h, d)
		assert.Equal(t, first.Value(dataset.Population), got, "%s/%s", h, d)
	}
}

func TestRunDerivesOnlyFromConsistentRows(t *testing.T) {
	tbl := builtin(t)
	eng := New(tbl)
	rules := map[string]Rule{}
	for _, r := range eng.Rules() {
		rules[r.Name] = r
	}

	for _, rec := range tbl.Records() {
		res := eng.Run(seed(
			rec.Value(dataset.Habitat),
			rec.Value(dataset.Diet),
			rec.Value(dataset.Offsprings),
			rec.Value(dataset.Lifespan),
		))
		require.NotEmpty(t, res.Firings)

		for _, fr := range res.Firings {
			row := tbl.At(fr.Row)
			rule := rules[fr.Rule]
			for _, k := range rule.Requires {
				v, _ := res.Facts.Get(k)
				assert.Equal(t, v, row.Value(k), "%s: required %s", fr, k)
			}
			for _, k := range fr.Derived {
				v, _ := res.Facts.Get(k)
				assert.Equal(t, row.Value(k), v, "%s: derived %s", fr, k)
			}
		}
	}
}

func TestRunIsIdempotent(t *testing.T) {
	eng := New(builtin(t))
	first := eng.Run(seed("Arctic", "Carnivore", "2", "25"))
	require.True(t, first.Facts.Has(dataset.Name))

	again := eng.Run(first.Facts)
	assert.Empty(t, again.Firings)
	assert.Equal(t, 1, again.Passes)
	if diff := cmp.Diff(first.Facts.Map(), again.Facts.Map()); diff != "" {
		t.Errorf("re-run changed facts (-first +again):\n%s", diff)
	}
}

func TestRunOrderIndependent(t *testing.T) {
	tbl := builtin(t)
	base := DefaultRules()

	queries := []*Facts{
		seed("Bamboo Forest", "Herbivore", "1", "20"),
		seed("Ocean", "Omnivore", "130", "50"),
		seed("Mountain", "Carnivore", "1", "99"),
		seed("Savannah", "Carnivore", "4", "12"),
	}

	for _, q := range queries {
		want := New(tbl).Run(q).Facts.Map()
		permute(base, func(order []Rule) {
			got := New(tbl, WithRules(order...)).Run(q).Facts.Map()
			if diff := cmp.Diff(want, got); diff != "" {
				t.Fatalf("order %v changed result (-want +got):\n%s", ruleNames(order), diff)
			}
		})
	}
}

func TestRunSharesLookupForIdenticalTriggers(t *testing.T) {
	counter := &countingLookup{Lookup: builtin(t)}
	res := New(counter).Run(seed("Bamboo Forest", "Herbivore", "1", "20"))

	// Six rules, but threats and conservation status come from one scan.
	assert.Equal(t, 5, res.Lookups)
	assert.Equal(t, 5, counter.calls)

	var threats, status Firing
	for _, f := range res.Firings {
		switch f.Rule {
		case "population_lifespan_threats":
			threats = f
		case "population_lifespan_conservation_status":
			status = f
		}
	}
	assert.Equal(t, threats.Row, status.Row)
	assert.Equal(t, threats.Pass, status.Pass)
}

func TestRunKeepFirst(t *testing.T) {
	body := "habitat,diet,Offspring,lifespan,population,threats,conservation_status,name,scientific_name,physical_description,warning,recommendation_to_save\n" +
		"Savannah,Herbivore,1,70,100,t1,Endangered,Alpha,Alpha alpha,p1,w1,r1\n" +
		"Savannah,Herbivore,1,70,200,t2,Vulnerable,Beta,Beta beta,p2,w2,r2\n"
	tbl, err := dataset.Load(strings.NewReader(body), "dup", 0)
	require.NoError(t, err)

	res := New(tbl).Run(seed("Savannah", "Herbivore", "1", "70"))
	got := res.Facts.Map()
	assert.Equal(t, "100", got[dataset.Population])
	assert.Equal(t, "Alpha", got[dataset.Name])
	assert.Equal(t, "Endangered", got[dataset.ConservationStatus])

	for _, f := range res.Firings {
		assert.Equal(t, 0, f.Row, "rule %s should use the first matching row", f.Rule)
	}
}

func TestRunNameRuleDoesNotOverwrite(t *testing.T) {
	// The population row and the name row disagree; the earlier derivation wins.
	body := "habitat,diet,Offspring,lifespan,population,threats,conservation_status,name,scientific_name,physical_description,warning,recommendation_to_save\n" +
		"Ocean,Carnivore,1,90,300,t,Endangered,Orca,Orcinus orca,p,w,r\n" +
		"Ocean,Carnivore,1,40,999,t,Vulnerable,Shark,Selachimorpha,p2,w2,r2\n"
	tbl, err := dataset.Load(strings.NewReader(body), "conflict", 0)
	require.NoError(t, err)

	res := New(tbl).Run(seed("Ocean", "Carnivore", "1", "40"))
	got := res.Facts.Map()
	assert.Equal(t, "Shark", got[dataset.Name])
	assert.Equal(t, "300", got[dataset.Population])
	assert.Equal(t, "Selachimorpha", got[dataset.ScientificName])
}

func TestRunDoesNotModifySeed(t *testing.T) {
	s := seed("Grassland", "Carnivore", "3", "3")
	New(builtin(t)).Run(s)
	assert.Equal(t, 4, s.Len())
}

func TestRunNilSeed(t *testing.T) {
	res := New(builtin(t)).Run(nil)
	assert.Equal(t, 0, res.Facts.Len())
	assert.Equal(t, 1, res.Passes)
}

func TestRunConcurrent(t *testing.T) {
	tbl := builtin(t)
	eng := New(tbl)

	var wg sync.WaitGroup
	errs := make(chan string, tbl.Len())
	for _, rec := range tbl.Records() {
		wg.Add(1)
		go func(rec dataset.Record) {
			defer wg.Done()
			res := eng.Run(seed(
				rec.Value(dataset.Habitat),
				rec.Value(dataset.Diet),
				rec.Value(dataset.Offsprings),
				rec.Value(dataset.Lifespan),
			))
			if name, _ := res.Facts.Get(dataset.Name); name != rec.Value(dataset.Name) {
				errs <- name + " != " + rec.Value(dataset.Name)
			}
		}(rec)
	}
	wg.Wait()
	close(errs)
	for e := range errs {
		t.Error(e)
	}
}

func TestFiringString(t *testing.T) {
	f := Firing{Rule: "habitat_diet_population", Pass: 1, Row: 3, Derived: []dataset.Field{dataset.Population}}
	assert.Equal(t, "pass 1: habitat_diet_population (row 3) -> population", f.String())
}

type countingLookup struct {
	dataset.Lookup
	calls int
}

func (c *countingLookup) FindFirst(cr dataset.Criteria) (dataset.Record, bool) {
	c.calls++
	return c.Lookup.FindFirst(cr)
}

// permute calls fn with every ordering of rules (Heap's algorithm).
func permute(rules []Rule, fn func([]Rule)) {
	a := append([]Rule(nil), rules...)
	var gen func(int)
	gen = func(k int) {
		if k <= 1 {
			fn(a)
			return
		}
		gen(k - 1)
		for i := 0; i < k-1; i++ {
			if k%2 == 0 {
				a[i], a[k-1] = a[k-1], a[i]
			} else {
				a[0], a[k-1] = a[k-1], a[0]
			}
			gen(k - 1)
		}
	}
	gen(len(a))
}

func ruleNames(rules []Rule) []string {
	out := make([]string, len(rules))
	for i, r := range rules {
		out[i] = r.Name
	}
	return out
}
