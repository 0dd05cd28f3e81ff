package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setHome points HOME at a temp dir so config, logs and events stay local.
func setHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	return home
}

func runCLI(t *testing.T, stdin io.Reader, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	if stdin != nil {
		cmd.SetIn(stdin)
	}
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

var pandaArgs = []string{"infer", "--habitat", "Bamboo Forest", "--diet", "Herbivore", "--offsprings", "1", "--lifespan", "20"}

func TestInferText(t *testing.T) {
	setHome(t)

	out, err := runCLI(t, nil, pandaArgs...)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "name: Giant Panda\nscientific_name: Ailuropoda melanoleuca\n"), out)
	assert.Contains(t, out, "conservation_status: Vulnerable\n")
	assert.NotContains(t, out, "no species identified")
}

func TestInferNoMatch(t *testing.T) {
	setHome(t)

	out, err := runCLI(t, nil, "infer", "--habitat", "Desert", "--diet", "Herbivore", "--offsprings", "9", "--lifespan", "400")
	require.NoError(t, err)
	assert.Contains(t, out, "habitat: Desert\n")
	assert.Contains(t, out, "(no species identified)")
}

func TestInferTrace(t *testing.T) {
	setHome(t)

	out, err := runCLI(t, nil, append(pandaArgs, "--trace")...)
	require.NoError(t, err)
	assert.Contains(t, out, "trace: 2 passes, 5 lookups")
	assert.Contains(t, out, "pass 1: habitat_diet_population")
	assert.Contains(t, out, "name_all_features")
}

func TestInferJSON(t *testing.T) {
	setHome(t)

	out, err := runCLI(t, nil, append(pandaArgs, "--format", "json", "--trace")...)
	require.NoError(t, err)

	var doc struct {
		Run        string            `json:"run"`
		Identified bool              `json:"identified"`
		Report     map[string]string `json:"report"`
		Passes     int               `json:"passes"`
		Lookups    int               `json:"lookups"`
		Trace      []firingJSON      `json:"trace"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.NotEmpty(t, doc.Run)
	assert.True(t, doc.Identified)
	assert.Equal(t, "Giant Panda", doc.Report["name"])
	assert.Len(t, doc.Report, 12)
	assert.Equal(t, 2, doc.Passes)
	assert.Equal(t, 5, doc.Lookups)
	assert.Len(t, doc.Trace, 6)

	// Report keys keep display order.
	assert.Less(t, strings.Index(out, `"name"`), strings.Index(out, `"scientific_name"`))
	assert.Less(t, strings.Index(out, `"threats"`), strings.LastIndex(out, `"diet"`))
}

func TestInferMarkdown(t *testing.T) {
	setHome(t)

	out, err := runCLI(t, nil, append(pandaArgs, "--format", "markdown")...)
	require.NoError(t, err)
	assert.Contains(t, out, "Giant Panda")
	assert.Contains(t, out, "Ailuropoda melanoleuca")
}

func TestInferBadFormat(t *testing.T) {
	setHome(t)

	_, err := runCLI(t, nil, append(pandaArgs, "--format", "yaml")...)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown format")
}

func TestInferMissingDataset(t *testing.T) {
	setHome(t)

	_, err := runCLI(t, nil, append(pandaArgs, "--dataset", filepath.Join(t.TempDir(), "absent.csv"))...)
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist), "got %v", err)
}

func TestBatchKeepsInputOrder(t *testing.T) {
	setHome(t)

	path := filepath.Join(t.TempDir(), "queries.csv")
	queries := "habitat,diet,offsprings,lifespan\n" +
		"# skipped\n" +
		"Bamboo Forest,Herbivore,1,20\n" +
		"Desert,Herbivore,9,400\n" +
		"Ocean,Omnivore,130,50\n" +
		"Arctic,Carnivore,2,25\n"
	require.NoError(t, os.WriteFile(path, []byte(queries), 0644))

	out, err := runCLI(t, nil, "batch", path, "--workers", "3")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 4)

	wantNames := []string{"Giant Panda", "", "Hawksbill Turtle", "Polar Bear"}
	for i, line := range lines {
		var doc struct {
			Line       int               `json:"line"`
			Identified bool              `json:"identified"`
			Report     map[string]string `json:"report"`
		}
		require.NoError(t, json.Unmarshal([]byte(line), &doc), line)
		assert.Equal(t, i+3, doc.Line, "file line of query %d", i)
		assert.Equal(t, wantNames[i], doc.Report["name"], "query %d", i)
		assert.Equal(t, wantNames[i] != "", doc.Identified)
	}
}

func TestBatchStdin(t *testing.T) {
	setHome(t)

	out, err := runCLI(t, strings.NewReader("Savannah,Carnivore,4,12\n"), "batch", "-")
	require.NoError(t, err)
	assert.Contains(t, out, `"name":"Cheetah"`)
}

func TestImportThenStats(t *testing.T) {
	setHome(t)
	dir := t.TempDir()

	csvPath := filepath.Join(dir, "species.tsv")
	tsv := "habitat\tdiet\toffsprings\tlifespan\tpopulation\tthreats\tconservation_status\tname\tscientific_name\tphysical_description\twarning\trecommendation_to_save\n" +
		"Desert\tHerbivore\t2\t12\t500\tDrought\tEndangered\tAddax\tAddax nasomaculatus\tSpiral horns\tFew left\tProtect\n" +
		"Desert\tCarnivore\t3\t10\t2000\tPoaching\tVulnerable\tFennec Fox\tVulpes zerda\tLarge ears\tTrade\tEnforce\n"
	require.NoError(t, os.WriteFile(csvPath, []byte(tsv), 0644))
	dbPath := filepath.Join(dir, "species.db")

	out, err := runCLI(t, nil, "import", csvPath, "--db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, "imported 2 rows")

	out, err = runCLI(t, nil, "stats", "--dataset", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, "rows:     2")
	assert.Contains(t, out, "imported: ")
	assert.Contains(t, out, "Desert (2)")

	out, err = runCLI(t, nil, "infer", "--dataset", dbPath, "--habitat", "Desert", "--diet", "Carnivore", "--offsprings", "3", "--lifespan", "10")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "name: Fennec Fox\n"), out)
}

func TestImportRejectsBadCSV(t *testing.T) {
	setHome(t)
	path := filepath.Join(t.TempDir(), "bad.csv")
	require.NoError(t, os.WriteFile(path, []byte("habitat,diet\nOcean,Carnivore\n"), 0644))

	_, err := runCLI(t, nil, "import", path, "--db", filepath.Join(t.TempDir(), "x.db"))
	require.Error(t, err)
}

func TestStatsBuiltin(t *testing.T) {
	setHome(t)

	out, err := runCLI(t, nil, "stats")
	require.NoError(t, err)
	assert.Contains(t, out, "source:   builtin")
	assert.Contains(t, out, "rows:     16")
	assert.Contains(t, out, "habitat: 8 distinct")
	assert.Contains(t, out, "Bamboo Forest (2)")
	assert.Contains(t, out, "diet: 3 distinct")
	assert.NotContains(t, out, "imported:")
}

func TestRules(t *testing.T) {
	setHome(t)

	out, err := runCLI(t, nil, "rules")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 6)
	assert.True(t, strings.HasPrefix(lines[0], "1. habitat_diet_population"), lines[0])
	assert.Contains(t, lines[0], "habitat, diet -> population")
	assert.True(t, strings.HasPrefix(lines[5], "6. name_all_features"), lines[5])
}

func TestEventsAfterInfer(t *testing.T) {
	setHome(t)

	out, err := runCLI(t, nil, append(pandaArgs, "--format", "json")...)
	require.NoError(t, err)
	var doc struct {
		Run string `json:"run"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &doc))

	out, err = runCLI(t, nil, "events", "--run", doc.Run)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 8, out) // start, six firings, complete
	assert.Contains(t, lines[0], "infer.start")
	assert.Contains(t, lines[1], "infer.rule")
	assert.Contains(t, lines[1], "row=0")
	assert.Contains(t, lines[7], "infer.complete")
	assert.Contains(t, lines[7], "Giant Panda")

	out, err = runCLI(t, nil, "events", "--kind", "infer.complete", "--json")
	require.NoError(t, err)
	lines = strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 1)
	var ev map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &ev))
	assert.Equal(t, doc.Run, ev["run"])

	out, err = runCLI(t, nil, "events", "--level", "info", "--kind", "infer")
	require.NoError(t, err)
	assert.NotContains(t, out, "infer.rule", "rule events are debug level")
}

func TestEventsMissingLog(t *testing.T) {
	setHome(t)
	_, err := runCLI(t, nil, "events")
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestConfigFileDataset(t *testing.T) {
	setHome(t)
	dir := t.TempDir()

	csvPath := filepath.Join(dir, "one.csv")
	csv := "habitat,diet,offspring,lifespan,population,threats,conservation_status,name,scientific_name,physical_description,warning,recommendation\n" +
		"Tundra,Herbivore,1,15,900,Warming,Endangered,Musk Ox,Ovibos moschatus,Shaggy coat,Shrinking,Protect\n"
	require.NoError(t, os.WriteFile(csvPath, []byte(csv), 0644))

	cfgPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("dataset: "+csvPath+"\n"), 0644))

	out, err := runCLI(t, nil, "stats", "--config", cfgPath)
	require.NoError(t, err)
	assert.Contains(t, out, "source:   "+csvPath)
	assert.Contains(t, out, "rows:     1")
}

func TestReadTailLines(t *testing.T) {
	input := strings.Join([]string{
		`{"kind":"infer.start","level":"info","run":"aaa"}`,
		`not json`,
		``,
		`{"kind":"infer.rule","level":"debug","run":"aaa","row":0}`,
		`{"kind":"infer.complete","level":"info","run":"bbb"}`,
	}, "\n")

	all := readTailLines(strings.NewReader(input), 10, eventsOptions{}.match)
	require.Len(t, all, 3)

	last := readTailLines(strings.NewReader(input), 2, eventsOptions{}.match)
	require.Len(t, last, 2)
	assert.Equal(t, "infer.rule", last[0].ev.Kind)
	require.NotNil(t, last[0].ev.Row)
	assert.Equal(t, 0, *last[0].ev.Row)

	byRun := readTailLines(strings.NewReader(input), 10, eventsOptions{run: "aa"}.match)
	assert.Len(t, byRun, 2)

	byLevel := readTailLines(strings.NewReader(input), 10, eventsOptions{level: "info"}.match)
	assert.Len(t, byLevel, 2)

	assert.Empty(t, readTailLines(strings.NewReader(input), 0, eventsOptions{}.match))
}

func TestEventFormat(t *testing.T) {
	row := 3
	ev := eventRecord{
		Level:   "debug",
		Kind:    "infer.rule",
		Comp:    "expert",
		Rule:    "name_all_features",
		Pass:    1,
		Row:     &row,
		Derived: []string{"scientific_name", "warning"},
		RunID:   "0123456789abcdef",
	}
	line := eventsOptions{}.format(ev, nil)
	for _, want := range []string{"DEBUG", "[expert]", "name_all_features pass=1", "row=3", "-> scientific_name,warning", "run=01234567"} {
		assert.Contains(t, line, want)
	}

	raw := []byte(`{"kind":"x"}`)
	assert.Equal(t, string(raw), eventsOptions{rawJSON: true}.format(ev, raw))
}

func TestConfigInitAndShow(t *testing.T) {
	home := setHome(t)
	path := filepath.Join(home, ".eses", "config.yaml")

	out, err := runCLI(t, nil, "config", "init")
	require.NoError(t, err)
	assert.Contains(t, out, path)
	require.FileExists(t, path)

	_, err = runCLI(t, nil, "config", "init")
	require.Error(t, err, "init must not overwrite without --force")

	_, err = runCLI(t, nil, "config", "init", "--force")
	require.NoError(t, err)

	out, err = runCLI(t, nil, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "workers: 4")
	assert.Contains(t, out, "data_dir: "+filepath.Join(home, ".eses"))
}

func TestConfigInitExplicitPath(t *testing.T) {
	setHome(t)
	path := filepath.Join(t.TempDir(), "custom", "eses.yaml")

	_, err := runCLI(t, nil, "--config", path, "config", "init")
	require.NoError(t, err)

	out, err := runCLI(t, nil, append([]string{"--config", path}, pandaArgs...)...)
	require.NoError(t, err)
	assert.Contains(t, out, "name: Giant Panda")
}
