package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chriserin/comb/internal/config"
	"github.com/chriserin/comb/internal/db"
	"github.com/chriserin/comb/internal/diag"
	"github.com/chriserin/comb/internal/xlsform"
)

var compiledAt = time.Date(2024, 3, 5, 14, 7, 0, 0, time.UTC)

const householdSurvey = `@form hh auto "Household"
@choices "lists/yes_no.choices"
consent select_one yes_no: "Consent?" required yes
if ${consent} = 1:
  group household "Household":
    size integer: "Size" required yes
`

const yesNoChoices = `list yes_no:
  1 "Yes"
  0 "No"
`

func writeFiles(t testing.TB, files map[string]string) {
	t.Helper()
	for name, src := range files {
		require.NoError(t, os.MkdirAll(filepath.Dir(name), 0o755))
		require.NoError(t, os.WriteFile(name, []byte(src), 0o644))
	}
}

func writeHousehold(t testing.TB) {
	t.Helper()
	writeFiles(t, map[string]string{
		"hh.comb":              householdSurvey,
		"lists/yes_no.choices": yesNoChoices,
	})
}

func runCompile(t testing.TB, opts CompileOptions) (string, error) {
	t.Helper()
	if opts.Registry == "" {
		opts.Registry = config.DefaultRegistry
	}
	opts.Now = func() time.Time { return compiledAt }
	var buf bytes.Buffer
	err := RunCompile(&buf, opts)
	return buf.String(), err
}

func TestCompile_WritesWorkbookNextToSource(t *testing.T) {
	inTempDir(t)
	writeHousehold(t)

	out, err := runCompile(t, CompileOptions{Source: "hh.comb"})
	require.NoError(t, err)
	assert.Contains(t, out, "wrote  hh.xlsx")
	assert.Contains(t, out, "(4 survey rows, 2 choices)")

	wb, err := xlsform.Load(afero.NewOsFs(), "hh.xlsx")
	require.NoError(t, err)
	require.Len(t, wb.Settings.Rows, 1)
	assert.Equal(t, "hh", wb.Settings.Rows[0]["form_id"])
	assert.Equal(t, "2403051407", wb.Settings.Rows[0]["version"])
	assert.Equal(t, "begin group", wb.Survey.Rows[1]["type"])
	assert.Equal(t, "${consent} = 1", wb.Survey.Rows[1]["relevance"])
	assert.Len(t, wb.Choices.Rows, 2)
}

func TestCompile_OutputFlag(t *testing.T) {
	inTempDir(t)
	writeHousehold(t)
	require.NoError(t, os.Mkdir("dist", 0o755))

	out, err := runCompile(t, CompileOptions{Source: "hh.comb", Output: "dist/household.xlsx"})
	require.NoError(t, err)
	assert.Contains(t, out, "dist/household.xlsx")

	_, err = os.Stat("dist/household.xlsx")
	require.NoError(t, err)
	_, err = os.Stat("hh.xlsx")
	assert.True(t, os.IsNotExist(err))
}

func TestCompile_MissingFormCommand(t *testing.T) {
	inTempDir(t)
	writeFiles(t, map[string]string{"q.comb": `q integer: "Q" required yes`})

	_, err := runCompile(t, CompileOptions{Source: "q.comb"})
	require.ErrorIs(t, err, xlsform.ErrNoSettings)

	_, statErr := os.Stat("q.xlsx")
	assert.True(t, os.IsNotExist(statErr))
}

func TestCompile_SyntaxErrorHasPosition(t *testing.T) {
	inTempDir(t)
	writeFiles(t, map[string]string{"bad.comb": "@form f 1 \"F\"\nq integer: \"Q\"\n    r integer:"})

	_, err := runCompile(t, CompileOptions{Source: "bad.comb"})
	var de *diag.Error
	require.True(t, errors.As(err, &de))
	assert.Equal(t, 3, de.Pos.Line)
}

func TestCompile_RecordsBuild(t *testing.T) {
	inTempDir(t)
	runInit(t)
	writeHousehold(t)

	_, err := runCompile(t, CompileOptions{Source: "hh.comb"})
	require.NoError(t, err)

	sqlDB, err := db.Open(config.DefaultRegistry)
	require.NoError(t, err)
	defer sqlDB.Close()

	builds, err := db.ListBuilds(sqlDB, "")
	require.NoError(t, err)
	require.Len(t, builds, 1)
	assert.Equal(t, "hh.comb", builds[0].SourcePath)
	assert.Equal(t, "hh.xlsx", builds[0].OutputPath)
	assert.Equal(t, "hh", builds[0].FormID)
	assert.Equal(t, "2403051407", builds[0].Version)
	assert.Equal(t, 4, builds[0].SurveyRows)
	assert.Equal(t, 2, builds[0].ChoiceRows)
	assert.True(t, compiledAt.Equal(builds[0].CompiledAt))
}

func TestCompile_NoRegistryNoRecord(t *testing.T) {
	inTempDir(t)
	writeHousehold(t)

	_, err := runCompile(t, CompileOptions{Source: "hh.comb"})
	require.NoError(t, err)

	_, err = os.Stat(config.DefaultRegistry)
	assert.True(t, os.IsNotExist(err))
}

func TestCompile_LintClean(t *testing.T) {
	inTempDir(t)
	writeHousehold(t)

	out, err := runCompile(t, CompileOptions{Source: "hh.comb", Lint: true})
	require.NoError(t, err)
	assert.Contains(t, out, "no problems found")
}

func TestCompile_LintErrorsFailTheBuild(t *testing.T) {
	inTempDir(t)
	runInit(t)
	writeFiles(t, map[string]string{"fruit.comb": `@form fruit 1 "Fruit"
fruit select_one fruits: "Fruit" required yes
note_it text: "Why?"`})

	out, err := runCompile(t, CompileOptions{Source: "fruit.comb", Lint: true})
	require.ErrorIs(t, err, errLintFailed)
	assert.Contains(t, out, "survey:2")
	assert.Contains(t, out, "fruit refers to undefined choice lists: fruits")
	assert.Contains(t, out, "note_it is not required")
	assert.Contains(t, out, "1 errors, 1 warnings")

	// The workbook is still written and the build recorded with its counts.
	_, statErr := os.Stat("fruit.xlsx")
	require.NoError(t, statErr)

	sqlDB, err := db.Open(config.DefaultRegistry)
	require.NoError(t, err)
	defer sqlDB.Close()
	builds, err := db.ListBuilds(sqlDB, "fruit")
	require.NoError(t, err)
	require.Len(t, builds, 1)
	assert.Equal(t, 1, builds[0].LintErrors)
	assert.Equal(t, 1, builds[0].LintWarnings)
}

func BenchmarkRunCompile(b *testing.B) {
	inTempDir(b)
	var src bytes.Buffer
	src.WriteString("@form bench auto \"Bench\"\n@choices \"lists/yes_no.choices\"\n")
	for i := 0; i < 50; i++ {
		fmt.Fprintf(&src, "group g%d \"Section %d\":\n", i, i)
		for j := 0; j < 20; j++ {
			fmt.Fprintf(&src, "  q%d_%d select_one yes_no: \"Question %d\" required yes\n", i, j, j)
		}
	}
	writeFiles(b, map[string]string{
		"bench.comb":           src.String(),
		"lists/yes_no.choices": yesNoChoices,
	})

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := runCompile(b, CompileOptions{Source: "bench.comb"}); err != nil {
			b.Fatal(err)
		}
	}
}
