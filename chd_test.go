package modflow

import (
	"bytes"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/maseology/modflow/grid"
	"github.com/maseology/modflow/mflist"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testModel(t *testing.T, opts ...ModelOption) *Model {
	t.Helper()
	opts = append([]ModelOption{
		WithWorkspace(t.TempDir()),
		WithLogger(log.New(io.Discard)),
	}, opts...)
	return NewModel("test", opts...)
}

func readLines(t *testing.T, fp string) []string {
	t.Helper()
	b, err := os.ReadFile(fp)
	require.NoError(t, err)
	return strings.Split(strings.TrimRight(string(b), "\n"), "\n")
}

func TestNewChd_Defaults(t *testing.T) {
	m := testModel(t)
	chd, err := NewChd(m, mflist.Sequence([][][]float64{{{2, 3, 4, 10.0, 10.1}}}))
	require.NoError(t, err)

	assert.Equal(t, "CHD", chd.Ftype())
	assert.Equal(t, "chd", chd.Extension())
	assert.Equal(t, 24, chd.Unit())
	assert.Equal(t, "test.chd", chd.FileName())
	assert.Equal(t, chdHeading, chd.Heading)
	assert.Equal(t, DefaultChdDtype(), chd.StressPeriodData.Schema())
	assert.Equal(t, "CHD package class", chd.String())
	assert.True(t, strings.HasSuffix(chd.URL(), "?chd.htm"))
	assert.Empty(t, m.Packages(), "construction does not register the package")
}

func TestNewChd_Options(t *testing.T) {
	m := testModel(t)
	chd, err := NewChd(m, nil, WithExtension("ch"), WithUnitNumber(40))
	require.NoError(t, err)
	assert.Equal(t, "test.ch", chd.FileName())
	assert.Equal(t, 40, chd.Unit())
	assert.Equal(t, filepath.Join(m.Workspace, "test.ch"), chd.FnPath())
}

func TestNewChd_NoModel(t *testing.T) {
	_, err := NewChd(nil, nil)
	require.ErrorIs(t, err, ErrNoModel)
}

func TestChd_SingleRecordAllPeriods(t *testing.T) {
	m := testModel(t, WithNper(3))
	chd, err := NewChd(m, mflist.Sequence([][][]float64{{{2, 3, 4, 10.0, 10.1}}}))
	require.NoError(t, err)
	require.Equal(t, 1, chd.Ncells())

	require.NoError(t, chd.WriteFile())
	assert.Equal(t, []string{
		"# CHD for MODFLOW, generated by Flopy.",
		"         1",
		"         1         0 # stress period 1",
		"         3         4         5        10      10.1",
		"        -1         0 # stress period 2",
		"        -1         0 # stress period 3",
	}, readLines(t, chd.FnPath()))
}

func TestChd_NcellsCarryForward(t *testing.T) {
	m := testModel(t, WithNper(5))
	chd, err := NewChd(m, mflist.PeriodData{
		0: {{0, 0, 0, 1, 1}},
		2: {{0, 0, 0, 1, 1}, {0, 0, 1, 1, 1}, {0, 0, 2, 1, 1}},
		4: {},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, chd.Ncells())
}

func TestChd_WriteFileIdempotent(t *testing.T) {
	m := testModel(t, WithNper(4))
	chd, err := NewChd(m, mflist.PeriodData{
		0: {{0, 0, 0, 100, 99.5}, {0, 1, 0, 100, 99.5}},
		2: {{1, 4, 4, 12.25, 12.25}},
	})
	require.NoError(t, err)

	require.NoError(t, chd.WriteFile())
	a, err := os.ReadFile(chd.FnPath())
	require.NoError(t, err)

	require.NoError(t, chd.WriteFile())
	b, err := os.ReadFile(chd.FnPath())
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestChd_WriteFileTruncates(t *testing.T) {
	m := testModel(t)
	chd, err := NewChd(m, nil)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(chd.FnPath(), []byte(strings.Repeat("stale\n", 100)), 0644))

	require.NoError(t, chd.WriteFile())
	assert.Equal(t, []string{
		"# CHD for MODFLOW, generated by Flopy.",
		"         0",
		"         0         0 # stress period 1",
	}, readLines(t, chd.FnPath()))
}

func TestChd_EmptyDataset(t *testing.T) {
	m := testModel(t, WithNper(2))
	chd, err := NewChd(m, mflist.PeriodData{})
	require.NoError(t, err)
	assert.Equal(t, 0, chd.Ncells())

	require.NoError(t, chd.WriteFile())
	lines := readLines(t, chd.FnPath())
	require.GreaterOrEqual(t, len(lines), 2)
	assert.Equal(t, "# CHD for MODFLOW, generated by Flopy.", lines[0])
	assert.Equal(t, "         0", lines[1])
}

func TestChd_SchemaMismatchBeforeWrite(t *testing.T) {
	m := testModel(t)
	_, err := NewChd(m, mflist.Sequence([][][]float64{{{2, 3, 4, 10.0}}}))
	require.ErrorIs(t, err, mflist.ErrSchemaMismatch)

	_, err = os.Stat(filepath.Join(m.Workspace, "test.chd"))
	require.ErrorIs(t, err, fs.ErrNotExist)
}

func TestChd_IntegerHeadDtype(t *testing.T) {
	m := testModel(t)
	dt := DefaultChdDtype()
	dt[3].Kind, dt[4].Kind = mflist.Int, mflist.Int

	chd, err := NewChd(m, mflist.Sequence([][][]float64{{{2, 3, 4, 10, 11}}}), WithDtype(dt))
	require.NoError(t, err)
	require.NoError(t, chd.WriteFile())
	assert.Equal(t, []string{
		"# CHD for MODFLOW, generated by Flopy.",
		"         1",
		"         1         0 # stress period 1",
		"         3         4         5        10        11",
	}, readLines(t, chd.FnPath()))
}

func TestChd_WriteFileIOFailure(t *testing.T) {
	m := testModel(t)
	m.Workspace = filepath.Join(m.Workspace, "does", "not", "exist")
	chd, err := NewChd(m, nil)
	require.NoError(t, err)
	require.ErrorContains(t, chd.WriteFile(), "no such file or directory")
}

func openFiles(t *testing.T) int {
	t.Helper()
	fds, err := os.ReadDir("/proc/self/fd")
	if err != nil {
		t.Skip("no /proc/self/fd")
	}
	return len(fds)
}

func TestChd_WriteFileClosesOnError(t *testing.T) {
	if _, err := os.Stat("/dev/full"); err != nil {
		t.Skip("no /dev/full")
	}
	m := testModel(t)
	chd, err := NewChd(m, mflist.PeriodData{0: {{0, 0, 0, 1, 1}}})
	require.NoError(t, err)
	require.NoError(t, os.Symlink("/dev/full", chd.FnPath()))

	n := openFiles(t)
	err = chd.WriteFile()
	require.ErrorContains(t, err, "Chd.WriteFile failed")
	assert.Equal(t, n, openFiles(t), "file left open after a failed write")
}

type failingLines struct{ n int }

func (w *failingLines) WriteLine(string) error {
	if w.n == 0 {
		return io.ErrShortWrite
	}
	w.n--
	return nil
}

func TestChd_WriteStopsOnError(t *testing.T) {
	m := testModel(t, WithNper(2))
	chd, err := NewChd(m, mflist.PeriodData{0: {{0, 0, 0, 1, 1}}})
	require.NoError(t, err)
	for n := 0; n < 5; n++ {
		require.ErrorIs(t, chd.write(&failingLines{n: n}), io.ErrShortWrite, "failing at line %d", n)
	}
	require.NoError(t, chd.write(&failingLines{n: 5}), "heading, count, two ITMP lines and one record")
}

func TestChd_Check(t *testing.T) {
	gd, err := grid.New(2, 5, 5)
	require.NoError(t, err)
	m := testModel(t, WithGrid(gd))

	chd, err := NewChd(m, mflist.PeriodData{
		0: {{0, 0, 0, 1, 1}, {1, 4, 4, 1, 1}},
		1: {{2, 0, 0, 1, 1}, {0, 5, 0, 1, 1}},
	})
	require.NoError(t, err)

	err = chd.Check()
	require.ErrorIs(t, err, ErrOutOfGrid)
	assert.Contains(t, err.Error(), "stress period 1, record 0 (k=2, i=0, j=0)")
	assert.Contains(t, err.Error(), "stress period 1, record 1 (k=0, i=5, j=0)")

	m.Grid = nil
	assert.NoError(t, chd.Check())
}

func TestChd_CheckDuplicateCells(t *testing.T) {
	gd, err := grid.New(2, 5, 5)
	require.NoError(t, err)
	var buf bytes.Buffer
	m := testModel(t, WithGrid(gd), WithLogger(log.NewWithOptions(&buf, log.Options{Level: log.WarnLevel})))

	chd, err := NewChd(m, mflist.PeriodData{
		0: {{1, 4, 4, 1, 1}, {0, 0, 1, 1, 1}, {1, 4, 4, 2, 2}},
		1: {{1, 4, 4, 1, 1}},
	})
	require.NoError(t, err)
	require.NoError(t, chd.Check())
	assert.Equal(t, 1, strings.Count(buf.String(), "duplicate constant-head cell"))
	assert.Contains(t, buf.String(), "cell=49")
}

func TestLoadChd_RoundTrip(t *testing.T) {
	tests := []struct {
		name string
		nper int
		pd   mflist.PeriodData
	}{
		{"carry forward", 5, mflist.PeriodData{
			1: {{0, 0, 0, 100, 99.5}, {0, 1, 0, 100, 99.5}},
			3: {{1, 4, 4, 12.25, 12.25}},
		}},
		{"empty first period", 3, mflist.PeriodData{0: {}}},
		{"wide heads", 2, mflist.PeriodData{0: {{0, 0, 0, -1.234567e-5, 1.234567e9}, {0, 0, 1, 123456789, -9.87654e12}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := testModel(t, WithNper(tt.nper))
			chd, err := NewChd(m, tt.pd)
			require.NoError(t, err)
			require.NoError(t, chd.WriteFile())
			a, err := os.ReadFile(chd.FnPath())
			require.NoError(t, err)

			m2 := testModel(t, WithNper(tt.nper))
			got, err := LoadChd(chd.FnPath(), m2)
			require.NoError(t, err)
			assert.Equal(t, chd.Ncells(), got.Ncells())
			assert.Equal(t, chd.StressPeriodData.Periods(), got.StressPeriodData.Periods())

			require.NoError(t, got.WriteFile())
			b, err := os.ReadFile(got.FnPath())
			require.NoError(t, err)
			assert.Equal(t, string(a), string(b))
		})
	}
}

func TestLoadChd_Errors(t *testing.T) {
	m := testModel(t)
	dir := t.TempDir()

	_, err := LoadChd(filepath.Join(dir, "missing.chd"), m)
	require.ErrorContains(t, err, "no such file or directory")

	_, err = LoadChd(filepath.Join(dir, "x.chd"), nil)
	require.ErrorIs(t, err, ErrNoModel)

	headOnly := filepath.Join(dir, "head.chd")
	require.NoError(t, os.WriteFile(headOnly, []byte("# CHD for MODFLOW, generated by Flopy.\n"), 0644))
	_, err = LoadChd(headOnly, m)
	require.ErrorContains(t, err, "missing MXACTC")

	tooMany := filepath.Join(dir, "many.chd")
	require.NoError(t, os.WriteFile(tooMany, []byte(strings.Join([]string{
		"# CHD",
		"         1",
		"         2         0 # stress period 1",
		"         1         1         1         5         6",
		"         1         1         2         5         6",
	}, "\n")+"\n"), 0644))
	_, err = LoadChd(tooMany, m)
	require.ErrorContains(t, err, "exceeds MXACTC")
}
