package files

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"perfmerge/pkg/contracts/domain"
)

func touch(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644))
	}
}

func TestNewDiscovery(t *testing.T) {
	basePath := "/test/base"
	discovery := NewDiscovery(basePath)

	assert.NotNil(t, discovery)
	assert.Equal(t, basePath, discovery.basePath)
}

func TestFindReportFiles(t *testing.T) {
	tests := []struct {
		name     string
		files    []string
		expected []string
	}{
		{
			name:     "sorted by name not creation order",
			files:    []string{"run3.xlsx", "run1.xlsx", "run2.csv"},
			expected: []string{"run1.xlsx", "run2.csv", "run3.xlsx"},
		},
		{
			name:     "mixed file types",
			files:    []string{"report.xlsx", "data.csv", "doc.pdf", "legacy.xls", "macro.xlsm"},
			expected: []string{"data.csv", "macro.xlsm", "report.xlsx"},
		},
		{
			name:     "extension case is ignored",
			files:    []string{"A.XLSX", "b.Csv"},
			expected: []string{"A.XLSX", "b.Csv"},
		},
		{
			name:     "lock and hidden files skipped",
			files:    []string{"~$run1.xlsx", ".run2.xlsx", "run1.xlsx"},
			expected: []string{"run1.xlsx"},
		},
		{
			name:     "empty directory",
			files:    nil,
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			touch(t, dir, tt.files...)
			require.NoError(t, os.Mkdir(filepath.Join(dir, "nested.xlsx"), 0755))

			found, err := NewDiscovery(dir).FindReportFiles(".")
			require.NoError(t, err)

			var names []string
			for _, f := range found {
				names = append(names, f.Name)
				assert.Equal(t, filepath.Join(dir, f.Name), f.Path)
			}
			assert.Equal(t, tt.expected, names)
		})
	}
}

func TestFindReportFiles_AbsoluteDir(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "a.csv")

	found, err := NewDiscovery("/somewhere/else").FindReportFiles(dir)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, int64(1), found[0].Size)
}

func TestFindReportFiles_MissingDir(t *testing.T) {
	_, err := NewDiscovery("").FindReportFiles(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

func TestFindFilesByPattern(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "perf_02.xlsx", "perf_01.xlsx", "other.xlsx", "perf_03.txt")

	found, err := NewDiscovery(dir).FindFilesByPattern(".", "perf_*")
	require.NoError(t, err)

	require.Len(t, found, 2)
	assert.Equal(t, "perf_01.xlsx", found[0].Name)
	assert.Equal(t, "perf_02.xlsx", found[1].Name)

	_, err = NewDiscovery(dir).FindFilesByPattern(".", "[")
	assert.Error(t, err)
}

func TestSources(t *testing.T) {
	sources := Sources([]FileInfo{
		{Name: "a.xlsx", Path: "/r/a.xlsx"},
		{Name: "b.csv", Path: "/r/b.csv"},
	})

	assert.Equal(t, []domain.Source{
		{Name: "a.xlsx", Path: "/r/a.xlsx"},
		{Name: "b.csv", Path: "/r/b.csv"},
	}, sources)
	assert.Empty(t, Sources(nil))
}
