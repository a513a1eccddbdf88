package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadScenario_ValidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.yaml")
	content := `
name: test_scenario
description: "Test scenario for validation"
setup:
  books:
    - { id: B1, title: Dune, author: Herbert }
  members:
    - { id: M1, name: Ada }
flow:
  - action: borrow
    member: M1
    book: B1
    expect:
      outcome: success
assertions:
  - type: book_available
    book: B1
    available: false
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	scenario, err := LoadScenario(path)
	require.NoError(t, err)

	assert.Equal(t, "test_scenario", scenario.Name)
	require.Len(t, scenario.Setup.Books, 1)
	assert.Equal(t, BookSeed{ID: "B1", Title: "Dune", Author: "Herbert"}, scenario.Setup.Books[0])
	require.Len(t, scenario.Flow, 1)
	assert.Equal(t, ActionBorrow, scenario.Flow[0].Action)
	require.NotNil(t, scenario.Flow[0].Expect)
	assert.Equal(t, "success", scenario.Flow[0].Expect.Outcome)
	require.Len(t, scenario.Assertions, 1)
	require.NotNil(t, scenario.Assertions[0].Available)
	assert.False(t, *scenario.Assertions[0].Available)
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read scenario file")
}

func TestParseScenario_UnknownField(t *testing.T) {
	_, err := ParseScenario([]byte(`
name: typo
description: "has a typo"
flow:
  - action: most_borrowed
assertion:
  - type: trace_count
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse YAML")
}

func TestParseScenario_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name:    "missing name",
			yaml:    "description: d\nflow: [{action: most_borrowed}]\n",
			wantErr: "name is required",
		},
		{
			name:    "name with separator",
			yaml:    "name: a/b\ndescription: d\nflow: [{action: most_borrowed}]\n",
			wantErr: "path separators",
		},
		{
			name:    "missing description",
			yaml:    "name: n\nflow: [{action: most_borrowed}]\n",
			wantErr: "description is required",
		},
		{
			name:    "empty flow",
			yaml:    "name: n\ndescription: d\n",
			wantErr: "flow list is required",
		},
		{
			name:    "unknown action",
			yaml:    "name: n\ndescription: d\nflow: [{action: renew}]\n",
			wantErr: `unknown action "renew"`,
		},
		{
			name:    "add_book without id",
			yaml:    "name: n\ndescription: d\nflow: [{action: add_book, title: Dune}]\n",
			wantErr: "add_book requires book",
		},
		{
			name:    "most_borrowed with book",
			yaml:    "name: n\ndescription: d\nflow: [{action: most_borrowed, book: B1}]\n",
			wantErr: "most_borrowed takes no member or book",
		},
		{
			name:    "setup book without id",
			yaml:    "name: n\ndescription: d\nsetup: {books: [{title: Dune}]}\nflow: [{action: most_borrowed}]\n",
			wantErr: "setup.books[0]: id is required",
		},
		{
			name:    "unknown assertion",
			yaml:    "name: n\ndescription: d\nflow: [{action: most_borrowed}]\nassertions: [{type: final_state}]\n",
			wantErr: `unknown assertion type "final_state"`,
		},
		{
			name:    "borrow_count without count",
			yaml:    "name: n\ndescription: d\nflow: [{action: most_borrowed}]\nassertions: [{type: borrow_count, book: B1}]\n",
			wantErr: "borrow_count requires book and count",
		},
		{
			name:    "journal_count bad kind",
			yaml:    "name: n\ndescription: d\nflow: [{action: most_borrowed}]\nassertions: [{type: journal_count, kind: renew, count: 1}]\n",
			wantErr: "kind must be borrow or return",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScenario([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestParseScenario_EmptyIDsAllowedForCirculation(t *testing.T) {
	s, err := ParseScenario([]byte("name: n\ndescription: d\nflow: [{action: borrow}]\n"))
	require.NoError(t, err)
	assert.Equal(t, "", s.Flow[0].Member)
}

func TestLoadScenarios_SortedByFileName(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b", "a", "c"} {
		content := "name: " + name + "\ndescription: d\nflow: [{action: most_borrowed}]\n"
		require.NoError(t, os.WriteFile(filepath.Join(dir, name+".yaml"), []byte(content), 0644))
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0644))

	scenarios, err := LoadScenarios(dir)
	require.NoError(t, err)
	require.Len(t, scenarios, 3)
	assert.Equal(t, "a", scenarios[0].Name)
	assert.Equal(t, "b", scenarios[1].Name)
	assert.Equal(t, "c", scenarios[2].Name)
}

func TestLoadScenarios_ReportsFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.yaml"), []byte("name: x\n"), 0644))

	_, err := LoadScenarios(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken.yaml")
}

func TestLoadScenarios_Testdata(t *testing.T) {
	scenarios, err := LoadScenarios("testdata/scenarios")
	require.NoError(t, err)
	assert.Len(t, scenarios, 4)
}
