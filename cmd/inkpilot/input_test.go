package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Code-Monger/InkPilot/pkg/finding"
)

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func findingsCommand(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	cmd := &cobra.Command{Use: "test"}
	addFindingsFlags(cmd)
	require.NoError(t, cmd.Flags().Parse(args))
	return cmd
}

func TestReadInput(t *testing.T) {
	path := writeTemp(t, "doc.txt", "Café ok")
	text, err := readInput(path)
	require.NoError(t, err)
	assert.Equal(t, "Café ok", text)

	_, err = readInput(filepath.Join(t.TempDir(), "missing.txt"))
	assert.Error(t, err)
}

func TestLoadFindingsFromFile(t *testing.T) {
	path := writeTemp(t, "findings.json", `[
		{"id": "g1", "originalText": "dont", "message": "apostrophe", "suggestions": ["doesn't"], "type": "grammar"},
		{"id": "s1", "originalText": "very very", "message": "repeat", "suggestion": "very", "type": "conciseness"},
		{"id": "bad", "originalText": "", "message": "empty", "type": "grammar"}
	]`)

	cmd := findingsCommand(t, "--findings", path)
	findings, err := loadFindings(cmd, "He dont like it very very much.")
	require.NoError(t, err)
	require.Len(t, findings, 2)
	assert.Equal(t, finding.KindGrammar, findings[0].Kind)
	assert.Equal(t, finding.KindStyle, findings[1].Kind)
	assert.Equal(t, []string{"very"}, findings[1].Replacements)
}

func TestLoadFindingsFallsBackToSpellChecker(t *testing.T) {
	cmd := findingsCommand(t)
	findings, err := loadFindings(cmd, "He dont like teh cat.")
	require.NoError(t, err)
	require.NotEmpty(t, findings)
	for _, f := range findings {
		assert.Equal(t, finding.KindGrammar, f.Kind)
	}
}

func TestLoadFindingsErrors(t *testing.T) {
	_, err := loadFindings(findingsCommand(t, "--findings", filepath.Join(t.TempDir(), "none.json")), "text")
	assert.Error(t, err)

	path := writeTemp(t, "findings.json", `[]`)
	_, err = loadFindings(findingsCommand(t, "--findings", path, "--kind", "tone"), "text")
	assert.Error(t, err)
}

func TestResolveOptions(t *testing.T) {
	assert.True(t, resolveOptions(findingsCommand(t)).UseContext)
	assert.False(t, resolveOptions(findingsCommand(t, "--context=false")).UseContext)
}
