package ai

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TatievskiArik/Article-RAG-System/internal/store"
)

func TestLoadPromptTemplateDefaults(t *testing.T) {
	tpl, err := LoadPromptTemplate("")
	require.NoError(t, err)
	assert.Equal(t, DefaultPromptTemplate(), tpl)
}

func TestLoadPromptTemplateOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prompt.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
persona: "You answer questions about saved articles."
guidelines:
  - "Cite titles."
`), 0o600))

	tpl, err := LoadPromptTemplate(path)
	require.NoError(t, err)
	assert.Equal(t, "You answer questions about saved articles.", tpl.Persona)
	assert.Equal(t, []string{"Cite titles."}, tpl.Guidelines)
}

func TestLoadPromptTemplatePartialKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prompt.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`persona: "Short persona."`), 0o600))

	tpl, err := LoadPromptTemplate(path)
	require.NoError(t, err)
	assert.Equal(t, "Short persona.", tpl.Persona)
	assert.Equal(t, DefaultPromptTemplate().Guidelines, tpl.Guidelines)
}

func TestLoadPromptTemplateBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prompt.yaml")
	require.NoError(t, os.WriteFile(path, []byte("persona: [unclosed"), 0o600))

	_, err := LoadPromptTemplate(path)
	assert.Error(t, err)
}

func TestRenderNumbersArticles(t *testing.T) {
	tpl := &PromptTemplate{
		Persona:    "P.",
		Guidelines: []string{"G1.", "G2."},
	}
	out := tpl.Render([]store.Article{
		{Title: "One", Content: "C1"},
		{Title: "Two", Content: "C2"},
	})

	assert.Contains(t, out, "P.")
	assert.Contains(t, out, "- G1.")
	assert.Contains(t, out, "- G2.")
	assert.Contains(t, out, "Article 1:\nTitle: One\nContent:\nC1")
	assert.Contains(t, out, "Article 2:\nTitle: Two\nContent:\nC2")
}
