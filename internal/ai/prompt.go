package ai

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/TatievskiArik/Article-RAG-System/internal/store"
)

// PromptTemplate shapes the system message sent to the completion model. It
// can be customized by pointing the config at a YAML file; fields left empty
// there keep their defaults.
type PromptTemplate struct {
	// Persona is the opening instruction describing the assistant's role.
	Persona string `yaml:"persona"`

	// Guidelines are rendered as a bulleted rule list after the persona.
	Guidelines []string `yaml:"guidelines"`
}

// DefaultPromptTemplate returns the built-in template.
func DefaultPromptTemplate() *PromptTemplate {
	return &PromptTemplate{
		Persona: "You are an AI assistant for articles and research analysis, operating as part of a " +
			"Retrieval-Augmented Generation (RAG) system. You are provided with one or more articles, " +
			"each with a title, URL, and content. Answer the user's question using ONLY the information " +
			"from the provided articles below.",
		Guidelines: []string{
			"Clearly reference the article(s) (by title) that support your answer.",
			"Do not use any external knowledge or make up facts not found in the articles.",
			"Ignore navigation, repeated menu items, or language switchers.",
			"When summarizing, extracting key topics, or analyzing sentiment, make your reasoning transparent and cite the relevant articles.",
			"Return your response in Markdown format with clear headings and bullet points where appropriate.",
			"If the question is not answerable with the provided articles, say so explicitly.",
			"If the question is a simple greeting, respond with a friendly greeting.",
		},
	}
}

// LoadPromptTemplate reads a template from a YAML file, filling unset fields
// from the defaults. An empty path returns the defaults unchanged.
func LoadPromptTemplate(path string) (*PromptTemplate, error) {
	tpl := DefaultPromptTemplate()
	if path == "" {
		return tpl, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("ai: read prompt template %s: %w", path, err)
	}
	var loaded PromptTemplate
	if err := yaml.Unmarshal(data, &loaded); err != nil {
		return nil, fmt.Errorf("ai: parse prompt template %s: %w", path, err)
	}
	if loaded.Persona != "" {
		tpl.Persona = loaded.Persona
	}
	if len(loaded.Guidelines) > 0 {
		tpl.Guidelines = loaded.Guidelines
	}
	return tpl, nil
}

// Render builds the system message for one query from the retrieved articles.
func (t *PromptTemplate) Render(articles []store.Article) string {
	var b strings.Builder
	b.WriteString(t.Persona)
	b.WriteString("\n\nGuidelines:\n")
	for _, g := range t.Guidelines {
		b.WriteString("- ")
		b.WriteString(g)
		b.WriteString("\n")
	}
	b.WriteString("\nArticles:\n")
	for i, a := range articles {
		fmt.Fprintf(&b, "Article %d:\nTitle: %s\nContent:\n%s\n\n", i+1, a.Title, a.Content)
	}
	return b.String()
}
