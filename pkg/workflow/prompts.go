package workflow

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"text/template"
)

//go:embed prompts/*.tpl.md
var promptFS embed.FS

// PromptTemplate names one of the embedded prompt templates.
type PromptTemplate string

const (
	IntentPrompt            PromptTemplate = "intent.tpl.md"
	EmergencyGeneratePrompt PromptTemplate = "emergency_generate.tpl.md"
	EmergencyCheckPrompt    PromptTemplate = "emergency_check.tpl.md"
	NormalGeneratePrompt    PromptTemplate = "normal_generate.tpl.md"
	RefineSentencePrompt    PromptTemplate = "refine_sentence.tpl.md"
	NormalCheckPrompt       PromptTemplate = "normal_check.tpl.md"
)

// DefaultLanguage is the output language requested from the providers.
const DefaultLanguage = "Korean"

// PromptData holds the values substituted into a prompt template.
type PromptData struct {
	Language string
	Phrases  string
	Sentence string
}

// Prompts renders the embedded prompt templates.
type Prompts struct {
	templates *template.Template
	language  string
}

// NewPrompts parses the embedded templates for the given output language.
func NewPrompts(language string) (*Prompts, error) {
	if language == "" {
		language = DefaultLanguage
	}
	tmpl, err := template.New("prompts").ParseFS(promptFS, "prompts/*.tpl.md")
	if err != nil {
		return nil, fmt.Errorf("failed to parse prompt templates: %w", err)
	}
	return &Prompts{templates: tmpl, language: language}, nil
}

// Language returns the configured output language.
func (p *Prompts) Language() string {
	return p.language
}

// Render executes the named template. Phrases are rendered as a JSON array.
func (p *Prompts) Render(name PromptTemplate, phrases []string, sentence string) (string, error) {
	if phrases == nil {
		phrases = []string{}
	}
	encoded, err := json.Marshal(phrases)
	if err != nil {
		return "", fmt.Errorf("failed to encode phrases: %w", err)
	}

	var buf bytes.Buffer
	data := PromptData{
		Language: p.language,
		Phrases:  string(encoded),
		Sentence: sentence,
	}
	if err := p.templates.ExecuteTemplate(&buf, string(name), data); err != nil {
		return "", fmt.Errorf("failed to render prompt %s: %w", name, err)
	}
	return buf.String(), nil
}
