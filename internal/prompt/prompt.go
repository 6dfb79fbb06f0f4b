// Package prompt renders the system and user messages for every feature from
// one set of embedded templates, parameterized by task kind, target language
// and strictness.
package prompt

import (
	"bytes"
	"embed"
	"fmt"
	"io/fs"
	"path"
	"strings"
	"sync"
	"text/template"

	"fastcoding/internal/logging"

	"gopkg.in/yaml.v3"
)

// Kind names a prompt template.
type Kind string

const (
	KindGenerate Kind = "generate"
	KindComplete Kind = "complete"
	KindReview   Kind = "review"
	KindDocument Kind = "document"
	KindChat     Kind = "chat"
	KindSolve    Kind = "solve"
)

//go:embed templates
var embeddedTemplates embed.FS

// Data is everything a template may reference. Unused fields stay empty.
type Data struct {
	Language       string
	Strict         bool
	Rules          []string
	Before         string
	After          string
	Comment        string // comment wrapped in its language's delimiters
	GenerationType string
	Selection      string
	Message        string
	Prompt         string
}

// Messages is a rendered prompt.
type Messages struct {
	System string
	User   string
}

type templateFile struct {
	Kind        Kind   `yaml:"kind"`
	Description string `yaml:"description"`
	System      string `yaml:"system"`
	User        string `yaml:"user"`
}

type compiled struct {
	system *template.Template
	user   *template.Template
}

// Library holds parsed templates and the language rules table.
type Library struct {
	templates map[Kind]compiled
	rules     map[string][]string
}

var (
	defaultOnce sync.Once
	defaultLib  *Library
	defaultErr  error
)

// Default returns the library built from the embedded templates.
func Default() (*Library, error) {
	defaultOnce.Do(func() {
		defaultLib, defaultErr = Load(embeddedTemplates, "templates")
	})
	return defaultLib, defaultErr
}

// Load parses every template file and rules.yaml under dir in fsys.
func Load(fsys fs.FS, dir string) (*Library, error) {
	timer := logging.StartTimer(logging.CategoryAssist, "prompt.Load")
	defer timer.Stop()

	lib := &Library{templates: make(map[Kind]compiled)}

	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read prompt templates: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".yaml") {
			continue
		}
		data, err := fs.ReadFile(fsys, path.Join(dir, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", e.Name(), err)
		}
		if e.Name() == "rules.yaml" {
			if err := yaml.Unmarshal(data, &lib.rules); err != nil {
				return nil, fmt.Errorf("failed to parse rules.yaml: %w", err)
			}
			continue
		}
		if err := lib.add(e.Name(), data); err != nil {
			return nil, err
		}
	}

	if _, ok := lib.rules["default"]; !ok {
		return nil, fmt.Errorf("rules.yaml must define default rules")
	}
	logging.AssistDebug("loaded %d prompt templates", len(lib.templates))
	return lib, nil
}

func (l *Library) add(name string, data []byte) error {
	var tf templateFile
	if err := yaml.Unmarshal(data, &tf); err != nil {
		return fmt.Errorf("failed to parse %s: %w", name, err)
	}
	if tf.Kind == "" {
		return fmt.Errorf("%s: missing kind", name)
	}
	sys, err := template.New(string(tf.Kind) + ".system").Option("missingkey=error").Parse(tf.System)
	if err != nil {
		return fmt.Errorf("%s: system template: %w", name, err)
	}
	usr, err := template.New(string(tf.Kind) + ".user").Option("missingkey=error").Parse(tf.User)
	if err != nil {
		return fmt.Errorf("%s: user template: %w", name, err)
	}
	l.templates[tf.Kind] = compiled{system: sys, user: usr}
	return nil
}

// Kinds lists the loaded template kinds.
func (l *Library) Kinds() []Kind {
	kinds := make([]Kind, 0, len(l.templates))
	for k := range l.templates {
		kinds = append(kinds, k)
	}
	return kinds
}

// LanguageRules returns the extra generation rules for a language.
func (l *Library) LanguageRules(language string) []string {
	if rules, ok := l.rules[language]; ok {
		return rules
	}
	return l.rules["default"]
}

// Build renders the messages for kind. Generation prompts get the language
// rules filled in when the caller left Rules empty.
func (l *Library) Build(kind Kind, data Data) (Messages, error) {
	t, ok := l.templates[kind]
	if !ok {
		return Messages{}, fmt.Errorf("unknown prompt kind %q", kind)
	}
	if kind == KindGenerate && data.Rules == nil {
		data.Rules = l.LanguageRules(data.Language)
	}

	var sys, usr bytes.Buffer
	if err := t.system.Execute(&sys, data); err != nil {
		return Messages{}, fmt.Errorf("render %s system prompt: %w", kind, err)
	}
	if err := t.user.Execute(&usr, data); err != nil {
		return Messages{}, fmt.Errorf("render %s user prompt: %w", kind, err)
	}
	return Messages{
		System: strings.TrimSpace(sys.String()),
		User:   strings.TrimSpace(usr.String()),
	}, nil
}
