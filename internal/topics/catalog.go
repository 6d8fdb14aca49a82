// Package topics serves the suggested-topic lists shown before a course is
// generated. Lists ship as compiled-in defaults and can be overridden from a
// content directory of YAML files.
package topics

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/geeddi-ai/geeddi-server/internal/i18n"
)

// List is one language's suggested topics as loaded from YAML.
type List struct {
	Language string   `yaml:"language"`
	Topics   []string `yaml:"topics"`
}

// Catalog holds the suggested topics per language.
type Catalog struct {
	lists map[string][]string
	mu    sync.RWMutex
}

// NewCatalog creates a catalog from the built-in defaults, then overlays any
// topic lists found under rootDir (ignored when empty or missing).
func NewCatalog(rootDir string) (*Catalog, error) {
	c := &Catalog{lists: defaultLists()}

	if rootDir != "" {
		if err := c.loadDir(rootDir); err != nil {
			return nil, fmt.Errorf("loading topic lists: %w", err)
		}
	}

	slog.Info("topic catalog ready", "languages", len(c.lists))
	return c, nil
}

// Topics returns the suggested topics for a language, falling back to
// English for unknown languages.
func (c *Catalog) Topics(lang string) []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	lang = i18n.Normalize(lang)
	list, ok := c.lists[lang]
	if !ok {
		list = c.lists[i18n.DefaultLanguage]
	}
	out := make([]string, len(list))
	copy(out, list)
	return out
}

func (c *Catalog) loadDir(rootDir string) error {
	if _, err := os.Stat(rootDir); os.IsNotExist(err) {
		slog.Warn("topic content dir missing, using defaults", "path", rootDir)
		return nil
	}

	return filepath.Walk(rootDir, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return nil
		}
		if !strings.HasSuffix(path, ".yaml") && !strings.HasSuffix(path, ".yml") {
			return nil
		}
		return c.loadFile(path)
	})
}

func (c *Catalog) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var list List
	if err := yaml.Unmarshal(data, &list); err != nil {
		slog.Warn("skipping invalid topic YAML", "path", path, "error", err)
		return nil
	}
	if list.Language == "" || len(list.Topics) == 0 {
		return nil // Not a topic list file
	}

	c.mu.Lock()
	c.lists[i18n.Normalize(list.Language)] = list.Topics
	c.mu.Unlock()
	return nil
}

func defaultLists() map[string][]string {
	return map[string][]string{
		"en": {
			"AI Fundamentals for beginners",
			"Introduction to personal finance",
			"Basics of healthy nutrition",
			"Learn to code: first steps",
			"World history in brief",
			"Effective study habits",
		},
		"so": {
			"Aasaaska AI ee bilowga ah",
			"Hordhac maaliyadda shakhsiga",
			"Aasaaska nafaqada caafimaadka leh",
			"Baro barnaamij-samaynta: tallaabooyinka ugu horreeya",
			"Taariikhda adduunka oo kooban",
			"Caadooyinka waxbarasho ee wax ku oolka ah",
		},
		"ar": {
			"أساسيات الذكاء الاصطناعي للمبتدئين",
			"مقدمة في التمويل الشخصي",
			"أساسيات التغذية الصحية",
			"تعلم البرمجة: الخطوات الأولى",
			"تاريخ العالم باختصار",
			"عادات الدراسة الفعالة",
		},
	}
}
