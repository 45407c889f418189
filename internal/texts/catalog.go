package texts

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"
)

const NotFound = "Текст не найден"

// Categories lists the resource files loaded into a catalog, one <category>.yaml each.
var Categories = []string{"main_menu", "responses", "welcome", "admin_menu"}

//go:embed *.yaml
var defaults embed.FS

// Catalog is an immutable category -> key -> text lookup.
type Catalog struct {
	texts map[string]map[string]string
}

func Default() (*Catalog, error) {
	return Load(defaults)
}

// LoadDir reads the catalog from dir, falling back to the embedded texts when dir is empty.
func LoadDir(dir string) (*Catalog, error) {
	if dir == "" {
		return Default()
	}

	return Load(os.DirFS(dir))
}

// Load reads every known category from fsys. A missing file leaves its category empty.
func Load(fsys fs.FS) (*Catalog, error) {
	c := &Catalog{texts: make(map[string]map[string]string, len(Categories))}

	for _, category := range Categories {
		data, err := fs.ReadFile(fsys, category+".yaml")
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("texts.Load: %s: %w", category, err)
		}

		entries := map[string]string{}
		if err := yaml.Unmarshal(data, &entries); err != nil {
			return nil, fmt.Errorf("texts.Load: %s: %w", category, err)
		}

		c.texts[category] = entries
	}

	return c, nil
}

func (c *Catalog) Get(category, key string) string {
	if text, ok := c.texts[category][key]; ok {
		return text
	}

	return NotFound
}
