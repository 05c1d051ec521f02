package data

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
)

// Embedded locale files, one `<lang>.json` per language.
//
//go:embed locales/*.json
var assets embed.FS

// Asset returns the contents of an embedded file. Paths may be passed with or
// without the leading "data/" prefix.
func Asset(name string) ([]byte, error) {
	normalized := strings.TrimPrefix(name, "data/")

	contents, err := assets.ReadFile(normalized)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s: not found", name)
		}

		return nil, err
	}

	return contents, nil
}

// Locales lists the languages we ship strings for, sorted.
func Locales() []string {
	entries, err := assets.ReadDir("locales")
	if err != nil {
		// the directory is embedded, this can't happen
		panic(err)
	}

	var langs []string
	for _, e := range entries {
		if ext := path.Ext(e.Name()); ext == ".json" {
			langs = append(langs, strings.TrimSuffix(e.Name(), ext))
		}
	}
	sort.Strings(langs)
	return langs
}
