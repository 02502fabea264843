package pkgmap

import (
	"fmt"

	"github.com/arthur-debert/khbuild/pkg/types"
	"github.com/pelletier/go-toml/v2"
	"github.com/tidwall/gjson"
	"gopkg.in/yaml.v3"
)

// parseJSON extracts only the title's section; the base map of every
// title lives in one large file.
func parseJSON(data []byte, title string) (Entries, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("invalid JSON")
	}

	entries := Entries{}
	var section gjson.Result
	gjson.ParseBytes(data).ForEach(func(key, value gjson.Result) bool {
		if key.String() == title {
			section = value
			return false
		}
		return true
	})
	if !section.Exists() {
		return entries, nil
	}
	if !section.IsObject() {
		return nil, fmt.Errorf("section %q is not an object", title)
	}

	var parseErr error
	section.ForEach(func(path, value gjson.Result) bool {
		switch {
		case value.IsArray():
			for _, pkg := range value.Array() {
				entries[path.String()] = append(entries[path.String()], types.PackageID(pkg.String()))
			}
		case value.Type == gjson.String:
			entries[path.String()] = []types.PackageID{types.PackageID(value.String())}
		default:
			parseErr = fmt.Errorf("entry %q in section %q is not a list of packages", path.String(), title)
			return false
		}
		return true
	})
	if parseErr != nil {
		return nil, parseErr
	}
	return entries, nil
}

func parseYAML(data []byte, title string) (Entries, error) {
	var doc map[string]map[string][]string
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return fromDocument(doc, title), nil
}

func parseTOML(data []byte, title string) (Entries, error) {
	var doc map[string]map[string][]string
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return fromDocument(doc, title), nil
}

func fromDocument(doc map[string]map[string][]string, title string) Entries {
	entries := Entries{}
	for path, pkgs := range doc[title] {
		for _, pkg := range pkgs {
			entries[path] = append(entries[path], types.PackageID(pkg))
		}
	}
	return entries
}
