package registry

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/xeipuuv/gojsonschema"
)

// manifestFilename is the package manifest depfix looks for while
// walking up from the target directory.
const manifestFilename = "package.json"

// manifestSchema constrains the two fields the registry actually trusts:
// if present, dependencies/devDependencies must be plain string-keyed,
// string-valued objects (name -> semver range), never nested structures
// or non-string versions that would otherwise flow straight into the
// registry's dependency map.
const manifestSchema = `{
	"type": "object",
	"properties": {
		"dependencies": {
			"type": "object",
			"additionalProperties": {"type": "string"}
		},
		"devDependencies": {
			"type": "object",
			"additionalProperties": {"type": "string"}
		}
	}
}`

var manifestSchemaLoader = gojsonschema.NewStringLoader(manifestSchema)

// manifest is the subset of package.json fields the registry consumes;
// other fields are ignored per spec.md §6.
type manifest struct {
	Dependencies    map[string]string `json:"dependencies"`
	DevDependencies map[string]string `json:"devDependencies"`
}

// locateManifest walks up from dir looking for a package manifest. It
// returns the directory that owns it (the project root) and the merged
// dependency map. A missing manifest is not an error: root is "" and
// deps is empty, per spec.md §4.1 step 1 / §7.
func locateManifest(dir string) (root string, deps map[string]string, err error) {
	cur, absErr := filepath.Abs(dir)
	if absErr != nil {
		return "", nil, absErr
	}

	for {
		path := filepath.Join(cur, manifestFilename)

		data, readErr := os.ReadFile(path)
		if readErr == nil {
			m, parseErr := parseManifest(data)
			if parseErr != nil {
				// Corrupt manifest file at an otherwise-valid location is
				// treated like "not found" further up, matching the cache's
				// "corrupt → empty" tolerance; keep walking up.
				return walkUp(cur)
			}

			return cur, merge(m.Dependencies, m.DevDependencies), nil
		}

		if !errors.Is(readErr, os.ErrNotExist) {
			return "", nil, readErr // surfaced per spec.md §7.
		}

		parent := filepath.Dir(cur)
		if parent == cur {
			return "", nil, nil
		}

		cur = parent
	}
}

func walkUp(dir string) (string, map[string]string, error) {
	parent := filepath.Dir(dir)
	if parent == dir {
		return "", nil, nil
	}

	return locateManifest(parent)
}

// parseManifest validates data against manifestSchema before trusting it:
// a package.json with a malformed dependencies/devDependencies shape (an
// array, a nested object, a non-string version) is rejected here rather
// than silently misparsed by json.Unmarshal into a zero-valued map entry.
func parseManifest(data []byte) (manifest, error) {
	var raw any

	if err := json.Unmarshal(data, &raw); err != nil {
		return manifest{}, err
	}

	result, err := gojsonschema.Validate(manifestSchemaLoader, gojsonschema.NewGoLoader(raw))
	if err != nil {
		return manifest{}, fmt.Errorf("registry: validate manifest shape: %w", err)
	}

	if !result.Valid() {
		return manifest{}, fmt.Errorf("registry: package.json does not match expected shape: %s", result.Errors()[0])
	}

	var m manifest

	if err := json.Unmarshal(data, &m); err != nil {
		return manifest{}, err
	}

	return m, nil
}

func merge(a, b map[string]string) map[string]string {
	out := make(map[string]string, len(a)+len(b))

	for k, v := range a {
		out[k] = v
	}

	for k, v := range b {
		out[k] = v
	}

	return out
}
