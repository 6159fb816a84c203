package petetpl_test

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/go-quicktest/qt"
	"github.com/rogpeppe/go-internal/txtar"
	"gopkg.in/yaml.v3"

	"github.com/pete-tpl/pete-core"
	"github.com/pete-tpl/pete-core/value"
)

// TestGoldenScenarios runs every testdata/scenarios/*.txtar archive: a
// "template" file, an optional "vars.yaml" file, and a "want" file holding
// the expected rendered output. Each archive section keeps exactly the
// trailing newline its author intended; the one newline txtar's line-based
// format forces onto every section is stripped uniformly below.
func TestGoldenScenarios(t *testing.T) {
	matches, err := filepath.Glob("testdata/scenarios/*.txtar")
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.IsTrue(len(matches) > 0))

	for _, path := range matches {
		path := path
		t.Run(filepath.Base(path), func(t *testing.T) {
			archive, err := txtar.ParseFile(path)
			qt.Assert(t, qt.IsNil(err))

			var template, want string
			var vars value.Store
			haveWant := false
			for _, f := range archive.Files {
				content := string(bytes.TrimSuffix(f.Data, []byte("\n")))
				switch f.Name {
				case "template":
					template = content
				case "want":
					want = content
					haveWant = true
				case "vars.yaml":
					vars = parseGoldenVars(t, content)
				}
			}
			qt.Assert(t, qt.IsTrue(haveWant))

			got, err := petetpl.New().Render(template, vars)
			qt.Assert(t, qt.IsNil(err))
			qt.Assert(t, qt.Equals(got, want))
		})
	}
}

func parseGoldenVars(t *testing.T, content string) value.Store {
	t.Helper()
	if content == "" {
		return value.Store{}
	}
	var raw map[string]interface{}
	err := yaml.Unmarshal([]byte(content), &raw)
	qt.Assert(t, qt.IsNil(err))

	store := make(value.Store, len(raw))
	for k, v := range raw {
		switch t := v.(type) {
		case int:
			store[k] = value.Int(int64(t))
		case bool:
			store[k] = value.Bool(t)
		case float64:
			store[k] = value.Float(t)
		case string:
			store[k] = value.Str(t)
		default:
			store[k] = value.Str("")
		}
	}
	return store
}
