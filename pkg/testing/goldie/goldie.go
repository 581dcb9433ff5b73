// Package goldie compares response envelopes against the golden files kept in the
// testdata directory of each test package, e.g. pkg/graphql/testdata/*.golden.
package goldie

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sebdah/goldie/v2"
)

// New returns a goldie instance reading testdata/<name>.golden relative to the test package.
func New(t *testing.T) *goldie.Goldie {
	t.Helper()

	return goldie.New(t,
		goldie.WithFixtureDir("testdata"),
		goldie.WithNameSuffix(".golden"),
		goldie.WithDiffEngine(goldie.ColoredDiff),
	)
}

func Assert(t *testing.T, name string, actual []byte) {
	t.Helper()

	New(t).Assert(t, name, normalizeLineEndings(actual))
}

// AssertJSON indents a compact envelope by two spaces before comparing it, so golden files
// stay reviewable while the engine writes compact JSON.
func AssertJSON(t *testing.T, name string, envelope []byte) {
	t.Helper()

	pretty := &bytes.Buffer{}
	if err := json.Indent(pretty, envelope, "", "  "); err != nil {
		t.Fatalf("envelope %s is not valid JSON: %v", name, err)
	}
	pretty.WriteString("\n")
	Assert(t, name, pretty.Bytes())
}
