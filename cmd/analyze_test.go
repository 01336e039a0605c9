package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestAnalyzeJSONOutput(t *testing.T) {
	root := t.TempDir()
	write := func(rel, content string) {
		t.Helper()
		path := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	write("src/a.ts", "import b from './b';\n")
	write("src/b.ts", "export default 1;\n")

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs([]string{"analyze", root, "--json"})
	defer func() { jsonOutput = false }()

	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	for _, want := range []string{`"graph"`, `"src/a.ts"`, `"health"`} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("JSON output missing %s", want)
		}
	}
}

func TestAnalyzeRejectsMissingDirectory(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs([]string{"analyze", filepath.Join(t.TempDir(), "nope"), "--json"})
	defer func() { jsonOutput = false }()

	if err := rootCmd.Execute(); err == nil {
		t.Error("Execute on missing directory succeeded, want error")
	}
}
