package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/inkwell/internal/config"
	"github.com/dshills/inkwell/internal/logging"
	"github.com/dshills/inkwell/internal/plugins/placeholder"
	"github.com/dshills/inkwell/internal/upload"
)

const postJSON = `{"type":"doc","content":[
	{"type":"heading","attrs":{"level":1},"content":[{"type":"text","text":"Title"}]},
	{"type":"paragraph","content":[{"type":"text","text":"Hello "},{"type":"text","text":"world","marks":[{"type":"bold"}]}]}
]}`

// runCLI runs the command line with an empty configuration file so the
// user's own configuration is never read.
func runCLI(t *testing.T, stdin string, args ...string) (string, string, int) {
	t.Helper()
	empty := filepath.Join(t.TempDir(), "empty.toml")
	require.NoError(t, os.WriteFile(empty, nil, 0o644))
	if !hasConfigFlag(args) {
		args = append([]string{"--config", empty}, args...)
	}
	var out, errOut bytes.Buffer
	code := run(args, strings.NewReader(stdin), &out, &errOut)
	return out.String(), errOut.String(), code
}

func hasConfigFlag(args []string) bool {
	for _, a := range args {
		if a == "--config" || a == "-c" {
			return true
		}
	}
	return false
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestRender(t *testing.T) {
	out, errOut, code := runCLI(t, postJSON, "render")
	require.Equal(t, 0, code, errOut)
	assert.Contains(t, out, "<h1>Title</h1>")
	assert.Contains(t, out, "Hello <strong>world</strong></p>")

	out, _, code = runCLI(t, postJSON, "render", "--to", "text")
	require.Equal(t, 0, code)
	assert.Equal(t, "Title\nHello world\n", out)

	out, _, code = runCLI(t, "", "render", writeFile(t, "post.html", "<p>one <em>two</em></p>"), "--to", "json")
	require.Equal(t, 0, code)
	assert.Contains(t, out, `"type": "italic"`)

	_, errOut, code = runCLI(t, postJSON, "render", "--to", "pdf")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "unknown format")
}

func TestRenderAcceptsPersistedState(t *testing.T) {
	in := `{"doc":` + postJSON + `,"selection":{"type":"text","anchor":1,"head":1}}`
	out, errOut, code := runCLI(t, in, "render", "--to", "md")
	require.Equal(t, 0, code, errOut)
	assert.Contains(t, out, "# Title")
}

func TestStoreCommands(t *testing.T) {
	db := filepath.Join(t.TempDir(), "docs.db")
	post := writeFile(t, "post.json", postJSON)

	out, errOut, code := runCLI(t, "", "--db", db, "import", post, "--id", "welcome")
	require.Equal(t, 0, code, errOut)
	assert.Equal(t, "welcome\n", out)

	out, _, code = runCLI(t, "", "--db", db, "list")
	require.Equal(t, 0, code)
	assert.Equal(t, "welcome\n", out)

	out, _, code = runCLI(t, "", "--db", db, "export", "welcome", "--to", "text")
	require.Equal(t, 0, code)
	assert.Equal(t, "Title\nHello world\n", out)

	_, _, code = runCLI(t, "", "--db", db, "rm", "welcome")
	require.Equal(t, 0, code)
	_, errOut, code = runCLI(t, "", "--db", db, "export", "welcome")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "not found")
}

func TestValidate(t *testing.T) {
	good := writeFile(t, "good.json", postJSON)
	out, errOut, code := runCLI(t, "", "validate", good)
	require.Equal(t, 0, code, errOut)
	assert.Contains(t, out, "good.json: ok")
	assert.Contains(t, out, "configuration: ok")

	bad := writeFile(t, "bad.json", `{"type":"doc","content":[{"type":"sparkle"}]}`)
	_, errOut, code = runCLI(t, "", "validate", bad)
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "bad.json")

	cfg := writeFile(t, "bad.toml", "[upload]\nbackend = \"ftp\"\n")
	_, errOut, code = runCLI(t, "", "--config", cfg, "validate")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "upload.backend")
}

func TestDiff(t *testing.T) {
	a := writeFile(t, "a.html", "<p>one</p><p>two</p>")
	b := writeFile(t, "b.html", "<p>one</p><p>three</p>")

	out, errOut, code := runCLI(t, "", "diff", a, b, "--as", "text")
	require.Equal(t, 0, code, errOut)
	assert.Equal(t, "  one\n- two\n+ three\n", out)

	_, _, code = runCLI(t, "", "diff", a, b, "--exit-code")
	assert.Equal(t, 1, code)

	out, _, code = runCLI(t, "", "diff", a, a, "--exit-code")
	require.Equal(t, 0, code)
	assert.Equal(t, "no differences\n", out)
}

func TestUpload(t *testing.T) {
	dir := t.TempDir()
	cfg := writeFile(t, "inkwell.toml", "[upload]\nbackend = \"local\"\ndir = \""+filepath.ToSlash(dir)+"\"\nbaseURL = \"https://cdn.example/img\"\n")
	img := writeFile(t, "cat.png", "\x89PNG\r\n\x1a\n")

	out, errOut, code := runCLI(t, "", "--config", cfg, "upload", img)
	require.Equal(t, 0, code, errOut)
	assert.True(t, strings.HasPrefix(out, img+"\thttps://cdn.example/img/"), out)
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	_, errOut, code = runCLI(t, "", "upload", img)
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "uploads are disabled")
}

func TestInvalidLogLevel(t *testing.T) {
	_, errOut, code := runCLI(t, "", "--log-level", "loud", "list")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "invalid log level")
}

func TestEditorSetup(t *testing.T) {
	ec := config.Defaults().Editor
	ec.Scripts = []string{writeFile(t, "rules.lua", `inkwell.rule("arrow", "->$", "→")`)}
	up, err := upload.NewLocalUploader(t.TempDir(), "/uploads", nil)
	require.NoError(t, err)

	setup, err := newEditorSetup(ec, up, nil, logging.Nop())
	require.NoError(t, err)
	defer setup.Close()

	keys := map[string]bool{}
	for _, p := range setup.plugins {
		keys[p.Key()] = true
	}
	assert.True(t, keys[upload.PluginKey])
	assert.True(t, keys[placeholder.PluginKey])

	ec.ImageInput, ec.DragHandles, ec.InputRules, ec.TrailingNode = false, false, false, false
	ec.Scripts = []string{filepath.Join(t.TempDir(), "missing.lua")}
	_, err = newEditorSetup(ec, nil, nil, logging.Nop())
	assert.Error(t, err)
}
