// Copyright 2026 The Inkstand Authors
// SPDX-License-Identifier: Apache-2.0

package commands_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/inkstand/inkstand/cmd/inkstand/cli"
	"github.com/inkstand/inkstand/cmd/inkstand/commands"
	"github.com/inkstand/inkstand/lib/article"
	"github.com/inkstand/inkstand/lib/clock"
	"github.com/inkstand/inkstand/lib/config"
)

// harness runs commands against a private store under t.TempDir.
type harness struct {
	t          *testing.T
	dir        string
	configPath string
	clock      *clock.FakeClock
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	t.Setenv(config.EnvVar, "")

	dir := t.TempDir()
	configPath := filepath.Join(dir, "inkstand.yaml")
	content := fmt.Sprintf(`
paths:
  root: %s
  store: ${INKSTAND_ROOT}/db
  backups: ${INKSTAND_ROOT}/backups
history:
  max_history: 2
log:
  level: error
`, dir)
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	fake := clock.Fake(time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC))
	fake.SetStep(time.Second)
	return &harness{t: t, dir: dir, configPath: configPath, clock: fake}
}

// run executes one command line with --config appended and returns
// its output.
func (h *harness) run(args ...string) (string, error) {
	h.t.Helper()
	var out bytes.Buffer
	root := commands.Root(commands.Options{Out: &out, Level: new(slog.LevelVar), Clock: h.clock})
	root.HelpOutput = &out
	args = append(args, "--config", h.configPath)
	err := root.Execute(context.Background(), args, slog.New(slog.DiscardHandler))
	return out.String(), err
}

// mustRun is run that fails the test on error.
func (h *harness) mustRun(args ...string) string {
	h.t.Helper()
	output, err := h.run(args...)
	if err != nil {
		h.t.Fatalf("inkstand %s: %v\n%s", strings.Join(args, " "), err, output)
	}
	return output
}

// create makes an article and returns its key.
func (h *harness) create(args ...string) string {
	h.t.Helper()
	output := h.mustRun(append([]string{"create"}, args...)...)
	key := strings.TrimSpace(output)
	if !article.ValidKey(key) {
		h.t.Fatalf("create printed %q, want a key", output)
	}
	return key
}

func (h *harness) writeFile(name, content string) string {
	h.t.Helper()
	path := filepath.Join(h.dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		h.t.Fatalf("writing %s: %v", name, err)
	}
	return path
}

func requireCategory(t *testing.T, err error, want cli.ErrorCategory) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected a %s error, got nil", want)
	}
	if got := cli.CategoryOf(err); got != want {
		t.Fatalf("error %q has category %s, want %s", err, got, want)
	}
}

func requireExitCode(t *testing.T, err error, want int) {
	t.Helper()
	var exitError *cli.ExitError
	if !errors.As(err, &exitError) || exitError.Code != want {
		t.Fatalf("error = %v, want exit code %d", err, want)
	}
}

func TestArticleLifecycle(t *testing.T) {
	h := newHarness(t)

	output := h.mustRun("create", "--title", "Hello", "--content", "# Hi\n\nFirst post.", "--tag", "intro", "--json")
	var created article.Article
	if err := json.Unmarshal([]byte(output), &created); err != nil {
		t.Fatalf("create --json output: %v\n%s", err, output)
	}
	key := created.Key
	if !article.ValidKey(key) || created.Published {
		t.Fatalf("unexpected created article: %+v", created)
	}

	if got := h.mustRun("edit", key, "--title", "Hello again"); got != key+" updated: title\n" {
		t.Errorf("edit output = %q", got)
	}
	if got := h.mustRun("edit", key, "--title", "Hello again"); got != key+" unchanged\n" {
		t.Errorf("repeat edit output = %q", got)
	}

	var revisions []article.Revision
	if err := json.Unmarshal([]byte(h.mustRun("history", key, "--json")), &revisions); err != nil {
		t.Fatalf("history --json: %v", err)
	}
	if len(revisions) != 1 || revisions[0].Title != "Hello" {
		t.Errorf("history = %+v, want one revision titled Hello", revisions)
	}

	show := h.mustRun("show", key, "--plain")
	for _, want := range []string{"Hello again", key + " · draft", "tags: intro", "Hi", "First post."} {
		if !strings.Contains(show, want) {
			t.Errorf("show missing %q:\n%s", want, show)
		}
	}

	if got := h.mustRun("status", key); got != "draft\n" {
		t.Errorf("status = %q, want draft", got)
	}
	if got := h.mustRun("publish", key); got != key+" published\n" {
		t.Errorf("publish = %q", got)
	}
	if got := h.mustRun("status", key); got != "published\n" {
		t.Errorf("status after publish = %q", got)
	}

	if list := h.mustRun("list", "--published"); !strings.Contains(list, key) {
		t.Errorf("list --published missing %s:\n%s", key, list)
	}
	if stats := h.mustRun("stats"); !strings.Contains(stats, "articles: 1") || !strings.Contains(stats, "tags:     1") {
		t.Errorf("stats = %q", stats)
	}
	var counts map[string]int
	if err := json.Unmarshal([]byte(h.mustRun("stats", "--json")), &counts); err != nil {
		t.Fatalf("stats --json: %v", err)
	}
	if want := map[string]int{"articleCount": 1, "distinctTagCount": 1}; !reflect.DeepEqual(counts, want) {
		t.Errorf("stats --json = %v, want %v", counts, want)
	}

	if got := h.mustRun("delete", key); got != key+" deleted\n" {
		t.Errorf("delete = %q", got)
	}
	_, err := h.run("exists", key)
	requireExitCode(t, err, 1)
}

func TestEditKeepsUnsetFields(t *testing.T) {
	h := newHarness(t)
	key := h.create("--title", "Tagged", "--introduction", "Intro", "--tag", "a", "--tag", "b")

	h.mustRun("edit", key, "--title", "Retitled")
	var item article.Article
	if err := json.Unmarshal([]byte(h.mustRun("show", key, "--json")), &item); err != nil {
		t.Fatalf("show --json: %v", err)
	}
	if item.Introduction != "Intro" || strings.Join(item.Tags, ",") != "a,b" {
		t.Errorf("edit changed fields it was not given: %+v", item)
	}

	if got := h.mustRun("edit", key, "--clear-tags"); got != key+" updated: tags\n" {
		t.Errorf("clear tags output = %q", got)
	}
	if got := h.mustRun("edit", key, "--tag", "c"); got != key+" updated: tags\n" {
		t.Errorf("replace tags output = %q", got)
	}
}

func TestHistoryBounded(t *testing.T) {
	h := newHarness(t)
	key := h.create("--title", "v0")
	for version := 1; version <= 4; version++ {
		h.mustRun("edit", key, "--title", fmt.Sprintf("v%d", version))
	}

	var revisions []article.Revision
	if err := json.Unmarshal([]byte(h.mustRun("history", key, "--json")), &revisions); err != nil {
		t.Fatalf("history --json: %v", err)
	}
	if len(revisions) != 2 || revisions[0].Title != "v3" || revisions[1].Title != "v2" {
		t.Errorf("history = %+v, want v3 then v2 (max_history 2)", revisions)
	}
}

func TestExists(t *testing.T) {
	h := newHarness(t)
	key := h.create("--title", "Present")

	if got := h.mustRun("exists", key); got != "true\n" {
		t.Errorf("exists = %q", got)
	}
	output, err := h.run("exists", "abc123")
	requireExitCode(t, err, 1)
	if output != "false\n" {
		t.Errorf("exists on missing key printed %q", output)
	}
}

func TestListAndGet(t *testing.T) {
	h := newHarness(t)
	goKey := h.create("--title", "Go tips", "--tag", "go")
	cookKey := h.create("--title", "Cooking", "--tag", "food", "--content", "Boil the water first.")
	h.mustRun("publish", goKey)

	var listed []article.Article
	if err := json.Unmarshal([]byte(h.mustRun("list", "--json")), &listed); err != nil {
		t.Fatalf("list --json: %v", err)
	}
	if len(listed) != 2 || listed[0].Key != cookKey || listed[1].Key != goKey {
		t.Errorf("list order = %v, want newest first", listed)
	}

	if tagged := h.mustRun("list", "--tag", "food"); !strings.Contains(tagged, cookKey) || strings.Contains(tagged, goKey) {
		t.Errorf("list --tag food:\n%s", tagged)
	}
	if long := h.mustRun("list", "--long", "--tag", "food"); !strings.Contains(long, "Boil the water first.") {
		t.Errorf("list --long should show the excerpt:\n%s", long)
	}
	if empty := h.mustRun("list", "--published", "--tag", "food"); empty != "no articles\n" {
		t.Errorf("list --published --tag food = %q", empty)
	}

	output := h.mustRun("get", "--field", "tags=go", "--field", "published=true", "--json")
	var match struct {
		Articles []article.Article `json:"articles"`
		Single   *article.Article  `json:"single"`
	}
	if err := json.Unmarshal([]byte(output), &match); err != nil {
		t.Fatalf("get --json: %v", err)
	}
	if match.Single == nil || match.Single.Key != goKey {
		t.Errorf("get single = %+v, want %s", match.Single, goKey)
	}

	_, err := h.run("get", "--field", "novalue")
	requireCategory(t, err, cli.CategoryValidation)
}

func TestErrorCategories(t *testing.T) {
	h := newHarness(t)

	_, err := h.run("show", "NOT-A-KEY")
	requireCategory(t, err, cli.CategoryValidation)

	_, err = h.run("show", "zzzzzz")
	requireCategory(t, err, cli.CategoryNotFound)

	_, err = h.run("delete", "zzzzzz")
	requireCategory(t, err, cli.CategoryNotFound)
	if !errors.Is(err, article.ErrNotFound) {
		t.Errorf("delete error should wrap ErrNotFound: %v", err)
	}

	_, err = h.run("publish", "zzzzzz")
	requireCategory(t, err, cli.CategoryNotFound)

	_, err = h.run("create", "--content", "x", "--content-file", "y")
	requireCategory(t, err, cli.CategoryValidation)

	_, err = h.run("create", "--tittle", "typo")
	if err == nil || !strings.Contains(err.Error(), "did you mean --title") {
		t.Errorf("create --tittle error = %v, want a suggestion", err)
	}
}

func TestCreateAndEditFromFile(t *testing.T) {
	h := newHarness(t)
	h.writeFile("body.md", "## Body\n\nFrom a file.")
	definition := h.writeFile("post.jsonc", `{
		// A comment, and a trailing comma.
		"title": "From JSONC",
		"contentFile": "body.md",
		"tags": ["import"],
	}`)

	key := h.create("--file", definition)
	var item article.Article
	if err := json.Unmarshal([]byte(h.mustRun("show", key, "--json")), &item); err != nil {
		t.Fatalf("show --json: %v", err)
	}
	if item.Title != "From JSONC" || !strings.Contains(item.Content, "From a file.") {
		t.Errorf("created from file: %+v", item)
	}

	edit := h.writeFile("edit.jsonc", fmt.Sprintf(`{"key": %q, "title": "Edited", "content": "new", "published": true}`, key))
	if got := h.mustRun("edit", "--file", edit); !strings.HasPrefix(got, key+" updated") {
		t.Errorf("edit --file output = %q", got)
	}
	if got := h.mustRun("status", key); got != "published\n" {
		t.Errorf("status = %q, want published", got)
	}

	_, err := h.run("create", "--file", edit)
	requireCategory(t, err, cli.CategoryValidation)
}

func TestImportExport(t *testing.T) {
	h := newHarness(t)
	existing := h.create("--title", "Existing")

	first := h.writeFile("new.jsonc", `{"title": "Imported", "tags": ["x"]}`)
	second := h.writeFile("update.jsonc", fmt.Sprintf(`{"key": %q, "title": "Existing, revised"}`, existing))

	var results []struct {
		File   string `json:"file"`
		Key    string `json:"key"`
		Action string `json:"action"`
	}
	if err := json.Unmarshal([]byte(h.mustRun("import", first, second, "--json")), &results); err != nil {
		t.Fatalf("import --json: %v", err)
	}
	if len(results) != 2 || results[0].Action != "created" || results[1].Action != "updated" || results[1].Key != existing {
		t.Fatalf("import results = %+v", results)
	}

	exportPath := filepath.Join(h.dir, "export.json")
	h.mustRun("export", "--output", exportPath)
	data, err := os.ReadFile(exportPath)
	if err != nil {
		t.Fatalf("reading export: %v", err)
	}
	var exported []article.Article
	if err := json.Unmarshal(data, &exported); err != nil {
		t.Fatalf("export output: %v", err)
	}
	if len(exported) != 2 {
		t.Fatalf("exported %d articles, want 2", len(exported))
	}
	for _, item := range exported {
		if item.Key == existing && len(item.HistoryContent) != 1 {
			t.Errorf("export should carry history, got %+v", item.HistoryContent)
		}
	}

	var selected []article.Article
	if err := json.Unmarshal([]byte(h.mustRun("export", "--key", existing)), &selected); err != nil {
		t.Fatalf("export --key: %v", err)
	}
	if len(selected) != 1 || selected[0].Key != existing {
		t.Errorf("export --key = %+v", selected)
	}

	_, err = h.run("export", "--key", "zzzzzz")
	requireCategory(t, err, cli.CategoryNotFound)

	bad := h.writeFile("bad.jsonc", `{"key": "NOPE"}`)
	_, err = h.run("import", bad)
	requireCategory(t, err, cli.CategoryValidation)
}

func TestRenderHTML(t *testing.T) {
	h := newHarness(t)
	key := h.create("--title", "Doc", "--content", "# Hi\n\n| a | b |\n|---|---|\n| 1 | 2 |")

	html := h.mustRun("render", key)
	for _, want := range []string{`<h1 id="hi">Hi</h1>`, "<table>", "<td>1</td>"} {
		if !strings.Contains(html, want) {
			t.Errorf("render missing %q:\n%s", want, html)
		}
	}

	outputPath := filepath.Join(h.dir, "doc.html")
	h.mustRun("render", key, "-o", outputPath)
	written, err := os.ReadFile(outputPath)
	if err != nil || string(written) != html {
		t.Errorf("render -o wrote %q (%v), want the stdout form", written, err)
	}
}

func TestBackupVerifyRestore(t *testing.T) {
	h := newHarness(t)
	key := h.create("--title", "Keep me")

	target := filepath.Join(h.dir, "snap")
	if got := h.mustRun("backup", target); strings.TrimSpace(got) != target {
		t.Errorf("backup printed %q, want %s", got, target)
	}
	if got := h.mustRun("verify", target); !strings.Contains(got, "snapshot intact") {
		t.Errorf("verify = %q", got)
	}

	h.mustRun("delete", key)
	h.mustRun("restore", target)
	if got := h.mustRun("exists", key); got != "true\n" {
		t.Errorf("exists after restore = %q", got)
	}

	// An unrelated file in the backup fails verify.
	if err := os.WriteFile(filepath.Join(target, "extra.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	output, err := h.run("verify", target)
	requireExitCode(t, err, 1)
	if !strings.Contains(output, "extra: extra.txt") {
		t.Errorf("verify output = %q", output)
	}
	// Files outside the manifest are skipped.
	h.mustRun("restore", target)

	// A changed database file is refused.
	if err := os.WriteFile(filepath.Join(target, "article.db"), []byte("garbage"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err = h.run("restore", target)
	requireCategory(t, err, cli.CategoryValidation)
}

func TestBackupDefaultTarget(t *testing.T) {
	h := newHarness(t)
	h.create("--title", "Anything")

	written := strings.TrimSpace(h.mustRun("backup"))
	if filepath.Dir(written) != filepath.Join(h.dir, "backups") {
		t.Errorf("default backup went to %s, want under %s/backups", written, h.dir)
	}
	if !strings.HasPrefix(filepath.Base(written), "20260504T") {
		t.Errorf("default backup name %s should be a UTC timestamp", filepath.Base(written))
	}
}

func TestArchiveUnarchive(t *testing.T) {
	h := newHarness(t)
	key := h.create("--title", "Sealed")
	passphrase := h.writeFile("pass", "correct horse battery staple\n")
	wrong := h.writeFile("wrong", "nope\n")

	archivePath := filepath.Join(h.dir, "store.inkstand")
	got := h.mustRun("archive", archivePath, "--compression", "lz4", "--passphrase-file", passphrase, "--work-factor", "10")
	if !strings.Contains(got, "lz4, encrypted") {
		t.Errorf("archive output = %q", got)
	}
	if got := h.mustRun("verify", archivePath); !strings.Contains(got, "lz4, encrypted: true") {
		t.Errorf("verify archive = %q", got)
	}

	h.mustRun("delete", key)

	_, err := h.run("unarchive", archivePath)
	requireCategory(t, err, cli.CategoryValidation)
	_, err = h.run("unarchive", archivePath, "--passphrase-file", wrong)
	requireCategory(t, err, cli.CategoryValidation)

	h.mustRun("unarchive", archivePath, "--passphrase-file", passphrase)
	if got := h.mustRun("exists", key); got != "true\n" {
		t.Errorf("exists after unarchive = %q", got)
	}

	_, err = h.run("archive", archivePath, "--compression", "gzip")
	requireCategory(t, err, cli.CategoryValidation)
}

func TestArchiveUsesConfiguredCompression(t *testing.T) {
	h := newHarness(t)
	h.create("--title", "Default compression")

	archivePath := filepath.Join(h.dir, "default.inkstand")
	if got := h.mustRun("archive", archivePath); !strings.Contains(got, "zstd, unencrypted") {
		t.Errorf("archive output = %q, want the zstd default", got)
	}
}

func TestBrowseRequiresTerminal(t *testing.T) {
	h := newHarness(t)
	_, err := h.run("browse")
	requireCategory(t, err, cli.CategoryValidation)
}

func TestInvalidConfig(t *testing.T) {
	h := newHarness(t)
	h.configPath = h.writeFile("bad.yaml", "history:\n  max_history: -1\n")
	_, err := h.run("list")
	requireCategory(t, err, cli.CategoryValidation)
	if !strings.Contains(err.Error(), "max_history") {
		t.Errorf("error = %v, want it to name max_history", err)
	}
}

func TestHelpAndVersion(t *testing.T) {
	var out bytes.Buffer
	root := commands.Root(commands.Options{Out: &out})
	root.HelpOutput = &out
	logger := slog.New(slog.DiscardHandler)

	if err := root.Execute(context.Background(), []string{"version"}, logger); err != nil {
		t.Fatalf("version: %v", err)
	}
	if !strings.HasPrefix(out.String(), "inkstand ") {
		t.Errorf("version output = %q", out.String())
	}

	out.Reset()
	if err := root.Execute(context.Background(), []string{"--help"}, logger); err != nil {
		t.Fatalf("--help: %v", err)
	}
	for _, name := range []string{"create", "publish", "backup", "unarchive", "browse"} {
		if !strings.Contains(out.String(), name) {
			t.Errorf("help missing %s", name)
		}
	}

	err := root.Execute(context.Background(), []string{"pubish"}, logger)
	if err == nil || !strings.Contains(err.Error(), `did you mean "publish"`) {
		t.Errorf("typo error = %v", err)
	}
}

func TestEveryCommandDocumented(t *testing.T) {
	root := commands.Root(commands.Options{})
	seen := make(map[string]bool)
	for _, command := range root.Subcommands {
		if seen[command.Name] {
			t.Errorf("command %q registered twice", command.Name)
		}
		seen[command.Name] = true
		if command.Summary == "" {
			t.Errorf("command %q has no summary", command.Name)
		}
		if command.Run == nil {
			t.Errorf("command %q has no Run", command.Name)
		}
		if command.Flags != nil {
			// Binding panics on a malformed params struct.
			command.Flags()
		}
	}
}
