package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/devicelab-dev/flowcheck/pkg/config"
)

func writeProject(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

// run executes the app with args and returns what it printed.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	colorsEnabled = false

	var out, errOut bytes.Buffer
	app := newApp()
	app.Writer = &out
	app.ErrWriter = &errOut
	err := runApp(app, append([]string{"flowcheck"}, args...))
	return out.String(), err
}

// runWithStderr is run that also returns what went to stderr.
func runWithStderr(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	colorsEnabled = false

	var out, errOut bytes.Buffer
	app := newApp()
	app.Writer = &out
	app.ErrWriter = &errOut
	err := runApp(app, append([]string{"flowcheck"}, args...))
	return out.String(), errOut.String(), err
}

func TestValidate_Pass(t *testing.T) {
	dir := writeProject(t, map[string]string{
		"a.job": "type=command\ncommand=echo a\n",
		"b.job": "type=command\ncommand=echo b\ndependencies=a\n",
	})

	out, err := run(t, "validate", dir)
	if err != nil {
		t.Fatalf("unexpected error: %v\n%s", err, out)
	}
	if !strings.Contains(out, "✓ passed") {
		t.Errorf("expected pass line, got:\n%s", out)
	}
	if !strings.Contains(out, "Project "+filepath.Base(dir)) {
		t.Errorf("expected project header, got:\n%s", out)
	}
}

func TestValidate_Errors(t *testing.T) {
	dir := writeProject(t, map[string]string{
		"b.job": "type=noop\ndependencies=zzz\n",
	})

	out, err := run(t, "validate", dir)
	if err == nil {
		t.Fatal("expected error for invalid project")
	}
	if !strings.Contains(err.Error(), "validation failed with 1 error(s)") {
		t.Errorf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "✗ b cannot find dependency zzz") {
		t.Errorf("expected error line, got:\n%s", out)
	}
}

func TestValidate_EmptyDirWarns(t *testing.T) {
	dir := t.TempDir()

	out, err := run(t, "validate", dir)
	if err != nil {
		t.Fatalf("warnings must not fail validation: %v", err)
	}
	if !strings.Contains(out, "No flows found in "+dir) {
		t.Errorf("expected no-flows warning, got:\n%s", out)
	}
}

func TestValidate_JSON(t *testing.T) {
	dir := writeProject(t, map[string]string{
		"project.yaml": "flows:\n  - {name: daily, jobs: [{name: a, type: noop}]}\n",
	})

	out, err := run(t, "validate", "--json", dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var got jsonReport
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("invalid JSON output: %v\n%s", err, out)
	}
	if got.Status != "pass" {
		t.Errorf("expected status pass, got %s", got.Status)
	}
	if len(got.Flows) != 1 || got.Flows[0] != "daily" {
		t.Errorf("unexpected flows: %v", got.Flows)
	}
	if got.Errors == nil || len(got.Errors) != 0 {
		t.Errorf("expected empty error list, got %v", got.Errors)
	}
}

func TestValidate_PropertyOverride(t *testing.T) {
	dir := writeProject(t, map[string]string{
		"heavy.job": "type=javaprocess\njava.class=Main\n",
	})

	if _, err := run(t, "validate", dir); err != nil {
		t.Fatalf("unexpected error without override: %v", err)
	}

	out, err := run(t, "validate", "-p", "Xmx=16G", "--sequential", dir)
	if err == nil {
		t.Fatal("expected memory limit error")
	}
	if !strings.Contains(out, "Job heavy requests Xmx 16G which exceeds job.max.Xmx 2G") {
		t.Errorf("expected limit error, got:\n%s", out)
	}
}

func TestValidate_ConfigFlag(t *testing.T) {
	dir := writeProject(t, map[string]string{
		"heavy.job": "type=javaprocess\nXmx=4G\n",
	})
	cfgPath := filepath.Join(t.TempDir(), "flowcheck.yaml")
	if err := os.WriteFile(cfgPath, []byte("maxXmx: 8G\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := run(t, "validate", dir); err == nil {
		t.Error("expected default limit to reject 4G")
	}
	if _, err := run(t, "validate", "--config", cfgPath, dir); err != nil {
		t.Errorf("expected configured limit to accept 4G: %v", err)
	}
}

func TestValidate_ProjectConfig(t *testing.T) {
	dir := writeProject(t, map[string]string{
		"flowcheck.yaml": "properties:\n  Xmx: 3G\n",
		"heavy.job":      "type=javaprocess\n",
	})

	out, err := run(t, "validate", dir)
	if err == nil {
		t.Fatalf("expected inherited Xmx to exceed the limit:\n%s", out)
	}
}

func TestValidate_Arguments(t *testing.T) {
	if _, err := run(t, "validate"); err == nil {
		t.Error("expected error without directory")
	}

	missing := filepath.Join(t.TempDir(), "nope")
	if _, err := run(t, "validate", missing); err == nil {
		t.Error("expected error for missing directory")
	}

	file := filepath.Join(t.TempDir(), "a.job")
	if err := os.WriteFile(file, []byte("type=noop\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := run(t, "validate", file); err == nil || !strings.Contains(err.Error(), "is not a directory") {
		t.Errorf("expected not-a-directory error, got %v", err)
	}

	if _, err := run(t, "validate", "-p", "novalue", t.TempDir()); err == nil {
		t.Error("expected error for malformed property")
	}
}

func TestFlows(t *testing.T) {
	dir := writeProject(t, map[string]string{
		"outer.job":  "type=noop\ndependencies=a\n",
		"a.job":      "type=noop\ndependencies=b\n",
		"b.job":      "type=noop\ndependencies=a\n",
		"inner.job":  "type=command\ncommand=true\n",
		"runner.job": "type=flow\nflow.name=inner\n",
	})

	out, err := run(t, "flows", dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, want := range []string{
		"outer (invalid)",
		"  a [noop] <- b",
		"  ! Flow outer contains a dependency cycle",
		"inner (valid)",
		"runner (valid)",
		"  runner [flow] => inner",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestFlows_Empty(t *testing.T) {
	out, err := run(t, "flows", t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "No flows found") {
		t.Errorf("unexpected output:\n%s", out)
	}
}

func TestLogFile(t *testing.T) {
	dir := writeProject(t, map[string]string{"a.job": "type=noop\n"})
	logPath := filepath.Join(t.TempDir(), "flowcheck.log")

	if _, err := run(t, "--verbose", "--log-file", logPath, "validate", dir); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("expected log file: %v", err)
	}
	if !strings.Contains(string(data), "[DEBUG] Loaded 1 job(s) into 1 flow(s)") {
		t.Errorf("expected debug line in log:\n%s", data)
	}
}

func TestLogFile_Failure(t *testing.T) {
	dir := writeProject(t, map[string]string{"b.job": "type=noop\ndependencies=zzz\n"})
	logPath := filepath.Join(t.TempDir(), "flowcheck.log")

	if _, err := run(t, "--log-file", logPath, "validate", dir); err == nil {
		t.Fatal("expected validation failure")
	}

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("expected log file: %v", err)
	}
	if !strings.Contains(string(data), "[ERROR] validation failed with 1 error(s)") {
		t.Errorf("expected failure in log:\n%s", data)
	}
}

func TestLogLevel(t *testing.T) {
	dir := writeProject(t, map[string]string{"b.job": "type=noop\ndependencies=zzz\n"})

	_, stderr, err := runWithStderr(t, "--log-level", "warn", "validate", dir)
	if err == nil {
		t.Fatal("expected validation failure")
	}
	if !strings.Contains(stderr, "[WARN] b cannot find dependency zzz") {
		t.Errorf("expected warn line on stderr:\n%s", stderr)
	}
	if strings.Contains(stderr, "[INFO]") {
		t.Errorf("info lines must be filtered at warn level:\n%s", stderr)
	}

	t.Setenv("FLOWCHECK_LOG_LEVEL", "error")
	_, stderr, _ = runWithStderr(t, "validate", dir)
	if strings.Contains(stderr, "[WARN]") {
		t.Errorf("warn lines must be filtered at error level:\n%s", stderr)
	}
	if !strings.Contains(stderr, "[ERROR] validation failed with 1 error(s)") {
		t.Errorf("expected error line on stderr:\n%s", stderr)
	}
}

func TestHomeLog(t *testing.T) {
	home := t.TempDir()
	t.Setenv("FLOWCHECK_HOME", home)
	config.ResetHome()
	defer config.ResetHome()

	dir := writeProject(t, map[string]string{"a.job": "type=noop\n"})
	if _, err := run(t, "--log", "validate", dir); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(home, "logs", "flowcheck.log"))
	if err != nil {
		t.Fatalf("expected home log file: %v", err)
	}
	if !strings.Contains(string(data), "[INFO] Validating project") {
		t.Errorf("expected info line in log:\n%s", data)
	}
}

func TestParseProperties(t *testing.T) {
	result, err := parseProperties([]string{"USER=test", "url=a=b", "EMPTY="})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result["USER"] != "test" || result["url"] != "a=b" {
		t.Errorf("unexpected result: %v", result)
	}
	if v, ok := result["EMPTY"]; !ok || v != "" {
		t.Errorf("expected EMPTY='', got %q", v)
	}

	for _, bad := range []string{"novalue", "=value"} {
		if _, err := parseProperties([]string{bad}); err == nil {
			t.Errorf("expected error for %q", bad)
		}
	}
}
