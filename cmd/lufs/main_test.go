package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/soundyai/loudness/internal/testutil"
)

const testRate = 48000

func fixture(t *testing.T, dir, name string, levelDB, seconds float64) string {
	t.Helper()

	path := filepath.Join(dir, name)
	x := testutil.SineDBFS(1000, levelDB, testRate, seconds)
	testutil.WriteWAV(t, path, testRate, 16, x, x)

	return path
}

func noEnv(string) string { return "" }

func TestRunTable(t *testing.T) {
	dir := t.TempDir()
	a := fixture(t, dir, "a.wav", -23, 5)
	b := fixture(t, dir, "b.wav", -14, 5)

	var stdout, stderr bytes.Buffer
	if code := run([]string{"-log-level", "error", a, b}, noEnv, &stdout, &stderr); code != 0 {
		t.Fatalf("exit %d, stderr: %s", code, stderr.String())
	}

	lines := strings.Split(strings.TrimSpace(stdout.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines:\n%s", len(lines), stdout.String())
	}

	if !strings.HasPrefix(lines[0], "FILE") {
		t.Errorf("header = %q", lines[0])
	}

	if !strings.Contains(lines[1], "a.wav") || !strings.Contains(lines[1], "-23.0 LUFS") || !strings.Contains(lines[1], "EBU R128") {
		t.Errorf("row a = %q", lines[1])
	}

	if !strings.Contains(lines[2], "b.wav") || !strings.Contains(lines[2], "-14.0 LUFS") {
		t.Errorf("row b = %q", lines[2])
	}
}

func TestRunJSONKeepsInputOrder(t *testing.T) {
	dir := t.TempDir()

	var inputs []string
	for i, level := range []float64{-30, -10, -20, -25} {
		inputs = append(inputs, fixture(t, dir, string(rune('a'+i))+".wav", level, 4))
	}

	var stdout, stderr bytes.Buffer
	args := append([]string{"-format", "json", "-jobs", "3", "-log-level", "error"}, inputs...)
	if code := run(args, noEnv, &stdout, &stderr); code != 0 {
		t.Fatalf("exit %d, stderr: %s", code, stderr.String())
	}

	var got []struct {
		Path   string `json:"path"`
		Report struct {
			Loudness struct {
				Integrated float64 `json:"lufs_integrated"`
			} `json:"loudness"`
		} `json:"report"`
	}

	if err := json.Unmarshal(stdout.Bytes(), &got); err != nil {
		t.Fatalf("Unmarshal: %v\n%s", err, stdout.String())
	}

	want := []float64{-30, -10, -20, -25}
	for i, o := range got {
		if o.Path != inputs[i] {
			t.Errorf("outcome %d path = %s, want %s", i, o.Path, inputs[i])
		}

		testutil.RequireWithin(t, o.Path, o.Report.Loudness.Integrated, want[i], 0.1)
	}
}

func TestRunWritesReports(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "reports")
	in := fixture(t, dir, "mix.wav", -18, 4)

	var stdout, stderr bytes.Buffer
	if code := run([]string{"-out", out, "-log-level", "error", in}, noEnv, &stdout, &stderr); code != 0 {
		t.Fatalf("exit %d, stderr: %s", code, stderr.String())
	}

	data, err := os.ReadFile(filepath.Join(out, "mix.lufs.json"))
	if err != nil {
		t.Fatalf("report not written: %v", err)
	}

	if !bytes.Contains(data, []byte(`"schema_version": 2`)) {
		t.Errorf("report = %s", data)
	}
}

func TestRunReportsSharingBaseName(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "reports")

	for _, sub := range []string{"a", "b"} {
		if err := os.Mkdir(filepath.Join(dir, sub), 0o755); err != nil {
			t.Fatal(err)
		}
	}

	quiet := fixture(t, filepath.Join(dir, "a"), "mix.wav", -30, 4)
	loud := fixture(t, filepath.Join(dir, "b"), "mix.wav", -12, 4)

	var stdout, stderr bytes.Buffer
	if code := run([]string{"-out", out, "-jobs", "2", "-log-level", "error", quiet, loud}, noEnv, &stdout, &stderr); code != 0 {
		t.Fatalf("exit %d, stderr: %s", code, stderr.String())
	}

	entries, err := os.ReadDir(out)
	if err != nil {
		t.Fatal(err)
	}

	if len(entries) != 2 {
		t.Fatalf("wrote %d reports for 2 inputs", len(entries))
	}

	for name, want := range map[string]float64{"mix.lufs.json": -30, "mix-2.lufs.json": -12} {
		data, err := os.ReadFile(filepath.Join(out, name))
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}

		var r struct {
			Loudness struct {
				Integrated float64 `json:"lufs_integrated"`
			} `json:"loudness"`
		}

		if err := json.Unmarshal(data, &r); err != nil {
			t.Fatalf("%s: %v", name, err)
		}

		testutil.RequireWithin(t, name, r.Loudness.Integrated, want, 0.1)
	}
}

func TestRunFailures(t *testing.T) {
	dir := t.TempDir()
	good := fixture(t, dir, "good.wav", -20, 4)
	missing := filepath.Join(dir, "missing.wav")

	var stdout, stderr bytes.Buffer
	if code := run([]string{"-log-level", "error", good, missing}, noEnv, &stdout, &stderr); code != 1 {
		t.Fatalf("exit %d, want 1", code)
	}

	if !strings.Contains(stdout.String(), "error:") {
		t.Errorf("table should show the failure:\n%s", stdout.String())
	}

	if code := run(nil, noEnv, &stdout, &stderr); code != 2 {
		t.Errorf("no inputs: exit %d, want 2", code)
	}

	stderr.Reset()
	if code := run([]string{"-h"}, noEnv, &stdout, &stderr); code != 0 || !strings.Contains(stderr.String(), "Usage: lufs") {
		t.Errorf("-h: exit %d, stderr %q", code, stderr.String())
	}
}
