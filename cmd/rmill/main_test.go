package main

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestParseArgs(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want options
	}{
		{"empty", nil, options{}},
		{"path", []string{"/tmp"}, options{start: "/tmp"}},
		{"help", []string{"-h"}, options{help: true}},
		{"setup with shell", []string{"--setup", "fish"}, options{setup: true, shell: "fish"}},
		{"setup equals", []string{"--setup=zsh"}, options{setup: true, shell: "zsh"}},
		{"setup alone", []string{"-s"}, options{setup: true}},
		{
			"values",
			[]string{"--choosedir", "/tmp/out", "--config=/etc/rmill", "--log", "rmill.log", "docs"},
			options{chooseDir: "/tmp/out", configDir: "/etc/rmill", logFile: "rmill.log", start: "docs"},
		},
		{"dash dash", []string{"--", "-odd-name"}, options{start: "-odd-name"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseArgs(tt.args)
			if err != nil {
				t.Fatalf("parseArgs(%q): %v", tt.args, err)
			}
			if got != tt.want {
				t.Fatalf("parseArgs(%q) = %+v, want %+v", tt.args, got, tt.want)
			}
		})
	}
}

func TestParseArgsErrors(t *testing.T) {
	for _, args := range [][]string{
		{"--choosedir"},
		{"--bogus"},
		{"a", "b"},
	} {
		if _, err := parseArgs(args); !errors.Is(err, errUsage) {
			t.Errorf("parseArgs(%q) error = %v, want usage error", args, err)
		}
	}
}

func TestWriteChosenDir(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "choice")
	if err := os.WriteFile(file, nil, 0o600); err != nil {
		t.Fatal(err)
	}

	if err := writeChosenDir(file, "/srv/data"); err != nil {
		t.Fatalf("writeChosenDir: %v", err)
	}
	data, err := os.ReadFile(file)
	if err != nil || string(data) != "/srv/data" {
		t.Fatalf("file holds %q (%v)", data, err)
	}

	if err := writeChosenDir(filepath.Join(dir, "missing"), "/srv"); err == nil {
		t.Fatalf("a missing file must not be created")
	}
	if err := writeChosenDir(dir, "/srv"); err == nil {
		t.Fatalf("a directory must be rejected")
	}
	if err := writeChosenDir(filepath.Join(dir, "missing"), ""); err != nil {
		t.Fatalf("an empty path writes nothing: %v", err)
	}
}
