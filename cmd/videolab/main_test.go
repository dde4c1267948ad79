package main

import "testing"

func TestVersionCommand(t *testing.T) {
	out, _, err := runCLI(t, []string{"version"}, "")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	requireContains(t, out, "videolab")
}

func TestRootHelpListsCommands(t *testing.T) {
	out, _, err := runCLI(t, []string{"--help"}, "")
	if err != nil {
		t.Fatalf("help: %v", err)
	}
	for _, name := range []string{
		"info", "detect", "export", "preview", "snapshot", "crop-rect",
		"project", "marker", "queue", "worker", "config", "version",
	} {
		requireContains(t, out, name)
	}
}
