package entities

import "strings"

// Release records what a run produced.
type Release struct {
	Name            string
	PreviousVersion string
	Version         string
	Tag             string
	ScratchBranch   string
	Artifact        string
	ManifestPaths   []string
}

// RenderMessage substitutes "{version}" and "{name}" in a message template.
func RenderMessage(template, name, version string) string {
	return strings.NewReplacer("{version}", version, "{name}", name).Replace(template)
}
