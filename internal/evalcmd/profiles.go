package evalcmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/versebench/versebench/internal/transform"
)

func executeProfilesList(w io.Writer, path string) error {
	registry, err := loadRegistry(path)
	if err != nil {
		return err
	}

	for _, p := range registry.Set().All() {
		fmt.Fprintf(w, "%s/%s", p.Scope, p.Name)
		if p.Description != "" {
			fmt.Fprintf(w, "  %s", p.Description)
		}
		fmt.Fprintln(w)
		for _, s := range p.Steps {
			state := "on "
			if !s.Enabled {
				state = "off"
			}
			fmt.Fprintf(w, "  %4d %s %-22s %s\n", s.Order, state, s.Type, s.Description)
		}
	}
	return nil
}

func executeProfilesValidate(w io.Writer, path string) error {
	set, err := transform.LoadProfiles(path)
	if err != nil {
		return err
	}

	warnings := 0
	for _, p := range set.All() {
		for _, warning := range p.Warnings() {
			fmt.Fprintf(w, "%s/%s: %s\n", p.Scope, p.Name, warning)
			warnings++
		}
	}
	if warnings > 0 {
		return fmt.Errorf("%d step(s) in %s will be skipped", warnings, path)
	}
	fmt.Fprintf(w, "%s: %d profile(s) OK\n", path, len(set.All()))
	return nil
}

func executeProfilesExport(w io.Writer, path, format string) error {
	registry, err := loadRegistry(path)
	if err != nil {
		return err
	}
	data, err := transform.MarshalProfiles(registry.Set().All(), strings.ToLower(format))
	if err != nil {
		return fmt.Errorf("failed to export profiles: %w", err)
	}
	_, err = w.Write(data)
	return err
}

// executeProfilesTrace prints text after every step of one profile.
func executeProfilesTrace(w io.Writer, path string, scope transform.Scope, name, text string) error {
	registry, err := loadRegistry(path)
	if err != nil {
		return err
	}
	p, err := registry.Set().Get(scope, name)
	if err != nil {
		return err
	}

	pipeline := p.Pipeline()
	fmt.Fprintf(w, "%s/%s\n", p.Scope, p.Name)
	fmt.Fprintf(w, "  input                       %q\n", text)
	for _, e := range pipeline.Trace(text) {
		fmt.Fprintf(w, "  %4d %-22s %q\n", e.Order, e.Type, e.Output)
	}
	for _, warning := range pipeline.Warnings() {
		fmt.Fprintf(w, "  skipped: %s\n", warning)
	}
	return nil
}
