// Command phenocat-version bumps the semantic version stored in the VERSION
// file. Bumping a component zeroes everything below it.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
)

func main() {
	var (
		file      = flag.String("file", "VERSION", "path to the version file")
		component = flag.String("bump", "", "component to bump: major, minor or patch")
		printOnly = flag.Bool("print", false, "print the current version and exit")
	)
	flag.Parse()

	current, err := readVersion(*file)
	if err != nil {
		log.Fatalf("Failed to read version: %v", err)
	}

	if *printOnly {
		fmt.Println(current.String())
		return
	}

	if *component == "" {
		log.Fatal("One of -bump major|minor|patch or -print is required")
	}

	next, err := current.bump(*component)
	if err != nil {
		log.Fatalf("Failed to bump version: %v", err)
	}

	if err := os.WriteFile(*file, []byte(next.String()+"\n"), 0o644); err != nil {
		log.Fatalf("Failed to write version: %v", err)
	}
	fmt.Printf("%s -> %s\n", current, next)
}

type semver struct {
	major, minor, patch int
}

func (v semver) String() string {
	return fmt.Sprintf("%d.%d.%d", v.major, v.minor, v.patch)
}

func (v semver) bump(component string) (semver, error) {
	switch component {
	case "major":
		return semver{major: v.major + 1}, nil
	case "minor":
		return semver{major: v.major, minor: v.minor + 1}, nil
	case "patch":
		return semver{major: v.major, minor: v.minor, patch: v.patch + 1}, nil
	default:
		return semver{}, fmt.Errorf("unknown component %q", component)
	}
}

func readVersion(path string) (semver, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return semver{}, err
	}
	return parseVersion(strings.TrimSpace(string(raw)))
}

func parseVersion(s string) (semver, error) {
	var v semver
	n, err := fmt.Sscanf(s, "%d.%d.%d", &v.major, &v.minor, &v.patch)
	if err != nil || n != 3 {
		return semver{}, fmt.Errorf("malformed version %q, want MAJOR.MINOR.PATCH", s)
	}
	if v.major < 0 || v.minor < 0 || v.patch < 0 {
		return semver{}, fmt.Errorf("negative component in version %q", s)
	}
	return v, nil
}
