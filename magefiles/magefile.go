// Package main contains Mage build targets for scripture-links developer tooling.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"

	"github.com/pdiddy/scripture-links/internal/engine"
	"github.com/pdiddy/scripture-links/internal/stats"
	"github.com/pdiddy/scripture-links/pkg/types"
)

const (
	binDir  = "bin"
	binName = "scripture-links"
	cmdPkg  = "./cmd/scripture-links"
)

// Default builds the CLI when mage runs without a target.
var Default = Build

// projectDirs lists the local directories the CLI reads from.
var projectDirs = []string{
	".secrets",
	filepath.Join(".data", "scripture-links"),
}

// Init creates the local secrets and data directories.
func Init() error {
	for _, dir := range projectDirs {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
		fmt.Println("  ", dir)
	}
	fmt.Println("Project directories initialized.")
	return nil
}

// Build compiles the CLI binary into bin/, stamping the version from git.
func Build() error {
	mg.Deps(Vet)
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", binDir, err)
	}
	out := filepath.Join(binDir, binName)
	ldflags := "-X main.version=" + gitVersion()
	if err := sh.RunV("go", "build", "-ldflags", ldflags, "-o", out, cmdPkg); err != nil {
		return fmt.Errorf("go build: %w", err)
	}
	fmt.Printf("Built %s\n", out)
	return nil
}

// Test runs the unit tests with the race detector.
func Test() error {
	return sh.RunV("go", "test", "-race", "-count=1", "./...")
}

// Vet runs go vet over every package.
func Vet() error {
	return sh.RunV("go", "vet", "./...")
}

// Serve runs the HTTP surface against the configured engine.
func Serve() error {
	return sh.RunV("go", "run", cmdPkg, "serve", "--log-level", "info")
}

// Clean removes build output.
func Clean() error {
	return sh.Rm(binDir)
}

// gitVersion describes HEAD, or "dev" outside a repository.
func gitVersion() string {
	v, err := sh.Output("git", "describe", "--tags", "--always", "--dirty")
	if err != nil || v == "" {
		return "dev"
	}
	return v
}

// statsDBPath is the counters database the CLI uses by default, unless
// SCRIPTURE_LINKS_STATS_DB_PATH overrides it.
func statsDBPath() string {
	if p := os.Getenv("SCRIPTURE_LINKS_STATS_DB_PATH"); p != "" {
		return p
	}
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "scripture-links", "stats.db")
	}
	return "stats.db"
}

// Stats prints the persisted usage counters.
func Stats(ctx context.Context) error {
	path := statsDBPath()
	db, err := stats.OpenSQLite(path)
	if err != nil {
		return err
	}
	defer db.Close()

	c := stats.NewStore(db).Load(ctx)
	fmt.Printf("Stats database:        %s\n", path)
	fmt.Printf("References processed:  %d\n", c.ReferencesProcessed)
	fmt.Printf("Text blocks processed: %d\n", c.TextBlocksProcessed)
	return nil
}

// EngineCheck initializes the HTTP engine at SCRIPTURE_LINKS_ENGINE_URL
// (default http://localhost:8790) and resolves a known citation.
func EngineCheck(ctx context.Context) error {
	url := os.Getenv("SCRIPTURE_LINKS_ENGINE_URL")
	if url == "" {
		url = "http://localhost:8790"
	}
	gw, err := engine.NewGateway(engine.NewHTTPEngine(types.EngineConfig{URL: url, MaxRetries: 1}), 0)
	if err != nil {
		return err
	}
	if err := gw.Init(ctx); err != nil {
		return fmt.Errorf("engine at %s: %w", url, err)
	}
	fmt.Printf("Engine %s ready, works: %v\n", url, gw.Metadata().SupportedWorks)

	out, err := gw.Resolve(ctx, "Genesis 1:1")
	if err != nil {
		return err
	}
	if !out.IsResolved() {
		return fmt.Errorf("resolving Genesis 1:1: %s", out.Message)
	}
	fmt.Println("Genesis 1:1 ->", out.URL)
	return nil
}
