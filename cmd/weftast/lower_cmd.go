package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/maruel/natural"
	"github.com/weftlang/weft/internal/lower"
	"github.com/weftlang/weft/internal/sourcecode"
	"github.com/weftlang/weft/internal/syntax"
)

type lowerCmd struct {
	Recovery bool `xor:"mode" help:"Recover from errors and report all of them."`
	FailFast bool `xor:"mode" name:"fail-fast" help:"Stop at the first error of each unit, overrides the configuration file."`

	Format      string `enum:",json,digest" default:"" help:"Output format (json or digest), overrides the configuration file."`
	Entry       string `placeholder:"ENTRY" help:"Entry point of all units (unit, module, module-head, expression, reference, interactive-input)."`
	SourceDir   string `name:"source-dir" short:"d" type:"existingdir" default:"." help:"Directory the patterns are relative to."`
	Parallelism int    `short:"j" help:"Maximum number of units lowered at the same time, overrides the configuration file."`
	CacheSize   int    `name:"cache-size" help:"Number of fail-fast results cached by unit name, code and entry point, 0 disables the cache. Overrides the configuration file."`

	Profile    string `placeholder:"MODE" help:"Profile the command (cpu, mem, trace, block, mutex or goroutine)."`
	ProfileDir string `name:"profile-dir" type:"path" default:"." help:"Directory of the profile files."`

	Patterns []string `arg:"" name:"pattern" help:"Glob patterns of serialized units, ** matches any number of directories."`
}

type loadedUnit struct {
	path string
	job  lower.Job
}

func (c *lowerCmd) Run(env *cmdEnv) error {
	opts, format, err := c.options(env)
	if err != nil {
		return err
	}

	if c.Profile != "" {
		if _, ok := profileModes[c.Profile]; !ok {
			return fmt.Errorf("invalid profile mode %q, valid modes are %s", c.Profile, strings.Join(profileModeNames(), ", "))
		}
		defer startProfiling(c.Profile, c.ProfileDir).Stop()
	}

	paths, err := findUnitFiles(c.SourceDir, c.Patterns)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return fmt.Errorf("no file matches %s in %s", strings.Join(c.Patterns, " "), c.SourceDir)
	}

	units := make([]loadedUnit, 0, len(paths))
	for _, path := range paths {
		unit, err := c.loadUnit(path)
		if err != nil {
			return err
		}
		units = append(units, unit)
	}

	jobs := make([]lower.Job, len(units))
	for i, unit := range units {
		jobs[i] = unit.job
	}

	env.logger.Debug().Int("units", len(jobs)).Bool("recovery", opts.Recovery).Msg("lowering units")

	//the error of each failed unit is also in its result
	results, err := lower.LowerAll(context.Background(), jobs, opts)
	if results == nil {
		return err
	}

	if opts.Cache != nil {
		env.logger.Debug().Int("cached", opts.Cache.Len()).Int("size", opts.Cache.Size()).Msg("unit cache")
	}

	reports := make([]unitReport, len(units))
	failed := 0
	for i, unit := range units {
		reports[i] = newUnitReport(unit.path, unit.job, results[i])
		if !reports[i].Ok {
			failed++
		}
	}

	if err := writeReports(env.out, format, reports); err != nil {
		return err
	}

	if failed > 0 {
		env.logger.Warn().Int("failed", failed).Int("units", len(units)).Msg("some units have errors")
		return errUnitsFailed
	}
	return nil
}

// options merges the flags and the configuration file.
func (c *lowerCmd) options(env *cmdEnv) (lower.Options, string, error) {
	cfg := env.config

	switch {
	case c.Recovery:
		cfg.Recovery = true
	case c.FailFast:
		cfg.Recovery = false
	}
	if c.Format != "" {
		cfg.Format = c.Format
	}
	if c.Parallelism < 0 {
		return lower.Options{}, "", fmt.Errorf("parallelism should be positive or zero")
	}
	if c.Parallelism > 0 {
		cfg.Parallelism = c.Parallelism
	}
	if c.CacheSize < 0 {
		return lower.Options{}, "", fmt.Errorf("cache size should be positive or zero")
	}
	if c.CacheSize > 0 {
		cfg.CacheSize = c.CacheSize
	}

	if c.Entry != "" {
		if _, ok := lower.EntryByName(c.Entry); !ok {
			return lower.Options{}, "", fmt.Errorf("unknown entry point %q", c.Entry)
		}
	}

	logger := env.logger
	opts := lower.Options{
		Recovery:    cfg.Recovery,
		Logger:      &logger,
		Parallelism: cfg.Parallelism,
	}

	//units sharing a name, a code and an entry point are lowered once
	if cfg.CacheSize > 0 && !cfg.Recovery {
		opts.Cache = lower.NewUnitCache(cfg.CacheSize)
	}
	return opts, cfg.Format, nil
}

// findUnitFiles returns the slash-separated paths relative to dir of the files matching at least one pattern,
// in natural order.
func findUnitFiles(dir string, patterns []string) ([]string, error) {
	fsys := os.DirFS(dir)
	found := map[string]struct{}{}

	for _, pattern := range patterns {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid pattern %q", pattern)
		}

		matches, err := doublestar.Glob(fsys, pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, err
		}
		for _, match := range matches {
			found[match] = struct{}{}
		}
	}

	paths := make([]string, 0, len(found))
	for path := range found {
		paths = append(paths, path)
	}
	sort.Sort(natural.StringSlice(paths))
	return paths, nil
}

func (c *lowerCmd) loadUnit(path string) (loadedUnit, error) {
	fullPath := filepath.Join(c.SourceDir, filepath.FromSlash(path))

	data, err := os.ReadFile(fullPath)
	if err != nil {
		return loadedUnit{}, err
	}

	file, err := syntax.DecodeYAMLFile(data)
	if err != nil {
		return loadedUnit{}, fmt.Errorf("%s: %w", path, err)
	}

	entryName := c.Entry
	if entryName == "" {
		entryName = file.Entry
	}
	entry := lower.EntryUnit
	if entryName != "" {
		var ok bool
		entry, ok = lower.EntryByName(entryName)
		if !ok {
			return loadedUnit{}, fmt.Errorf("%s: unknown entry point %q", path, entryName)
		}
	}

	name := file.Name
	if name == "" {
		name = "/" + path
	}

	return loadedUnit{
		path: path,
		job: lower.Job{
			Entry: entry,
			Unit: sourcecode.SourceFile{
				NameString:  name,
				Resource:    fullPath,
				ResourceDir: filepath.Dir(fullPath),
				CodeString:  file.Source,
			},
			Tree: file.Tree,
		},
	}, nil
}
