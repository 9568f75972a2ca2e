package main

import (
	"slices"

	"github.com/pkg/profile"
)

var profileModes = map[string]func(*profile.Profile){
	"cpu":       profile.CPUProfile,
	"mem":       profile.MemProfile,
	"trace":     profile.TraceProfile,
	"block":     profile.BlockProfile,
	"mutex":     profile.MutexProfile,
	"goroutine": profile.GoroutineProfile,
}

type stopper interface{ Stop() }

type noProfiling struct{}

func (noProfiling) Stop() {}

// startProfiling starts a profile of the given mode writing to dir, an empty mode disables profiling.
func startProfiling(mode string, dir string) stopper {
	fn, ok := profileModes[mode]
	if !ok {
		return noProfiling{}
	}
	return profile.Start(fn, profile.ProfilePath(dir), profile.Quiet, profile.NoShutdownHook)
}

func profileModeNames() []string {
	var names []string
	for name := range profileModes {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
