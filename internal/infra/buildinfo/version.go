package buildinfo

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

const unset = "unknown"

// Set via -ldflags -X.
var (
	Version   = "dev"
	Commit    = unset
	BuildTime = unset
)

// Info identifies a build and the machine it runs on.
type Info struct {
	Version   string `json:"version" yaml:"version"`
	Commit    string `json:"commit" yaml:"commit"`
	BuildTime string `json:"build_time" yaml:"build_time"`
	GoVersion string `json:"go_version" yaml:"go_version"`
	Platform  string `json:"platform" yaml:"platform"`
	CPUs      int    `json:"cpus" yaml:"cpus"`
}

// Get returns the build information of the running binary.
func Get() Info {
	info := Info{
		Version:   Version,
		Commit:    Commit,
		BuildTime: BuildTime,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
		CPUs:      runtime.GOMAXPROCS(0),
	}
	if bi, ok := debug.ReadBuildInfo(); ok {
		info = stamp(info, bi)
	}
	return info
}

// stamp fills fields that ldflags left at their defaults from the
// toolchain's embedded build info.
func stamp(info Info, bi *debug.BuildInfo) Info {
	if info.Version == "dev" && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		info.Version = bi.Main.Version
	}
	fromVCS, modified := false, false
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			if info.Commit == unset {
				info.Commit, fromVCS = s.Value, true
			}
		case "vcs.time":
			if info.BuildTime == unset {
				info.BuildTime = s.Value
			}
		case "vcs.modified":
			modified = s.Value == "true"
		}
	}
	if fromVCS && modified {
		info.Commit += "-dirty"
	}
	return info
}

// String formats i for the version command and --version.
func (i Info) String() string {
	commit := i.Commit
	if len(commit) > 12 {
		commit = commit[:12]
	}
	return fmt.Sprintf("%s (%s, %s, %s, %d CPUs)", i.Version, commit, i.GoVersion, i.Platform, i.CPUs)
}

// String is Get().String().
func String() string {
	return Get().String()
}
