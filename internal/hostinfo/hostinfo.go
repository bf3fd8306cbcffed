// Package hostinfo collects the machine facts recorded alongside benchmark
// results, so a report identifies where its numbers came from.
package hostinfo

import (
	"os"
	"runtime"
)

type Info struct {
	Hostname  string `json:"hostname"`
	OS        string `json:"os"`
	Arch      string `json:"arch"`
	CPUs      int    `json:"cpus"`
	GoVersion string `json:"go_version"`
	Kernel    string `json:"kernel,omitempty"`
	Machine   string `json:"machine,omitempty"`
}

// Collect gathers host facts. Missing pieces are left empty rather than
// failing the caller; a benchmark report is still useful without them.
func Collect() Info {
	info := Info{
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
		CPUs:      runtime.NumCPU(),
		GoVersion: runtime.Version(),
	}
	if name, err := os.Hostname(); err == nil {
		info.Hostname = name
	}
	fillUname(&info)
	return info
}
