// Package sysinfo captures a snapshot of host identity at run start.
// Optional fields are left empty rather than erroring when a source is
// unavailable.
package sysinfo

import (
	"bytes"
	"os"
	"os/exec"
	"runtime"
	"strings"

	"golang.org/x/sys/unix"

	"github.com/benchdeck/benchdeck/internal/result"
)

// Collect gathers the system snapshot. It never fails; fields that
// cannot be determined are left at their zero value.
func Collect() result.SystemInfo {
	info := result.SystemInfo{
		Platform: runtime.GOOS,
		Machine:  runtime.GOARCH,
		CPUCount: runtime.NumCPU(),
	}

	if hostname, err := os.Hostname(); err == nil {
		info.Hostname = hostname
	}

	var uts unix.Utsname
	if err := unix.Uname(&uts); err == nil {
		info.Kernel = charsToString(uts.Sysname[:]) + " " + charsToString(uts.Release[:])
		info.Processor = charsToString(uts.Machine[:])
	}
	if info.Processor == "" {
		info.Processor = runtime.GOARCH
	}

	info.OS = osPrettyName()
	info.CPUModel = cpuModel()

	var si unix.Sysinfo_t
	if err := unix.Sysinfo(&si); err == nil {
		info.MemoryTotalBytes = uint64(si.Totalram) * uint64(si.Unit)
	}

	info.GPU = gpuName()

	return info
}

func charsToString(chars []byte) string {
	if i := bytes.IndexByte(chars, 0); i >= 0 {
		chars = chars[:i]
	}
	return string(chars)
}

func osPrettyName() string {
	data, err := os.ReadFile("/etc/os-release")
	if err != nil {
		return ""
	}
	for _, line := range strings.Split(string(data), "\n") {
		if value, ok := strings.CutPrefix(line, "PRETTY_NAME="); ok {
			return strings.Trim(value, `"`)
		}
	}
	return ""
}

func cpuModel() string {
	data, err := os.ReadFile("/proc/cpuinfo")
	if err != nil {
		return ""
	}
	for _, line := range strings.Split(string(data), "\n") {
		if name, value, found := strings.Cut(line, ":"); found {
			if strings.TrimSpace(name) == "model name" {
				return strings.TrimSpace(value)
			}
		}
	}
	return ""
}

func gpuName() string {
	if _, err := exec.LookPath("nvidia-smi"); err != nil {
		return ""
	}
	out, err := exec.Command("nvidia-smi", "--query-gpu=name", "--format=csv,noheader").Output()
	if err != nil {
		return ""
	}
	name, _, _ := strings.Cut(strings.TrimSpace(string(out)), "\n")
	return name
}
