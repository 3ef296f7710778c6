//go:build !windows

package platform

import "os/exec"

// setCmdLine is a no-op: only Windows processes receive a raw command line.
func setCmdLine(*exec.Cmd, string) {}
