package platform

import (
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"sort"
	"strings"

	"github.com/shirou/gopsutil/v3/disk"
)

var driveRe = regexp.MustCompile(`^[A-Za-z]:`)

// Windows resolves .lnk files through the WScript.Shell COM object and
// enumerates drive letters from the partition table.
type Windows struct {
	// PowerShell is the executable used for shortcut resolution.
	PowerShell string
	partitions func(ctx context.Context) ([]disk.PartitionStat, error)
}

// NewWindows returns the Windows platform.
func NewWindows() *Windows {
	return &Windows{
		PowerShell: "powershell",
		partitions: func(ctx context.Context) ([]disk.PartitionStat, error) {
			return disk.PartitionsWithContext(ctx, false)
		},
	}
}

func (w *Windows) Name() string            { return "windows" }
func (w *Windows) Root() string            { return `C:\` }
func (w *Windows) SupportsShortcuts() bool { return true }

// ResolveShortcut asks PowerShell for the shortcut's TargetPath.
func (w *Windows) ResolveShortcut(ctx context.Context, path string) (string, error) {
	out, err := exec.CommandContext(ctx, w.PowerShell, "-NoProfile", "-NonInteractive", "-Command", shortcutScript(path)).Output()
	if err != nil {
		return "", fmt.Errorf("platform: resolve shortcut %s: %w", path, err)
	}
	target := strings.TrimSpace(string(out))
	if target == "" {
		return "", fmt.Errorf("platform: shortcut %s has no target", path)
	}
	return target, nil
}

// shortcutScript builds the PowerShell snippet reading a shortcut target.
// Single quotes are doubled for the PowerShell literal.
func shortcutScript(path string) string {
	p := strings.ReplaceAll(path, "/", `\`)
	p = strings.ReplaceAll(p, "'", "''")
	return fmt.Sprintf("$sh = New-Object -ComObject WScript.Shell; $sh.CreateShortcut('%s').TargetPath", p)
}

// Drives returns drive roots such as `C:\`, falling back to `C:\` alone.
func (w *Windows) Drives(ctx context.Context) ([]string, error) {
	parts, err := w.partitions(ctx)
	if err != nil || len(parts) == 0 {
		return []string{w.Root()}, nil
	}
	seen := make(map[string]struct{}, len(parts))
	var out []string
	for _, p := range parts {
		letter := driveRe.FindString(p.Mountpoint)
		if letter == "" {
			continue
		}
		root := strings.ToUpper(letter) + `\`
		if _, ok := seen[root]; ok {
			continue
		}
		seen[root] = struct{}{}
		out = append(out, root)
	}
	if len(out) == 0 {
		return []string{w.Root()}, nil
	}
	sort.Strings(out)
	return out, nil
}

// ShellCommand runs line through cmd.exe. The command line is passed
// verbatim so quotes inside line reach cmd.exe untouched.
func (w *Windows) ShellCommand(line string) *exec.Cmd {
	cmd := exec.Command("cmd.exe", "/d", "/s", "/c", line)
	setCmdLine(cmd, cmdLine(line))
	return cmd
}

// cmdLine wraps line in one pair of quotes, which /s strips again.
func cmdLine(line string) string {
	return `cmd.exe /d /s /c "` + line + `"`
}
