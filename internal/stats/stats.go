// Package stats snapshots CPU, memory and host identity. Nothing is cached.
package stats

import (
	"context"
	"fmt"
	"runtime"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/load"
	"github.com/shirou/gopsutil/v3/mem"
)

// UnknownCPU is reported when the model name is unavailable.
const UnknownCPU = "Unknown CPU"

// CPUTimes is the cumulative time one logical CPU spent per mode, in
// milliseconds.
type CPUTimes struct {
	User uint64 `json:"user"`
	Nice uint64 `json:"nice"`
	Sys  uint64 `json:"sys"`
	Idle uint64 `json:"idle"`
	IRQ  uint64 `json:"irq"`
}

// CPU describes the processor.
type CPU struct {
	Model string     `json:"model"`
	Cores int        `json:"cores"`
	Load  [3]float64 `json:"load"`
	Times []CPUTimes `json:"times"`
}

// Memory is in bytes. Percentage is used/total with two decimals.
type Memory struct {
	Total      uint64 `json:"total"`
	Free       uint64 `json:"free"`
	Used       uint64 `json:"used"`
	Percentage string `json:"percentage"`
}

// System identifies the host.
type System struct {
	Platform string `json:"platform"`
	Arch     string `json:"arch"`
	Release  string `json:"release"`
	Uptime   uint64 `json:"uptime"`
	Hostname string `json:"hostname"`
}

// Snapshot is a point-in-time reading.
type Snapshot struct {
	CPU    CPU    `json:"cpu"`
	Memory Memory `json:"memory"`
	System System `json:"system"`
}

// Collector queries the OS on every call.
type Collector struct{}

// New creates a Collector.
func New() *Collector {
	return &Collector{}
}

// Snapshot gathers the current readings. Individual probes that fail leave
// their fields zeroed.
func (c *Collector) Snapshot(ctx context.Context) Snapshot {
	var s Snapshot

	s.CPU.Model = UnknownCPU
	if infos, err := cpu.InfoWithContext(ctx); err == nil && len(infos) > 0 && infos[0].ModelName != "" {
		s.CPU.Model = infos[0].ModelName
	}
	s.CPU.Cores = runtime.NumCPU()
	if n, err := cpu.CountsWithContext(ctx, true); err == nil && n > 0 {
		s.CPU.Cores = n
	}
	if avg, err := load.AvgWithContext(ctx); err == nil {
		s.CPU.Load = [3]float64{avg.Load1, avg.Load5, avg.Load15}
	}
	s.CPU.Times = []CPUTimes{}
	if times, err := cpu.TimesWithContext(ctx, true); err == nil {
		for _, t := range times {
			s.CPU.Times = append(s.CPU.Times, CPUTimes{
				User: millis(t.User),
				Nice: millis(t.Nice),
				Sys:  millis(t.System),
				Idle: millis(t.Idle),
				IRQ:  millis(t.Irq),
			})
		}
	}

	if vm, err := mem.VirtualMemoryWithContext(ctx); err == nil {
		s.Memory = memory(vm.Total, vm.Available)
	}

	s.System.Platform = runtime.GOOS
	s.System.Arch = runtime.GOARCH
	if info, err := host.InfoWithContext(ctx); err == nil {
		s.System.Release = info.KernelVersion
		s.System.Uptime = info.Uptime
		s.System.Hostname = info.Hostname
	}
	return s
}

func memory(total, free uint64) Memory {
	m := Memory{Total: total, Free: free, Percentage: "0.00"}
	if free <= total {
		m.Used = total - free
	}
	if total > 0 {
		m.Percentage = fmt.Sprintf("%.2f", float64(m.Used)/float64(total)*100)
	}
	return m
}

func millis(seconds float64) uint64 {
	if seconds <= 0 {
		return 0
	}
	return uint64(seconds * 1000)
}
