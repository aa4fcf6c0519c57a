// Package metrics samples local system load for the performance monitor
// panel: CPU, memory, disk usage and network throughput.
package metrics

import (
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"
	gopsnet "github.com/shirou/gopsutil/v3/net"
)

// Snapshot is one sample of system metrics sent to the frontend
type Snapshot struct {
	Timestamp      int64       `json:"timestamp"`
	CPUPercent     float64     `json:"cpuPercent"`
	PerCorePercent []float64   `json:"perCorePercent"`
	Memory         MemoryInfo  `json:"memory"`
	Disks          []DiskInfo  `json:"disks"`
	Network        NetworkInfo `json:"network"`
	UptimeSeconds  uint64      `json:"uptimeSeconds"`
}

// MemoryInfo summarizes virtual memory
type MemoryInfo struct {
	TotalBytes uint64  `json:"totalBytes"`
	UsedBytes  uint64  `json:"usedBytes"`
	Percent    float64 `json:"percent"`
}

// DiskInfo summarizes one mounted filesystem
type DiskInfo struct {
	Mount      string  `json:"mount"`
	TotalBytes uint64  `json:"totalBytes"`
	UsedBytes  uint64  `json:"usedBytes"`
	Percent    float64 `json:"percent"`
}

// NetworkInfo carries cumulative counters plus rates computed against the
// previous sample
type NetworkInfo struct {
	BytesSent     uint64  `json:"bytesSent"`
	BytesRecv     uint64  `json:"bytesRecv"`
	SendPerSecond float64 `json:"sendPerSecond"`
	RecvPerSecond float64 `json:"recvPerSecond"`
}

// Sampler takes snapshots and remembers the previous network counters so
// each snapshot carries per-interval rates.
type Sampler struct {
	prevNet  *gopsnet.IOCountersStat
	prevTime time.Time
}

// NewSampler creates a sampler with no history
func NewSampler() *Sampler {
	return &Sampler{}
}

// Sample takes a snapshot. Sources that fail are left zeroed rather than
// failing the whole sample; a dashboard with a missing disk gauge beats no
// dashboard.
func (s *Sampler) Sample() Snapshot {
	now := time.Now()
	snap := Snapshot{Timestamp: now.UnixMilli()}

	if overall, err := cpu.Percent(0, false); err == nil && len(overall) > 0 {
		snap.CPUPercent = overall[0]
	}
	if perCore, err := cpu.Percent(0, true); err == nil {
		snap.PerCorePercent = perCore
	}

	if vm, err := mem.VirtualMemory(); err == nil {
		snap.Memory = MemoryInfo{
			TotalBytes: vm.Total,
			UsedBytes:  vm.Used,
			Percent:    vm.UsedPercent,
		}
	}

	if parts, err := disk.Partitions(false); err == nil {
		for _, p := range parts {
			usage, err := disk.Usage(p.Mountpoint)
			if err != nil {
				continue
			}
			snap.Disks = append(snap.Disks, DiskInfo{
				Mount:      p.Mountpoint,
				TotalBytes: usage.Total,
				UsedBytes:  usage.Used,
				Percent:    usage.UsedPercent,
			})
		}
	}

	if counters, err := gopsnet.IOCounters(false); err == nil && len(counters) > 0 {
		total := counters[0]
		snap.Network = NetworkInfo{
			BytesSent: total.BytesSent,
			BytesRecv: total.BytesRecv,
		}
		snap.Network.SendPerSecond, snap.Network.RecvPerSecond =
			rates(s.prevNet, &total, s.prevTime, now)
		s.prevNet = &total
		s.prevTime = now
	}

	if uptime, err := host.Uptime(); err == nil {
		snap.UptimeSeconds = uptime
	}

	return snap
}

// rates converts two cumulative counter samples into bytes per second.
// The first sample and counter resets report zero.
func rates(prev, cur *gopsnet.IOCountersStat, prevTime, curTime time.Time) (send, recv float64) {
	if prev == nil || prevTime.IsZero() {
		return 0, 0
	}
	elapsed := curTime.Sub(prevTime).Seconds()
	if elapsed <= 0 {
		return 0, 0
	}
	if cur.BytesSent >= prev.BytesSent {
		send = float64(cur.BytesSent-prev.BytesSent) / elapsed
	}
	if cur.BytesRecv >= prev.BytesRecv {
		recv = float64(cur.BytesRecv-prev.BytesRecv) / elapsed
	}
	return send, recv
}
