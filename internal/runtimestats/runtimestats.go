// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package runtimestats samples process CPU/memory usage and a handful of Go
// runtime heap counters, for folding into a stream's periodic statistics
// report alongside its temporal-redundancy counters.
package runtimestats

import (
	"runtime"
	"time"

	"github.com/kelindar/process"
)

var startedAt = time.Now()

// Sample is a point-in-time snapshot of process and Go-runtime resource
// usage.
type Sample struct {
	CPUPercent   float64
	PrivMemoryKB int64
	VirtMemoryKB int64
	UptimeSec    int64
	Goroutines   int32
	HeapAllocKB  int64
	HeapSysKB    int64
}

// Snapshot samples the current process's CPU and memory usage via the
// platform process-accounting hooks, paired with a few heap counters from
// runtime.MemStats. It recovers from any panic in the underlying platform
// call, returning a zero Sample rather than bringing down the stream that
// is only trying to log a periodic report.
func Snapshot() Sample {
	defer func() { recover() }()

	var cpu float64
	var priv, virt int64
	process.ProcUsage(&cpu, &priv, &virt)

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	return Sample{
		CPUPercent:   cpu,
		PrivMemoryKB: priv / 1024,
		VirtMemoryKB: virt / 1024,
		UptimeSec:    int64(time.Since(startedAt).Seconds()),
		Goroutines:   int32(runtime.NumGoroutine()),
		HeapAllocKB:  int64(mem.HeapAlloc / 1024),
		HeapSysKB:    int64(mem.HeapSys / 1024),
	}
}
