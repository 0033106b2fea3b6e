// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Command aafmapdemo wires a talker MapCore and a listener MapCore back to
// back over an in-process queue, standing in for the AVTP network a real
// endpoint pair would use. It feeds synthetic audio into the talker side,
// optionally drops packets to exercise temporal-redundancy recovery, and
// logs periodic throughput and process-resource reports.
package main

import (
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/cnotch/queue"
	"github.com/cnotch/scheduler"
	"github.com/cnotch/xlog"

	"github.com/openavnu-go/aafmap/aaf"
	"github.com/openavnu-go/aafmap/aafmap"
	"github.com/openavnu-go/aafmap/internal/runtimestats"
	"github.com/openavnu-go/aafmap/mcr"
	"github.com/openavnu-go/aafmap/mediaq"
	"github.com/openavnu-go/aafmap/wire"
)

// wireFrame is one hop across the simulated network: either a packet to
// deliver, or a marker that the talker dropped one on purpose.
type wireFrame struct {
	lost bool
	data []byte
}

// counters is the demo's own throughput tally, in the style of
// stats.FlowSample's atomic sample fields.
type counters struct {
	sent      int64
	dropped   int64
	delivered int64
}

func (c *counters) addSent()      { atomic.AddInt64(&c.sent, 1) }
func (c *counters) addDropped()   { atomic.AddInt64(&c.dropped, 1) }
func (c *counters) addDelivered() { atomic.AddInt64(&c.delivered, 1) }

func buildConfig(s *settings) aafmap.Config {
	cfg := aafmap.DefaultConfig()
	cfg.AudioRate = uint32(s.AudioRate)
	cfg.AudioType = aafmap.AudioTypeInt
	cfg.AudioBitDepth = uint8(s.AudioBitDepth)
	cfg.AudioChannels = uint16(s.AudioChannels)
	cfg.TxInterval = uint32(s.TxInterval)
	cfg.PackingFactor = uint32(s.PackingFactor)
	cfg.TemporalRedundantOffsetUsec = uint32(s.RedundancyUsec)
	cfg.ReportSeconds = uint32(s.ReportSeconds)
	if s.SparseMode {
		cfg.SparseMode = aaf.SparseModeEnabled
	}
	return cfg
}

// feedAudio keeps the talker's media queue supplied with a repeating ramp
// pattern, one item per tick, until stop is closed. It is paced to roughly
// the item rate a real audio source would produce, rather than racing ahead
// of the talker as fast as the CPU allows.
func feedAudio(mq *mediaq.Ref, itemPeriod time.Duration, stop <-chan struct{}) {
	ticker := time.NewTicker(itemPeriod)
	defer ticker.Stop()

	var sample byte
	ts := uint32(0)
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
		}

		item := mq.HeadLock()
		for i := range item.PubData {
			item.PubData[i] = sample
			sample++
		}
		item.DataLen = len(item.PubData)
		item.AvtpTime.SetTimestampValid(true)
		item.AvtpTime.SetToTimestamp(ts)
		ts += 1000
		mq.HeadPush()
	}
}

// drainItems discards whatever the listener decodes, which is all this
// demo needs of the consumption side; a real interface module would hand
// item.PubData off to an audio sink instead.
func drainItems(mq *mediaq.Ref, stop <-chan struct{}) {
	for {
		select {
		case <-stop:
			return
		default:
		}
		if item := mq.TailLock(true); item != nil {
			mq.TailPull()
		}
	}
}

func main() {
	s := loadSettings()

	scheduler.SetPanicHandler(func(job *scheduler.ManagedJob, r interface{}) {
		xlog.Errorf("scheduled job panic. tag: %v, recover: %v", job.Tag, r)
	})

	cfg := buildConfig(s)

	talkerMQ := mediaq.NewRef()
	talker := aafmap.NewMapCore(cfg, xlog.L().With(xlog.Fields(xlog.F("role", "talker"))))
	if err := talker.GenInit(talkerMQ); err != nil {
		xlog.Panic(err.Error())
	}
	talker.TxInit()

	listenerMQ := mediaq.NewRef()
	listener := aafmap.NewMapCore(cfg, xlog.L().With(xlog.Fields(xlog.F("role", "listener"))))
	if err := listener.GenInit(listenerMQ); err != nil {
		xlog.Panic(err.Error())
	}
	if err := listener.RxInit(mcr.NoOp{}); err != nil {
		xlog.Panic(err.Error())
	}

	net := queue.NewSyncQueue()
	stop := make(chan struct{})
	stats := &counters{}

	txInterval := time.Second / time.Duration(cfg.TxInterval)
	itemPeriod := txInterval * time.Duration(cfg.PackingFactor)

	go feedAudio(talkerMQ, itemPeriod, stop)
	go drainItems(listenerMQ, stop)

	go func() {
		for {
			f, ok := net.Pop().(*wireFrame)
			if !ok {
				return
			}
			if f.lost {
				listener.RxLost(1)
				continue
			}
			if listener.Rx(f.data, len(f.data)) {
				stats.addDelivered()
			}
		}
	}()

	seq := byte(0)
	packetsSent := 0
	sendingDone := false
	done := make(chan struct{})

	scheduler.PeriodFunc(txInterval, txInterval, func() {
		if sendingDone {
			return
		}
		buf := make([]byte, talker.MaxDataSize())
		buf[2] = seq
		seq++

		n, err := talker.Tx(buf)
		if err != nil {
			return
		}

		packetsSent++
		stats.addSent()

		dropped := s.DropEveryNth > 0 && packetsSent%s.DropEveryNth == 0
		if dropped {
			stats.addDropped()
			net.Push(&wireFrame{lost: true})
		} else {
			net.Push(&wireFrame{data: buf[:n]})
		}

		if s.PacketsToSend > 0 && packetsSent >= s.PacketsToSend {
			sendingDone = true
			close(done)
		}
	}, "aafmapdemo transmit pump")

	reportInterval := time.Duration(s.ReportSeconds) * time.Second
	scheduler.PeriodFunc(reportInterval, reportInterval, func() {
		snap := runtimestats.Snapshot()
		xlog.Infof("sent=%d delivered=%d dropped=%d cpu=%.1f%% priv=%dKB goroutines=%d",
			atomic.LoadInt64(&stats.sent), atomic.LoadInt64(&stats.delivered), atomic.LoadInt64(&stats.dropped),
			snap.CPUPercent, snap.PrivMemoryKB, snap.Goroutines)
	}, "aafmapdemo stats report")

	xlog.Infof("aafmapdemo started: rate=%dHz bitdepth=%d channels=%d packet_header_size=%d",
		cfg.AudioRate, cfg.AudioBitDepth, cfg.AudioChannels, wire.HeaderSize)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-done:
	case recv := <-sig:
		xlog.Warnf("received signal %s, exiting...", recv.String())
	}

	for _, job := range scheduler.Jobs() {
		job.Cancel()
	}
	close(stop)
	net.Signal()

	talker.End()
	listener.End()
	talker.GenEnd()
	listener.GenEnd()
}
