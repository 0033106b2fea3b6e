// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package main

import (
	"flag"
	"os"
	"strings"

	cfg "github.com/cnotch/loader"
	"github.com/cnotch/xlog"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"
)

// Name identifies this demo for its config file and environment prefix.
const Name = "aafmapdemo"

// logSettings is the demo's own logging configuration: console output by
// default, or a console+rotating-file tee when ToFile is set.
type logSettings struct {
	Level      xlog.Level `json:"level"`
	ToFile     bool       `json:"tofile"`
	Filename   string     `json:"filename"`
	MaxSize    int        `json:"maxsize"`
	MaxDays    int        `json:"maxdays"`
	MaxBackups int        `json:"maxbackups"`
	Compress   bool       `json:"compress"`
}

func (l *logSettings) initFlags() {
	flag.Var(&l.Level, "log-level", "set the log level to output")
	flag.BoolVar(&l.ToFile, "log-tofile", false, "also write logs to a rotating file, alongside stderr")
	flag.StringVar(&l.Filename, "log-filename", "./logs/"+Name+".log", "log file path, when -log-tofile is set")
	flag.IntVar(&l.MaxSize, "log-maxsize", 20, "maximum log file size in megabytes before rotation")
	flag.IntVar(&l.MaxDays, "log-maxdays", 7, "maximum days to retain old log files")
	flag.IntVar(&l.MaxBackups, "log-maxbackups", 14, "maximum number of old log files to retain")
	flag.BoolVar(&l.Compress, "log-compress", false, "gzip-compress rotated log files")
}

func (l *logSettings) initLogger() {
	if !l.ToFile {
		xlog.ReplaceGlobal(xlog.New(
			xlog.NewCore(xlog.NewConsoleEncoder(xlog.LstdFlags|xlog.Lmicroseconds), xlog.Lock(os.Stderr), l.Level),
			xlog.AddCaller()))
		return
	}

	fileWriter := &lumberjack.Logger{
		Filename:   l.Filename,
		MaxSize:    l.MaxSize,
		MaxBackups: l.MaxBackups,
		MaxAge:     l.MaxDays,
		LocalTime:  true,
		Compress:   l.Compress,
	}

	xlog.ReplaceGlobal(xlog.New(
		xlog.NewTee(
			xlog.NewCore(xlog.NewConsoleEncoder(xlog.LstdFlags|xlog.Lmicroseconds), xlog.Lock(os.Stderr), l.Level),
			xlog.NewCore(xlog.NewJSONEncoder(xlog.LstdFlags|xlog.Lmicroseconds), fileWriter, l.Level)),
		xlog.AddCaller()))
}

// settings is the demo's own top-level configuration: stream parameters for
// the loopback talker/listener pair, plus logging. The AAF map_nv_* keys
// stay on aafmap.Config.Configure; this struct covers everything around it.
// Fields use types the flag package can bind directly (uint/int/bool), not
// the narrower uint32/uint16/uint8 aafmap.Config itself uses; main.go does
// the narrowing conversion once the settings are fully loaded.
type settings struct {
	AudioRate      uint `json:"audiorate"`
	AudioBitDepth  uint `json:"audiobitdepth"`
	AudioChannels  uint `json:"audiochannels"`
	TxInterval     uint `json:"txinterval"`
	PackingFactor  uint `json:"packingfactor"`
	SparseMode     bool `json:"sparsemode"`
	RedundancyUsec uint `json:"redundancyusec"`
	ReportSeconds  uint `json:"reportseconds"`
	DropEveryNth   int  `json:"dropeverynth"`
	PacketsToSend  int  `json:"packetstosend"`

	Log logSettings `json:"log"`
}

func (s *settings) initFlags() {
	flag.UintVar(&s.AudioRate, "audio-rate", 48000, "nominal audio sample rate in Hz")
	flag.UintVar(&s.AudioBitDepth, "audio-bitdepth", 16, "integer PCM bit depth (16, 24 or 32)")
	flag.UintVar(&s.AudioChannels, "audio-channels", 2, "audio channel count")
	flag.UintVar(&s.TxInterval, "tx-interval", 4000, "talker packets per second")
	flag.UintVar(&s.PackingFactor, "packing-factor", 1, "media-queue item size, in packets")
	flag.BoolVar(&s.SparseMode, "sparse", false, "enable sparse timestamping")
	flag.UintVar(&s.RedundancyUsec, "redundancy-usec", 0, "temporal redundancy (MADT) offset, 0 disables it")
	flag.UintVar(&s.ReportSeconds, "report-seconds", 10, "temporal redundancy stats report interval")
	flag.IntVar(&s.DropEveryNth, "drop-every", 0, "simulate a lost packet every N packets, 0 disables it")
	flag.IntVar(&s.PacketsToSend, "packets", 200, "number of packets to send before exiting, 0 runs forever")

	s.Log.initFlags()
}

func loadSettings() *settings {
	s := &settings{}
	s.initFlags()

	if err := cfg.Load(s,
		&cfg.JSONLoader{Path: Name + ".conf", CreatedIfNonExsit: true},
		&cfg.EnvLoader{Prefix: strings.ToUpper(Name)},
		&cfg.FlagLoader{}); err != nil {
		xlog.Panic(err.Error())
	}

	s.Log.initLogger()
	return s
}
