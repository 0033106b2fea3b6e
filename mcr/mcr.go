// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package mcr defines the Media Clock Recovery HAL contract that MapCore's
// listener side initializes and closes when a stream is configured with a
// clock-recovery mode, plus a no-op implementation for platforms (and tests)
// that don't need hardware clock recovery.
package mcr

import "github.com/openavnu-go/aafmap/aaf"

// HAL is the platform's Media Clock Recovery hardware abstraction. MapCore
// calls Init once from RxInit when the configured mode is not aaf.MCRNone,
// and Close once from End.
type HAL interface {
	Init(mode aaf.MCRMode, timestampInterval, recoveryInterval uint32) error
	Close()
}

// NoOp is a HAL that does nothing; it satisfies streams configured with
// aaf.MCRNone, and stands in for real hardware in tests and the demo.
type NoOp struct{}

func (NoOp) Init(aaf.MCRMode, uint32, uint32) error { return nil }

func (NoOp) Close() {}
