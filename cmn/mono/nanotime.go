// Package mono provides a monotonic clock source used by mux to stamp
// each outstanding call slot and report how long the oldest one has been
// waiting (port's oldest_pending_slot_age_seconds gauge).
/*
 * Copyright (c) 2018-2021, NVIDIA CORPORATION. All rights reserved.
 */
package mono

import "time"

// NanoTime returns a monotonic-clock reading in nanoseconds. Only
// differences between two NanoTime() calls are meaningful.
func NanoTime() int64 { return int64(time.Since(base)) }

// base anchors NanoTime; time.Since reads its monotonic clock component.
var base = time.Now()
