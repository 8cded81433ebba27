// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build race

package msq

// RaceEnabled is true when the race detector is active.
// Used by tests to skip concurrent tests, which trigger false positives:
// the race detector cannot see the happens-before edges established by
// atomix's explicit-ordering atomics.
const RaceEnabled = true
