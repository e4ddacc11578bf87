// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build race

package stream_test

import "testing"

// skipRace skips tests that post to the kernel from another goroutine.
// The race detector cannot see the inbox's cross-variable memory ordering.
func skipRace(tb testing.TB) {
	tb.Helper()
	tb.Skip("skip: kernel inbox uses cross-variable memory ordering")
}
