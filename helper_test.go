// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package recoil_test

import (
	"testing"

	"code.hybscloud.com/kont"
	"code.hybscloud.com/recoil"
)

// effect runs f when the strand reaches it.
func effect(f func()) kont.Eff[any] {
	return recoil.Erase(recoil.Defer(func() kont.Eff[struct{}] {
		f()
		return kont.Pure(struct{}{})
	}))
}

// capture parks the strand and stores it in *dst for the test to resume.
func capture[T any](dst **recoil.Strand) kont.Eff[T] {
	return recoil.SuspendWith[T](func(s *recoil.Strand) { *dst = s })
}

// mustPanic runs f and returns the value it panicked with.
func mustPanic(t *testing.T, f func()) (r any) {
	t.Helper()
	defer func() { r = recover() }()
	f()
	t.Fatal("expected panic")
	return nil
}
