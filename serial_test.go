// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package recoil_test

import (
	"testing"

	"code.hybscloud.com/kont"
	"code.hybscloud.com/recoil"
)

func TestStrandIDsMonotonic(t *testing.T) {
	k := recoil.New()
	s1 := k.Execute(recoil.Erase(kont.Pure(1)))
	s2 := k.Execute(recoil.Erase(kont.Pure(2)))
	s3 := k.Execute(recoil.Erase(kont.Pure(3)))

	if s1.ID() >= s2.ID() {
		t.Fatalf("ids not increasing: %d >= %d", s1.ID(), s2.ID())
	}
	if s2.ID() >= s3.ID() {
		t.Fatalf("ids not increasing: %d >= %d", s2.ID(), s3.ID())
	}
}

func TestStrandIDsPerKernel(t *testing.T) {
	a, b := recoil.New(), recoil.New()
	sa := a.Execute(recoil.Erase(kont.Pure(1)))
	sb := b.Execute(recoil.Erase(kont.Pure(1)))
	if sa.ID() != sb.ID() {
		t.Fatalf("first ids differ across kernels: %d != %d", sa.ID(), sb.ID())
	}
	if a.ID() == b.ID() {
		t.Fatal("kernels share an instance id")
	}
}
