// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package recoil_test

import (
	"testing"

	"code.hybscloud.com/kont"
	"code.hybscloud.com/recoil"
)

// BenchmarkExecuteSync measures executing and completing one pure strand.
func BenchmarkExecuteSync(b *testing.B) {
	k := recoil.New()
	body := recoil.Erase(kont.Pure(1))
	b.ReportAllocs()
	for b.Loop() {
		_, _ = k.ExecuteSync(body)
	}
}

// BenchmarkYield measures one cooperative yield round-trip.
func BenchmarkYield(b *testing.B) {
	k := recoil.New()
	body := recoil.Erase(recoil.YieldThen(kont.Pure(1)))
	b.ReportAllocs()
	for b.Loop() {
		_, _ = k.ExecuteSync(body)
	}
}

// BenchmarkExprYield measures the fused Expr-world yield.
func BenchmarkExprYield(b *testing.B) {
	k := recoil.New()
	b.ReportAllocs()
	for b.Loop() {
		_, _ = recoil.ExecExpr(k, recoil.ExprYieldThen(kont.Reify(kont.Pure(1))))
	}
}

// BenchmarkChannelHandoff measures a write/read rendezvous between two strands.
func BenchmarkChannelHandoff(b *testing.B) {
	k := recoil.New()
	b.ReportAllocs()
	for b.Loop() {
		ch := recoil.NewChannel[int]()
		k.Execute(recoil.Erase(ch.Write(1)))
		_, _ = recoil.Exec(k, ch.Read())
	}
}

// BenchmarkTry measures a nested frame that fails and is caught.
func BenchmarkTry(b *testing.B) {
	k := recoil.New()
	body := recoil.Erase(recoil.Try(recoil.Fail[int](recoil.ErrChannelClosed)))
	b.ReportAllocs()
	for b.Loop() {
		_, _ = k.ExecuteSync(body)
	}
}
