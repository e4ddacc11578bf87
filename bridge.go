// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package recoil

import (
	"code.hybscloud.com/kont"
)

// Erase forgets the result type of a Cont-world computation so it can be
// handed to Kernel.Execute.
func Erase[T any](m kont.Eff[T]) kont.Eff[any] {
	if e, ok := any(m).(kont.Eff[any]); ok {
		return e
	}
	return kont.Map(m, func(v T) any { return v })
}

// EraseExpr forgets the result type of an Expr-world computation so it can
// be handed to Kernel.ExecuteExpr.
func EraseExpr[T any](m kont.Expr[T]) kont.Expr[any] {
	if e, ok := any(m).(kont.Expr[any]); ok {
		return e
	}
	return kont.ExprMap(m, func(v T) any { return v })
}

// frameResult boxes a frame's final value. kont asserts a frame's result to
// any when it completes, which a nil interface does not survive.
type frameResult struct{ v any }

// reifyFrame converts c into a strand frame whose result is boxed.
func reifyFrame(c kont.Eff[any]) kont.Expr[any] {
	return kont.Reify(kont.Map(c, func(v any) any { return frameResult{v} }))
}

// frameValue unboxes a completed frame's result.
func frameValue(v any) any {
	if r, ok := v.(frameResult); ok {
		return r.v
	}
	return v
}
