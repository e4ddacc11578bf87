// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package recoil

import "code.hybscloud.com/atomix"

// ID identifies a strand within its kernel.
// Each call to Execute assigns the next value.
type ID = uint64

// serial is the per-kernel monotonic counter for strand identifiers.
type serial struct {
	n atomix.Uint64
}

// next returns the next monotonically increasing identifier.
func (s *serial) next() ID {
	return s.n.Add(1)
}
