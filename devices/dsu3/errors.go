// Copyright 2026 The Leon3jtag Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package dsu3

import "fmt"

// CoreOutOfRangeError reports a core index outside [0, MaxCoreIndex].
type CoreOutOfRangeError struct {
	CoreIndex int
}

func (e *CoreOutOfRangeError) Error() string {
	return fmt.Sprintf("dsu3: core index %d out of range [0, %d]", e.CoreIndex, MaxCoreIndex)
}

// InvalidRegisterIDError reports a RegisterID whose encoded class/bank/
// index does not map to any DSU3-addressable register.
type InvalidRegisterIDError struct {
	ID RegisterID
}

func (e *InvalidRegisterIDError) Error() string {
	return fmt.Sprintf("dsu3: invalid register id %#04x", uint16(e.ID))
}
