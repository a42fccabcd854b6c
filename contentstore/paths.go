// Package contentstore implements the Content Store (C2): deterministic
// on-disk path derivation, directory creation, local read/write/remove,
// and mime guessing — the filesystem half of the cache.
package contentstore

import (
	"fmt"
	"path/filepath"
)

// Paths is the {base, modified} pair for one (origin, name, scale) tuple.
// modified is empty when scale == 0 and is never written in that case.
type Paths struct {
	Base     string
	Modified string
}

// DerivePaths is a pure function: for a given (storageRoot, originName,
// name, scale) it always returns the same Paths.
//
//	<storage_root>/base/<origin.name>/<object.name>
//	<storage_root>/mod/<origin.name>/<scale>/<object.name>
func DerivePaths(storageRoot, originName, name string, scale uint32) Paths {
	p := Paths{
		Base: filepath.Join(storageRoot, "base", originName, name),
	}
	if scale != 0 {
		p.Modified = filepath.Join(storageRoot, "mod", originName, fmt.Sprint(scale), name)
	}
	return p
}
