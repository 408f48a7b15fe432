// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Inkpad Contributors

package capability

import (
	"strings"

	"github.com/samber/oops"
)

// Separator joins an owner id and a local id in a qualified id.
const Separator = ":"

// Key is the composite identity of a registration.
type Key struct {
	Owner string
	ID    string
}

// String returns the qualified id, e.g. "math:insert-math".
func (k Key) String() string {
	return k.Owner + Separator + k.ID
}

// ParseKey splits a qualified id into its owner and local id.
func ParseKey(qualified string) (Key, error) {
	owner, id, ok := strings.Cut(qualified, Separator)
	if !ok || owner == "" || id == "" {
		return Key{}, oops.Code(CodeInvalidKey).
			In("capability").
			With("qualified_id", qualified).
			Errorf("qualified id must look like owner%sid", Separator)
	}
	return Key{Owner: owner, ID: id}, nil
}
