// Package access decides whether an identity may act on a stored object.
package access

import "strings"

// Gate authorizes identity against objectPath.
type Gate interface {
	CanAccess(identity, objectPath string) bool
}

// GateFunc adapts a plain function to Gate.
type GateFunc func(identity, objectPath string) bool

func (f GateFunc) CanAccess(identity, objectPath string) bool {
	return f(identity, objectPath)
}

// OwnerPrefixGate grants access when the first path segment is the identity.
type OwnerPrefixGate struct{}

func (OwnerPrefixGate) CanAccess(identity, objectPath string) bool {
	return CanAccess(identity, objectPath)
}

// CanAccess reports whether objectPath has at least two segments and the
// first one equals identity. An empty identity never matches, and neither
// does a path with an empty, "." or ".." segment.
func CanAccess(identity, objectPath string) bool {
	if identity == "" {
		return false
	}
	parts := strings.Split(objectPath, "/")
	if len(parts) < 2 {
		return false
	}
	for _, p := range parts[1:] {
		if p == "" || p == "." || p == ".." {
			return false
		}
	}
	return parts[0] == identity
}
