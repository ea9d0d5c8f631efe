package rbac

import "sort"

// WildcardToken is the wire spelling of the wildcard permission.
// It is parsed into the tagged Permission form immediately on decode;
// no other code should string-match it.
const WildcardToken = "all"

// Permission is either the wildcard or a named capability such as
// "incidents:read". The zero value is invalid; construct via Wildcard
// or Named.
type Permission struct {
	wildcard bool
	name     string
}

func Wildcard() Permission { return Permission{wildcard: true} }

func Named(name string) Permission { return Permission{name: name} }

// Parse maps a wire string to a Permission.
func Parse(s string) Permission {
	if s == WildcardToken {
		return Wildcard()
	}
	return Named(s)
}

func (p Permission) IsWildcard() bool { return p.wildcard }

func (p Permission) String() string {
	if p.wildcard {
		return WildcardToken
	}
	return p.name
}

// Set is an immutable-by-convention permission set. Build it once per
// token decode; do not mutate it afterwards.
type Set struct {
	wildcard bool
	names    map[string]struct{}
}

func NewSet(perms ...Permission) Set {
	s := Set{names: make(map[string]struct{}, len(perms))}
	for _, p := range perms {
		if p.wildcard {
			s.wildcard = true
			continue
		}
		if p.name != "" {
			s.names[p.name] = struct{}{}
		}
	}
	return s
}

// ParseSet maps wire strings to a Set.
func ParseSet(ss []string) Set {
	perms := make([]Permission, 0, len(ss))
	for _, s := range ss {
		perms = append(perms, Parse(s))
	}
	return NewSet(perms...)
}

func (s Set) HasWildcard() bool { return s.wildcard }

func (s Set) Contains(p Permission) bool {
	if p.wildcard {
		return s.wildcard
	}
	_, ok := s.names[p.name]
	return ok
}

// Strings returns the wire form, wildcard first, names sorted.
// Used when freezing a role expansion into token claims.
func (s Set) Strings() []string {
	out := make([]string, 0, len(s.names)+1)
	if s.wildcard {
		out = append(out, WildcardToken)
	}
	names := make([]string, 0, len(s.names))
	for n := range s.names {
		names = append(names, n)
	}
	sort.Strings(names)
	return append(out, names...)
}

// Evaluate decides allow/deny for a handler's declared requirement.
//
// Rules:
// - wildcard grants everything
// - required permissions are OR-combined: possessing any one suffices
// - an empty requirement means "any authenticated identity"
//
// Pure function; no I/O, no logging.
func Evaluate(granted Set, required []Permission) bool {
	if granted.wildcard {
		return true
	}
	if len(required) == 0 {
		return true
	}
	for _, p := range required {
		if granted.Contains(p) {
			return true
		}
	}
	return false
}
