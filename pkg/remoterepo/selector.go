package remoterepo

import "strings"

// MirrorSelector rewrites a raw repository declaration into its mirror,
// if one is configured to cover it.
type MirrorSelector interface {
	GetMirror(repo Repository) (Repository, bool)
}

// AuthenticationSelector supplies authentication for a repository that
// does not carry its own.
type AuthenticationSelector interface {
	GetAuthentication(repo Repository) (Authentication, bool)
}

// ProxySelector supplies a proxy for a repository that does not carry
// its own.
type ProxySelector interface {
	GetProxy(repo Repository) (Proxy, bool)
}

// StaticMirrorSelector is a MirrorSelector backed by a fixed table,
// matching the "<mirrorOf>" declarations of a settings file (settings
// parsing itself is out of scope per spec.md §1; callers build the
// table however they like).
type StaticMirrorSelector struct {
	Mirrors []Repository
	Of      map[string]MirrorOf // mirror id -> MirrorOf
}

// GetMirror implements MirrorSelector.
func (s *StaticMirrorSelector) GetMirror(repo Repository) (Repository, bool) {
	for _, mirror := range s.Mirrors {
		of, ok := s.Of[mirror.ID]
		if !ok {
			continue
		}
		if matchesMirrorOf(of.Of, repo.ID) {
			return mirror, true
		}
	}
	return Repository{}, false
}

func matchesMirrorOf(pattern, id string) bool {
	if pattern == "*" {
		return true
	}
	for _, tok := range strings.Split(pattern, ",") {
		tok = strings.TrimSpace(tok)
		if tok == id {
			return true
		}
		if tok == "*" {
			return true
		}
		if strings.HasPrefix(tok, "!") && strings.TrimPrefix(tok, "!") == id {
			return false
		}
	}
	return false
}

// StaticAuthenticationSelector maps repository id to credentials.
type StaticAuthenticationSelector struct {
	ByID map[string]Authentication
}

// GetAuthentication implements AuthenticationSelector.
func (s *StaticAuthenticationSelector) GetAuthentication(repo Repository) (Authentication, bool) {
	a, ok := s.ByID[repo.ID]
	return a, ok
}

// StaticProxySelector maps repository id to a proxy.
type StaticProxySelector struct {
	ByID map[string]Proxy
}

// GetProxy implements ProxySelector.
func (s *StaticProxySelector) GetProxy(repo Repository) (Proxy, bool) {
	p, ok := s.ByID[repo.ID]
	return p, ok
}
