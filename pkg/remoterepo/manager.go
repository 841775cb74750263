package remoterepo

// Manager implements the RemoteRepositoryManager contract: aggregation
// of dominant/recessive repository lists and effective-policy
// computation, mediated by the mirror/auth/proxy selectors.
type Manager struct {
	Mirrors KeyFunc
	Mirror  MirrorSelector
	Auth    AuthenticationSelector
	ProxySel ProxySelector
	Key     KeyFunc // repository key function, defaults to NID
}

// NewManager builds a Manager with the given selectors; any may be nil.
func NewManager(mirror MirrorSelector, auth AuthenticationSelector, proxy ProxySelector) *Manager {
	return &Manager{Mirror: mirror, Auth: auth, ProxySel: proxy, Key: NID}
}

func (m *Manager) keyFunc() KeyFunc {
	if m.Key != nil {
		return m.Key
	}
	return NID
}

// Aggregate implements spec.md §4.I aggregateRepositories:
//  1. Copy dominant.
//  2. For each recessive, look up by id in the dominant set. If absent,
//     optionally rewrite via selectors (only when recessiveIsRaw), then
//     append.
//  3. If present on both sides and both carry mirrored-repositories
//     lists, merge those lists by mirrored id.
func (m *Manager) Aggregate(dominant, recessive []Repository, recessiveIsRaw bool) []Repository {
	key := m.keyFunc()
	result := make([]Repository, len(dominant))
	copy(result, dominant)

	byKey := make(map[string]int, len(result))
	for i, r := range result {
		byKey[key(r)] = i
	}

	for _, raw := range recessive {
		r := raw
		if recessiveIsRaw {
			r = m.applySelectors(r)
		}
		if idx, ok := byKey[key(r)]; ok {
			result[idx] = mergeMirrored(result[idx], r)
			continue
		}
		byKey[key(r)] = len(result)
		result = append(result, r)
	}
	return result
}

func (m *Manager) applySelectors(r Repository) Repository {
	if m.Mirror != nil {
		if mirror, ok := m.Mirror.GetMirror(r); ok {
			mirror.Mirrored = append(mirror.Mirrored, r)
			r = mirror
		}
	}
	if r.Authentication == nil && m.Auth != nil {
		if a, ok := m.Auth.GetAuthentication(r); ok {
			r.Authentication = &a
		}
	}
	if r.Proxy == nil && m.ProxySel != nil {
		if p, ok := m.ProxySel.GetProxy(r); ok {
			r.Proxy = &p
		}
	}
	return r
}

// mergeMirrored extends dominant's mirrored-repositories list with any
// recessive mirrored entry whose mirrored id isn't already covered.
func mergeMirrored(dominant, recessive Repository) Repository {
	if len(recessive.Mirrored) == 0 {
		return dominant
	}
	covered := make(map[string]bool, len(dominant.Mirrored))
	for _, mm := range dominant.Mirrored {
		covered[mm.ID] = true
	}
	for _, mm := range recessive.Mirrored {
		if !covered[mm.ID] {
			dominant.Mirrored = append(dominant.Mirrored, mm)
			covered[mm.ID] = true
		}
	}
	return dominant
}

// SessionOverride carries session-wide policy overrides (checksum
// policy, update policy); GetPolicy lets each one that is set replace
// the repository's own value, whether or not it is stricter.
type SessionOverride struct {
	ChecksumPolicy ChecksumPolicyName
	UpdatePolicy   UpdatePolicy
}

// GetPolicy merges a session override with the repository's own policy
// for the given version kind (spec.md §4.I getPolicy). An empty override
// field leaves the repository's policy untouched.
func (m *Manager) GetPolicy(override SessionOverride, repo Repository, snapshot bool) Policy {
	p := repo.PolicyFor(snapshot)
	if override.ChecksumPolicy != "" {
		p.ChecksumPolicy = override.ChecksumPolicy
	}
	if override.UpdatePolicy != "" {
		p.UpdatePolicy = override.UpdatePolicy
	}
	return p
}

// KeyOf returns the repository key for r using the manager's configured
// key function (or NID by default).
func (m *Manager) KeyOf(r Repository) string {
	return m.keyFunc()(r)
}
