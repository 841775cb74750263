package transport

import (
	"net/url"
	"strings"
)

// OfflineController decides whether a remote access is permitted while
// the session is offline, per spec.md §6 "Offline controller":
// "aether.offline.protocols" and "aether.offline.hosts" allow-lists.
type OfflineController struct {
	Protocols []string
	Hosts     []string
}

// CheckOffline returns nil if repoURL's protocol/host are allow-listed
// for offline use, or an OfflineError otherwise.
func (c OfflineController) CheckOffline(repoURL string) error {
	u, err := url.Parse(repoURL)
	if err != nil {
		return OfflineError.New("invalid repository url %q: %v", repoURL, err)
	}
	if containsFold(c.Protocols, u.Scheme) {
		return nil
	}
	if containsFold(c.Hosts, u.Hostname()) {
		return nil
	}
	return OfflineError.New("session is offline, and %s is not protocol/host allow-listed", repoURL)
}

func containsFold(list []string, needle string) bool {
	for _, v := range list {
		if strings.EqualFold(v, needle) {
			return true
		}
	}
	return false
}
