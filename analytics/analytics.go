package analytics

import (
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"strings"
)

// HashIP reduces an IP address to a short salted-less hash so the database
// never stores raw addresses. Uniqueness matters here, reversibility does
// not.
func HashIP(ip string) string {
	sum := sha256.Sum256([]byte("photoengine:" + ip))
	return hex.EncodeToString(sum[:8])
}

// CleanReferrer strips a referrer down to its host, dropping query strings
// and self-referrals.
func CleanReferrer(ref, selfHost string) string {
	if ref == "" {
		return ""
	}
	u, err := url.Parse(ref)
	if err != nil {
		return ""
	}
	host := strings.TrimPrefix(u.Host, "www.")
	if host == "" || strings.EqualFold(host, strings.TrimPrefix(selfHost, "www.")) {
		return ""
	}
	return host
}

// IsBot is a cheap user-agent screen: enough to keep crawlers out of the
// view counts, not a fingerprinting engine.
func IsBot(ua string) bool {
	ua = strings.ToLower(ua)
	for _, marker := range []string{"bot", "crawler", "spider", "slurp", "curl", "wget", "python-requests", "headless"} {
		if strings.Contains(ua, marker) {
			return true
		}
	}
	return false
}
