package crawl

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/fwojciec/corpus"
)

// NormalizeURL canonicalizes a URL for deduplication: the fragment is
// dropped, a trailing slash on the path is stripped (the root path becomes
// "/"), and the query string is preserved. Scheme and host are left as-is.
func NormalizeURL(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", corpus.Errorf(corpus.EINVALID, "invalid URL %q: %v", raw, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", corpus.Errorf(corpus.EINVALID, "URL %q missing scheme or host", raw)
	}

	path := strings.TrimRight(u.Path, "/")
	if path == "" {
		path = "/"
	}

	var b strings.Builder
	b.WriteString(u.Scheme)
	b.WriteString("://")
	b.WriteString(u.Host)
	b.WriteString(path)
	if u.RawQuery != "" {
		b.WriteString("?")
		b.WriteString(u.RawQuery)
	}
	return b.String(), nil
}

// Origin returns the scheme://host[:port] part of a URL. Robots rules and
// rate limits apply at origin granularity.
func Origin(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Scheme + "://" + u.Host
}

// Host returns the host[:port] part of a URL.
func Host(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Host
}

// InDomainScope reports whether the URL's host equals, or is a subdomain
// of, one of the allowed domains. An empty allow-list admits everything.
func InDomainScope(rawURL string, allowed []string) bool {
	if len(allowed) == 0 {
		return true
	}
	host := Host(rawURL)
	for _, d := range allowed {
		if host == d || strings.HasSuffix(host, "."+d) {
			return true
		}
	}
	return false
}

// DefaultExcludedPatterns returns the URL patterns skipped by default:
// binary and media assets plus auth and commerce flows.
func DefaultExcludedPatterns() []string {
	return []string{
		`.*\.(png|jpg|jpeg|gif|svg|ico|css|js|woff|woff2|ttf|eot|mp4|mp3|pdf|zip|tar|gz)$`,
		`.*/login.*`,
		`.*/signup.*`,
		`.*/cart.*`,
	}
}

// CompileExclusions compiles URL exclusion patterns case-insensitively.
func CompileExclusions(patterns []string) ([]*regexp.Regexp, error) {
	res := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile("(?i)" + p)
		if err != nil {
			return nil, corpus.Errorf(corpus.EINVALID, "invalid exclusion pattern %q: %v", p, err)
		}
		res = append(res, re)
	}
	return res, nil
}

func matchesAny(url string, res []*regexp.Regexp) bool {
	for _, re := range res {
		if re.MatchString(url) {
			return true
		}
	}
	return false
}
