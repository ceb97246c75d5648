// Package analytics records privacy-first page views for the site. IP
// addresses are never stored; visits carry salted hashes only.
package analytics

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"strings"
	"time"
)

// Visit represents a single human page view.
type Visit struct {
	VisitorID string // salted hash of IP and User-Agent
	SessionID string // random ID held in the visitor's session cookie
	IPHash    string // salted hash of the IP address
	Browser   string
	OS        string
	Device    string // Desktop, Mobile, Tablet
	Path      string
	Referrer  string // cleaned referrer, see CleanReferrer
	Timestamp time.Time
}

// BotVisit represents a single crawler page view.
type BotVisit struct {
	BotName   string
	IPHash    string
	UserAgent string
	Path      string
	Timestamp time.Time
}

// Stats holds aggregated analytics for a period.
type Stats struct {
	From           time.Time       `json:"from"`
	To             time.Time       `json:"to"`
	UniqueVisitors int             `json:"unique_visitors"`
	TotalViews     int             `json:"total_views"`
	BotVisits      int             `json:"bot_visits"`
	TopPages       []PageStat      `json:"top_pages"`
	Referrers      []DimensionStat `json:"referrers"`
	Browsers       []DimensionStat `json:"browsers"`
	Devices        []DimensionStat `json:"devices"`
	DailyViews     []DailyView     `json:"daily_views"`
}

// PageStat represents page view statistics.
type PageStat struct {
	Path  string `json:"path"`
	Views int    `json:"views"`
}

// DimensionStat represents a dimension breakdown (browser, referrer, ...).
type DimensionStat struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// DailyView represents views per day.
type DailyView struct {
	Date  string `json:"date"`
	Views int    `json:"views"`
}

func saltedHash(salt string, parts ...string) string {
	h := sha256.New()
	h.Write([]byte(salt))
	h.Write([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(h.Sum(nil))[:16]
}

// HashIP creates a salted SHA-256 hash of an IP address.
func HashIP(salt, ip string) string {
	return saltedHash(salt, ip)
}

// VisitorID derives an anonymous visitor ID from IP and User-Agent.
func VisitorID(salt, ip, userAgent string) string {
	return saltedHash(salt, ip, userAgent)
}

// ParseUserAgent extracts browser, OS, and device from a User-Agent string.
func ParseUserAgent(ua string) (browser, os, device string) {
	ua = strings.ToLower(ua)

	// more specific tokens first: Edge and Opera also claim Chrome
	switch {
	case strings.Contains(ua, "firefox"):
		browser = "Firefox"
	case strings.Contains(ua, "opr/") || strings.Contains(ua, "opera"):
		browser = "Opera"
	case strings.Contains(ua, "edg"):
		browser = "Edge"
	case strings.Contains(ua, "chrome"):
		browser = "Chrome"
	case strings.Contains(ua, "safari"):
		browser = "Safari"
	default:
		browser = "Other"
	}

	// Android UAs contain "linux"
	switch {
	case strings.Contains(ua, "windows"):
		os = "Windows"
	case strings.Contains(ua, "android"):
		os = "Android"
	case strings.Contains(ua, "iphone") || strings.Contains(ua, "ipad"):
		os = "iOS"
	case strings.Contains(ua, "macintosh") || strings.Contains(ua, "mac os"):
		os = "macOS"
	case strings.Contains(ua, "linux"):
		os = "Linux"
	default:
		os = "Other"
	}

	switch {
	case strings.Contains(ua, "tablet") || strings.Contains(ua, "ipad"):
		device = "Tablet"
	case strings.Contains(ua, "mobile"):
		device = "Mobile"
	default:
		device = "Desktop"
	}
	return
}

// knownBots is checked in order; the first match names the bot.
var knownBots = []struct{ token, name string }{
	{"googlebot", "Googlebot"},
	{"bingbot", "Bingbot"},
	{"duckduckbot", "DuckDuckBot"},
	{"yandex", "Yandex"},
	{"baidu", "Baidu"},
	{"facebookexternalhit", "Facebook"},
	{"twitterbot", "Twitterbot"},
	{"linkedinbot", "LinkedIn"},
	{"ahrefsbot", "Ahrefs"},
	{"semrushbot", "SEMrush"},
	{"slurp", "Yahoo Slurp"},
	{"crawler", "Generic Crawler"},
	{"spider", "Generic Spider"},
}

// BotName returns the crawler name for ua, or "" when ua looks human.
func BotName(ua string) string {
	ua = strings.ToLower(ua)
	if ua == "" {
		return "Empty UA"
	}
	for _, b := range knownBots {
		if strings.Contains(ua, b.token) {
			return b.name
		}
	}
	if strings.Contains(ua, "bot") || strings.Contains(ua, "crawl") || strings.Contains(ua, "scrape") ||
		strings.HasPrefix(ua, "curl/") || strings.HasPrefix(ua, "python-requests") || strings.HasPrefix(ua, "go-http-client") {
		return "Other Bot"
	}
	return ""
}

var referrerDomain = regexp.MustCompile(`^https?://(?:www\.)?([^/:]+)`)

// CleanReferrer reduces a referrer URL to a source name. Referrers from
// siteHost count as internal navigation and return "".
func CleanReferrer(ref, siteHost string) string {
	if ref == "" {
		return "Direct"
	}
	m := referrerDomain.FindStringSubmatch(strings.ToLower(ref))
	if len(m) < 2 {
		return "Other"
	}
	host := m[1]
	if siteHost != "" && strings.TrimPrefix(strings.ToLower(siteHost), "www.") == host {
		return ""
	}
	for _, engine := range []struct{ token, name string }{
		{"google.", "Google"},
		{"bing.", "Bing"},
		{"duckduckgo.", "DuckDuckGo"},
		{"goodreads.", "Goodreads"},
		{"t.co", "Twitter"},
		{"facebook.", "Facebook"},
	} {
		if strings.Contains(host, engine.token) {
			return engine.name
		}
	}
	return host
}
