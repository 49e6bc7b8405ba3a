package referrers

import "strings"

// Referrer hostnames mapped to display names. Bio links are shared
// almost exclusively on social platforms and in messengers, so those
// dominate the table; a handful of search engines, mail clients and
// shorteners cover the long tail.
var displayNames = map[string]string{
	// Social platforms
	"instagram.com":   "Instagram",
	"l.instagram.com": "Instagram",
	"tiktok.com":      "TikTok",
	"vm.tiktok.com":   "TikTok",
	"x.com":           "X/Twitter",
	"twitter.com":     "X/Twitter",
	"t.co":            "X/Twitter",
	"facebook.com":    "Facebook",
	"fb.com":          "Facebook",
	"l.facebook.com":  "Facebook",
	"lm.facebook.com": "Facebook",
	"threads.net":     "Threads",
	"youtube.com":     "YouTube",
	"youtu.be":        "YouTube",
	"twitch.tv":       "Twitch",
	"snapchat.com":    "Snapchat",
	"pinterest.com":   "Pinterest",
	"pin.it":          "Pinterest",
	"linkedin.com":    "LinkedIn",
	"lnkd.in":         "LinkedIn",
	"reddit.com":      "Reddit",
	"old.reddit.com":  "Reddit",
	"bsky.app":        "Bluesky",
	"mastodon.social": "Mastodon",
	"tumblr.com":      "Tumblr",

	// Messengers
	"whatsapp.com": "WhatsApp",
	"wa.me":        "WhatsApp",
	"telegram.org": "Telegram",
	"t.me":         "Telegram",
	"discord.com":  "Discord",
	"discord.gg":   "Discord",
	"slack.com":    "Slack",

	// Search engines
	"google.com":     "Google",
	"bing.com":       "Bing",
	"duckduckgo.com": "DuckDuckGo",
	"yahoo.com":      "Yahoo",
	"ecosia.org":     "Ecosia",

	// Creator platforms
	"patreon.com":    "Patreon",
	"ko-fi.com":      "Ko-fi",
	"buymeacoffee.com": "Buy Me a Coffee",
	"substack.com":   "Substack",
	"medium.com":     "Medium",
	"spotify.com":    "Spotify",
	"open.spotify.com": "Spotify",
	"soundcloud.com": "SoundCloud",
	"bandcamp.com":   "Bandcamp",
	"github.com":     "GitHub",

	// Mail clients (newsletter clicks)
	"mail.google.com":    "Gmail",
	"outlook.live.com":   "Outlook",
	"outlook.office.com": "Outlook",
	"mail.yahoo.com":     "Yahoo Mail",
	"mail.proton.me":     "Proton Mail",

	// Shorteners
	"bit.ly":      "Bitly",
	"tinyurl.com": "TinyURL",
	"ow.ly":       "Hootsuite",
}

// Country-code Google domains all fold into one source.
const googleName = "Google"

// FriendlyName maps a referrer hostname to its display name. Unknown
// hostnames come back with the "www." prefix stripped and the first
// letter capitalized.
func FriendlyName(hostname string) string {
	hostname = strings.ToLower(strings.TrimSuffix(hostname, "."))

	if name, ok := displayNames[hostname]; ok {
		return name
	}

	hostname = strings.TrimPrefix(hostname, "www.")
	if name, ok := displayNames[hostname]; ok {
		return name
	}

	if isGoogleDomain(hostname) {
		return googleName
	}

	// subdomains inherit the parent's name, m.facebook.com included
	for domain, name := range displayNames {
		if strings.HasSuffix(hostname, "."+domain) {
			return name
		}
	}

	if hostname == "" {
		return hostname
	}
	return strings.ToUpper(hostname[:1]) + hostname[1:]
}

// isGoogleDomain matches google.<tld> and google.co.<tld> variants.
func isGoogleDomain(hostname string) bool {
	if hostname == "google.com" {
		return true
	}
	rest, ok := strings.CutPrefix(hostname, "google.")
	if !ok {
		return false
	}
	rest = strings.TrimPrefix(rest, "co.")
	rest = strings.TrimPrefix(rest, "com.")
	return len(rest) >= 2 && len(rest) <= 3 && !strings.Contains(rest, ".")
}
