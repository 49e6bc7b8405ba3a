package user_agent

import (
	"embed"
	"fmt"
	"strings"
	"sync"

	"go.elara.ws/pcre"
	"gopkg.in/yaml.v3"
)

// UserAgent is the classification result for a raw User-Agent header.
type UserAgent struct {
	UserAgent string
	OS        string
	Browser   string
	Device    string
	Mobile    bool
	Tablet    bool
	Desktop   bool
	Bot       bool
}

// Embed the rule database files
//
//go:embed database/bots.yml
//go:embed database/browsers.yml
//go:embed database/oss.yml
//go:embed database/devices.yml
var databaseFiles embed.FS

// Browser entry structure
type BrowserEntry struct {
	Regex   string `yaml:"regex"`
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
}

// OS entry structure
type OSEntry struct {
	Regex   string `yaml:"regex"`
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
}

// Device entry structure
type DeviceEntry struct {
	Regex  string `yaml:"regex"`
	Device string `yaml:"device"`
}

// Bot entry structure
type BotEntry struct {
	Regex    string `yaml:"regex"`
	Name     string `yaml:"name"`
	Category string `yaml:"category"`
}

// Compiled regex cache
type RegexCache struct {
	compiled map[string]*pcre.Regexp
	mutex    sync.RWMutex
}

func newRegexCache() *RegexCache {
	return &RegexCache{
		compiled: make(map[string]*pcre.Regexp),
	}
}

func (rc *RegexCache) get(pattern string) (*pcre.Regexp, error) {
	rc.mutex.RLock()
	if regex, exists := rc.compiled[pattern]; exists {
		rc.mutex.RUnlock()
		return regex, nil
	}
	rc.mutex.RUnlock()

	rc.mutex.Lock()
	defer rc.mutex.Unlock()

	// Double-check pattern
	if regex, exists := rc.compiled[pattern]; exists {
		return regex, nil
	}

	regex, err := pcre.Compile(pattern)
	if err != nil {
		return nil, err
	}
	rc.compiled[pattern] = regex
	return regex, nil
}

// Global parser instance
var (
	parser *classifier
	once   sync.Once
)

type classifier struct {
	browsers   []BrowserEntry
	oss        []OSEntry
	devices    []DeviceEntry
	bots       []BotEntry
	regexCache *RegexCache
}

func getParser() *classifier {
	once.Do(func() {
		parser = &classifier{
			regexCache: newRegexCache(),
		}

		if data, err := databaseFiles.ReadFile("database/browsers.yml"); err == nil {
			if err := yaml.Unmarshal(data, &parser.browsers); err != nil {
				fmt.Printf("Error parsing browsers.yml: %v\n", err)
			}
		}

		if data, err := databaseFiles.ReadFile("database/oss.yml"); err == nil {
			if err := yaml.Unmarshal(data, &parser.oss); err != nil {
				fmt.Printf("Error parsing oss.yml: %v\n", err)
			}
		}

		if data, err := databaseFiles.ReadFile("database/bots.yml"); err == nil {
			if err := yaml.Unmarshal(data, &parser.bots); err != nil {
				fmt.Printf("Error parsing bots.yml: %v\n", err)
			}
		}

		if data, err := databaseFiles.ReadFile("database/devices.yml"); err == nil {
			if err := yaml.Unmarshal(data, &parser.devices); err != nil {
				fmt.Printf("Error parsing devices.yml: %v\n", err)
			}
		}
	})
	return parser
}

func (p *classifier) parseBot(userAgent string) *BotEntry {
	for _, bot := range p.bots {
		if regex, err := p.regexCache.get(bot.Regex); err == nil {
			if regex.MatchString(userAgent) {
				return &bot
			}
		}
	}
	return nil
}

func (p *classifier) parseBrowser(userAgent string) string {
	for _, entry := range p.browsers {
		if regex, err := p.regexCache.get(entry.Regex); err == nil {
			if regex.MatchString(userAgent) {
				return entry.Name
			}
		}
	}
	return "Unknown"
}

func (p *classifier) parseOS(userAgent string) string {
	for _, entry := range p.oss {
		if regex, err := p.regexCache.get(entry.Regex); err == nil {
			if regex.MatchString(userAgent) {
				return entry.Name
			}
		}
	}
	return "Unknown"
}

func (p *classifier) parseDevice(userAgent string) (string, bool, bool, bool) {
	for _, entry := range p.devices {
		if regex, err := p.regexCache.get(entry.Regex); err == nil {
			if regex.MatchString(userAgent) {
				switch entry.Device {
				case "tablet":
					return "Tablet", false, true, false
				case "smartphone":
					return "Mobile", true, false, false
				case "desktop":
					return "Desktop", false, false, true
				}
			}
		}
	}

	// Fallback detection based on common substrings
	ua := strings.ToLower(userAgent)

	// Tablets often contain "mobile" too, so check them first
	if strings.Contains(ua, "tablet") || strings.Contains(ua, "ipad") {
		return "Tablet", false, true, false
	}

	if strings.Contains(ua, "mobile") || strings.Contains(ua, "android") ||
		strings.Contains(ua, "iphone") || strings.Contains(ua, "ipod") ||
		strings.Contains(ua, "windows phone") {
		return "Mobile", true, false, false
	}

	return "Desktop", false, false, true
}

// ParseUserAgent classifies a raw User-Agent header.
func ParseUserAgent(userAgent string) UserAgent {
	parser := getParser()

	// Bots first; bot traffic carries no device/OS classification
	if bot := parser.parseBot(userAgent); bot != nil {
		return UserAgent{
			UserAgent: userAgent,
			OS:        "Unknown",
			Browser:   bot.Name,
			Device:    "Bot",
			Bot:       true,
		}
	}

	browser := parser.parseBrowser(userAgent)
	os := parser.parseOS(userAgent)
	device, mobile, tablet, desktop := parser.parseDevice(userAgent)

	return UserAgent{
		UserAgent: userAgent,
		OS:        os,
		Browser:   browser,
		Device:    device,
		Mobile:    mobile,
		Tablet:    tablet,
		Desktop:   desktop,
		Bot:       false,
	}
}
