package clicks

import (
	"fmt"
	"net/url"
	"time"

	"log/slog"

	"github.com/karloscodes/cartridge"
	"github.com/karloscodes/cartridge/sqlite"
	"gorm.io/gorm"

	"linkdeck/internal/pkg/geoip"
	ua "linkdeck/internal/pkg/user_agent"
)

// Placeholder values for dimensions that could not be resolved. Stored as
// empty strings; the statistics layer folds them into "Unknown".
const (
	UnknownCountry = ""
	UnknownDevice  = ""
	UnknownBrowser = ""
	UnknownOS      = ""
)

// ClickEvent is one tracked redirect through a link. Rows are append-only;
// the statistics engine only reads them.
type ClickEvent struct {
	ID              uint      `gorm:"primaryKey"`
	LinkID          uint      `gorm:"index;column:link_id"`
	ClickedAt       time.Time `gorm:"index;column:clicked_at"`
	Fingerprint     string    `gorm:"index;column:fingerprint"`
	IsBot           bool      `gorm:"column:is_bot"`
	Country         string    `gorm:"column:country"`
	Device          string    `gorm:"column:device"`
	Browser         string    `gorm:"column:browser"`
	OperatingSystem string    `gorm:"column:operating_system"`
	Referrer        string    `gorm:"column:referrer"`
	UTMSource       string    `gorm:"column:utm_source"`
	UTMMedium       string    `gorm:"column:utm_medium"`
	UTMCampaign     string    `gorm:"column:utm_campaign"`
	CreatedAt       time.Time `gorm:"index"`
}

// RecordClickInput is the raw request context of one tracked redirect.
type RecordClickInput struct {
	LinkID      uint
	ProfileID   uint
	IPAddress   string
	UserAgent   string
	ReferrerURL string
	UTMSource   string
	UTMMedium   string
	UTMCampaign string
	Timestamp   time.Time
}

// RecordClick classifies the request and appends a ClickEvent. Bot traffic
// is stored with the bot flag set and no fingerprint, so it never joins a
// session.
func RecordClick(dbManager cartridge.DBManager, logger *slog.Logger, salt string, input *RecordClickInput) error {
	if input.UserAgent == "" {
		input.UserAgent = "Unknown User Agent"
	}
	if input.Timestamp.IsZero() {
		input.Timestamp = time.Now().UTC()
	}

	parsed := ua.ParseUserAgent(input.UserAgent)

	event := &ClickEvent{
		LinkID:          input.LinkID,
		ClickedAt:       input.Timestamp,
		IsBot:           parsed.Bot,
		Country:         geoip.CountryCode(input.IPAddress),
		Device:          deviceFromParsedUA(parsed),
		Browser:         browserFromParsedUA(parsed),
		OperatingSystem: osFromParsedUA(parsed),
		Referrer:        referrerHostname(input.ReferrerURL, logger),
		UTMSource:       input.UTMSource,
		UTMMedium:       input.UTMMedium,
		UTMCampaign:     input.UTMCampaign,
		CreatedAt:       time.Now().UTC(),
	}

	if !parsed.Bot {
		event.Fingerprint = BuildFingerprint(input.ProfileID, input.IPAddress, input.UserAgent, salt)
	}

	db := dbManager.GetConnection()
	err := sqlite.PerformWrite(logger, db, func(tx *gorm.DB) error {
		return tx.Create(event).Error
	})
	if err != nil {
		logger.Error("Failed to store click event",
			slog.Uint64("link_id", uint64(input.LinkID)),
			slog.Any("error", err))
		return fmt.Errorf("failed to store click event: %w", err)
	}

	return nil
}

// referrerHostname reduces a raw referrer URL to its hostname. Anything
// unparsable counts as direct traffic.
func referrerHostname(referrerURL string, logger *slog.Logger) string {
	if referrerURL == "" {
		return ""
	}
	parsed, err := url.Parse(referrerURL)
	if err != nil || parsed.Hostname() == "" {
		logger.Debug("Unparsable referrer URL", slog.String("referrer", referrerURL))
		return ""
	}
	return parsed.Hostname()
}

func deviceFromParsedUA(parsed ua.UserAgent) string {
	if parsed.Mobile {
		return "mobile"
	}
	if parsed.Tablet {
		return "tablet"
	}
	if parsed.Desktop {
		return "desktop"
	}
	return UnknownDevice
}

func browserFromParsedUA(parsed ua.UserAgent) string {
	if parsed.Bot || parsed.Browser == "" || parsed.Browser == "Unknown" {
		return UnknownBrowser
	}
	return parsed.Browser
}

func osFromParsedUA(parsed ua.UserAgent) string {
	if parsed.OS == "" || parsed.OS == "Unknown" {
		return UnknownOS
	}
	return parsed.OS
}
