package seeder

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"log/slog"

	"github.com/karloscodes/cartridge"
	"github.com/karloscodes/cartridge/crypto"
	"github.com/karloscodes/cartridge/sqlite"
	"gorm.io/gorm"

	"linkdeck/internal/clicks"
	"linkdeck/internal/config"
	"linkdeck/internal/links"
	"linkdeck/internal/profiles"
	"linkdeck/internal/users"
)

const (
	demoEmail    = "demo@linkdeck.local"
	demoPassword = "demo-password"
	demoUsername = "demo"

	visitorPoolSize = 400
	seedWindowDays  = 60
)

// Seeder populates the database with a demo profile and a realistic
// click history for it.
type Seeder struct {
	DBManager  cartridge.DBManager
	Logger     *slog.Logger
	ClickCount int
}

func NewSeeder(dbManager cartridge.DBManager, logger *slog.Logger, clickCount int) *Seeder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Seeder{
		DBManager:  dbManager,
		Logger:     logger,
		ClickCount: clickCount,
	}
}

// Run creates the demo account, its profile and links, and a spread of
// click events over the last two months.
func (s *Seeder) Run(ctx context.Context) error {
	start := time.Now()
	s.Logger.Info("Seeding demo data...", slog.Int("clickCount", s.ClickCount))

	db := s.DBManager.GetConnection()

	user, err := s.ensureDemoUser(db)
	if err != nil {
		return err
	}
	profile, err := s.ensureDemoProfile(db, user)
	if err != nil {
		return err
	}
	demoLinks, err := s.ensureDemoLinks(db, profile)
	if err != nil {
		return err
	}

	if err := s.generateClicks(ctx, db, profile, demoLinks); err != nil {
		return err
	}

	s.Logger.Info("Seeding completed",
		slog.String("username", profile.Username),
		slog.Duration("elapsed", time.Since(start)))
	return nil
}

func (s *Seeder) ensureDemoUser(db *gorm.DB) (*users.User, error) {
	user, err := users.FindByEmail(db, demoEmail)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to look up demo user: %w", err)
	}

	hash, err := crypto.GeneratePasswordHash(demoPassword)
	if err != nil {
		return nil, fmt.Errorf("failed to hash demo password: %w", err)
	}
	user = &users.User{Email: demoEmail, EncryptedPassword: string(hash)}
	err = sqlite.PerformWrite(s.Logger, db, func(tx *gorm.DB) error {
		return tx.Create(user).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create demo user: %w", err)
	}
	s.Logger.Info("Created demo user", slog.String("email", demoEmail))
	return user, nil
}

func (s *Seeder) ensureDemoProfile(db *gorm.DB, user *users.User) (*profiles.Profile, error) {
	profile, err := profiles.FindByUserID(db, user.ID)
	if err == nil {
		return profile, nil
	}

	profile = &profiles.Profile{
		UserID:         user.ID,
		Username:       demoUsername,
		DisplayName:    "Demo Creator",
		Bio:            "Music, videos and everything else in one place.",
		Layout:         "stack",
		Theme:          "midnight",
		BgType:         profiles.BgTypeGradient,
		BgGradientFrom: "#1e3a5f",
		BgGradientTo:   "#0b1020",
		IsPublished:    true,
	}
	if err := profiles.CreateProfile(db, profile); err != nil {
		return nil, fmt.Errorf("failed to create demo profile: %w", err)
	}
	s.Logger.Info("Created demo profile", slog.String("username", demoUsername))
	return profile, nil
}

func (s *Seeder) ensureDemoLinks(db *gorm.DB, profile *profiles.Profile) ([]links.Link, error) {
	existing, err := links.ListByProfile(db, profile.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list demo links: %w", err)
	}
	if len(existing) > 0 {
		return existing, nil
	}

	seedLinks := []links.CreateLinkInput{
		{Title: "Latest single", URL: "https://open.spotify.com/track/demo", Icon: "music", Position: 0, IsActive: true},
		{Title: "New video", URL: "https://youtube.com/watch?v=demo", Icon: "video", Position: 1, IsActive: true},
		{Title: "Merch store", URL: "https://store.example.com", Icon: "shopping-bag", Position: 2, IsActive: true},
		{Title: "Tour dates", URL: "https://tour.example.com", Icon: "calendar", Position: 3, IsActive: true},
		{Title: "Newsletter", URL: "https://newsletter.example.com", Icon: "mail", Position: 4, IsActive: true},
	}
	created := make([]links.Link, 0, len(seedLinks))
	for _, input := range seedLinks {
		link, err := links.CreateLink(db, profile.ID, input)
		if err != nil {
			return nil, fmt.Errorf("failed to create demo link: %w", err)
		}
		created = append(created, *link)
	}

	socials := []links.SocialLinkInput{
		{Platform: "instagram", URL: "https://instagram.com/demo", Position: 0},
		{Platform: "youtube", URL: "https://youtube.com/@demo", Position: 1},
		{Platform: "tiktok", URL: "https://tiktok.com/@demo", Position: 2},
	}
	for _, input := range socials {
		if _, err := links.CreateSocialLink(db, profile.ID, input); err != nil {
			return nil, fmt.Errorf("failed to create demo social link: %w", err)
		}
	}

	s.Logger.Info("Created demo links", slog.Int("count", len(created)))
	return created, nil
}

// weighted picks an entry from a weight table.
func weighted(table map[string]int) string {
	total := 0
	for _, w := range table {
		total += w
	}
	pick := rand.IntN(total)
	for value, w := range table {
		if pick < w {
			return value
		}
		pick -= w
	}
	return ""
}

func (s *Seeder) generateClicks(ctx context.Context, db *gorm.DB, profile *profiles.Profile, demoLinks []links.Link) error {
	if len(demoLinks) == 0 || s.ClickCount <= 0 {
		return nil
	}

	countries := map[string]int{"us": 35, "gb": 15, "de": 12, "br": 10, "fr": 8, "es": 6, "jp": 5, "": 9}
	devices := map[string]int{"smartphone": 62, "desktop": 30, "tablet": 8}
	browsers := map[string]int{"chrome": 48, "safari": 27, "firefox": 9, "edge": 8, "samsung internet": 8}
	systems := map[string]int{"android": 38, "ios": 30, "windows": 18, "macos": 10, "linux": 4}
	referrers := map[string]int{"instagram.com": 35, "t.co": 15, "youtube.com": 12, "google.com": 10, "": 28}
	campaigns := map[string]int{"launch": 20, "tour": 10, "": 70}

	salt := config.GetConfig().PrivateKey
	now := time.Now().UTC()

	batch := make([]clicks.ClickEvent, 0, 500)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		err := sqlite.PerformWrite(s.Logger, db, func(tx *gorm.DB) error {
			return tx.CreateInBatches(batch, 200).Error
		})
		batch = batch[:0]
		return err
	}

	for i := 0; i < s.ClickCount; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		clickedAt := now.Add(-time.Duration(rand.IntN(seedWindowDays*24*60)) * time.Minute)
		isBot := rand.IntN(100) < 8

		event := clicks.ClickEvent{
			LinkID:          demoLinks[rand.IntN(len(demoLinks))].ID,
			ClickedAt:       clickedAt,
			IsBot:           isBot,
			Country:         weighted(countries),
			Device:          weighted(devices),
			Browser:         weighted(browsers),
			OperatingSystem: weighted(systems),
			Referrer:        weighted(referrers),
			CreatedAt:       clickedAt,
		}
		if campaign := weighted(campaigns); campaign != "" {
			event.UTMSource = event.Referrer
			event.UTMMedium = "social"
			event.UTMCampaign = campaign
		}
		if !isBot {
			visitor := fmt.Sprintf("10.0.%d.%d", rand.IntN(visitorPoolSize)/250, rand.IntN(250))
			event.Fingerprint = clicks.BuildFingerprint(profile.ID, visitor, "seeded-agent", salt)
		}

		batch = append(batch, event)
		if len(batch) >= 500 {
			if err := flush(); err != nil {
				return fmt.Errorf("failed to insert click events: %w", err)
			}
		}
	}
	if err := flush(); err != nil {
		return fmt.Errorf("failed to insert click events: %w", err)
	}

	s.Logger.Info("Generated click events", slog.Int("count", s.ClickCount))
	return nil
}
