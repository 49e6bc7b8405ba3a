package testsupport

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/karloscodes/cartridge"
	"github.com/karloscodes/cartridge/cache"
	ctestsupport "github.com/karloscodes/cartridge/testsupport"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"linkdeck/internal/clicks"
	"linkdeck/internal/config"
	"linkdeck/internal/editor"
	"linkdeck/internal/links"
	"linkdeck/internal/profiles"
	"linkdeck/internal/users"
)

// SessionCookieName is the expected cookie name for session cookies in tests.
// This should match the pattern used in routes.go: cfg.AppName + "_session"
const SessionCookieName = "linkdeck_session"

// testDBCache caches test databases by test name to allow multiple calls
// within the same test to share the same database
var testDBCache = make(map[string]*gorm.DB)
var testDBCacheMu sync.Mutex

// TestDBManager wraps cartridge's TestDBManager with linkdeck's interface
type TestDBManager struct {
	*ctestsupport.TestDBManager
}

// NewTestDBManager creates a TestDBManager that implements cartridge.DBManager
func NewTestDBManager(db *gorm.DB) *TestDBManager {
	return &TestDBManager{
		TestDBManager: ctestsupport.NewTestDBManager(db),
	}
}

// Ensure TestDBManager implements cartridge.DBManager
var _ cartridge.DBManager = (*TestDBManager)(nil)

// allModels returns all linkdeck models for migration
func allModels() []any {
	return []any{
		&cache.CacheRecord{},
		&users.User{},
		&profiles.Profile{},
		&links.Link{},
		&links.SocialLink{},
		&clicks.ClickEvent{},
		&editor.EditorDraft{},
	}
}

// SetupTestDB creates a test database with all linkdeck models migrated.
// Uses a named in-memory database with cache=shared to allow multiple connections
// to share the same database within a test. Caches the database by test name
// so multiple calls within the same test return the same database.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	testName := t.Name()

	// Use root test name for caching to handle closure issues where
	// setup functions capture the outer t while t.Run has subtest t
	rootName := testName
	if idx := strings.Index(testName, "/"); idx > 0 {
		rootName = testName[:idx]
	}

	testDBCacheMu.Lock()
	if db, exists := testDBCache[rootName]; exists {
		testDBCacheMu.Unlock()
		return db
	}
	testDBCacheMu.Unlock()

	// cache=shared allows multiple connections to the same database
	sanitizedName := strings.ReplaceAll(rootName, "/", "_")
	dsn := fmt.Sprintf("file:test_%s_%d?mode=memory&cache=shared", sanitizedName, time.Now().UnixNano())

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("testsupport: failed to open test database: %v", err)
	}

	db.Exec("PRAGMA foreign_keys = ON")
	db.Exec("PRAGMA journal_mode = WAL")

	if err := db.AutoMigrate(allModels()...); err != nil {
		t.Fatalf("testsupport: failed to migrate models: %v", err)
	}

	testDBCacheMu.Lock()
	testDBCache[rootName] = db
	testDBCacheMu.Unlock()

	t.Cleanup(func() {
		testDBCacheMu.Lock()
		delete(testDBCache, rootName)
		testDBCacheMu.Unlock()
		sqlDB, err := db.DB()
		if err == nil {
			sqlDB.Close()
		}
	})

	return db
}

// SetupTestDBManager creates a test DB manager using cartridge's testsupport
func SetupTestDBManager(t *testing.T) (*TestDBManager, *slog.Logger) {
	cfg := config.GetConfig()

	// SAFETY CHECK: Ensure we're in test environment
	if cfg.Environment != config.Test {
		t.Fatalf("CRITICAL: Tests must run in test environment! Current: %s. Set LINKDECK_ENV=test", cfg.Environment)
	}

	db := SetupTestDB(t)
	logger := GetLogger()
	dbManager := NewTestDBManager(db)

	return dbManager, logger
}

// CleanAllTables clears all non-system tables in the database
func CleanAllTables(db *gorm.DB) {
	var tableNames []string
	db.Raw("SELECT name FROM sqlite_master WHERE type='table' AND name NOT LIKE 'sqlite_%'").Scan(&tableNames)

	var tables []string
	for _, name := range tableNames {
		if name != "migrations" && name != "schema_migrations" {
			tables = append(tables, name)
		}
	}

	if len(tables) == 0 {
		return
	}

	db.Exec("PRAGMA foreign_keys = OFF")
	defer db.Exec("PRAGMA foreign_keys = ON")

	db.Transaction(func(tx *gorm.DB) error {
		for _, table := range tables {
			tx.Exec("DELETE FROM " + table)
			tx.Exec("DELETE FROM sqlite_sequence WHERE name=?", table)
		}
		return nil
	})
}

// GetLogger returns a test logger
func GetLogger() *slog.Logger {
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError})
	return slog.New(handler)
}

// CreateTestUser creates a test user in the database
func CreateTestUser(db *gorm.DB, email, password string) users.User {
	var user users.User
	if db.Where("email = ?", email).First(&user).Error == nil {
		return user
	}

	user = users.User{
		Email:             email,
		EncryptedPassword: password,
		CreatedAt:         time.Now().UTC(),
		UpdatedAt:         time.Now().UTC(),
	}
	db.Create(&user)
	return user
}

// CreateTestUserForAuth creates a user with properly hashed password for auth testing
func CreateTestUserForAuth(t *testing.T, db *gorm.DB, email, password string) *users.User {
	t.Helper()

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	require.NoError(t, err)

	user := &users.User{
		Email:             email,
		EncryptedPassword: string(hashedPassword),
		CreatedAt:         time.Now().UTC(),
		UpdatedAt:         time.Now().UTC(),
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

// CreateTestProfile creates a published profile owned by the given user
func CreateTestProfile(t *testing.T, db *gorm.DB, userID uint, username string) *profiles.Profile {
	t.Helper()

	profile := &profiles.Profile{
		UserID:      userID,
		Username:    username,
		DisplayName: username,
		Layout:      "stack",
		Theme:       "default",
		BgType:      profiles.BgTypeColor,
		BgColor:     "#ffffff",
		IsPublished: true,
	}
	require.NoError(t, db.Create(profile).Error)
	return profile
}

// CreateTestLink creates a link at the given position
func CreateTestLink(t *testing.T, db *gorm.DB, profileID uint, title, url string, position int) *links.Link {
	t.Helper()

	link := &links.Link{
		ProfileID: profileID,
		Title:     title,
		URL:       url,
		Position:  position,
		IsActive:  true,
	}
	require.NoError(t, db.Create(link).Error)
	return link
}

// CreateTestSocialLink creates a social link at the given position
func CreateTestSocialLink(t *testing.T, db *gorm.DB, profileID uint, platform, url string, position int) *links.SocialLink {
	t.Helper()

	social := &links.SocialLink{
		ProfileID: profileID,
		Platform:  platform,
		URL:       url,
		Position:  position,
	}
	require.NoError(t, db.Create(social).Error)
	return social
}

// ClickEventParams tweaks one synthetic click event.
type ClickEventParams struct {
	Fingerprint string
	IsBot       bool
	Country     string
	Device      string
	Browser     string
	OS          string
	Referrer    string
	UTMSource   string
	UTMMedium   string
	UTMCampaign string
}

// CreateClickEvent inserts a click event directly, bypassing enrichment,
// so tests control every dimension.
func CreateClickEvent(t *testing.T, db *gorm.DB, linkID uint, clickedAt time.Time, params ClickEventParams) *clicks.ClickEvent {
	t.Helper()

	event := &clicks.ClickEvent{
		LinkID:          linkID,
		ClickedAt:       clickedAt,
		Fingerprint:     params.Fingerprint,
		IsBot:           params.IsBot,
		Country:         params.Country,
		Device:          params.Device,
		Browser:         params.Browser,
		OperatingSystem: params.OS,
		Referrer:        params.Referrer,
		UTMSource:       params.UTMSource,
		UTMMedium:       params.UTMMedium,
		UTMCampaign:     params.UTMCampaign,
		CreatedAt:       time.Now().UTC(),
	}
	require.NoError(t, db.Create(event).Error)
	return event
}
