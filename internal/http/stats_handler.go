package http

import (
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/karloscodes/cartridge"
	"github.com/pariz/gountries"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"log/slog"

	"linkdeck/internal/analytics"
	"linkdeck/internal/links"
	"linkdeck/internal/pkg/referrers"
)

const defaultStatsRangeDays = 30

// parseQueryOptions reads the date range and bot flag from the query
// string. Dates are day-granular; the end date covers its whole day so
// the range stays inclusive on both ends.
func parseQueryOptions(ctx *cartridge.Context) (analytics.QueryOptions, error) {
	now := time.Now().UTC()
	from := now.AddDate(0, 0, -defaultStatsRangeDays).Truncate(24 * time.Hour)
	to := now

	if raw := ctx.Query("from"); raw != "" {
		parsed, err := time.ParseInLocation("2006-01-02", raw, time.UTC)
		if err != nil {
			return analytics.QueryOptions{}, err
		}
		from = parsed
	}
	if raw := ctx.Query("to"); raw != "" {
		parsed, err := time.ParseInLocation("2006-01-02", raw, time.UTC)
		if err != nil {
			return analytics.QueryOptions{}, err
		}
		to = parsed.Add(24*time.Hour - time.Second)
	}

	return analytics.QueryOptions{
		From:        from,
		To:          to,
		IncludeBots: ctx.Query("include_bots") == "true",
	}, nil
}

// ProfileStatsAction reports aggregate statistics across all of the
// current profile's links.
func ProfileStatsAction(ctx *cartridge.Context) error {
	profile, err := currentProfile(ctx)
	if err != nil {
		return err
	}
	opts, err := parseQueryOptions(ctx)
	if err != nil {
		return errorJSON(ctx, fiber.StatusBadRequest, "invalid date range")
	}

	db := ctx.DB()
	linkIDs, err := links.ListIDsByProfile(db, profile.ID)
	if err != nil {
		ctx.Logger.Error("Failed to list link IDs", slog.Any("error", err))
		return errorJSON(ctx, fiber.StatusInternalServerError, "failed to load statistics")
	}

	payload, err := analytics.ProfileStats(db, linkIDs, opts)
	if err != nil {
		ctx.Logger.Error("Failed to fetch profile statistics", slog.Any("error", err))
		return errorJSON(ctx, fiber.StatusInternalServerError, "failed to load statistics")
	}

	convertStatsForDisplay(&payload.StatsPayload)
	return ctx.JSON(payload)
}

// LinkStatsAction reports statistics for one link owned by the current
// profile.
func LinkStatsAction(ctx *cartridge.Context) error {
	profile, err := currentProfile(ctx)
	if err != nil {
		return err
	}
	linkID, err := ctx.ParamsInt("id")
	if err != nil || linkID <= 0 {
		return errorJSON(ctx, fiber.StatusBadRequest, "invalid link id")
	}
	opts, err := parseQueryOptions(ctx)
	if err != nil {
		return errorJSON(ctx, fiber.StatusBadRequest, "invalid date range")
	}

	db := ctx.DB()
	link, err := links.FindByID(db, uint(linkID))
	if err != nil || link.ProfileID != profile.ID {
		return errorJSON(ctx, fiber.StatusNotFound, "link not found")
	}

	payload, err := analytics.LinkStats(db, link.ID, opts)
	if err != nil {
		ctx.Logger.Error("Failed to fetch link statistics",
			slog.Int("linkId", linkID),
			slog.Any("error", err))
		return errorJSON(ctx, fiber.StatusInternalServerError, "failed to load statistics")
	}

	convertStatsForDisplay(payload)
	return ctx.JSON(payload)
}

// LinksClickCountsAction returns a click count per requested link ID.
// Every requested ID comes back, zero when it has no events or is not
// owned by the current profile.
func LinksClickCountsAction(ctx *cartridge.Context) error {
	profile, err := currentProfile(ctx)
	if err != nil {
		return err
	}

	rawIDs := strings.Split(ctx.Query("ids"), ",")
	requested := make([]uint, 0, len(rawIDs))
	for _, raw := range rawIDs {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return errorJSON(ctx, fiber.StatusBadRequest, "invalid link id list")
		}
		requested = append(requested, uint(id))
	}

	db := ctx.DB()
	ownedIDs, err := links.ListIDsByProfile(db, profile.ID)
	if err != nil {
		ctx.Logger.Error("Failed to list link IDs", slog.Any("error", err))
		return errorJSON(ctx, fiber.StatusInternalServerError, "failed to load click counts")
	}
	owned := make(map[uint]bool, len(ownedIDs))
	for _, id := range ownedIDs {
		owned[id] = true
	}

	queryable := make([]uint, 0, len(requested))
	for _, id := range requested {
		if owned[id] {
			queryable = append(queryable, id)
		}
	}

	counts, err := analytics.LinksClickCounts(db, queryable, ctx.Query("include_bots") == "true")
	if err != nil {
		ctx.Logger.Error("Failed to fetch click counts", slog.Any("error", err))
		return errorJSON(ctx, fiber.StatusInternalServerError, "failed to load click counts")
	}

	// Requested but unowned IDs still get a key, just a zero one.
	response := make(map[string]int64, len(requested))
	for _, id := range requested {
		response[strconv.FormatUint(uint64(id), 10)] = counts[id]
	}
	return ctx.JSON(fiber.Map{"counts": response})
}

// convertStatsForDisplay rewrites raw dimension values into their
// display names.
func convertStatsForDisplay(payload *analytics.StatsPayload) {
	payload.Countries = convertCountryStats(payload.Countries)
	payload.Devices = convertTitleCased(payload.Devices)
	payload.Browsers = convertTitleCased(payload.Browsers)
	payload.OperatingSystems = convertOSStats(payload.OperatingSystems)
	payload.Referrers = convertReferrerStats(payload.Referrers)
}

func convertReferrerStats(items []analytics.DimensionCount) []analytics.DimensionCount {
	if len(items) == 0 {
		return []analytics.DimensionCount{}
	}

	result := make([]analytics.DimensionCount, len(items))
	for i, item := range items {
		name := item.Name
		if name != analytics.UnknownDimension {
			name = referrers.FriendlyName(name)
		}
		result[i] = analytics.DimensionCount{
			Name:  name,
			Count: item.Count,
		}
	}
	return result
}

func convertCountryStats(items []analytics.DimensionCount) []analytics.DimensionCount {
	caser := cases.Upper(language.AmericanEnglish)
	countries := gountries.New()

	if len(items) == 0 {
		return []analytics.DimensionCount{}
	}

	result := make([]analytics.DimensionCount, len(items))
	for i, item := range items {
		if item.Name == analytics.UnknownDimension {
			result[i] = item
			continue
		}
		country, err := countries.FindCountryByAlpha(item.Name)
		if err != nil {
			result[i] = analytics.DimensionCount{
				Name:  caser.String(item.Name),
				Count: item.Count,
			}
			continue
		}
		result[i] = analytics.DimensionCount{
			Name:  country.Name.Common,
			Count: item.Count,
		}
	}
	return result
}

func convertTitleCased(items []analytics.DimensionCount) []analytics.DimensionCount {
	caser := cases.Title(language.AmericanEnglish)

	if len(items) == 0 {
		return []analytics.DimensionCount{}
	}

	result := make([]analytics.DimensionCount, len(items))
	for i, item := range items {
		name := item.Name
		if name != analytics.UnknownDimension {
			name = caser.String(name)
		}
		result[i] = analytics.DimensionCount{
			Name:  name,
			Count: item.Count,
		}
	}
	return result
}

func convertOSStats(items []analytics.DimensionCount) []analytics.DimensionCount {
	caser := cases.Title(language.AmericanEnglish)

	if len(items) == 0 {
		return []analytics.DimensionCount{}
	}

	result := make([]analytics.DimensionCount, len(items))
	for i, item := range items {
		name := item.Name
		if name != analytics.UnknownDimension {
			// iOS and macOS keep their vendor capitalization
			switch strings.ToLower(strings.TrimSpace(name)) {
			case "ios", "iphone os":
				name = "iOS"
			case "ipados":
				name = "iPadOS"
			case "macos", "mac os", "mac os x", "darwin":
				name = "macOS"
			default:
				name = caser.String(name)
			}
		}
		result[i] = analytics.DimensionCount{
			Name:  name,
			Count: item.Count,
		}
	}
	return result
}
