// Package integration contains tests that verify the interaction between
// platform components. The search pipeline runs fully in process over a
// temporary index and SQLite store; the PostgreSQL and Redis store tests
// skip when those services are unavailable.
//
// Run with:
//
//	go test -v ./test/integration/...
package integration

import (
	"context"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/Adithya-Monish-Kumar-K/Recipe-Search-Platform/internal/recipe"
	"github.com/Adithya-Monish-Kumar-K/Recipe-Search-Platform/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/Recipe-Search-Platform/pkg/postgres"
	pkgredis "github.com/Adithya-Monish-Kumar-K/Recipe-Search-Platform/pkg/redis"
)

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

// skipIfNoPostgres skips the test when PostgreSQL is unavailable.
func skipIfNoPostgres(t *testing.T) *postgres.Client {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	db, err := postgres.New(ctx, testPostgresConfig())
	if err != nil {
		t.Skipf("skipping integration test: postgres unavailable: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// skipIfNoRedis skips the test when Redis is unavailable.
func skipIfNoRedis(t *testing.T) *pkgredis.Client {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	client, err := pkgredis.NewClient(ctx, config.RedisConfig{
		Addr: envOrDefault("TEST_REDIS_ADDR", "localhost:6379"),
		DB:   envOrDefaultInt("TEST_REDIS_DB", 15),
	})
	if err != nil {
		t.Skipf("skipping integration test: redis unavailable: %v", err)
	}
	t.Cleanup(func() { client.Close() })
	return client
}

func testPostgresConfig() config.PostgresConfig {
	return config.PostgresConfig{
		Host:            envOrDefault("TEST_POSTGRES_HOST", "localhost"),
		Port:            envOrDefaultInt("TEST_POSTGRES_PORT", 5432),
		Database:        envOrDefault("TEST_POSTGRES_DB", "recipes_test"),
		User:            envOrDefault("TEST_POSTGRES_USER", "recipes"),
		Password:        envOrDefault("TEST_POSTGRES_PASSWORD", "localdev"),
		SSLMode:         "disable",
		MaxOpenConns:    5,
		MaxIdleConns:    2,
		ConnMaxLifetime: 5 * time.Minute,
	}
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envOrDefaultInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

var fixtures = []*recipe.Recipe{
	{
		CanonicalURL: "https://recipes.example/garlic-lemon-chicken",
		Title:        "Garlic Lemon Chicken",
		Description:  "Pan roasted chicken with a bright sauce",
		Ingredients:  []string{"chicken breast", "garlic", "lemon"},
		Keywords:     []string{"dinner", "quick"},
		TotalTime:    30,
		Yields:       "4 servings",
		Nutrients:    map[string]any{"calories": "410 kcal"},
	},
	{
		CanonicalURL: "https://recipes.example/garlic-parmesan-pasta",
		Title:        "Garlic Parmesan Pasta",
		Description:  "Weeknight pasta tossed in butter",
		Ingredients:  []string{"pasta", "garlic", "parmesan"},
		Keywords:     []string{"pasta", "vegetarian"},
		TotalTime:    "20 mins",
		Yields:       "2 servings",
		Nutrients:    map[string]any{"calories": "620 kcal"},
	},
	{
		CanonicalURL: "https://recipes.example/beef-stew",
		Title:        "Slow Cooker Beef Stew",
		Description:  "Hearty stew for cold evenings",
		Ingredients:  []string{"beef", "onion", "carrot"},
		Keywords:     []string{"stew", "comfort"},
		TotalTime:    240,
		Yields:       "6 servings",
	},
	{
		CanonicalURL: "https://recipes.example/chocolate-chip-cookies",
		Title:        "Chocolate Chip Cookies",
		Description:  "Chewy cookies",
		Ingredients:  []string{"flour", "sugar", "butter", "chocolate chips"},
		Keywords:     []string{"dessert", "baking"},
		TotalTime:    45,
		Yields:       "24 cookies",
	},
}

func fixtureIDs() []string {
	ids := make([]string, len(fixtures))
	for i, r := range fixtures {
		ids[i] = r.ID()
	}
	return ids
}
