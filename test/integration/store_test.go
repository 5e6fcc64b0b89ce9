package integration

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/Adithya-Monish-Kumar-K/Recipe-Search-Platform/internal/recipe"
	apperrors "github.com/Adithya-Monish-Kumar-K/Recipe-Search-Platform/pkg/errors"
)

type loadableStore interface {
	recipe.Store
	recipe.Loader
}

func exerciseStore(t *testing.T, s loadableStore) {
	t.Helper()
	ctx := context.Background()

	if err := s.Put(ctx, fixtures); err != nil {
		t.Fatalf("Put: %v", err)
	}
	// a second load overwrites rather than failing
	if err := s.Put(ctx, fixtures[:1]); err != nil {
		t.Fatalf("Put again: %v", err)
	}

	got, err := s.Get(ctx, fixtures[1].ID())
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Title != fixtures[1].Title {
		t.Errorf("expected %q, got %q", fixtures[1].Title, got.Title)
	}
	if m, ok := got.TotalMinutes(); !ok || m != 20 {
		t.Errorf("loosely typed total_time lost in round trip: %v %v", m, ok)
	}

	_, err = s.Get(ctx, "https://recipes.example/nope")
	if !errors.Is(err, apperrors.ErrRecordNotFound) {
		t.Errorf("expected ErrRecordNotFound, got %v", err)
	}

	ids := append(fixtureIDs(), "https://recipes.example/nope")
	many, err := s.GetMany(ctx, ids)
	if err != nil {
		t.Fatalf("GetMany: %v", err)
	}
	if len(many) != len(fixtures) {
		t.Errorf("expected %d records, got %d", len(fixtures), len(many))
	}
	if _, ok := many["https://recipes.example/nope"]; ok {
		t.Error("missing id should be absent from the result")
	}

	if err := s.Ping(ctx); err != nil {
		t.Errorf("Ping: %v", err)
	}
}

func TestPostgresStore(t *testing.T) {
	db := skipIfNoPostgres(t)
	table := fmt.Sprintf("recipes_it_%d", time.Now().UnixNano())
	s, err := recipe.NewPostgresStore(context.Background(), db, table)
	if err != nil {
		t.Fatalf("NewPostgresStore: %v", err)
	}
	t.Cleanup(func() {
		db.DB.Exec("DROP TABLE IF EXISTS " + table)
	})
	exerciseStore(t, s)
}

func TestRedisStore(t *testing.T) {
	client := skipIfNoRedis(t)
	prefix := fmt.Sprintf("recipe-it-%d:", time.Now().UnixNano())
	exerciseStore(t, recipe.NewRedisStore(client, prefix))
}

func TestSQLiteStoreOnDisk(t *testing.T) {
	path := t.TempDir() + "/recipes.db"
	s, err := recipe.OpenSQLite(context.Background(), path, "recipes")
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	exerciseStore(t, s)
	s.Close()

	// records survive a reopen
	reopened, err := recipe.OpenSQLite(context.Background(), path, "recipes")
	if err != nil {
		t.Fatal(err)
	}
	defer reopened.Close()
	if _, err := reopened.Get(context.Background(), fixtures[0].ID()); err != nil {
		t.Errorf("record lost after reopen: %v", err)
	}
}
