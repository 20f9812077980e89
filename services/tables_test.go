package services_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/ocna/restaurant-pos/services"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTableRegistryDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tables.json")
	registry := services.NewTableRegistry(services.NewFileBlobStore(path))

	require.NoError(t, registry.Load(context.Background()))
	tables := registry.List()
	require.Len(t, tables, 12)
	assert.Equal(t, "Bàn 1", tables[0])
	assert.Equal(t, "Bàn 12", tables[11])

	// Defaults are not written until something changes.
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestTableRegistryPersistsChanges(t *testing.T) {
	ctx := context.Background()
	store := services.NewFileBlobStore(filepath.Join(t.TempDir(), "data", "tables.json"))
	registry := services.NewTableRegistry(store)
	require.NoError(t, registry.Load(ctx))

	require.NoError(t, registry.Add(ctx, " Sân vườn 1 "))
	require.NoError(t, registry.Remove(ctx, "Bàn 3"))

	var verr *services.ValidationError
	assert.ErrorAs(t, registry.Add(ctx, "Bàn 1"), &verr)
	assert.ErrorAs(t, registry.Add(ctx, ""), &verr)
	var nf *services.NotFoundError
	assert.ErrorAs(t, registry.Remove(ctx, "Bàn 99"), &nf)

	reloaded := services.NewTableRegistry(store)
	require.NoError(t, reloaded.Load(ctx))
	tables := reloaded.List()
	assert.Len(t, tables, 12)
	assert.NotContains(t, tables, "Bàn 3")
	assert.Equal(t, "Sân vườn 1", tables[len(tables)-1])
}

func TestTableRegistryRejectsCorruptBlob(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tables.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	err := services.NewTableRegistry(services.NewFileBlobStore(path)).Load(context.Background())
	var serr *services.StorageError
	assert.ErrorAs(t, err, &serr)
}

func TestTableRegistryWithStatus(t *testing.T) {
	registry := services.NewTableRegistry(services.NewFileBlobStore(filepath.Join(t.TempDir(), "t.json")))

	status := registry.WithStatus([]string{"Bàn 5", "Mang về"})
	require.Len(t, status, 12)
	for _, s := range status {
		assert.Equal(t, s.Name == "Bàn 5", s.Active, s.Name)
	}
}

func TestRedisBlobStore(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	ctx := context.Background()
	client := redis.NewClient(&redis.Options{Addr: addr})
	defer client.Close()

	key := "ocna:test:" + t.Name()
	require.NoError(t, client.Del(ctx, key).Err())
	store := services.NewRedisBlobStore(client, key)

	_, err := store.Load(ctx)
	assert.ErrorIs(t, err, services.ErrBlobMissing)

	registry := services.NewTableRegistry(store)
	require.NoError(t, registry.Load(ctx))
	require.NoError(t, registry.Add(ctx, "Bàn 13"))

	reloaded := services.NewTableRegistry(store)
	require.NoError(t, reloaded.Load(ctx))
	assert.Contains(t, reloaded.List(), "Bàn 13")
	require.NoError(t, client.Del(ctx, key).Err())
}
