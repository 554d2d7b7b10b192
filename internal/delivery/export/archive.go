package export

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrArchiveMiss is returned when no manifest was archived for a day.
var ErrArchiveMiss = errors.New("manifest archive miss")

// Archive keeps rendered manifests in Redis.
type Archive struct {
	client *redis.Client
	ttl    time.Duration
}

// NewArchive builds an archive. A zero ttl keeps entries for a week.
func NewArchive(client *redis.Client, ttl time.Duration) *Archive {
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	return &Archive{client: client, ttl: ttl}
}

// ArchiveKey is the Redis key of the manifest for day.
func ArchiveKey(day string) string {
	return "manifest:archive:" + day
}

// Save stores pdf as the manifest of day, replacing any previous one.
func (a *Archive) Save(ctx context.Context, day string, pdf []byte) error {
	if err := a.client.Set(ctx, ArchiveKey(day), pdf, a.ttl).Err(); err != nil {
		return fmt.Errorf("archive manifest %s: %w", day, err)
	}
	return nil
}

// Load returns the archived manifest of day.
func (a *Archive) Load(ctx context.Context, day string) ([]byte, error) {
	data, err := a.client.Get(ctx, ArchiveKey(day)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrArchiveMiss
	}
	if err != nil {
		return nil, fmt.Errorf("load manifest %s: %w", day, err)
	}
	return data, nil
}
