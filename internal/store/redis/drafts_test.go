package redis

import (
	"context"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"

	"github.com/MrKriegler/go-warranty/internal/core"
)

func TestDraftKey(t *testing.T) {
	assert.Equal(t, "warranty:quote_draft:abc", draftKey("abc"))
}

func TestDraftStoreUnreachable(t *testing.T) {
	// nothing listens on port 1
	client := goredis.NewClient(&goredis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()
	store := NewDraftStore(client)

	_, err := store.Get(context.Background(), "d1")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, core.ErrDraftNotFound)
}
