package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("SERVER_PORT", "")
	t.Setenv("ACCESS_TOKEN_DURATION", "bogus")
	t.Setenv("MAX_UPLOAD_SIZE", "-5")
	t.Setenv("LIVE_QUERY_LIMIT", "50")

	cfg := LoadConfig()

	assert.Equal(t, 8080, cfg.ServerPort)
	assert.Equal(t, 2*time.Hour, cfg.AccessTokenDuration)
	assert.Equal(t, int64(10*1024*1024), cfg.MaxUploadSize)
	assert.Equal(t, 50, cfg.LiveQueryLimit)
}

func TestLoadMinIO_PublicURLFromEndpoint(t *testing.T) {
	t.Setenv("MINIO_ENDPOINT", "storage:9000")
	t.Setenv("MINIO_USE_SSL", "true")
	// registers restore of the original value, then removes it for this test
	t.Setenv("MINIO_PUBLIC_URL", "")
	os.Unsetenv("MINIO_PUBLIC_URL")

	m := LoadMinIO()

	assert.True(t, m.UseSSL)
	assert.Equal(t, "https://storage:9000", m.PublicURL)
}

func TestLoadClient(t *testing.T) {
	t.Setenv("FEED_API_URL", "http://feed.example:8080")
	t.Setenv("FEED_TOKEN_FILE", "/tmp/tokens.json")

	c := LoadClient()

	assert.Equal(t, "http://feed.example:8080", c.APIURL)
	assert.Equal(t, "/tmp/tokens.json", c.TokenFile)
}

func TestParseDuration(t *testing.T) {
	assert.Equal(t, 30*time.Minute, parseDuration("30m", time.Hour))
	assert.Equal(t, time.Hour, parseDuration("7d", time.Hour))
}
