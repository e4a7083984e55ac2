package logger_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/ardanlabs/crowdpool/foundation/logger"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	out := filepath.Join(t.TempDir(), "log.json")

	log, err := logger.New("TEST", out)
	require.NoError(t, err)

	log.Infow("startup", "status", "started")
	log.Sync()

	data, err := os.ReadFile(out)
	require.NoError(t, err)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(data, &entry))
	require.Equal(t, "TEST", entry["service"])
	require.Equal(t, "startup", entry["msg"])
	require.Equal(t, "started", entry["status"])
}
