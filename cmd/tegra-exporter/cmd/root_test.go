package cmd

import (
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoot_LogLevel(t *testing.T) {
	previous, level := logLevel, log.GetLevel()
	t.Cleanup(func() {
		logLevel = previous
		log.SetLevel(level)
	})

	logLevel = "loud"
	err := rootCmd.PersistentPreRunE(rootCmd, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid log level")

	logLevel = "debug"
	require.NoError(t, rootCmd.PersistentPreRunE(rootCmd, nil))
	assert.Equal(t, log.DebugLevel, log.GetLevel())
}

func TestStats_RejectsNonPositiveInterval(t *testing.T) {
	previous := statsInterval
	t.Cleanup(func() { statsInterval = previous })

	statsInterval = 0
	assert.Error(t, statsCmd.RunE(statsCmd, nil))
}
