package log_test

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/yeisme/wikiviews/pkg/configs"
	"github.com/yeisme/wikiviews/pkg/log"
)

func TestNew_WritesToConsole(t *testing.T) {
	var buf bytes.Buffer

	l := log.New(configs.LogConfig{Level: "debug"}, false, &buf)
	l.Info().Str("article", "Cat").Msg("hello")

	out := buf.String()
	assert.Contains(t, out, "hello")
	assert.Contains(t, out, "article=")
}

func TestNew_InvalidLevelFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer

	l := log.New(configs.LogConfig{Level: "loud"}, false, &buf)
	l.Debug().Msg("hidden")
	l.Info().Msg("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
	assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())
}

func TestGinWriter_ForwardsLines(t *testing.T) {
	var buf bytes.Buffer

	l := log.New(configs.LogConfig{Level: "info"}, false, &buf)
	w := log.NewGinWriter(&l, zerolog.ErrorLevel)

	n, err := w.Write([]byte("[GIN] boom\n"))
	assert.NoError(t, err)
	assert.Equal(t, len("[GIN] boom\n"), n)
	assert.Contains(t, buf.String(), "[GIN] boom")
	assert.Contains(t, buf.String(), "ERR")

	buf.Reset()

	_, _ = w.Write([]byte("   \n"))
	assert.Empty(t, buf.String())
}
