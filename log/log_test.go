package log

import (
	"bytes"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestSetLevelAndFields(t *testing.T) {
	var buf bytes.Buffer
	out, level := Logger.Out, Logger.Level
	Logger.SetOutput(&buf)
	t.Cleanup(func() {
		Logger.SetOutput(out)
		Logger.SetLevel(level)
	})

	SetLevel(InfoLevel)
	Debugf("hidden %d", 1)
	assert.Empty(t, buf.String())

	SetLevel(DebugLevel)
	assert.Equal(t, logrus.DebugLevel, Logger.GetLevel())
	WithFields(Fields{"request_id": "abc"}).Info("shown")
	assert.Contains(t, buf.String(), "request_id=abc")
	assert.Contains(t, buf.String(), "shown")
}
