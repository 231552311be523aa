package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureOutput(t *testing.T) *bytes.Buffer {
	t.Helper()
	buf := &bytes.Buffer{}
	std := logrus.StandardLogger()
	prevOut, prevFormatter, prevLevel := std.Out, std.Formatter, std.GetLevel()
	std.SetOutput(buf)
	std.SetFormatter(&logrus.JSONFormatter{})
	t.Cleanup(func() {
		std.SetOutput(prevOut)
		std.SetFormatter(prevFormatter)
		std.SetLevel(prevLevel)
	})
	return buf
}

func TestWithContext(t *testing.T) {
	buf := captureOutput(t)
	SetLevel("info")

	ctx := context.WithValue(context.Background(), "request_id", "req-42")
	ctx = context.WithValue(ctx, "actor", "keeper")
	WithContext(ctx).Infof("linked %d animals", 3)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "req-42", entry["request_id"])
	assert.Equal(t, "keeper", entry["actor"])
	assert.Equal(t, "linked 3 animals", entry["msg"])
}

func TestWithAssociation(t *testing.T) {
	buf := captureOutput(t)
	SetLevel("debug")

	WithAssociation(context.Background(), "zoos", "animals").WithField("created", 2).Debugf("flushed")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "zoos", entry["owner"])
	assert.Equal(t, "animals", entry["association"])
	assert.Equal(t, float64(2), entry["created"])
	assert.Equal(t, "debug", entry["level"])
}

func TestSetLevel(t *testing.T) {
	captureOutput(t)

	cases := map[string]logrus.Level{
		"debug":   logrus.DebugLevel,
		"info":    logrus.InfoLevel,
		"warn":    logrus.WarnLevel,
		"error":   logrus.ErrorLevel,
		"verbose": logrus.InfoLevel,
	}
	for in, want := range cases {
		SetLevel(in)
		assert.Equal(t, want, logrus.GetLevel(), in)
	}
}
