package log

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInfoWritesFields(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	SetLogger("debug", true, false)
	t.Cleanup(func() { SetLogger("info", false, false) })

	Info("Degree initialized", "id", "degree1", "year", 2026)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "Degree initialized", entry["msg"])
	assert.Equal(t, "degree1", entry["id"])
	assert.EqualValues(t, 2026, entry["year"])
}

func TestWithFieldsOddPairs(t *testing.T) {
	e := WithFields("id", "degree1", "dangling")
	assert.Equal(t, "degree1", e.Data["id"])
	assert.Equal(t, "dangling", e.Data["!BADKEY"])
}

func TestSetLoggerUnknownLevel(t *testing.T) {
	SetLogger("loud", false, false)
	assert.Equal(t, logrus.InfoLevel, logrus.GetLevel())
}
