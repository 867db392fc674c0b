package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func TestJSONOutput(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.GlobalLevel())

	var buf bytes.Buffer
	setOutput(&buf, "json")
	SetLevel("debug")
	log.Debug().Str("page", "1").Msg("entered")

	var line map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("Expected a JSON line, got %q: %v", buf.String(), err)
	}
	if line["message"] != "entered" || line["page"] != "1" || line["level"] != "debug" {
		t.Errorf("Unexpected log line %v", line)
	}
}

func TestSetLevelKeepsCurrentOnUnknown(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.GlobalLevel())

	var buf bytes.Buffer
	setOutput(&buf, "json")
	zerolog.SetGlobalLevel(zerolog.WarnLevel)
	SetLevel("chatty")
	if zerolog.GlobalLevel() != zerolog.WarnLevel {
		t.Errorf("Expected warn level kept, got %s", zerolog.GlobalLevel())
	}
}
