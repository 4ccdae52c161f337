package notify

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWriter(t *testing.T) {
	var buf bytes.Buffer
	NewWriter(&buf).Notify(Info("Inserted: %s", "a.png"))
	assert.Equal(t, "Inserted: a.png\n", buf.String())
}

func TestMulti(t *testing.T) {
	var a, b Recorder
	Multi{&a, nil, &b}.Notify(Error("Error inserting file: %s", "boom"))
	assert.Equal(t, []Notice{{Level: LevelError, Message: "Error inserting file: boom"}}, a.Notices())
	assert.Len(t, b.Notices(), 1)
}
