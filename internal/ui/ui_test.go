package ui

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProgressBar(t *testing.T) {
	assert.Equal(t, "█████░░░░░  50%", ProgressBar(1, 2, 10))
	assert.Equal(t, "░░░░░░░░░░   0%", ProgressBar(0, 0, 10))
	assert.Equal(t, "█████ 100%", ProgressBar(3, 3, 1), "width is clamped to 5")
}

func TestPanel_MonoTheme(t *testing.T) {
	SetTheme("mono")
	defer SetTheme("classic")

	var buf bytes.Buffer
	Panel(&buf, []string{"Todos", "no items"})
	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "+"), out)
	assert.Contains(t, out, "| Todos")
	assert.Contains(t, out, "no items")
	assert.Equal(t, "[x]", Current().BoxChecked)
}

func TestAlerts(t *testing.T) {
	SetTheme("mono")
	defer SetTheme("classic")

	var buf bytes.Buffer
	OK(&buf, "added")
	Fail(&buf, "Error adding todo")
	assert.Equal(t, "x added\n✖ Error adding todo\n", buf.String())
}

func TestSetTheme_Unknown(t *testing.T) {
	SetTheme("unknown")
	assert.Equal(t, "☑", Current().BoxChecked)
}
