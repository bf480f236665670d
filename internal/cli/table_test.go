package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWriteTableRendersHeaderAndRows(t *testing.T) {
	var buf bytes.Buffer
	WriteTable(&buf, [3]string{"ID", "Name", "Description"}, []Row{
		{ID: "net-check", Name: "Network check", Description: "pings localhost"},
		{ID: "power-check", Name: "Power check", Description: "reads the PSU rail"},
	})

	out := buf.String()
	assert.Contains(t, out, "ID")
	assert.Contains(t, out, "net-check")
	assert.Contains(t, out, "power-check")
}

func TestWriteTableTruncatesLongDescriptions(t *testing.T) {
	var buf bytes.Buffer
	long := strings.Repeat("x", 200)
	WriteTable(&buf, [3]string{"ID", "Name", "Description"}, []Row{
		{ID: "t1", Name: "T1", Description: long},
	})

	out := buf.String()
	assert.NotContains(t, out, long)
}

func TestWriteTableEmptyRows(t *testing.T) {
	var buf bytes.Buffer
	WriteTable(&buf, [3]string{"ID", "Name", "Description"}, nil)
	assert.Contains(t, buf.String(), "ID")
}
