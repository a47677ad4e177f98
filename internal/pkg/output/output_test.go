package output

import (
	"bytes"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestUI() (*UI, *bytes.Buffer, *bytes.Buffer) {
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	return &UI{Out: out, ErrOut: errOut}, out, errOut
}

func TestSuccessAndError(t *testing.T) {
	u, out, errOut := newTestUI()
	u.Success("created %s", "abc")
	u.Error("failed %d", 2)

	assert.Contains(t, out.String(), "created abc")
	assert.Contains(t, errOut.String(), "failed 2")
}

func TestField(t *testing.T) {
	u, out, _ := newTestUI()
	u.Field("Title", "Bug")
	assert.Equal(t, "Title:       Bug\n", out.String())
}

func TestTable(t *testing.T) {
	u, out, _ := newTestUI()
	table := u.Table([]string{"ID", "Title"})
	require.NoError(t, table.Append([]string{"abc", "Bug"}))
	require.NoError(t, table.Render())

	assert.Contains(t, out.String(), "abc")
	assert.Contains(t, out.String(), "Bug")
}

func TestColors(t *testing.T) {
	prev := color.NoColor
	color.NoColor = true
	defer func() { color.NoColor = prev }()

	assert.Equal(t, "Open", StatusColor("Open"))
	assert.Equal(t, "High", PriorityColor("High"))
	assert.Equal(t, "Unknown", StatusColor("Unknown"))
}
