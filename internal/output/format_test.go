package output

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrinter_Plain(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		write func(Printer)
		want  string
	}{
		"header":  {write: func(p Printer) { p.Header("dry run") }, want: "─── dry run ───\n"},
		"step":    {write: func(p Printer) { p.Step("tag", "v1.2.0") }, want: "→ tag       v1.2.0\n"},
		"success": {write: func(p Printer) { p.Success("released v1.2.0") }, want: "✓ released v1.2.0\n"},
		"warn":    {write: func(p Printer) { p.Warn("nothing to release") }, want: "! nothing to release\n"},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			var buf bytes.Buffer
			tt.write(Printer{Out: &buf, Plain: true})
			assert.Equal(t, tt.want, buf.String())
		})
	}
}

func TestIsTerminal(t *testing.T) {
	t.Parallel()

	assert.False(t, IsTerminal(&bytes.Buffer{}))
}

func TestGetTerminalWidth(t *testing.T) {
	t.Parallel()

	assert.Greater(t, GetTerminalWidth(), 0)
}
