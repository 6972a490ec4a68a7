package console

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/YoshitsuguKoike/kaiwa/internal/domain/model"
	"github.com/YoshitsuguKoike/kaiwa/internal/domain/model/fault"
)

func TestDisplayError_NoColors(t *testing.T) {
	var buf bytes.Buffer
	p := New(&buf, true)

	f := fault.New("send failed", fault.WithCategory(model.CategoryNetwork))
	p.DisplayError(f, "agent send")

	assert.Equal(t, "✗ [HIGH] NETWORK: send failed (agent send)\n", buf.String())
}

func TestDisplayError_NoContext(t *testing.T) {
	var buf bytes.Buffer
	p := New(&buf, true)

	f := fault.New("bad prompt", fault.WithCategory(model.CategoryInputValidation))
	p.DisplayError(f, "")

	assert.Equal(t, "✗ [LOW] INPUT_VALIDATION: bad prompt\n", buf.String())
}

func TestDisplayWarning_NoColors(t *testing.T) {
	var buf bytes.Buffer
	p := New(&buf, true)

	p.DisplayWarning("offline mode")

	assert.Equal(t, "⚠ offline mode\n", buf.String())
}

func TestDisplayError_ColorsEnabled(t *testing.T) {
	var buf bytes.Buffer
	p := New(&buf, false)

	f := fault.New("send failed", fault.WithCategory(model.CategoryNetwork), fault.WithSeverity(model.SeverityCritical))
	p.DisplayError(f, "")

	assert.Contains(t, buf.String(), "\x1b[")
	assert.Contains(t, buf.String(), "send failed")
}
