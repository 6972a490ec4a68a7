package claudecli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"time"
)

// Runner executes the claude binary in non-interactive print mode
// (`claude -p --output-format json "prompt"`).
type Runner struct {
	Bin     string
	Timeout time.Duration
}

// Response represents the JSON response from claude
type Response struct {
	Type       string  `json:"type"`
	Subtype    string  `json:"subtype"`
	IsError    bool    `json:"is_error"`
	DurationMs int     `json:"duration_ms"`
	Result     string  `json:"result"`
	SessionID  string  `json:"session_id"`
	TotalCost  float64 `json:"total_cost_usd"`
}

// Run sends one prompt and returns the result text
func (r Runner) Run(ctx context.Context, prompt string, extraArgs ...string) (string, error) {
	args := []string{"-p", "--output-format", "json"}
	args = append(args, extraArgs...)
	args = append(args, prompt)

	cctx, cancel := context.WithTimeout(ctx, r.Timeout)
	defer cancel()

	cmd := exec.CommandContext(cctx, r.Bin, args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("claude execution failed: %w (output: %s)", err, string(out))
	}

	result, err := ParseResponse(out)
	if errors.Is(err, ErrNotJSON) {
		// Not the structured envelope; return the raw output for
		// backward compatibility
		return string(out), nil
	}
	if err != nil {
		return "", err
	}
	return result, nil
}

// ErrNotJSON marks output that is not the structured JSON envelope.
// An is_error response is NOT ErrNotJSON; it propagates as a real failure.
var ErrNotJSON = errors.New("claude output is not JSON")

// ParseResponse extracts the result text from claude's JSON output
func ParseResponse(out []byte) (string, error) {
	var resp Response
	if err := json.Unmarshal(out, &resp); err != nil {
		return "", fmt.Errorf("%w: %v", ErrNotJSON, err)
	}
	if resp.IsError {
		return "", fmt.Errorf("claude returned error: %s", resp.Result)
	}
	return resp.Result, nil
}

// Available reports whether the claude binary can be found on PATH
func (r Runner) Available() error {
	if _, err := exec.LookPath(r.Bin); err != nil {
		return fmt.Errorf("claude binary %q not found: %w", r.Bin, err)
	}
	return nil
}
