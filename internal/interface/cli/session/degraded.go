package session

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"golang.org/x/text/unicode/norm"

	"github.com/YoshitsuguKoike/kaiwa/internal/application/dto"
	"github.com/YoshitsuguKoike/kaiwa/internal/application/port/output"
	"github.com/YoshitsuguKoike/kaiwa/internal/application/service"
)

const (
	ansiYellow = "\x1b[33m"
	ansiRed    = "\x1b[31m"
	ansiReset  = "\x1b[0m"
)

// DegradedSession is a minimal interactive loop that stays usable when the
// rich-mode components (presenter, spinner, history) are unavailable. It
// only depends on plain readers and writers; optional ANSI codes are raw
// constants gated by the degraded configuration.
type DegradedSession struct {
	agent  output.AgentGateway
	tools  output.ToolGateway
	faults *service.FaultHandler
	cfg    dto.DegradedConfig

	in  *bufio.Reader
	out io.Writer

	mu           sync.Mutex
	active       bool
	stopCh       chan struct{}
	sigCh        chan os.Signal
	conversation []output.Message
}

// Option configures a DegradedSession
type Option func(*DegradedSession)

// WithInput replaces the input stream (default stdin)
func WithInput(r io.Reader) Option {
	return func(s *DegradedSession) {
		s.in = bufio.NewReader(r)
	}
}

// WithOutput replaces the output stream (default stdout)
func WithOutput(w io.Writer) Option {
	return func(s *DegradedSession) {
		s.out = w
	}
}

// NewDegradedSession creates a degraded session.
// cfg is a snapshot taken at construction; it is not live-reloaded.
func NewDegradedSession(agent output.AgentGateway, tools output.ToolGateway, faults *service.FaultHandler, cfg dto.DegradedConfig, opts ...Option) *DegradedSession {
	s := &DegradedSession{
		agent:  agent,
		tools:  tools,
		faults: faults,
		cfg:    cfg,
		in:     bufio.NewReader(os.Stdin),
		out:    os.Stdout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start runs the loop until the user types exit, the input stream closes,
// or a termination signal arrives. A failed turn never terminates the
// session; the failure is printed inline and the loop continues.
func (s *DegradedSession) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.active {
		s.mu.Unlock()
		return errors.New("degraded session already running")
	}
	s.active = true
	s.stopCh = make(chan struct{})
	s.sigCh = make(chan os.Signal, 1)
	s.mu.Unlock()

	signal.Notify(s.sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		select {
		case <-s.sigCh:
			s.Shutdown()
		case <-s.stopCh:
		}
	}()

	s.println(s.colorize("⚠ kaiwa is running in degraded mode; rich features are disabled", ansiYellow))
	s.printHelp()

	// A termination signal marks the session inactive, but an in-flight
	// read returns only on the next line or EOF; the loop exits on its
	// next IsActive check.
	for s.IsActive() {
		line, err := s.GetInput("> ")
		if err != nil {
			break
		}

		// Full-width input (e.g. ｅｘｉｔ) folds to its ASCII form
		cmd := strings.ToLower(strings.TrimSpace(norm.NFKC.String(line)))
		switch cmd {
		case "":
			continue
		case "exit", "quit":
			s.Shutdown()
			return nil
		case "help":
			s.printHelp()
			continue
		case "clear":
			s.conversation = nil
			s.println("conversation cleared")
			continue
		}

		s.runTurn(ctx, strings.TrimSpace(line))
	}

	s.Shutdown()
	return nil
}

// runTurn sends one conversation turn and dispatches any tool calls
// sequentially. Every failure is routed through the fault handler and
// reported inline.
func (s *DegradedSession) runTurn(ctx context.Context, input string) {
	s.conversation = append(s.conversation, output.Message{Role: output.RoleUser, Content: input})

	reply, err := s.agent.Send(ctx, s.conversation, s.tools.ListTools())
	if err != nil {
		if !s.faults.HandleNetwork(ctx, err, "agent send") {
			s.println(s.colorize("error: "+err.Error(), ansiRed))
		}
		return
	}

	if reply.Text != "" {
		s.println(reply.Text)
		s.conversation = append(s.conversation, output.Message{Role: output.RoleAssistant, Content: reply.Text})
	}

	for _, tc := range reply.ToolCalls {
		result, err := s.tools.Invoke(ctx, tc.Name, tc.Input)
		if err != nil {
			if !s.faults.HandleTool(ctx, err, "tool: "+tc.Name) {
				s.println(s.colorize(fmt.Sprintf("tool %s failed: %v", tc.Name, err), ansiRed))
			}
			continue
		}
		s.println(fmt.Sprintf("[%s] %s", tc.Name, truncate(result, 1000)))
		s.conversation = append(s.conversation, output.Message{
			Role:     output.RoleTool,
			ToolName: tc.Name,
			Content:  result,
		})
	}
}

// Shutdown ends the session. It is idempotent and safe to call from the
// signal goroutine.
func (s *DegradedSession) Shutdown() {
	s.mu.Lock()
	if !s.active {
		s.mu.Unlock()
		return
	}
	s.active = false
	signal.Stop(s.sigCh)
	close(s.stopCh)
	s.mu.Unlock()

	s.println("session closed")
}

// IsActive reports whether the loop is running
func (s *DegradedSession) IsActive() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// GetInput prints the prompt and reads one line of input.
// Exposed for reuse and testing.
func (s *DegradedSession) GetInput(prompt string) (string, error) {
	fmt.Fprint(s.out, prompt)
	line, err := s.in.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func (s *DegradedSession) printHelp() {
	s.println("commands: exit (leave the session), help (show this list), clear (reset the conversation)")
}

func (s *DegradedSession) println(text string) {
	fmt.Fprintln(s.out, text)
}

func (s *DegradedSession) colorize(text, code string) string {
	if s.cfg.DisableColors {
		return text
	}
	return code + text + ansiReset
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "…"
}
