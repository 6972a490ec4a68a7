package session

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/google/uuid"

	"github.com/YoshitsuguKoike/kaiwa/internal/application/port/output"
	"github.com/YoshitsuguKoike/kaiwa/internal/application/service"
	"github.com/YoshitsuguKoike/kaiwa/internal/domain/model/fault"
)

// RichSession is the full-featured interactive loop: colored output, an
// in-flight spinner, and input history. At every failure-prone boundary it
// consults the fault handler; when a fault is both unrecovered and
// escalating it stops so the caller can switch to the degraded session.
type RichSession struct {
	agent  output.AgentGateway
	tools  output.ToolGateway
	faults *service.FaultHandler

	in         *bufio.Reader
	out        io.Writer
	useSpinner bool

	sessionID    string
	history      []string
	conversation []output.Message

	mu     sync.Mutex
	active bool
	stopCh chan struct{}
	sigCh  chan os.Signal
}

// RichOption configures a RichSession
type RichOption func(*RichSession)

// WithRichInput replaces the input stream (default stdin)
func WithRichInput(r io.Reader) RichOption {
	return func(s *RichSession) {
		s.in = bufio.NewReader(r)
	}
}

// WithRichOutput replaces the output stream and disables the spinner
// (it garbles non-terminal writers).
func WithRichOutput(w io.Writer) RichOption {
	return func(s *RichSession) {
		s.out = w
		s.useSpinner = false
	}
}

// NewRichSession creates a rich session
func NewRichSession(agent output.AgentGateway, tools output.ToolGateway, faults *service.FaultHandler, opts ...RichOption) *RichSession {
	s := &RichSession{
		agent:      agent,
		tools:      tools,
		faults:     faults,
		in:         bufio.NewReader(os.Stdin),
		out:        os.Stdout,
		useSpinner: true,
		sessionID:  uuid.New().String(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SessionID returns the per-process session identifier
func (s *RichSession) SessionID() string {
	return s.sessionID
}

// Run drives the loop until the user exits, input ends, or an escalating
// fault occurs. It reports escalated=true when the caller must hand over
// to a degraded session.
func (s *RichSession) Run(ctx context.Context) (escalated bool) {
	s.mu.Lock()
	if s.active {
		s.mu.Unlock()
		return false
	}
	s.active = true
	s.stopCh = make(chan struct{})
	s.sigCh = make(chan os.Signal, 1)
	s.mu.Unlock()
	defer s.Shutdown()

	signal.Notify(s.sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		select {
		case <-s.sigCh:
			s.Shutdown()
		case <-s.stopCh:
		}
	}()

	cyan := color.New(color.FgCyan)
	fmt.Fprintln(s.out, cyan.Sprintf("kaiwa session %s (agent: %s)", shortID(s.sessionID), s.agent.Name()))
	fmt.Fprintln(s.out, "type 'help' for commands")

	// A termination signal marks the session inactive, but an in-flight
	// read returns only on the next line or EOF; the loop exits on its
	// next IsActive check.
	for s.IsActive() {
		line, err := s.readLine()
		if err != nil {
			return false
		}
		input := strings.TrimSpace(line)

		switch strings.ToLower(input) {
		case "":
			continue
		case "exit", "quit":
			return false
		case "help":
			fmt.Fprintln(s.out, "commands: exit, help, clear, history, stats")
			continue
		case "clear":
			s.conversation = nil
			fmt.Fprintln(s.out, "conversation cleared")
			continue
		case "history":
			s.printHistory()
			continue
		case "stats":
			s.printStats()
			continue
		}

		s.history = append(s.history, input)
		if s.turn(ctx, input) {
			return true
		}
	}
	return false
}

// turn runs one conversation turn; returns true when the session must
// escalate to degraded mode.
func (s *RichSession) turn(ctx context.Context, input string) bool {
	s.conversation = append(s.conversation, output.Message{Role: output.RoleUser, Content: input})

	var spn *spinner.Spinner
	if s.useSpinner {
		spn = spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
		spn.Suffix = " thinking..."
		spn.Start()
	}
	reply, err := s.agent.Send(ctx, s.conversation, s.tools.ListTools())
	if spn != nil {
		spn.Stop()
	}

	if err != nil {
		if !s.faults.HandleNetwork(ctx, err, "agent send") {
			if s.mustEscalate(s.faults.LastFault()) {
				return true
			}
		}
		return false
	}

	if reply.Text != "" {
		fmt.Fprintln(s.out, reply.Text)
		s.conversation = append(s.conversation, output.Message{Role: output.RoleAssistant, Content: reply.Text})
	}

	for _, tc := range reply.ToolCalls {
		result, err := s.tools.Invoke(ctx, tc.Name, tc.Input)
		if err != nil {
			if !s.faults.HandleTool(ctx, err, "tool: "+tc.Name) && s.mustEscalate(s.faults.LastFault()) {
				return true
			}
			continue
		}
		fmt.Fprintf(s.out, "[%s] %s\n", tc.Name, truncate(result, 1000))
		s.conversation = append(s.conversation, output.Message{
			Role:     output.RoleTool,
			ToolName: tc.Name,
			Content:  result,
		})
	}
	return false
}

// mustEscalate prints the one-time fallback notice when the fault forces
// the mode switch.
func (s *RichSession) mustEscalate(f *fault.Fault) bool {
	if !s.faults.ShouldEscalate(f) {
		return false
	}
	yellow := color.New(color.FgYellow, color.Bold)
	fmt.Fprintln(s.out, yellow.Sprint("switching to fallback mode"))
	return true
}

// Shutdown ends the session; idempotent
func (s *RichSession) Shutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.active {
		return
	}
	s.active = false
	signal.Stop(s.sigCh)
	close(s.stopCh)
}

// IsActive reports whether the loop is running
func (s *RichSession) IsActive() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

func (s *RichSession) readLine() (string, error) {
	fmt.Fprint(s.out, "kaiwa> ")
	line, err := s.in.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func (s *RichSession) printHistory() {
	start := 0
	if len(s.history) > 10 {
		start = len(s.history) - 10
	}
	for _, h := range s.history[start:] {
		fmt.Fprintln(s.out, "  "+h)
	}
}

func (s *RichSession) printStats() {
	for cat, n := range s.faults.Stats() {
		if n > 0 {
			fmt.Fprintf(s.out, "  %s: %d\n", cat, n)
		}
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
