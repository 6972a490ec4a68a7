package recovery

import (
	"context"
	"net"
	"path/filepath"
	"time"

	"github.com/spf13/afero"

	"github.com/YoshitsuguKoike/kaiwa/internal/domain/model/fault"
)

// WarnFunc surfaces a warning line to the user
type WarnFunc func(text string)

// Prober checks whether the network is reachable right now
type Prober func(ctx context.Context) bool

// defaultProbeAddr is a host the agent backends need anyway; reaching it
// is a good enough signal that connectivity is back.
const defaultProbeAddr = "api.anthropic.com:443"

func defaultProber(ctx context.Context) bool {
	d := net.Dialer{Timeout: 2 * time.Second}
	conn, err := d.DialContext(ctx, "tcp", defaultProbeAddr)
	if err != nil {
		return false
	}
	conn.Close()
	return true
}

// NetworkStrategy recovers NETWORK faults by probing connectivity.
// When probing keeps failing, its fallback tells the user the session
// continues offline.
type NetworkStrategy struct {
	probe Prober
	warn  WarnFunc
}

// NewNetworkStrategy creates a network strategy.
// A nil probe uses a TCP dial against a well-known host.
func NewNetworkStrategy(probe Prober, warn WarnFunc) *NetworkStrategy {
	if probe == nil {
		probe = defaultProber
	}
	return &NetworkStrategy{probe: probe, warn: warn}
}

// CanRecover reports whether recovery is worth attempting
func (s *NetworkStrategy) CanRecover(f *fault.Fault) bool {
	return true
}

// Recover performs one connectivity probe
func (s *NetworkStrategy) Recover(ctx context.Context, f *fault.Fault) bool {
	return s.probe(ctx)
}

// FallbackAction warns the user that the session continues offline
func (s *NetworkStrategy) FallbackAction(f *fault.Fault) func(ctx context.Context) {
	if s.warn == nil {
		return nil
	}
	return func(ctx context.Context) {
		s.warn("network unavailable; continuing in offline mode")
	}
}

// FileSystemStrategy recovers FILE_SYSTEM faults by making sure the
// session state directory exists and is writable.
type FileSystemStrategy struct {
	fs      afero.Fs
	baseDir string
}

// NewFileSystemStrategy creates a file system strategy rooted at baseDir
func NewFileSystemStrategy(fs afero.Fs, baseDir string) *FileSystemStrategy {
	return &FileSystemStrategy{fs: fs, baseDir: baseDir}
}

// CanRecover reports whether recovery is worth attempting
func (s *FileSystemStrategy) CanRecover(f *fault.Fault) bool {
	return s.baseDir != ""
}

// Recover recreates the state directory and verifies it is writable
func (s *FileSystemStrategy) Recover(ctx context.Context, f *fault.Fault) bool {
	if err := s.fs.MkdirAll(s.baseDir, 0755); err != nil {
		return false
	}
	probe := filepath.Join(s.baseDir, ".write_probe")
	if err := afero.WriteFile(s.fs, probe, []byte("ok"), 0644); err != nil {
		return false
	}
	_ = s.fs.Remove(probe)
	return true
}

// FallbackAction returns nil; a broken file system has no safe last resort
func (s *FileSystemStrategy) FallbackAction(f *fault.Fault) func(ctx context.Context) {
	return nil
}

// ConfigurationStrategy recovers CONFIGURATION faults by reloading
// configuration, falling back to built-in defaults.
type ConfigurationStrategy struct {
	reload func() error
	warn   WarnFunc
}

// NewConfigurationStrategy creates a configuration strategy.
// reload re-reads configuration; nil means recovery is never possible.
func NewConfigurationStrategy(reload func() error, warn WarnFunc) *ConfigurationStrategy {
	return &ConfigurationStrategy{reload: reload, warn: warn}
}

// CanRecover reports whether a reload function is available
func (s *ConfigurationStrategy) CanRecover(f *fault.Fault) bool {
	return s.reload != nil
}

// Recover re-reads the configuration
func (s *ConfigurationStrategy) Recover(ctx context.Context, f *fault.Fault) bool {
	return s.reload() == nil
}

// FallbackAction warns that built-in defaults are in use
func (s *ConfigurationStrategy) FallbackAction(f *fault.Fault) func(ctx context.Context) {
	if s.warn == nil {
		return nil
	}
	return func(ctx context.Context) {
		s.warn("configuration could not be reloaded; using built-in defaults")
	}
}
