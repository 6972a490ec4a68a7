package recovery

import (
	"context"
	"errors"
	"testing"

	"github.com/spf13/afero"

	"github.com/YoshitsuguKoike/kaiwa/internal/domain/model"
	"github.com/YoshitsuguKoike/kaiwa/internal/domain/model/fault"
)

func networkFault() *fault.Fault {
	return fault.New("connection refused", fault.WithCategory(model.CategoryNetwork))
}

func TestNetworkStrategy_RecoverUsesProbe(t *testing.T) {
	calls := 0
	up := false
	s := NewNetworkStrategy(func(ctx context.Context) bool {
		calls++
		return up
	}, nil)

	f := networkFault()
	if !s.CanRecover(f) {
		t.Fatal("Expected network faults to be recoverable")
	}
	if s.Recover(context.Background(), f) {
		t.Error("Expected recovery to fail while the probe fails")
	}
	up = true
	if !s.Recover(context.Background(), f) {
		t.Error("Expected recovery to succeed once the probe succeeds")
	}
	if calls != 2 {
		t.Errorf("Expected 2 probe calls, got %d", calls)
	}
}

func TestNetworkStrategy_FallbackWarns(t *testing.T) {
	var warned string
	s := NewNetworkStrategy(func(ctx context.Context) bool { return false }, func(text string) {
		warned = text
	})

	action := s.FallbackAction(networkFault())
	if action == nil {
		t.Fatal("Expected a fallback action")
	}
	action(context.Background())
	if warned == "" {
		t.Error("Expected the fallback to warn the user")
	}
}

func TestNetworkStrategy_NoWarnNoFallback(t *testing.T) {
	s := NewNetworkStrategy(func(ctx context.Context) bool { return false }, nil)
	if s.FallbackAction(networkFault()) != nil {
		t.Error("Expected no fallback without a warn func")
	}
}

func TestFileSystemStrategy_RecoverRecreatesStateDir(t *testing.T) {
	fs := afero.NewMemMapFs()
	s := NewFileSystemStrategy(fs, ".kaiwa")
	f := fault.New("ENOENT: no such file or directory", fault.WithCategory(model.CategoryFileSystem))

	if !s.CanRecover(f) {
		t.Fatal("Expected recovery to be worth attempting")
	}
	if !s.Recover(context.Background(), f) {
		t.Fatal("Expected recovery to succeed on a writable fs")
	}
	exists, err := afero.DirExists(fs, ".kaiwa")
	if err != nil || !exists {
		t.Error("Expected the state dir to be recreated")
	}
	if s.FallbackAction(f) != nil {
		t.Error("Expected no file system fallback")
	}
}

func TestFileSystemStrategy_RecoverFailsOnReadOnlyFs(t *testing.T) {
	fs := afero.NewReadOnlyFs(afero.NewMemMapFs())
	s := NewFileSystemStrategy(fs, ".kaiwa")
	f := fault.New("permission denied", fault.WithCategory(model.CategoryFileSystem))

	if s.Recover(context.Background(), f) {
		t.Error("Expected recovery to fail on a read-only fs")
	}
}

func TestFileSystemStrategy_NoBaseDir(t *testing.T) {
	s := NewFileSystemStrategy(afero.NewMemMapFs(), "")
	f := fault.New("file gone", fault.WithCategory(model.CategoryFileSystem))
	if s.CanRecover(f) {
		t.Error("Expected no recovery without a state dir")
	}
}

func TestConfigurationStrategy(t *testing.T) {
	reloadErr := errors.New("parse error")
	s := NewConfigurationStrategy(func() error { return reloadErr }, nil)
	f := fault.New("config invalid", fault.WithCategory(model.CategoryConfiguration))

	if !s.CanRecover(f) {
		t.Fatal("Expected recovery to be worth attempting with a reload func")
	}
	if s.Recover(context.Background(), f) {
		t.Error("Expected recovery to fail while reload fails")
	}

	reloadErr = nil
	if !s.Recover(context.Background(), f) {
		t.Error("Expected recovery to succeed once reload succeeds")
	}
}

func TestConfigurationStrategy_NilReload(t *testing.T) {
	s := NewConfigurationStrategy(nil, nil)
	f := fault.New("config invalid", fault.WithCategory(model.CategoryConfiguration))
	if s.CanRecover(f) {
		t.Error("Expected no recovery without a reload func")
	}
}
