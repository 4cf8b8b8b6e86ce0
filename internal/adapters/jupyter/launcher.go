package jupyter

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sync"

	"github.com/bnema/orca/internal/domain"
	"github.com/bnema/orca/internal/logging"
	"github.com/bnema/orca/internal/ports"
	"go.uber.org/zap"
	"go.uber.org/zap/zapio"
)

type commandFunc func(name string, args ...string) *exec.Cmd

// Launcher starts ipykernel processes on this machine.
type Launcher struct {
	python     string
	runtimeDir string
	command    commandFunc
	logger     *zap.Logger
}

var _ ports.KernelLauncher = (*Launcher)(nil)

func NewLauncher(python, runtimeDir string, logger *zap.Logger) *Launcher {
	return newLauncher(python, runtimeDir, exec.Command, logger)
}

func newLauncher(python, runtimeDir string, command commandFunc, logger *zap.Logger) *Launcher {
	if python == "" {
		python = "python3"
	}
	if runtimeDir == "" {
		runtimeDir = os.TempDir()
	}
	return &Launcher{
		python:     python,
		runtimeDir: runtimeDir,
		command:    command,
		logger:     logging.OrNop(logger).Named("kernel"),
	}
}

func (l *Launcher) Launch(ctx context.Context, spec ports.KernelSpec) (ports.KernelProcess, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	info, err := newLocalConnection()
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(l.runtimeDir, 0o700); err != nil {
		return nil, fmt.Errorf("create kernel runtime directory: %w", err)
	}
	connPath := filepath.Join(l.runtimeDir, "kernel-"+spec.ID+".json")
	if err := writeConnectionFile(connPath, info); err != nil {
		return nil, err
	}

	logger := l.logger.With(zap.String("session_id", spec.ID))
	output := &zapio.Writer{Log: logger, Level: zap.DebugLevel}

	cmd := l.command(l.python, "-m", "ipykernel_launcher", "-f", connPath)
	cmd.Dir = spec.WorkDir
	cmd.Stdout = output
	cmd.Stderr = output

	if err := cmd.Start(); err != nil {
		_ = os.Remove(connPath)
		return nil, fmt.Errorf("start kernel: %w", err)
	}

	proc := &process{
		cmd:      cmd,
		info:     info,
		connPath: connPath,
		output:   output,
		done:     make(chan struct{}),
	}
	go proc.wait(logger)

	return proc, nil
}

type process struct {
	cmd      *exec.Cmd
	info     domain.ConnectionInfo
	connPath string
	output   *zapio.Writer
	done     chan struct{}

	killOnce sync.Once
	killErr  error
}

func (p *process) wait(logger *zap.Logger) {
	err := p.cmd.Wait()
	_ = p.output.Close()
	if err != nil {
		logger.Debug("kernel exited", zap.Error(err))
	}
	close(p.done)
}

func (p *process) ConnectionInfo() domain.ConnectionInfo { return p.info }

func (p *process) Alive() bool {
	select {
	case <-p.done:
		return false
	default:
		return true
	}
}

func (p *process) Kill() error {
	p.killOnce.Do(func() {
		if p.Alive() {
			if err := p.cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
				p.killErr = fmt.Errorf("kill kernel: %w", err)
				return
			}
		}
		<-p.done

		if err := os.Remove(p.connPath); err != nil && !errors.Is(err, os.ErrNotExist) {
			p.killErr = errors.Join(p.killErr, fmt.Errorf("remove connection file: %w", err))
		}
	})
	return p.killErr
}
