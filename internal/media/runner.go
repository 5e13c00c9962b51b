package media

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"go.uber.org/zap"
)

// RunOptions controls how an external command is executed.
type RunOptions struct {
	Dir    string
	Env    []string
	Stdout io.Writer
	Stderr io.Writer
}

// RunResult holds the captured output of a command.
type RunResult struct {
	Stdout []byte
	Stderr []byte
}

// Runner executes ffmpeg and ffprobe. Tests substitute fakes that record the
// argument lists instead of spawning processes.
type Runner interface {
	Run(ctx context.Context, command string, args []string, opts RunOptions) (RunResult, error)
}

// CmdRunner runs commands with os/exec. Output is always captured and also
// streamed to the writers in RunOptions. A cancelled context kills the
// process and the returned error matches ctx.Err() under errors.Is.
type CmdRunner struct {
	Logger *zap.Logger
}

func (r CmdRunner) Run(ctx context.Context, command string, args []string, opts RunOptions) (RunResult, error) {
	cmd := exec.CommandContext(ctx, command, args...)
	cmd.Dir = opts.Dir
	if len(opts.Env) > 0 {
		cmd.Env = append(os.Environ(), opts.Env...)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = tee(&stdout, opts.Stdout)
	cmd.Stderr = tee(&stderr, opts.Stderr)

	start := time.Now()
	err := cmd.Run()
	if err != nil && ctx.Err() != nil {
		err = fmt.Errorf("%w (%v)", ctx.Err(), err)
	}

	if r.Logger != nil {
		r.Logger.Debug("exec",
			zap.String("tool", filepath.Base(command)),
			zap.Strings("args", args),
			zap.Duration("took", time.Since(start)),
			zap.Error(err),
		)
	}
	return RunResult{Stdout: stdout.Bytes(), Stderr: stderr.Bytes()}, err
}

func tee(buf *bytes.Buffer, w io.Writer) io.Writer {
	if w == nil {
		return buf
	}
	return io.MultiWriter(buf, w)
}

var _ Runner = CmdRunner{}
