package capture

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"sync"
	"time"

	"github.com/hushwire/voxd/internal/config"
	"github.com/mattn/go-shellwords"
)

// execController records microphone audio by shelling out to ffmpeg (or a
// compatible tool) that writes s16le PCM to stdout. Stop finalizes the
// session into a WAV artifact on disk.
type execController struct {
	cmd []string
	cfg config.CaptureConfig

	mu        sync.Mutex
	active    bool
	startedAt time.Time
	process   *os.Process
	stdout    io.ReadCloser
	stderr    *bytes.Buffer
	waitErr   chan error
	pcm       bytes.Buffer
	drained   chan struct{}
}

// NewExecController builds the production controller from config.
func NewExecController(cfg config.CaptureConfig) (Controller, error) {
	parser := shellwords.NewParser()
	args, err := parser.Parse(cfg.Command)
	if err != nil {
		return nil, fmt.Errorf("parse capture command: %w", err)
	}
	if len(args) == 0 {
		return nil, fmt.Errorf("capture command is empty")
	}
	return &execController{cmd: args, cfg: cfg}, nil
}

func (c *execController) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.active {
		return &Error{Op: "start", Err: errors.New("capture already in progress")}
	}

	args := append([]string{}, c.cmd[1:]...)
	args = append(args,
		"-nostdin",
		"-hide_banner",
		"-loglevel", "warning",
		"-f", c.cfg.InputFormat,
		"-i", c.cfg.InputDevice,
		"-ac", strconv.Itoa(c.cfg.Channels),
		"-ar", strconv.Itoa(c.cfg.SampleRate),
		"-f", "s16le",
		"-",
	)

	command := exec.Command(c.cmd[0], args...)
	stderr := &bytes.Buffer{}
	command.Stderr = stderr

	stdout, err := command.StdoutPipe()
	if err != nil {
		return &Error{Op: "start", Err: fmt.Errorf("create stdout pipe: %w", err)}
	}
	if err := command.Start(); err != nil {
		return &Error{Op: "start", Err: fmt.Errorf("open capture device: %w", err)}
	}

	waitErr := make(chan error, 1)
	go func() {
		waitErr <- command.Wait()
		close(waitErr)
	}()

	// A device that cannot be opened (busy, absent) makes ffmpeg exit
	// almost immediately.
	select {
	case err := <-waitErr:
		if err != nil {
			return &Error{Op: "start", Err: fmt.Errorf("%w: %s", err, trimmed(stderr))}
		}
		return &Error{Op: "start", Err: errors.New("recorder exited before capture started")}
	case <-ctx.Done():
		_ = command.Process.Kill()
		return &Error{Op: "start", Err: ctx.Err()}
	case <-time.After(250 * time.Millisecond):
	}

	c.pcm.Reset()
	c.drained = make(chan struct{})
	go func(out io.Reader, done chan struct{}) {
		defer close(done)
		buf := make([]byte, 4096)
		for {
			n, err := out.Read(buf)
			if n > 0 {
				c.mu.Lock()
				c.pcm.Write(buf[:n])
				c.mu.Unlock()
			}
			if err != nil {
				return
			}
		}
	}(stdout, c.drained)

	c.active = true
	c.startedAt = time.Now()
	c.process = command.Process
	c.stdout = stdout
	c.stderr = stderr
	c.waitErr = waitErr
	return nil
}

func (c *execController) Stop(ctx context.Context) (string, error) {
	c.mu.Lock()
	if !c.active {
		c.mu.Unlock()
		return "", &Error{Op: "stop", Err: errors.New("no capture in progress")}
	}
	process := c.process
	waitErr := c.waitErr
	drained := c.drained
	stderr := c.stderr
	c.mu.Unlock()

	if process != nil {
		_ = process.Signal(os.Interrupt)
	}
	select {
	case <-waitErr:
	case <-time.After(1200 * time.Millisecond):
		if process != nil {
			_ = process.Kill()
		}
		<-waitErr
	case <-ctx.Done():
		if process != nil {
			_ = process.Kill()
		}
		<-waitErr
	}
	<-drained

	c.mu.Lock()
	defer c.mu.Unlock()
	c.active = false
	pcm := append([]byte(nil), c.pcm.Bytes()...)
	c.pcm.Reset()
	// Killing the recorder mid-sample can leave a trailing half sample.
	pcm = pcm[:len(pcm)&^1]

	if len(pcm) == 0 {
		return "", &Error{Op: "stop", Err: fmt.Errorf("no audio captured: %s", trimmed(stderr))}
	}

	dir := c.cfg.Dir
	if dir == "" {
		dir = os.TempDir()
	}
	file, err := os.CreateTemp(dir, "voxd_capture_*.wav")
	if err != nil {
		return "", &Error{Op: "stop", Err: fmt.Errorf("create artifact: %w", err)}
	}
	defer file.Close()

	if err := writePCMToWAV(file, pcm, c.cfg.SampleRate, c.cfg.Channels); err != nil {
		os.Remove(file.Name())
		return "", &Error{Op: "stop", Err: err}
	}
	return file.Name(), nil
}

func (c *execController) Active() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

func (c *execController) Status() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.active {
		return Snapshot{Known: true}
	}
	if c.startedAt.IsZero() {
		return Snapshot{Active: true}
	}
	return Snapshot{Active: true, Elapsed: time.Since(c.startedAt), Known: true}
}

func trimmed(buf *bytes.Buffer) string {
	if buf == nil {
		return ""
	}
	return string(bytes.TrimSpace(buf.Bytes()))
}
