// Package rules resolves template placeholders. Simple rules (contents,
// css, meta) are computed in process; the rest are delegated to an external
// subprocess over a synchronous line-delimited JSON protocol.
package rules

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"time"

	sberrors "git.home.luguber.info/inful/sitebuilder/internal/errors"
)

// ProtocolVersion is the request envelope version. Responses that do not
// decode against the versioned schema are protocol errors.
const ProtocolVersion = 1

// request is one line written to the delegate's standard input.
type request struct {
	V       int               `json:"v"`
	Ctx     EvaluationContext `json:"ctx"`
	Ty      string            `json:"ty"`
	Options map[string]any    `json:"options,omitempty"`
	Value   string            `json:"value,omitempty"`
}

// response is one line read back. Value must be present; a missing value
// distinguishes a malformed reply from an empty substitution.
type response struct {
	Value *string `json:"value"`
}

// Processor owns the optional delegate subprocess for one generation run.
// The subprocess is started once, held open for the whole render pass, and
// must be released through Close on every exit path. Requests are strictly
// serialized: one in flight, responses read in request order.
type Processor struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stdout *bufio.Reader

	// OnRequest, when set, is invoked once per delegate request.
	OnRequest func()
}

// Start launches the delegate subprocess. An empty command is valid and
// yields a processor that can only resolve native rules.
func Start(command []string) (*Processor, error) {
	if len(command) == 0 {
		return &Processor{}, nil
	}

	cmd := exec.Command(command[0], command[1:]...)
	cmd.Stderr = os.Stderr

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, sberrors.Wrap(err, sberrors.CategoryProcessor, sberrors.SeverityFatal,
			"failed to open delegate stdin")
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, sberrors.Wrap(err, sberrors.CategoryProcessor, sberrors.SeverityFatal,
			"failed to open delegate stdout")
	}

	if err := cmd.Start(); err != nil {
		return nil, sberrors.Wrap(err, sberrors.CategoryProcessor, sberrors.SeverityFatal,
			"failed to start delegate").WithContext("command", command[0])
	}

	return &Processor{
		cmd:    cmd,
		stdin:  stdin,
		stdout: bufio.NewReader(stdout),
	}, nil
}

// Configured reports whether a delegate subprocess is attached.
func (p *Processor) Configured() bool {
	return p.cmd != nil
}

// send writes one request line and blocks for exactly one response line.
// There is deliberately no request timeout: a stalled delegate stalls the
// render pass (see Close for the shutdown grace period).
func (p *Processor) send(req request) (string, error) {
	req.V = ProtocolVersion
	if p.OnRequest != nil {
		p.OnRequest()
	}

	line, err := json.Marshal(req)
	if err != nil {
		return "", sberrors.Wrap(err, sberrors.CategoryProcessor, sberrors.SeverityFatal,
			"failed to encode delegate request").WithContext("rule", req.Ty)
	}
	line = append(line, '\n')
	if _, err := p.stdin.Write(line); err != nil {
		return "", sberrors.Wrap(err, sberrors.CategoryProcessor, sberrors.SeverityFatal,
			"failed to write to delegate").WithContext("rule", req.Ty)
	}

	reply, err := p.stdout.ReadBytes('\n')
	if err != nil {
		return "", sberrors.Wrap(err, sberrors.CategoryProcessor, sberrors.SeverityFatal,
			"delegate closed the connection").WithContext("rule", req.Ty)
	}

	var resp response
	if err := json.Unmarshal(reply, &resp); err != nil {
		return "", sberrors.Wrap(err, sberrors.CategoryProcessor, sberrors.SeverityFatal,
			"malformed delegate response").WithContext("rule", req.Ty)
	}
	if resp.Value == nil {
		return "", sberrors.New(sberrors.CategoryProcessor, sberrors.SeverityFatal,
			"delegate response is missing the value field").WithContext("rule", req.Ty)
	}
	return *resp.Value, nil
}

// closeGrace bounds how long Close waits for the delegate to exit after
// its stdin is closed before killing it.
const closeGrace = 3 * time.Second

// Close releases the delegate subprocess. Closing stdin signals a
// well-behaved delegate to exit; one that lingers past the grace period is
// killed. Safe to call when no delegate is configured.
func (p *Processor) Close() error {
	if p.cmd == nil {
		return nil
	}

	closeErr := p.stdin.Close()

	done := make(chan error, 1)
	go func() { done <- p.cmd.Wait() }()

	select {
	case err := <-done:
		if closeErr != nil {
			return closeErr
		}
		return err
	case <-time.After(closeGrace):
		if err := p.cmd.Process.Kill(); err != nil {
			return fmt.Errorf("delegate did not exit and kill failed: %w", err)
		}
		<-done
		return fmt.Errorf("delegate did not exit within %s, killed", closeGrace)
	}
}
