package browser

import (
	"fmt"
	"net/url"
	"os/exec"
	"runtime"
	"strings"
)

// Opener launches article URLs. Command overrides the platform opener;
// it is split on spaces and the URL appended as the last argument.
type Opener struct {
	Command string

	// start is swapped in tests.
	start func(name string, args ...string) error
}

func New(command string) *Opener {
	return &Opener{Command: strings.TrimSpace(command)}
}

// Open validates rawURL and hands it to the browser without waiting for it.
func (o *Opener) Open(rawURL string) error {
	if err := validate(rawURL); err != nil {
		return err
	}
	name, args := o.command(rawURL)
	start := o.start
	if start == nil {
		start = func(name string, args ...string) error {
			return exec.Command(name, args...).Start()
		}
	}
	if err := start(name, args...); err != nil {
		return fmt.Errorf("launching %s: %w", name, err)
	}
	return nil
}

func validate(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("refusing to open URL with scheme %q (only http/https allowed)", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("refusing to open URL without host: %q", rawURL)
	}
	return nil
}

func (o *Opener) command(rawURL string) (string, []string) {
	if o.Command != "" {
		fields := strings.Fields(o.Command)
		return fields[0], append(fields[1:], rawURL)
	}

	switch runtime.GOOS {
	case "darwin":
		return "open", []string{rawURL}
	case "windows":
		// rundll32 avoids cmd /c start and its shell interpretation
		return "rundll32", []string{"url.dll,FileProtocolHandler", rawURL}
	default:
		return "xdg-open", []string{rawURL}
	}
}
