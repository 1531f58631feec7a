// Package netcheck answers "can we reach the news host at all?" once, at
// launch.
package netcheck

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"time"
)

const defaultTimeout = 3 * time.Second

// Check dials the host of rawURL over TCP.
func Check(ctx context.Context, rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if u.Hostname() == "" {
		return fmt.Errorf("URL %q has no host", rawURL)
	}

	port := u.Port()
	if port == "" {
		switch u.Scheme {
		case "http":
			port = "80"
		default:
			port = "443"
		}
	}

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, defaultTimeout)
		defer cancel()
	}

	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", net.JoinHostPort(u.Hostname(), port))
	if err != nil {
		return fmt.Errorf("reaching %s: %w", u.Hostname(), err)
	}
	return conn.Close()
}
