package resource

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/url"
	"sync"
	"time"

	"github.com/jlaffaye/ftp"
)

const (
	ftpDefaultPort = "21"
	ftpDialTimeout = 30 * time.Second
)

// ftpConns tracks the control and data connections of one FTP session so
// that cancellation can interrupt whichever read is blocked.
type ftpConns struct {
	mu    sync.Mutex
	conns []net.Conn
}

func (c *ftpConns) dialFunc(ctx context.Context) func(network, address string) (net.Conn, error) {
	d := &net.Dialer{Timeout: ftpDialTimeout}
	return func(network, address string) (net.Conn, error) {
		conn, err := d.DialContext(ctx, network, address)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.conns = append(c.conns, conn)
		c.mu.Unlock()
		return conn, nil
	}
}

// expire makes every pending and future read or write fail immediately.
func (c *ftpConns) expire() {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := time.Now()
	for _, conn := range c.conns {
		_ = conn.SetDeadline(now)
	}
}

// ftpBody closes both the transfer and the control connection.
type ftpBody struct {
	resp *ftp.Response
	conn *ftp.ServerConn
	stop func() bool
}

func (b *ftpBody) Read(p []byte) (int, error) {
	return b.resp.Read(p)
}

func (b *ftpBody) Close() error {
	b.stop()
	err := b.resp.Close()
	if quitErr := b.conn.Quit(); err == nil {
		err = quitErr
	}
	return err
}

// ftpAddress returns host:port for u, defaulting to port 21.
func ftpAddress(u *url.URL) string {
	if u.Port() != "" {
		return u.Host
	}
	return net.JoinHostPort(u.Hostname(), ftpDefaultPort)
}

// ftpCredentials returns the URL's user and password, or anonymous login.
func ftpCredentials(u *url.URL) (user, pass string) {
	user, pass = "anonymous", "anonymous"
	if u.User != nil {
		user = u.User.Username()
		if p, ok := u.User.Password(); ok {
			pass = p
		}
	}
	return user, pass
}

// openFTP retrieves u over FTP. The returned size is -1 when the server does
// not support SIZE. Cancelling ctx interrupts the transfer.
func openFTP(ctx context.Context, u *url.URL) (io.ReadCloser, int64, error) {
	conns := &ftpConns{}
	stop := context.AfterFunc(ctx, conns.expire)

	conn, err := ftp.Dial(ftpAddress(u), ftp.DialWithDialFunc(conns.dialFunc(ctx)))
	if err != nil {
		stop()
		return nil, 0, fmt.Errorf("ftp: connection failed: %w", err)
	}

	user, pass := ftpCredentials(u)
	if err := conn.Login(user, pass); err != nil {
		stop()
		conn.Quit()
		return nil, 0, fmt.Errorf("ftp: login failed: %w", err)
	}

	size, err := conn.FileSize(u.Path)
	if err != nil {
		size = -1
	}

	resp, err := conn.Retr(u.Path)
	if err != nil {
		stop()
		conn.Quit()
		return nil, 0, fmt.Errorf("ftp: retrieve %s: %w", u.Path, err)
	}

	return &ftpBody{resp: resp, conn: conn, stop: stop}, size, nil
}
