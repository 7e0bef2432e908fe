package store

import (
	"bufio"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"
	"time"
)

// Valkey implements KV against a Valkey/Redis-compatible server using a
// minimal RESP client. It lets several dashboard replicas share one cache.
type Valkey struct {
	cfg ValkeyConfig
}

// ValkeyConfig holds connection parameters for the Valkey server.
type ValkeyConfig struct {
	Addr         string
	Username     string
	Password     string
	DB           int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	MaxRetries   int
	TLS          bool
}

// NewValkey creates a Valkey-backed KV and pings the target so bad
// credentials or connectivity fail at startup, not on first use.
func NewValkey(cfg ValkeyConfig) (*Valkey, error) {
	if cfg.Addr == "" {
		return nil, errors.New("valkey addr is required")
	}
	if cfg.DialTimeout <= 0 {
		cfg.DialTimeout = 2 * time.Second
	}
	if cfg.ReadTimeout <= 0 {
		cfg.ReadTimeout = 500 * time.Millisecond
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 500 * time.Millisecond
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 1
	}

	v := &Valkey{cfg: cfg}
	ctx, cancel := context.WithTimeout(context.Background(), cfg.DialTimeout)
	defer cancel()
	if err := v.ping(ctx); err != nil {
		return nil, err
	}
	return v, nil
}

// Get fetches bytes by key, returning ErrNotFound when the key is absent.
func (v *Valkey) Get(ctx context.Context, key string) ([]byte, error) {
	var payload []byte
	err := v.withConn(ctx, func(rc *respConn) error {
		if err := rc.writeCommand("GET", []byte(key)); err != nil {
			return err
		}
		reply, err := rc.readReply()
		if err != nil {
			return err
		}
		switch reply.typ {
		case respNil:
			return ErrNotFound
		case respBulkString:
			payload = reply.data
			return nil
		default:
			return fmt.Errorf("unexpected reply type %q for GET", reply.typ)
		}
	})
	return payload, err
}

// Set stores bytes with the provided TTL (PX when ttl > 0).
func (v *Valkey) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return v.withConn(ctx, func(rc *respConn) error {
		args := [][]byte{[]byte(key), value}
		if ttl > 0 {
			args = append(args, []byte("PX"), []byte(strconv.FormatInt(ttl.Milliseconds(), 10)))
		}
		if err := rc.writeCommand("SET", args...); err != nil {
			return err
		}
		reply, err := rc.readReply()
		if err != nil {
			return err
		}
		if reply.typ != respSimpleString || string(reply.data) != "OK" {
			return fmt.Errorf("unexpected SET response: %s", reply.data)
		}
		return nil
	})
}

// Del removes a key.
func (v *Valkey) Del(ctx context.Context, key string) error {
	return v.withConn(ctx, func(rc *respConn) error {
		if err := rc.writeCommand("DEL", []byte(key)); err != nil {
			return err
		}
		_, err := rc.readReply()
		return err
	})
}

// Close is a no-op; connections are per-operation.
func (v *Valkey) Close() error { return nil }

func (v *Valkey) ping(ctx context.Context) error {
	return v.withConn(ctx, func(rc *respConn) error {
		if err := rc.writeCommand("PING"); err != nil {
			return err
		}
		reply, err := rc.readReply()
		if err != nil {
			return err
		}
		if reply.typ != respSimpleString || string(reply.data) != "PONG" {
			return fmt.Errorf("unexpected PING response: %s", reply.data)
		}
		return nil
	})
}

func (v *Valkey) withConn(ctx context.Context, fn func(*respConn) error) error {
	var lastErr error
	for attempt := 0; attempt < v.cfg.MaxRetries; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		rc, err := v.dial(ctx)
		if err == nil {
			if err = v.handshake(rc); err == nil {
				err = fn(rc)
			}
			rc.close()
		}
		if err == nil {
			return nil
		}
		lastErr = err
		if !retryable(err) || attempt == v.cfg.MaxRetries-1 {
			return err
		}
		time.Sleep(time.Duration(1<<attempt) * 25 * time.Millisecond)
	}
	return lastErr
}

func (v *Valkey) dial(ctx context.Context) (*respConn, error) {
	dialer := net.Dialer{Timeout: v.cfg.DialTimeout}
	var (
		conn net.Conn
		err  error
	)
	if v.cfg.TLS {
		host := v.cfg.Addr
		if h, _, splitErr := net.SplitHostPort(v.cfg.Addr); splitErr == nil {
			host = h
		}
		conn, err = tls.DialWithDialer(&dialer, "tcp", v.cfg.Addr,
			&tls.Config{MinVersion: tls.VersionTLS12, ServerName: host})
	} else {
		conn, err = dialer.DialContext(ctx, "tcp", v.cfg.Addr)
	}
	if err != nil {
		return nil, err
	}
	return &respConn{
		conn:         conn,
		reader:       bufio.NewReader(conn),
		writer:       bufio.NewWriter(conn),
		readTimeout:  v.cfg.ReadTimeout,
		writeTimeout: v.cfg.WriteTimeout,
	}, nil
}

func (v *Valkey) handshake(rc *respConn) error {
	if v.cfg.Password != "" {
		args := [][]byte{[]byte(v.cfg.Password)}
		if v.cfg.Username != "" {
			args = [][]byte{[]byte(v.cfg.Username), []byte(v.cfg.Password)}
		}
		if err := rc.writeCommand("AUTH", args...); err != nil {
			return err
		}
		reply, err := rc.readReply()
		if err != nil {
			return err
		}
		if reply.typ != respSimpleString || !strings.EqualFold(string(reply.data), "OK") {
			return fmt.Errorf("auth failed: %s", reply.data)
		}
	}
	if v.cfg.DB > 0 {
		if err := rc.writeCommand("SELECT", []byte(strconv.Itoa(v.cfg.DB))); err != nil {
			return err
		}
		reply, err := rc.readReply()
		if err != nil {
			return err
		}
		if reply.typ != respSimpleString || !strings.EqualFold(string(reply.data), "OK") {
			return fmt.Errorf("select failed: %s", reply.data)
		}
	}
	return nil
}

func retryable(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// respType enumerates the subset of RESP reply types the client needs.
type respType byte

const (
	respSimpleString respType = '+'
	respBulkString   respType = '$'
	respInteger      respType = ':'
	respNil          respType = '_'
)

type respReply struct {
	typ  respType
	data []byte
}

type respConn struct {
	conn         net.Conn
	reader       *bufio.Reader
	writer       *bufio.Writer
	readTimeout  time.Duration
	writeTimeout time.Duration
}

func (rc *respConn) close() { _ = rc.conn.Close() }

func (rc *respConn) writeCommand(command string, args ...[]byte) error {
	if err := rc.conn.SetWriteDeadline(time.Now().Add(rc.writeTimeout)); err != nil {
		return err
	}
	parts := append([][]byte{[]byte(command)}, args...)
	if _, err := fmt.Fprintf(rc.writer, "*%d\r\n", len(parts)); err != nil {
		return err
	}
	for _, part := range parts {
		if _, err := fmt.Fprintf(rc.writer, "$%d\r\n", len(part)); err != nil {
			return err
		}
		if _, err := rc.writer.Write(part); err != nil {
			return err
		}
		if _, err := rc.writer.WriteString("\r\n"); err != nil {
			return err
		}
	}
	return rc.writer.Flush()
}

func (rc *respConn) readReply() (respReply, error) {
	if err := rc.conn.SetReadDeadline(time.Now().Add(rc.readTimeout)); err != nil {
		return respReply{}, err
	}
	prefix, err := rc.reader.ReadByte()
	if err != nil {
		return respReply{}, err
	}
	switch prefix {
	case '+':
		line, err := rc.readLine()
		return respReply{typ: respSimpleString, data: line}, err
	case '-':
		line, err := rc.readLine()
		if err != nil {
			return respReply{}, err
		}
		return respReply{}, errors.New(string(line))
	case ':':
		line, err := rc.readLine()
		return respReply{typ: respInteger, data: line}, err
	case '$':
		line, err := rc.readLine()
		if err != nil {
			return respReply{}, err
		}
		size, err := strconv.Atoi(string(line))
		if err != nil {
			return respReply{}, err
		}
		if size < 0 {
			return respReply{typ: respNil}, nil
		}
		buf := make([]byte, size+2)
		if _, err := io.ReadFull(rc.reader, buf); err != nil {
			return respReply{}, err
		}
		if buf[size] != '\r' || buf[size+1] != '\n' {
			return respReply{}, errors.New("invalid bulk string termination")
		}
		return respReply{typ: respBulkString, data: buf[:size]}, nil
	default:
		return respReply{}, fmt.Errorf("unexpected RESP prefix %q", prefix)
	}
}

func (rc *respConn) readLine() ([]byte, error) {
	line, err := rc.reader.ReadString('\n')
	if err != nil {
		return nil, err
	}
	return []byte(strings.TrimRight(line, "\r\n")), nil
}
