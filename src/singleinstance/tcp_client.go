package singleinstance

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"time"
)

type tcpClient struct{}

func newTcpClient() Client { return &tcpClient{} }

// Delegate finds the resident with PING and sends it the request. The reply
// only arrives once the user finishes the capture, so the read has no
// deadline beyond ctx.
func (c *tcpClient) Delegate(ctx context.Context, req Request) (Result, error) {
	dialTimeout := 2 * time.Second
	start, end := PortRange()
	for port := start; port <= end; port++ {
		addr := residentAddr(port)
		if !ping(addr, dialTimeout) {
			continue
		}
		conn, err := net.DialTimeout("tcp", addr, dialTimeout)
		if err != nil {
			continue
		}
		return exchange(ctx, conn, req)
	}
	return Result{}, nil
}

func exchange(ctx context.Context, conn net.Conn, req Request) (Result, error) {
	defer conn.Close()
	stop := context.AfterFunc(ctx, func() { _ = conn.SetDeadline(time.Now()) })
	defer stop()

	if err := sendLine(bufio.NewWriter(conn), encodeRequest(req)); err != nil {
		return Result{Delegated: true}, err
	}

	status, br, err := readLine(conn)
	if err != nil {
		if ctx.Err() != nil {
			return Result{Delegated: true}, ctx.Err()
		}
		return Result{Delegated: true}, fmt.Errorf("read status: %w", err)
	}
	payload, _ := io.ReadAll(br)

	switch status {
	case statusSaved:
		return Result{Delegated: true, Path: string(payload)}, nil
	case statusCancelled:
		return Result{Delegated: true, Cancelled: true}, nil
	case statusBusy:
		return Result{Delegated: true}, ErrBusy
	case statusError:
		return Result{Delegated: true}, errors.New(string(payload))
	default:
		return Result{Delegated: true}, fmt.Errorf("unexpected status %q", strings.TrimSpace(status))
	}
}
