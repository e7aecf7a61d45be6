package singleinstance

import (
	"bufio"
	"context"
	"log"
	"net"
	"time"
)

const handshakeTimeout = 3 * time.Second

// tcpServer implements Server over TCP loopback.
type tcpServer struct {
	lis      net.Listener
	incoming chan *tcpConn
	port     int
}

func newTcpServer() Server { return &tcpServer{incoming: make(chan *tcpConn, 8)} }

// Start binds the first port of the range only; a taken port means another
// resident owns it.
func (s *tcpServer) Start(ctx context.Context) error {
	if s.lis != nil {
		return nil
	}
	start, _ := PortRange()
	addr := residentAddr(start)
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		log.Printf("singleinstance: failed to bind %s: %v", addr, err)
		return err
	}
	s.lis = lis
	s.port = start
	log.Printf("singleinstance: listening on %s", addr)
	go s.acceptLoop(ctx, lis)
	return nil
}

func (s *tcpServer) Port() int { return s.port }

func (s *tcpServer) acceptLoop(ctx context.Context, lis net.Listener) {
	for {
		c, err := lis.Accept()
		if err != nil {
			return
		}
		tc := handshake(c)
		if tc == nil {
			continue
		}
		select {
		case s.incoming <- tc:
		case <-ctx.Done():
			_ = c.Close()
			return
		}
	}
}

// handshake reads the first line of c. PINGs and malformed requests are
// answered and closed here; a capture request is returned still open.
func handshake(c net.Conn) *tcpConn {
	remote := c.RemoteAddr().String()
	_ = c.SetDeadline(time.Now().Add(handshakeTimeout))
	line, _, _ := readLine(c)
	bw := bufio.NewWriter(c)

	if line == pingRequest {
		_ = sendLine(bw, pongResponse)
		_ = c.Close()
		return nil
	}
	req, err := parseRequest(line)
	if err != nil {
		log.Printf("singleinstance: rejecting %s: %v", remote, err)
		_ = sendLine(bw, statusError, err.Error())
		_ = c.Close()
		return nil
	}

	// The answer waits for the user.
	_ = c.SetDeadline(time.Time{})
	log.Printf("singleinstance: capture request from %s (monitor %d)", remote, req.Monitor)
	return &tcpConn{c: c, r: req, w: bw}
}

func (s *tcpServer) Next(ctx context.Context) (Conn, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case tc := <-s.incoming:
		return tc, nil
	}
}

func (s *tcpServer) Close() error {
	if s.lis == nil {
		return nil
	}
	err := s.lis.Close()
	s.lis = nil
	return err
}

type tcpConn struct {
	c net.Conn
	r Request
	w *bufio.Writer
}

func (tc *tcpConn) Request() Request { return tc.r }

func (tc *tcpConn) RespondSaved(path string) error { return sendLine(tc.w, statusSaved, path) }

func (tc *tcpConn) RespondCancelled() error { return sendLine(tc.w, statusCancelled) }

func (tc *tcpConn) RespondBusy() error { return sendLine(tc.w, statusBusy) }

func (tc *tcpConn) RespondError(msg string) error { return sendLine(tc.w, statusError, msg) }

func (tc *tcpConn) Close() error { return tc.c.Close() }
