package singleinstance

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"net"
	"time"
)

const defaultPingTimeout = 300 * time.Millisecond

// DetectResidentPort walks the port range and returns the first port whose
// listener answers PING with PONG. The ping timeout follows ctx's deadline.
func DetectResidentPort(ctx context.Context) (int, bool) {
	timeout := defaultPingTimeout
	if dl, ok := ctx.Deadline(); ok {
		if d := time.Until(dl); d > 0 {
			timeout = d
		}
	}
	start, end := PortRange()
	for port := start; port <= end && ctx.Err() == nil; port++ {
		if err := checkResident(residentAddr(port), timeout); err == nil {
			log.Printf("singleinstance: resident found on port %d", port)
			return port, true
		}
	}
	return 0, false
}

func ping(addr string, timeout time.Duration) bool { return checkResident(addr, timeout) == nil }

// checkResident reports why addr is not a resident, or nil when it is one.
func checkResident(addr string, timeout time.Duration) error {
	conn, err := net.DialTimeout("tcp", addr, timeout)
	if err != nil {
		return err
	}
	defer conn.Close()
	_ = conn.SetDeadline(time.Now().Add(timeout))

	if err := sendLine(bufio.NewWriter(conn), pingRequest); err != nil {
		return err
	}
	resp, _, err := readLine(conn)
	if err != nil {
		return err
	}
	if resp != pongResponse {
		return fmt.Errorf("unexpected handshake reply %q", resp)
	}
	return nil
}
