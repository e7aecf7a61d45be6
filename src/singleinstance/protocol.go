package singleinstance

import (
	"bufio"
	"fmt"
	"io"
	"net"
	"os"
	"strconv"
	"strings"
)

// Line-based wire format. A client first sends PING to find the resident,
// then opens a new connection with one CAPTURE line. The resident answers
// with a status line, optionally followed by a payload up to EOF.
const (
	residentHost = "127.0.0.1"
	pingRequest  = "PING\n"
	pongResponse = "PONG\n"

	captureVerb     = "CAPTURE"
	statusSaved     = "SAVED\n"
	statusCancelled = "CANCELLED\n"
	statusBusy      = "BUSY\n"
	statusError     = "ERROR\n"
)

// Port range scanned by clients; the resident binds the first port.
const (
	portStartEnv     = "SCREEN_ANNOTATE_PORT_START"
	portEndEnv       = "SCREEN_ANNOTATE_PORT_END"
	defaultPortStart = 49620
	defaultPortEnd   = 49640
	minPort          = 1024
	maxPort          = 65535
)

// PortRange returns the inclusive port range, read from the environment and
// clamped to unprivileged ports. A reversed range is swapped.
func PortRange() (start, end int) {
	start = envPort(portStartEnv, defaultPortStart)
	end = envPort(portEndEnv, defaultPortEnd)
	if end < start {
		start, end = end, start
	}
	return start, end
}

func envPort(key string, def int) int {
	n, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return def
	}
	return min(max(n, minPort), maxPort)
}

func encodeRequest(r Request) string {
	return fmt.Sprintf("%s %d\n", captureVerb, r.Monitor)
}

// parseRequest accepts "CAPTURE" with an optional monitor index.
func parseRequest(line string) (Request, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 || fields[0] != captureVerb {
		return Request{}, fmt.Errorf("unknown request %q", strings.TrimSpace(line))
	}
	req := Request{Monitor: -1}
	if len(fields) > 1 {
		n, err := strconv.Atoi(fields[1])
		if err != nil || n < -1 {
			return Request{}, fmt.Errorf("invalid monitor %q", fields[1])
		}
		req.Monitor = n
	}
	return req, nil
}

func residentAddr(port int) string {
	return net.JoinHostPort(residentHost, strconv.Itoa(port))
}

// sendLine writes a complete status or request line and flushes it.
func sendLine(w *bufio.Writer, parts ...string) error {
	for _, p := range parts {
		if _, err := w.WriteString(p); err != nil {
			return err
		}
	}
	return w.Flush()
}

// readLine returns one newline-terminated line, newline included.
func readLine(r io.Reader) (string, *bufio.Reader, error) {
	br := bufio.NewReader(r)
	line, err := br.ReadString('\n')
	return line, br, err
}
