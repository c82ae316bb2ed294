package singleinstance

import (
	"bufio"
	"context"
	"errors"
	"io"
	"net"
	"strconv"
	"time"
)

type client struct{}

func (c *client) TryDelegate(ctx context.Context, req Request) (bool, string, error) {
	timeout := 2 * time.Second
	if dl, ok := ctx.Deadline(); ok {
		if d := time.Until(dl); d > 0 {
			timeout = d
		}
	}
	start, end := portRange()
	for port := start; port <= end; port++ {
		addr := net.JoinHostPort(residentHost, strconv.Itoa(port))
		if !ping(addr, timeout) {
			continue
		}
		conn, err := net.DialTimeout("tcp", addr, timeout)
		if err != nil {
			continue
		}
		path, err := delegate(conn, req)
		conn.Close()
		return true, path, err
	}
	return false, "", nil
}

func delegate(conn net.Conn, req Request) (string, error) {
	line := clipLine
	if req.SaveToFile {
		line = fileLine
	}
	w := bufio.NewWriter(conn)
	if _, err := w.WriteString(line); err != nil {
		return "", err
	}
	if err := w.Flush(); err != nil {
		return "", err
	}

	br := bufio.NewReader(conn)
	status, err := br.ReadString('\n')
	if err != nil {
		return "", err
	}
	body, _ := io.ReadAll(br)
	switch status {
	case okLine:
		return string(body), nil
	case errLine:
		return "", errors.New(string(body))
	default:
		return "", errors.New("singleinstance: malformed response " + strconv.Quote(status))
	}
}
