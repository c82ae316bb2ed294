package singleinstance

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"time"
)

const (
	residentHost = "127.0.0.1"
	pingLine     = "PING\n"
	pongLine     = "PONG\n"
	fileLine     = "FILE\n"
	clipLine     = "CLIPBOARD\n"
	okLine       = "SUCCESS\n"
	errLine      = "ERROR\n"
)

// ErrServerClosed is returned by Next after Close.
var ErrServerClosed = errors.New("singleinstance: server closed")

type server struct {
	lis      net.Listener
	incoming chan *serverConn
	port     int
	closed   bool
}

func (s *server) Start(ctx context.Context) error {
	if s.lis != nil {
		return nil
	}
	start, _ := portRange()
	addr := fmt.Sprintf("%s:%d", residentHost, start)
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		log.Printf("singleinstance: bind %s failed: %v", addr, err)
		return err
	}
	s.lis = lis
	s.port = start
	log.Printf("singleinstance: resident on %s", addr)
	go s.acceptLoop(ctx)
	return nil
}

func (s *server) Port() int { return s.port }

func (s *server) acceptLoop(ctx context.Context) {
	for {
		c, err := s.lis.Accept()
		if err != nil {
			return
		}
		// The first line decides: liveness probe or capture request.
		_ = c.SetDeadline(time.Now().Add(3 * time.Second))
		br := bufio.NewReader(c)
		line, _ := br.ReadString('\n')
		bw := bufio.NewWriter(c)
		if line == pingLine {
			_, _ = bw.WriteString(pongLine)
			_ = bw.Flush()
			_ = c.Close()
			continue
		}

		// Capture requests stay open until the capture finishes.
		_ = c.SetDeadline(time.Time{})
		req := Request{SaveToFile: line == fileLine}
		log.Printf("singleinstance: capture request from %s, save=%v", c.RemoteAddr(), req.SaveToFile)
		select {
		case s.incoming <- &serverConn{c: c, req: req, w: bw}:
		case <-ctx.Done():
			_ = c.Close()
			return
		}
	}
}

func (s *server) Next(ctx context.Context) (Conn, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case sc, ok := <-s.incoming:
		if !ok {
			return nil, ErrServerClosed
		}
		return sc, nil
	}
}

func (s *server) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	if s.lis != nil {
		_ = s.lis.Close()
		s.lis = nil
	}
	close(s.incoming)
	return nil
}

type serverConn struct {
	c   net.Conn
	req Request
	w   *bufio.Writer
}

func (sc *serverConn) Request() Request { return sc.req }

func (sc *serverConn) RespondSuccess(path string) error {
	if _, err := sc.w.WriteString(okLine + path); err != nil {
		return err
	}
	return sc.w.Flush()
}

func (sc *serverConn) RespondError(msg string) error {
	if _, err := sc.w.WriteString(errLine + msg); err != nil {
		return err
	}
	return sc.w.Flush()
}

func (sc *serverConn) Close() error { return sc.c.Close() }
