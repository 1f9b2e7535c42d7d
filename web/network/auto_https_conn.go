package network

import (
	"bufio"
	"bytes"
	"fmt"
	"net"
	"net/http"
	"sync"
)

// autoHttpsConn peeks at the first read. If the bytes parse as a plaintext
// HTTP request it answers with a 307 to the https:// equivalent and closes;
// otherwise the buffered bytes are replayed to the TLS stack untouched.
type autoHttpsConn struct {
	net.Conn

	firstBuf []byte
	bufStart int

	sniffOnce sync.Once
}

func newAutoHttpsConn(conn net.Conn) net.Conn {
	return &autoHttpsConn{
		Conn: conn,
	}
}

func (c *autoHttpsConn) sniffRequest() {
	c.firstBuf = make([]byte, 2048)
	n, err := c.Conn.Read(c.firstBuf)
	c.firstBuf = c.firstBuf[:n]
	if err != nil {
		return
	}

	request, err := http.ReadRequest(bufio.NewReader(bytes.NewReader(c.firstBuf)))
	if err != nil {
		return
	}

	resp := http.Response{
		StatusCode: http.StatusTemporaryRedirect,
		Header:     http.Header{},
	}
	resp.Header.Set("Location", fmt.Sprintf("https://%v%v", request.Host, request.RequestURI))
	resp.Write(c.Conn)
	c.Close()
	c.firstBuf = nil
}

func (c *autoHttpsConn) Read(buf []byte) (int, error) {
	c.sniffOnce.Do(c.sniffRequest)

	if c.firstBuf != nil {
		n := copy(buf, c.firstBuf[c.bufStart:])
		c.bufStart += n
		if c.bufStart >= len(c.firstBuf) {
			c.firstBuf = nil
		}
		return n, nil
	}

	return c.Conn.Read(buf)
}
