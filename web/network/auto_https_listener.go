// Package network wraps the web listener so plain-HTTP requests hitting a
// TLS port get redirected to HTTPS instead of failing the handshake.
package network

import "net"

type AutoHttpsListener struct {
	net.Listener
}

// NewAutoHttpsListener wraps the listener; accepted connections sniff their
// first bytes for a plaintext HTTP request.
func NewAutoHttpsListener(listener net.Listener) net.Listener {
	return &AutoHttpsListener{
		Listener: listener,
	}
}

func (l *AutoHttpsListener) Accept() (net.Conn, error) {
	conn, err := l.Listener.Accept()
	if err != nil {
		return nil, err
	}
	return newAutoHttpsConn(conn), nil
}
