package server

import (
	"crypto/tls"

	"github.com/pkg/errors"
)

// LoadTLSConfig builds the server side tls config from a certificate/key pair
func LoadTLSConfig(certFile, keyFile string) (*tls.Config, error) {
	cert, err := tls.LoadX509KeyPair(certFile, keyFile)
	if err != nil {
		return nil, errors.Wrapf(err, "load key pair %s %s", certFile, keyFile)
	}
	return &tls.Config{
		Certificates: []tls.Certificate{cert},
		MinVersion:   tls.VersionTLS12,
	}, nil
}
