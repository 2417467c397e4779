package server

import (
	"crypto/tls"
	"fmt"

	"go.uber.org/zap"
)

// NewTLSConfig creates a TLS configuration from a PEM certificate and key.
// TLS 1.2 is the minimum; browsers negotiate 1.3 where available.
func NewTLSConfig(certPath, keyPath string, logger *zap.Logger) (*tls.Config, error) {
	cert, err := tls.LoadX509KeyPair(certPath, keyPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load TLS certificate: %w", err)
	}

	config := &tls.Config{
		Certificates: []tls.Certificate{cert},
		MinVersion:   tls.VersionTLS12,
	}

	logger.Info("TLS configuration created from files",
		zap.String("cert", certPath),
		zap.String("key", keyPath),
		zap.Any("tls_info", GetTLSInfo(config)),
	)

	return config, nil
}

// GetTLSInfo returns human-readable TLS configuration information
func GetTLSInfo(config *tls.Config) map[string]interface{} {
	return map[string]interface{}{
		"min_version":     tls.VersionName(config.MinVersion),
		"num_certs":       len(config.Certificates),
		"session_tickets": !config.SessionTicketsDisabled,
	}
}
