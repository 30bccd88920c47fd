// Package chain reads the host chain: block height and time over CometBFT
// RPC, bank balances over gRPC and pool state over the LCD REST API.
package chain

import (
	"crypto/tls"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/elys-network/lockdrop/internal/logger"
)

var chainLogger = logger.GetForComponent("chain")

var (
	ErrInvalidResponse     = errors.New("invalid response from node")
	ErrRPCConnectionFailed = errors.New("RPC connection failed")
)

// DialGRPC opens a gRPC connection to endpoint, using TLS for port 443.
func DialGRPC(endpoint string) (*grpc.ClientConn, error) {
	if strings.TrimSpace(endpoint) == "" {
		return nil, errors.New("gRPC endpoint cannot be empty")
	}
	var creds grpc.DialOption
	if strings.Contains(endpoint, ":443") {
		creds = grpc.WithTransportCredentials(credentials.NewTLS(&tls.Config{MinVersion: tls.VersionTLS12}))
	} else {
		creds = grpc.WithTransportCredentials(insecure.NewCredentials())
	}
	conn, err := grpc.NewClient(endpoint, creds)
	if err != nil {
		return nil, fmt.Errorf("gRPC connection error: %w", err)
	}
	chainLogger.Info().Str("endpoint", endpoint).Msg("gRPC client created")
	return conn, nil
}
