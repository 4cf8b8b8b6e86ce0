package jupyter

import (
	"fmt"
	"net"
	"os"

	"github.com/bnema/orca/internal/domain"
	"github.com/bnema/orca/internal/ports"
	"github.com/bytedance/sonic"
	"github.com/google/uuid"
)

const (
	ConnectionFileName = domain.ConnectionFileName
	connectionFileMode = 0o600
)

// ConnectionFiles reads kernel connection descriptors from disk.
type ConnectionFiles struct{}

var _ ports.ConnectionLoader = ConnectionFiles{}

func (ConnectionFiles) Load(path string) (domain.ConnectionInfo, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.ConnectionInfo{}, fmt.Errorf("read connection file: %w", err)
	}

	var info domain.ConnectionInfo
	if err := sonic.Unmarshal(data, &info); err != nil {
		return domain.ConnectionInfo{}, fmt.Errorf("decode connection file: %w", err)
	}
	if err := info.Validate(); err != nil {
		return domain.ConnectionInfo{}, err
	}

	return info, nil
}

func writeConnectionFile(path string, info domain.ConnectionInfo) error {
	data, err := sonic.Marshal(info)
	if err != nil {
		return fmt.Errorf("encode connection file: %w", err)
	}
	if err := os.WriteFile(path, data, connectionFileMode); err != nil {
		return fmt.Errorf("write connection file: %w", err)
	}
	return nil
}

// newLocalConnection reserves five loopback ports for a kernel started by
// this process. The ports are released before the kernel binds them.
func newLocalConnection() (domain.ConnectionInfo, error) {
	reserved := make([]int, 5)
	listeners := make([]net.Listener, 0, len(reserved))
	defer func() {
		for _, l := range listeners {
			_ = l.Close()
		}
	}()

	for i := range reserved {
		l, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			return domain.ConnectionInfo{}, fmt.Errorf("reserve kernel port: %w", err)
		}
		listeners = append(listeners, l)
		reserved[i] = l.Addr().(*net.TCPAddr).Port
	}

	return domain.ConnectionInfo{
		IP:              "127.0.0.1",
		Transport:       "tcp",
		ShellPort:       reserved[0],
		IOPubPort:       reserved[1],
		StdinPort:       reserved[2],
		ControlPort:     reserved[3],
		HBPort:          reserved[4],
		Key:             uuid.NewString(),
		SignatureScheme: signatureScheme,
		KernelName:      "python3",
	}, nil
}

func endpoint(info domain.ConnectionInfo, port int) string {
	transport := info.Transport
	if transport == "" {
		transport = "tcp"
	}
	return fmt.Sprintf("%s://%s:%d", transport, info.IP, port)
}
