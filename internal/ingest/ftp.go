package ingest

import (
	"fmt"
	"io"
	"time"

	"github.com/jlaffaye/ftp"
)

// ArchiveClient retrieves dataset snapshots from an anonymous FTP mirror,
// used for archives that are not published over HTTP (the Dataful mangrove
// time series distribution).
type ArchiveClient struct {
	host string
}

func NewArchiveClient(host string) *ArchiveClient {
	return &ArchiveClient{host: host}
}

// Fetch retrieves one file from the mirror.
func (c *ArchiveClient) Fetch(path string) ([]byte, error) {
	conn, err := ftp.Dial(c.host, ftp.DialWithTimeout(30*time.Second))
	if err != nil {
		return nil, fmt.Errorf("ftp dial: %w", err)
	}
	defer conn.Quit()

	if err := conn.Login("anonymous", "anonymous"); err != nil {
		return nil, fmt.Errorf("ftp login: %w", err)
	}

	resp, err := conn.Retr(path)
	if err != nil {
		return nil, fmt.Errorf("ftp retr %s: %w", path, err)
	}
	defer resp.Close()

	body, err := io.ReadAll(resp)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return body, nil
}
