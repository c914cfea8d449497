package services

import (
	"encoding/json"
	"fmt"
	"log"
	"net"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"
)

// SshServerConfig describes one biometric match server the collector pulls
// quality logs from.
type SshServerConfig struct {
	Name      string `json:"name"`
	Host      string `json:"host"`
	RemoteDir string `json:"remote_dir"`
}

// CollectService downloads quality logs over SFTP into the pipeline input
// directory, one subdirectory per server so identical filenames never
// collide. Files already present locally are not downloaded again.
type CollectService struct {
	servers  []SshServerConfig
	user     string
	password string
	inputDir string
}

func NewCollectService(servers []SshServerConfig, user, password, inputDir string) *CollectService {
	return &CollectService{
		servers:  servers,
		user:     user,
		password: password,
		inputDir: inputDir,
	}
}

// LoadSSHServers reads the server list from the JSON file at filePath, or,
// when the file is absent, from the raw fallback format
// "host,remote_dir;host2,remote_dir2". Incomplete entries are skipped.
func LoadSSHServers(filePath, raw string) ([]SshServerConfig, error) {
	if filePath != "" {
		data, err := os.ReadFile(filePath)
		if err == nil {
			var servers []SshServerConfig
			if err := json.Unmarshal(data, &servers); err != nil {
				return nil, fmt.Errorf("parse %s: %w", filePath, err)
			}
			valid := servers[:0]
			for _, server := range servers {
				if server.Host == "" || server.RemoteDir == "" {
					continue
				}
				if server.Name == "" {
					server.Name = server.Host
				}
				valid = append(valid, server)
			}
			return valid, nil
		}
		if !os.IsNotExist(err) {
			return nil, err
		}
	}

	var servers []SshServerConfig
	for _, entry := range strings.Split(raw, ";") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		parts := strings.Split(entry, ",")
		if len(parts) != 2 {
			continue
		}
		host := strings.TrimSpace(parts[0])
		remoteDir := strings.TrimSpace(parts[1])
		if host == "" || remoteDir == "" {
			continue
		}
		servers = append(servers, SshServerConfig{Name: host, Host: host, RemoteDir: remoteDir})
	}
	return servers, nil
}

// CollectFromServers pulls new .log files from every configured server.
// A failing server is logged and skipped. Returns the total number of files
// downloaded.
func (s *CollectService) CollectFromServers() (int, error) {
	if len(s.servers) == 0 {
		log.Println("No SSH servers configured, skipping collection")
		return 0, nil
	}
	if s.user == "" || s.password == "" {
		return 0, fmt.Errorf("SSH_USER or SSH_PASSWORD is not configured")
	}

	if err := os.MkdirAll(s.inputDir, 0755); err != nil {
		return 0, err
	}

	total := 0
	for _, server := range s.servers {
		downloaded, err := s.collectFromServer(server)
		if err != nil {
			log.Printf("Collection from %s failed: %v\n", server.Host, err)
			continue
		}
		total += downloaded
	}

	log.Printf("Collection finished, %d new file(s) downloaded\n", total)
	return total, nil
}

func (s *CollectService) collectFromServer(server SshServerConfig) (int, error) {
	addr := server.Host
	if _, _, err := net.SplitHostPort(addr); err != nil {
		addr = net.JoinHostPort(addr, "22")
	}

	config := &ssh.ClientConfig{
		User: s.user,
		Auth: []ssh.AuthMethod{ssh.Password(s.password)},
		// match servers live on a closed network, host keys are not pinned
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
	}

	log.Printf("Connecting to %s@%s\n", s.user, server.Host)
	conn, err := ssh.Dial("tcp", addr, config)
	if err != nil {
		return 0, fmt.Errorf("ssh dial %s: %w", addr, err)
	}
	defer conn.Close()

	client, err := sftp.NewClient(conn)
	if err != nil {
		return 0, fmt.Errorf("open sftp: %w", err)
	}
	defer client.Close()

	serverDir := filepath.Join(s.inputDir, server.Name)
	if err := os.MkdirAll(serverDir, 0755); err != nil {
		return 0, err
	}

	entries, err := client.ReadDir(server.RemoteDir)
	if err != nil {
		return 0, fmt.Errorf("list %s: %w", server.RemoteDir, err)
	}

	downloaded := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(strings.ToLower(entry.Name()), ".log") {
			continue
		}

		localPath := filepath.Join(serverDir, entry.Name())
		if _, err := os.Stat(localPath); err == nil {
			continue
		}

		remotePath := path.Join(server.RemoteDir, entry.Name())
		if err := downloadFile(client, remotePath, localPath); err != nil {
			log.Printf("Download of %s failed: %v\n", remotePath, err)
			continue
		}
		log.Printf("Downloaded %s to %s\n", remotePath, localPath)
		downloaded++
	}

	return downloaded, nil
}

func downloadFile(client *sftp.Client, remotePath, localPath string) error {
	src, err := client.Open(remotePath)
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := os.Create(localPath)
	if err != nil {
		return err
	}

	if _, err := src.WriteTo(dst); err != nil {
		dst.Close()
		os.Remove(localPath)
		return err
	}
	return dst.Close()
}
