package storage

import (
	"fmt"
	"net"
	"os"
	"path"
	"path/filepath"
	"sort"

	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/agent"
)

// SFTPFS exposes a directory on a remote SFTP server as a FileSystem.
//
// Constructed with NewSFTPFS it owns the connection: Mount dials the server
// and Unmount closes it. Constructed with NewSFTPFSFromClient it borrows an
// already-open client and never closes it.
type SFTPFS struct {
	host string
	port int
	user string
	base string

	sshClient  *ssh.Client
	sftpClient *sftp.Client
	borrowed   bool
}

// NewSFTPFS creates a remote filesystem rooted at base on host. The
// connection is established on Mount, using the SSH agent or default keys
// for authentication.
func NewSFTPFS(host string, port int, user, base string) *SFTPFS {
	return &SFTPFS{host: host, port: port, user: user, base: base}
}

// NewSFTPFSFromClient wraps an established SFTP client. The client is
// treated as borrowed: Mount is a no-op and Unmount leaves it open.
func NewSFTPFSFromClient(client *sftp.Client, base string) *SFTPFS {
	return &SFTPFS{sftpClient: client, base: base, borrowed: true}
}

// Mount dials the SSH server and opens an SFTP session.
func (fs *SFTPFS) Mount() error {
	if fs.sftpClient != nil {
		return nil
	}

	authMethods := sshAuthMethods()
	if len(authMethods) == 0 {
		return fmt.Errorf("no SSH authentication methods available for %s@%s", fs.user, fs.host)
	}

	config := &ssh.ClientConfig{
		User:            fs.user,
		Auth:            authMethods,
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
	}

	addr := fmt.Sprintf("%s:%d", fs.host, fs.port)
	sshClient, err := ssh.Dial("tcp", addr, config)
	if err != nil {
		return fmt.Errorf("SSH connection to %s failed: %w", addr, err)
	}

	sftpClient, err := sftp.NewClient(sshClient)
	if err != nil {
		sshClient.Close()
		return fmt.Errorf("SFTP session on %s failed: %w", addr, err)
	}

	fs.sshClient = sshClient
	fs.sftpClient = sftpClient
	return nil
}

// Unmount closes the SFTP session and SSH connection unless the client is
// borrowed.
func (fs *SFTPFS) Unmount() error {
	if fs.borrowed {
		return nil
	}

	var firstErr error
	if fs.sftpClient != nil {
		if err := fs.sftpClient.Close(); err != nil {
			firstErr = err
		}
		fs.sftpClient = nil
	}
	if fs.sshClient != nil {
		if err := fs.sshClient.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		fs.sshClient = nil
	}

	return firstErr
}

// Open opens the remote file at path for reading.
func (fs *SFTPFS) Open(p string) (File, error) {
	if fs.sftpClient == nil {
		return nil, fmt.Errorf("sftp filesystem not mounted")
	}

	file, err := fs.sftpClient.Open(fs.resolve(p))
	if err != nil {
		return nil, fmt.Errorf("failed to open remote file %s: %w", p, err)
	}

	return file, nil
}

// List returns the children of path sorted by name. SFTP servers do not
// guarantee an ordering, so the sort keeps traversal deterministic.
func (fs *SFTPFS) List(p string) ([]Entry, error) {
	if fs.sftpClient == nil {
		return nil, fmt.Errorf("sftp filesystem not mounted")
	}

	infos, err := fs.sftpClient.ReadDir(fs.resolve(p))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to list remote directory %s: %w", p, err)
	}

	entries := make([]Entry, 0, len(infos))
	for _, info := range infos {
		entries = append(entries, Entry{Name: info.Name(), Dir: info.IsDir()})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })

	return entries, nil
}

// Stat returns file information for the remote path.
func (fs *SFTPFS) Stat(p string) (os.FileInfo, error) {
	if fs.sftpClient == nil {
		return nil, fmt.Errorf("sftp filesystem not mounted")
	}

	info, err := fs.sftpClient.Stat(fs.resolve(p))
	if err != nil {
		return nil, fmt.Errorf("failed to stat remote path %s: %w", p, err)
	}

	return info, nil
}

func (fs *SFTPFS) resolve(p string) string {
	return path.Join(fs.base, p)
}

// sshAuthMethods returns authentication methods in priority order: the SSH
// agent first, then unencrypted keys from the default locations.
func sshAuthMethods() []ssh.AuthMethod {
	var methods []ssh.AuthMethod

	if socket := os.Getenv("SSH_AUTH_SOCK"); socket != "" {
		if conn, err := net.Dial("unix", socket); err == nil {
			methods = append(methods, ssh.PublicKeysCallback(agent.NewClient(conn).Signers))
		}
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return methods
	}

	for _, name := range []string{"id_ed25519", "id_rsa", "id_ecdsa"} {
		keyData, err := os.ReadFile(filepath.Join(homeDir, ".ssh", name))
		if err != nil {
			continue
		}
		signer, err := ssh.ParsePrivateKey(keyData)
		if err != nil {
			// Encrypted keys are skipped.
			continue
		}
		methods = append(methods, ssh.PublicKeys(signer))
	}

	return methods
}
