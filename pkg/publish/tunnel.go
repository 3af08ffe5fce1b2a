package publish

import (
	"fmt"
	"io"
	"net"
	"os"
	"sync"

	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"
)

// DefaultRemoteRedis is where Redis listens inside a switch.
const DefaultRemoteRedis = "127.0.0.1:6379"

// TunnelConfig describes how to reach a switch over SSH.
type TunnelConfig struct {
	Host       string // host or host:port; port 22 when omitted
	User       string
	Password   string
	KeyFile    string // private key, tried before the password
	KnownHosts string // known_hosts file; host keys are not checked when empty
	Remote     string // address forwarded to inside the host
}

// Tunnel forwards a local TCP port to a remote address through an SSH
// connection. It is used to reach a switch's Redis, which only listens on
// loopback.
type Tunnel struct {
	localAddr string
	remote    string
	sshClient *ssh.Client
	listener  net.Listener
	done      chan struct{}
	wg        sync.WaitGroup
}

// NewTunnel dials SSH and opens a local listener on a random port.
// Connections to the local port are forwarded to cfg.Remote.
func NewTunnel(cfg TunnelConfig) (*Tunnel, error) {
	clientConfig, err := sshClientConfig(cfg)
	if err != nil {
		return nil, err
	}
	host := cfg.Host
	if _, _, err := net.SplitHostPort(host); err != nil {
		host = net.JoinHostPort(host, "22")
	}
	remote := cfg.Remote
	if remote == "" {
		remote = DefaultRemoteRedis
	}

	sshClient, err := ssh.Dial("tcp", host, clientConfig)
	if err != nil {
		return nil, fmt.Errorf("SSH dial %s: %w", host, err)
	}

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		sshClient.Close()
		return nil, fmt.Errorf("local listen: %w", err)
	}

	t := &Tunnel{
		localAddr: listener.Addr().String(),
		remote:    remote,
		sshClient: sshClient,
		listener:  listener,
		done:      make(chan struct{}),
	}

	t.wg.Add(1)
	go t.acceptLoop()

	return t, nil
}

func sshClientConfig(cfg TunnelConfig) (*ssh.ClientConfig, error) {
	var auth []ssh.AuthMethod
	if cfg.KeyFile != "" {
		key, err := os.ReadFile(cfg.KeyFile)
		if err != nil {
			return nil, fmt.Errorf("reading SSH key: %w", err)
		}
		signer, err := ssh.ParsePrivateKey(key)
		if err != nil {
			return nil, fmt.Errorf("parsing SSH key %s: %w", cfg.KeyFile, err)
		}
		auth = append(auth, ssh.PublicKeys(signer))
	}
	if cfg.Password != "" {
		auth = append(auth, ssh.Password(cfg.Password))
	}
	if len(auth) == 0 {
		return nil, fmt.Errorf("no SSH credentials for %s: set a key file or a password", cfg.Host)
	}

	hostKeys := ssh.InsecureIgnoreHostKey()
	if cfg.KnownHosts != "" {
		cb, err := knownhosts.New(cfg.KnownHosts)
		if err != nil {
			return nil, fmt.Errorf("loading known hosts: %w", err)
		}
		hostKeys = cb
	}

	return &ssh.ClientConfig{
		User:            cfg.User,
		Auth:            auth,
		HostKeyCallback: hostKeys,
	}, nil
}

// LocalAddr returns the local address (e.g. "127.0.0.1:54321") that
// forwards to the remote address.
func (t *Tunnel) LocalAddr() string {
	return t.localAddr
}

// Close stops the listener, closes the SSH connection, and waits for
// all forwarding goroutines to finish.
func (t *Tunnel) Close() error {
	close(t.done)
	t.listener.Close()
	err := t.sshClient.Close()
	t.wg.Wait()
	return err
}

func (t *Tunnel) acceptLoop() {
	defer t.wg.Done()
	for {
		local, err := t.listener.Accept()
		if err != nil {
			select {
			case <-t.done:
				return
			default:
				continue
			}
		}
		t.wg.Add(1)
		go t.forward(local)
	}
}

func (t *Tunnel) forward(local net.Conn) {
	defer t.wg.Done()
	defer local.Close()

	remote, err := t.sshClient.Dial("tcp", t.remote)
	if err != nil {
		return
	}
	defer remote.Close()

	done := make(chan struct{}, 2)
	go func() {
		io.Copy(remote, local)
		done <- struct{}{}
	}()
	go func() {
		io.Copy(local, remote)
		done <- struct{}{}
	}()
	<-done
}
