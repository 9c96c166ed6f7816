package sink

import (
	"context"
	"io"
	"os"
	"path"
	"strings"
	"time"

	"github.com/mamameal/docgenctl/kernel/config"
	"github.com/pkg/errors"
	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"
)

// Dialer opens an SFTP session. The returned closer releases the underlying transport.
type Dialer func(ctx context.Context) (*sftp.Client, io.Closer, error)

// SFTPSink writes artifacts into a remote drop directory. A session is opened per save.
type SFTPSink struct {
	dir  string
	dial Dialer
}

func NewSFTPSink(cfg config.SFTPConfig) (*SFTPSink, error) {
	if strings.TrimSpace(cfg.Addr) == "" {
		return nil, errors.New("sftp sink requires an address")
	}
	clientCfg, err := sshClientConfig(cfg)
	if err != nil {
		return nil, err
	}
	dial := func(ctx context.Context) (*sftp.Client, io.Closer, error) {
		conn, err := ssh.Dial("tcp", cfg.Addr, clientCfg)
		if err != nil {
			return nil, nil, errors.Wrapf(err, "failed to connect to %s", cfg.Addr)
		}
		client, err := sftp.NewClient(conn)
		if err != nil {
			_ = conn.Close()
			return nil, nil, errors.Wrap(err, "failed to start sftp session")
		}
		return client, conn, nil
	}
	return NewSFTPSinkWithDialer(cfg.Dir, dial), nil
}

func NewSFTPSinkWithDialer(dir string, dial Dialer) *SFTPSink {
	if dir == "" {
		dir = "."
	}
	return &SFTPSink{dir: dir, dial: dial}
}

func (s *SFTPSink) Save(ctx context.Context, name, contentType string, data []byte) (string, error) {
	client, closer, err := s.dial(ctx)
	if err != nil {
		return "", err
	}
	defer closer.Close()
	defer client.Close()

	if err := client.MkdirAll(s.dir); err != nil {
		return "", errors.Wrapf(err, "failed to create remote directory '%s'", s.dir)
	}
	target := path.Join(s.dir, safeName(name))
	f, err := client.Create(target)
	if err != nil {
		return "", errors.Wrapf(err, "failed to create remote file '%s'", target)
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return "", errors.Wrapf(err, "failed to write remote file '%s'", target)
	}
	if err := f.Close(); err != nil {
		return "", errors.Wrapf(err, "failed to close remote file '%s'", target)
	}
	return "sftp:" + target, nil
}

func sshClientConfig(cfg config.SFTPConfig) (*ssh.ClientConfig, error) {
	var auth []ssh.AuthMethod
	if cfg.KeyFile != "" {
		pem, err := os.ReadFile(cfg.KeyFile)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to read key '%s'", cfg.KeyFile)
		}
		signer, err := ssh.ParsePrivateKey(pem)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to parse key '%s'", cfg.KeyFile)
		}
		auth = append(auth, ssh.PublicKeys(signer))
	}
	if cfg.Password != "" {
		auth = append(auth, ssh.Password(cfg.Password))
	}
	if len(auth) == 0 {
		return nil, errors.New("sftp sink requires a password or key_file")
	}

	hostKey := ssh.InsecureIgnoreHostKey()
	if cfg.KnownHosts != "" {
		cb, err := knownhosts.New(cfg.KnownHosts)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to load known hosts '%s'", cfg.KnownHosts)
		}
		hostKey = cb
	}

	return &ssh.ClientConfig{
		User:            cfg.User,
		Auth:            auth,
		HostKeyCallback: hostKey,
		Timeout:         30 * time.Second,
	}, nil
}
