package sink

import (
	"context"
	"io"
	"net"
	"os"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/aws/aws-sdk-go/service/s3/s3manager/s3manageriface"
	"github.com/mamameal/docgenctl/kernel/config"
	"github.com/pkg/sftp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirSink_WritesAndOverwrites(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	s := NewDirSink(dir)

	loc, err := s.Save(context.Background(), "a.xlsx", "x", []byte("first"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "a.xlsx"), loc)

	_, err = s.Save(context.Background(), "a.xlsx", "x", []byte("second"))
	require.NoError(t, err)

	data, err := os.ReadFile(loc)
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))
}

func TestDirSink_StripsDirectories(t *testing.T) {
	dir := t.TempDir()
	s := NewDirSink(dir)

	loc, err := s.Save(context.Background(), "../../etc/passwd", "x", []byte("x"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "passwd"), loc)

	loc, err = s.Save(context.Background(), `..\..\evil.xlsx`, "x", []byte("x"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "evil.xlsx"), loc)
}

type fakeUploader struct {
	s3manageriface.UploaderAPI
	inputs []*s3manager.UploadInput
	bodies [][]byte
}

func (f *fakeUploader) UploadWithContext(ctx aws.Context, in *s3manager.UploadInput, opts ...func(*s3manager.Uploader)) (*s3manager.UploadOutput, error) {
	body, _ := io.ReadAll(in.Body)
	f.inputs = append(f.inputs, in)
	f.bodies = append(f.bodies, body)
	return &s3manager.UploadOutput{}, nil
}

func TestS3Sink_Save(t *testing.T) {
	up := &fakeUploader{}
	s := NewS3SinkWithUploader("artifacts", "/orders/", up)

	loc, err := s.Save(context.Background(), "b.xlsx", "application/x-test", []byte("data"))
	require.NoError(t, err)
	assert.Equal(t, "s3://artifacts/orders/b.xlsx", loc)

	require.Len(t, up.inputs, 1)
	assert.Equal(t, "orders/b.xlsx", aws.StringValue(up.inputs[0].Key))
	assert.Equal(t, "application/x-test", aws.StringValue(up.inputs[0].ContentType))
	assert.Equal(t, "data", string(up.bodies[0]))
}

type pipeCloser struct {
	conns []net.Conn
}

func (p pipeCloser) Close() error {
	for _, c := range p.conns {
		_ = c.Close()
	}
	return nil
}

func memDialer(handlers sftp.Handlers) Dialer {
	return func(ctx context.Context) (*sftp.Client, io.Closer, error) {
		serverConn, clientConn := net.Pipe()
		server := sftp.NewRequestServer(serverConn, handlers)
		go func() { _ = server.Serve() }()
		client, err := sftp.NewClientPipe(clientConn, clientConn)
		if err != nil {
			return nil, nil, err
		}
		return client, pipeCloser{conns: []net.Conn{clientConn, serverConn}}, nil
	}
}

func TestSFTPSink_Save(t *testing.T) {
	handlers := sftp.InMemHandler()
	dial := memDialer(handlers)
	s := NewSFTPSinkWithDialer("/drop", dial)

	loc, err := s.Save(context.Background(), "seal.xlsx", "x", []byte("labels"))
	require.NoError(t, err)
	assert.Equal(t, "sftp:/drop/seal.xlsx", loc)

	client, closer, err := dial(context.Background())
	require.NoError(t, err)
	defer closer.Close()
	defer client.Close()

	f, err := client.Open("/drop/seal.xlsx")
	require.NoError(t, err)
	data, err := io.ReadAll(f)
	require.NoError(t, err)
	assert.Equal(t, "labels", string(data))
}

func TestFromConfig(t *testing.T) {
	s, err := FromConfig(config.SinkConfig{Dir: "out"})
	require.NoError(t, err)
	assert.IsType(t, &DirSink{}, s)

	_, err = FromConfig(config.SinkConfig{Type: "ftp"})
	assert.Error(t, err)

	_, err = FromConfig(config.SinkConfig{Type: "s3"})
	assert.Error(t, err)

	_, err = FromConfig(config.SinkConfig{Type: "sftp", SFTP: config.SFTPConfig{Addr: "localhost:22"}})
	assert.Error(t, err)
}
