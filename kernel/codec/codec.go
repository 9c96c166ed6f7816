// Package codec turns encoded conversion payloads back into files.
package codec

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/hex"
	"strings"

	"github.com/mamameal/docgenctl/kernel/model"
	"github.com/michaelquigley/pfxlog"
	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"
	"golang.org/x/crypto/blake2b"
)

var (
	ErrDecode       = errors.New("artifact payload is not valid base64")
	ErrEmpty        = errors.New("artifact payload is empty")
	ErrUnknownMedia = errors.New("unknown artifact media kind")
	ErrNotWorkbook  = errors.New("artifact is not a readable workbook")
)

// Sink is the save-as-file action.
type Sink interface {
	Save(ctx context.Context, name, contentType string, data []byte) (string, error)
}

// Download describes one materialized artifact.
type Download struct {
	Role        string
	Filename    string
	ContentType string
	Location    string
	Size        int
	Digest      string
	Sheets      []string
}

type Codec struct {
	sink          Sink
	checkWorkbook bool
}

type Option func(*Codec)

// WithWorkbookCheck opens every decoded artifact as a workbook before saving it.
func WithWorkbookCheck() Option {
	return func(c *Codec) { c.checkWorkbook = true }
}

func New(sink Sink, opts ...Option) *Codec {
	c := &Codec{sink: sink}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Decode strictly decodes a base64 payload. Empty payloads are rejected.
func Decode(payload string) ([]byte, error) {
	payload = strings.TrimSpace(payload)
	if payload == "" {
		return nil, ErrEmpty
	}
	data, err := base64.StdEncoding.Strict().DecodeString(payload)
	if err != nil {
		return nil, errors.Wrap(ErrDecode, err.Error())
	}
	if len(data) == 0 {
		return nil, ErrEmpty
	}
	return data, nil
}

// Materialize decodes art and hands it to the sink. Every call saves again; nothing is cached.
func (c *Codec) Materialize(ctx context.Context, art model.GeneratedArtifact) (Download, error) {
	contentType := art.Media.MIME()
	if contentType == "" {
		return Download{}, errors.Wrapf(ErrUnknownMedia, "artifact '%s'", art.Filename)
	}

	data, err := Decode(art.EncodedPayload)
	if err != nil {
		return Download{}, errors.Wrapf(err, "artifact '%s'", art.Filename)
	}

	dl := Download{
		Role:        art.Role,
		Filename:    filenameFor(art),
		ContentType: contentType,
		Size:        len(data),
		Digest:      digest(data),
	}

	if c.checkWorkbook {
		sheets, err := sheetList(data)
		if err != nil {
			return Download{}, errors.Wrapf(err, "artifact '%s'", art.Filename)
		}
		dl.Sheets = sheets
	}

	location, err := c.sink.Save(ctx, dl.Filename, contentType, data)
	if err != nil {
		return Download{}, errors.Wrapf(err, "failed to save '%s'", dl.Filename)
	}
	dl.Location = location

	pfxlog.Logger().
		WithField("file", dl.Filename).
		WithField("media", art.Media.String()).
		WithField("blake2b", dl.Digest).
		Infof("materialized %d bytes to %s", dl.Size, location)
	return dl, nil
}

func filenameFor(art model.GeneratedArtifact) string {
	if name := strings.TrimSpace(art.Filename); name != "" {
		return name
	}
	role := art.Role
	if role == "" {
		role = "artifact"
	}
	if art.Media == model.MacroSpreadsheet {
		return role + ".xlsm"
	}
	return role + ".xlsx"
}

func digest(data []byte) string {
	sum := blake2b.Sum256(data)
	return hex.EncodeToString(sum[:16])
}

func sheetList(data []byte) ([]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrap(ErrNotWorkbook, err.Error())
	}
	defer f.Close()
	return f.GetSheetList(), nil
}
