package codec

import (
	"context"
	"encoding/base64"
	"sync"
	"testing"

	"github.com/mamameal/docgenctl/kernel/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

type saved struct {
	name        string
	contentType string
	data        []byte
}

type recordingSink struct {
	mu    sync.Mutex
	saves []saved
}

func (s *recordingSink) Save(ctx context.Context, name, contentType string, data []byte) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saves = append(s.saves, saved{name: name, contentType: contentType, data: append([]byte(nil), data...)})
	return "mem://" + name, nil
}

func encode(s string) string {
	return base64.StdEncoding.EncodeToString([]byte(s))
}

func TestMaterialize_EveryCallSaves(t *testing.T) {
	sink := &recordingSink{}
	c := New(sink)
	art := model.GeneratedArtifact{Filename: "b.xlsx", EncodedPayload: encode("hello"), Media: model.Spreadsheet}

	first, err := c.Materialize(context.Background(), art)
	require.NoError(t, err)
	second, err := c.Materialize(context.Background(), art)
	require.NoError(t, err)

	require.Len(t, sink.saves, 2)
	assert.Equal(t, first, second)
	assert.Equal(t, "hello", string(sink.saves[1].data))
	assert.Equal(t, "mem://b.xlsx", first.Location)
	assert.Equal(t, 5, first.Size)
	assert.NotEmpty(t, first.Digest)
}

func TestMaterialize_MIMEComesFromMediaKind(t *testing.T) {
	sink := &recordingSink{}
	c := New(sink)

	// misleading extensions on purpose
	_, err := c.Materialize(context.Background(), model.GeneratedArtifact{Filename: "a.xlsx", EncodedPayload: encode("a"), Media: model.MacroSpreadsheet})
	require.NoError(t, err)
	_, err = c.Materialize(context.Background(), model.GeneratedArtifact{Filename: "b.xlsm", EncodedPayload: encode("b"), Media: model.Spreadsheet})
	require.NoError(t, err)

	assert.Equal(t, model.MacroSpreadsheetMIME, sink.saves[0].contentType)
	assert.Equal(t, model.SpreadsheetMIME, sink.saves[1].contentType)
}

func TestMaterialize_MalformedPayload(t *testing.T) {
	sink := &recordingSink{}
	c := New(sink)

	_, err := c.Materialize(context.Background(), model.GeneratedArtifact{Filename: "a.xlsm", EncodedPayload: "not base64!!", Media: model.MacroSpreadsheet})
	assert.ErrorIs(t, err, ErrDecode)

	_, err = c.Materialize(context.Background(), model.GeneratedArtifact{Filename: "a.xlsm", EncodedPayload: "", Media: model.MacroSpreadsheet})
	assert.ErrorIs(t, err, ErrEmpty)

	_, err = c.Materialize(context.Background(), model.GeneratedArtifact{Filename: "a.bin", EncodedPayload: encode("a")})
	assert.ErrorIs(t, err, ErrUnknownMedia)

	assert.Empty(t, sink.saves)
}

func TestMaterialize_WorkbookCheck(t *testing.T) {
	f := excelize.NewFile()
	_, err := f.NewSheet("納品書")
	require.NoError(t, err)
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	require.NoError(t, f.Close())

	sink := &recordingSink{}
	c := New(sink, WithWorkbookCheck())

	dl, err := c.Materialize(context.Background(), model.GeneratedArtifact{
		Filename:       "b.xlsx",
		EncodedPayload: base64.StdEncoding.EncodeToString(buf.Bytes()),
		Media:          model.Spreadsheet,
	})
	require.NoError(t, err)
	assert.Contains(t, dl.Sheets, "納品書")

	_, err = c.Materialize(context.Background(), model.GeneratedArtifact{Filename: "c.xlsx", EncodedPayload: encode("plain text"), Media: model.Spreadsheet})
	assert.ErrorIs(t, err, ErrNotWorkbook)
	assert.Len(t, sink.saves, 1)
}

func TestMaterialize_FallbackFilename(t *testing.T) {
	sink := &recordingSink{}
	c := New(sink)

	dl, err := c.Materialize(context.Background(), model.GeneratedArtifact{Role: "count-sheet", EncodedPayload: encode("x"), Media: model.MacroSpreadsheet})
	require.NoError(t, err)
	assert.Equal(t, "count-sheet.xlsm", dl.Filename)
}
