package upload

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"mime/multipart"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeFileHeader(t *testing.T, filename, contentType string, content []byte) *multipart.FileHeader {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="images"; filename="%s"`, filename))
	header.Set("Content-Type", contentType)

	part, err := writer.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	form, err := multipart.NewReader(&buf, writer.Boundary()).ReadForm(32 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { form.RemoveAll() })

	files := form.File["images"]
	require.Len(t, files, 1)
	return files[0]
}

func pngBytes(t *testing.T, width, height int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, width, height))))
	return buf.Bytes()
}

func newTestPipeline(t *testing.T) (*Pipeline, *LocalStore) {
	t.Helper()
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)
	return NewPipeline(store, 5*1024*1024), store
}

func TestValidateRejectsBadExtension(t *testing.T) {
	pipeline, _ := newTestPipeline(t)
	file := makeFileHeader(t, "notes.txt", "text/plain", []byte("hello"))
	assert.ErrorIs(t, pipeline.Validate(file), ErrRejected)
}

func TestValidateRejectsMismatchedMIME(t *testing.T) {
	// Extension alone is not enough: a .png declared as text/plain must be
	// rejected before any storage write.
	pipeline, store := newTestPipeline(t)
	file := makeFileHeader(t, "shot.png", "text/plain", pngBytes(t, 10, 10))

	assert.ErrorIs(t, pipeline.Validate(file), ErrRejected)

	entries, err := os.ReadDir(store.Dir())
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestValidateRejectsOversizedFile(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)
	pipeline := NewPipeline(store, 64)

	file := makeFileHeader(t, "big.png", "image/png", pngBytes(t, 100, 100))
	assert.ErrorIs(t, pipeline.Validate(file), ErrRejected)
}

func TestProcessNormalizesTo600x450(t *testing.T) {
	pipeline, store := newTestPipeline(t)
	file := makeFileHeader(t, "shot.png", "image/png", pngBytes(t, 1200, 900))

	ref, err := pipeline.Process(file)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(ref, "/uploads/"))
	assert.True(t, strings.HasSuffix(ref, ".jpg"))

	stored, err := os.Open(filepath.Join(store.Dir(), strings.TrimPrefix(ref, "/uploads/")))
	require.NoError(t, err)
	defer stored.Close()

	img, err := jpeg.Decode(stored)
	require.NoError(t, err)
	assert.Equal(t, TargetWidth, img.Bounds().Dx())
	assert.Equal(t, TargetHeight, img.Bounds().Dy())
}

func TestProcessRejectsUndecodableImage(t *testing.T) {
	pipeline, _ := newTestPipeline(t)
	file := makeFileHeader(t, "fake.png", "image/png", []byte("not an image at all"))

	_, err := pipeline.Process(file)
	assert.ErrorIs(t, err, ErrRejected)
}

func TestProcessBatchAbortsOnFirstFailure(t *testing.T) {
	pipeline, store := newTestPipeline(t)
	files := []*multipart.FileHeader{
		makeFileHeader(t, "ok.png", "image/png", pngBytes(t, 20, 20)),
		makeFileHeader(t, "bad.txt", "text/plain", []byte("nope")),
		makeFileHeader(t, "never.png", "image/png", pngBytes(t, 20, 20)),
	}

	refs, err := pipeline.ProcessBatch(files)
	assert.ErrorIs(t, err, ErrRejected)
	assert.Nil(t, refs)

	// The first file may remain on disk: at-least-once, not exactly-once.
	entries, err := os.ReadDir(store.Dir())
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestProcessBatchKeepsSubmissionOrder(t *testing.T) {
	pipeline, _ := newTestPipeline(t)
	files := []*multipart.FileHeader{
		makeFileHeader(t, "a.png", "image/png", pngBytes(t, 20, 20)),
		makeFileHeader(t, "b.png", "image/png", pngBytes(t, 30, 30)),
	}

	refs, err := pipeline.ProcessBatch(files)
	require.NoError(t, err)
	require.Len(t, refs, 2)
	assert.NotEqual(t, refs[0], refs[1])
}
