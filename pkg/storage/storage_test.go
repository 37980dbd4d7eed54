package storage

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/cubis-academy-api/internal/config"
)

var pdfPayload = []byte("%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\ntrailer\n<< /Root 1 0 R >>\n%%EOF\n")

func pngPayload(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 255), G: uint8(y % 255), B: 120, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func newLocalProvider(t *testing.T) (Provider, string) {
	t.Helper()
	dir := t.TempDir()
	provider, err := New(config.StorageConfig{
		Provider:    config.StorageLocal,
		LocalDir:    dir,
		PublicURL:   "/uploads/",
		MaxUploadMB: 1,
	}, zerolog.Nop())
	require.NoError(t, err)
	return provider, dir
}

func TestLocalUploadRoundTrip(t *testing.T) {
	provider, dir := newLocalProvider(t)

	result, err := provider.Upload(context.Background(), FileInput{
		Name:   "Payment Proof (March).pdf",
		Reader: bytes.NewReader(pdfPayload),
	}, UploadOptions{Category: "payments"})
	require.NoError(t, err)

	require.Equal(t, "application/pdf", result.MimeType)
	require.EqualValues(t, len(pdfPayload), result.FileSize)
	require.NotEmpty(t, result.ID)
	require.True(t, strings.HasPrefix(result.FileKey, "payments/payment-proof-march-"), result.FileKey)
	require.True(t, strings.HasSuffix(result.FileKey, ".pdf"))
	require.Equal(t, "/uploads/"+result.FileKey, provider.GetURL(result.FileKey))
	require.Equal(t, result.FileURL, provider.GetURL(result.FileKey))

	stored, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(result.FileKey)))
	require.NoError(t, err)
	require.Equal(t, pdfPayload, stored)

	require.NoError(t, provider.Delete(context.Background(), result.FileKey))
	_, err = os.Stat(filepath.Join(dir, filepath.FromSlash(result.FileKey)))
	require.True(t, os.IsNotExist(err))

	require.NoError(t, provider.Delete(context.Background(), result.FileKey))
}

func TestUploadRejectsInvalidInput(t *testing.T) {
	provider, _ := newLocalProvider(t)
	ctx := context.Background()

	_, err := provider.Upload(ctx, FileInput{Name: "empty.pdf", Reader: bytes.NewReader(nil)}, UploadOptions{Category: "docs"})
	require.ErrorIs(t, err, ErrEmptyFile)

	_, err = provider.Upload(ctx, FileInput{Name: "notes.txt", Reader: strings.NewReader("plain text")}, UploadOptions{Category: "docs"})
	require.ErrorIs(t, err, ErrTypeNotAllowed)

	_, err = provider.Upload(ctx, FileInput{Name: "big.pdf", Reader: bytes.NewReader(pdfPayload)}, UploadOptions{Category: "docs", MaxBytes: 10})
	require.ErrorIs(t, err, ErrFileTooLarge)

	_, err = provider.Upload(ctx, FileInput{Name: "doc.pdf", Reader: bytes.NewReader(pdfPayload)}, UploadOptions{Category: "docs", AllowedTypes: ImageTypes})
	require.ErrorIs(t, err, ErrTypeNotAllowed)
}

func TestUploadResizesImages(t *testing.T) {
	provider, dir := newLocalProvider(t)

	result, err := provider.Upload(context.Background(), FileInput{
		Name:   "thumb.png",
		Reader: bytes.NewReader(pngPayload(t, 400, 200)),
	}, UploadOptions{Category: "courses", ResizeWidth: 100, ResizeHeight: 100})
	require.NoError(t, err)
	require.Equal(t, "image/jpeg", result.MimeType)
	require.True(t, strings.HasSuffix(result.FileKey, ".jpg"))

	file, err := os.Open(filepath.Join(dir, filepath.FromSlash(result.FileKey)))
	require.NoError(t, err)
	defer file.Close()

	cfg, format, err := image.DecodeConfig(file)
	require.NoError(t, err)
	require.Equal(t, "jpeg", format)
	require.Equal(t, 100, cfg.Width)
	require.Equal(t, 50, cfg.Height)
}

func TestUploadKeepsImagesWithoutResize(t *testing.T) {
	provider, _ := newLocalProvider(t)

	result, err := provider.Upload(context.Background(), FileInput{
		Name:   "avatar.png",
		Reader: bytes.NewReader(pngPayload(t, 20, 20)),
	}, UploadOptions{Category: "avatars", AllowedTypes: ImageTypes})
	require.NoError(t, err)
	require.Equal(t, "image/png", result.MimeType)
	require.True(t, strings.HasSuffix(result.FileKey, ".png"))
}

func TestDeleteRejectsTraversal(t *testing.T) {
	provider, _ := newLocalProvider(t)
	require.ErrorIs(t, provider.Delete(context.Background(), "../etc/passwd"), ErrInvalidKey)
	require.ErrorIs(t, provider.Delete(context.Background(), "/abs/path"), ErrInvalidKey)
}

type fakeObjects struct {
	objects map[string][]byte
	types   map[string]string
}

func (f *fakeObjects) PutObject(_ context.Context, params *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	body, err := io.ReadAll(params.Body)
	if err != nil {
		return nil, err
	}
	f.objects[aws.ToString(params.Key)] = body
	f.types[aws.ToString(params.Key)] = aws.ToString(params.ContentType)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeObjects) DeleteObject(_ context.Context, params *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	delete(f.objects, aws.ToString(params.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func TestS3BackendStoresObjects(t *testing.T) {
	fake := &fakeObjects{objects: map[string][]byte{}, types: map[string]string{}}
	backend := &s3Backend{
		provider:  config.StorageS3,
		client:    fake,
		bucket:    "cubis",
		publicURL: "https://cubis.s3.us-east-1.amazonaws.com",
	}
	provider := newStore(backend, 1024*1024, zerolog.Nop())

	result, err := provider.Upload(context.Background(), FileInput{
		Name:   "syllabus.pdf",
		Reader: bytes.NewReader(pdfPayload),
	}, UploadOptions{Category: "courses"})
	require.NoError(t, err)

	require.Equal(t, pdfPayload, fake.objects[result.FileKey])
	require.Equal(t, "application/pdf", fake.types[result.FileKey])
	require.Equal(t, "https://cubis.s3.us-east-1.amazonaws.com/"+result.FileKey, result.FileURL)
	require.Equal(t, "s3", provider.Name())

	require.NoError(t, provider.Delete(context.Background(), result.FileKey))
	require.Empty(t, fake.objects)
}

func TestNewFailsFastOnMissingConfig(t *testing.T) {
	_, err := New(config.StorageConfig{Provider: config.StorageS3, AWSRegion: "us-east-1"}, zerolog.Nop())
	require.ErrorIs(t, err, ErrMissingConfig)

	_, err = New(config.StorageConfig{Provider: config.StorageR2, R2AccountID: "acc"}, zerolog.Nop())
	require.ErrorIs(t, err, ErrMissingConfig)

	_, err = New(config.StorageConfig{Provider: config.StorageCloudinary}, zerolog.Nop())
	require.ErrorIs(t, err, ErrMissingConfig)

	_, err = New(config.StorageConfig{Provider: "ftp"}, zerolog.Nop())
	require.Error(t, err)
}

func TestR2BackendURL(t *testing.T) {
	provider, err := New(config.StorageConfig{
		Provider:    config.StorageR2,
		R2AccountID: "acc",
		R2AccessKey: "key",
		R2SecretKey: "secret",
		R2Bucket:    "media",
		R2PublicURL: "https://cdn.cubis.academy/",
	}, zerolog.Nop())
	require.NoError(t, err)
	require.Equal(t, "r2", provider.Name())
	require.Equal(t, "https://cdn.cubis.academy/courses/a.jpg", provider.GetURL("courses/a.jpg"))
}

func TestCloudinaryURLs(t *testing.T) {
	backend := &cloudinaryBackend{cloudName: "demo", folder: "cubis", logger: zerolog.Nop()}
	require.Equal(t, "https://res.cloudinary.com/demo/image/upload/cubis/courses/a.jpg", backend.url("courses/a.jpg"))
	require.Equal(t, "https://res.cloudinary.com/demo/raw/upload/cubis/payments/b.pdf", backend.url("payments/b.pdf"))
	require.Equal(t, "cubis/courses/a", backend.publicID("courses/a.jpg", "image"))
	require.Equal(t, "cubis/payments/b.pdf", backend.publicID("payments/b.pdf", "raw"))
}

func TestBuildKey(t *testing.T) {
	now := time.UnixMilli(1700000000000)
	key := buildKey("Course Thumbnails", "../../My File!!.PNG", ".png", now)
	require.True(t, strings.HasPrefix(key, "course-thumbnails/my-file-1700000000000-"), key)
	require.True(t, strings.HasSuffix(key, ".png"))
	require.NoError(t, validateKey(key))

	require.True(t, strings.HasPrefix(buildKey("", "", ".pdf", now), "misc/file-"))
}
