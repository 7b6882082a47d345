package output

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/hyp3rd/ewrap"
	"github.com/klauspost/compress/gzip"

	"github.com/hyp3rd/lndl/internal/utils"
)

const compressionBufferSize = 32 * 1024

// CompressionConfig configures compression of rotated log files.
type CompressionConfig struct {
	// Level is a gzip level, see gzip.BestSpeed and gzip.BestCompression.
	Level int
	// DeleteOriginal removes the source file after successful compression.
	DeleteOriginal bool
	// Extension is appended to the source path (default: .gz).
	Extension string
}

// DefaultCompressionConfig returns gzip's default level, deleting the source
// and using the .gz extension.
func DefaultCompressionConfig() CompressionConfig {
	return CompressionConfig{
		Level:          gzip.DefaultCompression,
		DeleteOriginal: true,
		Extension:      ".gz",
	}
}

//nolint:gochecknoglobals // Global variable for the compression buffer pool.
var compressionBuffers = sync.Pool{
	New: func() any {
		buf := make([]byte, compressionBufferSize)

		return &buf
	},
}

// Compressor compresses files in the background and lets callers wait for
// the work still in flight.
type Compressor struct {
	config  CompressionConfig
	onError func(error)
	wg      sync.WaitGroup
}

// NewCompressor creates a Compressor. onError receives background failures;
// nil reports them on stderr.
func NewCompressor(config CompressionConfig, onError func(error)) *Compressor {
	if config.Extension == "" {
		config.Extension = DefaultCompressionConfig().Extension
	}

	if onError == nil {
		onError = func(err error) {
			fmt.Fprintf(os.Stderr, "Error compressing log file: %v\n", err)
		}
	}

	return &Compressor{config: config, onError: onError}
}

// Go compresses path in a new goroutine.
func (c *Compressor) Go(path string) {
	c.wg.Go(func() {
		defer func() {
			if r := recover(); r != nil {
				cleanupCompression(path, c.config.Extension)
				c.onError(ewrap.Wrapf(ErrCompressionFailed, "panic: %v", r).WithMetadata("path", path))
			}
		}()

		_, err := CompressFile(path, c.config)
		if err != nil {
			c.onError(err)
		}
	})
}

// Wait blocks until every started compression finished.
func (c *Compressor) Wait() {
	c.wg.Wait()
}

// CompressFile gzips path into path+config.Extension and returns the new path.
// A partial output is removed on failure.
func CompressFile(path string, config CompressionConfig) (string, error) {
	if config.Extension == "" {
		config.Extension = DefaultCompressionConfig().Extension
	}

	srcPath, err := utils.CleanPath(path)
	if err != nil {
		return "", err
	}

	dstPath := srcPath + config.Extension

	err = writeCompressed(srcPath, dstPath, config.Level)
	if err != nil {
		cleanupCompression(srcPath, config.Extension)

		return "", ewrap.Wrap(err, "compressing log file").
			WithMetadata("path", srcPath).
			WithMetadata("compressed_path", dstPath)
	}

	err = verifyCompressedFile(dstPath)
	if err != nil {
		cleanupCompression(srcPath, config.Extension)

		return "", ewrap.Wrap(err, "verifying compressed file").WithMetadata("path", dstPath)
	}

	if config.DeleteOriginal {
		err = os.Remove(srcPath)
		if err != nil {
			return dstPath, ewrap.Wrap(err, "removing original file").WithMetadata("path", srcPath)
		}
	}

	return dstPath, nil
}

func writeCompressed(srcPath, dstPath string, level int) error {
	//nolint:gosec // G304: the path is cleaned by utils.CleanPath.
	source, err := os.Open(srcPath)
	if err != nil {
		return ewrap.Wrapf(err, "opening source file")
	}

	defer func() {
		closeErr := source.Close()
		if closeErr != nil {
			fmt.Fprintf(os.Stderr, "failed to close source file: %v\n", closeErr)
		}
	}()

	//nolint:gosec // G304: derived from a cleaned path.
	compressed, err := os.OpenFile(dstPath, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o600)
	if err != nil {
		return ewrap.Wrapf(err, "creating compressed file")
	}

	gzipWriter, err := gzip.NewWriterLevel(compressed, level)
	if err != nil {
		_ = compressed.Close()

		return ewrap.Wrapf(err, "creating gzip writer")
	}

	gzipWriter.Name = filepath.Base(srcPath)

	bufPtr, _ := compressionBuffers.Get().(*[]byte)
	defer compressionBuffers.Put(bufPtr)

	_, err = io.CopyBuffer(gzipWriter, source, *bufPtr)
	if err != nil {
		_ = gzipWriter.Close()
		_ = compressed.Close()

		return ewrap.Wrapf(err, "copying file content")
	}

	err = gzipWriter.Close()
	if err != nil {
		_ = compressed.Close()

		return ewrap.Wrapf(err, "closing gzip writer")
	}

	err = compressed.Sync()
	if err != nil {
		_ = compressed.Close()

		return ewrap.Wrapf(err, "syncing compressed file")
	}

	err = compressed.Close()
	if err != nil {
		return ewrap.Wrapf(err, "closing compressed file")
	}

	return nil
}

// verifyCompressedFile checks that path holds a readable gzip stream.
func verifyCompressedFile(path string) error {
	//nolint:gosec // G304: derived from a cleaned path.
	file, err := os.Open(path)
	if err != nil {
		return ewrap.Wrapf(err, "opening compressed file for verification")
	}

	defer func() {
		closeErr := file.Close()
		if closeErr != nil {
			fmt.Fprintf(os.Stderr, "failed to close file during verification: %v\n", closeErr)
		}
	}()

	gzipReader, err := gzip.NewReader(file)
	if err != nil {
		return ewrap.Wrapf(err, "creating gzip reader for verification")
	}

	defer gzipReader.Close()

	buffer := make([]byte, 1024)

	_, err = gzipReader.Read(buffer)
	if err != nil && !errors.Is(err, io.EOF) {
		return ewrap.Wrapf(err, "verifying gzip content")
	}

	return nil
}

// cleanupCompression removes any partial files after a failed compression.
func cleanupCompression(originalPath, extension string) {
	compressedPath := originalPath + extension

	_, err := os.Stat(compressedPath)
	if err == nil {
		err := os.Remove(compressedPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to clean up compressed file %s: %v\n", compressedPath, err)
		}
	}
}
