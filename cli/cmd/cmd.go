package cmd

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"syscall"

	"github.com/alecthomas/kong"
)

type (
	kongKey   struct{}
	outputKey struct{}
	inputKey  struct{}
)

// WithContext returns a copy of ctx carrying the parsed kong context.
func WithContext(ctx context.Context, ktx *kong.Context) context.Context {
	return context.WithValue(ctx, kongKey{}, ktx)
}

func kongContextFrom(ctx context.Context) *kong.Context {
	ktx, _ := ctx.Value(kongKey{}).(*kong.Context)

	return ktx
}

// WithOutput returns a copy of ctx whose commands write results to w
// instead of standard output.
func WithOutput(ctx context.Context, w io.Writer) context.Context {
	return context.WithValue(ctx, outputKey{}, w)
}

func outputFrom(ctx context.Context) io.Writer {
	if w, ok := ctx.Value(outputKey{}).(io.Writer); ok && w != nil {
		return w
	}

	return os.Stdout
}

// WithInput returns a copy of ctx whose commands read "-" from r instead
// of standard input.
func WithInput(ctx context.Context, r io.Reader) context.Context {
	return context.WithValue(ctx, inputKey{}, r)
}

func inputFrom(ctx context.Context) io.Reader {
	if r, ok := ctx.Value(inputKey{}).(io.Reader); ok && r != nil {
		return r
	}

	return os.Stdin
}

// stdinSource is the path naming standard input.
const stdinSource = "-"

// openInput opens a single input path, "-" being the context's input.
func openInput(ctx context.Context, path string) (io.ReadCloser, error) {
	if path == "" || path == stdinSource {
		return io.NopCloser(inputFrom(ctx)), nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, ErrOpenInput.Wrap(err).With(slog.String("path", path))
	}

	return f, nil
}

// Sources reads a list of input files in order as one stream.
//
// Paths naming the same file through symlinks or relative forms are read
// once. Every "-" collapses to a single read of standard input, placed
// after all regular files. Paths that cannot be opened are skipped.
type Sources struct {
	files    []*os.File
	hasStdin bool
	r        io.Reader
}

// fileKey identifies a file by device and inode.
type fileKey struct {
	dev uint64
	ino uint64
}

// OpenSources opens paths, reading "-" from stdin. It returns nil when no
// path could be opened and stdin was not named.
func OpenSources(paths []string, stdin io.Reader) *Sources {
	if len(paths) == 0 {
		return nil
	}

	var (
		src  Sources
		seen = map[fileKey]struct{}{}
	)

	stdinKey, stdinKnown := fileKey{}, false
	if f, ok := stdin.(*os.File); ok {
		if info, err := f.Stat(); err == nil {
			stdinKey, stdinKnown = makeFileKey(info)
		}
	}

	for _, path := range paths {
		if path == stdinSource {
			src.hasStdin = true

			continue
		}

		f, key, ok := openUniqueFile(path, seen)
		if !ok {
			continue
		}

		if stdinKnown && key == stdinKey {
			f.Close()

			src.hasStdin = true

			continue
		}

		src.files = append(src.files, f)
	}

	if len(src.files) == 0 && !src.hasStdin {
		return nil
	}

	readers := make([]io.Reader, 0, len(src.files)+1)
	for _, f := range src.files {
		readers = append(readers, f)
	}

	if src.hasStdin && stdin != nil {
		readers = append(readers, stdin)
	}

	src.r = io.MultiReader(readers...)

	return &src
}

// HasStdin reports whether standard input is among the sources.
func (s *Sources) HasStdin() bool { return s != nil && s.hasStdin }

// Len returns the number of regular files opened.
func (s *Sources) Len() int {
	if s == nil {
		return 0
	}

	return len(s.files)
}

// Read implements [io.Reader].
func (s *Sources) Read(p []byte) (int, error) {
	if s == nil || s.r == nil {
		return 0, io.EOF
	}

	return s.r.Read(p)
}

// WriteTo implements [io.WriterTo].
func (s *Sources) WriteTo(w io.Writer) (int64, error) {
	if s == nil || s.r == nil {
		return 0, nil
	}

	return io.Copy(w, s.r)
}

// Close closes every opened file. Standard input is left open.
func (s *Sources) Close() error {
	if s == nil {
		return nil
	}

	var errs []error

	for _, f := range s.files {
		errs = append(errs, f.Close())
	}

	return errors.Join(errs...)
}

// openUniqueFile opens path unless a file with the same device and inode
// was already seen.
func openUniqueFile(path string, seen map[fileKey]struct{}) (*os.File, fileKey, bool) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fileKey{}, false
	}

	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return nil, fileKey{}, false
	}

	info, err := os.Stat(resolved)
	if err != nil || info.IsDir() {
		return nil, fileKey{}, false
	}

	key, ok := makeFileKey(info)
	if !ok {
		return nil, fileKey{}, false
	}

	if _, dup := seen[key]; dup {
		return nil, key, false
	}

	seen[key] = struct{}{}

	f, err := os.Open(resolved)
	if err != nil {
		return nil, key, false
	}

	return f, key, true
}

func makeFileKey(info os.FileInfo) (fileKey, bool) {
	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return fileKey{}, false
	}

	return fileKey{dev: uint64(stat.Dev), ino: stat.Ino}, true //nolint:unconvert
}
