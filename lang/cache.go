package lang

import (
	"context"
	"io"
	"log/slog"
	"strconv"
	"sync"

	"github.com/klauspost/readahead"
	"github.com/zeebo/xxh3"

	"github.com/ardnew/hypereval/log"
)

// treeCache holds decoded trees keyed by the xxh3 hash of their source.
// Nodes are immutable, so one decoded tree is shared by every reader of the
// same bytes.
var treeCache sync.Map

// decoded is the once-per-source decode state.
type decoded struct {
	once sync.Once
	node Node
	err  error
}

// DecodeReader reads a serialized syntax tree from r and decodes it.
// Identical inputs are decoded once per process.
func DecodeReader(ctx context.Context, r io.Reader, logger log.Logger) (Node, error) {
	// Read-ahead lets the next chunk be fetched while the previous one is
	// copied.
	ra := readahead.NewReader(r)
	defer ra.Close()

	data, err := io.ReadAll(ra)
	if err != nil {
		return nil, ErrReadInput.Wrap(err).
			With(slog.String("source", "reader"))
	}

	return decodeCached(ctx, data, logger)
}

func decodeCached(ctx context.Context, data []byte, logger log.Logger) (Node, error) {
	key := sourceKey(data)

	value, hit := treeCache.LoadOrStore(key, new(decoded))

	state, ok := value.(*decoded)
	if !ok {
		return nil, ErrDecode.With(slog.String("issue", "invalid cache entry"))
	}

	logger.TraceContext(ctx, "tree cache lookup",
		slog.String("source_hash", key),
		slog.Int("source_bytes", len(data)),
		slog.Bool("cache_hit", hit),
	)

	state.once.Do(func() {
		state.node, state.err = Decode(data)
	})

	if state.err != nil {
		// A failed decode is not worth keeping.
		treeCache.CompareAndDelete(key, state)

		return nil, state.err
	}

	return state.node, nil
}

// sourceKey identifies a serialized tree by content.
func sourceKey(data []byte) string {
	return strconv.FormatUint(xxh3.Hash(data), 36)
}

// ClearCache discards every cached tree.
func ClearCache() {
	treeCache.Clear()
}
