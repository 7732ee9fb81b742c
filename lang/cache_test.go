package lang

import (
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/ardnew/hypereval/log"
)

const cachedTree = `{"type":"binaryExpression","operator":"*","left":{"type":"literal","value":6},"right":{"type":"literal","value":7}}`

func TestDecodeReader(t *testing.T) {
	ClearCache()

	node, err := DecodeReader(t.Context(), strings.NewReader(cachedTree), log.Logger{})
	if err != nil {
		t.Fatalf("decode error: %v", err)
	}

	if v := evalNode(t, NewRuntime(), node, nil); v != float64(42) {
		t.Errorf("expected 42, got %v", v)
	}
}

func TestDecodeReader_SharesIdenticalSources(t *testing.T) {
	ClearCache()

	const readers = 8

	var (
		wg    sync.WaitGroup
		nodes [readers]Node
		errs  [readers]error
	)

	for i := range readers {
		wg.Add(1)

		go func() {
			defer wg.Done()

			nodes[i], errs[i] = DecodeReader(t.Context(), strings.NewReader(cachedTree), log.Logger{})
		}()
	}

	wg.Wait()

	for i := range readers {
		if errs[i] != nil {
			t.Fatalf("reader %d: decode error: %v", i, errs[i])
		}

		if nodes[i] != nodes[0] {
			t.Errorf("reader %d: expected the shared tree", i)
		}
	}

	ClearCache()

	again, err := DecodeReader(t.Context(), strings.NewReader(cachedTree), log.Logger{})
	if err != nil {
		t.Fatalf("decode error: %v", err)
	}

	if again == nodes[0] {
		t.Error("expected a fresh tree after clearing the cache")
	}
}

func TestDecodeReader_FailureIsNotCached(t *testing.T) {
	ClearCache()

	const bad = `{"value": 1}`

	for range 2 {
		_, err := DecodeReader(t.Context(), strings.NewReader(bad), log.Logger{})
		if !errors.Is(err, ErrMissingNodeType) {
			t.Fatalf("expected ErrMissingNodeType, got %v", err)
		}
	}

	if _, ok := treeCache.Load(sourceKey([]byte(bad))); ok {
		t.Error("expected failed decode to be evicted")
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("disk on fire") }

func TestDecodeReader_ReadError(t *testing.T) {
	_, err := DecodeReader(t.Context(), failingReader{}, log.Logger{})
	if !errors.Is(err, ErrReadInput) {
		t.Errorf("expected ErrReadInput, got %v", err)
	}
}
