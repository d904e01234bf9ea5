package lang

import (
	"bytes"
	"context"
	"encoding/gob"
	"io"
	"log/slog"
	"strconv"
	"sync"

	"github.com/klauspost/readahead"
	"github.com/zeebo/xxh3"
)

// exprCache stores parsed trees keyed by source and options hash.
// Trees are immutable after parsing, so one cached tree serves every
// caller concurrently.
var exprCache sync.Map

// state tracks the single parse of one cached source.
type state struct {
	once sync.Once
	expr *Expr
	err  error
}

// hashOptions hashes the option fields that shape a parse. The Registry
// contributes its identity and its mutation count, so registering,
// redirecting, or removing an operator invalidates earlier parses of the
// same source.
func hashOptions(o Options) uint64 {
	var buf bytes.Buffer

	enc := gob.NewEncoder(&buf)

	_ = enc.Encode(o.maxDepth)
	_ = enc.Encode(o.registry.id)
	_ = enc.Encode(o.registry.generation())

	return xxh3.Hash(buf.Bytes())
}

func cacheKey(input string, o Options) string {
	return strconv.FormatUint(xxh3.HashString(input)^hashOptions(o), 36)
}

// ParseCached parses like [Parse] but memoizes the result, including a
// failed parse. Repeated calls with the same source, Registry state, and
// depth limit return the same tree without reparsing.
func ParseCached(input string, opts ...Option) (*Expr, error) {
	return parseCachedWith(input, makeOptions(opts...))
}

func parseCachedWith(input string, o Options) (*Expr, error) {
	key := cacheKey(input, o)

	value, hit := exprCache.LoadOrStore(key, new(state))

	st, ok := value.(*state)
	if !ok {
		return parseWith(input, o)
	}

	o.logger.Trace(
		"expression cache lookup",
		slog.String("key", key),
		slog.Bool("cache_hit", hit),
	)

	st.once.Do(func() {
		expr, err := parseWith(input, o)
		if err != nil {
			st.err = WrapError(err).
				With(slog.Int("source_bytes", len(input)))

			return
		}

		st.expr = expr
	})

	if st.err != nil {
		return nil, st.err
	}

	return st.expr, nil
}

// ParseReader reads the remaining input from r and parses it with
// caching. The reader is wrapped with asynchronous read-ahead so data
// prefetches while earlier chunks buffer.
func ParseReader(ctx context.Context, r io.Reader, opts ...Option) (*Expr, error) {
	ra := readahead.NewReader(r)
	defer ra.Close()

	data, err := io.ReadAll(ra)
	if err != nil {
		return nil, ErrReadInput.Wrap(err).
			With(slog.String("source", "reader"))
	}

	o := makeOptions(opts...)

	o.logger.TraceContext(
		ctx,
		"read input",
		slog.Int("source_bytes", len(data)),
		slog.Bool("read_ahead", true),
	)

	return ParseCached(string(data), opts...)
}

// ClearCache removes every memoized parse. This is primarily useful for
// testing or when memory needs to be reclaimed.
func ClearCache() {
	exprCache.Clear()
}
