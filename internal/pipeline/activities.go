package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/calvora/conveyor/pkg/ports"
	"github.com/calvora/conveyor/pkg/registry"
)

// Activity names registered by the ingestion pipeline.
const (
	ActivityLoadDocument = "load_document"
	ActivitySplit        = "split_documents"
	ActivityTransform    = "transform_documents"
	ActivityStore        = "store_documents"
	ActivityStoreVectors = "store_vectors"

	defaultChunkSize = 512
	storeBatchSize   = 100
	summaryMaxWords  = 25
)

// Transforms accepted by transform_documents.
const (
	TransformClean   = "clean"
	TransformSummary = "summary"
)

// Activities is the document-ingestion activity set driven by the interpreter.
// Resources are read from and written to keyed document storage; vector and
// embedding backends stay behind the store_vectors seam and are represented by
// deterministic ids here.
type Activities struct {
	resources ports.DocStore
	docs      ports.DocStore
	logger    *slog.Logger
}

// NewActivities creates the pipeline activity set. resources holds the source
// material keyed by resource id; docs receives processed chunks.
func NewActivities(resources, docs ports.DocStore, logger *slog.Logger) *Activities {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Activities{resources: resources, docs: docs, logger: logger}
}

// Register adds the pipeline activities to the registry.
func (a *Activities) Register(reg *registry.Registry) error {
	for name, fn := range map[string]registry.ActivityFunc{
		ActivityLoadDocument: a.loadDocument,
		ActivitySplit:        a.splitDocuments,
		ActivityTransform:    a.transformDocuments,
		ActivityStore:        a.storeDocuments,
		ActivityStoreVectors: a.storeVectors,
	} {
		if err := reg.Register(name, fn); err != nil {
			return err
		}
	}
	return nil
}

// loadDocument fetches the resource text for a resource id.
func (a *Activities) loadDocument(ctx context.Context, args []any) (any, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("%s: expected 1 argument, got %d", ActivityLoadDocument, len(args))
	}
	resourceID, ok := args[0].(string)
	if !ok {
		return nil, fmt.Errorf("%s: resource id must be a string", ActivityLoadDocument)
	}
	text, found, err := a.resources.Get(ctx, resourceID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ActivityLoadDocument, err)
	}
	if !found {
		return nil, fmt.Errorf("%s: resource %s not found", ActivityLoadDocument, resourceID)
	}
	a.logger.Info("loaded resource", "resource_id", resourceID, "bytes", len(text))
	return []string{text}, nil
}

// splitDocuments chunks documents into at most chunkSize-rune pieces.
func (a *Activities) splitDocuments(ctx context.Context, args []any) (any, error) {
	if len(args) != 2 {
		return nil, fmt.Errorf("%s: expected 2 arguments, got %d", ActivitySplit, len(args))
	}
	docs, err := documentsArg(ActivitySplit, args[0])
	if err != nil {
		return nil, err
	}
	chunkSize, err := intArg(ActivitySplit, "chunk_size", args[1])
	if err != nil {
		return nil, err
	}
	if chunkSize <= 0 {
		chunkSize = defaultChunkSize
	}

	var chunks []string
	for _, doc := range docs {
		runes := []rune(doc)
		for start := 0; start < len(runes); start += chunkSize {
			end := min(start+chunkSize, len(runes))
			chunks = append(chunks, string(runes[start:end]))
		}
	}
	a.logger.Info("split documents", "in", len(docs), "out", len(chunks), "chunk_size", chunkSize)
	return chunks, nil
}

// transformDocuments applies a named transform to every document.
func (a *Activities) transformDocuments(ctx context.Context, args []any) (any, error) {
	if len(args) != 2 {
		return nil, fmt.Errorf("%s: expected 2 arguments, got %d", ActivityTransform, len(args))
	}
	docs, err := documentsArg(ActivityTransform, args[0])
	if err != nil {
		return nil, err
	}
	transform, ok := args[1].(string)
	if !ok {
		return nil, fmt.Errorf("%s: transform must be a string", ActivityTransform)
	}

	out := make([]string, 0, len(docs))
	for _, doc := range docs {
		switch transform {
		case TransformClean:
			out = append(out, strings.Join(strings.Fields(doc), " "))
		case TransformSummary:
			words := strings.Fields(doc)
			if len(words) > summaryMaxWords {
				words = words[:summaryMaxWords]
			}
			out = append(out, strings.Join(words, " "))
		default:
			return nil, fmt.Errorf("%s: unknown transform %q", ActivityTransform, transform)
		}
	}
	return out, nil
}

// storeDocuments persists chunks in batches and returns the generated ids.
func (a *Activities) storeDocuments(ctx context.Context, args []any) (any, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("%s: expected 1 argument, got %d", ActivityStore, len(args))
	}
	docs, err := documentsArg(ActivityStore, args[0])
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(docs))
	for start := 0; start < len(docs); start += storeBatchSize {
		end := min(start+storeBatchSize, len(docs))
		batch := make(map[string]string, end-start)
		for _, doc := range docs[start:end] {
			id := uuid.NewString()
			batch[id] = doc
			ids = append(ids, id)
		}
		if err := a.docs.SetBatch(ctx, batch); err != nil {
			return nil, fmt.Errorf("%s: %w", ActivityStore, err)
		}
	}
	a.logger.Info("stored documents", "count", len(ids))
	return ids, nil
}

// storeVectors represents indexing into a vector collection. The embedding
// backend lives outside this core; the activity validates its inputs and
// returns one id per document so downstream statements can fan in on them.
func (a *Activities) storeVectors(ctx context.Context, args []any) (any, error) {
	if len(args) != 2 {
		return nil, fmt.Errorf("%s: expected 2 arguments, got %d", ActivityStoreVectors, len(args))
	}
	docs, err := documentsArg(ActivityStoreVectors, args[0])
	if err != nil {
		return nil, err
	}
	collection, ok := args[1].(string)
	if !ok || collection == "" {
		return nil, fmt.Errorf("%s: collection name must be a non-empty string", ActivityStoreVectors)
	}

	ids := make([]string, len(docs))
	for i := range docs {
		ids[i] = collection + ":" + uuid.NewString()
	}
	a.logger.Info("indexed documents", "collection", collection, "count", len(ids))
	return ids, nil
}

// documentsArg accepts the shapes a document list takes after round-tripping
// through the scope: native []string, or []any produced by JSON decoding.
func documentsArg(activity string, arg any) ([]string, error) {
	switch v := arg.(type) {
	case []string:
		return v, nil
	case []any:
		out := make([]string, len(v))
		for i, el := range v {
			s, ok := el.(string)
			if !ok {
				return nil, fmt.Errorf("%s: document %d is %T, want string", activity, i, el)
			}
			out[i] = s
		}
		return out, nil
	case string:
		return []string{v}, nil
	default:
		return nil, fmt.Errorf("%s: documents must be strings, got %T", activity, arg)
	}
}

func intArg(activity, name string, arg any) (int, error) {
	switch v := arg.(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case float64:
		return int(v), nil
	default:
		return 0, fmt.Errorf("%s: %s must be numeric, got %T", activity, name, arg)
	}
}
