package vectorstore

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/qdrant/go-client/qdrant"

	"bookrag-ai/internal/contextutil"
)

const upsertBatchSize = 256

// QdrantOptions configures the Qdrant connection.
type QdrantOptions struct {
	URL     string        // HTTP URL, e.g. "http://localhost:6333"; the gRPC port is derived from it
	APIKey  string        // Optional API key for Qdrant Cloud
	Timeout time.Duration // Per-call deadline; zero disables it
}

// QdrantStore implements VectorStore using Qdrant over gRPC.
type QdrantStore struct {
	client  *qdrant.Client
	timeout time.Duration
}

// NewQdrantStore creates a new Qdrant vector store client.
func NewQdrantStore(opts QdrantOptions) (*QdrantStore, error) {
	host, port, useTLS, err := parseQdrantURL(opts.URL)
	if err != nil {
		return nil, err
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   host,
		Port:   port,
		APIKey: opts.APIKey,
		UseTLS: useTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Qdrant client: %w", err)
	}

	return &QdrantStore{
		client:  client,
		timeout: opts.Timeout,
	}, nil
}

// parseQdrantURL derives the gRPC host and port from the HTTP URL.
// The gRPC port is the HTTP port + 1 (6334 by default). https enables TLS.
func parseQdrantURL(urlStr string) (host string, port int, useTLS bool, err error) {
	parsedURL, err := url.Parse(urlStr)
	if err != nil {
		return "", 0, false, fmt.Errorf("invalid Qdrant URL: %w", err)
	}

	host = parsedURL.Hostname()
	if host == "" {
		host = "localhost"
	}

	port = 6334
	if parsedURL.Port() != "" {
		httpPort, err := strconv.Atoi(parsedURL.Port())
		if err != nil {
			return "", 0, false, fmt.Errorf("invalid Qdrant port %q: %w", parsedURL.Port(), err)
		}
		port = httpPort + 1
	}

	return host, port, parsedURL.Scheme == "https", nil
}

// Close releases the underlying gRPC connections.
func (s *QdrantStore) Close() error {
	return s.client.Close()
}

func (s *QdrantStore) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.timeout)
}

// EnsureCollection ensures a collection exists with the specified vector size.
func (s *QdrantStore) EnsureCollection(ctx context.Context, collection string, vectorSize int) error {
	logger := contextutil.LoggerFromContext(ctx)
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	exists, err := s.client.CollectionExists(ctx, collection)
	if err != nil {
		return fmt.Errorf("failed to check collection existence: %w", err)
	}

	if !exists {
		logger.InfoContext(ctx, "creating collection", "collection", collection, "vector_size", vectorSize)
		err := s.client.CreateCollection(ctx, &qdrant.CreateCollection{
			CollectionName: collection,
			VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
				Size:     uint64(vectorSize),
				Distance: qdrant.Distance_Cosine,
			}),
		})
		if err != nil {
			return fmt.Errorf("failed to create collection: %w", err)
		}
		return nil
	}

	info, err := s.client.GetCollectionInfo(ctx, collection)
	if err != nil {
		return fmt.Errorf("failed to get collection info: %w", err)
	}
	actualSize := vectorSizeOf(info)
	if actualSize == 0 {
		return fmt.Errorf("could not determine collection vector size")
	}
	if actualSize != vectorSize {
		return fmt.Errorf("collection vector size mismatch: expected %d, got %d", vectorSize, actualSize)
	}

	logger.InfoContext(ctx, "collection validated", "collection", collection, "vector_size", vectorSize)
	return nil
}

// Upsert inserts or updates points in batches.
func (s *QdrantStore) Upsert(ctx context.Context, collection string, points []Point) error {
	logger := contextutil.LoggerFromContext(ctx)

	if len(points) == 0 {
		return nil
	}

	qdrantPoints := make([]*qdrant.PointStruct, 0, len(points))
	for _, point := range points {
		payload, err := qdrant.TryValueMap(point.Payload)
		if err != nil {
			return fmt.Errorf("failed to convert payload for point %s: %w", point.ID, err)
		}
		qdrantPoints = append(qdrantPoints, &qdrant.PointStruct{
			Id:      qdrant.NewID(point.ID),
			Vectors: qdrant.NewVectors(point.Vec...),
			Payload: payload,
		})
	}

	for start := 0; start < len(qdrantPoints); start += upsertBatchSize {
		end := start + upsertBatchSize
		if end > len(qdrantPoints) {
			end = len(qdrantPoints)
		}

		callCtx, cancel := s.withTimeout(ctx)
		_, err := s.client.Upsert(callCtx, &qdrant.UpsertPoints{
			CollectionName: collection,
			Wait:           qdrant.PtrOf(true),
			Points:         qdrantPoints[start:end],
		})
		cancel()
		if err != nil {
			logger.ErrorContext(ctx, "failed to upsert points", "collection", collection, "count", end-start, "error", err)
			return fmt.Errorf("failed to upsert points: %w", err)
		}
	}

	logger.InfoContext(ctx, "upserted points", "collection", collection, "count", len(points))
	return nil
}

// Search performs a similarity search with optional exact-match filters.
func (s *QdrantStore) Search(ctx context.Context, collection string, query []float32, limit int, filters map[string]any) ([]SearchResult, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if limit <= 0 {
		return nil, ErrInvalidLimit
	}

	filter, err := buildFilter(filters)
	if err != nil {
		return nil, err
	}

	lim := uint64(limit)
	queryReq := &qdrant.QueryPoints{
		CollectionName: collection,
		Query:          qdrant.NewQuery(query...),
		Limit:          &lim,
		WithPayload:    qdrant.NewWithPayload(true),
		Filter:         filter,
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	scoredPoints, err := s.client.Query(ctx, queryReq)
	if err != nil {
		logger.ErrorContext(ctx, "failed to search points", "collection", collection, "limit", limit, "error", err)
		return nil, fmt.Errorf("failed to search points: %w", err)
	}

	results := make([]SearchResult, 0, len(scoredPoints))
	for _, point := range scoredPoints {
		results = append(results, SearchResult{
			ID:      pointIDString(point.GetId()),
			Score:   point.GetScore(),
			Payload: convertPayloadToMap(point.GetPayload()),
		})
	}

	logger.DebugContext(ctx, "search completed", "collection", collection, "limit", limit, "results", len(results))
	return results, nil
}

// Delete removes points by their IDs.
func (s *QdrantStore) Delete(ctx context.Context, collection string, ids []string) error {
	logger := contextutil.LoggerFromContext(ctx)

	if len(ids) == 0 {
		return nil
	}

	qdrantIDs := make([]*qdrant.PointId, 0, len(ids))
	for _, id := range ids {
		qdrantIDs = append(qdrantIDs, qdrant.NewID(id))
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	_, err := s.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: collection,
		Wait:           qdrant.PtrOf(true),
		Points:         qdrant.NewPointsSelector(qdrantIDs...),
	})
	if err != nil {
		logger.ErrorContext(ctx, "failed to delete points", "collection", collection, "count", len(ids), "error", err)
		return fmt.Errorf("failed to delete points: %w", err)
	}

	logger.InfoContext(ctx, "deleted points", "collection", collection, "count", len(ids))
	return nil
}

// Count returns the exact number of points in the collection.
func (s *QdrantStore) Count(ctx context.Context, collection string) (int, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	count, err := s.client.Count(ctx, &qdrant.CountPoints{
		CollectionName: collection,
		Exact:          qdrant.PtrOf(true),
	})
	if err != nil {
		return 0, fmt.Errorf("failed to count points: %w", err)
	}
	return int(count), nil
}

// ListCollections returns the names of all collections.
func (s *QdrantStore) ListCollections(ctx context.Context) ([]string, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	names, err := s.client.ListCollections(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list collections: %w", err)
	}
	return names, nil
}

// CollectionInfo returns information about a collection including point count.
func (s *QdrantStore) CollectionInfo(ctx context.Context, collection string) (*CollectionInfo, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	info, err := s.client.GetCollectionInfo(ctx, collection)
	if err != nil {
		return nil, fmt.Errorf("failed to get collection info: %w", err)
	}

	var pointsCount int
	if info.PointsCount != nil {
		pointsCount = int(*info.PointsCount)
	}

	return &CollectionInfo{
		Name:        collection,
		VectorSize:  vectorSizeOf(info),
		PointsCount: pointsCount,
		Status:      info.GetStatus().String(),
	}, nil
}

// Health returns the Qdrant server version.
func (s *QdrantStore) Health(ctx context.Context) (string, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	reply, err := s.client.HealthCheck(ctx)
	if err != nil {
		return "", fmt.Errorf("qdrant health check failed: %w", err)
	}
	return reply.GetVersion(), nil
}

func vectorSizeOf(info *qdrant.CollectionInfo) int {
	if info == nil || info.Config == nil || info.Config.Params == nil {
		return 0
	}
	params := info.Config.Params.GetVectorsConfig().GetParams()
	if params == nil {
		return 0
	}
	return int(params.Size)
}

// buildFilter turns field -> value pairs into an AND of exact-match conditions.
func buildFilter(filters map[string]any) (*qdrant.Filter, error) {
	if len(filters) == 0 {
		return nil, nil
	}

	must := make([]*qdrant.Condition, 0, len(filters))
	for field, value := range filters {
		cond, err := matchCondition(field, value)
		if err != nil {
			return nil, err
		}
		must = append(must, cond)
	}
	return &qdrant.Filter{Must: must}, nil
}

func matchCondition(field string, value any) (*qdrant.Condition, error) {
	switch v := value.(type) {
	case string:
		return qdrant.NewMatchKeyword(field, v), nil
	case bool:
		return qdrant.NewMatchBool(field, v), nil
	case int:
		return qdrant.NewMatchInt(field, int64(v)), nil
	case int32:
		return qdrant.NewMatchInt(field, int64(v)), nil
	case int64:
		return qdrant.NewMatchInt(field, v), nil
	case uint32:
		return qdrant.NewMatchInt(field, int64(v)), nil
	case float32:
		f := float64(v)
		return qdrant.NewRange(field, &qdrant.Range{Gte: &f, Lte: &f}), nil
	case float64:
		// JSON numbers decode as float64; whole numbers are matched as integers.
		if v == float64(int64(v)) {
			return qdrant.NewMatchInt(field, int64(v)), nil
		}
		return qdrant.NewRange(field, &qdrant.Range{Gte: &v, Lte: &v}), nil
	default:
		return nil, fmt.Errorf("%w: field %q has type %T", ErrUnsupportedFilter, field, value)
	}
}

func pointIDString(id *qdrant.PointId) string {
	if id == nil {
		return ""
	}
	if u := id.GetUuid(); u != "" {
		return u
	}
	return strconv.FormatUint(id.GetNum(), 10)
}

// convertPayloadToMap converts Qdrant payload to map[string]any.
func convertPayloadToMap(payload map[string]*qdrant.Value) map[string]any {
	result := make(map[string]any, len(payload))
	for k, v := range payload {
		if v == nil {
			continue
		}
		result[k] = convertValue(v)
	}
	return result
}

// convertValue converts a Qdrant Value to Go any type.
func convertValue(v *qdrant.Value) any {
	switch val := v.Kind.(type) {
	case *qdrant.Value_BoolValue:
		return val.BoolValue
	case *qdrant.Value_IntegerValue:
		return val.IntegerValue
	case *qdrant.Value_DoubleValue:
		return val.DoubleValue
	case *qdrant.Value_StringValue:
		return val.StringValue
	case *qdrant.Value_ListValue:
		list := make([]any, len(val.ListValue.Values))
		for i, item := range val.ListValue.Values {
			list[i] = convertValue(item)
		}
		return list
	case *qdrant.Value_StructValue:
		return convertPayloadToMap(val.StructValue.Fields)
	default:
		return nil
	}
}
