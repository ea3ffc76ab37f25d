// Package qdrant provides a Qdrant document driver over the gRPC client.
package qdrant

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"strconv"

	"github.com/google/uuid"
	qc "github.com/qdrant/go-client/qdrant"

	"github.com/papercomputeco/kauni/pkg/vector"
)

const (
	// DefaultCollectionName is used when Config.CollectionName is empty.
	DefaultCollectionName = "documents"

	defaultPort = 6334

	payloadDocID    = "doc_id"
	payloadContent  = "content"
	payloadMetadata = "metadata"
)

// idNamespace derives stable point UUIDs for document IDs that are not UUIDs.
var idNamespace = uuid.MustParse("6f1c63a8-5f0d-4c55-9a53-1d4f0b6a2c11")

// Driver implements vector.Driver using Qdrant.
type Driver struct {
	client         *qc.Client
	collectionName string
	logger         *slog.Logger
}

// Config holds configuration for the Qdrant driver.
type Config struct {
	// Target is "host" or "host:port" of the gRPC endpoint.
	Target string

	// APIKey is optional.
	APIKey string
	UseTLS bool

	CollectionName string

	// Dimensions sizes the collection when it has to be created.
	Dimensions uint
}

// NewDriver connects to Qdrant and creates the collection if it is missing.
func NewDriver(ctx context.Context, c Config, logger *slog.Logger) (*Driver, error) {
	if c.Target == "" {
		return nil, fmt.Errorf("qdrant target is required")
	}
	if c.Dimensions == 0 {
		return nil, fmt.Errorf("qdrant embedding dimensions cannot be 0, must be configured")
	}

	host, port, err := splitTarget(c.Target)
	if err != nil {
		return nil, err
	}

	name := c.CollectionName
	if name == "" {
		name = DefaultCollectionName
	}

	client, err := qc.NewClient(&qc.Config{
		Host:   host,
		Port:   port,
		APIKey: c.APIKey,
		UseTLS: c.UseTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: creating qdrant client: %v", vector.ErrStore, err)
	}

	exists, err := client.CollectionExists(ctx, name)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("%w: checking collection %q: %v", vector.ErrStore, name, err)
	}

	if !exists {
		err := client.CreateCollection(ctx, &qc.CreateCollection{
			CollectionName: name,
			VectorsConfig: qc.NewVectorsConfig(&qc.VectorParams{
				Size:     uint64(c.Dimensions),
				Distance: qc.Distance_Cosine,
			}),
		})
		if err != nil {
			client.Close()
			return nil, fmt.Errorf("%w: creating collection %q: %v", vector.ErrStore, name, err)
		}
		logger.Info("created qdrant collection", "collection", name, "dimensions", c.Dimensions)
	}

	logger.Info("connected to qdrant", "host", host, "port", port, "collection", name)

	return &Driver{
		client:         client,
		collectionName: name,
		logger:         logger,
	}, nil
}

// Upsert writes documents as points, replacing points with the same ID.
func (d *Driver) Upsert(ctx context.Context, docs []vector.Document) error {
	if len(docs) == 0 {
		return nil
	}

	points := make([]*qc.PointStruct, 0, len(docs))
	for _, doc := range docs {
		payload, err := toPayload(doc)
		if err != nil {
			return fmt.Errorf("%w: encoding payload for doc %s: %v", vector.ErrStore, doc.ID, err)
		}
		points = append(points, &qc.PointStruct{
			Id:      qc.NewID(PointID(doc.ID)),
			Vectors: qc.NewVectors(doc.Embedding...),
			Payload: payload,
		})
	}

	_, err := d.client.Upsert(ctx, &qc.UpsertPoints{
		CollectionName: d.collectionName,
		Wait:           qc.PtrOf(true),
		Points:         points,
	})
	if err != nil {
		return fmt.Errorf("%w: upserting points: %v", vector.ErrStore, err)
	}

	d.logger.Debug("upserted documents to qdrant", "count", len(docs))

	return nil
}

// Query returns the k nearest points. Qdrant reports cosine similarity, which
// is converted to a distance of 1 - similarity.
func (d *Driver) Query(ctx context.Context, embedding []float32, k int) ([]vector.QueryResult, error) {
	if k <= 0 {
		k = 1
	}

	points, err := d.client.Query(ctx, &qc.QueryPoints{
		CollectionName: d.collectionName,
		Query:          qc.NewQuery(embedding...),
		Limit:          qc.PtrOf(uint64(k)),
		WithPayload:    qc.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: querying points: %v", vector.ErrStore, err)
	}

	results := make([]vector.QueryResult, 0, len(points))
	for _, p := range points {
		r := fromPayload(p.GetId(), p.GetPayload())
		r.Distance = max(1-p.GetScore(), 0)
		results = append(results, r)
	}

	return results, nil
}

// Scan scrolls the first k points of the collection.
func (d *Driver) Scan(ctx context.Context, k int) ([]vector.QueryResult, error) {
	if k <= 0 {
		k = 1
	}

	points, err := d.client.Scroll(ctx, &qc.ScrollPoints{
		CollectionName: d.collectionName,
		Limit:          qc.PtrOf(uint32(k)),
		WithPayload:    qc.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: scrolling points: %v", vector.ErrStore, err)
	}

	results := make([]vector.QueryResult, 0, len(points))
	for _, p := range points {
		results = append(results, fromPayload(p.GetId(), p.GetPayload()))
	}

	return results, nil
}

// Count returns the exact number of points in the collection.
func (d *Driver) Count(ctx context.Context) (int, error) {
	n, err := d.client.Count(ctx, &qc.CountPoints{
		CollectionName: d.collectionName,
		Exact:          qc.PtrOf(true),
	})
	if err != nil {
		return 0, fmt.Errorf("%w: counting points: %v", vector.ErrStore, err)
	}
	return int(n), nil
}

// Close closes the gRPC connection.
func (d *Driver) Close() error {
	return d.client.Close()
}

// PointID maps a document ID to a Qdrant point UUID. UUIDs pass through;
// anything else is hashed into a stable name-based UUID.
func PointID(docID string) string {
	if u, err := uuid.Parse(docID); err == nil {
		return u.String()
	}
	return uuid.NewSHA1(idNamespace, []byte(docID)).String()
}

func splitTarget(target string) (string, int, error) {
	host, portStr, err := net.SplitHostPort(target)
	if err != nil {
		// No port present.
		return target, defaultPort, nil
	}

	port, err := strconv.Atoi(portStr)
	if err != nil {
		return "", 0, fmt.Errorf("invalid qdrant port %q: %w", portStr, err)
	}
	return host, port, nil
}

func toPayload(doc vector.Document) (map[string]*qc.Value, error) {
	// Normalize metadata to JSON types so every value is representable.
	metadata := map[string]any{}
	if len(doc.Metadata) > 0 {
		b, err := json.Marshal(doc.Metadata)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal(b, &metadata); err != nil {
			return nil, err
		}
	}

	return qc.NewValueMap(map[string]any{
		payloadDocID:    doc.ID,
		payloadContent:  doc.Content,
		payloadMetadata: metadata,
	}), nil
}

func fromPayload(id *qc.PointId, payload map[string]*qc.Value) vector.QueryResult {
	r := vector.QueryResult{
		ID:       id.GetUuid(),
		Metadata: map[string]any{},
	}
	if r.ID == "" {
		r.ID = strconv.FormatUint(id.GetNum(), 10)
	}

	if v, ok := payload[payloadDocID]; ok && v.GetStringValue() != "" {
		r.ID = v.GetStringValue()
	}
	if v, ok := payload[payloadContent]; ok {
		r.Content = v.GetStringValue()
	}
	if v, ok := payload[payloadMetadata]; ok {
		if m, ok := ValueToAny(v).(map[string]any); ok {
			r.Metadata = m
		}
	}

	return r
}

// ValueToAny converts a Qdrant payload value into plain Go values.
func ValueToAny(v *qc.Value) any {
	switch k := v.GetKind().(type) {
	case *qc.Value_StringValue:
		return k.StringValue
	case *qc.Value_IntegerValue:
		return k.IntegerValue
	case *qc.Value_DoubleValue:
		return k.DoubleValue
	case *qc.Value_BoolValue:
		return k.BoolValue
	case *qc.Value_ListValue:
		out := make([]any, 0, len(k.ListValue.GetValues()))
		for _, item := range k.ListValue.GetValues() {
			out = append(out, ValueToAny(item))
		}
		return out
	case *qc.Value_StructValue:
		out := make(map[string]any, len(k.StructValue.GetFields()))
		for key, item := range k.StructValue.GetFields() {
			out[key] = ValueToAny(item)
		}
		return out
	default:
		return nil
	}
}

var _ vector.Driver = (*Driver)(nil)
