package vector

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"
	"github.com/siherrmann/meetgraph/helper"
	"github.com/siherrmann/meetgraph/model"
)

// QdrantIndex stores vectors in a Qdrant collection. Point ids are name
// based UUIDs of the chunk id, which is kept in the payload.
type QdrantIndex struct {
	client     *qdrant.Client
	collection string
}

var _ Index = (*QdrantIndex)(nil)

// NewQdrantIndex connects to Qdrant over gRPC.
func NewQdrantIndex(config helper.QdrantConfiguration, collection string) (*QdrantIndex, error) {
	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   config.Host,
		Port:   config.Port,
		APIKey: config.APIKey,
		UseTLS: config.UseTLS,
	})
	if err != nil {
		return nil, helper.NewError("connect qdrant", err)
	}

	return &QdrantIndex{client: client, collection: collection}, nil
}

func (q *QdrantIndex) Name() string {
	return q.collection
}

func (q *QdrantIndex) Exists(ctx context.Context) (bool, error) {
	return q.client.CollectionExists(ctx, q.collection)
}

func (q *QdrantIndex) Create(ctx context.Context, dimension int) error {
	return q.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: q.collection,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     uint64(dimension),
			Distance: qdrant.Distance_Cosine,
		}),
	})
}

func (q *QdrantIndex) Delete(ctx context.Context) error {
	return q.client.DeleteCollection(ctx, q.collection)
}

func (q *QdrantIndex) Ready(ctx context.Context) (bool, error) {
	info, err := q.client.GetCollectionInfo(ctx, q.collection)
	if err != nil {
		return false, err
	}
	return info.GetStatus() == qdrant.CollectionStatus_Green, nil
}

func (q *QdrantIndex) Upsert(ctx context.Context, records []model.VectorRecord) error {
	points := make([]*qdrant.PointStruct, 0, len(records))
	for _, record := range records {
		payload := map[string]any{"chunk_id": record.ID}
		for key, value := range record.Metadata.ToMetadata() {
			payload[key] = value
		}

		points = append(points, &qdrant.PointStruct{
			Id:      qdrant.NewID(PointID(record.ID)),
			Vectors: qdrant.NewVectors(record.Values...),
			Payload: qdrant.NewValueMap(payload),
		})
	}

	wait := true
	_, err := q.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: q.collection,
		Wait:           &wait,
		Points:         points,
	})
	return err
}

func (q *QdrantIndex) Query(ctx context.Context, vector []float32, topK int) ([]model.VectorMatch, error) {
	limit := uint64(topK)
	hits, err := q.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: q.collection,
		Query:          qdrant.NewQuery(vector...),
		Limit:          &limit,
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, err
	}

	matches := make([]model.VectorMatch, 0, len(hits))
	for _, hit := range hits {
		payload := hit.GetPayload()
		if payload == nil {
			continue
		}
		matches = append(matches, model.VectorMatch{
			ID:    payload["chunk_id"].GetStringValue(),
			Score: float64(hit.GetScore()),
			Metadata: model.VectorMetadata{
				FileName:     payload["file_name"].GetStringValue(),
				CreationTime: payload["creation_time"].GetStringValue(),
				ChunkIndex:   int(payload["chunk_index"].GetIntegerValue()),
				TotalChunks:  int(payload["total_chunks"].GetIntegerValue()),
				Content:      payload["content"].GetStringValue(),
			},
		})
	}
	return matches, nil
}

func (q *QdrantIndex) Close() error {
	if err := q.client.Close(); err != nil {
		return fmt.Errorf("failed to close qdrant client: %w", err)
	}
	return nil
}

// PointID derives the Qdrant point id of a chunk id.
func PointID(chunkID string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(chunkID)).String()
}
