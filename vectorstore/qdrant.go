package vectorstore

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	pb "github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// QdrantIndex implements Index against a Qdrant instance over gRPC.
type QdrantIndex struct {
	conn        *grpc.ClientConn
	points      pb.PointsClient
	collections pb.CollectionsClient
	collection  string
	dimension   int
	metric      Metric
}

func NewQdrant(host string, port int, collection string) (*QdrantIndex, error) {
	addr := fmt.Sprintf("%s:%d", host, port)
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("qdrant connect: %w", err)
	}
	return &QdrantIndex{
		conn:        conn,
		points:      pb.NewPointsClient(conn),
		collections: pb.NewCollectionsClient(conn),
		collection:  collection,
	}, nil
}

func (q *QdrantIndex) Ensure(ctx context.Context, dimension int, metric Metric) error {
	if dimension <= 0 {
		return fmt.Errorf("qdrant: dimension must be positive")
	}

	distance, err := qdrantDistance(metric)
	if err != nil {
		return err
	}

	listed, err := q.collections.List(ctx, &pb.ListCollectionsRequest{})
	if err != nil {
		return fmt.Errorf("list qdrant collections: %w", err)
	}
	for _, c := range listed.GetCollections() {
		if c.GetName() == q.collection {
			q.dimension = dimension
			q.metric = metric
			return nil
		}
	}

	_, err = q.collections.Create(ctx, &pb.CreateCollection{
		CollectionName: q.collection,
		VectorsConfig: &pb.VectorsConfig{
			Config: &pb.VectorsConfig_Params{
				Params: &pb.VectorParams{
					Size:     uint64(dimension),
					Distance: distance,
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("create qdrant collection: %w", err)
	}

	q.dimension = dimension
	q.metric = metric
	return nil
}

func (q *QdrantIndex) Upsert(ctx context.Context, points []Point) ([]string, error) {
	for i := range points {
		if err := validateDimension(q.dimension, len(points[i].Vector)); err != nil {
			return nil, err
		}
	}

	ids := make([]string, len(points))
	structs := make([]*pb.PointStruct, len(points))
	for i, p := range points {
		id := p.ID
		if id == "" {
			id = uuid.NewString()
		}
		ids[i] = id

		structs[i] = &pb.PointStruct{
			Id:      &pb.PointId{PointIdOptions: &pb.PointId_Uuid{Uuid: id}},
			Vectors: &pb.Vectors{VectorsOptions: &pb.Vectors_Vector{Vector: &pb.Vector{Data: p.Vector}}},
			Payload: map[string]*pb.Value{
				"text":    {Kind: &pb.Value_StringValue{StringValue: p.Text}},
				"source":  {Kind: &pb.Value_StringValue{StringValue: p.Source}},
				"ordinal": {Kind: &pb.Value_IntegerValue{IntegerValue: int64(p.Ordinal)}},
			},
		}
	}

	wait := true
	_, err := q.points.Upsert(ctx, &pb.UpsertPoints{
		CollectionName: q.collection,
		Wait:           &wait,
		Points:         structs,
	})
	if err != nil {
		return nil, fmt.Errorf("qdrant upsert: %w", err)
	}

	return ids, nil
}

func (q *QdrantIndex) Search(ctx context.Context, vector []float32, limit int) ([]SearchResult, error) {
	if err := validateDimension(q.dimension, len(vector)); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 5
	}

	resp, err := q.points.Search(ctx, &pb.SearchPoints{
		CollectionName: q.collection,
		Vector:         vector,
		Limit:          uint64(limit),
		WithPayload:    &pb.WithPayloadSelector{SelectorOptions: &pb.WithPayloadSelector_Enable{Enable: true}},
	})
	if err != nil {
		return nil, fmt.Errorf("qdrant search: %w", err)
	}

	results := make([]SearchResult, len(resp.GetResult()))
	for i, pt := range resp.GetResult() {
		payload := pt.GetPayload()
		results[i] = SearchResult{
			ID:      pt.GetId().GetUuid(),
			Score:   float64(pt.GetScore()),
			Text:    payload["text"].GetStringValue(),
			Source:  payload["source"].GetStringValue(),
			Ordinal: int(payload["ordinal"].GetIntegerValue()),
		}
	}
	return results, nil
}

func (q *QdrantIndex) DistanceMetric() Metric {
	return q.metric
}

func (q *QdrantIndex) Close() error {
	return q.conn.Close()
}

func qdrantDistance(metric Metric) (pb.Distance, error) {
	switch metric {
	case MetricCosine:
		return pb.Distance_Cosine, nil
	case MetricEuclidean:
		return pb.Distance_Euclid, nil
	default:
		return pb.Distance_UnknownDistance, fmt.Errorf("qdrant: unknown distance metric %q", metric)
	}
}

var _ Index = (*QdrantIndex)(nil)
