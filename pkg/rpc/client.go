package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/HatiCode/storecast/pkg/api"
)

// Client calls the Predictor service over an existing connection.
type Client struct {
	conn grpc.ClientConnInterface
}

// NewClient wraps conn.
func NewClient(conn grpc.ClientConnInterface) *Client {
	return &Client{conn: conn}
}

// Predict sends req and decodes the prediction.
func (c *Client) Predict(ctx context.Context, req api.PredictRequest, opts ...grpc.CallOption) (api.PredictionResponse, error) {
	in, err := encode(req)
	if err != nil {
		return api.PredictionResponse{}, fmt.Errorf("encode request: %w", err)
	}

	out := new(structpb.Struct)
	if err := c.conn.Invoke(ctx, PredictMethod, in, out, opts...); err != nil {
		return api.PredictionResponse{}, err
	}

	data, err := json.Marshal(out.AsMap())
	if err != nil {
		return api.PredictionResponse{}, fmt.Errorf("decode response: %w", err)
	}
	var resp api.PredictionResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return api.PredictionResponse{}, fmt.Errorf("decode response: %w", err)
	}
	return resp, nil
}

func decodeStrict(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
