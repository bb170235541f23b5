package linemonitor

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const defaultRepredictStream = "predictions.repredict."

// StreamRepredictor publishes actionable movements to a per-sport Redis
// stream. The prediction service consumes the stream and records the
// re-prediction, which is what advances the history counters.
type StreamRepredictor struct {
	client redis.Cmdable
	prefix string
	maxLen int64
}

// NewStreamRepredictor creates a publisher writing to prefix+sport. An empty
// prefix selects "predictions.repredict.".
func NewStreamRepredictor(client redis.Cmdable, prefix string) *StreamRepredictor {
	if prefix == "" {
		prefix = defaultRepredictStream
	}
	return &StreamRepredictor{client: client, prefix: prefix, maxLen: 10000}
}

// Stream returns the stream name for a sport.
func (p *StreamRepredictor) Stream(sport string) string {
	return p.prefix + sport
}

// Repredict implements Repredictor.
func (p *StreamRepredictor) Repredict(ctx context.Context, movement LineMovement) error {
	return p.Publish(ctx, movement, nil)
}

// Publish writes movement, and the fresh prediction when one was computed,
// to the sport's stream.
func (p *StreamRepredictor) Publish(ctx context.Context, movement LineMovement, prediction any) error {
	data, err := json.Marshal(movement)
	if err != nil {
		return fmt.Errorf("marshaling line movement: %w", err)
	}

	values := map[string]interface{}{
		"data":          string(data),
		"prediction_id": movement.PredictionID.String(),
		"game_id":       movement.GameID,
		"state":         movement.State,
	}
	if prediction != nil {
		pred, err := json.Marshal(prediction)
		if err != nil {
			return fmt.Errorf("marshaling prediction: %w", err)
		}
		values["prediction"] = string(pred)
	}

	return p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.Stream(movement.Sport),
		MaxLen: p.maxLen,
		Approx: true,
		Values: values,
	}).Err()
}
