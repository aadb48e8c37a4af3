package output

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tsinghua-fib-lab/intersection-sim/entity"
	"github.com/tsinghua-fib-lab/intersection-sim/render"
	"github.com/tsinghua-fib-lab/intersection-sim/utils/config"
	"go.mongodb.org/mongo-driver/bson"
)

func TestMongoSinkBatch(t *testing.T) {
	batches := make([][]any, 0)
	s := newSink("job0", func(ctx context.Context, docs []any) error {
		batches = append(batches, docs)
		return nil
	}, 2)
	for i := int32(0); i < 5; i++ {
		require.NoError(t, s.Draw(&render.Frame{Step: i}))
	}
	require.Len(t, batches, 2)
	require.NoError(t, s.Close())
	require.Len(t, batches, 3)
	assert.Len(t, batches[2], 1)
	doc := batches[2][0].(frameDoc)
	assert.Equal(t, "job0", doc.Job)
	assert.Equal(t, int32(4), doc.Step)
	// 无剩余帧时不写入
	require.NoError(t, s.Close())
	assert.Len(t, batches, 3)
}

func TestMongoSinkError(t *testing.T) {
	s := newSink("job0", func(ctx context.Context, docs []any) error {
		return errors.New("boom")
	}, 1)
	assert.Error(t, s.Draw(&render.Frame{}))
	// 失败的批次被丢弃
	assert.NoError(t, s.Close())
}

func TestNewMongoSinkNoDb(t *testing.T) {
	_, err := NewMongoSink(config.OutputPath{URI: "mongodb://localhost:27017"}, "job0")
	assert.Error(t, err)
}

func TestFrameDocKeepsCarClass(t *testing.T) {
	f := render.Frame{Step: 2}
	f.Lanes[entity.North] = []entity.Cell{{Occupied: true, ID: 0, Class: entity.Car}, {}}
	data, err := bson.Marshal(frameDoc{Job: "job0", Frame: f})
	require.NoError(t, err)

	raw := bson.Raw(data)
	assert.Equal(t, "job0", raw.Lookup("job").StringValue())
	assert.Equal(t, int32(2), raw.Lookup("step").Int32())
	// lanes.0为北向车道
	_, err = raw.LookupErr("lanes", "0", "0", "id")
	assert.NoError(t, err)
	class, err := raw.LookupErr("lanes", "0", "0", "class")
	require.NoError(t, err)
	assert.Equal(t, int32(entity.Car), class.Int32())
	assert.True(t, raw.Lookup("lanes", "0", "0", "occupied").Boolean())
	assert.False(t, raw.Lookup("lanes", "0", "1", "occupied").Boolean())
}
