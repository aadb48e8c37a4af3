// 输出模块，将每步的仿真画面批量写入MongoDB
package output

import (
	"context"
	"fmt"

	"git.fiblab.net/general/common/v2/mongoutil"
	"github.com/sirupsen/logrus"
	"github.com/tsinghua-fib-lab/intersection-sim/render"
	"github.com/tsinghua-fib-lab/intersection-sim/utils/config"
	"go.mongodb.org/mongo-driver/mongo"
)

var log = logrus.WithField("module", "output")

const defaultBatchSize = 100

// frameDoc 写入数据库的文档
type frameDoc struct {
	Job          string `bson:"job"`
	render.Frame `bson:",inline"`
}

// MongoSink 仿真画面的MongoDB记录器
// 功能：缓存帧并按批写入集合，关闭时写入剩余帧并断开连接
type MongoSink struct {
	job    string
	client *mongo.Client
	insert func(ctx context.Context, docs []any) error

	batchSize int
	buffer    []any
}

// NewMongoSink 创建MongoDB记录器
// 参数：path-输出位置（集合名为空时使用任务名），job-任务名
// 返回：记录器，数据库名为空时返回错误
func NewMongoSink(path config.OutputPath, job string) (*MongoSink, error) {
	if path.GetDb() == "" {
		return nil, fmt.Errorf("output db is empty")
	}
	col := path.GetColl()
	if col == "" {
		col = job
	}
	client := mongoutil.NewClient(path.URI)
	coll := client.Database(path.GetDb()).Collection(col)
	log.Infof("record frames to %s.%s", path.GetDb(), col)
	s := newSink(job, func(ctx context.Context, docs []any) error {
		_, err := coll.InsertMany(ctx, docs)
		return err
	}, defaultBatchSize)
	s.client = client
	return s, nil
}

func newSink(job string, insert func(ctx context.Context, docs []any) error, batchSize int) *MongoSink {
	return &MongoSink{
		job:       job,
		insert:    insert,
		batchSize: batchSize,
		buffer:    make([]any, 0, batchSize),
	}
}

// Draw 缓存一帧，缓存满时写入数据库
func (s *MongoSink) Draw(f *render.Frame) error {
	s.buffer = append(s.buffer, frameDoc{Job: s.job, Frame: *f})
	if len(s.buffer) >= s.batchSize {
		return s.flush(context.Background())
	}
	return nil
}

func (s *MongoSink) flush(ctx context.Context) error {
	if len(s.buffer) == 0 {
		return nil
	}
	n := len(s.buffer)
	err := s.insert(ctx, s.buffer)
	s.buffer = make([]any, 0, s.batchSize)
	if err != nil {
		return fmt.Errorf("insert %d frames: %w", n, err)
	}
	return nil
}

// Close 写入剩余帧并断开连接
func (s *MongoSink) Close() error {
	ctx := context.Background()
	err := s.flush(ctx)
	if s.client != nil {
		if e := s.client.Disconnect(ctx); e != nil && err == nil {
			err = e
		}
	}
	return err
}
