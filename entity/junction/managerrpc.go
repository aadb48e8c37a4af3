package junction

import (
	"context"
	"errors"
	"net/http"

	"connectrpc.com/connect"
	mapv2 "git.fiblab.net/sim/protos/v2/go/city/map/v2"
	mapv2connect "git.fiblab.net/sim/protos/v2/go/city/map/v2/mapv2connect"
	"git.fiblab.net/sim/syncer/v3"
	"google.golang.org/protobuf/proto"
)

// Register 将路口注册到sidecar
// 功能：注册信号灯服务处理器，支持gRPC-Connect协议
// 参数：sidecar-同步器侧车实例
func (j *Junction) Register(sidecar *syncer.Sidecar) {
	sidecar.Register(
		mapv2connect.TrafficLightServiceName,
		func(opts ...connect.HandlerOption) (pattern string, handler http.Handler) {
			return mapv2connect.NewTrafficLightServiceHandler(j, opts...)
		},
	)
}

// GetTrafficLight RPC接口：获取路口的信号灯状态
// 功能：返回固定周期对应的相位程序、当前相位下标和相位剩余时间
// 参数：ctx-上下文，in-包含Junction ID的请求
// 返回：信号灯状态响应，路口ID不匹配时返回InvalidArgument
func (j *Junction) GetTrafficLight(
	ctx context.Context, in *connect.Request[mapv2.GetTrafficLightRequest],
) (*connect.Response[mapv2.GetTrafficLightResponse], error) {
	if in.Msg.JunctionId != j.id {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("junction id does not exist"))
	}
	phase, remaining := j.trafficLight.PhaseAt(j.step)
	return connect.NewResponse(&mapv2.GetTrafficLightResponse{
		TrafficLight:  proto.Clone(j.trafficLight.Program()).(*mapv2.TrafficLight),
		PhaseIndex:    phase,
		TimeRemaining: remaining,
	}), nil
}
