package task

import (
	"fmt"
	"sync/atomic"

	"git.fiblab.net/sim/syncer/v3"
	"github.com/tsinghua-fib-lab/intersection-sim/clock"
	"github.com/tsinghua-fib-lab/intersection-sim/entity"
	"github.com/tsinghua-fib-lab/intersection-sim/entity/junction"
	"github.com/tsinghua-fib-lab/intersection-sim/entity/lane"
	"github.com/tsinghua-fib-lab/intersection-sim/entity/vehicle"
	"github.com/tsinghua-fib-lab/intersection-sim/render"
	"github.com/tsinghua-fib-lab/intersection-sim/utils/config"
)

// junctionID 唯一路口的ID
const junctionID = 0

// Context 仿真任务上下文
// 功能：包含一次仿真任务的所有变量和状态，替代全局变量
// 说明：管理时钟、车道、路口、车辆以及画面输出
type Context struct {
	// 任务名
	job string
	// 关闭指令
	closed atomic.Bool

	// 时钟
	clock *clock.Clock

	// 辅助程序，处理分布式模式下与syncer的交互并提供RPC服务，为nil时独立运行
	sidecar *syncer.Sidecar
	// sidecar close channel
	sidecarCloseCh chan struct{}
	// 是否由本上下文启动sidecar服务
	serving bool

	// Lane管理器
	laneManager *lane.LaneManager
	// 路口
	junction *junction.Junction
	// Vehicle管理器
	vehicleManager *vehicle.VehicleManager

	// 运行时配置
	runtimeConfig *config.RuntimeConfig

	// 每步画面的输出
	sinks []render.Sink
	// 累计格子冲突数
	conflicts int64
}

// NewContext 创建新的仿真任务上下文
// 功能：根据配置创建仿真系统的所有组件
// 参数：
//   - job: 任务名称
//   - c: 已校验的配置对象
//   - seed: 随机数种子
//   - sidecar: sidecar实例，为nil时不提供RPC服务也不与syncer同步
//   - startSidecarServe: 是否启动sidecar服务
//   - sinks: 每步画面的输出
//
// 返回：初始化完成的Context实例，配置不合法时返回错误
// 算法说明：
// 1. 创建时钟与运行时配置
// 2. 创建车道、路口、车辆管理器
// 3. 注册RPC服务到sidecar，并按需启动sidecar服务
func NewContext(
	job string,
	c config.Config,
	seed uint64,
	sidecar *syncer.Sidecar,
	startSidecarServe bool,
	sinks ...render.Sink,
) (*Context, error) {
	ctx := &Context{
		job:            job,
		sidecar:        sidecar,
		sidecarCloseCh: make(chan struct{}),
		sinks:          sinks,
	}
	ctx.clock = clock.New(c.Control.Step)
	ctx.runtimeConfig = config.NewRuntimeConfig(c, seed)

	ctx.laneManager = lane.NewManager(c.Control.ApproachLength)
	j, err := junction.New(junctionID, c.Light)
	if err != nil {
		return nil, fmt.Errorf("new junction: %w", err)
	}
	ctx.junction = j
	ctx.vehicleManager = vehicle.NewManager(ctx)

	if ctx.sidecar != nil {
		ctx.clock.Register(ctx.sidecar)
		ctx.junction.Register(ctx.sidecar)

		// sidecar协程，用于提供RPC服务
		if startSidecarServe {
			ctx.serving = true
			go func() {
				err := ctx.sidecar.Serve()
				if err != nil {
					log.Panicf("failed to serve: %v", err)
				}
				ctx.sidecarCloseCh <- struct{}{}
			}()
		}
	}
	return ctx, nil
}

func (ctx *Context) Job() string {
	return ctx.job
}

func (ctx *Context) Clock() *clock.Clock {
	return ctx.clock
}

func (ctx *Context) LaneManager() entity.ILaneManager {
	return ctx.laneManager
}

func (ctx *Context) Junction() entity.IJunction {
	return ctx.junction
}

func (ctx *Context) VehicleManager() entity.IVehicleManager {
	return ctx.vehicleManager
}

func (ctx *Context) RuntimeConfig() *config.RuntimeConfig {
	return ctx.runtimeConfig
}

func (ctx *Context) Init() {
	ctx.clock.Init()

	c := ctx.runtimeConfig.All
	log.Infof("Job: %s, Seed: %d", ctx.job, ctx.runtimeConfig.Seed)
	log.Infof("Step: [%d, %d)", ctx.clock.START_STEP, ctx.clock.END_STEP)
	log.Infof("Approach length: %d", c.Control.ApproachLength)
	log.Infof("Light: %+v, cycle %d", c.Light, c.Light.Cycle())
	log.Infof("Spawn: %+v", c.Spawn)
}

// Statistics 任务统计
type Statistics struct {
	vehicle.Statistics
	Steps     int32 `json:"steps"`     // 已模拟步数
	Live      int   `json:"live"`      // 在册车辆数
	Conflicts int64 `json:"conflicts"` // 累计格子冲突数
}

// Statistics 当前统计
func (ctx *Context) Statistics() Statistics {
	return Statistics{
		Statistics: ctx.vehicleManager.Statistics(),
		Steps:      ctx.clock.InternalStep - ctx.clock.START_STEP,
		Live:       ctx.vehicleManager.Len(),
		Conflicts:  ctx.conflicts,
	}
}

// Close 关闭所有输出与sidecar，可重复调用
func (ctx *Context) Close() {
	if ctx.closed.Load() {
		return
	}
	for _, s := range ctx.sinks {
		if err := s.Close(); err != nil {
			log.Warnf("close sink: %v", err)
		}
	}
	if ctx.sidecar != nil {
		ctx.sidecar.Close()
		// wait for graceful stop
		if ctx.serving {
			<-ctx.sidecarCloseCh
		}
	}
	ctx.closed.Store(true)
}
