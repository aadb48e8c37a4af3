package task

import (
	"flag"

	"github.com/tsinghua-fib-lab/intersection-sim/entity"
	"github.com/tsinghua-fib-lab/intersection-sim/render"
)

const (
	SelfName = "intersection" // 本程序在模拟任务集群中的名字
)

var (
	heartBeatInterval = flag.Int("log.heartbeat_interval", 100, "心跳日志间隔步数")
)

// prepare 准备阶段，每步执行一次
// 功能：清空车道、回收车辆、生成新车并计算本步灯色
// 算法说明：
// 1. 清空车道占用，车辆管理器回收已驶离车辆
// 2. 按北、南、东、西的顺序尝试生成车辆
// 3. 路口根据当前步计算两个信号轴的灯色
func (ctx *Context) prepare() {
	step := ctx.clock.InternalStep
	if *heartBeatInterval > 0 && step%int32(*heartBeatInterval) == 0 {
		log.Infof(
			"STEP: %d, vehicles: %d, queue N/W/S/E: %v, waiting N/W/S/E: %v",
			step, ctx.vehicleManager.Len(), ctx.queues(), ctx.waiting(),
		)
	}

	ctx.laneManager.Prepare()
	ctx.vehicleManager.Prepare()
	ctx.vehicleManager.Spawn()
	ctx.junction.Prepare(step)
}

// update 更新阶段，每步执行一次
// 功能：推进车辆、衰减冲突区计数并输出本步画面
// 说明：车辆推进依赖本步灯色与冲突区，因此路口的衰减在车辆推进之后
func (ctx *Context) update() {
	ctx.vehicleManager.Update()
	if n := ctx.laneManager.Conflicts(); n > 0 {
		log.Warnf("step %d: %d cell conflicts", ctx.clock.InternalStep, n)
		ctx.conflicts += int64(n)
	}
	// 画面取在衰减之前，与本步推进所见的冲突区一致
	ctx.publish()
	ctx.junction.Update()
}

// publish 将本步画面交给所有输出
func (ctx *Context) publish() {
	if len(ctx.sinks) == 0 {
		return
	}
	f := &render.Frame{
		Step:  ctx.clock.InternalStep,
		Lanes: ctx.laneManager.Cells(ctx.vehicleManager.Resolve),
		NS:    ctx.junction.Signal(entity.AxisNS),
		EW:    ctx.junction.Signal(entity.AxisEW),
	}
	for _, s := range ctx.sinks {
		if err := s.Draw(f); err != nil {
			log.Warnf("step %d: draw frame: %v", f.Step, err)
		}
	}
}

func (ctx *Context) queues() [entity.DirectionCount]int {
	var q [entity.DirectionCount]int
	for _, d := range entity.Directions {
		q[d] = ctx.vehicleManager.Queue(d)
	}
	return q
}

func (ctx *Context) waiting() [entity.DirectionCount]int32 {
	var w [entity.DirectionCount]int32
	for _, d := range entity.Directions {
		w[d] = ctx.vehicleManager.Waiting(d)
	}
	return w
}

// Step 独立推进一步，不与syncer同步
func (ctx *Context) Step() {
	ctx.prepare()
	ctx.update()
	ctx.clock.Tick()
}

// Run 运行
// 功能：从起始步运行到结束步，有sidecar时每步与syncer同步
// 说明：结束后输出统计并关闭上下文
func (ctx *Context) Run() {
	// 初始化
	ctx.Init()
	if ctx.sidecar != nil {
		// init syncer
		ctx.sidecar.Step(false)
	}
	for !ctx.clock.Done() && !ctx.closed.Load() {
		ctx.prepare()
		if ctx.sidecar != nil {
			// 通知准备阶段完成
			log.Debugf("step %d: prepare complete and call NotifyStepReady", ctx.clock.InternalStep)
			ctx.sidecar.NotifyStepReady()
		}
		ctx.update()
		log.Debugf("step %d: update complete", ctx.clock.InternalStep)
		ctx.clock.Tick()
		if ctx.sidecar != nil && ctx.sidecar.Step(ctx.clock.Done()) {
			break
		}
	}
	log.Infof("engine complete: %+v", ctx.Statistics())
	ctx.Close()
}
