package vehicle

import (
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tsinghua-fib-lab/intersection-sim/clock"
	"github.com/tsinghua-fib-lab/intersection-sim/entity"
	"github.com/tsinghua-fib-lab/intersection-sim/entity/junction"
	"github.com/tsinghua-fib-lab/intersection-sim/entity/lane"
	"github.com/tsinghua-fib-lab/intersection-sim/utils/config"
)

type testContext struct {
	clock    *clock.Clock
	lanes    *lane.LaneManager
	junction *junction.Junction
	vehicles *VehicleManager
	rc       *config.RuntimeConfig
}

func (c *testContext) Clock() *clock.Clock                    { return c.clock }
func (c *testContext) LaneManager() entity.ILaneManager       { return c.lanes }
func (c *testContext) Junction() entity.IJunction             { return c.junction }
func (c *testContext) VehicleManager() entity.IVehicleManager { return c.vehicles }
func (c *testContext) RuntimeConfig() *config.RuntimeConfig   { return c.rc }

func testConfig() config.Config {
	return config.Config{
		Control: config.Control{Step: config.ControlStep{Total: 100}, ApproachLength: 5},
		Light:   config.Light{GreenNS: 4, YellowNS: 1, GreenEW: 3, YellowEW: 1},
		Spawn: config.Spawn{
			Probability: config.Probability{Northbound: 0.5, Southbound: 0.5, Eastbound: 0.5, Westbound: 0.5},
			Proportion:  config.Proportion{Cars: 0.5, SUVs: 0.3},
			Turn: config.Turn{
				Car:   config.TurnProportion{Right: 0.2, Left: 0.3},
				SUV:   config.TurnProportion{Right: 0.1, Left: 0.1},
				Truck: config.TurnProportion{Right: 0.4, Left: 0},
			},
		},
	}
}

func newTestContext(t *testing.T, c config.Config, seed uint64) *testContext {
	j, err := junction.New(0, c.Light)
	require.NoError(t, err)
	ctx := &testContext{
		clock:    clock.New(c.Control.Step),
		lanes:    lane.NewManager(c.Control.ApproachLength),
		junction: j,
		rc:       config.NewRuntimeConfig(c, seed),
	}
	ctx.vehicles = NewManager(ctx)
	return ctx
}

// place 在指定位置放入一辆车
func (c *testContext) place(class entity.VehicleClass, turn entity.TurnIntent, d entity.Direction, front int32) *Vehicle {
	m := c.vehicles
	v := m.add(newVehicle(m.nextID, class, turn, d, c.clock.InternalStep))
	m.nextID++
	v.front = front
	v.back = max(-1, front-class.Extent())
	return v
}

// begin 进入第step步，车辆推进前
func (c *testContext) begin() {
	c.lanes.Prepare()
	c.vehicles.Prepare()
	c.junction.Prepare(c.clock.InternalStep)
}

// end 结束本步
func (c *testContext) end() {
	c.junction.Update()
	c.clock.Tick()
}

func (c *testContext) step() {
	c.begin()
	c.vehicles.Update()
	c.end()
}

func (c *testContext) at(d entity.Direction, pos int32) int32 {
	h := c.lanes.Get(d).Occupant(pos)
	if h.IsNil() {
		return -1
	}
	v, ok := c.vehicles.Resolve(h)
	if !ok {
		return -1
	}
	return v.ID()
}

func TestMoveStraight(t *testing.T) {
	v := newVehicle(0, entity.SUV, entity.Straight, entity.North, 0)
	v.moveStraight(5)
	assert.Equal(t, int32(0), v.front)
	assert.Equal(t, int32(-1), v.back)
	v.front, v.back = 4, 1
	v.moveStraight(5)
	assert.Equal(t, int32(5), v.front)
	assert.Equal(t, int32(2), v.back)
	v.moveStraight(5)
	assert.Equal(t, int32(6), v.front)
	assert.Equal(t, int32(3), v.back)
	v.front, v.back = 11, 9
	v.moveStraight(5)
	assert.Equal(t, int32(11), v.front)
	assert.Equal(t, int32(10), v.back)
}

func TestRightTurnCar(t *testing.T) {
	ctx := newTestContext(t, testConfig(), 1)
	v := ctx.place(entity.Car, entity.TurnRight, entity.North, 4)

	// 第0步：南北绿灯，申请NE并进入转弯
	ctx.begin()
	ctx.vehicles.Update()
	assert.Equal(t, int32(2), ctx.junction.Section(entity.NE))
	assert.True(t, v.InTurn())
	assert.Equal(t, int32(5), v.Front())
	assert.Equal(t, int32(3), v.Back())
	assert.Equal(t, int32(0), ctx.at(entity.North, 4))
	assert.Equal(t, int32(0), ctx.at(entity.North, 5))
	ctx.end()
	assert.Equal(t, int32(1), ctx.junction.Section(entity.NE))

	// 第1步：唯一的转弯阶段，同时占用东向L+2与北向L
	ctx.begin()
	ctx.vehicles.Update()
	assert.False(t, v.InTurn())
	assert.Equal(t, entity.East, v.Direction())
	assert.Equal(t, entity.North, v.Origin())
	assert.Equal(t, int32(7), v.Front())
	assert.Equal(t, int32(5), v.Back())
	assert.Equal(t, int32(0), ctx.at(entity.East, 7))
	assert.Equal(t, int32(0), ctx.at(entity.North, 5))
	assert.Equal(t, int32(-1), ctx.at(entity.North, 4))
	assert.Equal(t, int32(-1), ctx.at(entity.East, 6))
	ctx.end()
	assert.Equal(t, int32(0), ctx.junction.Section(entity.NE))

	// 第2步：在东向车道继续前进
	ctx.step()
	assert.Equal(t, int32(8), v.Front())
	assert.Equal(t, int32(6), v.Back())
	assert.Equal(t, int32(0), ctx.at(entity.East, 7))
	assert.Equal(t, int32(0), ctx.at(entity.East, 8))
	assert.Equal(t, int32(1), ctx.vehicles.Statistics().Turned)
}

func TestLeftTurnTruck(t *testing.T) {
	ctx := newTestContext(t, testConfig(), 1)
	v := ctx.place(entity.Truck, entity.TurnLeft, entity.South, 4)

	ctx.begin()
	ctx.vehicles.Update()
	require.True(t, v.InTurn())
	assert.Equal(t, int32(4), ctx.junction.Section(entity.SW))
	assert.Equal(t, int32(5), ctx.junction.Section(entity.NE))
	ctx.end()

	type phase struct {
		east  []int32
		south []int32
		front int32
	}
	phases := []phase{
		{east: []int32{6}, south: []int32{3, 4, 5}, front: 6},
		{east: []int32{6, 7}, south: []int32{4, 5}, front: 7},
		{east: []int32{6, 7, 8}, south: []int32{5}, front: 8},
	}
	for i, p := range phases {
		assert.Equal(t, entity.South, v.Direction(), "phase %d", i+1)
		ctx.begin()
		ctx.vehicles.Update()
		for pos := int32(0); pos < 12; pos++ {
			wantEast := lo.Contains(p.east, pos)
			wantSouth := lo.Contains(p.south, pos)
			assert.Equal(t, wantEast, ctx.at(entity.East, pos) == 0, "phase %d east %d", i+1, pos)
			assert.Equal(t, wantSouth, ctx.at(entity.South, pos) == 0, "phase %d south %d", i+1, pos)
		}
		assert.Equal(t, p.front, v.Front())
		ctx.end()
	}
	assert.False(t, v.InTurn())
	assert.Equal(t, entity.East, v.Direction())
	assert.Equal(t, int32(4), v.Back())

	ctx.step()
	assert.Equal(t, int32(9), v.Front())
	assert.Equal(t, int32(5), v.Back())
	for pos := int32(6); pos <= 9; pos++ {
		assert.Equal(t, int32(0), ctx.at(entity.East, pos))
	}
}

func TestTurnPhaseCount(t *testing.T) {
	for _, class := range []entity.VehicleClass{entity.Car, entity.SUV, entity.Truck} {
		for _, turn := range []entity.TurnIntent{entity.TurnRight, entity.TurnLeft} {
			ctx := newTestContext(t, testConfig(), 1)
			v := ctx.place(class, turn, entity.North, 4)
			ctx.step()
			require.True(t, v.InTurn(), "%s %s", class, turn)
			phases := int32(0)
			for v.InTurn() {
				ctx.step()
				phases++
				require.LessOrEqual(t, phases, int32(3))
			}
			assert.Equal(t, class.Extent()-1, phases, "%s %s", class, turn)
			want := entity.North.Right()
			if turn == entity.TurnLeft {
				want = entity.North.Left()
			}
			assert.Equal(t, want, v.Direction())
			assert.LessOrEqual(t, v.Front()-v.Back(), class.Extent())
		}
	}
}

func TestStopLineChecks(t *testing.T) {
	// 第3步南北绿灯剩余2步：右转小汽车需要多于1步，直行小汽车需要多于2步
	ctx := newTestContext(t, testConfig(), 1)
	ctx.clock.InternalStep = 3
	right := ctx.place(entity.Car, entity.TurnRight, entity.North, 4)
	straight := ctx.place(entity.Car, entity.Straight, entity.South, 4)
	ctx.step()
	assert.True(t, right.InTurn())
	assert.Equal(t, int32(5), right.Front())
	assert.Equal(t, int32(4), straight.Front())
	assert.Equal(t, int32(1), straight.Held())

	// 第4步黄灯剩余1步，直行不能通过
	ctx.step()
	assert.Equal(t, int32(4), straight.Front())

	// 第5步南北红灯
	ctx.step()
	assert.Equal(t, int32(4), straight.Front())
	assert.Equal(t, int32(3), straight.Held())

	// 东西向车辆在第5步绿灯（剩余4步）可以直行通过
	ew := ctx.place(entity.Car, entity.Straight, entity.East, 4)
	ctx.clock.InternalStep = 5
	ctx.begin()
	ctx.vehicles.Update()
	assert.Equal(t, int32(5), ew.Front())
	assert.Equal(t, int32(1), ctx.junction.Section(entity.SE))
	assert.Equal(t, int32(2), ctx.junction.Section(entity.NE))
	ctx.end()
}

func TestReservationBlocksConflictingTurn(t *testing.T) {
	ctx := newTestContext(t, testConfig(), 1)
	straight := ctx.place(entity.Car, entity.Straight, entity.North, 4)
	left := ctx.place(entity.Car, entity.TurnLeft, entity.South, 4)
	ctx.begin()
	ctx.vehicles.Update()
	assert.Equal(t, int32(5), straight.Front())
	assert.Equal(t, int32(4), left.Front())
	assert.False(t, left.InTurn())
	assert.Equal(t, int32(1), ctx.junction.Section(entity.NE))
	assert.Equal(t, int32(2), ctx.junction.Section(entity.NW))
	ctx.end()

	// 直行只在本步占用NE，第1步南向左转获准
	ctx.step()
	assert.True(t, left.InTurn())
	assert.Equal(t, int32(1), left.Held())
}

func TestQueueFollowsLeader(t *testing.T) {
	ctx := newTestContext(t, testConfig(), 1)
	a := ctx.place(entity.Car, entity.Straight, entity.North, 2)
	b := ctx.place(entity.Car, entity.Straight, entity.North, 0)
	ctx.step()
	assert.Equal(t, int32(3), a.Front())
	assert.Equal(t, int32(1), b.Front())
	assert.Equal(t, 2, ctx.vehicles.Queue(entity.North))

	// 红灯时头车停在停车线前，后车被阻挡
	ctx.clock.InternalStep = 5
	ctx.step()
	assert.Equal(t, int32(4), a.Front())
	assert.Equal(t, int32(2), b.Front())
	for i := 0; i < 2; i++ {
		ctx.step()
		assert.Equal(t, int32(4), a.Front())
		assert.Equal(t, int32(2), b.Front())
	}
	assert.Equal(t, int32(2), a.Held())
	assert.Equal(t, int32(2), b.Held())
	assert.Equal(t, int64(4), ctx.vehicles.Statistics().Held)
	assert.Equal(t, int32(0), ctx.lanes.Conflicts())
}

func TestRetire(t *testing.T) {
	ctx := newTestContext(t, testConfig(), 1)
	v := ctx.place(entity.Car, entity.Straight, entity.North, 11)
	v.back = 10
	h := v.Handle()
	ctx.step()
	assert.Equal(t, int32(1), ctx.vehicles.Statistics().Exited)
	assert.Equal(t, 1, ctx.vehicles.Len())
	assert.True(t, ctx.lanes.Get(entity.North).IsFree(11))

	ctx.begin()
	assert.Equal(t, 0, ctx.vehicles.Len())
	_, ok := ctx.vehicles.Resolve(h)
	assert.False(t, ok)
	_, err := ctx.vehicles.GetOrError(0)
	assert.Error(t, err)
	assert.Panics(t, func() { ctx.vehicles.Get(0) })

	// 槽位复用，ID不复用
	w := ctx.place(entity.SUV, entity.Straight, entity.West, 0)
	assert.Equal(t, int32(1), w.ID())
	assert.Equal(t, h.Index(), w.Handle().Index())
	assert.NotEqual(t, h, w.Handle())
	got, err := ctx.vehicles.GetOrError(1)
	require.NoError(t, err)
	assert.Equal(t, entity.West, got.Origin())
}
