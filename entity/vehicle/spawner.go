package vehicle

import (
	"github.com/tsinghua-fib-lab/intersection-sim/entity"
	"github.com/tsinghua-fib-lab/intersection-sim/utils/config"
)

// probability 指定进口道每步生成车辆的概率
func (m *VehicleManager) probability(d entity.Direction) float64 {
	p := m.spawn.Probability
	switch d {
	case entity.North:
		return p.Northbound
	case entity.South:
		return p.Southbound
	case entity.East:
		return p.Eastbound
	default:
		return p.Westbound
	}
}

func (m *VehicleManager) turnProportion(c entity.VehicleClass) config.TurnProportion {
	switch c {
	case entity.Car:
		return m.spawn.Turn.Car
	case entity.SUV:
		return m.spawn.Turn.SUV
	default:
		return m.spawn.Turn.Truck
	}
}

// classify 根据两个随机数确定车型与转向
// 参数：classTrial-车型随机数，turnTrial-转向随机数
// 返回：车型，转向
// 算法说明：
// 1. 车型按累积阈值 cars、cars+suvs 划分，其余为货车
// 2. 转向按该车型的累积阈值 right、right+left 划分，其余为直行
func (m *VehicleManager) classify(classTrial, turnTrial float64) (entity.VehicleClass, entity.TurnIntent) {
	prop := m.spawn.Proportion
	class := entity.Truck
	switch {
	case classTrial <= prop.Cars:
		class = entity.Car
	case classTrial <= prop.Cars+prop.SUVs:
		class = entity.SUV
	}
	tp := m.turnProportion(class)
	turn := entity.Straight
	switch {
	case turnTrial <= tp.Right:
		turn = entity.TurnRight
	case turnTrial <= tp.Right+tp.Left:
		turn = entity.TurnLeft
	}
	return class, turn
}

// trySpawn 在指定进口道尝试生成一辆车
// 功能：进口道入口空闲且spawnTrial不超过该进口道的生成概率时，生成车辆并加入注册表
// 参数：d-进口道方向，spawnTrial/classTrial/turnTrial-三个[0, 1)随机数
// 返回：生成的车辆，未生成时为nil
// 说明：车道在生成之前已被清空，入口总是空闲；拥堵时新车以front=-1排队等待进入车道
func (m *VehicleManager) trySpawn(d entity.Direction, spawnTrial, classTrial, turnTrial float64) *Vehicle {
	if !m.ctx.LaneManager().Get(d).HeadFree() {
		return nil
	}
	if spawnTrial > m.probability(d) {
		return nil
	}
	class, turn := m.classify(classTrial, turnTrial)
	v := m.add(newVehicle(m.nextID, class, turn, d, m.ctx.Clock().InternalStep))
	m.nextID++
	m.pending[d]++
	m.stats.Spawned[d]++
	log.Debugf("spawn %v", v)
	return v
}

// Spawn 四个进口道依次尝试生成车辆
// 说明：按北、南、东、西的顺序处理，每个进口道无论是否生成都消耗三个随机数
func (m *VehicleManager) Spawn() {
	for _, d := range entity.SpawnOrder {
		spawnTrial, classTrial, turnTrial := m.generator.Triple()
		m.trySpawn(d, spawnTrial, classTrial, turnTrial)
	}
}
