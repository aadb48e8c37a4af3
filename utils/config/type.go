package config

// OutputPath 指定仿真输出写入位置的配置（MongoDB）
// 功能：定义逐步输出数据的数据库与集合
// 说明：URI为空时不启用数据库输出
type OutputPath struct {
	URI string `yaml:"uri"` // MongoDB连接字符串
	DB  string `yaml:"db"`  // 数据库名
	Col string `yaml:"col"` // 集合名，为空则采用任务名
}

// GetDb 获取数据库名
func (p OutputPath) GetDb() string {
	return p.DB
}

// GetColl 获取集合名
func (p OutputPath) GetColl() string {
	return p.Col
}

// ControlStep 指定模拟器模拟步数范围的配置项
// 功能：定义仿真时间控制参数
// 说明：每步对应一个单位的仿真时间
type ControlStep struct {
	Start int32 `yaml:"start,omitempty"` // 开始步数
	Total int32 `yaml:"total"`           // 总步数
}

// Control 模拟器控制配置
// 功能：定义仿真系统的核心控制参数
type Control struct {
	Step           ControlStep `yaml:"step"`
	ApproachLength int32       `yaml:"approach_length"` // 路口前的车道格数L
}

// Light 信号灯固定配时（单位：步）
type Light struct {
	GreenNS  int32 `yaml:"green_ns"`  // 南北向绿灯
	YellowNS int32 `yaml:"yellow_ns"` // 南北向黄灯
	GreenEW  int32 `yaml:"green_ew"`  // 东西向绿灯
	YellowEW int32 `yaml:"yellow_ew"` // 东西向黄灯
}

// Cycle 信号周期长度
func (l Light) Cycle() int32 {
	return l.GreenNS + l.YellowNS + l.GreenEW + l.YellowEW
}

// Probability 各进口道每步生成车辆的概率
type Probability struct {
	Northbound float64 `yaml:"northbound"`
	Southbound float64 `yaml:"southbound"`
	Eastbound  float64 `yaml:"eastbound"`
	Westbound  float64 `yaml:"westbound"`
}

// Proportion 车型比例
// 说明：Trucks为0时视为未配置，货车比例取1-Cars-SUVs
type Proportion struct {
	Cars   float64 `yaml:"cars"`
	SUVs   float64 `yaml:"suvs"`
	Trucks float64 `yaml:"trucks,omitempty"`
}

// TurnProportion 某一车型的转向比例，直行比例为剩余部分
type TurnProportion struct {
	Right float64 `yaml:"right"`
	Left  float64 `yaml:"left"`
}

// Turn 各车型转向比例
type Turn struct {
	Car   TurnProportion `yaml:"car"`
	SUV   TurnProportion `yaml:"suv"`
	Truck TurnProportion `yaml:"truck"`
}

// Spawn 车辆生成配置
type Spawn struct {
	Probability Probability `yaml:"probability"`
	Proportion  Proportion  `yaml:"proportion"`
	Turn        Turn        `yaml:"turn"`
}

// Config YAML配置文件的根结构
// 功能：定义整个仿真系统的配置结构
// 说明：包含控制、信号灯、车辆生成与输出等所有配置项
type Config struct {
	Control Control     `yaml:"control"`          // 模拟过程控制
	Light   Light       `yaml:"light"`            // 信号灯配时
	Spawn   Spawn       `yaml:"spawn"`            // 车辆生成
	Output  *OutputPath `yaml:"output,omitempty"` // 输出
}
