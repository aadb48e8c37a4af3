package config

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// legacyKeys 旧版key/value配置文件的键到配置字段的映射
var legacyKeys = map[string]func(c *Config, v float64) error{
	"maximum_simulated_time":                 intField(func(c *Config) *int32 { return &c.Control.Step.Total }),
	"number_of_sections_before_intersection": intField(func(c *Config) *int32 { return &c.Control.ApproachLength }),
	"green_north_south":                      intField(func(c *Config) *int32 { return &c.Light.GreenNS }),
	"yellow_north_south":                     intField(func(c *Config) *int32 { return &c.Light.YellowNS }),
	"green_east_west":                        intField(func(c *Config) *int32 { return &c.Light.GreenEW }),
	"yellow_east_west":                       intField(func(c *Config) *int32 { return &c.Light.YellowEW }),
	"prob_new_vehicle_northbound":            floatField(func(c *Config) *float64 { return &c.Spawn.Probability.Northbound }),
	"prob_new_vehicle_southbound":            floatField(func(c *Config) *float64 { return &c.Spawn.Probability.Southbound }),
	"prob_new_vehicle_eastbound":             floatField(func(c *Config) *float64 { return &c.Spawn.Probability.Eastbound }),
	"prob_new_vehicle_westbound":             floatField(func(c *Config) *float64 { return &c.Spawn.Probability.Westbound }),
	"proportion_of_cars":                     floatField(func(c *Config) *float64 { return &c.Spawn.Proportion.Cars }),
	"proportion_of_SUVs":                     floatField(func(c *Config) *float64 { return &c.Spawn.Proportion.SUVs }),
	"proportion_of_trucks":                   floatField(func(c *Config) *float64 { return &c.Spawn.Proportion.Trucks }),
	"proportion_right_turn_cars":             floatField(func(c *Config) *float64 { return &c.Spawn.Turn.Car.Right }),
	"proportion_left_turn_cars":              floatField(func(c *Config) *float64 { return &c.Spawn.Turn.Car.Left }),
	"proportion_right_turn_SUVs":             floatField(func(c *Config) *float64 { return &c.Spawn.Turn.SUV.Right }),
	"proportion_left_turn_SUVs":              floatField(func(c *Config) *float64 { return &c.Spawn.Turn.SUV.Left }),
	"proportion_right_turn_trucks":           floatField(func(c *Config) *float64 { return &c.Spawn.Turn.Truck.Right }),
	"proportion_left_turn_trucks":            floatField(func(c *Config) *float64 { return &c.Spawn.Turn.Truck.Left }),
}

func intField(field func(c *Config) *int32) func(c *Config, v float64) error {
	return func(c *Config, v float64) error {
		if v != math.Trunc(v) || v > math.MaxInt32 || v < math.MinInt32 {
			return fmt.Errorf("expect an integer, got %v", v)
		}
		*field(c) = int32(v)
		return nil
	}
}

func floatField(field func(c *Config) *float64) func(c *Config, v float64) error {
	return func(c *Config, v float64) error {
		*field(c) = v
		return nil
	}
}

// ParseLegacy 解析旧版key/value格式的配置
// 功能：读取以空白分隔的"键 值"序列，键的顺序任意，键末尾的冒号可有可无
// 参数：r-配置内容
// 返回：配置对象，解析错误
// 算法说明：
// 1. 按空白切分出所有token，两两成对
// 2. 未知键记录警告并忽略，缺失的键保持零值
// 3. 值无法解析为数字、整数键出现小数、键缺少值时返回错误
func ParseLegacy(r io.Reader) (Config, error) {
	var c Config
	scanner := bufio.NewScanner(r)
	scanner.Split(bufio.ScanWords)
	for scanner.Scan() {
		key := strings.TrimSuffix(scanner.Text(), ":")
		if !scanner.Scan() {
			return c, fmt.Errorf("key %q has no value", key)
		}
		raw := scanner.Text()
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return c, fmt.Errorf("key %q: bad number %q: %w", key, raw, err)
		}
		set, ok := legacyKeys[key]
		if !ok {
			log.Warnf("ignore unknown config key %q", key)
			continue
		}
		if err := set(&c, v); err != nil {
			return c, fmt.Errorf("key %q: %w", key, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return c, fmt.Errorf("read config: %w", err)
	}
	return c, nil
}
