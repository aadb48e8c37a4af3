package container

const (
	pageBits = 6
	pageSize = 1 << pageBits // 每页槽位数
	pageMask = pageSize - 1
)

// Handle 竞技场元素句柄
// 功能：以(槽位下标, 代数)标识竞技场中的元素，槽位被回收复用后旧句柄自动失效
// 说明：零值为空句柄，代数从1开始计数
type Handle struct {
	index uint32 // 槽位下标
	gen   uint32 // 代数
}

// Nil 空句柄
var Nil Handle

// IsNil 判断是否为空句柄
func (h Handle) IsNil() bool {
	return h.gen == 0
}

// Index 获取槽位下标（仅用于调试输出）
func (h Handle) Index() uint32 {
	return h.index
}

type arenaSlot[T any] struct {
	value T
	gen   uint32
	live  bool
}

// Arena 稳定地址的分页竞技场
// 功能：按页分配元素，已分配元素永不移动；释放的槽位进入空闲表，插入时优先复用
// 说明：Get返回的指针在对应句柄被Release之前始终有效，扩容不会使其失效
// 非线程安全，由调用方保证串行访问
type Arena[T any] struct {
	pages [][]arenaSlot[T] // 分页存储，每页长度固定为pageSize
	free  []uint32         // 空闲槽位（LIFO）
	next  uint32           // 从未使用过的下一个槽位
	live  int              // 存活元素数
}

// NewArena 创建竞技场
func NewArena[T any]() *Arena[T] {
	return &Arena[T]{
		pages: make([][]arenaSlot[T], 0),
		free:  make([]uint32, 0),
	}
}

func (a *Arena[T]) slot(index uint32) *arenaSlot[T] {
	return &a.pages[index>>pageBits][index&pageMask]
}

// Insert 插入元素
// 功能：将value放入一个空闲槽位（或新槽位），返回句柄和元素指针
// 参数：value-要插入的元素
// 返回：元素句柄，指向竞技场内元素的稳定指针
func (a *Arena[T]) Insert(value T) (Handle, *T) {
	var index uint32
	if n := len(a.free); n > 0 {
		index = a.free[n-1]
		a.free = a.free[:n-1]
	} else {
		index = a.next
		a.next++
		if int(index>>pageBits) >= len(a.pages) {
			a.pages = append(a.pages, make([]arenaSlot[T], pageSize))
		}
	}
	s := a.slot(index)
	s.gen++
	if s.gen == 0 {
		// 代数回绕时跳过0，保证不与空句柄相同
		s.gen = 1
	}
	s.value = value
	s.live = true
	a.live++
	return Handle{index: index, gen: s.gen}, &s.value
}

// Get 根据句柄获取元素
// 功能：校验句柄的下标与代数，返回元素指针
// 参数：h-元素句柄
// 返回：元素指针，句柄是否有效
func (a *Arena[T]) Get(h Handle) (*T, bool) {
	if h.IsNil() || h.index >= a.next {
		return nil, false
	}
	s := a.slot(h.index)
	if !s.live || s.gen != h.gen {
		return nil, false
	}
	return &s.value, true
}

// Release 释放元素
// 功能：将句柄对应的槽位清零并放入空闲表，之后该句柄及其指针均失效
// 参数：h-元素句柄
// 返回：是否成功释放（句柄无效时返回false）
func (a *Arena[T]) Release(h Handle) bool {
	if _, ok := a.Get(h); !ok {
		return false
	}
	s := a.slot(h.index)
	var zero T
	s.value = zero
	s.live = false
	a.free = append(a.free, h.index)
	a.live--
	return true
}

// Len 获取存活元素数
func (a *Arena[T]) Len() int {
	return a.live
}

// Cap 获取已分配的槽位数（含空闲槽位）
func (a *Arena[T]) Cap() int {
	return int(a.next)
}
