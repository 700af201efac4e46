/**
 *
 * 双端队列，元素类型泛型化
 * 数组实现为环形缓冲，用于保存求解器最近若干步迭代；链表实现用于推送消息的缓存
 *
 */

package deque

type Deque[T any] interface {
	// 队列的长度
	Size() int

	// 获取队列中对应下标的元素
	Get(i int) T

	// 设定队列中对应下标的元素
	Set(i int, v T)

	// 正向遍历
	Traverse(f func(i int, item T))

	// 在队列结尾增加一个元素，满时返回 false
	AddLast(v T) bool

	// 在队列结尾删除一个元素
	RemoveLast() (T, bool)

	// 在队列头部增加一个元素，满时返回 false
	AddFirst(v T) bool

	// 在队列头部删除一个元素
	RemoveFirst() (T, bool)

	IsFull() bool

	IsEmpty() bool
}

// PushBounded 满时先丢弃队首，保证最近的元素总能入队
func PushBounded[T any](d Deque[T], v T) {
	if d.IsFull() {
		d.RemoveFirst()
	}
	d.AddLast(v)
}

// ToSlice 按队首到队尾的顺序复制出全部元素
func ToSlice[T any](d Deque[T]) []T {
	out := make([]T, 0, d.Size())
	d.Traverse(func(_ int, item T) {
		out = append(out, item)
	})
	return out
}
