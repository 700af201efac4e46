package deque

// ListDeque 双向链表实现，头尾各一个哨兵节点
type ListDeque[T any] struct {
	head *node[T]
	tail *node[T]

	size     int
	capacity int
}

type node[T any] struct {
	val  T
	pre  *node[T]
	next *node[T]
}

// 工厂方法，capacity <= 0 表示不限容量
func NewListDeque[T any](capacity int) *ListDeque[T] {
	head := &node[T]{}
	tail := &node[T]{}
	head.next = tail
	tail.pre = head

	return &ListDeque[T]{
		head:     head,
		tail:     tail,
		size:     0,
		capacity: capacity,
	}
}

func (ld *ListDeque[T]) Size() int {
	return ld.size
}

func (ld *ListDeque[T]) nodeAt(i int) *node[T] {
	if i < 0 || i >= ld.size {
		panic("index out of length")
	}
	iter := ld.head.next
	for j := 0; j < i; j++ {
		iter = iter.next
	}
	return iter
}

func (ld *ListDeque[T]) Get(i int) T {
	return ld.nodeAt(i).val
}

func (ld *ListDeque[T]) Set(i int, v T) {
	ld.nodeAt(i).val = v
}

func (ld *ListDeque[T]) Traverse(f func(i int, item T)) {
	i := 0
	for iter := ld.head.next; iter != ld.tail; iter = iter.next {
		f(i, iter.val)
		i++
	}
}

func (ld *ListDeque[T]) AddLast(v T) bool {
	if ld.IsFull() {
		return false
	}
	newNode := &node[T]{
		val: v,
	}
	tmp := ld.tail.pre
	ld.tail.pre = newNode
	newNode.next = ld.tail
	newNode.pre = tmp
	tmp.next = newNode
	ld.size++
	return true
}

func (ld *ListDeque[T]) RemoveLast() (T, bool) {
	var zero T
	if ld.size == 0 {
		return zero, false
	}
	v := ld.tail.pre.val
	ld.tail.pre = ld.tail.pre.pre
	ld.tail.pre.next = ld.tail
	ld.size--
	return v, true
}

func (ld *ListDeque[T]) AddFirst(v T) bool {
	if ld.IsFull() {
		return false
	}
	newNode := &node[T]{
		val: v,
	}
	tmp := ld.head.next
	ld.head.next = newNode
	newNode.pre = ld.head
	newNode.next = tmp
	tmp.pre = newNode
	ld.size++
	return true
}

func (ld *ListDeque[T]) RemoveFirst() (T, bool) {
	var zero T
	if ld.size == 0 {
		return zero, false
	}
	v := ld.head.next.val
	ld.head.next = ld.head.next.next
	ld.head.next.pre = ld.head
	ld.size--
	return v, true
}

func (ld *ListDeque[T]) IsFull() bool {
	return ld.capacity > 0 && ld.size == ld.capacity
}

func (ld *ListDeque[T]) IsEmpty() bool {
	return ld.size == 0
}
