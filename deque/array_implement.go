package deque

// ArrDeque 环形数组实现，容量固定
type ArrDeque[T any] struct {
	arr []T
	// 队首下标
	start int
	// 元素个数
	size int
}

// 工厂方法
func NewArrDeque[T any](capacity int) *ArrDeque[T] {
	if capacity < 1 {
		capacity = 1
	}
	return &ArrDeque[T]{
		arr: make([]T, capacity),
	}
}

func (ad *ArrDeque[T]) index(i int) int {
	return (ad.start + i) % len(ad.arr)
}

func (ad *ArrDeque[T]) Size() int {
	return ad.size
}

func (ad *ArrDeque[T]) Capacity() int {
	return len(ad.arr)
}

func (ad *ArrDeque[T]) Get(i int) T {
	if i < 0 || i >= ad.size {
		panic("index out of length")
	}
	return ad.arr[ad.index(i)]
}

func (ad *ArrDeque[T]) Set(i int, v T) {
	if i < 0 || i >= ad.size {
		panic("index out of length")
	}
	ad.arr[ad.index(i)] = v
}

func (ad *ArrDeque[T]) Traverse(f func(i int, item T)) {
	for i := 0; i < ad.size; i++ {
		f(i, ad.arr[ad.index(i)])
	}
}

func (ad *ArrDeque[T]) AddLast(v T) bool {
	if ad.IsFull() {
		return false
	}
	ad.arr[ad.index(ad.size)] = v
	ad.size++
	return true
}

func (ad *ArrDeque[T]) RemoveLast() (T, bool) {
	var zero T
	if ad.size == 0 {
		return zero, false
	}
	i := ad.index(ad.size - 1)
	v := ad.arr[i]
	ad.arr[i] = zero
	ad.size--
	return v, true
}

func (ad *ArrDeque[T]) AddFirst(v T) bool {
	if ad.IsFull() {
		return false
	}
	ad.start = (ad.start - 1 + len(ad.arr)) % len(ad.arr)
	ad.arr[ad.start] = v
	ad.size++
	return true
}

func (ad *ArrDeque[T]) RemoveFirst() (T, bool) {
	var zero T
	if ad.size == 0 {
		return zero, false
	}
	v := ad.arr[ad.start]
	ad.arr[ad.start] = zero
	ad.start = (ad.start + 1) % len(ad.arr)
	ad.size--
	return v, true
}

func (ad *ArrDeque[T]) IsFull() bool {
	return ad.size == len(ad.arr)
}

func (ad *ArrDeque[T]) IsEmpty() bool {
	return ad.size == 0
}
