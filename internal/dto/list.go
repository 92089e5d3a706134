package dto

// ListDTO is the payload of every list response
type ListDTO[T any] struct {
	Documents []T   `json:"documents"`
	Total     int64 `json:"total"`
}

// NewList converts items with convert. Documents is never null.
func NewList[M any, T any](items []M, total int64, convert func(M) T) ListDTO[T] {
	documents := make([]T, len(items))
	for i, item := range items {
		documents[i] = convert(item)
	}
	return ListDTO[T]{Documents: documents, Total: total}
}
