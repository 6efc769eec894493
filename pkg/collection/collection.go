// Package collection has small generic slice helpers.
//
//	ids := collection.Unique(collection.Map(reviews, func(r models.Review) string { return r.RestaurantID }))
//	byID := collection.KeyBy(restaurants, func(r models.Restaurant) string { return r.ID })
package collection

// Map transforms each element of s using fn. The result is never nil.
func Map[T, R any](s []T, fn func(T) R) []R {
	out := make([]R, len(s))
	for i, v := range s {
		out[i] = fn(v)
	}
	return out
}

// Unique drops repeated elements, keeping first occurrences in order.
func Unique[T comparable](s []T) []T {
	seen := make(map[T]struct{}, len(s))
	out := make([]T, 0, len(s))
	for _, v := range s {
		if _, ok := seen[v]; !ok {
			seen[v] = struct{}{}
			out = append(out, v)
		}
	}
	return out
}

// KeyBy indexes s by fn. On duplicate keys the last element wins.
func KeyBy[T any, K comparable](s []T, fn func(T) K) map[K]T {
	out := make(map[K]T, len(s))
	for _, v := range s {
		out[fn(v)] = v
	}
	return out
}
