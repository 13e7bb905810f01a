package quiz

import "math/rand/v2"

// RandSource 随机数来源，*rand.Rand 即满足该接口
type RandSource interface {
	IntN(n int) int
}

type globalSource struct{}

func (globalSource) IntN(n int) int { return rand.IntN(n) }

// Shuffle 返回 in 的一个均匀随机排列（Fisher-Yates），不修改 in。
// src 为 nil 时使用全局随机源。
func Shuffle[T any](in []T, src RandSource) []T {
	if src == nil {
		src = globalSource{}
	}
	out := make([]T, len(in))
	copy(out, in)
	for i := len(out) - 1; i > 0; i-- {
		j := src.IntN(i + 1)
		out[i], out[j] = out[j], out[i]
	}
	return out
}
