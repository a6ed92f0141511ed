// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package kontrt

// Pure lifts a value into an effect with no requirements and no failure.
func Pure[A any](a A) Effect[A] {
	return func(k func(A) Resumed) Resumed {
		return k(a)
	}
}

// Sync defers f until the effect runs. f is called once per run.
func Sync[A any](f func() A) Effect[A] {
	return func(k func(A) Resumed) Resumed {
		return k(f())
	}
}

// FlatMap sequences two effects: it runs m, then the effect f builds from its result.
func FlatMap[A, B any](m Effect[A], f func(A) Effect[B]) Effect[B] {
	return func(k func(B) Resumed) Resumed {
		return m(func(a A) Resumed {
			return f(a)(k)
		})
	}
}

// Map applies a pure function to the result of m.
//
// Map is FlatMap(m, func(a) Pure(f(a))) without the intermediate closure.
func Map[A, B any](m Effect[A], f func(A) B) Effect[B] {
	return func(k func(B) Resumed) Resumed {
		return m(func(a A) Resumed {
			return k(f(a))
		})
	}
}

// Then runs m, discards its result and continues with n.
func Then[A, B any](m Effect[A], n Effect[B]) Effect[B] {
	return func(k func(B) Resumed) Resumed {
		return m(func(_ A) Resumed {
			return n(k)
		})
	}
}

// Unit is the effect that succeeds with struct{}{}.
func Unit() Effect[struct{}] {
	return Pure(struct{}{})
}
