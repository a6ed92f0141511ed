// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package kontrt

// Resource safety primitives.

// Bracket acquires a resource, uses it and releases it.
// release runs whether use succeeds or fails; the outcome of use is then
// restored. A failing acquire skips use and release.
func Bracket[R, A any](
	acquire Effect[R],
	release func(R) Effect[struct{}],
	use func(R) Effect[A],
) Effect[A] {
	return FlatMap(acquire, func(r R) Effect[A] {
		return FlatMap(Attempt(use(r)), func(res Either[any, A]) Effect[A] {
			return Then(release(r), FromEither(res))
		})
	})
}

// OnError runs cleanup with the failure cause if body fails, then fails
// again with the same cause.
func OnError[A any](body Effect[A], cleanup func(cause any) Effect[struct{}]) Effect[A] {
	return CatchAll(body, func(cause any) Effect[A] {
		return Then(cleanup(cause), Fail[A](cause))
	})
}
