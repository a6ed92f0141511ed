// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package kontrt_test

import (
	"testing"

	"code.hybscloud.com/kontrt"
)

func TestBracketSuccess(t *testing.T) {
	var used, released bool
	comp := kontrt.Bracket(
		kontrt.Pure(42),
		func(r int) kontrt.Effect[struct{}] {
			released = true
			return kontrt.Unit()
		},
		func(r int) kontrt.Effect[int] {
			used = true
			return kontrt.Pure(r * 2)
		},
	)
	got, err := run(t, comp)
	if err != nil {
		t.Fatal(err)
	}
	if got != 84 {
		t.Fatalf("got %d, want 84", got)
	}
	if !used || !released {
		t.Fatalf("used=%v released=%v", used, released)
	}
}

func TestBracketReleasesOnFailure(t *testing.T) {
	released := false
	comp := kontrt.Bracket(
		kontrt.Pure("conn"),
		func(string) kontrt.Effect[struct{}] {
			released = true
			return kontrt.Unit()
		},
		func(string) kontrt.Effect[int] {
			return kontrt.Fail[int]("use failed")
		},
	)
	_, err := run(t, comp)
	if err == nil || err.Error() != "use failed" {
		t.Fatalf("err = %v, want use failed", err)
	}
	if !released {
		t.Fatal("resource not released after failure")
	}
}

func TestBracketAcquireFailureSkipsRelease(t *testing.T) {
	released, used := false, false
	comp := kontrt.Bracket(
		kontrt.Fail[string]("acquire failed"),
		func(string) kontrt.Effect[struct{}] {
			released = true
			return kontrt.Unit()
		},
		func(string) kontrt.Effect[int] {
			used = true
			return kontrt.Pure(1)
		},
	)
	if _, err := run(t, comp); err == nil {
		t.Fatal("expected failure")
	}
	if released || used {
		t.Fatalf("used=%v released=%v", used, released)
	}
}

func TestOnError(t *testing.T) {
	var seen any
	comp := kontrt.OnError(kontrt.Fail[int]("bad"), func(cause any) kontrt.Effect[struct{}] {
		seen = cause
		return kontrt.Unit()
	})
	_, err := run(t, comp)
	if err == nil || err.Error() != "bad" {
		t.Fatalf("err = %v", err)
	}
	if seen != "bad" {
		t.Fatalf("cleanup saw %v", seen)
	}

	seen = nil
	got, err := run(t, kontrt.OnError(kontrt.Pure(3), func(cause any) kontrt.Effect[struct{}] {
		seen = cause
		return kontrt.Unit()
	}))
	if err != nil || got != 3 || seen != nil {
		t.Fatalf("success path: got %d, err %v, cleanup %v", got, err, seen)
	}
}
