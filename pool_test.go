// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package kontrt

import (
	"context"
	"errors"
	"sync"
	"testing"
)

func TestSuspensionReleasedOnResume(t *testing.T) {
	d := &driver{ctx: context.Background(), notes: new([]Annotation)}
	m := Map(Annotate("k", 1), func(struct{}) int { return 7 })

	res := drive(d, m)
	if v, ok := res.GetRight(); !ok || v != 7 {
		t.Fatalf("drive = %v", res)
	}

	s := acquireSuspension()
	if s.op != nil || s.k != nil || s.resume != nil {
		t.Fatalf("pooled suspension not cleared: %+v", s)
	}
	releaseSuspension(s)
}

func TestResumeNilIsZero(t *testing.T) {
	var got int
	s := acquireSuspension()
	s.k = func(v int) Resumed { got = v; return nil }
	resumeOperation[int](s, nil)
	if got != 0 {
		t.Fatalf("got %d, want 0", got)
	}
}

func TestDriveAllocations(t *testing.T) {
	x := NewTag[int]("x")
	env := Provide(EmptyContext(), x, 1)
	m := x.Get()
	d := &driver{ctx: context.Background(), env: env, notes: new([]Annotation)}
	drive(d, m)

	allocs := testing.AllocsPerRun(100, func() {
		drive(d, m)
	})
	if allocs > 4 {
		t.Errorf("drive(Tag.Get) allocs = %v; want <= 4", allocs)
	}
}

func TestOneShot(t *testing.T) {
	o := newOneShot()
	boom := errors.New("boom")
	calls := 0

	var wg sync.WaitGroup
	errs := make([]error, 10)
	for i := range errs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs[i] = o.do(context.Background(), func() error {
				calls++
				return boom
			})
		}()
	}
	wg.Wait()

	if calls != 1 {
		t.Fatalf("action ran %d times", calls)
	}
	for _, err := range errs {
		if !errors.Is(err, boom) {
			t.Fatalf("err = %v, want boom", err)
		}
	}
	if !o.claimed() {
		t.Fatal("oneShot not claimed")
	}
}

func TestOneShotWaitHonoursContext(t *testing.T) {
	o := newOneShot()
	if !o.claim() {
		t.Fatal("first claim lost")
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := o.wait(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("wait = %v, want context.Canceled", err)
	}
	o.finish(nil)
	if err := o.wait(context.Background()); err != nil {
		t.Fatalf("wait after finish = %v", err)
	}
}
