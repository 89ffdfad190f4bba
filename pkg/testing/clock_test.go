package testing

import (
	"testing"
	"time"
)

func TestFakeClock_Advance(t *testing.T) {
	clk := NewFakeClock()
	start := clk.Now()

	clk.Advance(100 * time.Millisecond)
	elapsed := clk.Now().Sub(start)

	if elapsed != 100*time.Millisecond {
		t.Errorf("expected 100ms elapsed, got %v", elapsed)
	}
}

func TestFakeClock_Set(t *testing.T) {
	clk := NewFakeClock()
	target := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	clk.Set(target)
	if !clk.Now().Equal(target) {
		t.Errorf("expected %v, got %v", target, clk.Now())
	}
}

func TestFakeClock_DueInOrder(t *testing.T) {
	clk := NewFakeClock()
	var order []string
	clk.AfterFunc(20*time.Millisecond, func() { order = append(order, "late") })
	clk.AfterFunc(10*time.Millisecond, func() { order = append(order, "early") })
	clk.AfterFunc(10*time.Millisecond, func() { order = append(order, "early2") })

	if fns := clk.due(); len(fns) != 0 {
		t.Fatalf("expected nothing due, got %d", len(fns))
	}

	clk.Advance(15 * time.Millisecond)
	for _, fn := range clk.due() {
		fn()
	}
	if clk.Pending() != 1 {
		t.Errorf("expected 1 pending timer, got %d", clk.Pending())
	}

	clk.Advance(5 * time.Millisecond)
	for _, fn := range clk.due() {
		fn()
	}

	want := []string{"early", "early2", "late"}
	if len(order) != len(want) {
		t.Fatalf("expected %v, got %v", want, order)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("expected %v, got %v", want, order)
			break
		}
	}
}

func TestWidgetTester_After(t *testing.T) {
	tester := NewWidgetTesterWithT(t)
	ran := false
	tester.After(50*time.Millisecond, func() { ran = true })

	tester.Pump()
	if ran {
		t.Fatal("callback ran before its delay")
	}

	tester.Clock().Advance(50 * time.Millisecond)
	tester.Pump()
	if !ran {
		t.Error("expected callback to run once due")
	}
}
