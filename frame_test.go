package vkx

import (
	"testing"

	vk "github.com/vulkan-go/vulkan"
)

func TestPresentPolicySuboptimalDebounce(t *testing.T) {
	p := newPresentPolicy()

	for i := 0; i < SuboptimalThreshold-1; i++ {
		if got := p.decide(vk.Suboptimal, false); got != presentOK {
			t.Fatalf("suboptimal frame %d: got %v, want tolerated", i+1, got)
		}
	}
	if got := p.decide(vk.Suboptimal, false); got != presentRecreate {
		t.Fatalf("suboptimal frame %d: got %v, want recreate at threshold", SuboptimalThreshold, got)
	}
	// Counter reset after recreation: the next run starts from scratch.
	if got := p.decide(vk.Suboptimal, false); got != presentOK {
		t.Errorf("first suboptimal after recreation: got %v, want tolerated", got)
	}
}

func TestPresentPolicySuccessResetsCounter(t *testing.T) {
	p := newPresentPolicy()
	for i := 0; i < SuboptimalThreshold-1; i++ {
		p.decide(vk.Suboptimal, false)
	}
	if got := p.decide(vk.Success, false); got != presentOK {
		t.Fatalf("success: got %v, want ok", got)
	}
	// A fresh run of suboptimal frames is needed to reach the threshold again.
	for i := 0; i < SuboptimalThreshold-1; i++ {
		if got := p.decide(vk.Suboptimal, false); got != presentOK {
			t.Fatalf("suboptimal frame %d after reset: got %v, want tolerated", i+1, got)
		}
	}
	if got := p.decide(vk.Suboptimal, false); got != presentRecreate {
		t.Errorf("got %v, want recreate at threshold", got)
	}
}

func TestPresentPolicyResize(t *testing.T) {
	p := newPresentPolicy()
	for i := 0; i < 5; i++ {
		p.decide(vk.Suboptimal, false)
	}
	if got := p.decide(vk.Success, true); got != presentRecreate {
		t.Fatalf("resize: got %v, want unconditional recreate", got)
	}
	if p.suboptimal != 0 {
		t.Errorf("suboptimal counter = %d after recreation, want 0", p.suboptimal)
	}
}

func TestPresentPolicyResizeTakesPrecedence(t *testing.T) {
	p := newPresentPolicy()
	// Resize and a stale surface in the same frame produce one recreation.
	if got := p.decide(vk.ErrorOutOfDate, true); got != presentRecreate {
		t.Errorf("got %v, want a single recreate", got)
	}
}

func TestPresentPolicyOutOfDate(t *testing.T) {
	p := newPresentPolicy()
	if got := p.decide(vk.ErrorOutOfDate, false); got != presentRecreate {
		t.Errorf("got %v, want recreate on stale surface", got)
	}
}

func TestPresentPolicyFatal(t *testing.T) {
	p := newPresentPolicy()
	if got := p.decide(vk.ErrorDeviceLost, false); got != presentFatal {
		t.Errorf("got %v, want fatal on device loss", got)
	}
}

func TestFrameCounterCyclesOncePerFrame(t *testing.T) {
	f := &Frames{}
	if f.Slot() != 0 {
		t.Fatalf("initial slot = %d, want 0", f.Slot())
	}
	f.advance()
	if f.Slot() != 1 {
		t.Errorf("slot after one frame = %d, want 1", f.Slot())
	}
	f.advance()
	if f.Slot() != 0 {
		t.Errorf("slot after two frames = %d, want wraparound to 0", f.Slot())
	}
}
