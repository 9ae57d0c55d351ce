package param

import (
	"context"
	"testing"

	"github.com/aeegmon/core/internal/domain"
	"github.com/aeegmon/core/internal/render"
)

type recordingSink struct {
	events []domain.AuditEvent
}

func (s *recordingSink) Record(_ context.Context, e domain.AuditEvent) error {
	s.events = append(s.events, e)
	return nil
}

func TestNewRejectsInvalidSettings(t *testing.T) {
	bad := DefaultSettings()
	bad.LPFCutoff = 12345
	if _, err := New(bad, nil); err == nil {
		t.Fatal("expected validation error for an unenumerated LPF cutoff")
	}
}

func TestSetGainEmitsOneAuditEvent(t *testing.T) {
	sink := &recordingSink{}
	c, err := New(DefaultSettings(), sink)
	if err != nil {
		t.Fatal(err)
	}
	if err := c.SetGain(context.Background(), render.Gain50, 1_000_000); err != nil {
		t.Fatal(err)
	}
	if c.Current().Gain != render.Gain50 {
		t.Fatalf("expected gain swapped to 50, got %v", c.Current().Gain)
	}
	if len(sink.events) != 1 || sink.events[0].Kind != domain.GainChange {
		t.Fatalf("expected exactly one GainChange event, got %+v", sink.events)
	}
	if sink.events[0].TsUS != 1_000_000 {
		t.Fatalf("expected audit event stamped with the given wall-clock reading, got %d", sink.events[0].TsUS)
	}
}

func TestSetLPFCutoffRejectsUnenumeratedValue(t *testing.T) {
	c, err := New(DefaultSettings(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := c.SetLPFCutoff(context.Background(), 33, 0); err == nil {
		t.Fatal("expected rejection of a non-enumerated LPF cutoff")
	}
	if c.Current().LPFCutoff != DefaultSettings().LPFCutoff {
		t.Fatal("rejected change must not have mutated current settings")
	}
}

func TestSetNotchTogglesAndAudits(t *testing.T) {
	sink := &recordingSink{}
	c, err := New(DefaultSettings(), sink)
	if err != nil {
		t.Fatal(err)
	}
	if err := c.SetNotch(context.Background(), true, 2_000_000); err != nil {
		t.Fatal(err)
	}
	if !c.Current().NotchOn {
		t.Fatal("expected notch on")
	}
	if len(sink.events) != 1 || sink.events[0].Detail != "Notch" {
		t.Fatalf("expected one FilterChange/Notch event, got %+v", sink.events)
	}
	if sink.events[0].TsUS != 2_000_000 {
		t.Fatalf("expected audit event stamped with the given wall-clock reading, got %d", sink.events[0].TsUS)
	}
}

func TestSwapIsAtomicAcrossConcurrentReaders(t *testing.T) {
	c, err := New(DefaultSettings(), nil)
	if err != nil {
		t.Fatal(err)
	}
	done := make(chan struct{})
	go func() {
		for i := 0; i < 1000; i++ {
			_ = c.Current()
		}
		close(done)
	}()
	for i := 0; i < 1000; i++ {
		_ = c.SetHPFCutoff(context.Background(), 1.0, domain.Timestamp(i))
		_ = c.SetHPFCutoff(context.Background(), 0.5, domain.Timestamp(i))
	}
	<-done
}
