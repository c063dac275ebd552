package core

import (
	"context"
	"errors"
	"testing"
	"time"
)

// fakeClock is a manually advanced time source.
type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestStore(ttl time.Duration, max int) (*Store, *fakeClock) {
	clock := &fakeClock{t: time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)}
	s := NewStore(ttl, max)
	s.now = clock.now
	return s, clock
}

func TestStore_PutGetDelete(t *testing.T) {
	s, _ := newTestStore(time.Hour, 10)

	ds, err := s.Put("people.csv", nameAge())
	if err != nil {
		t.Fatalf("Put() error: %v", err)
	}
	if ds.ID == "" || ds.FileName != "people.csv" {
		t.Errorf("dataset = %+v", ds)
	}
	if len(ds.Stats) != 2 {
		t.Errorf("Stats has %d rows, want 2", len(ds.Stats))
	}

	got, err := s.Get(ds.ID)
	if err != nil || got != ds {
		t.Fatalf("Get() = %v, %v", got, err)
	}

	if err := s.Delete(ds.ID); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}
	if _, err := s.Get(ds.ID); !errors.Is(err, ErrDatasetNotFound) {
		t.Errorf("Get after Delete err = %v", err)
	}
	if err := s.Delete(ds.ID); !errors.Is(err, ErrDatasetNotFound) {
		t.Errorf("second Delete err = %v", err)
	}
}

func TestStore_IDsAreDistinct(t *testing.T) {
	s, _ := newTestStore(time.Hour, 10)
	a, _ := s.Put("a.csv", nameAge())
	b, _ := s.Put("a.csv", nameAge())
	if a.ID == b.ID {
		t.Error("two uploads share an ID")
	}
}

func TestStore_TTL(t *testing.T) {
	s, clock := newTestStore(time.Hour, 10)

	old, _ := s.Put("old.csv", nameAge())
	clock.advance(40 * time.Minute)
	fresh, _ := s.Put("fresh.csv", nameAge())
	clock.advance(30 * time.Minute)

	if _, err := s.Get(old.ID); !errors.Is(err, ErrDatasetNotFound) {
		t.Errorf("expired dataset err = %v", err)
	}
	if _, err := s.Get(fresh.ID); err != nil {
		t.Errorf("fresh dataset err = %v", err)
	}
}

func TestStore_GetRefreshesAccess(t *testing.T) {
	s, clock := newTestStore(time.Hour, 10)
	ds, _ := s.Put("a.csv", nameAge())

	for i := 0; i < 3; i++ {
		clock.advance(50 * time.Minute)
		if _, err := s.Get(ds.ID); err != nil {
			t.Fatalf("Get after %d accesses: %v", i, err)
		}
	}
}

func TestStore_Sweep(t *testing.T) {
	s, clock := newTestStore(time.Hour, 10)
	s.Put("a.csv", nameAge())
	s.Put("b.csv", nameAge())
	clock.advance(30 * time.Minute)
	keep, _ := s.Put("c.csv", nameAge())
	clock.advance(45 * time.Minute)

	if n := s.Sweep(); n != 2 {
		t.Errorf("Sweep() = %d, want 2", n)
	}
	if s.Len() != 1 {
		t.Errorf("Len() = %d, want 1", s.Len())
	}
	if _, err := s.Get(keep.ID); err != nil {
		t.Errorf("kept dataset err = %v", err)
	}
}

func TestStore_EvictsLeastRecentlyUsed(t *testing.T) {
	s, clock := newTestStore(0, 2)

	a, _ := s.Put("a.csv", nameAge())
	clock.advance(2 * time.Minute)
	b, _ := s.Put("b.csv", nameAge())
	clock.advance(2 * time.Minute)
	s.Get(a.ID) // a is now more recent than b
	clock.advance(2 * time.Minute)

	c, err := s.Put("c.csv", nameAge())
	if err != nil {
		t.Fatalf("Put() error: %v", err)
	}
	if _, err := s.Get(b.ID); !errors.Is(err, ErrDatasetNotFound) {
		t.Errorf("b should have been evicted, err = %v", err)
	}
	for _, id := range []string{a.ID, c.ID} {
		if _, err := s.Get(id); err != nil {
			t.Errorf("Get(%s) err = %v", id, err)
		}
	}
}

func TestStore_FullWhenAllRecent(t *testing.T) {
	s, clock := newTestStore(0, 1)
	s.Put("a.csv", nameAge())
	clock.advance(MinEvictIdle / 2)

	if _, err := s.Put("b.csv", nameAge()); !errors.Is(err, ErrStoreFull) {
		t.Errorf("err = %v, want ErrStoreFull", err)
	}
	if s.Len() != 1 {
		t.Errorf("Len() = %d, want 1", s.Len())
	}
}

func TestStore_Janitor(t *testing.T) {
	s := NewStore(time.Millisecond, 10)
	s.Put("a.csv", nameAge())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.StartJanitor(ctx, 5*time.Millisecond)
		close(done)
	}()

	deadline := time.Now().Add(time.Second)
	for s.Len() != 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	cancel()
	<-done

	if s.Len() != 0 {
		t.Errorf("janitor left %d datasets", s.Len())
	}
}
