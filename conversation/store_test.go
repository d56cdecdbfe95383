package conversation

import (
	"sync"
	"testing"
)

func TestStoreLazyCreate(t *testing.T) {
	s := NewStore()

	conv := s.Get(42)
	if conv.Mode != ModeIdle || conv.SelectedHall != "" {
		t.Fatalf("fresh conversation = %+v", conv)
	}
	if s.InProgress(42) {
		t.Fatal("fresh conversation must not be in progress")
	}
}

func TestStoreUpdateAndReset(t *testing.T) {
	s := NewStore()

	s.Update(42, func(c *Conversation) {
		c.Mode = ModeAwaitingSpeakerQuestion
		c.SelectedHall = "Зал 2"
	})
	if !s.InProgress(42) {
		t.Fatal("expected in progress")
	}
	conv := s.Get(42)
	if conv.Mode != ModeAwaitingSpeakerQuestion || conv.SelectedHall != "Зал 2" {
		t.Fatalf("conversation = %+v", conv)
	}

	s.Reset(42)
	conv = s.Get(42)
	if conv.Mode != ModeIdle || conv.SelectedHall != "" {
		t.Fatalf("after reset = %+v", conv)
	}
}

func TestStoreGetReturnsSnapshot(t *testing.T) {
	s := NewStore()

	conv := s.Get(42)
	conv.Mode = ModeAwaitingImagePrompt

	if got := s.Get(42).Mode; got != ModeIdle {
		t.Fatalf("mutating a snapshot leaked into the store: %q", got)
	}
}

func TestStoreUsersIsolated(t *testing.T) {
	s := NewStore()

	s.Update(1, func(c *Conversation) { c.Mode = ModeAwaitingAIQuestion })
	s.Update(2, func(c *Conversation) { c.Mode = ModeAwaitingHallSelection })
	s.Reset(1)

	if got := s.Get(2).Mode; got != ModeAwaitingHallSelection {
		t.Fatalf("user 2 mode = %q", got)
	}
}

func TestStoreConcurrentAccess(t *testing.T) {
	s := NewStore()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				s.Update(id, func(c *Conversation) { c.Mode = ModeAwaitingAIQuestion })
				s.Get(id)
				s.Reset(id)
			}
		}(int64(i % 4))
	}
	wg.Wait()
}
