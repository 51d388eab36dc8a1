package session

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/ironsheep/colony-counter-mcp/internal/detection"
)

func TestStore_RegisterAndGet(t *testing.T) {
	s := NewStore()

	r, err := s.Register("", "plate1.tif", "/data/plate1.tif", 640, 480)
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if r.ImageID == "" || r.SessionID == "" {
		t.Fatalf("ids not assigned: %+v", r)
	}
	if r.Detected() {
		t.Errorf("new record should not be detected")
	}

	got, err := s.Get(r.ImageID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Filename != "plate1.tif" || got.Width != 640 || got.Height != 480 {
		t.Errorf("record mismatch: %+v", got)
	}
	// The edit log is bounded by the image size.
	if _, err := got.Log.Add(detection.Point{X: 639, Y: 479}); err != nil {
		t.Errorf("in-bounds add failed: %v", err)
	}
	if _, err := got.Log.Add(detection.Point{X: 640, Y: 0}); err == nil {
		t.Error("add outside the image should fail")
	}
}

func TestStore_NotFound(t *testing.T) {
	s := NewStore()

	if _, err := s.Get("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get: expected ErrNotFound, got %v", err)
	}
	if _, err := s.Session("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Session: expected ErrNotFound, got %v", err)
	}
	if _, err := s.Register("missing", "a.png", "a.png", 1, 1); !errors.Is(err, ErrNotFound) {
		t.Errorf("Register: expected ErrNotFound, got %v", err)
	}
	if err := s.Remove("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Remove: expected ErrNotFound, got %v", err)
	}
	if _, err := s.Register("", "a.png", "a.png", 0, 5); err == nil {
		t.Errorf("Register should reject an empty image")
	}
}

func TestStore_SessionOrder(t *testing.T) {
	s := NewStore()
	sid := s.NewSession()
	for i := 0; i < 5; i++ {
		if _, err := s.Register(sid, fmt.Sprintf("img%d.png", i), "", 10, 10); err != nil {
			t.Fatalf("Register failed: %v", err)
		}
	}

	recs, err := s.Session(sid)
	if err != nil {
		t.Fatalf("Session failed: %v", err)
	}
	for i, r := range recs {
		if want := fmt.Sprintf("img%d.png", i); r.Filename != want {
			t.Errorf("record %d: got %s, want %s", i, r.Filename, want)
		}
	}

	if err := s.Remove(recs[2].ImageID); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	recs, _ = s.Session(sid)
	if len(recs) != 4 || recs[2].Filename != "img3.png" {
		t.Errorf("after Remove: got %d records, third %s", len(recs), recs[2].Filename)
	}

	if ids := s.Sessions(); len(ids) != 1 || ids[0] != sid {
		t.Errorf("Sessions: got %v", ids)
	}
}

func TestStore_UpdateIsolation(t *testing.T) {
	s := NewStore()
	r, _ := s.Register("", "a.png", "", 20, 20)

	// Copies from Get must not alias the stored log.
	snap, _ := s.Get(r.ImageID)
	snap.Log.Add(detection.Point{X: 1, Y: 1})
	if got, _ := s.Get(r.ImageID); got.Log.Len() != 0 {
		t.Errorf("Get returned an aliased log")
	}

	_, err := s.Update(r.ImageID, func(rec *Record) error {
		_, err := rec.Log.Add(detection.Point{X: 2, Y: 2})
		return err
	})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	// A failing update leaves the record untouched.
	_, err = s.Update(r.ImageID, func(rec *Record) error {
		rec.Log.Add(detection.Point{X: 3, Y: 3})
		_, err := rec.Log.Add(detection.Point{X: 99, Y: 3})
		return err
	})
	if err == nil {
		t.Fatalf("expected bounds error")
	}

	got, _ := s.Get(r.ImageID)
	if got.Log.Len() != 1 {
		t.Errorf("Log length: got %d, want 1", got.Log.Len())
	}
}

func TestStore_ConcurrentUpdates(t *testing.T) {
	s := NewStore()
	r, _ := s.Register("", "a.png", "", 100, 100)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s.Update(r.ImageID, func(rec *Record) error {
				_, err := rec.Log.Add(detection.Point{X: float64(i), Y: 1})
				return err
			})
		}(i)
	}
	wg.Wait()

	got, _ := s.Get(r.ImageID)
	if got.Log.Len() != 50 {
		t.Errorf("Log length: got %d, want 50", got.Log.Len())
	}
}
