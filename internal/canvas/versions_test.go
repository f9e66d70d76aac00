package canvas

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/koopa0/canvas/internal/artifact"
	"github.com/koopa0/canvas/internal/log"
)

func makeVersions(docID string, contents ...string) []*artifact.Version {
	versions := make([]*artifact.Version, 0, len(contents))
	for i, content := range contents {
		versions = append(versions, &artifact.Version{
			ID:         uuid.New(),
			DocumentID: docID,
			Content:    content,
			CreatedAt:  time.Unix(int64(i), 0),
		})
	}
	return versions
}

// openLoaded is a helper that opens a document and delivers its versions.
func openLoaded(t *testing.T, c *Controller, docID string, contents ...string) {
	t.Helper()
	fetch, gen := c.Open(docID)
	if !fetch {
		t.Fatalf("Open(%q) did not request a fetch", docID)
	}
	if !c.ApplyVersions(docID, gen, makeVersions(docID, contents...), nil) {
		t.Fatalf("ApplyVersions(%q) discarded a fresh response", docID)
	}
}

func TestController_OpenAndLoad(t *testing.T) {
	t.Parallel()
	c := NewController(log.NewNop())

	fetch, gen := c.Open("d1")
	if !fetch {
		t.Fatal("first Open must request a fetch")
	}
	if c.Phase() != PhaseLoading {
		t.Errorf("phase = %q, want loading", c.Phase())
	}

	if !c.ApplyVersions("d1", gen, makeVersions("d1", "v1", "v2", "v3"), nil) {
		t.Fatal("fresh response discarded")
	}

	st := c.State()
	if st.Cursor != 2 || st.Mode != ModeView || st.Loading {
		t.Errorf("state after load = %+v", st)
	}
	if c.Phase() != PhaseLatest {
		t.Errorf("phase = %q, want latest", c.Phase())
	}

	// Reopening the same document does not refetch.
	if fetch, _ := c.Open("d1"); fetch {
		t.Error("reopening a loaded document requested a fetch")
	}

	// A different document does.
	if fetch, _ := c.Open("d2"); !fetch {
		t.Error("opening a new document did not request a fetch")
	}
}

func TestController_StaleResponsesAreDiscarded(t *testing.T) {
	t.Parallel()

	t.Run("document changed before fetch completed", func(t *testing.T) {
		t.Parallel()
		c := NewController(log.NewNop())

		_, gen1 := c.Open("d1")
		c.Open("d2") // user navigated away

		if c.ApplyVersions("d1", gen1, makeVersions("d1", "v1"), nil) {
			t.Error("stale fetch for d1 was applied")
		}
		if got := c.State().DocID; got != "d2" {
			t.Errorf("docID = %q, want d2", got)
		}
	})

	t.Run("superseded generation", func(t *testing.T) {
		t.Parallel()
		c := NewController(log.NewNop())

		_, gen1 := c.Open("d1")
		c.Open("d2")
		_, gen3 := c.Open("d1") // back to d1 with a newer fetch

		if gen1 == gen3 {
			t.Fatal("generations must differ across fetches")
		}
		if c.ApplyVersions("d1", gen1, makeVersions("d1", "old"), nil) {
			t.Error("superseded fetch was applied")
		}
		if !c.ApplyVersions("d1", gen3, makeVersions("d1", "fresh"), nil) {
			t.Error("current fetch was discarded")
		}
		if v, _ := c.Current(); v.Content != "fresh" {
			t.Errorf("current content = %q, want fresh", v.Content)
		}
	})
}

func TestController_FetchFailureIsAnExplicitErrorState(t *testing.T) {
	t.Parallel()
	c := NewController(log.NewNop())

	fetch, gen := c.Open("d1")
	if !fetch {
		t.Fatal("expected fetch")
	}
	fetchErr := errors.New("connection refused")
	c.ApplyVersions("d1", gen, nil, fetchErr)

	st := c.State()
	if st.Loading {
		t.Error("loading flag stuck after failure")
	}
	if !errors.Is(st.Err, fetchErr) {
		t.Errorf("err = %v, want %v", st.Err, fetchErr)
	}
	if c.Phase() != PhaseError {
		t.Errorf("phase = %q, want error", c.Phase())
	}

	// Retry: reopening after an error refetches.
	if fetch, _ := c.Open("d1"); !fetch {
		t.Error("reopen after error did not request a fetch")
	}
}

func TestController_Navigation(t *testing.T) {
	t.Parallel()
	c := NewController(log.NewNop())
	openLoaded(t, c, "d1", "v1", "v2", "v3")

	if !c.Prev() {
		t.Fatal("Prev from latest failed")
	}
	if c.Phase() != PhaseHistoricalView {
		t.Errorf("phase = %q, want historical-view", c.Phase())
	}
	if !c.Prev() {
		t.Fatal("Prev to first failed")
	}
	if c.Prev() {
		t.Error("Prev at cursor 0 succeeded")
	}

	if !c.Next() {
		t.Fatal("Next failed")
	}
	if !c.Next() {
		t.Fatal("Next to latest failed")
	}
	if c.Next() {
		t.Error("Next at latest succeeded")
	}
	if c.Phase() != PhaseLatest {
		t.Errorf("phase = %q, want latest", c.Phase())
	}

	c.Prev()
	c.Prev()
	c.BackToLatest()
	if st := c.State(); st.Cursor != 2 || st.Mode != ModeView {
		t.Errorf("after BackToLatest: %+v", st)
	}
}

func TestController_DiffMode(t *testing.T) {
	t.Parallel()
	c := NewController(log.NewNop())
	openLoaded(t, c, "d1", "v1", "v2", "v3")

	c.Prev() // cursor 1
	if !c.ToggleDiff() {
		t.Fatal("ToggleDiff with a predecessor failed")
	}
	if c.Phase() != PhaseHistoricalDiff {
		t.Errorf("phase = %q, want historical-diff", c.Phase())
	}

	cur, _ := c.Current()
	base, ok := c.Baseline()
	if !ok {
		t.Fatal("no baseline in diff mode")
	}
	if cur.Content != "v2" || base.Content != "v1" {
		t.Errorf("diff pair = (%q, %q), want (v1, v2)", base.Content, cur.Content)
	}

	// Moving to cursor 0 in diff mode falls back to view.
	if !c.Prev() {
		t.Fatal("Prev in diff mode failed")
	}
	if c.State().Mode != ModeView {
		t.Error("diff mode survived at cursor 0")
	}

	// Guard: no diff with no predecessor.
	if c.ToggleDiff() {
		t.Error("ToggleDiff at cursor 0 succeeded")
	}
	if c.State().Mode != ModeView {
		t.Error("mode changed despite guard")
	}
}

func TestController_RestoreIsAppendOnly(t *testing.T) {
	t.Parallel()
	c := NewController(log.NewNop())
	openLoaded(t, c, "d1", "v1", "v2", "v3")

	before := c.State().Versions
	originals := make([]artifact.Version, len(before))
	for i, v := range before {
		originals[i] = *v
	}

	// Navigate to index 1 and restore it.
	c.Prev()
	content, gen, ok := c.BeginRestore()
	if !ok {
		t.Fatal("BeginRestore on a historical version failed")
	}
	if content != "v2" {
		t.Errorf("restore content = %q, want v2", content)
	}

	restored := &artifact.Version{
		ID:         uuid.New(),
		DocumentID: "d1",
		Content:    content,
		CreatedAt:  time.Now(),
	}
	if !c.ApplyRestore("d1", gen, restored, nil) {
		t.Fatal("restore response discarded")
	}

	st := c.State()
	if len(st.Versions) != 4 {
		t.Fatalf("versions = %d, want 4 (append-only)", len(st.Versions))
	}
	if st.Cursor != 3 || st.Mode != ModeView {
		t.Errorf("cursor=%d mode=%q after restore", st.Cursor, st.Mode)
	}
	if st.Versions[3].Content != "v2" {
		t.Errorf("new latest = %q, want v2", st.Versions[3].Content)
	}
	for i := range originals {
		if *st.Versions[i] != originals[i] {
			t.Errorf("original version %d changed: %+v", i, st.Versions[i])
		}
	}
}

func TestController_RestoreGuards(t *testing.T) {
	t.Parallel()

	t.Run("not allowed at latest", func(t *testing.T) {
		t.Parallel()
		c := NewController(log.NewNop())
		openLoaded(t, c, "d1", "v1", "v2")

		if _, _, ok := c.BeginRestore(); ok {
			t.Error("BeginRestore at latest succeeded")
		}
	})

	t.Run("not allowed while loading", func(t *testing.T) {
		t.Parallel()
		c := NewController(log.NewNop())
		c.Open("d1")

		if _, _, ok := c.BeginRestore(); ok {
			t.Error("BeginRestore while loading succeeded")
		}
		if c.Prev() || c.Next() || c.ToggleDiff() {
			t.Error("navigation enabled while loading")
		}
	})

	t.Run("navigation disabled during restore", func(t *testing.T) {
		t.Parallel()
		c := NewController(log.NewNop())
		openLoaded(t, c, "d1", "v1", "v2")
		c.Prev()

		if _, _, ok := c.BeginRestore(); !ok {
			t.Fatal("BeginRestore failed")
		}
		if c.Prev() || c.Next() || c.ToggleDiff() {
			t.Error("navigation enabled while restore in flight")
		}
	})
}

func TestController_RestoreFailureLeavesHistoryUntouched(t *testing.T) {
	t.Parallel()
	c := NewController(log.NewNop())
	openLoaded(t, c, "d1", "v1", "v2", "v3")
	c.Prev()

	_, gen, ok := c.BeginRestore()
	if !ok {
		t.Fatal("BeginRestore failed")
	}

	restoreErr := fmt.Errorf("persist: %w", errors.New("timeout"))
	c.ApplyRestore("d1", gen, nil, restoreErr)

	st := c.State()
	if len(st.Versions) != 3 {
		t.Errorf("versions = %d, want 3 (no optimistic append)", len(st.Versions))
	}
	if st.Cursor != 1 {
		t.Errorf("cursor = %d, want unchanged 1", st.Cursor)
	}
	if st.Err == nil {
		t.Error("restore failure not surfaced")
	}
	if st.Restoring {
		t.Error("restoring flag stuck")
	}
}

func TestController_StaleRestoreIsDiscarded(t *testing.T) {
	t.Parallel()
	c := NewController(log.NewNop())
	openLoaded(t, c, "d1", "v1", "v2")
	c.Prev()

	content, gen, ok := c.BeginRestore()
	if !ok {
		t.Fatal("BeginRestore failed")
	}

	// User navigates to another document before the restore lands.
	c.Open("d2")

	applied := c.ApplyRestore("d1", gen, &artifact.Version{
		ID: uuid.New(), DocumentID: "d1", Content: content,
	}, nil)
	if applied {
		t.Error("stale restore applied to the wrong document")
	}
	if got := c.State().DocID; got != "d2" {
		t.Errorf("docID = %q, want d2", got)
	}
}

func TestController_Close(t *testing.T) {
	t.Parallel()
	c := NewController(log.NewNop())
	_, gen := c.Open("d1")
	c.Close()

	if c.ApplyVersions("d1", gen, makeVersions("d1", "v1"), nil) {
		t.Error("response applied after Close")
	}
	if st := c.State(); st.DocID != "" || st.Loading {
		t.Errorf("state after Close = %+v", st)
	}
}
