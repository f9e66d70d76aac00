package canvas

import (
	"log/slog"

	"github.com/koopa0/canvas/internal/artifact"
)

// Mode is the panel display mode for version history.
type Mode string

const (
	// ModeView renders the version at the cursor as-is.
	ModeView Mode = "view"
	// ModeDiff renders word-level changes against the previous version.
	// Only meaningful when the cursor has a predecessor.
	ModeDiff Mode = "diff"
)

// Phase names the controller's position in the version state machine.
type Phase string

const (
	PhaseLoading        Phase = "loading"
	PhaseError          Phase = "error"
	PhaseLatest         Phase = "latest"
	PhaseHistoricalView Phase = "historical-view"
	PhaseHistoricalDiff Phase = "historical-diff"
)

// VersionState is the read-only snapshot the panel renders.
type VersionState struct {
	DocID     string
	Versions  []*artifact.Version
	Cursor    int
	Mode      Mode
	Loading   bool
	Restoring bool
	Err       error
}

// Controller manages the version history of the document the panel is
// open on: a cursor over immutable snapshots, mode toggling, and
// append-only restore.
//
// The controller never performs I/O itself. Open and BeginRestore tell
// the caller which asynchronous call to make; ApplyVersions and
// ApplyRestore feed the results back. Responses are matched against the
// open document id and a generation counter, so anything that completes
// after the user has navigated away is discarded rather than applied.
//
// Like Engine, a Controller is owned by a single loop.
type Controller struct {
	logger *slog.Logger

	docID      string
	lastLoaded string // last doc id whose versions were fetched; reopening it skips the fetch
	versions   []*artifact.Version
	cursor     int
	mode       Mode
	loading    bool
	restoring  bool
	err        error

	// generation increments each time a fetch or restore is issued;
	// responses carrying an older generation are stale and dropped.
	generation int
}

// NewController creates a version controller.
func NewController(logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{
		logger: logger,
		cursor: -1,
		mode:   ModeView,
	}
}

// Open points the controller at a document. It returns whether the caller
// must fetch the version list, and the generation to pass back to
// ApplyVersions. Reopening the document whose versions are already loaded
// is a no-op fetch-wise.
func (c *Controller) Open(docID string) (fetch bool, generation int) {
	if docID == c.docID && docID == c.lastLoaded && c.err == nil {
		return false, c.generation
	}

	c.docID = docID
	c.versions = nil
	c.cursor = -1
	c.mode = ModeView
	c.loading = true
	c.restoring = false
	c.err = nil
	c.generation++

	c.logger.Debug("loading version history", "id", docID)
	return true, c.generation
}

// Close detaches the controller from its document. In-flight responses
// for the old document will be discarded by the id check.
func (c *Controller) Close() {
	c.docID = ""
	c.versions = nil
	c.cursor = -1
	c.mode = ModeView
	c.loading = false
	c.restoring = false
	c.err = nil
}

// ApplyVersions delivers the result of a version fetch. Returns false
// when the response is stale (document changed or superseded fetch) and
// was discarded.
func (c *Controller) ApplyVersions(docID string, generation int, versions []*artifact.Version, err error) bool {
	if docID != c.docID || generation != c.generation {
		c.logger.Debug("discarding stale version fetch", "id", docID)
		return false
	}

	c.loading = false
	if err != nil {
		// Explicit error state instead of a stuck loading flag, so the
		// panel can offer retry. lastLoaded stays untouched; the next
		// Open refetches.
		c.err = err
		return true
	}

	c.versions = versions
	c.cursor = len(versions) - 1
	c.mode = ModeView
	c.err = nil
	c.lastLoaded = docID
	return true
}

// Prev moves the cursor one version back. Disabled while loading or
// restoring, and at the first version. Falls back to view mode when the
// new cursor no longer has a predecessor to diff against.
func (c *Controller) Prev() bool {
	if c.busy() || c.cursor <= 0 {
		return false
	}
	c.cursor--
	if c.cursor == 0 && c.mode == ModeDiff {
		c.mode = ModeView
	}
	return true
}

// Next moves the cursor one version forward. Disabled while loading or
// restoring, and at the latest version.
func (c *Controller) Next() bool {
	if c.busy() || c.cursor < 0 || c.cursor >= len(c.versions)-1 {
		return false
	}
	c.cursor++
	return true
}

// ToggleDiff flips between view and diff mode. Diff requires a
// predecessor, so the toggle is disabled at cursor zero.
func (c *Controller) ToggleDiff() bool {
	if c.busy() || c.cursor <= 0 {
		return false
	}
	if c.mode == ModeDiff {
		c.mode = ModeView
	} else {
		c.mode = ModeDiff
	}
	return true
}

// BackToLatest jumps the cursor to the newest version in view mode.
func (c *Controller) BackToLatest() {
	if c.busy() || len(c.versions) == 0 {
		return
	}
	c.cursor = len(c.versions) - 1
	c.mode = ModeView
}

// BeginRestore starts restoring the version at the cursor. It returns the
// snapshot content the caller must persist and the generation to pass
// back to ApplyRestore. Only valid on a historical version; local history
// is not touched until persistence confirms.
func (c *Controller) BeginRestore() (content string, generation int, ok bool) {
	if c.busy() || c.cursor < 0 || c.cursor >= len(c.versions)-1 {
		return "", 0, false
	}
	c.restoring = true
	c.err = nil
	c.generation++
	return c.versions[c.cursor].Content, c.generation, true
}

// ApplyRestore delivers the result of a restore call. On success the
// persisted version is appended and becomes the cursor position; history
// is append-only, so existing entries are never rewritten. Returns false
// when the response was stale and discarded.
func (c *Controller) ApplyRestore(docID string, generation int, version *artifact.Version, err error) bool {
	if docID != c.docID || generation != c.generation {
		c.logger.Debug("discarding stale restore response", "id", docID)
		return false
	}

	c.restoring = false
	if err != nil {
		c.err = err
		return true
	}

	c.versions = append(c.versions, version)
	c.cursor = len(c.versions) - 1
	c.mode = ModeView
	c.err = nil

	c.logger.Debug("version restored", "id", docID, "versions", len(c.versions))
	return true
}

// Current returns the version at the cursor.
func (c *Controller) Current() (*artifact.Version, bool) {
	if c.cursor < 0 || c.cursor >= len(c.versions) {
		return nil, false
	}
	return c.versions[c.cursor], true
}

// Baseline returns the diff comparison base, the version preceding the
// cursor. Only valid in diff mode.
func (c *Controller) Baseline() (*artifact.Version, bool) {
	if c.cursor <= 0 || c.cursor >= len(c.versions) {
		return nil, false
	}
	return c.versions[c.cursor-1], true
}

// State returns a read-only snapshot for rendering.
func (c *Controller) State() VersionState {
	return VersionState{
		DocID:     c.docID,
		Versions:  c.versions,
		Cursor:    c.cursor,
		Mode:      c.mode,
		Loading:   c.loading,
		Restoring: c.restoring,
		Err:       c.err,
	}
}

// Phase names the current state-machine position.
func (c *Controller) Phase() Phase {
	switch {
	case c.loading || c.restoring:
		return PhaseLoading
	case c.err != nil:
		return PhaseError
	case c.mode == ModeDiff:
		return PhaseHistoricalDiff
	case c.cursor >= 0 && c.cursor < len(c.versions)-1:
		return PhaseHistoricalView
	default:
		return PhaseLatest
	}
}

func (c *Controller) busy() bool {
	return c.loading || c.restoring
}
