package diff

import (
	"strings"
	"testing"
)

// reconstruct rebuilds one side of the diff: old text from unmarked and
// removed segments, new text from unmarked and added segments.
func reconstruct(segments []Segment, side string) string {
	var sb strings.Builder
	for _, seg := range segments {
		switch side {
		case "old":
			if !seg.Added {
				sb.WriteString(seg.Text)
			}
		case "new":
			if !seg.Removed {
				sb.WriteString(seg.Text)
			}
		}
	}
	return sb.String()
}

func assertReconstruction(t *testing.T, oldText, newText string, segments []Segment) {
	t.Helper()
	if got := reconstruct(segments, "old"); got != oldText {
		t.Errorf("old reconstruction = %q, want %q", got, oldText)
	}
	if got := reconstruct(segments, "new"); got != newText {
		t.Errorf("new reconstruction = %q, want %q", got, newText)
	}
}

func TestWords_Reconstruction(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		oldText string
		newText string
	}{
		{"identical", "the quick brown fox", "the quick brown fox"},
		{"single word change", "the quick brown fox", "the slow brown fox"},
		{"word added", "hello world", "hello cruel world"},
		{"word removed", "hello cruel world", "hello world"},
		{"empty old", "", "brand new text"},
		{"empty new", "old text gone", ""},
		{"both empty", "", ""},
		{"whitespace only change", "a b", "a  b"},
		{"multiline", "line one\nline two\nline three", "line one\nline 2\nline three"},
		{"trailing newline added", "no newline", "no newline\n"},
		{"complete rewrite", "alpha beta gamma", "delta epsilon"},
		{"unicode words", "héllo wörld", "héllo wørld"},
		{"repeated words", "go go go stop", "go go stop stop"},
		{"markdown", "# Title\n\nSome *bold* prose.", "# New Title\n\nSome *bold* prose here."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			segments := Words(tt.oldText, tt.newText)
			assertReconstruction(t, tt.oldText, tt.newText, segments)
		})
	}
}

func TestWords_Classification(t *testing.T) {
	t.Parallel()

	t.Run("identical input yields single unmarked segment", func(t *testing.T) {
		t.Parallel()
		segments := Words("same text", "same text")
		if len(segments) != 1 {
			t.Fatalf("got %d segments, want 1", len(segments))
		}
		if segments[0].Added || segments[0].Removed {
			t.Errorf("segment marked %+v, want unmarked", segments[0])
		}
	})

	t.Run("both empty yields no segments", func(t *testing.T) {
		t.Parallel()
		if segments := Words("", ""); len(segments) != 0 {
			t.Errorf("got %d segments, want 0", len(segments))
		}
	})

	t.Run("word replacement marks removed then added", func(t *testing.T) {
		t.Parallel()
		segments := Words("the quick fox", "the slow fox")

		var removed, added []string
		for _, seg := range segments {
			if seg.Added && seg.Removed {
				t.Fatalf("segment %+v marked both added and removed", seg)
			}
			if seg.Removed {
				removed = append(removed, seg.Text)
			}
			if seg.Added {
				added = append(added, seg.Text)
			}
		}
		if strings.Join(removed, "") != "quick" {
			t.Errorf("removed = %q, want %q", removed, "quick")
		}
		if strings.Join(added, "") != "slow" {
			t.Errorf("added = %q, want %q", added, "slow")
		}
	})

	t.Run("whole words change as units", func(t *testing.T) {
		t.Parallel()
		// Character-level diff would split "cat"/"car" into "ca" + "t"/"r";
		// word granularity replaces the whole token.
		for _, seg := range Words("the cat sat", "the car sat") {
			if seg.Removed && seg.Text != "cat" {
				t.Errorf("removed segment = %q, want %q", seg.Text, "cat")
			}
			if seg.Added && seg.Text != "car" {
				t.Errorf("added segment = %q, want %q", seg.Text, "car")
			}
		}
	})

	t.Run("adjacent segments with same marking are merged", func(t *testing.T) {
		t.Parallel()
		segments := Words("", "one two three")
		if len(segments) != 1 {
			t.Fatalf("got %d segments, want 1: %+v", len(segments), segments)
		}
		if !segments[0].Added {
			t.Error("expected single added segment")
		}
	})
}

func TestSplitLines(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		text string
		want []string
	}{
		{"single line", "hello", []string{"hello"}},
		{"two lines", "a\nb", []string{"a", "b"}},
		{"trailing newline dropped", "a\nb\n", []string{"a", "b"}},
		{"interior empty line kept", "a\n\nb", []string{"a", "", "b"}},
		{"empty string", "", []string{""}},
		{"lone newline", "\n", []string{""}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := SplitLines(tt.text)
			if len(got) != len(tt.want) {
				t.Fatalf("SplitLines(%q) = %q, want %q", tt.text, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("SplitLines(%q)[%d] = %q, want %q", tt.text, i, got[i], tt.want[i])
				}
			}
		})
	}
}

func FuzzWords_Reconstruction(f *testing.F) {
	f.Add("the quick brown fox", "the slow brown fox")
	f.Add("", "new")
	f.Add("old", "")
	f.Add("line one\nline two", "line one\nline 2")
	f.Add("a b c d e", "e d c b a")

	f.Fuzz(func(t *testing.T, oldText, newText string) {
		segments := Words(oldText, newText)
		assertReconstruction(t, oldText, newText, segments)
	})
}
