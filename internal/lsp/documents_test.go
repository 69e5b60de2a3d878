package lsp

import "testing"

func TestStoreDirtyTracking(t *testing.T) {
	st := newStore()
	st.open("file:///b.tex", "b", 1)
	st.open("file:///a.tex", "a", 1)

	snaps := st.takeDirty()
	if len(snaps) != 2 || snaps[0].uri != "file:///a.tex" {
		t.Fatalf("expected both documents sorted by uri, got %+v", snaps)
	}
	if again := st.takeDirty(); len(again) != 0 {
		t.Fatalf("dirty flags must be cleared, got %+v", again)
	}

	if st.update("file:///missing.tex", 2, func(s string) string { return s }) {
		t.Fatalf("update of an unopened document must fail")
	}
	st.update("file:///a.tex", 2, func(s string) string { return s + "!" })
	snaps = st.takeDirty()
	if len(snaps) != 1 || snaps[0].text != "a!" || snaps[0].version != 2 {
		t.Fatalf("unexpected snapshot after update: %+v", snaps)
	}

	st.touchAll()
	if got := len(st.takeDirty()); got != 2 {
		t.Fatalf("touchAll marked %d documents, want 2", got)
	}
}

func TestStorePublishedLifecycle(t *testing.T) {
	st := newStore()
	st.open("file:///a.tex", "}", 1)
	snap := st.takeDirty()[0]

	st.update("file:///a.tex", 2, func(string) string { return "" })
	if st.current(snap, true) {
		t.Fatalf("snapshot of version 1 must be stale after version 2")
	}
	snap = st.takeDirty()[0]
	if !st.current(snap, true) {
		t.Fatalf("fresh snapshot must be current")
	}
	if uris := st.takePublished(); len(uris) != 1 {
		t.Fatalf("expected one published uri, got %v", uris)
	}
	if st.close("file:///a.tex") {
		t.Fatalf("takePublished must reset the flag")
	}
}
