package lsp

import (
	"slices"
	"strings"
)

// document is one editor buffer as last reported by the client.
type document struct {
	text      string
	version   int
	dirty     bool // changed since the last diagnostics run
	published bool // a non-empty publish was sent and must be cleared on close
}

// snapshot is the part of a document a diagnostics run works on.
type snapshot struct {
	uri     string
	text    string
	version int
}

// store holds open documents keyed by canonical URI. It is not
// synchronised; the server guards it with its own mutex.
type store struct {
	docs map[string]*document
}

func newStore() *store {
	return &store{docs: make(map[string]*document)}
}

func (st *store) open(uri, text string, version int) {
	st.docs[uri] = &document{text: text, version: version, dirty: true}
}

func (st *store) get(uri string) (*document, bool) {
	doc, ok := st.docs[uri]
	return doc, ok
}

// update replaces the text of an open document. It reports false for
// documents the client never opened.
func (st *store) update(uri string, version int, edit func(string) string) bool {
	doc, ok := st.docs[uri]
	if !ok {
		return false
	}
	doc.text = edit(doc.text)
	doc.version = version
	doc.dirty = true
	return true
}

func (st *store) touch(uri string) {
	if doc, ok := st.docs[uri]; ok {
		doc.dirty = true
	}
}

func (st *store) touchAll() {
	for _, doc := range st.docs {
		doc.dirty = true
	}
}

// close forgets uri and reports whether diagnostics were published for it.
func (st *store) close(uri string) bool {
	doc, ok := st.docs[uri]
	if !ok {
		return false
	}
	delete(st.docs, uri)
	return doc.published
}

// takeDirty returns the documents changed since the last call, sorted by
// URI, and clears their dirty flag.
func (st *store) takeDirty() []snapshot {
	var out []snapshot
	for uri, doc := range st.docs {
		if !doc.dirty {
			continue
		}
		doc.dirty = false
		out = append(out, snapshot{uri: uri, text: doc.text, version: doc.version})
	}
	slices.SortFunc(out, func(a, b snapshot) int { return strings.Compare(a.uri, b.uri) })
	return out
}

// current reports whether snap still matches the open document and, if
// so, marks it as published.
func (st *store) current(snap snapshot, nonEmpty bool) bool {
	doc, ok := st.docs[snap.uri]
	if !ok || doc.version != snap.version {
		return false
	}
	doc.published = nonEmpty
	return true
}

// takePublished returns every URI with live diagnostics and resets them.
func (st *store) takePublished() []string {
	var out []string
	for uri, doc := range st.docs {
		if doc.published {
			doc.published = false
			out = append(out, uri)
		}
	}
	slices.Sort(out)
	return out
}
