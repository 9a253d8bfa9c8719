package lsp

import (
	"path/filepath"
	"sort"
	"sync"

	"github.com/spf13/afero"
	"github.com/walteh/witls/pkg/lsp/protocol"
)

// Document is one snapshot of an open file. A change replaces the whole
// Document, so a pointer obtained from the manager never changes under the
// reader.
type Document struct {
	URI        protocol.DocumentURI
	LanguageID string
	Version    int32
	Content    string
}

// Path is the filesystem path of the document, or "" for non-file URIs.
func (d *Document) Path() string {
	return d.URI.Path()
}

// DocumentManager handles document operations
type DocumentManager struct {
	store *sync.Map // map[string]*Document
	fs    afero.Fs
}

func NewDocumentManager(fs afero.Fs) *DocumentManager {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &DocumentManager{
		store: &sync.Map{},
		fs:    fs,
	}
}

// normalizeURI keys file URIs by path so that file:///a%20b.wit and
// file:///a b.wit name the same document.
func normalizeURI(uri protocol.DocumentURI) string {
	if path := uri.Path(); path != "" {
		return path
	}
	return string(uri)
}

// GetNoFallback returns the document only if the editor has opened it.
func (m *DocumentManager) GetNoFallback(uri protocol.DocumentURI) (*Document, bool) {
	content, ok := m.store.Load(normalizeURI(uri))
	if !ok {
		return nil, false
	}
	doc, ok := content.(*Document)
	return doc, ok
}

// Get returns the open document, or reads the file when it is not open. A
// document read from disk is not remembered.
func (m *DocumentManager) Get(uri protocol.DocumentURI) (*Document, bool) {
	if doc, ok := m.GetNoFallback(uri); ok {
		return doc, true
	}

	path := uri.Path()
	if path == "" {
		return nil, false
	}

	content, err := afero.ReadFile(m.fs, path)
	if err != nil {
		return nil, false
	}

	return &Document{
		URI:        uri,
		LanguageID: languageID,
		Content:    string(content),
	}, true
}

func (m *DocumentManager) Store(doc *Document) {
	m.store.Store(normalizeURI(doc.URI), doc)
}

func (m *DocumentManager) Delete(uri protocol.DocumentURI) {
	m.store.Delete(normalizeURI(uri))
}

// Open lists every open document ordered by URI.
func (m *DocumentManager) Open() []*Document {
	var docs []*Document
	m.store.Range(func(_, value any) bool {
		if doc, ok := value.(*Document); ok {
			docs = append(docs, doc)
		}
		return true
	})
	sort.Slice(docs, func(i, j int) bool {
		return docs[i].URI < docs[j].URI
	})
	return docs
}

// InDir lists the open documents whose file lives directly in dir.
func (m *DocumentManager) InDir(dir string) []*Document {
	dir = filepath.Clean(dir)
	var docs []*Document
	for _, doc := range m.Open() {
		if path := doc.Path(); path != "" && filepath.Dir(path) == dir {
			docs = append(docs, doc)
		}
	}
	return docs
}
