package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	chromago "github.com/amikos-tech/chroma-go/pkg/api/v2"
	"github.com/amikos-tech/chroma-go/pkg/embeddings"
	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"
	"github.com/tmc/langchaingo/textsplitter"

	"github.com/legalgpt/engine/models"
)

// DocumentIngestor populates the vector index: it chunks, embeds and writes
// documents, either from the legal corpus directory (global scope) or from an
// uploaded user document (user scope). It is the only component that writes to
// the collection; the query path is read-only.
type DocumentIngestor struct {
	collection   chromago.Collection
	embedder     EmbeddingProvider
	chunkSize    int
	chunkOverlap int
}

// NewDocumentIngestor creates an ingestor writing to the given collection.
func NewDocumentIngestor(collection chromago.Collection, embedder EmbeddingProvider, chunkSize, chunkOverlap int) *DocumentIngestor {
	return &DocumentIngestor{
		collection:   collection,
		embedder:     embedder,
		chunkSize:    chunkSize,
		chunkOverlap: chunkOverlap,
	}
}

// IngestText splits a document into overlapping chunks, embeds each one and
// writes them under the given source title and owner scope. Returns the number
// of chunks written.
func (s *DocumentIngestor) IngestText(ctx context.Context, title, text, ownerScope string) (int, error) {
	if ownerScope == "" {
		ownerScope = models.OwnerScopeGlobal
	}

	chunks, err := s.splitDocument(title, text, ownerScope)
	if err != nil {
		return 0, fmt.Errorf("could not split document %q: %w", title, err)
	}
	log.Printf("INDEXER: Split %q into %d chunks (scope=%s)", title, len(chunks), ownerScope)

	for i := range chunks {
		vector, err := s.embedder.Embed(ctx, chunks[i].Text)
		if err != nil {
			return i, fmt.Errorf("could not embed chunk %d of %q: %w", i, title, err)
		}
		chunks[i].Embedding = vector
		if err := s.addChunk(ctx, chunks[i], i); err != nil {
			return i, fmt.Errorf("failed to add chunk %d of %q to chromadb: %w", i, title, err)
		}
	}
	return len(chunks), nil
}

// splitDocument cuts a document into overlapping chunks, each tagged with its
// source title and owner scope. Embeddings are filled in by the caller.
func (s *DocumentIngestor) splitDocument(title, text, ownerScope string) ([]models.DocumentChunk, error) {
	splitter := textsplitter.NewRecursiveCharacter(
		textsplitter.WithChunkSize(s.chunkSize),
		textsplitter.WithChunkOverlap(s.chunkOverlap),
	)
	pieces, err := splitter.SplitText(text)
	if err != nil {
		return nil, err
	}
	chunks := make([]models.DocumentChunk, len(pieces))
	for i, piece := range pieces {
		chunks[i] = models.DocumentChunk{
			ID:          fmt.Sprintf("%s-chunk%d", uuid.New().String(), i),
			SourceTitle: title,
			Text:        piece,
			OwnerScope:  ownerScope,
		}
	}
	return chunks, nil
}

// addChunk writes one embedded chunk to the collection. Extra attributes let
// corpus files carry their path and content hash for re-scan bookkeeping.
func (s *DocumentIngestor) addChunk(ctx context.Context, chunk models.DocumentChunk, chunkNum int, extra ...*chromago.MetaAttribute) error {
	attrs := []*chromago.MetaAttribute{
		chromago.NewStringAttribute("source_title", chunk.SourceTitle),
		chromago.NewStringAttribute("owner_scope", chunk.OwnerScope),
		chromago.NewIntAttribute("chunk_num", int64(chunkNum)),
	}
	attrs = append(attrs, extra...)
	return s.collection.Add(ctx,
		chromago.WithIDs(chromago.DocumentID(chunk.ID)),
		chromago.WithTexts(chunk.Text),
		chromago.WithEmbeddings(embeddings.NewEmbeddingFromFloat32(chunk.Embedding)),
		chromago.WithMetadatas(chromago.NewDocumentMetadata(attrs...)),
	)
}

// indexState holds the content hash a corpus file had when it was indexed.
type indexState struct {
	Hash string
}

// ScanAndIndexDirectory syncs the corpus directory with the collection:
// new and changed files are (re-)indexed under the global scope, files that
// disappeared are removed.
func (s *DocumentIngestor) ScanAndIndexDirectory(ctx context.Context, dirPath string) {
	log.Printf("INDEXER: Starting corpus scan for: %s", dirPath)

	indexedFiles, err := s.getCurrentIndexState(ctx)
	if err != nil {
		log.Printf("INDEXER ERROR: Could not get current index state: %v", err)
		return
	}
	log.Printf("INDEXER: Found %d files currently in the index.", len(indexedFiles))

	localFiles := make(map[string]bool)
	err = filepath.Walk(dirPath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || !isSupportedFile(path) {
			return nil
		}
		localFiles[path] = true
		hash, err := calculateFileHash(path)
		if err != nil {
			log.Printf("INDEXER WARN: Could not hash file %s: %v", path, err)
			return nil
		}

		if state, ok := indexedFiles[path]; ok {
			if state.Hash == hash {
				return nil // unchanged
			}
			log.Printf("INDEXER: File has changed: %s. Re-indexing...", path)
			if err := s.deleteDocumentsByFilepath(ctx, path); err != nil {
				log.Printf("INDEXER ERROR: Failed to delete old version of %s: %v", path, err)
				return nil
			}
		}

		log.Printf("INDEXER: Indexing new/modified file: %s", path)
		if err := s.indexCorpusFile(ctx, path, hash); err != nil {
			log.Printf("INDEXER ERROR: Failed to process file %s: %v", path, err)
		}
		return nil
	})
	if err != nil {
		log.Printf("INDEXER ERROR: Error walking the path %s: %v", dirPath, err)
	}

	for path := range indexedFiles {
		if !localFiles[path] {
			log.Printf("INDEXER: File deleted: %s. Removing from index...", path)
			if err := s.deleteDocumentsByFilepath(ctx, path); err != nil {
				log.Printf("INDEXER ERROR: Failed to delete records for %s: %v", path, err)
			}
		}
	}
	log.Println("INDEXER: Corpus scan finished.")
}

// WatchDirectory keeps the index in sync with the corpus directory until the
// context is cancelled.
func (s *DocumentIngestor) WatchDirectory(ctx context.Context, dirPath string) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		log.Printf("WATCHER ERROR: Failed to create file watcher: %v", err)
		return
	}
	defer watcher.Close()

	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if !isSupportedFile(event.Name) {
					continue
				}

				// Editors often "write" by creating a temp file and renaming,
				// so Create and Write are handled the same way.
				if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
					log.Printf("WATCHER: File modified/created: %s. Re-indexing...", event.Name)
					hash, err := calculateFileHash(event.Name)
					if err != nil {
						log.Printf("WATCHER WARN: Could not hash file %s: %v", event.Name, err)
						continue
					}
					s.deleteDocumentsByFilepath(ctx, event.Name)
					if err := s.indexCorpusFile(ctx, event.Name, hash); err != nil {
						log.Printf("WATCHER ERROR: Failed to process file %s: %v", event.Name, err)
					}
				} else if event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
					log.Printf("WATCHER: File removed/renamed: %s. Removing from index...", event.Name)
					if err := s.deleteDocumentsByFilepath(ctx, event.Name); err != nil {
						log.Printf("WATCHER ERROR: Failed to delete records for %s: %v", event.Name, err)
					}
				}

			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Printf("WATCHER ERROR: %v", err)
			case <-ctx.Done():
				log.Println("WATCHER: Context cancelled, shutting down watcher.")
				return
			}
		}
	}()

	log.Printf("WATCHER: Watching corpus directory: %s", dirPath)
	if err := watcher.Add(dirPath); err != nil {
		log.Printf("WATCHER ERROR: Failed to add path to watcher: %v", err)
	}

	<-ctx.Done()
}

// indexCorpusFile extracts the text of a corpus file and ingests it under the
// global scope, tagging each chunk with the file path and hash so re-scans can
// skip unchanged files.
func (s *DocumentIngestor) indexCorpusFile(ctx context.Context, path, hash string) error {
	text, err := ExtractTextFromFile(path)
	if err != nil {
		return err
	}
	chunks, err := s.splitDocument(sourceTitleFromPath(path), text, models.OwnerScopeGlobal)
	if err != nil {
		return err
	}
	log.Printf("INDEXER: Split %s into %d chunks.", path, len(chunks))

	for i := range chunks {
		vector, err := s.embedder.Embed(ctx, chunks[i].Text)
		if err != nil {
			return fmt.Errorf("could not embed chunk %d of %s: %w", i, path, err)
		}
		chunks[i].Embedding = vector
		err = s.addChunk(ctx, chunks[i], i,
			chromago.NewStringAttribute("source_file", path),
			chromago.NewStringAttribute("file_hash", hash),
		)
		if err != nil {
			return fmt.Errorf("failed to add chunk %d of %s to chromadb: %w", i, path, err)
		}
	}
	return nil
}

func (s *DocumentIngestor) getCurrentIndexState(ctx context.Context) (map[string]indexState, error) {
	state := make(map[string]indexState)
	results, err := s.collection.Get(ctx)
	if err != nil {
		return nil, err
	}
	for _, meta := range results.GetMetadatas() {
		if meta == nil {
			continue
		}
		jsonBytes, err := json.Marshal(meta)
		if err != nil {
			continue
		}
		var metaMap map[string]interface{}
		if err := json.Unmarshal(jsonBytes, &metaMap); err != nil {
			continue
		}
		path, ok := metaMap["source_file"].(string)
		if !ok {
			continue
		}
		if hash, ok := metaMap["file_hash"].(string); ok {
			if _, exists := state[path]; !exists {
				state[path] = indexState{Hash: hash}
			}
		}
	}
	return state, nil
}

func (s *DocumentIngestor) deleteDocumentsByFilepath(ctx context.Context, path string) error {
	where := chromago.EqString("source_file", path)
	return s.collection.Delete(ctx, chromago.WithWhereDelete(where))
}

// sourceTitleFromPath turns "corpus/Codigo de Comercio.pdf" into
// "Codigo de Comercio".
func sourceTitleFromPath(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func isSupportedFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".txt", ".md", ".pdf":
		return true
	default:
		return false
	}
}

func calculateFileHash(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer file.Close()
	hash := sha256.New()
	if _, err := io.Copy(hash, file); err != nil {
		return "", err
	}
	return hex.EncodeToString(hash.Sum(nil)), nil
}
