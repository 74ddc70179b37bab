package library

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"
)

const numWorkers = 8

// ScanStats summarizes one scan.
type ScanStats struct {
	Added     int
	Updated   int
	Removed   int
	Unchanged int
}

type fileInfo struct {
	path  string
	mtime int64
}

type trackResult struct {
	path  string
	mtime int64
	tag   *fileTag
	isNew bool
}

// Scan walks the source directories and brings the index up to date. Files
// whose modification time is unchanged are skipped; indexed files no longer
// on disk are removed.
func (l *Library) Scan(sources []string, log zerolog.Logger) (*ScanStats, error) {
	files, onDisk := discoverFiles(sources)

	existing, err := l.existingTracks()
	if err != nil {
		return nil, err
	}

	stats := &ScanStats{}
	var toProcess []fileInfo
	isNew := make(map[string]bool)
	for _, f := range files {
		if mtime, ok := existing[f.path]; ok && mtime == f.mtime {
			stats.Unchanged++
			continue
		}
		_, existed := existing[f.path]
		isNew[f.path] = !existed
		toProcess = append(toProcess, f)
	}

	if len(toProcess) > 0 {
		l.processFiles(toProcess, isNew, stats, log)
	}

	for path := range existing {
		if _, ok := onDisk[path]; ok {
			continue
		}
		if err := l.deleteTrackByPath(path); err != nil {
			return nil, err
		}
		stats.Removed++
	}

	return stats, nil
}

// processFiles reads tags in parallel and writes rows sequentially; SQLite
// handles one writer at a time.
func (l *Library) processFiles(toProcess []fileInfo, isNew map[string]bool, stats *ScanStats, log zerolog.Logger) {
	workCh := make(chan fileInfo, len(toProcess))
	resultCh := make(chan trackResult, len(toProcess))

	var wg sync.WaitGroup
	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for f := range workCh {
				t, err := readTag(f.path)
				if err != nil {
					log.Debug().Err(err).Str("path", f.path).Msg("skipping unreadable file")
					continue
				}
				resultCh <- trackResult{path: f.path, mtime: f.mtime, tag: t, isNew: isNew[f.path]}
			}
		}()
	}

	go func() {
		for _, f := range toProcess {
			workCh <- f
		}
		close(workCh)
	}()

	go func() {
		wg.Wait()
		close(resultCh)
	}()

	for r := range resultCh {
		if err := l.upsertTrack(r.path, r.mtime, r.tag); err != nil {
			log.Error().Err(err).Str("path", r.path).Msg("failed to index track")
			continue
		}
		if r.isNew {
			stats.Added++
		} else {
			stats.Updated++
		}
	}
}

// discoverFiles walks the sources and returns every music file with its
// modification time. Unreadable entries are skipped.
func discoverFiles(sources []string) ([]fileInfo, map[string]struct{}) {
	var files []fileInfo
	for _, src := range sources {
		_ = filepath.WalkDir(src, func(path string, d os.DirEntry, walkErr error) error {
			if walkErr != nil || d.IsDir() || !IsMusicFile(path) {
				return nil
			}
			info, err := d.Info()
			if err != nil {
				return nil
			}
			files = append(files, fileInfo{path: path, mtime: info.ModTime().Unix()})
			return nil
		})
	}

	onDisk := make(map[string]struct{}, len(files))
	for _, f := range files {
		onDisk[f.path] = struct{}{}
	}
	return files, onDisk
}
