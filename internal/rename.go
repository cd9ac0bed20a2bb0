package internal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"syscall"

	"github.com/cespare/xxhash/v2"

	"photoname/internal/library"
	"photoname/internal/sidecar"
	"photoname/internal/tags"
)

// ApplyOptions drives ApplyPlan. Every field but Out may be nil.
type ApplyOptions struct {
	DryRun  bool
	Out     io.Writer
	Session *RenameSession
	Errors  *ErrorStats
	Log     *Logger
	Metrics *Metrics
}

// ApplyPlan moves every record with a proposed name, together with its
// sidecar. Moved records get their new Path, SourceFile tag and Sidecar so
// the library can be saved afterwards; callers re-sort it first since paths
// changed. A dry run only prints what would happen.
func ApplyPlan(ctx context.Context, lib library.Library, opts ApplyOptions) (RenameStats, error) {
	if opts.Out == nil {
		opts.Out = io.Discard
	}
	if opts.Log == nil {
		opts.Log = Nop()
	}
	if opts.Errors == nil {
		opts.Errors = NewErrorStats(0)
	}

	planned := lib.Planned()
	stats := RenameStats{Planned: len(planned)}
	if opts.Session != nil {
		if err := opts.Session.LogSessionStart(len(planned)); err != nil {
			return stats, err
		}
	}

	// folder of the previous record, to print one header per folder
	prevDir := ""
	for _, r := range planned {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		if dir := filepath.Dir(r.ProposedName); dir != prevDir {
			fmt.Fprintf(opts.Out, "%s/\n", dir)
			prevDir = dir
		}

		if err := applyRecord(r, opts, &stats); err != nil {
			procErr := opts.Errors.Record(r.Path, err)
			procErr.Context["dest"] = r.ProposedName
			stats.Errors++
			opts.Metrics.IncRename("failed")
			opts.Log.LogError(procErr)
			if opts.Session != nil {
				if err := opts.Session.LogError(procErr); err != nil {
					return stats, err
				}
			}
			if abort, reason := opts.Errors.ShouldAbort(); abort {
				return stats, errors.New(reason)
			}
			continue
		}
		opts.Errors.ResetConsecutive()
	}

	if opts.Session != nil {
		if err := opts.Session.LogSessionEnd(); err != nil {
			return stats, err
		}
	}
	return stats, nil
}

func applyRecord(r *library.Record, opts ApplyOptions, stats *RenameStats) error {
	src, dest := r.Path, r.ProposedName

	if src == dest {
		fmt.Fprintf(opts.Out, "  = %s\n", filepath.Base(dest))
		stats.Unchanged++
		opts.Metrics.IncRename("unchanged")
		if opts.Session != nil {
			return opts.Session.LogUnchanged(src)
		}
		return nil
	}

	if opts.DryRun {
		fmt.Fprintf(opts.Out, "  [dry-run] %s -> %s\n", filepath.Base(src), filepath.Base(dest))
		if r.Sidecar != "" {
			fmt.Fprintf(opts.Out, "  [dry-run] %s -> %s\n", filepath.Base(r.Sidecar), filepath.Base(sidecar.Target(dest)))
		}
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", filepath.Dir(dest), err)
	}

	srcHash, err := fileHash(src)
	if err != nil {
		return fmt.Errorf("failed to hash %s: %w", src, err)
	}

	suffixed := false
	if _, err := os.Stat(dest); err == nil {
		destHash, err := fileHash(dest)
		if err != nil {
			return fmt.Errorf("failed to hash %s: %w", dest, err)
		}
		if srcHash == destHash {
			fmt.Fprintf(opts.Out, "  skipping duplicate %s (same as %s)\n", filepath.Base(src), filepath.Base(dest))
			stats.SkippedDuplicate++
			opts.Metrics.IncRename("duplicate")
			if opts.Session != nil {
				return opts.Session.LogSkippedDuplicate(src, dest, srcHash)
			}
			return nil
		}
		dest = safeMovePath(dest)
		suffixed = true
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to stat %s: %w", dest, err)
	}

	size, err := moveFile(src, dest, srcHash)
	if err != nil {
		return fmt.Errorf("failed to move %s to %s: %w", src, dest, err)
	}
	fmt.Fprintf(opts.Out, "  %s -> %s\n", filepath.Base(src), filepath.Base(dest))

	r.Path = dest
	r.ProposedName = dest
	if r.Tags == nil {
		r.Tags = make(tags.Dict)
	}
	r.Tags[tags.SourceFile] = dest
	stats.Moved++
	result := "moved"
	if suffixed {
		stats.Suffixed++
		result = "suffixed"
	}
	opts.Metrics.IncRename(result)
	if opts.Session != nil {
		if err := opts.Session.LogMoved(src, dest, srcHash, size, suffixed); err != nil {
			return err
		}
	}

	if r.Sidecar == "" {
		return nil
	}
	carSrc, carDest := r.Sidecar, sidecar.Target(dest)
	if _, err := os.Stat(carDest); err == nil {
		carDest = safeMovePath(carDest)
	}
	carHash, err := fileHash(carSrc)
	if err != nil {
		return fmt.Errorf("failed to hash sidecar %s: %w", carSrc, err)
	}
	if _, err := moveFile(carSrc, carDest, carHash); err != nil {
		return fmt.Errorf("failed to move sidecar %s to %s: %w", carSrc, carDest, err)
	}
	r.Sidecar = carDest
	stats.Sidecars++
	if opts.Session != nil {
		return opts.Session.LogSidecar(carSrc, carDest)
	}
	return nil
}

// fileHash computes the xxhash of a file content.
func fileHash(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := xxhash.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return strconv.FormatUint(h.Sum64(), 16), nil
}

// safeMovePath generates a free path by appending _2, _3... to the stem.
func safeMovePath(dest string) string {
	ext := filepath.Ext(dest)
	base := dest[:len(dest)-len(ext)]
	for i := 2; ; i++ {
		try := fmt.Sprintf("%s_%d%s", base, i, ext)
		if _, err := os.Lstat(try); os.IsNotExist(err) {
			return try
		}
	}
}

// moveFile renames src to dest. Across devices it copies to a temp file,
// checks the copy against hash, renames it into place and removes src.
func moveFile(src, dest, hash string) (int64, error) {
	fi, err := os.Stat(src)
	if err != nil {
		return 0, err
	}

	err = os.Rename(src, dest)
	if err == nil {
		return fi.Size(), nil
	}
	if !errors.Is(err, syscall.EXDEV) {
		return 0, err
	}

	if err := copyFileAtomic(src, dest, fi.Mode().Perm()); err != nil {
		return 0, err
	}
	got, err := fileHash(dest)
	if err != nil {
		return 0, err
	}
	if got != hash {
		os.Remove(dest)
		return 0, fmt.Errorf("hash mismatch after copy: %s != %s", got, hash)
	}
	if err := os.Chtimes(dest, fi.ModTime(), fi.ModTime()); err != nil {
		return 0, err
	}
	return fi.Size(), os.Remove(src)
}

// copyFileAtomic copies a file atomically (copy temp → rename)
func copyFileAtomic(src, dest string, perm os.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.CreateTemp(filepath.Dir(dest), "."+filepath.Base(dest)+".*.tmp")
	if err != nil {
		return err
	}
	tmp := out.Name()

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(tmp)
		return err
	}
	if err := out.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	if err := os.Chmod(tmp, perm); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, dest)
}
