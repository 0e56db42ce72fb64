package ffmpeg

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

var (
	ErrUnavailable = errors.New("ffmpeg is not available")
	ErrDecode      = errors.New("could not decode video")
)

const (
	ThumbnailWidth  = 1280
	ThumbnailHeight = 720
)

// Extractor pulls still frames and metadata out of raw video bytes.
type Extractor interface {
	IsAvailable(ctx context.Context) bool
	ExtractFirstFrame(ctx context.Context, video []byte) ([]byte, error)
	ProbeDuration(ctx context.Context, video []byte) (int, error)
	TranscodeHLS(ctx context.Context, inputFilepath, outputDir string) error
}

type Config struct {
	FFmpegBinary  string
	FFprobeBinary string
	TempDir       string
	// ThumbnailAt is the seek position of the thumbnail frame, e.g. "00:00:01".
	ThumbnailAt string
}

type ffmpeg struct {
	cfg Config

	once      sync.Once
	available bool
}

func New(cfg Config) Extractor {
	if cfg.FFmpegBinary == "" {
		cfg.FFmpegBinary = "ffmpeg"
	}
	if cfg.FFprobeBinary == "" {
		cfg.FFprobeBinary = "ffprobe"
	}
	if cfg.ThumbnailAt == "" {
		cfg.ThumbnailAt = "00:00:01"
	}
	if cfg.TempDir == "" {
		cfg.TempDir = os.TempDir()
	}
	return &ffmpeg{cfg: cfg}
}

// IsAvailable looks the binary up once and caches the answer.
func (f *ffmpeg) IsAvailable(ctx context.Context) bool {
	f.once.Do(func() {
		path, err := exec.LookPath(f.cfg.FFmpegBinary)
		if err != nil {
			zerolog.Ctx(ctx).Warn().Err(err).Msg("ffmpeg not found; thumbnails fall back to placeholder")
			return
		}
		zerolog.Ctx(ctx).Debug().Str("path", path).Msg("ffmpeg found")
		f.available = true
	})
	return f.available
}

// ExtractFirstFrame returns a JPEG of the frame at the configured position, scaled and
// padded to 1280x720. Clips shorter than that position fall back to the first frame.
func (f *ffmpeg) ExtractFirstFrame(ctx context.Context, video []byte) ([]byte, error) {
	if !f.IsAvailable(ctx) {
		return nil, ErrUnavailable
	}

	workDir, err := os.MkdirTemp(f.cfg.TempDir, "thumb-*")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(workDir)

	input := filepath.Join(workDir, "input")
	if err := os.WriteFile(input, video, 0o600); err != nil {
		return nil, err
	}
	output := filepath.Join(workDir, "thumbnail.jpg")

	return f.firstFrame(ctx, input, output, f.grabFrame)
}

// firstFrame tries each seek position in turn. A seek past the end of a short clip may
// either fail or produce nothing; both move on to the next position.
func (f *ffmpeg) firstFrame(ctx context.Context, input, output string, grab func(ctx context.Context, input, output, at string) error) ([]byte, error) {
	lastErr := fmt.Errorf("%w: no frame produced", ErrDecode)
	for _, at := range []string{f.cfg.ThumbnailAt, "0"} {
		if err := grab(ctx, input, output, at); err != nil {
			if !errors.Is(err, ErrDecode) {
				return nil, err
			}
			lastErr = err
			continue
		}
		frame, err := os.ReadFile(output)
		if err == nil && len(frame) > 0 {
			return frame, nil
		}
	}
	return nil, lastErr
}

func (f *ffmpeg) grabFrame(ctx context.Context, input, output, at string) error {
	scale := fmt.Sprintf("scale=w=%d:h=%d:force_original_aspect_ratio=decrease,pad=w=%d:h=%d:x=(ow-iw)/2:y=(oh-ih)/2",
		ThumbnailWidth, ThumbnailHeight, ThumbnailWidth, ThumbnailHeight)
	args := []string{
		"-y",
		"-ss", at,
		"-i", input,
		"-frames:v", "1",
		"-vf", scale,
		"-q:v", "2",
		output,
	}

	out, err := exec.CommandContext(ctx, f.cfg.FFmpegBinary, args...).CombinedOutput()
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		zerolog.Ctx(ctx).Debug().Str("output", tail(out)).Msg("ffmpeg frame extraction failed")
		return fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return nil
}

// ProbeDuration returns the container duration in whole seconds.
func (f *ffmpeg) ProbeDuration(ctx context.Context, video []byte) (int, error) {
	if _, err := exec.LookPath(f.cfg.FFprobeBinary); err != nil {
		return 0, ErrUnavailable
	}

	file, err := os.CreateTemp(f.cfg.TempDir, "probe-*")
	if err != nil {
		return 0, err
	}
	defer os.Remove(file.Name())
	if _, err := file.Write(video); err != nil {
		file.Close()
		return 0, err
	}
	if err := file.Close(); err != nil {
		return 0, err
	}

	var stdout bytes.Buffer
	cmd := exec.CommandContext(ctx, f.cfg.FFprobeBinary,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		file.Name(),
	)
	cmd.Stdout = &stdout
	if err := cmd.Run(); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	return parseDuration(stdout.String())
}

func parseDuration(raw string) (int, error) {
	seconds, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: duration %q", ErrDecode, strings.TrimSpace(raw))
	}
	if seconds < 0 {
		return 0, nil
	}
	return int(seconds + 0.5), nil
}

func tail(out []byte) string {
	const max = 2048
	if len(out) > max {
		out = out[len(out)-max:]
	}
	return string(out)
}
