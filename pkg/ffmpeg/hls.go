package ffmpeg

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
)

const MasterPlaylist = "master.m3u8"

type Rendition struct {
	Width     int
	Height    int
	Bitrate   string // e.g., "800k"
	AudioRate string // e.g., "96k"
}

var renditions = []Rendition{
	{Width: 640, Height: 360, Bitrate: "800k", AudioRate: "96k"},
	{Width: 854, Height: 480, Bitrate: "1500k", AudioRate: "128k"},
	{Width: 1280, Height: 720, Bitrate: "3000k", AudioRate: "192k"},
}

// TranscodeHLS writes one variant playlist per rendition, an audio playlist and the
// master playlist into outputDir.
func (f *ffmpeg) TranscodeHLS(ctx context.Context, inputFilepath, outputDir string) error {
	if !f.IsAvailable(ctx) {
		return ErrUnavailable
	}

	args := hlsArgs(inputFilepath, outputDir, renditions)
	zerolog.Ctx(ctx).Debug().Str("args", strings.Join(args, " ")).Msg("executing ffmpeg")

	output, err := exec.CommandContext(ctx, f.cfg.FFmpegBinary, args...).CombinedOutput()
	if err != nil {
		zerolog.Ctx(ctx).Error().Str("output", tail(output)).Msg("ffmpeg transcode failed")
		return fmt.Errorf("ffmpeg execution failed: %w", err)
	}

	return writeMasterPlaylist(outputDir, renditions)
}

func hlsArgs(inputFilepath, outputDir string, rs []Rendition) []string {
	var filters []string
	for _, r := range rs {
		filters = append(filters, fmt.Sprintf(
			"[0:v]scale=w=%d:h=%d:force_original_aspect_ratio=decrease,pad=w=%d:h=%d:x=(ow-iw)/2:y=(oh-ih)/2[v%d]",
			r.Width, r.Height, r.Width, r.Height, r.Height))
	}

	args := []string{
		"-y",
		"-i", inputFilepath,
		"-filter_complex", strings.Join(filters, "; "),
	}

	for _, r := range rs {
		args = append(args,
			"-map", fmt.Sprintf("[v%d]", r.Height),
			"-c:v", "libx264",
			"-preset", "veryfast",
			"-crf", "22",
			"-b:v", r.Bitrate,
			"-maxrate", r.Bitrate,
			"-bufsize", r.Bitrate,
			"-f", "hls",
			"-hls_time", "6",
			"-hls_playlist_type", "vod",
			"-hls_segment_filename", filepath.Join(outputDir, fmt.Sprintf("%dp_%%03d.ts", r.Height)),
			filepath.Join(outputDir, fmt.Sprintf("%dp.m3u8", r.Height)),
		)
	}

	audioRate := "96k"
	if len(rs) > 0 {
		audioRate = rs[len(rs)-1].AudioRate
	}
	return append(args,
		"-map", "0:a:0?",
		"-c:a", "aac",
		"-b:a", audioRate,
		"-f", "hls",
		"-hls_time", "6",
		"-hls_playlist_type", "vod",
		"-hls_segment_filename", filepath.Join(outputDir, "audio_%03d.ts"),
		filepath.Join(outputDir, "audio.m3u8"),
	)
}

func writeMasterPlaylist(outputDir string, rs []Rendition) error {
	var b strings.Builder
	b.WriteString("#EXTM3U\n")
	b.WriteString("#EXT-X-VERSION:3\n\n")
	b.WriteString(`#EXT-X-MEDIA:TYPE=AUDIO,GROUP-ID="audio",NAME="Default",DEFAULT=YES,AUTOSELECT=YES,URI="audio.m3u8"` + "\n\n")

	for _, r := range rs {
		var videoKbps, audioKbps int
		fmt.Sscanf(r.Bitrate, "%dk", &videoKbps)
		fmt.Sscanf(r.AudioRate, "%dk", &audioKbps)

		fmt.Fprintf(&b, "#EXT-X-STREAM-INF:BANDWIDTH=%d,RESOLUTION=%dx%d,CODECS=\"avc1.640028,mp4a.40.2\",AUDIO=\"audio\"\n",
			(videoKbps+audioKbps)*1000, r.Width, r.Height)
		fmt.Fprintf(&b, "%dp.m3u8\n", r.Height)
	}

	return os.WriteFile(filepath.Join(outputDir, MasterPlaylist), []byte(b.String()), 0o644)
}
