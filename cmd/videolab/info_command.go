package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"videolab/internal/config"
	"videolab/internal/media/ffprobe"
)

func newInfoCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "info <video>",
		Short: "Inspect a video source with ffprobe",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			path, err := config.ExpandPath(args[0])
			if err != nil {
				return err
			}

			result, err := ffprobe.Inspect(cmd.Context(), cfg.FFprobeBinary(), path)
			if err != nil {
				return err
			}
			if asJSON {
				_, err := cmd.OutOrStdout().Write(append(result.RawJSON(), '\n'))
				return err
			}

			info, err := result.VideoInfo(cfg.Playback.FallbackFPS)
			if err != nil {
				return err
			}

			rows := [][]string{
				{"File", path},
				{"Container", result.Format.FormatName},
				{"Duration", formatDuration(info.Duration)},
				{"Size", formatSize(result.SizeBytes())},
				{"Bit rate", formatBitRate(result.BitRate())},
				{"Video codec", info.Codec},
				{"Resolution", fmt.Sprintf("%dx%d", info.Width, info.Height)},
				{"Frame rate", fmt.Sprintf("%.3f fps", info.FPS)},
				{"Frames", strconv.Itoa(info.FrameCount)},
				{"Video streams", strconv.Itoa(result.VideoStreamCount())},
				{"Audio streams", strconv.Itoa(result.AudioStreamCount())},
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Field", "Value"},
				rows,
				[]columnAlignment{alignLeft, alignLeft},
			))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print raw ffprobe JSON")
	return cmd
}

func formatDuration(d time.Duration) string {
	if d <= 0 {
		return "unknown"
	}
	d = d.Round(time.Millisecond)
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	seconds := d.Seconds() - float64(hours*3600+minutes*60)
	if hours > 0 {
		return fmt.Sprintf("%d:%02d:%06.3f", hours, minutes, seconds)
	}
	return fmt.Sprintf("%d:%06.3f", minutes, seconds)
}

func formatSize(bytes int64) string {
	if bytes <= 0 {
		return "unknown"
	}
	return humanize.IBytes(uint64(bytes))
}

func formatBitRate(bitsPerSecond int64) string {
	if bitsPerSecond <= 0 {
		return "unknown"
	}
	return fmt.Sprintf("%s/s", humanize.SI(float64(bitsPerSecond), "b"))
}
