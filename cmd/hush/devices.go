package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"pipelined.dev/hush/portaudio"
	"pipelined.dev/hush/signal"
)

func newDevicesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "devices",
		Short: "Show the default output device and its negotiated format",
		Args:  cobra.NoArgs,
		RunE:  runDevices,
	}
	cmd.Flags().String("format", signal.Float32.String(), "sample format (f32|i16|u16)")
	cmd.Flags().Int("channels", 0, "output channels, 0 for stereo if available")
	cmd.Flags().Int("buffer", portaudio.DefaultBufferSize, "frames per buffer")
	return cmd
}

func runDevices(cmd *cobra.Command, _ []string) error {
	v, err := newConfig(cmd.Flags())
	if err != nil {
		return err
	}
	format, err := signal.ParseFormat(v.GetString("format"))
	if err != nil {
		return err
	}
	c, err := portaudio.Describe(
		portaudio.WithFormat(format),
		portaudio.WithChannels(v.GetInt("channels")),
		portaudio.WithBufferSize(v.GetInt("buffer")),
	)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), c)
	return nil
}
