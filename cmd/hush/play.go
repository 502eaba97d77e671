package main

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"pipelined.dev/hush"
	"pipelined.dev/hush/input"
	"pipelined.dev/hush/log"
	"pipelined.dev/hush/metric"
	"pipelined.dev/hush/portaudio"
	"pipelined.dev/hush/session"
)

func newPlayCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "play [FREQUENCY [RADIUS]]",
		Short: "Play startup tone and then notched noise",
		Long: `Play renders a quiet tone at FREQUENCY during the startup threshold and
white noise without the band of RADIUS Hz around FREQUENCY afterwards.
RADIUS defaults to 50. Flags can be set with HUSH_* environment
variables, e.g. HUSH_THRESHOLD=5s.`,
		Args: cobra.MaximumNArgs(2),
		RunE: runPlay,
	}
	addPlayFlags(cmd)
	return cmd
}

func runPlay(cmd *cobra.Command, args []string) error {
	v, err := newConfig(cmd.Flags())
	if err != nil {
		return err
	}
	c, err := loadPlayConfig(v, args)
	if err != nil {
		return err
	}
	startup, sustained, err := c.graphs()
	if err != nil {
		return err
	}

	logger := log.GetLogger()
	control := hush.NewControl(c.loudness)
	options := []hush.Option{
		hush.WithControl(control),
		hush.WithThreshold(c.threshold),
	}
	if sustained != nil {
		options = append(options, hush.WithSustained(sustained))
	}
	e, err := hush.New(startup, options...)
	if err != nil {
		return err
	}
	logger.WithFields(logrus.Fields{
		"startup":   startup,
		"sustained": sustained,
		"threshold": c.threshold,
	}).Debug("graphs compiled")

	stream, err := portaudio.Open(e,
		portaudio.WithFormat(c.format),
		portaudio.WithChannels(c.channels),
		portaudio.WithBufferSize(c.buffer),
		portaudio.WithSeed(c.seed),
	)
	if err != nil {
		return fmt.Errorf("open output: %w", err)
	}
	logger.WithField("seed", c.seed).Infof("output %v", stream.Config)
	logger.Info("up and down change loudness, space, escape or ctrl-c quit")

	s := session.New(stream, input.NewKeyboard(), control,
		session.WithLogger(logger),
		session.WithStatus(input.NewStatus(cmd.ErrOrStderr())),
	)
	err = s.Run(cmd.Context())
	logMetrics(logger.WithField("session", s.ID()))
	return err
}

func logMetrics(l logrus.FieldLogger) {
	for component, counters := range metric.GetAll() {
		fields := make(logrus.Fields, len(counters))
		for k, v := range counters {
			fields[k] = v
		}
		l.WithField("component", component).WithFields(fields).Debug("metrics")
	}
}
