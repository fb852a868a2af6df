package main

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/milk9111/officeagent/config"
	"github.com/spf13/cobra"
)

var playCmd = &cobra.Command{
	Use:   "play [agent]",
	Short: "Open a window and play an agent",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := loadSettings(cmd)
		if err != nil {
			return err
		}
		if len(args) == 1 {
			cfg.Agent = args[0]
		}
		applyPlayFlags(cmd, &cfg)
		cmd.SilenceUsage = true

		ebiten.SetWindowSize(screenWidth*2, screenHeight*2)
		ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
		ebiten.SetWindowTitle("agentview - " + cfg.Agent)

		game, err := NewGame(cfg, log)
		if err != nil {
			return err
		}
		defer game.Close()
		return ebiten.RunGame(game)
	},
}

func init() {
	playCmd.Flags().String("script", "", "tengo script choosing the next animation")
	playCmd.Flags().Uint64("seed", 0, "random seed, 0 picks one")
	playCmd.Flags().Float64("scale", 0, "sprite scale")
	playCmd.Flags().Float64("volume", -1, "sound volume between 0 and 1")
	playCmd.Flags().Bool("no-watch", false, "do not reload when agent files change")
	rootCmd.AddCommand(playCmd)
}

func applyPlayFlags(cmd *cobra.Command, cfg *config.Viewer) {
	flags := cmd.Flags()
	if flags.Changed("script") {
		cfg.Script, _ = flags.GetString("script")
	}
	if flags.Changed("seed") {
		cfg.Seed, _ = flags.GetUint64("seed")
	}
	if flags.Changed("scale") {
		cfg.Scale, _ = flags.GetFloat64("scale")
	}
	if flags.Changed("volume") {
		cfg.Volume, _ = flags.GetFloat64("volume")
	}
	if noWatch, _ := flags.GetBool("no-watch"); noWatch {
		cfg.Watch = false
	}
	cfg.Normalize()
}
