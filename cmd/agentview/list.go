package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path"

	"github.com/milk9111/officeagent/assets"
	"github.com/milk9111/officeagent/internal/logging"
	"github.com/spf13/cobra"
)

var errInvalidAgents = errors.New("some agents have problems")

var listCmd = &cobra.Command{
	Use:   "list [agent...]",
	Short: "List agent packs",
	Long:  `Lists the agent packs found in the agents directory. With --check every pack is loaded and its definition validated.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadSettings(cmd)
		if err != nil {
			return err
		}
		check, _ := cmd.Flags().GetBool("check")
		cmd.SilenceUsage = true
		return runList(cmd.OutOrStdout(), assets.Open(cfg.AgentsDir), args, check)
	},
}

func init() {
	listCmd.Flags().Bool("check", false, "load and validate each agent")
	rootCmd.AddCommand(listCmd)
}

func runList(w io.Writer, fsys fs.FS, names []string, check bool) error {
	if len(names) == 0 {
		var err error
		names, err = assets.List(fsys)
		if err != nil {
			return err
		}
	}

	failed := false
	for _, name := range names {
		if !check {
			fmt.Fprintln(w, name)
			continue
		}
		a, err := assets.Load(fsys, name, logging.NewNop())
		if err != nil {
			failed = true
			fmt.Fprintf(w, "%s: %v\n", name, err)
			continue
		}
		if err := a.Library.Validate(); err != nil {
			failed = true
			fmt.Fprintf(w, "%s: %d animations, invalid:\n%v\n", name, len(a.Library.Animations), err)
			continue
		}
		sounds := "no sounds"
		if a.SoundFile != "" {
			sounds = fmt.Sprintf("%d sounds from %s", len(a.Sounds), path.Base(a.SoundFile))
		}
		fmt.Fprintf(w, "%s: %d animations, %s, ok\n", name, len(a.Library.Animations), sounds)
	}
	if failed {
		return errInvalidAgents
	}
	return nil
}
