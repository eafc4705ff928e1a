package cli

import (
	"github.com/spf13/cobra"

	"github.com/fritkotgp/raceapi/internal/api/response"
)

func newTeamsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "teams",
		Short: "List teams",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result []response.Team

			if err := client.Get(cmd.Context(), "/teams", &result); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}
}

func newTracksCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tracks",
		Short: "List tracks",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result []response.Track

			if err := client.Get(cmd.Context(), "/tracks", &result); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}
}
