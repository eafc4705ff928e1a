package cli

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/fritkotgp/raceapi/internal/api/response"
)

func newRaceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "race",
		Short: "Lap simulation and result commands",
	}

	cmd.AddCommand(newRaceSimulateCmd())
	cmd.AddCommand(newRaceListCmd())
	cmd.AddCommand(newRaceGetCmd())
	cmd.AddCommand(newRaceDeleteCmd())

	return cmd
}

func newRaceSimulateCmd() *cobra.Command {
	var team, track string
	var save bool

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Simulate a lap, optionally keeping it as your best",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]any{
				"teamId":  team,
				"trackId": track,
				"save":    save,
			}
			var result SimulateResult

			if err := client.Post(cmd.Context(), "/races/simulate", req, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&team, "team", "", "Team id (required)")
	cmd.Flags().StringVar(&track, "track", "", "Track id (required)")
	cmd.Flags().BoolVar(&save, "save", false, "Store the lap if it beats your best")
	_ = cmd.MarkFlagRequired("team")
	_ = cmd.MarkFlagRequired("track")

	return cmd
}

func newRaceListCmd() *cobra.Command {
	var sortBy string
	var limit, offset int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List your stored results",
		RunE: func(cmd *cobra.Command, args []string) error {
			query := url.Values{}
			if sortBy != "" {
				query.Set("sortBy", sortBy)
			}
			if cmd.Flags().Changed("limit") {
				query.Set("limit", strconv.Itoa(limit))
			}
			if cmd.Flags().Changed("offset") {
				query.Set("offset", strconv.Itoa(offset))
			}

			path := "/races"
			if len(query) > 0 {
				path += "?" + query.Encode()
			}

			var result response.ResultsPage
			if err := client.Get(cmd.Context(), path, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&sortBy, "sort", "", "Sort order: latest, fastest")
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of results")
	cmd.Flags().IntVar(&offset, "offset", 0, "Number of results to skip")

	return cmd
}

func newRaceGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show one of your results",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.RaceResult

			if err := client.Get(cmd.Context(), fmt.Sprintf("/races/%s", url.PathEscape(args[0])), &result); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}
}

func newRaceDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete one of your results",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.DeletedResponse

			if err := client.Delete(cmd.Context(), fmt.Sprintf("/races/%s", url.PathEscape(args[0])), &result); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}
}
