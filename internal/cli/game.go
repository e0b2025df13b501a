package cli

import (
	"errors"
	"fmt"
	"net/url"

	"github.com/spf13/cobra"
)

var errNoUser = errors.New("a user id is required: pass --user or --as")

func newGameCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "game",
		Short: "Game session commands",
	}

	cmd.AddCommand(newGameCreateCmd())
	cmd.AddCommand(newGameGetCmd())
	cmd.AddCommand(newGameJoinCmd())
	cmd.AddCommand(newGameTeamCmd())
	cmd.AddCommand(newGameStartCmd())
	cmd.AddCommand(newGameEndCmd())
	cmd.AddCommand(newGameStateCmd())
	cmd.AddCommand(newGameTeamsCmd())
	cmd.AddCommand(newGameStatsCmd())
	cmd.AddCommand(newGameDeleteCmd())
	cmd.AddCommand(newGameReconnectCmd())

	return cmd
}

// userFor returns the explicit --user value, falling back to the acting user
func userFor(flag string) (string, error) {
	if flag != "" {
		return flag, nil
	}
	if cfg.UserID != "" {
		return cfg.UserID, nil
	}
	return "", errNoUser
}

func gamePath(id string, suffix string) string {
	return fmt.Sprintf("/api/v1/games/%s%s", url.PathEscape(id), suffix)
}

func newGameCreateCmd() *cobra.Command {
	var (
		user     string
		password string
		location string
		name     string
		public   bool
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new game hosted by the user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			host, err := userFor(user)
			if err != nil {
				return err
			}

			body := map[string]any{
				"userId":       host,
				"gamePassword": password,
				"location":     location,
				"isPublic":     public,
				"gameName":     name,
			}

			var result CreateResult
			if err := client.Post("/api/v1/games", body, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&user, "user", "", "Host user id (defaults to --as)")
	cmd.Flags().StringVar(&password, "password", "", "Join password")
	cmd.Flags().StringVar(&location, "location", "", "Game location")
	cmd.Flags().StringVar(&name, "name", "", "Game name")
	cmd.Flags().BoolVar(&public, "public", false, "List the game publicly")

	return cmd
}

func newGameGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <game-id>",
		Short: "Show a game",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result GameResult

			if err := client.Get(gamePath(args[0], ""), &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.Print(result)
			return nil
		},
	}
}

func newGameJoinCmd() *cobra.Command {
	var (
		user     string
		password string
	)

	cmd := &cobra.Command{
		Use:   "join <game-code>",
		Short: "Join a game by its code",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := userFor(user)
			if err != nil {
				return err
			}

			body := map[string]any{
				"userId":       id,
				"gameCode":     args[0],
				"gamePassword": password,
			}

			var result JoinResult
			if err := client.Post("/api/v1/games/join", body, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&user, "user", "", "Joining user id (defaults to --as)")
	cmd.Flags().StringVar(&password, "password", "", "Join password")

	return cmd
}

func newGameTeamCmd() *cobra.Command {
	var user string

	cmd := &cobra.Command{
		Use:   "team <game-id> <red|blue>",
		Short: "Put the user on a team",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := userFor(user)
			if err != nil {
				return err
			}

			body := map[string]any{"userId": id, "team": args[1]}

			var result StatusResult
			if err := client.Post(gamePath(args[0], "/team"), body, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&user, "user", "", "User id (defaults to --as)")

	return cmd
}

func newGameStartCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "start <game-id>",
		Short: "Start a game",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result StatusResult

			if err := client.Post(gamePath(args[0], "/start"), nil, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.Print(result)
			return nil
		},
	}
}

// scoreFlags binds the flags shared by end and state
type scoreFlags struct {
	gameTime int
	red      int
	blue     int
}

func (f *scoreFlags) bind(cmd *cobra.Command) {
	cmd.Flags().IntVar(&f.gameTime, "time", 0, "Elapsed game time in seconds")
	cmd.Flags().IntVar(&f.red, "red", 0, "Team red score")
	cmd.Flags().IntVar(&f.blue, "blue", 0, "Team blue score")
}

func (f *scoreFlags) body() map[string]int {
	return map[string]int{
		"gameTime":       f.gameTime,
		"teamRedScores":  f.red,
		"teamBlueScores": f.blue,
	}
}

func newGameEndCmd() *cobra.Command {
	var score scoreFlags

	cmd := &cobra.Command{
		Use:   "end <game-id>",
		Short: "End a game with its final score",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result EndResult

			if err := client.Post(gamePath(args[0], "/end"), score.body(), &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.Print(result)
			return nil
		},
	}
	score.bind(cmd)

	return cmd
}

func newGameStateCmd() *cobra.Command {
	var score scoreFlags

	cmd := &cobra.Command{
		Use:   "state <game-id>",
		Short: "Update a game's time and scores",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result StatusResult

			if err := client.Put(gamePath(args[0], "/state"), score.body(), &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.Print(result)
			return nil
		},
	}
	score.bind(cmd)

	return cmd
}

func newGameTeamsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "teams <game-id>",
		Short: "List team members",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result TeamsResult

			if err := client.Get(gamePath(args[0], "/teams"), &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.Print(result)
			return nil
		},
	}
}

func newGameStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats <game-id>",
		Short: "Show the scoreboard",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result StatsResult

			if err := client.Get(gamePath(args[0], "/stats"), &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.Print(result)
			return nil
		},
	}
}

func newGameDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <game-id>",
		Short: "Delete a game",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result StatusResult

			if err := client.Delete(gamePath(args[0], ""), &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.Print(result)
			return nil
		},
	}
}

func newGameReconnectCmd() *cobra.Command {
	var user string

	cmd := &cobra.Command{
		Use:   "reconnect <game-id>",
		Short: "Check whether the user may rejoin a game",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := userFor(user)
			if err != nil {
				return err
			}

			var result ReconnectResult
			if err := client.Get(gamePath(args[0], "/reconnect/"+url.PathEscape(id)), &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&user, "user", "", "User id (defaults to --as)")

	return cmd
}
