package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/spiffcs/vigil/internal/credential"
	"github.com/spiffcs/vigil/internal/log"
	"github.com/spiffcs/vigil/internal/state"
)

// NewCmdAuth creates the auth command with subcommands.
func NewCmdAuth() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage the GitHub credential",
		Long: `Stores the GitHub personal access token in the OS keyring. The
GITHUB_TOKEN environment variable, when set, takes precedence over the
keyring entry.`,
	}

	cmd.AddCommand(NewCmdAuthSetToken())
	cmd.AddCommand(NewCmdAuthDeleteToken())

	return cmd
}

// NewCmdAuthSetToken creates the auth set-token subcommand.
func NewCmdAuthSetToken() *cobra.Command {
	return &cobra.Command{
		Use:   "set-token",
		Short: "Store a GitHub token in the OS keyring",
		Long: `Reads a personal access token and stores it in the OS keyring.
The token is prompted for (without echo) on a terminal, or read from
stdin otherwise:

  echo "$TOKEN" | vigil auth set-token`,
		RunE: runAuthSetToken,
	}
}

// NewCmdAuthDeleteToken creates the auth delete-token subcommand.
func NewCmdAuthDeleteToken() *cobra.Command {
	return &cobra.Command{
		Use:   "delete-token",
		Short: "Remove the GitHub token from the OS keyring",
		RunE: func(_ *cobra.Command, _ []string) error {
			if err := credential.Delete(credential.KeyGitHubToken); err != nil {
				return fmt.Errorf("failed to delete token: %w", err)
			}
			fmt.Println("Token removed from the OS keyring.")
			invalidateState()
			return nil
		},
	}
}

func runAuthSetToken(_ *cobra.Command, _ []string) error {
	token, err := readToken()
	if err != nil {
		return err
	}
	if token == "" {
		return fmt.Errorf("empty token")
	}

	if err := credential.Set(credential.KeyGitHubToken, token); err != nil {
		return fmt.Errorf("failed to store token: %w", err)
	}
	fmt.Println("Token stored in the OS keyring.")

	invalidateState()
	return nil
}

// readToken reads the token without echo on a terminal, or a single line
// from stdin otherwise.
func readToken() (string, error) {
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		fmt.Print("GitHub personal access token: ")
		b, err := term.ReadPassword(fd)
		fmt.Println()
		if err != nil {
			return "", fmt.Errorf("failed to read token: %w", err)
		}
		return strings.TrimSpace(string(b)), nil
	}

	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("failed to read token from stdin: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// invalidateState resets the watch state after a credential change. The
// cached viewer identity follows the token, so it cannot be trusted
// across a token swap.
func invalidateState() {
	states, err := state.NewStore()
	if err != nil {
		log.Warn("could not reset watch state", "error", err)
		return
	}
	if err := states.Reset(); err != nil {
		log.Warn("could not reset watch state", "error", err)
		return
	}
	fmt.Println("Watch state reset; the next cycle starts a fresh window.")
}
