package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/spiffcs/vigil/config"
	"github.com/spiffcs/vigil/internal/constants"
)

// NewCmdConfig creates the config command with subcommands.
func NewCmdConfig() *cobra.Command {
	var outputFormat string

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or manage configuration",
		Long: `Show or manage configuration.

When run without arguments, shows the current merged configuration.

Subcommands:
  init  Create a config file (interactive on a terminal)
  path  Show config file locations
  show  Show current merged config (same as bare 'vigil config')
  set   Set a configuration value`,
		RunE: func(_ *cobra.Command, _ []string) error {
			return runConfigShow(outputFormat)
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "output", "o", "yaml", "Output format (yaml, json)")

	cmd.AddCommand(NewCmdConfigInit())
	cmd.AddCommand(NewCmdConfigPath())
	cmd.AddCommand(NewCmdConfigShow())
	cmd.AddCommand(NewCmdConfigSet())

	return cmd
}

// NewCmdConfigInit creates the config init subcommand.
func NewCmdConfigInit() *cobra.Command {
	var global, local bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a config file",
		Long: `Create a config file. On a terminal this walks through the
repositories to watch, the poll interval, and the notification kinds;
otherwise a commented starter template is written.

Use --global to create in ` + config.ConfigPath() + ` (applies everywhere)
Use --local to create in ./` + config.LocalConfigPath() + ` (applies only in this directory)
Without flags, you'll be asked to choose.`,
		RunE: func(_ *cobra.Command, _ []string) error {
			return runConfigInit(global, local)
		},
	}

	cmd.Flags().BoolVar(&global, "global", false, "Create the global config file")
	cmd.Flags().BoolVar(&local, "local", false, "Create a local config file in this directory")

	return cmd
}

// NewCmdConfigPath creates the config path subcommand.
func NewCmdConfigPath() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Show config file locations",
		Long:  `Show the paths to global and local config files and indicate which exist.`,
		RunE:  runConfigPath,
	}
}

// NewCmdConfigShow creates the config show subcommand.
func NewCmdConfigShow() *cobra.Command {
	var outputFormat string

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show current merged configuration",
		Long:  `Show the current configuration after merging defaults, global, and local configs.`,
		RunE: func(_ *cobra.Command, _ []string) error {
			return runConfigShow(outputFormat)
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "output", "o", "yaml", "Output format (yaml, json)")

	return cmd
}

// NewCmdConfigSet creates the config set subcommand.
func NewCmdConfigSet() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Long: `Set a value in the global config file. Available keys:
  format    Default output format (table, json, markdown)
  interval  Minutes between watch cycles
  listen    Address for the local notification API ("" disables it)`,
		Args: cobra.ExactArgs(2),
		RunE: runConfigSet,
	}
}

func runConfigInit(global, local bool) error {
	if global && local {
		return fmt.Errorf("cannot specify both --global and --local")
	}

	paths := config.GetConfigPaths()
	targetPath := ""
	if global {
		targetPath = paths.GlobalPath
	}
	if local {
		targetPath = paths.LocalPath
	}

	// Without a terminal there is nobody to walk through the form; write
	// the commented starter template instead.
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		if targetPath == "" {
			targetPath = paths.GlobalPath
		}
		if err := checkNotExists(targetPath); err != nil {
			return err
		}
		if err := config.SaveTo(targetPath, config.MinimalConfig()); err != nil {
			return err
		}
		fmt.Printf("Created config file: %s\n", targetPath)
		fmt.Println("Edit it to set the repositories to watch.")
		return nil
	}

	cfg, err := configForm(paths, &targetPath)
	if err != nil {
		return err
	}
	if err := checkNotExists(targetPath); err != nil {
		return err
	}

	yamlStr, err := cfg.ToYAML()
	if err != nil {
		return err
	}
	if err := config.SaveTo(targetPath, yamlStr); err != nil {
		return err
	}

	fmt.Printf("Created config file: %s\n\n", targetPath)
	fmt.Println("Store a token with \"vigil auth set-token\", then try \"vigil poll\".")
	return nil
}

// configForm walks through the interactive setup and returns the config
// to write. targetPath is filled in when no destination flag was given.
func configForm(paths config.ConfigPathInfo, targetPath *string) (*config.Config, error) {
	reposStr := ""
	interval := strconv.Itoa(int(constants.DefaultPollInterval.Minutes()))
	flags := config.DefaultNotifyFlags()

	var groups []*huh.Group

	if *targetPath == "" {
		groups = append(groups, huh.NewGroup(
			huh.NewSelect[string]().
				Title("Where should the config live?").
				Options(
					huh.NewOption("Global: "+paths.GlobalPath, paths.GlobalPath),
					huh.NewOption("Local: "+paths.LocalPath, paths.LocalPath),
				).
				Value(targetPath),
		))
	}

	groups = append(groups, huh.NewGroup(
		huh.NewInput().
			Title("Repositories to watch").
			Description("Comma-separated owner/name list").
			Placeholder("golang/go, charmbracelet/bubbletea").
			Value(&reposStr).
			Validate(validateRepos),
		huh.NewInput().
			Title("Minutes between watch cycles").
			Value(&interval).
			Validate(validateMinutes),
		huh.NewConfirm().
			Title("Notify on new issues and pull requests?").
			Value(&flags.NewItems),
		huh.NewConfirm().
			Title("Notify on mentions?").
			Value(&flags.Mentions),
		huh.NewConfirm().
			Title("Notify on replies in review threads that mention you?").
			Value(&flags.MentionThreads),
		huh.NewConfirm().
			Title("Notify on activity in items assigned to you?").
			Value(&flags.Assigned),
	))

	if err := huh.NewForm(groups...).Run(); err != nil {
		return nil, err
	}

	minutes, err := strconv.Atoi(strings.TrimSpace(interval))
	if err != nil {
		return nil, fmt.Errorf("invalid interval: %w", err)
	}

	return &config.Config{
		Repos:               splitRepos(reposStr),
		PollIntervalMinutes: minutes,
		DefaultFormat:       "table",
		Notify:              notifyOverrides(flags),
	}, nil
}

func runConfigPath(_ *cobra.Command, _ []string) error {
	paths := config.GetConfigPaths()

	fmt.Println("Configuration file locations:")
	fmt.Println()

	globalStatus := "not found"
	if paths.GlobalExists {
		globalStatus = "exists"
	}
	fmt.Printf("  Global: %s (%s)\n", paths.GlobalPath, globalStatus)

	localStatus := "not found"
	if paths.LocalExists {
		localStatus = "exists"
	}
	fmt.Printf("  Local:  %s (%s)\n", paths.LocalPath, localStatus)

	fmt.Println()
	fmt.Println("Load order: defaults -> global -> local (local overrides global)")

	return nil
}

func runConfigShow(format string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	switch format {
	case "yaml":
		yamlStr, err := cfg.ToYAML()
		if err != nil {
			return err
		}
		fmt.Print(yamlStr)
	case "json":
		data, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal config to JSON: %w", err)
		}
		fmt.Println(string(data))
	default:
		return fmt.Errorf("invalid format: %s (must be yaml or json)", format)
	}

	return nil
}

func runConfigSet(_ *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	key, value := args[0], args[1]
	var msg string

	switch key {
	case "token":
		return fmt.Errorf("tokens do not live in config files; run \"vigil auth set-token\" or set GITHUB_TOKEN")
	case "format":
		switch value {
		case "table", "json", "markdown":
		default:
			return fmt.Errorf("invalid format: %s (must be table, json or markdown)", value)
		}
		cfg.DefaultFormat = value
		msg = fmt.Sprintf("Default format set to %s.", value)
	case "interval":
		n, err := strconv.Atoi(value)
		if err != nil || n <= 0 {
			return fmt.Errorf("invalid interval: %s (must be a positive minute count)", value)
		}
		cfg.PollIntervalMinutes = n
		msg = fmt.Sprintf("Poll interval set to %d minutes.", n)
	case "listen":
		cfg.ListenAddr = value
		if value == "" {
			msg = "Local notification API disabled."
		} else {
			msg = fmt.Sprintf("Local notification API address set to %s.", value)
		}
	default:
		return fmt.Errorf("unknown config key: %s", key)
	}

	if err := cfg.Save(); err != nil {
		return err
	}
	fmt.Println(msg)
	return nil
}

// checkNotExists guards config init against clobbering an existing file.
func checkNotExists(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists: %s\nUse 'vigil config show' to view the current config", path)
	}
	return nil
}

// splitRepos parses a comma-separated owner/name list.
func splitRepos(s string) []string {
	var repos []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			repos = append(repos, part)
		}
	}
	return repos
}

// notifyOverrides returns the config section for the chosen kind toggles,
// or nil when everything stays at the default (all enabled).
func notifyOverrides(flags config.NotifyFlags) *config.NotifyOverrides {
	if flags == config.DefaultNotifyFlags() {
		return nil
	}
	return &config.NotifyOverrides{
		NewItems:       boolPtr(flags.NewItems),
		Mentions:       boolPtr(flags.Mentions),
		MentionThreads: boolPtr(flags.MentionThreads),
		Assigned:       boolPtr(flags.Assigned),
	}
}

func boolPtr(v bool) *bool { return &v }

func validateRepos(s string) error {
	repos := splitRepos(s)
	if len(repos) == 0 {
		return fmt.Errorf("at least one repository is required")
	}
	for _, r := range repos {
		owner, name, ok := strings.Cut(r, "/")
		if !ok || owner == "" || name == "" {
			return fmt.Errorf("%q is not an owner/name pair", r)
		}
	}
	return nil
}

func validateMinutes(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n <= 0 {
		return fmt.Errorf("enter a positive number of minutes")
	}
	return nil
}
