package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/gitayam/markdown2dokuwiki/internal/cli"
	"github.com/gitayam/markdown2dokuwiki/internal/cli/config"
	"github.com/gitayam/markdown2dokuwiki/internal/cli/ui"
	"github.com/gitayam/markdown2dokuwiki/pkg/converter"
)

var (
	// These are set during build time using -ldflags
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const longHelp = `wiki-converter converts a directory of Markdown files to DokuWiki or MediaWiki
format. The source directory is left untouched; the work happens on a copy
(default: ./<source>_converted).

It performs the following steps:
  1. Copies the tree, optionally flattening it while keeping protected
     subdirectories intact.
  2. Moves media files (images, PDFs and others) into the media/ directory.
  3. Cleans every Markdown file by removing YAML front matter, HTML comments
     and other problematic sections; the changes are logged next to the file.
  4. Converts the cleaned files to the chosen wiki format (.txt).
  5. Prints instructions to copy the converted files into a running wiki
     container.

The conversion type, the flattening choice and the protected directories are
asked for interactively unless they are given as flags or in a config file.`

// newRootCmd builds the wiki-converter command.
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "wiki-converter <source-dir>",
		Short:         "Converts Markdown documentation to DokuWiki or MediaWiki pages.",
		Long:          longHelp,
		Example:       "  wiki-converter ./docs\n  wiki-converter ./docs -d mediawiki --flatten --protected assets,img --no-prompt",
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		Args:          cobra.ExactArgs(1),
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Usage is only useful for argument errors.
			cmd.SilenceUsage = true

			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			cfgFile, _ := cmd.Flags().GetString("config")
			profileName, _ := cmd.Flags().GetString("profile")
			cfg, logger, err := config.LoadAndValidate(args[0], cfgFile, profileName, version, cmd.Flags())
			if err != nil {
				return err
			}

			env := cli.StdEnv()
			env.Out = cmd.OutOrStdout()
			env.Err = cmd.ErrOrStderr()
			return cli.Run(ctx, cfg, logger, env)
		},
	}
	cmd.SetVersionTemplate(`{{.Name}} version {{.Version}}` + "\n")

	// Configuration source
	cmd.Flags().String("config", "", "Configuration file path (default is search ., $HOME/.config/wiki-converter/, $HOME/.wiki-converter/)")
	cmd.Flags().String("profile", "", "Name of configuration profile to use")
	cmd.Flags().BoolP("verbose", "v", converter.DefaultVerbose, "Enable verbose (debug) logging output (disables the picker and progress bars)")

	// Conversion
	cmd.Flags().StringP("output", "o", "", "Output directory (default ./<source>_converted)")
	cmd.Flags().StringP("dialect", "d", "", `Target wiki format ("dokuwiki" or "mediawiki"); asked for when unset`)
	cmd.Flags().Bool("flatten", false, "Flatten the directory structure; asked for when unset")
	cmd.Flags().StringSlice("protected", nil, "Comma-separated directories kept intact when flattening")
	cmd.Flags().String("collision", string(converter.DefaultCollisionPolicy), `Behavior when two files flatten to the same name ("overwrite", "rename", "error")`)
	cmd.Flags().String("wiki-base-url", converter.DefaultWikiBaseURL, "Wiki URL whose absolute links are made relative")
	cmd.Flags().String("dash-mode", string(converter.DefaultDashMode), `Which "---" lines to remove ("all", "frontmatter")`)
	cmd.Flags().String("heading-mode", string(converter.DefaultHeadingMode), `How '#' is converted ("literal", "line")`)

	// File handling
	cmd.Flags().String("media-dir", converter.DefaultMediaDirName, "Name of the media directory in the output")
	cmd.Flags().StringArray("ignore", []string{}, "Glob patterns for files/directories to leave out (can be specified multiple times)")

	// Behavior & output
	cmd.Flags().String("on-error", string(converter.DefaultOnErrorMode), `Behavior on file errors ("continue" or "stop")`)
	cmd.Flags().String("output-format", string(converter.DefaultOutputFormat), `Final report format ("text", "json")`)
	cmd.Flags().String("audit-template", "", "Path to a custom Go template for the change logs")
	cmd.Flags().Bool("no-prompt", false, "Never ask questions; a missing dialect is an error")
	cmd.Flags().Bool("no-tui", false, "Use line prompts instead of the dialect picker")
	cmd.Flags().Bool("no-probe", false, "Do not look for a running wiki container")

	return cmd
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	cmd := newRootCmd()
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), ui.ErrorStyle.Render("Error: "+err.Error()))
		return 1
	}
	return 0
}
