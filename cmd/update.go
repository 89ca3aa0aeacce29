package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/creativeprojects/go-selfupdate"
	"github.com/spf13/cobra"

	"github.com/shaharia-lab/stocknotify/internal/build"
)

const releaseSlug = "shaharia-lab/stocknotify"

// NewUpdateCmd returns the "update" subcommand that self-updates the binary.
func NewUpdateCmd() *cobra.Command {
	var yes, checkOnly bool

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Update stocknotify to the latest release",
		Long:  "Check GitHub releases for a newer version of stocknotify and update the binary in place.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runUpdate(cmd, yes, checkOnly)
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip confirmation prompt")
	cmd.Flags().BoolVar(&checkOnly, "check", false, "Only report whether an update is available")
	return cmd
}

// currentVersion parses the embedded build version. Dev builds are rejected.
func currentVersion(v string) (*semver.Version, error) {
	if v == "dev" || v == "unknown" || v == "" {
		return nil, fmt.Errorf("cannot update a dev build; install a tagged release first")
	}
	sv, err := semver.NewVersion(v)
	if err != nil {
		return nil, fmt.Errorf("build version %q is not a release version: %w", v, err)
	}
	return sv, nil
}

func runUpdate(cmd *cobra.Command, skipConfirm, checkOnly bool) error {
	out := cmd.OutOrStdout()
	st := newStyles(out)

	current, err := currentVersion(build.Version)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "%s %s\n", st.label.Render("Current version:"), current)
	fmt.Fprint(out, "Checking for updates... ")

	updater, err := selfupdate.NewUpdater(selfupdate.Config{})
	if err != nil {
		return fmt.Errorf("creating updater: %w", err)
	}

	ctx := cmd.Context()
	release, found, err := updater.DetectLatest(ctx, selfupdate.ParseSlug(releaseSlug))
	if err != nil {
		return fmt.Errorf("checking for updates: %w", err)
	}

	if !found || !release.GreaterThan(current.String()) {
		fmt.Fprintln(out, st.ok.Render("already up to date."))
		return nil
	}

	fmt.Fprintf(out, "found %s\n", st.title.Render(release.Version()))
	if checkOnly {
		return nil
	}

	if !skipConfirm && !confirm(cmd.InOrStdin(), out, fmt.Sprintf("Update to %s? [y/N] ", release.Version())) {
		fmt.Fprintln(out, "Update canceled.")
		return nil
	}

	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("finding current executable: %w", err)
	}

	fmt.Fprintf(out, "Updating to %s...\n", release.Version())
	if err := updater.UpdateTo(ctx, release, exe); err != nil {
		return fmt.Errorf("updating: %w", err)
	}

	fmt.Fprintf(out, "%s Restart stocknotify to use the new version.\n", st.ok.Render("Updated to "+release.Version()+"."))
	return nil
}

func confirm(in io.Reader, out io.Writer, prompt string) bool {
	fmt.Fprint(out, prompt)
	line, _ := bufio.NewReader(in).ReadString('\n')
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	}
	return false
}
