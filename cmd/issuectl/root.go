package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ignite/issue-tracker/internal/client"
	"github.com/ignite/issue-tracker/internal/pkg/output"
)

const defaultURL = "http://localhost:8080"

// app holds what every subcommand needs.
type app struct {
	ui  *output.UI
	cfg *viper.Viper
}

func (a *app) client() *client.Client {
	return client.New(a.cfg.GetString("url"))
}

func newRootCmd(ui *output.UI) *cobra.Command {
	a := &app{ui: ui, cfg: viper.New()}

	root := &cobra.Command{
		Use:           "issuectl",
		Short:         "Manage issues in the issue tracker",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(ui.Out)
	root.SetErr(ui.ErrOut)

	root.PersistentFlags().String("url", defaultURL, "Base URL of the issue API (env ISSUECTL_URL)")
	root.PersistentFlags().Bool("json", false, "Print raw JSON instead of tables")
	_ = a.cfg.BindPFlag("url", root.PersistentFlags().Lookup("url"))
	_ = a.cfg.BindPFlag("json", root.PersistentFlags().Lookup("json"))
	a.cfg.SetEnvPrefix("ISSUECTL")
	a.cfg.AutomaticEnv()
	a.cfg.SetDefault("url", defaultURL)

	root.AddCommand(
		newCreateCmd(a),
		newGetCmd(a),
		newListCmd(a),
		newUpdateCmd(a),
		newDeleteCmd(a),
	)
	return root
}
