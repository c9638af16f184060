package main

import (
	"os"

	"github.com/PizzaHomicide/vidctl/internal/config"
	"github.com/PizzaHomicide/vidctl/internal/ui/tui/styles"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(envCmd)
	envCmd.Flags().BoolP("set-only", "s", false, "Only show variables that are currently set")
}

var envCmd = &cobra.Command{
	Use:   "env",
	Short: "List the supported environment variables",
	Long:  `List the environment variables that override the config file, with their current values.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		setOnly, err := cmd.Flags().GetBool("set-only")
		if err != nil {
			return err
		}

		for _, doc := range config.EnvVarDocs() {
			value, present := os.LookupEnv(doc.Name)
			if setOnly && !present {
				continue
			}

			cmd.Print(styles.Key.Render(doc.Name) + "=")
			if present {
				cmd.Println(styles.Playing.Render(value))
			} else {
				cmd.Println(styles.Muted.Render("unset"))
			}
			cmd.Println("    " + doc.Description)
		}
		return nil
	},
}
